package session

// Trigger raises the fail-diversion flag with the recovery script path. It
// returns false, leaving the pending trigger untouched, when one is already
// pending.
func (s *Session) Trigger(recoveryPath string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failTriggered {
		return false
	}
	s.failTriggered = true
	s.failScript = recoveryPath
	return true
}

// TriggerPending reports whether a diversion is waiting to be consumed.
func (s *Session) TriggerPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failTriggered
}

// ConsumeTrigger clears a pending trigger and returns its recovery path.
func (s *Session) ConsumeTrigger() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.failTriggered {
		return "", false
	}
	s.failTriggered = false
	path := s.failScript
	s.failScript = ""
	return path, true
}

// ClearTrigger drops any pending trigger without diverting.
func (s *Session) ClearTrigger() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failTriggered = false
	s.failScript = ""
}
