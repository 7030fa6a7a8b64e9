package session

// AddLogged appends a signal to the logged set. Re-adding a name is a no-op
// and reports false.
func (s *Session) AddLogged(name string) (bool, error) {
	sig, err := s.Device(name)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range s.logged {
		if l.Name == name {
			return false, nil
		}
	}
	s.logged = append(s.logged, Logged{Name: name, Signal: sig})
	return true, nil
}

// LoggedSignals returns a snapshot of the logged set in insertion order.
func (s *Session) LoggedSignals() []Logged {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Logged(nil), s.logged...)
}

// LogFile returns the active data log path.
func (s *Session) LogFile() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logFile
}

// SetLogFile changes the active data log path.
func (s *Session) SetLogFile(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logFile = path
}

// LogRate returns the sampling interval in seconds, zero when logging is idle.
func (s *Session) LogRate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logRate
}

// SetLogRate records the sampling interval in seconds.
func (s *Session) SetLogRate(seconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logRate = seconds
}
