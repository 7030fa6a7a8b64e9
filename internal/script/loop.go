package script

// FindLoopEnd returns the index of the "n" line closing the loop opened at
// lines[open]. Nested loops are matched by depth counting. The second result
// is false when the loop is never closed.
func FindLoopEnd(lines []string, open int) (int, bool) {
	depth := 0
	for i := open + 1; i < len(lines); i++ {
		switch Classify(lines[i]) {
		case KindLoopOpen:
			depth++
		case KindLoopClose:
			if depth == 0 {
				return i, true
			}
			depth--
		}
	}
	return -1, false
}
