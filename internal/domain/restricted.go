package domain

// ShouldBeRestricted reports the value Restricted must hold: true iff no
// member work is unrestricted. An empty series is restricted.
func (s *Series) ShouldBeRestricted() bool {
	for _, w := range s.Works() {
		if !w.Restricted {
			return false
		}
	}
	return true
}

// ReconcileRestricted brings Restricted back in line with the member works.
// It reports whether the flag changed; a second call with no intervening
// change always reports false.
func (s *Series) ReconcileRestricted() bool {
	want := s.ShouldBeRestricted()
	if s.Restricted == want {
		return false
	}
	s.Restricted = want
	s.Touch()
	return true
}
