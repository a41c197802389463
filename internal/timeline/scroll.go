package timeline

// ScrollTracker turns scroll offsets into edge-triggered "reached the top"
// events. Resting at offset zero fires once; the view has to leave the top
// before it can fire again.
type ScrollTracker struct {
	atTop bool
}

// Observe records a scroll offset and reports whether it just reached the top.
func (s *ScrollTracker) Observe(offset int) bool {
	top := offset <= 0
	fired := top && !s.atTop
	s.atTop = top
	return fired
}

// Reset forgets the previous position, as when another room is opened.
func (s *ScrollTracker) Reset() {
	s.atTop = false
}
