package domain

import "time"

// Window is a half-open time interval [Start, End).
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether two half-open windows intersect. A window ending
// exactly when another starts does not overlap it.
func (w Window) Overlaps(other Window) bool {
	return w.Start.Before(other.End) && other.Start.Before(w.End)
}

// Valid reports whether the window is well-formed (Start strictly before End).
func (w Window) Valid() bool {
	return w.Start.Before(w.End)
}
