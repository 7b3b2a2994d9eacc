package model

import "fmt"

// InputError reports a malformed input value, caught before any packing work.
type InputError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s %g: %s", e.Field, e.Value, e.Reason)
}

// ValidateSheet checks that both sheet dimensions are positive and finite.
func ValidateSheet(width, height float64) error {
	if !validDimension(width) {
		return &InputError{Field: "sheet width", Value: width, Reason: "must be a positive finite number"}
	}
	if !validDimension(height) {
		return &InputError{Field: "sheet height", Value: height, Reason: "must be a positive finite number"}
	}
	return nil
}

// Validate checks that both rectangle dimensions are positive and finite.
func (r Rectangle) Validate() error {
	if !validDimension(r.Height) {
		return &InputError{Field: fmt.Sprintf("height of rectangle %d", r.ID), Value: r.Height, Reason: "must be a positive finite number"}
	}
	if !validDimension(r.Width) {
		return &InputError{Field: fmt.Sprintf("width of rectangle %d", r.ID), Value: r.Width, Reason: "must be a positive finite number"}
	}
	return nil
}

// ValidateRectangles validates every rectangle and rejects duplicate IDs,
// since placements are tracked by identity.
func ValidateRectangles(rects []Rectangle) error {
	seen := make(map[int]bool, len(rects))
	for _, r := range rects {
		if err := r.Validate(); err != nil {
			return err
		}
		if seen[r.ID] {
			return &InputError{Field: "rectangle id", Value: float64(r.ID), Reason: "is used more than once"}
		}
		seen[r.ID] = true
	}
	return nil
}
