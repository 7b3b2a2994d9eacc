package model

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// Size is one orientation of a rectangle: a concrete height/width pair.
type Size struct {
	Height float64 `json:"height" yaml:"height"`
	Width  float64 `json:"width" yaml:"width"`
}

// Area returns height * width.
func (s Size) Area() float64 {
	return s.Height * s.Width
}

// Rotated returns the size turned by 90 degrees.
func (s Size) Rotated() Size {
	return Size{Height: s.Width, Width: s.Height}
}

// IsSquare reports whether both sides are equal.
func (s Size) IsSquare() bool {
	return s.Height == s.Width
}

// Footprint returns the orientation-independent key of the size:
// the short side first, the long side second.
func (s Size) Footprint() Size {
	if s.Height <= s.Width {
		return s
	}
	return s.Rotated()
}

// FitsIn reports whether the size fits a width x height box without rotation.
func (s Size) FitsIn(width, height float64) bool {
	return s.Width <= width && s.Height <= height
}

func (s Size) String() string {
	return fmt.Sprintf("%gx%g", s.Height, s.Width)
}

// Point represents the lower-left corner of a placed size.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rectangle represents a required piece to be placed.
// The ID is assigned at input time and identifies the piece for its whole life;
// two rectangles with equal sizes are still different pieces.
type Rectangle struct {
	ID     int     `json:"id"`
	Label  string  `json:"label,omitempty"`
	Height float64 `json:"height"`
	Width  float64 `json:"width"`
}

// NewRectangles turns caller-supplied sizes into rectangles with IDs 0..n-1
// in input order.
func NewRectangles(sizes []Size) []Rectangle {
	rects := make([]Rectangle, len(sizes))
	for i, s := range sizes {
		rects[i] = Rectangle{
			ID:     i,
			Label:  fmt.Sprintf("R%d", i+1),
			Height: s.Height,
			Width:  s.Width,
		}
	}
	return rects
}

// Size returns the rectangle's unrotated orientation.
func (r Rectangle) Size() Size {
	return Size{Height: r.Height, Width: r.Width}
}

// Area returns the rectangle area.
func (r Rectangle) Area() float64 {
	return r.Height * r.Width
}

// Orientations returns the distinct orientations reachable by 0 or 90 degree
// rotation. A square has exactly one; every other rectangle has two, the
// unrotated one first.
func (r Rectangle) Orientations() []Size {
	s := r.Size()
	if s.IsSquare() {
		return []Size{s}
	}
	return []Size{s, s.Rotated()}
}

// FitsSheet reports whether the rectangle fits an empty sheet in at least one
// orientation.
func (r Rectangle) FitsSheet(width, height float64) bool {
	for _, o := range r.Orientations() {
		if o.FitsIn(width, height) {
			return true
		}
	}
	return false
}

// Placement represents a single rectangle placed on a sheet.
type Placement struct {
	RectangleID int    `json:"rectangle_id"`
	Label       string `json:"label,omitempty"`
	Size        Size   `json:"size"`     // orientation as placed
	Position    Point  `json:"position"` // lower-left corner
	Rotated     bool   `json:"rotated"`  // placed size differs from the rectangle's own
}

// Right returns the x coordinate of the right edge.
func (p Placement) Right() float64 {
	return p.Position.X + p.Size.Width
}

// Top returns the y coordinate of the top edge.
func (p Placement) Top() float64 {
	return p.Position.Y + p.Size.Height
}

// Overlaps reports whether two placements share interior area. Touching edges
// do not count.
func (p Placement) Overlaps(o Placement) bool {
	return p.Position.X < o.Right() && o.Position.X < p.Right() &&
		p.Position.Y < o.Top() && o.Position.Y < p.Top()
}

// Packing is the outcome of a single-sheet search. It is either feasible,
// carrying its placements, or Infeasible.
type Packing struct {
	feasible   bool
	Placements []Placement `json:"placements"`
}

// Infeasible is the packing returned when no layout exists.
var Infeasible = Packing{}

// Feasible wraps placements into a feasible packing. A nil slice is a valid,
// empty packing.
func Feasible(placements []Placement) Packing {
	if placements == nil {
		placements = []Placement{}
	}
	return Packing{feasible: true, Placements: placements}
}

// IsFeasible reports whether the packing holds a layout.
func (p Packing) IsFeasible() bool {
	return p.feasible
}

// Len returns the number of placed rectangles.
func (p Packing) Len() int {
	return len(p.Placements)
}

// Sizes returns the placed sizes in their chosen orientation, index-aligned
// with Positions. Nil for an infeasible packing.
func (p Packing) Sizes() []Size {
	if !p.feasible {
		return nil
	}
	sizes := make([]Size, len(p.Placements))
	for i, pl := range p.Placements {
		sizes[i] = pl.Size
	}
	return sizes
}

// Positions returns the lower-left corners, index-aligned with Sizes.
// Nil for an infeasible packing.
func (p Packing) Positions() []Point {
	if !p.feasible {
		return nil
	}
	points := make([]Point, len(p.Placements))
	for i, pl := range p.Placements {
		points[i] = pl.Position
	}
	return points
}

// UsedArea returns the total area covered by the placements.
func (p Packing) UsedArea() float64 {
	var total float64
	for _, pl := range p.Placements {
		total += pl.Size.Area()
	}
	return total
}

// Sheet represents one stock sheet with its placed rectangles.
type Sheet struct {
	Width      float64     `json:"width"`
	Height     float64     `json:"height"`
	Placements []Placement `json:"placements"`
}

// UsedArea returns the total area used by placed rectangles.
func (s Sheet) UsedArea() float64 {
	var total float64
	for _, p := range s.Placements {
		total += p.Size.Area()
	}
	return total
}

// TotalArea returns the sheet area.
func (s Sheet) TotalArea() float64 {
	return s.Width * s.Height
}

// Efficiency returns the usage percentage.
func (s Sheet) Efficiency() float64 {
	ta := s.TotalArea()
	if ta == 0 {
		return 0
	}
	return (s.UsedArea() / ta) * 100.0
}

// Validate checks the sheet invariants: every placement inside the bounds and
// no two placements overlapping.
func (s Sheet) Validate() error {
	const eps = 1e-9
	for i, p := range s.Placements {
		if p.Position.X < -eps || p.Position.Y < -eps ||
			p.Right() > s.Width+eps || p.Top() > s.Height+eps {
			return fmt.Errorf("placement of rectangle %d at (%g, %g) size %s is outside the %gx%g sheet",
				p.RectangleID, p.Position.X, p.Position.Y, p.Size, s.Width, s.Height)
		}
		for _, q := range s.Placements[i+1:] {
			if p.Overlaps(q) {
				return fmt.Errorf("rectangles %d and %d overlap", p.RectangleID, q.RectangleID)
			}
		}
	}
	return nil
}

// MultiSheetResult holds the full multi-sheet solution.
type MultiSheetResult struct {
	Sheets   []Sheet     `json:"sheets"`
	Unplaced []Rectangle `json:"unplaced"`
}

// PlacedCount returns the number of rectangles placed across all sheets.
func (r MultiSheetResult) PlacedCount() int {
	total := 0
	for _, s := range r.Sheets {
		total += len(s.Placements)
	}
	return total
}

// TotalEfficiency returns overall material usage percentage.
func (r MultiSheetResult) TotalEfficiency() float64 {
	var usedArea, totalArea float64
	for _, s := range r.Sheets {
		usedArea += s.UsedArea()
		totalArea += s.TotalArea()
	}
	if totalArea == 0 {
		return 0
	}
	return (usedArea / totalArea) * 100.0
}

// Job ties an input set and its result together for save/load.
type Job struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	SheetWidth  float64           `json:"sheet_width"`
	SheetHeight float64           `json:"sheet_height"`
	Rectangles  []Rectangle       `json:"rectangles"`
	Result      *MultiSheetResult `json:"result,omitempty"`
}

func NewJob(name string, width, height float64, rects []Rectangle) Job {
	if rects == nil {
		rects = []Rectangle{}
	}
	return Job{
		ID:          uuid.New().String()[:8],
		Name:        name,
		SheetWidth:  width,
		SheetHeight: height,
		Rectangles:  rects,
	}
}

// TotalArea returns the summed area of all rectangles.
func TotalArea(rects []Rectangle) float64 {
	var total float64
	for _, r := range rects {
		total += r.Area()
	}
	return total
}

func validDimension(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
