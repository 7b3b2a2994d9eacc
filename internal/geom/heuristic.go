package geom

import (
	"fmt"
	"sort"
	"strings"

	"github.com/piwi3910/sheetfit/internal/model"
)

// Heuristic selects how the packer chooses a free rectangle for the next size.
type Heuristic int

const (
	BestShortSideFit Heuristic = iota // Smallest leftover on the short side (BSSF)
	BestLongSideFit                   // Smallest leftover on the long side (BLSF)
	BestAreaFit                       // Smallest free rectangle that fits (BAF)
	BottomLeft                        // Lowest top edge, then leftmost (Tetris placement)
	ContactPoint                      // Most perimeter touching sheet edges or placed sizes
)

// AllHeuristics lists every bin-selection heuristic in the order the solver tries them.
var AllHeuristics = []Heuristic{BestShortSideFit, BottomLeft, BestAreaFit, ContactPoint, BestLongSideFit}

func (h Heuristic) String() string {
	switch h {
	case BestShortSideFit:
		return "bssf"
	case BestLongSideFit:
		return "blsf"
	case BestAreaFit:
		return "baf"
	case BottomLeft:
		return "bl"
	case ContactPoint:
		return "cp"
	default:
		return fmt.Sprintf("heuristic(%d)", int(h))
	}
}

// ParseHeuristic converts a short or long heuristic name into a Heuristic.
func ParseHeuristic(s string) (Heuristic, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bssf", "best-short-side-fit":
		return BestShortSideFit, nil
	case "blsf", "best-long-side-fit":
		return BestLongSideFit, nil
	case "baf", "best-area-fit":
		return BestAreaFit, nil
	case "bl", "bottom-left":
		return BottomLeft, nil
	case "cp", "contact-point":
		return ContactPoint, nil
	default:
		return 0, fmt.Errorf("unknown heuristic %q", s)
	}
}

// ParseHeuristics parses a list of names, skipping blanks.
func ParseHeuristics(names []string) ([]Heuristic, error) {
	var out []Heuristic
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		h, err := ParseHeuristic(n)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

// SortOrder controls the order in which sizes are fed to the packer.
type SortOrder int

const (
	SortArea      SortOrder = iota // Area descending
	SortLongSide                   // Longer side descending, then shorter side
	SortHeight                     // Height descending, then width
	SortWidth                      // Width descending, then height
	SortPerimeter                  // Perimeter descending
	SortGlobal                     // No pre-sort: each step places the best-scoring remaining size
)

// AllSortOrders lists every order in the sequence the solver tries them.
var AllSortOrders = []SortOrder{SortArea, SortGlobal, SortLongSide, SortHeight, SortWidth, SortPerimeter}

func (o SortOrder) String() string {
	switch o {
	case SortArea:
		return "area"
	case SortLongSide:
		return "long-side"
	case SortHeight:
		return "height"
	case SortWidth:
		return "width"
	case SortPerimeter:
		return "perimeter"
	case SortGlobal:
		return "global"
	default:
		return fmt.Sprintf("order(%d)", int(o))
	}
}

// orderIndices returns the indices of sizes arranged for the given order.
// The sort is stable so equal keys keep their input order.
func orderIndices(sizes []model.Size, order SortOrder) []int {
	idx := make([]int, len(sizes))
	for i := range idx {
		idx[i] = i
	}

	var less func(a, b model.Size) bool
	switch order {
	case SortArea:
		less = func(a, b model.Size) bool { return a.Area() > b.Area() }
	case SortLongSide:
		less = func(a, b model.Size) bool {
			la, lb := max(a.Height, a.Width), max(b.Height, b.Width)
			if la != lb {
				return la > lb
			}
			return min(a.Height, a.Width) > min(b.Height, b.Width)
		}
	case SortHeight:
		less = func(a, b model.Size) bool {
			if a.Height != b.Height {
				return a.Height > b.Height
			}
			return a.Width > b.Width
		}
	case SortWidth:
		less = func(a, b model.Size) bool {
			if a.Width != b.Width {
				return a.Width > b.Width
			}
			return a.Height > b.Height
		}
	case SortPerimeter:
		less = func(a, b model.Size) bool { return a.Height+a.Width > b.Height+b.Width }
	default:
		return idx
	}

	sort.SliceStable(idx, func(i, j int) bool {
		return less(sizes[idx[i]], sizes[idx[j]])
	})
	return idx
}
