package geom

import "math"

// eps absorbs float noise when comparing edges.
const eps = 1e-9

type rect struct {
	x, y, w, h float64
}

func (r rect) right() float64 { return r.x + r.w }
func (r rect) top() float64   { return r.y + r.h }

// maxRectsPacker keeps the list of maximal free rectangles of one sheet and
// places fixed-orientation sizes into it.
type maxRectsPacker struct {
	width, height float64
	heuristic     Heuristic
	freeRects     []rect
	used          []rect
}

func newMaxRectsPacker(width, height float64, heuristic Heuristic) *maxRectsPacker {
	return &maxRectsPacker{
		width:     width,
		height:    height,
		heuristic: heuristic,
		freeRects: []rect{{0, 0, width, height}},
	}
}

// find returns the best node for a w x h size under the packer's heuristic,
// with its primary and secondary scores (lower is better). ok is false when
// no free rectangle can hold the size.
func (p *maxRectsPacker) find(w, h float64) (node rect, score1, score2 float64, ok bool) {
	score1, score2 = math.MaxFloat64, math.MaxFloat64

	for _, fr := range p.freeRects {
		if w > fr.w+eps || h > fr.h+eps {
			continue
		}

		leftoverHoriz := fr.w - w
		leftoverVert := fr.h - h
		shortSide := min(leftoverHoriz, leftoverVert)
		longSide := max(leftoverHoriz, leftoverVert)

		var s1, s2 float64
		switch p.heuristic {
		case BestLongSideFit:
			s1, s2 = longSide, shortSide
		case BestAreaFit:
			s1, s2 = fr.w*fr.h-w*h, shortSide
		case BottomLeft:
			s1, s2 = fr.y+h, fr.x
		case ContactPoint:
			s1, s2 = -p.contactScore(fr.x, fr.y, w, h), fr.y
		default:
			s1, s2 = shortSide, longSide
		}

		if s1 < score1 || (s1 == score1 && s2 < score2) {
			node = rect{x: fr.x, y: fr.y, w: w, h: h}
			score1, score2 = s1, s2
			ok = true
		}
	}
	return node, score1, score2, ok
}

// contactScore measures how much of the candidate's perimeter touches the
// sheet border or already placed sizes.
func (p *maxRectsPacker) contactScore(x, y, w, h float64) float64 {
	score := 0.0
	if x <= eps || math.Abs(x+w-p.width) <= eps {
		score += h
	}
	if y <= eps || math.Abs(y+h-p.height) <= eps {
		score += w
	}
	for _, u := range p.used {
		if math.Abs(u.x-(x+w)) <= eps || math.Abs(u.right()-x) <= eps {
			score += commonInterval(u.y, u.top(), y, y+h)
		}
		if math.Abs(u.y-(y+h)) <= eps || math.Abs(u.top()-y) <= eps {
			score += commonInterval(u.x, u.right(), x, x+w)
		}
	}
	return score
}

// commonInterval returns the overlap length of [a0,a1] and [b0,b1], or 0.
func commonInterval(a0, a1, b0, b1 float64) float64 {
	if a1 < b0 || b1 < a0 {
		return 0
	}
	return min(a1, b1) - max(a0, b0)
}

// insert places a w x h size and returns its lower-left corner.
func (p *maxRectsPacker) insert(w, h float64) (float64, float64, bool) {
	node, _, _, ok := p.find(w, h)
	if !ok {
		return 0, 0, false
	}
	p.place(node)
	return node.x, node.y, true
}

func (p *maxRectsPacker) place(node rect) {
	p.splitAroundPlacement(node)
	p.used = append(p.used, node)
}

// splitAroundPlacement removes all free rects that overlap with the placed rect
// and generates maximal sub-rects from each overlap. Then prunes contained rects.
func (p *maxRectsPacker) splitAroundPlacement(placed rect) {
	var newRects []rect

	for _, r := range p.freeRects {
		if !rectsOverlap(r, placed) {
			newRects = append(newRects, r)
			continue
		}

		// Left strip (full height of original rect)
		if placed.x > r.x+eps {
			newRects = append(newRects, rect{x: r.x, y: r.y, w: placed.x - r.x, h: r.h})
		}
		// Right strip (full height of original rect)
		if placed.right() < r.right()-eps {
			newRects = append(newRects, rect{x: placed.right(), y: r.y, w: r.right() - placed.right(), h: r.h})
		}
		// Lower strip (full width of original rect)
		if placed.y > r.y+eps {
			newRects = append(newRects, rect{x: r.x, y: r.y, w: r.w, h: placed.y - r.y})
		}
		// Upper strip (full width of original rect)
		if placed.top() < r.top()-eps {
			newRects = append(newRects, rect{x: r.x, y: placed.top(), w: r.w, h: r.top() - placed.top()})
		}
	}

	p.freeRects = pruneContained(newRects)
}

// rectsOverlap returns true if two rectangles overlap (not just touch).
func rectsOverlap(a, b rect) bool {
	return a.x < b.right()-eps && a.right() > b.x+eps &&
		a.y < b.top()-eps && a.top() > b.y+eps
}

// pruneContained removes any rect that is fully contained within another.
// Of two identical rects only the first survives.
func pruneContained(rects []rect) []rect {
	if len(rects) <= 1 {
		return rects
	}
	kept := make([]rect, 0, len(rects))
	for i, a := range rects {
		contained := false
		for j, b := range rects {
			if i == j || !containsRect(b, a) {
				continue
			}
			if containsRect(a, b) && i < j {
				continue
			}
			contained = true
			break
		}
		if !contained {
			kept = append(kept, a)
		}
	}
	return kept
}

// containsRect returns true if outer fully contains inner.
func containsRect(outer, inner rect) bool {
	return outer.x <= inner.x+eps && outer.y <= inner.y+eps &&
		outer.right() >= inner.right()-eps &&
		outer.top() >= inner.top()-eps
}
