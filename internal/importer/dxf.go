package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/sheetfit/internal/model"
)

// joinTolerance is the largest endpoint gap still treated as connected.
const joinTolerance = 0.01

type point struct{ x, y float64 }

// bounds is an axis-aligned bounding box grown point by point.
type bounds struct {
	minX, minY, maxX, maxY float64
	empty                  bool
}

func newBounds() bounds {
	return bounds{empty: true}
}

func (b *bounds) add(p point) {
	if b.empty {
		b.minX, b.maxX, b.minY, b.maxY = p.x, p.x, p.y, p.y
		b.empty = false
		return
	}
	b.minX = min(b.minX, p.x)
	b.maxX = max(b.maxX, p.x)
	b.minY = min(b.minY, p.y)
	b.maxY = max(b.maxY, p.y)
}

func (b bounds) width() float64  { return b.maxX - b.minX }
func (b bounds) height() float64 { return b.maxY - b.minY }
func (b bounds) area() float64   { return b.width() * b.height() }

type segment struct {
	start, end point
	via        []point // interior points of an arc, start to end
}

// ImportDXF imports pieces from a DXF file. Every closed shape (LWPOLYLINE,
// CIRCLE, or a loop of connected LINEs and ARCs) becomes one rectangle sized
// by the shape's bounding box.
func ImportDXF(path string) ImportResult {
	result := ImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var shapes []bounds
	var segments []segment

	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			if len(e.Vertices) < 3 {
				result.Warnings = append(result.Warnings, "Skipped LWPOLYLINE with fewer than 3 vertices")
				continue
			}
			shapes = append(shapes, polylineBounds(e.Vertices, e.Bulges))

		case *entity.Circle:
			b := newBounds()
			b.add(point{e.Center[0] - e.Radius, e.Center[1] - e.Radius})
			b.add(point{e.Center[0] + e.Radius, e.Center[1] + e.Radius})
			shapes = append(shapes, b)

		case *entity.Arc:
			pts := arcPoints(e.Circle.Center[0], e.Circle.Center[1], e.Circle.Radius, e.Angle[0], e.Angle[1], 32)
			segments = append(segments, segment{start: pts[0], end: pts[len(pts)-1], via: pts[1 : len(pts)-1]})

		case *entity.Line:
			segments = append(segments, segment{
				start: point{e.Start[0], e.Start[1]},
				end:   point{e.End[0], e.End[1]},
			})
		}
	}

	loops, open := chainLoops(segments)
	if open > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Skipped %d open LINE/ARC chain(s)", open))
	}
	shapes = append(shapes, loops...)

	if len(shapes) == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
		return result
	}

	for _, b := range shapes {
		if b.width() < joinTolerance || b.height() < joinTolerance {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Skipped degenerate shape (%.2f x %.2f)", b.width(), b.height()))
			continue
		}
		id := len(result.Rectangles)
		result.Rectangles = append(result.Rectangles, model.Rectangle{
			ID:     id,
			Label:  fmt.Sprintf("DXF %d", id+1),
			Height: b.height(),
			Width:  b.width(),
		})
	}

	return result
}

// polylineBounds returns the bounding box of a closed polyline, following
// bulged edges along their arcs.
func polylineBounds(vertices [][]float64, bulges []float64) bounds {
	b := newBounds()
	for i, v := range vertices {
		cur := point{v[0], v[1]}
		b.add(cur)
		if i >= len(bulges) || math.Abs(bulges[i]) < 1e-9 {
			continue
		}
		nv := vertices[(i+1)%len(vertices)]
		for _, p := range bulgePoints(cur, point{nv[0], nv[1]}, bulges[i], 32) {
			b.add(p)
		}
	}
	return b
}

// bulgePoints samples the arc between p1 and p2 described by a DXF bulge,
// the tangent of a quarter of the included angle. Positive bulges turn
// counter-clockwise.
func bulgePoints(p1, p2 point, bulge float64, n int) []point {
	dx, dy := p2.x-p1.x, p2.y-p1.y
	chord := math.Hypot(dx, dy)
	if chord < 1e-9 {
		return nil
	}

	theta := 4 * math.Atan(bulge)
	radius := chord / (2 * math.Sin(math.Abs(theta)/2))

	// Centre lies on the chord's perpendicular bisector.
	h := radius * math.Cos(theta/2)
	mx, my := (p1.x+p2.x)/2, (p1.y+p2.y)/2
	sign := 1.0
	if bulge < 0 {
		sign = -1
	}
	cx := mx - sign*h*dy/chord
	cy := my + sign*h*dx/chord

	start := math.Atan2(p1.y-cy, p1.x-cx)
	pts := make([]point, 0, n+1)
	for i := 0; i <= n; i++ {
		a := start + theta*float64(i)/float64(n)
		pts = append(pts, point{cx + radius*math.Cos(a), cy + radius*math.Sin(a)})
	}
	return pts
}

// arcPoints samples a counter-clockwise arc given in degrees.
func arcPoints(cx, cy, r, startDeg, endDeg float64, n int) []point {
	start := startDeg * math.Pi / 180
	end := endDeg * math.Pi / 180
	if end <= start {
		end += 2 * math.Pi
	}
	pts := make([]point, n+1)
	for i := range pts {
		a := start + (end-start)*float64(i)/float64(n)
		pts[i] = point{cx + r*math.Cos(a), cy + r*math.Sin(a)}
	}
	return pts
}

func near(a, b point) bool {
	return math.Hypot(a.x-b.x, a.y-b.y) <= joinTolerance
}

// chainLoops joins segments end to end and returns the bounding boxes of the
// closed loops, largest first, with the number of chains left open.
func chainLoops(segs []segment) ([]bounds, int) {
	used := make([]bool, len(segs))
	var loops []bounds
	open := 0

	for first := range segs {
		if used[first] {
			continue
		}
		used[first] = true

		b := newBounds()
		addSegment(&b, segs[first])
		head, tail := segs[first].start, segs[first].end

		for extended := true; extended && !near(head, tail); {
			extended = false
			for i, s := range segs {
				if used[i] {
					continue
				}
				switch {
				case near(tail, s.start):
					tail = s.end
				case near(tail, s.end):
					tail = s.start
				default:
					continue
				}
				used[i] = true
				addSegment(&b, s)
				extended = true
				break
			}
		}

		if near(head, tail) && b.area() > 0 {
			loops = append(loops, b)
		} else {
			open++
		}
	}

	sort.SliceStable(loops, func(i, j int) bool { return loops[i].area() > loops[j].area() })
	return loops, open
}

func addSegment(b *bounds, s segment) {
	b.add(s.start)
	b.add(s.end)
	for _, p := range s.via {
		b.add(p)
	}
}
