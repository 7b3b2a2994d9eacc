package engine

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/zeebo/xxh3"

	"github.com/piwi3910/sheetfit/internal/geom"
	"github.com/piwi3910/sheetfit/internal/model"
)

// ProbeStats counts the work done by a Prober.
type ProbeStats struct {
	Probes      int64 `json:"probes"`       // Probe calls
	SolverCalls int64 `json:"solver_calls"` // Calls that reached the solver
	CacheHits   int64 `json:"cache_hits"`   // Calls answered from the cache
	Rejected    int64 `json:"rejected"`     // Calls answered by the size and area checks
}

// Prober answers "does this exact list of oriented sizes fit the box" by
// delegating to a geom.Solver. Answers are memoized by the multiset of sizes,
// so two lists holding the same sizes in another order share one solver call.
type Prober struct {
	solver geom.Solver
	cache  *probeCache

	probes, solverCalls, cacheHits, rejected atomic.Int64
}

// NewProber wraps a solver. cacheSize bounds the memo; 0 disables it.
func NewProber(solver geom.Solver, cacheSize int) *Prober {
	p := &Prober{solver: solver}
	if cacheSize > 0 {
		p.cache = newProbeCache(cacheSize)
	}
	return p
}

// Probe reports whether sizes fit a width x height box without rotation.
// On success the points are index-aligned with sizes. The only error is the
// context's.
func (p *Prober) Probe(ctx context.Context, sizes []model.Size, width, height float64) ([]model.Point, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	p.probes.Add(1)

	if len(sizes) == 0 {
		return []model.Point{}, true, nil
	}

	var area float64
	for _, s := range sizes {
		if !s.FitsIn(width, height) {
			p.rejected.Add(1)
			return nil, false, nil
		}
		area += s.Area()
	}
	if area > width*height {
		p.rejected.Add(1)
		return nil, false, nil
	}

	order := canonicalOrder(sizes)
	sorted := make([]model.Size, len(sizes))
	for k, i := range order {
		sorted[k] = sizes[i]
	}

	key := probeKey(sorted, width, height)
	ans, hit := p.cache.get(key, sorted, width, height)
	if hit {
		p.cacheHits.Add(1)
	} else {
		p.solverCalls.Add(1)
		points, err := p.solver.Pack(sorted, width, height)
		switch {
		case err == nil:
			ans = probeAnswer{feasible: true, points: points}
		case errors.Is(err, geom.ErrPackingImpossible):
			ans = probeAnswer{}
		default:
			return nil, false, err
		}
		p.cache.put(key, probeEntry{sizes: sorted, width: width, height: height, answer: ans})
	}

	if !ans.feasible {
		return nil, false, nil
	}
	points := make([]model.Point, len(sizes))
	for k, i := range order {
		points[i] = ans.points[k]
	}
	return points, true, nil
}

// Stats returns a snapshot of the counters.
func (p *Prober) Stats() ProbeStats {
	return ProbeStats{
		Probes:      p.probes.Load(),
		SolverCalls: p.solverCalls.Load(),
		CacheHits:   p.cacheHits.Load(),
		Rejected:    p.rejected.Load(),
	}
}

// canonicalOrder returns the indices of sizes sorted by height, then width,
// both descending.
func canonicalOrder(sizes []model.Size) []int {
	idx := make([]int, len(sizes))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		sa, sb := sizes[idx[a]], sizes[idx[b]]
		if sa.Height != sb.Height {
			return sa.Height > sb.Height
		}
		return sa.Width > sb.Width
	})
	return idx
}

func probeKey(sorted []model.Size, width, height float64) uint64 {
	buf := make([]byte, 0, 16*(len(sorted)+1))
	buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(width))
	buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(height))
	for _, s := range sorted {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(s.Height))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(s.Width))
	}
	return xxh3.Hash(buf)
}

type probeAnswer struct {
	feasible bool
	points   []model.Point // canonical order
}

type probeEntry struct {
	sizes         []model.Size
	width, height float64
	answer        probeAnswer
}

func (e probeEntry) matches(sorted []model.Size, width, height float64) bool {
	if e.width != width || e.height != height || len(e.sizes) != len(sorted) {
		return false
	}
	for i := range sorted {
		if e.sizes[i] != sorted[i] {
			return false
		}
	}
	return true
}

// probeCache is a bounded FIFO memo keyed by hash. Entries keep their full
// size list so hash collisions never return a wrong answer.
type probeCache struct {
	mu      sync.Mutex
	limit   int
	entries map[uint64][]probeEntry
	fifo    []uint64
}

func newProbeCache(limit int) *probeCache {
	return &probeCache{
		limit:   limit,
		entries: make(map[uint64][]probeEntry),
	}
}

func (c *probeCache) get(key uint64, sorted []model.Size, width, height float64) (probeAnswer, bool) {
	if c == nil {
		return probeAnswer{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries[key] {
		if e.matches(sorted, width, height) {
			return e.answer, true
		}
	}
	return probeAnswer{}, false
}

func (c *probeCache) put(key uint64, entry probeEntry) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries[key] {
		if e.matches(entry.sizes, entry.width, entry.height) {
			return
		}
	}
	if len(c.fifo) >= c.limit {
		oldest := c.fifo[0]
		c.fifo = c.fifo[1:]
		if bucket := c.entries[oldest]; len(bucket) > 1 {
			c.entries[oldest] = bucket[1:]
		} else {
			delete(c.entries, oldest)
		}
	}
	c.entries[key] = append(c.entries[key], entry)
	c.fifo = append(c.fifo, key)
}

func (c *probeCache) size() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.fifo)
}
