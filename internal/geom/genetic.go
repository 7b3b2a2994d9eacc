package geom

import (
	"math/rand"
	"sort"

	"github.com/piwi3910/sheetfit/internal/model"
)

// GeneticConfig holds parameters for the genetic order search.
type GeneticConfig struct {
	PopulationSize int
	Generations    int
	MutationRate   float64
	TournamentSize int
	EliteCount     int
	Seed           int64
}

// DefaultGeneticConfig returns sensible default parameters.
func DefaultGeneticConfig() GeneticConfig {
	return GeneticConfig{
		PopulationSize: 50,
		Generations:    100,
		MutationRate:   0.15,
		TournamentSize: 3,
		EliteCount:     2,
		Seed:           42,
	}
}

// GeneticSolver searches insertion orders for a MaxRects packer with a
// genetic algorithm. It is slower than MaxRectsSolver and meant as its
// fallback: it finds layouts that none of the fixed sort orders reach.
// Every call reseeds from Config.Seed, so equal input gives equal output.
type GeneticSolver struct {
	Config    GeneticConfig
	Heuristic Heuristic
}

// NewGeneticSolver returns a genetic solver placing with the given heuristic.
func NewGeneticSolver(config GeneticConfig, h Heuristic) *GeneticSolver {
	return &GeneticSolver{Config: config, Heuristic: h}
}

// Pack implements Solver.
func (s *GeneticSolver) Pack(sizes []model.Size, width, height float64) ([]model.Point, error) {
	if len(sizes) == 0 {
		return []model.Point{}, nil
	}
	if !mayFit(sizes, width, height) {
		return nil, ErrPackingImpossible
	}

	run := &geneticRun{
		config:    s.Config,
		sizes:     sizes,
		width:     width,
		height:    height,
		heuristic: s.Heuristic,
		rng:       rand.New(rand.NewSource(s.Config.Seed)),
	}
	if points, ok := run.search(); ok {
		return points, nil
	}
	return nil, ErrPackingImpossible
}

// chromosome is an insertion order over the sizes.
type chromosome struct {
	order   []int
	fitness float64 // area placed
	points  []model.Point
	full    bool
}

type geneticRun struct {
	config    GeneticConfig
	sizes     []model.Size
	width     float64
	height    float64
	heuristic Heuristic
	rng       *rand.Rand
}

// search evolves the population until some chromosome places every size.
func (g *geneticRun) search() ([]model.Point, bool) {
	population := g.initPopulation()
	for i := range population {
		if g.evaluate(&population[i]) {
			return population[i].points, true
		}
	}

	for gen := 0; gen < g.config.Generations; gen++ {
		sort.SliceStable(population, func(i, j int) bool {
			return population[i].fitness > population[j].fitness
		})

		next := make([]chromosome, 0, len(population))
		for i := 0; i < min(g.config.EliteCount, len(population)); i++ {
			next = append(next, copyChromosome(population[i]))
		}

		for len(next) < len(population) {
			parent1 := g.tournamentSelect(population)
			parent2 := g.tournamentSelect(population)
			child := g.orderCrossover(parent1, parent2)
			g.mutate(&child)
			if g.evaluate(&child) {
				return child.points, true
			}
			next = append(next, child)
		}
		population = next
	}
	return nil, false
}

// initPopulation seeds one chromosome with the area-descending order and
// fills the rest with random permutations.
func (g *geneticRun) initPopulation() []chromosome {
	size := max(g.config.PopulationSize, 1)
	population := make([]chromosome, size)
	population[0] = chromosome{order: orderIndices(g.sizes, SortArea)}
	for i := 1; i < size; i++ {
		population[i] = chromosome{order: g.rng.Perm(len(g.sizes))}
	}
	return population
}

// evaluate packs the sizes in chromosome order, skipping any that do not fit,
// and reports whether all of them were placed.
func (g *geneticRun) evaluate(c *chromosome) bool {
	packer := newMaxRectsPacker(g.width, g.height, g.heuristic)
	points := make([]model.Point, len(g.sizes))
	placed := 0
	c.fitness = 0
	for _, i := range c.order {
		x, y, ok := packer.insert(g.sizes[i].Width, g.sizes[i].Height)
		if !ok {
			continue
		}
		points[i] = model.Point{X: x, Y: y}
		c.fitness += g.sizes[i].Area()
		placed++
	}
	c.full = placed == len(g.sizes)
	if c.full {
		c.points = points
	}
	return c.full
}

// tournamentSelect picks the best individual from a random tournament.
func (g *geneticRun) tournamentSelect(population []chromosome) chromosome {
	best := population[g.rng.Intn(len(population))]
	for i := 1; i < g.config.TournamentSize; i++ {
		candidate := population[g.rng.Intn(len(population))]
		if candidate.fitness > best.fitness {
			best = candidate
		}
	}
	return copyChromosome(best)
}

// orderCrossover implements Order Crossover (OX1): a slice of parent1 is kept
// in place and the gaps are filled in parent2's order.
func (g *geneticRun) orderCrossover(parent1, parent2 chromosome) chromosome {
	n := len(parent1.order)
	if n <= 2 {
		return copyChromosome(parent1)
	}

	point1 := g.rng.Intn(n)
	point2 := g.rng.Intn(n)
	if point1 > point2 {
		point1, point2 = point2, point1
	}

	child := chromosome{order: make([]int, n)}
	inSegment := make([]bool, n)
	for i := point1; i <= point2; i++ {
		child.order[i] = parent1.order[i]
		inSegment[parent1.order[i]] = true
	}

	childIdx := (point2 + 1) % n
	for _, idx := range parent2.order {
		if !inSegment[idx] {
			child.order[childIdx] = idx
			childIdx = (childIdx + 1) % n
		}
	}
	return child
}

// mutate applies a swap and, less often, a segment reversal.
func (g *geneticRun) mutate(c *chromosome) {
	n := len(c.order)
	if n < 2 {
		return
	}

	if g.rng.Float64() < g.config.MutationRate {
		i, j := g.rng.Intn(n), g.rng.Intn(n)
		c.order[i], c.order[j] = c.order[j], c.order[i]
	}

	if g.rng.Float64() < g.config.MutationRate*0.5 {
		i, j := g.rng.Intn(n), g.rng.Intn(n)
		if i > j {
			i, j = j, i
		}
		for ; i < j; i, j = i+1, j-1 {
			c.order[i], c.order[j] = c.order[j], c.order[i]
		}
	}
}

func copyChromosome(c chromosome) chromosome {
	order := make([]int, len(c.order))
	copy(order, c.order)
	return chromosome{order: order, fitness: c.fitness}
}
