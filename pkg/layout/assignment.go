package layout

import (
	"cmp"
	"math"
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"
	"gonum.org/v1/gonum/mat"
)

// Assignment is the graph-assignment strategy. Classes are ordered
// breadth-first over the relation graph, a square grid with one point per
// class is laid out with spacing wide enough for the largest box, and
// classes are matched to grid points by a minimum-cost assignment where
// cost(class, point) = (width+margin) + (height+margin) + |point|.
//
// Every class gets a distinct grid point. Since the grid has exactly as
// many points as classes, solver ties follow the breadth-first order, so
// related classes end up close together on the grid.
type Assignment struct{}

func (Assignment) Name() string { return StrategyGraph }

func (Assignment) Place(in Input) (Result, error) {
	res := Result{Positions: make(map[string]Point, len(in.Classes)+len(in.Enums))}
	n := len(in.Classes)
	if n == 0 {
		return res, nil
	}
	m := in.Margin

	order := breadthFirstOrder(in.Classes, in.Edges)
	grid := gridPoints(n, spacing(in.Classes, m))

	cost := mat.NewDense(n, n, nil)
	for i, b := range order {
		size := (b.Width + m) + (b.Height + m)
		for j, p := range grid {
			cost.Set(i, j, size+math.Hypot(p.X, p.Y))
		}
	}
	assign, err := Hungarian(cost)
	if err != nil {
		return Result{}, err
	}
	for i, j := range assign {
		p := grid[j]
		res.Positions[order[i].Name] = Point{X: p.X + m, Y: p.Y + m}
	}
	return res, nil
}

// spacing is the largest box dimension plus the margin.
func spacing(boxes []Box, margin float64) float64 {
	var d float64
	for _, b := range boxes {
		d = max(d, b.Width, b.Height)
	}
	return d + margin
}

// gridPoints lays out n points row-major over a ceil(sqrt(n)) wide grid.
func gridPoints(n int, step float64) []Point {
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	pts := make([]Point, n)
	for k := range pts {
		pts[k] = Point{X: float64(k%cols) * step, Y: float64(k/cols) * step}
	}
	return pts
}

// orderedGraph yields neighbours by ascending node ID so traversals are
// deterministic.
type orderedGraph struct {
	*simple.UndirectedGraph
}

func (g orderedGraph) From(id int64) graph.Nodes {
	nodes := graph.NodesOf(g.UndirectedGraph.From(id))
	slices.SortFunc(nodes, func(a, b graph.Node) int { return cmp.Compare(a.ID(), b.ID()) })
	return iterator.NewOrderedNodes(nodes)
}

// breadthFirstOrder returns the classes in breadth-first order over the
// undirected relation graph, visiting components by first appearance.
// Edges to names that are not classes are ignored.
func breadthFirstOrder(classes []Box, edges []Edge) []Box {
	g := orderedGraph{simple.NewUndirectedGraph()}
	index := make(map[string]int64, len(classes))
	for i, b := range classes {
		index[b.Name] = int64(i)
		g.AddNode(simple.Node(i))
	}
	for _, e := range edges {
		u, okU := index[e.From]
		v, okV := index[e.To]
		if !okU || !okV || u == v {
			continue
		}
		g.SetEdge(g.NewEdge(simple.Node(u), simple.Node(v)))
	}

	order := make([]Box, 0, len(classes))
	bf := traverse.BreadthFirst{
		Visit: func(n graph.Node) { order = append(order, classes[n.ID()]) },
	}
	for i := range classes {
		start := g.Node(int64(i))
		if bf.Visited(start) {
			continue
		}
		bf.Walk(g, start, nil)
	}
	return order
}
