package layout

import (
	"io"
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/diagramtool/diagramtool/pkg/errors"
)

// Layout defaults, in diagram units (pixels for SVG output).
const (
	DefaultMargin      = 50.0
	DefaultEnumSpacing = 30.0
)

// Strategy names accepted by [ByName].
const (
	StrategyGraph = "graph"
	StrategyRows  = "rows"
)

// Box is an entity to place. Level, Orphan and Parents are only read by
// the row strategy.
type Box struct {
	Name    string
	Width   float64
	Height  float64
	Level   int
	Orphan  bool
	Parents []string
}

// Edge is an undirected adjacency between two classes, one per relation.
type Edge struct {
	From string
	To   string
}

// Point is the top-left corner of a placed box.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned frame.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Input is what a [Strategy] places: classes, their relation graph and the
// margin to keep between boxes. Enums are placed by the [Engine].
type Input struct {
	Classes []Box
	Enums   []Box
	Edges   []Edge
	Margin  float64
}

// Result maps entity names to positions.
type Result struct {
	Positions map[string]Point
}

// Strategy assigns positions to the classes of an Input.
type Strategy interface {
	Name() string
	Place(in Input) (Result, error)
}

// Names lists the accepted strategy names, default first.
func Names() []string { return []string{StrategyGraph, StrategyRows} }

// ByName returns the strategy registered under name; the empty name selects
// the graph-assignment default.
func ByName(name string) (Strategy, error) {
	switch strings.ToLower(name) {
	case "", StrategyGraph:
		return Assignment{}, nil
	case StrategyRows:
		return Rows{}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidStrategy,
		"unknown layout strategy %q (want one of %s)", name, strings.Join(Names(), ", "))
}

// Engine runs a strategy and then applies the steps shared by all
// strategies: the enum row and optional recentring.
type Engine struct {
	Strategy    Strategy
	Margin      float64
	EnumSpacing float64
	// Recenter moves the diagram so the mean of all box centres is the origin.
	Recenter bool
	Logger   *log.Logger
}

// WithDefaults fills unset fields with the package defaults.
func (e Engine) WithDefaults() Engine {
	if e.Strategy == nil {
		e.Strategy = Assignment{}
	}
	if e.Margin <= 0 {
		e.Margin = DefaultMargin
	}
	if e.EnumSpacing <= 0 {
		e.EnumSpacing = DefaultEnumSpacing
	}
	if e.Logger == nil {
		e.Logger = log.New(io.Discard)
	}
	return e
}

// Layout places every class and enum of in.
func (e Engine) Layout(in Input) (Result, error) {
	e = e.WithDefaults()
	in.Margin = e.Margin
	if err := validate(in); err != nil {
		return Result{}, err
	}

	res, err := e.Strategy.Place(in)
	if err != nil {
		return Result{}, err
	}
	for _, b := range in.Classes {
		if _, ok := res.Positions[b.Name]; !ok {
			return Result{}, errors.New(errors.ErrCodeInternal,
				"strategy %s left class %s unplaced", e.Strategy.Name(), b.Name)
		}
	}

	placeEnums(res, in.Classes, in.Enums, e.Margin, e.EnumSpacing)
	if e.Recenter {
		recenter(res, slices.Concat(in.Classes, in.Enums))
	}
	e.Logger.Debug("layout complete",
		"strategy", e.Strategy.Name(),
		"classes", len(in.Classes),
		"enums", len(in.Enums))
	return res, nil
}

func validate(in Input) error {
	seen := make(map[string]bool, len(in.Classes)+len(in.Enums))
	for _, b := range slices.Concat(in.Classes, in.Enums) {
		if seen[b.Name] {
			return errors.New(errors.ErrCodeInvariant, "entity %s placed twice", b.Name)
		}
		if b.Width < 0 || b.Height < 0 || math.IsNaN(b.Width) || math.IsNaN(b.Height) {
			return errors.New(errors.ErrCodeInvalidInput, "entity %s has invalid size %gx%g", b.Name, b.Width, b.Height)
		}
		seen[b.Name] = true
	}
	return nil
}

// placeEnums puts enums on one row below the lowest class, left to right.
func placeEnums(res Result, classes, enums []Box, margin, spacing float64) {
	y := margin
	if len(classes) > 0 {
		y = Bounds(classes, res.Positions, 0).bottom() + margin
	}
	x := margin
	for _, b := range enums {
		res.Positions[b.Name] = Point{X: x, Y: y}
		x += b.Width + spacing
	}
}

func recenter(res Result, boxes []Box) {
	if len(boxes) == 0 {
		return
	}
	var cx, cy float64
	for _, b := range boxes {
		p := res.Positions[b.Name]
		cx += p.X + b.Width/2
		cy += p.Y + b.Height/2
	}
	cx /= float64(len(boxes))
	cy /= float64(len(boxes))
	for _, b := range boxes {
		p := res.Positions[b.Name]
		res.Positions[b.Name] = Point{X: p.X - cx, Y: p.Y - cy}
	}
}

// Bounds returns the frame enclosing the placed boxes, grown by margin on
// every side. Unplaced boxes are ignored.
func Bounds(boxes []Box, positions map[string]Point, margin float64) Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, b := range boxes {
		p, ok := positions[b.Name]
		if !ok {
			continue
		}
		minX, minY = min(minX, p.X), min(minY, p.Y)
		maxX, maxY = max(maxX, p.X+b.Width), max(maxY, p.Y+b.Height)
	}
	if math.IsInf(minX, 1) {
		return Rect{Width: 2 * margin, Height: 2 * margin}
	}
	return Rect{
		X:      minX - margin,
		Y:      minY - margin,
		Width:  maxX - minX + 2*margin,
		Height: maxY - minY + 2*margin,
	}
}

func (r Rect) bottom() float64 { return r.Y + r.Height }

// Overlaps reports whether two placed boxes intersect on both axes.
func Overlaps(a Box, pa Point, b Box, pb Point) bool {
	return pa.X < pb.X+b.Width && pb.X < pa.X+a.Width &&
		pa.Y < pb.Y+b.Height && pb.Y < pa.Y+a.Height
}
