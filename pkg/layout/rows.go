package layout

import (
	"cmp"
	"math"
	"slices"
)

// Rows is the row-packing strategy: one row per inheritance level, boxes
// packed left to right and shifted right past any box they would overlap.
// Orphans fill the first row with room to spare, else open new rows.
type Rows struct {
	// MaxRowWidth bounds the right edge of a row receiving orphans. Zero
	// uses the widest inheritance row, or room for ceil(sqrt(n)) of the
	// widest orphans when no class inherits, and never less than the
	// widest orphan plus margins.
	MaxRowWidth float64
}

func (Rows) Name() string { return StrategyRows }

// row holds the boxes of one row with their x positions. Y is assigned
// once all rows are known.
type row struct {
	boxes []Box
	xs    []float64
}

func (r *row) add(b Box, x float64) {
	r.boxes = append(r.boxes, b)
	r.xs = append(r.xs, x)
}

func (r *row) right() float64 {
	var right float64
	for i, b := range r.boxes {
		right = max(right, r.xs[i]+b.Width)
	}
	return right
}

func (r *row) height() float64 {
	var h float64
	for _, b := range r.boxes {
		h = max(h, b.Height)
	}
	return h
}

// fit shifts x right until a box of width w at x keeps margin clear of
// every box already in the row.
func (r *row) fit(x, w, margin float64) float64 {
	for moved := true; moved; {
		moved = false
		for i, b := range r.boxes {
			if x < r.xs[i]+b.Width+margin && r.xs[i] < x+w+margin {
				x = r.xs[i] + b.Width + margin
				moved = true
			}
		}
	}
	return x
}

func (s Rows) Place(in Input) (Result, error) {
	m := in.Margin
	var inherited, orphans []Box
	for _, b := range in.Classes {
		if b.Orphan {
			orphans = append(orphans, b)
		} else {
			inherited = append(inherited, b)
		}
	}
	slices.SortStableFunc(inherited, func(a, b Box) int { return cmp.Compare(a.Level, b.Level) })

	// Parents sit in earlier rows, so their x is known when a child is
	// placed; children prefer to be centred under them.
	centres := make(map[string]float64, len(in.Classes))
	var rows []*row
	for i := 0; i < len(inherited); {
		level := inherited[i].Level
		r := &row{}
		cursor := m
		for ; i < len(inherited) && inherited[i].Level == level; i++ {
			b := inherited[i]
			x := cursor
			if c, ok := parentCentre(b, centres); ok {
				x = max(m, c-b.Width/2)
			}
			x = r.fit(x, b.Width, m)
			r.add(b, x)
			centres[b.Name] = x + b.Width/2
			cursor = max(cursor, x+b.Width+m)
		}
		rows = append(rows, r)
	}

	var widest float64
	for _, b := range orphans {
		widest = max(widest, b.Width)
	}
	limit := s.MaxRowWidth
	if limit <= 0 {
		for _, r := range rows {
			limit = max(limit, r.right()+m)
		}
		if len(rows) == 0 && len(orphans) > 0 {
			cols := math.Ceil(math.Sqrt(float64(len(orphans))))
			limit = m + cols*(widest+m)
		}
	}
	limit = max(limit, widest+2*m)

	for _, b := range orphans {
		placed := false
		for _, r := range rows {
			x := r.right() + m
			if x+b.Width+m <= limit {
				r.add(b, x)
				placed = true
				break
			}
		}
		if !placed {
			r := &row{}
			r.add(b, m)
			rows = append(rows, r)
		}
	}

	res := Result{Positions: make(map[string]Point, len(in.Classes)+len(in.Enums))}
	y := m
	for _, r := range rows {
		for i, b := range r.boxes {
			res.Positions[b.Name] = Point{X: r.xs[i], Y: y}
		}
		y += r.height() + m
	}
	return res, nil
}

func parentCentre(b Box, centres map[string]float64) (float64, bool) {
	var sum float64
	n := 0
	for _, p := range b.Parents {
		if c, ok := centres[p]; ok {
			sum += c
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
