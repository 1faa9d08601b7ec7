package layout

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/diagramtool/diagramtool/pkg/errors"
)

// Hungarian solves the rectangular assignment problem for an r×c cost
// matrix with r <= c: it returns, for every row, a distinct column such
// that the total cost is minimal. It runs in O(r²c) using row and column
// potentials and shortest augmenting paths. Ties go to the lowest column.
func Hungarian(cost mat.Matrix) ([]int, error) {
	rows, cols := cost.Dims()
	if rows > cols {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"assignment needs at least as many columns as rows, got %dx%d", rows, cols)
	}
	for i := range rows {
		for j := range cols {
			if v := cost.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errors.New(errors.ErrCodeInvalidInput, "cost[%d][%d] is not finite", i, j)
			}
		}
	}

	// One-based indices; column 0 is a virtual source.
	u := make([]float64, rows+1)
	v := make([]float64, cols+1)
	match := make([]int, cols+1) // row matched to each column
	way := make([]int, cols+1)

	for i := 1; i <= rows; i++ {
		match[0] = i
		j0 := 0
		minv := make([]float64, cols+1)
		for j := range minv {
			minv[j] = math.Inf(1)
		}
		used := make([]bool, cols+1)
		for {
			used[j0] = true
			i0 := match[j0]
			delta := math.Inf(1)
			j1 := 0
			for j := 1; j <= cols; j++ {
				if used[j] {
					continue
				}
				if cur := cost.At(i0-1, j-1) - u[i0] - v[j]; cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			for j := 0; j <= cols; j++ {
				if used[j] {
					u[match[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if match[j0] == 0 {
				break
			}
		}
		for j0 != 0 {
			j1 := way[j0]
			match[j0] = match[j1]
			j0 = j1
		}
	}

	assign := make([]int, rows)
	for j := 1; j <= cols; j++ {
		if match[j] != 0 {
			assign[match[j]-1] = j - 1
		}
	}
	return assign, nil
}
