package layout

import (
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/diagramtool/diagramtool/pkg/errors"
)

func totalCost(cost mat.Matrix, assign []int) float64 {
	var sum float64
	for i, j := range assign {
		sum += cost.At(i, j)
	}
	return sum
}

// bruteForce returns the minimal cost over all injective row->column maps.
func bruteForce(cost mat.Matrix) float64 {
	rows, cols := cost.Dims()
	best := math.Inf(1)
	used := make([]bool, cols)
	var rec func(i int, acc float64)
	rec = func(i int, acc float64) {
		if i == rows {
			best = min(best, acc)
			return
		}
		for j := range cols {
			if used[j] {
				continue
			}
			used[j] = true
			rec(i+1, acc+cost.At(i, j))
			used[j] = false
		}
	}
	rec(0, 0)
	return best
}

func TestHungarian(t *testing.T) {
	tests := []struct {
		name string
		rows int
		cols int
		data []float64
		want []int
	}{
		{
			name: "classic",
			rows: 3, cols: 3,
			data: []float64{
				4, 1, 3,
				2, 0, 5,
				3, 2, 2,
			},
			want: []int{1, 0, 2},
		},
		{
			name: "rectangular",
			rows: 2, cols: 3,
			data: []float64{
				10, 1, 10,
				10, 1, 2,
			},
			want: []int{1, 2},
		},
		{
			name: "ties take lowest column",
			rows: 2, cols: 2,
			data: []float64{
				1, 1,
				1, 1,
			},
			want: []int{0, 1},
		},
		{
			name: "negative costs",
			rows: 2, cols: 2,
			data: []float64{
				-5, 0,
				0, -5,
			},
			want: []int{0, 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cost := mat.NewDense(tt.rows, tt.cols, tt.data)
			got, err := Hungarian(cost)
			if err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Hungarian = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHungarianIsOptimal(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for trial := range 50 {
		rows := 1 + r.IntN(6)
		cols := rows + r.IntN(3)
		data := make([]float64, rows*cols)
		for i := range data {
			data[i] = math.Round(r.Float64()*100) / 4
		}
		cost := mat.NewDense(rows, cols, data)

		assign, err := Hungarian(cost)
		if err != nil {
			t.Fatal(err)
		}
		seen := map[int]bool{}
		for _, j := range assign {
			if seen[j] {
				t.Fatalf("trial %d: column %d assigned twice: %v", trial, j, assign)
			}
			seen[j] = true
		}
		if got, want := totalCost(cost, assign), bruteForce(cost); math.Abs(got-want) > 1e-9 {
			t.Errorf("trial %d: cost %g, optimum %g", trial, got, want)
		}
	}
}

func TestHungarianErrors(t *testing.T) {
	if _, err := Hungarian(mat.NewDense(3, 2, nil)); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("more rows than columns: err = %v", err)
	}
	if _, err := Hungarian(mat.NewDense(1, 1, []float64{math.Inf(1)})); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("infinite cost: err = %v", err)
	}
}
