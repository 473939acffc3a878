package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/milosgajdos/go-ffbs/matrix"
	"gonum.org/v1/gonum/mat"
)

var errEmpty = errors.New("empty matrix")

// vec wraps data in a vector; it returns an empty vector for empty data.
func vec(data []float64) *mat.VecDense {
	if len(data) == 0 {
		return &mat.VecDense{}
	}

	return mat.NewVecDense(len(data), data)
}

func rawVec(v mat.Vector) []float64 {
	data := make([]float64, v.Len())
	for i := range data {
		data[i] = v.AtVec(i)
	}

	return data
}

// dense creates a matrix from its rows.
func dense(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errEmpty
	}

	r, c := len(rows), len(rows[0])
	m := mat.NewDense(r, c, nil)
	for i, row := range rows {
		if len(row) != c {
			return nil, fmt.Errorf("row %d length %d != %d", i, len(row), c)
		}
		m.SetRow(i, row)
	}

	return m, nil
}

// sym creates a symmetric matrix from its rows.
func sym(rows [][]float64) (*mat.SymDense, error) {
	m, err := dense(rows)
	if err != nil {
		return nil, err
	}

	r, c := m.Dims()
	if r != c {
		return nil, fmt.Errorf("matrix not square: [%d x %d]", r, c)
	}

	s := mat.NewSymDense(r, nil)
	for i := 0; i < r; i++ {
		for j := i; j < c; j++ {
			if math.Abs(m.At(i, j)-m.At(j, i)) > matrix.SymTol {
				return nil, fmt.Errorf("matrix not symmetric at [%d, %d]", i, j)
			}
			s.SetSym(i, j, m.At(i, j))
		}
	}

	return s, nil
}

func rows(m mat.Matrix) [][]float64 {
	r, c := m.Dims()
	data := make([][]float64, r)
	for i := range data {
		data[i] = make([]float64, c)
		for j := range data[i] {
			data[i][j] = m.At(i, j)
		}
	}

	return data
}
