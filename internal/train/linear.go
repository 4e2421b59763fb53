package train

import (
	"fmt"
	"math"

	"stock-prediction-lab/internal/dataset"
)

// LinearTrainer fits ordinary least squares via the normal equations. The
// holdout split takes the chronological tail: shuffling would leak future
// prices into training.
type LinearTrainer struct {
	// TestSize is the holdout fraction. Zero means 0.2.
	TestSize float64
}

// Compile-time interface check.
var _ Trainer = (*LinearTrainer)(nil)

// Train fits the model on the head of the frame and evaluates on the tail.
// The frame's last column is the target; the rest are features.
func (t *LinearTrainer) Train(frame *dataset.Frame) (*Result, error) {
	testSize := t.TestSize
	if testSize <= 0 {
		testSize = 0.2
	}
	if testSize >= 1 {
		return nil, fmt.Errorf("train: test size %v out of range", testSize)
	}

	n := frame.Len()
	k := len(frame.Columns) - 1
	if k < 1 {
		return nil, fmt.Errorf("train: frame has no feature columns")
	}

	nTest := int(math.Round(float64(n) * testSize))
	if nTest < 1 {
		nTest = 1
	}
	nTrain := n - nTest
	if nTrain <= k+1 {
		return nil, fmt.Errorf("train: %d training rows for %d features", nTrain, k)
	}

	beta, err := fitOLS(frame.Rows[:nTrain], k)
	if err != nil {
		return nil, err
	}

	model := &Model{
		ModelType:    "linear_regression",
		Features:     append([]string{}, frame.Columns[:k]...),
		Target:       frame.Columns[k],
		Intercept:    beta[0],
		Coefficients: beta[1:],
	}

	actual := make([]float64, nTest)
	predicted := make([]float64, nTest)
	for i, row := range frame.Rows[nTrain:] {
		actual[i] = row[k]
		predicted[i] = model.Predict(row[:k])
	}

	return &Result{
		Model:     model,
		Metrics:   Evaluate(actual, predicted),
		TrainRows: nTrain,
		TestRows:  nTest,
	}, nil
}

// fitOLS solves the normal equations (XᵀX)β = Xᵀy for rows whose last value
// is the target. The returned vector is [intercept, coefficients...].
func fitOLS(rows [][]float64, k int) ([]float64, error) {
	dim := k + 1 // intercept term

	// Accumulate XᵀX and Xᵀy directly; no need to materialize X.
	xtx := make([][]float64, dim)
	for i := range xtx {
		xtx[i] = make([]float64, dim)
	}
	xty := make([]float64, dim)

	xi := make([]float64, dim)
	for _, row := range rows {
		xi[0] = 1
		copy(xi[1:], row[:k])
		y := row[k]

		for i := 0; i < dim; i++ {
			for j := 0; j < dim; j++ {
				xtx[i][j] += xi[i] * xi[j]
			}
			xty[i] += xi[i] * y
		}
	}

	beta, err := solve(xtx, xty)
	if err != nil {
		return nil, fmt.Errorf("fit ols: %w", err)
	}
	return beta, nil
}

// solve performs Gaussian elimination with partial pivoting on a copy of
// the inputs.
func solve(a [][]float64, b []float64) ([]float64, error) {
	n := len(b)
	m := make([][]float64, n)
	scale := 1.0
	for i := range m {
		m[i] = append(append([]float64{}, a[i]...), b[i])
		for _, v := range a[i] {
			scale = math.Max(scale, math.Abs(v))
		}
	}
	// Pivot tolerance relative to the matrix magnitude, so exact collinearity
	// is caught even when elimination leaves float noise behind.
	tol := 1e-9 * scale

	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(m[r][col]) > math.Abs(m[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(m[pivot][col]) < tol {
			return nil, fmt.Errorf("singular design matrix (collinear features)")
		}
		m[col], m[pivot] = m[pivot], m[col]

		for r := col + 1; r < n; r++ {
			f := m[r][col] / m[col][col]
			for c := col; c <= n; c++ {
				m[r][c] -= f * m[col][c]
			}
		}
	}

	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := m[i][n]
		for j := i + 1; j < n; j++ {
			sum -= m[i][j] * x[j]
		}
		x[i] = sum / m[i][i]
	}
	return x, nil
}
