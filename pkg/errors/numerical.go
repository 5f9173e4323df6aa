package errors

import (
	"math"
)

// CheckScalar checks a single scalar value for NaN or Inf.
func CheckScalar(operation string, value float64, index int) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NewNumericalInstabilityError(operation, []float64{value}, index)
	}
	return nil
}

// CheckMatrix scans a matrix row by row and reports the first row containing
// NaN or Inf. The row index is carried in the error so the offending record
// can be located.
func CheckMatrix(operation string, matrix interface {
	At(int, int) float64
	Dims() (int, int)
}) error {
	rows, cols := matrix.Dims()
	for i := 0; i < rows; i++ {
		var unstable []float64
		for j := 0; j < cols; j++ {
			v := matrix.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				unstable = append(unstable, v)
			}
		}
		if len(unstable) > 0 {
			return NewNumericalInstabilityError(operation, unstable, i)
		}
	}
	return nil
}
