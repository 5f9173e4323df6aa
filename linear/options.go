package linear

// Option is a function that configures LinearRegression
type Option func(*LinearRegression)

// WithFitIntercept sets whether to calculate the intercept
func WithFitIntercept(fit bool) Option {
	return func(lr *LinearRegression) {
		lr.fitIntercept = fit
	}
}

// WithRidge sets the value added to the diagonal of X^T X when the plain
// normal equation is singular
func WithRidge(epsilon float64) Option {
	return func(lr *LinearRegression) {
		lr.ridge = epsilon
	}
}

// WithParallelThreshold sets the row count above which design matrix
// construction and prediction are split across goroutines
func WithParallelThreshold(rows int) Option {
	return func(lr *LinearRegression) {
		lr.parallelThreshold = rows
	}
}
