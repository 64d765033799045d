package projection

import "math"

func safeDivF(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	r := a / b
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }
func round3(f float64) float64 { return math.Round(f*1000) / 1000 }

func paginate[T any](rows []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) {
		return []T{}
	}
	end := offset + limit
	if limit < 0 || end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

// Inline returns the first n items, the ones shown without expanding.
func Inline[T any](items []T, n int) []T {
	if n < 0 {
		n = 0
	}
	return paginate(items, n, 0)
}

// Overflow returns what Inline leaves out.
func Overflow[T any](items []T, n int) []T {
	if n < 0 {
		n = 0
	}
	return paginate(items, -1, n)
}
