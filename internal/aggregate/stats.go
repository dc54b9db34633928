package aggregate

import "math"

func mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	m := sum / float64(len(values))
	return &m
}

// sampleStd returns the sample standard deviation (n-1 denominator), nil when
// fewer than two observations exist.
func sampleStd(values []float64) *float64 {
	if len(values) < 2 {
		return nil
	}
	m := *mean(values)
	var sumSq float64
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	s := math.Sqrt(sumSq / float64(len(values)-1))
	return &s
}

func maxOf(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return &m
}

func minOf(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return &m
}

type point struct {
	x float64
	y float64
}

// regressionSlope returns the least-squares slope of y against x, nil with
// fewer than three points or a degenerate x spread.
func regressionSlope(points []point) *float64 {
	if len(points) < 3 {
		return nil
	}
	n := float64(len(points))
	var sumX, sumY float64
	for _, p := range points {
		sumX += p.x
		sumY += p.y
	}
	meanX := sumX / n
	meanY := sumY / n

	var num, den float64
	for _, p := range points {
		dx := p.x - meanX
		num += dx * (p.y - meanY)
		den += dx * dx
	}
	if den == 0 {
		return nil
	}
	slope := num / den
	return &slope
}

func ratio(numerator, denominator *float64) *float64 {
	if numerator == nil || denominator == nil || *denominator == 0 {
		return nil
	}
	r := *numerator / *denominator
	return &r
}

func floatOf(v float64) *float64 { return &v }
