package store

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrEmptyStore means no documents have been ingested yet. It is
	// user-correctable, not a system fault.
	ErrEmptyStore = errors.New("vector store is empty")

	// ErrDimensionMismatch signals a broken homogeneity invariant and is
	// never retried.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Metric selects the distance function used for ranking. Cosine is the
// default and the only metric exercised in production.
type Metric string

const (
	Cosine    Metric = "cosine"
	L1        Metric = "L1"
	L2        Metric = "L2"
	Chebyshev Metric = "Linf"
)

// ParseMetric maps a config value to a Metric, defaulting to cosine.
func ParseMetric(name string) (Metric, error) {
	switch Metric(name) {
	case Cosine, L1, L2, Chebyshev:
		return Metric(name), nil
	case "":
		return Cosine, nil
	default:
		return "", fmt.Errorf("unknown distance metric %q", name)
	}
}

// Match pairs a record with its distance to the query vector.
type Match struct {
	Record   Record
	Distance float64
}

// Rank scans every record, computes the distance to query, and returns the
// min(k, len(store)) closest matches in ascending distance. Equal distances
// keep insertion order (stable sort), so repeated calls with identical input
// produce identical output.
func Rank(query []float32, s *Store, k int, metric Metric) ([]Match, error) {
	if s == nil || s.Len() == 0 {
		return nil, ErrEmptyStore
	}
	if len(query) != s.Dimension() {
		return nil, fmt.Errorf("%w: store dimension %d, query dimension %d", ErrDimensionMismatch, s.Dimension(), len(query))
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	dist := distanceFunc(metric)
	matches := make([]Match, s.Len())
	for i, rec := range s.All() {
		matches[i] = Match{Record: rec, Distance: dist(query, rec.Embedding)}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})

	if k < len(matches) {
		matches = matches[:k]
	}
	return matches, nil
}

func distanceFunc(metric Metric) func(a, b []float32) float64 {
	switch metric {
	case L1:
		return cityblockDistance
	case L2:
		return euclideanDistance
	case Chebyshev:
		return chebyshevDistance
	default:
		return cosineDistance
	}
}

// cosineDistance is 1 - cos(a, b): 0 for identical direction, up to 2 for
// opposite. A zero vector on either side yields the maximum distance of 1.
func cosineDistance(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}

func cityblockDistance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += math.Abs(float64(a[i]) - float64(b[i]))
	}
	return sum
}

func euclideanDistance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

func chebyshevDistance(a, b []float32) float64 {
	var max float64
	for i := range a {
		if d := math.Abs(float64(a[i]) - float64(b[i])); d > max {
			max = d
		}
	}
	return max
}
