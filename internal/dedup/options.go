package dedup

import (
	"fmt"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Clustering selects how pairwise matches become groups.
type Clustering string

const (
	// ClusterGreedy compares later records only against each group's seed.
	ClusterGreedy Clustering = "greedy"
	// ClusterTransitive groups every chain of matching pairs.
	ClusterTransitive Clustering = "transitive"
)

// Options tune detection. The zero value has a threshold of 0 and groups
// everything; start from DefaultOptions instead.
type Options struct {
	Threshold  float64
	Clustering Clustering
	// FoldAccents compares "José" and "Jose" as equal.
	FoldAccents bool
}

// DefaultOptions returns greedy clustering at DefaultThreshold without accent folding.
func DefaultOptions() Options {
	return Options{
		Threshold:  DefaultThreshold,
		Clustering: ClusterGreedy,
	}
}

// Validate checks that the options are usable.
func (o Options) Validate() error {
	if o.Threshold < 0 || o.Threshold > 1 {
		return fmt.Errorf("threshold must be between 0 and 1, got %v", o.Threshold)
	}
	switch o.Clustering {
	case "", ClusterGreedy, ClusterTransitive:
	default:
		return fmt.Errorf("unknown clustering mode: %q", o.Clustering)
	}
	return nil
}

// Compare scores two records with the options applied.
func Compare(a, b Fields, opts Options) Score {
	return CalculateDuplicateScore(opts.prepare(a), opts.prepare(b))
}

func (o Options) prepare(f Fields) Fields {
	if !o.FoldAccents {
		return f
	}
	return Fields{
		Name:  FoldAccents(f.Name),
		Email: FoldAccents(f.Email),
		Phone: f.Phone,
	}
}

// FoldAccents removes combining marks, so "Koné" becomes "Kone".
// Strings that cannot be transformed are returned unchanged.
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}
