package dedup

import (
	"cmp"
	"slices"
)

// DefaultThreshold is the minimum pair score for two records to be grouped.
const DefaultThreshold = 0.6

// Record is anything that can be checked for duplicates.
// DedupKey must be unique within one call; it is never compared.
type Record interface {
	DedupKey() string
	DedupFields() Fields
}

// Group is a cluster of at least two records that likely describe the same
// entity. Members keep the order in which they were discovered.
type Group[T Record] struct {
	Members []T      `json:"group"`
	Score   float64  `json:"score"`
	Reasons []string `json:"reasons"`
}

// FindDuplicateGroups clusters records whose pair score reaches threshold.
//
// Clustering is greedy: each unassigned record seeds a group and only later
// unassigned records are compared against that seed. A record joins at most
// one group. Groups are returned by descending score.
func FindDuplicateGroups[T Record](records []T, threshold float64) []Group[T] {
	return Detect(records, Options{Threshold: threshold, Clustering: ClusterGreedy})
}

// Detect clusters records with the given options.
func Detect[T Record](records []T, opts Options) []Group[T] {
	fields := make([]Fields, len(records))
	for i, r := range records {
		fields[i] = opts.prepare(r.DedupFields())
	}

	var groups []Group[T]
	if opts.Clustering == ClusterTransitive {
		groups = transitiveGroups(records, fields, opts.Threshold)
	} else {
		groups = greedyGroups(records, fields, opts.Threshold)
	}

	slices.SortStableFunc(groups, func(a, b Group[T]) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return groups
}

func greedyGroups[T Record](records []T, fields []Fields, threshold float64) []Group[T] {
	groups := []Group[T]{}
	processed := make([]bool, len(records))

	for i := range records {
		if processed[i] {
			continue
		}

		members := []int{i}
		var maxScore float64
		reasons := newReasonSet()

		for j := i + 1; j < len(records); j++ {
			if processed[j] {
				continue
			}
			s := CalculateDuplicateScore(fields[i], fields[j])
			if s.Score >= threshold {
				members = append(members, j)
				maxScore = max(maxScore, s.Score)
				reasons.add(s.Reasons...)
			}
		}

		if len(members) < 2 {
			continue
		}
		for _, m := range members {
			processed[m] = true
		}
		groups = append(groups, newGroup(records, members, maxScore, reasons))
	}

	return groups
}

// transitiveGroups joins every pair that crosses the threshold, so A~B and
// B~C put A, B and C together even when A and C differ.
func transitiveGroups[T Record](records []T, fields []Fields, threshold float64) []Group[T] {
	uf := newUnionFind(len(records))
	scores := make([]float64, len(records))
	reasons := make([]*reasonSet, len(records))
	for i := range reasons {
		reasons[i] = newReasonSet()
	}

	for i := range records {
		for j := i + 1; j < len(records); j++ {
			s := CalculateDuplicateScore(fields[i], fields[j])
			if s.Score < threshold {
				continue
			}
			ri, rj := uf.find(i), uf.find(j)
			root := uf.union(ri, rj)
			other := ri
			if root == ri {
				other = rj
			}
			if other != root {
				scores[root] = max(scores[root], scores[other])
				reasons[root].add(reasons[other].items...)
			}
			scores[root] = max(scores[root], s.Score)
			reasons[root].add(s.Reasons...)
		}
	}

	byRoot := make(map[int][]int)
	var roots []int
	for i := range records {
		root := uf.find(i)
		if _, ok := byRoot[root]; !ok {
			roots = append(roots, root)
		}
		byRoot[root] = append(byRoot[root], i)
	}

	groups := []Group[T]{}
	for _, root := range roots {
		members := byRoot[root]
		if len(members) < 2 {
			continue
		}
		groups = append(groups, newGroup(records, members, scores[root], reasons[root]))
	}
	return groups
}

func newGroup[T Record](records []T, members []int, score float64, reasons *reasonSet) Group[T] {
	g := Group[T]{
		Members: make([]T, 0, len(members)),
		Score:   score,
		Reasons: reasons.items,
	}
	for _, m := range members {
		g.Members = append(g.Members, records[m])
	}
	return g
}

// reasonSet keeps reasons unique in first-seen order.
type reasonSet struct {
	seen  map[string]struct{}
	items []string
}

func newReasonSet() *reasonSet {
	return &reasonSet{seen: make(map[string]struct{}), items: []string{}}
}

func (s *reasonSet) add(reasons ...string) {
	for _, r := range reasons {
		if _, ok := s.seen[r]; ok {
			continue
		}
		s.seen[r] = struct{}{}
		s.items = append(s.items, r)
	}
}

type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

// union merges the sets rooted at a and b and returns the new root.
func (u *unionFind) union(a, b int) int {
	if a == b {
		return a
	}
	if u.rank[a] < u.rank[b] {
		a, b = b, a
	}
	u.parent[b] = a
	if u.rank[a] == u.rank[b] {
		u.rank[a]++
	}
	return a
}
