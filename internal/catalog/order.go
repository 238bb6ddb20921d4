package catalog

import (
	"slices"
	"strings"
)

// OrderPolicy ranks categories by name. Lower ranks come first; names missing from
// Ranks get DefaultRank and keep their relative order.
type OrderPolicy struct {
	Ranks       map[string]int
	DefaultRank int
}

// ParseOrder builds a policy from a comma-separated list of names, first name first.
// Unlisted names sort after every listed one.
func ParseOrder(csv string) OrderPolicy {
	p := OrderPolicy{Ranks: map[string]int{}}
	for _, name := range strings.Split(csv, ",") {
		key := normalize(name)
		if key == "" {
			continue
		}
		if _, dup := p.Ranks[key]; dup {
			continue
		}
		p.Ranks[key] = len(p.Ranks)
	}
	p.DefaultRank = len(p.Ranks)
	return p
}

// Rank returns the rank of a category name.
func (p OrderPolicy) Rank(name string) int {
	if r, ok := p.Ranks[normalize(name)]; ok {
		return r
	}
	return p.DefaultRank
}

// Sort orders categories by rank, then by name. It returns a new slice.
func (p OrderPolicy) Sort(cats []Category) []Category {
	out := slices.Clone(cats)
	slices.SortStableFunc(out, func(a, b Category) int {
		if ra, rb := p.Rank(a.Name), p.Rank(b.Name); ra != rb {
			return ra - rb
		}
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return out
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
