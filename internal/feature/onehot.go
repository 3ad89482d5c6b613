package feature

import (
	"slices"
	"sort"
)

const otherDomain = "other"

// DomainEncoder one-hot encodes normalized sender domains over the most
// frequent training domains plus a fixed "other" bucket. Categories is
// sorted alphabetically and always contains "other", so every domain seen
// at inference time maps to exactly one column.
type DomainEncoder struct {
	Categories []string `json:"categories"`
}

// FitDomains ranks domains by training frequency (ties alphabetical), keeps
// the top k and adds "other". The bucket is a fit-time category even when no
// training row lands in it; rare and unseen domains need a column too.
func FitDomains(domains []string, k int) *DomainEncoder {
	counts := make(map[string]int)
	for _, d := range domains {
		counts[d]++
	}
	ranked := make([]string, 0, len(counts))
	for d := range counts {
		ranked = append(ranked, d)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if counts[ranked[i]] != counts[ranked[j]] {
			return counts[ranked[i]] > counts[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	if !slices.Contains(ranked, otherDomain) {
		ranked = append(ranked, otherDomain)
	}
	sort.Strings(ranked)
	return &DomainEncoder{Categories: ranked}
}

// Width returns the number of one-hot columns.
func (e *DomainEncoder) Width() int { return len(e.Categories) }

// Index returns the column for a domain. Anything outside the fitted
// categories folds into "other" rather than erroring.
func (e *DomainEncoder) Index(domain string) int {
	if i, ok := slices.BinarySearch(e.Categories, domain); ok {
		return i
	}
	i, _ := slices.BinarySearch(e.Categories, otherDomain)
	return i
}
