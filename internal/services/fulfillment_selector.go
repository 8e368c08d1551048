package services

import (
	"sort"
	"strings"
)

// FulfillmentSelectorDeps configures branch selection. DefaultBranch is the
// fallback when no cart line carries branch availability; BranchPriority
// breaks coverage ties before the lexicographic fallback.
type FulfillmentSelectorDeps struct {
	DefaultBranch  string
	BranchPriority []string
}

type fulfillmentSelector struct {
	defaultBranch string
	priority      map[string]int
}

// NewFulfillmentSelector constructs the single-branch coverage selector.
func NewFulfillmentSelector(deps FulfillmentSelectorDeps) FulfillmentSelector {
	defaultBranch := normaliseBranch(deps.DefaultBranch)
	if defaultBranch == "" {
		defaultBranch = "main"
	}

	priority := make(map[string]int, len(deps.BranchPriority))
	for i, branch := range deps.BranchPriority {
		branch = normaliseBranch(branch)
		if branch == "" {
			continue
		}
		if _, ok := priority[branch]; !ok {
			priority[branch] = i
		}
	}

	return &fulfillmentSelector{
		defaultBranch: defaultBranch,
		priority:      priority,
	}
}

// Select picks the single branch that can fulfil the most cart lines, and
// returns it together with a branch summary mapping every observed branch to
// the product names it can fulfil. Lines with no available branches count
// toward no branch; an empty cart or a cart with no branch data at all falls
// back to the default branch with an empty summary.
func (s *fulfillmentSelector) Select(lines []CartLine) (string, map[string][]string) {
	coverage := make(map[string]int)
	summary := make(map[string][]string)

	for _, line := range lines {
		for _, branch := range line.AvailableBranches {
			branch = normaliseBranch(branch)
			if branch == "" {
				continue
			}
			coverage[branch]++
			summary[branch] = append(summary[branch], line.Product.Name)
		}
	}

	if len(coverage) == 0 {
		return s.defaultBranch, summary
	}

	branches := make([]string, 0, len(coverage))
	for branch := range coverage {
		branches = append(branches, branch)
	}
	sort.Slice(branches, func(i, j int) bool {
		a, b := branches[i], branches[j]
		if coverage[a] != coverage[b] {
			return coverage[a] > coverage[b]
		}
		pa, pb := s.priorityRank(a), s.priorityRank(b)
		if pa != pb {
			return pa < pb
		}
		return a < b
	})

	return branches[0], summary
}

func (s *fulfillmentSelector) priorityRank(branch string) int {
	if rank, ok := s.priority[strings.ToLower(branch)]; ok {
		return rank
	}
	return len(s.priority) + 1
}
