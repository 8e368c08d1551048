package services

import (
	"sort"
	"strings"
)

// specificationResolver is stateless; every method is a pure function of the
// product passed in.
type specificationResolver struct{}

// NewSpecificationResolver constructs the branch/variant availability resolver.
func NewSpecificationResolver() SpecificationResolver {
	return specificationResolver{}
}

// AvailableBranches lists every branch selling the product at all: branch keys
// in the stock map with a positive unit count, independent of any variant
// selection. Sorted for deterministic output.
func (specificationResolver) AvailableBranches(product Product) []string {
	branches := make([]string, 0, len(product.Stock))
	for branch, units := range product.Stock {
		branch = normaliseBranch(branch)
		if branch == "" || units <= 0 {
			continue
		}
		branches = append(branches, branch)
	}
	sort.Strings(branches)
	return branches
}

// IsFulfillable reports whether the branch can fulfil the product under the
// given (possibly partial) selection. Zero stock always fails. A branch with
// no specification record imposes no variant constraint, as does a dimension
// the record does not list; every supplied non-empty dimension that the record
// does list must contain the selected value.
func (specificationResolver) IsFulfillable(product Product, branch string, selection SelectedOptions) bool {
	branch = normaliseBranch(branch)
	if branch == "" || product.Stock[branch] <= 0 {
		return false
	}

	spec, ok := product.BranchSpecifications[branch]
	if !ok || len(spec) == 0 {
		return true
	}

	for dimension, value := range selection {
		value = strings.TrimSpace(value)
		if value == "" {
			// Not yet chosen; imposes no constraint.
			continue
		}
		allowed, ok := spec[dimension]
		if !ok || len(allowed) == 0 {
			continue
		}
		if !containsFold(allowed, value) {
			return false
		}
	}
	return true
}

// FulfillableBranches filters AvailableBranches down to those passing the
// selection. This is what a cart line's availableBranches is seeded from.
func (r specificationResolver) FulfillableBranches(product Product, selection SelectedOptions) []string {
	available := r.AvailableBranches(product)
	out := make([]string, 0, len(available))
	for _, branch := range available {
		if r.IsFulfillable(product, branch, selection) {
			out = append(out, branch)
		}
	}
	return out
}

// CollapsedValue reports the single display value for a dimension when every
// branch that lists the dimension offers exactly one, identical value. Callers
// then render the dimension as a fixed attribute instead of a selector.
func (specificationResolver) CollapsedValue(product Product, dimension Dimension) (string, bool) {
	collapsed := ""
	seen := false
	for _, spec := range product.BranchSpecifications {
		values := spec[dimension]
		if len(values) == 0 {
			continue
		}
		if len(values) > 1 {
			return "", false
		}
		value := strings.TrimSpace(values[0])
		if value == "" {
			continue
		}
		if seen && !strings.EqualFold(collapsed, value) {
			return "", false
		}
		collapsed = value
		seen = true
	}
	if !seen {
		return "", false
	}
	return collapsed, true
}

// OptionValues returns the union of the dimension's values across all
// branches. A value stocked at only one branch is still offered; per-branch
// fulfillability is what changes, not the option list. Sorted, deduplicated,
// empty when the product does not use the dimension.
func (specificationResolver) OptionValues(product Product, dimension Dimension) []string {
	seen := make(map[string]string)
	for _, spec := range product.BranchSpecifications {
		for _, value := range spec[dimension] {
			value = strings.TrimSpace(value)
			if value == "" {
				continue
			}
			key := strings.ToLower(value)
			if _, ok := seen[key]; !ok {
				seen[key] = value
			}
		}
	}

	out := make([]string, 0, len(seen))
	for _, value := range seen {
		out = append(out, value)
	}
	sort.Strings(out)
	return out
}

func normaliseBranch(branch string) string {
	return strings.ToLower(strings.TrimSpace(branch))
}

func containsFold(values []string, target string) bool {
	for _, value := range values {
		if strings.EqualFold(strings.TrimSpace(value), target) {
			return true
		}
	}
	return false
}
