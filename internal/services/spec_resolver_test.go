package services

import (
	"reflect"
	"testing"

	domain "github.com/vaporhouse/api/internal/domain"
)

func variantProduct() Product {
	return Product{
		ID:    "prod-ejuice-1",
		Name:  "Cloud Nine E-Juice",
		Price: 45000,
		Stock: map[string]int{
			"main":       5,
			"mirpur":     3,
			"chittagong": 0,
		},
		BranchSpecifications: map[string]BranchSpecification{
			"main": {
				domain.DimensionNicotineStrength: {"3mg", "6mg"},
				domain.DimensionVGPGRatio:        {"70/30"},
			},
			"mirpur": {
				domain.DimensionNicotineStrength: {"6mg"},
				domain.DimensionVGPGRatio:        {"70/30"},
			},
		},
	}
}

func TestAvailableBranchesFiltersZeroStock(t *testing.T) {
	resolver := NewSpecificationResolver()

	got := resolver.AvailableBranches(variantProduct())
	want := []string{"main", "mirpur"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("AvailableBranches = %v, want %v", got, want)
	}
}

func TestIsFulfillable(t *testing.T) {
	resolver := NewSpecificationResolver()
	product := variantProduct()

	cases := []struct {
		name      string
		branch    string
		selection SelectedOptions
		want      bool
	}{
		{"value stocked at branch", "main", SelectedOptions{domain.DimensionNicotineStrength: "3mg"}, true},
		{"value not stocked at branch", "mirpur", SelectedOptions{domain.DimensionNicotineStrength: "3mg"}, false},
		{"case-insensitive value match", "main", SelectedOptions{domain.DimensionNicotineStrength: "3MG"}, true},
		{"partial selection only constrains chosen dimensions", "mirpur", SelectedOptions{domain.DimensionVGPGRatio: "70/30"}, true},
		{"empty value imposes no constraint", "mirpur", SelectedOptions{domain.DimensionNicotineStrength: "  "}, true},
		{"zero stock always fails", "chittagong", nil, false},
		{"unknown branch fails", "uttara", nil, false},
		{"branch casing is normalised", "MAIN", SelectedOptions{domain.DimensionNicotineStrength: "6mg"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := resolver.IsFulfillable(product, tc.branch, tc.selection); got != tc.want {
				t.Fatalf("IsFulfillable(%q, %v) = %v, want %v", tc.branch, tc.selection, got, tc.want)
			}
		})
	}
}

func TestIsFulfillableWithoutSpecRecord(t *testing.T) {
	resolver := NewSpecificationResolver()
	product := Product{
		ID:    "prod-device-1",
		Name:  "Pod Device",
		Price: 250000,
		Stock: map[string]int{"main": 2},
	}

	if !resolver.IsFulfillable(product, "main", SelectedOptions{domain.DimensionColors: "black"}) {
		t.Fatal("branch without a specification record should impose no variant constraint")
	}
}

func TestFulfillableBranches(t *testing.T) {
	resolver := NewSpecificationResolver()
	product := variantProduct()

	got := resolver.FulfillableBranches(product, SelectedOptions{domain.DimensionNicotineStrength: "3mg"})
	want := []string{"main"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FulfillableBranches = %v, want %v", got, want)
	}

	got = resolver.FulfillableBranches(product, nil)
	want = []string{"main", "mirpur"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FulfillableBranches with empty selection = %v, want %v", got, want)
	}
}

func TestCollapsedValue(t *testing.T) {
	resolver := NewSpecificationResolver()
	product := variantProduct()

	value, ok := resolver.CollapsedValue(product, domain.DimensionVGPGRatio)
	if !ok || value != "70/30" {
		t.Fatalf("CollapsedValue(vgPgRatio) = (%q, %v), want (\"70/30\", true)", value, ok)
	}

	if _, ok := resolver.CollapsedValue(product, domain.DimensionNicotineStrength); ok {
		t.Fatal("dimension with multiple values at a branch must not collapse")
	}

	if _, ok := resolver.CollapsedValue(product, domain.DimensionColors); ok {
		t.Fatal("dimension the product does not use must not collapse")
	}
}

func TestOptionValuesUnionsAcrossBranches(t *testing.T) {
	resolver := NewSpecificationResolver()
	product := variantProduct()
	product.BranchSpecifications["mirpur"][domain.DimensionNicotineStrength] = []string{"6MG", "12mg"}

	got := resolver.OptionValues(product, domain.DimensionNicotineStrength)
	want := []string{"12mg", "3mg", "6mg"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("OptionValues = %v, want %v", got, want)
	}
}
