package chart

import "testing"

func TestNormalizeCategory(t *testing.T) {
	tests := map[string]string{
		"":        CategoryOther,
		"  ":      CategoryOther,
		"POLICY":  CategorySupply,
		"SUPPLY":  CategorySupply,
		"LNG":     CategoryLNG,
		"UNKNOWN": "UNKNOWN",
	}
	for in, want := range tests {
		if got := NormalizeCategory(in); got != want {
			t.Fatalf("NormalizeCategory(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestCategorySetAliasIsSymmetric(t *testing.T) {
	supply := NewCategorySet(CategorySupply)
	if !supply.Has(CategoryPolicy) {
		t.Fatalf("set{SUPPLY}.Has(POLICY) = false; want true")
	}
	if _, ok := supply[CategoryPolicy]; !ok {
		t.Fatalf("set{SUPPLY} missing POLICY member")
	}

	policy := NewCategorySet(CategoryPolicy)
	if !policy.Has(CategorySupply) {
		t.Fatalf("set{POLICY}.Has(SUPPLY) = false; want true")
	}
	if _, ok := policy[CategorySupply]; !ok {
		t.Fatalf("set{POLICY} missing SUPPLY member")
	}

	if supply.Has(CategoryLNG) {
		t.Fatalf("set{SUPPLY}.Has(LNG) = true; want false")
	}
}

func TestCategorySetEmptyCategoryIsOther(t *testing.T) {
	s := NewCategorySet(CategoryOther)
	if !s.Has("") {
		t.Fatalf("set{OTHER}.Has(\"\") = false; want true")
	}
}

func TestPaletteAliasColor(t *testing.T) {
	p := DefaultPalette()
	if p.Color(CategoryPolicy) != p.Color(CategorySupply) {
		t.Fatalf("Color(POLICY) = %q; want Color(SUPPLY) = %q", p.Color(CategoryPolicy), p.Color(CategorySupply))
	}
	if p.Color("NOT_A_CATEGORY") != p.Color(CategoryOther) {
		t.Fatalf("unknown category color = %q; want OTHER color %q", p.Color("NOT_A_CATEGORY"), p.Color(CategoryOther))
	}
	if got := p.Color(CategoryPrice); got != PriceColor {
		t.Fatalf("Color(PRICE) = %q; want %q", got, PriceColor)
	}
}

func TestPaletteMergeStoresPolicyUnderSupply(t *testing.T) {
	p := DefaultPalette().Merge(map[string]string{"policy": "#123456", "lng": " #abcdef ", "macro": ""})
	if got := p.Color(CategorySupply); got != "#123456" {
		t.Fatalf("Color(SUPPLY) = %q; want %q", got, "#123456")
	}
	if got := p.Color(CategoryPolicy); got != "#123456" {
		t.Fatalf("Color(POLICY) = %q; want %q", got, "#123456")
	}
	if got := p.Color(CategoryLNG); got != "#abcdef" {
		t.Fatalf("Color(LNG) = %q; want %q", got, "#abcdef")
	}
	if got, want := p.Color(CategoryMacro), DefaultPalette()[CategoryMacro]; got != want {
		t.Fatalf("Color(MACRO) = %q; want %q", got, want)
	}
}

func TestFilterEventsAppliesAlias(t *testing.T) {
	events := []Event{
		{ID: "a", Category: CategoryPolicy},
		{ID: "b", Category: CategoryLNG},
		{ID: "c", Category: CategorySupply},
	}
	got := FilterEvents(events, NewCategorySet(CategorySupply))
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Fatalf("FilterEvents() = %+v; want events a and c", got)
	}
}
