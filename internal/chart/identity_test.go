package chart

import (
	"strings"
	"testing"
)

func TestEventIDPrefersServerID(t *testing.T) {
	ev := Event{ID: "rss_abc", T: 5, Category: "LNG", Title: "x"}
	if got := EventID(ev); got != "rss_abc" {
		t.Fatalf("EventID() = %q; want %q", got, "rss_abc")
	}
}

func TestEventIDFallback(t *testing.T) {
	tests := []struct {
		ev   Event
		want string
	}{
		{Event{T: 900, Category: "LNG", Title: "x"}, "LNG|900|120"},
		{Event{T: 1, Title: "ab"}, "OTHER|1|3105"},
		{Event{T: 2, Category: "POLICY", Title: ""}, "SUPPLY|2|0"},
	}
	for _, tt := range tests {
		if got := EventID(tt.ev); got != tt.want {
			t.Fatalf("EventID(%+v) = %q; want %q", tt.ev, got, tt.want)
		}
	}
}

func TestEventIDIsDeterministicAndDistinguishesTitles(t *testing.T) {
	a := Event{T: 1700000000000, Category: "WEATHER", Title: "Cold snap lifts demand"}
	b := a
	b.Title = "Cold snap lifts demand!"

	if EventID(a) != EventID(a) {
		t.Fatalf("EventID() not deterministic")
	}
	if EventID(a) == EventID(b) {
		t.Fatalf("EventID() collided for distinct titles: %q", EventID(a))
	}
}

func TestTitleHashUsesUTF16CodeUnits(t *testing.T) {
	// U+1F525 is the surrogate pair D83D DD25.
	want := uint32(0xD83D)*31 + 0xDD25
	if got := titleHash("\U0001F525"); got != want {
		t.Fatalf("titleHash() = %d; want %d", got, want)
	}
}

func TestEventIDPolicyAndSupplyCopiesShareID(t *testing.T) {
	policy := Event{T: 42, Category: "POLICY", Title: "Export permits paused"}
	supply := policy
	supply.Category = "SUPPLY"
	if EventID(policy) != EventID(supply) {
		t.Fatalf("EventID() = %q vs %q; want one id for aliased categories", EventID(policy), EventID(supply))
	}
	if !strings.HasPrefix(EventID(policy), "SUPPLY|42|") {
		t.Fatalf("EventID(policy) = %q; want SUPPLY prefix", EventID(policy))
	}
}
