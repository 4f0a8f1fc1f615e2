package backend

import (
	"fmt"
	"strings"
	"testing"

	"syl-optimizer/internal/keyword"
)

func TestPackExactByteBoundary(t *testing.T) {
	kws := []keyword.Keyword{{Phrase: "abcde", SearchVolume: 10}}
	if got := Pack(kws, "", 5, "s"); got != "abcde" {
		t.Fatalf("unexpected: %q", got)
	}
	if got := Pack(kws, "", 4, "s"); got != "" {
		t.Fatalf("over-budget phrase must be skipped, got %q", got)
	}
}

func TestPackSeparatorCost(t *testing.T) {
	kws := []keyword.Keyword{
		{Phrase: "aaa", SearchVolume: 2},
		{Phrase: "bbb", SearchVolume: 1},
	}
	if got := Pack(kws, "", 7, ""); got != "aaa bbb" {
		t.Fatalf("unexpected: %q", got)
	}
	if got := Pack(kws, "", 6, ""); got != "aaa" {
		t.Fatalf("separator byte must count, got %q", got)
	}
}

func TestPackSkipsVisiblePhrases(t *testing.T) {
	kws := []keyword.Keyword{
		{Phrase: "water bottle", SearchVolume: 100},
		{Phrase: "straw lid", SearchVolume: 50},
	}
	got := Pack(kws, "Blue Water Bottle 32oz", 249, "s")
	if strings.Contains(got, "water bottle") {
		t.Fatalf("fully visible phrase must not be packed: %q", got)
	}
	if !strings.Contains(got, "straw lid") {
		t.Fatalf("missing phrase not packed: %q", got)
	}
}

func TestPackRootAndVariantPasses(t *testing.T) {
	kws := []keyword.Keyword{{Phrase: "water bottles", SearchVolume: 100}}
	got := Pack(kws, "", 30, "s")
	if got != "water bottles bottle" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestPackVariantRules(t *testing.T) {
	cases := []struct {
		tok    string
		suffix string
		want   string
	}{
		{"bottles", "s", "bottle"},
		{"glass", "s", ""},
		{"cats", "s", "cat"},
		{"mini", "s", ""},
		{"portable", "s", "portables"},
		{"portable", "", ""},
		{"cup", "s", ""},
	}
	for _, c := range cases {
		if got := variant(c.tok, c.suffix); got != c.want {
			t.Fatalf("variant(%q,%q)=%q, want %q", c.tok, c.suffix, got, c.want)
		}
	}
}

func TestPackNeverExceedsBudget(t *testing.T) {
	kws := make([]keyword.Keyword, 0, 40)
	for i := 0; i < 40; i++ {
		kws = append(kws, keyword.Keyword{Phrase: fmt.Sprintf("phrase number %d variant", i), SearchVolume: 1000 - i})
	}
	for _, budget := range []int{0, 1, 10, 50, 249, 500} {
		got := Pack(kws, "", budget, "s")
		if len(got) > budget {
			t.Fatalf("budget %d exceeded: %d bytes", budget, len(got))
		}
	}
}

func TestPackDeterministic(t *testing.T) {
	kws := []keyword.Keyword{
		{Phrase: "water bottle", SearchVolume: 100},
		{Phrase: "insulated flask", SearchVolume: 100},
		{Phrase: "travel mug", SearchVolume: 80},
	}
	first := Pack(kws, "bottle", 249, "s")
	for i := 0; i < 5; i++ {
		if got := Pack(kws, "bottle", 249, "s"); got != first {
			t.Fatalf("non-deterministic output: %q vs %q", got, first)
		}
	}
}

func TestUtilization(t *testing.T) {
	if got := Utilization("", 249); got != 0 {
		t.Fatalf("unexpected: %v", got)
	}
	if got := Utilization(strings.Repeat("a", 249), 249); got != 100 {
		t.Fatalf("unexpected: %v", got)
	}
	if got := Utilization("abc", 0); got != 0 {
		t.Fatalf("zero budget must yield 0, got %v", got)
	}
	if got := Utilization(strings.Repeat("a", 100), 300); got != 33.3 {
		t.Fatalf("unexpected rounding: %v", got)
	}
}
