package coverage

import (
	"testing"

	"syl-optimizer/internal/keyword"
)

func TestCalculateFullCoverage(t *testing.T) {
	kws := []keyword.Keyword{
		{Phrase: "water bottle", SearchVolume: 100},
		{Phrase: "insulated", SearchVolume: 80},
		{Phrase: "straw lid", SearchVolume: 60},
	}
	title := "Insulated Water Bottle with Straw Lid"
	rep := Calculate(kws, title+" keeps drinks cold", title, DefaultTokenThreshold)
	if rep.OverallPct != 100 {
		t.Fatalf("unexpected pct: %v", rep.OverallPct)
	}
	if rep.Mode != ModeExcellent {
		t.Fatalf("unexpected mode: %s", rep.Mode)
	}
	if rep.CoveredCount != 3 || rep.TotalCount != 3 {
		t.Fatalf("unexpected counts: %d/%d", rep.CoveredCount, rep.TotalCount)
	}
	if rep.ExactMatchCount != 3 {
		t.Fatalf("unexpected exact matches: %d", rep.ExactMatchCount)
	}
	if len(rep.Missing) != 0 {
		t.Fatalf("unexpected missing: %v", rep.Missing)
	}
}

func TestCalculateWholeWordOnly(t *testing.T) {
	kws := []keyword.Keyword{{Phrase: "cap", SearchVolume: 10}}
	rep := Calculate(kws, "travel capsule organizer", "", DefaultTokenThreshold)
	if rep.CoveredCount != 0 {
		t.Fatalf("substring must not count as coverage")
	}
	if len(rep.Missing) != 1 || rep.Missing[0].Phrase != "cap" {
		t.Fatalf("unexpected missing: %v", rep.Missing)
	}
}

func TestCalculateThreshold(t *testing.T) {
	// 三词短语命中两词：2/3 ≈ 0.67
	kws := []keyword.Keyword{{Phrase: "steel water bottle", SearchVolume: 10}}
	if rep := Calculate(kws, "water bottle for gym", "", 0.7); rep.CoveredCount != 0 {
		t.Fatalf("0.67 must fail threshold 0.7")
	}
	if rep := Calculate(kws, "water bottle for gym", "", 0.6); rep.CoveredCount != 1 {
		t.Fatalf("0.67 must pass threshold 0.6")
	}
}

func TestCalculateBands(t *testing.T) {
	mk := func(covered, total int) []keyword.Keyword {
		kws := make([]keyword.Keyword, 0, total)
		for i := 0; i < total; i++ {
			phrase := "miss"
			if i < covered {
				phrase = "hit"
			}
			kws = append(kws, keyword.Keyword{Phrase: phrase, SearchVolume: 1})
		}
		return kws
	}
	cases := []struct {
		covered, total int
		want           Mode
	}{
		{9, 10, ModeExcellent},
		{7, 10, ModeGood},
		{5, 10, ModeModerate},
		{4, 10, ModeLow},
	}
	for _, c := range cases {
		rep := Calculate(mk(c.covered, c.total), "hit", "", DefaultTokenThreshold)
		if rep.Mode != c.want {
			t.Fatalf("%d/%d: got %s, want %s", c.covered, c.total, rep.Mode, c.want)
		}
	}
}

func TestCalculateEmpty(t *testing.T) {
	rep := Calculate(nil, "some text", "title", DefaultTokenThreshold)
	if rep.Mode != ModeNone {
		t.Fatalf("unexpected mode: %s", rep.Mode)
	}
	if rep.OverallPct != 0 || rep.TotalCount != 0 {
		t.Fatalf("unexpected report: %+v", rep)
	}
}

func TestCalculateMonotonic(t *testing.T) {
	kws := []keyword.Keyword{
		{Phrase: "water bottle", SearchVolume: 100},
		{Phrase: "insulated flask", SearchVolume: 80},
		{Phrase: "straw lid", SearchVolume: 60},
	}
	pieces := []string{"water bottle", "insulated flask", "straw lid"}
	prev := 0.0
	text := ""
	for _, piece := range pieces {
		text += " " + piece
		rep := Calculate(kws, text, "", DefaultTokenThreshold)
		if rep.OverallPct < prev {
			t.Fatalf("coverage decreased as text grew: %v -> %v", prev, rep.OverallPct)
		}
		prev = rep.OverallPct
	}
	if prev != 100 {
		t.Fatalf("unexpected final pct: %v", prev)
	}
}

func TestExactMatchRequiresTitleRun(t *testing.T) {
	kws := []keyword.Keyword{{Phrase: "water bottle", SearchVolume: 10}}
	rep := Calculate(kws, "water bottle", "bottle of water", DefaultTokenThreshold)
	if rep.CoveredCount != 1 {
		t.Fatalf("coverage should hit")
	}
	if rep.ExactMatchCount != 0 {
		t.Fatalf("reversed order must not be an exact match")
	}
}

func TestFieldPct(t *testing.T) {
	kws := []keyword.Keyword{
		{Phrase: "water bottle", SearchVolume: 10},
		{Phrase: "straw", SearchVolume: 5},
	}
	pct, mode := FieldPct(kws, "insulated water bottle", DefaultTokenThreshold)
	if pct != 50 || mode != ModeModerate {
		t.Fatalf("unexpected: %v %s", pct, mode)
	}
}

func TestMissing(t *testing.T) {
	kws := []keyword.Keyword{
		{Phrase: "water bottle", SearchVolume: 10},
		{Phrase: "straw", SearchVolume: 5},
	}
	got := Missing(kws, "water bottle", DefaultTokenThreshold)
	if len(got) != 1 || got[0].Phrase != "straw" {
		t.Fatalf("unexpected: %v", got)
	}
}
