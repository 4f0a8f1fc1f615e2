package coverage

import (
	"math"

	"syl-optimizer/internal/keyword"
)

type Mode string

const (
	ModeExcellent Mode = "EXCELLENT"
	ModeGood      Mode = "GOOD"
	ModeModerate  Mode = "MODERATE"
	ModeLow       Mode = "LOW"
	ModeNone      Mode = "NONE"
)

const DefaultTokenThreshold = 0.7

type Report struct {
	OverallPct      float64
	Mode            Mode
	CoveredCount    int
	TotalCount      int
	ExactMatchCount int
	Missing         []keyword.Keyword
}

func Calculate(kws []keyword.Keyword, compiledText, titleText string, threshold float64) Report {
	kws = keyword.Sanitize(kws)
	if len(kws) == 0 {
		return Report{Mode: ModeNone}
	}
	threshold = normalizeThreshold(threshold)

	words := keyword.TokenSet(compiledText)
	titleTokens := keyword.Tokenize(titleText)
	rep := Report{TotalCount: len(kws)}
	for _, kw := range kws {
		if coveredBy(kw.Phrase, words, threshold) {
			rep.CoveredCount++
		} else {
			rep.Missing = append(rep.Missing, kw)
		}
		if keyword.ContainsRun(titleTokens, keyword.Tokenize(kw.Phrase)) {
			rep.ExactMatchCount++
		}
	}
	rep.OverallPct = round1(float64(rep.CoveredCount) / float64(rep.TotalCount) * 100)
	rep.Mode = bandOf(rep.OverallPct)
	return rep
}

func FieldPct(kws []keyword.Keyword, fieldText string, threshold float64) (float64, Mode) {
	kws = keyword.Sanitize(kws)
	if len(kws) == 0 {
		return 0, ModeNone
	}
	threshold = normalizeThreshold(threshold)
	words := keyword.TokenSet(fieldText)
	covered := 0
	for _, kw := range kws {
		if coveredBy(kw.Phrase, words, threshold) {
			covered++
		}
	}
	pct := round1(float64(covered) / float64(len(kws)) * 100)
	return pct, bandOf(pct)
}

func Missing(kws []keyword.Keyword, text string, threshold float64) []keyword.Keyword {
	kws = keyword.Sanitize(kws)
	threshold = normalizeThreshold(threshold)
	words := keyword.TokenSet(text)
	out := make([]keyword.Keyword, 0, len(kws))
	for _, kw := range kws {
		if !coveredBy(kw.Phrase, words, threshold) {
			out = append(out, kw)
		}
	}
	return out
}

func coveredBy(phrase string, words map[string]struct{}, threshold float64) bool {
	toks := keyword.Tokenize(phrase)
	if len(toks) == 0 {
		return false
	}
	hit := 0
	for _, tok := range toks {
		if _, ok := words[tok]; ok {
			hit++
		}
	}
	return float64(hit)/float64(len(toks)) >= threshold
}

func bandOf(pct float64) Mode {
	switch {
	case pct >= 90:
		return ModeExcellent
	case pct >= 70:
		return ModeGood
	case pct >= 50:
		return ModeModerate
	default:
		return ModeLow
	}
}

func normalizeThreshold(v float64) float64 {
	if v <= 0 || v > 1 {
		return DefaultTokenThreshold
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
