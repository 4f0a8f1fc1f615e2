package keyword

import (
	"sort"
	"strings"
	"unicode"
)

const maxRootWords = 20

type RootWord struct {
	Token  string
	Volume int
}

func Tokenize(s string) []string {
	s = strings.ToLower(s)
	out := make([]string, 0, 8)
	var b strings.Builder
	runes := 0
	flush := func() {
		if runes >= 2 {
			out = append(out, b.String())
		}
		b.Reset()
		runes = 0
	}
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			runes++
			continue
		}
		flush()
	}
	flush()
	return out
}

func TokenSet(s string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, tok := range Tokenize(s) {
		set[tok] = struct{}{}
	}
	return set
}

// 短语必须作为连续整词序列出现，禁止子串匹配。
func ContainsRun(haystack, needle []string) bool {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return false
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j, tok := range needle {
			if haystack[i+j] != tok {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func RootWords(kws []Keyword) []RootWord {
	type agg struct {
		volume int
		order  int
	}
	sums := map[string]*agg{}
	orderNext := 0
	for _, kw := range Sanitize(kws) {
		seen := map[string]struct{}{}
		for _, tok := range Tokenize(kw.Phrase) {
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			a, ok := sums[tok]
			if !ok {
				a = &agg{order: orderNext}
				orderNext++
				sums[tok] = a
			}
			a.volume += kw.SearchVolume
		}
	}

	out := make([]RootWord, 0, len(sums))
	for tok, a := range sums {
		out = append(out, RootWord{Token: tok, Volume: a.volume})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Volume != out[j].Volume {
			return out[i].Volume > out[j].Volume
		}
		return sums[out[i].Token].order < sums[out[j].Token].order
	})
	if len(out) > maxRootWords {
		out = out[:maxRootWords]
	}
	return out
}
