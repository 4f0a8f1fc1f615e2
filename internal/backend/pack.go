package backend

import (
	"math"
	"strings"

	"syl-optimizer/internal/keyword"
)

// 形容词、单位、缩写没有有意义的单复数变形。
var noVariant = map[string]struct{}{
	"mini": {}, "slim": {}, "plus": {}, "eco": {},
	"usb": {}, "led": {}, "lcd": {}, "bpa": {},
	"inch": {}, "inches": {}, "liter": {}, "litre": {},
	"large": {}, "small": {}, "wide": {}, "long": {},
}

type packer struct {
	buf      strings.Builder
	maxBytes int
	visible  map[string]struct{}
	packed   map[string]struct{}
	phrases  map[string]struct{}
}

func Pack(kws []keyword.Keyword, visibleText string, maxBytes int, pluralSuffix string) string {
	if maxBytes <= 0 {
		return ""
	}
	kws = keyword.Sanitize(kws)
	if len(kws) == 0 {
		return ""
	}

	p := &packer{
		maxBytes: maxBytes,
		visible:  keyword.TokenSet(visibleText),
		packed:   map[string]struct{}{},
		phrases:  map[string]struct{}{},
	}

	for _, kw := range kws {
		phrase := strings.ToLower(kw.Phrase)
		if _, dup := p.phrases[phrase]; dup {
			continue
		}
		p.phrases[phrase] = struct{}{}
		if p.allVisible(phrase) {
			continue
		}
		p.tryAppend(phrase)
	}

	roots := keyword.RootWords(kws)
	for _, rw := range roots {
		if p.present(rw.Token) {
			continue
		}
		p.tryAppend(rw.Token)
	}

	for _, rw := range roots {
		v := variant(rw.Token, pluralSuffix)
		if v == "" || p.present(v) {
			continue
		}
		p.tryAppend(v)
	}

	return p.buf.String()
}

func (p *packer) allVisible(phrase string) bool {
	toks := keyword.Tokenize(phrase)
	if len(toks) == 0 {
		return true
	}
	for _, tok := range toks {
		if _, ok := p.visible[tok]; !ok {
			return false
		}
	}
	return true
}

func (p *packer) present(tok string) bool {
	if _, ok := p.visible[tok]; ok {
		return true
	}
	_, ok := p.packed[tok]
	return ok
}

func (p *packer) tryAppend(candidate string) bool {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return false
	}
	cost := len(candidate)
	if p.buf.Len() > 0 {
		cost++
	}
	if p.buf.Len()+cost > p.maxBytes {
		return false
	}
	if p.buf.Len() > 0 {
		p.buf.WriteByte(' ')
	}
	p.buf.WriteString(candidate)
	for _, tok := range keyword.Tokenize(candidate) {
		p.packed[tok] = struct{}{}
	}
	return true
}

func variant(tok, pluralSuffix string) string {
	if _, ok := noVariant[tok]; ok {
		return ""
	}
	n := len(tok)
	if n >= 4 && n <= 9 && strings.HasSuffix(tok, "s") && !strings.HasSuffix(tok, "ss") {
		return tok[:n-1]
	}
	if n >= 8 && pluralSuffix != "" && strings.ContainsRune("aeiou", rune(tok[n-1])) {
		return tok + pluralSuffix
	}
	return ""
}

func Utilization(packed string, maxBytes int) float64 {
	if maxBytes <= 0 {
		return 0
	}
	pct := float64(len(packed)) / float64(maxBytes) * 100
	if pct > 100 {
		pct = 100
	}
	return math.Round(pct*10) / 10
}
