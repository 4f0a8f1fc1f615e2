package keyword

import (
	"math"
	"sort"
	"strings"
)

type Keyword struct {
	Phrase       string
	SearchVolume int
}

type Tiers struct {
	Title   []Keyword
	Bullets []Keyword
	Backend []Keyword
}

type Split struct {
	TitleRatio   float64
	BulletsRatio float64
}

func DefaultSplit() Split {
	return Split{TitleRatio: 0.3, BulletsRatio: 0.4}
}

func Sanitize(kws []Keyword) []Keyword {
	out := make([]Keyword, 0, len(kws))
	for _, kw := range kws {
		phrase := strings.Join(strings.Fields(kw.Phrase), " ")
		if phrase == "" {
			continue
		}
		vol := kw.SearchVolume
		if vol < 0 {
			vol = 0
		}
		out = append(out, Keyword{Phrase: phrase, SearchVolume: vol})
	}
	return out
}

func Rank(kws []Keyword) []Keyword {
	out := append([]Keyword{}, kws...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SearchVolume > out[j].SearchVolume
	})
	return out
}

func AssignTiers(kws []Keyword, split Split) Tiers {
	ranked := Rank(Sanitize(kws))
	n := len(ranked)
	if n == 0 {
		return Tiers{}
	}
	if split.TitleRatio <= 0 {
		split.TitleRatio = DefaultSplit().TitleRatio
	}
	if split.BulletsRatio <= 0 {
		split.BulletsRatio = DefaultSplit().BulletsRatio
	}

	t1 := int(math.Ceil(split.TitleRatio * float64(n)))
	if t1 < 1 {
		t1 = 1
	}
	if t1 > n {
		t1 = n
	}
	t2 := t1 + int(math.Ceil(split.BulletsRatio*float64(n)))
	if t2 < t1+1 {
		t2 = t1 + 1
	}
	if t2 > n {
		t2 = n
	}
	return Tiers{
		Title:   ranked[:t1],
		Bullets: ranked[t1:t2],
		Backend: ranked[t2:],
	}
}

func (t Tiers) Total() int {
	return len(t.Title) + len(t.Bullets) + len(t.Backend)
}

func (t Tiers) All() []Keyword {
	out := make([]Keyword, 0, t.Total())
	out = append(out, t.Title...)
	out = append(out, t.Bullets...)
	out = append(out, t.Backend...)
	return out
}
