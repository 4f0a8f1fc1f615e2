package compliance

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"syl-optimizer/internal/keyword"
	"syl-optimizer/internal/listing"
	"syl-optimizer/internal/marketplace"
)

type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

type Status string

const (
	StatusPass Status = "PASS"
	StatusWarn Status = "WARN"
	StatusFail Status = "FAIL"
)

type Violation struct {
	RuleID   string
	Field    string
	Severity Severity
	Message  string
}

type Report struct {
	Status     Status
	Violations []Violation
}

var (
	urlRe   = regexp.MustCompile(`(?i)(https?://|www\.)\S+`)
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phoneRe = regexp.MustCompile(`(\+\d{1,3}[ .-]?)?\(?\d{3}\)?[ .-]\d{3}[ .-]\d{4}`)
	asinRe  = regexp.MustCompile(`(?i)\bB0[A-Z0-9]{8}\b`)
)

func Validate(fields []listing.Field, profile marketplace.Profile, rules Rules) Report {
	rules.ApplyDefaults()
	v := &validator{rules: rules, profile: profile}

	for _, f := range fields {
		v.checkLength(f)
	}
	for _, f := range fields {
		if f.Kind != listing.FieldTitle {
			continue
		}
		v.checkTitleCasing(f)
		v.checkForbiddenChars(f)
	}
	for _, f := range fields {
		if !f.Visible() {
			continue
		}
		v.checkPhraseList(f, "promo_phrase", rules.PromoPhrases, SeverityError, "出现促销用语：%s")
		v.checkExternalReferences(f)
		v.checkPhraseList(f, "medical_claim", rules.MedicalClaims, SeverityError, "涉及医疗功效用语：%s")
		v.checkPhraseList(f, "pesticide_claim", rules.PesticideClaims, SeverityError, "涉及杀菌除虫用语：%s")
		v.checkPhraseList(f, "controlled_substance", rules.ControlledSubstances, SeverityError, "涉及违禁品词：%s")
		v.checkPhraseList(f, "eco_claim", rules.EcoClaims, SeverityWarning, "环保声明需有依据：%s")
	}
	v.checkRepetition(fields)
	for _, f := range fields {
		v.checkDensity(f)
	}
	for _, f := range fields {
		if f.Kind != listing.FieldBackend {
			continue
		}
		v.checkBackend(f)
	}

	return Report{Status: statusOf(v.violations), Violations: v.violations}
}

type validator struct {
	rules      Rules
	profile    marketplace.Profile
	violations []Violation
}

func (v *validator) add(ruleID, field string, sev Severity, format string, args ...any) {
	v.violations = append(v.violations, Violation{
		RuleID:   ruleID,
		Field:    field,
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (v *validator) checkLength(f listing.Field) {
	switch f.Kind {
	case listing.FieldTitle:
		if n := utf8.RuneCountInString(f.Text); n > v.profile.TitleLimit {
			v.add("title_length", f.Name(), SeverityError, "标题超长：%d > %d", n, v.profile.TitleLimit)
		}
	case listing.FieldBullet:
		if n := utf8.RuneCountInString(f.Text); n > v.profile.BulletLimit {
			v.add("bullet_length", f.Name(), SeverityError, "五点超长：%d > %d", n, v.profile.BulletLimit)
		}
	case listing.FieldDescription:
		if n := utf8.RuneCountInString(f.Text); n > v.profile.DescriptionLimit {
			v.add("description_length", f.Name(), SeverityError, "描述超长：%d > %d", n, v.profile.DescriptionLimit)
		}
	case listing.FieldBackend:
		if n := len(f.Text); n > v.profile.BackendByteLimit {
			v.add("backend_bytes", f.Name(), SeverityError, "后台搜索词超出字节预算：%d > %d", n, v.profile.BackendByteLimit)
		}
	}
}

func (v *validator) checkTitleCasing(f listing.Field) {
	for _, word := range strings.Fields(f.Text) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if utf8.RuneCountInString(word) <= 3 {
			continue
		}
		if !allUpperLetters(word) {
			continue
		}
		v.add("title_uppercase", f.Name(), SeverityError, "标题存在全大写单词：%s", word)
	}
}

func allUpperLetters(word string) bool {
	for _, r := range word {
		if !unicode.IsLetter(r) || !unicode.IsUpper(r) {
			return false
		}
	}
	return word != ""
}

func (v *validator) checkForbiddenChars(f listing.Field) {
	seen := map[rune]struct{}{}
	for _, r := range f.Text {
		if !strings.ContainsRune(v.rules.ForbiddenTitleChars, r) {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		v.add("title_forbidden_chars", f.Name(), SeverityError, "标题包含禁用字符：%q", r)
	}
}

func (v *validator) checkPhraseList(f listing.Field, ruleID string, phrases []string, sev Severity, format string) {
	fieldTokens := keyword.Tokenize(f.Text)
	for _, phrase := range phrases {
		if keyword.ContainsRun(fieldTokens, keyword.Tokenize(phrase)) {
			v.add(ruleID, f.Name(), sev, format, phrase)
		}
	}
}

func (v *validator) checkExternalReferences(f listing.Field) {
	if m := urlRe.FindString(f.Text); m != "" {
		v.add("external_reference", f.Name(), SeverityError, "包含站外链接：%s", m)
	}
	if m := emailRe.FindString(f.Text); m != "" {
		v.add("external_reference", f.Name(), SeverityError, "包含邮箱地址：%s", m)
	}
	if m := phoneRe.FindString(f.Text); m != "" {
		v.add("external_reference", f.Name(), SeverityError, "包含电话号码：%s", m)
	}
}

func (v *validator) checkRepetition(fields []listing.Field) {
	stop := v.rules.StopwordSet(v.profile.Language)

	for _, f := range fields {
		if f.Kind != listing.FieldTitle {
			continue
		}
		for _, tc := range tokenCounts(f.Text, stop) {
			if tc.count > v.rules.TitleRepeatMax {
				v.add("repetition_title", f.Name(), severityOf(v.rules.TitleRepeatSeverity),
					"标题中 %s 重复 %d 次，超过 %d", tc.token, tc.count, v.rules.TitleRepeatMax)
			}
		}
	}

	for _, tc := range tokenCounts(listing.CompiledText(fields), stop) {
		if tc.count > v.rules.ListingRepeatMax {
			v.add("repetition_listing", "listing", severityOf(v.rules.ListingRepeatSeverity),
				"整条 listing 中 %s 重复 %d 次，超过 %d", tc.token, tc.count, v.rules.ListingRepeatMax)
		}
	}
}

func (v *validator) checkDensity(f listing.Field) {
	toks := keyword.Tokenize(f.Text)
	if len(toks) < 3 {
		return
	}
	for _, tc := range tokenCounts(f.Text, nil) {
		share := float64(tc.count) / float64(len(toks))
		if tc.count >= 2 && share > v.rules.DensityMaxRatio {
			v.add("keyword_density", f.Name(), SeverityWarning,
				"%s 占比 %.0f%%，超过 %.0f%%", tc.token, share*100, v.rules.DensityMaxRatio*100)
		}
	}
}

func (v *validator) checkBackend(f listing.Field) {
	if m := asinRe.FindString(f.Text); m != "" {
		v.add("backend_asin", f.Name(), SeverityError, "疑似竞品 ASIN：%s", m)
	}
	fieldTokens := keyword.Tokenize(f.Text)
	for _, adj := range v.rules.SubjectiveAdjectives {
		if keyword.ContainsRun(fieldTokens, keyword.Tokenize(adj)) {
			v.add("backend_subjective", f.Name(), SeverityWarning, "后台搜索词包含主观形容词：%s", adj)
		}
	}
}

type tokenCount struct {
	token string
	count int
}

// 按首次出现顺序计数，保证违规列表次序稳定。
func tokenCounts(text string, stop map[string]struct{}) []tokenCount {
	idx := map[string]int{}
	out := make([]tokenCount, 0, 16)
	for _, tok := range keyword.Tokenize(text) {
		if stop != nil {
			if _, skip := stop[tok]; skip {
				continue
			}
		}
		if i, ok := idx[tok]; ok {
			out[i].count++
			continue
		}
		idx[tok] = len(out)
		out = append(out, tokenCount{token: tok, count: 1})
	}
	return out
}

func severityOf(s string) Severity {
	if strings.EqualFold(strings.TrimSpace(s), "warning") {
		return SeverityWarning
	}
	return SeverityError
}

func statusOf(violations []Violation) Status {
	status := StatusPass
	for _, v := range violations {
		if v.Severity == SeverityError {
			return StatusFail
		}
		status = StatusWarn
	}
	return status
}
