package app

import (
	"fmt"
	"regexp"
	"strings"

	"syl-optimizer/internal/keyword"
)

var bulletPrefixRe = regexp.MustCompile(`^\s*(?:[-*•]|[0-9]{1,2}[\.)])\s*`)
var lineLabelPrefixRe = regexp.MustCompile(`(?i)^(title|标题|backend\s*search\s*terms|搜索词)\s*[:：]\s*`)

func normalizeModelText(text string) string {
	t := strings.TrimSpace(text)
	if strings.HasPrefix(t, "```") {
		t = strings.TrimPrefix(t, "```")
		t = strings.TrimSpace(t)
		if strings.HasPrefix(strings.ToLower(t), "text") {
			t = strings.TrimSpace(t[4:])
		}
		if strings.HasPrefix(strings.ToLower(t), "markdown") {
			t = strings.TrimSpace(t[8:])
		}
		if i := strings.LastIndex(t, "```"); i >= 0 {
			t = strings.TrimSpace(t[:i])
		}
	}
	return t
}

func normalizeSingleLine(text string) string {
	text = normalizeModelText(text)
	for _, ln := range strings.Split(text, "\n") {
		ln = strings.TrimSpace(ln)
		if ln != "" {
			return ln
		}
	}
	return ""
}

func cleanTitleLine(text string) string {
	line := normalizeSingleLine(text)
	line = bulletPrefixRe.ReplaceAllString(line, "")
	line = lineLabelPrefixRe.ReplaceAllString(line, "")
	return strings.TrimSpace(line)
}

func parseBullets(text string, expected int) ([]string, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, expected)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = bulletPrefixRe.ReplaceAllString(line, "")
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	if len(out) != expected {
		return nil, fmt.Errorf("五点数量错误：%d != %d", len(out), expected)
	}
	return out, nil
}

func parseParagraphs(text string, expected int) ([]string, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	chunks := splitByBlankLines(text)
	if len(chunks) != expected {
		return nil, fmt.Errorf("描述段落数量错误：%d != %d", len(chunks), expected)
	}
	return chunks, nil
}

func splitByBlankLines(text string) []string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, 4)
	buf := make([]string, 0, 16)
	flush := func() {
		if len(buf) == 0 {
			return
		}
		out = append(out, strings.TrimSpace(strings.Join(buf, " ")))
		buf = buf[:0]
	}
	for _, ln := range lines {
		if strings.TrimSpace(ln) == "" {
			flush()
			continue
		}
		buf = append(buf, strings.TrimSpace(ln))
	}
	flush()
	return out
}

func validateTitle(title string, limit int, mustContain []string) []string {
	issues := make([]string, 0)
	if title == "" {
		issues = append(issues, "标题为空")
		return issues
	}
	if runeLen(title) > limit {
		issues = append(issues, fmt.Sprintf("标题超长：%d > %d", runeLen(title), limit))
	}
	titleTokens := keyword.Tokenize(title)
	for i, phrase := range mustContain {
		if strings.TrimSpace(phrase) == "" {
			continue
		}
		if !keyword.ContainsRun(titleTokens, keyword.Tokenize(phrase)) {
			issues = append(issues, fmt.Sprintf("标题缺少关键词 #%d: %s", i+1, phrase))
		}
	}
	return dedupeIssues(issues)
}

func validateBullets(items []string, minChars, maxChars int) []string {
	issues := make([]string, 0)
	for i, it := range items {
		n := runeLen(it)
		if n < minChars {
			issues = append(issues, fmt.Sprintf("第%d点太短：%d < %d", i+1, n, minChars))
		}
		if maxChars > 0 && n > maxChars {
			issues = append(issues, fmt.Sprintf("第%d点太长：%d > %d", i+1, n, maxChars))
		}
	}
	return dedupeIssues(issues)
}

func validateParagraphs(pars []string) []string {
	issues := make([]string, 0)
	for i, p := range pars {
		if strings.TrimSpace(p) == "" {
			issues = append(issues, fmt.Sprintf("描述第%d段为空", i+1))
		}
	}
	return dedupeIssues(issues)
}
