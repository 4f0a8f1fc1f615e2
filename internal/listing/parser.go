package listing

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"syl-optimizer/internal/keyword"
)

const Marker = "===Listing Requirements==="

type Requirement struct {
	SourcePath      string
	Raw             string
	BodyAfterMarker string
	Brand           string
	Category        string
	Marketplace     string
	Keywords        []keyword.Keyword
	Warnings        []string
}

func ParseFile(path string) (Requirement, error) {
	rawBytes, err := os.ReadFile(path)
	if err != nil {
		return Requirement{}, fmt.Errorf("读取文件失败（%s）：%w", path, err)
	}
	req, err := Parse(string(rawBytes))
	if err != nil {
		return Requirement{}, fmt.Errorf("%w：%s", err, path)
	}
	req.SourcePath = path
	return req, nil
}

func Parse(raw string) (Requirement, error) {
	body, ok := BodyAfterMarker(raw)
	if !ok {
		return Requirement{}, fmt.Errorf("文件不是 listing 需求格式（缺少首行标志 %s）", Marker)
	}

	req := Requirement{
		Raw:             raw,
		BodyAfterMarker: body,
		Brand:           parseLabeledLine(body, "品牌名:"),
		Category:        parseCategory(body),
		Marketplace:     parseLabeledLine(body, "站点:"),
		Keywords:        parseKeywords(body),
	}
	if len(req.Keywords) < 15 || len(req.Keywords) > 20 {
		req.Warnings = append(req.Warnings, fmt.Sprintf("关键词数量是 %d，不在 15-20 范围，继续生成", len(req.Keywords)))
	}
	if len(req.Keywords) > 0 && volumeCount(req.Keywords) == 0 {
		req.Warnings = append(req.Warnings, "关键词库没有搜索量数据，按输入顺序分层")
	}
	return req, nil
}

func IsListingRequirements(raw string) bool {
	_, ok := BodyAfterMarker(raw)
	return ok
}

func BodyAfterMarker(raw string) (string, bool) {
	raw = strings.TrimPrefix(raw, "\ufeff")
	lines := strings.Split(raw, "\n")
	idx := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.TrimSpace(line) == Marker {
			idx = i
		}
		break
	}
	if idx < 0 {
		return "", false
	}
	if idx+1 >= len(lines) {
		return "", true
	}
	return strings.Join(lines[idx+1:], "\n"), true
}

func parseLabeledLine(body, label string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, label) {
			return strings.TrimSpace(strings.TrimPrefix(line, label))
		}
	}
	return ""
}

func parseCategory(body string) string {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "分类:") {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, "分类:"))
		}
		if strings.HasPrefix(trimmed, "# 分类") {
			for j := i + 1; j < len(lines); j++ {
				next := strings.TrimSpace(lines[j])
				if next == "" {
					continue
				}
				if strings.HasPrefix(next, "#") {
					return ""
				}
				return next
			}
		}
	}
	return ""
}

var keywordPrefixRe = regexp.MustCompile(`^([0-9]{1,2}[\.)]|[-*•])\s*`)

func parseKeywords(body string) []keyword.Keyword {
	lines := strings.Split(body, "\n")
	start := -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# 关键词库") {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil
	}

	out := make([]keyword.Keyword, 0, 20)
	for i := start; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			break
		}
		line = keywordPrefixRe.ReplaceAllString(line, "")
		kw, ok := ParseKeywordLine(line)
		if !ok {
			continue
		}
		out = append(out, kw)
	}
	return out
}

func ParseKeywordLine(line string) (keyword.Keyword, bool) {
	phrase := line
	volume := 0
	if i := strings.LastIndex(line, "|"); i >= 0 {
		phrase = line[:i]
		volText := strings.TrimSpace(line[i+1:])
		if v, err := strconv.Atoi(strings.ReplaceAll(volText, ",", "")); err == nil && v > 0 {
			volume = v
		}
	}
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return keyword.Keyword{}, false
	}
	return keyword.Keyword{Phrase: phrase, SearchVolume: volume}, true
}

func volumeCount(kws []keyword.Keyword) int {
	n := 0
	for _, kw := range kws {
		if kw.SearchVolume > 0 {
			n++
		}
	}
	return n
}
