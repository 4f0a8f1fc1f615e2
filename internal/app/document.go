package app

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"syl-optimizer/internal/keyword"
	"syl-optimizer/internal/listing"
	"syl-optimizer/internal/marketplace"
)

type ListingDocument struct {
	Title                 string
	BulletPoints          []string
	DescriptionParagraphs []string
	BackendTerms          string
}

func (d ListingDocument) Fields(p marketplace.Profile) []listing.Field {
	fields := make([]listing.Field, 0, len(d.BulletPoints)+3)
	fields = append(fields, listing.Field{Kind: listing.FieldTitle, Text: d.Title, Limit: p.TitleLimit})
	for i, bp := range d.BulletPoints {
		fields = append(fields, listing.Field{Kind: listing.FieldBullet, Index: i + 1, Text: bp, Limit: p.BulletLimit})
	}
	fields = append(fields, listing.Field{
		Kind:  listing.FieldDescription,
		Text:  strings.Join(d.DescriptionParagraphs, "\n\n"),
		Limit: p.DescriptionLimit,
	})
	if strings.TrimSpace(d.BackendTerms) != "" {
		fields = append(fields, listing.Field{Kind: listing.FieldBackend, Text: d.BackendTerms, Limit: p.BackendByteLimit})
	}
	return fields
}

func RenderMarkdown(req listing.Requirement, marketplaceID string, out OptimizeOutput) string {
	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(strings.TrimSpace(req.Brand))
	b.WriteString(" Listing\n\n")
	b.WriteString("## Marketplace\n")
	b.WriteString(marketplaceID)
	b.WriteString("\n\n## Category\n")
	b.WriteString(strings.TrimSpace(req.Category))
	b.WriteString("\n\n## Keywords\n")
	for _, kw := range req.Keywords {
		b.WriteString(kw.Phrase)
		if kw.SearchVolume > 0 {
			b.WriteString(fmt.Sprintf(" | %d", kw.SearchVolume))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n## Title\n")
	b.WriteString(out.Doc.Title)
	b.WriteString("\n\n## Bullet Points\n")
	for i, bp := range out.Doc.BulletPoints {
		b.WriteString(fmt.Sprintf("**Point %d**\n", i+1))
		b.WriteString(bp)
		b.WriteString("\n\n")
	}
	b.WriteString("## Product Description\n")
	for i, p := range out.Doc.DescriptionParagraphs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(p)
		b.WriteString("\n")
	}
	b.WriteString("\n## Backend Search Terms\n")
	b.WriteString(out.Doc.BackendTerms)
	b.WriteString("\n\n## Optimization Report\n")
	writeReport(&b, out)
	return b.String()
}

func writeReport(b *strings.Builder, out OptimizeOutput) {
	b.WriteString(fmt.Sprintf("- 覆盖率：%.1f%%（%s），标题精确匹配 %d 个\n",
		out.Coverage.OverallPct, out.Coverage.Mode, out.Coverage.ExactMatchCount))
	if len(out.Coverage.Missing) > 0 {
		phrases := make([]string, 0, len(out.Coverage.Missing))
		for _, kw := range out.Coverage.Missing {
			phrases = append(phrases, kw.Phrase)
		}
		b.WriteString("- 未覆盖关键词：")
		b.WriteString(strings.Join(phrases, "；"))
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("- 后台词利用率：%.1f%%\n", out.BackendUtilPct))
	b.WriteString(fmt.Sprintf("- 合规状态：%s\n", out.Compliance.Status))
	for _, v := range out.Compliance.Violations {
		b.WriteString(fmt.Sprintf("  - [%s] %s %s：%s\n", v.Severity, v.Field, v.RuleID, v.Message))
	}
	b.WriteString(fmt.Sprintf("- 综合得分：%.1f（%s）%s\n", out.Ranking.Score, out.Ranking.Grade, out.Ranking.Verdict))
}

type GeneratedListing struct {
	Brand       string
	Marketplace string
	Category    string
	Keywords    []keyword.Keyword
	Doc         ListingDocument
}

// 解析本工具生成的 Markdown，供 check 子命令离线复检。
func ParseGenerated(raw string) (GeneratedListing, error) {
	sections := splitSections(raw)
	out := GeneratedListing{
		Brand:       strings.TrimSuffix(firstLine(sections["_heading"]), " Listing"),
		Marketplace: firstLine(sections["Marketplace"]),
		Category:    firstLine(sections["Category"]),
	}
	for _, line := range nonEmptyLines(sections["Keywords"]) {
		if kw, ok := listing.ParseKeywordLine(line); ok {
			out.Keywords = append(out.Keywords, kw)
		}
	}
	out.Doc.Title = firstLine(sections["Title"])
	for _, line := range nonEmptyLines(sections["Bullet Points"]) {
		if strings.HasPrefix(line, "**Point") {
			continue
		}
		out.Doc.BulletPoints = append(out.Doc.BulletPoints, line)
	}
	out.Doc.DescriptionParagraphs = splitByBlankLines(sections["Product Description"])
	out.Doc.BackendTerms = firstLine(sections["Backend Search Terms"])

	if out.Doc.Title == "" {
		return GeneratedListing{}, fmt.Errorf("文件缺少 Title 分段，不是本工具生成的 listing")
	}
	if len(out.Keywords) == 0 {
		return GeneratedListing{}, fmt.Errorf("文件缺少 Keywords 分段，无法计算覆盖率")
	}
	return out, nil
}

func splitSections(raw string) map[string]string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	sections := map[string]string{}
	current := "_heading"
	var buf []string
	flush := func() {
		sections[current] = strings.TrimSpace(strings.Join(buf, "\n"))
		buf = buf[:0]
	}
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "## ") {
			flush()
			current = strings.TrimSpace(strings.TrimPrefix(trimmed, "## "))
			continue
		}
		if strings.HasPrefix(trimmed, "# ") && current == "_heading" {
			buf = append(buf, strings.TrimSpace(strings.TrimPrefix(trimmed, "# ")))
			continue
		}
		buf = append(buf, line)
	}
	flush()
	return sections
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}

func nonEmptyLines(text string) []string {
	out := make([]string, 0, 8)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

func dedupeIssues(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, it := range in {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
