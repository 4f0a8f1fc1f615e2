package generator

import (
	"fmt"
	"strings"

	"syl-optimizer/internal/listing"
)

var languageNames = map[string]string{
	"en": "英文",
	"de": "德语",
	"fr": "法语",
	"es": "西班牙语",
	"it": "意大利语",
	"ja": "日语",
}

func buildSystemPrompt(req Request) string {
	langName, ok := languageNames[strings.ToLower(strings.TrimSpace(req.Language))]
	if !ok {
		langName = "英文"
	}
	common := "你是亚马逊 listing 文案专家，为卖家撰写高转化文案。\n\n【程序硬约束】\n" +
		"1) 只输出纯文本，不要 JSON，不要 Markdown 标题，不要解释\n" +
		"2) 不要输出代码块\n" +
		fmt.Sprintf("3) 只输出%s\n", langName)

	switch req.Field {
	case listing.FieldTitle:
		return common + fmt.Sprintf("4) 仅输出一行标题\n5) 标题最大 %d 字符\n6) 标题自然嵌入给定关键词，不要堆砌\n", req.Budget)
	case listing.FieldBullet:
		return common + fmt.Sprintf("4) 仅输出 %d 行，每行一个五点内容，不要编号和符号前缀\n5) 每行长度 %d-%d 字符\n", req.Count, req.BudgetMin, req.Budget)
	case listing.FieldDescription:
		return common + fmt.Sprintf("4) 仅输出 %d 段，段与段之间空一行\n", req.Count)
	default:
		return common
	}
}

func buildUserPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("【产品信息】\n")
	b.WriteString(strings.TrimSpace(req.ProductContext))
	b.WriteString("\n\n【固定字段（不得改写）】\n")
	b.WriteString("brand: ")
	b.WriteString(strings.TrimSpace(req.Brand))
	b.WriteString("\ncategory: ")
	b.WriteString(strings.TrimSpace(req.Category))
	b.WriteString("\nkeywords:\n")
	for _, kw := range req.Keywords {
		b.WriteString("- ")
		b.WriteString(kw)
		b.WriteString("\n")
	}
	if req.PriorTitle != "" {
		b.WriteString("\n【已生成标题】\n")
		b.WriteString(req.PriorTitle)
		b.WriteString("\n")
	}
	if len(req.PriorBullets) > 0 {
		b.WriteString("\n【已生成五点】\n")
		for i, bp := range req.PriorBullets {
			b.WriteString(fmt.Sprintf("%d. %s\n", i+1, bp))
		}
	}
	b.WriteString("\n【当前任务】生成：")
	b.WriteString(string(req.Field))
	b.WriteString("\n")
	if strings.TrimSpace(req.Issues) != "" {
		b.WriteString("\n【上次输出问题，必须全部修复】\n")
		b.WriteString(req.Issues)
		b.WriteString("\n")
	}
	return b.String()
}
