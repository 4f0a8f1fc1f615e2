package generator

import (
	"context"

	"syl-optimizer/internal/listing"
)

// 文案生成是外部协作方：模型、提示词、传输都在这层，核心算法不感知。
type Request struct {
	Field          listing.FieldKind
	Brand          string
	Category       string
	ProductContext string
	Keywords       []string
	Language       string
	Budget         int
	BudgetMin      int
	Count          int
	PriorTitle     string
	PriorBullets   []string
	Issues         string
}

type Result struct {
	Text      string
	LatencyMS int64
}

type TextGenerator interface {
	Generate(ctx context.Context, req Request) (Result, error)
}
