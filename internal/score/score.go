package score

import (
	"math"

	"syl-optimizer/internal/compliance"
	"syl-optimizer/internal/coverage"
)

const DefaultUtilizationTargetPct = 70.0

// 权重全部来自配置，核心算法不写死业务数值。
type Weights struct {
	Coverage           float64 `yaml:"coverage"`
	ExactMatch         float64 `yaml:"exact_match"`
	BackendUtilization float64 `yaml:"backend_utilization"`
	CompliancePenalty  float64 `yaml:"compliance_penalty"`
}

func DefaultWeights() Weights {
	return Weights{Coverage: 1, ExactMatch: 1, BackendUtilization: 1, CompliancePenalty: 1}
}

type Ranking struct {
	Score   float64
	Grade   string
	Verdict string
}

func Compute(cov coverage.Report, comp compliance.Report, backendUtilPct, utilTargetPct float64, w Weights) Ranking {
	if utilTargetPct <= 0 {
		utilTargetPct = DefaultUtilizationTargetPct
	}

	covNorm := clamp01(cov.OverallPct / 100)
	exactNorm := exactMatchNorm(cov)
	utilNorm := clamp01(backendUtilPct / utilTargetPct)

	weightSum := w.Coverage + w.ExactMatch + w.BackendUtilization
	base := 0.0
	if weightSum > 0 {
		base = (w.Coverage*covNorm + w.ExactMatch*exactNorm + w.BackendUtilization*utilNorm) / weightSum * 100
	}

	errors, warnings := countBySeverity(comp)
	penalty := w.CompliancePenalty * (10*float64(errors) + 2*float64(warnings))

	s := math.Round((base-penalty)*10) / 10
	if s < 0 {
		s = 0
	}
	if s > 100 {
		s = 100
	}
	return Ranking{Score: s, Grade: gradeOf(s), Verdict: verdictOf(s, comp.Status)}
}

// 标题全量精确匹配在真实 listing 里不可达，按前三大词归一化。
func exactMatchNorm(cov coverage.Report) float64 {
	if cov.TotalCount == 0 {
		return 0
	}
	denom := cov.TotalCount
	if denom > 3 {
		denom = 3
	}
	return clamp01(float64(cov.ExactMatchCount) / float64(denom))
}

func countBySeverity(comp compliance.Report) (errors, warnings int) {
	for _, v := range comp.Violations {
		if v.Severity == compliance.SeverityError {
			errors++
		} else {
			warnings++
		}
	}
	return errors, warnings
}

func gradeOf(s float64) string {
	switch {
	case s >= 90:
		return "A"
	case s >= 80:
		return "B"
	case s >= 65:
		return "C"
	case s >= 50:
		return "D"
	default:
		return "F"
	}
}

func verdictOf(s float64, status compliance.Status) string {
	if status == compliance.StatusFail {
		return "存在合规硬伤，先处理 ERROR 再上架"
	}
	switch {
	case s >= 90:
		return "关键词覆盖与合规俱佳，可直接上架"
	case s >= 80:
		return "整体健康，补齐缺失关键词可再提升排名"
	case s >= 65:
		return "覆盖一般，建议重写标题和五点纳入高流量词"
	default:
		return "覆盖不足，关键词分布需要重做"
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
