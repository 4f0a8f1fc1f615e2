package score

import (
	"testing"

	"syl-optimizer/internal/compliance"
	"syl-optimizer/internal/coverage"
)

func TestComputePerfectScore(t *testing.T) {
	cov := coverage.Report{OverallPct: 100, TotalCount: 10, CoveredCount: 10, ExactMatchCount: 3}
	comp := compliance.Report{Status: compliance.StatusPass}
	r := Compute(cov, comp, 70, 70, DefaultWeights())
	if r.Score != 100 {
		t.Fatalf("unexpected score: %v", r.Score)
	}
	if r.Grade != "A" {
		t.Fatalf("unexpected grade: %s", r.Grade)
	}
	if r.Verdict != "关键词覆盖与合规俱佳，可直接上架" {
		t.Fatalf("unexpected verdict: %s", r.Verdict)
	}
}

func TestComputePenalty(t *testing.T) {
	cov := coverage.Report{OverallPct: 100, TotalCount: 10, CoveredCount: 10, ExactMatchCount: 3}
	comp := compliance.Report{
		Status: compliance.StatusFail,
		Violations: []compliance.Violation{
			{Severity: compliance.SeverityError},
			{Severity: compliance.SeverityWarning},
		},
	}
	r := Compute(cov, comp, 70, 70, DefaultWeights())
	if r.Score != 88 {
		t.Fatalf("unexpected score: %v", r.Score)
	}
	if r.Verdict != "存在合规硬伤，先处理 ERROR 再上架" {
		t.Fatalf("unexpected verdict: %s", r.Verdict)
	}
}

func TestComputeScoreClamped(t *testing.T) {
	cov := coverage.Report{OverallPct: 10, TotalCount: 10, CoveredCount: 1}
	comp := compliance.Report{Status: compliance.StatusFail}
	for i := 0; i < 20; i++ {
		comp.Violations = append(comp.Violations, compliance.Violation{Severity: compliance.SeverityError})
	}
	r := Compute(cov, comp, 0, 70, DefaultWeights())
	if r.Score != 0 {
		t.Fatalf("score must clamp at 0, got %v", r.Score)
	}
	if r.Grade != "F" {
		t.Fatalf("unexpected grade: %s", r.Grade)
	}
}

func TestExactMatchNorm(t *testing.T) {
	// 关键词不足 3 个时按实际数量归一化
	if got := exactMatchNorm(coverage.Report{TotalCount: 2, ExactMatchCount: 2}); got != 1 {
		t.Fatalf("unexpected: %v", got)
	}
	if got := exactMatchNorm(coverage.Report{TotalCount: 10, ExactMatchCount: 3}); got != 1 {
		t.Fatalf("unexpected: %v", got)
	}
	if got := exactMatchNorm(coverage.Report{TotalCount: 10, ExactMatchCount: 0}); got != 0 {
		t.Fatalf("unexpected: %v", got)
	}
	if got := exactMatchNorm(coverage.Report{}); got != 0 {
		t.Fatalf("unexpected: %v", got)
	}
}

func TestComputeUtilizationTarget(t *testing.T) {
	cov := coverage.Report{OverallPct: 0, TotalCount: 1}
	comp := compliance.Report{Status: compliance.StatusPass}
	w := Weights{BackendUtilization: 1}
	if r := Compute(cov, comp, 35, 70, w); r.Score != 50 {
		t.Fatalf("unexpected score: %v", r.Score)
	}
	if r := Compute(cov, comp, 140, 70, w); r.Score != 100 {
		t.Fatalf("utilization above target must clamp: %v", r.Score)
	}
}

func TestGradeBoundaries(t *testing.T) {
	cases := []struct {
		s    float64
		want string
	}{
		{90, "A"}, {89.9, "B"}, {80, "B"}, {79.9, "C"}, {65, "C"}, {64.9, "D"}, {50, "D"}, {49.9, "F"},
	}
	for _, c := range cases {
		if got := gradeOf(c.s); got != c.want {
			t.Fatalf("gradeOf(%v)=%s, want %s", c.s, got, c.want)
		}
	}
}

func TestComputeZeroWeights(t *testing.T) {
	cov := coverage.Report{OverallPct: 100, TotalCount: 3, ExactMatchCount: 3}
	r := Compute(cov, compliance.Report{Status: compliance.StatusPass}, 70, 70, Weights{})
	if r.Score != 0 {
		t.Fatalf("zero weights must not divide by zero, got %v", r.Score)
	}
}
