package app

import (
	"fmt"
	"io"
	"os"
	"strings"

	"syl-optimizer/internal/backend"
	"syl-optimizer/internal/compliance"
	"syl-optimizer/internal/config"
	"syl-optimizer/internal/coverage"
	"syl-optimizer/internal/keyword"
	"syl-optimizer/internal/listing"
	"syl-optimizer/internal/logging"
	"syl-optimizer/internal/marketplace"
	"syl-optimizer/internal/score"
)

type CheckOptions struct {
	Input       string
	ConfigPath  string
	Marketplace string
	LogFile     string
	CWD         string
	Stdout      io.Writer
}

type CheckResult struct {
	Source         string
	Marketplace    string
	Coverage       coverage.Report
	Compliance     compliance.Report
	Ranking        score.Ranking
	BackendUtilPct float64
}

// 离线复检一份已生成的 listing：不调模型，只重算覆盖率、合规和评分。
func Check(opts CheckOptions) (CheckResult, error) {
	cwd := strings.TrimSpace(opts.CWD)
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return CheckResult{}, fmt.Errorf("读取当前目录失败：%w", err)
		}
		cwd = wd
	}

	cfg, paths, err := config.Load(opts.ConfigPath, cwd)
	if err != nil {
		return CheckResult{}, err
	}
	rules, err := config.ReadComplianceRules(paths.ResolvedRulesPath)
	if err != nil {
		return CheckResult{}, err
	}

	logger, closer, err := logging.New(opts.Stdout, opts.LogFile)
	if err != nil {
		return CheckResult{}, fmt.Errorf("初始化日志失败：%w", err)
	}
	if closer != nil {
		defer closer.Close()
	}

	path := absPath(cwd, opts.Input)
	raw, err := os.ReadFile(path)
	if err != nil {
		return CheckResult{}, fmt.Errorf("读取 listing 文件失败（%s）：%w", path, err)
	}
	gen, err := ParseGenerated(string(raw))
	if err != nil {
		return CheckResult{}, fmt.Errorf("解析 listing 文件失败（%s）：%w", path, err)
	}

	marketplaceID := strings.TrimSpace(opts.Marketplace)
	if marketplaceID == "" {
		marketplaceID = gen.Marketplace
	}
	if marketplaceID == "" {
		marketplaceID = cfg.Marketplace
	}
	profile := marketplace.Lookup(marketplaceID)

	kws := keyword.Sanitize(gen.Keywords)
	fields := gen.Doc.Fields(profile)
	cov := coverage.Calculate(kws, listing.CompiledText(fields), gen.Doc.Title, cfg.Optimizer.CoverageThreshold)
	comp := compliance.Validate(fields, profile, rules)
	util := backend.Utilization(gen.Doc.BackendTerms, profile.BackendByteLimit)
	ranking := score.Compute(cov, comp, util, cfg.Optimizer.UtilizationTargetPct, cfg.Weights)

	logger.Emit(logging.Event{Event: "check_done", Input: path, Marketplace: profile.ID,
		Score: ranking.Score, Grade: ranking.Grade, Coverage: cov.OverallPct,
		Violations: len(comp.Violations), Status: string(comp.Status)})

	return CheckResult{
		Source:         path,
		Marketplace:    profile.ID,
		Coverage:       cov,
		Compliance:     comp,
		Ranking:        ranking,
		BackendUtilPct: util,
	}, nil
}
