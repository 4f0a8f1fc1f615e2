package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"syl-optimizer/internal/compliance"
	"syl-optimizer/internal/config"
	"syl-optimizer/internal/discovery"
	"syl-optimizer/internal/generator"
	"syl-optimizer/internal/jobstore"
	"syl-optimizer/internal/listing"
	"syl-optimizer/internal/logging"
	"syl-optimizer/internal/marketplace"
	"syl-optimizer/internal/output"
)

type Options struct {
	Inputs      []string
	ConfigPath  string
	OutputDir   string
	Num         int
	Marketplace string
	MaxRetries  int
	Provider    string
	LogFile     string
	CWD         string
	Stdout      io.Writer
	Stderr      io.Writer

	// 测试注入点：非空时跳过 .env / API key 加载。
	Generator generator.TextGenerator
	Jobs      jobstore.Store
}

type ItemResult struct {
	JobID       string
	Source      string
	Candidate   int
	Marketplace string
	OutputFile  string
	Score       float64
	Grade       string
	Err         error
}

type Result struct {
	Succeeded int
	Failed    int
	ElapsedMS int64
	Items     []ItemResult
}

type candidateJob struct {
	Req       listing.Requirement
	Candidate int
	Profile   marketplace.Profile
}

func Run(ctx context.Context, opts Options) (Result, error) {
	started := time.Now()
	cwd := strings.TrimSpace(opts.CWD)
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Result{}, fmt.Errorf("读取当前目录失败：%w", err)
		}
		cwd = wd
	}

	cfg, paths, err := config.Load(opts.ConfigPath, cwd)
	if err != nil {
		return Result{}, err
	}
	overrideConfig(cfg, opts)

	providerCfg, ok := cfg.Providers[cfg.Provider]
	if !ok {
		return Result{}, fmt.Errorf("配置中不存在 provider：%s", cfg.Provider)
	}

	rules, err := config.ReadComplianceRules(paths.ResolvedRulesPath)
	if err != nil {
		return Result{}, err
	}

	gen := opts.Generator
	if gen == nil {
		envMap, envErr := config.LoadEnvFile(paths.EnvPath)
		if envErr != nil {
			return Result{}, fmt.Errorf("未读取到 %s。先复制 %s 为 %s 并填写 %s", paths.EnvPath, paths.EnvExample, paths.EnvPath, cfg.APIKeyEnv)
		}
		apiKey := strings.TrimSpace(envMap[cfg.APIKeyEnv])
		if apiKey == "" {
			return Result{}, fmt.Errorf("%s 为空。先复制 %s 为 %s 并填写 key", cfg.APIKeyEnv, paths.EnvExample, paths.EnvPath)
		}
		gen = generator.NewClient(generator.ClientOptions{
			Provider:        cfg.Provider,
			BaseURL:         providerCfg.BaseURL,
			Model:           providerCfg.Model,
			APIMode:         providerCfg.APIMode,
			APIKey:          apiKey,
			ReasoningEffort: providerCfg.ModelReasoningEffort,
			Timeout:         time.Duration(cfg.RequestTimeoutSec) * time.Second,
		})
	}

	jobs := opts.Jobs
	if jobs == nil {
		jobs = jobstore.NewMemory()
	}

	logger, closer, err := logging.New(opts.Stdout, opts.LogFile)
	if err != nil {
		return Result{}, fmt.Errorf("初始化日志失败：%w", err)
	}
	if closer != nil {
		defer closer.Close()
	}

	logger.Emit(logging.Event{Event: "startup", Provider: cfg.Provider, Model: providerCfg.Model, Marketplace: cfg.Marketplace})
	logger.Emit(logging.Event{Event: "config_loaded", Input: paths.ConfigSource})

	inputPaths := make([]string, 0, len(opts.Inputs))
	for _, in := range opts.Inputs {
		inputPaths = append(inputPaths, absPath(cwd, in))
	}
	discoverRes, err := discovery.Discover(inputPaths)
	if err != nil {
		return Result{}, err
	}
	for _, w := range discoverRes.Warnings {
		logger.Emit(logging.Event{Level: "warn", Event: "scan_warning", Error: w})
	}

	validReqs := make([]listing.Requirement, 0, len(discoverRes.Files))
	result := Result{}
	for _, file := range discoverRes.Files {
		req, parseErr := listing.ParseFile(file)
		if parseErr != nil {
			result.Failed++
			logger.Emit(logging.Event{Level: "error", Event: "parse_failed", Input: file, Error: parseErr.Error()})
			continue
		}
		if strings.TrimSpace(req.Brand) == "" {
			result.Failed++
			logger.Emit(logging.Event{Level: "error", Event: "validation_failed", Input: file, Error: "品牌名缺失"})
			continue
		}
		if strings.TrimSpace(req.Category) == "" {
			result.Failed++
			logger.Emit(logging.Event{Level: "error", Event: "validation_failed", Input: file, Error: "分类缺失"})
			continue
		}
		for _, w := range req.Warnings {
			logger.Emit(logging.Event{Level: "warn", Event: "validation_warning", Input: file, Error: w})
		}
		validReqs = append(validReqs, req)
	}

	if len(validReqs) == 0 {
		result.ElapsedMS = time.Since(started).Milliseconds()
		if result.Failed > 0 {
			return result, nil
		}
		return result, fmt.Errorf("没有可优化的需求文件")
	}

	outDir := cfg.Output.Dir
	if strings.TrimSpace(outDir) == "" {
		outDir = "."
	}
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(cwd, outDir)
	}
	if err := output.EnsureDir(outDir); err != nil {
		result.ElapsedMS = time.Since(started).Milliseconds()
		return result, fmt.Errorf("创建输出目录失败：%w", err)
	}

	results := make(chan ItemResult, len(validReqs)*cfg.Output.Num)
	var wg sync.WaitGroup

	go func() {
		for _, req := range validReqs {
			profile := resolveProfile(req, cfg, logger)
			for i := 1; i <= cfg.Output.Num; i++ {
				job := candidateJob{Req: req, Candidate: i, Profile: profile}
				wg.Add(1)
				go func(j candidateJob) {
					defer wg.Done()
					results <- processCandidate(ctx, processCandidateOptions{
						Job:       j,
						OutDir:    outDir,
						Config:    cfg,
						Rules:     rules,
						Generator: gen,
						Jobs:      jobs,
						Logger:    logger,
					})
				}(job)
			}
		}
		wg.Wait()
		close(results)
	}()

	for item := range results {
		if item.Err == nil {
			result.Succeeded++
		} else {
			result.Failed++
		}
		result.Items = append(result.Items, item)
	}
	result.ElapsedMS = time.Since(started).Milliseconds()
	logger.Emit(logging.Event{Event: "finished", LatencyMS: result.ElapsedMS, Error: fmt.Sprintf("success=%d failed=%d", result.Succeeded, result.Failed)})
	return result, nil
}

// 站点优先级：需求文件 > 命令行/配置。未识别站点回落 us 并记一条 warning。
func resolveProfile(req listing.Requirement, cfg *config.Config, logger *logging.Logger) marketplace.Profile {
	id := strings.TrimSpace(req.Marketplace)
	if id == "" {
		id = cfg.Marketplace
	}
	if !marketplace.Known(id) {
		logger.Emit(logging.Event{Level: "warn", Event: "marketplace_fallback", Input: req.SourcePath, Marketplace: id,
			Error: fmt.Sprintf("未识别站点 %q，使用 %s", id, marketplace.DefaultID)})
	}
	return marketplace.Lookup(id)
}

type processCandidateOptions struct {
	Job       candidateJob
	OutDir    string
	Config    *config.Config
	Rules     compliance.Rules
	Generator generator.TextGenerator
	Jobs      jobstore.Store
	Logger    *logging.Logger
}

func processCandidate(ctx context.Context, opts processCandidateOptions) ItemResult {
	item := ItemResult{
		Source:      opts.Job.Req.SourcePath,
		Candidate:   opts.Job.Candidate,
		Marketplace: opts.Job.Profile.ID,
	}

	job, err := opts.Jobs.Create(jobstore.Job{
		Source:      opts.Job.Req.SourcePath,
		Candidate:   opts.Job.Candidate,
		Marketplace: opts.Job.Profile.ID,
	})
	if err != nil {
		item.Err = err
		return item
	}
	item.JobID = job.ID
	_ = opts.Jobs.Update(job.ID, func(j *jobstore.Job) { j.Status = jobstore.StatusRunning })

	fail := func(event string, err error) ItemResult {
		item.Err = err
		_ = opts.Jobs.Update(job.ID, func(j *jobstore.Job) {
			j.Status = jobstore.StatusFailed
			j.Error = err.Error()
		})
		opts.Logger.Emit(logging.Event{Level: "error", Event: event, Input: item.Source, Candidate: item.Candidate,
			Marketplace: item.Marketplace, JobID: job.ID, Error: err.Error()})
		return item
	}

	_, reportPath, err := output.NextReport(opts.OutDir, opts.Job.Profile.ID, 8, nil)
	if err != nil {
		return fail("name_failed", err)
	}

	out, err := Optimize(ctx, OptimizeInput{
		Source:         opts.Job.Req.SourcePath,
		Candidate:      opts.Job.Candidate,
		Brand:          opts.Job.Req.Brand,
		Category:       opts.Job.Req.Category,
		ProductContext: opts.Job.Req.BodyAfterMarker,
		Keywords:       opts.Job.Req.Keywords,
		Profile:        opts.Job.Profile,
		Rules:          opts.Rules,
		Optimizer:      opts.Config.Optimizer,
		Generation:     opts.Config.Generation,
		Weights:        opts.Config.Weights,
		Generator:      opts.Generator,
		MaxRetries:     opts.Config.MaxRetries,
		Logger:         opts.Logger,
	})
	if err != nil {
		return fail("optimize_failed", err)
	}
	opts.Logger.Emit(logging.Event{Event: "optimize_ok", Input: item.Source, Candidate: item.Candidate,
		Marketplace: item.Marketplace, JobID: job.ID, LatencyMS: out.LatencyMS,
		Score: out.Ranking.Score, Grade: out.Ranking.Grade, Coverage: out.Coverage.OverallPct,
		Violations: len(out.Compliance.Violations), Status: string(out.Compliance.Status)})

	md := RenderMarkdown(opts.Job.Req, opts.Job.Profile.ID, out)
	if err := os.WriteFile(reportPath, []byte(md), 0o644); err != nil {
		return fail("write_failed", err)
	}

	item.OutputFile = reportPath
	item.Score = out.Ranking.Score
	item.Grade = out.Ranking.Grade
	_ = opts.Jobs.Update(job.ID, func(j *jobstore.Job) {
		j.Status = jobstore.StatusSucceeded
		j.OutputFile = reportPath
		j.Score = out.Ranking.Score
	})
	opts.Logger.Emit(logging.Event{Event: "write_ok", Input: item.Source, Candidate: item.Candidate,
		Marketplace: item.Marketplace, JobID: job.ID, OutputFile: reportPath})
	return item
}

func overrideConfig(cfg *config.Config, opts Options) {
	if strings.TrimSpace(opts.OutputDir) != "" {
		cfg.Output.Dir = opts.OutputDir
	}
	if opts.Num > 0 {
		cfg.Output.Num = opts.Num
	}
	if strings.TrimSpace(opts.Marketplace) != "" {
		cfg.Marketplace = opts.Marketplace
	}
	if opts.MaxRetries > 0 {
		cfg.MaxRetries = opts.MaxRetries
	}
	if strings.TrimSpace(opts.Provider) != "" {
		cfg.Provider = opts.Provider
	}
}

func absPath(cwd, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(cwd, p)
}
