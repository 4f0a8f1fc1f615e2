package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"syl-optimizer/internal/backend"
	"syl-optimizer/internal/compliance"
	"syl-optimizer/internal/config"
	"syl-optimizer/internal/coverage"
	"syl-optimizer/internal/generator"
	"syl-optimizer/internal/keyword"
	"syl-optimizer/internal/listing"
	"syl-optimizer/internal/logging"
	"syl-optimizer/internal/marketplace"
	"syl-optimizer/internal/score"
)

type OptimizeInput struct {
	Source         string
	Candidate      int
	Brand          string
	Category       string
	ProductContext string
	Keywords       []keyword.Keyword
	Profile        marketplace.Profile
	Rules          compliance.Rules
	Optimizer      config.OptimizerConfig
	Generation     config.GenerationConfig
	Weights        score.Weights
	Generator      generator.TextGenerator
	MaxRetries     int
	Logger         *logging.Logger
}

type OptimizeOutput struct {
	Doc            ListingDocument
	Fields         []listing.Field
	Tiers          keyword.Tiers
	Coverage       coverage.Report
	Compliance     compliance.Report
	Ranking        score.Ranking
	BackendUtilPct float64
	LatencyMS      int64
}

// 流程：分层 → 标题 → 五点/描述并发 → 后台词填充 → 覆盖率 → 合规 → 评分。
func Optimize(ctx context.Context, in OptimizeInput) (OptimizeOutput, error) {
	kws := keyword.Sanitize(in.Keywords)
	tiers := keyword.AssignTiers(kws, keyword.Split{
		TitleRatio:   in.Optimizer.TitleTierRatio,
		BulletsRatio: in.Optimizer.BulletsTierRatio,
	})

	doc := ListingDocument{}
	var totalLatency int64

	titleText, latency, err := generateSectionWithRetry(ctx, in, tiers, listing.FieldTitle, doc)
	totalLatency += latency
	if err != nil {
		return OptimizeOutput{}, err
	}
	doc.Title = cleanTitleLine(titleText)

	type sectionResult struct {
		field     listing.FieldKind
		text      string
		latencyMS int64
		err       error
	}
	results := make(chan sectionResult, 2)
	var wg sync.WaitGroup
	for _, field := range []listing.FieldKind{listing.FieldBullet, listing.FieldDescription} {
		wg.Add(1)
		go func(field listing.FieldKind) {
			defer wg.Done()
			text, lat, genErr := generateSectionWithRetry(ctx, in, tiers, field, doc)
			results <- sectionResult{field: field, text: text, latencyMS: lat, err: genErr}
		}(field)
	}
	wg.Wait()
	close(results)

	for res := range results {
		totalLatency += res.latencyMS
		if res.err != nil {
			return OptimizeOutput{}, res.err
		}
		switch res.field {
		case listing.FieldBullet:
			bullets, parseErr := parseBullets(normalizeModelText(res.text), in.Generation.BulletCount)
			if parseErr != nil {
				return OptimizeOutput{}, parseErr
			}
			doc.BulletPoints = bullets
		case listing.FieldDescription:
			pars, parseErr := parseParagraphs(normalizeModelText(res.text), in.Generation.DescriptionParagraphs)
			if parseErr != nil {
				return OptimizeOutput{}, parseErr
			}
			doc.DescriptionParagraphs = pars
		}
	}

	visible := listing.VisibleText(doc.Fields(in.Profile))
	doc.BackendTerms = backend.Pack(keyword.Rank(kws), visible, in.Profile.BackendByteLimit, in.Profile.PluralSuffix)
	fields := doc.Fields(in.Profile)

	cov := coverage.Calculate(kws, listing.CompiledText(fields), doc.Title, in.Optimizer.CoverageThreshold)
	comp := compliance.Validate(fields, in.Profile, in.Rules)
	util := backend.Utilization(doc.BackendTerms, in.Profile.BackendByteLimit)
	ranking := score.Compute(cov, comp, util, in.Optimizer.UtilizationTargetPct, in.Weights)

	return OptimizeOutput{
		Doc:            doc,
		Fields:         fields,
		Tiers:          tiers,
		Coverage:       cov,
		Compliance:     comp,
		Ranking:        ranking,
		BackendUtilPct: util,
		LatencyMS:      totalLatency,
	}, nil
}

func generateSectionWithRetry(ctx context.Context, in OptimizeInput, tiers keyword.Tiers, field listing.FieldKind, doc ListingDocument) (string, int64, error) {
	var (
		outText    string
		outLatency int64
	)
	lastIssues := ""
	err := generator.WithBackoff(generator.BackoffOptions{
		MaxRetries: in.MaxRetries,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   8 * time.Second,
		Jitter:     0.25,
		OnRetry: func(attempt int, wait time.Duration, err error) {
			in.Logger.Emit(logging.Event{
				Level:     "warn",
				Event:     "retry_backoff_" + string(field),
				Input:     in.Source,
				Candidate: in.Candidate,
				Stage:     string(field),
				Attempt:   attempt,
				WaitMS:    wait.Milliseconds(),
				Error:     err.Error(),
			})
		},
	}, func(attempt int) error {
		req := buildSectionRequest(in, tiers, field, doc)
		req.Issues = lastIssues

		in.Logger.Emit(logging.Event{Event: "api_request_" + string(field), Input: in.Source, Candidate: in.Candidate, Stage: string(field), Attempt: attempt})
		resp, err := in.Generator.Generate(ctx, req)
		if err != nil {
			lastIssues = "- API 调用失败: " + err.Error()
			in.Logger.Emit(logging.Event{Level: "warn", Event: "api_error_" + string(field), Input: in.Source, Candidate: in.Candidate, Stage: string(field), Attempt: attempt, Error: err.Error()})
			return errors.New(lastIssues)
		}

		text := normalizeModelText(resp.Text)
		issues := validateSectionText(in, tiers, field, text)
		if len(issues) > 0 {
			lastIssues = "- " + strings.Join(issues, "\n- ")
			in.Logger.Emit(logging.Event{Level: "warn", Event: "validate_error_" + string(field), Input: in.Source, Candidate: in.Candidate, Stage: string(field), Attempt: attempt, Error: strings.Join(issues, "; ")})
			return errors.New(strings.Join(issues, "; "))
		}
		outText = text
		outLatency = resp.LatencyMS
		return nil
	})
	if err != nil {
		if strings.TrimSpace(lastIssues) == "" {
			lastIssues = err.Error()
		}
		return "", 0, fmt.Errorf("%s 重试后仍失败: %s", field, lastIssues)
	}
	return outText, outLatency, nil
}

func buildSectionRequest(in OptimizeInput, tiers keyword.Tiers, field listing.FieldKind, doc ListingDocument) generator.Request {
	req := generator.Request{
		Field:          field,
		Brand:          in.Brand,
		Category:       in.Category,
		ProductContext: in.ProductContext,
		Language:       in.Profile.Language,
		PriorTitle:     doc.Title,
		PriorBullets:   doc.BulletPoints,
	}
	switch field {
	case listing.FieldTitle:
		req.Keywords = phrases(tiers.Title)
		req.Budget = in.Profile.TitleLimit
	case listing.FieldBullet:
		req.Keywords = phrases(tiers.Bullets)
		req.Budget = in.Profile.BulletLimit
		req.BudgetMin = in.Generation.BulletMinChars
		req.Count = in.Generation.BulletCount
	case listing.FieldDescription:
		req.Keywords = phrases(tiers.Backend)
		req.Budget = in.Profile.DescriptionLimit
		req.Count = in.Generation.DescriptionParagraphs
	}
	return req
}

func validateSectionText(in OptimizeInput, tiers keyword.Tiers, field listing.FieldKind, text string) []string {
	switch field {
	case listing.FieldTitle:
		topN := in.Generation.TitleMustContainTopKW
		titleKWs := phrases(tiers.Title)
		if topN > len(titleKWs) {
			topN = len(titleKWs)
		}
		return validateTitle(cleanTitleLine(text), in.Profile.TitleLimit, titleKWs[:topN])
	case listing.FieldBullet:
		items, err := parseBullets(text, in.Generation.BulletCount)
		if err != nil {
			return []string{err.Error()}
		}
		return validateBullets(items, in.Generation.BulletMinChars, in.Profile.BulletLimit)
	case listing.FieldDescription:
		pars, err := parseParagraphs(text, in.Generation.DescriptionParagraphs)
		if err != nil {
			return []string{err.Error()}
		}
		return validateParagraphs(pars)
	}
	return nil
}

func phrases(kws []keyword.Keyword) []string {
	out := make([]string, 0, len(kws))
	for _, kw := range kws {
		out = append(out, kw.Phrase)
	}
	return out
}
