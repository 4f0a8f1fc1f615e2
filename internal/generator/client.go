package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type ClientOptions struct {
	Provider        string
	BaseURL         string
	Model           string
	APIMode         string
	APIKey          string
	ReasoningEffort string
	Timeout         time.Duration
}

type Client struct {
	opts       ClientOptions
	httpClient *http.Client
}

func NewClient(opts ClientOptions) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}
	return &Client{opts: opts, httpClient: &http.Client{Timeout: opts.Timeout}}
}

func (c *Client) Generate(ctx context.Context, req Request) (Result, error) {
	provider := strings.ToLower(strings.TrimSpace(c.opts.Provider))
	if provider == "" {
		provider = "openai"
	}
	systemPrompt := buildSystemPrompt(req)
	userPrompt := buildUserPrompt(req)

	start := time.Now()
	var (
		text string
		err  error
	)
	switch provider {
	case "openai":
		text, err = c.generateOpenAI(ctx, systemPrompt, userPrompt)
	case "deepseek":
		text, err = c.generateDeepSeek(ctx, systemPrompt, userPrompt)
	case "gemini":
		text, err = c.generateGemini(ctx, systemPrompt, userPrompt)
	case "claude":
		text, err = c.generateClaude(ctx, systemPrompt, userPrompt)
	default:
		err = fmt.Errorf("不支持的 provider：%s", provider)
	}
	if err != nil {
		return Result{}, err
	}
	return Result{Text: strings.TrimSpace(text), LatencyMS: time.Since(start).Milliseconds()}, nil
}

func (c *Client) generateOpenAI(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	mode := strings.ToLower(strings.TrimSpace(c.opts.APIMode))
	if mode == "" {
		mode = "auto"
	}
	switch mode {
	case "responses":
		return c.openAIResponses(ctx, systemPrompt, userPrompt)
	case "chat":
		return c.openAIChat(ctx, systemPrompt, userPrompt)
	case "auto":
		text, err := c.openAIResponses(ctx, systemPrompt, userPrompt)
		if err == nil {
			return text, nil
		}
		return c.openAIChat(ctx, systemPrompt, userPrompt)
	default:
		return "", fmt.Errorf("openai api_mode 不支持：%s", c.opts.APIMode)
	}
}

func (c *Client) openAIResponses(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	payload := map[string]any{
		"model": c.opts.Model,
		"input": []map[string]any{
			{
				"role":    "system",
				"content": []map[string]any{{"type": "input_text", "text": systemPrompt}},
			},
			{
				"role":    "user",
				"content": []map[string]any{{"type": "input_text", "text": userPrompt}},
			},
		},
	}
	if strings.TrimSpace(c.opts.ReasoningEffort) != "" {
		payload["reasoning"] = map[string]any{"effort": c.opts.ReasoningEffort}
	}

	var resp struct {
		OutputText string `json:"output_text"`
		Output     []struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"output"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := c.doJSON(ctx, http.MethodPost, joinURL(c.opts.BaseURL, "/v1/responses"), c.opts.APIKey, nil, payload, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("responses API 错误：%s", resp.Error.Message)
	}
	if strings.TrimSpace(resp.OutputText) != "" {
		return resp.OutputText, nil
	}
	var b strings.Builder
	for _, o := range resp.Output {
		for _, ctn := range o.Content {
			if strings.TrimSpace(ctn.Text) != "" {
				if b.Len() > 0 {
					b.WriteByte('\n')
				}
				b.WriteString(ctn.Text)
			}
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("responses API 返回为空")
	}
	return b.String(), nil
}

func (c *Client) openAIChat(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	payload := map[string]any{
		"model": c.opts.Model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
	}
	if strings.TrimSpace(c.opts.ReasoningEffort) != "" {
		payload["reasoning_effort"] = c.opts.ReasoningEffort
		payload["reasoning"] = map[string]any{"effort": c.opts.ReasoningEffort}
	}

	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := c.doJSON(ctx, http.MethodPost, joinURL(c.opts.BaseURL, "/v1/chat/completions"), c.opts.APIKey, nil, payload, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("chat completions 错误：%s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completions 返回为空")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("chat completions 内容为空")
	}
	return text, nil
}

func (c *Client) generateGemini(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	base := strings.TrimSuffix(c.opts.BaseURL, "/")
	model := strings.TrimSpace(c.opts.Model)
	if model == "" {
		return "", fmt.Errorf("gemini model 不能为空")
	}
	u := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", base, url.PathEscape(model), url.QueryEscape(c.opts.APIKey))
	payload := map[string]any{
		"systemInstruction": map[string]any{
			"parts": []map[string]string{{"text": systemPrompt}},
		},
		"contents": []map[string]any{
			{
				"role":  "user",
				"parts": []map[string]string{{"text": userPrompt}},
			},
		},
	}

	var resp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := c.doJSON(ctx, http.MethodPost, u, "", nil, payload, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("gemini API 错误：%s", resp.Error.Message)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini 返回为空")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

func (c *Client) generateClaude(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	payload := map[string]any{
		"model":      c.opts.Model,
		"max_tokens": 4096,
		"system":     systemPrompt,
		"messages": []map[string]string{
			{"role": "user", "content": userPrompt},
		},
	}
	var resp struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	headers := map[string]string{
		"x-api-key":         c.opts.APIKey,
		"anthropic-version": "2023-06-01",
	}
	if err := c.doJSON(ctx, http.MethodPost, joinURL(c.opts.BaseURL, "/v1/messages"), "", headers, payload, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("claude API 错误：%s", resp.Error.Message)
	}
	for _, ctn := range resp.Content {
		if strings.TrimSpace(ctn.Text) != "" {
			return ctn.Text, nil
		}
	}
	return "", fmt.Errorf("claude 返回文本为空")
}

func (c *Client) generateDeepSeek(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	payload := map[string]any{
		"model": c.opts.Model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
		"temperature": 1.0,
		"stream":      false,
	}
	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := c.doJSON(ctx, http.MethodPost, joinURL(c.opts.BaseURL, "/chat/completions"), c.opts.APIKey, nil, payload, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("deepseek chat completions 错误：%s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("deepseek chat completions 返回为空")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("deepseek chat completions 内容为空")
	}
	return text, nil
}

func (c *Client) doJSON(ctx context.Context, method, endpoint, bearer string, extraHeaders map[string]string, in any, out any) error {
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(in); err != nil {
		return fmt.Errorf("编码请求失败：%w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, buf)
	if err != nil {
		return fmt.Errorf("创建请求失败：%w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if strings.TrimSpace(bearer) != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	for k, v := range extraHeaders {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("请求失败：%w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取响应失败：%w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("解析响应失败：%w; 原始响应: %s", err, truncate(string(body), 800))
	}
	return nil
}

func joinURL(base, path string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = "https://api.openai.com"
	}
	base = strings.TrimSuffix(base, "/")
	if strings.HasSuffix(base, "/v1") && strings.HasPrefix(path, "/v1/") {
		path = strings.TrimPrefix(path, "/v1")
	}
	if strings.HasPrefix(path, "/") {
		return base + path
	}
	return base + "/" + path
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
