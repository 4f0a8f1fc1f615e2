package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"syl-optimizer/internal/listing"
)

func titleRequest() Request {
	return Request{
		Field:          listing.FieldTitle,
		Brand:          "DemoBrand",
		Category:       "Home & Kitchen",
		ProductContext: "32oz insulated bottle",
		Keywords:       []string{"water bottle", "insulated"},
		Language:       "en",
		Budget:         200,
	}
}

func TestGenerateDeepSeek(t *testing.T) {
	var gotPath string
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		if payload["model"] != "deepseek-chat" {
			t.Errorf("unexpected model: %v", payload["model"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "DemoBrand Insulated Water Bottle"}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{Provider: "deepseek", BaseURL: srv.URL, Model: "deepseek-chat", APIKey: "sk-test"})
	res, err := c.Generate(context.Background(), titleRequest())
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if res.Text != "DemoBrand Insulated Water Bottle" {
		t.Fatalf("unexpected text: %q", res.Text)
	}
	if gotPath != "/chat/completions" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("unexpected auth: %s", gotAuth)
	}
}

func TestGenerateOpenAIChatMode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "Some Title"}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{Provider: "openai", BaseURL: srv.URL, Model: "gpt-4o-mini", APIMode: "chat", APIKey: "k"})
	res, err := c.Generate(context.Background(), titleRequest())
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if res.Text != "Some Title" {
		t.Fatalf("unexpected text: %q", res.Text)
	}
}

func TestGenerateClaude(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "ck" {
			t.Errorf("missing x-api-key header")
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Errorf("missing anthropic-version header")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": "Claude Title"}},
		})
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{Provider: "claude", BaseURL: srv.URL, Model: "m", APIKey: "ck"})
	res, err := c.Generate(context.Background(), titleRequest())
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if res.Text != "Claude Title" {
		t.Fatalf("unexpected text: %q", res.Text)
	}
}

func TestGenerateHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{Provider: "deepseek", BaseURL: srv.URL, Model: "m", APIKey: "k"})
	_, err := c.Generate(context.Background(), titleRequest())
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("unexpected error: %v", err)
	}
	if !isRateLimitError(err) {
		t.Fatalf("429 must be treated as rate limit")
	}
}

func TestGenerateUnknownProvider(t *testing.T) {
	c := NewClient(ClientOptions{Provider: "llama"})
	if _, err := c.Generate(context.Background(), titleRequest()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestJoinURL(t *testing.T) {
	cases := []struct {
		base, path, want string
	}{
		{"https://api.openai.com", "/v1/responses", "https://api.openai.com/v1/responses"},
		{"https://api.openai.com/v1", "/v1/responses", "https://api.openai.com/v1/responses"},
		{"https://api.deepseek.com/", "/chat/completions", "https://api.deepseek.com/chat/completions"},
		{"", "/v1/responses", "https://api.openai.com/v1/responses"},
	}
	for _, c := range cases {
		if got := joinURL(c.base, c.path); got != c.want {
			t.Fatalf("joinURL(%q,%q)=%q, want %q", c.base, c.path, got, c.want)
		}
	}
}
