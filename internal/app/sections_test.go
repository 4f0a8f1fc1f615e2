package app

import (
	"strings"
	"testing"
)

func TestNormalizeModelText(t *testing.T) {
	if got := normalizeModelText("```text\nhello world\n```"); got != "hello world" {
		t.Fatalf("unexpected: %q", got)
	}
	if got := normalizeModelText("  plain  "); got != "plain" {
		t.Fatalf("unexpected: %q", got)
	}
	if got := normalizeModelText("```markdown\nline\n```"); got != "line" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestCleanTitleLine(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Title: My Product Name", "My Product Name"},
		{"标题：My Product Name", "My Product Name"},
		{"- My Product Name", "My Product Name"},
		{"1. My Product Name", "My Product Name"},
		{"\n\nMy Product Name\nsecond line", "My Product Name"},
	}
	for _, c := range cases {
		if got := cleanTitleLine(c.in); got != c.want {
			t.Fatalf("cleanTitleLine(%q)=%q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseBullets(t *testing.T) {
	text := "- first point\n2. second point\n• third point\n\n* fourth point\n5) fifth point"
	out, err := parseBullets(text, 5)
	if err != nil {
		t.Fatalf("parseBullets error: %v", err)
	}
	if out[0] != "first point" || out[4] != "fifth point" {
		t.Fatalf("unexpected: %v", out)
	}
	if _, err := parseBullets("one\ntwo", 5); err == nil {
		t.Fatalf("expected count error")
	}
}

func TestParseParagraphs(t *testing.T) {
	text := "para one line a\npara one line b\n\npara two\n\n\npara three"
	out, err := parseParagraphs(text, 3)
	if err != nil {
		t.Fatalf("parseParagraphs error: %v", err)
	}
	if out[0] != "para one line a para one line b" {
		t.Fatalf("unexpected: %q", out[0])
	}
	if out[2] != "para three" {
		t.Fatalf("unexpected: %q", out[2])
	}
	if _, err := parseParagraphs("only one", 3); err == nil {
		t.Fatalf("expected count error")
	}
}

func TestValidateTitle(t *testing.T) {
	issues := validateTitle("", 200, nil)
	if len(issues) != 1 || issues[0] != "标题为空" {
		t.Fatalf("unexpected: %v", issues)
	}

	issues = validateTitle(strings.Repeat("x", 201), 200, nil)
	if len(issues) != 1 || !strings.Contains(issues[0], "标题超长") {
		t.Fatalf("unexpected: %v", issues)
	}

	issues = validateTitle("DemoBrand Insulated Water Bottle", 200, []string{"water bottle", "straw lid"})
	if len(issues) != 1 || !strings.Contains(issues[0], "straw lid") {
		t.Fatalf("unexpected: %v", issues)
	}

	issues = validateTitle("DemoBrand Insulated Water Bottle", 200, []string{"water bottle"})
	if len(issues) != 0 {
		t.Fatalf("unexpected: %v", issues)
	}
}

func TestValidateBullets(t *testing.T) {
	long := strings.Repeat("a", 130)
	issues := validateBullets([]string{long, "short"}, 120, 255)
	if len(issues) != 1 || !strings.Contains(issues[0], "第2点太短") {
		t.Fatalf("unexpected: %v", issues)
	}
	issues = validateBullets([]string{strings.Repeat("a", 300)}, 120, 255)
	if len(issues) != 1 || !strings.Contains(issues[0], "第1点太长") {
		t.Fatalf("unexpected: %v", issues)
	}
}

func TestValidateParagraphs(t *testing.T) {
	if issues := validateParagraphs([]string{"ok", " "}); len(issues) != 1 {
		t.Fatalf("unexpected: %v", issues)
	}
}
