package listing

import (
	"strings"
	"testing"
)

func TestFieldName(t *testing.T) {
	if got := (Field{Kind: FieldTitle}).Name(); got != "title" {
		t.Fatalf("unexpected: %q", got)
	}
	if got := (Field{Kind: FieldBullet, Index: 3}).Name(); got != "bullet_3" {
		t.Fatalf("unexpected: %q", got)
	}
	if got := (Field{Kind: FieldBackend}).Name(); got != "backend_terms" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestVisibleAndCompiledText(t *testing.T) {
	fields := []Field{
		{Kind: FieldTitle, Text: "Title Line"},
		{Kind: FieldBullet, Index: 1, Text: "First bullet"},
		{Kind: FieldBullet, Index: 2, Text: "   "},
		{Kind: FieldDescription, Text: "Description body"},
		{Kind: FieldBackend, Text: "hidden terms"},
	}
	visible := VisibleText(fields)
	if strings.Contains(visible, "hidden terms") {
		t.Fatalf("backend terms leaked into visible text: %q", visible)
	}
	if visible != "Title Line\nFirst bullet\nDescription body" {
		t.Fatalf("unexpected visible text: %q", visible)
	}
	compiled := CompiledText(fields)
	if !strings.Contains(compiled, "hidden terms") {
		t.Fatalf("compiled text must include backend terms: %q", compiled)
	}
}

func TestTitleAndBackendText(t *testing.T) {
	fields := []Field{
		{Kind: FieldTitle, Text: "The Title"},
		{Kind: FieldBackend, Text: "terms"},
	}
	if got := TitleText(fields); got != "The Title" {
		t.Fatalf("unexpected: %q", got)
	}
	if got := BackendText(fields); got != "terms" {
		t.Fatalf("unexpected: %q", got)
	}
	if got := TitleText(nil); got != "" {
		t.Fatalf("unexpected: %q", got)
	}
}
