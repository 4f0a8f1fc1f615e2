package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"syl-optimizer/internal/listing"
)

func writeReq(t *testing.T, path string) {
	t.Helper()
	content := listing.Marker + "\n品牌名: A\n分类: C\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverSingleFile(t *testing.T) {
	d := t.TempDir()
	p := filepath.Join(d, "req.md")
	writeReq(t, p)

	res, err := Discover([]string{p})
	if err != nil {
		t.Fatalf("Discover error: %v", err)
	}
	if len(res.Files) != 1 || res.Files[0] != p {
		t.Fatalf("unexpected: %v", res.Files)
	}
}

func TestDiscoverRejectsNonRequirement(t *testing.T) {
	d := t.TempDir()
	p := filepath.Join(d, "plain.md")
	if err := os.WriteFile(p, []byte("# just a doc"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Discover([]string{p}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDiscoverScansDir(t *testing.T) {
	d := t.TempDir()
	writeReq(t, filepath.Join(d, "a.md"))
	writeReq(t, filepath.Join(d, "b.txt"))
	if err := os.WriteFile(filepath.Join(d, "skip.md"), []byte("not a req"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(d, "skip.json"), []byte(listing.Marker), 0o644); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(d, ".hidden")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	writeReq(t, filepath.Join(sub, "c.md"))

	res, err := Discover([]string{d})
	if err != nil {
		t.Fatalf("Discover error: %v", err)
	}
	if len(res.Files) != 2 {
		t.Fatalf("unexpected files: %v", res.Files)
	}
	if res.Files[0] != filepath.Join(d, "a.md") || res.Files[1] != filepath.Join(d, "b.txt") {
		t.Fatalf("files must be sorted: %v", res.Files)
	}
}

func TestDiscoverDedup(t *testing.T) {
	d := t.TempDir()
	p := filepath.Join(d, "a.md")
	writeReq(t, p)
	res, err := Discover([]string{p, p, d})
	if err != nil {
		t.Fatalf("Discover error: %v", err)
	}
	if len(res.Files) != 1 {
		t.Fatalf("duplicates not removed: %v", res.Files)
	}
}

func TestDiscoverEmpty(t *testing.T) {
	if _, err := Discover(nil); err == nil {
		t.Fatalf("expected error for no inputs")
	}
	if _, err := Discover([]string{t.TempDir()}); err == nil {
		t.Fatalf("expected error for dir without requirements")
	}
}
