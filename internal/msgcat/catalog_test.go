package msgcat

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEmbeddedDefaults(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := c.Render("error.game_not_found", map[string]any{"GameID": "g1"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "Game g1 was not found." {
		t.Fatalf("got %q", got)
	}
	if _, err := c.Render("error.game_not_found", map[string]any{}); err == nil {
		t.Fatalf("missing data key should fail")
	}
	if _, err := c.Render("nope", nil); err == nil {
		t.Fatalf("missing template should fail")
	}
	if got := c.Text("nope", nil, "fallback"); got != "fallback" {
		t.Fatalf("Text fallback = %q", got)
	}
	var nilCat *Catalog
	if got := nilCat.Text("error.internal", nil, "x"); got != "x" {
		t.Fatalf("nil catalog Text = %q", got)
	}
}

func TestOverrides(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("error:\n  not_your_turn: \"상대 차례입니다.\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.Text("error.not_your_turn", nil, ""); got != "상대 차례입니다." {
		t.Fatalf("override not applied: %q", got)
	}
	if !c.Has("error.internal") {
		t.Fatalf("defaults lost after override")
	}

	if err := os.WriteFile(filepath.Join(dir, "b.yml"), []byte("error:\n  not_your_turn: \"again\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := New(dir); err == nil {
		t.Fatalf("duplicate override keys accepted")
	}
}

func TestRejectsNonStringLeaves(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("error:\n  count: 3\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := New(dir); err == nil {
		t.Fatalf("numeric leaf accepted")
	}
}
