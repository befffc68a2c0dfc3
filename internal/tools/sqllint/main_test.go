package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeGo(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLintFlagsMissingAndDuplicateMarkers(t *testing.T) {
	dir := t.TempDir()
	writeGo(t, dir, "a.go", "package q\n\nconst QOne = `--sql 11111111-2222-4333-8444-555555555555\nSELECT 1`\n\nconst QMissing = `SELECT 2`\n")
	writeGo(t, dir, "b.go", "package q\n\nconst QDup = `--sql 11111111-2222-4333-8444-555555555555\nINSERT INTO t VALUES (1)`\n\nconst Msg = \"Please update your profile\"\n")

	l := newLinter()
	if err := l.lintTarget(dir); err != nil {
		t.Fatalf("lintTarget() unexpected error: %v", err)
	}
	got := l.sorted()
	if len(got) != 2 {
		t.Fatalf("violations = %+v, want 2", got)
	}
	if got[0].name != "QMissing" || !strings.Contains(got[0].message, "missing") {
		t.Fatalf("first violation = %+v", got[0])
	}
	if got[1].name != "QDup" || !strings.Contains(got[1].message, "QOne") {
		t.Fatalf("second violation = %+v", got[1])
	}
}

func TestLintAcceptsRepositoryQueries(t *testing.T) {
	l := newLinter()
	if err := l.lintTarget(filepath.Join("..", "..", "sqlinline")); err != nil {
		t.Fatalf("lintTarget() unexpected error: %v", err)
	}
	if len(l.violations) != 0 {
		t.Fatalf("sqlinline violations: %+v", l.violations)
	}
	if len(l.markers) == 0 {
		t.Fatalf("no markers found in sqlinline")
	}
}
