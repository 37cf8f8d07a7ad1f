package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"teambudget/internal/backup"
	"teambudget/internal/core"
)

func writeBackup(t *testing.T, s core.RosterState) string {
	t.Helper()
	data, err := backup.EncodeBytes(s)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "backup.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPrintReport(t *testing.T) {
	s := core.DefaultState()
	s.Roster = []core.Person{{ID: 1, Type: core.Player, FirstName: "Ana", PackageType: core.FullPackage}}
	path := writeBackup(t, s)

	var text bytes.Buffer
	if err := printReport(&text, path, "all", false); err != nil {
		t.Fatalf("printReport: %v", err)
	}
	if !strings.Contains(text.String(), "ORGANIZATION FEES") {
		t.Fatalf("budget section missing:\n%s", text.String())
	}

	var js bytes.Buffer
	if err := printReport(&js, path, "budget", true); err != nil {
		t.Fatalf("printReport json: %v", err)
	}
	var v map[string]any
	if err := json.Unmarshal(js.Bytes(), &v); err != nil {
		t.Fatalf("invalid json output: %v", err)
	}
}

func TestPrintReportErrors(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := printReport(&bytes.Buffer{}, bad, "all", false); err == nil {
		t.Fatal("expected error for invalid backup")
	}
	if err := printReport(&bytes.Buffer{}, bad, "summary", false); err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if err := printReport(&bytes.Buffer{}, filepath.Join(t.TempDir(), "missing.json"), "all", false); err == nil {
		t.Fatal("expected error for missing file")
	}
}
