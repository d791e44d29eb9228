package tsidconf

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConf(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tsid.conf")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write temp conf: %v", err)
	}
	return path
}

func TestLoadParsesLines(t *testing.T) {
	path := writeTempConf(t, "# comment\n16400,1,2\n\n16401,3,4\n")
	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(table) != 2 {
		t.Fatalf("len(table) = %d, want 2", len(table))
	}
	if s := table[16400]; s.Node != 1 || s.Slot != 2 {
		t.Fatalf("table[16400] = %+v, want {1 2}", s)
	}
}

func TestLoadSkipsMalformedLines(t *testing.T) {
	path := writeTempConf(t, "16400,1,2\nnot,enough\nbad,x,y\n16402,5,6\n")
	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(table) != 2 {
		t.Fatalf("len(table) = %d, want 2 (malformed lines skipped)", len(table))
	}
}

func TestLoadMissingFileReturnsEmptyTable(t *testing.T) {
	table, err := Load(filepath.Join(t.TempDir(), "does-not-exist.conf"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(table) != 0 {
		t.Fatalf("expected empty table, got %v", table)
	}
}

func TestLoadFirstExistingPathWins(t *testing.T) {
	a := writeTempConf(t, "16400,1,2\n")
	missing := filepath.Join(t.TempDir(), "missing.conf")
	table, err := Load(missing, a)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s := table[16400]; s.Node != 1 {
		t.Fatalf("expected first-existing path to be used, got %+v", table)
	}
}
