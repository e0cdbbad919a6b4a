package logging

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRotatingFileRotatesPastMaxBytes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fod.log")

	rf, err := newRotatingFile(path, 16, 3)
	if err != nil {
		t.Fatalf("newRotatingFile: %v", err)
	}
	defer rf.Close()

	for i := 0; i < 5; i++ {
		if _, err := rf.Write([]byte("0123456789\n")); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected active log file to exist: %v", err)
	}
	if _, err := os.Stat(path + ".1"); err != nil {
		t.Fatalf("expected a rotated backup to exist: %v", err)
	}
}

func TestRotatingFileDropsBackupsPastMaxBackups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fod.log")

	rf, err := newRotatingFile(path, 8, 2)
	if err != nil {
		t.Fatalf("newRotatingFile: %v", err)
	}
	defer rf.Close()

	for i := 0; i < 10; i++ {
		if _, err := rf.Write([]byte("0123456789\n")); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}

	if _, err := os.Stat(path + ".3"); err == nil {
		t.Fatal("expected backup .3 to have been dropped past maxBackups=2")
	}
}
