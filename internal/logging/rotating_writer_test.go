package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestRotatingWriterKeepsOneBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.log")
	writer, err := newRotatingWriter(path, 1)
	if err != nil {
		t.Fatalf("create writer: %v", err)
	}
	defer writer.Close()

	chunk := func(b byte) []byte { return bytes.Repeat([]byte{b}, 512*1024) }
	for _, b := range []byte{'a', 'b', 'c'} {
		if _, err := writer.Write(chunk(b)); err != nil {
			t.Fatalf("write chunk %c: %v", b, err)
		}
	}

	cur, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if len(cur) != 512*1024 || cur[0] != 'c' {
		t.Fatalf("expected current file to hold only the last chunk, got %d bytes starting %q", len(cur), cur[:1])
	}
	backup, err := os.ReadFile(path + ".1")
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if len(backup) != 1024*1024 || backup[0] != 'a' || backup[len(backup)-1] != 'b' {
		t.Fatalf("unexpected backup: %d bytes", len(backup))
	}
}

func TestRotatingWriterAppendsToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.log")
	if err := os.WriteFile(path, []byte("old\n"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	writer, err := newRotatingWriter(path, 1)
	if err != nil {
		t.Fatalf("create writer: %v", err)
	}
	if _, err := writer.Write([]byte("new\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = writer.Close()

	b, _ := os.ReadFile(path)
	if string(b) != "old\nnew\n" {
		t.Fatalf("unexpected content %q", b)
	}
	if _, err := os.Stat(path + ".1"); !os.IsNotExist(err) {
		t.Fatalf("no rotation expected, stat err=%v", err)
	}
}
