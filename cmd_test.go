package lz

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestCompress(t *testing.T) {
	const capacity = 1024
	name := filepath.Join(t.TempDir(), "input.txt")
	content := []byte(strings.Repeat("it was the best of times, it was the worst of times, ", 20))
	if err := os.WriteFile(name, content, 0o644); err != nil {
		t.Fatalf("%v", err)
	}

	// Compress
	compressed := bytes.NewBuffer(nil)
	if err := Compress(compressed, name, capacity); err != nil {
		t.Fatalf("%+v", err)
	}

	// Decompress
	decompressed := bytes.NewBuffer(nil)
	if err := Decompress(decompressed, compressed); err != nil {
		t.Fatalf("%+v", err)
	}

	// Check if the decompressed result is the same as the original file.
	if !bytes.Equal(content, decompressed.Bytes()) {
		t.Fatalf("%v %v", content, decompressed.Bytes())
	}
}

func TestCompressEmptyFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(name, nil, 0o644); err != nil {
		t.Fatalf("%v", err)
	}

	compressed := bytes.NewBuffer(nil)
	if err := Compress(compressed, name, 256); err != nil {
		t.Fatalf("%+v", err)
	}
	decompressed := bytes.NewBuffer(nil)
	if err := Decompress(decompressed, compressed); err != nil {
		t.Fatalf("%+v", err)
	}
	if decompressed.Len() != 0 {
		t.Fatalf("%d", decompressed.Len())
	}
}

func TestCompressCapacityTooSmall(t *testing.T) {
	name := filepath.Join(t.TempDir(), "input.txt")
	if err := os.WriteFile(name, []byte("x"), 0o644); err != nil {
		t.Fatalf("%v", err)
	}
	err := Compress(bytes.NewBuffer(nil), name, 100)
	if errors.Cause(err) != ErrConfig {
		t.Fatalf("%+v", err)
	}
}

func TestDecompressGarbage(t *testing.T) {
	if err := Decompress(bytes.NewBuffer(nil), strings.NewReader("not a container")); err == nil {
		t.Fatalf("garbage accepted")
	}
}
