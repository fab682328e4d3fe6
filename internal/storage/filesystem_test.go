package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fleveque/pet-composer/internal/model"
)

func TestFileSystem_Write(t *testing.T) {
	tmpDir := t.TempDir()
	fs, err := NewFileSystem(tmpDir)
	if err != nil {
		t.Fatalf("creating filesystem: %v", err)
	}

	// Write a fake PNG (just some bytes for testing)
	fakeImage := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	path, err := fs.Write("job-1", "standard", &model.Artifact{Data: fakeImage, Format: model.FormatPNG})
	if err != nil {
		t.Fatalf("writing artifact: %v", err)
	}
	if want := filepath.Join(tmpDir, "job-1", "standard.png"); path != want {
		t.Errorf("expected path %s, got %s", want, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if !bytes.Equal(data, fakeImage) {
		t.Errorf("expected %x, got %x", fakeImage, data)
	}
}

func TestFileSystem_Write_Empty(t *testing.T) {
	fs, err := NewFileSystem(t.TempDir())
	if err != nil {
		t.Fatalf("creating filesystem: %v", err)
	}
	if _, err := fs.Write("job", "story", nil); err == nil {
		t.Error("expected error for nil artifact")
	}
	if _, err := fs.Write("job", "story", &model.Artifact{Format: model.FormatJPEG}); err == nil {
		t.Error("expected error for empty artifact")
	}
}

func TestFileSystem_ArtifactPath(t *testing.T) {
	fs := &FileSystem{baseDir: "/data/out"}
	tests := []struct {
		format model.Format
		want   string
	}{
		{model.FormatPNG, "/data/out/abc/meme.png"},
		{model.FormatJPEG, "/data/out/abc/meme.jpg"},
	}
	for _, tt := range tests {
		if got := fs.ArtifactPath("abc", "meme", tt.format); got != tt.want {
			t.Errorf("expected %s, got %s", tt.want, got)
		}
	}
}
