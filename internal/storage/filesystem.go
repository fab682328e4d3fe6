package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fleveque/pet-composer/internal/model"
)

// FileSystem writes encoded artifacts to disk for the CLI.
// Artifacts are stored at: {baseDir}/{job}/{name}.{ext}
type FileSystem struct {
	baseDir string
}

// NewFileSystem creates a new FileSystem storage, ensuring the base directory exists.
func NewFileSystem(baseDir string) (*FileSystem, error) {
	// MkdirAll is mkdir -p; 0755 is owner rwx, group and others rx.
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &FileSystem{baseDir: baseDir}, nil
}

// JobDir returns the directory holding one job's artifacts.
func (fs *FileSystem) JobDir(job string) string {
	return filepath.Join(fs.baseDir, job)
}

// ArtifactPath returns where an artifact named name would be written for job.
// The extension follows the artifact format.
func (fs *FileSystem) ArtifactPath(job, name string, format model.Format) string {
	return filepath.Join(fs.JobDir(job), name+"."+format.Extension())
}

// Write saves an artifact, creating the job directory if needed, and returns
// the path it was written to.
func (fs *FileSystem) Write(job, name string, artifact *model.Artifact) (string, error) {
	if artifact == nil || len(artifact.Data) == 0 {
		return "", fmt.Errorf("nothing to write for %s/%s", job, name)
	}
	if err := os.MkdirAll(fs.JobDir(job), 0755); err != nil {
		return "", fmt.Errorf("creating job directory: %w", err)
	}

	path := fs.ArtifactPath(job, name, artifact.Format)
	if err := os.WriteFile(path, artifact.Data, 0644); err != nil {
		return "", fmt.Errorf("writing artifact: %w", err)
	}
	return path, nil
}
