package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DirUploader stores uploads as files under a local root directory,
// one sub-directory per folder.
type DirUploader struct {
	root string
}

var _ Uploader = (*DirUploader)(nil)

func NewDirUploader(root string) *DirUploader {
	return &DirUploader{root: root}
}

func (u *DirUploader) Upload(ctx context.Context, folder, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := filepath.Join(u.root, folder)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("upload: create dir %q: %w", dir, err)
	}

	path := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("upload: write %q: %w", path, err)
	}
	return path, nil
}
