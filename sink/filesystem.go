package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/wirvsvirus/landingzone/filepaths"
)

// FileSystemStore writes objects below Root/<bucket>/<key>, used for local landing zones
type FileSystemStore struct {
	Root string
}

func NewFileSystemStore(root string) (*FileSystemStore, error) {
	expanded, err := homedir.Expand(root)
	if err != nil {
		return nil, fmt.Errorf("error expanding %s: %w", root, err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return nil, err
	}
	return &FileSystemStore{Root: abs}, nil
}

func (s *FileSystemStore) Identifier() string {
	return "file_system"
}

// Put writes to a temporary file and renames it, readers never see a partial object
func (s *FileSystemStore) Put(ctx context.Context, bucket, key string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target := s.path(bucket, key)
	dir, err := filepaths.EnsureDir(filepath.Dir(target))
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}

func (s *FileSystemStore) Location(bucket, key string) string {
	return s.path(bucket, key)
}

func (s *FileSystemStore) path(bucket, key string) string {
	return filepath.Join(s.Root, bucket, filepath.FromSlash(key))
}
