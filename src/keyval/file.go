package keyval

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FileStore is a Store that keeps one file per key under a directory. It
// mirrors the plain-storage fallback used on platforms without a secure
// enclave. Keys are hex-encoded in file names so arbitrary key strings
// stay filesystem-safe.
type FileStore struct {
	fs  afero.Fs
	dir string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a file-backed store rooted at dir.
func NewFileStore(fs afero.Fs, dir string) (*FileStore, error) {
	if err := fs.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	return &FileStore{fs: fs, dir: dir}, nil
}

func (f *FileStore) pathFor(key string) string {
	return filepath.Join(f.dir, hex.EncodeToString([]byte(key))+".json")
}

func (f *FileStore) Get(ctx context.Context, key string) (string, bool, error) {
	data, err := afero.ReadFile(f.fs, f.pathFor(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(data), true, nil
}

func (f *FileStore) Set(ctx context.Context, key, value string) error {
	return afero.WriteFile(f.fs, f.pathFor(key), []byte(value), 0600)
}

func (f *FileStore) Delete(ctx context.Context, key string) error {
	err := f.fs.Remove(f.pathFor(key))
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
