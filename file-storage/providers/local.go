package providers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	filestorage "github.com/galaplate/fixture/file-storage"
)

// LocalStorage implements Provider on local disk
type LocalStorage struct {
	root string
}

var _ filestorage.Provider = (*LocalStorage)(nil)

// NewLocalStorage creates a provider rooted at path; relative roots resolve
// against the working directory
func NewLocalStorage(path string) (*LocalStorage, error) {
	root, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve local storage root: %w", err)
	}
	return &LocalStorage{root: root}, nil
}

func (ls *LocalStorage) Root() string {
	return ls.root
}

func (ls *LocalStorage) resolve(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("invalid_file_path")
	}
	full := filepath.Join(ls.root, filepath.FromSlash(key))
	if full != ls.root && !strings.HasPrefix(full, ls.root+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid_file_path: %s escapes storage root", key)
	}
	return full, nil
}

// Put writes data to disk, creating parent directories as needed
func (ls *LocalStorage) Put(ctx context.Context, key string, data []byte, contentType string) (filestorage.Object, error) {
	if err := ctx.Err(); err != nil {
		return filestorage.Object{}, err
	}

	path, err := ls.resolve(key)
	if err != nil {
		return filestorage.Object{}, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return filestorage.Object{}, fmt.Errorf("directory_creation_failed: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return filestorage.Object{}, fmt.Errorf("file_save_failed: %w", err)
	}

	return filestorage.Object{
		Key:         key,
		Path:        path,
		Size:        int64(len(data)),
		ContentType: contentType,
		StorageType: ls.Name(),
	}, nil
}

// Get reads a file from disk
func (ls *LocalStorage) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := ls.resolve(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, filestorage.ErrNotFound
	}
	return data, err
}

// Delete removes a file from disk
func (ls *LocalStorage) Delete(ctx context.Context, key string) error {
	path, err := ls.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("file_delete_failed: %w", err)
	}
	return nil
}

// Exists checks if a file exists on disk
func (ls *LocalStorage) Exists(ctx context.Context, key string) (bool, error) {
	path, err := ls.resolve(key)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, err
}

// Name returns the provider name
func (ls *LocalStorage) Name() string {
	return "local"
}
