package kv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// FileKV guarda cada clave como un archivo JSON dentro de un directorio.
type FileKV struct {
	dir string
}

func NewFileKV(dir string) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileKV{dir: dir}, nil
}

func (f *FileKV) path(key string) string {
	// Las claves usan ":" como separador de namespace; no es valido en
	// nombres de archivo en todas las plataformas.
	name := strings.ReplaceAll(key, ":", "_") + ".json"
	return filepath.Join(f.dir, name)
}

func (f *FileKV) Get(_ context.Context, key string) (string, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

func (f *FileKV) Set(_ context.Context, key, value string) error {
	return os.WriteFile(f.path(key), []byte(value), 0o644)
}

func (f *FileKV) Delete(_ context.Context, key string) error {
	err := os.Remove(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
