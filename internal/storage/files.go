package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/meur/civatlas/internal/catalog"
	"github.com/meur/civatlas/internal/models"
)

// FileSource reads datasets from <dir>/<file> or its zstd-compressed
// <dir>/<file>.zst sibling.
type FileSource struct {
	dir       string
	table     *catalog.Table
	validator *catalog.Validator
}

// NewFileSource creates a FileSource rooted at dir
func NewFileSource(dir string, table *catalog.Table, validator *catalog.Validator) *FileSource {
	return &FileSource{dir: dir, table: table, validator: validator}
}

// Fetch reads, validates and decodes the dataset of c
func (f *FileSource) Fetch(ctx context.Context, c models.Category) (*models.Dataset, error) {
	data, err := f.ReadRaw(ctx, c)
	if err != nil {
		return nil, err
	}
	if f.validator != nil {
		if err := f.validator.Validate(data); err != nil {
			return nil, fmt.Errorf("%s: %w", c, err)
		}
	}
	return models.DecodeDataset(data)
}

// ReadRaw returns the undecoded payload of c
func (f *FileSource) ReadRaw(ctx context.Context, c models.Category) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(f.dir, f.table.File(c))

	data, err := os.ReadFile(path)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	data, err = readZstd(path + ".zst")
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, c)
	}
	return data, err
}

func readZstd(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	dec, err := zstd.NewReader(file)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", filepath.Base(path), err)
	}
	return data, nil
}
