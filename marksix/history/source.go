package history

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Source loads the stored draw history, newest first
type Source interface {
	Load(ctx context.Context) ([]Record, error)
}

// FileSource reads the history from a local csv file
type FileSource struct {
	path string
}

var _ Source = (*FileSource)(nil)

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Path() string {
	return s.path
}

// Load implements Source, a missing file returns ErrNotAvailable
func (s *FileSource) Load(ctx context.Context) ([]Record, error) {
	fd, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotAvailable
	} else if err != nil {
		return nil, err
	}
	defer fd.Close()
	return ParseCSV(fd)
}

// Save atomically replaces the csv file with records
func (s *FileSource) Save(records []Record) error {
	return writeFileAtomic(s.path, func(fd *os.File) error {
		return WriteCSV(fd, records)
	})
}

// writeFileAtomic writes into a temporary file of the same directory then renames it over path
func writeFileAtomic(path string, write func(*os.File) error) error {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
