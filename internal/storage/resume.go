// Package storage keeps uploaded resume files.
package storage

import (
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// ResumeStore writes resume uploads below one directory of a filesystem.
type ResumeStore struct {
	fs     afero.Fs
	dir    string
	logger logrus.FieldLogger
}

// NewResumeStore creates a ResumeStore rooted at dir on fs.
func NewResumeStore(fs afero.Fs, dir string, logger logrus.FieldLogger) *ResumeStore {
	return &ResumeStore{fs: fs, dir: dir, logger: logger}
}

// Save stores the content of r under a sanitized version of filename and returns
// the stored path, which is the reference handed to the pipeline.
// A file with the same sanitized name is overwritten.
func (s *ResumeStore) Save(filename string, r io.Reader) (string, error) {
	name := SecureFilename(filename)
	if name == "" {
		name = "resume-" + uuid.NewString()
	}
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	path := filepath.Join(s.dir, name)
	f, err := s.fs.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	written, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	s.logger.WithFields(logrus.Fields{"path": path, "bytes": written}).Info("resume stored")
	return path, nil
}

// SecureFilename reduces a client supplied file name to a safe single path element.
// It may return an empty string.
func SecureFilename(filename string) string {
	filename = strings.NewReplacer("/", " ", `\`, " ").Replace(filename)
	filename = strings.Join(strings.Fields(filename), "_")
	filename = unsafeFilenameChars.ReplaceAllString(filename, "")
	return strings.Trim(filename, "._")
}
