// Package upload stores ticket attachments on local disk.
package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/natefinch/atomic"
	"golang.org/x/text/unicode/norm"

	"helpdesk/internal/feature/ticket/usecase"
	"helpdesk/internal/platform/config"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// errTooLarge is returned by the size-limited reader.
var errTooLarge = errors.New("file exceeds upload limit")

// Store は添付ファイルをアップロードディレクトリに保存します。
type Store struct {
	dir      string
	maxBytes int64
	allowed  map[string]struct{}
}

var _ usecase.AttachmentStore = (*Store)(nil)

// NewStore builds a Store from the upload config.
func NewStore(cfg config.UploadConfig) *Store {
	allowed := make(map[string]struct{}, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}
	return &Store{dir: cfg.Dir, maxBytes: cfg.MaxBytes, allowed: allowed}
}

// Dir returns the upload directory.
func (s *Store) Dir() string { return s.dir }

// EnsureDir creates the upload directory if it does not exist.
func (s *Store) EnsureDir() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create upload dir %s: %w", s.dir, err)
	}
	return nil
}

// Save checks the extension, sanitizes the name and writes the file
// atomically. An existing file with the same name is replaced.
func (s *Store) Save(u usecase.Upload) (string, error) {
	if !s.allowedExt(u.Filename) {
		return "", fmt.Errorf("%w: %s", usecase.ErrUnsupportedFileType, u.Filename)
	}
	name := SanitizeFilename(u.Filename)
	if name == "" {
		return "", fmt.Errorf("%w: filename %q is empty after sanitizing", usecase.ErrValidation, u.Filename)
	}
	if !s.allowedExt(name) {
		return "", fmt.Errorf("%w: %s", usecase.ErrUnsupportedFileType, name)
	}
	if s.maxBytes > 0 && u.Size > s.maxBytes {
		return "", fmt.Errorf("%w: file is larger than %d bytes", usecase.ErrValidation, s.maxBytes)
	}
	if u.Content == nil {
		return "", fmt.Errorf("%w: no file content", usecase.ErrValidation)
	}

	r := &limitedReader{r: u.Content, n: s.maxBytes, limited: s.maxBytes > 0}
	if err := atomic.WriteFile(filepath.Join(s.dir, name), r); err != nil {
		if r.exceeded {
			return "", fmt.Errorf("%w: file is larger than %d bytes", usecase.ErrValidation, s.maxBytes)
		}
		return "", fmt.Errorf("failed to store attachment: %w", err)
	}
	return name, nil
}

// Remove deletes a stored file. A missing file yields an error wrapping
// fs.ErrNotExist.
func (s *Store) Remove(name string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// Path returns the location of an existing stored file.
func (s *Store) Path(name string) (string, error) {
	path, err := s.resolve(name)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s: %w", name, os.ErrNotExist)
	}
	return path, nil
}

// resolve rejects names that would not have been produced by Save.
func (s *Store) resolve(name string) (string, error) {
	if name == "" || SanitizeFilename(name) != name {
		return "", fmt.Errorf("invalid stored filename %q: %w", name, os.ErrNotExist)
	}
	return filepath.Join(s.dir, name), nil
}

func (s *Store) allowedExt(name string) bool {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return false
	}
	_, ok := s.allowed[strings.ToLower(name[i+1:])]
	return ok
}

// SanitizeFilename folds the name to ASCII and drops path components and
// any character outside [A-Za-z0-9_.-]. Spaces become underscores.
// The result may be empty.
func SanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range norm.NFKD.String(name) {
		if r < utf8.RuneSelf {
			b.WriteRune(r)
		}
	}
	name = strings.NewReplacer("/", " ", `\`, " ").Replace(b.String())
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

// limitedReader fails once more than n bytes have been read.
type limitedReader struct {
	r        io.Reader
	n        int64
	limited  bool
	exceeded bool
}

func (l *limitedReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	if !l.limited {
		return n, err
	}
	l.n -= int64(n)
	if l.n < 0 {
		l.exceeded = true
		return n, errTooLarge
	}
	return n, err
}
