// Package files stores shared files in a single flat upload directory.
package files

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/Its-donkey/sharebox/internal/ui/model"
)

var (
	// ErrNotFound is returned for names that do not refer to a visible regular file.
	ErrNotFound = errors.New("file not found")
	// ErrInvalidName is returned when a name is empty after sanitising or escapes the directory.
	ErrInvalidName = errors.New("invalid file name")
	// ErrTooLarge is returned by Save when the content exceeds the store limit.
	ErrTooLarge = errors.New("file too large")
)

// TimeLayout formats mtime_str values.
const TimeLayout = "2006-01-02 15:04:05"

// Store manages the upload directory.
type Store struct {
	dir      string
	hidden   []string
	maxBytes int64
}

// Options configures a Store.
type Options struct {
	// Hidden holds doublestar patterns matched against file names; matches are
	// neither listed nor served.
	Hidden []string
	// MaxBytes caps a single saved file; <= 0 disables the cap.
	MaxBytes int64
}

// New opens the upload directory, creating it if needed.
func New(dir string, opts Options) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("upload dir is required")
	}
	for _, pattern := range opts.Hidden {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid hidden pattern %q", pattern)
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir, hidden: append([]string(nil), opts.Hidden...), maxBytes: opts.MaxBytes}, nil
}

// Dir returns the upload directory.
func (s *Store) Dir() string {
	return s.dir
}

// IsHidden reports whether name matches one of the hidden patterns.
func (s *Store) IsHidden(name string) bool {
	for _, pattern := range s.hidden {
		if matched, err := doublestar.Match(pattern, name); err == nil && matched {
			return true
		}
	}
	return false
}

// List returns the visible regular files, newest first.
func (s *Store) List() ([]model.FileInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.FileInfo{}, nil
		}
		return nil, fmt.Errorf("read upload dir: %w", err)
	}

	files := make([]model.FileInfo, 0, len(entries))
	for _, entry := range entries {
		if s.IsHidden(entry.Name()) || !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		files = append(files, Describe(info))
	}

	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].MTime.Equal(files[j].MTime) {
			return files[i].MTime.After(files[j].MTime)
		}
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// Describe converts a stat result into the listing shape.
func Describe(info os.FileInfo) model.FileInfo {
	mtime := info.ModTime()
	return model.FileInfo{
		Name:     info.Name(),
		Size:     info.Size(),
		SizeStr:  FormatSize(info.Size()),
		MTime:    mtime,
		MTimeStr: FormatTime(mtime),
	}
}

// Save writes r under a sanitised form of name. When the name is taken a
// numeric suffix is added before the extension (report_1.pdf, report_2.pdf).
// It returns the stored name.
func (s *Store) Save(name string, r io.Reader) (string, error) {
	clean := SecureFilename(name)
	if clean == "" || s.IsHidden(clean) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	f, stored, err := s.createUnique(clean)
	if err != nil {
		return "", err
	}

	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	n, copyErr := io.Copy(f, src)
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		os.Remove(filepath.Join(s.dir, stored))
		return "", fmt.Errorf("write %s: %w", stored, copyErr)
	case s.maxBytes > 0 && n > s.maxBytes:
		os.Remove(filepath.Join(s.dir, stored))
		return "", fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, s.maxBytes)
	case closeErr != nil:
		os.Remove(filepath.Join(s.dir, stored))
		return "", fmt.Errorf("close %s: %w", stored, closeErr)
	}
	return stored, nil
}

func (s *Store) createUnique(name string) (*os.File, string, error) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	candidate := name
	for counter := 1; ; counter++ {
		f, err := os.OpenFile(filepath.Join(s.dir, candidate), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, candidate, nil
		}
		if !os.IsExist(err) {
			return nil, "", fmt.Errorf("create %s: %w", candidate, err)
		}
		candidate = base + "_" + strconv.Itoa(counter) + ext
	}
}

// Delete removes the named file.
func (s *Store) Delete(name string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

// Open returns the named file for reading along with its stat result.
func (s *Store) Open(name string) (*os.File, os.FileInfo, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("open %s: %w", name, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat %s: %w", name, err)
	}
	return f, info, nil
}

// resolve maps a stored name to a path, refusing anything that is not a
// visible regular file directly inside the upload dir.
func (s *Store) resolve(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if s.IsHidden(name) {
		return "", ErrNotFound
	}
	path := filepath.Join(s.dir, name)
	info, err := os.Lstat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", ErrNotFound
	}
	return path, nil
}

// FormatSize renders a byte count the way the listing shows it:
// "512 B", "1.5 KB", "12.0 MB", "1.1 GB".
func FormatSize(size int64) string {
	const unit = 1024
	switch {
	case size < unit:
		return fmt.Sprintf("%d B", size)
	case size < unit*unit:
		return fmt.Sprintf("%.1f KB", float64(size)/unit)
	case size < unit*unit*unit:
		return fmt.Sprintf("%.1f MB", float64(size)/(unit*unit))
	default:
		return fmt.Sprintf("%.1f GB", float64(size)/(unit*unit*unit))
	}
}

// FormatTime renders t in the listing layout using local time.
func FormatTime(t time.Time) string {
	return t.Local().Format(TimeLayout)
}
