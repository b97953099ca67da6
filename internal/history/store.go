package history

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"
)

// Entry is a transcript file on disk
type Entry struct {
	Name    string
	Path    string
	Format  Format
	ModTime time.Time
}

// Store writes transcripts into a directory
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore creates a store rooted at dir. The directory is created on the
// first Save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the transcripts directory
func (s *Store) Dir() string {
	return s.dir
}

// Save writes t in format f and returns the file path
func (s *Store) Save(t Transcript, f Format) (string, error) {
	data, err := Export(t, f)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create transcripts directory: %w", err)
	}

	base := t.CreatedAt.Format("2006-01-02-150405") + "-" + slug(t.Title)
	path := filepath.Join(s.dir, base+f.Ext())
	for i := 2; fileExists(path); i++ {
		path = filepath.Join(s.dir, fmt.Sprintf("%s-%d%s", base, i, f.Ext()))
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write transcript: %w", err)
	}
	return path, nil
}

// List returns the saved transcripts, most recent first
func (s *Store) List() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read transcripts directory: %w", err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		f, ok := formatOf(de.Name())
		if !ok {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Name:    de.Name(),
			Path:    filepath.Join(s.dir, de.Name()),
			Format:  f,
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ModTime.After(entries[j].ModTime)
	})
	return entries, nil
}

func formatOf(name string) (Format, bool) {
	switch filepath.Ext(name) {
	case ".md":
		return FormatMarkdown, true
	case ".html":
		return FormatHTML, true
	case ".json":
		return FormatJSON, true
	}
	return "", false
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// slug turns a title into a short file name part
func slug(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimRight(b.String(), "-")
	if r := []rune(s); len(r) > 48 {
		s = strings.TrimRight(string(r[:48]), "-")
	}
	if s == "" {
		return "chat"
	}
	return s
}
