// Package filesystem implements a note source over a directory of
// Markdown and plain text files.
//
// Each matching file is a note. The path relative to the root is the
// native ID, the containing directory is the notebook and the file
// modification time is LastModified. Hidden files and directories are
// skipped.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/him6ul/AIAssistant/internal/core/domain"
	"github.com/him6ul/AIAssistant/internal/core/ports/driven"
	"github.com/him6ul/AIAssistant/internal/normalisers/markdown"
)

// Ensure Source implements the interfaces.
var (
	_ driven.NoteSource = (*Source)(nil)
	_ driven.Watcher    = (*Source)(nil)
)

// Source reads and writes notes under a root directory.
type Source struct {
	cfg *Config

	mu        sync.RWMutex
	connected bool
}

// New creates a filesystem source.
func New(cfg *Config) *Source {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Source{cfg: cfg}
}

// SourceType returns the provider identifier.
func (s *Source) SourceType() domain.SourceType { return domain.SourceFilesystem }

// Capabilities returns the adapter feature flags.
func (s *Source) Capabilities() domain.Capabilities {
	return domain.Capabilities{
		CanSend:        true,
		CanReceive:     true,
		CanSubscribe:   s.cfg.Watch,
		ConcurrentSafe: true,
	}
}

// Connect checks that the root is a readable directory.
func (s *Source) Connect(context.Context) error {
	info, err := os.Stat(s.cfg.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Permanent(fmt.Errorf("%w: notes directory %s", domain.ErrNotFound, s.cfg.Path))
		}
		return domain.Permanent(fmt.Errorf("notes directory: %w", err))
	}
	if !info.IsDir() {
		return domain.Permanent(fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, s.cfg.Path))
	}

	s.mu.Lock()
	s.connected = true
	s.mu.Unlock()
	return nil
}

// Disconnect marks the source disconnected. Running watches stop with
// their context.
func (s *Source) Disconnect(context.Context) error {
	s.mu.Lock()
	s.connected = false
	s.mu.Unlock()
	return nil
}

// IsConnected reports whether Connect succeeded.
func (s *Source) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// FetchNotes reads every note file, newest first.
func (s *Source) FetchNotes(ctx context.Context, q domain.NoteQuery) ([]domain.UnifiedNote, error) {
	if !s.IsConnected() {
		return nil, domain.ErrNotConnected
	}

	var notes []domain.UnifiedNote
	err := filepath.WalkDir(s.cfg.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == s.cfg.Path {
				return err
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path != s.cfg.Path && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() || !s.cfg.matches(d.Name()) {
			return nil
		}

		note, err := s.readNote(path)
		if err != nil {
			return nil
		}
		if q.NotebookID != "" && note.NotebookID != q.NotebookID {
			return nil
		}
		notes = append(notes, *note)
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, domain.Transient(fmt.Errorf("walk %s: %w", s.cfg.Path, err))
	}

	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].LastModified.Equal(notes[j].LastModified) {
			return notes[i].SourceID < notes[j].SourceID
		}
		return notes[i].LastModified.After(notes[j].LastModified)
	})
	return domain.FilterNotes(notes, q), nil
}

// SearchNotes is not supported; the note service filters fetched notes.
func (s *Source) SearchNotes(context.Context, string, int) ([]domain.UnifiedNote, error) {
	return nil, &domain.CapabilityMisuseError{Source: domain.SourceFilesystem, Capability: "CanSearch", Op: "SearchNotes"}
}

// CreateNote writes a Markdown file named after the title. NotebookID is a
// directory relative to the root and is created when missing.
func (s *Source) CreateNote(_ context.Context, note domain.NewNote) (*domain.UnifiedNote, error) {
	if !s.IsConnected() {
		return nil, domain.ErrNotConnected
	}
	title := strings.TrimSpace(note.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: note needs a title", domain.ErrInvalidInput)
	}

	dir := s.cfg.Path
	if note.NotebookID != "" {
		rel := filepath.FromSlash(note.NotebookID)
		if !filepath.IsLocal(rel) {
			return nil, fmt.Errorf("%w: notebook %q is outside the notes directory", domain.ErrInvalidInput, note.NotebookID)
		}
		dir = filepath.Join(dir, rel)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, domain.Permanent(fmt.Errorf("create notebook: %w", err))
	}

	path, err := writeNew(dir, slug(title), markdown.Document(title, note.Content))
	if err != nil {
		return nil, err
	}
	return s.readNote(path)
}

// writeNew creates base.md in dir, adding a numeric suffix when the name
// is taken.
func writeNew(dir, base, content string) (string, error) {
	for i := 1; i < 1000; i++ {
		name := base + ".md"
		if i > 1 {
			name = base + "-" + strconv.Itoa(i) + ".md"
		}
		path := filepath.Join(dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", domain.Permanent(fmt.Errorf("create note: %w", err))
		}
		if _, err := f.WriteString(content); err != nil {
			f.Close()
			return "", domain.Permanent(fmt.Errorf("write note: %w", err))
		}
		if err := f.Close(); err != nil {
			return "", domain.Permanent(fmt.Errorf("write note: %w", err))
		}
		return path, nil
	}
	return "", domain.Permanent(fmt.Errorf("%w: too many notes named %s", domain.ErrInvalidInput, base))
}

// rawPayload is what RawData records for a note file.
type rawPayload struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

func (s *Source) readNote(path string) (*domain.UnifiedNote, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rel, err := s.relative(path)
	if err != nil {
		return nil, err
	}

	content := string(data)
	var title, body string
	if strings.EqualFold(filepath.Ext(path), ".md") || strings.EqualFold(filepath.Ext(path), ".markdown") {
		title = markdown.Title(content, path)
		body = markdown.Body(content)
	} else {
		title = markdown.TitleFromFilename(path)
		body = strings.TrimSpace(strings.ReplaceAll(content, "\r\n", "\n"))
	}

	notebook := filepath.ToSlash(filepath.Dir(rel))
	if notebook == "." {
		notebook = ""
	}

	return &domain.UnifiedNote{
		ID:           domain.UnifiedID(domain.SourceFilesystem, rel),
		SourceType:   domain.SourceFilesystem,
		SourceID:     rel,
		Title:        title,
		Content:      body,
		NotebookID:   notebook,
		LastModified: info.ModTime().UTC().Truncate(time.Millisecond),
		RawData:      domain.RawJSON(rawPayload{Path: path, Size: info.Size()}),
	}, nil
}

// relative returns path relative to the root with forward slashes.
func (s *Source) relative(path string) (string, error) {
	rel, err := filepath.Rel(s.cfg.Path, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// slug turns a title into a file name: lower case letters and digits
// joined by hyphens.
func slug(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r > 127 && unicode.IsLetter(r):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
		default:
			dash = true
		}
	}
	if b.Len() == 0 {
		return "note"
	}
	return b.String()
}
