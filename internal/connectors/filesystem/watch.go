package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/him6ul/AIAssistant/internal/core/domain"
	"github.com/him6ul/AIAssistant/internal/logger"
)

// Watch streams note changes under the root until ctx is cancelled.
// New subdirectories are watched as they appear.
func (s *Source) Watch(ctx context.Context) (<-chan domain.SourceEvent, error) {
	if !s.cfg.Watch {
		return nil, &domain.CapabilityMisuseError{Source: domain.SourceFilesystem, Capability: "CanSubscribe", Op: "Watch"}
	}
	if !s.IsConnected() {
		return nil, domain.ErrNotConnected
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := s.addTree(watcher, s.cfg.Path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", s.cfg.Path, err)
	}

	events := make(chan domain.SourceEvent, 64)
	go func() {
		defer close(events)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if s.isNewDir(event) {
					if err := s.addTree(watcher, event.Name); err != nil {
						logger.Warn("filesystem: watch %s: %v", event.Name, err)
					}
					continue
				}
				change, ok := s.handleEvent(event)
				if !ok {
					continue
				}
				select {
				case events <- change:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("filesystem: watcher error: %v", err)
			}
		}
	}()

	logger.Debug("filesystem: watching %s", s.cfg.Path)
	return events, nil
}

// addTree watches root and every visible directory below it.
func (s *Source) addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != s.cfg.Path && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func (s *Source) isNewDir(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) || isHidden(filepath.Base(event.Name)) {
		return false
	}
	info, err := os.Stat(event.Name)
	return err == nil && info.IsDir()
}

// handleEvent maps a filesystem event on a note file to a change event.
// Chmod-only events and files that are not notes are dropped.
func (s *Source) handleEvent(event fsnotify.Event) (domain.SourceEvent, bool) {
	name := filepath.Base(event.Name)
	if isHidden(name) || !s.cfg.matches(name) {
		return domain.SourceEvent{}, false
	}
	rel, err := s.relative(event.Name)
	if err != nil || !filepath.IsLocal(filepath.FromSlash(rel)) {
		return domain.SourceEvent{}, false
	}

	var change domain.ChangeType
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		change = domain.ChangeDeleted
	case event.Has(fsnotify.Create):
		change = domain.ChangeCreated
	case event.Has(fsnotify.Write):
		change = domain.ChangeUpdated
	default:
		return domain.SourceEvent{}, false
	}

	if change != domain.ChangeDeleted {
		info, err := os.Stat(event.Name)
		if errors.Is(err, fs.ErrNotExist) || (err == nil && info.IsDir()) {
			return domain.SourceEvent{}, false
		}
	}

	return domain.SourceEvent{
		Type:       change,
		Capability: domain.CapabilityNote,
		SourceType: domain.SourceFilesystem,
		ItemID:     domain.UnifiedID(domain.SourceFilesystem, rel),
		At:         time.Now().UTC(),
	}, true
}
