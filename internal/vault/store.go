package vault

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"go.uber.org/zap"
)

var (
	// ErrOutOfRange is returned when a position does not name an item.
	ErrOutOfRange = errors.New("item position out of range")
	// ErrNoPayload is returned when an operation needs a payload file and the
	// item is a note.
	ErrNoPayload = errors.New("item has no payload file")
)

// Store owns the ordered item list and mirrors it to one JSON document.
// Every mutation rewrites the whole document.
type Store struct {
	path  string
	log   *zap.Logger
	items []Item
}

// NewStore returns an empty store backed by the document at path. Call Load
// to read what is already on disk.
func NewStore(path string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{path: path, log: log}
}

// Path returns the document location.
func (s *Store) Path() string {
	return s.path
}

// Load replaces the in-memory list with the document contents. A missing or
// unparseable document yields an empty list; the failure is only logged.
func (s *Store) Load() []Item {
	s.items = nil
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Error("read vault document", zap.String("path", s.path), zap.Error(err))
		}
		return s.Items()
	}
	items, skipped, err := Decode(data)
	if err != nil {
		s.log.Error("parse vault document", zap.String("path", s.path), zap.Error(err))
		return s.Items()
	}
	if skipped > 0 {
		s.log.Warn("skipped invalid vault items", zap.Int("skipped", skipped))
	}
	s.items = items
	s.log.Debug("vault loaded", zap.Int("items", len(items)))
	return s.Items()
}

// Items returns a copy of the current list.
func (s *Store) Items() []Item {
	return slices.Clone(s.items)
}

// Len returns the number of items.
func (s *Store) Len() int {
	return len(s.items)
}

// At returns the item at position i.
func (s *Store) At(i int) (Item, error) {
	if i < 0 || i >= len(s.items) {
		return nil, ErrOutOfRange
	}
	return s.items[i], nil
}

// Append adds item at the end, persists the list and returns the new list.
// The in-memory list is unchanged when persisting fails.
func (s *Store) Append(item Item) ([]Item, error) {
	if item == nil {
		return s.Items(), errors.New("nil item")
	}
	next := append(slices.Clone(s.items), item)
	if err := s.save(next); err != nil {
		return s.Items(), err
	}
	s.items = next
	return s.Items(), nil
}

// Delete removes the item at position i, best-effort removes the files it
// owns, persists the list and returns the new list with the removed item.
func (s *Store) Delete(i int) ([]Item, Item, error) {
	if i < 0 || i >= len(s.items) {
		return s.Items(), nil, ErrOutOfRange
	}
	removed := s.items[i]
	next := slices.Delete(slices.Clone(s.items), i, i+1)
	for _, path := range removed.OwnedFiles() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.log.Warn("remove vault file", zap.String("path", path), zap.Error(err))
		}
	}
	s.items = next
	if err := s.save(next); err != nil {
		return s.Items(), removed, err
	}
	return s.Items(), removed, nil
}

func (s *Store) save(items []Item) error {
	data, err := Encode(items)
	if err != nil {
		return fmt.Errorf("encode vault document: %w", err)
	}
	if err := writeFileAtomic(s.path, data, 0o600); err != nil {
		s.log.Error("write vault document", zap.String("path", s.path), zap.Error(err))
		return fmt.Errorf("write vault document: %w", err)
	}
	return nil
}
