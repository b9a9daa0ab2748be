package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/peterbourgon/diskv/v3"

	"voice-form/internal/application"
	"voice-form/internal/domain"
)

const (
	entriesDir = "entries"
	fileSuffix = ".json"
)

type record struct {
	domain.Snapshot
	SavedAt time.Time `json:"saved_at"`
}

// EntryStore keeps saved form entries as one JSON file per name.
type EntryStore struct {
	d      *diskv.Diskv
	logger *slog.Logger
	now    func() time.Time
}

func New(basePath string, logger *slog.Logger) *EntryStore {
	return &EntryStore{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      1024 * 1024, // 1MB
		}),
		logger: logger,
		now:    time.Now,
	}
}

func (s *EntryStore) Save(name string, snap domain.Snapshot) error {
	if name == "" {
		return application.ErrEntryNameRequired
	}

	val, err := json.Marshal(record{Snapshot: snap, SavedAt: s.now().UTC()})
	if err != nil {
		return fmt.Errorf("encoding entry: %w", err)
	}

	if err := s.d.Write(name, val); err != nil {
		return fmt.Errorf("writing entry: %w", err)
	}

	s.logger.Debug("entry written", "name", name, "bytes", len(val))
	return nil
}

func (s *EntryStore) Load(name string) (domain.Snapshot, error) {
	if name == "" || !s.d.Has(name) {
		return domain.Snapshot{}, fmt.Errorf("%w: %s", application.ErrEntryNotFound, name)
	}

	val, err := s.d.Read(name)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("reading entry: %w", err)
	}

	var r record
	if err := json.Unmarshal(val, &r); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decoding entry: %w", err)
	}
	return r.Snapshot, nil
}

func (s *EntryStore) Delete(name string) error {
	if name == "" || !s.d.Has(name) {
		return fmt.Errorf("%w: %s", application.ErrEntryNotFound, name)
	}
	if err := s.d.Erase(name); err != nil {
		return fmt.Errorf("erasing entry: %w", err)
	}
	return nil
}

// List returns saved entry names in lexical order.
func (s *EntryStore) List() ([]string, error) {
	cancel := make(chan struct{})
	defer close(cancel)

	names := make([]string, 0)
	for key := range s.d.Keys(cancel) {
		if key == "" {
			continue
		}
		names = append(names, key)
	}
	sort.Strings(names)
	return names, nil
}

func keyToPathTransform(key string) *diskv.PathKey {
	return &diskv.PathKey{
		Path:     []string{entriesDir},
		FileName: url.PathEscape(key) + fileSuffix,
	}
}

// pathToKeyTransform maps foreign files to the empty key, which List skips.
func pathToKeyTransform(pathKey *diskv.PathKey) string {
	escaped, ok := strings.CutSuffix(pathKey.FileName, fileSuffix)
	if !ok {
		return ""
	}
	key, err := url.PathUnescape(escaped)
	if err != nil {
		return ""
	}
	return key
}
