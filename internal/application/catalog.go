package application

import (
	"errors"

	"voice-form/internal/domain"
)

var (
	ErrTemplateNotFound  = errors.New("template not found")
	ErrNoTemplate        = errors.New("no template selected")
	ErrEntryNotFound     = errors.New("saved entry not found")
	ErrEntryNameRequired = errors.New("entry name required")
)

// TemplateCatalog resolves template names to their text. Get matches the name
// exactly, ignoring case; Lookup may also accept an approximate spoken name.
type TemplateCatalog interface {
	Get(name string) (domain.Template, bool)
	Lookup(name string) (domain.Template, bool)
	Names() []string
}

// EntryStore persists named session snapshots.
type EntryStore interface {
	Save(name string, snap domain.Snapshot) error
	Load(name string) (domain.Snapshot, error)
	Delete(name string) error
	List() ([]string, error)
}
