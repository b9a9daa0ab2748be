package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"voice-form/internal/domain"
)

// Assistant hosts a single form-filling session. It owns the session state and
// serializes every change to it.
type Assistant struct {
	listener *Listener
	catalog  TemplateCatalog
	entries  EntryStore
	refiner  Refiner
	notifier Notifier
	logger   *slog.Logger

	mu       sync.Mutex
	template domain.Template
	state    domain.State
}

func NewAssistant(
	listener *Listener,
	catalog TemplateCatalog,
	entries EntryStore,
	refiner Refiner,
	notifier Notifier,
	logger *slog.Logger,
) *Assistant {
	return &Assistant{
		listener: listener,
		catalog:  catalog,
		entries:  entries,
		refiner:  refiner,
		notifier: notifier,
		logger:   logger,
	}
}

// Status is a read-only view of the session.
type Status struct {
	Template     string              `json:"template"`
	Fields       []string            `json:"fields"`
	Cursor       int                 `json:"cursor"`
	CurrentField string              `json:"current_field"`
	Values       map[string][]string `json:"values"`
	Rendered     string              `json:"rendered"`
}

// Finalized is the outcome of refining the rendered form.
type Finalized struct {
	Rendered string `json:"rendered"`
	Text     string `json:"text"`
	Fallback bool   `json:"fallback"`
}

func (a *Assistant) Run(ctx context.Context) error {
	if err := a.listener.Start(ctx, a.HandleUtterance); err != nil {
		return err
	}
	defer a.listener.Stop()

	a.logger.Info("assistant ready, listening for dictation")

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-a.listener.Done():
		return nil
	}
}

// SelectTemplate starts a fresh session on the named template. A template
// without placeholders is rejected and the current session is kept.
func (a *Assistant) SelectTemplate(name string) error {
	tmpl, ok := a.catalog.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}

	fields, err := domain.ExtractFields(tmpl.Text)
	if err != nil {
		return &domain.MalformedTemplateError{Template: tmpl.Name}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.template = tmpl
	a.state = domain.NewState(fields)

	a.logger.Info("template selected",
		"template", tmpl.Name,
		"fields", len(fields),
		"current_field", a.state.CurrentKey(),
	)
	return nil
}

// HandleUtterance applies one finalized utterance to the session.
func (a *Assistant) HandleUtterance(_ context.Context, text string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.template.Name == "" {
		a.logger.Warn("no template selected, ignoring utterance", "text", text)
		return
	}

	cmd := domain.Classify(text)
	field := a.state.CurrentKey()
	a.state = domain.ProcessUtterance(a.state, text)

	a.logger.Info("applied utterance",
		"action", cmd.Action,
		"field", field,
		"cursor", int(a.state.Cursor),
		"current_field", a.state.CurrentKey(),
	)
	a.logger.Debug("session", "summary", a.state.Summary())
}

func (a *Assistant) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()

	fields := make([]string, len(a.state.Fields))
	copy(fields, a.state.Fields)

	return Status{
		Template:     a.template.Name,
		Fields:       fields,
		Cursor:       int(a.state.Cursor),
		CurrentField: a.state.CurrentKey(),
		Values:       a.state.Buffer.Clone(),
		Rendered:     domain.Render(a.template.Text, a.state.Buffer),
	}
}

// Templates lists the catalog's template names.
func (a *Assistant) Templates() []string {
	return a.catalog.Names()
}

// Save stores the session under name, replacing any entry with that name.
func (a *Assistant) Save(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEntryNameRequired
	}

	a.mu.Lock()
	if a.template.Name == "" {
		a.mu.Unlock()
		return ErrNoTemplate
	}
	snap := domain.TakeSnapshot(a.state, a.template.Name)
	a.mu.Unlock()

	if err := a.entries.Save(name, snap); err != nil {
		return fmt.Errorf("saving entry %q: %w", name, err)
	}

	a.logger.Info("entry saved", "name", name, "template", snap.Template)
	return nil
}

// Load replaces the session with a saved entry.
func (a *Assistant) Load(name string) error {
	name = strings.TrimSpace(name)
	snap, err := a.entries.Load(name)
	if err != nil {
		return fmt.Errorf("loading entry %q: %w", name, err)
	}

	tmpl, ok := a.catalog.Get(snap.Template)
	if !ok {
		return fmt.Errorf("loading entry %q: %w: %s", name, ErrTemplateNotFound, snap.Template)
	}

	fields, err := domain.ExtractFields(tmpl.Text)
	if err != nil {
		return &domain.MalformedTemplateError{Template: tmpl.Name}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.template = tmpl
	a.state = domain.LoadState(snap, fields)

	a.logger.Info("entry loaded",
		"name", name,
		"template", tmpl.Name,
		"current_field", a.state.CurrentKey(),
	)
	return nil
}

func (a *Assistant) Delete(name string) error {
	name = strings.TrimSpace(name)
	if err := a.entries.Delete(name); err != nil {
		return fmt.Errorf("deleting entry %q: %w", name, err)
	}
	a.logger.Info("entry deleted", "name", name)
	return nil
}

func (a *Assistant) Entries() ([]string, error) {
	names, err := a.entries.List()
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	return names, nil
}

// Finalize renders the form and asks the refiner to polish it. When the
// refiner fails the rendered text is returned instead.
func (a *Assistant) Finalize(ctx context.Context) (Finalized, error) {
	a.mu.Lock()
	if a.template.Name == "" {
		a.mu.Unlock()
		return Finalized{}, ErrNoTemplate
	}
	rendered := domain.Render(a.template.Text, a.state.Buffer)
	a.mu.Unlock()

	result := Finalized{Rendered: rendered, Text: rendered}

	refined, err := a.refiner.Refine(ctx, rendered)
	if err != nil || strings.TrimSpace(refined) == "" {
		a.logger.Warn("refinement unavailable, using rendered text", "error", err)
		result.Fallback = true
	} else {
		result.Text = refined
	}

	if err := a.notifier.Notify(ctx, result.Text); err != nil {
		a.logger.Error("notifying result", "error", err)
	}

	return result, nil
}
