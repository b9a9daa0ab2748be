package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sahilm/fuzzy"
	"gopkg.in/yaml.v3"

	"voice-form/internal/domain"
)

const InspectionSummary = "Inspection Summary"

var builtin = []domain.Template{
	{
		Name: InspectionSummary,
		Text: "*** INSPECTION SUMMARY ***\n" +
			"* Vehicle inspected: {{vehicle}}\n" +
			"* Damages overview: {{damages}}\n" +
			"* Theft recoveries: {{theft}}\n" +
			"* Unrelated damages: {{unrelated}}\n" +
			"* Any open items or supp?: {{supp}}\n" +
			"* Parts Search/Source: {{parts}}\n" +
			"* Appraisal comments: {{comments}}",
	},
}

type templateFile struct {
	Name string `yaml:"name"`
	Text string `yaml:"text"`
}

// Catalog holds the built-in templates plus any loaded from a directory of
// YAML files. A file template replaces a built-in one with the same name.
type Catalog struct {
	dir    string
	logger *slog.Logger

	mu        sync.RWMutex
	templates map[string]domain.Template
	onReload  []func()
}

func New(dir string, logger *slog.Logger) *Catalog {
	c := &Catalog{
		dir:       dir,
		logger:    logger,
		templates: make(map[string]domain.Template),
	}
	for _, t := range builtin {
		c.templates[strings.ToLower(t.Name)] = t
	}
	return c
}

// LoadAll rereads the template directory. Files that fail to parse or have
// no placeholders are logged and skipped.
func (c *Catalog) LoadAll() error {
	loaded := make(map[string]domain.Template, len(builtin))
	for _, t := range builtin {
		loaded[strings.ToLower(t.Name)] = t
	}

	if c.dir != "" {
		entries, err := os.ReadDir(c.dir)
		if err != nil {
			return fmt.Errorf("reading template dir: %w", err)
		}

		for _, entry := range entries {
			ext := filepath.Ext(entry.Name())
			if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
				continue
			}

			path := filepath.Join(c.dir, entry.Name())
			t, err := loadFile(path)
			if err != nil {
				c.logger.Warn("skipping template", "path", path, "error", err)
				continue
			}
			loaded[strings.ToLower(t.Name)] = t
		}
	}

	c.mu.Lock()
	c.templates = loaded
	hooks := append([]func(){}, c.onReload...)
	c.mu.Unlock()

	c.logger.Info("templates loaded", "count", len(loaded), "dir", c.dir)

	for _, fn := range hooks {
		fn()
	}
	return nil
}

// OnReload registers fn to run after every successful LoadAll.
func (c *Catalog) OnReload(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onReload = append(c.onReload, fn)
}

// Get resolves a template by exact name, ignoring case.
func (c *Catalog) Get(name string) (domain.Template, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.templates[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

func loadFile(path string) (domain.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Template{}, fmt.Errorf("reading file: %w", err)
	}

	var f templateFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return domain.Template{}, fmt.Errorf("parsing yaml: %w", err)
	}

	name := strings.TrimSpace(f.Name)
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	if _, err := domain.ExtractFields(f.Text); err != nil {
		return domain.Template{}, &domain.MalformedTemplateError{Template: name}
	}

	return domain.Template{Name: name, Text: f.Text}, nil
}

// Lookup resolves a template by exact name, ignoring case, and falls back to
// the best fuzzy match so a spoken "inspection" finds "Inspection Summary".
func (c *Catalog) Lookup(name string) (domain.Template, bool) {
	query := strings.ToLower(strings.TrimSpace(name))
	if query == "" {
		return domain.Template{}, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if t, ok := c.templates[query]; ok {
		return t, true
	}

	keys := c.sortedKeys()
	matches := fuzzy.Find(query, keys)
	if len(matches) == 0 {
		return domain.Template{}, false
	}
	return c.templates[keys[matches[0].Index]], true
}

func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.templates))
	for _, key := range c.sortedKeys() {
		names = append(names, c.templates[key].Name)
	}
	return names
}

// Vocabulary returns every distinct field key across the catalog.
func (c *Catalog) Vocabulary() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]bool)
	var words []string
	for _, key := range c.sortedKeys() {
		fields, err := domain.ExtractFields(c.templates[key].Text)
		if err != nil {
			continue
		}
		for _, f := range fields {
			if !seen[f] {
				seen[f] = true
				words = append(words, f)
			}
		}
	}
	return words
}

func (c *Catalog) sortedKeys() []string {
	keys := make([]string, 0, len(c.templates))
	for k := range c.templates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WatchAndReload reloads the catalog whenever a YAML file in the directory
// changes. It blocks until done is closed.
func (c *Catalog) WatchAndReload(done <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(c.dir); err != nil {
		return fmt.Errorf("watch dir %q: %w", c.dir, err)
	}

	for {
		select {
		case <-done:
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			ext := filepath.Ext(event.Name)
			if ext != ".yaml" && ext != ".yml" {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				if err := c.LoadAll(); err != nil {
					c.logger.Error("reloading templates", "error", err)
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}
