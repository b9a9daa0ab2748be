package catalog_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"voice-form/internal/domain"
	"voice-form/internal/infra/catalog"
)

func newCatalog(t *testing.T, dir string) *catalog.Catalog {
	t.Helper()
	return catalog.New(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeTemplate(t *testing.T, dir, file, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(body), 0644))
}

func TestBuiltinInspectionSummary(t *testing.T) {
	c := newCatalog(t, "")

	tmpl, ok := c.Lookup("inspection summary")
	require.True(t, ok)
	require.Equal(t, catalog.InspectionSummary, tmpl.Name)

	fields, err := domain.ExtractFields(tmpl.Text)
	require.NoError(t, err)
	require.Equal(t, domain.FieldOrder{"vehicle", "damages", "theft", "unrelated", "supp", "parts", "comments"}, fields)
}

func TestLookupFuzzy(t *testing.T) {
	c := newCatalog(t, "")

	tmpl, ok := c.Lookup("inspection")
	require.True(t, ok)
	require.Equal(t, catalog.InspectionSummary, tmpl.Name)

	_, ok = c.Lookup("zzz")
	require.False(t, ok)

	_, ok = c.Lookup("   ")
	require.False(t, ok)
}

func TestLoadAllFromDir(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "intake.yaml", "name: Claim Intake\ntext: |\n  Claimant: {{name}}\n  Policy: {{policy}}\n")
	writeTemplate(t, dir, "untitled.yml", "text: \"Note: {{note}}\"\n")
	writeTemplate(t, dir, "broken.yaml", "name: Broken\ntext: no placeholders here\n")
	writeTemplate(t, dir, "readme.md", "ignored")

	c := newCatalog(t, dir)
	require.NoError(t, c.LoadAll())

	require.Equal(t, []string{"Claim Intake", catalog.InspectionSummary, "untitled"}, c.Names())

	tmpl, ok := c.Lookup("CLAIM INTAKE")
	require.True(t, ok)
	require.Contains(t, tmpl.Text, "{{policy}}")

	_, ok = c.Lookup("Broken")
	require.False(t, ok)
}

func TestLoadAllOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "inspection.yaml", "name: Inspection Summary\ntext: \"Short: {{vehicle}}\"\n")

	c := newCatalog(t, dir)
	require.NoError(t, c.LoadAll())

	tmpl, ok := c.Lookup(catalog.InspectionSummary)
	require.True(t, ok)
	require.Equal(t, "Short: {{vehicle}}", tmpl.Text)
	require.Len(t, c.Names(), 1)
}

func TestLoadAllMissingDir(t *testing.T) {
	c := newCatalog(t, filepath.Join(t.TempDir(), "missing"))
	require.Error(t, c.LoadAll())

	_, ok := c.Lookup(catalog.InspectionSummary)
	require.True(t, ok, "built-ins survive a failed load")
}

func TestWatchAndReload(t *testing.T) {
	dir := t.TempDir()
	c := newCatalog(t, dir)
	require.NoError(t, c.LoadAll())

	done := make(chan struct{})
	errCh := make(chan error, 1)
	go func() { errCh <- c.WatchAndReload(done) }()

	// give the watcher time to register the directory
	time.Sleep(100 * time.Millisecond)
	writeTemplate(t, dir, "estimate.yaml", "name: Estimate\ntext: \"Total: {{total}}\"\n")

	require.Eventually(t, func() bool {
		_, ok := c.Lookup("Estimate")
		return ok
	}, 3*time.Second, 20*time.Millisecond)

	close(done)
	require.NoError(t, <-errCh)
}

func TestVocabulary(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "short.yaml", "name: Short\ntext: \"{{vehicle}} {{mileage}}\"\n")

	c := newCatalog(t, dir)
	require.NoError(t, c.LoadAll())

	require.Equal(t, []string{"vehicle", "damages", "theft", "unrelated", "supp", "parts", "comments", "mileage"}, c.Vocabulary())
}

func TestGetIsExact(t *testing.T) {
	c := newCatalog(t, "")

	tmpl, ok := c.Get(" inspection SUMMARY ")
	require.True(t, ok)
	require.Equal(t, catalog.InspectionSummary, tmpl.Name)

	_, ok = c.Get("inspection")
	require.False(t, ok, "no approximate match")
}

func TestOnReloadSeesNewVocabulary(t *testing.T) {
	dir := t.TempDir()
	c := newCatalog(t, dir)
	require.NoError(t, c.LoadAll())

	var got []string
	c.OnReload(func() { got = c.Vocabulary() })

	writeTemplate(t, dir, "estimate.yaml", "name: Estimate\ntext: \"Total: {{total}}\"\n")
	require.NoError(t, c.LoadAll())
	require.Contains(t, got, "total")
}
