package audio_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"voice-form/internal/domain"
	"voice-form/internal/infra/audio"
)

func TestFileSource_AudioFile(t *testing.T) {
	dir := t.TempDir()
	source := audio.NewFileSource(dir)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.NoError(t, source.Start(ctx))

	path := filepath.Join(dir, "clip.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF...."), 0644))

	data, err := source.NextUtterance(ctx)
	require.NoError(t, err)
	require.Equal(t, []byte("RIFF...."), data)

	_, err = os.Stat(path + ".processed")
	require.NoError(t, err)
}

func TestFileSource_TranscriptLines(t *testing.T) {
	dir := t.TempDir()
	source := audio.NewFileSource(dir)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.NoError(t, source.Start(ctx))

	transcript := "2019 Civic\n\n  next  \ngo to parts\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte(transcript), 0644))

	var got []string
	for i := 0; i < 3; i++ {
		data, err := source.NextUtterance(ctx)
		require.NoError(t, err)
		got = append(got, string(data))
	}

	p := domain.TextUtterancePrefix
	require.Equal(t, []string{p + "2019 Civic", p + "next", p + "go to parts"}, got)
}

func TestFileSource_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	source := audio.NewFileSource(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("x"), 0644))

	ctx, cancel := context.WithTimeout(context.Background(), 700*time.Millisecond)
	defer cancel()

	_, err := source.NextUtterance(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
