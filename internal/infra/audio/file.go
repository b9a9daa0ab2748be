package audio

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"voice-form/internal/domain"
)

var audioExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".m4a":  true,
	".webm": true,
}

// FileSource watches a directory for recorded utterances. Audio files are
// delivered whole; .txt files are transcripts with one utterance per line.
type FileSource struct {
	dir       string
	processed map[string]bool
	pending   [][]byte
	mu        sync.Mutex
}

func NewFileSource(dir string) *FileSource {
	return &FileSource{
		dir:       dir,
		processed: make(map[string]bool),
	}
}

func (f *FileSource) Name() string {
	return "file"
}

func (f *FileSource) Start(_ context.Context) error {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("creating audio dir: %w", err)
	}
	return nil
}

func (f *FileSource) Stop() error {
	return nil
}

func (f *FileSource) NextUtterance(ctx context.Context) ([]byte, error) {
	if data := f.popPending(); data != nil {
		return data, nil
	}

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			if err := f.checkForNewFile(); err != nil {
				return nil, err
			}
			if data := f.popPending(); data != nil {
				return data, nil
			}
		}
	}
}

func (f *FileSource) popPending() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.pending) == 0 {
		return nil
	}
	data := f.pending[0]
	f.pending = f.pending[1:]
	return data
}

func (f *FileSource) checkForNewFile() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return fmt.Errorf("reading dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		ext := filepath.Ext(name)
		if !audioExtensions[ext] && ext != ".txt" {
			continue
		}

		path := filepath.Join(f.dir, name)
		if f.processed[path] {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading file %s: %w", path, err)
		}

		f.processed[path] = true
		os.Rename(path, path+".processed")

		if ext == ".txt" {
			f.pending = append(f.pending, transcriptLines(data)...)
		} else {
			f.pending = append(f.pending, data)
		}

		if len(f.pending) > 0 {
			return nil
		}
	}

	return nil
}

func transcriptLines(data []byte) [][]byte {
	var lines [][]byte
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, []byte(domain.TextUtterancePrefix+line))
	}
	return lines
}
