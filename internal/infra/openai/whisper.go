package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"voice-form/internal/infra"
)

type WhisperClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	language   string

	mu     sync.RWMutex
	prompt string
}

func NewWhisperClient(apiKey, language string) *WhisperClient {
	return NewWhisperClientWithURL(apiKey, language, "https://api.openai.com/v1")
}

func NewWhisperClientWithURL(apiKey, language, baseURL string) *WhisperClient {
	return &WhisperClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		language:   language,
	}
}

// WithVocabulary biases transcription toward the spoken commands and the
// given field names, so "next point" is not heard as "next pint".
func (c *WhisperClient) WithVocabulary(fields []string) *WhisperClient {
	c.SetVocabulary(fields)
	return c
}

// SetVocabulary replaces the field names in the prompt, e.g. after the
// template catalog reloads.
func (c *WhisperClient) SetVocabulary(fields []string) {
	terms := append([]string{"next", "back", "skip", "next point", "go to", "clear this field", "delete last point"}, fields...)

	c.mu.Lock()
	c.prompt = strings.Join(terms, ", ")
	c.mu.Unlock()
}

func (c *WhisperClient) currentPrompt() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.prompt
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

func (c *WhisperClient) Transcribe(ctx context.Context, audio []byte) (string, error) {
	var result transcriptionResponse
	prompt := c.currentPrompt()

	retryErr := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)

		part, err := writer.CreateFormFile("file", fileName(audio))
		if err != nil {
			return fmt.Errorf("creating form file: %w", err)
		}

		if _, err = part.Write(audio); err != nil {
			return fmt.Errorf("writing audio: %w", err)
		}

		if err = writer.WriteField("model", "whisper-1"); err != nil {
			return fmt.Errorf("writing model field: %w", err)
		}

		if c.language != "" {
			if err = writer.WriteField("language", c.language); err != nil {
				return fmt.Errorf("writing language field: %w", err)
			}
		}

		if prompt != "" {
			if err = writer.WriteField("prompt", prompt); err != nil {
				return fmt.Errorf("writing prompt field: %w", err)
			}
		}

		if err = writer.Close(); err != nil {
			return fmt.Errorf("closing writer: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", body)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", writer.FormDataContentType())

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			if infra.IsRetryableHTTPStatus(resp.StatusCode) {
				return fmt.Errorf("whisper API error %d: %s (retryable)", resp.StatusCode, string(respBody))
			}
			return infra.Permanent(fmt.Errorf("whisper API error %d: %s", resp.StatusCode, string(respBody)))
		}

		if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}

		return nil
	})

	if retryErr != nil {
		return "", retryErr
	}

	return result.Text, nil
}

// fileName picks an extension from the container's magic bytes; the API
// detects the format from the upload's name.
func fileName(audio []byte) string {
	switch {
	case bytes.HasPrefix(audio, []byte("RIFF")):
		return "audio.wav"
	case bytes.HasPrefix(audio, []byte("OggS")):
		return "audio.ogg"
	case bytes.HasPrefix(audio, []byte{0x1A, 0x45, 0xDF, 0xA3}):
		return "audio.webm"
	case bytes.HasPrefix(audio, []byte("ID3")), len(audio) > 1 && audio[0] == 0xFF && audio[1]&0xE0 == 0xE0:
		return "audio.mp3"
	case len(audio) > 8 && string(audio[4:8]) == "ftyp":
		return "audio.m4a"
	default:
		return "audio.wav"
	}
}
