package pushover

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"voice-form/internal/infra"
)

// maxMessageLen is Pushover's message size limit in characters.
const maxMessageLen = 1024

const title = "Voice Form"

type Client struct {
	token      string
	userKey    string
	baseURL    string
	httpClient *http.Client
}

func NewClient(token, userKey string) *Client {
	return NewClientWithURL(token, userKey, "https://api.pushover.net/1/messages.json")
}

func NewClientWithURL(token, userKey, baseURL string) *Client {
	return &Client{
		token:      token,
		userKey:    userKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Notify sends a finalized form. Forms longer than one Pushover message are
// split on line boundaries and numbered in the title.
func (c *Client) Notify(ctx context.Context, message string) error {
	if c.token == "" || c.userKey == "" {
		return nil
	}

	parts := split(message, maxMessageLen)
	for i, part := range parts {
		t := title
		if len(parts) > 1 {
			t = fmt.Sprintf("%s (%d/%d)", title, i+1, len(parts))
		}
		if err := c.send(ctx, t, part); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) send(ctx context.Context, title, message string) error {
	data := url.Values{}
	data.Set("token", c.token)
	data.Set("user", c.userKey)
	data.Set("message", message)
	data.Set("title", title)
	encoded := data.Encode()

	return infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(encoded))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending notification: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			if infra.IsRetryableHTTPStatus(resp.StatusCode) {
				return fmt.Errorf("pushover error %d: %s (retryable)", resp.StatusCode, strings.TrimSpace(string(body)))
			}
			return infra.Permanent(fmt.Errorf("pushover error %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
		}
		return nil
	})
}

// split packs whole lines into chunks of at most n runes; a single line longer
// than n is cut.
func split(s string, n int) []string {
	var chunks []string
	var cur []rune

	flush := func() {
		if len(cur) > 0 {
			chunks = append(chunks, string(cur))
			cur = cur[:0]
		}
	}

	for i, line := range strings.Split(s, "\n") {
		r := []rune(line)
		if i > 0 {
			if len(cur)+1+len(r) <= n && len(cur) > 0 {
				cur = append(cur, '\n')
			} else {
				flush()
			}
		}
		for len(r) > 0 {
			room := n - len(cur)
			if room == 0 {
				flush()
				room = n
			}
			take := min(room, len(r))
			cur = append(cur, r[:take]...)
			r = r[take:]
		}
	}
	flush()

	if len(chunks) == 0 {
		return []string{""}
	}
	return chunks
}
