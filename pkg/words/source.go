package words

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"time"
)

// maxBankSize bounds how much of a word bank response is read.
const maxBankSize = 1 << 20

// Source fetches the raw JSON document of a word bank.
type Source interface {
	Fetch(ctx context.Context, difficulty, category string) ([]byte, error)
}

// ResourcePath is the deterministic name of a pair's resource.
func ResourcePath(difficulty, category string) string {
	return path.Join(difficulty, category+".json")
}

// StatusError is returned when the word server answers with a non-200 status.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Status)
}

// HTTPSource fetches banks from {BaseURL}/{difficulty}/{category}.json.
type HTTPSource struct {
	BaseURL   string
	Client    *http.Client
	UserAgent string
}

// NewHTTPSource creates an HTTPSource with a bounded client timeout.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSource{
		BaseURL:   baseURL,
		Client:    &http.Client{Timeout: timeout},
		UserAgent: "lexiquiz",
	}
}

func (s *HTTPSource) Fetch(ctx context.Context, difficulty, category string) ([]byte, error) {
	u, err := url.JoinPath(s.BaseURL, difficulty, category+".json")
	if err != nil {
		return nil, fmt.Errorf("build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: u, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	if resp.ContentLength > maxBankSize {
		return nil, fmt.Errorf("fetch %s: content-length %d exceeds limit of %d bytes", u, resp.ContentLength, maxBankSize)
	}

	// Read one extra byte to tell "exactly at the limit" from "truncated".
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBankSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", u, err)
	}
	if len(body) > maxBankSize {
		return nil, fmt.Errorf("fetch %s: body exceeds limit of %d bytes", u, maxBankSize)
	}
	return body, nil
}

// FSSource reads banks from {difficulty}/{category}.json inside an fs.FS,
// e.g. os.DirFS of a data directory.
type FSSource struct {
	FS fs.FS
}

func (s FSSource) Fetch(ctx context.Context, difficulty, category string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fs.ReadFile(s.FS, ResourcePath(difficulty, category))
}
