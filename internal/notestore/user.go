package notestore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// UserClient talks to the user store, which knows where an account's note
// store lives.
type UserClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewUserClient returns a client for the user store at domain.
func NewUserClient(domain, token string, timeout time.Duration) *UserClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &UserClient{
		baseURL:    strings.TrimRight(domain, "/") + "/edam/user",
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NoteStoreURL returns the note-store endpoint for the token's account.
func (u *UserClient) NoteStoreURL(ctx context.Context) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.baseURL+"/notestore-url", nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+u.token)

	resp, err := u.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("get note store url: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("get note store url: status %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		NoteStoreURL string `json:"noteStoreUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode note store url: %w", err)
	}
	if result.NoteStoreURL == "" {
		return "", fmt.Errorf("user store returned an empty note store url")
	}
	return result.NoteStoreURL, nil
}

// Options configures Dial.
type Options struct {
	Domain       string // user-store domain, e.g. https://sandbox.evernote.com
	NoteStoreURL string // skips discovery when set
	Token        string
	Timeout      time.Duration
	Stats        *CallStats
}

// Dial returns a note-store client for opts.Token, asking the user store
// for the endpoint unless opts.NoteStoreURL is set.
func Dial(ctx context.Context, opts Options) (*Client, error) {
	if opts.Token == "" {
		return nil, fmt.Errorf("dial note store: missing auth token")
	}
	storeURL := opts.NoteStoreURL
	if storeURL == "" {
		u := NewUserClient(opts.Domain, opts.Token, opts.Timeout)
		defer u.httpClient.CloseIdleConnections()
		var err error
		storeURL, err = u.NoteStoreURL(ctx)
		if err != nil {
			return nil, fmt.Errorf("dial note store: %w", err)
		}
	}
	return NewClient(storeURL, opts.Token, opts.Timeout, opts.Stats), nil
}
