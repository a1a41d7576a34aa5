package lexicon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"
)

// ErrDictionaryUnavailable is returned when the remote oracle could not
// give an answer. Callers treat the word as invalid.
var ErrDictionaryUnavailable = errors.New("dictionary unavailable")

// Oracle answers word lookups that the local lists could not.
type Oracle interface {
	Lookup(ctx context.Context, word string) (bool, error)
}

// RemoteClient asks a Datamuse-style HTTP service whether a word exists.
// GET {baseURL}?sp=word&max=1 returns a JSON array whose first entry's
// "word" must equal the query.
type RemoteClient struct {
	baseURL    string
	httpClient *http.Client
	attempts   uint
	delay      time.Duration
}

// NewRemoteClient creates a client. timeout bounds each HTTP attempt.
func NewRemoteClient(baseURL string, timeout time.Duration, attempts uint) *RemoteClient {
	if attempts == 0 {
		attempts = 1
	}
	return &RemoteClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		attempts:   attempts,
		delay:      50 * time.Millisecond,
	}
}

type datamuseEntry struct {
	Word string `json:"word"`
}

// Lookup returns whether the service knows word. Any failure is wrapped
// in ErrDictionaryUnavailable.
func (c *RemoteClient) Lookup(ctx context.Context, word string) (bool, error) {
	var found bool
	err := retry.Do(
		func() error {
			var err error
			found, err = c.lookupOnce(ctx, word)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Debug().Err(err).Uint("n", n).Str("word", word).Msg("dictionary-lookup-retry")
		}),
	)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrDictionaryUnavailable, err)
	}
	return found, nil
}

func (c *RemoteClient) lookupOnce(ctx context.Context, word string) (bool, error) {
	q := url.Values{}
	q.Set("sp", strings.ToLower(word))
	q.Set("max", "1")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return false, retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
		if resp.StatusCode < 500 {
			return false, retry.Unrecoverable(err)
		}
		return false, err
	}

	var entries []datamuseEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return false, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return len(entries) > 0 && strings.EqualFold(entries[0].Word, word), nil
}
