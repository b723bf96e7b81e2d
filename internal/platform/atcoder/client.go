// Package atcoder talks to the AtCoder Problems API (kenkoooo.com) and the
// atcoder.jp rating endpoint. Transient failures (timeouts, 429, 5xx) are
// retried with exponential backoff and jitter up to a bounded attempt count;
// unknown users surface as common.ErrNotFound so callers can try the
// lowercased id before giving up.
package atcoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"atcrank/internal/common"
	"atcrank/internal/domain/model"

	"github.com/cenkalti/backoff/v4"
)

type Client struct {
	httpClient   *http.Client
	problemsBase string
	atcoderBase  string
	maxRetries   uint64
}

func NewClient(problemsBase, atcoderBase string, timeout time.Duration, maxRetries int) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: timeout},
		problemsBase: strings.TrimRight(problemsBase, "/"),
		atcoderBase:  strings.TrimRight(atcoderBase, "/"),
		maxRetries:   uint64(maxRetries),
	}
}

// FetchResults returns the user's recent submissions from sinceEpoch onward.
// The id is tried verbatim first and lowercased second when the two differ.
func (c *Client) FetchResults(ctx context.Context, atcoderID string, sinceEpoch int64) ([]model.RemoteResult, error) {
	var results []model.RemoteResult
	err := c.withCasingFallback(atcoderID, func(id string) error {
		url := fmt.Sprintf("%s/atcoder-api/v3/user/submissions?user=%s&from_second=%d", c.problemsBase, id, sinceEpoch)
		body, err := c.getJSON(ctx, url)
		if err != nil {
			return err
		}
		var payload []submissionPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			return fmt.Errorf("atcoder.FetchResults decode: %w", err)
		}
		results = results[:0]
		for _, s := range payload {
			results = append(results, model.RemoteResult{
				ID:          s.ID,
				EpochSecond: s.EpochSecond,
				ProblemID:   s.ProblemID,
				Result:      s.Result,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// FetchRating returns the user's latest contest rating. A user with no rated
// history yields 0; an unknown user yields common.ErrNotFound.
func (c *Client) FetchRating(ctx context.Context, atcoderID string) (int, error) {
	var rating int
	err := c.withCasingFallback(atcoderID, func(id string) error {
		url := fmt.Sprintf("%s/users/%s/history/json", c.atcoderBase, id)
		body, err := c.getJSON(ctx, url)
		if err != nil {
			return err
		}
		var history []ratingHistoryEntry
		if err := json.Unmarshal(body, &history); err != nil {
			return fmt.Errorf("atcoder.FetchRating decode: %w", err)
		}
		if len(history) == 0 {
			rating = 0
			return nil
		}
		rating = history[len(history)-1].NewRating
		return nil
	})
	if err != nil {
		return 0, err
	}
	return rating, nil
}

// CatalogProblem is one record of the bulk problem/difficulty sync, already
// joined against the difficulty models.
type CatalogProblem struct {
	ProblemID     string
	ContestID     string
	Title         string
	DifficultyRaw *float64
}

// FetchCatalog downloads the problem list and difficulty models and joins
// them. Problems without a model carry a nil DifficultyRaw.
func (c *Client) FetchCatalog(ctx context.Context) ([]CatalogProblem, error) {
	modelsBody, err := c.getJSON(ctx, c.problemsBase+"/resources/problem-models.json")
	if err != nil {
		return nil, err
	}
	models, err := decodeModels(modelsBody)
	if err != nil {
		return nil, fmt.Errorf("atcoder.FetchCatalog: %w", err)
	}

	problemsBody, err := c.getJSON(ctx, c.problemsBase+"/resources/problems.json")
	if err != nil {
		return nil, err
	}
	var problems []problemPayload
	if err := json.Unmarshal(problemsBody, &problems); err != nil {
		return nil, fmt.Errorf("atcoder.FetchCatalog problems decode: %w", err)
	}

	out := make([]CatalogProblem, 0, len(problems))
	for _, p := range problems {
		pid := p.problemID()
		if pid == "" {
			continue
		}
		out = append(out, CatalogProblem{
			ProblemID:     pid,
			ContestID:     p.ContestID,
			Title:         p.title(),
			DifficultyRaw: models[pid],
		})
	}
	return out, nil
}

// withCasingFallback runs fn with the id as given, and once more lowercased
// when the first attempt reports not-found and the lowercase form differs.
func (c *Client) withCasingFallback(atcoderID string, fn func(id string) error) error {
	err := fn(atcoderID)
	if err == nil || !errors.Is(err, common.ErrNotFound) {
		return err
	}
	lower := strings.ToLower(atcoderID)
	if lower == atcoderID {
		return err
	}
	log.Printf("WARN: user %q not found, retrying as %q", atcoderID, lower)
	return fn(lower)
}

// getJSON performs a GET with bounded exponential-backoff retries. 404 is
// permanent and maps to common.ErrNotFound; 429 and 5xx are transient; other
// statuses are permanent errors. Exhausted retries surface as
// common.ErrUnavailable.
func (c *Client) getJSON(ctx context.Context, url string) ([]byte, error) {
	var body []byte

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("%w: %s: %v", common.ErrUnavailable, url, err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(fmt.Errorf("%s: %w", url, common.ErrNotFound))
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			log.Printf("WARN: transient HTTP %d for %s, will retry", resp.StatusCode, url)
			return fmt.Errorf("%w: transient HTTP %d for %s", common.ErrUnavailable, resp.StatusCode, url)
		default:
			return backoff.Permanent(fmt.Errorf("unexpected HTTP %d for %s", resp.StatusCode, url))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("%w: reading %s: %v", common.ErrUnavailable, url, err)
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return body, nil
}
