// Package upload pushes shareable workout documents to a remote LiftLog
// server.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/damiensprinkle/liftlog/internal/models"
	"github.com/damiensprinkle/liftlog/internal/share"
)

// Client sends workout documents to a LiftLog server over HTTP.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new HTTP client for the given server.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: serverURL,
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// PushDocument POSTs a workout document to the server's import endpoint and
// returns the workout created there. Retries up to 3 times with exponential
// backoff on transport or server failure; client errors (4xx) are not
// retried.
func (c *Client) PushDocument(ctx context.Context, doc share.Document) (models.Workout, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return models.Workout{}, fmt.Errorf("marshaling document: %w", err)
	}

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<uint(attempt-1)) * time.Second)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.serverURL+"/api/v1/workouts/import", bytes.NewReader(data))
		if err != nil {
			return models.Workout{}, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-Key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusCreated {
			var w models.Workout
			err := json.NewDecoder(resp.Body).Decode(&w)
			resp.Body.Close()
			if err != nil {
				return models.Workout{}, fmt.Errorf("decoding import response: %w", err)
			}
			return w, nil
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		lastErr = fmt.Errorf("import failed (status %d): %s", resp.StatusCode, body)

		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return models.Workout{}, lastErr
		}
	}

	return models.Workout{}, fmt.Errorf("after 3 attempts: %w", lastErr)
}
