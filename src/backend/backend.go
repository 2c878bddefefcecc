// Package backend submits finalized problem statements to the solver service.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const submitPath = "/init_task"

var (
	clientOnce   sync.Once
	sharedClient *http.Client
)

// sharedHTTPClient returns the process-wide client. No Timeout is set: a
// submission runs to completion or transport failure.
func sharedHTTPClient() *http.Client {
	clientOnce.Do(func() {
		sharedClient = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        4,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	})
	return sharedClient
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: sharedHTTPClient(),
	}
}

type submission struct {
	Problem string `json:"problem"`
}

// SubmitProblem posts the accumulated problem statement to {base}/init_task
// and returns the backend's HTTP status code. Any received response counts as
// an answer regardless of status; only transport failures return an error.
func (c *Client) SubmitProblem(ctx context.Context, problem string) (int, error) {
	body, err := json.Marshal(submission{Problem: strings.TrimSpace(problem)})
	if err != nil {
		return 0, fmt.Errorf("failed to encode submission: %w", err)
	}

	url := c.BaseURL + submitPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to build submission request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = sharedHTTPClient()
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to reach backend at %s: %w", url, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}
