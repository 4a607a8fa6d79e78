// internal/app/system/surveyapi/client.go
package surveyapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Backend paths, relative to the configured base URL.
const (
	AllSurveysPath    = "/survey/get_all_surveys/"
	PopularSurveyPath = "/survey/get_popular_survey/"
)

// maxBodyBytes caps how much of a backend response is read.
const maxBodyBytes = 16 << 20

// ErrStatus is returned when the backend answers with a non-2xx status.
var ErrStatus = errors.New("unexpected backend status")

// Client reads survey data from the survey backend. It is safe for
// concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the backend rooted at baseURL.
// A zero timeout leaves request deadlines to the caller's context.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the backend root this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchAll retrieves the all-surveys envelope. The embedded collections are
// left undecoded so each can fail independently.
func (c *Client) FetchAll(ctx context.Context) (AllSurveys, error) {
	var env AllSurveys
	body, err := c.get(ctx, AllSurveysPath)
	if err != nil {
		return env, err
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return env, fmt.Errorf("all surveys: %w: %v", ErrMalformed, err)
	}
	return env, nil
}

// FetchPopular retrieves the raw popular-survey response body.
func (c *Client) FetchPopular(ctx context.Context) ([]byte, error) {
	return c.get(ctx, PopularSurveyPath)
}

// Ping checks that the backend answers the all-surveys endpoint.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.get(ctx, AllSurveysPath)
	return err
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, fmt.Errorf("GET %s: %w: %d", path, ErrStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return body, nil
}
