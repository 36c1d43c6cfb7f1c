// Package backend talks to the routine and pose-comparison REST service.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alkime/stretch/internal/pose"
	"github.com/alkime/stretch/internal/routine"
	"github.com/alkime/stretch/pkg/collections"
)

const (
	// DefaultBaseURL is the production API root.
	DefaultBaseURL = "https://v-tune-be.onrender.com/api"

	DefaultCompareTimeout = 8 * time.Second
	DefaultLoadTimeout    = 15 * time.Second
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned %d: %s", e.Path, e.StatusCode, e.Body)
}

// Verdict is the comparison service's answer for one pose snapshot.
type Verdict struct {
	Match        bool
	FeedbackText string
	CKText       string
}

// Message returns the text to speak for the verdict: the feedback text, else
// the check text, else "".
func (v Verdict) Message() string {
	if v.FeedbackText != "" {
		return v.FeedbackText
	}

	return v.CKText
}

// Client calls the backend. Requests are never retried.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	compareTimeout time.Duration
	loadTimeout    time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithCompareTimeout bounds each Compare call.
func WithCompareTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.compareTimeout = d }
}

// WithLoadTimeout bounds each Exercises and PoseSteps call.
func WithLoadTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.loadTimeout = d }
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		httpClient:     http.DefaultClient,
		compareTimeout: DefaultCompareTimeout,
		loadTimeout:    DefaultLoadTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Exercises loads the ordered exercises of a routine.
func (c *Client) Exercises(ctx context.Context, routineID string) ([]routine.Exercise, error) {
	ctx, cancel := context.WithTimeout(ctx, c.loadTimeout)
	defer cancel()

	var out exercisesResponse
	path := "/routines/" + url.PathEscape(routineID) + "/exercises/"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to load exercises for routine %s: %w", routineID, err)
	}

	return collections.Apply(out.Exercises, exerciseDTO.toExercise), nil
}

// PoseSteps loads the pose steps of an exercise in the order returned.
func (c *Client) PoseSteps(ctx context.Context, exerciseID int) ([]routine.PoseStep, error) {
	ctx, cancel := context.WithTimeout(ctx, c.loadTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("exercise_id", strconv.Itoa(exerciseID))

	var out []poseStepDTO
	if err := c.do(ctx, http.MethodGet, "/data/pose-steps/", params, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to load pose steps for exercise %d: %w", exerciseID, err)
	}

	return collections.Apply(out, poseStepDTO.toPoseStep), nil
}

// Compare asks whether keypoints match the given step. Timeouts satisfy
// errors.Is(err, context.DeadlineExceeded).
func (c *Client) Compare(ctx context.Context, keypoints pose.Keypoints, exerciseID, stepNumber int) (Verdict, error) {
	ctx, cancel := context.WithTimeout(ctx, c.compareTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("exercise_id", strconv.Itoa(exerciseID))
	params.Set("step_number", strconv.Itoa(stepNumber))

	var out compareResponse
	body := compareRequest{Keypoints: pose.Filter(keypoints)}
	if err := c.do(ctx, http.MethodPost, "/compare/", params, body, &out); err != nil {
		return Verdict{}, fmt.Errorf("failed to compare pose: %w", err)
	}

	return Verdict{
		Match:        out.Match,
		FeedbackText: out.FeedbackText,
		CKText:       out.CKText,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, in, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reqBody io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Path: path, StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}

	return nil
}
