package buildctl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	statusOK     = 200
	maxReplySize = 4 << 20
)

// Client talks to the build server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Health checks that the server answers /healthz.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", http.NoBody)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != statusOK {
		return fmt.Errorf("health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

// Submit posts one prompt and never returns an error: failures are
// recorded on the Result.
func (c *Client) Submit(ctx context.Context, endpoint, prompt string) (res Result) {
	res = Result{Prompt: prompt, RequestID: uuid.NewString()}
	start := time.Now()
	defer func() { res.Duration = time.Since(start) }()

	path := "/builds"
	if endpoint == EndpointMatch {
		path = "/builds/match"
	}
	body, _ := json.Marshal(map[string]string{"prompt": prompt})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		res.Error = err.Error()
		return res
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", res.RequestID)

	resp, err := c.http.Do(req)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer resp.Body.Close()

	res.Status = resp.StatusCode
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplySize))
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Body = raw
	decode(&res, raw)
	return res
}

// decode lifts the interesting fields out of a reply.
func decode(res *Result, raw []byte) {
	if !res.OK() {
		var f struct {
			Error   string `json:"error"`
			Details string `json:"details"`
		}
		if json.Unmarshal(raw, &f) == nil && f.Error != "" {
			res.Error = f.Error
			if f.Details != "" {
				res.Error += ": " + f.Details
			}
			return
		}
		res.Error = fmt.Sprintf("status %d", res.Status)
		return
	}

	var reply struct {
		Build map[string]any `json:"build"`
		Index *int           `json:"index"`
	}
	if err := json.Unmarshal(raw, &reply); err != nil {
		res.Error = "unreadable reply: " + err.Error()
		return
	}
	for _, key := range []string{"buildName", "name", "Name"} {
		if name, ok := reply.Build[key].(string); ok && name != "" {
			res.Name = name
			break
		}
	}
	if overall, ok := reply.Build["overall"].(float64); ok {
		res.Overall = int(overall)
	}
	res.Index = reply.Index
}
