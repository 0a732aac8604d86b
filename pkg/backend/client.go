// Package backend is the client for the upstream inference service that does
// the actual video processing. The dashboard treats it as best-effort: every
// call has a fixed timeout and callers fall back to the local database when
// it is unreachable.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"synerx-dashboard/config"
	"synerx-dashboard/dto"
)

// StatusError is returned for non-2xx upstream responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.Code, e.Body)
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(cfg config.Backend) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
	}
}

func (c *Client) Health(ctx context.Context) error {
	return c.getJSON(ctx, "/", nil)
}

func (c *Client) JobsStatus(ctx context.Context) ([]dto.JobSnapshot, error) {
	var jobs []dto.JobSnapshot
	if err := c.getJSON(ctx, "/jobs/status", &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (c *Client) CancelJob(ctx context.Context, jobId string) error {
	return c.postJSON(ctx, "/jobs/"+url.PathEscape(jobId)+"/cancel", nil, nil)
}

func (c *Client) RecentActivity(ctx context.Context) ([]dto.ActivityEntry, error) {
	var entries []dto.ActivityEntry
	if err := c.getJSON(ctx, "/recent-activity", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) AnalyticsSummary(ctx context.Context) (*dto.AnalyticsSummary, error) {
	summary := &dto.AnalyticsSummary{}
	if err := c.getJSON(ctx, "/analytics/summary", summary); err != nil {
		return nil, err
	}
	return summary, nil
}

func (c *Client) AnalyticsAll(ctx context.Context) ([]dto.TrackingRecord, error) {
	var records []dto.TrackingRecord
	if err := c.getJSON(ctx, "/analytics/all", &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) CorrelationAnalysis(ctx context.Context) (*dto.CorrelationReport, error) {
	report := &dto.CorrelationReport{}
	if err := c.getJSON(ctx, "/correlation-analysis/", report); err != nil {
		return nil, err
	}
	return report, nil
}

func (c *Client) FilterTracking(ctx context.Context, params url.Values) ([]dto.TrackingRecord, error) {
	var records []dto.TrackingRecord
	path := "/data/tracking/filter"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}
	if err := c.getJSON(ctx, path, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) StorageInfo(ctx context.Context) (*dto.StorageInfo, error) {
	info := &dto.StorageInfo{}
	if err := c.getJSON(ctx, "/storage/info", info); err != nil {
		return nil, err
	}
	return info, nil
}

func (c *Client) StorageVideos(ctx context.Context) ([]dto.StorageObject, error) {
	var objects []dto.StorageObject
	if err := c.getJSON(ctx, "/storage/videos", &objects); err != nil {
		return nil, err
	}
	return objects, nil
}

func (c *Client) DeleteStorageVideos(ctx context.Context, names []string) error {
	payload := map[string][]string{"names": names}
	return c.postJSON(ctx, "/storage/videos/delete", payload, nil)
}

func (c *Client) StorageCleanup(ctx context.Context) (int, error) {
	var result struct {
		Removed int `json:"removed"`
	}
	if err := c.postJSON(ctx, "/storage/cleanup", nil, &result); err != nil {
		return 0, err
	}
	return result.Removed, nil
}

func (c *Client) SignedVideoURL(ctx context.Context, name string) (string, error) {
	var result struct {
		URL string `json:"url"`
	}
	if err := c.getJSON(ctx, "/storage/video/"+url.PathEscape(name)+"/signed", &result); err != nil {
		return "", err
	}
	return result.URL, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
