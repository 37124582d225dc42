// Package telephony integrates the external call-analytics API and derives
// per-agent phone activity for the admin dashboard.
package telephony

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"callcenter_backend/platform/config"
)

// CallRecord is one call-log entry from the analytics API.
type CallRecord struct {
	ExtensionID string    `json:"extensionId"`
	Direction   string    `json:"direction"`
	StartTime   time.Time `json:"startTime"`
	DurationSec int64     `json:"duration"`
}

// Client queries the call-analytics API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(cfg config.TelephonyConfig) *Client {
	return &Client{
		baseURL: cfg.GetTelephonyBaseURL(),
		token:   cfg.GetTelephonyToken(),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// CallLog fetches the call records in [from, to) for one extension.
func (c *Client) CallLog(ctx context.Context, extensionID string, from, to time.Time) ([]CallRecord, error) {
	endpoint := fmt.Sprintf("%s/call-log?%s", c.baseURL, url.Values{
		"extensionId": {extensionID},
		"dateFrom":    {from.Format(time.RFC3339)},
		"dateTo":      {to.Format(time.RFC3339)},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telephony request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telephony api returned %d", resp.StatusCode)
	}

	var payload struct {
		Records []CallRecord `json:"records"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode call log: %w", err)
	}
	return payload.Records, nil
}
