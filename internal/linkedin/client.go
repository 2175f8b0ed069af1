package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// LinkedIn caps ugc share commentary at 3000 chars; stay under it.
	maxShareText = 2900

	restliProtocolVersion = "2.0.0"

	VisibilityPublic      = "PUBLIC"
	VisibilityConnections = "CONNECTIONS"
)

// RejectedError is a definitive remote rejection (payload or auth is
// structurally wrong). Retrying the same request will not help.
type RejectedError struct {
	StatusCode int
	Reason     string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("linkedin rejected publish: %d %s", e.StatusCode, e.Reason)
}

// TransientError covers network failures, 5xx and rate limiting.
// StatusCode is 0 when the request never got a response.
type TransientError struct {
	StatusCode int
	Reason     string
}

func (e *TransientError) Error() string {
	if e.StatusCode == 0 {
		return "linkedin publish transport error: " + e.Reason
	}
	return fmt.Sprintf("linkedin publish transient error: %d %s", e.StatusCode, e.Reason)
}

// Client publishes text shares through the ugcPosts endpoint.
type Client struct {
	base string
	http *http.Client
}

func NewClient(base string, timeout time.Duration) *Client {
	return &Client{
		base: base,
		http: &http.Client{Timeout: timeout},
	}
}

// Publish posts text as the credential's member and returns the remote urn.
// The urn arrives in the X-RestLi-Id response header (Location as fallback).
func (c *Client) Publish(ctx context.Context, cred Credential, text, visibility string) (string, error) {
	if visibility == "" {
		visibility = VisibilityPublic
	}
	if r := []rune(text); len(r) > maxShareText {
		text = string(r[:maxShareText])
	}

	body := map[string]any{
		"author":         "urn:li:person:" + cred.MemberID,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]any{
			"com.linkedin.ugc.ShareContent": map[string]any{
				"shareCommentary":    map[string]any{"text": text},
				"shareMediaCategory": "NONE",
			},
		},
		"visibility": map[string]any{
			"com.linkedin.ugc.MemberNetworkVisibility": visibility,
		},
	}
	buf, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/v2/ugcPosts", bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("X-Restli-Protocol-Version", restliProtocolVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &TransientError{Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		urn := resp.Header.Get("X-RestLi-Id")
		if urn == "" {
			urn = resp.Header.Get("Location")
		}
		return urn, nil
	}

	reason := errorReason(resp.Body)
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", &TransientError{StatusCode: resp.StatusCode, Reason: reason}
	}
	return "", &RejectedError{StatusCode: resp.StatusCode, Reason: reason}
}

// errorReason pulls LinkedIn's "message" field out of an error body,
// falling back to the raw (truncated) text.
func errorReason(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 2048))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return string(raw)
}
