package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RoomAllocator abstracts the peer-to-peer media signaling subsystem. The
// returned token is opaque: stored and returned verbatim, never interpreted.
type RoomAllocator interface {
	AllocateRoomToken(ctx context.Context) (string, error)
}

// SignalingClient talks to the external signaling service over HTTP.
type SignalingClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

type roomTokenResponse struct {
	Token string `json:"token"`
}

func NewSignalingClient(baseURL, apiKey string) *SignalingClient {
	return &SignalingClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// AllocateRoomToken requests a meeting-room token for a video interview.
func (c *SignalingClient) AllocateRoomToken(ctx context.Context) (string, error) {
	url := c.baseURL + "/v1/rooms"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBufferString("{}"))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("signaling API error: %d - %s", resp.StatusCode, string(body))
	}

	var tokenResp roomTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if tokenResp.Token == "" {
		return "", fmt.Errorf("signaling API returned an empty token")
	}

	slog.Info("Meeting-room token allocated")
	return tokenResp.Token, nil
}

// LocalRoomAllocator mints opaque tokens locally. Used when no signaling
// service is configured, so video interviews still work in development.
type LocalRoomAllocator struct{}

func (LocalRoomAllocator) AllocateRoomToken(ctx context.Context) (string, error) {
	return "room-" + uuid.New().String(), nil
}
