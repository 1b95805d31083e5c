package board

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"shopfloor-tracker/internal/domain"
	"shopfloor-tracker/internal/http/dto"
	"shopfloor-tracker/internal/http/handlers"
)

// Client polls the live endpoint of a tracker server.
type Client struct {
	baseURL  string
	identity domain.Identity
	http     *http.Client
}

func NewClient(baseURL string, id domain.Identity) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		identity: id,
		http:     &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *Client) Live(ctx context.Context) (dto.LiveResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/live", nil)
	if err != nil {
		return dto.LiveResponse{}, err
	}
	req.Header.Set(handlers.HeaderWorkerID, c.identity.WorkerID)
	req.Header.Set(handlers.HeaderRole, string(c.identity.Role))

	resp, err := c.http.Do(req)
	if err != nil {
		return dto.LiveResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e dto.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return dto.LiveResponse{}, fmt.Errorf("GET /live: %s: %s", resp.Status, e.Error)
	}

	var out dto.LiveResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return dto.LiveResponse{}, fmt.Errorf("decode live: %w", err)
	}
	return out, nil
}
