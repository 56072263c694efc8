package clerk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bloodlagbe_backend/internal/model"
)

// Client calls the identity provider's backend API. The service only reads
// the public attributes of a user (image, last-active timestamp); session
// issuance and webhook signing stay entirely on the provider's side.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

// ErrUserNotFound is returned when the provider has no user for the given id.
var ErrUserNotFound = errors.New("identity provider user not found")

// NewClient creates a provider API client.
func NewClient(baseURL, secretKey string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// publicUserResponse is the subset of the provider's user object we consume.
type publicUserResponse struct {
	HasImage     bool   `json:"has_image"`
	ImageURL     string `json:"image_url"`
	LastActiveAt int64  `json:"last_active_at"`
}

// GetPublicUser fetches a principal's public attributes by identifier.
func (c *Client) GetPublicUser(ctx context.Context, clerkID string) (*model.PublicUser, error) {
	url := fmt.Sprintf("%s/users/%s", c.baseURL, clerkID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build user request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch user from identity provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrUserNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("identity provider returned %d: %s", resp.StatusCode, string(body))
	}

	var user publicUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode identity provider response: %w", err)
	}

	return &model.PublicUser{
		HasImage:     user.HasImage,
		ImageURL:     user.ImageURL,
		LastActiveAt: user.LastActiveAt,
	}, nil
}
