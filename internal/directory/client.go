package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Rrens/deskmap/internal/domain"
)

const (
	defaultGraphBaseURL = "https://graph.microsoft.com/v1.0"
	defaultLoginBaseURL = "https://login.microsoftonline.com"

	userSelectFields = "id,givenName,surname,displayName,officeLocation,userPrincipalName"
)

// Client talks to the Microsoft Graph API with client-credential auth.
type Client struct {
	client       *http.Client
	graphBaseURL string
	loginBaseURL string
}

// Option overrides client defaults, mainly for tests.
type Option func(*Client)

// WithBaseURLs points the client at alternative Graph and login endpoints.
func WithBaseURLs(graphBaseURL, loginBaseURL string) Option {
	return func(c *Client) {
		c.graphBaseURL = strings.TrimRight(graphBaseURL, "/")
		c.loginBaseURL = strings.TrimRight(loginBaseURL, "/")
	}
}

// NewClient creates a new Graph directory client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		client:       &http.Client{Timeout: 60 * time.Second},
		graphBaseURL: defaultGraphBaseURL,
		loginBaseURL: defaultLoginBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// ExchangeClientCredential obtains an app-only access token for the tenant.
func (c *Client) ExchangeClientCredential(ctx context.Context, settings domain.DirectorySettings) (string, error) {
	scopes := settings.Scopes
	if scopes == "" {
		scopes = domain.DefaultGraphScopes
	}

	form := url.Values{}
	form.Set("client_id", settings.ClientID)
	form.Set("scope", scopes)
	form.Set("client_secret", settings.ClientSecret)
	form.Set("grant_type", "client_credentials")

	tokenURL := fmt.Sprintf("%s/%s/oauth2/v2.0/token", c.loginBaseURL, settings.TenantID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("token error: %d %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}

	return payload.AccessToken, nil
}

type usersPage struct {
	Value    []domain.DirectoryUser `json:"value"`
	NextLink string                 `json:"@odata.nextLink"`
}

// FetchAllUsers retrieves the tenant's users, following pagination. A
// positive limit caps the total returned, which keeps connectivity tests
// to a single small page.
func (c *Client) FetchAllUsers(ctx context.Context, settings domain.DirectorySettings, limit int) ([]domain.DirectoryUser, error) {
	token, err := c.ExchangeClientCredential(ctx, settings)
	if err != nil {
		return nil, err
	}

	next := fmt.Sprintf("%s/users?$select=%s", c.graphBaseURL, userSelectFields)
	if limit > 0 {
		next += fmt.Sprintf("&$top=%d", limit)
	}

	var users []domain.DirectoryUser
	for next != "" {
		page, err := c.fetchUsersPage(ctx, next, token)
		if err != nil {
			return nil, err
		}
		users = append(users, page.Value...)
		if limit > 0 && len(users) >= limit {
			users = users[:limit]
			break
		}
		next = page.NextLink
	}

	return users, nil
}

func (c *Client) fetchUsersPage(ctx context.Context, pageURL, token string) (*usersPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create users request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("users request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("graph error: %d %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var page usersPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode users response: %w", err)
	}

	return &page, nil
}
