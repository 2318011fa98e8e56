package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/msgtrik/trik/internal/chat"
	"github.com/msgtrik/trik/internal/session"
)

// tokenPair is the response of login, register and token refresh.
type tokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// RegisterData is the payload for account creation.
type RegisterData struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Gender   string `json:"gender,omitempty"`
	DOB      string `json:"dob,omitempty"`
}

// Login authenticates with email and password, hydrates the profile and
// persists the session snapshot. Returns the stored user.
func (c *Client) Login(ctx context.Context, email, password string) (*session.User, error) {
	var tokens tokenPair
	body := map[string]string{"email": email, "password": password}
	if err := c.doPublic(ctx, http.MethodPost, "/users/login", body, &tokens); err != nil {
		return nil, err
	}
	return c.adoptSession(ctx, tokens)
}

// Register creates an account and logs it in, persisting the snapshot.
func (c *Client) Register(ctx context.Context, data RegisterData) (*session.User, error) {
	var tokens tokenPair
	if err := c.doPublic(ctx, http.MethodPost, "/users/register", data, &tokens); err != nil {
		return nil, err
	}
	return c.adoptSession(ctx, tokens)
}

// adoptSession stores the fresh tokens, fetches the profile behind them and
// persists the combined snapshot.
func (c *Client) adoptSession(ctx context.Context, tokens tokenPair) (*session.User, error) {
	// Tokens go in first so the /users/me call is authorized.
	if err := c.snap.Save(&session.User{Access: tokens.Access, Refresh: tokens.Refresh}); err != nil {
		return nil, err
	}
	me, err := c.Me(ctx)
	if err != nil {
		return nil, err
	}
	u := &session.User{
		Access:  tokens.Access,
		Refresh: tokens.Refresh,
		ID:      me.ID,
		Email:   me.Email,
		Profile: me.Profile,
	}
	if err := c.snap.Save(u); err != nil {
		return nil, err
	}
	return u, nil
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*chat.ChatUser, error) {
	var u chat.ChatUser
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// SearchUser looks a user up by exact email, for starting a new chat.
func (c *Client) SearchUser(ctx context.Context, email string) (*chat.ChatUser, error) {
	var u chat.ChatUser
	path := "/users/search/" + url.PathEscape(email)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile writes profile changes and refreshes the stored snapshot.
func (c *Client) UpdateProfile(ctx context.Context, profile chat.Profile) (*chat.ChatUser, error) {
	body := map[string]any{"profile": profile}
	var u chat.ChatUser
	if err := c.do(ctx, http.MethodPut, "/users/me", nil, body, &u); err != nil {
		return nil, err
	}
	if stored, err := c.snap.Load(); err == nil && stored != nil {
		stored.Profile = u.Profile
		_ = c.snap.Save(stored)
	}
	return &u, nil
}

// UploadAvatar uploads an image file as the user's avatar and returns the
// served URL.
func (c *Client) UploadAvatar(ctx context.Context, filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("avatar", filepath.Base(filePath))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/users/me/avatar", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token := c.accessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &APIError{Status: resp.StatusCode, Detail: readDetail(resp.Body)}
	}

	var out struct {
		AvatarURL string `json:"avatarUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode avatar response: %w", err)
	}
	if stored, err := c.snap.Load(); err == nil && stored != nil {
		stored.Profile.AvatarURL = out.AvatarURL
		_ = c.snap.Save(stored)
	}
	return out.AvatarURL, nil
}

// Logout clears the persisted session snapshot. Purely local; the server
// keeps no session state beyond token validity.
func (c *Client) Logout() error {
	return c.snap.Clear()
}
