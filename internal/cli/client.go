package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"noticeperiod/internal/achievement"
	"noticeperiod/internal/content"
	"noticeperiod/internal/game"
	"noticeperiod/internal/viral"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
	Session Session
}

func NewClient(baseURL string, s Session) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
		Session: s,
	}
}

// APIError is a non-2xx answer carrying the server's {status, message} body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
}

// Retryable reports whether a failed request may succeed later unchanged:
// transport failures and 5xx answers.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500
	}
	return !errors.Is(err, context.Canceled)
}

// IsConflict matches 409s: a replayed choice or a finished run.
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict
}

type GameState struct {
	Player       game.PlayerProgress   `json:"player"`
	CurrentStep  content.Step          `json:"currentStep"`
	GameComplete bool                  `json:"gameComplete"`
	Leaderboard  viral.LeaderboardData `json:"leaderboard"`
}

type ChoiceResponse struct {
	Player          game.PlayerProgress  `json:"player"`
	NextStep        *content.Step        `json:"nextStep"`
	ViralPost       viral.RedditPost     `json:"viralPost"`
	Achievement     string               `json:"achievement"`
	StressChange    int                  `json:"stressChange"`
	MoneyChange     float64              `json:"moneyChange"`
	NewAchievements []achievement.Status `json:"newAchievements"`
	GameComplete    bool                 `json:"gameComplete"`
}

func (c *Client) Init(ctx context.Context) error {
	return c.jsonRequest(ctx, http.MethodGet, "/api/init", nil, nil, "")
}

func (c *Client) State(ctx context.Context) (GameState, error) {
	var out struct {
		GameState GameState `json:"gameState"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/api/game/state", nil, &out, "")
	return out.GameState, err
}

func ChoiceBody(choice string, index int) map[string]any {
	return map[string]any{"choice": choice, "choiceIndex": index}
}

func (c *Client) Choose(ctx context.Context, choice string, index int, idem string) (ChoiceResponse, error) {
	var out ChoiceResponse
	err := c.jsonRequest(ctx, http.MethodPost, "/api/game/choice", ChoiceBody(choice, index), &out, idem)
	return out, err
}

func (c *Client) Reset(ctx context.Context) error {
	return c.jsonRequest(ctx, http.MethodPost, "/api/game/reset", nil, nil, "")
}

func (c *Client) Achievements(ctx context.Context) ([]achievement.Status, error) {
	var out struct {
		Achievements []achievement.Status `json:"achievements"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/api/achievements", nil, &out, "")
	return out.Achievements, err
}

func (c *Client) Leaderboard(ctx context.Context) (viral.LeaderboardData, error) {
	var out struct {
		Leaderboard viral.LeaderboardData `json:"leaderboard"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/api/leaderboard", nil, &out, "")
	return out.Leaderboard, err
}

// Challenge fetches the community challenge; week < 0 means the current one.
func (c *Client) Challenge(ctx context.Context, week int) (viral.Challenge, error) {
	path := "/api/challenge"
	if week >= 0 {
		path += "?week=" + strconv.Itoa(week)
	}
	var out struct {
		Challenge viral.Challenge `json:"challenge"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, path, nil, &out, "")
	return out.Challenge, err
}

func (c *Client) Share(ctx context.Context, text string) (string, error) {
	var out struct {
		MessageID string `json:"messageId"`
	}
	var body map[string]any
	if strings.TrimSpace(text) != "" {
		body = map[string]any{"text": text}
	}
	err := c.jsonRequest(ctx, http.MethodPost, "/api/share", body, &out, "")
	return out.MessageID, err
}

func (c *Client) Certificate(ctx context.Context, name string) ([]byte, error) {
	q := url.Values{}
	if name != "" {
		q.Set("name", name)
	}
	path := "/api/game/certificate"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/pdf")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, readAPIError(resp)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) Do(ctx context.Context, method, path string, body map[string]any, idem string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, method, path, body, &out, idem)
	return out, err
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Post-Id", c.Session.PostID)
	req.Header.Set("X-User-Id", c.Session.UserID)
	return req, nil
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, in any, out any, idem string) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idem != "" {
		req.Header.Set("Idempotency-Key", idem)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return readAPIError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func readAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var body struct {
		Message string `json:"message"`
	}
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &body) == nil && body.Message != "" {
		msg = body.Message
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
