package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"msgdash/internal/config"
)

const (
	maxResponseBytes = 4 << 20
	requestIDHeader  = "X-Request-ID"
)

// Client 后端 HTTP/JSON 客户端
// Client is the HTTP/JSON client for the messaging-integration backend
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	now        func() time.Time
}

// NewClient builds a client from the api config section.
func NewClient(cfg config.APIConfig) *Client {
	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		token:   strings.TrimSpace(cfg.Token),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		now: time.Now,
	}
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}
	return c
}

// BaseURL returns the normalized backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// TelegramStatus 获取 Telegram 集成状态
// TelegramStatus fetches the current Telegram integration status
func (c *Client) TelegramStatus(ctx context.Context) (IntegrationStatus, error) {
	var out IntegrationStatus
	err := c.do(ctx, http.MethodGet, "/api/v1/telegram/status", nil, nil, &out)
	return out, err
}

// StartTelegramAuth 开始手机号认证，返回 session key
// StartTelegramAuth begins the phone handshake and returns the session key
func (c *Client) StartTelegramAuth(ctx context.Context, phone string) (StartAuthResponse, error) {
	var out StartAuthResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/telegram/auth/start", nil, startAuthRequest{Phone: phone}, &out)
	return out, err
}

// VerifyTelegramAuth 提交验证码（以及可选的二次验证密码）
// VerifyTelegramAuth submits the verification code and optional 2FA password
func (c *Client) VerifyTelegramAuth(ctx context.Context, req VerifyAuthRequest) error {
	var out Message
	return c.do(ctx, http.MethodPost, "/api/v1/telegram/auth/verify", nil, req, &out)
}

// DisconnectTelegram tears down the server-side Telegram session.
func (c *Client) DisconnectTelegram(ctx context.Context) error {
	var out Message
	return c.do(ctx, http.MethodPost, "/api/v1/telegram/disconnect", nil, nil, &out)
}

// GoogleOAuthLogin 获取 Gmail 委托授权地址
// GoogleOAuthLogin requests the Gmail delegated-authorization URL
func (c *Client) GoogleOAuthLogin(ctx context.Context) (string, error) {
	var out AuthorizationURL
	if err := c.do(ctx, http.MethodGet, "/api/v1/oauth/google/login", nil, nil, &out); err != nil {
		return "", err
	}
	return out.AuthorizationURL, nil
}

// ReadItems 分页读取消息条目
// ReadItems reads one page of classified items
func (c *Client) ReadItems(ctx context.Context, params ListItemsParams) (ItemsPage, error) {
	var out ItemsPage
	err := c.do(ctx, http.MethodGet, "/api/v1/items/", itemsQuery(params), nil, &out)
	return out, err
}

// CurrentUser returns the user the access token belongs to.
func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	var out User
	err := c.do(ctx, http.MethodGet, "/api/v1/users/me", nil, nil, &out)
	return out, err
}

func itemsQuery(p ListItemsParams) url.Values {
	q := url.Values{}
	if p.Skip > 0 {
		q.Set("skip", strconv.Itoa(p.Skip))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	set := func(key, value string) {
		if v := strings.TrimSpace(value); v != "" {
			q.Set(key, v)
		}
	}
	set("search", p.Search)
	set("category", p.Category)
	set("priority", p.Priority)
	set("source", p.Source)
	set("message_type", p.MessageType)
	set("contact", p.Contact)
	if p.ActionRequired != nil {
		q.Set("action_required", strconv.FormatBool(*p.ActionRequired))
	}
	return q
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	if tokenExpired(c.token, c.now()) {
		return ErrTokenExpired
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", path, err)
		}
		body = bytes.NewReader(data)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("create %s request: %w", path, err)
	}
	reqID := uuid.NewString()
	req.Header.Set(requestIDHeader, reqID)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("request_id", reqID).Str("method", method).Str("path", path).Msg("api request failed")
		return fmt.Errorf("send %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}
	log.Debug().
		Str("request_id", reqID).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Message: parseErrorMessage(data)}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s response: %w", path, err)
	}
	return nil
}

// tokenExpired 仅在 token 是带 exp 的 JWT 时判断过期；不透明 token 交给服务端校验
// tokenExpired only judges JWTs carrying exp; opaque tokens are left to the backend
func tokenExpired(token string, now time.Time) bool {
	if token == "" || strings.Count(token, ".") != 2 {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return now.After(exp.Time)
}
