package httpapi

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

	"github.com/bnema/tgsession/internal/domain"
	"github.com/bnema/tgsession/internal/ports"
	"github.com/google/uuid"
)

const (
	maxResponseBytes = 1 << 20
	cacheBusterParam = "cachebuster"
	requestIDHeader  = "X-Request-ID"

	actionLogin  = "login"
	actionLogout = "logout"

	DefaultLoginPath          = "auth/telegram_auth.php"
	DefaultHeartbeatPath      = "auth/update_activity.php"
	DefaultUserDataPath       = "auth/get_user_data.php"
	DefaultUserDataUpdatePath = "auth/update_user_data.php"
)

// API holds the backend base URL and the endpoint paths resolved against it.
type API struct {
	BaseURL            string
	LoginPath          string
	HeartbeatPath      string
	UserDataPath       string
	UserDataUpdatePath string
}

func DefaultAPI(baseURL string) API {
	return API{
		BaseURL:            baseURL,
		LoginPath:          DefaultLoginPath,
		HeartbeatPath:      DefaultHeartbeatPath,
		UserDataPath:       DefaultUserDataPath,
		UserDataUpdatePath: DefaultUserDataUpdatePath,
	}
}

// Client talks JSON over HTTP POST to the session backend.
type Client struct {
	API            API
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	Now            func() time.Time
}

var _ ports.Backend = Client{}

type loginBody struct {
	Action   string          `json:"action"`
	User     domain.Identity `json:"user"`
	InitData string          `json:"init_data"`
}

type logoutBody struct {
	Action    string        `json:"action"`
	UserID    domain.UserID `json:"user_id"`
	SessionID string        `json:"session_id"`
}

type heartbeatBody struct {
	UserID       domain.UserID `json:"user_id"`
	SessionID    string        `json:"session_id"`
	LastActivity string        `json:"last_activity"`
}

type userDataBody struct {
	UserID domain.UserID `json:"user_id"`
}

type userDataUpdateBody struct {
	UserID  domain.UserID `json:"user_id"`
	Action  string        `json:"action"`
	VideoID string        `json:"video_id"`
}

type response struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	SessionID string          `json:"session_id"`
	UserData  domain.UserData `json:"user_data"`
}

func (c Client) Login(ctx context.Context, req ports.LoginRequest) (ports.LoginResult, error) {
	resp, err := c.post(ctx, "login", c.API.LoginPath, nil, loginBody{
		Action:   actionLogin,
		User:     req.User,
		InitData: req.InitData,
	})
	if err != nil {
		return ports.LoginResult{}, err
	}

	return ports.LoginResult{
		Success:   resp.Success,
		SessionID: resp.SessionID,
		Message:   resp.Message,
	}, nil
}

func (c Client) Logout(ctx context.Context, userID domain.UserID, sessionID string) (ports.Ack, error) {
	resp, err := c.post(ctx, "logout", c.API.LoginPath, nil, logoutBody{
		Action:    actionLogout,
		UserID:    userID,
		SessionID: sessionID,
	})
	if err != nil {
		return ports.Ack{}, err
	}

	return ports.Ack{Success: resp.Success, Message: resp.Message}, nil
}

func (c Client) Heartbeat(ctx context.Context, req ports.HeartbeatRequest) (ports.Ack, error) {
	resp, err := c.post(ctx, "heartbeat", c.API.HeartbeatPath, nil, heartbeatBody{
		UserID:       req.UserID,
		SessionID:    req.SessionID,
		LastActivity: domain.ActivityTimestamp(req.LastActivity),
	})
	if err != nil {
		return ports.Ack{}, err
	}

	return ports.Ack{Success: resp.Success, Message: resp.Message}, nil
}

// FetchUserData defeats intermediate caches with a timestamp query
// parameter and a no-cache header.
func (c Client) FetchUserData(ctx context.Context, userID domain.UserID) (ports.UserDataResult, error) {
	query := url.Values{}
	query.Set(cacheBusterParam, strconv.FormatInt(c.now().UnixMilli(), 10))

	resp, err := c.post(ctx, "fetch user data", c.API.UserDataPath, query, userDataBody{UserID: userID},
		header{key: "Cache-Control", value: "no-cache"},
	)
	if err != nil {
		return ports.UserDataResult{}, err
	}

	return ports.UserDataResult{Success: resp.Success, UserData: resp.UserData}, nil
}

func (c Client) UpdateUserData(ctx context.Context, update ports.UserDataUpdate) (ports.Ack, error) {
	resp, err := c.post(ctx, "update user data", c.API.UserDataUpdatePath, nil, userDataUpdateBody{
		UserID:  update.UserID,
		Action:  string(update.Action),
		VideoID: update.VideoID,
	})
	if err != nil {
		return ports.Ack{}, err
	}

	return ports.Ack{Success: resp.Success, Message: resp.Message}, nil
}

type header struct {
	key   string
	value string
}

func (c Client) post(ctx context.Context, op string, path string, query url.Values, body any, headers ...header) (response, error) {
	endpoint, err := buildAPIURL(c.API.BaseURL, path, query)
	if err != nil {
		return response{}, &domain.TransportError{Op: op, Err: err}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return response{}, fmt.Errorf("%s: encode request: %w", op, err)
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return response{}, fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, uuid.NewString())
	for _, h := range headers {
		req.Header.Set(h.key, h.value)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return response{}, &domain.TransportError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return response{}, &domain.TransportError{Op: op, StatusCode: resp.StatusCode}
	}

	var decoded response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&decoded); err != nil {
		return response{}, &domain.TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}

	return decoded, nil
}

func (c Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c Client) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	requestTimeout := c.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}

	return context.WithTimeout(ctx, requestTimeout)
}

func buildAPIURL(baseURL string, path string, query url.Values) (string, error) {
	if baseURL == "" {
		return "", errors.New("api base url is required")
	}
	if path == "" {
		return "", errors.New("api path is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("api base url host is required")
	}
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}

	endpoint, err := parsed.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse api path: %w", err)
	}
	if len(query) > 0 {
		values := endpoint.Query()
		for key, vals := range query {
			for _, v := range vals {
				values.Add(key, v)
			}
		}
		endpoint.RawQuery = values.Encode()
	}
	return endpoint.String(), nil
}
