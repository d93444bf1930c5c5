package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bnema/ghostreel/internal/domain"
	"github.com/bnema/ghostreel/internal/ports"
)

const (
	maxResponseBytes      = 1 << 20
	defaultRequestTimeout = 30 * time.Second
	defaultUploadTimeout  = 5 * time.Minute

	loginPath   = "/v1/login"
	probePath   = "/v1/session/probe"
	resolvePath = "/v1/users/resolve"
	publishPath = "/v1/media/clips"
	sharePath   = "/v1/direct/share"
	messagePath = "/v1/direct/messages"
	infoPath    = "/v1/users/info"
	mediaPath   = "/v1/users/media"
	postPath    = "/v1/media/resolve"

	errorTwoFactorRequired = "two_factor_required"
)

// Factory builds one Client per account. Accounts with a proxy get their own
// transport.
type Factory struct {
	BaseURL        string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	UploadTimeout  time.Duration
}

var _ ports.AccountClientFactory = Factory{}

func (f Factory) NewClient(account domain.Account) (ports.AccountClient, error) {
	base, err := parseBaseURL(f.BaseURL)
	if err != nil {
		return nil, err
	}

	httpClient := f.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if account.HasProxy() {
		proxyURL, err := url.Parse(account.Proxy)
		if err != nil {
			return nil, fmt.Errorf("parse proxy for %s: %w", account.ID, err)
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = http.ProxyURL(proxyURL)
		httpClient = &http.Client{Transport: transport, Timeout: httpClient.Timeout}
	}

	requestTimeout := f.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}
	uploadTimeout := f.UploadTimeout
	if uploadTimeout <= 0 {
		uploadTimeout = defaultUploadTimeout
	}

	return &Client{
		base:           base,
		http:           httpClient,
		identity:       string(account.ID),
		requestTimeout: requestTimeout,
		uploadTimeout:  uploadTimeout,
	}, nil
}

// Client speaks JSON to the platform gateway on behalf of one account.
type Client struct {
	base           *url.URL
	http           *http.Client
	identity       string
	requestTimeout time.Duration
	uploadTimeout  time.Duration

	mu      sync.RWMutex
	session sessionState
}

var _ ports.AccountClient = (*Client)(nil)

type sessionState struct {
	Identity string `json:"identity"`
	Token    string `json:"token"`
	UserID   string `json:"user_id,omitempty"`
}

type loginRequest struct {
	Username         string `json:"username"`
	Password         string `json:"password"`
	VerificationCode string `json:"verification_code,omitempty"`
}

type loginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type postResponse struct {
	MediaID string `json:"media_id"`
	Code    string `json:"code"`
	URL     string `json:"url"`
}

type usertagPayload struct {
	UserID string  `json:"user_id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type shareRequest struct {
	MediaID string   `json:"media_id"`
	UserIDs []string `json:"user_ids"`
}

type messageRequest struct {
	Text    string   `json:"text"`
	UserIDs []string `json:"user_ids"`
}

type threadResponse struct {
	ThreadID  string `json:"thread_id"`
	MessageID string `json:"message_id"`
}

type userInfoResponse struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	FullName      string `json:"full_name"`
	Biography     string `json:"biography"`
	Followers     int    `json:"follower_count"`
	Following     int    `json:"following_count"`
	MediaCount    int    `json:"media_count"`
	Private       bool   `json:"is_private"`
	Verified      bool   `json:"is_verified"`
	ProfilePicURL string `json:"profile_pic_url"`
	ExternalURL   string `json:"external_url"`
	Category      string `json:"category"`
}

type mediaResponse struct {
	MediaID       string    `json:"media_id"`
	Code          string    `json:"code"`
	URL           string    `json:"url"`
	MediaType     int       `json:"media_type"`
	Caption       string    `json:"caption"`
	LikeCount     int       `json:"like_count"`
	CommentCount  int       `json:"comment_count"`
	TakenAt       time.Time `json:"taken_at"`
	ThumbnailURL  string    `json:"thumbnail_url"`
	VideoURL      string    `json:"video_url"`
	VideoDuration float64   `json:"video_duration"`
}

type mediaListResponse struct {
	Items []mediaResponse `json:"items"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) Login(ctx context.Context, identity, secret, otp string) error {
	var out loginResponse
	err := c.doJSON(ctx, http.MethodPost, loginPath, nil, loginRequest{
		Username:         identity,
		Password:         secret,
		VerificationCode: otp,
	}, &out, false)
	if err != nil {
		if errors.Is(err, domain.ErrTwoFactorRequired) || errors.Is(err, domain.ErrTransient) {
			return err
		}
		return fmt.Errorf("%w: %w", domain.ErrAuthFailed, err)
	}
	if out.Token == "" {
		return fmt.Errorf("%w: login response missing token", domain.ErrAuthFailed)
	}

	c.mu.Lock()
	c.session = sessionState{Identity: identity, Token: out.Token, UserID: out.UserID}
	c.mu.Unlock()

	return nil
}

func (c *Client) LoadSession(ctx context.Context, blob []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var state sessionState
	if err := json.Unmarshal(blob, &state); err != nil {
		return fmt.Errorf("decode session: %w", err)
	}
	if state.Token == "" {
		return errors.New("session has no token")
	}
	if state.Identity != "" && state.Identity != c.identity {
		return fmt.Errorf("session belongs to %q", state.Identity)
	}

	c.mu.Lock()
	c.session = state
	c.mu.Unlock()

	return nil
}

func (c *Client) DumpSession(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	state := c.session
	c.mu.RUnlock()

	if state.Token == "" {
		return nil, errors.New("no active session")
	}
	if state.Identity == "" {
		state.Identity = c.identity
	}

	return json.Marshal(state)
}

func (c *Client) Probe(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, probePath, nil, nil, nil, true)
}

func (c *Client) ResolveIdentity(ctx context.Context, username string) (domain.UserHandle, error) {
	query := url.Values{}
	query.Set("username", strings.TrimPrefix(username, "@"))

	var out userResponse
	if err := c.doJSON(ctx, http.MethodGet, resolvePath, query, nil, &out, true); err != nil {
		return domain.UserHandle{}, fmt.Errorf("resolve %s: %w", username, err)
	}
	if out.ID == "" {
		return domain.UserHandle{}, fmt.Errorf("resolve %s: %w", username, domain.ErrNotFound)
	}
	if out.Username == "" {
		out.Username = username
	}

	return domain.UserHandle{ID: out.ID, Username: out.Username}, nil
}

func (c *Client) Publish(ctx context.Context, req domain.PublishRequest) (domain.PostRef, error) {
	body, contentType, err := buildPublishBody(req)
	if err != nil {
		return domain.PostRef{}, err
	}

	requestCtx, cancel := c.contextWithTimeout(ctx, c.uploadTimeout)
	defer cancel()

	httpReq, err := c.newRequest(requestCtx, http.MethodPost, publishPath, nil, body, true)
	if err != nil {
		return domain.PostRef{}, err
	}
	httpReq.Header.Set("Content-Type", contentType)

	var out postResponse
	if err := c.do(httpReq, &out); err != nil {
		return domain.PostRef{}, fmt.Errorf("publish clip: %w", err)
	}
	if out.MediaID == "" {
		return domain.PostRef{}, errors.New("publish clip: response missing media id")
	}

	return domain.PostRef{MediaID: out.MediaID, Code: out.Code, URL: out.URL}, nil
}

func (c *Client) Share(ctx context.Context, post domain.PostRef, to domain.UserHandle) (string, error) {
	var out threadResponse
	err := c.doJSON(ctx, http.MethodPost, sharePath, nil, shareRequest{MediaID: post.MediaID, UserIDs: []string{to.ID}}, &out, true)
	if err != nil {
		return "", fmt.Errorf("share to %s: %w", to.Username, err)
	}

	return out.ThreadID, nil
}

func (c *Client) SendMessage(ctx context.Context, text string, to domain.UserHandle) (string, error) {
	var out threadResponse
	err := c.doJSON(ctx, http.MethodPost, messagePath, nil, messageRequest{Text: text, UserIDs: []string{to.ID}}, &out, true)
	if err != nil {
		return "", fmt.Errorf("message %s: %w", to.Username, err)
	}

	return out.MessageID, nil
}

func (c *Client) UserInfo(ctx context.Context, username string) (domain.UserInfo, error) {
	query := url.Values{}
	query.Set("username", strings.TrimPrefix(username, "@"))

	var out userInfoResponse
	if err := c.doJSON(ctx, http.MethodGet, infoPath, query, nil, &out, true); err != nil {
		return domain.UserInfo{}, fmt.Errorf("user info %s: %w", username, err)
	}
	if out.ID == "" {
		return domain.UserInfo{}, fmt.Errorf("user info %s: %w", username, domain.ErrNotFound)
	}

	return domain.UserInfo{
		ID:            out.ID,
		Username:      out.Username,
		FullName:      out.FullName,
		Biography:     out.Biography,
		Followers:     out.Followers,
		Following:     out.Following,
		MediaCount:    out.MediaCount,
		Private:       out.Private,
		Verified:      out.Verified,
		ProfilePicURL: out.ProfilePicURL,
		ExternalURL:   out.ExternalURL,
		Category:      out.Category,
	}, nil
}

func (c *Client) RecentPosts(ctx context.Context, username string, limit int) ([]domain.Post, error) {
	query := url.Values{}
	if username = strings.TrimPrefix(username, "@"); username != "" {
		query.Set("username", username)
	}
	query.Set("limit", strconv.Itoa(limit))

	var out mediaListResponse
	if err := c.doJSON(ctx, http.MethodGet, mediaPath, query, nil, &out, true); err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}

	posts := make([]domain.Post, 0, len(out.Items))
	for _, item := range out.Items {
		posts = append(posts, domain.Post{
			Ref:           domain.PostRef{MediaID: item.MediaID, Code: item.Code, URL: item.URL},
			Kind:          domain.MediaKind(item.MediaType),
			Caption:       item.Caption,
			Likes:         item.LikeCount,
			Comments:      item.CommentCount,
			TakenAt:       item.TakenAt,
			ThumbnailURL:  item.ThumbnailURL,
			VideoURL:      item.VideoURL,
			VideoDuration: item.VideoDuration,
		})
	}

	return posts, nil
}

func (c *Client) ResolvePost(ctx context.Context, code string) (domain.PostRef, error) {
	query := url.Values{}
	query.Set("code", code)

	var out postResponse
	if err := c.doJSON(ctx, http.MethodGet, postPath, query, nil, &out, true); err != nil {
		return domain.PostRef{}, fmt.Errorf("resolve post %s: %w", code, err)
	}
	if out.MediaID == "" {
		return domain.PostRef{}, fmt.Errorf("resolve post %s: %w", code, domain.ErrNotFound)
	}
	if out.Code == "" {
		out.Code = code
	}

	return domain.PostRef{MediaID: out.MediaID, Code: out.Code, URL: out.URL}, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, in any, out any, authenticated bool) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		body = bytes.NewReader(encoded)
	}

	requestCtx, cancel := c.contextWithTimeout(ctx, c.requestTimeout)
	defer cancel()

	req, err := c.newRequest(requestCtx, method, path, query, body, authenticated)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, authenticated bool) (*http.Request, error) {
	endpoint := c.base.JoinPath(path)
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	if authenticated {
		c.mu.RLock()
		token := c.session.Token
		c.mu.RUnlock()
		if token == "" {
			return nil, fmt.Errorf("%s: %w", path, domain.ErrAuthExpired)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil && errors.Is(err, context.Canceled) {
			return ctxErr
		}
		return fmt.Errorf("%w: %w", domain.ErrTransient, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return classifyStatus(resp)
	}
	if out == nil {
		return nil
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}

	return nil
}

func (c *Client) contextWithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, timeout)
}

func classifyStatus(resp *http.Response) error {
	var payload errorResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload)

	detail := fmt.Sprintf("status %d", resp.StatusCode)
	if payload.Error != "" {
		detail += ": " + payload.Error
	}
	if payload.Message != "" {
		detail += ": " + payload.Message
	}

	switch {
	case payload.Error == errorTwoFactorRequired:
		return fmt.Errorf("%w: %s", domain.ErrTwoFactorRequired, detail)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrAuthExpired, detail)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, detail)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %s", domain.ErrTransient, detail)
	default:
		return errors.New(detail)
	}
}

func buildPublishBody(req domain.PublishRequest) (*bytes.Buffer, string, error) {
	video, err := os.Open(req.VideoPath)
	if err != nil {
		return nil, "", fmt.Errorf("open clip: %w", err)
	}
	defer func() { _ = video.Close() }()

	tags := make([]usertagPayload, 0, len(req.Tags))
	for _, tag := range req.Tags {
		tags = append(tags, usertagPayload{UserID: tag.User.ID, X: tag.X, Y: tag.Y})
	}
	encodedTags, err := json.Marshal(tags)
	if err != nil {
		return nil, "", fmt.Errorf("encode usertags: %w", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("caption", req.Caption); err != nil {
		return nil, "", fmt.Errorf("write caption: %w", err)
	}
	if err := writer.WriteField("usertags", string(encodedTags)); err != nil {
		return nil, "", fmt.Errorf("write usertags: %w", err)
	}
	part, err := writer.CreateFormFile("video", filepath.Base(req.VideoPath))
	if err != nil {
		return nil, "", fmt.Errorf("create video part: %w", err)
	}
	if _, err := io.Copy(part, video); err != nil {
		return nil, "", fmt.Errorf("copy clip: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}

	return body, writer.FormDataContentType(), nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, errors.New("gateway base url is required")
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse gateway base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errors.New("gateway base url must use http or https")
	}
	if parsed.Host == "" {
		return nil, errors.New("gateway base url host is required")
	}

	return parsed, nil
}
