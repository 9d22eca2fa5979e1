package comepass

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
	"time"

	"go.uber.org/zap"

	"github.com/samirwankhede/roomstats/internal/analytics"
	"github.com/samirwankhede/roomstats/internal/metrics"
)

const (
	DefaultBaseURL = "https://api.comepass.kr"

	requestFrom = "place_admin_web"
	origin      = "https://place.comepass.kr"
	userAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

var ErrMissingCredentials = errors.New("comepass id or password not configured")

// DayPayload is the vendor's studyroom response for one date.
type DayPayload struct {
	Date    string
	Raw     json.RawMessage
	Records []analytics.RawRecord
}

type Config struct {
	BaseURL  string
	ID       string
	Password string
	Timeout  time.Duration
}

// Client talks to the place-admin API. Every call is a single attempt; failures are
// returned as analytics.UpstreamUnavailableError.
type Client struct {
	log     *zap.Logger
	http    *http.Client
	baseURL string
	id      string
	pwd     string
	tokens  TokenStore
	now     func() time.Time
}

func NewClient(log *zap.Logger, cfg Config, tokens TokenStore) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if tokens == nil {
		tokens = NewMemoryTokens()
	}
	return &Client{
		log:     log,
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		id:      cfg.ID,
		pwd:     cfg.Password,
		tokens:  tokens,
		now:     time.Now,
	}
}

type loginResponse struct {
	Result    string `json:"result"`
	Message   string `json:"message"`
	Token     string `json:"access_token"`
	PlaceCode string `json:"p_code"`
	PlaceName string `json:"p_name"`
	// epoch seconds
	ExpiresIn int64 `json:"access_token_expires_in"`
}

type studyroomResponse struct {
	Result  string                `json:"result"`
	Message string                `json:"message"`
	List    []analytics.RawRecord `json:"list"`
}

// Token returns a cached token while it stays valid past the refresh margin, otherwise
// logs in again and stores the new one.
func (c *Client) Token(ctx context.Context) (Token, error) {
	tok, err := c.tokens.LoadToken(ctx)
	switch {
	case err == nil && tok.Valid(c.now()):
		return tok, nil
	case err != nil && !errors.Is(err, ErrNoToken):
		c.log.Warn("token cache read failed", zap.Error(err))
	}

	tok, err = c.login(ctx)
	if err != nil {
		return Token{}, err
	}
	if err := c.tokens.SaveToken(ctx, tok); err != nil {
		c.log.Warn("token cache write failed", zap.Error(err))
	}
	return tok, nil
}

func (c *Client) login(ctx context.Context) (Token, error) {
	if c.id == "" || c.pwd == "" {
		return Token{}, unavailable("login", ErrMissingCredentials)
	}
	body, _ := json.Marshal(map[string]string{"id": c.id, "pwd": c.pwd})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login/admin", bytes.NewReader(body))
	if err != nil {
		return Token{}, unavailable("login", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setCommonHeaders(req)

	var out loginResponse
	if err := c.do(req, "login", &out); err != nil {
		return Token{}, err
	}
	if out.Result != "success" || out.Token == "" {
		metrics.UpstreamCallsTotal.WithLabelValues("login", "rejected").Inc()
		return Token{}, unavailable("login", fmt.Errorf("login rejected: %s", out.Message))
	}

	tok := Token{
		AccessToken: out.Token,
		PlaceCode:   out.PlaceCode,
		PlaceName:   out.PlaceName,
		ExpiresAt:   time.Unix(out.ExpiresIn, 0),
	}
	c.log.Info("comepass login", zap.String("place", tok.PlaceName), zap.Time("expires_at", tok.ExpiresAt))
	return tok, nil
}

// FetchDay returns the studyroom reservations of date (YYYY-MM-DD).
func (c *Client) FetchDay(ctx context.Context, date string) (DayPayload, error) {
	tok, err := c.Token(ctx)
	if err != nil {
		return DayPayload{}, err
	}

	u := c.baseURL + "/place/studyroom?date=" + url.QueryEscape(date)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return DayPayload{}, unavailable("studyroom", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	req.Header.Set("X-Dmon-Place-Code", tok.PlaceCode)
	c.setCommonHeaders(req)

	var raw json.RawMessage
	if err := c.do(req, "studyroom", &raw); err != nil {
		return DayPayload{}, err
	}
	var out studyroomResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return DayPayload{}, unavailable("studyroom", err)
	}
	if out.Result != "success" {
		metrics.UpstreamCallsTotal.WithLabelValues("studyroom", "rejected").Inc()
		return DayPayload{}, unavailable("studyroom", fmt.Errorf("date %s: %s", date, out.Message))
	}
	return DayPayload{Date: date, Raw: raw, Records: out.List}, nil
}

func (c *Client) setCommonHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Origin", origin)
	req.Header.Set("Referer", origin+"/")
	req.Header.Set("X-Dmon-Request-From", requestFrom)
	req.Header.Set("User-Agent", userAgent)
}

func (c *Client) do(req *http.Request, op string, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues(op, "error").Inc()
		return unavailable(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues(op, "error").Inc()
		return unavailable(op, err)
	}
	if resp.StatusCode >= 300 {
		metrics.UpstreamCallsTotal.WithLabelValues(op, "http_"+strconv.Itoa(resp.StatusCode)).Inc()
		return unavailable(op, fmt.Errorf("status %d", resp.StatusCode))
	}
	if err := json.Unmarshal(body, out); err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues(op, "bad_body").Inc()
		return unavailable(op, err)
	}
	metrics.UpstreamCallsTotal.WithLabelValues(op, "ok").Inc()
	return nil
}

func unavailable(op string, err error) error {
	return &analytics.UpstreamUnavailableError{Source: "comepass " + op, Err: err}
}
