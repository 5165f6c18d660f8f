package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/felixgeelhaar/fortify/retry"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/desertthunder/flix/internal/session"
	"github.com/desertthunder/flix/internal/shared"
)

const (
	DefaultBaseURL       = "https://willsmovies.herokuapp.com"
	DefaultRateLimit     = 5.0
	DefaultRetryAttempts = 3
	DefaultRetryDelay    = 250 * time.Millisecond
	DefaultTimeout       = 15 * time.Second

	requestIDHeader = "X-Request-ID"
)

const (
	opRegister       = "register"
	opLogin          = "login"
	opListMovies     = "list movies"
	opGetMovie       = "get movie"
	opGetDirector    = "get director"
	opGetGenre       = "get genre"
	opGetUser        = "get user"
	opEditUser       = "edit user"
	opDeleteUser     = "delete user"
	opAddFavorite    = "add favorite"
	opRemoveFavorite = "remove favorite"
)

// GatewayOpts configures a [Gateway]. Zero values fall back to the package defaults.
type GatewayOpts struct {
	BaseURL    string
	HTTPClient *http.Client
	Session    *session.Store
	Logger     *log.Logger

	// RateLimit is the number of requests per second; negative disables limiting.
	RateLimit float64
	// RetryAttempts bounds attempts for idempotent GETs; 1 disables retries.
	RetryAttempts int
	RetryDelay    time.Duration
}

// Gateway issues requests against the movie API and normalizes their failures.
//
// Authenticated calls read the token from the injected [session.Store] and never modify it.
type Gateway struct {
	baseURL string
	client  *http.Client
	session *session.Store
	logger  *log.Logger
	limiter *rate.Limiter
	retrier retry.Retry[*reply]
}

// reply is a fully read HTTP response.
type reply struct {
	status    int
	body      []byte
	requestID string
}

// call describes one gateway operation.
type call struct {
	op     string
	method string
	path   string
	token  string
	body   any

	// fallback is the user-facing message for unexpected failures.
	fallback string
}

// NewGateway creates a [Gateway]. A nil session store yields a gateway that can only log in and register.
func NewGateway(opts GatewayOpts) *Gateway {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Session == nil {
		opts.Session, _ = session.NewStore(session.NewMemoryBackend())
	}
	if opts.RateLimit == 0 {
		opts.RateLimit = DefaultRateLimit
	}
	if opts.RetryAttempts == 0 {
		opts.RetryAttempts = DefaultRetryAttempts
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}

	g := &Gateway{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		client:  opts.HTTPClient,
		session: opts.Session,
		logger:  shared.WithLogger(opts.Logger, "component", "gateway"),
	}

	if opts.RateLimit > 0 {
		g.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	if opts.RetryAttempts > 1 {
		g.retrier = retry.New[*reply](retry.Config{
			MaxAttempts:   opts.RetryAttempts,
			InitialDelay:  opts.RetryDelay,
			MaxDelay:      opts.RetryDelay * 8,
			Multiplier:    2.0,
			BackoffPolicy: retry.BackoffExponential,
			Jitter:        true,
			IsRetryable: func(err error) bool {
				var netErr *NetworkError
				return errors.As(err, &netErr) && !errors.Is(err, context.Canceled)
			},
		})
	}
	return g
}

// Session returns the store the gateway reads credentials from.
func (g *Gateway) Session() *session.Store {
	return g.session
}

// identity returns the current session or [shared.ErrInvalidSession] when it is not complete.
func (g *Gateway) identity(op string) (session.Session, error) {
	s, ok := g.session.Current()
	if !ok {
		g.logger.Warn("call without session", "op", op)
		return session.Session{}, fmt.Errorf("%w: %s requires a signed-in user", shared.ErrInvalidSession, op)
	}
	return s, nil
}

// do sends c and decodes a 2xx body into result. An empty body leaves result untouched.
func (g *Gateway) do(ctx context.Context, c call, result any) error {
	r, err := g.exchange(ctx, c)
	if err != nil {
		return err
	}

	if result == nil || len(bytes.TrimSpace(r.body)) == 0 {
		return nil
	}

	if err := json.Unmarshal(r.body, result); err != nil {
		g.logger.Error("failed to decode response",
			"op", c.op, "path", c.path, "request_id", r.requestID, "error", err, "body", string(r.body))
		return &APIError{Op: c.op, StatusCode: r.status, Message: c.fallback, Body: string(r.body), Err: err}
	}
	return nil
}

// exchange sends c and classifies any non-2xx reply.
func (g *Gateway) exchange(ctx context.Context, c call) (*reply, error) {
	r, err := g.send(ctx, c)
	if err != nil {
		return nil, err
	}

	if r.status < 200 || r.status >= 300 {
		g.logger.Error("request failed",
			"op", c.op, "method", c.method, "path", c.path,
			"status", r.status, "request_id", r.requestID, "body", string(r.body))
		return nil, classify(c.op, r.status, r.body, c.fallback)
	}
	return r, nil
}

// send performs c, retrying GETs on network failures.
func (g *Gateway) send(ctx context.Context, c call) (*reply, error) {
	var payload []byte
	if c.body != nil {
		data, err := json.Marshal(c.body)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to encode %s request: %v", shared.ErrInvalidInput, c.op, err)
		}
		payload = data
	}

	attempt := func(ctx context.Context) (*reply, error) {
		return g.roundTrip(ctx, c, payload)
	}

	if c.method != http.MethodGet || g.retrier == nil {
		return attempt(ctx)
	}

	// The last attempt's error is kept so callers see the typed error rather than the retrier's summary.
	var last error
	r, err := g.retrier.Do(ctx, func(ctx context.Context) (*reply, error) {
		r, err := attempt(ctx)
		last = err
		return r, err
	})
	if err != nil {
		if last != nil {
			return nil, last
		}
		return nil, &NetworkError{Op: c.op, Err: err}
	}
	return r, nil
}

func (g *Gateway) roundTrip(ctx context.Context, c call, payload []byte) (*reply, error) {
	requestID := shared.GenerateID()
	logger := g.logger.With("op", c.op, "method", c.method, "path", c.path, "request_id", requestID)

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			logger.Error("rate limiter aborted request", "error", err)
			return nil, &NetworkError{Op: c.op, Err: err}
		}
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, c.method, g.baseURL+c.path, body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", shared.ErrInvalidInput, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		(&oauth2.Token{AccessToken: c.token, TokenType: "Bearer"}).SetAuthHeader(req)
	}

	logger.Debug("sending request")
	resp, err := g.client.Do(req)
	if err != nil {
		logger.Error("request failed", "error", err)
		return nil, &NetworkError{Op: c.op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error("failed to read response", "status", resp.StatusCode, "error", err)
		return nil, &NetworkError{Op: c.op, Err: err}
	}

	logger.Debug("received response", "status", resp.StatusCode, "bytes", len(data))
	return &reply{status: resp.StatusCode, body: data, requestID: requestID}, nil
}

// userPath builds /users/{username} followed by the escaped extra segments.
func userPath(username string, segments ...string) string {
	var b strings.Builder
	b.WriteString("/users/")
	b.WriteString(url.PathEscape(username))
	for _, s := range segments {
		b.WriteString("/")
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}
