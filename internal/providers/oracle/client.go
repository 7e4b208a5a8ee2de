package oracle

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/ZeroHub/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/infrastructure/tracing"
)

// QuickCacheTTL is how long palette answers are reused
const QuickCacheTTL = 10 * time.Minute

// Options configures the oracle client
type Options struct {
	BaseURL           string
	APIKey            string
	Model             string
	Timeout           time.Duration
	RequestsPerSecond float64
	Enabled           bool

	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	Logger  *zap.Logger
	Metrics *monitoring.Metrics
}

// Client talks to a Gemini-compatible generateContent endpoint
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	breaker *resilience.Breaker
	answers *gocache.Cache
	model   string
	enabled bool
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// New creates an oracle client
func New(opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 5
	}
	if opts.RetryWaitMin <= 0 {
		opts.RetryWaitMin = 500 * time.Millisecond
	}
	if opts.RetryWaitMax <= 0 {
		opts.RetryWaitMax = 10 * time.Second
	}
	logger := opts.Logger.Named("oracle")

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = opts.RetryMax
	retryClient.RetryWaitMin = opts.RetryWaitMin
	retryClient.RetryWaitMax = opts.RetryWaitMax
	retryClient.Logger = retryLogger{logger.Sugar()}

	httpClient := resty.NewWithClient(retryClient.StandardClient()).
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "ZeroHub-Oracle/1.0").
		SetHeader("x-goog-api-key", opts.APIKey).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal).
		SetLogger(logger.Sugar())

	breaker := resilience.New("oracle", resilience.Settings{
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsFailure: isBackendFailure,
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Client{
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), int(opts.RequestsPerSecond)+1),
		breaker: breaker,
		answers: gocache.New(QuickCacheTTL, 2*QuickCacheTTL),
		model:   opts.Model,
		enabled: opts.Enabled && opts.APIKey != "" && opts.BaseURL != "",
		logger:  logger,
		metrics: opts.Metrics,
	}
}

// Enabled reports whether requests will be attempted
func (c *Client) Enabled() bool {
	return c.enabled
}

// BreakerState returns the circuit breaker state
func (c *Client) BreakerState() resilience.State {
	return c.breaker.State()
}

// Ask sends a single prompt in the given mode and returns the model text.
// Site answers are sanitized; quick answers are cached by prompt.
func (c *Client) Ask(ctx context.Context, mode Mode, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	if mode == ModeQuick {
		if cached, ok := c.answers.Get(prompt); ok {
			return cached.(string), nil
		}
	}

	text, err := c.generate(ctx, mode, nil, prompt)
	if err != nil {
		return "", err
	}

	switch mode {
	case ModeQuick:
		c.answers.SetDefault(prompt, text)
	case ModeSite:
		text = sanitizeSite(text)
	}
	return text, nil
}

// Chat continues a conversation and returns the whole reply
func (c *Client) Chat(ctx context.Context, history []Message, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", ErrEmptyPrompt
	}
	return c.generate(ctx, ModeChat, history, prompt)
}

// Quick answers a palette question. Failures yield the fallback text.
func (c *Client) Quick(ctx context.Context, prompt string) (string, error) {
	text, err := c.Ask(ctx, ModeQuick, prompt)
	if err != nil {
		if errors.Is(err, ErrEmptyPrompt) {
			return "", err
		}
		c.logger.Warn("Quick answer failed", zap.Error(err))
		return Fallback(ModeQuick), nil
	}
	return text, nil
}

// Site generates a website and extracts its title
func (c *Client) Site(ctx context.Context, prompt string) (Site, error) {
	html, err := c.Ask(ctx, ModeSite, prompt)
	if err != nil {
		return Site{HTML: Fallback(ModeSite), Title: "Generation Error"}, err
	}
	return Site{HTML: html, Title: siteTitle(html)}, nil
}

// Stream continues a conversation and hands each text chunk to fn as it
// arrives. An error from fn aborts the stream and is returned.
func (c *Client) Stream(ctx context.Context, history []Message, prompt string, fn func(chunk string) error) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return ErrEmptyPrompt
	}

	err := c.call(ctx, ModeChat, func(ctx context.Context) error {
		resp, err := c.http.R().
			SetContext(ctx).
			SetHeaders(tracing.Headers(ctx)).
			SetPathParam("model", c.model).
			SetQueryParam("alt", "sse").
			SetBody(buildRequest(ModeChat, history, prompt)).
			SetDoNotParseResponse(true).
			Post("/models/{model}:streamGenerateContent")
		if err != nil {
			return fmt.Errorf("stream request: %w", err)
		}
		body := resp.RawBody()
		defer body.Close()

		if resp.StatusCode() != http.StatusOK {
			return &StatusError{Code: resp.StatusCode()}
		}

		var received bool
		scanner := bufio.NewScanner(body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			data, ok := strings.CutPrefix(scanner.Text(), "data:")
			if !ok {
				continue
			}
			var chunk generateResponse
			if err := sonic.UnmarshalString(strings.TrimSpace(data), &chunk); err != nil {
				return fmt.Errorf("decode stream chunk: %w", err)
			}
			if chunk.Error != nil {
				return &StatusError{Code: chunk.Error.Code, Message: chunk.Error.Message}
			}
			if text := chunk.text(); text != "" {
				received = true
				if err := fn(text); err != nil {
					return &abortError{err: err}
				}
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("read stream: %w", err)
		}
		if !received {
			return ErrEmptyResponse
		}
		return nil
	})
	var aborted *abortError
	if errors.As(err, &aborted) {
		return aborted.err
	}
	return err
}

func (c *Client) generate(ctx context.Context, mode Mode, history []Message, prompt string) (string, error) {
	var text string
	err := c.call(ctx, mode, func(ctx context.Context) error {
		var result generateResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetHeaders(tracing.Headers(ctx)).
			SetPathParam("model", c.model).
			SetBody(buildRequest(mode, history, prompt)).
			SetResult(&result).
			SetError(&result).
			Post("/models/{model}:generateContent")
		if err != nil {
			return fmt.Errorf("generate request: %w", err)
		}
		if resp.IsError() {
			se := &StatusError{Code: resp.StatusCode()}
			if result.Error != nil {
				se.Message = result.Error.Message
			}
			return se
		}

		text = result.text()
		if text == "" {
			return ErrEmptyResponse
		}
		return nil
	})
	return text, err
}

// call applies the enable check, rate limit and breaker around one request
func (c *Client) call(ctx context.Context, mode Mode, fn func(ctx context.Context) error) error {
	if !c.enabled {
		c.recordError(mode, "disabled")
		return ErrDisabled
	}

	timer := monitoring.NewTimer(c.metrics, string(mode))
	if err := c.limiter.Wait(ctx); err != nil {
		timer.Stop("rate_limited")
		c.recordError(mode, "rate_limit")
		return fmt.Errorf("rate limit: %w", err)
	}

	err := c.breaker.Do(ctx, fn)
	var aborted *abortError
	if errors.As(err, &aborted) {
		timer.Stop("aborted")
		return err
	}
	if err != nil {
		timer.Stop("error")
		c.recordError(mode, errorType(err))
		c.logger.Warn("Oracle call failed",
			zap.String("mode", string(mode)),
			zap.Error(err),
		)
		return err
	}

	timer.Stop("success")
	return nil
}

func (c *Client) recordError(mode Mode, kind string) {
	if c.metrics != nil {
		c.metrics.RecordOracleError(string(mode), kind)
	}
}

// abortError carries an error returned by a Stream callback. The backend
// was healthy, so it never counts against the breaker.
type abortError struct {
	err error
}

func (e *abortError) Error() string { return e.err.Error() }
func (e *abortError) Unwrap() error { return e.err }

// isBackendFailure classifies breaker errors. Callback aborts and caller
// cancellation are not backend failures.
func isBackendFailure(err error) bool {
	var aborted *abortError
	return !errors.As(err, &aborted) && !errors.Is(err, context.Canceled)
}

// StatusError is a non-success answer from the model endpoint
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("oracle returned status %d", e.Code)
	}
	return fmt.Sprintf("oracle returned status %d: %s", e.Code, e.Message)
}

func errorType(err error) string {
	var se *StatusError
	switch {
	case errors.Is(err, resilience.ErrCircuitOpen), errors.Is(err, resilience.ErrTooManyRequests):
		return "circuit_open"
	case errors.Is(err, ErrEmptyResponse):
		return "empty"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.As(err, &se):
		return "status"
	default:
		return "transport"
	}
}

// retryLogger adapts zap to the retryablehttp leveled logger
type retryLogger struct {
	s *zap.SugaredLogger
}

func (l retryLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l retryLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
func (l retryLogger) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l retryLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
