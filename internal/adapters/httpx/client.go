package httpx

// client.go — HTTP JSON client compartido por los adapters de Polymarket y
// Limitless. Cada llamada pasa por el limiter del endpoint y se reintenta con
// backoff exponencial ante errores de red, 429 y 5xx. Los 4xx fallan al momento.
// Un 429 con Retry-After alarga la espera hasta lo que pide el servidor.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultTimeout = 30 * time.Second

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
	maxRetryWait  = 30 * time.Second
)

// StatusError es un error HTTP no reintentable (4xx).
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("client error %d: %s", e.Code, e.Body)
}

// Client es un HTTP client JSON con rate limiting y retries.
type Client struct {
	http      *http.Client
	retryWait time.Duration
}

// NewClient crea un Client con el timeout dado (DefaultTimeout si es 0).
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		retryWait: baseRetryWait,
	}
}

// WithRetryWait ajusta la espera base entre reintentos. Útil en tests.
func (c *Client) WithRetryWait(d time.Duration) *Client {
	c.retryWait = d
	return c
}

// NewLimiter crea un token bucket de perSec requests por segundo.
func NewLimiter(perSec float64, burst int) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(perSec), burst)
}

// Get hace un GET con rate limiting y retries y decodifica la respuesta en out.
func (c *Client) Get(ctx context.Context, limiter *rate.Limiter, url string, out any) error {
	return c.doWithRetry(ctx, limiter, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return c.http.Do(req)
	}, out)
}

// Post hace un POST JSON con rate limiting y retries.
func (c *Client) Post(ctx context.Context, limiter *rate.Limiter, url string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}
	return c.doWithRetry(ctx, limiter, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		return c.http.Do(req)
	}, out)
}

// retryError marca un fallo transitorio (red, 429 o 5xx) que merece otro intento.
type retryError struct {
	err   error
	after time.Duration // Retry-After del servidor; 0 si no vino
}

func (e *retryError) Error() string { return e.err.Error() }
func (e *retryError) Unwrap() error { return e.err }

// doWithRetry repite fn mientras el fallo sea transitorio, hasta maxRetries
// reintentos. La espera entre intentos es la mayor entre el backoff
// exponencial y el Retry-After del servidor, con tope maxRetryWait.
func (c *Client) doWithRetry(ctx context.Context, limiter *rate.Limiter, fn func() (*http.Response, error), out any) error {
	var last *retryError
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if last != nil {
			if err := c.wait(ctx, c.backoff(attempt-1, last.after)); err != nil {
				return err
			}
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return fmt.Errorf("rate limiter: %w", err)
			}
		}

		err := c.attempt(ctx, fn, out)
		if !errors.As(err, &last) {
			return err
		}
		slog.Debug("transient http failure", "attempt", attempt+1, "err", last.err)
	}
	return fmt.Errorf("giving up after %d retries: %w", maxRetries, last.err)
}

// attempt hace una sola petición y clasifica el resultado.
func (c *Client) attempt(ctx context.Context, fn func() (*http.Response, error), out any) error {
	resp, err := fn()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &retryError{err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		slog.Warn("rate limited by API", "url", resp.Request.URL.Path)
		return &retryError{
			err:   errors.New("rate limited (429)"),
			after: parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
		}
	case resp.StatusCode >= 500:
		return &retryError{err: fmt.Errorf("server error %d", resp.StatusCode)}
	case resp.StatusCode >= 400:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// backoff devuelve 2^attempt × retryWait, o retryAfter si es mayor, con tope.
func (c *Client) backoff(attempt int, retryAfter time.Duration) time.Duration {
	wait := time.Duration(math.Pow(2, float64(attempt))) * c.retryWait
	if retryAfter > wait {
		wait = retryAfter
	}
	return min(wait, maxRetryWait)
}

// wait duerme d o hasta que se cancele el contexto.
func (c *Client) wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// parseRetryAfter acepta segundos o fecha HTTP. 0 si falta o ya pasó.
func parseRetryAfter(h string, now time.Time) time.Duration {
	h = strings.TrimSpace(h)
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(h); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(h); err == nil && at.After(now) {
		return at.Sub(now)
	}
	return 0
}
