// Package backend is the HTTP adapter for the EasyStay services: the
// user service (login/register/profile) and the booking service
// (hotels and orders). Responses are returned as decoded JSON; shape
// normalization belongs to the app layer.
package backend

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"easystay/internal/adapters/observability"
	"easystay/internal/domain"
)

// TokenSource supplies the current bearer token, empty when logged out.
type TokenSource func() string

var ErrForbidden = errors.New("backend: forbidden")

type Client struct {
	userBase    string
	bookingBase string
	hc          *http.Client
	tok         TokenSource
	rl          *rate.Limiter
}

func New(userBase, bookingBase string, tok TokenSource, timeout time.Duration, rps int) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		userBase:    strings.TrimRight(userBase, "/"),
		bookingBase: strings.TrimRight(bookingBase, "/"),
		hc:          &http.Client{Timeout: timeout},
		tok:         tok,
		rl:          rate.NewLimiter(rate.Limit(rps), rps),
	}
}

// ---- user service ----

func (c *Client) Login(ctx context.Context, email, password string) (map[string]any, error) {
	v, err := c.call(ctx, "user", http.MethodPost, c.userBase+"/api/user/login",
		map[string]any{"email": email, "password": password})
	if err != nil {
		return nil, err
	}
	return asObject(v), nil
}

func (c *Client) Register(ctx context.Context, reg domain.Registration) (map[string]any, error) {
	v, err := c.call(ctx, "user", http.MethodPost, c.userBase+"/api/user/register", map[string]any{
		"name":     reg.Name,
		"email":    reg.Email,
		"phone":    reg.Phone,
		"password": reg.Password,
	})
	if err != nil {
		return nil, err
	}
	return asObject(v), nil
}

func (c *Client) UserInfo(ctx context.Context) (map[string]any, error) {
	v, err := c.call(ctx, "user", http.MethodGet, c.userBase+"/api/user/info", nil)
	if err != nil {
		return nil, err
	}
	return asObject(v), nil
}

// ---- booking service ----

func (c *Client) SearchHotels(ctx context.Context, q domain.SearchQuery) (any, error) {
	vals := url.Values{}
	vals.Set("page", strconv.Itoa(q.Page))
	vals.Set("pageSize", strconv.Itoa(q.PageSize))
	if q.City != "" {
		vals.Set("city", q.City)
	}
	if q.Keyword != "" {
		vals.Set("keyword", q.Keyword)
	}
	if q.CheckIn != "" {
		vals.Set("checkIn", q.CheckIn)
	}
	if q.CheckOut != "" {
		vals.Set("checkOut", q.CheckOut)
	}
	if q.Sort != "" {
		vals.Set("sort", q.Sort)
	}
	if q.Stars != nil {
		vals.Set("star", strconv.Itoa(*q.Stars))
	}
	if q.MinPrice != nil {
		vals.Set("min_price", strconv.Itoa(*q.MinPrice))
	}
	if q.MaxPrice != nil {
		vals.Set("max_price", strconv.Itoa(*q.MaxPrice))
	}
	if q.UserLat != nil {
		vals.Set("user_lat", strconv.FormatFloat(*q.UserLat, 'f', -1, 64))
	}
	if q.UserLng != nil {
		vals.Set("user_lng", strconv.FormatFloat(*q.UserLng, 'f', -1, 64))
	}
	return c.call(ctx, "booking", http.MethodGet, c.bookingBase+"/api/hotels/search?"+vals.Encode(), nil)
}

func (c *Client) HotelDetail(ctx context.Context, id string) (any, error) {
	return c.call(ctx, "booking", http.MethodGet, c.bookingBase+"/api/hotels/"+url.PathEscape(id), nil)
}

func (c *Client) CreateOrder(ctx context.Context, payload map[string]any) (map[string]any, error) {
	v, err := c.call(ctx, "booking", http.MethodPost, c.bookingBase+"/api/orders", payload)
	if err != nil {
		return nil, err
	}
	return asObject(v), nil
}

func (c *Client) ListOrders(ctx context.Context, email string) (any, error) {
	return c.call(ctx, "booking", http.MethodGet,
		c.bookingBase+"/api/orders?email="+url.QueryEscape(email), nil)
}

func (c *Client) OrderDetail(ctx context.Context, orderNo string) (any, error) {
	return c.call(ctx, "booking", http.MethodGet,
		c.bookingBase+"/api/orders/"+url.PathEscape(orderNo), nil)
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderNo, status string) error {
	_, err := c.call(ctx, "booking", http.MethodPut,
		c.bookingBase+"/api/orders/"+url.PathEscape(orderNo)+"/status",
		map[string]any{"status": status})
	return err
}

// ---- internals ----

// call performs a request with client-side rate limiting, retries on
// 429 and transient 5xx (honoring Retry-After), and decodes the JSON
// body. A 2xx body carrying a business failure flag becomes a
// *domain.BusinessError.
func (c *Client) call(ctx context.Context, service, method, rawurl string, body any) (any, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}

	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		payload = b
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		// build a fresh request each attempt
		req, err := http.NewRequestWithContext(ctx, method, rawurl, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "easystay-client/1.0")
		req.Header.Set("X-Request-ID", uuid.NewString())
		if c.tok != nil {
			if t := c.tok(); t != "" {
				req.Header.Set("Authorization", "Bearer "+t)
			}
		}

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal(service, endpointLabel(rawurl), 0, time.Since(start))
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr
		}
		observability.ObserveExternal(service, endpointLabel(rawurl), resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated, http.StatusAccepted:
			var out any
			err := json.NewDecoder(resp.Body).Decode(&out)
			resp.Body.Close()
			if err != nil {
				return nil, err
			}
			if berr := businessErr(out); berr != nil {
				return nil, berr
			}
			return out, nil

		case http.StatusNoContent:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil, nil

		case http.StatusNotFound:
			resp.Body.Close()
			return nil, domain.ErrNotFound

		case http.StatusUnauthorized:
			resp.Body.Close()
			return nil, domain.ErrUnauthorized

		case http.StatusForbidden:
			resp.Body.Close()
			return nil, ErrForbidden

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			// Prefer server-provided Retry-After; otherwise exponential backoff.
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr

		default:
			// read a small error body for diagnostics
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return nil, lastErr
}

// businessErr inspects a decoded 2xx body for the envelope failure
// flags the backend uses: success=false, or a non-zero/non-200 code
// without success=true. Non-object bodies (bare arrays) are fine.
func businessErr(v any) error {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	if s, ok := m["success"].(bool); ok {
		if s {
			return nil
		}
		return &domain.BusinessError{Code: intField(m, "code"), Message: messageField(m)}
	}
	if code, ok := m["code"].(float64); ok {
		if int(code) != 0 && int(code) != 200 {
			return &domain.BusinessError{Code: int(code), Message: messageField(m)}
		}
	}
	return nil
}

func messageField(m map[string]any) string {
	for _, k := range []string{"msg", "message", "error"} {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func intField(m map[string]any, k string) int {
	if f, ok := m[k].(float64); ok {
		return int(f)
	}
	return 0
}

func asObject(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// endpointLabel strips the query string and base so metric labels stay
// low-cardinality-ish (ids remain; acceptable for a client process).
func endpointLabel(rawurl string) string {
	u, err := url.Parse(rawurl)
	if err != nil {
		return rawurl
	}
	return u.Path
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential delay (200ms, 400ms, 800ms...) with
// up to +50% jitter from crypto/rand.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
