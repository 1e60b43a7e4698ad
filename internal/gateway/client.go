// Package gateway talks to the remote booking backend and turns its responses
// into the canonical model.
package gateway

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

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"lanebook/internal/metrics"
	"lanebook/internal/model"
	"lanebook/internal/requestid"
)

const (
	cachePrefix  = "lanebook:"
	maxBodyBytes = 8 << 20
)

// Client is an HTTP client for the bookings, business-hours and packages APIs.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	loc        *time.Location
	limiter    *rate.Limiter
	logger     zerolog.Logger

	redis    *redis.Client
	cacheTTL time.Duration
}

// NewClient constructs a client. Booking dates are interpreted in loc.
func NewClient(baseURL, apiKey string, timeout time.Duration, loc *time.Location) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if loc == nil {
		loc = time.Local
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		loc:        loc,
		limiter:    rate.NewLimiter(rate.Inf, 0),
		logger:     zerolog.Nop(),
	}
}

// UseRedisCache configures optional Redis caching for GET endpoints.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// UseRateLimit caps outgoing requests to perSecond with the given burst.
func (c *Client) UseRateLimit(perSecond float64, burst int) {
	c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
}

// UseLogger sets the logger used for malformed-record warnings.
func (c *Client) UseLogger(logger zerolog.Logger) {
	c.logger = logger.With().Str("component", "gateway").Logger()
}

// ListBookings fetches bookings dated within [from, to].
func (c *Client) ListBookings(ctx context.Context, from, to time.Time) ([]model.Booking, error) {
	q := url.Values{}
	q.Set("from", from.Format("2006-01-02"))
	q.Set("to", to.Format("2006-01-02"))
	path := "/api/bookings?" + q.Encode()

	body, err := c.getCached(ctx, "bookings", path)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	recs, err := decodeList(body)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	bookings := make([]model.Booking, 0, len(recs))
	for i, r := range recs {
		b, issues := normalizeBooking(r, c.loc)
		if len(issues) > 0 {
			metrics.IncMalformed("booking")
			c.logger.Warn().
				Int("index", i).
				Str("booking_id", b.ID).
				Strs("fields", issues).
				Msg("booking normalized with unreadable fields")
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}

// ListBusinessHours fetches the weekly opening windows.
func (c *Client) ListBusinessHours(ctx context.Context) (model.WeekHours, error) {
	body, err := c.getCached(ctx, "business_hours", "/api/business-hours")
	if err != nil {
		return nil, fmt.Errorf("list business hours: %w", err)
	}

	recs, err := decodeList(body)
	if err != nil {
		return nil, fmt.Errorf("list business hours: %w", err)
	}

	windows := make([]model.BusinessHourWindow, 0, len(recs))
	for i, r := range recs {
		w, ok := normalizeWindow(r)
		if !ok {
			metrics.IncMalformed("business_hours")
			c.logger.Warn().Int("index", i).Msg("business hours row without a readable weekday skipped")
			continue
		}
		windows = append(windows, w)
	}
	return model.NewWeekHours(windows), nil
}

// ListPackages fetches the package catalog.
func (c *Client) ListPackages(ctx context.Context) ([]model.Package, error) {
	body, err := c.getCached(ctx, "packages", "/api/packages")
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}

	recs, err := decodeList(body)
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}

	pkgs := make([]model.Package, 0, len(recs))
	for i, r := range recs {
		p, issues := normalizePackage(r)
		if len(issues) > 0 {
			metrics.IncMalformed("package")
			c.logger.Warn().Int("index", i).Strs("fields", issues).Msg("package normalized with unreadable fields")
		}
		pkgs = append(pkgs, p)
	}
	return pkgs, nil
}

type businessHoursBody struct {
	DayOfWeek int    `json:"dayOfWeek"`
	OpenTime  string `json:"openTime"`
	CloseTime string `json:"closeTime"`
	OffDay    bool   `json:"offDay"`
}

// UpdateBusinessHours writes one weekday window back to the backend.
func (c *Client) UpdateBusinessHours(ctx context.Context, w model.BusinessHourWindow) error {
	path := fmt.Sprintf("/api/business-hours/%d", int(w.DayOfWeek))
	body := businessHoursBody{
		DayOfWeek: int(w.DayOfWeek),
		OpenTime:  w.Opens,
		CloseTime: w.Closes,
		OffDay:    w.IsClosed,
	}
	if err := c.send(ctx, "update_business_hours", http.MethodPut, path, body, nil); err != nil {
		return fmt.Errorf("update business hours: %w", err)
	}
	c.invalidate(ctx, "business_hours")
	return nil
}

// UpdateBookingStatus changes the status of one booking.
func (c *Client) UpdateBookingStatus(ctx context.Context, id string, status model.BookingStatus) error {
	path := fmt.Sprintf("/api/bookings/%s/status", url.PathEscape(id))
	body := map[string]string{"status": string(status)}
	if err := c.send(ctx, "update_booking_status", http.MethodPatch, path, body, nil); err != nil {
		return fmt.Errorf("update booking %s: %w", id, err)
	}
	c.invalidate(ctx, "bookings")
	return nil
}

// HealthCheck checks if the backend is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", http.NoBody)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: %w", &HTTPError{StatusCode: resp.StatusCode})
	}
	return nil
}

func (c *Client) getCached(ctx context.Context, endpoint, path string) ([]byte, error) {
	key := cachePrefix + endpoint + ":" + path
	if body, ok := c.readCache(ctx, key); ok {
		metrics.IncCacheHit(endpoint)
		return body, nil
	}

	body, err := c.fetch(ctx, endpoint, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	c.writeCache(ctx, key, body)
	return body, nil
}

func (c *Client) send(ctx context.Context, endpoint, method, path string, in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	body, err := c.fetch(ctx, endpoint, method, path, data)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func (c *Client) fetch(ctx context.Context, endpoint, method, path string, payload []byte) (body []byte, err error) {
	started := time.Now()
	defer func() { metrics.ObserveGateway(endpoint, started, err) }()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var reader io.Reader = http.NoBody
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
	if id := requestid.From(ctx); id != "" {
		req.Header.Set(requestid.Header, id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	if resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: errorMessage(body)}
	}
	return body, nil
}

func (c *Client) readCache(ctx context.Context, key string) ([]byte, bool) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return nil, false
	}
	val, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

func (c *Client) writeCache(ctx context.Context, key string, val []byte) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	_ = c.redis.Set(ctx, key, val, c.cacheTTL).Err()
}

// invalidate drops every cached response of an endpoint after a write.
func (c *Client) invalidate(ctx context.Context, endpoint string) {
	if c.redis == nil {
		return
	}
	iter := c.redis.Scan(ctx, 0, cachePrefix+endpoint+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("cache scan failed")
		return
	}
	if len(keys) > 0 {
		_ = c.redis.Del(ctx, keys...).Err()
	}
}

// errorMessage extracts {"error": "..."} or {"message": "..."} from a failed
// response, falling back to a short prefix of the raw body.
func errorMessage(body []byte) string {
	var wrap struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &wrap); err == nil {
		if wrap.Error != "" {
			return wrap.Error
		}
		if wrap.Message != "" {
			return wrap.Message
		}
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..." + strconv.Itoa(len(s)-200) + " more bytes"
	}
	return s
}
