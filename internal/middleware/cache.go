package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/movie-ticket-booking/internal/config"
)

// VersionFunc returns a value that changes whenever the data behind the
// cached responses changes.  repository.Store.Version fits.
type VersionFunc func() uint64

// captureWriter copies the response body (up to limit bytes) while
// forwarding it to the client.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	limit  int
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if room := cw.limit - cw.buf.Len(); cw.limit <= 0 || room >= len(b) {
		cw.buf.Write(b)
	} else if room > 0 {
		cw.buf.Write(b[:room])
	}
	return cw.ResponseWriter.Write(b)
}

// truncated reports whether the body did not fit in the buffer.
func (cw *captureWriter) truncated(written int64) bool {
	return cw.limit > 0 && written > int64(cw.buf.Len())
}

// cacheKey hashes the request parts chosen by the key strategy together
// with the data version, so a change to theaters, movies or seating
// makes every older entry unreachable.
func cacheKey(cfg config.CacheConfig, c echo.Context, version uint64) string {
	r := c.Request()
	parts := []string{fmt.Sprintf("v%d", version)}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "route":
		parts = append(parts, "route", c.Path())
	case "method_route":
		parts = append(parts, "method", r.Method, "route", c.Path())
	case "method_route_query":
		parts = append(parts, "method", r.Method, "route", c.Path(), "q", r.URL.RawQuery)
	default: // "route_query"
		parts = append(parts, "route", c.Path(), "q", r.URL.RawQuery)
	}
	// c.Path() is the route pattern; the raw path tells /theaters/1 from /theaters/2.
	parts = append(parts, "path", r.URL.Path)
	sum := sha1.Sum([]byte(strings.Join(parts, ":")))
	return fmt.Sprintf("%s:%x", cfg.Prefix, sum[:])
}

// cachedResponse is stored as [4 bytes status][4 bytes header length][header JSON][body].
type cachedResponse struct {
	status int
	header http.Header
	body   []byte
}

func (cr cachedResponse) encode() ([]byte, error) {
	hdr, err := json.Marshal(cr.header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8, 8+len(hdr)+len(cr.body))
	binary.BigEndian.PutUint32(out[0:4], uint32(cr.status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdr)))
	out = append(out, hdr...)
	return append(out, cr.body...), nil
}

func decodeCachedResponse(bs []byte) (cachedResponse, bool) {
	if len(bs) < 8 {
		return cachedResponse{}, false
	}
	hlen := int(binary.BigEndian.Uint32(bs[4:8]))
	if hlen < 0 || 8+hlen > len(bs) {
		return cachedResponse{}, false
	}
	cr := cachedResponse{status: int(binary.BigEndian.Uint32(bs[0:4])), header: make(http.Header)}
	if hlen > 0 {
		if err := json.Unmarshal(bs[8:8+hlen], &cr.header); err != nil {
			return cachedResponse{}, false
		}
	}
	cr.body = bs[8+hlen:]
	return cr, true
}

// NewRedisCache serves repeated reads from Redis.  Headers and body are
// stored so a hit looks exactly like the original response.  Only 200
// responses that fit in MaxBodyBytes are stored.  When caching is
// disabled or rdb is nil it does nothing.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client, version VersionFunc) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}
			key := cacheKey(cfg, c, version())

			if bs, err := rdb.Get(c.Request().Context(), key).Bytes(); err == nil {
				if cr, ok := decodeCachedResponse(bs); ok {
					h := c.Response().Header()
					for k, vals := range cr.header {
						if strings.EqualFold(k, "Content-Length") {
							continue
						}
						for _, v := range vals {
							h.Add(k, v)
						}
					}
					h.Set("X-Cache", "HIT")
					c.Response().WriteHeader(cr.status)
					_, _ = c.Response().Write(cr.body)
					return nil
				}
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			if cw.status != http.StatusOK || cw.truncated(c.Response().Size) {
				return nil
			}
			cr := cachedResponse{status: cw.status, header: c.Response().Header().Clone(), body: cw.buf.Bytes()}
			if payload, err := cr.encode(); err == nil {
				_ = rdb.SetEx(context.Background(), key, payload, ttl).Err()
			}
			return nil
		}
	}
}
