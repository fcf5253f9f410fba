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

	"github.com/iliyamo/community-amenities/internal/config"
	"github.com/iliyamo/community-amenities/internal/logger"
)

// captureWriter captures response body/status while forwarding to the client.
// Once more than limit bytes were written the capture is marked overflowed
// and the response is not cached.
type captureWriter struct {
	http.ResponseWriter
	status     int
	buf        bytes.Buffer
	limit      int64
	overflowed bool
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if !cw.overflowed {
		if cw.limit > 0 && int64(cw.buf.Len()+len(b)) > cw.limit {
			cw.overflowed = true
			cw.buf.Reset()
		} else {
			cw.buf.Write(b)
		}
	}
	return cw.ResponseWriter.Write(b)
}

// cacheKeyFrom builds a stable cache key honoring prefix/strategy.
func cacheKeyFrom(cfg config.CacheConfig, c echo.Context) string {
	r := c.Request()
	method := r.Method
	route := c.Path()
	query := r.URL.RawQuery
	if route == "" {
		route = r.URL.Path
	}

	parts := []string{cfg.Prefix}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "route":
		parts = append(parts, "route", route)
	case "method_route":
		parts = append(parts, "method", method, "route", route)
	case "method_route_query":
		parts = append(parts, "method", method, "route", route, "q", query)
	default: // "route_query"
		parts = append(parts, "route", route, "q", query)
	}

	tail := strings.Join(parts[1:], ":")
	sum := sha1.Sum([]byte(tail))
	return fmt.Sprintf("%s:%x", parts[0], sum[:])
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
	hdrJSON, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8+len(hdrJSON)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
	copy(out[8:8+len(hdrJSON)], hdrJSON)
	copy(out[8+len(hdrJSON):], body)
	return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
	if len(bs) < 8 {
		return 0, nil, nil, false
	}
	status = int(binary.BigEndian.Uint32(bs[0:4]))
	hlen := int(binary.BigEndian.Uint32(bs[4:8]))
	if hlen < 0 || 8+hlen > len(bs) {
		return 0, nil, nil, false
	}
	hdr := make(http.Header)
	if hlen > 0 {
		if err := json.Unmarshal(bs[8:8+hlen], &hdr); err != nil {
			return 0, nil, nil, false
		}
	}
	return status, hdr, bs[8+hlen:], true
}

// storableHeader copies the response headers that belong in a cache entry.
// Per-request headers are left out; the request ID middleware has already
// set a fresh one on every later response.
func storableHeader(h http.Header) http.Header {
	out := h.Clone()
	out.Del("X-Cache")
	out.Del(echo.HeaderXRequestID)
	return out
}

// replayHeader adds cached headers to dst.  Entries written before request
// IDs were stripped still carry one, so it is skipped here too.
func replayHeader(dst, cached http.Header) {
	for k, vals := range cached {
		switch http.CanonicalHeaderKey(k) {
		case "Content-Length", echo.HeaderXRequestID:
			continue
		}
		for _, v := range vals {
			dst.Add(k, v)
		}
	}
}

// NewRedisCache serves repeated reads of the amenity directory from Redis.
// Headers and body are stored so clients see identical responses.  Only
// 200 responses to cfg.Methods are cached, for cfg.TTL.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	maxBody := int64(cfg.MaxBodyBytes)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}

			ctx := c.Request().Context()
			key := cacheKeyFrom(cfg, c)

			if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
				if status, hdr, body, ok := decodePayload(bs); ok {
					replayHeader(c.Response().Header(), hdr)
					c.Response().Header().Set("X-Cache", "HIT")
					c.Response().WriteHeader(status)
					if len(body) > 0 {
						_, _ = c.Response().Write(body)
					}
					return nil
				}
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}

			if cw.status == http.StatusOK && !cw.overflowed {
				hdr := storableHeader(c.Response().Header())
				if payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes()); err == nil {
					_ = rdb.SetEx(context.WithoutCancel(ctx), key, payload, ttl).Err()
				}
			}
			return nil
		}
	}
}

// CacheInvalidator drops every cached response under a prefix.  Writes to
// the amenity directory call it.
type CacheInvalidator struct {
	rdb    *redis.Client
	prefix string
	log    *logger.Logger
}

// NewCacheInvalidator returns an invalidator for cfg.Prefix.  A nil client
// yields an invalidator that does nothing.
func NewCacheInvalidator(cfg config.CacheConfig, rdb *redis.Client, log *logger.Logger) *CacheInvalidator {
	return &CacheInvalidator{rdb: rdb, prefix: cfg.Prefix, log: log}
}

// Invalidate deletes all keys under the prefix using SCAN.  Failures are
// logged; cached entries then expire on their TTL.
func (ci *CacheInvalidator) Invalidate(ctx context.Context) {
	if ci == nil || ci.rdb == nil {
		return
	}
	var cursor uint64
	for {
		keys, next, err := ci.rdb.Scan(ctx, cursor, ci.prefix+":*", 200).Result()
		if err != nil {
			ci.log.Warn("cache: invalidate scan failed", "prefix", ci.prefix, "error", err)
			return
		}
		if len(keys) > 0 {
			if err := ci.rdb.Del(ctx, keys...).Err(); err != nil {
				ci.log.Warn("cache: invalidate delete failed", "prefix", ci.prefix, "error", err)
				return
			}
		}
		if next == 0 {
			return
		}
		cursor = next
	}
}
