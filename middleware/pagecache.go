package middleware

import (
	"bytes"
	"net/http"
	"time"

	"yatube/cache"
)

// cacheWriter buffers a response so a successful render can be stored
// before it is sent to the client.
type cacheWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (w *cacheWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *cacheWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	return w.ResponseWriter.Write(p)
}

// CachePage serves GET responses from the page cache for ttl. Each
// query-string variant is stored under its own key, so paginated views
// cache per page. Within the window the stored body is returned as-is
// even when the underlying rows changed; only expiry or an explicit
// Clear refreshes it. Only successful renders are stored.
func CachePage(c cache.PageCache, keyPrefix string, ttl time.Duration, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		key := keyPrefix
		if r.URL.RawQuery != "" {
			key += "?" + r.URL.RawQuery
		}

		if body, ok := c.Get(key); ok {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write(body)
			return
		}

		cw := &cacheWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(cw, r)

		if cw.status == http.StatusOK {
			c.Set(key, cw.buf.Bytes(), ttl)
		}
	})
}
