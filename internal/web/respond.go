// internal/web/respond.go
//
// JSON response helpers.
//
/*
Context
--------
Public catalog reads are cheap to recompute but hot, so every read
response goes out with a weak validator: an md5-derived ETag plus a
short public cache-control.  Browsers and the CDN revalidate with
If-None-Match and mostly get 304s.
*/
package web

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// readCacheControl matches what the CDN in front expects.
const readCacheControl = "public, max-age=30, stale-while-revalidate=60"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Errorw("response encode failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// respondETag serializes v once, derives a 16-hex-char ETag from the
// body, and answers 304 when the client already holds it.
func respondETag(w http.ResponseWriter, r *http.Request, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		zap.S().Errorw("response marshal failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	sum := md5.Sum(body)
	etag := `"` + hex.EncodeToString(sum[:])[:16] + `"`

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", readCacheControl)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write(body)
}
