package resource

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

// Handler serves registry content at "/res/<id>/<name>".
func Handler(reg *Registry, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		ref := strings.TrimPrefix(r.URL.Path, "/")
		body, meta, err := reg.Open(r.Context(), ref)
		switch {
		case errors.Is(err, ErrNotFound), errors.Is(err, ErrBadRef):
			http.NotFound(w, r)
			return
		case err != nil:
			logger.Error("resource open failed", "ref", ref, "error", err)
			http.Error(w, "Resource unavailable", http.StatusBadGateway)
			return
		}
		defer body.Close()

		h := w.Header()
		h.Set("Content-Type", meta.ContentType)
		h.Set("X-Content-Type-Options", "nosniff")
		if meta.Size >= 0 {
			h.Set("Content-Length", strconv.FormatInt(meta.Size, 10))
		}
		if !meta.ModTime.IsZero() {
			h.Set("Last-Modified", meta.ModTime.UTC().Format(http.TimeFormat))
		}
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		if _, err := io.Copy(w, body); err != nil {
			logger.Debug("resource write interrupted", "ref", ref, "error", err)
		}
	})
}
