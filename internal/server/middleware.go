package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// logMiddleware logs every request once it has been answered, including
// whether a catalogue was served from the cache.
func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		entry := s.requestLogger(r).WithFields(logrus.Fields{
			LogFieldStatus:   ww.Status(),
			LogFieldDuration: time.Since(start).String(),
		})
		if hit := ww.Header().Get(cacheHeader); hit != "" {
			entry = entry.WithField(LogFieldCache, hit)
		}
		entry.Infof("%s %s (%s) %d bytes", r.Method, r.URL.EscapedPath(), r.RemoteAddr, ww.BytesWritten())
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.writeError(w, r, http.StatusInternalServerError, fmt.Errorf("panic: %v", rec), "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
