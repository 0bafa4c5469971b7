package server

import (
	"encoding/json"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

const (
	LogFieldRequestID = "requestId"
	LogFieldMethod    = "method"
	LogFieldPath      = "path"
	LogFieldStatus    = "status"
	LogFieldDuration  = "duration"
	LogFieldFile      = "file"
	LogFieldModTime   = "modTime"
	LogFieldCache     = "cache"

	cacheHeader = "X-Go-Cache"
)

func (s *Server) requestLogger(r *http.Request) *logrus.Entry {
	return s.log.WithFields(logrus.Fields{
		LogFieldRequestID: middleware.GetReqID(r.Context()),
		LogFieldMethod:    r.Method,
		LogFieldPath:      r.URL.EscapedPath(),
	})
}

// manifestLogger describes the catalogue file a request is answered from.
func (s *Server) manifestLogger(r *http.Request, name string, info fs.FileInfo) *logrus.Entry {
	return s.requestLogger(r).WithFields(logrus.Fields{
		LogFieldFile:    name,
		LogFieldModTime: info.ModTime().Format(time.RFC3339),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, d any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(d); err != nil {
		s.log.Error(err)
	}
}

// writeError logs err and answers with msg, so file system paths stay out of responses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, statusCode int, err error, msg string) {
	s.requestLogger(r).WithField(LogFieldStatus, statusCode).Error(err)
	s.writeJSON(w, statusCode, map[string]string{"error": msg})
}
