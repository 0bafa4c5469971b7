package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/cxfksword/metashark-manifest/internal/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// Server serves the generated catalogue files of a directory so a Jellyfin
// instance can be pointed at them before they are published.
type Server struct {
	router  chi.Router
	log     *logrus.Logger
	dir     string
	version string
	cache   *cache.Cache
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) notFoundHandler(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, http.StatusNotFound, fmt.Errorf("no route for %s", r.URL.EscapedPath()), "not found")
}

func (s *Server) methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, http.StatusMethodNotAllowed, fmt.Errorf("%s is not allowed", r.Method), "method not allowed")
}

func (s *Server) indexHandler(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"service":   "metashark manifest preview",
		"version":   s.version,
		"manifests": []string{"/" + config.ManifestFileName, "/" + config.MirrorManifestFileName},
	})
}

func New(log *logrus.Logger, dir, version string) *Server {
	router := chi.NewRouter()
	server := &Server{
		router:  router,
		log:     log,
		dir:     dir,
		version: version,
		cache:   cache.New(5*time.Minute, 10*time.Minute),
	}
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(server.logMiddleware)
	router.Use(server.recoverMiddleware)

	router.Use(middleware.Timeout(time.Minute))

	router.NotFound(server.notFoundHandler)
	router.MethodNotAllowed(server.methodNotAllowedHandler)

	router.Get("/", server.indexHandler)
	router.Get("/"+config.ManifestFileName, server.manifestHandler(config.ManifestFileName))
	router.Get("/"+config.MirrorManifestFileName, server.manifestHandler(config.MirrorManifestFileName))

	return server
}
