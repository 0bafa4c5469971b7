package server

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/cxfksword/metashark-manifest/pkg/manifest"
)

func (s *Server) loadManifest(p string) (manifest.Manifest, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return manifest.Decode(f)
}

func (s *Server) manifestHandler(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := filepath.Join(s.dir, name)
		info, err := os.Stat(p)
		if errors.Is(err, fs.ErrNotExist) {
			s.writeError(w, r, http.StatusNotFound, err, fmt.Sprintf("%s has not been generated", name))
			return
		}
		if err != nil {
			s.writeError(w, r, http.StatusInternalServerError, err, "could not read manifest")
			return
		}

		log := s.manifestLogger(r, name, info)
		k := s.getCacheKey(name, info)
		m, ok := s.getFromCache(k)
		if ok {
			w.Header().Set(cacheHeader, "HIT")
		} else {
			m, err = s.loadManifest(p)
			if err != nil {
				log.Error(err)
				s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "invalid manifest"})
				return
			}
			s.setInCache(k, m)
			w.Header().Set(cacheHeader, "MISS")
		}
		log.WithField(LogFieldCache, w.Header().Get(cacheHeader)).Infof("serving %d plugin(s)", len(m))

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Last-Modified", info.ModTime().UTC().Format(http.TimeFormat))
		if err := m.Encode(w); err != nil {
			log.Error(err)
		}
	}
}
