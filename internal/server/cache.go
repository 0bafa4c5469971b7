package server

import (
	"fmt"
	"io/fs"

	"github.com/cxfksword/metashark-manifest/pkg/manifest"
	"github.com/patrickmn/go-cache"
)

type cacheKey string

// a rewritten file gets a new key, stale entries simply expire
func (s *Server) getCacheKey(name string, info fs.FileInfo) cacheKey {
	return cacheKey(fmt.Sprintf("manifest/%s:%d:%d", name, info.ModTime().UnixNano(), info.Size()))
}

func (s *Server) getFromCache(k cacheKey) (manifest.Manifest, bool) {
	val, ok := s.cache.Get(string(k))
	if !ok {
		return nil, false
	}
	m, ok := val.(manifest.Manifest)
	return m, ok
}

func (s *Server) setInCache(k cacheKey, m manifest.Manifest) {
	s.cache.Set(string(k), m, cache.DefaultExpiration)
}
