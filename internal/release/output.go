package release

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cxfksword/metashark-manifest/internal/config"
	"github.com/cxfksword/metashark-manifest/pkg/manifest"
)

const githubURL = "https://github.com"

// Mirror prefixes every literal https://github.com in data with the mirror domain.
// The replacement is textual, so it also applies inside changelogs.
func Mirror(data []byte, domain string) []byte {
	domain = strings.TrimRight(domain, "/")
	return bytes.ReplaceAll(data, []byte(githubURL), []byte(domain+"/"+githubURL))
}

type Outputs struct {
	ManifestPath string
	MirrorPath   string
}

// WriteManifests writes manifest.json and its mirror variant manifest_cn.json to dir.
// Files are truncated in place; a failure on the second file leaves the first one written.
func WriteManifests(dir string, m manifest.Manifest, mirrorDomain string) (*Outputs, error) {
	data, err := m.Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	out := &Outputs{
		ManifestPath: filepath.Join(dir, config.ManifestFileName),
		MirrorPath:   filepath.Join(dir, config.MirrorManifestFileName),
	}
	if err := os.WriteFile(out.ManifestPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", config.ManifestFileName, err)
	}
	if err := os.WriteFile(out.MirrorPath, Mirror(data, mirrorDomain), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", config.MirrorManifestFileName, err)
	}
	return out, nil
}
