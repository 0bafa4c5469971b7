package release

import (
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/cxfksword/metashark-manifest/internal/config"
	"github.com/cxfksword/metashark-manifest/pkg/manifest"
)

const timestampLayout = "2006-01-02T15:04:05"

var now = time.Now

// VersionFromTag strips the leading v of a release tag: v1.2 becomes 1.2.
func VersionFromTag(tag string) string {
	return strings.TrimLeft(tag, "v")
}

// CheckTag reports versions the plugin installer cannot order, such as
// pre-releases or more than three numeric components.
func CheckTag(version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("%q is not a numeric version: %w", version, err)
	}
	if v.Prerelease() != "" || v.Metadata() != "" {
		return fmt.Errorf("%q has pre-release or build metadata", version)
	}
	return nil
}

// IsOlder reports whether candidate is a lower version than latest. Versions
// that do not parse are never considered older.
func IsOlder(candidate, latest string) bool {
	cv, err := semver.NewVersion(candidate)
	if err != nil {
		return false
	}
	lv, err := semver.NewVersion(latest)
	if err != nil {
		return false
	}
	return cv.LessThan(lv)
}

func sourceURL(server, repo, version string) string {
	return fmt.Sprintf("%s/%s/releases/download/v%s/%s_%s.0.zip", server, repo, version, config.Plugin.ArtifactPrefix, version)
}

// NewEntry describes the artifact at filePath as version <version>.0 of the plugin.
func NewEntry(filePath, version, changelog, repo, server string) (*manifest.Version, error) {
	checksum, err := Checksum(filePath)
	if err != nil {
		return nil, err
	}
	return &manifest.Version{
		Version:   version + ".0",
		Changelog: changelog,
		TargetABI: config.Plugin.TargetABI,
		SourceURL: sourceURL(server, repo, version),
		Checksum:  checksum,
		Timestamp: now().Format(timestampLayout),
	}, nil
}

func NewManifest(repo, owner, server string) manifest.Manifest {
	return manifest.Manifest{
		{
			GUID:        config.Plugin.GUID,
			Name:        config.Plugin.Name,
			Description: config.Plugin.Description,
			Overview:    config.Plugin.Overview,
			Owner:       owner,
			Category:    config.Plugin.Category,
			ImageURL:    fmt.Sprintf("%s/%s/raw/main/doc/logo.png", server, repo),
			Versions:    []*manifest.Version{},
		},
	}
}
