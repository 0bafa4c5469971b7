package release

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/cxfksword/metashark-manifest/internal/changelog"
	"github.com/cxfksword/metashark-manifest/internal/config"
	"github.com/cxfksword/metashark-manifest/pkg/client"
	"github.com/cxfksword/metashark-manifest/pkg/manifest"
	"github.com/sirupsen/logrus"
)

type ChangelogFunc func(ctx context.Context, log logrus.FieldLogger, dir, tag string) (string, error)

type Generator struct {
	log       *logrus.Logger
	cfg       *config.Config
	client    *client.Client
	changelog ChangelogFunc
}

type Result struct {
	Manifest     manifest.Manifest
	Entry        *manifest.Version
	Bootstrapped bool
	Outputs      *Outputs
}

func NewGenerator(log *logrus.Logger, cfg *config.Config, c *client.Client) *Generator {
	return &Generator{
		log:       log,
		cfg:       cfg,
		client:    c,
		changelog: changelog.FromTag,
	}
}

func artifactPath(workDir, artifact string) string {
	if filepath.IsAbs(artifact) {
		return artifact
	}
	return filepath.Join(workDir, artifact)
}

func (g *Generator) fetchManifest(ctx context.Context) (manifest.Manifest, bool, error) {
	manifestURL := g.cfg.ManifestURL()
	g.log.Infof("fetching published manifest from %s", manifestURL)
	m, err := g.client.FetchManifest(ctx, manifestURL)
	if client.IsNotFound(err) {
		g.log.Warn("no published manifest found, starting a new one")
		return NewManifest(g.cfg.Repository, g.cfg.Owner(), g.cfg.ServerURL), true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch manifest: %w", err)
	}
	return m, false, nil
}

// Run adds the artifact released as tag to the published manifest and writes
// manifest.json and manifest_cn.json to workDir.
func (g *Generator) Run(ctx context.Context, workDir, artifact, tag string) (*Result, error) {
	version := VersionFromTag(tag)
	if err := CheckTag(version); err != nil {
		g.log.Warnf("unexpected release tag %s: %v", tag, err)
	}
	filePath := artifactPath(workDir, artifact)

	changelog, err := g.changelog(ctx, g.log, workDir, tag)
	if err != nil {
		return nil, err
	}

	m, bootstrapped, err := g.fetchManifest(ctx)
	if err != nil {
		return nil, err
	}

	entry, err := NewEntry(filePath, version, changelog, g.cfg.Repository, g.cfg.ServerURL)
	if err != nil {
		return nil, err
	}
	g.log.WithFields(logrus.Fields{
		"version":  entry.Version,
		"checksum": entry.Checksum,
	}).Infof("built version entry for %s", filePath)

	if latest := m[0].Latest(); latest != nil && IsOlder(entry.Version, latest.Version) {
		g.log.Warnf("version %s is older than the latest published version %s", entry.Version, latest.Version)
	}
	if err := m.Merge(entry); err != nil {
		return nil, err
	}

	outputs, err := WriteManifests(workDir, m, g.cfg.MirrorDomain)
	if err != nil {
		return nil, err
	}
	g.log.Infof("wrote %s and %s", outputs.ManifestPath, outputs.MirrorPath)

	return &Result{
		Manifest:     m,
		Entry:        entry,
		Bootstrapped: bootstrapped,
		Outputs:      outputs,
	}, nil
}
