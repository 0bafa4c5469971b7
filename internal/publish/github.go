package publish

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/google/go-github/v59/github"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type GitHubPublisher struct {
	log      *logrus.Logger
	ghClient *github.Client
	owner    string
	repo     string
	tag      string
}

// NewGitHubPublisher uploads assets to the release tagged tag in owner/repo.
func NewGitHubPublisher(log *logrus.Logger, ghClient *github.Client, owner, repo, tag string) (*GitHubPublisher, error) {
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("invalid repository %q", owner+"/"+repo)
	}
	return &GitHubPublisher{
		log:      log,
		ghClient: ghClient,
		owner:    owner,
		repo:     repo,
		tag:      tag,
	}, nil
}

func isNotFound(err error) bool {
	var errResp *github.ErrorResponse
	return errors.As(err, &errResp) && errResp.Response != nil && errResp.Response.StatusCode == http.StatusNotFound
}

func (p *GitHubPublisher) getOrCreateRelease(ctx context.Context) (*github.RepositoryRelease, error) {
	release, _, err := p.ghClient.Repositories.GetReleaseByTag(ctx, p.owner, p.repo, p.tag)
	if err == nil {
		return release, nil
	}
	if !isNotFound(err) {
		return nil, fmt.Errorf("failed to get release %s: %w", p.tag, err)
	}
	p.log.Warnf("release %s does not exist, creating it", p.tag)
	release, _, err = p.ghClient.Repositories.CreateRelease(ctx, p.owner, p.repo, &github.RepositoryRelease{
		TagName: github.String(p.tag),
		Name:    github.String(p.tag),
		Body:    github.String("Plugin repository manifest"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create release %s: %w", p.tag, err)
	}
	return release, nil
}

func (p *GitHubPublisher) uploadAsset(ctx context.Context, release *github.RepositoryRelease, asset Asset) error {
	for _, existing := range release.Assets {
		if existing.GetName() != asset.Name {
			continue
		}
		p.log.Infof("deleting existing asset %s (id=%d)", asset.Name, existing.GetID())
		if _, err := p.ghClient.Repositories.DeleteReleaseAsset(ctx, p.owner, p.repo, existing.GetID()); err != nil {
			return fmt.Errorf("failed to delete asset %s: %w", asset.Name, err)
		}
	}

	f, err := os.Open(asset.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	uploaded, _, err := p.ghClient.Repositories.UploadReleaseAsset(ctx, p.owner, p.repo, release.GetID(), &github.UploadOptions{
		Name: asset.Name,
	}, f)
	if err != nil {
		return fmt.Errorf("failed to upload asset %s: %w", asset.Name, err)
	}
	p.log.Infof("uploaded %s to %s", asset.Name, uploaded.GetBrowserDownloadURL())
	return nil
}

func (p *GitHubPublisher) Publish(ctx context.Context, assets []Asset) error {
	release, err := p.getOrCreateRelease(ctx)
	if err != nil {
		return err
	}
	g, ctx := errgroup.WithContext(ctx)
	for _, asset := range assets {
		asset := asset
		g.Go(func() error {
			return p.uploadAsset(ctx, release, asset)
		})
	}
	return g.Wait()
}
