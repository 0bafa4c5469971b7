package publish

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-github/v59/github"
	"github.com/migueleliasweb/go-github-mock/src/mock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.Out = io.Discard
	return log
}

func writeAssets(t *testing.T) []Asset {
	dir := t.TempDir()
	assets := []Asset{
		{Name: "manifest.json", Path: filepath.Join(dir, "manifest.json")},
		{Name: "manifest_cn.json", Path: filepath.Join(dir, "manifest_cn.json")},
	}
	for _, a := range assets {
		require.NoError(t, os.WriteFile(a.Path, []byte(`["`+a.Name+`"]`), 0o644))
	}
	return assets
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type uploadRecorder struct {
	mu       sync.Mutex
	uploads  map[string]string
	deletes  []string
	releases int
}

func (u *uploadRecorder) uploadHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		name := r.URL.Query().Get("name")
		u.mu.Lock()
		u.uploads[name] = string(body)
		u.mu.Unlock()
		writeJSON(w, http.StatusCreated, &github.ReleaseAsset{
			Name:               github.String(name),
			BrowserDownloadURL: github.String("https://github.com/owner/repo/releases/download/manifest/" + name),
		})
	}
}

func (u *uploadRecorder) deleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		u.deletes = append(u.deletes, r.URL.Path)
		u.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}
}

func TestGitHubPublisherReplacesAssets(t *testing.T) {
	rec := &uploadRecorder{uploads: make(map[string]string)}
	mockedHTTPClient := mock.NewMockedHTTPClient(
		mock.WithRequestMatchHandler(
			mock.GetReposReleasesTagsByOwnerByRepoByTag,
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/repos/owner/repo/releases/tags/manifest", r.URL.Path)
				writeJSON(w, http.StatusOK, &github.RepositoryRelease{
					ID:      github.Int64(7),
					TagName: github.String("manifest"),
					Assets: []*github.ReleaseAsset{
						{ID: github.Int64(11), Name: github.String("manifest.json")},
						{ID: github.Int64(12), Name: github.String("manifest_cn.json")},
						{ID: github.Int64(13), Name: github.String("unrelated.txt")},
					},
				})
			}),
		),
		mock.WithRequestMatchHandler(mock.DeleteReposReleasesAssetsByOwnerByRepoByAssetId, rec.deleteHandler()),
		mock.WithRequestMatchHandler(mock.PostReposReleasesAssetsByOwnerByRepoByReleaseId, rec.uploadHandler(t)),
	)
	p, err := NewGitHubPublisher(newTestLogger(), github.NewClient(mockedHTTPClient), "owner", "repo", "manifest")
	require.NoError(t, err)

	require.NoError(t, p.Publish(context.Background(), writeAssets(t)))
	require.ElementsMatch(t, []string{
		"/repos/owner/repo/releases/assets/11",
		"/repos/owner/repo/releases/assets/12",
	}, rec.deletes)
	require.Equal(t, map[string]string{
		"manifest.json":    `["manifest.json"]`,
		"manifest_cn.json": `["manifest_cn.json"]`,
	}, rec.uploads)
}

func TestGitHubPublisherCreatesRelease(t *testing.T) {
	rec := &uploadRecorder{uploads: make(map[string]string)}
	mockedHTTPClient := mock.NewMockedHTTPClient(
		mock.WithRequestMatchHandler(
			mock.GetReposReleasesTagsByOwnerByRepoByTag,
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
			}),
		),
		mock.WithRequestMatchHandler(
			mock.PostReposReleasesByOwnerByRepo,
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var release github.RepositoryRelease
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&release))
				assert.Equal(t, "manifest", release.GetTagName())
				rec.mu.Lock()
				rec.releases++
				rec.mu.Unlock()
				writeJSON(w, http.StatusCreated, &github.RepositoryRelease{ID: github.Int64(8), TagName: github.String("manifest")})
			}),
		),
		mock.WithRequestMatchHandler(mock.PostReposReleasesAssetsByOwnerByRepoByReleaseId, rec.uploadHandler(t)),
	)
	p, err := NewGitHubPublisher(newTestLogger(), github.NewClient(mockedHTTPClient), "owner", "repo", "manifest")
	require.NoError(t, err)

	require.NoError(t, p.Publish(context.Background(), writeAssets(t)))
	require.Equal(t, 1, rec.releases)
	require.Empty(t, rec.deletes)
	require.Len(t, rec.uploads, 2)
}

func TestGitHubPublisherFailsOnAPIError(t *testing.T) {
	mockedHTTPClient := mock.NewMockedHTTPClient(
		mock.WithRequestMatchHandler(
			mock.GetReposReleasesTagsByOwnerByRepoByTag,
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusForbidden, map[string]string{"message": "Resource not accessible by integration"})
			}),
		),
	)
	p, err := NewGitHubPublisher(newTestLogger(), github.NewClient(mockedHTTPClient), "owner", "repo", "manifest")
	require.NoError(t, err)

	err = p.Publish(context.Background(), writeAssets(t))
	require.ErrorContains(t, err, "failed to get release manifest")
}

func TestNewGitHubPublisherInvalidRepo(t *testing.T) {
	_, err := NewGitHubPublisher(newTestLogger(), github.NewClient(nil), "standalone", "", "manifest")
	require.ErrorContains(t, err, `invalid repository "standalone/"`)
}
