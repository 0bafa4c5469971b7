package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/cxfksword/metashark-manifest/internal/config"
	"github.com/cxfksword/metashark-manifest/internal/publish"
	"github.com/cxfksword/metashark-manifest/internal/release"
	"github.com/cxfksword/metashark-manifest/pkg/client"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	if err := newRootCommand(log).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(log *logrus.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "metashark-manifest <artifact> <tag>",
		Short:   "Add a plugin release to the Jellyfin plugin repository manifest",
		Version: version,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			// argument errors print usage, pipeline errors are logged
			cmd.SilenceUsage = true
			cmd.SilenceErrors = true
			if err := run(log, cmd, args); err != nil {
				log.Errorf("ERROR: %v", err)
				return err
			}
			return nil
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	cmd.Flags().Bool("publish-github", false, "upload the manifests to the manifest release (requires GITHUB_TOKEN)")
	cmd.Flags().Bool("publish-s3", false, "upload the manifests to the MANIFEST_S3_BUCKET bucket")
	cmd.Flags().SortFlags = false
	cmd.AddCommand(newServeCommand(log))
	return cmd
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func newPublishers(log *logrus.Logger, cmd *cobra.Command, cfg *config.Config) ([]publish.Publisher, error) {
	publishers := make([]publish.Publisher, 0)
	if must(cmd.Flags().GetBool("publish-github")) {
		ghClient, err := cfg.CreateGitHubClient()
		if err != nil {
			return nil, err
		}
		p, err := publish.NewGitHubPublisher(log, ghClient, cfg.Owner(), cfg.RepoName(), config.ManifestReleaseTag)
		if err != nil {
			return nil, err
		}
		publishers = append(publishers, p)
	}
	if must(cmd.Flags().GetBool("publish-s3")) {
		s3Client, err := cfg.CreateS3Client()
		if err != nil {
			return nil, err
		}
		publishers = append(publishers, publish.NewS3Publisher(log, s3Client, cfg.S3Bucket, cfg.GetObjectKey))
	}
	return publishers, nil
}

func run(log *logrus.Logger, cmd *cobra.Command, args []string) error {
	log.Infof("starting metashark-manifest (version=%s)", version)
	cfg, err := config.NewConfigFromEnv()
	if err != nil {
		return err
	}

	// fail before touching any file when publishing is misconfigured
	publishers, err := newPublishers(log, cmd, cfg)
	if err != nil {
		return err
	}

	workDir, err := os.Getwd()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	artifact, tag := args[0], args[1]
	log.Infof("generating manifest for %s (tag=%s, repository=%s)", artifact, tag, cfg.Repository)
	g := release.NewGenerator(log, cfg, client.New(client.WithRetries(cfg.FetchRetries)))
	res, err := g.Run(ctx, workDir, artifact, tag)
	if err != nil {
		return err
	}

	assets := []publish.Asset{
		{Name: config.ManifestFileName, Path: res.Outputs.ManifestPath},
		{Name: config.MirrorManifestFileName, Path: res.Outputs.MirrorPath},
	}
	for _, p := range publishers {
		if err := p.Publish(ctx, assets); err != nil {
			return err
		}
	}
	return nil
}
