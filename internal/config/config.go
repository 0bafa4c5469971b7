package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/go-github/v59/github"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/oauth2"
)

const (
	DefaultRepository   = "cxfksword/jellyfin-plugin-metashark"
	DefaultServerURL    = "https://github.com"
	DefaultMirrorDomain = "https://ghfast.top/"
)

type Config struct {
	Repository        string `envconfig:"GITHUB_REPOSITORY" default:"cxfksword/jellyfin-plugin-metashark"`
	ServerURL         string `envconfig:"GITHUB_SERVER_URL" default:"https://github.com"`
	MirrorDomain      string `envconfig:"CN_DOMAIN"`
	FetchRetries      int    `envconfig:"MANIFEST_FETCH_RETRIES" default:"0"`
	GitHubToken       string `envconfig:"GITHUB_TOKEN"`
	S3Bucket          string `envconfig:"MANIFEST_S3_BUCKET"`
	S3Endpoint        string `envconfig:"MANIFEST_S3_ENDPOINT"`
	S3Region          string `envconfig:"MANIFEST_S3_REGION" default:"auto"`
	S3AccessKeyID     string `envconfig:"MANIFEST_S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `envconfig:"MANIFEST_S3_SECRET_ACCESS_KEY"`
	S3KeyPrefix       string `envconfig:"MANIFEST_S3_KEY_PREFIX"`
	S3UsePathStyle    bool   `envconfig:"MANIFEST_S3_PATH_STYLE"`
}

func NewConfigFromEnv() (*Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}
	if cfg.FetchRetries < 0 {
		return nil, fmt.Errorf("MANIFEST_FETCH_RETRIES must not be negative: %d", cfg.FetchRetries)
	}
	cfg.normalize()
	return &cfg, nil
}

// normalize strips trailing slashes and applies the mirror default, which
// unlike the other defaults also replaces an empty CN_DOMAIN.
func (c *Config) normalize() {
	c.ServerURL = strings.TrimRight(c.ServerURL, "/")
	if c.MirrorDomain == "" {
		c.MirrorDomain = DefaultMirrorDomain
	}
	c.MirrorDomain = strings.TrimRight(c.MirrorDomain, "/")
}

// Owner returns the part of the repository identifier before the first slash.
func (c *Config) Owner() string {
	owner, _, _ := strings.Cut(c.Repository, "/")
	return owner
}

// RepoName returns the part of the repository identifier after the first slash.
func (c *Config) RepoName() string {
	_, repo, _ := strings.Cut(c.Repository, "/")
	return repo
}

func (c *Config) ManifestURL() string {
	return fmt.Sprintf("%s/%s/releases/download/%s/%s", c.ServerURL, c.Repository, ManifestReleaseTag, ManifestFileName)
}

func (c *Config) CreateGitHubClient() (*github.Client, error) {
	if c.GitHubToken == "" {
		return nil, errors.New("GITHUB_TOKEN is missing")
	}
	oauthClient := oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.GitHubToken}))
	client := github.NewClient(oauthClient)
	if c.ServerURL == DefaultServerURL {
		return client, nil
	}
	// GitHub Enterprise serves the API below the web host
	return client.WithEnterpriseURLs(c.ServerURL, c.ServerURL)
}

func (c *Config) ValidateS3() error {
	switch {
	case c.S3Bucket == "":
		return errors.New("MANIFEST_S3_BUCKET is missing")
	case c.S3AccessKeyID == "" || c.S3SecretAccessKey == "":
		return errors.New("MANIFEST_S3_ACCESS_KEY_ID and MANIFEST_S3_SECRET_ACCESS_KEY are required")
	}
	return nil
}

func (c *Config) s3EndpointResolver(_, _ string, _ ...interface{}) (aws.Endpoint, error) {
	return aws.Endpoint{
		URL: c.S3Endpoint,
	}, nil
}

func (c *Config) CreateS3Client() (*s3.Client, error) {
	if err := c.ValidateS3(); err != nil {
		return nil, err
	}
	staticCredentialsProvider := credentials.NewStaticCredentialsProvider(
		c.S3AccessKeyID,
		c.S3SecretAccessKey,
		"",
	)
	opts := []func(*awsConfig.LoadOptions) error{
		awsConfig.WithRegion(c.S3Region),
		awsConfig.WithCredentialsProvider(staticCredentialsProvider),
	}
	if c.S3Endpoint != "" {
		opts = append(opts, awsConfig.WithEndpointResolverWithOptions(aws.EndpointResolverWithOptionsFunc(c.s3EndpointResolver)))
	}
	s3Cfg, err := awsConfig.LoadDefaultConfig(context.TODO(), opts...)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(s3Cfg, func(o *s3.Options) {
		o.UsePathStyle = c.S3UsePathStyle
	}), nil
}

// GetObjectKey returns the bucket key of a catalogue file.
func (c *Config) GetObjectKey(fileName string) string {
	if c.S3KeyPrefix == "" {
		return fileName
	}
	return strings.TrimSuffix(c.S3KeyPrefix, "/") + "/" + fileName
}
