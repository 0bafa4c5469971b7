package publish

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ObjectKeyFunc maps an asset name to its bucket key.
type ObjectKeyFunc func(name string) string

type S3Publisher struct {
	log     *logrus.Logger
	storage *s3.Client
	bucket  string
	keyFn   ObjectKeyFunc
}

func NewS3Publisher(log *logrus.Logger, storage *s3.Client, bucket string, keyFn ObjectKeyFunc) *S3Publisher {
	if keyFn == nil {
		keyFn = func(name string) string { return name }
	}
	return &S3Publisher{
		log:     log,
		storage: storage,
		bucket:  bucket,
		keyFn:   keyFn,
	}
}

func (p *S3Publisher) putAsset(ctx context.Context, asset Asset) error {
	f, err := os.Open(asset.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	key := p.keyFn(asset.Name)
	_, err = p.storage.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(p.bucket),
		Key:          aws.String(key),
		Body:         f,
		ContentType:  aws.String("application/json; charset=utf-8"),
		CacheControl: aws.String("no-cache"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	p.log.Infof("uploaded %s to s3://%s/%s", asset.Name, p.bucket, key)
	return nil
}

func (p *S3Publisher) Publish(ctx context.Context, assets []Asset) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, asset := range assets {
		asset := asset
		g.Go(func() error {
			return p.putAsset(ctx, asset)
		})
	}
	return g.Wait()
}
