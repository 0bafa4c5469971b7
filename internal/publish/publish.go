package publish

import (
	"context"
)

// Asset is a local file published under Name.
type Asset struct {
	Name string
	Path string
}

type Publisher interface {
	Publish(ctx context.Context, assets []Asset) error
}
