package mirror

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"git.home.luguber.info/inful/coursebuilder/internal/config"
	"git.home.luguber.info/inful/coursebuilder/internal/foundation/errors"
)

// gcsPageSize matches the S3 ListObjectsV2 default.
const gcsPageSize = 1000

// GCSBucket lists and fetches objects of a Google Cloud Storage bucket.
type GCSBucket struct {
	client *storage.Client
	bucket string
}

var _ Bucket = (*GCSBucket)(nil)

// NewGCSBucket creates a client with application default credentials. An
// endpoint switches to an unauthenticated emulator.
func NewGCSBucket(ctx context.Context, cfg config.SyncConfig) (*GCSBucket, error) {
	var opts []option.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint), option.WithoutAuthentication())
	} else {
		opts = append(opts, option.WithScopes(storage.ScopeReadOnly))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to create storage client").Build()
	}
	return &GCSBucket{client: client, bucket: cfg.Bucket}, nil
}

func (b *GCSBucket) ListPage(ctx context.Context, prefix, token string) (Page, error) {
	it := b.client.Bucket(b.bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	var attrs []*storage.ObjectAttrs
	next, err := iterator.NewPager(it, gcsPageSize, token).NextPage(&attrs)
	if err != nil {
		return Page{}, err
	}

	page := Page{NextToken: next, Truncated: next != ""}
	for _, a := range attrs {
		page.Objects = append(page.Objects, Object{
			Key:          a.Name,
			LastModified: a.Updated,
			Size:         a.Size,
			ETag:         a.Etag,
		})
	}
	return page, nil
}

func (b *GCSBucket) Fetch(ctx context.Context, key string) (io.ReadCloser, error) {
	return b.client.Bucket(b.bucket).Object(key).NewReader(ctx)
}

// Close releases the client.
func (b *GCSBucket) Close() error {
	return b.client.Close()
}
