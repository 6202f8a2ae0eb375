// Package mirror copies course prefixes of a remote bucket into local course
// directories, fetching only objects that are new or changed.
package mirror

import (
	"context"
	"io"
	"time"
)

// Object is one listed remote object.
type Object struct {
	Key          string
	LastModified time.Time
	Size         int64
	ETag         string
}

// Page is one page of a prefix listing.
type Page struct {
	Objects   []Object
	NextToken string
	Truncated bool
}

// Bucket is the remote side of the mirror. ListPage returns the page of
// objects under prefix that starts at token ("" for the first page).
type Bucket interface {
	ListPage(ctx context.Context, prefix, token string) (Page, error)
	Fetch(ctx context.Context, key string) (io.ReadCloser, error)
}
