package ingestion

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/pkg/errors"

	"github.com/askiada/go-mlpipeline/internal/objectstore"
	"github.com/askiada/go-mlpipeline/pkg/pipeline/model"
)

// Fetcher opens the remote dataset.
type Fetcher interface {
	Fetch(ctx context.Context, sourceURL string) (io.ReadCloser, error)
}

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPFetcher downloads http and https sources.
type HTTPFetcher struct {
	client HTTPDoer
}

// NewHTTPFetcher uses http.DefaultClient when client is nil.
func NewHTTPFetcher(client HTTPDoer) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}

	return &HTTPFetcher{client: client}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, sourceURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, http.NoBody)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to create request for %s", sourceURL)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to get %s", sourceURL)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		resp.Body.Close()

		return nil, errors.Errorf("unable to get %s: unexpected status %s", sourceURL, resp.Status)
	}

	return resp.Body, nil
}

// ObjectStoreFetcher reads s3://bucket/key sources.
type ObjectStoreFetcher struct {
	store objectstore.Store
}

// NewObjectStoreFetcher reads objects from store.
func NewObjectStoreFetcher(store objectstore.Store) *ObjectStoreFetcher {
	return &ObjectStoreFetcher{store: store}
}

func (f *ObjectStoreFetcher) Fetch(ctx context.Context, sourceURL string) (io.ReadCloser, error) {
	bucket, key, err := objectstore.ParseURL(sourceURL)
	if err != nil {
		return nil, err
	}

	body, _, err := f.store.Get(ctx, bucket, key)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to get %s", sourceURL)
	}

	return body, nil
}

// LazyObjectStoreFetcher opens its store on the first fetch, so an invalid
// object store setup only fails runs that read s3:// sources.
type LazyObjectStoreFetcher struct {
	open    func() (objectstore.Store, error)
	once    sync.Once
	fetcher *ObjectStoreFetcher
	err     error
}

// NewLazyObjectStoreFetcher calls open at most once.
func NewLazyObjectStoreFetcher(open func() (objectstore.Store, error)) *LazyObjectStoreFetcher {
	return &LazyObjectStoreFetcher{open: open}
}

func (f *LazyObjectStoreFetcher) Fetch(ctx context.Context, sourceURL string) (io.ReadCloser, error) {
	f.once.Do(func() {
		store, err := f.open()
		if err != nil {
			f.err = model.Wrap(model.ErrConfig, err, "unable to open object store")

			return
		}

		f.fetcher = NewObjectStoreFetcher(store)
	})

	if f.err != nil {
		return nil, f.err
	}

	return f.fetcher.Fetch(ctx, sourceURL)
}

// SchemeFetcher routes a source URL to the fetcher registered for its scheme.
type SchemeFetcher map[string]Fetcher

func (s SchemeFetcher) Fetch(ctx context.Context, sourceURL string) (io.ReadCloser, error) {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid source url %q", sourceURL)
	}

	fetcher, ok := s[u.Scheme]
	if !ok {
		return nil, errors.Errorf("no fetcher for scheme %q of %s", u.Scheme, sourceURL)
	}

	return fetcher.Fetch(ctx, sourceURL)
}

var (
	_ Fetcher = (*HTTPFetcher)(nil)
	_ Fetcher = (*ObjectStoreFetcher)(nil)
	_ Fetcher = (*LazyObjectStoreFetcher)(nil)
	_ Fetcher = SchemeFetcher(nil)
)
