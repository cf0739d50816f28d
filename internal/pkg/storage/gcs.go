package storage

import (
	"context"
	"errors"
	"io"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSAdapter implements Storage using Google Cloud Storage.
type GCSAdapter struct {
	client *gcs.Client
}

// GCSOptions configures GCS client initialization.
type GCSOptions struct {
	// ClientOptions are passed to the GCS client (credentials, endpoint).
	ClientOptions []option.ClientOption
}

// NewGCS constructs a GCS adapter.
func NewGCS(ctx context.Context, opts GCSOptions) (*GCSAdapter, error) {
	client, err := gcs.NewClient(ctx, opts.ClientOptions...)
	if err != nil {
		return nil, err
	}
	return &GCSAdapter{client: client}, nil
}

// PutObject streams data into a GCS object.
func (g *GCSAdapter) PutObject(ctx context.Context, bucket, key string, r io.Reader, opts PutOptions) (ObjectInfo, error) {
	if err := validate(ctx, bucket, key); err != nil {
		return ObjectInfo{}, err
	}

	writer := g.client.Bucket(bucket).Object(key).NewWriter(ctx)
	writer.ContentType = opts.ContentType
	if len(opts.Metadata) > 0 {
		writer.Metadata = opts.Metadata
	}

	n, err := io.Copy(writer, r)
	if err != nil {
		return ObjectInfo{}, errors.Join(err, writer.Close())
	}
	if err := writer.Close(); err != nil {
		return ObjectInfo{}, err
	}

	info := ObjectInfo{Bucket: bucket, Key: key, Size: n}
	if attrs := writer.Attrs(); attrs != nil {
		info.ETag = attrs.Etag
	}
	return info, nil
}

// Close closes the GCS client.
func (g *GCSAdapter) Close() error {
	return g.client.Close()
}
