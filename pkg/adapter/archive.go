package adapter

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
)

// Archive is optional cold storage for learning run reports
type Archive interface {
	// Put returns a writer to save a run report under key
	Put(ctx context.Context, key string) (io.WriteCloser, error)
	// Get loads a previously archived run report
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// archiveClient implements Archive using Cloud Storage
type archiveClient struct {
	bucketName string
	client     *storage.Client
}

// NewArchive creates a new Cloud Storage archive client
func NewArchive(ctx context.Context, bucketName string) (Archive, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	return &archiveClient{
		bucketName: bucketName,
		client:     client,
	}, nil
}

func (a *archiveClient) Put(ctx context.Context, key string) (io.WriteCloser, error) {
	bucket := a.client.Bucket(a.bucketName)
	obj := bucket.Object(key)
	return obj.NewWriter(ctx), nil
}

func (a *archiveClient) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	bucket := a.client.Bucket(a.bucketName)
	obj := bucket.Object(key)
	reader, err := obj.NewReader(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read from archive", goerr.Value("key", key))
	}

	return reader, nil
}
