package services

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"github.com/pkg/errors"
)

// StorageBucket is a FileStore over the Firebase app's Cloud Storage bucket.
type StorageBucket struct {
	*storage.BucketHandle
	name string
}

func NewStorageBucket(ctx context.Context, app *firebase.App, bucketName string) (*StorageBucket, error) {
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, err
	}
	bucketHandle, err := client.Bucket(bucketName)
	if err != nil {
		return nil, err
	}

	return &StorageBucket{
		BucketHandle: bucketHandle,
		name:         bucketName,
	}, nil
}

func (sb *StorageBucket) Exists(ctx context.Context, blobName string) (bool, error) {
	if len(blobName) == 0 {
		return false, nil
	}
	handle := sb.Object(blobName)
	if _, err := handle.Attrs(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (sb *StorageBucket) Save(ctx context.Context, key string, contentType string, r io.Reader) (string, error) {
	writer := sb.Object(key).NewWriter(ctx)
	writer.ContentType = contentType
	writer.CacheControl = "public, max-age=31536000"
	if _, err := io.Copy(writer, r); err != nil {
		_ = writer.Close()
		return "", errors.Wrapf(err, "uploading %s", key)
	}
	if err := writer.Close(); err != nil {
		return "", errors.Wrapf(err, "finalizing %s", key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", sb.name, key), nil
}

func (sb *StorageBucket) Delete(ctx context.Context, key string) error {
	exists, err := sb.Exists(ctx, key)
	if err != nil || !exists {
		return err
	}
	return sb.Object(key).Delete(ctx)
}
