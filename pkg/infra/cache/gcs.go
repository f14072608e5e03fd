package cache

import (
	"bytes"
	"context"
	"errors"
	"io"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/relwatch/pkg/domain/interfaces"
	"github.com/m-mizutani/relwatch/pkg/domain/types"
)

var _ interfaces.CacheStore = (*GCSStore)(nil)

// GCSStore keeps the snapshot as a single JSON object in Cloud Storage, for runs on
// ephemeral runners without a persistent disk
type GCSStore struct {
	client *storage.Client
	bucket string
	object string
}

// NewGCSStore creates a store for gs://bucket/object
func NewGCSStore(client *storage.Client, bucket, object string) *GCSStore {
	return &GCSStore{
		client: client,
		bucket: bucket,
		object: object,
	}
}

// Load reads the object. A missing object is an empty snapshot.
func (x *GCSStore) Load(ctx context.Context) (map[types.RepositoryID]string, error) {
	r, err := x.client.Bucket(x.bucket).Object(x.object).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return map[types.RepositoryID]string{}, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open cache object",
			goerr.V("bucket", x.bucket),
			goerr.V("object", x.object),
			goerr.T(types.ErrTagPersistence),
		)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read cache object",
			goerr.V("bucket", x.bucket),
			goerr.V("object", x.object),
			goerr.T(types.ErrTagPersistence),
		)
	}

	return decodeSnapshot(data)
}

// Save overwrites the object. The upload becomes visible only when the writer closes
// successfully, so readers never see a partial document.
func (x *GCSStore) Save(ctx context.Context, snapshot map[types.RepositoryID]string) error {
	data, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}

	w := x.client.Bucket(x.bucket).Object(x.object).NewWriter(ctx)
	w.ContentType = "application/json"

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to upload cache object",
			goerr.V("bucket", x.bucket),
			goerr.V("object", x.object),
			goerr.T(types.ErrTagPersistence),
		)
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize cache object",
			goerr.V("bucket", x.bucket),
			goerr.V("object", x.object),
			goerr.T(types.ErrTagPersistence),
		)
	}
	return nil
}
