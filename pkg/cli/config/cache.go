package config

import (
	"context"
	"path/filepath"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/relwatch/pkg/domain/interfaces"
	"github.com/m-mizutani/relwatch/pkg/domain/types"
	"github.com/m-mizutani/relwatch/pkg/infra/cache"
)

const (
	CacheBackendFile      = "file"
	CacheBackendSQLite    = "sqlite"
	CacheBackendGCS       = "gcs"
	CacheBackendFirestore = "firestore"
)

// Cache holds version cache storage configuration
type Cache struct {
	Backend string
	Path    string

	GCSBucket string
	GCSObject string

	FirestoreProjectID  string
	FirestoreDatabase   string
	FirestoreCollection string
}

// Flags returns CLI flags for cache configuration
func (c *Cache) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "cache-backend",
			Usage:       "Version cache backend (file, sqlite, gcs, firestore)",
			Value:       CacheBackendFile,
			Destination: &c.Backend,
			Sources:     cli.EnvVars("RELWATCH_CACHE_BACKEND"),
		},
		&cli.StringFlag{
			Name:        "cache-path",
			Usage:       "Cache file path for file and sqlite backends",
			Value:       "checked_versions.json",
			Destination: &c.Path,
			Sources:     cli.EnvVars("RELWATCH_CACHE_PATH"),
		},
		&cli.StringFlag{
			Name:        "cache-gcs-bucket",
			Usage:       "GCS bucket for the gcs backend",
			Destination: &c.GCSBucket,
			Sources:     cli.EnvVars("RELWATCH_CACHE_GCS_BUCKET"),
		},
		&cli.StringFlag{
			Name:        "cache-gcs-object",
			Usage:       "GCS object name for the gcs backend",
			Value:       "relwatch/checked_versions.json",
			Destination: &c.GCSObject,
			Sources:     cli.EnvVars("RELWATCH_CACHE_GCS_OBJECT"),
		},
		&cli.StringFlag{
			Name:        "cache-firestore-project-id",
			Usage:       "Google Cloud project ID for the firestore backend",
			Destination: &c.FirestoreProjectID,
			Sources:     cli.EnvVars("RELWATCH_CACHE_FIRESTORE_PROJECT_ID"),
		},
		&cli.StringFlag{
			Name:        "cache-firestore-database",
			Usage:       "Firestore database ID",
			Value:       firestore.DefaultDatabaseID,
			Destination: &c.FirestoreDatabase,
			Sources:     cli.EnvVars("RELWATCH_CACHE_FIRESTORE_DATABASE"),
		},
		&cli.StringFlag{
			Name:        "cache-firestore-collection",
			Usage:       "Firestore collection holding one document per repository",
			Value:       "relwatch_versions",
			Destination: &c.FirestoreCollection,
			Sources:     cli.EnvVars("RELWATCH_CACHE_FIRESTORE_COLLECTION"),
		},
	}
}

// Validate checks the options required by the selected backend
func (c *Cache) Validate() error {
	var missing string
	switch c.Backend {
	case CacheBackendFile, CacheBackendSQLite:
		if c.Path == "" {
			missing = "cache-path"
		}
	case CacheBackendGCS:
		if c.GCSBucket == "" {
			missing = "cache-gcs-bucket"
		} else if c.GCSObject == "" {
			missing = "cache-gcs-object"
		}
	case CacheBackendFirestore:
		if c.FirestoreProjectID == "" {
			missing = "cache-firestore-project-id"
		} else if c.FirestoreCollection == "" {
			missing = "cache-firestore-collection"
		}
	default:
		return goerr.New("unsupported cache backend",
			goerr.V("backend", c.Backend),
			goerr.T(types.ErrTagInvalidConfig),
		)
	}

	if missing != "" {
		return goerr.New("missing cache option",
			goerr.V("backend", c.Backend),
			goerr.V("option", missing),
			goerr.T(types.ErrTagInvalidConfig),
		)
	}
	return nil
}

// HTTPCacheDir returns the default GitHub HTTP cache directory, next to the local cache
// file. Remote backends have no local directory and get an empty string.
func (c *Cache) HTTPCacheDir() string {
	switch c.Backend {
	case CacheBackendFile, CacheBackendSQLite:
		if c.Path == "" {
			return ""
		}
		return filepath.Join(filepath.Dir(c.Path), "github-http-cache")
	default:
		return ""
	}
}

// NewStore opens the selected backend. The returned close function releases clients and
// must be called after the run.
func (c *Cache) NewStore(ctx context.Context) (interfaces.CacheStore, func(), error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}

	switch c.Backend {
	case CacheBackendSQLite:
		store, err := cache.NewSQLiteStore(c.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil

	case CacheBackendGCS:
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to create GCS client", goerr.T(types.ErrTagPersistence))
		}
		return cache.NewGCSStore(client, c.GCSBucket, c.GCSObject), func() { _ = client.Close() }, nil

	case CacheBackendFirestore:
		client, err := firestore.NewClientWithDatabase(ctx, c.FirestoreProjectID, c.FirestoreDatabase)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to create Firestore client",
				goerr.V("project_id", c.FirestoreProjectID),
				goerr.V("database", c.FirestoreDatabase),
				goerr.T(types.ErrTagPersistence),
			)
		}
		return cache.NewFirestoreStore(client, c.FirestoreCollection), func() { _ = client.Close() }, nil

	default:
		return cache.NewFileStore(c.Path), func() {}, nil
	}
}
