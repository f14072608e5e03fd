package cache

import (
	"context"
	"errors"
	"net/url"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"

	"github.com/m-mizutani/relwatch/pkg/domain/interfaces"
	"github.com/m-mizutani/relwatch/pkg/domain/types"
)

var _ interfaces.CacheStore = (*FirestoreStore)(nil)

type versionDoc struct {
	Repository string    `firestore:"repository"`
	Tag        string    `firestore:"tag"`
	UpdatedAt  time.Time `firestore:"updated_at"`
}

// FirestoreStore keeps one document per repository in a Firestore collection. Only
// entries that changed since the last Load or Save are written.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
	saved      map[types.RepositoryID]string
}

// NewFirestoreStore creates a store on collection
func NewFirestoreStore(client *firestore.Client, collection string) *FirestoreStore {
	return &FirestoreStore{
		client:     client,
		collection: collection,
		saved:      map[types.RepositoryID]string{},
	}
}

// docID escapes the slash of owner/name, which Firestore treats as a path separator
func docID(repo types.RepositoryID) string {
	return url.PathEscape(repo.String())
}

// Load reads every document of the collection
func (x *FirestoreStore) Load(ctx context.Context) (map[types.RepositoryID]string, error) {
	iter := x.client.Collection(x.collection).Documents(ctx)
	defer iter.Stop()

	snapshot := make(map[types.RepositoryID]string)
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate cache documents",
				goerr.V("collection", x.collection),
				goerr.T(types.ErrTagPersistence),
			)
		}

		var v versionDoc
		if err := doc.DataTo(&v); err != nil || v.Repository == "" || v.Tag == "" {
			continue
		}
		snapshot[types.RepositoryID(v.Repository)] = v.Tag
	}

	x.saved = make(map[types.RepositoryID]string, len(snapshot))
	for repo, tag := range snapshot {
		x.saved[repo] = tag
	}
	return snapshot, nil
}

// Save writes entries whose tag differs from what is known to be stored
func (x *FirestoreStore) Save(ctx context.Context, snapshot map[types.RepositoryID]string) error {
	coll := x.client.Collection(x.collection)
	now := time.Now().UTC()

	for repo, tag := range snapshot {
		if x.saved[repo] == tag {
			continue
		}

		_, err := coll.Doc(docID(repo)).Set(ctx, versionDoc{
			Repository: repo.String(),
			Tag:        tag,
			UpdatedAt:  now,
		})
		if err != nil {
			return goerr.Wrap(err, "failed to write cache document",
				goerr.V("collection", x.collection),
				goerr.V("repository", repo),
				goerr.T(types.ErrTagPersistence),
			)
		}
		x.saved[repo] = tag
	}

	return nil
}
