package cache

import (
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/relwatch/pkg/domain/types"
)

// decodeSnapshot parses the JSON document shared by the file and GCS stores:
//
//	{"owner/name": "v1.2.3"}
//
// A value may also be a list of tags written by older versions; its last element is the
// most recent tag. Entries with any other shape are dropped.
func decodeSnapshot(data []byte) (map[types.RepositoryID]string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, goerr.Wrap(err, "invalid cache document", goerr.T(types.ErrTagPersistence))
	}

	snapshot := make(map[types.RepositoryID]string, len(raw))
	for repo, value := range raw {
		var tag string
		if err := json.Unmarshal(value, &tag); err == nil {
			if tag != "" {
				snapshot[types.RepositoryID(repo)] = tag
			}
			continue
		}

		var tags []string
		if err := json.Unmarshal(value, &tags); err == nil && len(tags) > 0 && tags[len(tags)-1] != "" {
			snapshot[types.RepositoryID(repo)] = tags[len(tags)-1]
		}
	}

	return snapshot, nil
}

// encodeSnapshot writes the snapshot as indented JSON; encoding/json sorts map keys
func encodeSnapshot(snapshot map[types.RepositoryID]string) ([]byte, error) {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode cache document", goerr.T(types.ErrTagPersistence))
	}
	return append(data, '\n'), nil
}
