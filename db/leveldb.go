package db

import (
	"encoding/json"
	"fmt"

	"github.com/shieldpool/proof-gateway/types"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// ArtifactStore persists generated proof artifacts in LevelDB, keyed by
// artifact id. Safe for concurrent use.
type ArtifactStore struct {
	db *leveldb.DB
}

// OpenArtifactStore opens (or creates) the artifact database at path.
func OpenArtifactStore(path string) (*ArtifactStore, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{ErrorIfMissing: false})
	if err != nil {
		return nil, err
	}
	return &ArtifactStore{db: db}, nil
}

func artifactKey(id string) []byte {
	return []byte("artifact_" + id)
}

// Put stores an artifact under its id.
func (s *ArtifactStore) Put(artifact *types.ProofArtifact) error {
	if artifact.ID == "" {
		return fmt.Errorf("artifact has no id")
	}
	value, err := json.Marshal(artifact)
	if err != nil {
		return fmt.Errorf("failed to encode artifact: %w", err)
	}
	return s.db.Put(artifactKey(artifact.ID), value, nil)
}

// Get retrieves an artifact by id. Returns (nil, nil) when absent.
func (s *ArtifactStore) Get(id string) (*types.ProofArtifact, error) {
	data, err := s.db.Get(artifactKey(id), nil)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var artifact types.ProofArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to decode artifact %s: %w", id, err)
	}
	return &artifact, nil
}

// Close shuts down the database connection
func (s *ArtifactStore) Close() error {
	return s.db.Close()
}
