package bolt

import (
	"encoding/json"

	"github.com/boltdb/bolt"

	"github.com/JoelJacobStephen/litxplore"
)

var metadataBucket = []byte("upload_metadata")

// MetadataStore keeps the metadata extracted at upload time, keyed by
// content hash, so later lookups see the same titles and authors the LLM
// extracted instead of a placeholder.
type MetadataStore struct {
	Driver *Driver
}

// Get retrieves the stored metadata for a content hash. It returns nil
// when no record exists.
func (s *MetadataStore) Get(hash string) (*litxplore.Paper, error) {
	var paper *litxplore.Paper
	err := s.Driver.store.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(metadataBucket).Get([]byte(hash))
		if data == nil {
			return nil
		}

		paper = &litxplore.Paper{}
		return json.Unmarshal(data, paper)
	})
	if err != nil {
		return nil, err
	}

	return paper, nil
}

// Put stores metadata for a content hash, overwriting any previous record.
func (s *MetadataStore) Put(hash string, paper *litxplore.Paper) error {
	return s.Driver.store.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(paper)
		if err != nil {
			return err
		}

		return tx.Bucket(metadataBucket).Put([]byte(hash), data)
	})
}

func (s *MetadataStore) Delete(hash string) error {
	return s.Driver.store.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(metadataBucket).Delete([]byte(hash))
	})
}
