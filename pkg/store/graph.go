package store

import (
	bolt "go.etcd.io/bbolt"

	. "src.crush.sh/pkg/store/storedefs"
)

const bucketGraph = "graph"

func init() {
	initDB["initialize graph table"] = func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketGraph))
		return err
	}
}

// PutGraph stores an encoded graph under a name, replacing any graph stored
// under the same name.
func (s *dbStore) PutGraph(name string, data []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketGraph))
		return b.Put([]byte(name), data)
	})
}

// Graph returns the encoded graph stored under a name.
func (s *dbStore) Graph(name string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketGraph))
		v := b.Get([]byte(name))
		if v == nil {
			return ErrNoGraph
		}
		// v is only valid during the transaction.
		data = append([]byte(nil), v...)
		return nil
	})
	return data, err
}

// DelGraph deletes the graph stored under a name. Deleting a graph that does
// not exist is not an error.
func (s *dbStore) DelGraph(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketGraph))
		return b.Delete([]byte(name))
	})
}

// GraphNames returns the names of all stored graphs in sorted order.
func (s *dbStore) GraphNames() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketGraph))
		return b.ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}
