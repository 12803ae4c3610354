package viewcount

import (
	"encoding/binary"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var viewsBucket = []byte("product_views")

// Store keeps per-product view counters in a local bbolt file. Counters
// are write-heavy and worthless to the relational model, so they stay out
// of the products table.
type Store struct {
	db *bolt.DB
}

func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "open view counter store")
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(viewsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func key(productID int64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(productID))
	return b[:]
}

// Bump increments and returns the view counter for a product.
func (s *Store) Bump(productID int64) (uint64, error) {
	var count uint64
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(viewsBucket)
		k := key(productID)
		if v := b.Get(k); v != nil {
			count = binary.BigEndian.Uint64(v)
		}
		count++
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], count)
		return b.Put(k, buf[:])
	})
	return count, err
}

// Get returns the current counter without changing it.
func (s *Store) Get(productID int64) uint64 {
	var count uint64
	s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(viewsBucket).Get(key(productID)); v != nil {
			count = binary.BigEndian.Uint64(v)
		}
		return nil
	})
	return count
}

// Delete drops the counter for a removed product.
func (s *Store) Delete(productID int64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(viewsBucket).Delete(key(productID))
	})
}

// Total sums every counter, used by the admin stats endpoint.
func (s *Store) Total() uint64 {
	var total uint64
	s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(viewsBucket).ForEach(func(_, v []byte) error {
			total += binary.BigEndian.Uint64(v)
			return nil
		})
	})
	return total
}

func (s *Store) Close() error {
	return s.db.Close()
}
