package history

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("history record not found")

var (
	recPrefix = []byte("rec/")
	idPrefix  = []byte("id/")
)

type Record struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Store keeps delivered transcripts in badger. Records are keyed by
// timestamp so iteration order is chronological; a secondary id index
// resolves deletes.
type Store struct {
	db  *badger.DB
	now func() time.Time
}

func Open(dir string) (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", dir, err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func OpenInMemory() (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open in-memory history: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func recordKey(ts time.Time, id uuid.UUID) []byte {
	k := make([]byte, 0, len(recPrefix)+8+1+len(id))
	k = append(k, recPrefix...)
	k = binary.BigEndian.AppendUint64(k, uint64(ts.UnixNano()))
	k = append(k, '/')
	return append(k, id[:]...)
}

func indexKey(id uuid.UUID) []byte {
	return append(append([]byte(nil), idPrefix...), id[:]...)
}

func (s *Store) Append(text string) (Record, error) {
	r := Record{ID: uuid.New(), Text: text, Timestamp: s.now()}
	val, err := json.Marshal(r)
	if err != nil {
		return Record{}, err
	}
	rk := recordKey(r.Timestamp, r.ID)
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(rk, val); err != nil {
			return err
		}
		return txn.Set(indexKey(r.ID), rk)
	})
	if err != nil {
		return Record{}, fmt.Errorf("append history: %w", err)
	}
	return r, nil
}

// List returns all records, newest first.
func (s *Store) List() ([]Record, error) {
	var out []Record
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = recPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		seek := append(append([]byte(nil), recPrefix...), 0xff)
		for it.Seek(seek); it.ValidForPrefix(recPrefix); it.Next() {
			var r Record
			err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &r)
			})
			if err != nil {
				return err
			}
			out = append(out, r)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return out, nil
}

func (s *Store) Delete(id uuid.UUID) error {
	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(indexKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		rk, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if err := txn.Delete(rk); err != nil {
			return err
		}
		return txn.Delete(indexKey(id))
	})
}

func (s *Store) Clear() error {
	return s.db.DropPrefix(recPrefix, idPrefix)
}

func (s *Store) Close() error {
	return s.db.Close()
}
