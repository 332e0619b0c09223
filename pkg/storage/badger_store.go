package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/doc-harvester/pkg/log"
	"github.com/Sriram-PR/doc-harvester/pkg/models"
	"github.com/Sriram-PR/doc-harvester/pkg/utils"
)

const detailKeyPrefix = "detail:"

// BadgerStore implements VisitedStore on an in-memory BadgerDB instance.
// Nothing is written to disk; the set lives exactly as long as the run.
type BadgerStore struct {
	db       *badger.DB
	log      *logrus.Entry
	keyCount atomic.Int64
}

// NewBadgerStore opens an in-memory store
func NewBadgerStore(logger *logrus.Entry) (*BadgerStore, error) {
	badgerLogger := log.NewBadgerLogrusAdapter(logger.WithField("component", "badgerdb"))
	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(badgerLogger).
		WithNumVersionsToKeep(1)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: opening in-memory dedup store: %w", utils.ErrDatabase, err)
	}
	logger.Debug("Dedup store initialized (in-memory).")
	return &BadgerStore{db: db, log: logger}, nil
}

const maxConflictRetries = 10

// dbUpdate wraps db.Update with a retry loop for transaction conflicts
func (s *BadgerStore) dbUpdate(fn func(txn *badger.Txn) error) error {
	for i := range maxConflictRetries {
		err := s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		s.log.Debugf("BadgerDB transaction conflict (attempt %d/%d), retrying", i+1, maxConflictRetries)
	}
	return fmt.Errorf("%w: transaction conflict not resolved after %d retries", utils.ErrDatabase, maxConflictRetries)
}

// MarkVisited implements VisitedStore
func (s *BadgerStore) MarkVisited(detailURL string) (bool, error) {
	if s.db == nil || s.db.IsClosed() {
		return false, fmt.Errorf("%w: dedup store not open", utils.ErrDatabase)
	}
	added := false
	key := []byte(detailKeyPrefix + detailURL)

	err := s.dbUpdate(func(txn *badger.Txn) error {
		_, errGet := txn.Get(key)
		if errors.Is(errGet, badger.ErrKeyNotFound) {
			if errSet := txn.SetEntry(badger.NewEntry(key, []byte{})); errSet != nil {
				return errSet
			}
			added = true
			return nil
		}
		return errGet
	})
	if err != nil {
		s.log.WithField("key", string(key)).Errorf("DB Update error in MarkVisited: %v", err)
		return false, fmt.Errorf("%w: marking key '%s': %w", utils.ErrDatabase, string(key), err)
	}
	if added {
		s.keyCount.Add(1)
	}
	return added, nil
}

// CheckStatus implements VisitedStore
func (s *BadgerStore) CheckStatus(detailURL string) (models.VisitStatus, *models.VisitEntry, error) {
	status := models.VisitStatusNotFound
	var entry *models.VisitEntry
	key := []byte(detailKeyPrefix + detailURL)

	errView := s.db.View(func(txn *badger.Txn) error {
		item, errGet := txn.Get(key)
		if errors.Is(errGet, badger.ErrKeyNotFound) {
			return nil
		}
		if errGet != nil {
			return fmt.Errorf("%w: getting key '%s': %w", utils.ErrDatabase, string(key), errGet)
		}
		return item.Value(func(val []byte) error {
			if len(val) == 0 {
				status = models.VisitStatusPending
				return nil
			}
			var decoded models.VisitEntry
			if errJSON := json.Unmarshal(val, &decoded); errJSON != nil {
				s.log.Warnf("Failed to unmarshal VisitEntry for key '%s': %v. Treating as 'pending'.", string(key), errJSON)
				status = models.VisitStatusPending
				return nil
			}
			entry = &decoded
			status = decoded.Status
			return nil
		})
	})
	if errView != nil {
		s.log.Errorf("DB View error in CheckStatus for key '%s': %v", string(key), errView)
		return models.VisitStatusDBError, nil, errView
	}
	return status, entry, nil
}

// UpdateStatus implements VisitedStore
func (s *BadgerStore) UpdateStatus(detailURL string, entry *models.VisitEntry) error {
	if s.db == nil || s.db.IsClosed() {
		return fmt.Errorf("%w: dedup store not open", utils.ErrDatabase)
	}
	key := []byte(detailKeyPrefix + detailURL)

	entryBytes, errJSON := json.Marshal(entry)
	if errJSON != nil {
		return fmt.Errorf("%w: marshalling VisitEntry for key '%s': %w", utils.ErrParsing, string(key), errJSON)
	}

	isNew := false
	err := s.dbUpdate(func(txn *badger.Txn) error {
		if _, errGet := txn.Get(key); errors.Is(errGet, badger.ErrKeyNotFound) {
			isNew = true
		}
		return txn.SetEntry(badger.NewEntry(key, entryBytes))
	})
	if err != nil {
		s.log.WithField("key", string(key)).Errorf("DB Update error in UpdateStatus: %v", err)
		return fmt.Errorf("%w: setting status for key '%s': %w", utils.ErrDatabase, string(key), err)
	}
	if isNew {
		s.keyCount.Add(1)
	}
	return nil
}

// Count implements VisitedStore
func (s *BadgerStore) Count() int {
	return int(s.keyCount.Load())
}

// CountByStatus implements VisitedStore
func (s *BadgerStore) CountByStatus() (map[models.VisitStatus]int, error) {
	counts := make(map[models.VisitStatus]int)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(detailKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			status := models.VisitStatusPending
			errVal := it.Item().Value(func(val []byte) error {
				if len(val) == 0 {
					return nil
				}
				var decoded models.VisitEntry
				if json.Unmarshal(val, &decoded) == nil && decoded.Status != "" {
					status = decoded.Status
				}
				return nil
			})
			if errVal != nil {
				return errVal
			}
			counts[status]++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: scanning dedup store: %w", utils.ErrDatabase, err)
	}
	return counts, nil
}

// Close implements VisitedStore
func (s *BadgerStore) Close() error {
	if s.db == nil || s.db.IsClosed() {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("%w: closing dedup store: %w", utils.ErrDatabase, err)
	}
	return nil
}
