package repositories

import (
	"chat-client/domain"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

const (
	criteriaKey = "pref:criteria"
	usernameKey = "pref:username"
)

// PreferenceRepository keeps the user's sort criteria and name between launches.
// Messages are never written here.
type PreferenceRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewPreferenceRepository(db *badger.DB, log *slog.Logger) PreferenceRepository {
	return PreferenceRepository{db: db, log: log}
}

// OpenBadger opens the preference database at path, or an in-memory one when
// path is empty.
func OpenBadger(path string) (*badger.DB, error) {
	options := badger.DefaultOptions(path)
	if path == "" {
		options = badger.DefaultOptions("").WithInMemory(true)
	}
	db, err := badger.Open(options.WithLoggingLevel(badger.WARNING))
	if err != nil {
		return nil, fmt.Errorf("database opening failed: %w", err)
	}
	return db, nil
}

// SaveCriteria stores criteria as "author,date".
func (p PreferenceRepository) SaveCriteria(criteria []domain.Criterion) error {
	return p.set(criteriaKey, domain.FormatCriteria(criteria))
}

// LoadCriteria returns nil when nothing was saved yet.
func (p PreferenceRepository) LoadCriteria() ([]domain.Criterion, error) {
	value, err := p.get(criteriaKey)
	if err != nil || value == "" {
		return nil, err
	}
	criteria, err := domain.ParseCriteria(value)
	if err != nil {
		p.log.Warn("Ignoring stored sort criteria", "value", value, "error", err)
		return nil, nil
	}
	return criteria, nil
}

func (p PreferenceRepository) SaveUsername(username string) error {
	return p.set(usernameKey, username)
}

// LoadUsername returns "" when nothing was saved yet.
func (p PreferenceRepository) LoadUsername() (string, error) {
	return p.get(usernameKey)
}

func (p PreferenceRepository) set(key, value string) error {
	return p.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
}

func (p PreferenceRepository) get(key string) (string, error) {
	var value []byte
	err := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(value), nil
}

// Entry is one stored preference.
type Entry struct {
	Key   string
	Value string
}

// Entries lists the stored preferences whose key starts with prefix.
func (p PreferenceRepository) Entries(prefix string) ([]Entry, error) {
	var entries []Entry
	err := p.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			entries = append(entries, Entry{Key: string(item.Key()), Value: string(value)})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
