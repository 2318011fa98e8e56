package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/msgtrik/trik/internal/chat"
	"go.etcd.io/bbolt"
)

var (
	snapshotBucket = []byte("session")
	currentUserKey = []byte("currentUser")
)

// User is the persisted session snapshot: tokens plus the authenticated
// user's identity. Absence of the snapshot means logged out.
type User struct {
	Access  string       `json:"access"`
	Refresh string       `json:"refresh"`
	ID      int          `json:"id"`
	Email   string       `json:"email"`
	Profile chat.Profile `json:"profile"`
}

// Snapshot is the local session store. The whole snapshot lives as a single
// JSON blob under one key.
type Snapshot struct {
	db *bbolt.DB
}

// OpenSnapshot opens (or creates) the session snapshot database at path.
func OpenSnapshot(path string) (*Snapshot, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open session snapshot: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(snapshotBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init session snapshot: %w", err)
	}
	return &Snapshot{db: db}, nil
}

// Close closes the underlying database.
func (s *Snapshot) Close() error {
	return s.db.Close()
}

// Load returns the stored session user, or nil when logged out.
func (s *Snapshot) Load() (*User, error) {
	var raw []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(snapshotBucket).Get(currentUserKey); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decode session snapshot: %w", err)
	}
	return &u, nil
}

// Save stores the session user, replacing any previous snapshot.
func (s *Snapshot) Save(u *User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(snapshotBucket).Put(currentUserKey, raw)
	})
}

// Clear removes the snapshot. Used on logout and on authentication failure.
func (s *Snapshot) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(snapshotBucket).Delete(currentUserKey)
	})
}

// UpdateTokens rewrites the access token and, when non-empty, the refresh
// token, keeping the rest of the snapshot intact.
func (s *Snapshot) UpdateTokens(access, refresh string) error {
	u, err := s.Load()
	if err != nil {
		return err
	}
	if u == nil {
		return fmt.Errorf("no session to update")
	}
	u.Access = access
	if refresh != "" {
		u.Refresh = refresh
	}
	return s.Save(u)
}
