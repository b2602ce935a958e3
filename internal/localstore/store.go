package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.etcd.io/bbolt"

	"github.com/2beens/liftlog/internal/editor"
	"github.com/2beens/liftlog/internal/weight"
	"github.com/2beens/liftlog/internal/workout"
)

const (
	bucketPreferences   = "preferences"    // key: preference name -> value
	bucketSession       = "session"        // key: "current" -> Session JSON
	bucketDrafts        = "drafts"         // key: "current" -> editor.Draft JSON
	bucketExerciseNames = "exercise_names" // key: exercise name -> nothing

	keyWeightUnit = "weight_unit"
	keyCurrent    = "current"

	FileName = "liftlog.bolt"
)

var ErrNotFound = errors.New("not found")

var _ weight.PreferenceStore = (*Store)(nil)

// Session is the login kept on the device between CLI runs.
type Session struct {
	Server    string    `json:"server"`
	Token     string    `json:"token"`
	UserID    int       `json:"userId"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store is the device-side storage: preferences, session, the routine draft and
// the exercise names seen in routine listings.
type Store struct {
	storage *bbolt.DB
}

func Open(path string) (*Store, error) {
	instance, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open local store %s: %w", path, err)
	}

	if err := instance.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range []string{bucketPreferences, bucketSession, bucketDrafts, bucketExerciseNames} {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		_ = instance.Close()
		return nil, fmt.Errorf("create local store buckets: %w", err)
	}

	return &Store{storage: instance}, nil
}

func (s *Store) Close() error {
	return s.storage.Close()
}

// GetWeightUnit returns the stored unit, or "" when none was chosen yet.
func (s *Store) GetWeightUnit(_ context.Context) (string, error) {
	var unit string
	err := s.storage.View(func(tx *bbolt.Tx) error {
		unit = string(tx.Bucket([]byte(bucketPreferences)).Get([]byte(keyWeightUnit)))
		return nil
	})
	return unit, err
}

func (s *Store) SetWeightUnit(_ context.Context, unit string) error {
	return s.put(bucketPreferences, keyWeightUnit, []byte(unit))
}

func (s *Store) GetSession() (*Session, error) {
	var session Session
	if err := s.getJSON(bucketSession, keyCurrent, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Store) SaveSession(session Session) error {
	return s.putJSON(bucketSession, keyCurrent, session)
}

func (s *Store) ClearSession() error {
	return s.delete(bucketSession, keyCurrent)
}

// GetDraft returns the routine draft left by a previous run.
func (s *Store) GetDraft() (*editor.Draft, error) {
	var draft editor.Draft
	if err := s.getJSON(bucketDrafts, keyCurrent, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

func (s *Store) SaveDraft(draft *editor.Draft) error {
	return s.putJSON(bucketDrafts, keyCurrent, draft)
}

func (s *Store) DiscardDraft() error {
	return s.delete(bucketDrafts, keyCurrent)
}

// RememberExerciseNames replaces the cached names with the ones found in routines.
func (s *Store) RememberExerciseNames(routines []workout.Routine) error {
	names := workout.UniqueNames(routines)
	return s.storage.Update(func(tx *bbolt.Tx) error {
		if err := recreateBucket(tx, bucketExerciseNames); err != nil {
			return err
		}
		bucket := tx.Bucket([]byte(bucketExerciseNames))
		for _, name := range names {
			if err := bucket.Put([]byte(name), []byte{}); err != nil {
				return err
			}
		}
		log.Tracef("remembered %d exercise names", len(names))
		return nil
	})
}

// ExerciseNames returns the cached names, sorted case-insensitively.
func (s *Store) ExerciseNames() ([]string, error) {
	var names []string
	err := s.storage.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketExerciseNames)).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	workout.SortNames(names)
	return names, nil
}

// Reset drops the draft and the cached exercise names. Preferences and the session stay.
func (s *Store) Reset() error {
	return s.storage.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range []string{bucketDrafts, bucketExerciseNames} {
			if err := recreateBucket(tx, bucket); err != nil {
				return err
			}
		}
		return nil
	})
}

func recreateBucket(tx *bbolt.Tx, name string) error {
	if tx.Bucket([]byte(name)) != nil {
		if err := tx.DeleteBucket([]byte(name)); err != nil {
			return err
		}
	}
	_, err := tx.CreateBucket([]byte(name))
	return err
}

func (s *Store) put(bucket, key string, value []byte) error {
	return s.storage.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucket)).Put([]byte(key), value)
	})
}

func (s *Store) delete(bucket, key string) error {
	return s.storage.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucket)).Delete([]byte(key))
	})
}

func (s *Store) putJSON(bucket, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", bucket, key, err)
	}
	return s.put(bucket, key, data)
}

func (s *Store) getJSON(bucket, key string, v any) error {
	return s.storage.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucket)).Get([]byte(key))
		if data == nil {
			return ErrNotFound
		}
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("unmarshal %s/%s: %w", bucket, key, err)
		}
		return nil
	})
}
