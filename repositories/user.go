//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"rentnest/domain"
	"rentnest/errors"
)

type IUserRepository interface {
	CreateUser(username, email, passwordHash string) (string, error)
	GetUserByEmail(email string) (domain.User, error)
	GetUsersByID(ids []string) (map[string]domain.User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) UserRepository {
	return UserRepository{db: db}
}

// DiskUser is the stored form of a user account.
type DiskUser struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	CreatedAt    int64  `json:"created_at"`
}

func userKey(id string) []byte {
	return []byte("user:id:" + id)
}

// emailKey is a secondary index mapping an email to the user id, used for
// login and to enforce email uniqueness on registration.
func emailKey(email string) []byte {
	return []byte("user:email:" + email)
}

// CreateUser persists a new account and returns the generated user id.
func (u UserRepository) CreateUser(username, email, passwordHash string) (string, error) {
	doc := DiskUser{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC().UnixNano(),
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(emailKey(email)); err == nil {
			return fmt.Errorf("%w: %s", errors.ErrUserAlreadyExists, email)
		}
		if err := txn.Set(emailKey(email), []byte(doc.ID)); err != nil {
			return err
		}
		return txn.Set(userKey(doc.ID), raw)
	})
	if err != nil {
		return "", err
	}
	return doc.ID, nil
}

func (u UserRepository) GetUserByEmail(email string) (domain.User, error) {
	var doc DiskUser
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(emailKey(email))
		if err != nil {
			return err
		}
		var id []byte
		if err := item.Value(func(val []byte) error {
			id = append(id, val...)
			return nil
		}); err != nil {
			return err
		}

		item, err = txn.Get(userKey(string(id)))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &doc)
		})
	})
	switch {
	case err == nil:
		return toUser(doc), nil
	case stderrors.Is(err, badger.ErrKeyNotFound):
		return domain.User{}, fmt.Errorf("%w: %s", errors.ErrUserNotFound, email)
	default:
		return domain.User{}, err
	}
}

// GetUsersByID resolves a set of user ids to their accounts, keyed by id.
// Unknown ids are skipped, not errors: the caller joins for display and a
// missing sender must not fail a whole chat read.
func (u UserRepository) GetUsersByID(ids []string) (map[string]domain.User, error) {
	users := make(map[string]domain.User, len(ids))
	err := u.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			item, err := txn.Get(userKey(id))
			if stderrors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			var doc DiskUser
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &doc)
			}); err != nil {
				return err
			}
			users[doc.ID] = toUser(doc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

func toUser(doc DiskUser) domain.User {
	return domain.User{
		ID:           doc.ID,
		Username:     doc.Username,
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		CreatedAt:    time.Unix(0, doc.CreatedAt).UTC(),
	}
}
