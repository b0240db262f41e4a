package memory

import (
	"context"

	auth_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/auth"
	interfaces "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Repository/Interfaces"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRepository struct {
	s *Store
}

func (r *UserRepository) Create(_ context.Context, user *auth_models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Username == user.Username {
			return &interfaces.DuplicateKeyError{Field: "username"}
		}
		if u.Email == user.Email {
			return &interfaces.DuplicateKeyError{Field: "email"}
		}
	}
	user.ID = primitive.NewObjectID()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.s.clock()
	}
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = *user
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id primitive.ObjectID) (*auth_models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return &user, nil
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*auth_models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (r *UserRepository) CountByRole(_ context.Context, role string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, u := range r.s.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}
