package auth_models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// ValidRole reports whether role is one the API understands
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleViewer
}

// User is an API account
type User struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Username  string             `json:"username" bson:"username"`
	Email     string             `json:"email" bson:"email"`
	Password  string             `json:"-" bson:"password"` // bcrypt hash, never exposed
	Role      string             `json:"role" bson:"role"`
	Active    bool               `json:"active" bson:"active"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// NewUser creates a new active User. passwordHash must already be hashed.
func NewUser(username, email, passwordHash, role string) *User {
	now := time.Now().UTC()
	return &User{
		Username:  username,
		Email:     email,
		Password:  passwordHash,
		Role:      role,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
