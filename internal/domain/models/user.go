// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a registered account on the platform.
//
// Roles:
//   - client: submits websites for dark-pattern review
//   - expert: reviews websites and verifies dark-pattern findings
//   - superadmin: manages expert assignment and automated pattern ingestion
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"userId"`
	FirstName string             `bson:"first_name" json:"firstName"`
	LastName  string             `bson:"last_name" json:"lastName"`
	Email     string             `bson:"email" json:"email"` // lowercase, unique

	// PasswordHash is the bcrypt hash of the account password.
	PasswordHash string `bson:"password_hash" json:"-"`

	Role         string `bson:"role" json:"role"`
	Subscription string `bson:"subscription,omitempty" json:"subscription,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// FullName returns the display name used in notification emails.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// User roles
const (
	RoleClient     = "client"
	RoleExpert     = "expert"
	RoleSuperAdmin = "superadmin"
)

// AllRoles returns all valid user roles.
func AllRoles() []string {
	return []string{
		RoleClient,
		RoleExpert,
		RoleSuperAdmin,
	}
}

// IsValidRole checks if a role is valid.
func IsValidRole(role string) bool {
	for _, r := range AllRoles() {
		if r == role {
			return true
		}
	}
	return false
}
