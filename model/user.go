package model

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func ParseRole(raw string) (Role, error) {
	switch r := Role(raw); r {
	case RoleUser, RoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("%w: invalid role %q", ErrInvalidArgument, raw)
}

type User struct {
	UserID    string    `firestore:"userid" bson:"_id"`
	Name      string    `firestore:"name" bson:"name"`
	Email     string    `firestore:"email" bson:"email"`
	Password  string    `firestore:"password" bson:"password"`
	Role      Role      `firestore:"role" bson:"role"`
	Bio       string    `firestore:"bio" bson:"bio"`
	Avatar    string    `firestore:"avatar" bson:"avatar"`
	CreatedAt time.Time `firestore:"createdat" bson:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedat" bson:"updatedAt"`
}

func (u User) Summary() UserSummary {
	return UserSummary{ID: u.UserID, Name: u.Name, Email: u.Email}
}

func (u User) Identity() Identity {
	return Identity{UserID: u.UserID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// Identity is the acting user resolved for a request.
type Identity struct {
	UserID string
	Name   string
	Email  string
	Role   Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
