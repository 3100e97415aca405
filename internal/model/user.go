package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is the staff role. There is no finer-grained permission model;
// every consumption site switches exhaustively on these three values.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleFrontDesk  Role = "front_desk"
	RoleLaborNurse Role = "labor_nurse"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleFrontDesk, RoleLaborNurse:
		return true
	}
	return false
}

// User is a staff account. Accounts are deactivated, never deleted.
type User struct {
	Base
	Name             string     `db:"name" json:"name"`
	Email            string     `db:"email" json:"email"`
	PasswordHash     string     `db:"password_hash" json:"-"`
	Role             Role       `db:"role" json:"role"`
	LaborRoomID      *uuid.UUID `db:"labor_room_id" json:"labor_room_id,omitempty"`
	IsActive         bool       `db:"is_active" json:"is_active"`
	LoginAttempts    int        `db:"login_attempts" json:"-"`
	LastLoginAttempt *time.Time `db:"last_login_attempt" json:"-"`
	LastLoginAt      *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
}

type CreateUserRequest struct {
	Name        string  `json:"name" binding:"required"`
	Email       string  `json:"email" binding:"required,email"`
	Password    string  `json:"password" binding:"required,min=8"`
	Role        string  `json:"role" binding:"required,oneof=admin front_desk labor_nurse"`
	LaborRoomID *string `json:"labor_room_id" binding:"omitempty,uuid"`
}

type UpdateUserRequest struct {
	Name        *string `json:"name"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Role        *string `json:"role" binding:"omitempty,oneof=admin front_desk labor_nurse"`
	LaborRoomID *string `json:"labor_room_id"`
	IsActive    *bool   `json:"is_active"`
}
