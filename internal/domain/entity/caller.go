package entity

import "github.com/google/uuid"

// Caller is the authenticated identity behind a request. It is resolved once
// at the transport edge and passed explicitly into every usecase call.
type Caller struct {
	UserID uuid.UUID
	Email  string
	RoleID int
}

func (c Caller) IsAdmin() bool {
	return c.RoleID == RoleIDAdmin
}

func (c Caller) IsAuthenticated() bool {
	return c.UserID != uuid.Nil
}
