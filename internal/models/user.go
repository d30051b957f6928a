package models

import "time"

// Roles a registered user can hold within their family.
const (
	RoleHead  = "HEAD_OF_FAMILY"
	RoleAdult = "ADULT"
)

// User represents a login account. Password holds the bcrypt hash and is
// serialized only into the persisted document, never into API responses.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	FamilyID  string    `json:"familyId"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserInfo is the API projection of a user.
type UserInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	FamilyID string `json:"familyId"`
}

// Info returns the response projection of the user.
func (u *User) Info() UserInfo {
	return UserInfo{
		ID:       u.ID,
		Username: u.Username,
		Phone:    u.Phone,
		Role:     u.Role,
		FamilyID: u.FamilyID,
	}
}

// IsHead reports whether the user holds the head-of-family role.
func (u *User) IsHead() bool {
	return u.Role == RoleHead
}
