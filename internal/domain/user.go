package domain

import "time"

// User is an administrator account.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"usersName"`
	Email        string    `json:"userEmail"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"isAdmin"`
	IsOwner      bool      `json:"isOwner"`
	APIKey       string    `json:"-"`
	StoreID      string    `json:"userStore,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
