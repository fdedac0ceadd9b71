package domain

import "time"

type Store struct {
	ID          string    `json:"id"`
	Title       string    `json:"storeTitle"`
	Address     string    `json:"storeAddress,omitempty"`
	Description string    `json:"storeDescription,omitempty"`
	AddedAt     time.Time `json:"storeAddedDate"`
}
