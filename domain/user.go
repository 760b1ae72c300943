package domain

import "time"

// User is the account entity backing both authentication and the
// sender-to-username join on chat reads.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
