package types

import "time"

// Admin is a dashboard user. Passwords are stored as bcrypt hashes; login
// is a plain session-cookie flow.
type Admin struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}
