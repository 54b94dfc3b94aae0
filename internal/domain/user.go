package domain

// User represents an account in the system.
//
// The first user ever registered is granted the admin flag implicitly;
// every later grant is an explicit toggle by another admin. Usernames are
// case-sensitive and unique by an existence check at registration time.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	// Stored as an encoded argon2id hash, filter from API responses.
	PasswordHash string `json:"password_hash,omitempty"`
	IsAdmin      bool   `json:"is_admin"`
	Timestamps
}

// Identity is the resolved principal of a session. It is constructed once
// at session-resolution time and passed by value to every operation, so
// services never reach back into the request for who is acting.
type Identity struct {
	ID       string
	Username string
	IsAdmin  bool
}

// IdentityOf derives the identity value for a user record.
func IdentityOf(u *User) Identity {
	return Identity{
		ID:       u.ID,
		Username: u.Username,
		IsAdmin:  u.IsAdmin,
	}
}
