package user

// User is an account that can sign in to the board.
type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
}

// Claims identifies the caller behind a validated token.
// Static tokens carry no identity, so both fields may be empty.
type Claims struct {
	UserID int64  `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
}
