package auth

import "errors"

// Error codes carried in replies.
const (
	CodeCredentialsRequired = "credentials_required"
	CodeInvalidCredentials  = "invalid_credentials"
	CodeMissingToken        = "missing_token"
	CodeInvalidToken        = "invalid_token"
	CodeExpiredToken        = "expired_token"
)

// UserInfo is the public view of a user.
type UserInfo struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the token and user, or an error code.
type LoginResponse struct {
	Token     string    `json:"token,omitempty"`
	User      *UserInfo `json:"user,omitempty"`
	ErrorCode string    `json:"error_code,omitempty"`
}

// ValidateTokenRequest represents a token validation request.
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateTokenResponse represents a token validation response.
type ValidateTokenResponse struct {
	Valid     bool   `json:"valid"`
	UserID    int64  `json:"user_id,omitempty"`
	Email     string `json:"email,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

var codeErrors = map[string]error{
	CodeCredentialsRequired: ErrCredentialsRequired,
	CodeInvalidCredentials:  ErrInvalidCredentials,
	CodeMissingToken:        ErrMissingToken,
	CodeInvalidToken:        ErrInvalidToken,
	CodeExpiredToken:        ErrExpiredToken,
}

// errorCode returns the reply code for an expected auth error.
func errorCode(err error) (string, bool) {
	for code, sentinel := range codeErrors {
		if errors.Is(err, sentinel) {
			return code, true
		}
	}
	return "", false
}

// codeError rebuilds the sentinel for code; unknown codes map to ErrInvalidToken.
func codeError(code string) error {
	if err, ok := codeErrors[code]; ok {
		return err
	}
	return ErrInvalidToken
}
