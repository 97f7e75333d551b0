// Package auth implements the login gate in front of the packet workflow.
package auth

import (
	"golang.org/x/crypto/bcrypt"

	"welcome-packet-service/internal/common/config"
	apperrors "welcome-packet-service/internal/common/errors"
)

// User is the authenticated identity handed to the session store.
type User struct {
	Username string
	Name     string
	Email    string
}

type Authenticator struct {
	users map[string]config.UserCredential
}

func NewAuthenticator(users map[string]config.UserCredential) *Authenticator {
	return &Authenticator{users: users}
}

// Verify checks a username/password pair against the configured user
// table. Unknown users and wrong passwords are indistinguishable to the
// caller.
func (a *Authenticator) Verify(username, password string) (*User, error) {
	cred, ok := a.users[username]
	if !ok {
		// Burn a comparison anyway so unknown users cost the same.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$0000000000000000000000000000000000000000000000000000"), []byte(password))
		return nil, apperrors.NewLoginFailedError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.NewLoginFailedError()
	}

	return &User{
		Username: username,
		Name:     cred.Name,
		Email:    cred.Email,
	}, nil
}
