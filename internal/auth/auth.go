// Package auth holds password hashing and the admin credential check.
package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares a password against a bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// VerifyLogin reports whether the provided credentials match the
// configured admin identity. Both checks always run, and access is
// granted only when every check passed. The raw password is never
// compared directly; it only goes through the bcrypt check.
func VerifyLogin(username, password, wantUsername, wantPasswordHash string) bool {
	usernameOK := subtle.ConstantTimeCompare([]byte(username), []byte(wantUsername)) == 1
	passwordOK := CheckPassword(password, wantPasswordHash)
	return usernameOK && passwordOK
}
