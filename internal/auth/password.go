package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrEmptyCredential = errors.New("missing hash or password")

// dummyHash is compared against when a username does not exist so both
// failure paths cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.MinCost)

func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyCredential
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func ComparePassword(hash, password string) error {
	if hash == "" || password == "" {
		return ErrEmptyCredential
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func DummyCompare(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}
