package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHashCost is the bcrypt work factor for stored credentials
const PasswordHashCost = 10

// HashPassword will generate a password hash
func HashPassword(password string) (string, error) {
	return Bcrypt{Cost: PasswordHashCost}.HashPassword(password)
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func ComparePasswordAndHash(password, hash string) error {
	return Bcrypt{}.ComparePasswordAndHash(password, hash)
}

// Bcrypt implements PasswordAuthenticator
type Bcrypt struct {
	Cost int
}

var _ PasswordAuthenticator = Bcrypt{}

func (b Bcrypt) HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	cost := b.Cost
	if cost == 0 {
		cost = PasswordHashCost
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrPasswordTooLong
	}
	return string(h), err
}

func (b Bcrypt) ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}
