package service

import "errors"

var (
	ErrEmptyPassword       = errors.New("empty password")
	ErrMalformedCredential = errors.New("malformed password credential")
)

// PasswordService hashes and verifies user credentials. The encoded form
// carries the parameters used at hash time so verification replays the
// same cost.
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}
