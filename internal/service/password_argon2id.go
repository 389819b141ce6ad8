package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

type argon2Params struct {
	iterations uint32
	memory     uint32 // KiB
	threads    uint8
	keyLen     uint32
	saltLen    uint32
}

// Argon2idPasswordService encodes credentials in the common
// $argon2id$v=19$m=...,t=...,p=...$salt$hash form.
type Argon2idPasswordService struct {
	cur argon2Params
}

func NewArgon2idPasswordService() *Argon2idPasswordService {
	return &Argon2idPasswordService{
		cur: argon2Params{
			iterations: 3,
			memory:     64 * 1024, // 64 MiB
			threads:    1,
			keyLen:     32,
			saltLen:    16,
		},
	}
}

func (p *Argon2idPasswordService) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	salt := make([]byte, p.cur.saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(password), salt, p.cur.iterations, p.cur.memory, p.cur.threads, p.cur.keyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.cur.memory, p.cur.iterations, p.cur.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

func (p *Argon2idPasswordService) Verify(password, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return false, ErrMalformedCredential
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, ErrMalformedCredential
	}
	var memory, iterations uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false, ErrMalformedCredential
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, ErrMalformedCredential
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, ErrMalformedCredential
	}
	got := argon2.IDKey([]byte(password), salt, iterations, memory, threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
