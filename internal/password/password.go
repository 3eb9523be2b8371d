// Package password provides argon2id hashing for user credentials. The
// stores persist the encoded string verbatim and never inspect it; only this
// package knows the format.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Hasher abstracts hashing so handlers and stores can be tested with a cheap
// fake instead of running argon2 in every test case.
type Hasher interface {
	// Hash derives an encoded hash from a plaintext password.
	Hash(plain string) (string, error)
	// Verify reports whether the plaintext matches the encoded hash. Any
	// parse or derivation failure counts as a mismatch.
	Verify(encoded, plain string) bool
}

const (
	saltBytes = 16
	keyBytes  = 32

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// Argon2 implements Hasher using argon2id with fixed parameters. The encoded
// form follows the reference format so hashes survive parameter changes:
// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
type Argon2 struct{}

// New returns the default Hasher.
func New() *Argon2 {
	return &Argon2{}
}

func (a *Argon2) Hash(plain string) (string, error) {
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(plain), salt, argonTime, argonMemory, argonThreads, keyBytes)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
	return encoded, nil
}

func (a *Argon2) Verify(encoded, plain string) bool {
	salt, key, memory, time, threads, err := decode(encoded)
	if err != nil {
		return false
	}
	candidate := argon2.IDKey([]byte(plain), salt, time, memory, threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, candidate) == 1
}

func decode(encoded string) (salt, key []byte, memory, time uint32, threads uint8, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, nil, 0, 0, 0, errors.New("malformed argon2id hash")
	}

	var version int
	if _, err = fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, 0, 0, 0, err
	}
	if version != argon2.Version {
		return nil, nil, 0, 0, 0, errors.New("unsupported argon2 version")
	}
	if _, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return nil, nil, 0, 0, 0, err
	}

	if salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, nil, 0, 0, 0, err
	}
	if key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return nil, nil, 0, 0, 0, err
	}
	return salt, key, memory, time, threads, nil
}
