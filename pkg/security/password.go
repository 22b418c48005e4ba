package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ErrInvalidHash signals a malformed Argon2id hash string.
var ErrInvalidHash = fmt.Errorf("invalid argon2id hash")

// ArgonParams captures the Argon2id parameters we embed into each hash string.
type ArgonParams struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLen     uint32
	KeyLen      uint32
}

// DefaultParams are used when hashing the admin secret offline.
var DefaultParams = ArgonParams{
	Memory:      64 * 1024,
	Time:        1,
	Parallelism: 2,
	SaltLen:     16,
	KeyLen:      32,
}

// IsHash reports whether encoded looks like a PHC-formatted Argon2id hash.
func IsHash(encoded string) bool {
	_, _, _, err := decodeHash(encoded)
	return err == nil
}

// HashPassword returns a formatted Argon2id hash for the provided password.
func HashPassword(password string, params ArgonParams) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	params = clampParams(params)
	salt := make([]byte, params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Parallelism, params.KeyLen)

	encSalt := base64.RawStdEncoding.EncodeToString(salt)
	encHash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s", params.Memory, params.Time, params.Parallelism, encSalt, encHash), nil
}

// VerifyPassword returns true when the password matches the encoded hash.
func VerifyPassword(password, encoded string) (bool, error) {
	params, salt, hash, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Parallelism, params.KeyLen)

	if subtle.ConstantTimeCompare(hash, computed) == 1 {
		return true, nil
	}
	return false, nil
}

func clampParams(p ArgonParams) ArgonParams {
	return ArgonParams{
		Memory:      clampUint32(int(p.Memory), 8, 512*1024),
		Time:        clampUint32(int(p.Time), 1, 10),
		Parallelism: uint8(clampInt(int(p.Parallelism), 1, 255)),
		SaltLen:     clampUint32(int(p.SaltLen), 8, 64),
		KeyLen:      clampUint32(int(p.KeyLen), 16, 64),
	}
}

// decodeHash parses $argon2id$v=19$m=..,t=..,p=..$salt$hash. Zero costs are
// rejected since argon2 panics on them.
func decodeHash(encoded string) (ArgonParams, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" || parts[2] != "v=19" {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}

	var params ArgonParams
	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}
	if memory == 0 || time == 0 || threads == 0 {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}
	params.Memory, params.Time, params.Parallelism = memory, time, threads

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(hash) == 0 {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}

	params.SaltLen = uint32(len(salt))
	params.KeyLen = uint32(len(hash))
	return params, salt, hash, nil
}

func clampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func clampUint32(value, min, max int) uint32 {
	return uint32(clampInt(value, min, max))
}
