package idgen

import (
	"crypto/rand"
	"errors"
)

const base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// bytes >= base62Limit are rejected so every character is equally likely.
const base62Limit = 256 - 256%len(base62Chars)

type base62Gen struct {
	length int
}

// NewBase62 returns a Generator producing random base62 strings of the given length.
func NewBase62(length int) Generator {
	return &base62Gen{length: length}
}

func (g *base62Gen) Generate() (string, error) {
	return RandomBase62(g.length)
}

// RandomBase62 returns a cryptographically random base62 string.
func RandomBase62(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("length must be positive")
	}

	out := make([]byte, 0, length)
	buf := make([]byte, length+length/4+1)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= base62Limit {
				continue
			}
			out = append(out, base62Chars[int(b)%len(base62Chars)])
			if len(out) == length {
				break
			}
		}
	}

	return string(out), nil
}
