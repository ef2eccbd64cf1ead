package uniuri

import (
	"crypto/rand"
	"errors"
	"io"
	"math"
)

const (
	// CodeLen is the default length of an activation code.
	CodeLen = 16
	// SessionLen is the length of a session identifier, about 119 bits of entropy.
	SessionLen = 20
)

var (
	// CodeChars is the alphabet of activation codes: upper case letters and digits
	// without the look-alikes 0, O, 1 and I.
	CodeChars = []byte("ABCDEFGHJKLMNPQRSTUVWXYZ23456789")

	// StdChars is the alphabet of session identifiers.
	StdChars = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789")
)

var (
	// ErrCharsetLength is returned for alphabets with fewer than 2 or more than 256 symbols.
	ErrCharsetLength = errors.New("uniuri: charset must hold between 2 and 256 symbols")
	// ErrNegativeLength is returned when a negative length is requested.
	ErrNegativeLength = errors.New("uniuri: negative length")
)

const (
	maxBufLen      = 2048
	minRegenBufLen = 16
	maxByteValue   = 255
	byteRange      = 256
)

// Generator draws unbiased random strings from an alphabet.
type Generator struct {
	chars  []byte
	length int
	rand   io.Reader
}

// NewGenerator returns a generator of strings with the given length and alphabet,
// reading from crypto/rand.
func NewGenerator(length int, chars []byte) (*Generator, error) {
	if length < 0 {
		return nil, ErrNegativeLength
	}

	if len(chars) < 2 || len(chars) > byteRange {
		return nil, ErrCharsetLength
	}

	return &Generator{chars: chars, length: length, rand: rand.Reader}, nil
}

// Next returns a new random string.
func (g *Generator) Next() (string, error) {
	b, err := readChars(g.rand, g.length, g.chars)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// NewCode returns a random activation code of the given length.
func NewCode(length int) (string, error) {
	g, err := NewGenerator(length, CodeChars)
	if err != nil {
		return "", err
	}

	return g.Next()
}

// NewSessionID returns a random session identifier.
func NewSessionID() (string, error) {
	b, err := readChars(rand.Reader, SessionLen, StdChars)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// estimatedBufLen returns how many random bytes to request when values above maxByte
// are rejected.
func estimatedBufLen(need, maxByte int) int {
	return int(math.Ceil(float64(need) * (maxByteValue / float64(maxByte))))
}

// readChars rejects bytes above the largest multiple of the alphabet size to avoid
// modulo bias.
func readChars(r io.Reader, length int, chars []byte) ([]byte, error) {
	if length == 0 {
		return nil, nil
	}

	clen := len(chars)
	maxRb := maxByteValue - (byteRange % clen)

	bufLen := min(max(estimatedBufLen(length, maxRb), length), maxBufLen)

	buf := make([]byte, bufLen)
	out := make([]byte, length)
	i := 0

	for {
		if _, err := io.ReadFull(r, buf[:bufLen]); err != nil {
			return nil, errors.Join(errors.New("uniuri: reading random bytes"), err)
		}

		for _, rb := range buf[:bufLen] {
			c := int(rb)
			if c > maxRb {
				continue
			}

			out[i] = chars[c%clen]
			i++

			if i == length {
				return out, nil
			}
		}

		bufLen = estimatedBufLen(length-i, maxRb)
		if bufLen < minRegenBufLen && minRegenBufLen < cap(buf) {
			bufLen = minRegenBufLen
		}

		bufLen = min(bufLen, maxBufLen)
	}
}
