// Package keycodec maps content identifiers to object-store keys and back.
//
// The repository layer hands the backend opaque identifiers (content hashes
// or uuid4 tokens); the codec turns them into bucket keys under an optional
// prefix, and recognizes keys it did not produce so enumeration can skip
// foreign objects placed in the bucket by other tools. Encode and Decode are
// pure functions with no I/O.
package keycodec

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedKey indicates a bucket key that was not produced by Encode.
// Enumeration treats these as foreign objects and skips them; the error is
// never fatal.
var ErrMalformedKey = errors.New("malformed key")

// MaxIdentifierLength bounds identifier size. Content hashes and uuid4
// tokens are far below this; the bound only rejects garbage.
const MaxIdentifierLength = 512

// Codec converts between identifiers and object keys within one container.
//
// The zero value is usable and maps identifiers to keys unchanged.
type Codec struct {
	// Prefix is prepended to every key, scoping the backend's objects when
	// a bucket is shared. Must be empty or end with "/".
	Prefix string
}

// New creates a codec for the given key prefix. A non-empty prefix is
// normalized to end with "/".
func New(prefix string) (*Codec, error) {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	if strings.HasPrefix(prefix, "/") {
		return nil, fmt.Errorf("keycodec: prefix must be relative, got %q", prefix)
	}
	return &Codec{Prefix: prefix}, nil
}

// Encode returns the object key for an identifier.
//
// Deterministic and injective: the same identifier always yields the same
// key, distinct identifiers yield distinct keys. The identifier itself
// carries collision resistance (it is typically a content hash), so no
// hashing happens here.
func (c *Codec) Encode(identifier string) string {
	return c.Prefix + identifier
}

// Decode returns the identifier for an object key produced by Encode.
//
// Keys outside the codec's prefix or with an identifier part that fails
// Validate return ErrMalformedKey.
func (c *Codec) Decode(key string) (string, error) {
	identifier, ok := strings.CutPrefix(key, c.Prefix)
	if !ok {
		return "", fmt.Errorf("%w: %q lacks prefix %q", ErrMalformedKey, key, c.Prefix)
	}
	if err := Validate(identifier); err != nil {
		return "", err
	}
	return identifier, nil
}

// Validate reports whether an identifier has the shape the codec accepts:
// 1 to MaxIdentifierLength characters of [A-Za-z0-9._-]. This covers uuid4
// tokens and hex content hashes while rejecting path separators, so keys
// written by other tools under nested prefixes never decode.
func Validate(identifier string) error {
	if identifier == "" {
		return fmt.Errorf("%w: empty identifier", ErrMalformedKey)
	}
	if len(identifier) > MaxIdentifierLength {
		return fmt.Errorf("%w: identifier exceeds %d characters", ErrMalformedKey, MaxIdentifierLength)
	}
	for i := 0; i < len(identifier); i++ {
		if !isIdentifierByte(identifier[i]) {
			return fmt.Errorf("%w: invalid character %q in identifier", ErrMalformedKey, identifier[i])
		}
	}
	return nil
}

func isIdentifierByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	case b == '.', b == '_', b == '-':
		return true
	}
	return false
}
