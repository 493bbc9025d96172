// Package cryptox holds the hashing used to address checker revisions and
// repository index entries.
package cryptox

import (
	"crypto/sha1"
	"encoding/hex"
	"time"

	"golang.org/x/crypto/blake2b"
)

// RefStateInput is everything a revision's address is derived from.
type RefStateInput struct {
	Parent      string
	Message     string
	AuthorName  string
	AuthorEmail string
	CommittedAt time.Time
	Content     []byte
}

// RefState returns the hex encoded BLAKE2b-256 digest of in. Fields are
// separated by a zero byte so that adjacent fields cannot run into each
// other.
func RefState(in RefStateInput) string {
	h, _ := blake2b.New256(nil) // only fails for keys longer than 64 bytes
	for _, part := range [][]byte{
		[]byte(in.Parent),
		[]byte(in.Message),
		[]byte(in.AuthorName),
		[]byte(in.AuthorEmail),
		[]byte(in.CommittedAt.UTC().Format(time.RFC3339Nano)),
		in.Content,
	} {
		h.Write(part)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// RepositoryHash returns the stable key of a repository in the
// checkers-by-repository index: the hex SHA-1 of its UTF-8 name.
func RepositoryHash(name string) string {
	sum := sha1.Sum([]byte(name))
	return hex.EncodeToString(sum[:])
}
