package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// SchemaHash fingerprints an ordered column list.
type SchemaHash Hash

func (h SchemaHash) String() string { return Hash(h).String() }

// ComputeSchemaHash hashes column names in order; reordering columns changes the hash.
func ComputeSchemaHash(columns []string) SchemaHash {
	var data strings.Builder
	for _, col := range columns {
		data.WriteString(col)
		data.WriteByte(0)
	}
	return SchemaHash(NewHash([]byte(data.String())))
}
