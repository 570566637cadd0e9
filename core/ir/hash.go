package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/zeebo/blake3"
)

// jsonMarshal is a variable to allow testing of marshal errors.
var jsonMarshal = json.Marshal

// HashBytes computes the SHA-256 hash of bytes and returns it as a hex string.
func HashBytes(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// HashString computes the SHA-256 hash of a string and returns it as a hex string.
func HashString(s string) string {
	return HashBytes([]byte(s))
}

// Blake3Bytes computes the BLAKE3 hash of bytes and returns it as a hex string.
func Blake3Bytes(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}

// HashDocument computes the SHA-256 hash of a Document by serializing it to JSON.
// Documents that differ only in annotation numbering hash differently; hash
// Canonical(d) to compare rendering-equivalent documents.
func HashDocument(d *Document) (string, error) {
	data, err := jsonMarshal(d)
	if err != nil {
		return "", err
	}
	return HashBytes(data), nil
}

// Fingerprint computes the BLAKE3 hash of the canonical form of a Document.
// Two documents with the same fingerprint render identically.
func Fingerprint(d *Document) (string, error) {
	data, err := jsonMarshal(Canonical(d))
	if err != nil {
		return "", err
	}
	return Blake3Bytes(data), nil
}

// HashText computes the SHA-256 hash of the document's plain code text.
func HashText(d *Document) string {
	return HashString(d.Text())
}
