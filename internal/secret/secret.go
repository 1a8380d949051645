// Package secret decrypts and seals the configuration blob that carries the
// database credentials.
//
// Blobs are Fernet tokens (AES-128-CBC with an HMAC-SHA256 tag), so a blob
// sealed by any Fernet implementation opens here given the same key. The key
// file holds the base64url key text and must live apart from the blob.
package secret

import (
	"bytes"
	"os"
	"strings"

	"github.com/fernet/fernet-go"
	"github.com/zeebo/errs"
)

// Error is the class of decryption and key errors.
var Error = errs.Class("decryption")

// noTTL disables the token age check; sealed configs do not expire.
const noTTL = -1

// Store holds the symmetric key for the lifetime of a run.
type Store struct {
	key *fernet.Key
}

// GenerateKey returns a new random key in its text form.
func GenerateKey() (string, error) {
	var k fernet.Key
	if err := k.Generate(); err != nil {
		return "", Error.Wrap(err)
	}
	return k.Encode(), nil
}

// ParseKey builds a Store from key text.
func ParseKey(text string) (*Store, error) {
	key, err := fernet.DecodeKey(strings.TrimSpace(text))
	if err != nil {
		return nil, Error.New("invalid key: %w", err)
	}
	return &Store{key: key}, nil
}

// LoadKey reads the key file at path.
func LoadKey(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Error.New("read key file: %w", err)
	}
	return ParseKey(string(data))
}

// Encrypt seals plaintext into a blob.
func (s *Store) Encrypt(plaintext []byte) ([]byte, error) {
	blob, err := fernet.EncryptAndSign(plaintext, s.key)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return blob, nil
}

// Decrypt opens a blob. A wrong key and a modified blob both fail
// authentication and return an Error; no partial plaintext is ever returned.
func (s *Store) Decrypt(blob []byte) (string, error) {
	msg := fernet.VerifyAndDecrypt(bytes.TrimSpace(blob), noTTL, []*fernet.Key{s.key})
	if msg == nil {
		return "", Error.New("blob does not authenticate with this key")
	}
	return string(msg), nil
}

// DecryptFile reads and opens the blob at path.
func (s *Store) DecryptFile(path string) (string, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return "", Error.New("read encrypted config: %w", err)
	}
	return s.Decrypt(blob)
}
