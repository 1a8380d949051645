package secret_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mustafasaltik/salesetl/internal/secret"
)

const document = "[postgresql]\nuser=postgres\npassword=secret\nhost=localhost\nport=5432\ndatabase=test_db\n"

func newStore(t *testing.T) *secret.Store {
	t.Helper()

	text, err := secret.GenerateKey()
	require.NoError(t, err)

	store, err := secret.ParseKey(text)
	require.NoError(t, err)
	return store
}

func TestRoundTrip(t *testing.T) {
	store := newStore(t)

	for _, doc := range []string{document, "x", "[s]\nk = v with spaces\n"} {
		blob, err := store.Encrypt([]byte(doc))
		require.NoError(t, err)
		require.NotContains(t, string(blob), "password")

		plain, err := store.Decrypt(blob)
		require.NoError(t, err)
		require.Equal(t, doc, plain)
	}
}

func TestWrongKey(t *testing.T) {
	blob, err := newStore(t).Encrypt([]byte(document))
	require.NoError(t, err)

	for range 5 {
		plain, err := newStore(t).Decrypt(blob)
		require.Error(t, err)
		require.True(t, secret.Error.Has(err))
		require.Empty(t, plain)
	}
}

func TestTamperedBlob(t *testing.T) {
	store := newStore(t)
	blob, err := store.Encrypt([]byte(document))
	require.NoError(t, err)

	tampered := append([]byte(nil), blob...)
	i := len(tampered) / 2
	if tampered[i] == 'A' {
		tampered[i] = 'B'
	} else {
		tampered[i] = 'A'
	}

	_, err = store.Decrypt(tampered)
	require.True(t, secret.Error.Has(err))

	_, err = store.Decrypt([]byte("not a token"))
	require.True(t, secret.Error.Has(err))
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()

	text, err := secret.GenerateKey()
	require.NoError(t, err)
	keyPath := filepath.Join(dir, "secret.key")
	require.NoError(t, os.WriteFile(keyPath, []byte(text+"\n"), 0o600))

	store, err := secret.LoadKey(keyPath)
	require.NoError(t, err)

	blob, err := store.Encrypt([]byte(document))
	require.NoError(t, err)
	blobPath := filepath.Join(dir, "config.ini.enc")
	require.NoError(t, os.WriteFile(blobPath, blob, 0o600))

	plain, err := store.DecryptFile(blobPath)
	require.NoError(t, err)
	require.Equal(t, document, plain)

	_, err = store.DecryptFile(filepath.Join(dir, "absent.enc"))
	require.True(t, secret.Error.Has(err))

	_, err = secret.LoadKey(filepath.Join(dir, "absent.key"))
	require.True(t, secret.Error.Has(err))
}

func TestInvalidKey(t *testing.T) {
	_, err := secret.ParseKey("too-short")
	require.True(t, secret.Error.Has(err))
}
