package sqlite

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"
	"os"
	"sort"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters (OWASP-recommended baseline).
const (
	argon2Time    = 3
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2KeyLen  = 32

	saltLength  = 16
	nonceLength = 12
)

// MasterKeySource supplies the vault's master key. EnvMasterKeySource is
// the default; callers needing an interactive prompt or a secrets-manager
// lookup implement their own.
type MasterKeySource interface {
	GetMasterKey() ([]byte, error)
}

// DefaultMasterKeyEnvVar is read by EnvMasterKeySource.
const DefaultMasterKeyEnvVar = "IRIS_KEYVAULT_KEY"

// EnvMasterKeySource reads the master key from an environment variable.
type EnvMasterKeySource struct {
	EnvVar string
}

func (s EnvMasterKeySource) GetMasterKey() ([]byte, error) {
	envVar := s.EnvVar
	if envVar == "" {
		envVar = DefaultMasterKeyEnvVar
	}
	key := os.Getenv(envVar)
	if key == "" {
		return nil, errors.New("master key not found in environment variable " + envVar)
	}
	return []byte(key), nil
}

// KeyVault wraps a Store with per-value AES-256-GCM encryption, keyed by an
// Argon2id-derived key unique to each stored row (a fresh random salt per
// Set call, carried alongside the ciphertext). This is the same encryption
// scheme the teacher's CLI keystore used for its on-disk file; here it
// protects one BLOB column per provider instead of a whole file.
type KeyVault struct {
	store     *Store
	masterKey []byte
}

// NewKeyVault derives and holds the master key up front so every
// Get/Set/Delete call only needs to do the Argon2id derivation, not also
// resolve the source.
func NewKeyVault(store *Store, source MasterKeySource) (*KeyVault, error) {
	key, err := source.GetMasterKey()
	if err != nil {
		return nil, err
	}
	return &KeyVault{store: store, masterKey: key}, nil
}

// GetKey decrypts and returns provider's stored key. ok is false, with a
// nil error, when no row exists.
func (v *KeyVault) GetKey(ctx context.Context, provider string) (string, bool, error) {
	var ciphertext []byte
	err := v.store.read.QueryRowContext(ctx, `SELECT ciphertext FROM key_vault WHERE provider = ?`, provider).Scan(&ciphertext)
	if err != nil {
		if isNoRows(err) {
			return "", false, nil
		}
		return "", false, err
	}

	plaintext, err := v.decrypt(ciphertext)
	if err != nil {
		return "", false, err
	}
	return string(plaintext), true, nil
}

// SetKey encrypts value and upserts it for provider.
func (v *KeyVault) SetKey(ctx context.Context, provider, value string) error {
	ciphertext, err := v.encrypt([]byte(value))
	if err != nil {
		return err
	}
	_, err = v.store.write.ExecContext(ctx, `
		INSERT INTO key_vault (provider, ciphertext) VALUES (?, ?)
		ON CONFLICT(provider) DO UPDATE SET ciphertext = excluded.ciphertext
	`, provider, ciphertext)
	return err
}

// DeleteKey removes provider's stored key, if any.
func (v *KeyVault) DeleteKey(ctx context.Context, provider string) error {
	_, err := v.store.write.ExecContext(ctx, `DELETE FROM key_vault WHERE provider = ?`, provider)
	return err
}

// ListProviders returns every provider with a stored key, sorted.
func (v *KeyVault) ListProviders(ctx context.Context) ([]string, error) {
	rows, err := v.store.read.QueryContext(ctx, `SELECT provider FROM key_vault`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var providers []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	sort.Strings(providers)
	return providers, rows.Err()
}

// encrypt derives a fresh Argon2id key from a random salt and seals
// plaintext with AES-256-GCM. Layout: [salt(16)][nonce(12)][ciphertext].
func (v *KeyVault) encrypt(plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	key := argon2.IDKey(v.masterKey, salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	out := make([]byte, 0, saltLength+nonceLength+len(plaintext)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, salt), nil
}

func (v *KeyVault) decrypt(blob []byte) ([]byte, error) {
	if len(blob) < saltLength+nonceLength {
		return nil, errors.New("keyvault: ciphertext too short")
	}
	salt := blob[:saltLength]
	nonce := blob[saltLength : saltLength+nonceLength]
	ciphertext := blob[saltLength+nonceLength:]

	key := argon2.IDKey(v.masterKey, salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return gcm.Open(nil, nonce, ciphertext, salt)
}
