package cipher

import (
	"bytes"
	"crypto/aes"
	gocipher "crypto/cipher"
	"crypto/md5"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"strings"

	ferrors "github.com/thorgate/flint/internal/errors"
)

// Digest names the hash used by the key derivation.
type Digest string

const (
	MD5    Digest = "MD5"
	SHA256 Digest = "SHA256"
)

const (
	saltLen   = 8
	keyLen    = 32
	lineWidth = 60
)

var magic = []byte("Salted__")

// Result reports how an artifact was decrypted.
type Result struct {
	// Digest is the digest that produced a valid plaintext.
	Digest Digest
	// Attempts is 1 when the requested digest worked and 2 when the
	// alternate one had to be used.
	Attempts int
}

// Codec seals and opens artifacts. The zero value encrypts with MD5 and
// reads salt from crypto/rand.
type Codec struct {
	// Digest used for encryption. Defaults to MD5.
	Digest Digest
	// Rand is the salt source. Defaults to crypto/rand.Reader.
	Rand io.Reader
}

// New returns a codec with the legacy-compatible defaults.
func New() *Codec {
	return &Codec{Digest: MD5, Rand: rand.Reader}
}

func (c *Codec) digest() Digest {
	if c == nil || c.Digest == "" {
		return MD5
	}
	return c.Digest
}

func (c *Codec) random() io.Reader {
	if c == nil || c.Rand == nil {
		return rand.Reader
	}
	return c.Rand
}

// Seal encrypts plaintext and returns the base64 text that is stored on disk.
func (c *Codec) Seal(plaintext []byte, password string) ([]byte, error) {
	if strings.TrimSpace(password) == "" {
		return nil, ferrors.ErrEmptyPassword
	}

	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(c.random(), salt); err != nil {
		return nil, fmt.Errorf("%w: reading salt: %v", ferrors.ErrEncryptFailed, err)
	}

	key, iv := deriveKeyIV(c.digest(), []byte(password), salt)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ferrors.ErrEncryptFailed, err)
	}

	padded := pad(plaintext, aes.BlockSize)
	out := make([]byte, len(magic)+saltLen+len(padded))
	copy(out, magic)
	copy(out[len(magic):], salt)
	gocipher.NewCBCEncrypter(block, iv).CryptBlocks(out[len(magic)+saltLen:], padded)

	return encode64(out), nil
}

// Open decrypts data produced by Seal (or by openssl). It tries digest
// first and the other supported digest second.
func (c *Codec) Open(data []byte, password string, digest Digest) ([]byte, Result, error) {
	raw, err := decode64(data)
	if err != nil {
		return nil, Result{}, fmt.Errorf("%w: not base64: %v", ferrors.ErrDecryptFailed, err)
	}

	var lastErr error
	candidates := Candidates(digest)
	for i, d := range candidates {
		plaintext, err := open(raw, []byte(password), d)
		if err == nil {
			return plaintext, Result{Digest: d, Attempts: i + 1}, nil
		}
		lastErr = err
	}

	return nil, Result{Attempts: len(candidates)}, fmt.Errorf("%w: %v", ferrors.ErrDecryptFailed, lastErr)
}

// EncryptFile replaces the file at path with its encrypted form.
func (c *Codec) EncryptFile(path, password string) error {
	plaintext, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	sealed, err := c.Seal(plaintext, password)
	if err != nil {
		return fmt.Errorf("encrypting %s: %w", filepath.Base(path), err)
	}
	return WriteFile(path, sealed)
}

// DecryptFile replaces the encrypted file at path with its plaintext. The
// file is left untouched when decryption fails.
func (c *Codec) DecryptFile(path, password string, digest Digest) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("reading %s: %w", path, err)
	}
	plaintext, res, err := c.Open(data, password, digest)
	if err != nil {
		return res, fmt.Errorf("decrypting %s: %w", filepath.Base(path), err)
	}
	return res, WriteFile(path, plaintext)
}

// Candidates returns the digests tried for decryption, in order: the
// requested one, then the alternate. An unknown digest falls back to MD5.
func Candidates(first Digest) []Digest {
	switch first {
	case SHA256:
		return []Digest{SHA256, MD5}
	default:
		return []Digest{MD5, SHA256}
	}
}

func open(raw, password []byte, d Digest) ([]byte, error) {
	if len(raw) < len(magic)+saltLen || !bytes.Equal(raw[:len(magic)], magic) {
		return nil, fmt.Errorf("missing salt header")
	}
	salt := raw[len(magic) : len(magic)+saltLen]
	body := raw[len(magic)+saltLen:]
	if len(body) == 0 || len(body)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("ciphertext is not a multiple of the block size")
	}

	key, iv := deriveKeyIV(d, password, salt)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(body))
	gocipher.NewCBCDecrypter(block, iv).CryptBlocks(out, body)
	return unpad(out, aes.BlockSize)
}

// deriveKeyIV implements EVP_BytesToKey with one iteration:
// D_i = H(D_{i-1} || password || salt), concatenated until key and IV are filled.
func deriveKeyIV(d Digest, password, salt []byte) ([]byte, []byte) {
	var newHash func() hash.Hash
	switch d {
	case SHA256:
		newHash = sha256.New
	default:
		newHash = md5.New
	}

	need := keyLen + aes.BlockSize
	var derived, prev []byte
	for len(derived) < need {
		h := newHash()
		h.Write(prev)
		h.Write(password)
		h.Write(salt)
		prev = h.Sum(nil)
		derived = append(derived, prev...)
	}
	return derived[:keyLen], derived[keyLen:need]
}

func pad(b []byte, size int) []byte {
	n := size - len(b)%size
	out := make([]byte, len(b)+n)
	copy(out, b)
	for i := len(b); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

func unpad(b []byte, size int) ([]byte, error) {
	n := int(b[len(b)-1])
	if n == 0 || n > size || n > len(b) {
		return nil, fmt.Errorf("bad decrypt")
	}
	for _, v := range b[len(b)-n:] {
		if int(v) != n {
			return nil, fmt.Errorf("bad decrypt")
		}
	}
	return b[:len(b)-n], nil
}

func encode64(raw []byte) []byte {
	enc := base64.StdEncoding.EncodeToString(raw)
	var b bytes.Buffer
	for len(enc) > lineWidth {
		b.WriteString(enc[:lineWidth])
		b.WriteByte('\n')
		enc = enc[lineWidth:]
	}
	b.WriteString(enc)
	b.WriteByte('\n')
	return b.Bytes()
}

func decode64(data []byte) ([]byte, error) {
	compact := bytes.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, data)
	return base64.StdEncoding.DecodeString(string(compact))
}
