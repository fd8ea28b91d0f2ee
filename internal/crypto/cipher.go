package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/rohanmehta-dev/finqueue/common"
)

const nonceLength = 12

// Envelope is the persisted form of an encrypted payload: nonce,
// authentication tag and ciphertext, each base64-encoded. The key itself
// never touches the store.
type Envelope struct {
	IV   string `json:"iv"`
	Tag  string `json:"tag"`
	Data string `json:"data"`
}

// Cipher performs AES-256-GCM encryption of job payloads with a fresh
// random nonce per call.
type Cipher struct {
	aead cipher.AEAD
}

// New builds a Cipher from a 32-byte key.
func New(key []byte) (*Cipher, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}

	return &Cipher{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh nonce and splits the result into
// ciphertext and authentication tag.
func (c *Cipher) Encrypt(plaintext []byte) (*Envelope, error) {
	nonce := make([]byte, nonceLength)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nil, nonce, plaintext, nil)
	tagStart := len(sealed) - c.aead.Overhead()

	return &Envelope{
		IV:   base64.StdEncoding.EncodeToString(nonce),
		Tag:  base64.StdEncoding.EncodeToString(sealed[tagStart:]),
		Data: base64.StdEncoding.EncodeToString(sealed[:tagStart]),
	}, nil
}

// Decrypt opens an envelope and verifies its authentication tag. It fails
// closed: any tamper or corruption yields common.ErrDecryption and no
// plaintext.
func (c *Cipher) Decrypt(env *Envelope) ([]byte, error) {
	nonce, err := base64.StdEncoding.DecodeString(env.IV)
	if err != nil || len(nonce) != nonceLength {
		return nil, fmt.Errorf("%w: bad nonce", common.ErrDecryption)
	}

	data, err := base64.StdEncoding.DecodeString(env.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: bad ciphertext", common.ErrDecryption)
	}

	tag, err := base64.StdEncoding.DecodeString(env.Tag)
	if err != nil || len(tag) != c.aead.Overhead() {
		return nil, fmt.Errorf("%w: bad tag", common.ErrDecryption)
	}

	plaintext, err := c.aead.Open(nil, nonce, append(data, tag...), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: authentication failed", common.ErrDecryption)
	}

	return plaintext, nil
}
