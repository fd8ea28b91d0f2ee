package crypto

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohanmehta-dev/finqueue/common"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestNew_KeyLength(t *testing.T) {
	tests := []struct {
		name    string
		key     []byte
		wantErr bool
	}{
		{name: "32 byte key", key: testKey, wantErr: false},
		{name: "short key", key: []byte("too-short"), wantErr: true},
		{name: "empty key", key: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.key)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, c)
		})
	}
}

func TestCipher_RoundTrip(t *testing.T) {
	c, err := New(testKey)
	require.NoError(t, err)

	payloads := [][]byte{
		[]byte(`{"from":"A1001","to":"A1002","amount":100}`),
		[]byte(""),
		[]byte("not json at all"),
		bytes.Repeat([]byte{0xff}, 4096),
	}

	for _, plaintext := range payloads {
		env, err := c.Encrypt(plaintext)
		require.NoError(t, err)

		got, err := c.Decrypt(env)
		require.NoError(t, err)
		assert.Equal(t, plaintext, got)
	}
}

func TestCipher_FreshNoncePerCall(t *testing.T) {
	c, err := New(testKey)
	require.NoError(t, err)

	env1, err := c.Encrypt([]byte("same plaintext"))
	require.NoError(t, err)
	env2, err := c.Encrypt([]byte("same plaintext"))
	require.NoError(t, err)

	assert.NotEqual(t, env1.IV, env2.IV)
	assert.NotEqual(t, env1.Data, env2.Data)
}

func TestCipher_TamperFailsClosed(t *testing.T) {
	c, err := New(testKey)
	require.NoError(t, err)

	env, err := c.Encrypt([]byte(`{"from":"A1001","amount":100}`))
	require.NoError(t, err)

	flip := func(encoded string) string {
		raw, err := base64.StdEncoding.DecodeString(encoded)
		require.NoError(t, err)
		raw[0] ^= 0x01
		return base64.StdEncoding.EncodeToString(raw)
	}

	tests := []struct {
		name   string
		mutate func(e *Envelope)
	}{
		{name: "tampered ciphertext", mutate: func(e *Envelope) { e.Data = flip(e.Data) }},
		{name: "tampered tag", mutate: func(e *Envelope) { e.Tag = flip(e.Tag) }},
		{name: "tampered nonce", mutate: func(e *Envelope) { e.IV = flip(e.IV) }},
		{name: "truncated tag", mutate: func(e *Envelope) { e.Tag = e.Tag[:4] }},
		{name: "garbage base64", mutate: func(e *Envelope) { e.Data = "!!not-base64!!" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mutated := *env
			tt.mutate(&mutated)

			got, err := c.Decrypt(&mutated)
			require.ErrorIs(t, err, common.ErrDecryption)
			assert.Nil(t, got)
		})
	}
}

func TestCipher_WrongKeyFails(t *testing.T) {
	c1, err := New(testKey)
	require.NoError(t, err)
	c2, err := New([]byte("ffffffffffffffffffffffffffffffff"))
	require.NoError(t, err)

	env, err := c1.Encrypt([]byte("secret"))
	require.NoError(t, err)

	_, err = c2.Decrypt(env)
	require.ErrorIs(t, err, common.ErrDecryption)
}
