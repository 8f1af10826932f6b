// Package crypto implements QUIC packet protection: key derivation from TLS
// secrets, AEAD sealing and opening keyed per packet number, and header
// protection masks (RFC 9001).
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrCryptoFail is returned for any cryptographic failure: bad key sizes,
// AEAD authentication failures, malformed samples.
var ErrCryptoFail = errors.New("crypto: operation failed")

// Level is the encryption level of a packet.
type Level int

// Encryption levels, in handshake order.
const (
	LevelInitial Level = iota
	LevelZeroRTT
	LevelHandshake
	LevelOneRTT
)

func (l Level) String() string {
	switch l {
	case LevelInitial:
		return "initial"
	case LevelZeroRTT:
		return "0rtt"
	case LevelHandshake:
		return "handshake"
	case LevelOneRTT:
		return "1rtt"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// Algorithm selects the AEAD and the hash of the key schedule.
type Algorithm int

// Supported AEAD algorithms.
const (
	AES128GCM Algorithm = iota
	AES256GCM
	ChaCha20Poly1305
)

func (a Algorithm) String() string {
	switch a {
	case AES128GCM:
		return "AES128-GCM"
	case AES256GCM:
		return "AES256-GCM"
	case ChaCha20Poly1305:
		return "ChaCha20-Poly1305"
	}
	return fmt.Sprintf("algorithm(%d)", int(a))
}

// KeyLen returns the AEAD key length in bytes.
func (a Algorithm) KeyLen() int {
	switch a {
	case AES128GCM:
		return 16
	default:
		return 32
	}
}

// TagLen returns the AEAD tag length in bytes.
func (a Algorithm) TagLen() int { return 16 }

// NonceLen returns the AEAD nonce length in bytes.
func (a Algorithm) NonceLen() int { return 12 }

// prkLen returns the output length of the key-schedule hash.
func (a Algorithm) prkLen() int {
	if a == AES256GCM {
		return 48
	}
	return 32
}

// newHash returns the hash of the TLS cipher suite this algorithm belongs
// to: SHA-384 for AES-256, SHA-256 otherwise.
func (a Algorithm) newHash() func() hash.Hash {
	if a == AES256GCM {
		return sha512.New384
	}
	return sha256.New
}

// newAEAD builds the AEAD for key.
func (a Algorithm) newAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != a.KeyLen() {
		return nil, fmt.Errorf("%w: bad key length %d for %s", ErrCryptoFail, len(key), a)
	}
	switch a {
	case AES128GCM, AES256GCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCryptoFail, err)
		}
		aead, err := cipher.NewGCM(block)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCryptoFail, err)
		}
		return aead, nil
	case ChaCha20Poly1305:
		aead, err := chacha20poly1305.New(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCryptoFail, err)
		}
		return aead, nil
	}
	return nil, fmt.Errorf("%w: unknown algorithm %d", ErrCryptoFail, int(a))
}

// makeNonce XORs the trailing bytes of the IV with the big-endian packet
// counter, which is equivalent to left-padding the counter with zeros.
func makeNonce(iv []byte, counter uint64) []byte {
	nonce := make([]byte, len(iv))
	copy(nonce, iv)
	for i := 0; i < 8; i++ {
		nonce[len(nonce)-1-i] ^= byte(counter >> (8 * i))
	}
	return nonce
}
