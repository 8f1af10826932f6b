package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/chacha20"
)

// sampleLen is the length of the ciphertext sample used for header
// protection.
const sampleLen = 16

// maskLen is the length of a header protection mask.
const maskLen = 5

// HeaderProtectionKey computes header protection masks from ciphertext
// samples.
type HeaderProtectionKey struct {
	alg   Algorithm
	hpKey []byte

	// block is the AES cipher for the AES suites, nil for ChaCha.
	block cipher.Block
}

// NewHeaderProtectionKey builds a header protection key from raw key bytes.
func NewHeaderProtectionKey(alg Algorithm, hpKey []byte) (*HeaderProtectionKey, error) {
	if len(hpKey) != alg.KeyLen() {
		return nil, fmt.Errorf("%w: bad header protection key length %d for %s", ErrCryptoFail, len(hpKey), alg)
	}
	k := &HeaderProtectionKey{alg: alg, hpKey: hpKey}
	if alg != ChaCha20Poly1305 {
		block, err := aes.NewCipher(hpKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCryptoFail, err)
		}
		k.block = block
	}
	return k, nil
}

// HeaderProtectionKeyFromSecret derives the header protection key from a
// traffic secret with the "quic hp" label.
func HeaderProtectionKeyFromSecret(alg Algorithm, secret []byte) (*HeaderProtectionKey, error) {
	hpKey, err := DeriveHeaderKey(alg, secret)
	if err != nil {
		return nil, err
	}
	return NewHeaderProtectionKey(alg, hpKey)
}

// NewMask computes the 5-byte header protection mask for a 16-byte
// ciphertext sample.
func (k *HeaderProtectionKey) NewMask(sample []byte) ([maskLen]byte, error) {
	var mask [maskLen]byte
	if len(sample) != sampleLen {
		return mask, fmt.Errorf("%w: sample must be %d bytes, got %d", ErrCryptoFail, sampleLen, len(sample))
	}
	switch k.alg {
	case AES128GCM, AES256GCM:
		var block [aes.BlockSize]byte
		k.block.Encrypt(block[:], sample)
		copy(mask[:], block[:maskLen])
	case ChaCha20Poly1305:
		counter := binary.LittleEndian.Uint32(sample[:4])
		c, err := chacha20.NewUnauthenticatedCipher(k.hpKey, sample[4:sampleLen])
		if err != nil {
			return mask, fmt.Errorf("%w: %v", ErrCryptoFail, err)
		}
		c.SetCounter(counter)
		c.XORKeyStream(mask[:], mask[:])
	}
	return mask, nil
}

// PacketKey is the AEAD key and IV protecting packet payloads.
type PacketKey struct {
	aead  cipher.AEAD
	nonce []byte
}

// NewPacketKey builds a packet key from raw key and IV bytes.
func NewPacketKey(alg Algorithm, key, iv []byte) (*PacketKey, error) {
	aead, err := alg.newAEAD(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != alg.NonceLen() {
		return nil, fmt.Errorf("%w: bad IV length %d for %s", ErrCryptoFail, len(iv), alg)
	}
	return &PacketKey{aead: aead, nonce: iv}, nil
}

// PacketKeyFromSecret derives the packet key and IV from a traffic secret
// with the "quic key" and "quic iv" labels.
func PacketKeyFromSecret(alg Algorithm, secret []byte) (*PacketKey, error) {
	key, err := DerivePacketKey(alg, secret)
	if err != nil {
		return nil, err
	}
	iv, err := DerivePacketIV(alg, secret)
	if err != nil {
		return nil, err
	}
	return NewPacketKey(alg, key, iv)
}

// Open holds the keys for removing packet protection in one direction.
type Open struct {
	alg    Algorithm
	secret []byte
	header *HeaderProtectionKey
	packet *PacketKey
}

// NewOpen builds opening keys from explicit key material.
func NewOpen(alg Algorithm, key, iv, hpKey, secret []byte) (*Open, error) {
	header, err := NewHeaderProtectionKey(alg, hpKey)
	if err != nil {
		return nil, err
	}
	packet, err := NewPacketKey(alg, key, iv)
	if err != nil {
		return nil, err
	}
	return &Open{alg: alg, secret: secret, header: header, packet: packet}, nil
}

// OpenFromSecret derives opening keys from a traffic secret.
func OpenFromSecret(alg Algorithm, secret []byte) (*Open, error) {
	header, err := HeaderProtectionKeyFromSecret(alg, secret)
	if err != nil {
		return nil, err
	}
	packet, err := PacketKeyFromSecret(alg, secret)
	if err != nil {
		return nil, err
	}
	return &Open{alg: alg, secret: secret, header: header, packet: packet}, nil
}

// Alg returns the AEAD algorithm.
func (o *Open) Alg() Algorithm { return o.alg }

// OpenWithCounter authenticates and decrypts a packet payload. The counter
// is the full packet number, ad is the packet header.
func (o *Open) OpenWithCounter(counter uint64, ad, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < o.alg.TagLen() {
		return nil, fmt.Errorf("%w: ciphertext shorter than tag", ErrCryptoFail)
	}
	nonce := makeNonce(o.packet.nonce, counter)
	plain, err := o.packet.aead.Open(nil, nonce, ciphertext, ad)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCryptoFail, err)
	}
	return plain, nil
}

// NewMask computes the header protection mask for a ciphertext sample.
func (o *Open) NewMask(sample []byte) ([maskLen]byte, error) {
	return o.header.NewMask(sample)
}

// DeriveNextPacketKey rotates the packet key for a key update. The header
// protection key is retained, per RFC 9001 section 6.
func (o *Open) DeriveNextPacketKey() (*Open, error) {
	nextSecret, err := deriveNextSecret(o.alg, o.secret)
	if err != nil {
		return nil, err
	}
	packet, err := PacketKeyFromSecret(o.alg, nextSecret)
	if err != nil {
		return nil, err
	}
	return &Open{alg: o.alg, secret: nextSecret, header: o.header, packet: packet}, nil
}

// Seal holds the keys for applying packet protection in one direction.
type Seal struct {
	alg    Algorithm
	secret []byte
	header *HeaderProtectionKey
	packet *PacketKey
}

// NewSeal builds sealing keys from explicit key material.
func NewSeal(alg Algorithm, key, iv, hpKey, secret []byte) (*Seal, error) {
	header, err := NewHeaderProtectionKey(alg, hpKey)
	if err != nil {
		return nil, err
	}
	packet, err := NewPacketKey(alg, key, iv)
	if err != nil {
		return nil, err
	}
	return &Seal{alg: alg, secret: secret, header: header, packet: packet}, nil
}

// SealFromSecret derives sealing keys from a traffic secret.
func SealFromSecret(alg Algorithm, secret []byte) (*Seal, error) {
	header, err := HeaderProtectionKeyFromSecret(alg, secret)
	if err != nil {
		return nil, err
	}
	packet, err := PacketKeyFromSecret(alg, secret)
	if err != nil {
		return nil, err
	}
	return &Seal{alg: alg, secret: secret, header: header, packet: packet}, nil
}

// Alg returns the AEAD algorithm.
func (s *Seal) Alg() Algorithm { return s.alg }

// SealWithCounter encrypts and authenticates a packet payload. The counter
// is the full packet number, ad is the packet header. The result is the
// ciphertext followed by the AEAD tag.
func (s *Seal) SealWithCounter(counter uint64, ad, plaintext []byte) []byte {
	nonce := makeNonce(s.packet.nonce, counter)
	return s.packet.aead.Seal(nil, nonce, plaintext, ad)
}

// NewMask computes the header protection mask for a ciphertext sample.
func (s *Seal) NewMask(sample []byte) ([maskLen]byte, error) {
	return s.header.NewMask(sample)
}

// DeriveNextPacketKey rotates the packet key for a key update. The header
// protection key is retained, per RFC 9001 section 6.
func (s *Seal) DeriveNextPacketKey() (*Seal, error) {
	nextSecret, err := deriveNextSecret(s.alg, s.secret)
	if err != nil {
		return nil, err
	}
	packet, err := PacketKeyFromSecret(s.alg, nextSecret)
	if err != nil {
		return nil, err
	}
	return &Seal{alg: s.alg, secret: nextSecret, header: s.header, packet: packet}, nil
}
