package crypto

import (
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// ProtocolVersionV1 is the QUIC version 1 wire value.
const ProtocolVersionV1 uint32 = 0x00000001

// initialSaltV1 is the HKDF salt for version 1 Initial secrets
// (RFC 9001 section 5.2).
var initialSaltV1 = []byte{
	0x38, 0x76, 0x2c, 0xf7, 0xf5, 0x59, 0x34, 0xb3, 0x4d, 0x17, 0x9a, 0xe6,
	0xa4, 0xc8, 0x0c, 0xad, 0xcc, 0xbb, 0x7f, 0x0a,
}

// hkdfExpandLabel implements the TLS 1.3 HKDF-Expand-Label construction
// (RFC 8446 section 7.1) on top of an extracted pseudorandom key.
func hkdfExpandLabel(alg Algorithm, prk, label []byte, length int) ([]byte, error) {
	const labelPrefix = "tls13 "

	if length > 255*alg.prkLen() {
		return nil, fmt.Errorf("%w: expand length %d too large", ErrCryptoFail, length)
	}

	info := make([]byte, 0, 2+1+len(labelPrefix)+len(label)+1)
	info = append(info, byte(length>>8), byte(length))
	info = append(info, byte(len(labelPrefix)+len(label)))
	info = append(info, labelPrefix...)
	info = append(info, label...)
	info = append(info, 0)

	out := make([]byte, length)
	if _, err := io.ReadFull(hkdf.Expand(alg.newHash(), prk, info), out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCryptoFail, err)
	}
	return out, nil
}

// DerivePacketKey derives the AEAD key from a traffic secret ("quic key").
func DerivePacketKey(alg Algorithm, secret []byte) ([]byte, error) {
	return hkdfExpandLabel(alg, secret, []byte("quic key"), alg.KeyLen())
}

// DerivePacketIV derives the AEAD IV from a traffic secret ("quic iv").
func DerivePacketIV(alg Algorithm, secret []byte) ([]byte, error) {
	return hkdfExpandLabel(alg, secret, []byte("quic iv"), alg.NonceLen())
}

// DeriveHeaderKey derives the header protection key from a traffic secret
// ("quic hp").
func DeriveHeaderKey(alg Algorithm, secret []byte) ([]byte, error) {
	return hkdfExpandLabel(alg, secret, []byte("quic hp"), alg.KeyLen())
}

// deriveNextSecret computes the key-update secret ("quic ku").
func deriveNextSecret(alg Algorithm, secret []byte) ([]byte, error) {
	return hkdfExpandLabel(alg, secret, []byte("quic ku"), len(secret))
}

// deriveInitialSecret extracts the common Initial secret from the client's
// destination connection ID. Unknown versions use the v1 salt.
func deriveInitialSecret(cid []byte, version uint32) []byte {
	salt := initialSaltV1
	switch version {
	case ProtocolVersionV1:
		salt = initialSaltV1
	}
	return hkdf.Extract(AES128GCM.newHash(), cid, salt)
}

// DeriveInitialKeyMaterial derives the Initial packet protection keys for
// both directions from the client's destination connection ID. The returned
// Open key removes protection from the peer's packets and the Seal key
// protects outgoing ones, according to isServer.
func DeriveInitialKeyMaterial(cid []byte, version uint32, isServer bool) (*Open, *Seal, error) {
	alg := AES128GCM

	initialSecret := deriveInitialSecret(cid, version)

	clientSecret, err := hkdfExpandLabel(alg, initialSecret, []byte("client in"), 32)
	if err != nil {
		return nil, nil, err
	}
	serverSecret, err := hkdfExpandLabel(alg, initialSecret, []byte("server in"), 32)
	if err != nil {
		return nil, nil, err
	}

	openSecret, sealSecret := serverSecret, clientSecret
	if isServer {
		openSecret, sealSecret = clientSecret, serverSecret
	}

	open, err := OpenFromSecret(alg, openSecret)
	if err != nil {
		return nil, nil, err
	}
	seal, err := SealFromSecret(alg, sealSecret)
	if err != nil {
		return nil, nil, err
	}
	return open, seal, nil
}
