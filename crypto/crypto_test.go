package crypto

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex %q: %v", s, err)
	}
	return b
}

// Key derivation vectors from RFC 9001, appendix A.1.
func TestInitialSecrets(t *testing.T) {
	cid := mustHex(t, "8394c8f03e515708")
	initialSecret := deriveInitialSecret(cid, ProtocolVersionV1)

	clientSecret, err := hkdfExpandLabel(AES128GCM, initialSecret, []byte("client in"), 32)
	if err != nil {
		t.Fatalf("client in: %v", err)
	}
	wantClient := mustHex(t, "c00cf151ca5be075ed0ebfb5c80323c42d6b7db67881289af4008f1f6c357aea")
	if !bytes.Equal(clientSecret, wantClient) {
		t.Errorf("client initial secret = %x, want %x", clientSecret, wantClient)
	}

	serverSecret, err := hkdfExpandLabel(AES128GCM, initialSecret, []byte("server in"), 32)
	if err != nil {
		t.Fatalf("server in: %v", err)
	}
	wantServer := mustHex(t, "3c199828fd139efd216c155ad844cc81fb82fa8d7446fa7d78be803acdda951b")
	if !bytes.Equal(serverSecret, wantServer) {
		t.Errorf("server initial secret = %x, want %x", serverSecret, wantServer)
	}

	tests := []struct {
		name   string
		secret []byte
		derive func(Algorithm, []byte) ([]byte, error)
		want   string
	}{
		{"client key", clientSecret, DerivePacketKey, "1f369613dd76d5467730efcbe3b1a22d"},
		{"client iv", clientSecret, DerivePacketIV, "fa044b2f42a3fd3b46fb255c"},
		{"client hp", clientSecret, DeriveHeaderKey, "9f50449e04a0e810283a1e9933adedd2"},
		{"server key", serverSecret, DerivePacketKey, "cf3a5331653c364c88f0f379b6067e37"},
		{"server iv", serverSecret, DerivePacketIV, "0ac1493ca1905853b0bba03e"},
		{"server hp", serverSecret, DeriveHeaderKey, "c206b8d9b9f0f37644430b490eeaa314"},
	}
	for _, tt := range tests {
		got, err := tt.derive(AES128GCM, tt.secret)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if want := mustHex(t, tt.want); !bytes.Equal(got, want) {
			t.Errorf("%s = %x, want %x", tt.name, got, want)
		}
	}
}

// Header protection mask vectors from RFC 9001, appendices A.2 and A.3.
func TestInitialHeaderMask(t *testing.T) {
	tests := []struct {
		name   string
		hpKey  string
		sample string
		want   string
	}{
		{"client", "9f50449e04a0e810283a1e9933adedd2", "d1b1c98dd7689fb8ec11d242b123dc9b", "437b9aec36"},
		{"server", "c206b8d9b9f0f37644430b490eeaa314", "2cd0991cd25b0aac406a5816b6394100", "2ec0d8356a"},
	}
	for _, tt := range tests {
		hp, err := NewHeaderProtectionKey(AES128GCM, mustHex(t, tt.hpKey))
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		mask, err := hp.NewMask(mustHex(t, tt.sample))
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if want := mustHex(t, tt.want); !bytes.Equal(mask[:], want) {
			t.Errorf("%s mask = %x, want %x", tt.name, mask, want)
		}
	}
}

// ChaCha20-Poly1305 short header packet from RFC 9001, appendix A.5.
func TestChaCha20ShortHeader(t *testing.T) {
	secret := mustHex(t, "9ac312a7f877468ebe69422748ad00a15443f18203a07d6060f688f30f21632b")

	key, err := DerivePacketKey(ChaCha20Poly1305, secret)
	if err != nil {
		t.Fatal(err)
	}
	if want := mustHex(t, "c6d98ff3441c3fe1b2182094f69caa2ed4b716b65488960a7a984979fb23e1c8"); !bytes.Equal(key, want) {
		t.Errorf("key = %x, want %x", key, want)
	}
	iv, err := DerivePacketIV(ChaCha20Poly1305, secret)
	if err != nil {
		t.Fatal(err)
	}
	if want := mustHex(t, "e0459b3474bdd0e44a41c144"); !bytes.Equal(iv, want) {
		t.Errorf("iv = %x, want %x", iv, want)
	}
	hpKey, err := DeriveHeaderKey(ChaCha20Poly1305, secret)
	if err != nil {
		t.Fatal(err)
	}
	if want := mustHex(t, "25a282b9e82f06f21f488917a4fc8f1b73573685608597d0efcb076b0ab7a7a4"); !bytes.Equal(hpKey, want) {
		t.Errorf("hp = %x, want %x", hpKey, want)
	}
	ku, err := deriveNextSecret(ChaCha20Poly1305, secret)
	if err != nil {
		t.Fatal(err)
	}
	if want := mustHex(t, "1223504755036d556342ee9361d253421a826c9ecdf3c7148684b36b714881f9"); !bytes.Equal(ku, want) {
		t.Errorf("ku = %x, want %x", ku, want)
	}

	seal, err := SealFromSecret(ChaCha20Poly1305, secret)
	if err != nil {
		t.Fatal(err)
	}
	const packetNumber = 654360564
	header := mustHex(t, "4200bff4")
	ciphertext := seal.SealWithCounter(packetNumber, header, []byte{0x01})
	if want := mustHex(t, "655e5cd55c41f69080575d7999c25a5bfb"); !bytes.Equal(ciphertext, want) {
		t.Errorf("ciphertext = %x, want %x", ciphertext, want)
	}

	mask, err := seal.NewMask(ciphertext[1:17])
	if err != nil {
		t.Fatal(err)
	}
	if want := mustHex(t, "aefefe7d03"); !bytes.Equal(mask[:], want) {
		t.Errorf("mask = %x, want %x", mask, want)
	}

	open, err := OpenFromSecret(ChaCha20Poly1305, secret)
	if err != nil {
		t.Fatal(err)
	}
	plain, err := open.OpenWithCounter(packetNumber, header, ciphertext)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(plain, []byte{0x01}) {
		t.Errorf("plaintext = %x, want 01", plain)
	}
}

func TestInitialRoundTrip(t *testing.T) {
	cid := mustHex(t, "8394c8f03e515708")
	clientOpen, clientSeal, err := DeriveInitialKeyMaterial(cid, ProtocolVersionV1, false)
	if err != nil {
		t.Fatal(err)
	}
	serverOpen, serverSeal, err := DeriveInitialKeyMaterial(cid, ProtocolVersionV1, true)
	if err != nil {
		t.Fatal(err)
	}
	if clientSeal.Alg() != AES128GCM || serverOpen.Alg() != AES128GCM {
		t.Fatal("initial keys must use AES-128-GCM")
	}

	header := mustHex(t, "c300000001088394c8f03e5157080000449e00000002")
	payload := []byte("client hello")

	ciphertext := clientSeal.SealWithCounter(2, header, payload)
	plain, err := serverOpen.OpenWithCounter(2, header, ciphertext)
	if err != nil {
		t.Fatalf("server could not open client packet: %v", err)
	}
	if !bytes.Equal(plain, payload) {
		t.Errorf("plaintext = %q, want %q", plain, payload)
	}

	// And the reverse direction.
	ciphertext = serverSeal.SealWithCounter(0, header, payload)
	if _, err := clientOpen.OpenWithCounter(0, header, ciphertext); err != nil {
		t.Fatalf("client could not open server packet: %v", err)
	}

	// Authentication failures surface as ErrCryptoFail.
	ciphertext[0] ^= 0xff
	if _, err := clientOpen.OpenWithCounter(0, header, ciphertext); !errors.Is(err, ErrCryptoFail) {
		t.Errorf("tampered packet: err = %v, want ErrCryptoFail", err)
	}
	ciphertext[0] ^= 0xff
	if _, err := clientOpen.OpenWithCounter(1, header, ciphertext); !errors.Is(err, ErrCryptoFail) {
		t.Errorf("wrong packet number: err = %v, want ErrCryptoFail", err)
	}
}

func TestSealOpenAllAlgorithms(t *testing.T) {
	secret := mustHex(t, "9ac312a7f877468ebe69422748ad00a15443f18203a07d6060f688f30f21632b")
	for _, alg := range []Algorithm{AES128GCM, AES256GCM, ChaCha20Poly1305} {
		seal, err := SealFromSecret(alg, secret)
		if err != nil {
			t.Fatalf("%s: %v", alg, err)
		}
		open, err := OpenFromSecret(alg, secret)
		if err != nil {
			t.Fatalf("%s: %v", alg, err)
		}
		ad := []byte{0x42, 0x00}
		ciphertext := seal.SealWithCounter(7, ad, []byte("payload"))
		if len(ciphertext) != len("payload")+alg.TagLen() {
			t.Errorf("%s: ciphertext length = %d", alg, len(ciphertext))
		}
		plain, err := open.OpenWithCounter(7, ad, ciphertext)
		if err != nil {
			t.Fatalf("%s: %v", alg, err)
		}
		if string(plain) != "payload" {
			t.Errorf("%s: plaintext = %q", alg, plain)
		}
	}
}

func TestKeyUpdate(t *testing.T) {
	secret := mustHex(t, "9ac312a7f877468ebe69422748ad00a15443f18203a07d6060f688f30f21632b")
	seal, err := SealFromSecret(ChaCha20Poly1305, secret)
	if err != nil {
		t.Fatal(err)
	}
	open, err := OpenFromSecret(ChaCha20Poly1305, secret)
	if err != nil {
		t.Fatal(err)
	}

	nextSeal, err := seal.DeriveNextPacketKey()
	if err != nil {
		t.Fatal(err)
	}
	nextOpen, err := open.DeriveNextPacketKey()
	if err != nil {
		t.Fatal(err)
	}

	ad := []byte{0x01}
	ciphertext := nextSeal.SealWithCounter(0, ad, []byte("updated"))
	if _, err := nextOpen.OpenWithCounter(0, ad, ciphertext); err != nil {
		t.Fatalf("updated keys disagree: %v", err)
	}
	// Packets sealed with the new generation do not open with the old one.
	if _, err := open.OpenWithCounter(0, ad, ciphertext); !errors.Is(err, ErrCryptoFail) {
		t.Errorf("old keys opened an updated packet: err = %v", err)
	}

	// Header protection does not rotate. Both generations compute the
	// same mask.
	sample := make([]byte, 16)
	copy(sample, "0123456789abcdef")
	oldMask, err := seal.NewMask(sample)
	if err != nil {
		t.Fatal(err)
	}
	newMask, err := nextSeal.NewMask(sample)
	if err != nil {
		t.Fatal(err)
	}
	if oldMask != newMask {
		t.Errorf("header mask changed across key update: %x != %x", oldMask, newMask)
	}

	// A second rotation matches the chained derivation.
	secret2, err := deriveNextSecret(ChaCha20Poly1305, secret)
	if err != nil {
		t.Fatal(err)
	}
	secret3, err := deriveNextSecret(ChaCha20Poly1305, secret2)
	if err != nil {
		t.Fatal(err)
	}
	seal3a, err := nextSeal.DeriveNextPacketKey()
	if err != nil {
		t.Fatal(err)
	}
	seal3b, err := SealFromSecret(ChaCha20Poly1305, secret3)
	if err != nil {
		t.Fatal(err)
	}
	c1 := seal3a.SealWithCounter(1, ad, []byte("x"))
	c2 := seal3b.SealWithCounter(1, ad, []byte("x"))
	if !bytes.Equal(c1, c2) {
		t.Error("chained key update diverged from direct derivation")
	}
}

func TestBadInputs(t *testing.T) {
	if _, err := NewPacketKey(AES128GCM, make([]byte, 32), make([]byte, 12)); !errors.Is(err, ErrCryptoFail) {
		t.Errorf("oversized AES-128 key accepted: %v", err)
	}
	if _, err := NewPacketKey(AES128GCM, make([]byte, 16), make([]byte, 8)); !errors.Is(err, ErrCryptoFail) {
		t.Errorf("short IV accepted: %v", err)
	}
	if _, err := NewHeaderProtectionKey(ChaCha20Poly1305, make([]byte, 16)); !errors.Is(err, ErrCryptoFail) {
		t.Errorf("short ChaCha hp key accepted: %v", err)
	}

	hp, err := NewHeaderProtectionKey(AES128GCM, make([]byte, 16))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := hp.NewMask(make([]byte, 15)); !errors.Is(err, ErrCryptoFail) {
		t.Errorf("short sample accepted: %v", err)
	}

	open, err := OpenFromSecret(AES128GCM, make([]byte, 32))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := open.OpenWithCounter(0, nil, make([]byte, 8)); !errors.Is(err, ErrCryptoFail) {
		t.Errorf("ciphertext shorter than tag accepted: %v", err)
	}
}
