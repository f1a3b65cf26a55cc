package cncrypto

import (
	"crypto/rand"
	"encoding/hex"

	"filippo.io/edwards25519"
	"golang.org/x/crypto/sha3"
)

// HashSize is the size in bytes of the CryptoNote fast hash.
const HashSize = 32

// Hash is the 32-byte Keccak hash used pervasively for domain-separated
// derivations.
type Hash [HashSize]byte

// PublicKey is a compressed ed25519 group element.
type PublicKey [32]byte

// SecretKey is a scalar of the ed25519 group, stored in little-endian
// canonical form.  The zero value marks an absent key (tracking wallets).
type SecretKey [32]byte

// KeyDerivation is the shared secret produced by GenerateKeyDerivation.
type KeyDerivation [32]byte

// KeyPair groups a public key with its secret scalar.
type KeyPair struct {
	PublicKey PublicKey
	SecretKey SecretKey
}

// FastHash returns the legacy Keccak-256 digest of the concatenation of all
// passed slices.  This is the CryptoNote cn_fast_hash, which predates the
// NIST SHA-3 padding change.
func FastHash(data ...[]byte) Hash {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	var out Hash
	h.Sum(out[:0])
	return out
}

// HashToScalar hashes the input with FastHash and reduces the digest modulo
// the ed25519 group order, matching sc_reduce32 of the reference
// implementation.
func HashToScalar(data ...[]byte) SecretKey {
	h := FastHash(data...)
	var wide [64]byte
	copy(wide[:32], h[:])
	s, err := edwards25519.NewScalar().SetUniformBytes(wide[:])
	if err != nil {
		panic("cncrypto: wide scalar reduction failed: " + err.Error())
	}
	var out SecretKey
	copy(out[:], s.Bytes())
	return out
}

// RandomBytes fills out with bytes from the system CSPRNG.
func RandomBytes(out []byte) {
	if _, err := rand.Read(out); err != nil {
		panic("cncrypto: system entropy source failed: " + err.Error())
	}
}

// RandomHash returns 32 random bytes.
func RandomHash() Hash {
	var h Hash
	RandomBytes(h[:])
	return h
}

// RandomScalar returns a uniformly distributed nonzero scalar.
func RandomScalar() SecretKey {
	for {
		var wide [64]byte
		RandomBytes(wide[:])
		s, err := edwards25519.NewScalar().SetUniformBytes(wide[:])
		if err != nil {
			panic("cncrypto: wide scalar reduction failed: " + err.Error())
		}
		var out SecretKey
		copy(out[:], s.Bytes())
		if out != (SecretKey{}) {
			return out
		}
	}
}

// RandomKeyPair generates a fresh keypair.
func RandomKeyPair() KeyPair {
	sec := RandomScalar()
	pub, ok := SecretKeyToPublicKey(sec)
	if !ok {
		panic("cncrypto: random scalar is not canonical")
	}
	return KeyPair{PublicKey: pub, SecretKey: sec}
}

// String returns the hash as a hex string.
func (h Hash) String() string { return hex.EncodeToString(h[:]) }

// String returns the key as a hex string.
func (p PublicKey) String() string { return hex.EncodeToString(p[:]) }
