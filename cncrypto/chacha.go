package cncrypto

import (
	"github.com/aead/chacha20/chacha"
)

// ChachaKeySize is the size of a ChaCha stream key.
const ChachaKeySize = 32

// ChachaIVSize is the size of the legacy 64-bit ChaCha nonce used by the
// container formats.
const ChachaIVSize = 8

// ChachaKey is a 256-bit ChaCha key.  The container master key has this
// type.
type ChachaKey [ChachaKeySize]byte

// ChachaIV is the per-blob 64-bit nonce.
type ChachaIV [ChachaIVSize]byte

// RandomChachaIV returns a random nonce.
func RandomChachaIV() ChachaIV {
	var iv ChachaIV
	RandomBytes(iv[:])
	return iv
}

func chachaXOR(key ChachaKey, iv ChachaIV, src []byte, rounds int) []byte {
	dst := make([]byte, len(src))
	chacha.XORKeyStream(dst, src, iv[:], key[:], rounds)
	return dst
}

// ChaCha8 encrypts or decrypts src with the 8-round variant used by the
// flat container format.
func ChaCha8(key ChachaKey, iv ChachaIV, src []byte) []byte {
	return chachaXOR(key, iv, src, 8)
}

// ChaCha20 encrypts or decrypts src with the 20-round variant used for
// database blobs.
func ChaCha20(key ChachaKey, iv ChachaIV, src []byte) []byte {
	return chachaXOR(key, iv, src, 20)
}
