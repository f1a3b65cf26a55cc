package wallet

import (
	"encoding/binary"
	"errors"

	"github.com/tstmis/bytecoin/cncrypto"
)

// deriveFromSeed derives a domain-separated sub-secret as
// fast-hash(seed || tag).  Plain concatenation, not a keyed MAC.
func deriveFromSeed(seed cncrypto.Hash, tag string) cncrypto.Hash {
	return cncrypto.FastHash(seed[:], []byte(tag))
}

// deriveFromSeedLegacy reverses the order, fast-hash(tag || seed).  The
// flat container derives its history secrets this way; the asymmetry is
// kept for binary compatibility with existing wallets.
func deriveFromSeedLegacy(seed cncrypto.Hash, tag string) cncrypto.Hash {
	return cncrypto.FastHash([]byte(tag), seed[:])
}

// deriveFromKey derives a deterministic database row key as
// fast-hash(key || tag || key), so the database leaks only opaque hashes
// while staying equality-searchable.
func deriveFromKey(key cncrypto.ChachaKey, tag string) cncrypto.Hash {
	return cncrypto.FastHash(key[:], []byte(tag), key[:])
}

const (
	// encBlobMinSize is the minimum encrypted blob size; blobs grow in
	// powers of two from here so ciphertext length hides message length.
	encBlobMinSize = 256

	// encBlobExtra is the overhead of the IV and the length prefix.
	encBlobExtra = cncrypto.HashSize + 4
)

// encryptBlob encrypts a small binary value under the container master key.
// Output layout: iv:32 || chacha20(key=fast_hash(masterKey||iv), iv=0,
// len_le32(plain) || plain || zero pad).  The padded size is the smallest
// power of two that fits, and at least 256 bytes.
func encryptBlob(walletKey cncrypto.ChachaKey, plain []byte) []byte {
	paddedSize := 1
	for paddedSize < len(plain)+encBlobExtra || paddedSize < encBlobMinSize {
		paddedSize *= 2
	}
	large := make([]byte, paddedSize-cncrypto.HashSize)
	binary.LittleEndian.PutUint32(large[:4], uint32(len(plain)))
	copy(large[4:], plain)

	iv := cncrypto.RandomHash()
	key := cncrypto.ChachaKey(cncrypto.FastHash(walletKey[:], iv[:]))

	out := make([]byte, 0, paddedSize)
	out = append(out, iv[:]...)
	out = append(out, cncrypto.ChaCha20(key, cncrypto.ChachaIV{}, large)...)
	return out
}

var errBlobTooShort = errors.New("encrypted blob too short")
var errBlobBadLength = errors.New("encrypted blob length prefix exceeds payload")

// decryptBlob inverts encryptBlob.
func decryptBlob(walletKey cncrypto.ChachaKey, value []byte) ([]byte, error) {
	if len(value) < encBlobExtra {
		return nil, errBlobTooShort
	}
	var iv cncrypto.Hash
	copy(iv[:], value[:cncrypto.HashSize])
	key := cncrypto.ChachaKey(cncrypto.FastHash(walletKey[:], iv[:]))
	plain := cncrypto.ChaCha20(key, cncrypto.ChachaIV{}, value[cncrypto.HashSize:])
	realSize := int(binary.LittleEndian.Uint32(plain[:4]))
	if realSize > len(plain)-4 {
		return nil, errBlobBadLength
	}
	return plain[4 : 4+realSize], nil
}
