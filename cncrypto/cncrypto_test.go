package cncrypto

import (
	"encoding/binary"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFastHash(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{
			name: "empty",
			in:   nil,
			want: "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		},
		{
			name: "abc",
			in:   []byte("abc"),
			want: "4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FastHash(tt.in)
			require.Equal(t, tt.want, hex.EncodeToString(got[:]))
		})
	}
}

func TestFastHashConcatenation(t *testing.T) {
	// Multiple slices hash as their concatenation.
	require.Equal(t, FastHash([]byte("foobar")), FastHash([]byte("foo"), []byte("bar")))
}

func TestHashToScalarCanonical(t *testing.T) {
	s := HashToScalar([]byte("some domain"), []byte("some data"))
	require.Equal(t, s, HashToScalar([]byte("some domain"), []byte("some data")))
	_, err := scalarFromSecret(s)
	require.NoError(t, err)
	require.NotEqual(t, SecretKey{}, s)
}

func TestKeysMatch(t *testing.T) {
	pair := RandomKeyPair()
	require.True(t, KeysMatch(pair.SecretKey, pair.PublicKey))
	require.True(t, KeyIsValid(pair.PublicKey))

	other := RandomKeyPair()
	require.False(t, KeysMatch(pair.SecretKey, other.PublicKey))
}

func TestKeyDerivationSymmetry(t *testing.T) {
	// ECDH: derivation(txPub, viewSec) == derivation(viewPub, txSec).
	tx := RandomKeyPair()
	view := RandomKeyPair()
	kd1, err := GenerateKeyDerivation(tx.PublicKey, view.SecretKey)
	require.NoError(t, err)
	kd2, err := GenerateKeyDerivation(view.PublicKey, tx.SecretKey)
	require.NoError(t, err)
	require.Equal(t, kd1, kd2)
}

func TestGenerateKeyDerivationInvalidPoint(t *testing.T) {
	view := RandomKeyPair()
	var bad PublicKey
	for i := range bad {
		bad[i] = 0xff
	}
	_, err := GenerateKeyDerivation(bad, view.SecretKey)
	require.Error(t, err)
}

func TestDeriveUnderiveRoundTrip(t *testing.T) {
	tx := RandomKeyPair()
	view := RandomKeyPair()
	spend := RandomKeyPair()
	kd, err := GenerateKeyDerivation(tx.PublicKey, view.SecretKey)
	require.NoError(t, err)

	for _, outputIndex := range []uint64{0, 1, 7, 130, 1 << 40} {
		outputPub, err := DerivePublicKey(kd, outputIndex, spend.PublicKey)
		require.NoError(t, err)

		// Underive recovers the spend public key from the output key.
		back, err := UnderivePublicKey(kd, outputIndex, outputPub)
		require.NoError(t, err)
		require.Equal(t, spend.PublicKey, back)

		// The derived secret matches the derived public key.
		outputSec, err := DeriveSecretKey(kd, outputIndex, spend.SecretKey)
		require.NoError(t, err)
		require.True(t, KeysMatch(outputSec, outputPub))
	}
}

func TestUnlinkableScheme(t *testing.T) {
	view := RandomKeyPair()
	spend := RandomKeyPair()
	txInputsHash := FastHash([]byte("inputs"))
	const outputIndex = 3

	// Sender side: a fresh scalar r, published as encryptedSecret=r*G.
	// The shared point 8*(r*View) equals the receiver's 8*(view*rG).
	r := RandomKeyPair()
	shared, err := GenerateKeyDerivation(view.PublicKey, r.SecretKey)
	require.NoError(t, err)
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], outputIndex)
	secretScalar := HashToScalar(shared[:], txInputsHash[:], buf[:n])

	outputSec, err := UnlinkableDeriveSecretKey(spend.SecretKey, secretScalar)
	require.NoError(t, err)
	outputPub, ok := SecretKeyToPublicKey(outputSec)
	require.True(t, ok)

	// Receiver side recovers both the spend key candidate and the scalar.
	gotSpend, gotScalar, err := UnlinkableUnderivePublicKey(
		view.SecretKey, txInputsHash, outputIndex, outputPub, r.PublicKey)
	require.NoError(t, err)
	require.Equal(t, spend.PublicKey, gotSpend)
	require.Equal(t, secretScalar, gotScalar)

	// A different output index must not resolve to our spend key.
	otherSpend, _, err := UnlinkableUnderivePublicKey(
		view.SecretKey, txInputsHash, outputIndex+1, outputPub, r.PublicKey)
	require.NoError(t, err)
	require.NotEqual(t, spend.PublicKey, otherSpend)
}

func TestGenerateAddressSV(t *testing.T) {
	view := RandomKeyPair()
	spend := RandomKeyPair()
	sv1, err := GenerateAddressSV(spend.PublicKey, view.SecretKey)
	require.NoError(t, err)
	sv2, err := GenerateAddressSV(spend.PublicKey, view.SecretKey)
	require.NoError(t, err)
	require.Equal(t, sv1, sv2)
	require.NotEqual(t, spend.PublicKey, sv1)
}

func TestGenerateHDSpendKeys(t *testing.T) {
	base := RandomKeyPair()
	viewSeed := FastHash(base.PublicKey[:])

	batch := make([]KeyPair, 10)
	require.NoError(t, GenerateHDSpendKeys(base, viewSeed, 0, batch))

	// Ranges compose: deriving [4,7) alone matches the batch.
	sub := make([]KeyPair, 3)
	require.NoError(t, GenerateHDSpendKeys(base, viewSeed, 4, sub))
	require.Equal(t, batch[4:7], sub)

	for i, pair := range batch {
		require.True(t, KeysMatch(pair.SecretKey, pair.PublicKey), "index %d", i)
	}

	// A public-only base yields the same publics with zero secrets.
	tracking := make([]KeyPair, 10)
	require.NoError(t, GenerateHDSpendKeys(KeyPair{PublicKey: base.PublicKey}, viewSeed, 0, tracking))
	for i := range tracking {
		require.Equal(t, batch[i].PublicKey, tracking[i].PublicKey)
		require.Equal(t, SecretKey{}, tracking[i].SecretKey)
	}
}

func TestChaChaRoundTrip(t *testing.T) {
	var key ChachaKey
	RandomBytes(key[:])
	iv := RandomChachaIV()
	plain := []byte("the quick brown fox jumps over the lazy dog")

	enc8 := ChaCha8(key, iv, plain)
	require.NotEqual(t, plain, enc8)
	require.Equal(t, plain, ChaCha8(key, iv, enc8))

	enc20 := ChaCha20(key, iv, plain)
	require.NotEqual(t, enc8, enc20)
	require.Equal(t, plain, ChaCha20(key, iv, enc20))
}

func TestKeyFromPasswordDeterministic(t *testing.T) {
	k1 := KeyFromPassword([]byte("salt"), []byte("password"))
	k2 := KeyFromPassword([]byte("salt"), []byte("password"))
	require.Equal(t, k1, k2)

	k3 := KeyFromPassword([]byte("other"), []byte("password"))
	require.NotEqual(t, k1, k3)
}
