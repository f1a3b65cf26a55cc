package wallet

import (
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tstmis/bytecoin/cncrypto"
)

// sendSimpleOutput emulates a sender addressing an output to a simple
// address: a fresh tx key r, and output key = derive(ecdh(r, View), i, S).
func sendSimpleOutput(t *testing.T, viewPub, spendPub cncrypto.PublicKey, outputIndex uint64, amount uint64) (cncrypto.PublicKey, OutputKey) {
	t.Helper()
	r := cncrypto.RandomKeyPair()
	kd, err := cncrypto.GenerateKeyDerivation(viewPub, r.SecretKey)
	require.NoError(t, err)
	outputPub, err := cncrypto.DerivePublicKey(kd, outputIndex, spendPub)
	require.NoError(t, err)
	return r.PublicKey, OutputKey{PublicKey: outputPub, Amount: amount}
}

func TestContainerDetectOurOutput(t *testing.T) {
	keys, spend, view := testImportKeys(t)
	path := filepath.Join(t.TempDir(), "test.wallet")
	w, err := CreateContainerWallet(path, "pw", keys, 0, testOptions())
	require.NoError(t, err)
	defer w.Close()

	txPub, output := sendSimpleOutput(t, view.PublicKey, spend.PublicKey, 0, 1000)
	tid := cncrypto.FastHash([]byte("tid"))
	handler := w.OutputHandler()

	var kd *cncrypto.KeyDerivation
	spendCandidate, secretScalar := handler(txPub, &kd, cncrypto.Hash{}, 0, output)
	require.NotNil(t, kd)
	require.Equal(t, spend.PublicKey, spendCandidate)

	detection, ok, err := w.DetectOurOutput(tid, cncrypto.Hash{}, kd, 0, spendCandidate, secretScalar, output)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(1000), detection.Amount)
	require.Equal(t, output.PublicKey, detection.OutputKeyPair.PublicKey)
	require.True(t, cncrypto.KeysMatch(detection.OutputKeyPair.SecretKey, output.PublicKey))
	require.Equal(t, AddressSimple{SpendPublicKey: spend.PublicKey, ViewPublicKey: view.PublicKey}, detection.Address)

	// An output to somebody else resolves to a foreign candidate.
	foreignPub, foreignOut := sendSimpleOutput(t, view.PublicKey, cncrypto.RandomKeyPair().PublicKey, 0, 1)
	var kd2 *cncrypto.KeyDerivation
	candidate2, scalar2 := handler(foreignPub, &kd2, cncrypto.Hash{}, 0, foreignOut)
	_, ok, err = w.DetectOurOutput(tid, cncrypto.Hash{}, kd2, 0, candidate2, scalar2, foreignOut)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestContainerDetectInvalidTxPublicKey(t *testing.T) {
	keys, _, _ := testImportKeys(t)
	path := filepath.Join(t.TempDir(), "test.wallet")
	w, err := CreateContainerWallet(path, "pw", keys, 0, testOptions())
	require.NoError(t, err)
	defer w.Close()

	// The daemon does not validate tx public keys; an undecodable point
	// must not wedge the handler.
	var badTxPub cncrypto.PublicKey
	for i := range badTxPub {
		badTxPub[i] = 0xff
	}
	handler := w.OutputHandler()
	var kd *cncrypto.KeyDerivation
	candidate, scalar := handler(badTxPub, &kd, cncrypto.Hash{}, 0, OutputKey{PublicKey: w.records[0].SpendPublicKey})
	require.NotNil(t, kd)
	require.Equal(t, cncrypto.KeyDerivation{}, *kd)

	_, ok, err := w.DetectOurOutput(cncrypto.Hash{}, cncrypto.Hash{}, kd, 0, candidate, scalar,
		OutputKey{PublicKey: w.records[0].SpendPublicKey})
	require.NoError(t, err)
	require.False(t, ok)
}

// sendUnlinkableOutput emulates a sender creating an unlinkable output to
// the record's spend key: encryptedSecret = r*G, and the output key is the
// one the record owner can spend with spendSec + Hs(shared||h||i).
func sendUnlinkableOutput(t *testing.T, viewPub cncrypto.PublicKey, record Record, txInputsHash cncrypto.Hash,
	outputIndex uint64, amount uint64, auditable bool) OutputKey {
	t.Helper()
	r := cncrypto.RandomKeyPair()
	shared, err := cncrypto.GenerateKeyDerivation(viewPub, r.SecretKey)
	require.NoError(t, err)
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], outputIndex)
	secretScalar := cncrypto.HashToScalar(shared[:], txInputsHash[:], buf[:n])

	outputSec, err := cncrypto.UnlinkableDeriveSecretKey(record.SpendSecretKey, secretScalar)
	require.NoError(t, err)
	outputPub, ok := cncrypto.SecretKeyToPublicKey(outputSec)
	require.True(t, ok)
	return OutputKey{
		PublicKey:       outputPub,
		EncryptedSecret: r.PublicKey,
		IsAuditable:     auditable,
		Amount:          amount,
	}
}

func TestHDDetectOurOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.walletdb")
	w, err := CreateHDWallet(path, "pw", sharedMnemonic(t), AddressTypeUnlinkable, 0, "", testOptions())
	require.NoError(t, err)
	defer w.Close()

	// Address a look-ahead record well past the used count.
	const slot = 5
	record := w.records[slot]
	txInputsHash := cncrypto.FastHash([]byte("inputs"))
	output := sendUnlinkableOutput(t, w.ViewPublicKey(), record, txInputsHash, 2, 777, false)

	handler := w.OutputHandler()
	var kd *cncrypto.KeyDerivation
	candidate, secretScalar := handler(cncrypto.PublicKey{}, &kd, txInputsHash, 2, output)
	require.Equal(t, record.SpendPublicKey, candidate)

	tid := cncrypto.FastHash([]byte("tid"))
	detection, ok, err := w.DetectOurOutput(tid, txInputsHash, kd, 2, candidate, secretScalar, output)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(777), detection.Amount)
	require.Equal(t, output.PublicKey, detection.OutputKeyPair.PublicKey)
	require.True(t, cncrypto.KeysMatch(detection.OutputKeyPair.SecretKey, output.PublicKey))

	addr := detection.Address.(AddressUnlinkable)
	require.Equal(t, record.SpendPublicKey, addr.S)
	require.False(t, addr.IsAuditable)

	// Hitting a look-ahead record advances the used count and regrows
	// the window.
	require.Equal(t, slot+1, w.usedAddressCount)
	require.GreaterOrEqual(t, w.RecordCount(), w.usedAddressCount+lookAhead)

	// An auditable output does not belong to a regular container.
	auditable := sendUnlinkableOutput(t, w.ViewPublicKey(), record, txInputsHash, 3, 1, true)
	var kd2 *cncrypto.KeyDerivation
	candidate2, scalar2 := handler(cncrypto.PublicKey{}, &kd2, txInputsHash, 3, auditable)
	_, ok, err = w.DetectOurOutput(tid, txInputsHash, kd2, 3, candidate2, scalar2, auditable)
	require.NoError(t, err)
	require.False(t, ok)

	// A wrong output index resolves to a foreign candidate.
	candidate3, scalar3 := handler(cncrypto.PublicKey{}, &kd, txInputsHash, 9, output)
	_, ok, err = w.DetectOurOutput(tid, txInputsHash, kd, 9, candidate3, scalar3, output)
	require.NoError(t, err)
	require.False(t, ok)
}
