package wallet

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tstmis/bytecoin/cncrypto"
)

var (
	testMnemonicOnce sync.Once
	testMnemonic     string
)

// sharedMnemonic generates one valid mnemonic for the whole test run; the
// CRC search is probabilistic and there is no need to repeat it per test.
func sharedMnemonic(t *testing.T) string {
	t.Helper()
	testMnemonicOnce.Do(func() {
		testMnemonic = GenerateMnemonic(128, MnemonicVersion)
	})
	return testMnemonic
}

func TestHDCreateOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.walletdb")
	mnemonic := sharedMnemonic(t)

	w, err := CreateHDWallet(path, "pw", mnemonic, AddressTypeUnlinkable, 0, "", testOptions())
	require.NoError(t, err)
	require.False(t, w.IsViewOnly())
	require.Equal(t, 1, w.usedAddressCount)
	require.GreaterOrEqual(t, w.RecordCount(), w.usedAddressCount+lookAhead)

	viewPub, viewSec := w.ViewPublicKey(), w.ViewSecretKey()
	base := w.spendKeyBase
	firstFive := make([]Record, 5)
	copy(firstFive, w.records[:5])
	firstAddr, err := w.GetFirstAddress()
	require.NoError(t, err)

	// The view key is a deterministic function of the spend key base.
	require.Equal(t, cncrypto.HashToScalar(base.PublicKey[:], []byte("view_key")), viewSec)

	exported, err := w.ExportKeys()
	require.NoError(t, err)
	require.Equal(t, mnemonic, exported)
	require.NoError(t, w.Close())

	// Creating over an existing file is refused.
	_, err = CreateHDWallet(path, "pw", mnemonic, AddressTypeUnlinkable, 0, "", testOptions())
	require.True(t, IsError(err, ErrExists))

	// Reopening reproduces the same key tree and derived records.
	w2, err := OpenHDWallet(path, "pw", testOptions())
	require.NoError(t, err)
	defer w2.Close()
	require.Equal(t, viewPub, w2.ViewPublicKey())
	require.Equal(t, base, w2.spendKeyBase)
	require.Equal(t, firstFive, w2.records[:5])
	addr2, err := w2.GetFirstAddress()
	require.NoError(t, err)
	require.Equal(t, firstAddr, addr2)

	// Look-ahead records never trigger a rescan when used later.
	require.Equal(t, uint64(1<<64-1), w2.records[1].CreationTimestamp)
}

func TestHDWrongPassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.walletdb")
	w, err := CreateHDWallet(path, "pw", sharedMnemonic(t), AddressTypeUnlinkable, 0, "", testOptions())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = OpenHDWallet(path, "wrong", testOptions())
	require.True(t, IsError(err, ErrDecrypt))
}

func TestHDBadMnemonic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.walletdb")
	_, err := CreateHDWallet(path, "pw", "abandon ability", AddressTypeUnlinkable, 0, "", testOptions())
	require.True(t, IsError(err, ErrMnemonicCRC))
}

func TestHDGenerateNewAddresses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.walletdb")
	w, err := CreateHDWallet(path, "pw", sharedMnemonic(t), AddressTypeUnlinkable, 0, "", testOptions())
	require.NoError(t, err)
	defer w.Close()

	// The records handed out are exactly the pre-derived look-ahead ones.
	expected := make([]Record, 3)
	copy(expected, w.records[1:4])
	records, rescan, err := w.GenerateNewAddresses(make([]cncrypto.SecretKey, 3), 0)
	require.NoError(t, err)
	require.False(t, rescan)
	require.Equal(t, expected, records)
	require.Equal(t, 4, w.usedAddressCount)
	require.GreaterOrEqual(t, w.RecordCount(), w.usedAddressCount+lookAhead)

	// HD wallets never accept imported secrets.
	_, _, err = w.GenerateNewAddresses([]cncrypto.SecretKey{cncrypto.RandomScalar()}, 0)
	require.True(t, IsError(err, ErrDeterministic))

	// Only used records resolve through addresses.
	usedAddr, err := w.RecordToAddress(w.records[3])
	require.NoError(t, err)
	rec, ok := w.GetRecord(usedAddr)
	require.True(t, ok)
	require.Equal(t, w.records[3], rec)

	aheadAddr, err := w.RecordToAddress(w.records[10])
	require.NoError(t, err)
	_, ok = w.GetRecord(aheadAddr)
	require.False(t, ok)

	// Foreign address shapes are rejected.
	_, ok = w.GetRecord(AddressSimple{})
	require.False(t, ok)
}

func TestHDUsedCountPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.walletdb")
	w, err := CreateHDWallet(path, "pw", sharedMnemonic(t), AddressTypeUnlinkable, 0, "", testOptions())
	require.NoError(t, err)
	records, _, err := w.GenerateNewAddresses(make([]cncrypto.SecretKey, 2), 0)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	w2, err := OpenHDWallet(path, "pw", testOptions())
	require.NoError(t, err)
	defer w2.Close()
	require.Equal(t, 3, w2.usedAddressCount)

	// Property: an address derived when first used equals the address
	// derived at any later time.
	require.Equal(t, records[1], w2.records[2])
}

func TestHDLabels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.walletdb")
	w, err := CreateHDWallet(path, "pw", sharedMnemonic(t), AddressTypeUnlinkable, 0, "", testOptions())
	require.NoError(t, err)

	require.NoError(t, w.SetLabel("addr1", "savings"))
	require.NoError(t, w.SetLabel("addr2", "donations"))
	require.Equal(t, "savings", w.GetLabel("addr1"))
	require.NoError(t, w.SetLabel("addr2", "")) // empty label deletes
	require.Equal(t, "", w.GetLabel("addr2"))
	require.NoError(t, w.Close())

	w2, err := OpenHDWallet(path, "pw", testOptions())
	require.NoError(t, err)
	defer w2.Close()
	require.Equal(t, "savings", w2.GetLabel("addr1"))
	require.Equal(t, "", w2.GetLabel("addr2"))
}

func TestHDPaymentQueuePerNet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.walletdb")
	mnemonic := sharedMnemonic(t)

	w, err := CreateHDWallet(path, "pw", mnemonic, AddressTypeUnlinkable, 0, "", testOptions())
	require.NoError(t, err)
	mainTids := []cncrypto.Hash{
		cncrypto.FastHash([]byte("m1")),
		cncrypto.FastHash([]byte("m2")),
		cncrypto.FastHash([]byte("m3")),
	}
	for i, tid := range mainTids {
		require.NoError(t, w.PaymentQueueAdd(tid, []byte{byte(i), 'm'}))
	}
	require.NoError(t, w.commit())
	require.NoError(t, w.Close())

	// Queue two more transactions on the test net.
	tw, err := OpenHDWallet(path, "pw", &Options{Net: "test", Clock: testOptions().Clock})
	require.NoError(t, err)
	require.NoError(t, tw.PaymentQueueAdd(cncrypto.FastHash([]byte("t1")), []byte("t1")))
	require.NoError(t, tw.PaymentQueueAdd(cncrypto.FastHash([]byte("t2")), []byte("t2")))
	require.NoError(t, tw.commit())
	got, err := tw.PaymentQueueGet()
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NoError(t, tw.Close())

	// A main wallet sees exactly the three main blobs.
	w2, err := OpenHDWallet(path, "pw", testOptions())
	require.NoError(t, err)
	defer w2.Close()
	got, err = w2.PaymentQueueGet()
	require.NoError(t, err)
	require.Len(t, got, 3)

	require.NoError(t, w2.PaymentQueueRemove(mainTids[0]))
	got, err = w2.PaymentQueueGet()
	require.NoError(t, err)
	require.Len(t, got, 2)

	// A tid starting with 'x' asks for an immediate commit.
	xtid := cncrypto.Hash{}
	xtid[0] = 'x'
	require.NoError(t, w2.PaymentQueueAdd(xtid, []byte("urgent")))
	require.NoError(t, w2.PaymentQueueRemove(xtid))
}

func TestHDSetPassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.walletdb")
	w, err := CreateHDWallet(path, "pw", sharedMnemonic(t), AddressTypeUnlinkable, 0, "", testOptions())
	require.NoError(t, err)
	require.NoError(t, w.SetLabel("addr", "kept"))
	tid := cncrypto.FastHash([]byte("kept-tx"))
	require.NoError(t, w.PaymentQueueAdd(tid, []byte("blob")))
	require.NoError(t, w.commit())
	base := w.spendKeyBase

	require.NoError(t, w.SetPassword("new"))
	require.NoError(t, w.Close())

	_, err = OpenHDWallet(path, "pw", testOptions())
	require.True(t, IsError(err, ErrDecrypt))

	w2, err := OpenHDWallet(path, "new", testOptions())
	require.NoError(t, err)
	defer w2.Close()
	require.Equal(t, base, w2.spendKeyBase)
	require.Equal(t, "kept", w2.GetLabel("addr"))
	queued, err := w2.PaymentQueueGet()
	require.NoError(t, err)
	require.Len(t, queued, 1)
	require.Equal(t, []byte("blob"), queued[0])
}

func TestHDExportViewOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.walletdb")
	w, err := CreateHDWallet(path, "pw", sharedMnemonic(t), AddressTypeUnlinkable, 0, "", testOptions())
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.SetLabel("addr", "copied"))
	require.NoError(t, w.PaymentQueueAdd(cncrypto.FastHash([]byte("tx")), []byte("not copied")))
	require.NoError(t, w.commit())

	exportPath := filepath.Join(dir, "view.walletdb")
	require.NoError(t, w.ExportWallet(exportPath, "viewpw", true, true))

	v, err := OpenHDWallet(exportPath, "viewpw", testOptions())
	require.NoError(t, err)
	defer v.Close()
	require.True(t, v.IsViewOnly())
	require.Equal(t, w.spendKeyBase.PublicKey, v.spendKeyBase.PublicKey)
	require.Equal(t, cncrypto.SecretKey{}, v.spendKeyBase.SecretKey)
	require.Equal(t, w.ViewPublicKey(), v.ViewPublicKey())
	require.Equal(t, w.TxDerivationSeed(), v.TxDerivationSeed())
	require.Equal(t, "copied", v.GetLabel("addr"))

	// Same derived spend public keys, but tracking records only.
	require.Equal(t, w.records[0].SpendPublicKey, v.records[0].SpendPublicKey)
	require.Equal(t, cncrypto.SecretKey{}, v.records[0].SpendSecretKey)

	_, err = v.ExportKeys()
	require.True(t, IsError(err, ErrViewOnly))

	queued, err := v.PaymentQueueGet()
	require.NoError(t, err)
	require.Empty(t, queued)
}

func TestHDExportFull(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.walletdb")
	mnemonic := sharedMnemonic(t)
	w, err := CreateHDWallet(path, "pw", mnemonic, AddressTypeUnlinkable, 0, "", testOptions())
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.PaymentQueueAdd(cncrypto.FastHash([]byte("tx")), []byte("copied")))
	require.NoError(t, w.commit())

	exportPath := filepath.Join(dir, "copy.walletdb")
	require.NoError(t, w.Backup(exportPath, "copy-pw"))

	c, err := OpenHDWallet(exportPath, "copy-pw", testOptions())
	require.NoError(t, err)
	defer c.Close()
	exported, err := c.ExportKeys()
	require.NoError(t, err)
	require.Equal(t, mnemonic, exported)
	queued, err := c.PaymentQueueGet()
	require.NoError(t, err)
	require.Len(t, queued, 1)
}

func TestHDAuditableAddressType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.walletdb")
	w, err := CreateHDWallet(path, "pw", sharedMnemonic(t), AddressTypeUnlinkableAuditable, 0, "", testOptions())
	require.NoError(t, err)
	defer w.Close()
	require.True(t, w.IsAuditable())

	addr, err := w.GetFirstAddress()
	require.NoError(t, err)
	require.True(t, addr.(AddressUnlinkable).IsAuditable)

	// The address type feeds the derivation path: an auditable wallet
	// from the same mnemonic has different keys.
	seed2, base2, err := deriveKeysFromMnemonic(sharedMnemonic(t), "", AddressTypeUnlinkable)
	require.NoError(t, err)
	require.NotEqual(t, w.seed, seed2)
	require.NotEqual(t, w.spendKeyBase, base2)
}

func TestOpenProbe(t *testing.T) {
	dir := t.TempDir()

	hdPath := filepath.Join(dir, "hd.walletdb")
	hw, err := CreateHDWallet(hdPath, "pw", sharedMnemonic(t), AddressTypeUnlinkable, 0, "", testOptions())
	require.NoError(t, err)
	require.NoError(t, hw.Close())

	flatPath := filepath.Join(dir, "flat.wallet")
	fw, err := CreateContainerWallet(flatPath, "pw", "", 0, testOptions())
	require.NoError(t, err)
	require.NoError(t, fw.Close())

	require.True(t, IsSQLite(hdPath))
	require.False(t, IsSQLite(flatPath))

	w, err := Open(hdPath, "pw", testOptions())
	require.NoError(t, err)
	_, ok := w.(*HDWallet)
	require.True(t, ok)
	require.NoError(t, w.Close())

	w, err = Open(flatPath, "pw", testOptions())
	require.NoError(t, err)
	_, ok = w.(*ContainerWallet)
	require.True(t, ok)
	require.NoError(t, w.Close())
}
