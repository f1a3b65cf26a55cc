package wallet

import (
	"math"
	"runtime"
	"sync"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/tyler-smith/go-bip39"

	"github.com/tstmis/bytecoin/cncrypto"
)

// hdCoinType is the SLIP-44 style coin type of the derivation chain
// m/44'/768'/address_type'/0/0.
const hdCoinType = 768

// deriveKeysFromMnemonic runs the BIP-39 seed stretch and the BIP-32 chain
// down to the wallet node, then hashes its private key into the wallet seed
// and derives the spend key base from it.
func deriveKeysFromMnemonic(mnemonic, mnemonicPassword string, addressType byte) (cncrypto.Hash, cncrypto.KeyPair, error) {
	bipSeed := bip39.NewSeed(mnemonic, mnemonicPassword)
	master, err := hdkeychain.NewMaster(bipSeed, &chaincfg.MainNetParams)
	if err != nil {
		return cncrypto.Hash{}, cncrypto.KeyPair{}, walletError(ErrMnemonicCRC, "wrong mnemonic", err)
	}
	node := master
	for _, child := range []uint32{
		hdkeychain.HardenedKeyStart + 44,
		hdkeychain.HardenedKeyStart + hdCoinType,
		hdkeychain.HardenedKeyStart + uint32(addressType),
		0,
		0,
	} {
		node, err = node.Derive(child)
		if err != nil {
			return cncrypto.Hash{}, cncrypto.KeyPair{}, walletError(ErrMnemonicCRC, "wrong mnemonic", err)
		}
	}
	nodePriv, err := node.ECPrivKey()
	if err != nil {
		return cncrypto.Hash{}, cncrypto.KeyPair{}, walletError(ErrMnemonicCRC, "wrong mnemonic", err)
	}
	seed := cncrypto.FastHash(nodePriv.Serialize())

	var base cncrypto.KeyPair
	base.SecretKey = cncrypto.HashToScalar(seed[:], []byte("spend_key_base"))
	pub, ok := cncrypto.SecretKeyToPublicKey(base.SecretKey)
	if !ok {
		return cncrypto.Hash{}, cncrypto.KeyPair{}, walletError(ErrDecrypt, "derived spend key base is invalid", nil)
	}
	base.PublicKey = pub
	return seed, base, nil
}

// generateAheadOne derives records for one contiguous index range.  A pure
// function of (base, startIndex, len(out)), so ranges can be computed
// concurrently.
func (w *HDWallet) generateAheadOne(startIndex int, out []Record) error {
	keys := make([]cncrypto.KeyPair, len(out))
	viewSeed := cncrypto.Hash(w.spendKeyBase.PublicKey)
	if err := cncrypto.GenerateHDSpendKeys(w.spendKeyBase, viewSeed, uint64(startIndex), keys); err != nil {
		return err
	}
	for i := range out {
		out[i].SpendPublicKey = keys[i].PublicKey
		out[i].SpendSecretKey = keys[i].SecretKey
		// Never triggers a rescan when the address is used later.
		out[i].CreationTimestamp = math.MaxUint64
	}
	return nil
}

// hdParallelThreshold is the gap size at or above which look-ahead
// generation is split across worker goroutines.
const hdParallelThreshold = 1000

// generateAhead grows the record window until it covers the used count plus
// the look-ahead.  Workers write into disjoint pre-sized slices and the
// results are appended in order, so no locking is needed.
func (w *HDWallet) generateAhead() error {
	if len(w.records) >= w.usedAddressCount+lookAhead {
		return nil
	}
	delta := w.usedAddressCount + lookAhead - len(w.records)
	var results [][]Record
	if delta < hdParallelThreshold {
		results = [][]Record{make([]Record, delta)}
		if err := w.generateAheadOne(len(w.records), results[0]); err != nil {
			return err
		}
	} else {
		thc := runtime.NumCPU()
		results = make([][]Record, thc)
		errs := make([]error, thc)
		var wg sync.WaitGroup
		for i := 0; i < thc; i++ {
			start := delta * i / thc
			results[i] = make([]Record, delta*(i+1)/thc-start)
			wg.Add(1)
			go func(i, start int) {
				defer wg.Done()
				errs[i] = w.generateAheadOne(len(w.records)+start, results[i])
			}(i, start)
		}
		wg.Wait()
		for _, err := range errs {
			if err != nil {
				return err
			}
		}
	}
	for _, result := range results {
		for _, record := range result {
			w.addRecord(record)
		}
	}
	return nil
}
