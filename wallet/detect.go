package wallet

import (
	"github.com/tstmis/bytecoin/cncrypto"
)

// getLookAheadRecord finds the record behind a spend-key candidate and, on
// a hit, marks everything up to it used so the look-ahead window regrows.
func getLookAheadRecord(w Wallet, state *walletState, spendPublicKey cncrypto.PublicKey) (Record, bool, error) {
	slot, ok := state.recordsMap[spendPublicKey]
	if !ok {
		return Record{}, false, nil
	}
	record := state.records[slot]
	if err := w.CreateLookAheadRecords(slot + 1); err != nil {
		return Record{}, false, err
	}
	return record, true, nil
}

// OutputHandler returns the simple strategy: the ECDH derivation with the
// tx public key is computed once per transaction and each output is
// underived against it.
func (w *ContainerWallet) OutputHandler() OutputHandler {
	viewSecretKey := w.viewSecretKey
	return func(txPublicKey cncrypto.PublicKey, kd **cncrypto.KeyDerivation,
		txInputsHash cncrypto.Hash, outputIndex uint64, output OutputKey) (cncrypto.PublicKey, cncrypto.SecretKey) {

		if *kd == nil {
			// The tx public key is not checked by the daemon, so it can
			// be an invalid point; a zero derivation then fails the
			// spendability check later.
			derivation, err := cncrypto.GenerateKeyDerivation(txPublicKey, viewSecretKey)
			if err != nil {
				derivation = cncrypto.KeyDerivation{}
			}
			*kd = &derivation
		}
		spendPublicKey, err := cncrypto.UnderivePublicKey(**kd, outputIndex, output.PublicKey)
		if err != nil {
			return cncrypto.PublicKey{}, cncrypto.SecretKey{}
		}
		return spendPublicKey, cncrypto.SecretKey{}
	}
}

// DetectOurOutput decides ownership of one output.  For spending wallets
// the per-output keypair is re-derived and must round-trip to the output
// key, catching both foreign outputs and corrupted records.
func (w *ContainerWallet) DetectOurOutput(tid, txInputsHash cncrypto.Hash, kd *cncrypto.KeyDerivation,
	outputIndex uint64, spendPublicKey cncrypto.PublicKey, secretScalar cncrypto.SecretKey,
	output OutputKey) (Detection, bool, error) {

	record, ok, err := getLookAheadRecord(w, &w.walletState, spendPublicKey)
	if err != nil || !ok {
		return Detection{}, false, err
	}
	address := AddressSimple{SpendPublicKey: spendPublicKey, ViewPublicKey: w.viewPublicKey}
	var outputKeyPair cncrypto.KeyPair
	if record.SpendSecretKey != (cncrypto.SecretKey{}) {
		if kd == nil || *kd == (cncrypto.KeyDerivation{}) {
			return Detection{}, false, nil // tx public key was invalid
		}
		outputKeyPair.PublicKey, err = cncrypto.DerivePublicKey(*kd, outputIndex, spendPublicKey)
		if err != nil {
			return Detection{}, false, nil
		}
		outputKeyPair.SecretKey, err = cncrypto.DeriveSecretKey(*kd, outputIndex, record.SpendSecretKey)
		if err != nil {
			return Detection{}, false, nil
		}
		if outputKeyPair.PublicKey != output.PublicKey {
			return Detection{}, false, nil
		}
	}
	return Detection{Amount: output.Amount, OutputKeyPair: outputKeyPair, Address: address}, true, nil
}

// OutputHandler returns the unlinkable strategy: each output is underived
// with the view secret, yielding the spend-key candidate and the per-output
// secret scalar.
func (w *HDWallet) OutputHandler() OutputHandler {
	viewSecretKey := w.viewSecretKey
	return func(txPublicKey cncrypto.PublicKey, kd **cncrypto.KeyDerivation,
		txInputsHash cncrypto.Hash, outputIndex uint64, output OutputKey) (cncrypto.PublicKey, cncrypto.SecretKey) {

		spendPublicKey, secretScalar, err := cncrypto.UnlinkableUnderivePublicKey(
			viewSecretKey, txInputsHash, outputIndex, output.PublicKey, output.EncryptedSecret)
		if err != nil {
			return cncrypto.PublicKey{}, cncrypto.SecretKey{}
		}
		return spendPublicKey, secretScalar
	}
}

// DetectOurOutput decides ownership of one unlinkable output.  Auditable
// containers only own outputs carrying the auditable flag.
func (w *HDWallet) DetectOurOutput(tid, txInputsHash cncrypto.Hash, kd *cncrypto.KeyDerivation,
	outputIndex uint64, spendPublicKey cncrypto.PublicKey, secretScalar cncrypto.SecretKey,
	output OutputKey) (Detection, bool, error) {

	record, ok, err := getLookAheadRecord(w, &w.walletState, spendPublicKey)
	if err != nil || !ok {
		return Detection{}, false, err
	}
	address, err := w.RecordToAddress(record)
	if err != nil {
		return Detection{}, false, nil
	}
	if address.(AddressUnlinkable).IsAuditable != output.IsAuditable {
		return Detection{}, false, nil
	}
	var outputKeyPair cncrypto.KeyPair
	if record.SpendSecretKey != (cncrypto.SecretKey{}) {
		outputKeyPair.SecretKey, err = cncrypto.UnlinkableDeriveSecretKey(record.SpendSecretKey, secretScalar)
		if err != nil {
			return Detection{}, false, nil
		}
		pub, ok := cncrypto.SecretKeyToPublicKey(outputKeyPair.SecretKey)
		if !ok || pub != output.PublicKey {
			return Detection{}, false, nil
		}
		outputKeyPair.PublicKey = pub
	}
	return Detection{Amount: output.Amount, OutputKeyPair: outputKeyPair, Address: address}, true, nil
}
