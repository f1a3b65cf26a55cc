package wallet

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"

	"github.com/tstmis/bytecoin/cncrypto"
)

// historyFolder is <path>.history<net_suffix>.
func (w *ContainerWallet) historyFolder() string {
	return w.path + ".history" + netSuffix(w.net)
}

// paymentQueueFolder is <path>.payments<net_suffix>.
func (w *ContainerWallet) paymentQueueFolder() string {
	return w.path + ".payments" + netSuffix(w.net)
}

// historyFilename obfuscates the transaction id with the secret filename
// seed so the folder listing leaks nothing.
func (w *ContainerWallet) historyFilename(tid cncrypto.Hash) string {
	h := cncrypto.FastHash(tid[:], w.historyFilenameSeed[:])
	return hex.EncodeToString(h[:]) + ".txh"
}

// SaveHistory stores the used-address set of an outgoing transaction,
// encrypted under the history key, in a file named after the obfuscated
// transaction id.
func (w *ContainerWallet) SaveHistory(tid cncrypto.Hash, usedAddresses []AddressSimple) error {
	folder := w.historyFolder()
	if err := os.MkdirAll(folder, 0700); err != nil {
		return walletError(ErrWrite, "could not create history folder "+folder, err)
	}
	if len(usedAddresses) == 0 {
		return nil // saved empty history
	}
	data := make([]byte, 0, len(usedAddresses)*64)
	for _, addr := range usedAddresses {
		data = append(data, addr.ViewPublicKey[:]...)
		data = append(data, addr.SpendPublicKey[:]...)
	}
	iv := cncrypto.RandomChachaIV()
	body := make([]byte, 0, cncrypto.ChachaIVSize+len(data))
	body = append(body, iv[:]...)
	body = append(body, cncrypto.ChaCha8(w.historyKey, iv, data)...)

	return atomicSaveFile(filepath.Join(folder, w.historyFilename(tid)), body, filepath.Join(folder, "_tmp.txh"))
}

// LoadHistory returns the used-address set saved for a transaction, or an
// empty set when nothing was saved or the file does not parse.
func (w *ContainerWallet) LoadHistory(tid cncrypto.Hash) ([]AddressSimple, error) {
	body, err := os.ReadFile(filepath.Join(w.historyFolder(), w.historyFilename(tid)))
	if err != nil ||
		len(body) < cncrypto.ChachaIVSize ||
		(len(body)-cncrypto.ChachaIVSize)%64 != 0 {
		return nil, nil
	}
	var iv cncrypto.ChachaIV
	copy(iv[:], body[:cncrypto.ChachaIVSize])
	dec := cncrypto.ChaCha8(w.historyKey, iv, body[cncrypto.ChachaIVSize:])
	used := make([]AddressSimple, 0, len(dec)/64)
	for i := 0; i+64 <= len(dec); i += 64 {
		var addr AddressSimple
		copy(addr.ViewPublicKey[:], dec[i:i+32])
		copy(addr.SpendPublicKey[:], dec[i+32:i+64])
		used = append(used, addr)
	}
	return used, nil
}

// PaymentQueueAdd stores a raw transaction as <tid>.tx in the payments
// folder.  A failed save is logged and forgotten; the transaction can be
// re-queued.
func (w *ContainerWallet) PaymentQueueAdd(tid cncrypto.Hash, binaryTransaction []byte) error {
	folder := w.paymentQueueFolder()
	file := filepath.Join(folder, hex.EncodeToString(tid[:])+".tx")
	if err := os.MkdirAll(folder, 0700); err != nil {
		log.Warnf("Failed to create payment queue folder %s: %v", folder, err)
		return nil
	}
	if err := atomicSaveFile(file, binaryTransaction, filepath.Join(folder, "tmp.tx")); err != nil {
		log.Warnf("Failed to save transaction %s to file %s: %v", tid, file, err)
	} else {
		log.Infof("Saved transaction %s to file %s", tid, file)
	}
	return nil
}

// PaymentQueueGet returns every queued raw transaction.
func (w *ContainerWallet) PaymentQueueGet() ([][]byte, error) {
	folder := w.paymentQueueFolder()
	os.Remove(filepath.Join(folder, "tmp.tx"))
	entries, err := os.ReadDir(folder)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, walletError(ErrRead, "could not list payment queue folder "+folder, err)
	}
	var result [][]byte
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		body, err := os.ReadFile(filepath.Join(folder, e.Name()))
		if err != nil {
			continue
		}
		result = append(result, body)
	}
	return result, nil
}

// PaymentQueueRemove deletes a queued transaction and drops the folder once
// it becomes empty.
func (w *ContainerWallet) PaymentQueueRemove(tid cncrypto.Hash) error {
	file := filepath.Join(w.paymentQueueFolder(), hex.EncodeToString(tid[:])+".tx")
	if err := os.Remove(file); err != nil {
		log.Warnf("Failed to remove PQ transaction %s from file %s: %v", tid, file, err)
	} else {
		log.Infof("Removed PQ transaction %s from file %s", tid, file)
	}
	os.Remove(w.paymentQueueFolder()) // when it becomes empty
	return nil
}

// atomicSaveFile writes body to tmpPath, fsyncs and renames over path.
func atomicSaveFile(path string, body []byte, tmpPath string) error {
	f, err := os.OpenFile(tmpPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return walletError(ErrWrite, "could not create "+tmpPath, err)
	}
	if _, err := f.Write(body); err != nil {
		f.Close()
		return walletError(ErrWrite, "could not write "+tmpPath, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return walletError(ErrWrite, "could not sync "+tmpPath, err)
	}
	if err := f.Close(); err != nil {
		return walletError(ErrWrite, "could not close "+tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return walletError(ErrWrite, "could not replace "+path, err)
	}
	return nil
}
