package wallet

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/tstmis/bytecoin/cncrypto"
	"github.com/tstmis/bytecoin/internal/zero"
)

// serializationVersionV2 is the current flat container version byte.
const serializationVersionV2 = 6

const (
	// encryptedRecordSize is iv:8 plus the chacha8 ciphertext of
	// pk:32 || sk:32 || ct:u64le.
	encryptedRecordPayload = 32 + 32 + 8
	encryptedRecordSize    = cncrypto.ChachaIVSize + encryptedRecordPayload

	// containerPrefixSize is next_iv:8 plus the encrypted view keys.
	containerPrefixSize = cncrypto.ChachaIVSize + encryptedRecordSize

	// countCapacityOffset is where capacity:u64le || count:u64le live.
	countCapacityOffset = 1 + containerPrefixSize

	containerHeaderSize = countCapacityOffset + 16
)

// walletFileSize returns the exact file size of a V2 container holding n
// records.
func walletFileSize(n int) int64 {
	return int64(containerHeaderSize) + int64(n)*encryptedRecordSize
}

// encryptKeyPair produces one 80-byte encrypted record with a fresh random
// IV.
func encryptKeyPair(pk cncrypto.PublicKey, sk cncrypto.SecretKey, ct uint64, key cncrypto.ChachaKey) [encryptedRecordSize]byte {
	var plain [encryptedRecordPayload]byte
	copy(plain[:32], pk[:])
	copy(plain[32:64], sk[:])
	binary.LittleEndian.PutUint64(plain[64:], ct)

	iv := cncrypto.RandomChachaIV()
	var out [encryptedRecordSize]byte
	copy(out[:cncrypto.ChachaIVSize], iv[:])
	copy(out[cncrypto.ChachaIVSize:], cncrypto.ChaCha8(key, iv, plain[:]))
	zero.Bytes(plain[32:64])
	return out
}

// decryptKeyPair reverses encryptKeyPair.
func decryptKeyPair(rec [encryptedRecordSize]byte, key cncrypto.ChachaKey) (pk cncrypto.PublicKey, sk cncrypto.SecretKey, ct uint64) {
	var iv cncrypto.ChachaIV
	copy(iv[:], rec[:cncrypto.ChachaIVSize])
	plain := cncrypto.ChaCha8(key, iv, rec[cncrypto.ChachaIVSize:])
	copy(pk[:], plain[:32])
	copy(sk[:], plain[32:64])
	ct = binary.LittleEndian.Uint64(plain[64:])
	zero.Bytes(plain)
	return pk, sk, ct
}

// ContainerWallet is the flat-file engine.  It supports arbitrary imported
// keypairs ("simple" addresses) and stores each record as an independently
// encrypted fixed-size cell, so records can be appended without rewriting
// the file.
type ContainerWallet struct {
	walletState

	// file is nil after a legacy load until the first rewrite.
	file     *os.File
	readonly bool

	seed                cncrypto.Hash
	txDerivationSeed    cncrypto.Hash
	historyFilenameSeed cncrypto.Hash
	historyKey          cncrypto.ChachaKey
}

var _ Wallet = (*ContainerWallet)(nil)

// CreateContainerWallet creates a new flat container at path.  When
// importKeys is empty a random view keypair and one random record are
// generated; otherwise importKeys must be exactly 256 hex characters
// (spend_pub || view_pub || spend_sec || view_sec).
func CreateContainerWallet(path, password, importKeys string, creationTimestamp uint64, opts *Options) (*ContainerWallet, error) {
	o := opts.normalized()
	w := &ContainerWallet{walletState: newWalletState(path, o)}
	w.walletKey = cncrypto.KeyFromPassword(nil, []byte(password))
	w.oldestTimestamp = math.MaxUint64

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, walletError(ErrExists, "will not overwrite existing wallet - delete it first or specify another file "+path, err)
		}
		return nil, walletError(ErrWrite, "error creating wallet file "+path, err)
	}
	f.Close()

	if importKeys == "" {
		w.oldestTimestamp = uint64(o.Clock.Now().Unix())
		viewPair := cncrypto.RandomKeyPair()
		w.viewPublicKey, w.viewSecretKey = viewPair.PublicKey, viewPair.SecretKey
		spendPair := cncrypto.RandomKeyPair()
		w.addRecord(Record{
			SpendPublicKey:    spendPair.PublicKey,
			SpendSecretKey:    spendPair.SecretKey,
			CreationTimestamp: w.oldestTimestamp,
		})
	} else {
		if len(importKeys) != 256 {
			return nil, walletError(ErrDecrypt, "imported keys should be exactly 128 hex bytes", nil)
		}
		var record Record
		record.CreationTimestamp = creationTimestamp
		ok := decodeHexKey(importKeys[0:64], record.SpendPublicKey[:]) &&
			decodeHexKey(importKeys[64:128], w.viewPublicKey[:]) &&
			decodeHexKey(importKeys[128:192], record.SpendSecretKey[:]) &&
			decodeHexKey(importKeys[192:256], w.viewSecretKey[:])
		if !ok {
			return nil, walletError(ErrDecrypt, "imported keys should contain only hex bytes", nil)
		}
		if !cncrypto.KeysMatch(w.viewSecretKey, w.viewPublicKey) {
			return nil, walletError(ErrDecrypt, "imported secret view key does not match corresponding public key", nil)
		}
		if record.SpendSecretKey != (cncrypto.SecretKey{}) &&
			!cncrypto.KeysMatch(record.SpendSecretKey, record.SpendPublicKey) {
			return nil, walletError(ErrDecrypt, "imported secret spend key does not match corresponding public key", nil)
		}
		w.addRecord(record)
		w.oldestTimestamp = 0 // will scan the entire blockchain
	}
	if err := w.saveAndCheck(); err != nil {
		return nil, err
	}
	if err := w.load(); err != nil {
		return nil, err
	}
	return w, nil
}

func decodeHexKey(s string, out []byte) bool {
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != len(out) {
		return false
	}
	copy(out, b)
	return true
}

// OpenContainerWallet opens an existing flat container with a password.
func OpenContainerWallet(path, password string, opts *Options) (*ContainerWallet, error) {
	return openContainerWithKey(path, cncrypto.KeyFromPassword(nil, []byte(password)), opts)
}

func openContainerWithKey(path string, key cncrypto.ChachaKey, opts *Options) (*ContainerWallet, error) {
	o := opts.normalized()
	w := &ContainerWallet{walletState: newWalletState(path, o)}
	w.walletKey = key
	w.oldestTimestamp = math.MaxUint64
	if err := w.load(); err != nil {
		return nil, err
	}
	return w, nil
}

// load opens the file, probes the version byte and dispatches to the V2 or
// legacy reader.  A successfully loaded legacy file is opportunistically
// rewritten in the V2 format.
func (w *ContainerWallet) load() error {
	// Create and legacy-upgrade paths reload in place.
	w.resetRecords()
	if w.file != nil {
		w.file.Close()
		w.file = nil
	}
	f, err := os.OpenFile(w.path, os.O_RDWR, 0600)
	if err != nil {
		// Read-only media.
		f, err = os.Open(w.path)
		if err != nil {
			return walletError(ErrRead, "error reading wallet file "+w.path, err)
		}
		w.readonly = true
	}
	w.file = f

	var version [1]byte
	if _, err := io.ReadFull(w.file, version[:]); err != nil {
		return walletError(ErrRead, "error reading wallet file "+w.path, err)
	}
	if version[0] > serializationVersionV2 {
		return walletError(ErrUnknownVersion, "unknown wallet file version", nil)
	}
	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return walletError(ErrRead, "error reading wallet file "+w.path, err)
	}
	if version[0] < serializationVersionV2 {
		if err := w.loadLegacy(); err != nil {
			return err
		}
		// Indicates legacy format until the next rewrite.
		w.file.Close()
		w.file = nil
		if err := w.saveAndCheck(); err != nil {
			// Probably read-only, ignore.
			log.Warnf("Could not overwrite legacy wallet file: %v", err)
		} else {
			log.Warnf("Overwritten legacy wallet file with new data format")
		}
	} else if err := w.loadContainerStorage(); err != nil {
		return err
	}
	if len(w.records) == 0 {
		return walletError(ErrDecrypt, "error reading wallet file", nil)
	}
	if !w.IsViewOnly() {
		w.seed = cncrypto.FastHash(w.viewSecretKey[:], w.records[0].SpendSecretKey[:])
		w.txDerivationSeed = deriveFromSeedLegacy(w.seed, "tx_derivation")
		w.historyFilenameSeed = deriveFromSeedLegacy(w.seed, "history_filename")
		w.historyKey = cncrypto.ChachaKey(deriveFromSeedLegacy(w.seed, "history"))
	}
	return nil
}

// loadContainerStorage reads the fixed V2 layout.
func (w *ContainerWallet) loadContainerStorage() error {
	header := make([]byte, containerHeaderSize)
	if _, err := io.ReadFull(w.file, header); err != nil {
		return walletError(ErrRead, "error reading wallet file "+w.path, err)
	}
	var encViewKeys [encryptedRecordSize]byte
	copy(encViewKeys[:], header[1+cncrypto.ChachaIVSize:1+containerPrefixSize])
	capacity := binary.LittleEndian.Uint64(header[countCapacityOffset:])
	count := binary.LittleEndian.Uint64(header[countCapacityOffset+8:])

	// The view keys timestamp is ignored on load.
	w.viewPublicKey, w.viewSecretKey, _ = decryptKeyPair(encViewKeys, w.walletKey)
	if !cncrypto.KeysMatch(w.viewSecretKey, w.viewPublicKey) {
		return walletError(ErrDecrypt, "restored view public key doesn't correspond to secret key", nil)
	}

	// Protection against write shredding: a torn append leaves the old
	// count in place, and a torn header write leaves the old capacity, so
	// the smaller of the two is always a safe record count.  A truncated
	// tail additionally caps the count at the full records present.
	itemCount := count
	if capacity < itemCount {
		itemCount = capacity
	}
	fileSize, err := w.file.Seek(0, io.SeekEnd)
	if err != nil {
		return walletError(ErrRead, "error reading wallet file "+w.path, err)
	}
	if byFile := uint64(fileSize-int64(containerHeaderSize)) / encryptedRecordSize; byFile < itemCount {
		itemCount = byFile
	}
	if _, err := w.file.Seek(int64(containerHeaderSize), io.SeekStart); err != nil {
		return walletError(ErrRead, "error reading wallet file "+w.path, err)
	}

	trackingMode := false
	for i := uint64(0); i < itemCount; i++ {
		var enc [encryptedRecordSize]byte
		if _, err := io.ReadFull(w.file, enc[:]); err != nil {
			return walletError(ErrRead, "error reading wallet file "+w.path, err)
		}
		var record Record
		record.SpendPublicKey, record.SpendSecretKey, record.CreationTimestamp = decryptKeyPair(enc, w.walletKey)

		isTracking := record.SpendSecretKey == (cncrypto.SecretKey{})
		if i == 0 {
			trackingMode = isTracking
		} else if trackingMode != isTracking {
			return walletError(ErrDecrypt, "all addresses must be either tracking or not", nil)
		}
		if i < checkKeysCount || i >= itemCount-checkKeysCount {
			if !isTracking {
				if !cncrypto.KeysMatch(record.SpendSecretKey, record.SpendPublicKey) {
					return walletError(ErrDecrypt, "restored spend public key doesn't correspond to secret key", nil)
				}
			} else if !cncrypto.KeyIsValid(record.SpendPublicKey) {
				return walletError(ErrDecrypt, "public spend key is incorrect", nil)
			}
		}
		if record.CreationTimestamp < w.oldestTimestamp {
			w.oldestTimestamp = record.CreationTimestamp
		}
		w.addRecord(record)
	}

	// Legacy wallets over-allocated; drop the surplus tail.
	if shouldBe := walletFileSize(len(w.records)); fileSize > shouldBe && !w.readonly {
		if err := w.file.Truncate(shouldBe); err == nil {
			log.Warnf("Truncated wallet file to size=%d", shouldBe)
		}
	}
	return nil
}

// save writes the whole container to exportPath under the given key.
// createNew refuses to overwrite an existing file.
func (w *ContainerWallet) save(exportPath string, key cncrypto.ChachaKey, viewOnly bool, createNew bool) error {
	openFlags := os.O_RDWR | os.O_CREATE | os.O_TRUNC
	if createNew {
		openFlags = os.O_RDWR | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(exportPath, openFlags, 0600)
	if err != nil {
		if createNew && errors.Is(err, os.ErrExist) {
			return walletError(ErrExists, "will not overwrite existing wallet "+exportPath, err)
		}
		return walletError(ErrWrite, "error writing wallet file "+exportPath, err)
	}
	defer f.Close()

	buf := make([]byte, 0, walletFileSize(len(w.records)))
	buf = append(buf, serializationVersionV2)
	buf = append(buf, make([]byte, cncrypto.ChachaIVSize)...) // next_iv, unused
	encViewKeys := encryptKeyPair(w.viewPublicKey, w.viewSecretKey, w.oldestTimestamp, key)
	buf = append(buf, encViewKeys[:]...)
	var countData [8]byte
	binary.LittleEndian.PutUint64(countData[:], uint64(len(w.records)))
	buf = append(buf, countData[:]...) // capacity is always written equal to count
	buf = append(buf, countData[:]...)
	for _, rec := range w.records {
		sk := rec.SpendSecretKey
		if viewOnly {
			sk = cncrypto.SecretKey{}
		}
		enc := encryptKeyPair(rec.SpendPublicKey, sk, rec.CreationTimestamp, key)
		buf = append(buf, enc[:]...)
	}
	if _, err := f.Write(buf); err != nil {
		return walletError(ErrWrite, "error writing wallet file "+exportPath, err)
	}
	if err := f.Sync(); err != nil {
		return walletError(ErrWrite, "error writing wallet file "+exportPath, err)
	}
	return nil
}

// saveAndCheck writes the container to <path>.tmp, reopens the copy as a
// fresh wallet, compares it field-wise against the in-memory state and only
// then atomically renames it over the original.
func (w *ContainerWallet) saveAndCheck() error {
	tmpPath := w.path + ".tmp"
	if err := w.save(tmpPath, w.walletKey, false, false); err != nil {
		return err
	}
	other, err := openContainerWithKey(tmpPath, w.walletKey, &Options{Net: w.net, Clock: w.clk, Coinname: w.coin})
	if err != nil {
		return walletError(ErrWrite, "error writing wallet file - verification reload failed", err)
	}
	if !w.stateEqual(&other.walletState) {
		other.file.Close()
		return walletError(ErrWrite, "error writing wallet file - records do not match", nil)
	}
	if w.file != nil {
		w.file.Close()
		w.file = nil
	}
	if err := os.Rename(tmpPath, w.path); err != nil {
		other.file.Close()
		return walletError(ErrWrite, "error replacing wallet file", err)
	}
	// Adopt the verified handle; the rename kept its inode.
	w.file = other.file
	other.file = nil
	w.readonly = false
	return nil
}

// stateEqual compares the persisted fields.  oldestTimestamp is derived
// from the records on load and is deliberately left out: a fresh import
// carries 0 (scan everything) while the reloaded copy recomputes the
// record minimum.
func (s *walletState) stateEqual(other *walletState) bool {
	if s.viewPublicKey != other.viewPublicKey || s.viewSecretKey != other.viewSecretKey ||
		len(s.records) != len(other.records) {
		return false
	}
	for i := range s.records {
		if s.records[i] != other.records[i] {
			return false
		}
	}
	return true
}

// GenerateNewAddresses appends records: a zero secret key requests a fresh
// random record stamped now, a nonzero one imports an existing keypair
// stamped ct.  Re-importing a known keypair with an older timestamp lowers
// the stored one, which forces a full rewrite and a rescan from ct.
func (w *ContainerWallet) GenerateNewAddresses(sks []cncrypto.SecretKey, ct uint64) ([]Record, bool, error) {
	if w.IsViewOnly() {
		return nil, false, walletError(ErrViewOnly, "generate new addresses impossible for view-only wallet", nil)
	}
	if w.file == nil {
		log.Warnf("Creation of new addresses forces overwrite of legacy format wallet")
		if err := w.saveAndCheck(); err != nil {
			return nil, false, err
		}
	}
	now := uint64(w.clk.Now().Unix())
	rescanFromCT := false
	appendPos := walletFileSize(len(w.records))
	if _, err := w.file.Seek(appendPos, io.SeekStart); err != nil {
		return nil, false, walletError(ErrWrite, "error writing wallet file "+w.path, err)
	}
	var result []Record
	appended := false
	for _, sk := range sks {
		var record Record
		if sk == (cncrypto.SecretKey{}) {
			record.CreationTimestamp = now
			for {
				pair := cncrypto.RandomKeyPair()
				record.SpendPublicKey, record.SpendSecretKey = pair.PublicKey, pair.SecretKey
				if _, exists := w.recordsMap[record.SpendPublicKey]; !exists {
					break
				}
			}
			if record.CreationTimestamp < w.oldestTimestamp {
				w.oldestTimestamp = record.CreationTimestamp
			}
		} else {
			record.CreationTimestamp = ct
			record.SpendSecretKey = sk
			pub, ok := cncrypto.SecretKeyToPublicKey(sk)
			if !ok {
				return nil, false, walletError(ErrDecrypt, "imported keypair is invalid", nil)
			}
			record.SpendPublicKey = pub
		}
		if slot, exists := w.recordsMap[record.SpendPublicKey]; exists {
			if w.records[slot].CreationTimestamp > record.CreationTimestamp {
				w.records[slot].CreationTimestamp = record.CreationTimestamp
				if record.CreationTimestamp < w.oldestTimestamp {
					w.oldestTimestamp = record.CreationTimestamp
				}
				rescanFromCT = true
			}
			result = append(result, w.records[slot])
			continue
		}
		w.addRecord(record)
		enc := encryptKeyPair(record.SpendPublicKey, record.SpendSecretKey, record.CreationTimestamp, w.walletKey)
		if _, err := w.file.Write(enc[:]); err != nil {
			return nil, false, walletError(ErrWrite, "error writing wallet file "+w.path, err)
		}
		appended = true
		result = append(result, record)
	}
	// Records first, fsync, then the count header, fsync again.  A crash
	// in between leaves the old count in place and the new bytes are
	// ignored on the next load.
	if appended {
		if err := w.file.Sync(); err != nil {
			return nil, false, walletError(ErrWrite, "error writing wallet file "+w.path, err)
		}
	}
	var countData [16]byte
	binary.LittleEndian.PutUint64(countData[:8], uint64(len(w.records)))
	binary.LittleEndian.PutUint64(countData[8:], uint64(len(w.records)))
	if _, err := w.file.WriteAt(countData[:], int64(countCapacityOffset)); err != nil {
		return nil, false, walletError(ErrWrite, "error writing wallet file "+w.path, err)
	}
	if err := w.file.Sync(); err != nil {
		return nil, false, walletError(ErrWrite, "error writing wallet file "+w.path, err)
	}
	if rescanFromCT {
		// Timestamps of existing records changed; we never write to the
		// middle of the file, so fall back to a full rewrite.
		log.Warnf("Updating creation timestamp of existing addresses to %d in a wallet file "+
			"(might take minutes for large wallets)...", ct)
		if err := w.saveAndCheck(); err != nil {
			return nil, false, err
		}
	}
	return result, rescanFromCT, nil
}

// CreateLookAheadRecords is a no-op for flat containers, which have no
// look-ahead window.
func (w *ContainerWallet) CreateLookAheadRecords(count int) error { return nil }

// SetPassword derives a fresh master key from the password and rewrites the
// whole file under it.
func (w *ContainerWallet) SetPassword(password string) error {
	w.walletKey = cncrypto.KeyFromPassword(nil, []byte(password))
	return w.saveAndCheck()
}

// ExportWallet writes a copy of the container under a new password,
// optionally stripped of secret spend keys.  All records are fully key-match
// checked before export.
func (w *ContainerWallet) ExportWallet(exportPath, newPassword string, viewOnly, viewOutgoingAddresses bool) error {
	for _, rec := range w.records {
		if rec.SpendSecretKey != (cncrypto.SecretKey{}) {
			if !cncrypto.KeysMatch(rec.SpendSecretKey, rec.SpendPublicKey) {
				return walletError(ErrDecrypt, "spend public key doesn't correspond to secret key (corrupted wallet?)", nil)
			}
		} else if !cncrypto.KeyIsValid(rec.SpendPublicKey) {
			return walletError(ErrDecrypt, "public spend key is incorrect (corrupted wallet?)", nil)
		}
	}
	newKey := cncrypto.KeyFromPassword(nil, []byte(newPassword))
	return w.save(exportPath, newKey, viewOnly, true)
}

// ExportKeys returns the first record and view keypair as 256 hex
// characters: spend_pub || view_pub || spend_sec || view_sec.
func (w *ContainerWallet) ExportKeys() (string, error) {
	first := w.records[0]
	out := make([]byte, 0, 128)
	out = append(out, first.SpendPublicKey[:]...)
	out = append(out, w.viewPublicKey[:]...)
	out = append(out, first.SpendSecretKey[:]...)
	out = append(out, w.viewSecretKey[:]...)
	return hex.EncodeToString(out), nil
}

// TxDerivationSeed returns the opaque seed for the transaction builder.
func (w *ContainerWallet) TxDerivationSeed() cncrypto.Hash { return w.txDerivationSeed }

// GetFirstAddress returns the address of record 0.
func (w *ContainerWallet) GetFirstAddress() (Address, error) {
	return w.RecordToAddress(w.records[0])
}

// RecordToAddress builds the simple two-key address of a record.
func (w *ContainerWallet) RecordToAddress(record Record) (Address, error) {
	return AddressSimple{SpendPublicKey: record.SpendPublicKey, ViewPublicKey: w.viewPublicKey}, nil
}

// GetRecord fetches the record behind a simple address.
func (w *ContainerWallet) GetRecord(addr Address) (Record, bool) {
	simple, ok := addr.(AddressSimple)
	if !ok || simple.ViewPublicKey != w.viewPublicKey {
		return Record{}, false
	}
	slot, ok := w.recordsMap[simple.SpendPublicKey]
	if !ok {
		return Record{}, false
	}
	return w.records[slot], true
}

// SetLabel always fails: the flat format has no label storage.
func (w *ContainerWallet) SetLabel(address, label string) error {
	return walletError(ErrLabelsUnsupported, "linkable wallet file cannot store labels", nil)
}

// GetLabel always returns the empty label.
func (w *ContainerWallet) GetLabel(address string) string { return "" }

// OnFirstOutputFound sets the unknown (zero) creation timestamps to ts once the
// scanner finds the wallet's first output.  The legacy format has no place
// for non-main nets.
func (w *ContainerWallet) OnFirstOutputFound(ts uint64) error {
	if w.net != MainNet {
		return nil
	}
	if ts == 0 || w.oldestTimestamp != 0 {
		return nil
	}
	w.oldestTimestamp = ts
	for i := range w.records {
		if w.records[i].CreationTimestamp == 0 {
			w.records[i].CreationTimestamp = ts
		}
	}
	log.Warnf("Updating creation timestamp to %d in a wallet file (might take minutes for large wallets)...", ts)
	return w.saveAndCheck()
}

// Backup exports the wallet and copies the adjacent history and payment
// queue folders next to dst.
func (w *ContainerWallet) Backup(dst, password string) error {
	dstHistory := dst + ".history"
	dstPayments := dst + ".payments"
	if err := os.MkdirAll(dstPayments, 0700); err != nil {
		return walletError(ErrWrite, "could not create folder for backup "+dstPayments, err)
	}
	if err := os.MkdirAll(dstHistory, 0700); err != nil {
		return walletError(ErrWrite, "could not create folder for backup "+dstHistory, err)
	}
	if err := w.ExportWallet(dst, password, false, false); err != nil {
		return err
	}
	if err := copyFolderFiles(w.paymentQueueFolder(), dstPayments); err != nil {
		return err
	}
	return copyFolderFiles(w.historyFolder(), dstHistory)
}

func copyFolderFiles(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return walletError(ErrRead, "could not list folder "+src, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		body, err := os.ReadFile(filepath.Join(src, e.Name()))
		if err != nil {
			return walletError(ErrRead, "could not read "+e.Name(), err)
		}
		if err := os.WriteFile(filepath.Join(dst, e.Name()), body, 0600); err != nil {
			return walletError(ErrWrite, "could not write "+e.Name(), err)
		}
	}
	return nil
}

// Close releases the file handle and wipes key material.
func (w *ContainerWallet) Close() error {
	var err error
	if w.file != nil {
		err = w.file.Close()
		w.file = nil
	}
	zero.Bytea32((*[32]byte)(&w.walletKey))
	zero.Bytea32((*[32]byte)(&w.viewSecretKey))
	zero.Bytea32((*[32]byte)(&w.historyKey))
	zero.Bytea32((*[32]byte)(&w.seed))
	for i := range w.records {
		zero.Bytea32((*[32]byte)(&w.records[i].SpendSecretKey))
	}
	return err
}
