package wallet

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"os"

	_ "modernc.org/sqlite" // Register the sqlite driver.

	"github.com/tstmis/bytecoin/cncrypto"
	"github.com/tstmis/bytecoin/internal/zero"
)

// currentVersion is the value of the "version" parameter row; loading any
// other value fails.
const currentVersion = "CryptoNoteWallet1"

const (
	addressCountKey      = "total_address_count"
	creationTimestampKey = "creation_timestamp"
)

// HDWallet is the database-backed engine.  All spend keypairs derive from a
// BIP-39 mnemonic; everything except the KDF salt is stored encrypted, and
// row lookup keys are opaque hashes so the database leaks no plaintext.
type HDWallet struct {
	walletState

	db *sql.DB
	// tx is the long-running write transaction; commit() cycles it.
	tx *sql.Tx

	addressType      byte
	spendKeyBase     cncrypto.KeyPair
	usedAddressCount int
	hasMnemonic      bool

	seed             cncrypto.Hash
	txDerivationSeed cncrypto.Hash

	labels map[string]string
}

var _ Wallet = (*HDWallet)(nil)

// IsSQLite reports whether the SQL engine can open the file read-only: the
// container type probe.
func IsSQLite(path string) bool {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return false
	}
	defer db.Close()
	var v int
	return db.QueryRow("PRAGMA schema_version").Scan(&v) == nil
}

// openHDDB opens the database with the durability pragmas and starts the
// long-running write transaction.
func openHDDB(path string) (*sql.DB, *sql.Tx, error) {
	dsn := "file:" + path + "?_pragma=journal_mode%3DWAL&_pragma=busy_timeout%3D5000&_pragma=synchronous%3DFULL&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, err
	}
	// The engine owns a single connection for its lifetime.
	db.SetMaxOpenConns(1)
	tx, err := db.Begin()
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, tx, nil
}

// CreateHDWallet creates a new HD container at path.  An empty mnemonic
// produces an empty container used as an export target; otherwise the
// mnemonic must carry a valid CRC32 version tag.  addressType selects
// regular or auditable unlinkable addresses.
func CreateHDWallet(path, password, mnemonic string, addressType byte, creationTimestamp uint64,
	mnemonicPassword string, opts *Options) (*HDWallet, error) {

	if _, err := os.Stat(path); err == nil {
		return nil, walletError(ErrExists, "will not overwrite existing wallet - delete it first or specify another file "+path, nil)
	}
	o := opts.normalized()
	w := &HDWallet{
		walletState:      newWalletState(path, o),
		usedAddressCount: 1,
		labels:           make(map[string]string),
	}
	db, tx, err := openHDDB(path)
	if err != nil {
		return nil, walletError(ErrWrite, "error creating wallet file "+path, err)
	}
	w.db, w.tx = db, tx

	for _, ddl := range []string{
		"CREATE TABLE unencrypted(key BLOB PRIMARY KEY COLLATE BINARY NOT NULL, value BLOB NOT NULL) WITHOUT ROWID",
		"CREATE TABLE parameters(key_hash BLOB PRIMARY KEY COLLATE BINARY NOT NULL, key BLOB NOT NULL, value BLOB NOT NULL) WITHOUT ROWID",
		"CREATE TABLE labels(address_hash BLOB PRIMARY KEY NOT NULL, address BLOB NOT NULL, label BLOB NOT NULL) WITHOUT ROWID",
		"CREATE TABLE payment_queue(tid_hash BLOB COLLATE BINARY NOT NULL, net_hash BLOB COLLATE BINARY NOT NULL, " +
			"tid BLOB NOT NULL, net BLOB NOT NULL, binary_transaction BLOB NOT NULL, " +
			"PRIMARY KEY (tid_hash, net_hash)) WITHOUT ROWID",
	} {
		if _, err := w.tx.Exec(ddl); err != nil {
			w.closeDB()
			return nil, walletError(ErrWrite, "error creating wallet schema", err)
		}
	}
	var salt [32]byte
	cncrypto.RandomBytes(salt[:])
	if err := w.putSalt(salt[:]); err != nil {
		w.closeDB()
		return nil, err
	}
	w.walletKey = cncrypto.KeyFromPassword(salt[:], []byte(password))

	if mnemonic == "" {
		return w, nil
	}
	checked, err := CheckMnemonic(mnemonic)
	if err != nil {
		w.closeDB()
		return nil, err
	}
	for _, p := range []struct {
		key   string
		value []byte
	}{
		{"version", []byte(currentVersion)},
		{"coinname", []byte(w.coin)},
		{"address-type", []byte{addressType}},
		{"mnemonic", []byte(checked)},
		// Written even when empty to keep the row count the same.
		{"mnemonic-password", []byte(mnemonicPassword)},
		{addressCountKey, uvarintBytes(uint64(w.usedAddressCount))},
	} {
		if err := w.put(p.key, p.value, true); err != nil {
			w.closeDB()
			return nil, err
		}
	}
	if err := w.OnFirstOutputFound(creationTimestamp); err != nil {
		w.closeDB()
		return nil, err
	}
	if err := w.load(); err != nil {
		w.closeDB()
		return nil, err
	}
	if err := w.commit(); err != nil {
		w.closeDB()
		return nil, err
	}
	return w, nil
}

// OpenHDWallet opens an existing HD container with a password.
func OpenHDWallet(path, password string, opts *Options) (*HDWallet, error) {
	o := opts.normalized()
	w := &HDWallet{
		walletState:      newWalletState(path, o),
		usedAddressCount: 1,
		labels:           make(map[string]string),
	}
	if _, err := os.Stat(path); err != nil {
		return nil, walletError(ErrRead, "error reading wallet file "+path, err)
	}
	db, tx, err := openHDDB(path)
	if err != nil {
		return nil, walletError(ErrRead, "error reading wallet file "+path, err)
	}
	w.db, w.tx = db, tx

	salt, err := w.getSalt()
	if err != nil {
		w.closeDB()
		return nil, walletError(ErrDecrypt, "wallet file invalid or wrong password", err)
	}
	w.walletKey = cncrypto.KeyFromPassword(salt, []byte(password))
	if err := w.load(); err != nil {
		w.closeDB()
		if IsError(err, ErrMnemonicCRC) {
			return nil, err
		}
		return nil, walletError(ErrDecrypt, "wallet file invalid or wrong password", err)
	}
	return w, nil
}

// load reads and validates parameters, reconstructs the key tree and fills
// the look-ahead window.
func (w *HDWallet) load() error {
	version, ok, err := w.getString("version")
	if err != nil {
		return err
	}
	if !ok || version != currentVersion {
		return walletError(ErrDecrypt, "wallet version unknown - "+version, nil)
	}
	coinname, ok, err := w.getString("coinname")
	if err != nil {
		return err
	}
	if !ok || coinname != w.coin {
		return walletError(ErrDecrypt, "wallet is for different coin - "+coinname, nil)
	}
	addressType, ok, err := w.get("address-type")
	if err != nil {
		return err
	}
	if !ok || len(addressType) != 1 {
		return walletError(ErrDecrypt, "wallet corrupted, no address type", nil)
	}
	w.addressType = addressType[0]
	if w.addressType != AddressTypeUnlinkable && w.addressType != AddressTypeUnlinkableAuditable {
		return walletError(ErrDecrypt, "wallet address type unknown", nil)
	}

	mnemonic, ok, err := w.getString("mnemonic")
	if err != nil {
		return err
	}
	if ok {
		mnemonicPassword, ok, err := w.getString("mnemonic-password")
		if err != nil {
			return err
		}
		if !ok {
			return walletError(ErrDecrypt, "wallet corrupted, no mnemonic password", nil)
		}
		checked, err := CheckMnemonic(mnemonic)
		if err != nil {
			return err
		}
		w.seed, w.spendKeyBase, err = deriveKeysFromMnemonic(checked, mnemonicPassword, w.addressType)
		if err != nil {
			return err
		}
		w.txDerivationSeed = deriveFromSeed(w.seed, "tx_derivation")
		w.hasMnemonic = true
	} else { // view-only
		basePub, ok, err := w.get("spend_key_base_public_key")
		if err != nil {
			return err
		}
		if !ok || len(basePub) != 32 {
			return walletError(ErrDecrypt, "wallet corrupted, no spend key base", nil)
		}
		copy(w.spendKeyBase.PublicKey[:], basePub)
		if !cncrypto.KeyIsValid(w.spendKeyBase.PublicKey) {
			return walletError(ErrDecrypt, "wallet corrupted - spend key base is invalid", nil)
		}
		// Only with tx_derivation_seed can a view-only wallet see
		// outgoing addresses.
		if seed, ok, err := w.get("tx_derivation_seed"); err != nil {
			return err
		} else if ok && len(seed) == cncrypto.HashSize {
			copy(w.txDerivationSeed[:], seed)
		}
	}
	w.viewSecretKey = cncrypto.HashToScalar(w.spendKeyBase.PublicKey[:], []byte("view_key"))
	viewPub, ok2 := cncrypto.SecretKeyToPublicKey(w.viewSecretKey)
	if !ok2 {
		return walletError(ErrDecrypt, "derived view secret key is invalid", nil)
	}
	w.viewPublicKey = viewPub

	if ba, ok, err := w.get(addressCountKey); err != nil {
		return err
	} else if ok {
		count, n := binary.Uvarint(ba)
		if n <= 0 {
			return walletError(ErrDecrypt, "wallet corrupted, bad address count", nil)
		}
		w.usedAddressCount = int(count)
	}
	if ba, ok, err := w.get(creationTimestampKey + netSuffix(w.net)); err != nil {
		return err
	} else if ok {
		ts, n := binary.Uvarint(ba)
		if n <= 0 {
			return walletError(ErrDecrypt, "wallet corrupted, bad creation timestamp", nil)
		}
		w.oldestTimestamp = ts
	} else {
		w.oldestTimestamp = 0
	}
	if err := w.generateAhead(); err != nil {
		return err
	}

	rows, err := w.tx.Query("SELECT address, label FROM labels")
	if err != nil {
		return walletError(ErrRead, "error reading labels", err)
	}
	defer rows.Close()
	for rows.Next() {
		var encAddress, encLabel []byte
		if err := rows.Scan(&encAddress, &encLabel); err != nil {
			return walletError(ErrRead, "error reading labels", err)
		}
		address, err := decryptBlob(w.walletKey, encAddress)
		if err != nil {
			return walletError(ErrDecrypt, "error decrypting label", err)
		}
		label, err := decryptBlob(w.walletKey, encLabel)
		if err != nil {
			return walletError(ErrDecrypt, "error decrypting label", err)
		}
		w.labels[string(address)] = string(label)
	}
	return rows.Err()
}

func uvarintBytes(v uint64) []byte {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], v)
	return buf[:n]
}

// commit ends the long-running write transaction and opens a fresh one.
func (w *HDWallet) commit() error {
	if err := w.tx.Commit(); err != nil {
		return walletError(ErrWrite, "error committing wallet database", err)
	}
	tx, err := w.db.Begin()
	if err != nil {
		return walletError(ErrWrite, "error reopening wallet transaction", err)
	}
	w.tx = tx
	return nil
}

func (w *HDWallet) putSalt(salt []byte) error {
	if _, err := w.tx.Exec("REPLACE INTO unencrypted (key, value) VALUES ('salt', ?)", salt); err != nil {
		return walletError(ErrWrite, "error writing wallet salt", err)
	}
	return nil
}

func (w *HDWallet) getSalt() ([]byte, error) {
	var salt []byte
	err := w.tx.QueryRow("SELECT value FROM unencrypted WHERE key = 'salt'").Scan(&salt)
	if err != nil {
		return nil, err
	}
	return salt, nil
}

// put stores an encrypted parameter row keyed by an opaque hash.
// noOverwrite fails on duplicate keys instead of replacing.
func (w *HDWallet) put(key string, value []byte, noOverwrite bool) error {
	keyHash := deriveFromKey(w.walletKey, "db_parameters"+key)
	stmt := "REPLACE INTO parameters (key_hash, key, value) VALUES (?, ?, ?)"
	if noOverwrite {
		stmt = "INSERT INTO parameters (key_hash, key, value) VALUES (?, ?, ?)"
	}
	_, err := w.tx.Exec(stmt, keyHash[:], encryptBlob(w.walletKey, []byte(key)), encryptBlob(w.walletKey, value))
	if err != nil {
		return walletError(ErrWrite, "error writing wallet parameter", err)
	}
	return nil
}

func (w *HDWallet) get(key string) ([]byte, bool, error) {
	keyHash := deriveFromKey(w.walletKey, "db_parameters"+key)
	var enc []byte
	err := w.tx.QueryRow("SELECT value FROM parameters WHERE key_hash = ?", keyHash[:]).Scan(&enc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, walletError(ErrRead, "error reading wallet parameter", err)
	}
	value, err := decryptBlob(w.walletKey, enc)
	if err != nil {
		return nil, false, walletError(ErrDecrypt, "error decrypting wallet parameter", err)
	}
	return value, true, nil
}

func (w *HDWallet) getString(key string) (string, bool, error) {
	value, ok, err := w.get(key)
	return string(value), ok, err
}

// parametersGet decrypts every parameter row, for password change and
// export.
func (w *HDWallet) parametersGet() ([][2][]byte, error) {
	rows, err := w.tx.Query("SELECT key, value FROM parameters")
	if err != nil {
		return nil, walletError(ErrRead, "error reading wallet parameters", err)
	}
	defer rows.Close()
	var result [][2][]byte
	for rows.Next() {
		var encKey, encValue []byte
		if err := rows.Scan(&encKey, &encValue); err != nil {
			return nil, walletError(ErrRead, "error reading wallet parameters", err)
		}
		key, err := decryptBlob(w.walletKey, encKey)
		if err != nil {
			return nil, walletError(ErrDecrypt, "error decrypting wallet parameter", err)
		}
		value, err := decryptBlob(w.walletKey, encValue)
		if err != nil {
			return nil, walletError(ErrDecrypt, "error decrypting wallet parameter", err)
		}
		result = append(result, [2][]byte{key, value})
	}
	return result, rows.Err()
}

// GenerateNewAddresses advances the used address count; HD wallets never
// import arbitrary keypairs, so every passed secret must be zero.
func (w *HDWallet) GenerateNewAddresses(sks []cncrypto.SecretKey, ct uint64) ([]Record, bool, error) {
	for _, sk := range sks {
		if sk != (cncrypto.SecretKey{}) {
			return nil, false, walletError(ErrDeterministic, "generating non-deterministic addresses not supported by HD wallet", nil)
		}
	}
	if len(sks) == 0 {
		return nil, false, nil
	}
	wasUsed := w.usedAddressCount
	w.usedAddressCount += len(sks)
	if err := w.generateAhead(); err != nil {
		return nil, false, err
	}
	result := make([]Record, len(sks))
	copy(result, w.records[wasUsed:wasUsed+len(sks)])
	if err := w.put(addressCountKey, uvarintBytes(uint64(w.usedAddressCount)), false); err != nil {
		return nil, false, err
	}
	if err := w.commit(); err != nil {
		return nil, false, err
	}
	return result, false, nil
}

// CreateLookAheadRecords marks the first count records used and regrows the
// look-ahead window.  Called by the detector when an output hits a
// look-ahead record.
func (w *HDWallet) CreateLookAheadRecords(count int) error {
	if count <= w.usedAddressCount {
		return nil
	}
	w.usedAddressCount = count
	if err := w.generateAhead(); err != nil {
		return err
	}
	if err := w.put(addressCountKey, uvarintBytes(uint64(w.usedAddressCount)), false); err != nil {
		return err
	}
	return w.commit()
}

// SetPassword decrypts every stored row, wipes the tables, derives a fresh
// master key from a fresh salt and re-inserts everything.
func (w *HDWallet) SetPassword(password string) error {
	parameters, err := w.parametersGet()
	if err != nil {
		return err
	}
	queue, err := w.paymentQueueGetAll()
	if err != nil {
		return err
	}
	for _, stmt := range []string{
		"DELETE FROM payment_queue",
		"DELETE FROM parameters",
		"DELETE FROM labels",
	} {
		if _, err := w.tx.Exec(stmt); err != nil {
			return walletError(ErrWrite, "error rewriting wallet database", err)
		}
	}
	var salt [32]byte
	cncrypto.RandomBytes(salt[:])
	if err := w.putSalt(salt[:]); err != nil {
		return err
	}
	w.walletKey = cncrypto.KeyFromPassword(salt[:], []byte(password))

	for _, p := range parameters {
		if err := w.put(string(p[0]), p[1], true); err != nil {
			return err
		}
	}
	for address, label := range w.labels {
		if err := w.SetLabel(address, label); err != nil {
			return err
		}
	}
	for _, el := range queue {
		if err := w.paymentQueueAddNet(el.tid, el.net, el.binaryTransaction); err != nil {
			return err
		}
	}
	return w.commit()
}

// ExportWallet copies the container to a new database under a new password.
// A view-only export drops the mnemonic rows and publishes the spend key
// base instead, plus the tx derivation seed when outgoing addresses should
// stay visible.
func (w *HDWallet) ExportWallet(exportPath, newPassword string, viewOnly, viewOutgoingAddresses bool) error {
	other, err := CreateHDWallet(exportPath, newPassword, "", 0, 0, "", &Options{Net: w.net, Clock: w.clk, Coinname: w.coin})
	if err != nil {
		return err
	}
	defer other.Close()

	parameters, err := w.parametersGet()
	if err != nil {
		return err
	}
	if !w.IsViewOnly() && viewOnly {
		if err := other.put("spend_key_base_public_key", w.spendKeyBase.PublicKey[:], true); err != nil {
			return err
		}
		if viewOutgoingAddresses {
			if err := other.put("tx_derivation_seed", w.txDerivationSeed[:], true); err != nil {
				return err
			}
		}
		for _, p := range parameters {
			key := string(p[0])
			if key == "mnemonic" || key == "mnemonic-password" {
				continue
			}
			if err := other.put(key, p[1], true); err != nil {
				return err
			}
		}
		for address, label := range w.labels {
			if err := other.SetLabel(address, label); err != nil {
				return err
			}
		}
	} else {
		for _, p := range parameters {
			if err := other.put(string(p[0]), p[1], true); err != nil {
				return err
			}
		}
		for address, label := range w.labels {
			if err := other.SetLabel(address, label); err != nil {
				return err
			}
		}
		queue, err := w.paymentQueueGetAll()
		if err != nil {
			return err
		}
		for _, el := range queue {
			if err := other.paymentQueueAddNet(el.tid, el.net, el.binaryTransaction); err != nil {
				return err
			}
		}
	}
	return other.commit()
}

// ExportKeys returns the stored mnemonic; view-only wallets have none.
func (w *HDWallet) ExportKeys() (string, error) {
	mnemonic, ok, err := w.getString("mnemonic")
	if err != nil {
		return "", err
	}
	if !ok {
		return "", walletError(ErrViewOnly, "exporting keys (mnemonic) not supported by view-only HD wallet", nil)
	}
	return mnemonic, nil
}

// TxDerivationSeed returns the opaque seed for the transaction builder.
func (w *HDWallet) TxDerivationSeed() cncrypto.Hash { return w.txDerivationSeed }

// GetFirstAddress returns the address of record 0.
func (w *HDWallet) GetFirstAddress() (Address, error) {
	return w.RecordToAddress(w.records[0])
}

// RecordToAddress builds the unlinkable address of a record.
func (w *HDWallet) RecordToAddress(record Record) (Address, error) {
	sv, err := cncrypto.GenerateAddressSV(record.SpendPublicKey, w.viewSecretKey)
	if err != nil {
		return nil, walletError(ErrDecrypt, "record spend public key is invalid", err)
	}
	return AddressUnlinkable{
		S:           record.SpendPublicKey,
		SV:          sv,
		IsAuditable: w.addressType == AddressTypeUnlinkableAuditable,
	}, nil
}

// IsAuditable reports whether this container issues auditable addresses.
func (w *HDWallet) IsAuditable() bool {
	return w.addressType == AddressTypeUnlinkableAuditable
}

// GetRecord fetches the record behind an unlinkable address.  Only used
// records match; look-ahead records are not yet announced.
func (w *HDWallet) GetRecord(addr Address) (Record, bool) {
	unlinkable, ok := addr.(AddressUnlinkable)
	if !ok || unlinkable.IsAuditable != w.IsAuditable() {
		return Record{}, false
	}
	slot, ok := w.recordsMap[unlinkable.S]
	if !ok || slot >= w.usedAddressCount {
		return Record{}, false
	}
	addr2, err := w.RecordToAddress(w.records[slot])
	if err != nil || addr2 != Address(unlinkable) {
		return Record{}, false
	}
	return w.records[slot], true
}

// SetLabel stores or deletes (empty label) a human label for an address
// string and commits.
func (w *HDWallet) SetLabel(address, label string) error {
	addressHash := deriveFromKey(w.walletKey, "db_labels"+address)
	if label == "" {
		delete(w.labels, address)
		if _, err := w.tx.Exec("DELETE FROM labels WHERE address_hash = ?", addressHash[:]); err != nil {
			return walletError(ErrWrite, "error deleting label", err)
		}
	} else {
		w.labels[address] = label
		_, err := w.tx.Exec("REPLACE INTO labels (address_hash, address, label) VALUES (?, ?, ?)",
			addressHash[:], encryptBlob(w.walletKey, []byte(address)), encryptBlob(w.walletKey, []byte(label)))
		if err != nil {
			return walletError(ErrWrite, "error writing label", err)
		}
	}
	return w.commit()
}

// GetLabel returns the label of an address string, or "".
func (w *HDWallet) GetLabel(address string) string { return w.labels[address] }

// OnFirstOutputFound persists the creation timestamp for the current net
// once the scanner finds the wallet's first output.
func (w *HDWallet) OnFirstOutputFound(ts uint64) error {
	if w.oldestTimestamp != 0 || ts == 0 {
		return nil
	}
	if err := w.put(creationTimestampKey+netSuffix(w.net), uvarintBytes(ts), false); err != nil {
		return err
	}
	w.oldestTimestamp = ts
	return w.commit()
}

type pqEntry struct {
	tid               cncrypto.Hash
	net               string
	binaryTransaction []byte
}

// paymentQueueGetAll decrypts every queue row across all nets.
func (w *HDWallet) paymentQueueGetAll() ([]pqEntry, error) {
	rows, err := w.tx.Query("SELECT tid, net, binary_transaction FROM payment_queue")
	if err != nil {
		return nil, walletError(ErrRead, "error reading payment queue", err)
	}
	defer rows.Close()
	var result []pqEntry
	for rows.Next() {
		var encTid, encNet, encBtx []byte
		if err := rows.Scan(&encTid, &encNet, &encBtx); err != nil {
			return nil, walletError(ErrRead, "error reading payment queue", err)
		}
		tid, err := decryptBlob(w.walletKey, encTid)
		if err != nil || len(tid) != cncrypto.HashSize {
			return nil, walletError(ErrDecrypt, "error decrypting payment queue", err)
		}
		net, err := decryptBlob(w.walletKey, encNet)
		if err != nil {
			return nil, walletError(ErrDecrypt, "error decrypting payment queue", err)
		}
		btx, err := decryptBlob(w.walletKey, encBtx)
		if err != nil {
			return nil, walletError(ErrDecrypt, "error decrypting payment queue", err)
		}
		var entry pqEntry
		copy(entry.tid[:], tid)
		entry.net = string(net)
		entry.binaryTransaction = btx
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (w *HDWallet) paymentQueueAddNet(tid cncrypto.Hash, net string, binaryTransaction []byte) error {
	tidHash := deriveFromKey(w.walletKey, "db_payment_queue_tid"+string(tid[:]))
	netHash := deriveFromKey(w.walletKey, "db_payment_queue_net"+net)
	_, err := w.tx.Exec(
		"REPLACE INTO payment_queue (tid_hash, net_hash, tid, net, binary_transaction) VALUES (?, ?, ?, ?, ?)",
		tidHash[:], netHash[:],
		encryptBlob(w.walletKey, tid[:]),
		encryptBlob(w.walletKey, []byte(net)),
		encryptBlob(w.walletKey, binaryTransaction))
	if err != nil {
		return walletError(ErrWrite, "error writing payment queue", err)
	}
	return nil
}

// PaymentQueueAdd queues a raw transaction for the current net.  It does
// not commit; the row becomes durable with the next operation that commits.
func (w *HDWallet) PaymentQueueAdd(tid cncrypto.Hash, binaryTransaction []byte) error {
	return w.paymentQueueAddNet(tid, w.net, binaryTransaction)
}

// PaymentQueueGet returns the queued transactions of the current net.
func (w *HDWallet) PaymentQueueGet() ([][]byte, error) {
	all, err := w.paymentQueueGetAll()
	if err != nil {
		return nil, err
	}
	var result [][]byte
	for _, el := range all {
		if el.net == w.net {
			result = append(result, el.binaryTransaction)
		}
	}
	return result, nil
}

// PaymentQueueRemove deletes a queued transaction.  A tid starting with 'x'
// hints that the caller wants the deletion durable immediately.
func (w *HDWallet) PaymentQueueRemove(tid cncrypto.Hash) error {
	tidHash := deriveFromKey(w.walletKey, "db_payment_queue_tid"+string(tid[:]))
	netHash := deriveFromKey(w.walletKey, "db_payment_queue_net"+w.net)
	if _, err := w.tx.Exec("DELETE FROM payment_queue WHERE net_hash = ? AND tid_hash = ?",
		netHash[:], tidHash[:]); err != nil {
		return walletError(ErrWrite, "error deleting payment queue row", err)
	}
	if tid[0] == 'x' {
		return w.commit()
	}
	return nil
}

// SaveHistory is a no-op: unlinkable addresses need no off-wallet history.
func (w *HDWallet) SaveHistory(tid cncrypto.Hash, usedAddresses []AddressSimple) error { return nil }

// LoadHistory always returns an empty set for HD wallets.
func (w *HDWallet) LoadHistory(tid cncrypto.Hash) ([]AddressSimple, error) { return nil, nil }

// Backup exports the full wallet to dst.
func (w *HDWallet) Backup(dst, password string) error {
	return w.ExportWallet(dst, password, false, false)
}

func (w *HDWallet) closeDB() {
	if w.tx != nil {
		w.tx.Rollback()
		w.tx = nil
	}
	if w.db != nil {
		w.db.Close()
		w.db = nil
	}
}

// Close rolls back the open transaction, releases the database and wipes
// key material.  Mutations are only durable after a commit.  Every mutating
// operation commits except PaymentQueueAdd and PaymentQueueRemove of a tid
// not starting with 'x'; their rows are discarded here unless a later
// operation committed them.
func (w *HDWallet) Close() error {
	w.closeDB()
	zero.Bytea32((*[32]byte)(&w.walletKey))
	zero.Bytea32((*[32]byte)(&w.viewSecretKey))
	zero.Bytea32((*[32]byte)(&w.spendKeyBase.SecretKey))
	zero.Bytea32((*[32]byte)(&w.seed))
	for i := range w.records {
		zero.Bytea32((*[32]byte)(&w.records[i].SpendSecretKey))
	}
	return nil
}
