// Package wallet implements the encrypted on-disk wallet container for a
// CryptoNote-family currency.  Two container variants coexist: a flat
// encrypted file holding independent spend keypairs, and a sqlite-backed
// container whose keypairs derive from a BIP-39 mnemonic.
package wallet

import (
	"github.com/lightningnetwork/lnd/clock"

	"github.com/tstmis/bytecoin/cncrypto"
)

const (
	// lookAhead is the number of pre-derived records an HD wallet keeps
	// beyond its used address count, so outputs to not-yet-announced
	// addresses are still recognized while scanning.
	lookAhead = 20000

	// checkKeysCount bounds the per-load key-match verification to the
	// first and last records, keeping open O(1) in memory while still
	// catching decryption with a wrong key.  More than 8KB of records is
	// covered at each end of the file.
	checkKeysCount = 128
)

// MainNet is the net name that maps to an empty file suffix.
const MainNet = "main"

// Record is one spend keypair owned by the wallet.  An all-zero secret key
// marks a tracking record.
type Record struct {
	SpendPublicKey    cncrypto.PublicKey
	SpendSecretKey    cncrypto.SecretKey
	CreationTimestamp uint64
}

// Address is the tagged address variant.  Exactly two shapes exist:
// AddressSimple for flat containers and AddressUnlinkable for HD ones.
// Engines reject foreign shapes.
type Address interface {
	addressVariant()
}

// AddressSimple is the legacy two-key address shape.
type AddressSimple struct {
	SpendPublicKey cncrypto.PublicKey
	ViewPublicKey  cncrypto.PublicKey
}

// AddressUnlinkable is the HD address shape.  SV is the view component
// bound to this particular spend key, which is what makes the address
// unlinkable.
type AddressUnlinkable struct {
	S           cncrypto.PublicKey
	SV          cncrypto.PublicKey
	IsAuditable bool
}

func (AddressSimple) addressVariant()     {}
func (AddressUnlinkable) addressVariant() {}

// Address type bytes stored in HD containers and mixed into the BIP-32
// derivation path.  Not iota as they are persisted.
const (
	AddressTypeUnlinkable          byte = 2
	AddressTypeUnlinkableAuditable byte = 3
)

// OutputKey is the chain-side description of one transaction output fed to
// the detector by the scanner.
type OutputKey struct {
	PublicKey       cncrypto.PublicKey
	EncryptedSecret cncrypto.PublicKey
	IsAuditable     bool
	Amount          uint64
}

// OutputHandler recognizes the spend-key candidate of one output.  The
// scanner calls it for every output of a transaction, passing the same kd
// slot for all of them so the ECDH derivation is computed at most once per
// transaction.  The unlinkable flavor additionally returns the per-output
// secret scalar.
type OutputHandler func(txPublicKey cncrypto.PublicKey, kd **cncrypto.KeyDerivation,
	txInputsHash cncrypto.Hash, outputIndex uint64, output OutputKey) (cncrypto.PublicKey, cncrypto.SecretKey)

// Detection is the result of a positive DetectOurOutput.
type Detection struct {
	Amount        uint64
	OutputKeyPair cncrypto.KeyPair
	Address       Address
}

// Wallet is the capability set shared by the two container engines.  The
// wallet object is single-threaded with respect to this API; the caller
// serializes access.
type Wallet interface {
	// Path returns the container file path.
	Path() string

	// Net returns the network the wallet operates on.
	Net() string

	// IsViewOnly reports whether all records are tracking records.
	IsViewOnly() bool

	// ViewPublicKey and ViewSecretKey return the container view keypair.
	ViewPublicKey() cncrypto.PublicKey
	ViewSecretKey() cncrypto.SecretKey

	// TxDerivationSeed returns the opaque seed consumed by the external
	// transaction builder.
	TxDerivationSeed() cncrypto.Hash

	// OldestTimestamp is the lower bound over record creation timestamps,
	// or 0 when the scan must start from the beginning of the chain.
	OldestTimestamp() uint64

	// RecordCount returns the number of stored records, look-ahead
	// included.
	RecordCount() int

	// GetFirstAddress returns the address of record 0.
	GetFirstAddress() (Address, error)

	// RecordToAddress converts a record to this container's address shape.
	RecordToAddress(record Record) (Address, error)

	// GetRecord fetches the record behind an address of this container's
	// shape.  It returns false for foreign shapes and unknown addresses.
	GetRecord(addr Address) (Record, bool)

	// GenerateNewAddresses appends records.  Zero secret keys request
	// fresh random records (flat) or the next deterministic records (HD);
	// nonzero keys import existing material (flat only).  The bool result
	// reports that an import lowered a creation timestamp and the caller
	// must rescan from ct.
	GenerateNewAddresses(sks []cncrypto.SecretKey, ct uint64) ([]Record, bool, error)

	// CreateLookAheadRecords advances the used address count so that the
	// first count records are considered used.  A no-op on flat wallets.
	CreateLookAheadRecords(count int) error

	// SetPassword re-encrypts all persisted bytes under a key derived
	// from the new password.
	SetPassword(password string) error

	// ExportWallet writes a copy of the container to exportPath under
	// newPassword, optionally stripped to view-only.
	ExportWallet(exportPath, newPassword string, viewOnly, viewOutgoingAddresses bool) error

	// ExportKeys returns the secret material as a string: 256 hex
	// characters for flat containers, the mnemonic for HD ones.
	ExportKeys() (string, error)

	// SetLabel attaches a human label to an address string.  An empty
	// label deletes.  Flat containers reject label storage.
	SetLabel(address, label string) error

	// GetLabel returns the label for an address string, or "".
	GetLabel(address string) string

	// OnFirstOutputFound sets the unknown creation timestamp once the
	// scanner sees the first output belonging to this wallet.
	OnFirstOutputFound(ts uint64) error

	// OutputHandler returns the detection strategy for this container
	// type.  The handler is safe to call from the scanner goroutine; it
	// only captures immutable key material.
	OutputHandler() OutputHandler

	// DetectOurOutput decides ownership of one output previously run
	// through the OutputHandler, returning the per-output keypair when
	// the record is spendable.
	DetectOurOutput(tid, txInputsHash cncrypto.Hash, kd *cncrypto.KeyDerivation, outputIndex uint64,
		spendPublicKey cncrypto.PublicKey, secretScalar cncrypto.SecretKey, output OutputKey) (Detection, bool, error)

	// PaymentQueueAdd stores a not-yet-confirmed transaction.  Flat
	// containers write it to its own file at once; HD containers write it
	// inside the open database transaction without committing.
	PaymentQueueAdd(tid cncrypto.Hash, binaryTransaction []byte) error

	// PaymentQueueGet returns all queued transactions for the current net.
	PaymentQueueGet() ([][]byte, error)

	// PaymentQueueRemove deletes a queued transaction.
	PaymentQueueRemove(tid cncrypto.Hash) error

	// SaveHistory and LoadHistory persist the used-address set of an
	// outgoing transaction.  HD wallets have no history storage and
	// return empty results.
	SaveHistory(tid cncrypto.Hash, usedAddresses []AddressSimple) error
	LoadHistory(tid cncrypto.Hash) ([]AddressSimple, error)

	// Backup copies the wallet and its adjacent state to dst.
	Backup(dst, password string) error

	// Close releases the container file or database handle and wipes key
	// material.
	Close() error
}

// Options carries the ambient dependencies of a container engine.
type Options struct {
	// Net selects the network; MainNet when empty.
	Net string

	// Clock supplies record creation timestamps.  Defaults to the wall
	// clock; tests inject a fixed one.
	Clock clock.Clock

	// Coinname is checked against the coinname row of HD containers.
	// Defaults to the package constant.
	Coinname string
}

// Coinname is the value of the coinname row new HD containers are stamped
// with.
const Coinname = "CryptoNote"

func (o *Options) normalized() Options {
	var out Options
	if o != nil {
		out = *o
	}
	if out.Net == "" {
		out.Net = MainNet
	}
	if out.Clock == nil {
		out.Clock = clock.NewDefaultClock()
	}
	if out.Coinname == "" {
		out.Coinname = Coinname
	}
	return out
}

// netSuffix is the per-network file and key suffix: empty for main,
// "_<net>net" otherwise.
func netSuffix(net string) string {
	if net == MainNet {
		return ""
	}
	return "_" + net + "net"
}

// Open probes the container type of the file at path and instantiates the
// matching engine.  The file is an HD wallet iff the SQL engine can open it
// read-only; otherwise it is treated as a flat container.
func Open(path, password string, opts *Options) (Wallet, error) {
	if IsSQLite(path) {
		return OpenHDWallet(path, password, opts)
	}
	return OpenContainerWallet(path, password, opts)
}

// walletState is the in-memory state common to both engines.
type walletState struct {
	path string
	net  string
	clk  clock.Clock
	coin string

	walletKey cncrypto.ChachaKey

	viewPublicKey cncrypto.PublicKey
	viewSecretKey cncrypto.SecretKey

	records         []Record
	recordsMap      map[cncrypto.PublicKey]int
	oldestTimestamp uint64
}

func newWalletState(path string, opts Options) walletState {
	return walletState{
		path:       path,
		net:        opts.Net,
		clk:        opts.Clock,
		coin:       opts.Coinname,
		recordsMap: make(map[cncrypto.PublicKey]int),
	}
}

func (s *walletState) Path() string                      { return s.path }
func (s *walletState) Net() string                       { return s.net }
func (s *walletState) ViewPublicKey() cncrypto.PublicKey { return s.viewPublicKey }
func (s *walletState) ViewSecretKey() cncrypto.SecretKey { return s.viewSecretKey }
func (s *walletState) OldestTimestamp() uint64           { return s.oldestTimestamp }
func (s *walletState) RecordCount() int                  { return len(s.records) }

// IsViewOnly reports whether the wallet holds no secret spend material.
// Load enforces that records are uniformly tracking or spending, so the
// first record decides.
func (s *walletState) IsViewOnly() bool {
	return len(s.records) > 0 && s.records[0].SpendSecretKey == (cncrypto.SecretKey{})
}

// addRecord appends a record and indexes its spend public key.
func (s *walletState) addRecord(r Record) {
	s.recordsMap[r.SpendPublicKey] = len(s.records)
	s.records = append(s.records, r)
}

// resetRecords drops all records, for reload paths.
func (s *walletState) resetRecords() {
	s.records = nil
	s.recordsMap = make(map[cncrypto.PublicKey]int)
}
