// Package chain defines the contract between a backing blockchain source
// and the wallet container.  The scanner walks blocks, runs every output of
// every transaction through the wallet's output handler and feeds the
// candidates to the detector; the wallet itself performs no network I/O.
package chain

import (
	"time"

	"github.com/tstmis/bytecoin/cncrypto"
	"github.com/tstmis/bytecoin/wallet"
)

// isCurrentDelta is the delta duration we'll use from the present time to
// determine if a backend is considered "current", i.e. synced to the tip of
// the chain.
const isCurrentDelta = 2 * time.Hour

// TransactionOutputs is one discovered transaction with the per-output data
// the detector needs.
type TransactionOutputs struct {
	TransactionID cncrypto.Hash
	TxPublicKey   cncrypto.PublicKey
	TxInputsHash  cncrypto.Hash
	Outputs       []wallet.OutputKey
	Timestamp     uint64
}

// Interface allows more than one backing blockchain source, as long as we
// write a driver for it.
type Interface interface {
	Start() error
	Stop()
	WaitForShutdown()

	// BestHeight reports the backend's current tip.
	BestHeight() (uint64, error)

	// IsCurrent reports whether the backend believes it is synced within
	// isCurrentDelta of the present time.
	IsCurrent() bool

	// Notifications delivers TransactionsFound and related notification
	// types.  Received from a channel to avoid handling them directly in
	// client callbacks, which isn't very Go-like and doesn't allow
	// blocking client calls.
	Notifications() <-chan interface{}

	BackEnd() string
}

// Notification types.
type (
	// ClientConnected is a notification for when a client connection is
	// opened or reestablished to the chain source.
	ClientConnected struct{}

	// TransactionsFound carries the outputs of one block's transactions
	// for detection.
	TransactionsFound struct {
		Height       uint64
		Transactions []TransactionOutputs
	}
)

// ScanTransaction runs every output of one transaction through the
// wallet's handler and detector, returning the positive detections in
// output order.  The key derivation is computed at most once per
// transaction and shared across its outputs.
func ScanTransaction(w wallet.Wallet, tx *TransactionOutputs) ([]wallet.Detection, error) {
	handler := w.OutputHandler()
	var kd *cncrypto.KeyDerivation
	var found []wallet.Detection
	for i, output := range tx.Outputs {
		spendPublicKey, secretScalar := handler(tx.TxPublicKey, &kd, tx.TxInputsHash, uint64(i), output)
		detection, ok, err := w.DetectOurOutput(
			tx.TransactionID, tx.TxInputsHash, kd, uint64(i), spendPublicKey, secretScalar, output)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if err := w.OnFirstOutputFound(tx.Timestamp); err != nil {
			return nil, err
		}
		found = append(found, detection)
	}
	return found, nil
}
