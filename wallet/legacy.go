package wallet

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/tstmis/bytecoin/cncrypto"
)

// The pre-V2 serialization: version:u8 || iv:8 || chacha8(key, iv, body)
// where body = view_pub:32 || view_sec:32 || count:u32le ||
// count * (pk:32 || sk:32 || ct:u64le).  It shares the master key with V2
// but encrypts the container as one blob, so records cannot be appended
// without a full rewrite - the reason V2 exists.
const legacyRecordSize = 32 + 32 + 8

// loadLegacy parses a pre-V2 file.  On success the caller rewrites the file
// in the V2 format.
func (w *ContainerWallet) loadLegacy() error {
	body, err := io.ReadAll(w.file)
	if err != nil {
		return walletError(ErrRead, "error reading wallet file "+w.path, err)
	}
	if len(body) < 1+cncrypto.ChachaIVSize+68 {
		return walletError(ErrDecrypt, "error decrypting wallet file: too short", nil)
	}
	var iv cncrypto.ChachaIV
	copy(iv[:], body[1:1+cncrypto.ChachaIVSize])
	plain := cncrypto.ChaCha8(w.walletKey, iv, body[1+cncrypto.ChachaIVSize:])

	copy(w.viewPublicKey[:], plain[:32])
	copy(w.viewSecretKey[:], plain[32:64])
	if !cncrypto.KeysMatch(w.viewSecretKey, w.viewPublicKey) {
		return walletError(ErrDecrypt, "restored view public key doesn't correspond to secret key", nil)
	}
	count := binary.LittleEndian.Uint32(plain[64:68])
	if uint64(count)*legacyRecordSize != uint64(len(plain)-68) {
		return walletError(ErrDecrypt, "error decrypting wallet file: record count mismatch", nil)
	}
	w.oldestTimestamp = math.MaxUint64
	off := 68
	for i := uint32(0); i < count; i++ {
		var record Record
		copy(record.SpendPublicKey[:], plain[off:off+32])
		copy(record.SpendSecretKey[:], plain[off+32:off+64])
		record.CreationTimestamp = binary.LittleEndian.Uint64(plain[off+64 : off+72])
		off += legacyRecordSize
		if record.SpendSecretKey != (cncrypto.SecretKey{}) &&
			!cncrypto.KeysMatch(record.SpendSecretKey, record.SpendPublicKey) {
			return walletError(ErrDecrypt, "restored spend public key doesn't correspond to secret key", nil)
		}
		if record.CreationTimestamp < w.oldestTimestamp {
			w.oldestTimestamp = record.CreationTimestamp
		}
		w.addRecord(record)
	}
	return nil
}
