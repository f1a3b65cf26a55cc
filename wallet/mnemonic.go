package wallet

import (
	"encoding/binary"
	"hash/crc32"
	"strings"

	"github.com/tyler-smith/go-bip39/wordlists"

	"github.com/tstmis/bytecoin/cncrypto"
)

// MnemonicVersion is the CRC32 tag every wallet mnemonic must carry.  The
// checksum of the space-joined word bytes (raw CRC32: zero init, no final
// complement) equals this constant.
const MnemonicVersion uint32 = 0x1DA4B1CE

// bitsPerWord is the entropy contributed by one word of the 2048-word list.
const bitsPerWord = 11

var (
	crcTable = crc32.MakeTable(crc32.IEEE)

	// crcRevIndex maps the top byte of a table entry back to the byte that
	// produced it, enabling the reverse zero step.
	crcRevIndex [256]byte
)

func init() {
	for b := 0; b < 256; b++ {
		crcRevIndex[crcTable[b]>>24] = byte(b)
	}
}

// crcStep feeds one byte to the raw CRC32.
func crcStep(crc uint32, b byte) uint32 {
	return crcTable[byte(crc)^b] ^ (crc >> 8)
}

// crcStepZero feeds one zero byte.
func crcStepZero(crc uint32) uint32 {
	return crcTable[byte(crc)] ^ (crc >> 8)
}

// crcStepZeroN feeds n zero bytes.
func crcStepZeroN(crc uint32, n int) uint32 {
	for i := 0; i < n; i++ {
		crc = crcStepZero(crc)
	}
	return crc
}

// crcReverseStepZero undoes crcStepZero.
func crcReverseStepZero(crc uint32) uint32 {
	b := crcRevIndex[crc>>24]
	return (crc^crcTable[b])<<8 | uint32(b)
}

func crcBytes(crc uint32, s string) uint32 {
	for i := 0; i < len(s); i++ {
		crc = crcStep(crc, s[i])
	}
	return crc
}

// mnemonicChecksum is the raw CRC32 of the space-joined words.
func mnemonicChecksum(words []string) uint32 {
	return crcBytes(0, strings.Join(words, " "))
}

// wordSearchTables precomputes, per word, the CRC contribution of " "+word:
// feeding " "+word from state c equals feeding len(word)+1 zero bytes and
// xoring the adjustment.  CRC32 without init/final complement is linear
// over GF(2), which is what makes the incremental search below work.
type wordSearchTables struct {
	adjSp  []uint32 // adjustment of " "+word
	lenSp  []int    // len(word)+1
	byLen  map[int][]int
	minLen int
	maxLen int
}

func buildWordSearchTables(words []string) *wordSearchTables {
	t := &wordSearchTables{
		adjSp: make([]uint32, len(words)),
		lenSp: make([]int, len(words)),
		byLen: make(map[int][]int),
	}
	t.minLen = len(words[0]) + 1
	t.maxLen = t.minLen
	for i, word := range words {
		t.adjSp[i] = crcBytes(0, " "+word)
		t.lenSp[i] = len(word) + 1
		t.byLen[t.lenSp[i]] = append(t.byLen[t.lenSp[i]], i)
		if t.lenSp[i] < t.minLen {
			t.minLen = t.lenSp[i]
		}
		if t.lenSp[i] > t.maxLen {
			t.maxLen = t.lenSp[i]
		}
	}
	return t
}

// GenerateMnemonic produces a mnemonic of ceil(bits/11)+3 English words
// whose checksum equals version.  The prefix words carry the entropy; the
// last three are solved for by walking length combinations with zero-byte
// CRC stepping and looking the final word up in a precomputed table, so
// each attempt costs expected-constant time.
func GenerateMnemonic(bits int, version uint32) string {
	words := wordlists.English
	t := buildWordSearchTables(words)

	// lastWord[c] is the word whose " "+word chunk, fed from CRC state c,
	// lands exactly on version.
	lastWord := make(map[uint32]int, len(words))
	for i := range words {
		c := version ^ t.adjSp[i]
		for j := 0; j < t.lenSp[i]; j++ {
			c = crcReverseStepZero(c)
		}
		lastWord[c] = i
	}

	wordsInPrefix := (bits-1)/bitsPerWord + 1
	prefix := make([]int, wordsInPrefix)
	for {
		crc := uint32(0)
		for i := range prefix {
			j := randomWordIndex(len(words))
			prefix[i] = j
			if i == 0 {
				crc = crcBytes(crc, words[j])
			} else {
				crc = crcStepZeroN(crc, t.lenSp[j]) ^ t.adjSp[j]
			}
		}
		for l1 := t.minLen; l1 <= t.maxLen; l1++ {
			crc1 := crcStepZeroN(crc, l1)
			for _, w1 := range t.byLen[l1] {
				crc1a := crc1 ^ t.adjSp[w1]
				for l2 := t.minLen; l2 <= t.maxLen; l2++ {
					crc2 := crcStepZeroN(crc1a, l2)
					for _, w2 := range t.byLen[l2] {
						w3, ok := lastWord[crc2^t.adjSp[w2]]
						if !ok {
							continue
						}
						out := make([]string, 0, wordsInPrefix+3)
						for _, j := range prefix {
							out = append(out, words[j])
						}
						out = append(out, words[w1], words[w2], words[w3])
						return strings.Join(out, " ")
					}
				}
			}
		}
	}
}

func randomWordIndex(count int) int {
	var buf [8]byte
	cncrypto.RandomBytes(buf[:])
	return int(binary.LittleEndian.Uint64(buf[:]) % uint64(count))
}

var englishWordSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(wordlists.English))
	for _, w := range wordlists.English {
		set[w] = struct{}{}
	}
	return set
}()

// CheckMnemonic validates a mnemonic: every whitespace-separated word must
// be an English wordlist word and the CRC32 version tag must match.  It
// returns the canonical single-space form.
func CheckMnemonic(mnemonic string) (string, error) {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(mnemonic)))
	if len(words) < 4 {
		return "", walletError(ErrMnemonicCRC, "wrong mnemonic", nil)
	}
	for _, w := range words {
		if _, ok := englishWordSet[w]; !ok {
			return "", walletError(ErrMnemonicCRC, "wrong mnemonic", nil)
		}
	}
	if mnemonicChecksum(words) != MnemonicVersion {
		return "", walletError(ErrMnemonicCRC, "wrong mnemonic", nil)
	}
	return strings.Join(words, " "), nil
}
