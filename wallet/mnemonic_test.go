package wallet

import (
	"hash/crc32"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestRawCRCAgainstStdlib anchors the table-level stepping to the stdlib:
// the standard CRC32 is the raw fold with complemented init and output.
func TestRawCRCAgainstStdlib(t *testing.T) {
	for _, data := range []string{"", "a", "abandon ability able", "the quick brown fox"} {
		raw := crcBytes(0xffffffff, data)
		require.Equal(t, crc32.ChecksumIEEE([]byte(data)), ^raw, "data %q", data)
	}
}

func TestCRCReverseStepZero(t *testing.T) {
	c := uint32(0x12345678)
	for i := 0; i < 40; i++ {
		require.Equal(t, c, crcReverseStepZero(crcStepZero(c)))
		c = crcStepZero(c ^ uint32(i*2654435761))
	}
}

func TestGenerateMnemonicChecksum(t *testing.T) {
	for _, version := range []uint32{MnemonicVersion, 0xDEADBEEF, 0} {
		mnemonic := GenerateMnemonic(128, version)
		words := strings.Fields(mnemonic)

		// ceil(128/11) entropy words plus the three checksum words.
		require.Len(t, words, 12+3)
		for _, w := range words {
			_, ok := englishWordSet[w]
			require.True(t, ok, "word %q not in wordlist", w)
		}
		require.Equal(t, version, mnemonicChecksum(words), "version %#x", version)
	}
}

func TestCheckMnemonic(t *testing.T) {
	mnemonic := GenerateMnemonic(128, MnemonicVersion)

	canonical, err := CheckMnemonic(mnemonic)
	require.NoError(t, err)
	require.Equal(t, mnemonic, canonical)

	// Whitespace and case normalize to the same canonical form.
	canonical2, err := CheckMnemonic("  " + strings.ToUpper(strings.ReplaceAll(mnemonic, " ", "\t ")) + "\n")
	require.NoError(t, err)
	require.Equal(t, mnemonic, canonical2)

	// Any word swap breaks the tag.
	words := strings.Fields(mnemonic)
	words[0], words[1] = words[1], words[0]
	if words[0] != words[1] {
		_, err = CheckMnemonic(strings.Join(words, " "))
		require.True(t, IsError(err, ErrMnemonicCRC))
	}

	_, err = CheckMnemonic("notaword " + mnemonic)
	require.True(t, IsError(err, ErrMnemonicCRC))

	_, err = CheckMnemonic("abandon abandon")
	require.True(t, IsError(err, ErrMnemonicCRC))

	// The wrong version tag is rejected even when all words are valid.
	_, err = CheckMnemonic(GenerateMnemonic(128, 0x12345678))
	require.True(t, IsError(err, ErrMnemonicCRC))
}
