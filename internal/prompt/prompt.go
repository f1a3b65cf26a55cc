// Package prompt reads wallet secrets interactively from a terminal:
// passphrases without echo, and mnemonics with wordlist and checksum
// validation.
package prompt

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/ssh/terminal"

	"github.com/tstmis/bytecoin/wallet"
)

// ProvideMnemonic is used to prompt for the wallet mnemonic.  Input is
// re-requested until the words validate against the wordlist and the CRC32
// version tag.
func ProvideMnemonic(reader *bufio.Reader) (string, error) {
	for {
		fmt.Print("Enter existing wallet mnemonic: ")
		mnemonicStr, err := reader.ReadString('\n')
		if err != nil {
			return "", err
		}
		mnemonic, err := wallet.CheckMnemonic(mnemonicStr)
		if err != nil {
			fmt.Println("Invalid mnemonic specified. Must be a list of " +
				"wordlist words with a valid checksum")
			continue
		}
		return mnemonic, nil
	}
}

// ProvidePrivPassphrase is used to prompt for the private passphrase of an
// existing wallet.
func ProvidePrivPassphrase() ([]byte, error) {
	prompt := "Enter the private passphrase of your wallet: "
	for {
		fmt.Print(prompt)
		pass, err := terminal.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return nil, err
		}
		fmt.Print("\n")
		pass = bytes.TrimSpace(pass)
		if len(pass) == 0 {
			continue
		}

		return pass, nil
	}
}

// promptList prompts the user with the given prefix, list of valid
// responses, and default list entry to use.  The function will repeat the
// prompt to the user until they enter a valid response.
func promptList(reader *bufio.Reader, prefix string, validResponses []string, defaultEntry string) (string, error) {
	// Setup the prompt according to the parameters.
	validStrings := strings.Join(validResponses, "/")
	var prompt string
	if defaultEntry != "" {
		prompt = fmt.Sprintf("%s (%s) [%s]: ", prefix, validStrings,
			defaultEntry)
	} else {
		prompt = fmt.Sprintf("%s (%s): ", prefix, validStrings)
	}

	// Prompt the user until one of the valid responses is given.
	for {
		fmt.Print(prompt)
		reply, err := reader.ReadString('\n')
		if err != nil {
			return "", err
		}
		reply = strings.TrimSpace(strings.ToLower(reply))
		if reply == "" {
			reply = defaultEntry
		}

		for _, validResponse := range validResponses {
			if reply == validResponse {
				return reply, nil
			}
		}
	}
}

// promptListBool prompts the user for a boolean (yes/no) with the given
// prefix.  The function will repeat the prompt to the user until they enter
// a valid response.
func promptListBool(reader *bufio.Reader, prefix string, defaultEntry string) (bool, error) {
	// Setup the valid responses.
	valid := []string{"n", "no", "y", "yes"}
	response, err := promptList(reader, prefix, valid, defaultEntry)
	if err != nil {
		return false, err
	}
	return response == "yes" || response == "y", nil
}

// PrivatePass prompts the user for a private passphrase with confirmation.
// All prompts are repeated until the user enters a valid response.
func PrivatePass(reader *bufio.Reader) ([]byte, error) {
	for {
		fmt.Print("Enter the private passphrase for your new wallet: ")
		pass, err := terminal.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return nil, err
		}
		fmt.Print("\n")
		pass = bytes.TrimSpace(pass)
		if len(pass) == 0 {
			continue
		}

		fmt.Print("Confirm passphrase: ")
		confirm, err := terminal.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return nil, err
		}
		fmt.Print("\n")
		confirm = bytes.TrimSpace(confirm)
		if !bytes.Equal(pass, confirm) {
			fmt.Println("The entered passphrases do not match")
			continue
		}

		return pass, nil
	}
}

// Mnemonic prompts the user whether they want to use an existing wallet
// mnemonic.  When the user answers no, a new mnemonic with the current
// version tag is generated, displayed, and confirmed.
func Mnemonic(reader *bufio.Reader) (string, error) {
	useExisting, err := promptListBool(reader, "Do you have an "+
		"existing wallet mnemonic you want to use?", "no")
	if err != nil {
		return "", err
	}
	if useExisting {
		return ProvideMnemonic(reader)
	}

	mnemonic := wallet.GenerateMnemonic(128, wallet.MnemonicVersion)
	fmt.Println("Your wallet generation mnemonic is:")
	fmt.Printf("\n%s\n\n", mnemonic)
	fmt.Println("IMPORTANT: Keep the mnemonic in a safe place as you will " +
		"NOT be able to restore your wallet without it.")
	fmt.Println("Please keep in mind that anyone who has access to the " +
		"mnemonic can also restore your wallet thereby giving them " +
		"access to all your funds, so it is imperative that you keep " +
		"it in a secure location.")

	for {
		fmt.Print(`Once you have stored the mnemonic in a safe ` +
			`and secure location, enter "OK" to continue: `)
		confirmSeed, err := reader.ReadString('\n')
		if err != nil {
			return "", err
		}
		confirmSeed = strings.TrimSpace(confirmSeed)
		confirmSeed = strings.Trim(confirmSeed, `"`)
		if strings.EqualFold("OK", confirmSeed) {
			break
		}
	}
	return mnemonic, nil
}
