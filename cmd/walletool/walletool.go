// walletool is a small operational front end for wallet container files:
// it creates flat and HD wallets, imports and exports keys, appends
// addresses and changes passwords.  Scanning and transaction building live
// in the daemon, not here.
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	flags "github.com/jessevdk/go-flags"

	"github.com/tstmis/bytecoin/cncrypto"
	"github.com/tstmis/bytecoin/internal/cfgutil"
	"github.com/tstmis/bytecoin/internal/prompt"
	"github.com/tstmis/bytecoin/wallet"
)

const (
	showHelpMessage = "Specify -h to show available options"
	listCmdMessage  = "Specify -l to list available commands"
)

// config defines the configuration options for walletool.
type config struct {
	ShowVersion bool   `short:"V" long:"version" description:"Display version information and exit"`
	ListCommands bool  `short:"l" long:"listcommands" description:"List all of the supported commands and exit"`
	WalletFile  string `short:"w" long:"walletfile" description:"Path to the wallet container file"`
	Net         string `long:"net" description:"Network to operate on" default:"main"`
	LogDir      string `long:"logdir" description:"Directory to log output"`
	ViewOnly    bool   `long:"viewonly" description:"Strip secrets when exporting"`
}

var commandUsages = []string{
	"create - create a new flat wallet with a random keypair",
	"create-hd - create a new HD wallet from a generated or provided mnemonic",
	"import-keys <256 hex chars> - create a flat wallet from exported keys",
	"export-keys - print the wallet's key material or mnemonic",
	"new-addresses <count> - append count new addresses",
	"set-password - re-encrypt the wallet under a new password",
	"export <path> - export the wallet to a new file",
}

// usage displays the general usage when the help flag is not displayed and
// an invalid command was specified.
func usage(errorMessage string) {
	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	fmt.Fprintln(os.Stderr, errorMessage)
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintf(os.Stderr, "  %s [OPTIONS] <command> <args...>\n\n", appName)
	fmt.Fprintln(os.Stderr, showHelpMessage)
	fmt.Fprintln(os.Stderr, listCmdMessage)
}

func listCommands() {
	for _, usage := range commandUsages {
		fmt.Println(usage)
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func main() {
	cfg := config{}
	parser := flags.NewParser(&cfg, flags.HelpFlag)
	args, err := parser.Parse()
	if err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			fmt.Println(err)
			os.Exit(0)
		}
		usage(err.Error())
		os.Exit(1)
	}
	if cfg.ShowVersion {
		fmt.Println(filepath.Base(os.Args[0]), "version", version())
		os.Exit(0)
	}
	if cfg.ListCommands {
		listCommands()
		os.Exit(0)
	}
	if len(args) < 1 {
		usage("No command specified")
		os.Exit(1)
	}
	if cfg.WalletFile == "" {
		fatalf("No wallet file specified (-w)")
	}
	cfg.WalletFile = cfgutil.CleanAndExpandPath(cfg.WalletFile)
	if cfg.LogDir != "" {
		if err := initLogRotator(filepath.Join(cfgutil.CleanAndExpandPath(cfg.LogDir), "walletool.log")); err != nil {
			fatalf("Failed to initialize logging: %v", err)
		}
		defer closeLogRotator()
	}

	opts := &wallet.Options{Net: cfg.Net}
	reader := bufio.NewReader(os.Stdin)

	switch command := args[0]; command {
	case "create":
		pass, err := prompt.PrivatePass(reader)
		if err != nil {
			fatalf("%v", err)
		}
		w, err := wallet.CreateContainerWallet(cfg.WalletFile, string(pass), "", 0, opts)
		if err != nil {
			fatalf("%v", err)
		}
		defer w.Close()
		fmt.Println("The wallet has been created successfully.")

	case "create-hd":
		pass, err := prompt.PrivatePass(reader)
		if err != nil {
			fatalf("%v", err)
		}
		mnemonic, err := prompt.Mnemonic(reader)
		if err != nil {
			fatalf("%v", err)
		}
		w, err := wallet.CreateHDWallet(cfg.WalletFile, string(pass), mnemonic,
			wallet.AddressTypeUnlinkable, 0, "", opts)
		if err != nil {
			fatalf("%v", err)
		}
		defer w.Close()
		fmt.Println("The wallet has been created successfully.")

	case "import-keys":
		if len(args) != 2 {
			fatalf("import-keys requires the exported key string")
		}
		pass, err := prompt.PrivatePass(reader)
		if err != nil {
			fatalf("%v", err)
		}
		w, err := wallet.CreateContainerWallet(cfg.WalletFile, string(pass), args[1], 0, opts)
		if err != nil {
			fatalf("%v", err)
		}
		defer w.Close()
		fmt.Println("The wallet has been imported successfully.")

	case "export-keys":
		w := openWallet(cfg, opts)
		defer w.Close()
		keys, err := w.ExportKeys()
		if err != nil {
			fatalf("%v", err)
		}
		fmt.Println(keys)

	case "new-addresses":
		if len(args) != 2 {
			fatalf("new-addresses requires a count")
		}
		var count int
		if _, err := fmt.Sscanf(args[1], "%d", &count); err != nil || count <= 0 {
			fatalf("Invalid count %q", args[1])
		}
		w := openWallet(cfg, opts)
		defer w.Close()
		records, _, err := w.GenerateNewAddresses(make([]cncrypto.SecretKey, count), 0)
		if err != nil {
			fatalf("%v", err)
		}
		fmt.Printf("Appended %d addresses\n", len(records))

	case "set-password":
		w := openWallet(cfg, opts)
		defer w.Close()
		fmt.Println("Choose the new password.")
		newPass, err := prompt.PrivatePass(reader)
		if err != nil {
			fatalf("%v", err)
		}
		if err := w.SetPassword(string(newPass)); err != nil {
			fatalf("%v", err)
		}
		fmt.Println("The wallet password has been changed.")

	case "export":
		if len(args) != 2 {
			fatalf("export requires a destination path")
		}
		w := openWallet(cfg, opts)
		defer w.Close()
		fmt.Println("Choose the password of the exported wallet.")
		newPass, err := prompt.PrivatePass(reader)
		if err != nil {
			fatalf("%v", err)
		}
		if err := w.ExportWallet(args[1], string(newPass), cfg.ViewOnly, false); err != nil {
			fatalf("%v", err)
		}
		fmt.Println("The wallet has been exported.")

	default:
		usage("Unrecognized command " + command)
		os.Exit(1)
	}
}

func openWallet(cfg config, opts *wallet.Options) wallet.Wallet {
	pass, err := prompt.ProvidePrivPassphrase()
	if err != nil {
		fatalf("%v", err)
	}
	w, err := wallet.Open(cfg.WalletFile, string(pass), opts)
	if err != nil {
		fatalf("%v", err)
	}
	return w
}

func version() string { return "0.1.0" }
