package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/DeBrosOfficial/chainclient/pkg/config"
	"github.com/DeBrosOfficial/chainclient/pkg/identity"
)

func main() {
	var outputPath string
	var inspectPath string
	var schemeName string
	var mnemonic string
	var fromMnemonic bool
	var displayOnly bool

	flag.StringVar(&outputPath, "output", "", "Output path for identity key (default ~/.chainclient/identity.key)")
	flag.StringVar(&inspectPath, "inspect", "", "Show the address of an existing key file")
	flag.StringVar(&schemeName, "scheme", string(identity.SchemeEd25519), "Key scheme (ed25519, secp256k1)")
	flag.StringVar(&mnemonic, "mnemonic", "", "Derive an ed25519 identity from this BIP-39 mnemonic")
	flag.BoolVar(&fromMnemonic, "new-mnemonic", false, "Generate a new mnemonic and derive the identity from it")
	flag.BoolVar(&displayOnly, "display-only", false, "Only display identity info, don't save")
	flag.Parse()

	if inspectPath != "" {
		id, err := identity.Load(inspectPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load identity: %v\n", err)
			os.Exit(1)
		}
		printIdentity(id)
		return
	}

	scheme, err := identity.ParseScheme(schemeName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	if fromMnemonic {
		mnemonic, err = identity.NewMnemonic()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate mnemonic: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Mnemonic: %s\n", mnemonic)
	}

	var id *identity.Identity
	if mnemonic != "" {
		if scheme != identity.SchemeEd25519 {
			fmt.Fprintln(os.Stderr, "Mnemonic identities use the ed25519 scheme")
			os.Exit(1)
		}
		id, err = identity.FromMnemonic(mnemonic, "")
	} else {
		id, err = identity.Generate(scheme)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate identity: %v\n", err)
		os.Exit(1)
	}

	// If display only, just show the info
	if displayOnly {
		printIdentity(id)
		return
	}

	if outputPath == "" {
		dir, err := config.EnsureConfigDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		outputPath = filepath.Join(dir, "identity.key")
	}

	if err := id.Save(outputPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save identity: %v\n", err)
		os.Exit(1)
	}

	printIdentity(id)
	fmt.Printf("Identity saved to: %s\n", outputPath)
}

func printIdentity(id *identity.Identity) {
	fmt.Printf("Scheme:   %s\n", id.Scheme())
	fmt.Printf("Agent ID: %s\n", id.AgentID().String())
	fmt.Printf("Key:      %s\n", id.Key())
}
