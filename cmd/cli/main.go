package main

import (
	"fmt"
	"os"
	"time"
)

var (
	timeout    = 30 * time.Second
	configPath = ""
)

// version metadata populated via -ldflags at build time
var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	if len(os.Args) < 2 {
		showHelp()
		return
	}

	command := os.Args[1]
	args := parseGlobalFlags(os.Args[2:])

	switch command {
	case "version":
		fmt.Printf("chainctl %s", version)
		if commit != "" {
			fmt.Printf(" (commit %s)", commit)
		}
		if date != "" {
			fmt.Printf(" built %s", date)
		}
		fmt.Println()
		return

	case "view":
		if len(args) < 2 {
			fmt.Fprintf(os.Stderr, "Usage: chainctl view <contract> <function> [key=0xvalue...]\n")
			os.Exit(1)
		}
		handleViewCommand(args[0], args[1], args[2:])

	case "post":
		if len(args) < 2 {
			fmt.Fprintf(os.Stderr, "Usage: chainctl post <contract> <function> [key=0xvalue...] [--wait]\n")
			os.Exit(1)
		}
		handlePostCommand(args[0], args[1], args[2:])

	case "wait":
		if len(args) == 0 {
			fmt.Fprintf(os.Stderr, "Usage: chainctl wait <request_id>\n")
			os.Exit(1)
		}
		handleWaitCommand(args[0])

	case "nonce":
		handleNonceCommand()

	case "events":
		handleEventsCommand()

	case "help", "--help", "-h":
		showHelp()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		showHelp()
		os.Exit(1)
	}
}

// parseGlobalFlags consumes --config and --timeout and returns the rest.
func parseGlobalFlags(args []string) []string {
	var rest []string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--config", "-c":
			if i+1 < len(args) {
				configPath = args[i+1]
				i++
			}
		case "--timeout":
			if i+1 < len(args) {
				if d, err := time.ParseDuration(args[i+1]); err == nil {
					timeout = d
				}
				i++
			}
		default:
			rest = append(rest, args[i])
		}
	}
	return rest
}

func showHelp() {
	fmt.Printf("chainctl - command line client for a ledger node\n\n")
	fmt.Printf("Usage: chainctl <command> [args...]\n\n")

	fmt.Printf("Commands:\n")
	fmt.Printf("  view <contract> <function> [k=v]  - Call a view function\n")
	fmt.Printf("  post <contract> <function> [k=v]  - Sign and post an off-ledger request\n")
	fmt.Printf("  wait <request_id>                 - Wait until a request is processed\n")
	fmt.Printf("  nonce                             - Show the on-chain nonce of the configured identity\n")
	fmt.Printf("  events                            - Print contract events until interrupted\n")
	fmt.Printf("  version                           - Show version\n\n")

	fmt.Printf("Global Flags:\n")
	fmt.Printf("  -c, --config <path>  - Config file (default: ~/.chainclient/client.yaml)\n")
	fmt.Printf("  --timeout <duration> - Overall command timeout (default: 30s)\n\n")

	fmt.Printf("Contracts and functions are names (accounts) or 8-digit hnames (3c4b5e02).\n")
	fmt.Printf("Arguments are key=0xhex pairs.\n")
}
