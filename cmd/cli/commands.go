package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/DeBrosOfficial/chainclient/pkg/chain"
	"github.com/DeBrosOfficial/chainclient/pkg/client"
	"github.com/DeBrosOfficial/chainclient/pkg/codec"
	"github.com/DeBrosOfficial/chainclient/pkg/config"
	"github.com/DeBrosOfficial/chainclient/pkg/events"
	"github.com/DeBrosOfficial/chainclient/pkg/identity"
)

var hnamePattern = regexp.MustCompile(`^[0-9a-fA-F]{8}$`)

func loadConfig() *config.Config {
	path := configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath("client.yaml")
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
			os.Exit(1)
		}
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func newService(cfg *config.Config) *client.Service {
	clientCfg, err := client.ClientConfigFromConfig(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	clientCfg.QuietMode = true

	svc, err := client.NewService(clientCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to create client: %v\n", err)
		os.Exit(1)
	}
	return svc
}

func loadIdentity(cfg *config.Config) *identity.Identity {
	path := cfg.Identity.KeyFile
	if path == "" {
		var err error
		path, err = config.DefaultPath("identity.key")
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
			os.Exit(1)
		}
	}
	id, err := identity.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to load identity: %v\n", err)
		os.Exit(1)
	}
	return id
}

func parseHname(s string) chain.Hname {
	if hnamePattern.MatchString(s) {
		if h, err := chain.HnameFromString(s); err == nil {
			return h
		}
	}
	return chain.HnameFromName(s)
}

func parseArgs(pairs []string) (codec.Args, error) {
	args := codec.NewArgs()
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=0xvalue, got %q", pair)
		}
		raw, err := hexutil.Decode(value)
		if err != nil {
			return nil, fmt.Errorf("argument %s: %w", key, err)
		}
		args.Set(key, raw)
	}
	return args, nil
}

func printArgs(args codec.Args) {
	if len(args) == 0 {
		fmt.Println("(empty)")
		return
	}
	for _, k := range args.Keys() {
		v, _ := args.Get(k)
		fmt.Printf("%s = %s\n", k, hexutil.Encode(v))
	}
}

func handleViewCommand(contract, function string, pairs []string) {
	args, err := parseArgs(pairs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	svc := newService(loadConfig())
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result, err := svc.CallView(ctx, parseHname(contract), parseHname(function), args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	printArgs(result)
}

func handlePostCommand(contract, function string, rest []string) {
	wait := false
	var pairs []string
	for _, arg := range rest {
		if arg == "--wait" {
			wait = true
			continue
		}
		pairs = append(pairs, arg)
	}
	args, err := parseArgs(pairs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	cfg := loadConfig()
	id := loadIdentity(cfg)
	svc := newService(cfg)
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	rid, err := svc.PostOffLedgerRequest(ctx, id, parseHname(contract), parseHname(function), args, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Request posted: %s\n", rid)

	if wait {
		if err := svc.WaitUntilProcessed(ctx, rid, 0); err != nil {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✅ Request processed")
	}
}

func handleWaitCommand(requestID string) {
	rid, err := chain.RequestIDFromHex(requestID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Invalid request id: %v\n", err)
		os.Exit(1)
	}

	svc := newService(loadConfig())
	defer svc.Close()

	if err := svc.WaitUntilProcessed(context.Background(), rid, timeout); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✅ Request processed")
}

func handleNonceCommand() {
	cfg := loadConfig()
	id := loadIdentity(cfg)
	svc := newService(cfg)
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	n, err := svc.AccountNonce(ctx, id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Agent ID: %s\n", id.AgentID())
	fmt.Printf("Nonce:    %d\n", n)
}

func handleEventsCommand() {
	svc := newService(loadConfig())
	defer svc.Close()

	dialCtx, cancel := context.WithTimeout(context.Background(), timeout)
	handle, err := svc.Subscribe(dialCtx, events.HandlerFunc(func(evt events.ContractEvent) {
		fmt.Printf("[%s] %s: %s\n", evt.ChainID, evt.ContractID, evt.Data)
	}))
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Listening for contract events (Ctrl+C to stop)...")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigCh:
		handle.Close()
		<-handle.Done()
	case <-handle.Done():
		fmt.Println("Event feed closed")
	}
}
