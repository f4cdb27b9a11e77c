package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	app := &cli.App{
		Name:  "mintkit",
		Usage: "Create SPL tokens and NFTs with IPFS-pinned metadata",
		Description: `A command-line tool for minting Solana assets.

Uploads the asset image and metadata document to IPFS via Pinata, builds the
mint transaction, signs it with the local fee-payer keypair, submits it, and
waits for confirmation. Also covers the surrounding ledger chores: faucet
airdrops on test clusters and plain SOL transfers.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Commands: []*cli.Command{
			tokenCommand(),
			nftCommand(),
			airdropCommand(),
			sendCommand(),
		},
		// Global flags available to all commands
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "rpc-url",
				Usage:   "Solana RPC endpoint URL",
				EnvVars: []string{"SOLANA_RPC_URL"},
			},
			&cli.StringFlag{
				Name:    "keypair",
				Usage:   "Path to the fee-payer/authority keypair file (solana-keygen format)",
				EnvVars: []string{"SOLANA_KEYPAIR"},
			},
			&cli.StringFlag{
				Name:    "pinata-jwt",
				Usage:   "Pinata API credential (JWT)",
				EnvVars: []string{"PINATA_JWT"},
			},
			&cli.StringFlag{
				Name:    "pinata-gateway",
				Usage:   "Pinata gateway base URL for public locators",
				EnvVars: []string{"PINATA_GATEWAY_URL"},
			},
			&cli.StringFlag{
				Name:    "pinata-upload-url",
				Usage:   "Pinata pinning endpoint",
				EnvVars: []string{"PINATA_UPLOAD_URL"},
			},
			&cli.StringFlag{
				Name:    "commitment",
				Usage:   "Target commitment level (processed, confirmed, finalized)",
				EnvVars: []string{"COMMITMENT"},
				Value:   "confirmed",
			},
			&cli.DurationFlag{
				Name:    "confirm-timeout",
				Usage:   "How long to wait for confirmation",
				EnvVars: []string{"CONFIRM_TIMEOUT"},
			},
			&cli.BoolFlag{
				Name:  "skip-preflight",
				Usage: "Skip submission pre-validation",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "info",
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
