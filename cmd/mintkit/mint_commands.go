package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/urfave/cli/v2"

	"github.com/solanahub/mintkit/service/config"
	"github.com/solanahub/mintkit/service/ipfs"
	"github.com/solanahub/mintkit/service/mint"
)

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Mint a fungible SPL token with metadata",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "Token name", Required: true},
			&cli.StringFlag{Name: "symbol", Usage: "Token symbol", Required: true},
			&cli.UintFlag{Name: "decimals", Usage: "Decimal precision", Value: 9},
			&cli.Uint64Flag{Name: "supply", Usage: "Initial supply in whole units", Required: true},
			&cli.StringFlag{Name: "image", Usage: "Path to the token image", Required: true},
		},
		Action: func(c *cli.Context) error {
			return runMint(c, false)
		},
	}
}

func nftCommand() *cli.Command {
	return &cli.Command{
		Name:  "nft",
		Usage: "Mint a one-of-one NFT with a finalized master edition",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "NFT name", Required: true},
			&cli.StringFlag{Name: "symbol", Usage: "NFT symbol", Required: true},
			&cli.StringFlag{Name: "image", Usage: "Path to the NFT image", Required: true},
		},
		Action: func(c *cli.Context) error {
			return runMint(c, true)
		},
	}
}

func runMint(c *cli.Context, unique bool) error {
	cfg := &config.Config{
		LogLevel:          c.String("log-level"),
		SolanaRPCURL:      c.String("rpc-url"),
		Commitment:        c.String("commitment"),
		PinataJWT:         c.String("pinata-jwt"),
		PinataGatewayURL:  c.String("pinata-gateway"),
		PinataUploadURL:   c.String("pinata-upload-url"),
		ConfirmTimeout:    c.Duration("confirm-timeout"),
		UploadMaxAttempts: 3,
	}
	if cfg.ConfirmTimeout == 0 {
		cfg.ConfirmTimeout = 90 * time.Second
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel)

	keypairPath := c.String("keypair")
	if keypairPath == "" {
		return fmt.Errorf("--keypair is required")
	}
	key, err := solana.PrivateKeyFromSolanaKeygenFile(keypairPath)
	if err != nil {
		return fmt.Errorf("loading keypair %s: %w", keypairPath, err)
	}
	signer := mint.NewKeypairSigner(key)

	imagePath := c.String("image")
	image, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("reading image %s: %w", imagePath, err)
	}

	store := ipfs.NewClient(
		cfg.PinataUploadURL,
		cfg.PinataGatewayURL,
		cfg.PinataJWT,
		cfg.UploadMaxAttempts,
		nil,
		nil,
		logger,
	)

	pipeline := mint.NewPipeline(
		store,
		mint.NewRPCClient(cfg.SolanaRPCURL),
		signer,
		logger,
		mint.WithCommitment(rpc.CommitmentType(cfg.Commitment)),
		mint.WithConfirmationBudget(cfg.ConfirmTimeout),
		mint.WithObserver(func(s mint.State) {
			logger.Info("pipeline state", "state", string(s))
		}),
	)

	decimals, err := parseDecimals(c.Uint("decimals"))
	if err != nil {
		return err
	}

	result, err := pipeline.CreateAsset(c.Context, mint.Request{
		Name:          c.String("name"),
		Symbol:        c.String("symbol"),
		Decimals:      decimals,
		Supply:        c.Uint64("supply"),
		Image:         image,
		ImageMIME:     http.DetectContentType(image),
		ImageName:     imagePath,
		Unique:        unique,
		SkipPreflight: c.Bool("skip-preflight"),
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// parseDecimals checks the flag value before narrowing it, so an
// out-of-range --decimals fails loudly instead of wrapping around.
func parseDecimals(v uint) (uint8, error) {
	if v > 9 {
		return 0, fmt.Errorf("--decimals must be between 0 and 9, got %d", v)
	}
	return uint8(v), nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
