package main

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/urfave/cli/v2"

	"github.com/solanahub/mintkit/service/mint"
)

// walletSetup wires the pieces the ledger subcommands share: the RPC-backed
// engine, the local keypair signer, and the confirmation settings.
func walletSetup(c *cli.Context) (*mint.Engine, *mint.KeypairSigner, rpc.CommitmentType, time.Duration, error) {
	rpcURL := c.String("rpc-url")
	if rpcURL == "" {
		return nil, nil, "", 0, fmt.Errorf("--rpc-url is required")
	}
	keypairPath := c.String("keypair")
	if keypairPath == "" {
		return nil, nil, "", 0, fmt.Errorf("--keypair is required")
	}
	key, err := solana.PrivateKeyFromSolanaKeygenFile(keypairPath)
	if err != nil {
		return nil, nil, "", 0, fmt.Errorf("loading keypair %s: %w", keypairPath, err)
	}

	commitment := rpc.CommitmentType(c.String("commitment"))
	switch commitment {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
	default:
		return nil, nil, "", 0, fmt.Errorf("invalid commitment %q (must be processed, confirmed, or finalized)", commitment)
	}

	budget := c.Duration("confirm-timeout")
	if budget == 0 {
		budget = 90 * time.Second
	}

	logger := newLogger(c.String("log-level"))
	engine := mint.NewEngine(mint.NewRPCClient(rpcURL), nil, logger)
	return engine, mint.NewKeypairSigner(key), commitment, budget, nil
}

func contextWithTimeout(c *cli.Context, budget time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context, budget)
}

func airdropCommand() *cli.Command {
	return &cli.Command{
		Name:  "airdrop",
		Usage: "Request SOL from the cluster faucet (devnet/testnet only)",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "amount", Usage: "Amount in SOL", Required: true},
			&cli.StringFlag{Name: "to", Usage: "Recipient address (defaults to the keypair's address)"},
		},
		Action: func(c *cli.Context) error {
			engine, signer, commitment, budget, err := walletSetup(c)
			if err != nil {
				return err
			}

			lamports, err := solToLamports(c.Float64("amount"))
			if err != nil {
				return err
			}

			recipient := signer.PublicKey()
			if to := c.String("to"); to != "" {
				recipient, err = solana.PublicKeyFromBase58(to)
				if err != nil {
					return fmt.Errorf("parsing recipient %q: %w", to, err)
				}
			}

			ctx, cancel := contextWithTimeout(c, budget)
			defer cancel()

			sig, err := engine.Airdrop(ctx, recipient, lamports, commitment)
			if err != nil {
				return err
			}
			fmt.Println(sig.String())
			return nil
		},
	}
}

func sendCommand() *cli.Command {
	return &cli.Command{
		Name:  "send",
		Usage: "Transfer SOL from the keypair's account to a recipient",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "to", Usage: "Recipient address", Required: true},
			&cli.Float64Flag{Name: "amount", Usage: "Amount in SOL", Required: true},
		},
		Action: func(c *cli.Context) error {
			engine, signer, commitment, budget, err := walletSetup(c)
			if err != nil {
				return err
			}

			lamports, err := solToLamports(c.Float64("amount"))
			if err != nil {
				return err
			}

			recipient, err := solana.PublicKeyFromBase58(c.String("to"))
			if err != nil {
				return fmt.Errorf("parsing recipient %q: %w", c.String("to"), err)
			}

			ctx, cancel := contextWithTimeout(c, budget)
			defer cancel()

			sig, err := engine.TransferSOL(
				ctx,
				signer,
				recipient,
				lamports,
				mint.SubmitOptions{
					SkipPreflight:       c.Bool("skip-preflight"),
					PreflightCommitment: commitment,
				},
				commitment,
			)
			if err != nil {
				return err
			}
			fmt.Println(sig.String())
			return nil
		},
	}
}

// solToLamports converts a SOL amount from the command line into lamports,
// rejecting amounts that are non-positive or too large to represent.
func solToLamports(sol float64) (uint64, error) {
	if math.IsNaN(sol) || sol <= 0 {
		return 0, fmt.Errorf("--amount must be a positive number of SOL, got %v", sol)
	}
	lamports := sol * float64(solana.LAMPORTS_PER_SOL)
	if lamports >= math.MaxUint64 {
		return 0, fmt.Errorf("--amount %v SOL is too large", sol)
	}
	return uint64(lamports), nil
}
