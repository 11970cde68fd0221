package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/holiman/uint256"
	"github.com/urfave/cli"
	"golang.org/x/term"

	"github.com/nearclient/near-go/pkg/amount"
	"github.com/nearclient/near-go/pkg/keys"
	"github.com/nearclient/near-go/pkg/nearclient"
	"github.com/nearclient/near-go/pkg/rpcclient"
)

var (
	networkFlag = cli.StringFlag{
		Name:  "network, n",
		Usage: "named network preset (mainnet, testnet, localnet)",
		Value: "testnet",
	}
	rpcURLFlag = cli.StringFlag{
		Name:  "rpc-url",
		Usage: "override the RPC endpoint resolved from --network",
	}
	signerFlag = cli.StringFlag{
		Name:  "signer",
		Usage: "signer account id",
	}
	keyFlag = cli.StringFlag{
		Name:  "key",
		Usage: "signer secret key (\"ed25519:...\"); prompted securely if omitted",
	}
	forceFlag = cli.BoolFlag{
		Name:  "force, f",
		Usage: "do not ask for confirmation before submitting",
	}
)

func newCommands() []cli.Command {
	return []cli.Command{
		{
			Name:      "view",
			Usage:     "call a read-only contract method",
			UsageText: "nearcli view --network testnet <contractId> <methodName> [argsJSON]",
			Flags:     []cli.Flag{networkFlag, rpcURLFlag},
			Action:    runView,
		},
		{
			Name:      "call",
			Usage:     "sign and submit a function-call transaction",
			UsageText: "nearcli call --signer alice.near <contractId> <methodName> [argsJSON] [depositNEAR]",
			Flags:     []cli.Flag{networkFlag, rpcURLFlag, signerFlag, keyFlag, forceFlag},
			Action:    runCall,
		},
		{
			Name:      "send",
			Usage:     "transfer NEAR to another account",
			UsageText: "nearcli send --signer alice.near <receiverId> <amount>",
			Flags:     []cli.Flag{networkFlag, rpcURLFlag, signerFlag, keyFlag, forceFlag},
			Action:    runSend,
		},
		{
			Name:  "keys",
			Usage: "manage local signing keys",
			Subcommands: []cli.Command{
				{
					Name:      "add",
					Usage:     "print a freshly generated key pair (no persistence)",
					UsageText: "nearcli keys add",
					Action:    runKeysAdd,
				},
			},
		},
	}
}

func clientFromContext(c *cli.Context, opts ...nearclient.Option) (*nearclient.Client, error) {
	all := []nearclient.Option{nearclient.WithNetwork(c.String("network"))}
	if url := c.String("rpc-url"); url != "" {
		all = append(all, nearclient.WithRPCURL(url))
	}
	all = append(all, opts...)
	return nearclient.New(all...)
}

func runView(c *cli.Context) error {
	args := c.Args()
	if len(args) < 2 {
		return cli.NewExitError("usage: nearcli view <contractId> <methodName> [argsJSON]", 1)
	}
	contractID, methodName := args[0], args[1]
	var argBytes []byte
	if len(args) > 2 {
		argBytes = []byte(args[2])
	}

	cl, err := clientFromContext(c)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	result, err := cl.View(context.Background(), contractID, methodName, argBytes)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintln(c.App.Writer, string(result))
	return nil
}

func runCall(c *cli.Context) error {
	args := c.Args()
	if len(args) < 2 {
		return cli.NewExitError("usage: nearcli call <contractId> <methodName> [argsJSON] [depositNEAR]", 1)
	}
	contractID, methodName := args[0], args[1]
	argBytes := []byte("{}")
	if len(args) > 2 {
		argBytes = []byte(args[2])
	}
	deposit := uint256.NewInt(0)
	if len(args) > 3 {
		var err error
		deposit, err = amount.ParseNEAR(args[3])
		if err != nil {
			return cli.NewExitError(err, 1)
		}
	}

	signerID, secret, err := resolveSigner(c)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if !c.Bool("force") {
		if err := confirm(c, fmt.Sprintf("call %s.%s as %s, deposit %s yocto?", contractID, methodName, signerID, deposit.Dec())); err != nil {
			return cli.NewExitError(err, 1)
		}
	}

	cl, err := clientFromContext(c, nearclient.WithPrivateKey(signerID, secret), nearclient.WithDefaultSignerID(signerID))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	result, err := cl.Call(context.Background(), signerID, contractID, methodName, argBytes, 30_000_000_000_000, deposit)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	return printTxResult(c, result)
}

func runSend(c *cli.Context) error {
	args := c.Args()
	if len(args) < 2 {
		return cli.NewExitError("usage: nearcli send <receiverId> <amount>", 1)
	}
	receiverID := args[0]
	deposit, err := amount.ParseNEAR(args[1])
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	signerID, secret, err := resolveSigner(c)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if !c.Bool("force") {
		if err := confirm(c, fmt.Sprintf("send %s yocto from %s to %s?", deposit.Dec(), signerID, receiverID)); err != nil {
			return cli.NewExitError(err, 1)
		}
	}

	cl, err := clientFromContext(c, nearclient.WithPrivateKey(signerID, secret), nearclient.WithDefaultSignerID(signerID))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	tx, err := cl.Transaction(signerID)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if _, err := tx.Transfer(receiverID, deposit); err != nil {
		return cli.NewExitError(err, 1)
	}
	result, err := tx.Send(context.Background(), "")
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	return printTxResult(c, result)
}

func runKeysAdd(c *cli.Context) error {
	kp, err := keys.Generate(keys.Ed25519)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintf(c.App.Writer, "public key:  %s\n", kp.PublicKey().String())
	fmt.Fprintf(c.App.Writer, "secret key:  %s\n", kp.SecretString())
	return nil
}

// resolveSigner reads --signer/--key, prompting securely for the secret
// via the terminal if --key was omitted (§6.4's privateKey option).
func resolveSigner(c *cli.Context) (signerID, secret string, err error) {
	signerID = c.String("signer")
	if signerID == "" {
		return "", "", fmt.Errorf("--signer is required")
	}
	if secret = c.String("key"); secret != "" {
		return signerID, secret, nil
	}
	fmt.Fprint(c.App.Writer, "secret key: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(c.App.Writer)
	if err != nil {
		return "", "", fmt.Errorf("read secret key: %w", err)
	}
	return signerID, strings.TrimSpace(string(raw)), nil
}

// confirm prompts the user via readline before an irreversible submit,
// mirroring the teacher's pre-send confirmation gate.
func confirm(c *cli.Context, prompt string) error {
	rl, err := readline.New(prompt + " [y/N] ")
	if err != nil {
		return err
	}
	defer rl.Close()
	line, err := rl.Readline()
	if err != nil {
		return err
	}
	if strings.ToLower(strings.TrimSpace(line)) != "y" {
		return fmt.Errorf("aborted by user")
	}
	return nil
}

func printTxResult(c *cli.Context, result *rpcclient.SendTransactionResult) error {
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(c.App.Writer, "%+v\n", result)
		return nil
	}
	fmt.Fprintln(c.App.Writer, string(out))
	return nil
}
