package main

import (
	"fmt"
	"os"
)

const usage = `usage: reclaim <command> [flags]

commands:
  wallet      manage the local wallet (init, address, add-coin)
  claim       produce redemption claims for the wallet's spendable coins
  validate    validate a directory of claims and write a redemption report
  prover      serve proofs to remote claimants
  snapshot    export an accumulator store to a snapshot file

run "reclaim <command> -h" for the flags of a command`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run dispatches to the subcommand named by the first argument.
func run(args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, usage)
		return fmt.Errorf("missing command")
	}

	command, rest := args[0], args[1:]

	switch command {
	case "wallet":
		return runWallet(rest)
	case "claim":
		return runClaim(rest)
	case "validate":
		return runValidate(rest)
	case "prover":
		return runProver(rest)
	case "snapshot":
		return runSnapshot(rest)
	case "help", "-h", "--help":
		fmt.Println(usage)
		return nil
	default:
		fmt.Fprintln(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}
