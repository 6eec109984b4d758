package main

import (
	"fmt"

	"Reclaim/internal/prover"
	"Reclaim/internal/redeem"
	"Reclaim/internal/report"
)

func runValidate(args []string) error {
	var (
		accumulatorPath string
		dir             string
		formatName      string
		compress        bool
		reportPath      string
		trusted         string
		allowMock       bool
	)

	fs, level := newFlagSet("validate")
	fs.StringVar(&accumulatorPath, "accumulator", "./data/accumulator", "Accumulator snapshot file or store directory")
	fs.StringVar(&dir, "dir", "./claims", "Directory holding the claims")
	fs.StringVar(&formatName, "format", report.Readable.String(), "Report format (readable, detailed, colon-separated, colon-separated-testnet)")
	fs.BoolVar(&compress, "compress", false, "Merge entries to the same address and lock kind")
	fs.StringVar(&reportPath, "report", "redemption-report.txt", "Report output path")
	fs.StringVar(&trusted, "trusted-provers", "", "Comma-separated prover public keys (hex)")
	fs.BoolVar(&allowMock, "allow-mock", false, "Accept mock proofs")

	if err := parse(fs, level, args); err != nil {
		return err
	}

	format, err := report.ParseFormat(formatName)
	if err != nil {
		return err
	}

	keys, err := parseKeys(trusted)
	if err != nil {
		return err
	}

	acc, closeAcc, err := openAccumulator(accumulatorPath)
	if err != nil {
		return err
	}
	defer closeAcc()

	verifier := prover.NewTrusted(keys, allowMock)

	if err := redeem.ValidateAndWriteReport(dir, acc, verifier, format, compress, reportPath); err != nil {
		return fmt.Errorf("validate %s:\n%w", dir, err)
	}

	return nil
}
