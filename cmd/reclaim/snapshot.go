package main

import (
	"fmt"

	"Reclaim/internal/accumulator"
	"Reclaim/internal/logger"
)

func runSnapshot(args []string) error {
	var storePath, out string

	fs, level := newFlagSet("snapshot")
	fs.StringVar(&storePath, "accumulator", "./data/accumulator", "Accumulator store directory")
	fs.StringVar(&out, "out", "accumulator.snapshot", "Snapshot output path")

	if err := parse(fs, level, args); err != nil {
		return err
	}

	db, store, err := openAccumulatorStore(storePath)
	if err != nil {
		return err
	}
	defer db.Close()

	set, err := store.Snapshot()
	if err != nil {
		return fmt.Errorf("snapshot accumulator:\n%w", err)
	}

	if err := accumulator.WriteSnapshotFile(out, set); err != nil {
		return fmt.Errorf("write snapshot:\n%w", err)
	}

	logger.Info("wrote snapshot", "path", out, "removable", set.Len(), "digest", set.Hash().String())

	return nil
}
