package accumulator

// Sliding-window filter parameters of the ledger's accumulator.
const (
	// BatchSize is the number of insertions that share one window position.
	BatchSize = 1 << 3

	// ChunkSize is the number of filter bits per chunk.
	ChunkSize = 1 << 12

	// WindowSize is the number of filter bits a freshly inserted coin may touch.
	WindowSize = 1 << 20

	// NumTrials is the number of filter indices derived per coin.
	NumTrials = 45
)

// NumPremineUtxos is the number of coins in the initial allocation. They
// occupy the first insertion positions of the ledger and are never redeemable.
const NumPremineUtxos = 80

// PremineGuardThreshold is the smallest insertion-index lower bound a
// redeemable coin may have. Coins whose bound falls below it cannot be told
// apart from premine coins.
const PremineGuardThreshold uint64 = NumPremineUtxos
