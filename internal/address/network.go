package address

import (
	"fmt"
	"strings"
)

// Network selects the human-readable prefix of encoded addresses.
type Network int

const (
	// Main is the production network.
	Main Network = iota
	// Testnet is the public test network.
	Testnet
)

// hrps maps each network to its bech32m human-readable part.
var hrps = map[Network]string{
	Main:    "rcl",
	Testnet: "rclt",
}

// HRP returns the bech32m human-readable part of the network.
func (n Network) HRP() string {
	return hrps[n]
}

// String returns the lowercase network name.
func (n Network) String() string {
	switch n {
	case Main:
		return "main"
	case Testnet:
		return "testnet"
	default:
		return fmt.Sprintf("network(%d)", int(n))
	}
}

// ParseNetwork parses a network name, case-insensitively.
func ParseNetwork(name string) (Network, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "main", "mainnet":
		return Main, nil
	case "test", "testnet":
		return Testnet, nil
	default:
		return 0, fmt.Errorf("invalid network: %s", name)
	}
}

// networkForHRP is the inverse of HRP.
func networkForHRP(hrp string) (Network, bool) {
	for n, h := range hrps {
		if h == hrp {
			return n, true
		}
	}
	return 0, false
}
