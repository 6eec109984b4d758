package report

import (
	"fmt"
	"strings"
)

// Format selects how a report is rendered.
type Format int

const (
	// Readable is a bordered table with abbreviated addresses and a total.
	Readable Format = iota
	// Detailed is a plain table with amounts in nau and full addresses.
	Detailed
	// ColonSeparated prints address:amount[:release millis] lines for mainnet.
	ColonSeparated
	// ColonSeparatedTestnet is ColonSeparated with testnet addresses.
	ColonSeparatedTestnet
)

var formatNames = []string{
	Readable:              "readable",
	Detailed:              "detailed",
	ColonSeparated:        "colon-separated",
	ColonSeparatedTestnet: "colon-separated-testnet",
}

// String returns the kebab-case name of the format.
func (f Format) String() string {
	if f >= 0 && int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(name string) (Format, error) {
	for f, n := range formatNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return Format(f), nil
		}
	}
	return 0, fmt.Errorf("invalid report format %q, want one of %s", name, strings.Join(formatNames, ", "))
}

// FormatNames lists the recognized format names.
func FormatNames() []string {
	return append([]string(nil), formatNames...)
}
