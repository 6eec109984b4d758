package report

import (
	"fmt"
	"strconv"
	"strings"

	"Reclaim/internal/address"
	"Reclaim/internal/currency"
)

var headings = [3]string{"amount", "earliest release date", "address"}

// columnWidths returns the widths of the amount, release date and address
// columns. Every rendering of a field fits, so widths do not depend on the
// report's contents.
func columnWidths(f Format) [3]int {
	amount := max(currency.MaxStringWidth(), currency.MaxNauWidth())

	date := currency.MaxMillisWidth()
	addr := address.Bech32mLen(address.Main)
	if f == Readable {
		date = currency.MaxStandardFormatWidth()
		addr = address.AbbreviatedLen(address.Main)
	}

	return [3]int{
		max(len(headings[0]), amount),
		max(len(headings[1]), date),
		max(len(headings[2]), addr),
	}
}

// tableWidth is the width of a bordered Readable row.
func tableWidth(widths [3]int) int {
	return widths[0] + widths[1] + widths[2] + len("| ") + 2*len(" | ") + len(" |")
}

// Render renders the report. The output always ends with a newline.
func (r *Report) Render(f Format) (string, error) {
	if f < Readable || f > ColonSeparatedTestnet {
		return "", fmt.Errorf("unsupported report format: %v", f)
	}

	widths := columnWidths(f)

	var b strings.Builder

	switch f {
	case Readable:
		rule := strings.Repeat("-", tableWidth(widths))
		fmt.Fprintf(&b, "%s\n| %-*s | %-*s | %-*s |\n%s\n",
			rule, widths[0], headings[0], widths[1], headings[1], widths[2], headings[2], rule)
	case Detailed:
		fmt.Fprintf(&b, "%-*s %-*s %-*s\n",
			widths[0], headings[0], widths[1], headings[1], widths[2], headings[2])
	}

	for _, e := range r.entries {
		row, err := e.render(f, widths)
		if err != nil {
			return "", err
		}
		b.WriteString(row)
	}

	if f == Readable {
		fmt.Fprintf(&b, "%s\n| total: %s", strings.Repeat("-", tableWidth(widths)), r.Total())
	}

	b.WriteString("\n")

	return b.String(), nil
}

// render renders one entry as a line.
func (e Entry) render(f Format, widths [3]int) (string, error) {
	amount := e.Amount.String()
	if f == Detailed {
		amount = e.Amount.NauString()
	}

	date := "-"
	if e.ReleaseDate != nil {
		if f == Readable {
			date = e.ReleaseDate.StandardFormat()
		} else {
			date = strconv.FormatUint(e.ReleaseDate.Millis(), 10)
		}
	}

	var (
		addr string
		err  error
	)
	switch f {
	case Readable:
		addr, err = e.Address.Abbreviated(address.Main)
	case ColonSeparatedTestnet:
		addr, err = e.Address.Bech32m(address.Testnet)
	default:
		addr, err = e.Address.Bech32m(address.Main)
	}
	if err != nil {
		return "", fmt.Errorf("encode address:\n%w", err)
	}

	switch f {
	case Readable:
		return fmt.Sprintf("| %*s | %-*s | %-*s |\n", widths[0], amount, widths[1], date, widths[2], addr), nil
	case Detailed:
		return fmt.Sprintf("%*s %-*s %-*s\n", widths[0], amount, widths[1], date, widths[2], addr), nil
	default:
		if e.ReleaseDate != nil {
			return fmt.Sprintf("%s:%s:%s\n", addr, amount, date), nil
		}
		return fmt.Sprintf("%s:%s\n", addr, amount), nil
	}
}
