// Package scrips loads the static table of SGB issue terms.
//
// The table maps an NSE symbol to the bond's issue price, coupon rate and
// maturity date. It is a trusted, embedded asset: a malformed row is a build
// problem, not a runtime condition, so parsing fails fast instead of skipping
// rows.
package scrips

import (
	"bytes"
	"embed"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

//go:embed assets/scrips.csv
var assets embed.FS

// dateLayout is the maturity date format used in scrips.csv (DD/MM/YYYY).
const dateLayout = "02/01/2006"

// Row holds the issue terms for one bond tranche.
type Row struct {
	SymbolNSE     string
	SymbolBSE     string
	InterestRate  float64 // percent per annum, paid on IssuePrice
	PaymentMonths string  // human-readable payment dates description
	MaturityDate  time.Time
	IssuePrice    float64
}

// Registry is the loaded scrips table, keyed by NSE symbol.
type Registry struct {
	rows map[string]Row
	log  zerolog.Logger
}

// Load reads the scrips table. If path is empty the embedded asset is used,
// otherwise the file at path (the SGB_SCRIPS_FILE override).
func Load(path string, log zerolog.Logger) (*Registry, error) {
	var src io.Reader
	if path == "" {
		data, err := assets.ReadFile("assets/scrips.csv")
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded scrips table: %w", err)
		}
		src = bytes.NewReader(data)
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open scrips file %q: %w", path, err)
		}
		defer f.Close()
		src = f
	}

	reg, err := parse(src)
	if err != nil {
		return nil, err
	}
	reg.log = log.With().Str("component", "scrips").Logger()
	reg.log.Debug().Int("rows", len(reg.rows)).Msg("Loaded scrips table")
	return reg, nil
}

func parse(src io.Reader) (*Registry, error) {
	reader := csv.NewReader(src)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse scrips CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("scrips table has no data rows")
	}

	rows := make(map[string]Row, len(records)-1)
	// First record is the header.
	for _, record := range records[1:] {
		row, err := parseRow(record)
		if err != nil {
			return nil, err
		}
		rows[row.SymbolNSE] = row
	}

	return &Registry{rows: rows}, nil
}

func parseRow(record []string) (Row, error) {
	if len(record) != 6 {
		return Row{}, fmt.Errorf("scrips row has %d columns, want 6: %v", len(record), record)
	}

	symbol := strings.TrimSpace(record[0])

	rate, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(record[2]), "%")), 64)
	if err != nil {
		return Row{}, fmt.Errorf("invalid interest rate for %s: %w", symbol, err)
	}

	maturity, err := time.Parse(dateLayout, strings.TrimSpace(record[4]))
	if err != nil {
		return Row{}, fmt.Errorf("invalid maturity date for %s: %w", symbol, err)
	}

	issuePrice, err := strconv.ParseFloat(strings.TrimSpace(record[5]), 64)
	if err != nil {
		return Row{}, fmt.Errorf("invalid issue price for %s: %w", symbol, err)
	}

	return Row{
		SymbolNSE:     symbol,
		SymbolBSE:     strings.TrimSpace(record[1]),
		InterestRate:  rate,
		PaymentMonths: strings.TrimSpace(record[3]),
		MaturityDate:  maturity,
		IssuePrice:    issuePrice,
	}, nil
}

// Lookup returns the issue terms for an NSE symbol. The symbol is trimmed
// before matching; matching is otherwise exact.
func (r *Registry) Lookup(symbol string) (Row, bool) {
	row, ok := r.rows[strings.TrimSpace(symbol)]
	return row, ok
}

// Len returns the number of tranches in the table.
func (r *Registry) Len() int {
	return len(r.rows)
}
