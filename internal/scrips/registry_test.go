package scrips

import (
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadEmbedded tests loading the embedded scrips table.
func TestLoadEmbedded(t *testing.T) {
	reg, err := Load("", zerolog.Nop())
	require.NoError(t, err)
	assert.Greater(t, reg.Len(), 30)

	row, ok := reg.Lookup("SGBSEP27")
	require.True(t, ok)
	assert.Equal(t, "SGB2019III", row.SymbolBSE)
	assert.Equal(t, 2.50, row.InterestRate)
	assert.Equal(t, 5400.0, row.IssuePrice)
	assert.Equal(t, time.Date(2027, time.September, 1, 0, 0, 0, 0, time.UTC), row.MaturityDate)
}

// TestLookupTrimsWhitespace tests that lookups trim the scraped symbol.
func TestLookupTrimsWhitespace(t *testing.T) {
	reg, err := Load("", zerolog.Nop())
	require.NoError(t, err)

	_, ok := reg.Lookup("  SGBSEP27 ")
	assert.True(t, ok)

	_, ok = reg.Lookup("NOTASYMBOL")
	assert.False(t, ok)
}

// TestParseMalformedRow tests that a bad row fails the whole load.
func TestParseMalformedRow(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{
			name: "bad interest rate",
			csv: "Symbol NSE,Symbol BSE,Interest per annum,Interest payment dates,Maturity Date,Issue price\n" +
				"SGBTEST,SGBX,abc%,1st Jan and Jul,01/01/2030,5000\n",
		},
		{
			name: "bad maturity date",
			csv: "Symbol NSE,Symbol BSE,Interest per annum,Interest payment dates,Maturity Date,Issue price\n" +
				"SGBTEST,SGBX,2.50%,1st Jan and Jul,2030-01-01,5000\n",
		},
		{
			name: "bad issue price",
			csv: "Symbol NSE,Symbol BSE,Interest per annum,Interest payment dates,Maturity Date,Issue price\n" +
				"SGBTEST,SGBX,2.50%,1st Jan and Jul,01/01/2030,five thousand\n",
		},
		{
			name: "no data rows",
			csv:  "Symbol NSE,Symbol BSE,Interest per annum,Interest payment dates,Maturity Date,Issue price\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(strings.NewReader(tt.csv))
			assert.Error(t, err)
		})
	}
}

// TestLoadMissingFile tests that a missing override file propagates an error.
func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/scrips.csv", zerolog.Nop())
	assert.Error(t, err)
}

// TestParseRatePercentSign tests percent sign and whitespace stripping.
func TestParseRatePercentSign(t *testing.T) {
	csv := "Symbol NSE,Symbol BSE,Interest per annum,Interest payment dates,Maturity Date,Issue price\n" +
		"SGBTEST, SGBX , 2.75% ,1st Jan and Jul,01/01/2030,5000\n"
	reg, err := parse(strings.NewReader(csv))
	require.NoError(t, err)
	row, ok := reg.Lookup("SGBTEST")
	assert.True(t, ok)
	assert.Equal(t, 2.75, row.InterestRate)
	assert.Equal(t, "SGBX", row.SymbolBSE)
}
