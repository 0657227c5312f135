package notify

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aristath/sgbadvisor/internal/domain"
)

// jsonBond is the wire shape of one recommendation in the JSON document.
type jsonBond struct {
	Symbol       string  `json:"nse_symbol"`
	BSESymbol    string  `json:"bse_symbol"`
	LTP          float64 `json:"ltp"`
	IssuePrice   float64 `json:"issue_price"`
	InterestRate float64 `json:"interest_rate"`
	MaturityDate string  `json:"maturity_date"`
	XIRR         float64 `json:"xirr"`
}

type jsonDocument struct {
	GeneratedAt string     `json:"generated_at"`
	GoldPrice   float64    `json:"gold_price"`
	Bonds       []jsonBond `json:"sgbs"`
}

// JSONDocument renders the full result as an indented JSON document.
func JSONDocument(result *domain.Result) ([]byte, error) {
	doc := jsonDocument{
		GeneratedAt: result.GeneratedAt.Format("2006-01-02 15:04:05"),
		GoldPrice:   result.GoldPrice,
		Bonds:       make([]jsonBond, 0, len(result.Bonds)),
	}
	for _, b := range result.Bonds {
		doc.Bonds = append(doc.Bonds, jsonBond{
			Symbol:       b.Symbol,
			BSESymbol:    b.BSESymbol,
			LTP:          b.LTP,
			IssuePrice:   b.IssuePrice,
			InterestRate: b.InterestRate,
			MaturityDate: b.MaturityDate.Format("2006-01-02"),
			XIRR:         b.XIRR,
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result document: %w", err)
	}
	return data, nil
}

// WriteJSONFile writes the JSON document to a temp file and returns its path.
func WriteJSONFile(result *domain.Result) (string, error) {
	data, err := JSONDocument(result)
	if err != nil {
		return "", err
	}

	path, err := outputPath(result, "json")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write result JSON to %q: %w", path, err)
	}
	return path, nil
}
