package notify

import (
	"fmt"
	"html/template"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aristath/sgbadvisor/internal/domain"
)

// Disclaimer is included with every rendered output.
const Disclaimer = "THIS IS NOT INVESTMENT ADVICE. IT CAN BE WRONG, DUE TO DATA, " +
	"CALCULATION, TIMING OR ANY OTHER ERRORS. DO YOUR OWN RESEARCH. " +
	"PROFITS ARE NOT GUARANTEED, LOSSES CAN BE UPTO 100%!"

// TableSelector is the DOM id of the results table in rendered output; the
// Telegram notifier screenshots this element.
const TableSelector = "#sgb-returns-table"

var tableTemplate = template.Must(template.New("table").Parse(`{{if .Bonds -}}
<table id="sgb-returns-table">
  <caption>Estimated returns of each SGB</caption>
  <thead>
    <tr>
      <th scope="col">NSE Symbol</th>
      <th scope="col">LTP</th>
      <th scope="col">Maturity Date</th>
      <th scope="col">XIRR (%)</th>
    </tr>
  </thead>
  <tbody>
  {{- range .Bonds}}
    <tr>
      <td>{{.Symbol}}</td>
      <td>{{printf "%.2f" .LTP}}</td>
      <td>{{.MaturityDate.Format "2 January 2006"}}</td>
      <td>{{printf "%.3f" .XIRR}}</td>
    </tr>
  {{- end}}
  </tbody>
</table>
{{- else -}}
<h2 id="sgb-returns-table">No recommendations</h2>
{{- end}}`))

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
  <title>SGB advisor output</title>
  <style>
    table { border-collapse: collapse; border: 0.25px solid black; }
    th, td { border: 0.125px solid black; padding: 0.5rem 0.625rem; }
  </style>
</head>
<body>
  {{.Table}}
  <p>Gold (999) reference price: ₹{{printf "%.2f" .GoldPrice}}</p>
  <p>Generated at {{.GeneratedAt.Format "2 January 2006 15:04"}}</p>
  <p><small>{{.Disclaimer}}</small></p>
</body>
</html>
`))

// TableHTML renders just the results table. An empty result renders the
// distinct "No recommendations" block, never an empty table.
func TableHTML(result *domain.Result) (string, error) {
	var sb strings.Builder
	if err := tableTemplate.Execute(&sb, result); err != nil {
		return "", fmt.Errorf("failed to render results table: %w", err)
	}
	return sb.String(), nil
}

// PageHTML renders the standalone output page around the table.
func PageHTML(result *domain.Result) (string, error) {
	table, err := TableHTML(result)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	err = pageTemplate.Execute(&sb, struct {
		Table       template.HTML
		GoldPrice   float64
		GeneratedAt time.Time
		Disclaimer  string
	}{
		Table:       template.HTML(table),
		GoldPrice:   result.GoldPrice,
		GeneratedAt: result.GeneratedAt,
		Disclaimer:  Disclaimer,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render output page: %w", err)
	}
	return sb.String(), nil
}

// TextSummary renders the plain-text body used for email and chat fallback.
func TextSummary(result *domain.Result) string {
	var sb strings.Builder
	sb.WriteString("You can consider the following SGBs\n")
	sb.WriteString(Disclaimer + "\n\n")

	if len(result.Bonds) == 0 {
		sb.WriteString("No recommendations\n")
		return sb.String()
	}

	for _, b := range result.Bonds {
		sb.WriteString(fmt.Sprintf("%s - Issued at ₹%v - LTP ₹%v - %v%% interest - %s - XIRR %.3f%%\n",
			b.Symbol, b.IssuePrice, b.LTP, b.InterestRate, b.MaturityDate.Format("2006-01-02"), b.XIRR))
	}
	return sb.String()
}

// outputDir returns the per-run output folder under the OS temp directory.
func outputDir() (string, error) {
	dir := filepath.Join(os.TempDir(), "sgb-advisor")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output folder: %w", err)
	}
	return dir, nil
}

// outputPath builds a collision-resistant output file path for the run.
func outputPath(result *domain.Result, extension string) (string, error) {
	dir, err := outputDir()
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s SGB Advisor Output %05d.%s",
		result.GeneratedAt.Format("2006-01-02"), rand.Intn(100000), extension)
	return filepath.Join(dir, name), nil
}

// WriteHTMLFile renders the output page to a temp file and returns its path.
// This runs on every invocation regardless of notification mode.
func WriteHTMLFile(result *domain.Result) (string, error) {
	html, err := PageHTML(result)
	if err != nil {
		return "", err
	}

	path, err := outputPath(result, "html")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return "", fmt.Errorf("failed to write output HTML to %q: %w", path, err)
	}
	return path, nil
}
