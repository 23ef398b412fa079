// Package export renders a sequence of fund requests for download.
package export

import (
	"bytes"
	"encoding/csv"
	"iter"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/finsova/fundrequest/pkg/domain"
	"github.com/finsova/fundrequest/pkg/domain/transaction"
)

// Format names an export layout.
type Format string

// Supported formats.
const (
	Delimited Format = "delimited"
	Tabular   Format = "tabular"
)

// Header is the column order shared by every format.
var Header = []string{
	"Sender Bank",
	"Deposit Account",
	"UTR",
	"Submitted At",
	"Status",
	"Recipient",
	"Admin Remark",
}

// ParseFormat accepts a format name in any letter case.
func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case Delimited, Tabular:
		return f, nil
	}
	return "", domain.NewError(domain.ErrFormat, "format", "must be delimited or tabular")
}

// ContentType is the media type of an export in f.
func (f Format) ContentType() string {
	if f == Delimited {
		return "text/csv; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

// Extension is the file extension used for downloads.
func (f Format) Extension() string {
	if f == Delimited {
		return "csv"
	}
	return "txt"
}

// Render writes txs in format f with one data row per transaction.
func Render(txs iter.Seq[*transaction.Transaction], f Format) ([]byte, error) {
	switch f {
	case Delimited:
		return renderDelimited(txs)
	case Tabular:
		return renderTabular(txs), nil
	}
	return nil, domain.NewError(domain.ErrFormat, "format", "must be delimited or tabular")
}

// Row returns the export cells for tx in Header order.
func Row(tx *transaction.Transaction) []string {
	return []string{
		tx.SenderBankAccount,
		tx.DepositAccount,
		tx.UTRNumber,
		tx.SubmittedAt.UTC().Format(time.RFC3339),
		string(tx.Status),
		orDash(tx.Recipient),
		orDash(tx.AdminRemark),
	}
}

func renderDelimited(txs iter.Seq[*transaction.Transaction]) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Header); err != nil {
		return nil, err
	}
	for tx := range txs {
		if err := w.Write(neutralize(Row(tx))); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderTabular(txs iter.Seq[*transaction.Transaction]) []byte {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(Header...)
	for tx := range txs {
		t.Row(singleLine(Row(tx))...)
	}
	return []byte(t.String() + "\n")
}

// singleLine keeps every transaction on one table line.
func singleLine(cells []string) []string {
	for i, c := range cells {
		cells[i] = strings.Join(strings.Fields(c), " ")
	}
	return cells
}

// neutralize prefixes cells a spreadsheet would evaluate as a formula with a
// single quote. The lone "-" placeholder is left alone.
func neutralize(cells []string) []string {
	for i, c := range cells {
		if c != "-" && c != "" && strings.ContainsRune("=+-@\t\r", rune(c[0])) {
			cells[i] = "'" + c
		}
	}
	return cells
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
