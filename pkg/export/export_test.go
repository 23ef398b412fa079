package export_test

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/finsova/fundrequest/pkg/domain"
	"github.com/finsova/fundrequest/pkg/domain/transaction"
	"github.com/finsova/fundrequest/pkg/export"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtures(t *testing.T, n int) []*transaction.Transaction {
	t.Helper()
	at := time.Date(2025, 7, 11, 10, 30, 0, 0, time.UTC)
	out := make([]*transaction.Transaction, 0, n)
	for i := range n {
		b := transaction.New().
			WithSenderBankAccount("HDFC").
			WithDepositAccount("ICICI").
			WithUTRNumber(fmt.Sprintf("UTR%03d", i)).
			WithSubmittedBy(uuid.New()).
			WithSubmittedAt(at.Add(time.Duration(i) * time.Minute))
		if i%2 == 0 {
			b = b.WithRecipient("John, Jr.")
		}
		tx, err := b.Build()
		require.NoError(t, err)
		if i%3 == 0 {
			require.NoError(t, tx.Decide(transaction.StatusApproved, "Matched\nwith bank", uuid.New(), at))
		}
		out = append(out, tx)
	}
	return out
}

func TestParseFormat(t *testing.T) {
	t.Parallel()
	f, err := export.ParseFormat("Delimited")
	require.NoError(t, err)
	assert.Equal(t, export.Delimited, f)
	assert.Equal(t, "csv", f.Extension())

	f, err = export.ParseFormat("tabular")
	require.NoError(t, err)
	assert.Equal(t, export.Tabular, f)
	assert.Contains(t, f.ContentType(), "text/plain")

	_, err = export.ParseFormat("pdf")
	assert.ErrorIs(t, err, domain.ErrFormat)
}

func TestRender_Delimited(t *testing.T) {
	t.Parallel()
	for _, n := range []int{0, 1, 7} {
		t.Run(fmt.Sprintf("%d rows", n), func(t *testing.T) {
			txs := fixtures(t, n)
			out, err := export.Render(slices.Values(txs), export.Delimited)
			require.NoError(t, err)

			records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
			require.NoError(t, err)
			require.Len(t, records, n+1)
			assert.Equal(t, export.Header, records[0])
			for i, tx := range txs {
				assert.Equal(t, export.Row(tx), records[i+1])
			}
		})
	}
}

func TestRender_DelimitedFieldFormatting(t *testing.T) {
	t.Parallel()
	txs := fixtures(t, 2)
	out, err := export.Render(slices.Values(txs), export.Delimited)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"HDFC", "ICICI", "UTR000", "2025-07-11T10:30:00Z", "Approved", "John, Jr.", "Matched\nwith bank"}, records[1])
	assert.Equal(t, []string{"HDFC", "ICICI", "UTR001", "2025-07-11T10:31:00Z", "Pending", "-", "-"}, records[2])
}

func TestRender_DelimitedNeutralizesFormulas(t *testing.T) {
	t.Parallel()
	txs := fixtures(t, 1)
	txs[0].SenderBankAccount = "=SUM(A1)"
	txs[0].DepositAccount = "+91 ICICI"
	txs[0].Recipient = "@ops"
	txs[0].AdminRemark = "-2+3"

	out, err := export.Render(slices.Values(txs), export.Delimited)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "'=SUM(A1)", records[1][0])
	assert.Equal(t, "'+91 ICICI", records[1][1])
	assert.Equal(t, "UTR000", records[1][2])
	assert.Equal(t, "'@ops", records[1][5])
	assert.Equal(t, "'-2+3", records[1][6])

	table, err := export.Render(slices.Values(txs), export.Tabular)
	require.NoError(t, err)
	assert.Contains(t, string(table), "=SUM(A1)")
	assert.NotContains(t, string(table), "'=SUM(A1)")
}

func TestRender_Tabular(t *testing.T) {
	t.Parallel()
	txs := fixtures(t, 4)
	out, err := export.Render(slices.Values(txs), export.Tabular)
	require.NoError(t, err)

	text := string(out)
	assert.Equal(t, 1, strings.Count(text, "Sender Bank"))
	dataLines := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, "UTR0") {
			dataLines++
		}
	}
	assert.Equal(t, len(txs), dataLines)
	assert.Contains(t, text, "Matched with bank")
}

func TestRender_UnknownFormat(t *testing.T) {
	t.Parallel()
	_, err := export.Render(slices.Values(fixtures(t, 1)), export.Format("xml"))
	assert.ErrorIs(t, err, domain.ErrFormat)
}
