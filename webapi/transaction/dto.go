package transaction

import (
	"github.com/finsova/fundrequest/pkg/domain"
	"github.com/finsova/fundrequest/pkg/domain/transaction"
	txsvc "github.com/finsova/fundrequest/pkg/service/transaction"
	"github.com/google/uuid"
)

// SubmitRequest represents the request body for a new fund request.
type SubmitRequest struct {
	SenderBankAccount string `json:"senderBankAccount" validate:"required,max=100"`
	DepositAccount    string `json:"depositAccount" validate:"required,max=100"`
	UTRNumber         string `json:"utrNumber" validate:"required,max=64"`
	Recipient         string `json:"recipient" validate:"max=100"`
	// RFC 3339 timestamp or YYYY-MM-DD date
	TransferredAt string `json:"transferredAt"`
}

func (r *SubmitRequest) toInput() (txsvc.SubmitInput, error) {
	transferredAt, err := transaction.ParseDate("transferredAt", r.TransferredAt, false)
	if err != nil {
		return txsvc.SubmitInput{}, err
	}
	return txsvc.SubmitInput{
		SenderBankAccount: r.SenderBankAccount,
		DepositAccount:    r.DepositAccount,
		UTRNumber:         r.UTRNumber,
		Recipient:         r.Recipient,
		TransferredAt:     transferredAt,
	}, nil
}

// DecisionRequest represents the request body for an admin decision.
type DecisionRequest struct {
	Decision    string `json:"decision" validate:"required"`
	AdminRemark string `json:"adminRemark" validate:"max=500"`
}

// ListQuery holds the filters shared by list and export.
type ListQuery struct {
	Status      string `query:"status"`
	DateFrom    string `query:"dateFrom"`
	DateTo      string `query:"dateTo"`
	SubmittedBy string `query:"submittedBy"`
	Format      string `query:"format"`
}

// toFilter parses the query. A bare dateTo date covers that whole day.
func (q *ListQuery) toFilter() (transaction.Filter, error) {
	var (
		f   transaction.Filter
		err error
	)
	if q.Status != "" {
		if f.Status, err = transaction.ParseStatus(q.Status); err != nil {
			return f, err
		}
	}
	if f.DateFrom, err = transaction.ParseDate("dateFrom", q.DateFrom, false); err != nil {
		return f, err
	}
	if f.DateTo, err = transaction.ParseDate("dateTo", q.DateTo, true); err != nil {
		return f, err
	}
	if q.SubmittedBy != "" {
		if f.SubmittedBy, err = uuid.Parse(q.SubmittedBy); err != nil {
			return f, domain.Validation("submittedBy", "must be a valid UUID")
		}
	}
	return f, nil
}
