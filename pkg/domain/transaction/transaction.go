// Package transaction models a fund request: a user's claim that money was
// transferred from one of their bank accounts into a company deposit account,
// waiting for an admin to approve or reject it.
package transaction

import (
	"strings"
	"time"

	"github.com/finsova/fundrequest/pkg/domain"
	"github.com/google/uuid"
)

// Status is the lifecycle state of a fund request.
type Status string

// Lifecycle states. Pending is the only non-terminal state.
const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// ParseStatus accepts a status name in any letter case.
func ParseStatus(raw string) (Status, error) {
	for _, s := range []Status{StatusPending, StatusApproved, StatusRejected} {
		if strings.EqualFold(raw, string(s)) {
			return s, nil
		}
	}
	return "", domain.Validation("status", "must be one of Pending, Approved, Rejected")
}

// ParseDecision parses the target state of an admin decision. Only the
// terminal states are accepted.
func ParseDecision(raw string) (Status, error) {
	s, err := ParseStatus(raw)
	if err != nil || !s.Terminal() {
		return "", domain.Validation("decision", "must be Approved or Rejected")
	}
	return s, nil
}

// Transaction is a fund request and its decision.
//
// Invariants:
// - ID, SubmittedAt and SubmittedBy never change after creation.
// - Status only moves from Pending to Approved or Rejected, once.
// - AdminRemark, DecidedBy and DecidedAt are only set together with that move.
type Transaction struct {
	ID                uuid.UUID  `json:"id"`
	SenderBankAccount string     `json:"senderBankAccount"`
	DepositAccount    string     `json:"depositAccount"`
	UTRNumber         string     `json:"utrNumber"`
	Recipient         string     `json:"recipient,omitempty"`
	TransferredAt     *time.Time `json:"transferredAt,omitempty"`
	SubmittedAt       time.Time  `json:"submittedAt"`
	SubmittedBy       uuid.UUID  `json:"submittedBy"`
	Status            Status     `json:"status"`
	AdminRemark       string     `json:"adminRemark,omitempty"`
	DecidedBy         *uuid.UUID `json:"decidedBy,omitempty"`
	DecidedAt         *time.Time `json:"decidedAt,omitempty"`
}

// Builder constructs a new Pending transaction and enforces the submission
// invariants in Build.
type Builder struct {
	id                uuid.UUID
	senderBankAccount string
	depositAccount    string
	utrNumber         string
	recipient         string
	transferredAt     *time.Time
	submittedAt       time.Time
	submittedBy       uuid.UUID
}

// New creates a Builder with a fresh ID and the current time.
func New() *Builder {
	return &Builder{
		id:          uuid.New(),
		submittedAt: time.Now().UTC(),
	}
}

// WithID overrides the generated ID.
func (b *Builder) WithID(id uuid.UUID) *Builder {
	b.id = id
	return b
}

// WithSenderBankAccount sets the account the money was sent from.
func (b *Builder) WithSenderBankAccount(account string) *Builder {
	b.senderBankAccount = strings.TrimSpace(account)
	return b
}

// WithDepositAccount sets the company account the money was sent to.
func (b *Builder) WithDepositAccount(account string) *Builder {
	b.depositAccount = strings.TrimSpace(account)
	return b
}

// WithUTRNumber sets the bank-issued transfer reference.
func (b *Builder) WithUTRNumber(utr string) *Builder {
	b.utrNumber = strings.TrimSpace(utr)
	return b
}

// WithRecipient sets the optional recipient label.
func (b *Builder) WithRecipient(recipient string) *Builder {
	b.recipient = strings.TrimSpace(recipient)
	return b
}

// WithTransferredAt records when the submitter says the transfer happened.
func (b *Builder) WithTransferredAt(t *time.Time) *Builder {
	if t != nil {
		utc := t.UTC()
		b.transferredAt = &utc
	}
	return b
}

// WithSubmittedAt overrides the submission time.
func (b *Builder) WithSubmittedAt(t time.Time) *Builder {
	b.submittedAt = t.UTC()
	return b
}

// WithSubmittedBy sets the owning user.
func (b *Builder) WithSubmittedBy(userID uuid.UUID) *Builder {
	b.submittedBy = userID
	return b
}

// Build validates required fields in declaration order and returns a Pending
// transaction.
func (b *Builder) Build() (*Transaction, error) {
	switch {
	case b.senderBankAccount == "":
		return nil, domain.Validation("senderBankAccount", "is required")
	case b.depositAccount == "":
		return nil, domain.Validation("depositAccount", "is required")
	case b.utrNumber == "":
		return nil, domain.Validation("utrNumber", "is required")
	case b.submittedBy == uuid.Nil:
		return nil, domain.Validation("submittedBy", "is required")
	}
	return &Transaction{
		ID:                b.id,
		SenderBankAccount: b.senderBankAccount,
		DepositAccount:    b.depositAccount,
		UTRNumber:         b.utrNumber,
		Recipient:         b.recipient,
		TransferredAt:     b.transferredAt,
		SubmittedAt:       b.submittedAt,
		SubmittedBy:       b.submittedBy,
		Status:            StatusPending,
	}, nil
}

// Decide moves a Pending transaction into the target terminal state.
// The receiver is left untouched when an error is returned.
func (t *Transaction) Decide(target Status, remark string, decidedBy uuid.UUID, at time.Time) error {
	if !target.Terminal() {
		return domain.Validation("decision", "must be Approved or Rejected")
	}
	if t.Status != StatusPending {
		return domain.InvalidState("transaction is already " + string(t.Status))
	}
	at = at.UTC()
	t.Status = target
	t.AdminRemark = strings.TrimSpace(remark)
	t.DecidedBy = &decidedBy
	t.DecidedAt = &at
	return nil
}

// Clone returns a deep copy so stores can hand out records without sharing
// pointers.
func (t *Transaction) Clone() *Transaction {
	if t == nil {
		return nil
	}
	c := *t
	if t.TransferredAt != nil {
		v := *t.TransferredAt
		c.TransferredAt = &v
	}
	if t.DecidedBy != nil {
		v := *t.DecidedBy
		c.DecidedBy = &v
	}
	if t.DecidedAt != nil {
		v := *t.DecidedAt
		c.DecidedAt = &v
	}
	return &c
}
