package transaction

import (
	"time"

	"github.com/finsova/fundrequest/pkg/domain/transaction"
	"github.com/google/uuid"
)

// Transaction is the persisted form of a fund request. Seq only exists to
// order rows that share a submission timestamp.
type Transaction struct {
	Seq               uint64     `gorm:"primaryKey;autoIncrement"`
	ID                uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_fund_transactions_id"`
	SenderBankAccount string     `gorm:"size:128;not null"`
	DepositAccount    string     `gorm:"size:128;not null"`
	UTRNumber         string     `gorm:"column:utr_number;size:64;not null;uniqueIndex:uq_fund_transactions_utr"`
	Recipient         string     `gorm:"size:128"`
	TransferredAt     *time.Time `gorm:"column:transferred_at"`
	SubmittedAt       time.Time  `gorm:"not null;index"`
	SubmittedBy       uuid.UUID  `gorm:"type:uuid;not null;index"`
	Status            string     `gorm:"type:varchar(16);not null;index"`
	AdminRemark       string     `gorm:"size:512"`
	DecidedBy         *uuid.UUID `gorm:"type:uuid"`
	DecidedAt         *time.Time
}

// TableName specifies the table name for the Transaction model.
func (Transaction) TableName() string {
	return "fund_transactions"
}

func fromDomain(tx *transaction.Transaction) Transaction {
	return Transaction{
		ID:                tx.ID,
		SenderBankAccount: tx.SenderBankAccount,
		DepositAccount:    tx.DepositAccount,
		UTRNumber:         tx.UTRNumber,
		Recipient:         tx.Recipient,
		TransferredAt:     tx.TransferredAt,
		SubmittedAt:       tx.SubmittedAt,
		SubmittedBy:       tx.SubmittedBy,
		Status:            string(tx.Status),
		AdminRemark:       tx.AdminRemark,
		DecidedBy:         tx.DecidedBy,
		DecidedAt:         tx.DecidedAt,
	}
}

func (m *Transaction) toDomain() *transaction.Transaction {
	tx := &transaction.Transaction{
		ID:                m.ID,
		SenderBankAccount: m.SenderBankAccount,
		DepositAccount:    m.DepositAccount,
		UTRNumber:         m.UTRNumber,
		Recipient:         m.Recipient,
		SubmittedAt:       m.SubmittedAt.UTC(),
		SubmittedBy:       m.SubmittedBy,
		Status:            transaction.Status(m.Status),
		AdminRemark:       m.AdminRemark,
		DecidedBy:         m.DecidedBy,
	}
	if m.TransferredAt != nil {
		v := m.TransferredAt.UTC()
		tx.TransferredAt = &v
	}
	if m.DecidedAt != nil {
		v := m.DecidedAt.UTC()
		tx.DecidedAt = &v
	}
	return tx
}
