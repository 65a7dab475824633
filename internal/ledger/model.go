// Package ledger keeps the double-entry journal the operational modules post
// into through integration hooks. Entries are immutable once posted; the only
// correction path is a void.
package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type EntryStatus string

const (
	EntryStatusPosted EntryStatus = "posted"
	EntryStatusVoided EntryStatus = "voided"
)

type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

var (
	// ErrUnbalanced rejects postings whose debits and credits differ.
	ErrUnbalanced = errors.New("ledger: journal lines do not balance")
	// ErrSourceAlreadyLinked marks a replayed posting for the same source
	// document. Hooks treat it as success.
	ErrSourceAlreadyLinked = errors.New("ledger: source document already posted")
)

type Account struct {
	ID       int64       `json:"id" db:"id"`
	Code     string      `json:"code" db:"code"`
	Name     string      `json:"name" db:"name"`
	Type     AccountType `json:"type" db:"type"`
	IsActive bool        `json:"is_active" db:"is_active"`
}

// AccountMapping binds a module event key, such as "ar.invoice.revenue", to
// a ledger account.
type AccountMapping struct {
	Module    string `json:"module" db:"module"`
	Key       string `json:"key" db:"key"`
	AccountID int64  `json:"account_id" db:"account_id"`
}

type JournalEntry struct {
	ID           int64         `json:"id" db:"id"`
	Number       string        `json:"number" db:"number"`
	EntryDate    time.Time     `json:"entry_date" db:"entry_date"`
	Memo         string        `json:"memo" db:"memo"`
	SourceModule string        `json:"source_module" db:"source_module"`
	SourceID     uuid.UUID     `json:"source_id" db:"source_id"`
	Status       EntryStatus   `json:"status" db:"status"`
	PostedBy     *int64        `json:"posted_by,omitempty" db:"posted_by"`
	VoidedAt     *time.Time    `json:"voided_at,omitempty" db:"voided_at"`
	VoidReason   *string       `json:"void_reason,omitempty" db:"void_reason"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	Lines        []JournalLine `json:"lines,omitempty" db:"-"`
}

type JournalLine struct {
	ID        int64   `json:"id" db:"id"`
	EntryID   int64   `json:"entry_id" db:"entry_id"`
	AccountID int64   `json:"account_id" db:"account_id"`
	Debit     float64 `json:"debit" db:"debit"`
	Credit    float64 `json:"credit" db:"credit"`
	LineOrder int     `json:"line_order" db:"line_order"`
}

// PostingInput is a journal entry as submitted by an integration hook or the
// manual posting endpoint.
type PostingInput struct {
	EntryDate    time.Time
	Memo         string
	SourceModule string
	SourceID     uuid.UUID
	Lines        []PostingLine
}

type PostingLine struct {
	AccountID int64
	Debit     float64
	Credit    float64
}
