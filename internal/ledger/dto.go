package ledger

import (
	"time"

	"github.com/google/uuid"
)

type PostingLineRequest struct {
	AccountID int64   `json:"account_id" validate:"required,gt=0"`
	Debit     float64 `json:"debit" validate:"gte=0"`
	Credit    float64 `json:"credit" validate:"gte=0"`
}

// PostJournalRequest is the manual posting payload. Hook-driven postings
// build PostingInput directly and carry a deterministic source ID; manual
// entries get a fresh one.
type PostJournalRequest struct {
	EntryDate time.Time            `json:"entry_date" validate:"required"`
	Memo      string               `json:"memo" validate:"required,max=500"`
	Lines     []PostingLineRequest `json:"lines" validate:"required,min=2,dive"`
}

func (r PostJournalRequest) toInput() PostingInput {
	input := PostingInput{
		EntryDate:    r.EntryDate,
		Memo:         r.Memo,
		SourceModule: "manual",
		SourceID:     uuid.New(),
	}
	for _, l := range r.Lines {
		input.Lines = append(input.Lines, PostingLine(l))
	}
	return input
}

type VoidEntryRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}
