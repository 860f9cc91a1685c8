package domain

import "time"

// UseCaseRecord is the finalized snapshot of one completed session, the unit
// appended to the spreadsheet. Immutable once constructed.
type UseCaseRecord struct {
	SessionID   string
	Catalog     Catalog
	Answers     map[int]string
	Caption     string
	SubmittedAt time.Time
}

// NewUseCaseRecord copies the given answers so later session activity cannot
// alter the record.
func NewUseCaseRecord(sessionID string, catalog Catalog, answers map[int]string, caption string, submittedAt time.Time) *UseCaseRecord {
	copied := make(map[int]string, len(answers))
	for id, text := range answers {
		copied[id] = text
	}
	return &UseCaseRecord{
		SessionID:   sessionID,
		Catalog:     catalog,
		Answers:     copied,
		Caption:     caption,
		SubmittedAt: submittedAt,
	}
}

// Row renders the fixed spreadsheet row: timestamp, one column per catalog
// question in order, then the caption. A missing answer becomes an empty
// string in its own column; later columns never shift.
func (r *UseCaseRecord) Row() []string {
	row := make([]string, 0, len(r.Catalog)+2)
	row = append(row, r.SubmittedAt.UTC().Format(time.RFC3339))
	for _, q := range r.Catalog {
		row = append(row, r.Answers[q.ID])
	}
	row = append(row, r.Caption)
	return row
}
