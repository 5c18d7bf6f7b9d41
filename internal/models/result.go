package models

// ParseResult is what the parsing half of the pipeline produces for one file.
type ParseResult struct {
	Institution   Institution         `json:"institution"`
	CardNumber    string              `json:"card_number,omitempty"`
	AccountNumber string              `json:"account_number,omitempty"`
	HolderName    string              `json:"holder_name,omitempty"`
	Transactions  []ParsedTransaction `json:"transactions"`
	RowCount      int                 `json:"row_count"`
	SuccessCount  int                 `json:"success_count"`
	SkippedRows   int                 `json:"skipped_rows"`
	Errors        []string            `json:"errors,omitempty"`
	Warnings      []string            `json:"warnings,omitempty"`
}

// Failed reports a file-level failure: errors and nothing usable.
func (r *ParseResult) Failed() bool {
	return len(r.Errors) > 0 && len(r.Transactions) == 0
}

// ImportResult summarizes the ingestion of one statement file.
type ImportResult struct {
	File              string      `json:"file"`
	Institution       Institution `json:"institution"`
	CardNumber        string      `json:"card_number,omitempty"`
	AccountID         string      `json:"account_id,omitempty"`
	RowCount          int         `json:"row_count"`
	SuccessCount      int         `json:"success_count"`
	SkippedRows       int         `json:"skipped_rows"`
	Imported          int         `json:"imported"`
	Duplicates        int         `json:"duplicates"`
	CorrectedExisting int         `json:"corrected_existing"`
	Categorized       int         `json:"categorized"`
	MarkedRecurring   int         `json:"marked_recurring"`
	Errors            []string    `json:"errors,omitempty"`
	Warnings          []string    `json:"warnings,omitempty"`
}

// FromParse copies the parse counters into r.
func (r *ImportResult) FromParse(p *ParseResult) {
	r.Institution = p.Institution
	r.CardNumber = p.CardNumber
	r.RowCount = p.RowCount
	r.SuccessCount = p.SuccessCount
	r.SkippedRows = p.SkippedRows
	r.Errors = append(r.Errors, p.Errors...)
	r.Warnings = append(r.Warnings, p.Warnings...)
}

// Failed reports whether the file could not be ingested at all.
func (r *ImportResult) Failed() bool {
	return len(r.Errors) > 0 && r.SuccessCount == 0
}
