package logging

// Field names shared by every component so log lines can be filtered
// consistently.
const (
	FieldFile        = "file"
	FieldInstitution = "institution"
	FieldAccount     = "account_id"
	FieldTransaction = "transaction_id"
	FieldCategory    = "category"
	FieldSignature   = "signature"
	FieldReference   = "reference"
	FieldRow         = "row"
	FieldColumn      = "column"
	FieldReason      = "reason"
	FieldCount       = "count"
	FieldDuration    = "duration_ms"
	FieldFormat      = "format"
	FieldSuggestion  = "suggestion"
)
