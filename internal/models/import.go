package models

// ImportRowError records a single rejected row from a bulk import. Rows
// rejected by validation carry the 1-indexed data row number; rows that
// failed at insert time are keyed by product name instead.
type ImportRowError struct {
	Row     int    `json:"row,omitempty"`
	Product string `json:"product,omitempty"`
	Error   string `json:"error"`
}

// ImportSummary aggregates the outcome of one bulk import. Errors preserve
// the original row order. A non-empty error list is a normal outcome, not a
// failure of the import as a whole.
type ImportSummary struct {
	TotalRows         int              `json:"totalRows"`
	SuccessfulImports int              `json:"successfulImports"`
	Errors            []ImportRowError `json:"errors"`
}
