package sheet

// RawSheet is an untyped grid of cell text as parsed from one worksheet.
// It carries no semantic typing; the transform pipeline consumes it once.
type RawSheet struct {
	Name string
	Rows [][]string
}

// HeaderCandidate scores one row as a potential header row.
type HeaderCandidate struct {
	RowIndex   int
	TokenCount int
	// Confidence is the recognized-token share of the row's non-empty cells
	Confidence float64
}

// IsEmpty reports whether the sheet has no rows at all
func (s RawSheet) IsEmpty() bool {
	return len(s.Rows) == 0
}
