package repository

// Baseline is the last observed (period, entry count) pair. It is the only
// thing persisted between runs.
type Baseline struct {
	Date          string `json:"date" validate:"required"`
	NewsItemCount int    `json:"newsItemCount" validate:"min=0"`
}

// IsEmpty reports whether no baseline has been recorded yet.
func (b Baseline) IsEmpty() bool {
	return b.Date == ""
}
