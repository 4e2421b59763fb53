package domain

// FetchStatus is the lifecycle state of a fetch.
type FetchStatus string

const (
	FetchPending  FetchStatus = "pending"
	FetchComplete FetchStatus = "complete"
	FetchFailed   FetchStatus = "failed"
)

// FetchRecord describes one dated pull of market data for one symbol.
// Records are append-only: a status transition appends a new version of
// the record rather than rewriting the old one. The latest version per
// fetch_id wins on replay.
type FetchRecord struct {
	FetchID     string      `json:"fetch_id"`
	Symbol      string      `json:"symbol"`
	RequestedAt int64       `json:"requested_at"` // Unix ms
	RawDataPath string      `json:"raw_data_path,omitempty"`
	Status      FetchStatus `json:"status"`
	FailReason  string      `json:"fail_reason,omitempty"`
	UpdatedAt   int64       `json:"updated_at"` // Unix ms, set on every appended version
}

// IsTerminal reports whether the status is final.
func (s FetchStatus) IsTerminal() bool {
	return s == FetchComplete || s == FetchFailed
}
