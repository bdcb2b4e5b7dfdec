package model

// LogRecord is the normalized representation of an emitted pool event.
type LogRecord struct {
	CallID     string   `json:"call_id"`
	Sequence   uint64   `json:"sequence"`
	LogIndex   uint64   `json:"log_index"`
	Address    string   `json:"address"`
	Topics     []string `json:"topics"`
	Data       string   `json:"data"`
	Timestamp  uint64   `json:"timestamp"`
	RecordedAt string   `json:"recorded_at"`
}
