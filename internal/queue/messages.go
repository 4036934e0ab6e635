package queue

import (
	"encoding/json"
	"time"
)

// SummaryExportMessage asks the worker to export one owner's monthly
// summary. The worker recomputes the report from the ledger, so the
// message carries only the coordinates.
type SummaryExportMessage struct {
	OwnerID   string    `json:"owner_id"`
	Month     string    `json:"month"`
	Timestamp time.Time `json:"timestamp"`
}

func NewSummaryExportMessage(ownerID, month string) *SummaryExportMessage {
	return &SummaryExportMessage{
		OwnerID:   ownerID,
		Month:     month,
		Timestamp: time.Now(),
	}
}

func (m *SummaryExportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func SummaryExportMessageFromJSON(data []byte) (*SummaryExportMessage, error) {
	var msg SummaryExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
