package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Report kinds carried by ReportRequestMessage.
const (
	KindMonthly = "monthly"
	KindTest    = "test"
)

// ReportRequestMessage asks the report worker to build and mail the report
// for one period. The worker reads the entries itself.
type ReportRequestMessage struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	PeriodStart string    `json:"period_start"`
	PeriodEnd   string    `json:"period_end"`
	RequestedBy string    `json:"requested_by"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewReportRequestMessage creates a request with a fresh ID.
func NewReportRequestMessage(kind, periodStart, periodEnd, requestedBy string) *ReportRequestMessage {
	return &ReportRequestMessage{
		ID:          uuid.NewString(),
		Kind:        kind,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		RequestedBy: requestedBy,
		Timestamp:   time.Now(),
	}
}

// Validate checks the fields the worker depends on.
func (m *ReportRequestMessage) Validate() error {
	if _, err := uuid.Parse(m.ID); err != nil {
		return fmt.Errorf("invalid request id %q: %w", m.ID, err)
	}
	if m.Kind != KindMonthly && m.Kind != KindTest {
		return fmt.Errorf("unknown report kind %q", m.Kind)
	}
	if m.PeriodStart == "" || m.PeriodEnd == "" {
		return errors.New("period bounds are required")
	}
	if m.PeriodStart > m.PeriodEnd {
		return fmt.Errorf("period start %s after end %s", m.PeriodStart, m.PeriodEnd)
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *ReportRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReportRequestMessageFromJSON decodes and validates a message.
func ReportRequestMessageFromJSON(data []byte) (*ReportRequestMessage, error) {
	var msg ReportRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
