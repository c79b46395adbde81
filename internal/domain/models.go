package domain

import (
	"time"

	"github.com/samvad-hq/samvad-invoker/pkg/jsonvalue"
)

// Domain contains core models shared by the invoker, sinks and journal.

// Exchange summarizes one completed request/response pair.
type Exchange struct {
	RequestID  string          `json:"request_id"`
	Method     string          `json:"method"`
	Endpoint   string          `json:"endpoint"`
	StatusCode int             `json:"status_code"`
	Value      jsonvalue.Value `json:"value"`
	ElapsedMs  int64           `json:"elapsed_ms"`
	ReceivedAt time.Time       `json:"received_at"`
}
