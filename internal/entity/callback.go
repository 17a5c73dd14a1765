package entity

// CallbackEventType represents the type of callback event
type CallbackEventType string

const (
	CallbackEventTypeQuoteCompleted CallbackEventType = "quoteCompleted"
)

// CallbackEvent represents a callback event
type CallbackEvent struct {
	Event     CallbackEventType `json:"event"`
	Timestamp string            `json:"timestamp"` // ISO-8601 UTC
	Data      any               `json:"data"`
}

// QuoteCompletedData is sent after a dialog was priced
type QuoteCompletedData struct {
	UserID      int64             `json:"user_id"`
	Variant     string            `json:"variant"`
	Answers     map[string]string `json:"answers"`
	Price       float64           `json:"price"`
	DocumentRef string            `json:"document_ref,omitempty"`
}
