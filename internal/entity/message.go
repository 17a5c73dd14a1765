package entity

// Role of a turn in an assistant conversation
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message of an assistant conversation
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Message is a transport-agnostic inbound chat message
type Message struct {
	ChatID int64
	UserID int64
	Text   string
}

// Attachment is a file handed to the transport
type Attachment struct {
	Name    string
	Caption string
	Data    []byte
}

// Reply is one outbound chat message
type Reply struct {
	Text       string
	Menu       []string // Reply keyboard options, nil keeps the current keyboard
	RemoveMenu bool     // Hide the reply keyboard
	Attachment *Attachment
}

// TextReply builds a plain text reply
func TextReply(text string) Reply {
	return Reply{Text: text}
}

// MenuReply builds a reply with a keyboard of options
func MenuReply(text string, options ...string) Reply {
	return Reply{Text: text, Menu: options}
}
