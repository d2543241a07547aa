package domain

// ChatAttachment is an ephemeral, client-only file hint attached to the
// next chat turn. It is serialized into a synthetic tool message for
// that turn only and cleared once the turn succeeds.
type ChatAttachment struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	CharCount int    `json:"char_count"`
	Preview   string `json:"preview"`
}

// DisplayMessage is the UI projection of the conversation. Only user
// and assistant roles appear; tool messages and the synthetic welcome
// are projection concerns, not history.
type DisplayMessage struct {
	Role    string
	Content string
}
