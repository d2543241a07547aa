// Package wire holds the JSON shapes exchanged with the remote service.
// These are loosely typed on purpose: the service treats most fields as
// optional and several vocabularies (question kind, agent label) as open
// string sets. The mapper package reconciles them into the canonical
// domain model.
package wire

import "github.com/sashabaranov/go-openai"

// Question is a question record as the service transmits it. Kind is an
// open string, not a closed enum; Answer semantics depend on Kind.
type Question struct {
	ID          int64    `json:"id,omitempty"`
	SetID       int64    `json:"set_id,omitempty"`
	Kind        string   `json:"kind"`
	Text        string   `json:"text"`
	Options     []string `json:"options,omitempty"`
	Answer      string   `json:"answer,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
	Reference   string   `json:"reference,omitempty"`
}

// QuestionSet groups questions saved under one title.
type QuestionSet struct {
	ID        int64      `json:"id,omitempty"`
	PaperID   int64      `json:"paper_id,omitempty"`
	Title     string     `json:"title" validate:"required"`
	Questions []Question `json:"questions" validate:"min=1,required"`
	CreatedAt string     `json:"created_at,omitempty"`
}

// Note is a free-form note record. The document type is never
// transmitted; it is inferred client-side from Tags and Title.
type Note struct {
	ID        int64    `json:"id,omitempty"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags,omitempty"`
	CreatedAt string   `json:"created_at,omitempty"`
	UpdatedAt string   `json:"updated_at,omitempty"`
}

// Summary is a generated paper summary. Agent is free text on the wire
// ("gpt-4", "Gemini Web", "qwen-local", ...).
type Summary struct {
	ID        int64  `json:"id,omitempty"`
	PaperID   int64  `json:"paper_id,omitempty"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Agent     string `json:"agent,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Paper is an uploaded document tracked by the indexing pipeline.
type Paper struct {
	ID         int64  `json:"id"`
	Filename   string `json:"filename"`
	Title      string `json:"title,omitempty"`
	Status     string `json:"status"`
	UploadedAt string `json:"uploaded_at,omitempty"`
}

// Source is one citation attached to a retrieval answer.
type Source struct {
	Title string `json:"title,omitempty"`
	URL   string `json:"url,omitempty"`
}

// AskEntry is a persisted Q&A history row.
type AskEntry struct {
	ID        int64    `json:"id,omitempty"`
	Question  string   `json:"question"`
	Answer    string   `json:"answer"`
	Sources   []Source `json:"sources,omitempty"`
	Scope     string   `json:"scope"`
	Provider  string   `json:"provider,omitempty"`
	CreatedAt string   `json:"created_at,omitempty"`
}

// QueryRequest asks the retrieval endpoint a question over one or more
// indexed papers.
type QueryRequest struct {
	Question string  `json:"question"`
	Scope    string  `json:"scope"`
	PaperIDs []int64 `json:"paper_ids,omitempty"`
}

// QueryResponse carries the answer and its ordered citations.
type QueryResponse struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources,omitempty"`
}

// ChatTurnRequest sends the full durable agent history for one turn.
// The message shape is the openai one; the service speaks the same
// dialect for agent exchanges.
type ChatTurnRequest struct {
	Messages []openai.ChatCompletionMessage `json:"messages" validate:"min=1,required"`
}

// ChatTurnResponse returns the server-confirmed history, which replaces
// the client copy verbatim.
type ChatTurnResponse struct {
	Messages []openai.ChatCompletionMessage `json:"messages"`
}

// GenerateQuestionsRequest starts a streamed question-set generation.
type GenerateQuestionsRequest struct {
	PaperID int64 `json:"paper_id" validate:"required"`
	Count   int   `json:"count,omitempty"`
}
