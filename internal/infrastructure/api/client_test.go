package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sashabaranov/go-openai"

	"github.com/lectern/lectern/internal/stream"
	"github.com/lectern/lectern/internal/wire"
	"github.com/lectern/lectern/pkg/httpext"
)

// newFakeBackend wires the routes the client talks to against an
// in-memory note table plus canned handlers for everything else.
func newFakeBackend(t *testing.T) (*Client, *fakeBackend) {
	t.Helper()

	backend := &fakeBackend{
		notes:  map[int64]wire.Note{},
		nextID: 1,
	}

	r := mux.NewRouter()
	r.HandleFunc("/notes", backend.listNotes).Methods(http.MethodGet)
	r.HandleFunc("/notes", backend.createNote).Methods(http.MethodPost)
	r.HandleFunc("/notes/{id}", backend.updateNote).Methods(http.MethodPut)
	r.HandleFunc("/notes/{id}", backend.deleteNote).Methods(http.MethodDelete)
	r.HandleFunc("/ask", backend.query).Methods(http.MethodPost)
	r.HandleFunc("/ask/history", backend.createAskEntry).Methods(http.MethodPost)
	r.HandleFunc("/ask/history", backend.clearAskEntries).Methods(http.MethodDelete)
	r.HandleFunc("/agent/chat", backend.chatTurn).Methods(http.MethodPost)
	r.HandleFunc("/papers", backend.uploadPaper).Methods(http.MethodPost)
	r.HandleFunc("/question-sets/generate", backend.generateQuestions).Methods(http.MethodPost)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	return NewClientWithBase(server.URL), backend
}

type fakeBackend struct {
	notes   map[int64]wire.Note
	nextID  int64
	cleared bool
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func (b *fakeBackend) listNotes(w http.ResponseWriter, r *http.Request) {
	out := make([]wire.Note, 0, len(b.notes))
	for _, n := range b.notes {
		out = append(out, n)
	}
	writeJSON(w, out)
}

func (b *fakeBackend) createNote(w http.ResponseWriter, r *http.Request) {
	var note wire.Note
	if err := json.NewDecoder(r.Body).Decode(&note); err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		writeJSON(w, map[string]any{"detail": []map[string]string{{"msg": "invalid note body"}}})
		return
	}
	note.ID = b.nextID
	b.nextID++
	b.notes[note.ID] = note
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, note)
}

func (b *fakeBackend) updateNote(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if _, ok := b.notes[id]; !ok {
		w.WriteHeader(http.StatusNotFound)
		writeJSON(w, map[string]string{"detail": "note not found"})
		return
	}
	var note wire.Note
	json.NewDecoder(r.Body).Decode(&note)
	note.ID = id
	b.notes[id] = note
	writeJSON(w, note)
}

func (b *fakeBackend) deleteNote(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if _, ok := b.notes[id]; !ok {
		w.WriteHeader(http.StatusNotFound)
		writeJSON(w, map[string]string{"detail": "note not found"})
		return
	}
	delete(b.notes, id)
	w.WriteHeader(http.StatusNoContent)
}

func (b *fakeBackend) query(w http.ResponseWriter, r *http.Request) {
	var req wire.QueryRequest
	json.NewDecoder(r.Body).Decode(&req)
	writeJSON(w, wire.QueryResponse{
		Answer:  "echo: " + req.Question,
		Sources: []wire.Source{{Title: "p1", URL: "doc://1"}},
	})
}

func (b *fakeBackend) createAskEntry(w http.ResponseWriter, r *http.Request) {
	var entry wire.AskEntry
	json.NewDecoder(r.Body).Decode(&entry)
	entry.ID = 42
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, entry)
}

func (b *fakeBackend) clearAskEntries(w http.ResponseWriter, r *http.Request) {
	b.cleared = true
	w.WriteHeader(http.StatusNoContent)
}

func (b *fakeBackend) chatTurn(w http.ResponseWriter, r *http.Request) {
	var req wire.ChatTurnRequest
	json.NewDecoder(r.Body).Decode(&req)
	writeJSON(w, wire.ChatTurnResponse{Messages: req.Messages})
}

func (b *fakeBackend) uploadPaper(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(w, map[string]string{"detail": "missing file field"})
		return
	}
	file.Close()
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, wire.Paper{ID: 7, Filename: header.Filename, Status: "pending"})
}

func (b *fakeBackend) generateQuestions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Write([]byte("data: {\"type\":\"chunk\",\"content\":\"Generating\"}\n\n"))
	w.Write([]byte("data: {\"type\":\"complete\",\"questions\":[{\"kind\":\"true_false\",\"text\":\"Water boils at 100C at sea level.\",\"answer\":\"True\"}]}\n\n"))
}

func TestNoteLifecycle(t *testing.T) {
	client, _ := newFakeBackend(t)
	ctx := context.Background()

	created, err := client.CreateNote(ctx, wire.Note{Title: "Summary: ch 1", Content: "..."})
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("Expected server-assigned id")
	}

	created.Content = "revised"
	updated, err := client.UpdateNote(ctx, created)
	if err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}
	if updated.Content != "revised" {
		t.Errorf("Expected updated content, got %q", updated.Content)
	}

	notes, err := client.ListNotes(ctx)
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("Expected 1 note, got %d", len(notes))
	}

	if err := client.DeleteNote(ctx, created.ID); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	notes, _ = client.ListNotes(ctx)
	if len(notes) != 0 {
		t.Errorf("Expected empty list after delete, got %d", len(notes))
	}
}

func TestErrorDetailNormalized(t *testing.T) {
	client, _ := newFakeBackend(t)

	err := client.DeleteNote(context.Background(), 999)
	if err == nil {
		t.Fatal("Expected error for unknown note")
	}

	var apiErr *httpext.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *httpext.APIError, got %T", err)
	}
	if apiErr.Status != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", apiErr.Status)
	}
	if apiErr.Detail != "note not found" {
		t.Errorf("Expected normalized detail, got %q", apiErr.Detail)
	}
}

func TestQueryRoundTrip(t *testing.T) {
	client, _ := newFakeBackend(t)

	resp, err := client.Query(context.Background(), wire.QueryRequest{
		Question: "What is osmosis?",
		Scope:    "selected",
		PaperIDs: []int64{1},
	})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if resp.Answer != "echo: What is osmosis?" {
		t.Errorf("Unexpected answer %q", resp.Answer)
	}
	if len(resp.Sources) != 1 {
		t.Errorf("Expected 1 source, got %d", len(resp.Sources))
	}
}

func TestCreateAskEntryAssignsID(t *testing.T) {
	client, _ := newFakeBackend(t)

	created, err := client.CreateAskEntry(context.Background(), wire.AskEntry{
		Question: "q", Answer: "a", Scope: "all",
	})
	if err != nil {
		t.Fatalf("CreateAskEntry: %v", err)
	}
	if created.ID != 42 {
		t.Errorf("Expected server id 42, got %d", created.ID)
	}
}

func TestClearAskEntries(t *testing.T) {
	client, backend := newFakeBackend(t)

	if err := client.ClearAskEntries(context.Background()); err != nil {
		t.Fatalf("ClearAskEntries: %v", err)
	}
	if !backend.cleared {
		t.Error("Expected the clear route to be hit")
	}
}

func TestUploadPaper(t *testing.T) {
	client, _ := newFakeBackend(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "biology.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 fake"), 0o644); err != nil {
		t.Fatal(err)
	}

	paper, err := client.UploadPaper(context.Background(), path)
	if err != nil {
		t.Fatalf("UploadPaper: %v", err)
	}
	if paper.Filename != "biology.pdf" {
		t.Errorf("Expected uploaded filename echoed, got %q", paper.Filename)
	}
	if paper.Status != "pending" {
		t.Errorf("Expected pending status, got %q", paper.Status)
	}
}

func TestUploadRejectsUnsupportedExtension(t *testing.T) {
	client, _ := newFakeBackend(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "malware.exe")
	if err := os.WriteFile(path, []byte("MZ"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := client.UploadPaper(context.Background(), path)
	if !errors.Is(err, ErrUnsupportedFile) {
		t.Fatalf("Expected ErrUnsupportedFile, got %v", err)
	}
}

func TestUploadBatchPartialFailure(t *testing.T) {
	client, _ := newFakeBackend(t)

	dir := t.TempDir()
	good := filepath.Join(dir, "notes.md")
	bad := filepath.Join(dir, "image.png")
	for _, p := range []string{good, bad} {
		if err := os.WriteFile(p, []byte("content"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	results := client.UploadPapers(context.Background(), []string{good, bad})
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].Err != nil {
		t.Errorf("Expected %q to upload, got %v", good, results[0].Err)
	}
	if !errors.Is(results[1].Err, ErrUnsupportedFile) {
		t.Errorf("Expected %q rejected, got %v", bad, results[1].Err)
	}
}

func TestGenerateQuestionsEvents(t *testing.T) {
	client, _ := newFakeBackend(t)

	var events []stream.Event
	err := client.GenerateQuestionsEvents(context.Background(), wire.GenerateQuestionsRequest{PaperID: 1, Count: 1}, func(ev stream.Event) {
		events = append(events, ev)
	})
	if err != nil {
		t.Fatalf("GenerateQuestionsEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}

	chunk, ok := events[0].(stream.Chunk)
	if !ok || chunk.Content != "Generating" {
		t.Errorf("Expected leading chunk, got %#v", events[0])
	}
	complete, ok := events[1].(stream.Complete)
	if !ok {
		t.Fatalf("Expected Complete, got %T", events[1])
	}
	if len(complete.Questions) != 1 || complete.Questions[0].Kind != "true_false" {
		t.Errorf("Unexpected completed questions %#v", complete.Questions)
	}
}

func TestChatTurnEchoesHistory(t *testing.T) {
	client, _ := newFakeBackend(t)

	resp, err := client.ChatTurn(context.Background(), wire.ChatTurnRequest{
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: "hello"},
		},
	})
	if err != nil {
		t.Fatalf("ChatTurn: %v", err)
	}
	if len(resp.Messages) != 1 || resp.Messages[0].Content != "hello" {
		t.Errorf("Expected echoed history, got %#v", resp.Messages)
	}
}
