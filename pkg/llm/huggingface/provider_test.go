package huggingface

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"myfolio-chatbot-be/pkg/llm"
)

const completionBody = `{"choices":[{"message":{"role":"assistant","content":"답변"}}]}`

func TestChatWireFormat(t *testing.T) {
	var captured []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = io.ReadAll(r.Body)
		w.Write([]byte(completionBody))
	}))
	defer srv.Close()

	p := NewHuggingFaceProvider("", srv.URL, "some-model", time.Second)
	_, err := p.Chat(context.Background(), []llm.Message{
		{Role: "user", Content: "질문"},
	}, llm.WithTemperature(0.0))
	if err != nil {
		t.Fatalf("Chat returned error: %v", err)
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(captured, &body); err != nil {
		t.Fatalf("request body is not valid JSON: %v", err)
	}

	// Temperature zero must still be on the wire.
	rawTemp, ok := body["temperature"]
	if !ok {
		t.Fatal("request body has no temperature field")
	}
	var temp float64
	if err := json.Unmarshal(rawTemp, &temp); err != nil {
		t.Fatalf("temperature is not a number: %v", err)
	}
	if temp != 0.0 {
		t.Errorf("temperature = %v, want 0", temp)
	}

	var messages []map[string]string
	if err := json.Unmarshal(body["messages"], &messages); err != nil {
		t.Fatalf("messages did not decode as lowercase-keyed objects: %v", err)
	}
	if messages[0]["role"] != "user" {
		t.Errorf(`messages[0]["role"] = %q, want "user"`, messages[0]["role"])
	}
	if messages[0]["content"] != "질문" {
		t.Errorf(`messages[0]["content"] = %q, want "질문"`, messages[0]["content"])
	}
}

func TestChatMapsModelRoleToAssistant(t *testing.T) {
	var captured []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = io.ReadAll(r.Body)
		w.Write([]byte(completionBody))
	}))
	defer srv.Close()

	p := NewHuggingFaceProvider("", srv.URL, "some-model", time.Second)
	_, err := p.Chat(context.Background(), []llm.Message{
		{Role: "model", Content: "이전 답변"},
		{Role: "user", Content: "질문"},
	})
	if err != nil {
		t.Fatalf("Chat returned error: %v", err)
	}

	var body struct {
		Messages []map[string]string `json:"messages"`
	}
	if err := json.Unmarshal(captured, &body); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
	if body.Messages[0]["role"] != "assistant" {
		t.Errorf(`role = %q, want "assistant"`, body.Messages[0]["role"])
	}
}

func TestChatClientTimeoutBoundsStalledUpstream(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	p := NewHuggingFaceProvider("", srv.URL, "some-model", 50*time.Millisecond)

	start := time.Now()
	_, err := p.Chat(context.Background(), []llm.Message{{Role: "user", Content: "질문"}})
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Chat blocked for %v, want prompt timeout", elapsed)
	}
}

func TestChatHonorsContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	p := NewHuggingFaceProvider("", srv.URL, "some-model", time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := p.Chat(ctx, []llm.Message{{Role: "user", Content: "질문"}})
	if err == nil {
		t.Fatal("expected deadline error, got nil")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Chat blocked for %v past the context deadline", elapsed)
	}
}
