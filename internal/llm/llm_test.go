package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	openai "github.com/sashabaranov/go-openai"

	"github.com/fleveque/pet-composer/internal/model"
)

var testPhoto = []byte{0xff, 0xd8, 0xff, 0xd9}

func TestAnthropicClient_GenerateCaption(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/messages") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "msg_1", "type": "message", "role": "assistant", "model": "claude-test",
			"content": [{"type": "text", "text": "Feed me."}, {"type": "text", "text": " Now."}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 4}
		}`))
	}))
	defer server.Close()

	client := NewAnthropicClient("test-key", "claude-test", option.WithBaseURL(server.URL), option.WithMaxRetries(0))
	caption, err := client.GenerateCaption(context.Background(), CaptionRequest{
		Voice:     model.LookupVoice("sassy"),
		PhotoJPEG: testPhoto,
	})
	if err != nil {
		t.Fatalf("GenerateCaption: %v", err)
	}
	if caption != "Feed me. Now." {
		t.Errorf("unexpected caption %q", caption)
	}

	// The photo must travel as an image block ahead of the instruction.
	messages, _ := body["messages"].([]any)
	if len(messages) != 1 {
		t.Fatalf("expected one message, got %v", body["messages"])
	}
	content, _ := messages[0].(map[string]any)["content"].([]any)
	if len(content) != 2 || content[0].(map[string]any)["type"] != "image" {
		t.Errorf("expected image block first, got %v", content)
	}
	if body["max_tokens"] != float64(DefaultMaxTokens) {
		t.Errorf("expected default max_tokens, got %v", body["max_tokens"])
	}
}

func TestOpenAIClient_GenerateCaption(t *testing.T) {
	var req openai.ChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1", "object": "chat.completion", "model": "gpt-test",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Best. Day. Ever."}, "finish_reason": "stop"}]
		}`))
	}))
	defer server.Close()

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = server.URL + "/v1"
	client := NewOpenAIClientWithConfig(cfg, "gpt-test")

	caption, err := client.GenerateCaption(context.Background(), CaptionRequest{
		Voice:     model.LookupVoice("wholesome"),
		PhotoJPEG: testPhoto,
		MaxTokens: 50,
	})
	if err != nil {
		t.Fatalf("GenerateCaption: %v", err)
	}
	if caption != "Best. Day. Ever." {
		t.Errorf("unexpected caption %q", caption)
	}

	if req.MaxTokens != 50 || len(req.Messages) != 2 {
		t.Fatalf("unexpected request: %+v", req)
	}
	parts := req.Messages[1].MultiContent
	if len(parts) != 2 || parts[1].ImageURL == nil || !strings.HasPrefix(parts[1].ImageURL.URL, "data:image/jpeg;base64,") {
		t.Errorf("expected a data URL image part, got %+v", parts)
	}
}

func TestClients_RejectEmptyPhoto(t *testing.T) {
	clients := []Client{
		NewAnthropicClient("k", "m"),
		NewOpenAIClient("k", "m"),
	}
	for _, c := range clients {
		if _, err := c.GenerateCaption(context.Background(), CaptionRequest{}); err == nil {
			t.Errorf("%s: expected error for empty photo", c.ProviderName())
		}
	}
}

func TestSystemPrompt_IncludesPersona(t *testing.T) {
	v := model.LookupVoice("dramatic")
	if !strings.HasPrefix(systemPrompt(v.Prompt), v.Prompt) {
		t.Error("system prompt should start with the persona")
	}
}
