package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completionBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o",
  "choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"ok\":true}"}, "finish_reason": "stop"}],
  "usage": {"prompt_tokens": 5, "completion_tokens": 3, "total_tokens": 8}
}`

// chatServer 记录每次 /chat/completions 请求体
type chatServer struct {
	mu     sync.Mutex
	bodies []map[string]any
}

func (s *chatServer) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		data, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		var body map[string]any
		assert.NoError(t, json.Unmarshal(data, &body))

		s.mu.Lock()
		s.bodies = append(s.bodies, body)
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, completionBody)
	}
}

func TestOpenAIChatModel_JSONOutputSetsResponseFormat(t *testing.T) {
	cs := &chatServer{}
	srv := httptest.NewServer(cs.handler(t))
	defer srv.Close()

	cm, err := NewOpenAIChatModel(context.Background(), srv.URL, "sk-test", "gpt-4o", 5*time.Second)
	require.NoError(t, err)

	msgs := []*schema.Message{schema.UserMessage("analyse")}
	tier := Tier{Model: "gpt-4o", Temperature: 0.2, MaxTokens: 4096}

	out, err := cm.Generate(context.Background(), msgs, append(tier.Options(), WithJSONOutput())...)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out.Content)

	_, err = cm.Generate(context.Background(), msgs, tier.Options()...)
	require.NoError(t, err)

	require.Len(t, cs.bodies, 2)
	format, ok := cs.bodies[0]["response_format"].(map[string]any)
	require.True(t, ok, "json call must carry response_format")
	assert.Equal(t, "json_object", format["type"])
	assert.Equal(t, float64(4096), cs.bodies[0]["max_tokens"])

	_, ok = cs.bodies[1]["response_format"]
	assert.False(t, ok, "plain call must not force json")
}
