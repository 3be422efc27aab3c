package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/DaanHessen/sci-adventure/internal/engine"
)

// LLM is an HTTP chat-completions backed Oracle: a fixed system prompt
// plus a JSON chat-completions request, with a retry/backoff loop and an
// output sanitizer, answering "what happens for this command the
// scripted world didn't handle".
type LLM struct {
	apiKey     string
	endpoint   string
	model      string
	client     *http.Client
	systemText string
}

// NewLLM builds an LLM oracle. systemText is the fixed system-role prompt
// describing the world's tone and the strict JSON reply schema; callers
// typically load it from the world package's authoring docs.
func NewLLM(apiKey, endpoint, model, systemText string) (*LLM, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("missing oracle api key")
	}
	if endpoint == "" {
		endpoint = "https://api.deepseek.com/v1/chat/completions"
	}
	if model == "" {
		model = "deepseek-reasoner"
	}
	return &LLM{
		apiKey:     apiKey,
		endpoint:   endpoint,
		model:      model,
		client:     &http.Client{Timeout: 8 * time.Second},
		systemText: systemText,
	}, nil
}

// ProcessCommand implements engine.Oracle.
func (l *LLM) ProcessCommand(command string, snapshot engine.SaveSnapshot) (engine.OracleReply, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()

	prompt, err := buildCommandPrompt(command, snapshot)
	if err != nil {
		return engine.OracleReply{}, err
	}
	messages := []chatMessage{
		{Role: "system", Content: l.systemText},
		{Role: "user", Content: prompt},
	}
	raw, err := l.chat(ctx, messages, 400)
	if err != nil {
		return engine.OracleReply{}, err
	}
	cleaned := sanitizeOutput(raw)

	var resp oracleResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		// Not every deployment insists on strict JSON; fall back to
		// treating the whole reply as narration text.
		return engine.OracleReply{Text: cleaned}, nil
	}
	reply := engine.OracleReply{Text: strings.TrimSpace(resp.Text), Audio: resp.Audio}
	for _, a := range resp.StateChanges {
		reply.StateChanges = append(reply.StateChanges, engine.Action{
			Kind:   engine.ActionKind(a.Kind),
			Text:   a.Text,
			ItemID: a.ItemID,
			Flag:   a.Flag,
			Points: a.Points,
		})
	}
	return reply, nil
}

type oracleResponse struct {
	Text         string              `json:"text"`
	Audio        string              `json:"audio,omitempty"`
	StateChanges []oracleStateChange `json:"state_changes,omitempty"`
}

type oracleStateChange struct {
	Kind   string `json:"kind"`
	Text   string `json:"text,omitempty"`
	ItemID string `json:"item_id,omitempty"`
	Flag   string `json:"flag,omitempty"`
	Points int    `json:"points,omitempty"`
}

func buildCommandPrompt(command string, snapshot engine.SaveSnapshot) (string, error) {
	payload := map[string]any{
		"role": "oracle",
		"instructions": "The scripted world has no handler for this command. Reply with JSON only: " +
			`{"text": "<1-3 sentence in-fiction response>", "state_changes": [...]}` +
			". Never invent new rooms, items or NPCs; only reference ones implied by the snapshot.",
		"command":  command,
		"snapshot": snapshot,
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (l *LLM) chat(ctx context.Context, messages []chatMessage, maxTokens int) (string, error) {
	body, err := json.Marshal(chatRequest{Model: l.model, Messages: messages, MaxTokens: maxTokens})
	if err != nil {
		return "", err
	}
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		res, err := l.doRequest(ctx, body)
		if err != nil {
			lastErr = err
			backoff(attempt)
			continue
		}
		return res, nil
	}
	if lastErr == nil {
		lastErr = errors.New("oracle request failed")
	}
	return "", lastErr
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatChoice struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

func (l *LLM) doRequest(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+l.apiKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := l.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("oracle status %d", resp.StatusCode)
	}
	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", err
	}
	if len(cr.Choices) == 0 {
		return "", errors.New("no choices")
	}
	return cr.Choices[0].Message.Content, nil
}

var (
	ansiRegexp = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)
	ctrlRegexp = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
)

func sanitizeOutput(s string) string {
	s = ansiRegexp.ReplaceAllString(s, "")
	s = ctrlRegexp.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func backoff(attempt int) {
	time.Sleep(time.Duration(200+attempt*250) * time.Millisecond)
}
