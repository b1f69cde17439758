package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/clarifai/internal/model"
)

// OpenAIProvider writes scripts with an OpenAI-compatible chat endpoint
type OpenAIProvider struct {
	client *openai.Client
	config Config
	name   string
	now    func() time.Time
}

// NewOpenAIProvider creates a provider for api.openai.com or config.BaseURL
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		name:   "openai",
		now:    time.Now,
	}, nil
}

// NewOllamaProvider targets a local Ollama through its OpenAI-compatible API
func NewOllamaProvider(config Config) (*OpenAIProvider, error) {
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434/v1"
	}
	if config.APIKey == "" {
		config.APIKey = "ollama"
	}
	if config.Model == "" {
		config.Model = "llama3.1"
	}
	if config.Timeout == 0 {
		config.Timeout = 60
	}

	p, err := NewOpenAIProvider(config)
	if err != nil {
		return nil, err
	}
	p.name = "ollama"
	return p, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return p.name
}

// IsAvailable lists models as a lightweight reachability check
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	return err == nil
}

// scriptReply is the JSON object the model is asked to produce
type scriptReply struct {
	Segments []struct {
		Text    string `json:"text"`
		Mood    string `json:"mood"`
		Gesture string `json:"gesture"`
	} `json:"segments"`
	SourcesCited []string `json:"sources_cited"`
}

// WriteScript asks the model for a JSON script
func (p *OpenAIProvider) WriteScript(ctx context.Context, req ScriptRequest) (*model.AnchorScript, error) {
	modelName := req.Model
	if modelName == "" {
		modelName = p.config.Model
	}
	if modelName == "" {
		modelName = openai.GPT4oMini
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 1000
	}

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You write short spoken news briefings that only repeat verified facts and only cite allowed sources.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildPrompt(req),
			},
		},
		MaxTokens:      maxTokens,
		Temperature:    0.3,
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return nil, fmt.Errorf("%s API error: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from %s", p.name)
	}

	return p.parseReply(req, resp.Choices[0].Message.Content)
}

func (p *OpenAIProvider) parseReply(req ScriptRequest, content string) (*model.AnchorScript, error) {
	var reply scriptReply
	if err := json.Unmarshal([]byte(stripFences(content)), &reply); err != nil {
		return nil, fmt.Errorf("decode %s reply: %w", p.name, err)
	}

	_, hi := SegmentRange(req.Duration)
	voice := req.Voice
	if voice == "" {
		voice = model.DefaultVoice
	}

	segments := make([]model.AnchorSegment, 0, hi)
	for _, s := range reply.Segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		if len(segments) == hi {
			break
		}
		mood := s.Mood
		if mood == "" {
			mood = model.DefaultMood
		}
		segments = append(segments, model.AnchorSegment{
			Text:    text,
			Mood:    mood,
			View:    model.DefaultView,
			Gesture: s.Gesture,
			Voice:   voice,
			Speed:   1.0,
			Delay:   model.DefaultDelay,
		})
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("%s reply has no segments", p.name)
	}

	cited := reply.SourcesCited
	if cited == nil {
		cited = []string{}
	}
	return &model.AnchorScript{
		Topic:        req.Topic,
		Segments:     segments,
		SourcesCited: cited,
		GeneratedAt:  p.now().UTC(),
	}, nil
}

// stripFences removes a ```json fence some models wrap replies in
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
