package openAIChat

import (
	"context"
	"errors"
	"sync"

	"github.com/nkatta/HelpCenterRAG/internal/config"
	"github.com/nkatta/HelpCenterRAG/internal/customHttpClient"
	"github.com/nkatta/HelpCenterRAG/internal/domain/commonModels"
	"github.com/nkatta/HelpCenterRAG/internal/rag/llm"
	"github.com/nkatta/HelpCenterRAG/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type llmClient struct {
	oa        openai.Client
	modelName string
}

var logger *logger_i.Logger
var openAIClient *llmClient
var once sync.Once

// GetOpenAIChatClient returns the default provider - the fine-tuned model
// pinned in config, sampled at the configured temperature.
func GetOpenAIChatClient(apikey string, modelName string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_openai")
		if apikey == "" {
			logger.Error("OPENAI_API_KEY is not set")
			return
		}
		openAIClient = &llmClient{
			oa: openai.NewClient(
				option.WithAPIKey(apikey),
				option.WithHTTPClient(customHttpClient.PooledClient()),
			),
			modelName: modelName,
		}
		logger.Info("OpenAI chat client created", "model", modelName)
	})

	if openAIClient == nil {
		return nil
	}
	return openAIClient
}

func (c *llmClient) Generate(ctx context.Context, messages []commonModels.ChatMessage) (string, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case commonModels.RoleSystem:
			msgs = append(msgs, openai.SystemMessage(m.Content))
		case commonModels.RoleUser:
			msgs = append(msgs, openai.UserMessage(m.Content))
		case commonModels.RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		default:
			// the service filters history, so this is a programming error
			log.Warn("Dropping message with unknown role", "role", m.Role)
		}
	}

	log.Debug("Sending messages to OpenAI", "count", len(msgs))

	res, err := c.oa.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.modelName),
		Messages:    msgs,
		Temperature: openai.Float(config.ModelTemperature),
	})
	if err != nil {
		log.Error("OpenAI completion failed", "error", err)
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", errors.New("no completion choices returned")
	}
	return res.Choices[0].Message.Content, nil
}
