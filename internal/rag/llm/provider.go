package llm

import (
	"context"

	"github.com/nkatta/HelpCenterRAG/internal/domain/commonModels"
)

// Provider takes the fully assembled message sequence - system prompt,
// filtered history, then the user question - and returns one completion.
type Provider interface {
	Generate(ctx context.Context, messages []commonModels.ChatMessage) (string, error)
}
