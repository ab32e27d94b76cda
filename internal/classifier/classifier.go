// Package classifier turns a photo of a waste item into one of the
// sorting categories using the Anthropic vision API.
package classifier

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"binsight/internal/domain"
)

const defaultModel = "claude-sonnet-4-5-20250929"
const defaultMaxTokens = 64

const prompt = `Tu es le classificateur d'une borne de tri de dechets.
Regarde la photo et reponds par un seul mot, la categorie de tri de l'objet:
- compost (restes alimentaires, dechets organiques)
- recyclage (papier, carton, verre, metal, plastique recyclable)
- poubelle (ordures menageres non recyclables)
- autre (tout objet qui ne va dans aucun des bacs precedents)

Reponds uniquement par un de ces quatre mots, sans ponctuation.`

// Classifier calls the vision model. Zero value is not usable; use New.
type Classifier struct {
	client    anthropic.Client
	model     string
	maxTokens int
}

type Option func(*Classifier)

func WithModel(model string) Option {
	return func(c *Classifier) {
		if model != "" {
			c.model = model
		}
	}
}

func WithMaxTokens(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// New builds a classifier from an API key. The key usually comes from
// the ANTHROPIC_API_KEY environment variable.
func New(apiKey string, opts ...Option) *Classifier {
	c := &Classifier{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     defaultModel,
		maxTokens: defaultMaxTokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify sends a JPEG photo to the model and maps its answer onto a
// category. Any answer that names no known category comes back as
// "erreur" rather than an error; the station still records the
// disposal.
func (c *Classifier) Classify(ctx context.Context, jpeg []byte) (domain.AnalyzedCategory, error) {
	if len(jpeg) == 0 {
		return "", fmt.Errorf("empty image")
	}
	encoded := base64.StdEncoding.EncodeToString(jpeg)
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(c.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64("image/jpeg", encoded),
				anthropic.NewTextBlock(prompt),
			),
		},
	})
	if err != nil {
		return "", fmt.Errorf("vision api: %w", err)
	}
	for _, block := range message.Content {
		if block.Type == "text" {
			return CategoryFromAnswer(block.Text), nil
		}
	}
	return domain.AnalyzedErreur, nil
}

// CategoryFromAnswer scans a model answer for a category keyword.
// Answers naming none of them map to "erreur".
func CategoryFromAnswer(answer string) domain.AnalyzedCategory {
	lowered := strings.ToLower(answer)
	for _, bin := range domain.BinCategories() {
		if strings.Contains(lowered, string(bin)) {
			return domain.AnalyzedCategory(bin)
		}
	}
	return domain.AnalyzedErreur
}
