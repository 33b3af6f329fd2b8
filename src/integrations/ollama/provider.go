package ollama

import (
	"context"
)

// Provider binds an Ollama client to the configured models. The embedding
// model must be the same for index population and queries; the index stamp
// enforces this at query time.
type Provider struct {
	client          *Client
	embeddingModel  string
	generationModel string
	temperature     float64
}

func NewProvider(client *Client, embeddingModel, generationModel string, temperature float64) *Provider {
	return &Provider{
		client:          client,
		embeddingModel:  embeddingModel,
		generationModel: generationModel,
		temperature:     temperature,
	}
}

// Embed maps text to a fixed-dimension vector using the embedding model.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	return p.client.GetEmbedding(ctx, p.embeddingModel, text)
}

// Generate runs the generation model over the prompt with the configured
// low sampling temperature.
func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	return p.client.Generate(ctx, p.generationModel, prompt, map[string]interface{}{
		"temperature": p.temperature,
	})
}
