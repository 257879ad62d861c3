package agent

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// ImageGenerator calls a hosted image model with a text description and
// writes the returned bytes to local disk. No retries, no fallback image,
// no cleanup of old artifacts.
type ImageGenerator struct {
	client *genai.Client
	model  string
	dir    string
	logger zerolog.Logger
}

// NewImageGenerator creates an ImageGenerator writing artifacts under dir.
func NewImageGenerator(client *genai.Client, modelName, dir string, logger zerolog.Logger) *ImageGenerator {
	return &ImageGenerator{
		client: client,
		model:  modelName,
		dir:    dir,
		logger: logger,
	}
}

// Generate produces an image for description and returns the path it was
// written to.
func (g *ImageGenerator) Generate(ctx context.Context, description string) (string, error) {
	if strings.TrimSpace(description) == "" {
		return "", fmt.Errorf("imagegen: %w", ErrEmptyPrompt)
	}

	contents := []*genai.Content{
		{
			Parts: []*genai.Part{{Text: description}},
			Role:  genai.RoleUser,
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	})
	if err != nil {
		return "", fmt.Errorf("imagegen: generate content: %w: %w", ErrBackendUnavailable, err)
	}

	blob := firstImageBlob(resp)
	if blob == nil {
		return "", fmt.Errorf("imagegen: no image data returned")
	}

	path, err := g.write(blob)
	if err != nil {
		return "", err
	}

	g.logger.Info().
		Str("path", path).
		Int("bytes", len(blob.Data)).
		Msg("image artifact written")

	return path, nil
}

func (g *ImageGenerator) write(blob *genai.Blob) (string, error) {
	if err := os.MkdirAll(g.dir, 0755); err != nil {
		return "", fmt.Errorf("imagegen: create dir %q: %w", g.dir, err)
	}

	name := "img_" + uuid.NewString() + extension(blob.MIMEType)
	path := filepath.Join(g.dir, name)

	if err := os.WriteFile(path, blob.Data, 0644); err != nil {
		return "", fmt.Errorf("imagegen: write %q: %w", path, err)
	}

	return path, nil
}

func firstImageBlob(resp *genai.GenerateContentResponse) *genai.Blob {
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData
			}
		}
	}
	return nil
}

func extension(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
