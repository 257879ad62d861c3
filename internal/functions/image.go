package functions

import (
	"context"
	"fmt"

	"github.com/celebchat/persona-agent/internal/agent"
)

// ImageGenerator is the part of the image pipeline the tool depends on.
type ImageGenerator interface {
	Generate(ctx context.Context, description string) (string, error)
}

// CreateImageFunctionDeclaration returns the generate_image tool. The model
// calls it mid-turn with a text description; the tool answers with the path
// of the written artifact. Generation failures are reported back to the
// model as an error status so it can tell the user, rather than aborting
// the turn.
func CreateImageFunctionDeclaration(g ImageGenerator) *agent.FunctionDeclaration {
	return &agent.FunctionDeclaration{
		Name:        "generate_image",
		Description: "Generates an image from a detailed text description and saves it locally. Use this whenever the user asks to create, generate, draw, or paint an image.",
		ParametersSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"description": map[string]any{
					"type":        "string",
					"description": "A detailed text description of the image to generate",
				},
			},
			"required": []string{"description"},
		},
		ResponseSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"status": map[string]any{
					"type":        "string",
					"description": "success or error",
				},
				"filename": map[string]any{
					"type":        "string",
					"description": "Path of the saved image file",
				},
				"message": map[string]any{
					"type":        "string",
					"description": "Human-readable outcome to relay to the user",
				},
			},
		},
		FunctionCall: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			description, ok := args["description"].(string)
			if !ok || description == "" {
				return nil, fmt.Errorf("generate_image: description argument is required")
			}

			path, err := g.Generate(ctx, description)
			if err != nil {
				return map[string]any{
					"status":  "error",
					"message": fmt.Sprintf("Image generation failed: %v", err),
				}, nil
			}

			return map[string]any{
				"status":   "success",
				"filename": path,
				"message":  fmt.Sprintf("Image generated and saved as %s. Inform the user.", path),
			}, nil
		},
	}
}
