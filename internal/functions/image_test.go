package functions

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	path string
	err  error

	gotDescription string
}

func (f *fakeGenerator) Generate(ctx context.Context, description string) (string, error) {
	f.gotDescription = description
	if f.err != nil {
		return "", f.err
	}
	return f.path, nil
}

func TestImageToolSuccess(t *testing.T) {
	gen := &fakeGenerator{path: "generated/img_123.png"}
	fd := CreateImageFunctionDeclaration(gen)

	assert.Equal(t, "generate_image", fd.Name)

	resp, err := fd.FunctionCall(context.Background(), map[string]any{"description": "a cat in a restaurant"})
	require.NoError(t, err)

	assert.Equal(t, "success", resp["status"])
	assert.Equal(t, "generated/img_123.png", resp["filename"])
	assert.Equal(t, "a cat in a restaurant", gen.gotDescription)
}

func TestImageToolMissingDescription(t *testing.T) {
	fd := CreateImageFunctionDeclaration(&fakeGenerator{})

	_, err := fd.FunctionCall(context.Background(), map[string]any{})
	assert.ErrorContains(t, err, "description")

	_, err = fd.FunctionCall(context.Background(), map[string]any{"description": 42})
	assert.ErrorContains(t, err, "description")
}

func TestImageToolGeneratorFailure(t *testing.T) {
	// A failed generation is reported to the model as an error status, not
	// as a hard error that would abort the turn.
	fd := CreateImageFunctionDeclaration(&fakeGenerator{err: errors.New("model backend unavailable")})

	resp, err := fd.FunctionCall(context.Background(), map[string]any{"description": "a cat"})
	require.NoError(t, err)

	assert.Equal(t, "error", resp["status"])
	assert.Contains(t, resp["message"], "model backend unavailable")
	assert.NotContains(t, resp, "filename")
}
