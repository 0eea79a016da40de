package domain

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrNotImplemented", ErrNotImplemented},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrRateLimited", ErrRateLimited},
		{"ErrValidation", ErrValidation},
		{"ErrSourceUnavailable", ErrSourceUnavailable},
		{"ErrProviderNotConfigured", ErrProviderNotConfigured},
		{"ErrIndexOutOfRange", ErrIndexOutOfRange},
		{"ErrSessionClosed", ErrSessionClosed},
		{"ErrEmptySourceSet", ErrEmptySourceSet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("title", "title is required")

	assert.Equal(t, "title: title is required", err.Error())
	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrSourceUnavailable)

	var ve *ValidationError
	require.ErrorAs(t, fmt.Errorf("add manual input: %w", err), &ve)
	assert.Equal(t, "title", ve.Field)
}

func TestErrEmptySourceSet(t *testing.T) {
	assert.ErrorIs(t, ErrEmptySourceSet, ErrValidation)
	assert.Equal(t, "sources", ErrEmptySourceSet.Field)
	assert.Contains(t, ErrEmptySourceSet.Error(), "at least one source required")

	wrapped := fmt.Errorf("build: %w", ErrEmptySourceSet)
	assert.ErrorIs(t, wrapped, ErrEmptySourceSet)
}

func TestSourceUnavailableError(t *testing.T) {
	t.Run("matches sentinel and cause", func(t *testing.T) {
		err := &SourceUnavailableError{Identifier: "notes/a.md", Err: fs.ErrNotExist}

		assert.ErrorIs(t, err, ErrSourceUnavailable)
		assert.ErrorIs(t, err, fs.ErrNotExist)
		assert.Contains(t, err.Error(), "notes/a.md")
	})

	t.Run("nil cause", func(t *testing.T) {
		err := &SourceUnavailableError{Identifier: "x"}

		assert.Equal(t, "source unavailable: x", err.Error())
		assert.ErrorIs(t, err, ErrSourceUnavailable)
	})
}

func TestProviderNotConfiguredError(t *testing.T) {
	err := &ProviderNotConfiguredError{Provider: AIProviderOpenAI}

	assert.ErrorIs(t, err, ErrProviderNotConfigured)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "OpenAI")

	empty := &ProviderNotConfiguredError{}
	assert.Equal(t, "no analysis provider selected", empty.Error())
}

func TestIndexOutOfRangeError(t *testing.T) {
	err := &IndexOutOfRangeError{Index: 3, Length: 2}

	assert.Equal(t, "index 3 out of range [0, 2)", err.Error())
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
}
