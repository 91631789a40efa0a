package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/eduassess/eduassess-backend/internal/config"
)

func TestExtractDisabledWithoutAPIKey(t *testing.T) {
	s := NewExtractService(&config.Config{OpenAIModel: "gpt-4o-mini"}, zerolog.Nop())

	assert.False(t, s.Enabled())

	_, err := s.Extract(context.Background(), "application/pdf", []byte("%PDF-1.4"))
	assert.ErrorIs(t, err, ErrExtractDisabled)
}

func TestExtractEnabledWithAPIKey(t *testing.T) {
	s := NewExtractService(&config.Config{OpenAIKey: "sk-test", OpenAIModel: "gpt-4o-mini"}, zerolog.Nop())
	assert.True(t, s.Enabled())
}
