package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	base := MalformedInput("dataset is empty")
	wrapped := Wrap(base, "failed to parse dataset")

	assert.Equal(t, CodeMalformedInput, GetCode(wrapped))
	assert.Equal(t, "failed to parse dataset: dataset is empty", wrapped.Error())
	assert.True(t, HasCode(wrapped, CodeMalformedInput))
}

func TestWrapPlainError(t *testing.T) {
	wrapped := Wrap(fmt.Errorf("boom"), "context")
	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestHasCodeThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("outer: %w", EvaluationFailed("no classes"))
	assert.True(t, HasCode(err, CodeEvaluation))
	assert.False(t, HasCode(err, CodeEmptyQuery))
	assert.Equal(t, CodeEvaluation, GetCode(err))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeInvalidInput, fmt.Errorf("bad seed"))
	assert.Equal(t, CodeInvalidInput, GetCode(err))
	assert.True(t, IsAppError(err))
	assert.Equal(t, "UNKNOWN", GetCode(fmt.Errorf("plain")))
}

func TestNewf(t *testing.T) {
	err := Newf(CodeInvalidInput, "at most %d seeds, got %d", 10, 11)
	assert.Equal(t, CodeInvalidInput, err.Code)
	assert.Equal(t, "at most 10 seeds, got 11", err.Error())
}
