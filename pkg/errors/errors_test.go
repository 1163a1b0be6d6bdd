package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromStatus(t *testing.T) {
	tests := []struct {
		status   int
		expected ErrorType
	}{
		{404, ErrorTypeNotFound},
		{429, ErrorTypeRateLimit},
		{500, ErrorTypeServerError},
		{503, ErrorTypeServerError},
		{400, ErrorTypeUnknown},
		{403, ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			err := FromStatus(tt.status, "https://mangadex.org/api/v2/manga/1")
			assert.Equal(t, tt.expected, err.Type)
			assert.Equal(t, tt.status, err.Code)
			assert.Contains(t, err.Error(), "mangadex.org")
		})
	}
}

func TestTypeOfUnwrapsChain(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("failed to fetch chapter: %w", &Error{Type: ErrorTypeNetwork, Err: cause})

	assert.Equal(t, ErrorTypeNetwork, TypeOf(err))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(errors.New("plain")))
}
