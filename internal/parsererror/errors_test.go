package parsererror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Missing payload",
			err:      &MissingPayloadError{},
			expected: "missing receiptXML in payment notification",
		},
		{
			name:     "Missing section",
			err:      &MissingSectionError{Section: "datiPagamento"},
			expected: "missing datiPagamento",
		},
		{
			name:     "Missing field",
			err:      &MissingFieldError{Field: "causaleVersamento"},
			expected: "missing causaleVersamento",
		},
		{
			name:     "Invalid enumeration",
			err:      &InvalidEnumerationError{Field: "codiceEsitoPagamento", Value: "2"},
			expected: `invalid value "2" for codiceEsitoPagamento`,
		},
		{
			name:     "Schema validation",
			err:      &SchemaValidationError{Messages: []string{"a is empty", "b is empty"}},
			expected: "receipt record failed schema validation: a is empty; b is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestDecodingErrorUnwrap(t *testing.T) {
	cause := errors.New("illegal base64 data")
	err := &DecodingError{Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "illegal base64 data")
}

func TestErrorsAsDispatch(t *testing.T) {
	var wrapped error = fmt.Errorf("parsing notification: %w", &MissingFieldError{Field: "e-mailPagatore"})

	var missingField *MissingFieldError
	assert.True(t, errors.As(wrapped, &missingField))
	assert.Equal(t, "e-mailPagatore", missingField.Field)

	var missingSection *MissingSectionError
	assert.False(t, errors.As(wrapped, &missingSection))
}
