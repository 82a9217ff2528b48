// Package parsererror defines the error taxonomy of the receipt parsing pipeline.
// Every failure mode of the pipeline is a typed error so that callers can
// dispatch on the kind with errors.As instead of matching message strings.
package parsererror

import (
	"fmt"
	"strings"
)

// MissingPayloadError reports that the inbound notification carried no
// receiptXML field at all. It is distinct from a present-but-invalid payload.
type MissingPayloadError struct{}

func (e *MissingPayloadError) Error() string {
	return "missing receiptXML in payment notification"
}

// DecodingError reports that the payload could not be decoded into an XML
// document, either because the base64 text is invalid or because the decoded
// bytes are not well-formed XML.
type DecodingError struct {
	Err error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("failed to decode receipt payload: %v", e.Err)
}

func (e *DecodingError) Unwrap() error {
	return e.Err
}

// MissingSectionError reports that an expected structural element is absent
// from the receipt document.
type MissingSectionError struct {
	Section string
}

func (e *MissingSectionError) Error() string {
	return fmt.Sprintf("missing %s", e.Section)
}

// MissingFieldError reports that an expected leaf field is absent or empty
// under an otherwise-present section. Field carries the XML element name
// verbatim for diagnostics.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing %s", e.Field)
}

// InvalidEnumerationError reports that a field with a closed value set holds
// a value outside that set.
type InvalidEnumerationError struct {
	Field string
	Value string
}

func (e *InvalidEnumerationError) Error() string {
	return fmt.Sprintf("invalid value %q for %s", e.Value, e.Field)
}

// SchemaValidationError reports that the assembled receipt record was rejected
// by the final schema re-check. Messages carries the individual field-level
// complaints.
type SchemaValidationError struct {
	Messages []string
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("receipt record failed schema validation: %s",
		strings.Join(e.Messages, "; "))
}
