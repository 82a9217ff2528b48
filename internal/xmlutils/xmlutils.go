// Package xmlutils provides the element and text lookups used to read
// Ricevuta Telematica documents. The upstream payment system emits namespaced
// elements on positive receipts and bare elements on negative receipts, so
// every lookup tries the receipt namespace first and falls back to a
// namespace-agnostic match on the local element name.
package xmlutils

import (
	"strings"

	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"

	"iodono/rt-register/internal/parsererror"
)

// ReceiptNamespace is the namespace URI of the pagoPA payment schema used by
// positive receipts.
const ReceiptNamespace = "http://www.digitpa.gov.it/schemas/2011/Pagamenti/"

var log = logrus.New()

// SetLogger sets a custom logger for this package
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// FindElement returns the first descendant of parent whose local name matches
// name, preferring elements in the receipt namespace. Document order is
// preserved within each lookup mode. Returns nil when no element matches in
// either mode.
func FindElement(parent *etree.Element, name string) *etree.Element {
	if el := findDescendant(parent, name, true); el != nil {
		return el
	}
	return findDescendant(parent, name, false)
}

// findDescendant walks the subtree of parent in document order and returns
// the first element with the given local name. When namespaced is true the
// element must also resolve to the receipt namespace.
func findDescendant(parent *etree.Element, name string, namespaced bool) *etree.Element {
	for _, child := range parent.ChildElements() {
		if child.Tag == name && (!namespaced || child.NamespaceURI() == ReceiptNamespace) {
			return child
		}
		if found := findDescendant(child, name, namespaced); found != nil {
			return found
		}
	}
	return nil
}

// FindText returns the trimmed text content of the first descendant of parent
// matching name. An absent element and an element whose trimmed text is empty
// are both reported as not found.
func FindText(parent *etree.Element, name string) (string, bool) {
	el := FindElement(parent, name)
	if el == nil {
		return "", false
	}
	text := strings.TrimSpace(el.Text())
	if text == "" {
		return "", false
	}
	return text, true
}

// RequireText returns the trimmed text of a mandatory field, failing with a
// MissingFieldError carrying the field name verbatim when the field is absent
// or empty.
func RequireText(parent *etree.Element, name string) (string, error) {
	text, ok := FindText(parent, name)
	if !ok {
		log.WithField("field", name).Debug("Required field not found in receipt")
		return "", &parsererror.MissingFieldError{Field: name}
	}
	return text, nil
}

// TextOrDefault returns the trimmed text of an optional field, or def when the
// field is absent or empty. It never fails.
func TextOrDefault(parent *etree.Element, name, def string) string {
	text, ok := FindText(parent, name)
	if !ok {
		return def
	}
	return text
}
