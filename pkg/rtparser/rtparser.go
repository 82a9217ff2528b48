// Package rtparser is the public entry point for parsing pagoPA Ricevuta
// Telematica documents into validated payment records.
package rtparser

import (
	"iodono/rt-register/internal/models"
	"iodono/rt-register/internal/rtparser"
)

// Parse decodes a base64-encoded RT document and returns the validated record.
func Parse(encoded string) (*models.RTData, error) {
	return rtparser.Parse(encoded)
}

// ParseDocument parses a raw RT XML document and returns the validated record.
func ParseDocument(raw []byte) (*models.RTData, error) {
	return rtparser.ParseDocument(raw)
}
