// Package models defines the strongly-typed record extracted from a Ricevuta
// Telematica and its authoritative schema validation. Records hold only text
// copied out of the XML document; no document node ever escapes into them.
package models

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"iodono/rt-register/internal/parsererror"
)

// Payment outcome codes admitted by codiceEsitoPagamento.
const (
	EsitoPagamentoEseguito    = "0"
	EsitoPagamentoNonEseguito = "1"
)

// DefaultCommissioniApplicatePSP is substituted when the receipt carries no
// commissioniApplicatePSP element.
const DefaultCommissioniApplicatePSP = "0.00"

// DatiPagamento holds the payment section of a receipt. All amounts and dates
// are kept as the verbatim strings of the source document.
type DatiPagamento struct {
	IdentificativoUnivocoVersamento  string `json:"identificativoUnivocoVersamento" validate:"required"`
	ImportoTotalePagato              string `json:"importoTotalePagato" validate:"required"`
	SingoloImportoPagato             string `json:"singoloImportoPagato" validate:"required"`
	DataEsitoSingoloPagamento        string `json:"dataEsitoSingoloPagamento" validate:"required"`
	IdentificativoUnivocoRiscossione string `json:"identificativoUnivocoRiscossione" validate:"required"`
	CausaleVersamento                string `json:"causaleVersamento" validate:"required"`
	DatiSpecificiRiscossione         string `json:"datiSpecificiRiscossione" validate:"required"`
	CommissioniApplicatePSP          string `json:"commissioniApplicatePSP" validate:"required"`
	CodiceEsitoPagamento             string `json:"codiceEsitoPagamento" validate:"required,oneof=0 1"`
}

// SoggettoPagatore identifies the payer of the receipt.
type SoggettoPagatore struct {
	AnagraficaPagatore          string `json:"anagraficaPagatore" validate:"required"`
	EmailPagatore               string `json:"emailPagatore" validate:"required"`
	CodiceIdentificativoUnivoco string `json:"codiceIdentificativoUnivoco" validate:"required"`
}

// EnteBeneficiario identifies the beneficiary entity. Negative receipts omit
// the enteBeneficiario section and carry only a top-level address, so the
// denomination may be empty in records built from that shape.
type EnteBeneficiario struct {
	DenomUnitOperBeneficiario string `json:"denomUnitOperBeneficiario"`
	IndirizzoBeneficiario     string `json:"indirizzoBeneficiario" validate:"required"`
}

// Dominio identifies the tax-authority domain that issued the receipt. It is
// present only in the richer receipt shape.
type Dominio struct {
	IdentificativoDominio string `json:"identificativoDominio" validate:"required"`
}

// RTData is the aggregate receipt record. It is valid only when every
// constituent sub-record independently validates; no cross-field invariant is
// enforced between sub-records.
type RTData struct {
	DatiPagamento    DatiPagamento    `json:"datiPagamento"`
	SoggettoPagatore SoggettoPagatore `json:"soggettoPagatore"`
	EnteBeneficiario EnteBeneficiario `json:"enteBeneficiario"`
	Dominio          *Dominio         `json:"dominio,omitempty"`
}

var validate = validator.New()

// Validate re-checks the assembled record against its exact shape: every
// mandatory field non-empty and the payment outcome code inside its closed
// value set. The section parsers already guarantee these properties; this is
// the single authoritative gate a record must pass before it is handed to
// storage or the email step. All field-level complaints are joined into one
// SchemaValidationError.
func (rt *RTData) Validate() error {
	err := validate.Struct(rt)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}

	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		messages = append(messages, fmt.Sprintf("%s: value %q does not satisfy %q",
			fe.Namespace(), fe.Value(), fe.Tag()))
	}
	return &parsererror.SchemaValidationError{Messages: messages}
}

// BlobName derives the deterministic object name under which the raw receipt
// document is persisted.
func (rt *RTData) BlobName() string {
	return fmt.Sprintf("%s-%s.xml",
		rt.DatiPagamento.DataEsitoSingoloPagamento,
		rt.DatiPagamento.IdentificativoUnivocoVersamento)
}
