// Package rtparser extracts a validated models.RTData record from a Ricevuta
// Telematica document. Three section parsers each walk one sub-tree of the
// document and short-circuit on the first missing field; the aggregate either
// carries every sub-record or fails with the first error encountered, in the
// fixed precedence payment data, beneficiary, payer identity, domain.
//
// The pipeline is pure and stateless: one document in, one record or one
// error out, safe for concurrent use on independent inputs.
package rtparser

import (
	"encoding/base64"
	"errors"

	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"

	"iodono/rt-register/internal/models"
	"iodono/rt-register/internal/parsererror"
	"iodono/rt-register/internal/xmlutils"
)

var log = logrus.New()

// SetLogger allows setting a custom logger
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
		xmlutils.SetLogger(logger)
	}
}

// Parse decodes a base64-encoded receipt and runs the full pipeline on it.
// This is the entry point used by the notification handler and the CLI.
func Parse(encoded string) (*models.RTData, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, &parsererror.DecodingError{Err: err}
	}
	return ParseDocument(raw)
}

// ParseDocument parses the decoded XML bytes, runs the section parsers and
// returns the record once it has passed schema validation. Errors are
// surfaced unchanged, without wrapping.
func ParseDocument(raw []byte) (*models.RTData, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, &parsererror.DecodingError{Err: err}
	}
	root := doc.Root()
	if root == nil {
		return nil, &parsererror.DecodingError{Err: errors.New("document has no root element")}
	}

	rt, err := parseReceipt(root)
	if err != nil {
		log.WithError(err).Error("Invalid RT")
		return nil, err
	}
	if err := rt.Validate(); err != nil {
		log.WithError(err).Error("RT record rejected by schema validation")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"iuv":  rt.DatiPagamento.IdentificativoUnivocoVersamento,
		"blob": rt.BlobName(),
	}).Info("Successfully parsed RT document")
	return rt, nil
}

// parseReceipt runs the section parsers against the same document tree and
// combines their sub-records. Only the first failing section's error is
// surfaced.
func parseReceipt(root *etree.Element) (*models.RTData, error) {
	datiPagamento, err := parseDatiPagamento(root)
	if err != nil {
		return nil, err
	}

	enteBeneficiario, err := parseEnteBeneficiario(root)
	if err != nil {
		return nil, err
	}

	soggettoPagatore, err := parseSoggettoPagatore(root)
	if err != nil {
		return nil, err
	}

	dominio, err := parseDominio(root)
	if err != nil {
		return nil, err
	}

	return &models.RTData{
		DatiPagamento:    *datiPagamento,
		SoggettoPagatore: *soggettoPagatore,
		EnteBeneficiario: *enteBeneficiario,
		Dominio:          dominio,
	}, nil
}

// parseDatiPagamento assembles the payment-data sub-record from the
// datiPagamento section and its nested datiSingoloPagamento section.
func parseDatiPagamento(root *etree.Element) (*models.DatiPagamento, error) {
	section := xmlutils.FindElement(root, "datiPagamento")
	if section == nil {
		return nil, &parsererror.MissingSectionError{Section: "datiPagamento"}
	}

	iuv, err := xmlutils.RequireText(section, "identificativoUnivocoVersamento")
	if err != nil {
		return nil, err
	}
	importoTotale, err := xmlutils.RequireText(section, "importoTotalePagato")
	if err != nil {
		return nil, err
	}

	singolo := xmlutils.FindElement(section, "datiSingoloPagamento")
	if singolo == nil {
		return nil, &parsererror.MissingSectionError{Section: "datiSingoloPagamento"}
	}

	singoloImporto, err := xmlutils.RequireText(singolo, "singoloImportoPagato")
	if err != nil {
		return nil, err
	}
	dataEsito, err := xmlutils.RequireText(singolo, "dataEsitoSingoloPagamento")
	if err != nil {
		return nil, err
	}
	iur, err := xmlutils.RequireText(singolo, "identificativoUnivocoRiscossione")
	if err != nil {
		return nil, err
	}
	causale, err := xmlutils.RequireText(singolo, "causaleVersamento")
	if err != nil {
		return nil, err
	}
	datiSpecifici, err := xmlutils.RequireText(singolo, "datiSpecificiRiscossione")
	if err != nil {
		return nil, err
	}

	// The only optional field in the whole schema.
	commissioni := xmlutils.TextOrDefault(singolo, "commissioniApplicatePSP",
		models.DefaultCommissioniApplicatePSP)

	esito, err := xmlutils.RequireText(section, "codiceEsitoPagamento")
	if err != nil {
		return nil, err
	}
	if esito != models.EsitoPagamentoEseguito && esito != models.EsitoPagamentoNonEseguito {
		return nil, &parsererror.InvalidEnumerationError{Field: "codiceEsitoPagamento", Value: esito}
	}

	return &models.DatiPagamento{
		IdentificativoUnivocoVersamento:  iuv,
		ImportoTotalePagato:              importoTotale,
		SingoloImportoPagato:             singoloImporto,
		DataEsitoSingoloPagamento:        dataEsito,
		IdentificativoUnivocoRiscossione: iur,
		CausaleVersamento:                causale,
		DatiSpecificiRiscossione:         datiSpecifici,
		CommissioniApplicatePSP:          commissioni,
		CodiceEsitoPagamento:             esito,
	}, nil
}

// parseEnteBeneficiario assembles the beneficiary sub-record. Positive
// receipts carry an enteBeneficiario section with denomination and address;
// negative receipts carry only a top-level indirizzoBeneficiario element.
func parseEnteBeneficiario(root *etree.Element) (*models.EnteBeneficiario, error) {
	if section := xmlutils.FindElement(root, "enteBeneficiario"); section != nil {
		denominazione, err := xmlutils.RequireText(section, "denomUnitOperBeneficiario")
		if err != nil {
			return nil, err
		}
		indirizzo, err := xmlutils.RequireText(section, "indirizzoBeneficiario")
		if err != nil {
			return nil, err
		}
		return &models.EnteBeneficiario{
			DenomUnitOperBeneficiario: denominazione,
			IndirizzoBeneficiario:     indirizzo,
		}, nil
	}

	indirizzo, err := xmlutils.RequireText(root, "indirizzoBeneficiario")
	if err != nil {
		return nil, err
	}
	return &models.EnteBeneficiario{IndirizzoBeneficiario: indirizzo}, nil
}

// parseSoggettoPagatore assembles the payer-identity sub-record.
func parseSoggettoPagatore(root *etree.Element) (*models.SoggettoPagatore, error) {
	section := xmlutils.FindElement(root, "soggettoPagatore")
	if section == nil {
		return nil, &parsererror.MissingSectionError{Section: "soggettoPagatore"}
	}

	anagrafica, err := xmlutils.RequireText(section, "anagraficaPagatore")
	if err != nil {
		return nil, err
	}
	codice, err := xmlutils.RequireText(section, "codiceIdentificativoUnivoco")
	if err != nil {
		return nil, err
	}
	email, err := xmlutils.RequireText(section, "e-mailPagatore")
	if err != nil {
		return nil, err
	}

	return &models.SoggettoPagatore{
		AnagraficaPagatore:          anagrafica,
		EmailPagatore:               email,
		CodiceIdentificativoUnivoco: codice,
	}, nil
}

// parseDominio assembles the optional domain sub-record. Receipts without a
// dominio section yield a nil sub-record, not an error.
func parseDominio(root *etree.Element) (*models.Dominio, error) {
	section := xmlutils.FindElement(root, "dominio")
	if section == nil {
		return nil, nil
	}

	identificativo, err := xmlutils.RequireText(section, "identificativoDominio")
	if err != nil {
		return nil, err
	}
	return &models.Dominio{IdentificativoDominio: identificativo}, nil
}
