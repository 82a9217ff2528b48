package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iodono/rt-register/internal/parsererror"
)

func validRecord() *RTData {
	return &RTData{
		DatiPagamento: DatiPagamento{
			IdentificativoUnivocoVersamento:  "IUV123",
			ImportoTotalePagato:              "10.00",
			SingoloImportoPagato:             "10.00",
			DataEsitoSingoloPagamento:        "2021-01-01",
			IdentificativoUnivocoRiscossione: "IUR1",
			CausaleVersamento:                "Donation",
			DatiSpecificiRiscossione:         "X",
			CommissioniApplicatePSP:          DefaultCommissioniApplicatePSP,
			CodiceEsitoPagamento:             EsitoPagamentoEseguito,
		},
		SoggettoPagatore: SoggettoPagatore{
			AnagraficaPagatore:          "Jane Doe",
			EmailPagatore:               "jane@example.com",
			CodiceIdentificativoUnivoco: "CF123",
		},
		EnteBeneficiario: EnteBeneficiario{
			DenomUnitOperBeneficiario: "Croce Verde",
			IndirizzoBeneficiario:     "Via Roma 1",
		},
		Dominio: &Dominio{IdentificativoDominio: "80015010723"},
	}
}

func TestValidateAcceptsCompleteRecord(t *testing.T) {
	assert.NoError(t, validRecord().Validate())
}

func TestValidateAcceptsMinimalShape(t *testing.T) {
	rt := validRecord()
	rt.Dominio = nil
	rt.EnteBeneficiario.DenomUnitOperBeneficiario = ""

	assert.NoError(t, rt.Validate())
}

func TestValidateRejectsEmptyFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(rt *RTData)
	}{
		{"Empty IUV", func(rt *RTData) { rt.DatiPagamento.IdentificativoUnivocoVersamento = "" }},
		{"Empty total", func(rt *RTData) { rt.DatiPagamento.ImportoTotalePagato = "" }},
		{"Empty commission", func(rt *RTData) { rt.DatiPagamento.CommissioniApplicatePSP = "" }},
		{"Empty payer name", func(rt *RTData) { rt.SoggettoPagatore.AnagraficaPagatore = "" }},
		{"Empty payer email", func(rt *RTData) { rt.SoggettoPagatore.EmailPagatore = "" }},
		{"Empty beneficiary address", func(rt *RTData) { rt.EnteBeneficiario.IndirizzoBeneficiario = "" }},
		{"Empty domain identifier", func(rt *RTData) { rt.Dominio.IdentificativoDominio = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := validRecord()
			tt.mutate(rt)

			err := rt.Validate()
			var schemaErr *parsererror.SchemaValidationError
			require.True(t, errors.As(err, &schemaErr))
			assert.Len(t, schemaErr.Messages, 1)
		})
	}
}

func TestValidateRejectsOutcomeCodeOutsideEnumeration(t *testing.T) {
	for _, code := range []string{"2", "OK", "00"} {
		rt := validRecord()
		rt.DatiPagamento.CodiceEsitoPagamento = code

		err := rt.Validate()
		var schemaErr *parsererror.SchemaValidationError
		require.True(t, errors.As(err, &schemaErr), "code %q must be rejected", code)
	}

	for _, code := range []string{EsitoPagamentoEseguito, EsitoPagamentoNonEseguito} {
		rt := validRecord()
		rt.DatiPagamento.CodiceEsitoPagamento = code
		assert.NoError(t, rt.Validate(), "code %q must be accepted", code)
	}
}

func TestValidateJoinsAllComplaints(t *testing.T) {
	rt := validRecord()
	rt.DatiPagamento.CausaleVersamento = ""
	rt.SoggettoPagatore.CodiceIdentificativoUnivoco = ""

	err := rt.Validate()
	var schemaErr *parsererror.SchemaValidationError
	require.True(t, errors.As(err, &schemaErr))
	assert.Len(t, schemaErr.Messages, 2)
	assert.Contains(t, err.Error(), "CausaleVersamento")
	assert.Contains(t, err.Error(), "CodiceIdentificativoUnivoco")
}

func TestBlobName(t *testing.T) {
	rt := validRecord()
	assert.Equal(t, "2021-01-01-IUV123.xml", rt.BlobName())
}
