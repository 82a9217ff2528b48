package mailer

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/shopspring/decimal"

	"iodono/rt-register/internal/models"
)

// receiptData is the flattened view of a receipt record consumed by the email
// templates. Template changes never require changes to the parsing pipeline.
type receiptData struct {
	Subject            string
	Donor              string
	DonorTaxCode       string
	Beneficiary        string
	BeneficiaryTaxCode string
	CampaignLink       string
	Date               string
	Cause              string
	Amount             string
	Commission         string
	Total              string
}

func newReceiptData(subject string, rt *models.RTData) receiptData {
	data := receiptData{
		Subject:      subject,
		Donor:        rt.SoggettoPagatore.AnagraficaPagatore,
		DonorTaxCode: rt.SoggettoPagatore.CodiceIdentificativoUnivoco,
		Beneficiary:  rt.EnteBeneficiario.DenomUnitOperBeneficiario,
		CampaignLink: rt.EnteBeneficiario.IndirizzoBeneficiario,
		Date:         rt.DatiPagamento.DataEsitoSingoloPagamento,
		Cause:        rt.DatiPagamento.CausaleVersamento,
		Amount:       FormatAmount(rt.DatiPagamento.SingoloImportoPagato),
		Commission:   FormatAmount(rt.DatiPagamento.CommissioniApplicatePSP),
		Total:        FormatAmount(rt.DatiPagamento.ImportoTotalePagato),
	}
	if rt.Dominio != nil {
		data.BeneficiaryTaxCode = rt.Dominio.IdentificativoDominio
	}
	return data
}

// FormatAmount normalizes a string-encoded amount to two decimal places.
// Values that do not parse as decimals are passed through verbatim; the
// pipeline guarantees presence, not numeric format.
func FormatAmount(amount string) string {
	d, err := decimal.NewFromString(strings.ReplaceAll(amount, ",", "."))
	if err != nil {
		return amount
	}
	return d.StringFixed(2)
}

const receiptTextTemplate = `Grazie {{.Donor}}:
Questa è la ricevuta della tua donazione di {{.Amount}} a {{.Beneficiary}}
per la campagna {{.Cause}}.

Invita i tuoi amici a sostenere la campagna condividendo il link {{.CampaignLink}}

Di seguito trovi i dati della tua donazione che possono essere utili a fini fiscali.

Donatore: {{.Donor}}
Codice fiscale del donatore: {{.DonorTaxCode}}
Beneficiario: {{.Beneficiary}}
Codice fiscale beneficiario: {{.BeneficiaryTaxCode}}
Data esecuzione donazione: {{.Date}}
Causale della donazione: {{.Cause}}
Importo della donazione: {{.Amount}}
Commissione per la transazione: {{.Commission}}
Importo totale della transazione: {{.Total}}

Questa ricevuta riguarda una donazione eseguita online tramite strumenti di pagamento tracciabili che ti permettono di usufruire dei relativi benefici fiscali.
Conserva la presente ricevuta per le tue detrazioni/deduzioni.
`

const receiptHTMLTemplate = `<!doctype html>
<html>
  <head>
    <meta name="viewport" content="width=device-width" />
    <meta http-equiv="Content-Type" content="text/html; charset=UTF-8" />
    <title>{{.Subject}}</title>
  </head>
  <body>
    <h1>Grazie {{.Donor}}</h1>
    <p>Questa è la ricevuta della tua donazione di {{.Amount}} a {{.Beneficiary}}
    per la campagna {{.Cause}}.</p>

    <p>Invita i tuoi amici a sostenere la campagna condividendo il link {{.CampaignLink}}</p>

    <p>Di seguito trovi i dati della tua donazione che possono essere utili a fini fiscali.</p>

    <p>Donatore: {{.Donor}}</p>
    <p>Codice fiscale del donatore: {{.DonorTaxCode}}</p>
    <p>Beneficiario: {{.Beneficiary}}</p>
    <p>Codice fiscale beneficiario: {{.BeneficiaryTaxCode}}</p>
    <p>Data esecuzione donazione: {{.Date}}</p>
    <p>Causale della donazione: {{.Cause}}</p>
    <p>Importo della donazione: {{.Amount}}</p>
    <p>Commissione per la transazione: {{.Commission}}</p>
    <p>Importo totale della transazione: {{.Total}}</p>

    <p>Questa ricevuta riguarda una donazione eseguita online tramite strumenti di pagamento tracciabili che ti permettono di usufruire dei relativi benefici fiscali.
    Conserva la presente ricevuta per le tue detrazioni/deduzioni.</p>
  </body>
</html>
`

var (
	textTmpl = texttemplate.Must(texttemplate.New("receipt-text").Parse(receiptTextTemplate))
	htmlTmpl = htmltemplate.Must(htmltemplate.New("receipt-html").Parse(receiptHTMLTemplate))
)

// ReceiptText renders the fixed plain-text receipt for a validated record.
func ReceiptText(subject string, rt *models.RTData) (string, error) {
	var buf bytes.Buffer
	if err := textTmpl.Execute(&buf, newReceiptData(subject, rt)); err != nil {
		return "", fmt.Errorf("rendering text receipt failed: %w", err)
	}
	return buf.String(), nil
}

// ReceiptHTML renders the fixed HTML receipt for a validated record.
func ReceiptHTML(subject string, rt *models.RTData) (string, error) {
	var buf bytes.Buffer
	if err := htmlTmpl.Execute(&buf, newReceiptData(subject, rt)); err != nil {
		return "", fmt.Errorf("rendering HTML receipt failed: %w", err)
	}
	return buf.String(), nil
}
