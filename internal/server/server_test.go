package server

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iodono/rt-register/internal/models"
)

type stubStore struct {
	saved map[string][]byte
	err   error
}

func (s *stubStore) Save(_ context.Context, name string, content []byte) error {
	if s.err != nil {
		return s.err
	}
	if s.saved == nil {
		s.saved = map[string][]byte{}
	}
	s.saved[name] = content
	return nil
}

type stubQueue struct {
	enqueued []*models.RTData
	err      error
}

func (q *stubQueue) Enqueue(_ context.Context, rt *models.RTData) error {
	if q.err != nil {
		return q.err
	}
	q.enqueued = append(q.enqueued, rt)
	return nil
}

const validReceipt = `<pa:RT xmlns:pa="http://www.digitpa.gov.it/schemas/2011/Pagamenti/">
<pa:soggettoPagatore>
<pa:anagraficaPagatore>Jane Doe</pa:anagraficaPagatore>
<pa:codiceIdentificativoUnivoco>CF123</pa:codiceIdentificativoUnivoco>
<pa:e-mailPagatore>jane@example.com</pa:e-mailPagatore>
</pa:soggettoPagatore>
<pa:indirizzoBeneficiario>Via Roma 1</pa:indirizzoBeneficiario>
<pa:datiPagamento>
<pa:identificativoUnivocoVersamento>IUV123</pa:identificativoUnivocoVersamento>
<pa:importoTotalePagato>10.00</pa:importoTotalePagato>
<pa:codiceEsitoPagamento>0</pa:codiceEsitoPagamento>
<pa:datiSingoloPagamento>
<pa:singoloImportoPagato>10.00</pa:singoloImportoPagato>
<pa:dataEsitoSingoloPagamento>2021-01-01</pa:dataEsitoSingoloPagamento>
<pa:identificativoUnivocoRiscossione>IUR1</pa:identificativoUnivocoRiscossione>
<pa:causaleVersamento>Donation</pa:causaleVersamento>
<pa:datiSpecificiRiscossione>X</pa:datiSpecificiRiscossione>
</pa:datiSingoloPagamento>
</pa:datiPagamento>
</pa:RT>`

func notificationBody(xml string) string {
	return `{"receiptXML":"` + base64.StdEncoding.EncodeToString([]byte(xml)) + `"}`
}

func postNotification(t *testing.T, handler http.Handler, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRegisterPaymentSuccess(t *testing.T) {
	store := &stubStore{}
	q := &stubQueue{}
	router := NewHandler(store, q).Router(nil)

	rec := postNotification(t, router, notificationBody(validReceipt), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"result":"OK"}`, rec.Body.String())

	// The raw decoded XML lands under the derived blob name.
	require.Contains(t, store.saved, "2021-01-01-IUV123.xml")
	assert.Equal(t, validReceipt, string(store.saved["2021-01-01-IUV123.xml"]))

	// The validated record went to the email step with the default commission.
	require.Len(t, q.enqueued, 1)
	assert.Equal(t, "0.00", q.enqueued[0].DatiPagamento.CommissioniApplicatePSP)
}

func TestRegisterPaymentMissingReceiptXML(t *testing.T) {
	router := NewHandler(&stubStore{}, &stubQueue{}).Router(nil)

	rec := postNotification(t, router, `{}`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"result":"KO"}`, rec.Body.String())
}

func TestRegisterPaymentInvalidBase64(t *testing.T) {
	router := NewHandler(&stubStore{}, &stubQueue{}).Router(nil)

	rec := postNotification(t, router, `{"receiptXML":"%%%not-base64%%%"}`, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"result":"KO"}`, rec.Body.String())
}

func TestRegisterPaymentInvalidReceipt(t *testing.T) {
	store := &stubStore{}
	q := &stubQueue{}
	router := NewHandler(store, q).Router(nil)

	incomplete := strings.Replace(validReceipt,
		"<pa:causaleVersamento>Donation</pa:causaleVersamento>", "", 1)
	rec := postNotification(t, router, notificationBody(incomplete), nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"result":"KO"}`, rec.Body.String())
	assert.Empty(t, store.saved)
	assert.Empty(t, q.enqueued)
}

func TestRegisterPaymentStorageFailure(t *testing.T) {
	store := &stubStore{err: errors.New("bucket unavailable")}
	router := NewHandler(store, &stubQueue{}).Router(nil)

	rec := postNotification(t, router, notificationBody(validReceipt), nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestBasicAuth(t *testing.T) {
	auth := &BasicAuthConfig{ClientID: "client-1", Secret: "s3cret"}
	router := NewHandler(&stubStore{}, &stubQueue{}).Router(auth)

	authorize := func(id, secret string) map[string]string {
		cred := base64.StdEncoding.EncodeToString([]byte(id + ":" + secret))
		return map[string]string{"Authorization": "Basic " + cred}
	}

	t.Run("No header", func(t *testing.T) {
		rec := postNotification(t, router, notificationBody(validReceipt), nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Wrong scheme", func(t *testing.T) {
		rec := postNotification(t, router, notificationBody(validReceipt),
			map[string]string{"Authorization": "Bearer token"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Wrong credentials", func(t *testing.T) {
		rec := postNotification(t, router, notificationBody(validReceipt), authorize("client-1", "wrong"))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Valid credentials", func(t *testing.T) {
		rec := postNotification(t, router, notificationBody(validReceipt), authorize("client-1", "s3cret"))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Health stays public", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
