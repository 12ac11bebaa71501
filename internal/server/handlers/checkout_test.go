package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frogstop/payments/internal/application/checkout"
	"github.com/frogstop/payments/internal/infrastructure/http/clients"
	"github.com/frogstop/payments/internal/repositories/paymentrepo"
	"github.com/frogstop/payments/pkg/config"
)

type checkoutFixture struct {
	router *gin.Engine
	repo   paymentrepo.IPaymentRepository
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zerolog.Nop()
	repo := paymentrepo.NewMemory()
	svc := checkout.NewCheckoutService(repo, clients.NewSandboxClient("acct_1", logger), config.CheckoutConfig{
		Blockchain:  "POLYGON",
		Network:     "amoy",
		TokenSymbol: "USDC",
	}, "sandbox", logger)

	checkoutHandler := NewCheckoutHandler(svc, logger)
	paymentHandler := NewPaymentHandler(svc, logger)

	router := gin.New()
	router.POST("/v1/checkout", checkoutHandler.CreatePayment)
	router.GET("/v1/payments/:id", paymentHandler.GetPayment)
	router.GET("/v1/payments", paymentHandler.ListPayments)

	return &checkoutFixture{router: router, repo: repo}
}

func (f *checkoutFixture) do(method, path string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestCreatePaymentReturnsInstructions(t *testing.T) {
	f := newCheckoutFixture(t)

	rec := f.do(http.MethodPost, "/v1/checkout", []byte(`{
		"amount": 19.99,
		"currency": "USD",
		"items": [{"id": "sku_1", "name": "Widget", "price": 19.99, "quantity": 1}]
	}`))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp checkout.CheckoutResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.PaymentID)
	assert.NotEmpty(t, resp.DepositAddress)
	assert.Equal(t, "19.99", resp.AmountUSDC)
	assert.Equal(t, "pending", string(resp.Status))
}

func TestCreatePaymentRejectsNonPositiveAmount(t *testing.T) {
	f := newCheckoutFixture(t)

	rec := f.do(http.MethodPost, "/v1/checkout", []byte(`{
		"amount": 0,
		"items": [{"id": "sku_1", "name": "Widget", "price": 0, "quantity": 1}]
	}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Amount must be greater than zero")
}

func TestCreatePaymentRejectsEmptyCart(t *testing.T) {
	f := newCheckoutFixture(t)

	rec := f.do(http.MethodPost, "/v1/checkout", []byte(`{"amount": 5, "items": []}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Cart items are required")
}

func TestCreatePaymentRejectsInvalidBody(t *testing.T) {
	f := newCheckoutFixture(t)

	rec := f.do(http.MethodPost, "/v1/checkout", []byte(`not json`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPaymentRoundTrip(t *testing.T) {
	f := newCheckoutFixture(t)

	rec := f.do(http.MethodPost, "/v1/checkout", []byte(`{
		"amount": 42.5,
		"items": [{"id": "sku_2", "name": "Gadget", "price": 42.5, "quantity": 1}]
	}`))
	require.Equal(t, http.StatusOK, rec.Code)

	var created checkout.CheckoutResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = f.do(http.MethodGet, "/v1/payments/"+created.PaymentID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched paymentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, created.PaymentID, fetched.PaymentID)
	assert.Equal(t, "42.50", fetched.AmountUSDC)
	assert.Equal(t, "pending", string(fetched.Status))
}

func TestGetPaymentUnknownIDReturns404(t *testing.T) {
	f := newCheckoutFixture(t)

	rec := f.do(http.MethodGet, "/v1/payments/pay_missing", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListPaymentsReturnsAll(t *testing.T) {
	f := newCheckoutFixture(t)

	for _, amount := range []string{"1.00", "2.00"} {
		rec := f.do(http.MethodPost, "/v1/checkout", []byte(`{
			"amount": `+amount+`,
			"items": [{"id": "sku", "name": "Thing", "price": `+amount+`, "quantity": 1}]
		}`))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := f.do(http.MethodGet, "/v1/payments", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Payments []paymentResponse `json:"payments"`
		Count    int               `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Len(t, resp.Payments, 2)
}
