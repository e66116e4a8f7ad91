package beem_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beemafrica/beem-go/internal/beem"
	"github.com/beemafrica/beem-go/internal/checkout"
	"github.com/beemafrica/beem-go/internal/config"
	"github.com/beemafrica/beem-go/internal/sms"
	"github.com/beemafrica/beem-go/internal/testutil"
	"github.com/beemafrica/beem-go/internal/transactions"
)

// fakeBeem answers every family on one server and records the paths hit.
type fakeBeem struct {
	mu    sync.Mutex
	paths []string
	auth  []string
}

func (f *fakeBeem) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.paths = append(f.paths, r.Method+" "+r.URL.Path)
	f.auth = append(f.auth, r.Header.Get("Authorization"))
	f.mu.Unlock()
	switch {
	case strings.HasSuffix(r.URL.Path, "/send"):
		w.Write([]byte(`{"successful":true,"request_id":1,"code":100,"message":"Message Submitted Successfully","valid":1}`))
	case strings.HasSuffix(r.URL.Path, "/verify"):
		w.Write([]byte(`{"data":{"message":{"code":117,"message":"Valid Pin"}}}`))
	default:
		w.Write([]byte(`{"data":{"credit_bal":"10","credit_balance":"20","balance":"30"}}`))
	}
}

func configFor(url string) *config.Config {
	cfg := config.Default()
	cfg.Beem.APIKey = "key"
	cfg.Beem.SecretKey = "s3cr3t"
	cfg.SMS.SenderID = "SHOP"
	cfg.OTP.PinLength = 4
	u := &cfg.Beem.URLs
	u.Checkout, u.OTP, u.SMS, u.DeliveryReports, u.InternationalSMS = url, url, url, url, url
	u.Airtime, u.Topup, u.Disbursement, u.Contacts, u.Collection = url, url, url, url, url
	return cfg
}

func TestNewWiresEveryFamily(t *testing.T) {
	fake := &fakeBeem{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	c := beem.New(configFor(srv.URL), beem.WithLogger(testutil.DiscardLogger()), beem.WithHTTPClient(srv.Client()))
	ctx := t.Context()

	res, err := c.SMS.Send(ctx, sms.SendRequest{Message: "hi", Recipients: []string{"255712345678"}})
	require.NoError(t, err)
	assert.True(t, res.Successful)

	smsBal, err := c.SMS.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, "20", smsBal.CreditBalance.String())

	airBal, err := c.Airtime.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, "10", airBal.CreditBalance.String())

	ussdBal, err := c.USSD.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, "10", ussdBal.CreditBalance.String())

	colBal, err := c.Collection.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, "30", colBal.Balance.String())

	assert.Contains(t, fake.paths, "POST /v1/send")
	assert.Contains(t, fake.paths, "GET /public/v1/vendors/balance")
	assert.Contains(t, fake.paths, "GET /v1/credit-balance")
	assert.Contains(t, fake.paths, "GET /v1/balance")
	for _, a := range fake.auth {
		assert.True(t, strings.HasPrefix(a, "Basic "), "every family sends basic auth")
	}
}

func TestNewPassesConfig(t *testing.T) {
	c := beem.New(configFor("https://checkout.example"))
	r, err := c.Checkout.RedirectURL(checkout.Request{Amount: decimal.NewFromInt(5), ReferenceNumber: "R"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(r.URL, "https://checkout.example/v1/checkout?"))
	assert.NotEmpty(t, r.Authorization)
}

func TestWithStoreRecordsCheckouts(t *testing.T) {
	store := transactions.NewMemoryStore()
	c := beem.New(configFor("https://checkout.example"), beem.WithStore(store), beem.WithLogger(testutil.DiscardLogger()))
	_, err := c.Checkout.Begin(t.Context(), checkout.Request{Amount: decimal.NewFromInt(5), ReferenceNumber: "R", TransactionID: "t"})
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
}
