// Package beem wires one client per Beem API family from configuration.
package beem

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/beemafrica/beem-go/internal/airtime"
	"github.com/beemafrica/beem-go/internal/apiclient"
	"github.com/beemafrica/beem-go/internal/checkout"
	"github.com/beemafrica/beem-go/internal/collection"
	"github.com/beemafrica/beem-go/internal/config"
	"github.com/beemafrica/beem-go/internal/contacts"
	"github.com/beemafrica/beem-go/internal/disbursement"
	"github.com/beemafrica/beem-go/internal/otp"
	"github.com/beemafrica/beem-go/internal/sms"
	"github.com/beemafrica/beem-go/internal/transactions"
	"github.com/beemafrica/beem-go/internal/ussd"
)

// Client holds every family service. Services are safe for concurrent use.
type Client struct {
	Checkout         *checkout.Service
	OTP              *otp.Service
	SMS              *sms.Service
	InternationalSMS *sms.InternationalService
	Airtime          *airtime.Service
	Disbursement     *disbursement.Service
	Contacts         *contacts.Service
	Collection       *collection.Service
	USSD             *ussd.Service
}

type options struct {
	httpClient *http.Client
	logger     *slog.Logger
	store      transactions.Store
	userAgent  string
}

type Option func(*options)

// WithHTTPClient replaces the HTTP client built from beem.timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithStore makes checkout record pending transactions.
func WithStore(store transactions.Store) Option {
	return func(o *options) { o.store = store }
}

func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// New builds a Client from cfg.
func New(cfg *config.Config, opts ...Option) *Client {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: time.Duration(cfg.Beem.Timeout) * time.Second}
	}

	creds := apiclient.Credentials{APIKey: cfg.Beem.APIKey, SecretKey: cfg.Beem.SecretKey}
	clientOpts := []apiclient.Option{
		apiclient.WithHTTPClient(o.httpClient),
		apiclient.WithLogger(o.logger),
	}
	if o.userAgent != "" {
		clientOpts = append(clientOpts, apiclient.WithUserAgent(o.userAgent))
	}
	api := func(name, baseURL string) *apiclient.Client {
		return apiclient.New(name, baseURL, creds, clientOpts...)
	}

	urls := cfg.Beem.URLs
	region := cfg.Beem.Region
	topup := api("topup", urls.Topup)
	smsCfg := sms.Config{DefaultSenderID: cfg.SMS.SenderID, Region: region}

	return &Client{
		Checkout: checkout.NewService(api("checkout", urls.Checkout), o.store,
			checkout.Config{Region: region}, o.logger),
		OTP: otp.NewService(api("otp", urls.OTP),
			otp.Config{AppID: cfg.OTP.AppID, PinLength: cfg.OTP.PinLength, Region: region}),
		SMS: sms.NewService(api("sms", urls.SMS), api("delivery_reports", urls.DeliveryReports), smsCfg),
		InternationalSMS: sms.NewInternationalService(api("international_sms", urls.InternationalSMS), smsCfg),
		Airtime:          airtime.NewService(api("airtime", urls.Airtime), topup, airtime.Config{Region: region}),
		Disbursement: disbursement.NewService(api("disbursement", urls.Disbursement), disbursement.Config{
			SourceAccount: cfg.Disbursement.SourceAccount,
			Currency:      cfg.Disbursement.Currency,
			Region:        region,
		}),
		Contacts:   contacts.NewService(api("contacts", urls.Contacts), contacts.Config{Region: region}),
		Collection: collection.NewService(api("collection", urls.Collection)),
		USSD:       ussd.NewService(topup),
	}
}
