// Package ussd reads the Beem USSD credit balance.
package ussd

import (
	"context"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/beemafrica/beem-go/internal/apiclient"
	"github.com/beemafrica/beem-go/internal/apierr"
	"github.com/beemafrica/beem-go/internal/payload"
)

const balancePath = "/v1/credit-balance"

type Balance struct {
	CreditBalance decimal.Decimal
}

func BalanceFromMap(m map[string]any) Balance {
	return Balance{CreditBalance: payload.Decimal(payload.Data(m), "credit_bal")}
}

// Service talks to the top-up host with app_name=USSD.
type Service struct {
	topup *apiclient.Client
}

func NewService(topup *apiclient.Client) *Service {
	return &Service{topup: topup}
}

func (s *Service) Balance(ctx context.Context) (*Balance, error) {
	resp, err := s.topup.Get(ctx, balancePath, url.Values{"app_name": {"USSD"}})
	if err != nil {
		return nil, err
	}
	m, err := resp.Expect(apierr.USSD)
	if err != nil {
		return nil, err
	}
	b := BalanceFromMap(m)
	return &b, nil
}
