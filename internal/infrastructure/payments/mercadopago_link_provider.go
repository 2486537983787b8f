package payments

import (
	"context"
	"errors"

	"retail_backoffice/internal/domain/entities"
	"retail_backoffice/internal/usecase/interfaces"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/preference"
	log "github.com/sirupsen/logrus"
)

var ErrMissingMercadoPagoAccessToken = errors.New("missing MERCADOPAGO_ACCESS_TOKEN")

// preferenceCreator is the part of preference.Client the provider uses.
type preferenceCreator interface {
	Create(ctx context.Context, request preference.Request) (*preference.Response, error)
}

// MercadoPagoLinkProvider creates a Checkout Pro preference per order and
// returns its init_point. Any provider failure falls back to the checkout
// front-end link, since the order is already committed.
type MercadoPagoLinkProvider struct {
	client   preferenceCreator
	currency string
	fallback interfaces.IPaymentLinkProvider
}

var _ interfaces.IPaymentLinkProvider = (*MercadoPagoLinkProvider)(nil)

func NewMercadoPagoLinkProvider(accessToken, currency string, fallback interfaces.IPaymentLinkProvider) (*MercadoPagoLinkProvider, error) {
	if accessToken == "" {
		log.Warnf("[payment][mercadopago] missing MERCADOPAGO_ACCESS_TOKEN")
		return nil, ErrMissingMercadoPagoAccessToken
	}
	cfg, err := config.New(accessToken)
	if err != nil {
		log.Errorf("[payment][mercadopago] failed creating sdk config err=%v", err)
		return nil, err
	}
	log.Printf("[payment][mercadopago] client initialized currency=%s", currency)
	return newMercadoPagoLinkProvider(preference.NewClient(cfg), currency, fallback), nil
}

func newMercadoPagoLinkProvider(client preferenceCreator, currency string, fallback interfaces.IPaymentLinkProvider) *MercadoPagoLinkProvider {
	return &MercadoPagoLinkProvider{client: client, currency: currency, fallback: fallback}
}

func (p *MercadoPagoLinkProvider) PaymentURL(ctx context.Context, order entities.Order, user entities.User) (string, error) {
	log.Printf("[payment][mercadopago] preference create start order_id=%s lines=%d", order.ID, len(order.Items))

	resp, err := p.client.Create(ctx, p.preferenceRequest(order, user))
	if err == nil && resp != nil && resp.InitPoint != "" {
		log.Printf("[payment][mercadopago] preference create success order_id=%s preference_id=%s", order.ID, resp.ID)
		return resp.InitPoint, nil
	}
	if err == nil {
		err = errors.New("empty init_point")
	}
	log.Warnf("[payment][mercadopago] preference create failed order_id=%s err=%v, using checkout link", order.ID, err)
	return p.fallback.PaymentURL(ctx, order, user)
}

func (p *MercadoPagoLinkProvider) preferenceRequest(order entities.Order, user entities.User) preference.Request {
	items := make([]preference.ItemRequest, 0, len(order.Items))
	for _, l := range order.Items {
		items = append(items, preference.ItemRequest{
			ID:         l.ProductID,
			Title:      l.Name,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			CurrencyID: p.currency,
		})
	}
	req := preference.Request{
		Items:             items,
		ExternalReference: order.ID,
	}
	if user.Email != "" {
		req.Payer = &preference.PayerRequest{Name: user.Name, Email: user.Email}
	}
	return req
}
