package payments

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf16"

	"retail_backoffice/internal/domain/entities"
	"retail_backoffice/internal/usecase/interfaces"
)

const (
	ModeExpanded = "expanded"
	ModeCompact  = "compact"
)

// CheckoutItem is one element of the items payload the checkout front-end
// decodes.
type CheckoutItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
}

// CheckoutLinkBuilder builds links to the checkout front-end.
//
// Expanded:  {frontend}?user_id=..&name=..&email=..&amount=..&items=..
// Compact:   {public base}/checkout/{order_id} (expanded by the redirect route)
type CheckoutLinkBuilder struct {
	frontendURL   string
	publicBaseURL string
	mode          string
}

var _ interfaces.IPaymentLinkProvider = (*CheckoutLinkBuilder)(nil)

func NewCheckoutLinkBuilder(frontendURL, publicBaseURL, mode string) *CheckoutLinkBuilder {
	if mode != ModeCompact {
		mode = ModeExpanded
	}
	return &CheckoutLinkBuilder{
		frontendURL:   frontendURL,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		mode:          mode,
	}
}

func (b *CheckoutLinkBuilder) PaymentURL(_ context.Context, order entities.Order, user entities.User) (string, error) {
	if b.mode == ModeCompact {
		return b.publicBaseURL + "/checkout/" + url.PathEscape(order.ID), nil
	}
	return b.ExpandedURL(order, user)
}

// ExpandedURL inlines the whole order into the query string. Parameters keep
// the front-end's order and are escaped one by one.
func (b *CheckoutLinkBuilder) ExpandedURL(order entities.Order, user entities.User) (string, error) {
	items, err := EncodeItems(order.Items)
	if err != nil {
		return "", err
	}
	params := [][2]string{
		{"user_id", user.ID},
		{"name", user.Name},
		{"email", user.Email},
		{"amount", entities.FormatAmount(order.Total)},
		{"items", items},
	}
	var sb strings.Builder
	sb.WriteString(b.frontendURL)
	for i, p := range params {
		if i == 0 {
			sb.WriteByte('?')
		} else {
			sb.WriteByte('&')
		}
		sb.WriteString(p[0])
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p[1]))
	}
	return sb.String(), nil
}

// EncodeItems serializes the order lines as ASCII-only JSON and encodes them
// with padded base64url. The front-end decodes with atob, which yields Latin-1,
// so every non-ASCII rune is sent as a \uXXXX escape.
func EncodeItems(lines []entities.OrderLine) (string, error) {
	items := make([]CheckoutItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, CheckoutItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.LineTotal,
		})
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(items); err != nil {
		return "", err
	}
	payload := asciiJSON(bytes.TrimRight(buf.Bytes(), "\n"))
	return base64.URLEncoding.EncodeToString(payload), nil
}

// asciiJSON escapes non-ASCII runes of encoded JSON. They can only occur inside
// string literals, where \u escapes are always valid.
func asciiJSON(b []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(b))
	for _, r := range string(b) {
		switch {
		case r < 0x80:
			out.WriteByte(byte(r))
		case r > 0xFFFF:
			hi, lo := utf16.EncodeRune(r)
			fmt.Fprintf(&out, "\\u%04x\\u%04x", hi, lo)
		default:
			fmt.Fprintf(&out, "\\u%04x", r)
		}
	}
	return out.Bytes()
}

// DecodeItems reverses EncodeItems.
func DecodeItems(encoded string) ([]CheckoutItem, error) {
	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	var items []CheckoutItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}
