package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// GatewayOrder is the payment-gateway order handle returned to clients so
// they can complete checkout.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Gateway creates payment orders denominated in the smallest currency unit.
type Gateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*GatewayOrder, error)
}

type RazorpayGateway struct {
	client *razorpay.Client
}

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{client: razorpay.NewClient(keyID, keySecret)}
}

func (g *RazorpayGateway) CreateOrder(_ context.Context, amountMinor int64, currency, receipt string) (*GatewayOrder, error) {
	data := map[string]interface{}{
		"amount":   amountMinor,
		"currency": currency,
		"receipt":  receipt,
	}

	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay order create: %w", err)
	}

	id, ok := body["id"].(string)
	if !ok || id == "" {
		return nil, fmt.Errorf("razorpay order create: response missing order id")
	}

	order := &GatewayOrder{ID: id, Amount: amountMinor, Currency: currency}
	// Razorpay decodes numbers as float64.
	if amt, ok := body["amount"].(float64); ok {
		order.Amount = int64(amt)
	}
	if cur, ok := body["currency"].(string); ok && cur != "" {
		order.Currency = cur
	}
	return order, nil
}

// VerifySignature recomputes the HMAC-SHA256 of "orderID|paymentID" with the
// shared key secret and compares it against the gateway-supplied signature
// in constant time.
func VerifySignature(keySecret, orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
