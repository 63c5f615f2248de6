package service

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

type QRGenerator interface {
	Generate(orderID uuid.UUID, code string) ([]byte, error)
}

// DefaultQRGenerator encodes the pickup verification link as a PNG.
type DefaultQRGenerator struct {
	BaseURL string
}

func (g DefaultQRGenerator) Link(orderID uuid.UUID, code string) string {
	return fmt.Sprintf("%s/pickup/verify?order_id=%s&code=%s", g.BaseURL, orderID, code)
}

func (g DefaultQRGenerator) Generate(orderID uuid.UUID, code string) ([]byte, error) {
	return qrcode.Encode(g.Link(orderID, code), qrcode.Medium, 256)
}
