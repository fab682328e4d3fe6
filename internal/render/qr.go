package render

import (
	"fmt"
	"image"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

// QRProvider produces a square code bitmap for a URL. Failures are non-fatal
// to the caller: the Story template simply omits the code.
type QRProvider interface {
	QRCode(url string, size int) (image.Image, error)
}

// BarcodeQR renders QR codes with boombuler/barcode.
type BarcodeQR struct {
	Level qr.ErrorCorrectionLevel
}

// NewBarcodeQR returns a provider using medium error correction.
func NewBarcodeQR() *BarcodeQR {
	return &BarcodeQR{Level: qr.M}
}

func (b *BarcodeQR) QRCode(url string, size int) (image.Image, error) {
	if url == "" {
		return nil, fmt.Errorf("empty QR payload")
	}
	raw, err := qr.Encode(url, b.Level, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("encoding QR: %w", err)
	}
	scaled, err := barcode.Scale(raw, size, size)
	if err != nil {
		return nil, fmt.Errorf("scaling QR to %dpx: %w", size, err)
	}
	return scaled, nil
}
