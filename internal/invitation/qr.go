package invitation

import (
	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

// QRCodePNG encodes the share link of an invitation as a PNG.
func QRCodePNG(shareURL string) ([]byte, error) {
	return qrcode.Encode(shareURL, qrcode.Medium, qrSize)
}
