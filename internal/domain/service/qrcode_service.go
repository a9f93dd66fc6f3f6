package service

// QRCodeService defines the interface for QR code rendering
type QRCodeService interface {
	// GeneratePairingQR renders a PNG that lets a second device pick up a subscription's send credential.
	GeneratePairingQR(token string) ([]byte, error)

	// ParsePairingQR reads the token back from the QR code's text content.
	ParsePairingQR(qrData string) (string, error)
}
