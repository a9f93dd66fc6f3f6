package qrcode

import (
	"strings"

	"pushrelay/config"
	"pushrelay/internal/domain/service"
	"pushrelay/internal/errors"

	"github.com/goccy/go-json"
	"github.com/skip2/go-qrcode"
)

const defaultSize = 256

type qrcodeService struct {
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
	baseURL              string
}

// PairingData is the JSON a sender scans to learn where and with which token to post.
type PairingData struct {
	URL   string `json:"url"`
	Token string `json:"token"`
}

// New creates the QR code service from configuration; a missing section uses defaults
func New(cfg *config.Config) service.QRCodeService {
	if cfg.QRCode == nil {
		return NewQRCodeService(defaultSize, "M", "")
	}

	return NewQRCodeService(cfg.QRCode.Size, cfg.QRCode.ErrorCorrectionLevel, cfg.QRCode.BaseURL)
}

// NewQRCodeService creates a new QR code service instance
func NewQRCodeService(size int, errorCorrectionLevel, baseURL string) service.QRCodeService {
	var level qrcode.RecoveryLevel
	switch errorCorrectionLevel {
	case "L":
		level = qrcode.Low
	case "M":
		level = qrcode.Medium
	case "Q":
		level = qrcode.High
	case "H":
		level = qrcode.Highest
	default:
		level = qrcode.Medium
	}

	if size <= 0 {
		size = defaultSize
	}

	return &qrcodeService{
		size:                 size,
		errorCorrectionLevel: level,
		baseURL:              strings.TrimRight(baseURL, "/"),
	}
}

// GeneratePairingQR renders the relay URL and send token as a PNG QR code
func (s *qrcodeService) GeneratePairingQR(token string) ([]byte, error) {
	if token == "" {
		return nil, errors.New("pairing token is empty")
	}

	jsonData, err := json.Marshal(PairingData{URL: s.baseURL, Token: token})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal QR code data")
	}

	qrCode, err := qrcode.New(string(jsonData), s.errorCorrectionLevel)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create QR code")
	}

	pngBytes, err := qrCode.PNG(s.size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate PNG")
	}

	return pngBytes, nil
}

// ParsePairingQR parses scanned QR code text and returns the send token
func (s *qrcodeService) ParsePairingQR(qrData string) (string, error) {
	var data PairingData
	if err := json.Unmarshal([]byte(qrData), &data); err != nil {
		return "", errors.Wrap(err, "failed to unmarshal QR code data")
	}

	if data.Token == "" {
		return "", errors.New("QR code carries no token")
	}

	return data.Token, nil
}
