package event

import (
	"errors"
	"strings"

	"github.com/skip2/go-qrcode"
)

type qrEncoder func(content string, level qrcode.RecoveryLevel, size int) ([]byte, error)

var encodeQR qrEncoder = qrcode.Encode

// ShareURL is the public link encoded into an event's share code.
func ShareURL(publicURL, eventID string) string {
	return strings.TrimRight(publicURL, "/") + "/events/" + eventID
}

// ShareQRCode renders the event link as a PNG.
func ShareQRCode(publicURL, eventID string, size int) ([]byte, error) {
	if size <= 0 || size > 1024 {
		return nil, errors.New("invalid size: must be between 1 and 1024")
	}
	return encodeQR(ShareURL(publicURL, eventID), qrcode.Medium, size)
}
