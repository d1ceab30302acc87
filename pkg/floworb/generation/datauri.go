package generation

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

var dataURIPrefix = regexp.MustCompile(`^data:(image/(?:png|jpeg|jpg|webp));base64,`)

// DecodeImage parses a data URI or bare base64 image.
// The MIME type comes from the URI prefix, or is sniffed from the bytes.
func DecodeImage(s string) (mimeType string, data []byte, err error) {
	payload := s
	if m := dataURIPrefix.FindStringSubmatch(s); m != nil {
		mimeType = m[1]
		if mimeType == "image/jpg" {
			mimeType = "image/jpeg"
		}
		payload = s[len(m[0]):]
	}

	data, err = base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return "", nil, fmt.Errorf("decode image: %w", err)
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
		if !strings.HasPrefix(mimeType, "image/") {
			mimeType = "image/jpeg"
		}
	}
	return mimeType, data, nil
}

// EncodeImage returns data as a data URI. An empty mimeType means image/png.
func EncodeImage(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "image/png"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
