// Package ocr extracts text from images through the Tencent Cloud
// GeneralBasicOCR endpoint.
package ocr

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"wxbot/internal/config"
)

const (
	ocrHost    = "ocr.tencentcloudapi.com"
	ocrService = "ocr"
	ocrAction  = "GeneralBasicOCR"
	ocrVersion = "2018-11-19"
)

type Client struct {
	secretID  string
	secretKey string
	region    string
	client    *http.Client
	logger    *slog.Logger
}

func New(cfg config.OCRConfig, logger *slog.Logger) *Client {
	return &Client{
		secretID:  cfg.SecretID,
		secretKey: cfg.SecretKey,
		region:    cfg.Region,
		client:    &http.Client{Timeout: 30 * time.Second},
		logger:    logger,
	}
}

type ocrResponse struct {
	Response struct {
		TextDetections []struct {
			DetectedText string `json:"DetectedText"`
		} `json:"TextDetections"`
		Error *struct {
			Code    string `json:"Code"`
			Message string `json:"Message"`
		} `json:"Error,omitempty"`
	} `json:"Response"`
}

// ExtractText runs OCR over a base64-encoded image. An empty string with a
// nil error means the service found no usable text.
func (c *Client) ExtractText(ctx context.Context, imageBase64 string) (string, error) {
	payload, err := json.Marshal(map[string]string{"ImageBase64": imageBase64})
	if err != nil {
		return "", fmt.Errorf("ocr: encode payload: %w", err)
	}

	now := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://"+ocrHost, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("ocr: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Host", ocrHost)
	req.Header.Set("X-TC-Action", ocrAction)
	req.Header.Set("X-TC-Version", ocrVersion)
	req.Header.Set("X-TC-Region", c.region)
	req.Header.Set("X-TC-Timestamp", strconv.FormatInt(now.Unix(), 10))
	req.Header.Set("Authorization", c.sign(payload, now))

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ocr: request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ocr: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ocr: HTTP %d: %s", resp.StatusCode, data)
	}

	var out ocrResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("ocr: decode response: %w", err)
	}
	if out.Response.Error != nil {
		return "", fmt.Errorf("ocr: %s: %s", out.Response.Error.Code, out.Response.Error.Message)
	}

	lines := make([]string, 0, len(out.Response.TextDetections))
	for _, d := range out.Response.TextDetections {
		if d.DetectedText != "" {
			lines = append(lines, d.DetectedText)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// sign builds the TC3-HMAC-SHA256 authorization header.
func (c *Client) sign(payload []byte, now time.Time) string {
	date := now.UTC().Format("2006-01-02")

	hashedPayload := sha256Hex(payload)
	canonicalRequest := strings.Join([]string{
		"POST",
		"/",
		"",
		"content-type:application/json\nhost:" + ocrHost + "\n",
		"content-type;host",
		hashedPayload,
	}, "\n")

	credentialScope := date + "/" + ocrService + "/tc3_request"
	stringToSign := strings.Join([]string{
		"TC3-HMAC-SHA256",
		strconv.FormatInt(now.Unix(), 10),
		credentialScope,
		sha256Hex([]byte(canonicalRequest)),
	}, "\n")

	secretDate := hmacSHA256([]byte("TC3"+c.secretKey), date)
	secretService := hmacSHA256(secretDate, ocrService)
	secretSigning := hmacSHA256(secretService, "tc3_request")
	signature := hex.EncodeToString(hmacSHA256(secretSigning, stringToSign))

	return fmt.Sprintf(
		"TC3-HMAC-SHA256 Credential=%s/%s, SignedHeaders=content-type;host, Signature=%s",
		c.secretID, credentialScope, signature)
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func hmacSHA256(key []byte, msg string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(msg))
	return mac.Sum(nil)
}
