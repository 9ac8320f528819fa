package responder

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"wxbot/internal/domain"
	"wxbot/internal/metrics"
)

// attachmentMarker tags an image the gateway has received but not yet
// decrypted/downloaded.
const attachmentMarker = ".dat"

// ImageIntent detects undownloaded image attachments, runs them through OCR,
// and replies with the recognized text.
type ImageIntent struct {
	gw          domain.Gateway
	extractor   domain.TextExtractor
	downloadDir string
	replier     Replier
	logger      *slog.Logger
}

type ImageIntentConfig struct {
	Gateway     domain.Gateway
	Extractor   domain.TextExtractor
	DownloadDir string
	Replier     Replier
	Logger      *slog.Logger
}

func NewImageIntent(cfg ImageIntentConfig) *ImageIntent {
	return &ImageIntent{
		gw:          cfg.Gateway,
		extractor:   cfg.Extractor,
		downloadDir: cfg.DownloadDir,
		replier:     cfg.Replier,
		logger:      cfg.Logger,
	}
}

// Wants reports whether the event carries an attachment this handler owns.
func (h *ImageIntent) Wants(ev *domain.InboundEvent) bool {
	return strings.HasSuffix(ev.AttachmentRef, attachmentMarker)
}

// Handle downloads the image, OCRs it, and replies with the text. Returns
// true when the handler owned the event, even if no usable text came back
// (in which case nothing is sent).
func (h *ImageIntent) Handle(ctx context.Context, ev *domain.InboundEvent) (bool, error) {
	if !h.Wants(ev) {
		return false, nil
	}

	path, err := h.gw.DownloadAttachment(ctx, ev.ID, ev.AttachmentRef, h.downloadDir)
	if err != nil {
		return true, fmt.Errorf("download attachment: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return true, fmt.Errorf("read downloaded image %s: %w", path, err)
	}

	start := time.Now()
	text, err := h.extractor.ExtractText(ctx, base64.StdEncoding.EncodeToString(data))
	metrics.OCRLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return true, fmt.Errorf("extract text: %w", err)
	}
	if text == "" {
		h.logger.Info("no usable text in image", "event", ev.ID)
		return true, nil
	}

	return true, h.replier.ReplyText(ctx, text, ev.GroupID, ev.SenderID)
}
