package evidence

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"net/url"
	"strings"

	"github.com/DevStdio379/settisfy-web/pkg/config"
	pkgerrors "github.com/DevStdio379/settisfy-web/pkg/errors"
	"github.com/DevStdio379/settisfy-web/pkg/logger"
	"github.com/DevStdio379/settisfy-web/pkg/storage/gcs"
	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Purpose groups evidence objects under the booking's storage prefix.
type Purpose string

const (
	PurposeSettlerPayment      Purpose = "settler_payment"
	PurposeCustomerRefund      Purpose = "customer_refund"
	PurposeServiceEvidence     Purpose = "service_evidence"
	PurposeIncompletionReport  Purpose = "incompletion_report"
	PurposeIncompletionResolve Purpose = "incompletion_resolve"
	PurposeCooldownReport      Purpose = "cooldown_report"
	PurposeCooldownResolve     Purpose = "cooldown_resolve"
	PurposeCancellation        Purpose = "cancellation"
	PurposeNotes               Purpose = "notes"
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif"}

// BlobStore is the storage surface the collector writes to.
type BlobStore interface {
	Upload(ctx context.Context, name, contentType string, data []byte) (gcs.Object, error)
}

type failureRecorder interface {
	IncUploadFailure(purpose string)
}

// Upload is a raw image received from a client.
type Upload struct {
	Filename string
	Data     []byte
}

// Input is the evidence attached to one lifecycle action.
type Input struct {
	URLs    []string
	Uploads []Upload
}

// Empty reports whether nothing was attached.
func (in Input) Empty() bool {
	return len(in.URLs) == 0 && len(in.Uploads) == 0
}

// Failure is an image that was dropped because it could not be stored.
type Failure struct {
	Filename string `json:"filename"`
	Code     string `json:"code"`
	Reason   string `json:"reason"`
}

// Result is the final URL set, existing URLs first, plus dropped uploads.
type Result struct {
	URLs     []string  `json:"urls"`
	Failures []Failure `json:"failures,omitempty"`
}

// Collector validates, normalises and stores evidence images.
type Collector struct {
	store   BlobStore
	cfg     config.EvidenceConfig
	logg    *logger.Logger
	metrics failureRecorder
}

func NewCollector(store BlobStore, cfg config.EvidenceConfig, logg *logger.Logger, metrics failureRecorder) *Collector {
	if cfg.MaxImages <= 0 {
		cfg.MaxImages = 5
	}
	return &Collector{store: store, cfg: cfg, logg: logg, metrics: metrics}
}

// MaxImages is the cap applied to the combined URL set.
func (c *Collector) MaxImages() int {
	return c.cfg.MaxImages
}

// Collect keeps the already stored https URLs and uploads the raw images up to
// the cap. An upload that fails is dropped and reported, never fatal. Invalid
// existing URLs are a validation error.
func (c *Collector) Collect(ctx context.Context, bookingID uuid.UUID, purpose Purpose, in Input) (Result, error) {
	result := Result{URLs: []string{}}
	seen := make(map[string]struct{})

	for _, raw := range in.URLs {
		u := strings.TrimSpace(raw)
		if u == "" {
			continue
		}
		if !isHTTPS(u) {
			return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "evidence urls must be https").
				WithDetails(map[string]string{"url": u})
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		if len(result.URLs) < c.cfg.MaxImages {
			result.URLs = append(result.URLs, u)
		}
	}

	for _, upload := range in.Uploads {
		if len(result.URLs) >= c.cfg.MaxImages {
			result.Failures = append(result.Failures, Failure{
				Filename: upload.Filename,
				Code:     string(pkgerrors.CodeValidation),
				Reason:   fmt.Sprintf("only %d images are kept", c.cfg.MaxImages),
			})
			continue
		}
		stored, err := c.put(ctx, bookingID, purpose, upload)
		if err != nil {
			c.dropped(ctx, bookingID, purpose, upload, err)
			result.Failures = append(result.Failures, Failure{
				Filename: upload.Filename,
				Code:     string(pkgerrors.CodeUploadFailed),
				Reason:   err.Error(),
			})
			continue
		}
		result.URLs = append(result.URLs, stored)
	}
	return result, nil
}

func (c *Collector) put(ctx context.Context, bookingID uuid.UUID, purpose Purpose, upload Upload) (string, error) {
	if c.store == nil {
		return "", fmt.Errorf("blob storage not configured")
	}
	data, err := c.normalise(upload.Data)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("bookings/%s/%s/%s.jpg", bookingID, purpose, uuid.NewString())
	obj, err := c.store.Upload(ctx, name, "image/jpeg", data)
	if err != nil {
		return "", err
	}
	return obj.PublicURL, nil
}

// normalise sniffs the payload, fits it inside the configured box and re-encodes it as JPEG.
func (c *Collector) normalise(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image")
	}
	if limitMB := c.cfg.MaxUploadMB; limitMB > 0 && len(data) > limitMB<<20 {
		return nil, fmt.Errorf("image exceeds %d MB", limitMB)
	}
	detected := mimetype.Detect(data)
	if !mimetype.EqualsAny(detected.String(), allowedImageTypes...) {
		return nil, fmt.Errorf("unsupported image type %s", detected.String())
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	img = c.fit(img)

	quality := c.cfg.ImageQuality
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

func (c *Collector) fit(img image.Image) image.Image {
	maxW, maxH := c.cfg.ImageMaxWidth, c.cfg.ImageMaxHeight
	if maxW <= 0 || maxH <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= maxW && b.Dy() <= maxH {
		return img
	}
	return imaging.Fit(img, maxW, maxH, imaging.Lanczos)
}

func (c *Collector) dropped(ctx context.Context, bookingID uuid.UUID, purpose Purpose, upload Upload, err error) {
	if c.metrics != nil {
		c.metrics.IncUploadFailure(string(purpose))
	}
	if c.logg == nil {
		return
	}
	ctx = c.logg.WithFields(ctx, map[string]any{
		"booking_id": bookingID.String(),
		"purpose":    string(purpose),
		"filename":   upload.Filename,
		"error":      err.Error(),
	})
	c.logg.Warn(ctx, "evidence.upload_dropped")
}

func isHTTPS(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, "https") && u.Host != ""
}
