package evidence

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/DevStdio379/settisfy-web/pkg/config"
	pkgerrors "github.com/DevStdio379/settisfy-web/pkg/errors"
	"github.com/DevStdio379/settisfy-web/pkg/storage/gcs"
	"github.com/google/uuid"
)

type stubStore struct {
	uploads []string
	fail    map[int]error
}

func (s *stubStore) Upload(_ context.Context, name, contentType string, data []byte) (gcs.Object, error) {
	idx := len(s.uploads)
	s.uploads = append(s.uploads, name)
	if err := s.fail[idx]; err != nil {
		return gcs.Object{}, err
	}
	if contentType != "image/jpeg" {
		return gcs.Object{}, errors.New("unexpected content type " + contentType)
	}
	return gcs.Object{Name: name, PublicURL: "https://cdn.example.com/" + name}, nil
}

type failureCounter struct{ n int }

func (f *failureCounter) IncUploadFailure(string) { f.n++ }

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func testConfig() config.EvidenceConfig {
	return config.EvidenceConfig{MaxImages: 5, MaxUploadMB: 1, ImageMaxWidth: 64, ImageMaxHeight: 64, ImageQuality: 80}
}

func TestCollectKeepsExistingFirstAndCaps(t *testing.T) {
	store := &stubStore{}
	c := NewCollector(store, testConfig(), nil, nil)
	bookingID := uuid.New()

	in := Input{
		URLs: []string{"https://a/1.jpg", "https://a/2.jpg", " https://a/2.jpg ", "https://a/3.jpg"},
		Uploads: []Upload{
			{Filename: "x.png", Data: pngBytes(t, 10, 10)},
			{Filename: "y.png", Data: pngBytes(t, 10, 10)},
			{Filename: "z.png", Data: pngBytes(t, 10, 10)},
		},
	}
	res, err := c.Collect(context.Background(), bookingID, PurposeSettlerPayment, in)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(res.URLs) != 5 {
		t.Fatalf("expected 5 urls, got %d: %v", len(res.URLs), res.URLs)
	}
	if res.URLs[0] != "https://a/1.jpg" || res.URLs[2] != "https://a/3.jpg" {
		t.Fatalf("existing urls must come first: %v", res.URLs)
	}
	if len(store.uploads) != 2 {
		t.Fatalf("expected 2 uploads, got %d", len(store.uploads))
	}
	if !strings.HasPrefix(store.uploads[0], "bookings/"+bookingID.String()+"/settler_payment/") {
		t.Fatalf("unexpected object name %s", store.uploads[0])
	}
	if len(res.Failures) != 1 || res.Failures[0].Filename != "z.png" {
		t.Fatalf("expected z.png to be dropped, got %+v", res.Failures)
	}
}

func TestCollectDropsFailedUploads(t *testing.T) {
	store := &stubStore{fail: map[int]error{0: errors.New("bucket unavailable")}}
	counter := &failureCounter{}
	c := NewCollector(store, testConfig(), nil, counter)

	res, err := c.Collect(context.Background(), uuid.New(), PurposeCustomerRefund, Input{
		Uploads: []Upload{
			{Filename: "bad.png", Data: pngBytes(t, 4, 4)},
			{Filename: "good.png", Data: pngBytes(t, 4, 4)},
			{Filename: "notes.txt", Data: []byte("plain text is not an image")},
		},
	})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(res.URLs) != 1 {
		t.Fatalf("expected 1 stored url, got %v", res.URLs)
	}
	if len(res.Failures) != 2 {
		t.Fatalf("expected 2 failures, got %+v", res.Failures)
	}
	for _, f := range res.Failures {
		if f.Code != string(pkgerrors.CodeUploadFailed) {
			t.Fatalf("unexpected failure code %s", f.Code)
		}
	}
	if counter.n != 2 {
		t.Fatalf("expected 2 recorded failures, got %d", counter.n)
	}
}

func TestCollectRejectsNonHTTPS(t *testing.T) {
	c := NewCollector(&stubStore{}, testConfig(), nil, nil)
	_, err := c.Collect(context.Background(), uuid.New(), PurposeNotes, Input{URLs: []string{"http://insecure/x.jpg"}})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNormaliseFitsLargeImages(t *testing.T) {
	c := NewCollector(nil, testConfig(), nil, nil)
	out, err := c.normalise(pngBytes(t, 256, 128))
	if err != nil {
		t.Fatalf("normalise: %v", err)
	}
	img, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 32 {
		t.Fatalf("expected 64x32, got %dx%d", b.Dx(), b.Dy())
	}
}
