package writer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	cbigquery "cloud.google.com/go/bigquery"
	"github.com/DevStdio379/settisfy-web/internal/analytics/types"
	pkgbigquery "github.com/DevStdio379/settisfy-web/pkg/bigquery"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	defaultMaxAttempts    = 3
	defaultInitialBackoff = 250 * time.Millisecond
	defaultMaximumBackoff = 2 * time.Second
)

// Config controls the analytics writer behavior.
type Config struct {
	BookingEventsTable string
	RetryPolicy        RetryPolicy
}

// RetryPolicy controls how many times BigQuery inserts are retried.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaximumBackoff time.Duration
}

type tableInserter interface {
	InsertRows(ctx context.Context, table string, rows []cbigquery.ValueSaver) error
}

// BigQueryWriter streams booking event rows into BigQuery. Rows are written
// synchronously so the caller acks a message only after its row landed.
type BigQueryWriter struct {
	client tableInserter
	table  string
	retry  RetryPolicy
}

// New creates a writer backed by the shared BigQuery client.
func New(client *pkgbigquery.Client, cfg Config) (*BigQueryWriter, error) {
	if client == nil {
		return nil, errors.New("bigquery client required")
	}
	return newWriter(client, cfg)
}

func newWriter(client tableInserter, cfg Config) (*BigQueryWriter, error) {
	table := strings.TrimSpace(cfg.BookingEventsTable)
	if table == "" {
		return nil, errors.New("booking events table is required")
	}

	retry := cfg.RetryPolicy
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = defaultMaxAttempts
	}
	if retry.InitialBackoff <= 0 {
		retry.InitialBackoff = defaultInitialBackoff
	}
	if retry.MaximumBackoff <= 0 {
		retry.MaximumBackoff = defaultMaximumBackoff
	}
	retry.MaximumBackoff = max(retry.MaximumBackoff, retry.InitialBackoff)
	return &BigQueryWriter{client: client, table: table, retry: retry}, nil
}

// InsertBookingEvent writes a single row.
func (w *BigQueryWriter) InsertBookingEvent(ctx context.Context, row types.BookingEventRow) error {
	return w.InsertBookingEvents(ctx, []types.BookingEventRow{row})
}

// InsertBookingEvents writes rows keyed by event id, so BigQuery drops
// duplicates when a redelivered message is written twice. After a partial
// failure only the rejected rows are retried.
func (w *BigQueryWriter) InsertBookingEvents(ctx context.Context, rows []types.BookingEventRow) error {
	pending := make([]cbigquery.ValueSaver, 0, len(rows))
	for i := range rows {
		pending = append(pending, &cbigquery.StructSaver{Struct: &rows[i], InsertID: rows[i].EventID})
	}

	backoff := w.retry.InitialBackoff
	for attempt := 1; len(pending) > 0; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := w.client.InsertRows(ctx, w.table, pending)
		if err == nil {
			return nil
		}
		if attempt >= w.retry.MaxAttempts || !isRetryable(err) {
			return fmt.Errorf("insert %d rows into %s: %w", len(pending), w.table, err)
		}
		pending = rejectedRows(pending, err)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		backoff = min(backoff*2, w.retry.MaximumBackoff)
	}
	return nil
}

// rejectedRows narrows a batch to the rows a PutMultiError names. Any other
// error means the whole request failed.
func rejectedRows(rows []cbigquery.ValueSaver, err error) []cbigquery.ValueSaver {
	var pme cbigquery.PutMultiError
	if !errors.As(err, &pme) || len(pme) == 0 {
		return rows
	}
	out := make([]cbigquery.ValueSaver, 0, len(pme))
	for _, rowErr := range pme {
		if rowErr.RowIndex >= 0 && rowErr.RowIndex < len(rows) {
			out = append(out, rows[rowErr.RowIndex])
		}
	}
	return out
}

// isRetryable is true only when every underlying failure is transient.
func isRetryable(err error) bool {
	var pme cbigquery.PutMultiError
	if errors.As(err, &pme) {
		if len(pme) == 0 {
			return false
		}
		for _, rowErr := range pme {
			if !allRetryable(rowErr.Errors) {
				return false
			}
		}
		return true
	}

	var multi cbigquery.MultiError
	if errors.As(err, &multi) {
		return allRetryable(multi)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests, http.StatusRequestTimeout, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	if st, ok := status.FromError(err); ok && st.Code() != codes.Unknown {
		switch st.Code() {
		case codes.Aborted, codes.DeadlineExceeded, codes.Internal, codes.ResourceExhausted, codes.Unavailable:
			return true
		}
	}
	return false
}

func allRetryable(errs cbigquery.MultiError) bool {
	if len(errs) == 0 {
		return false
	}
	for _, inner := range errs {
		if !isRetryable(inner) {
			return false
		}
	}
	return true
}

// EncodeJSON serializes a payload for a BigQuery JSON column. Empty input is
// stored as NULL.
func EncodeJSON(payload any) (cbigquery.NullJSON, error) {
	var raw []byte
	switch value := payload.(type) {
	case nil:
		return cbigquery.NullJSON{}, nil
	case cbigquery.NullJSON:
		return value, nil
	case json.RawMessage:
		raw = value
	case []byte:
		raw = value
	default:
		encoded, err := json.Marshal(payload)
		if err != nil {
			return cbigquery.NullJSON{}, fmt.Errorf("marshal json: %w", err)
		}
		raw = encoded
	}
	if len(raw) == 0 {
		return cbigquery.NullJSON{}, nil
	}
	return cbigquery.NullJSON{Valid: true, JSONVal: string(raw)}, nil
}
