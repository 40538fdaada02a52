package query

import (
	"context"
	"fmt"
	"time"

	cloudbigquery "cloud.google.com/go/bigquery"
	"github.com/DevStdio379/settisfy-web/internal/analytics/types"
	"github.com/DevStdio379/settisfy-web/pkg/bigquery"
	"github.com/DevStdio379/settisfy-web/pkg/enums"
	pkgerrors "github.com/DevStdio379/settisfy-web/pkg/errors"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/iterator"
)

// maxWindow caps a report so a single request cannot scan the whole table.
const maxWindow = 366 * 24 * time.Hour

const (
	createdSeriesSQL = `
SELECT
  FORMAT_DATE('%%F', DATE(occurred_at)) AS day,
  COUNT(*) AS value
FROM %s
WHERE event_type = 'booking_created'
  AND occurred_at BETWEEN @start AND @end
GROUP BY day
ORDER BY day ASC
`

	activitySeriesSQL = `
SELECT
  FORMAT_DATE('%%F', DATE(occurred_at)) AS day,
  COUNT(DISTINCT booking_id) AS value
FROM %s
WHERE event_type = 'booking_activity_recorded'
  AND activity_type = @activity
  AND occurred_at BETWEEN @start AND @end
GROUP BY day
ORDER BY day ASC
`

	bookedValueSQL = `
SELECT
  FORMAT_DATE('%%F', DATE(occurred_at)) AS day,
  SUM(COALESCE(total_cents, 0)) AS value
FROM %s
WHERE event_type = 'booking_created'
  AND occurred_at BETWEEN @start AND @end
GROUP BY day
ORDER BY day ASC
`

	topActivitiesSQL = `
SELECT activity_type AS label, COUNT(*) AS value
FROM %s
WHERE event_type = 'booking_activity_recorded'
  AND activity_type IS NOT NULL
  AND occurred_at BETWEEN @start AND @end
GROUP BY label
ORDER BY value DESC
LIMIT 10
`

	topCatalogueSQL = `
SELECT catalogue_service AS label, COUNT(*) AS value
FROM %s
WHERE event_type = 'booking_created'
  AND catalogue_service IS NOT NULL
  AND occurred_at BETWEEN @start AND @end
GROUP BY label
ORDER BY value DESC
LIMIT 5
`

	totalsSQL = `
SELECT
  SUM(IF(activity_type = @releasedToSettler, COALESCE(amount_cents, 0), 0)) AS released_to_settler,
  SUM(IF(activity_type = @releasedToCustomer, COALESCE(amount_cents, 0), 0)) AS refunded,
  COUNTIF(activity_type IN UNNEST(@disputeOpeners)) AS disputes_opened
FROM %s
WHERE event_type = 'booking_activity_recorded'
  AND occurred_at BETWEEN @start AND @end
`
)

// BookingService provides dashboard data from the BigQuery booking_events table.
type BookingService interface {
	Query(ctx context.Context, req types.BookingQueryRequest) (*types.BookingQueryResponse, error)
}

type querier interface {
	Query(ctx context.Context, sql string, params []cloudbigquery.QueryParameter) (*cloudbigquery.RowIterator, error)
}

type bookingService struct {
	client   querier
	tableRef string
}

// NewBookingService builds a report service over the client's booking events
// table.
func NewBookingService(client *bigquery.Client) (BookingService, error) {
	if client == nil {
		return nil, fmt.Errorf("bigquery client required")
	}
	return &bookingService{client: client, tableRef: client.BookingEventsRef()}, nil
}

// Query runs the report's aggregates concurrently. The first failure cancels
// the rest.
func (s *bookingService) Query(ctx context.Context, req types.BookingQueryRequest) (*types.BookingQueryResponse, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	params := baseParams(req)
	resp := &types.BookingQueryResponse{}

	g, gctx := errgroup.WithContext(ctx)
	series := func(dst *[]types.TimeSeriesPoint, sql string, p []cloudbigquery.QueryParameter) {
		g.Go(func() (err error) {
			*dst, err = s.querySeries(gctx, fmt.Sprintf(sql, s.tableRef), p)
			return err
		})
	}
	labels := func(dst *[]types.LabelValue, sql string) {
		g.Go(func() (err error) {
			*dst, err = s.queryTopLabels(gctx, fmt.Sprintf(sql, s.tableRef), params)
			return err
		})
	}

	series(&resp.CreatedSeries, createdSeriesSQL, params)
	series(&resp.CompletedSeries, activitySeriesSQL, withParam(params, "activity", string(enums.ActivityBookingCompleted)))
	series(&resp.CancelledSeries, activitySeriesSQL, withParam(params, "activity", string(enums.ActivityBookingCancelled)))
	series(&resp.BookedValueCents, bookedValueSQL, params)
	labels(&resp.TopActivities, topActivitiesSQL)
	labels(&resp.TopCatalogueServices, topCatalogueSQL)
	g.Go(func() error {
		return s.queryTotals(gctx, fmt.Sprintf(totalsSQL, s.tableRef), totalsParams(params), resp)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resp, nil
}

// ValidateRequest rejects empty, inverted or oversized windows.
func ValidateRequest(req types.BookingQueryRequest) error {
	if req.Start.IsZero() || req.End.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "start and end are required")
	}
	if req.End.Before(req.Start) {
		return pkgerrors.New(pkgerrors.CodeValidation, "end must be after start")
	}
	if req.End.Sub(req.Start) > maxWindow {
		return pkgerrors.New(pkgerrors.CodeValidation, "window must not exceed one year")
	}
	return nil
}

func baseParams(req types.BookingQueryRequest) []cloudbigquery.QueryParameter {
	return []cloudbigquery.QueryParameter{
		{Name: "start", Value: req.Start.UTC()},
		{Name: "end", Value: req.End.UTC()},
	}
}

func withParam(params []cloudbigquery.QueryParameter, name string, value any) []cloudbigquery.QueryParameter {
	out := make([]cloudbigquery.QueryParameter, 0, len(params)+1)
	out = append(out, params...)
	return append(out, cloudbigquery.QueryParameter{Name: name, Value: value})
}

func totalsParams(params []cloudbigquery.QueryParameter) []cloudbigquery.QueryParameter {
	out := withParam(params, "releasedToSettler", string(enums.ActivityPaymentReleasedToSettler))
	out = withParam(out, "releasedToCustomer", string(enums.ActivityPaymentReleasedToCustomer))
	return withParam(out, "disputeOpeners", []string{
		string(enums.ActivityJobIncomplete),
		string(enums.ActivityCooldownReportSubmitted),
	})
}

func (s *bookingService) querySeries(ctx context.Context, sql string, params []cloudbigquery.QueryParameter) ([]types.TimeSeriesPoint, error) {
	iter, err := s.client.Query(ctx, sql, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query series")
	}

	points := []types.TimeSeriesPoint{}
	for {
		var row struct {
			Day   string `bigquery:"day"`
			Value int64  `bigquery:"value"`
		}
		if err := iter.Next(&row); err != nil {
			if err == iterator.Done {
				break
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading series row")
		}
		points = append(points, types.TimeSeriesPoint{Date: row.Day, Value: row.Value})
	}
	return points, nil
}

func (s *bookingService) queryTopLabels(ctx context.Context, sql string, params []cloudbigquery.QueryParameter) ([]types.LabelValue, error) {
	iter, err := s.client.Query(ctx, sql, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query top labels")
	}

	result := []types.LabelValue{}
	for {
		var row struct {
			Label string `bigquery:"label"`
			Value int64  `bigquery:"value"`
		}
		if err := iter.Next(&row); err != nil {
			if err == iterator.Done {
				break
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading top label row")
		}
		result = append(result, types.LabelValue{Label: row.Label, Value: row.Value})
	}
	return result, nil
}

func (s *bookingService) queryTotals(ctx context.Context, sql string, params []cloudbigquery.QueryParameter, resp *types.BookingQueryResponse) error {
	iter, err := s.client.Query(ctx, sql, params)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query totals")
	}
	var row struct {
		ReleasedToSettler cloudbigquery.NullInt64 `bigquery:"released_to_settler"`
		Refunded          cloudbigquery.NullInt64 `bigquery:"refunded"`
		DisputesOpened    int64                   `bigquery:"disputes_opened"`
	}
	if err := iter.Next(&row); err != nil {
		if err == iterator.Done {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading totals row")
	}
	resp.ReleasedToSettlerCents = row.ReleasedToSettler.Int64
	resp.RefundedCents = row.Refunded.Int64
	resp.DisputesOpened = row.DisputesOpened
	return nil
}
