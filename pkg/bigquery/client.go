package bigquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/DevStdio379/settisfy-web/pkg/config"
	"github.com/DevStdio379/settisfy-web/pkg/logger"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const metadataCheckTimeout = 10 * time.Second

// Client wraps a BigQuery client scoped to the booking analytics dataset.
type Client struct {
	client  *bigquery.Client
	dataset *bigquery.Dataset
	cfg     config.BigQueryConfig
	labels  map[string]string
}

var (
	errProjectIDRequired    = errors.New("gcp project id is required")
	errDatasetRequired      = errors.New("bigquery dataset is required")
	errTableNameRequired    = errors.New("bigquery table name is required")
	errClientNotInitialized = errors.New("bigquery client not initialized")
)

// NewClient creates a BigQuery client and verifies the dataset and booking
// events table exist. service labels every query job it runs.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.BigQueryConfig, service string, logg *logger.Logger) (*Client, error) {
	projectID := strings.TrimSpace(gcp.ProjectID)
	if projectID == "" {
		return nil, errProjectIDRequired
	}
	cfg.Dataset = strings.TrimSpace(cfg.Dataset)
	if cfg.Dataset == "" {
		return nil, errDatasetRequired
	}
	cfg.BookingEventsTable = strings.TrimSpace(cfg.BookingEventsTable)
	if cfg.BookingEventsTable == "" {
		return nil, errTableNameRequired
	}

	bq, err := bigquery.NewClient(ctx, projectID, clientOptions(gcp)...)
	if err != nil {
		return nil, fmt.Errorf("creating bigquery client: %w", err)
	}
	if cfg.Location != "" {
		bq.Location = cfg.Location
	}

	c := &Client{
		client:  bq,
		dataset: bq.Dataset(cfg.Dataset),
		cfg:     cfg,
		labels:  jobLabels(service),
	}
	if err := c.Ping(ctx); err != nil {
		_ = bq.Close()
		return nil, err
	}

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"dataset": cfg.Dataset,
			"table":   cfg.BookingEventsTable,
		}), "bigquery client initialized")
	}
	return c, nil
}

func clientOptions(gcp config.GCPConfig) []option.ClientOption {
	switch {
	case strings.TrimSpace(gcp.CredentialsJSON) != "":
		return []option.ClientOption{option.WithCredentialsJSON([]byte(gcp.CredentialsJSON))}
	case strings.TrimSpace(gcp.ApplicationCredentials) != "":
		return []option.ClientOption{option.WithCredentialsFile(gcp.ApplicationCredentials)}
	}
	return nil
}

// jobLabels follows the BigQuery label rules: lowercase letters, digits,
// '-' and '_'.
func jobLabels(service string) map[string]string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return '_'
	}, strings.TrimSpace(service))
	if clean == "" {
		return nil
	}
	return map[string]string{"service": clean}
}

// Ping verifies the dataset and booking events table are reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.dataset == nil {
		return errClientNotInitialized
	}
	ctx, cancel := context.WithTimeout(ctx, metadataCheckTimeout)
	defer cancel()

	if _, err := c.dataset.Metadata(ctx); err != nil {
		return describeMetadataErr("dataset", c.cfg.Dataset, err)
	}
	if _, err := c.dataset.Table(c.cfg.BookingEventsTable).Metadata(ctx); err != nil {
		return describeMetadataErr("table", c.cfg.BookingEventsTable, err)
	}
	return nil
}

func describeMetadataErr(kind, name string, err error) error {
	if isNotFound(err) {
		return fmt.Errorf("%s %q does not exist", kind, name)
	}
	return fmt.Errorf("checking %s %q: %w", kind, name, err)
}

// InsertRows streams rows into table. Savers that carry an insert id get
// best-effort de-duplication from BigQuery on retries.
func (c *Client) InsertRows(ctx context.Context, table string, rows []bigquery.ValueSaver) error {
	if c == nil || c.dataset == nil {
		return errClientNotInitialized
	}
	table = strings.TrimSpace(table)
	if table == "" {
		return errTableNameRequired
	}
	if len(rows) == 0 {
		return nil
	}
	return c.dataset.Table(table).Inserter().Put(ctx, rows)
}

// Query runs a parameterised standard SQL query, capped by the configured
// bytes-billed limit.
func (c *Client) Query(ctx context.Context, sql string, params []bigquery.QueryParameter) (*bigquery.RowIterator, error) {
	if c == nil || c.client == nil {
		return nil, errClientNotInitialized
	}
	if strings.TrimSpace(sql) == "" {
		return nil, errors.New("sql query is required")
	}
	q := c.client.Query(sql)
	q.Parameters = params
	q.Labels = c.labels
	if c.cfg.MaxBytesBilled > 0 {
		q.MaxBytesBilled = c.cfg.MaxBytesBilled
	}
	return q.Read(ctx)
}

// BookingEventsTable is the table booking activity facts are streamed into.
func (c *Client) BookingEventsTable() string {
	if c == nil {
		return ""
	}
	return c.cfg.BookingEventsTable
}

// BookingEventsRef is the fully qualified, backquoted booking events table
// for use in SQL.
func (c *Client) BookingEventsRef() string {
	if c == nil || c.client == nil {
		return ""
	}
	return fmt.Sprintf("`%s.%s.%s`", c.client.Project(), c.cfg.Dataset, c.cfg.BookingEventsTable)
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}
