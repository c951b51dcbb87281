// Package athena runs SQL against the landing zone tables through Amazon
// Athena and returns the result set as a frame.
package athena

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"
	"github.com/wirvsvirus/landingzone/connection"
	"github.com/wirvsvirus/landingzone/frame"
)

const (
	defaultPollInterval = 100 * time.Millisecond
	stopTimeout         = 5 * time.Second
)

// API is the subset of the Athena client used by Client
type API interface {
	StartQueryExecution(ctx context.Context, params *athena.StartQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error)
	GetQueryExecution(ctx context.Context, params *athena.GetQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error)
	GetQueryResults(ctx context.Context, params *athena.GetQueryResultsInput, optFns ...func(*athena.Options)) (*athena.GetQueryResultsOutput, error)
	StopQueryExecution(ctx context.Context, params *athena.StopQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.StopQueryExecutionOutput, error)
}

type Client struct {
	api            API
	database       string
	outputLocation string
	workgroup      string
	pollInterval   time.Duration
}

type Option func(*Client)

func WithDatabase(database string) Option {
	return func(c *Client) {
		c.database = database
	}
}

// WithOutputLocation sets the s3 uri the query results are written to
func WithOutputLocation(location string) Option {
	return func(c *Client) {
		c.outputLocation = location
	}
}

func WithWorkgroup(workgroup string) Option {
	return func(c *Client) {
		c.workgroup = workgroup
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

func NewClient(api API, opts ...Option) *Client {
	c := &Client{
		api:          api,
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConnection builds a Client on top of the Athena client of conn
func NewFromConnection(ctx context.Context, conn *connection.AwsConnection, opts ...Option) (*Client, error) {
	api, err := conn.AthenaClient(ctx)
	if err != nil {
		return nil, err
	}
	return NewClient(api, opts...), nil
}

// Query starts the query, waits for it to finish and returns all result rows.
// A query ending FAILED or CANCELLED returns a *QueryError. If ctx is done
// while the query runs, the query is stopped.
func (c *Client) Query(ctx context.Context, sql string) (*frame.Frame, error) {
	id, err := c.start(ctx, sql)
	if err != nil {
		return nil, err
	}
	slog.Debug("athena query started", "query_execution_id", id)

	if err := c.wait(ctx, id); err != nil {
		return nil, err
	}
	return c.results(ctx, id)
}

func (c *Client) start(ctx context.Context, sql string) (string, error) {
	input := &athena.StartQueryExecutionInput{
		QueryString: aws.String(sql),
	}
	if c.database != "" {
		input.QueryExecutionContext = &types.QueryExecutionContext{Database: aws.String(c.database)}
	}
	if c.outputLocation != "" {
		input.ResultConfiguration = &types.ResultConfiguration{OutputLocation: aws.String(c.outputLocation)}
	}
	if c.workgroup != "" {
		input.WorkGroup = aws.String(c.workgroup)
	}
	out, err := c.api.StartQueryExecution(ctx, input)
	if err != nil {
		return "", fmt.Errorf("error starting query: %w", err)
	}
	if out.QueryExecutionId == nil {
		return "", errors.New("athena returned no query execution id")
	}
	return *out.QueryExecutionId, nil
}

func (c *Client) wait(ctx context.Context, id string) error {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		out, err := c.api.GetQueryExecution(ctx, &athena.GetQueryExecutionInput{QueryExecutionId: aws.String(id)})
		if err != nil {
			if ctx.Err() != nil {
				c.stop(ctx, id)
				return ctx.Err()
			}
			return fmt.Errorf("error getting state of query %s: %w", id, err)
		}
		state, reason := executionState(out.QueryExecution)
		switch state {
		case types.QueryExecutionStateSucceeded:
			return nil
		case types.QueryExecutionStateFailed, types.QueryExecutionStateCancelled:
			return &QueryError{ID: id, State: string(state), Reason: reason}
		}

		select {
		case <-ctx.Done():
			c.stop(ctx, id)
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// stop cancels a query whose caller gave up, errors are only logged
func (c *Client) stop(ctx context.Context, id string) {
	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), stopTimeout)
	defer cancel()
	if _, err := c.api.StopQueryExecution(stopCtx, &athena.StopQueryExecutionInput{QueryExecutionId: aws.String(id)}); err != nil {
		slog.Warn("failed to stop athena query", "query_execution_id", id, "error", err)
	}
}

func (c *Client) results(ctx context.Context, id string) (*frame.Frame, error) {
	var (
		res       *frame.Frame
		numeric   []string
		nextToken *string
	)
	for page := 0; ; page++ {
		out, err := c.api.GetQueryResults(ctx, &athena.GetQueryResultsInput{
			QueryExecutionId: aws.String(id),
			NextToken:        nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("error getting results of query %s: %w", id, err)
		}
		if out.ResultSet == nil {
			break
		}
		rows := out.ResultSet.Rows
		if res == nil {
			var columns []string
			columns, numeric = columnInfo(out.ResultSet.ResultSetMetadata)
			if res, err = frame.New(columns...); err != nil {
				return nil, fmt.Errorf("invalid result header of query %s: %w", id, err)
			}
			// the first row of a SELECT result repeats the header
			if page == 0 && len(rows) > 0 && slices.Equal(rowValues(rows[0]), columns) {
				rows = rows[1:]
			}
		}
		for _, r := range rows {
			if err := res.AppendRow(toRow(res.Columns(), r)); err != nil {
				return nil, err
			}
		}
		if out.NextToken == nil || *out.NextToken == "" {
			break
		}
		nextToken = out.NextToken
	}
	if res == nil {
		return frame.New()
	}
	for _, col := range numeric {
		if err := typeNumeric(res, col); err != nil {
			return nil, fmt.Errorf("column %s of query %s: %w", col, id, err)
		}
	}
	return res, nil
}

func executionState(e *types.QueryExecution) (types.QueryExecutionState, string) {
	if e == nil || e.Status == nil {
		return types.QueryExecutionStateQueued, ""
	}
	return e.Status.State, aws.ToString(e.Status.StateChangeReason)
}

func columnInfo(m *types.ResultSetMetadata) (columns, numeric []string) {
	if m == nil {
		return nil, nil
	}
	for _, ci := range m.ColumnInfo {
		name := aws.ToString(ci.Name)
		columns = append(columns, name)
		switch aws.ToString(ci.Type) {
		case "tinyint", "smallint", "integer", "bigint", "float", "real", "double", "decimal":
			numeric = append(numeric, name)
		}
	}
	return columns, numeric
}

func rowValues(r types.Row) []string {
	res := make([]string, len(r.Data))
	for i, d := range r.Data {
		res[i] = aws.ToString(d.VarCharValue)
	}
	return res
}

func toRow(columns []string, r types.Row) frame.Row {
	res := make(frame.Row, len(columns))
	for i, c := range columns {
		if i < len(r.Data) && r.Data[i].VarCharValue != nil {
			res[c] = *r.Data[i].VarCharValue
		}
	}
	return res
}

func typeNumeric(f *frame.Frame, column string) error {
	err := f.MapColumn(column, func(v any) (any, error) {
		s, ok := v.(string)
		if !ok {
			return v, nil
		}
		return strconv.ParseFloat(s, 64)
	})
	if err != nil {
		return err
	}
	return f.SetColumnType(column, frame.Number)
}
