package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wirvsvirus/landingzone/datasource"
	"github.com/wirvsvirus/landingzone/fetch"
	"github.com/wirvsvirus/landingzone/frame"
	"github.com/wirvsvirus/landingzone/sink"
)

type recordingWriter struct {
	mu      sync.Mutex
	written []string
	err     error
}

func (w *recordingWriter) Write(_ context.Context, f *frame.Frame, kind datasource.Kind, name string) (*sink.Receipt, error) {
	if w.err != nil {
		return nil, &sink.WriteError{Bucket: "landing", Key: name, Err: w.err}
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.written = append(w.written, name)
	return &sink.Receipt{Bucket: "landing", Key: sink.KindScopedKey(kind, name), Rows: f.Len()}, nil
}

type funcPipeline struct {
	name string
	fn   func(ctx context.Context) (*frame.Frame, error)
}

func (p funcPipeline) Name() string          { return p.name }
func (p funcPipeline) Kind() datasource.Kind { return datasource.InfectionCases }
func (p funcPipeline) GetData(ctx context.Context) (*frame.Frame, error) {
	return p.fn(ctx)
}

func emptyFrame(context.Context) (*frame.Frame, error) {
	return frame.New("a")
}

func TestRun_FetchFailureDoesNotStopBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken.csv" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("Bundesland,Faelle\nHamburg,2231\n"))
	}))
	defer srv.Close()

	client := fetch.NewClient(fetch.WithRetries(0))
	broken, err := datasource.NewDelimitedTextSource(datasource.Descriptor{
		Name: "broken", Kind: datasource.InfectionCases, BaseURL: srv.URL, Endpoint: "broken.csv",
	}, client)
	require.NoError(t, err)
	working, err := datasource.NewDelimitedTextSource(datasource.Descriptor{
		Name: "working", Kind: datasource.InfectionCases, BaseURL: srv.URL, Endpoint: "working.csv",
	}, client)
	require.NoError(t, err)

	writer := &recordingWriter{}
	o, err := New(FromDataSources([]*datasource.DataSource{broken, working}), writer)
	require.NoError(t, err)

	result := o.Run(context.Background())

	require.Len(t, result.Outcomes, 2)
	assert.NotEmpty(t, result.RunID)
	require.Len(t, result.Failed(), 1)
	require.Len(t, result.Succeeded(), 1)

	failed := result.Outcomes[0]
	assert.Equal(t, "broken", failed.Dataset)
	assert.Equal(t, StatusFailure, failed.Status)
	assert.Equal(t, KindFetch, failed.ErrorKind)
	var fetchErr *datasource.FetchError
	require.ErrorAs(t, failed.Err(), &fetchErr)
	assert.Equal(t, http.StatusInternalServerError, fetchErr.StatusCode)

	succeeded := result.Outcomes[1]
	assert.Equal(t, "working", succeeded.Dataset)
	require.NotNil(t, succeeded.Receipt)
	assert.Equal(t, "infection_cases/working/data.csv", succeeded.Receipt.Key)
	assert.Equal(t, 1, succeeded.Receipt.Rows)
	assert.Equal(t, []string{"working"}, writer.written)

	assert.ErrorContains(t, result.Err(), "broken")
}

func TestRun_OutcomesInRegistryOrder(t *testing.T) {
	var pipelines []Pipeline
	for i := 0; i < 10; i++ {
		delay := time.Duration(10-i) * time.Millisecond
		pipelines = append(pipelines, funcPipeline{name: fmt.Sprintf("ds%d", i), fn: func(ctx context.Context) (*frame.Frame, error) {
			time.Sleep(delay)
			return emptyFrame(ctx)
		}})
	}
	o, err := New(pipelines, &recordingWriter{}, WithConcurrency(4))
	require.NoError(t, err)

	result := o.Run(context.Background())

	require.Len(t, result.Outcomes, 10)
	for i, outcome := range result.Outcomes {
		assert.Equal(t, fmt.Sprintf("ds%d", i), outcome.Dataset)
		assert.True(t, outcome.Succeeded())
	}
	assert.NoError(t, result.Err())
}

func TestRun_PanicIsInternalError(t *testing.T) {
	pipelines := []Pipeline{
		funcPipeline{name: "panics", fn: func(context.Context) (*frame.Frame, error) {
			panic("index out of range")
		}},
		funcPipeline{name: "fine", fn: emptyFrame},
	}
	o, err := New(pipelines, &recordingWriter{})
	require.NoError(t, err)

	result := o.Run(context.Background())

	assert.Equal(t, KindInternal, result.Outcomes[0].ErrorKind)
	assert.Contains(t, result.Outcomes[0].Error, "index out of range")
	assert.True(t, result.Outcomes[1].Succeeded())
}

func TestRun_DatasetTimeout(t *testing.T) {
	pipelines := []Pipeline{
		funcPipeline{name: "stuck", fn: func(ctx context.Context) (*frame.Frame, error) {
			<-ctx.Done()
			return nil, &datasource.FetchError{Dataset: "stuck", URL: "u", Err: ctx.Err()}
		}},
		funcPipeline{name: "fast", fn: emptyFrame},
	}
	o, err := New(pipelines, &recordingWriter{}, WithDatasetTimeout(20*time.Millisecond))
	require.NoError(t, err)

	result := o.Run(context.Background())

	assert.Equal(t, KindFetch, result.Outcomes[0].ErrorKind)
	assert.True(t, result.Outcomes[1].Succeeded())
}

func TestRun_SlowFetchIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(300 * time.Millisecond):
		case <-r.Context().Done():
			return
		}
		_, _ = w.Write([]byte("Bundesland,Faelle\nHamburg,2231\n"))
	}))
	defer srv.Close()

	tests := []struct {
		name      string
		fetchOpts []fetch.Option
		runOpts   []Option
	}{
		{
			name:      "client timeout",
			fetchOpts: []fetch.Option{fetch.WithRetries(0), fetch.WithTimeout(50 * time.Millisecond)},
		},
		{
			name:      "dataset timeout",
			fetchOpts: []fetch.Option{fetch.WithRetries(0)},
			runOpts:   []Option{WithDatasetTimeout(50 * time.Millisecond)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slow, err := datasource.NewDelimitedTextSource(datasource.Descriptor{
				Name: "slow", Kind: datasource.InfectionCases, BaseURL: srv.URL, Endpoint: "slow.csv",
			}, fetch.NewClient(tt.fetchOpts...))
			require.NoError(t, err)

			o, err := New(FromDataSources([]*datasource.DataSource{slow}), &recordingWriter{}, tt.runOpts...)
			require.NoError(t, err)

			result := o.Run(context.Background())

			require.Len(t, result.Outcomes, 1)
			assert.Equal(t, KindFetch, result.Outcomes[0].ErrorKind)
			var fetchErr *datasource.FetchError
			assert.ErrorAs(t, result.Outcomes[0].Err(), &fetchErr)
		})
	}
}

func TestRun_WriteError(t *testing.T) {
	o, err := New([]Pipeline{funcPipeline{name: "ds", fn: emptyFrame}}, &recordingWriter{err: errors.New("denied")})
	require.NoError(t, err)

	result := o.Run(context.Background())

	assert.Equal(t, KindWrite, result.Outcomes[0].ErrorKind)
	assert.Nil(t, result.Outcomes[0].Receipt)
}

func TestRun_CanceledBatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	o, err := New([]Pipeline{funcPipeline{name: "ds", fn: emptyFrame}}, &recordingWriter{})
	require.NoError(t, err)

	result := o.Run(ctx)

	assert.Equal(t, KindCanceled, result.Outcomes[0].ErrorKind)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{&datasource.FetchError{Err: errors.New("x")}, KindFetch},
		{&datasource.SchemaError{Stage: datasource.StageFlatten}, KindSchema},
		{&datasource.DateFormatError{Column: "c"}, KindDateFormat},
		{&sink.WriteError{Err: errors.New("x")}, KindWrite},
		{fmt.Errorf("wrapped: %w", context.Canceled), KindCanceled},
		{&datasource.FetchError{Err: context.DeadlineExceeded}, KindFetch},
		{&sink.WriteError{Err: context.Canceled}, KindWrite},
		{&PanicError{Err: context.Canceled}, KindInternal},
		{errors.New("boom"), KindInternal},
	}
	for _, tt := range tests {
		t.Run(string(tt.want)+"/"+tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)
	_, err = New(nil, &recordingWriter{}, WithConcurrency(0))
	assert.Error(t, err)
	_, err = New(nil, &recordingWriter{}, WithDatasetTimeout(-time.Second))
	assert.Error(t, err)
}
