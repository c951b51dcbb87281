package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/wirvsvirus/landingzone/datasource"
	"github.com/wirvsvirus/landingzone/events"
	"github.com/wirvsvirus/landingzone/observable"
	"github.com/wirvsvirus/landingzone/orchestrator"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

func writeBatchReport(w io.Writer, r *orchestrator.BatchResult, format string) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case outputTable, "":
	default:
		return fmt.Errorf("unknown output format %q, expected %s or %s", format, outputTable, outputJSON)
	}

	t := newTable()
	t.SetTitle("run " + r.RunID)
	t.AppendHeader(table.Row{"Dataset", "Kind", "Status", "Rows", "Location", "Error", "Duration"})
	for _, o := range r.Outcomes {
		var rows, location, errText any
		if o.Receipt != nil {
			rows = o.Receipt.Rows
			location = o.Receipt.Location
		}
		if !o.Succeeded() {
			errText = string(o.ErrorKind) + ": " + o.Error
		}
		t.AppendRow(table.Row{o.Dataset, o.Kind, o.Status, rows, location, errText, o.Duration.Round(time.Millisecond)})
	}
	t.AppendFooter(table.Row{"", "", fmt.Sprintf("%d/%d ok", len(r.Succeeded()), len(r.Outcomes))})
	return render(w, t)
}

func writeDatasets(w io.Writer, descriptors []datasource.Descriptor) error {
	t := newTable()
	t.AppendHeader(table.Row{"Name", "Kind", "URL", "Date columns", "Info"})
	for _, d := range descriptors {
		t.AppendRow(table.Row{d.Name, d.Kind, d.URL(), strings.Join(d.DateColumns, ", "), d.Info})
	}
	return render(w, t)
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Format = table.FormatOptions{
		Footer: text.FormatDefault,
		Header: text.FormatDefault,
		Row:    text.FormatDefault,
	}
	t.Style().Options.DrawBorder = false
	t.SuppressTrailingSpaces()
	return t
}

func render(w io.Writer, t table.Writer) error {
	_, err := io.WriteString(w, t.Render()+"\n")
	return err
}

// progressObserver prints one line per finished dataset with the number of
// datasets still pending in the run
func progressObserver(w io.Writer) observable.Observer {
	var (
		mu     sync.Mutex
		status *events.Status
	)
	return observable.ObserverFunc(func(_ context.Context, e events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		if started, ok := e.(*events.Started); ok {
			status = events.NewStatusEvent(started.RunId)
		}
		if status == nil {
			return nil
		}
		status.Update(e)

		d, ok := e.(*events.DatasetCompleted)
		if !ok {
			return nil
		}
		result := "ok"
		if !d.Succeeded() {
			result = d.ErrorKind
		}
		_, err := fmt.Fprintf(w, "%-28s %-16s %-8s %d pending\n", d.Dataset, result, d.Duration.Round(time.Millisecond), status.Pending())
		return err
	})
}
