package replay

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/NelisKaars/DigitalTwinAnalyzer/internal/twin"
)

// Errors reported by a replay pass.
var (
	// ErrEmptyFile means the CSV contained no data at all.
	ErrEmptyFile = errors.New("replay: csv file is empty")
)

// timestampLayout is the default timestamp written when the input carries
// none: current UTC time in ISO-8601 with a Z suffix.
const timestampLayout = "2006-01-02T15:04:05Z"

// headerFeatureID is the feature every header-format row writes under.
const headerFeatureID = "sensor"

// TwinAPI is the slice of the Ditto client the engine uses. Satisfied by
// *ditto.Client.
type TwinAPI interface {
	PatchThing(ctx context.Context, thingID string, patch twin.MergePatch) (int, error)
	CreateThing(ctx context.Context, thing twin.Thing) error
}

// Mirror archives replayed values into a secondary store. Optional.
type Mirror interface {
	WriteReplayValue(thingID, featureID, property string, value float64)
}

// Logger defines the logging interface for the engine.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Options configure a replay pass.
type Options struct {
	// Namespace is prepended to thing identifiers that arrive without one.
	Namespace string

	// Interval is the fixed delay after every row, regardless of outcome.
	Interval time.Duration
}

// Summary reports a completed pass.
type Summary struct {
	// Rows is the number of data rows processed.
	Rows int

	// Successes counts rows whose update reached the store, including rows
	// whose 404 fallback creation succeeded.
	Successes int
}

// thingState is the per-thing accumulator for fixed-format input. It lives
// for a single pass; a re-run starts fresh.
type thingState struct {
	componentType string
	properties    map[string]any
}

// Engine replays a CSV file against the Things API, one row at a time.
//
// The engine is single-threaded: rows are processed strictly in file order,
// each request blocks until its response, and the per-thing accumulator is
// owned by the one goroutine running the pass.
type Engine struct {
	api    TwinAPI
	opts   Options
	logger Logger
	mirror Mirror

	// sleep is the pacing injection point for tests.
	sleep func(d time.Duration)

	// now supplies default timestamps for rows without one.
	now func() time.Time
}

// New creates an Engine. The mirror may be nil.
func New(api TwinAPI, opts Options, mirror Mirror) *Engine {
	if opts.Namespace == "" {
		opts.Namespace = twin.DefaultNamespace
	}
	return &Engine{
		api:    api,
		opts:   opts,
		logger: noopLogger{},
		mirror: mirror,
		sleep:  time.Sleep,
		now:    time.Now,
	}
}

// SetLogger sets the logger for the engine.
func (e *Engine) SetLogger(logger Logger) {
	e.logger = logger
}

// Run replays the file at path. A missing or empty file aborts the whole
// pass; a failing row is logged, tallied, and the pass continues.
func (e *Engine) Run(ctx context.Context, path string) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, fmt.Errorf("replay: opening csv: %w", err)
	}
	defer f.Close()

	// Sniff the first line for format detection, then rewind: the fixed
	// format has no header row, so its first line is already data.
	firstLine, err := readFirstLine(f)
	if err != nil {
		return Summary{}, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Summary{}, fmt.Errorf("replay: rewinding csv: %w", err)
	}

	format := DetectFormat(firstLine)
	e.logger.Info("replaying csv",
		"path", path,
		"format", format.String(),
		"namespace", e.opts.Namespace,
		"interval", e.opts.Interval,
	)

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // rows may be ragged; roles fall back to defaults
	reader.TrimLeadingSpace = true

	var columns ColumnMap
	if format == FormatHeader {
		headers, err := reader.Read()
		if err != nil {
			return Summary{}, fmt.Errorf("replay: reading header row: %w", err)
		}
		columns = ResolveColumns(headers)
		e.logger.Info("resolved columns",
			"thing_id", columnName(headers, columns.ThingID),
			"value", columnName(headers, columns.Value),
			"timestamp", columnName(headers, columns.Timestamp),
		)
	}

	summary := Summary{}
	accumulators := make(map[string]*thingState)

	for {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			e.logger.Warn("skipping malformed row", "row", summary.Rows+1, "error", err)
			continue
		}

		summary.Rows++

		var thingID string
		var patch twin.MergePatch
		if format == FormatFixed {
			thingID, patch = e.fixedRowPatch(record, accumulators)
		} else {
			thingID, patch = e.headerRowPatch(record, columns)
		}

		if e.sendRow(ctx, thingID, patch) {
			summary.Successes++
		}

		// Fixed pacing, not adaptive: every row costs one interval.
		e.sleep(e.opts.Interval)
	}

	if summary.Rows == 0 {
		return summary, ErrEmptyFile
	}

	e.logger.Info("replay complete",
		"rows", summary.Rows,
		"successes", summary.Successes,
	)
	return summary, nil
}

// fixedRowPatch folds a fixed-format row into the per-thing accumulator and
// builds a patch carrying every property seen so far for that thing.
func (e *Engine) fixedRowPatch(record []string, accumulators map[string]*thingState) (string, twin.MergePatch) {
	rawID := field(record, fixedColComponentID, "default-thing")
	thingID := twin.EnsureNamespaced(rawID, e.opts.Namespace)

	componentType := field(record, fixedColComponentType, "Unknown")
	property := field(record, fixedColPropertyName, "value")
	value := field(record, fixedColValue, "0")

	state, ok := accumulators[thingID]
	if !ok {
		state = &thingState{
			componentType: componentType,
			properties:    make(map[string]any),
		}
		accumulators[thingID] = state
	}
	state.properties[property] = value

	e.mirrorValue(thingID, state.componentType, property, value)

	// The patch intentionally carries ALL accumulated properties, not just
	// the one this row updated; see the package comment.
	return thingID, twin.MergePatch{
		Features: map[string]twin.Feature{
			state.componentType: {Properties: copyProperties(state.properties)},
		},
	}
}

// headerRowPatch builds the fixed-shape sensor patch for a header-format row.
func (e *Engine) headerRowPatch(record []string, columns ColumnMap) (string, twin.MergePatch) {
	rawID := field(record, columns.ThingID, "default-thing")
	thingID := twin.EnsureNamespaced(rawID, e.opts.Namespace)

	value := field(record, columns.Value, "0")
	timestamp := field(record, columns.Timestamp, e.now().UTC().Format(timestampLayout))

	e.mirrorValue(thingID, headerFeatureID, "value", value)

	return thingID, twin.MergePatch{
		Features: map[string]twin.Feature{
			headerFeatureID: {
				Properties: map[string]any{
					"value":     value,
					"timestamp": timestamp,
				},
			},
		},
	}
}

// sendRow delivers one patch, falling back to a one-shot creation when the
// twin does not exist yet. It reports whether the row counts as a success.
func (e *Engine) sendRow(ctx context.Context, thingID string, patch twin.MergePatch) bool {
	status, err := e.api.PatchThing(ctx, thingID, patch)
	if err != nil {
		e.logger.Error("update failed", "thing_id", thingID, "error", err)
		return false
	}

	switch {
	case patchSucceeded(status):
		e.logger.Info("updated", "thing_id", thingID, "status", status)
		return true
	case status == http.StatusNotFound:
		// Thing not created yet: try a one-shot full-document creation with
		// the same feature payload. The fallback counts toward the success
		// tally only if the creation itself succeeds.
		e.logger.Info("thing not found, creating", "thing_id", thingID)
		if err := e.api.CreateThing(ctx, twin.NewThing(thingID, patch.Features)); err != nil {
			e.logger.Error("creation fallback failed", "thing_id", thingID, "error", err)
			return false
		}
		e.logger.Info("created", "thing_id", thingID)
		return true
	default:
		e.logger.Error("update rejected", "thing_id", thingID, "status", status)
		return false
	}
}

// mirrorValue forwards numeric values to the archive mirror, when present.
// Non-numeric values (enum-like strings) are not archived.
func (e *Engine) mirrorValue(thingID, featureID, property, raw string) {
	if e.mirror == nil {
		return
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return
	}
	e.mirror.WriteReplayValue(thingID, featureID, property, v)
}

// patchSucceeded reports whether a merge-patch status counts as success.
func patchSucceeded(status int) bool {
	return status == http.StatusOK || status == http.StatusCreated || status == http.StatusNoContent
}

// copyProperties snapshots the accumulator so later rows do not mutate a
// payload already handed to the API layer.
func copyProperties(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}

// readFirstLine returns the first line of the file without its line ending.
func readFirstLine(f *os.File) (string, error) {
	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("replay: reading csv: %w", err)
		}
		return "", ErrEmptyFile
	}
	return scanner.Text(), nil
}

// columnName renders a resolved column for logging.
func columnName(headers []string, index int) string {
	if index == unresolved || index >= len(headers) {
		return "(none)"
	}
	return headers[index]
}
