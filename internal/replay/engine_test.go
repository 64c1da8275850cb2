package replay

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/NelisKaars/DigitalTwinAnalyzer/internal/twin"
)

// fakeAPI records patches and creations and replies from a script.
type fakeAPI struct {
	patches     []recordedPatch
	creations   []twin.Thing
	patchStatus func(call int, thingID string) int
	createErr   error
}

type recordedPatch struct {
	thingID string
	patch   twin.MergePatch
}

func (f *fakeAPI) PatchThing(_ context.Context, thingID string, patch twin.MergePatch) (int, error) {
	f.patches = append(f.patches, recordedPatch{thingID: thingID, patch: patch})
	if f.patchStatus == nil {
		return http.StatusNoContent, nil
	}
	return f.patchStatus(len(f.patches), thingID), nil
}

func (f *fakeAPI) CreateThing(_ context.Context, thing twin.Thing) error {
	f.creations = append(f.creations, thing)
	return f.createErr
}

func newTestEngine(api TwinAPI) *Engine {
	e := New(api, Options{Namespace: "org.eclipse.ditto"}, nil)
	e.sleep = func(time.Duration) {}
	return e
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing test csv: %v", err)
	}
	return path
}

func TestRun_FixedFormatAccumulatesProperties(t *testing.T) {
	csv := "t1,Mixer,Mixer_0,Temperature,105,int\n" +
		"t2,Mixer,Mixer_0,RPM,62,int\n"

	api := &fakeAPI{}
	engine := newTestEngine(api)

	summary, err := engine.Run(context.Background(), writeCSV(t, csv))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if summary.Rows != 2 || summary.Successes != 2 {
		t.Errorf("summary = %+v, want 2 rows, 2 successes", summary)
	}
	if len(api.patches) != 2 {
		t.Fatalf("patch count = %d, want 2", len(api.patches))
	}

	// The second patch must carry BOTH accumulated properties for Mixer_0.
	second := api.patches[1]
	if second.thingID != "org.eclipse.ditto:Mixer_0" {
		t.Errorf("second patch thing = %q, want normalised Mixer_0", second.thingID)
	}
	props := second.patch.Features["Mixer"].Properties
	want := map[string]any{"Temperature": "105", "RPM": "62"}
	if !reflect.DeepEqual(props, want) {
		t.Errorf("accumulated properties = %v, want %v", props, want)
	}
}

func TestRun_FixedFormatSeparateThingsDoNotShareState(t *testing.T) {
	csv := "t1,Mixer,Mixer_0,Temperature,105,int\n" +
		"t2,Alarm,Alarm_0,alarm_status,ACTIVE,string\n"

	api := &fakeAPI{}
	engine := newTestEngine(api)

	if _, err := engine.Run(context.Background(), writeCSV(t, csv)); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	alarm := api.patches[1]
	if _, has := alarm.patch.Features["Mixer"]; has {
		t.Error("Alarm_0 patch leaked Mixer feature state")
	}
	props := alarm.patch.Features["Alarm"].Properties
	if props["alarm_status"] != "ACTIVE" {
		t.Errorf("alarm properties = %v, want alarm_status ACTIVE", props)
	}
}

func TestRun_HeaderFormatWritesSensorFeature(t *testing.T) {
	csv := "thingId,value,timestamp\n" +
		"factory-sensor,21.5,2026-01-02T03:04:05Z\n"

	api := &fakeAPI{}
	engine := newTestEngine(api)

	summary, err := engine.Run(context.Background(), writeCSV(t, csv))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if summary.Rows != 1 {
		t.Errorf("rows = %d, want 1 (header row is not data)", summary.Rows)
	}

	patch := api.patches[0]
	if patch.thingID != "org.eclipse.ditto:factory-sensor" {
		t.Errorf("thing = %q, want namespaced factory-sensor", patch.thingID)
	}
	props := patch.patch.Features["sensor"].Properties
	want := map[string]any{"value": "21.5", "timestamp": "2026-01-02T03:04:05Z"}
	if !reflect.DeepEqual(props, want) {
		t.Errorf("sensor properties = %v, want %v", props, want)
	}
}

func TestRun_HeaderFormatDefaultTimestamp(t *testing.T) {
	csv := "thingId,value\n" +
		"s1,42\n"

	api := &fakeAPI{}
	engine := newTestEngine(api)
	fixed := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	engine.now = func() time.Time { return fixed }

	if _, err := engine.Run(context.Background(), writeCSV(t, csv)); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	props := api.patches[0].patch.Features["sensor"].Properties
	if props["timestamp"] != "2026-03-04T05:06:07Z" {
		t.Errorf("default timestamp = %v, want ISO-8601 Z of injected clock", props["timestamp"])
	}
}

func TestRun_NotFoundTriggersSingleCreation(t *testing.T) {
	csv := "t1,Mixer,Mixer_0,Temperature,105,int\n"

	api := &fakeAPI{
		patchStatus: func(int, string) int { return http.StatusNotFound },
	}
	engine := newTestEngine(api)

	summary, err := engine.Run(context.Background(), writeCSV(t, csv))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(api.creations) != 1 {
		t.Fatalf("creation count = %d, want exactly 1", len(api.creations))
	}
	created := api.creations[0]
	if created.ThingID != "org.eclipse.ditto:Mixer_0" {
		t.Errorf("created thing = %q", created.ThingID)
	}
	if created.PolicyID != created.ThingID {
		t.Errorf("policy = %q, want same as thing id", created.PolicyID)
	}
	if created.Features["Mixer"].Properties["Temperature"] != "105" {
		t.Errorf("created features = %v, want patch payload carried over", created.Features)
	}
	if summary.Successes != 1 {
		t.Errorf("successes = %d, want 1 (successful fallback counts)", summary.Successes)
	}
}

func TestRun_FailedCreationDoesNotCountAsSuccess(t *testing.T) {
	csv := "t1,Mixer,Mixer_0,Temperature,105,int\n"

	api := &fakeAPI{
		patchStatus: func(int, string) int { return http.StatusNotFound },
		createErr:   errors.New("policy rejected"),
	}
	engine := newTestEngine(api)

	summary, err := engine.Run(context.Background(), writeCSV(t, csv))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if summary.Successes != 0 {
		t.Errorf("successes = %d, want 0", summary.Successes)
	}
	if len(api.creations) != 1 {
		t.Errorf("creation attempts = %d, want 1 (one-shot, no retry)", len(api.creations))
	}
}

func TestRun_RejectedRowsDoNotHaltThePass(t *testing.T) {
	csv := "t1,Mixer,Mixer_0,Temperature,105,int\n" +
		"t2,Mixer,Mixer_0,RPM,62,int\n" +
		"t3,Mixer,Mixer_0,Temperature,106,int\n"

	api := &fakeAPI{
		patchStatus: func(call int, _ string) int {
			if call == 2 {
				return http.StatusForbidden
			}
			return http.StatusNoContent
		},
	}
	engine := newTestEngine(api)

	summary, err := engine.Run(context.Background(), writeCSV(t, csv))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if summary.Rows != 3 {
		t.Errorf("rows = %d, want 3", summary.Rows)
	}
	if summary.Successes != 2 {
		t.Errorf("successes = %d, want 2", summary.Successes)
	}
}

func TestRun_SleepsAfterEveryRow(t *testing.T) {
	csv := "t1,Mixer,Mixer_0,Temperature,105,int\n" +
		"t2,Mixer,Mixer_0,RPM,62,int\n"

	api := &fakeAPI{
		patchStatus: func(call int, _ string) int {
			if call == 1 {
				return http.StatusForbidden // failure still costs one interval
			}
			return http.StatusNoContent
		},
	}
	engine := New(api, Options{Namespace: "ns", Interval: 10 * time.Millisecond}, nil)
	var sleeps int
	engine.sleep = func(d time.Duration) {
		if d != 10*time.Millisecond {
			t.Errorf("sleep = %v, want 10ms", d)
		}
		sleeps++
	}

	if _, err := engine.Run(context.Background(), writeCSV(t, csv)); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if sleeps != 2 {
		t.Errorf("sleeps = %d, want one per row", sleeps)
	}
}

func TestRun_MissingFile(t *testing.T) {
	engine := newTestEngine(&fakeAPI{})
	if _, err := engine.Run(context.Background(), filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("Run() expected error for missing file, got nil")
	}
}

func TestRun_EmptyFile(t *testing.T) {
	engine := newTestEngine(&fakeAPI{})
	_, err := engine.Run(context.Background(), writeCSV(t, ""))
	if !errors.Is(err, ErrEmptyFile) {
		t.Errorf("Run() error = %v, want ErrEmptyFile", err)
	}
}

func TestRun_HeaderOnlyFileIsEmpty(t *testing.T) {
	engine := newTestEngine(&fakeAPI{})
	_, err := engine.Run(context.Background(), writeCSV(t, "thingId,value,timestamp\n"))
	if !errors.Is(err, ErrEmptyFile) {
		t.Errorf("Run() error = %v, want ErrEmptyFile for header-only file", err)
	}
}

// mirrorRecorder captures archived values.
type mirrorRecorder struct {
	points []string
}

func (m *mirrorRecorder) WriteReplayValue(thingID, featureID, property string, value float64) {
	m.points = append(m.points, thingID+"/"+featureID+"/"+property)
	_ = value
}

func TestRun_MirrorReceivesNumericValuesOnly(t *testing.T) {
	csv := "t1,Mixer,Mixer_0,Temperature,105,int\n" +
		"t2,Alarm,Alarm_0,alarm_status,ACTIVE,string\n"

	api := &fakeAPI{}
	mirror := &mirrorRecorder{}
	engine := New(api, Options{Namespace: "ns"}, mirror)
	engine.sleep = func(time.Duration) {}

	if _, err := engine.Run(context.Background(), writeCSV(t, csv)); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	want := []string{"ns:Mixer_0/Mixer/Temperature"}
	if !reflect.DeepEqual(mirror.points, want) {
		t.Errorf("mirrored points = %v, want %v (ACTIVE is not numeric)", mirror.points, want)
	}
}
