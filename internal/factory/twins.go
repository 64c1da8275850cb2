package factory

import (
	"context"
	"fmt"

	"github.com/NelisKaars/DigitalTwinAnalyzer/internal/ditto"
	"github.com/NelisKaars/DigitalTwinAnalyzer/internal/twin"
)

// Well-known feature and property names used across the commands.
const (
	MixerFeature  = "Mixer"
	AlarmFeature  = "Alarm"
	TankFeature   = "WaterTank"
	TempProperty  = "Temperature"
	RPMProperty   = "RPM"
	AlarmProperty = "alarm_status"
	LevelProperty = "Level"
	CapProperty   = "Capacity"
)

// Initial property values for freshly created twins.
const (
	initialTemperature = 100
	initialRPM         = 60
	initialAlarm       = "NORMAL"
	initialLevel       = 50

	// DefaultTankCapacity back-fills tanks created before the Capacity
	// property was added to the schema.
	DefaultTankCapacity = 100
)

// Logger defines the logging interface for reconciliation.
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

// MixerThing is the mixer's initial twin document.
func MixerThing(namespace string) twin.Thing {
	id := twin.EnsureNamespaced("Mixer", namespace)
	return twin.NewThing(id, map[string]twin.Feature{
		MixerFeature: {Properties: map[string]any{
			TempProperty: initialTemperature,
			RPMProperty:  initialRPM,
		}},
		AlarmFeature: {Properties: map[string]any{
			AlarmProperty: initialAlarm,
		}},
	})
}

// TankThing is the water tank's initial twin document.
func TankThing(namespace string) twin.Thing {
	id := twin.EnsureNamespaced("WaterTank", namespace)
	return twin.NewThing(id, map[string]twin.Feature{
		TankFeature: {Properties: map[string]any{
			LevelProperty: initialLevel,
			CapProperty:   DefaultTankCapacity,
		}},
	})
}

// API is the Ditto surface reconciliation needs.
type API interface {
	EnsureThing(ctx context.Context, thing twin.Thing) (ditto.ReconcileResult, error)
	EnsureFeatureProperty(ctx context.Context, thingID, featureID, property string, defaultValue any) error
}

// Reconciler converges the factory twins on a Ditto instance.
type Reconciler struct {
	api       API
	namespace string
	logger    Logger
}

// NewReconciler creates a Reconciler scoped to a namespace.
func NewReconciler(api API, namespace string) *Reconciler {
	if namespace == "" {
		namespace = twin.DefaultNamespace
	}
	return &Reconciler{
		api:       api,
		namespace: namespace,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the reconciler.
func (r *Reconciler) SetLogger(logger Logger) {
	r.logger = logger
}

// EnsureAll creates missing factory twins and back-fills schema gaps on
// existing ones. A failed back-fill is logged but not fatal; a failed
// create is.
func (r *Reconciler) EnsureAll(ctx context.Context) error {
	for _, thing := range []twin.Thing{MixerThing(r.namespace), TankThing(r.namespace)} {
		result, err := r.api.EnsureThing(ctx, thing)
		if err != nil {
			return fmt.Errorf("ensuring %s: %w", thing.ThingID, err)
		}
		r.logger.Info("twin reconciled", "thing_id", thing.ThingID, "result", result.String())
	}

	tankID := twin.EnsureNamespaced("WaterTank", r.namespace)
	if err := r.api.EnsureFeatureProperty(ctx, tankID, TankFeature, CapProperty, DefaultTankCapacity); err != nil {
		r.logger.Warn("capacity back-fill failed", "thing_id", tankID, "error", err)
	}

	return nil
}
