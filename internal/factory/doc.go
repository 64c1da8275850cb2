// Package factory declares the demo production-line twins and reconciles
// them against a Ditto instance.
//
// The mixer twin carries a Mixer feature (Temperature, RPM) and an Alarm
// feature (alarm_status). The water tank carries a WaterTank feature with a
// fill level; its Capacity property arrived later than the rest of the
// schema, so reconciliation back-fills it on twins created before it
// existed.
package factory
