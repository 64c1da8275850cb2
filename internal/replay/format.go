package replay

import (
	"strings"
)

// Format is the detected shape of a CSV input file. It is decided once per
// file and carried explicitly through the pass, never re-inspected per row.
type Format int

const (
	// FormatHeader is a CSV with a declared header row.
	FormatHeader Format = iota

	// FormatFixed is the header-less six-column component event shape.
	FormatFixed
)

// String returns a human-readable form for logging.
func (f Format) String() string {
	switch f {
	case FormatFixed:
		return "fixed"
	case FormatHeader:
		return "header"
	default:
		return "unknown"
	}
}

// Positional columns of the fixed format.
const (
	fixedColTimestamp = iota
	fixedColComponentType
	fixedColComponentID
	fixedColPropertyName
	fixedColValue
	fixedColDataType
)

// fixedColumnCount is how many columns a complete fixed-format row has.
const fixedColumnCount = 6

// minFixedFields is the detection threshold: a first line with at least this
// many comma-separated fields (and no "thingid" header token) is classified
// as fixed format.
const minFixedFields = 5

// DetectFormat classifies a file by its first line.
//
// The predicate is exact by contract: >= 5 comma-separated fields AND a line
// not starting with "thingid" (case-insensitive) means fixed format;
// everything else is header format.
func DetectFormat(firstLine string) Format {
	fields := strings.Split(firstLine, ",")
	if len(fields) >= minFixedFields && !strings.HasPrefix(strings.ToLower(firstLine), "thingid") {
		return FormatFixed
	}
	return FormatHeader
}

// Candidate header names per role, in priority order. Matching is
// case-sensitive and exact.
var (
	thingIDCandidates   = []string{"thingId", "thing_id", "id"}
	valueCandidates     = []string{"value", "sensor_value", "measurement"}
	timestampCandidates = []string{"timestamp", "time", "date"}
)

// unresolved marks a column role with no usable source column.
const unresolved = -1

// ColumnMap records which header-format columns feed each role. A role of
// `unresolved` has no source column and downstream processing uses a literal
// default for it.
type ColumnMap struct {
	ThingID   int
	Value     int
	Timestamp int
}

// ResolveColumns maps the header row onto the identifier/value/timestamp
// roles.
//
// Each role takes the first exact match from its candidate list. Roles still
// unresolved afterwards fall back positionally (identifier to column 0,
// value to column 1, timestamp to column 2), but only when the header row
// actually has that many columns.
func ResolveColumns(headers []string) ColumnMap {
	cm := ColumnMap{
		ThingID:   findColumn(headers, thingIDCandidates),
		Value:     findColumn(headers, valueCandidates),
		Timestamp: findColumn(headers, timestampCandidates),
	}

	if cm.ThingID == unresolved && len(headers) > 0 {
		cm.ThingID = 0
	}
	if cm.Value == unresolved && len(headers) > 1 {
		cm.Value = 1
	}
	if cm.Timestamp == unresolved && len(headers) > 2 {
		cm.Timestamp = 2
	}

	return cm
}

// findColumn returns the index of the first candidate present in headers,
// or unresolved.
func findColumn(headers []string, candidates []string) int {
	for _, candidate := range candidates {
		for i, h := range headers {
			if h == candidate {
				return i
			}
		}
	}
	return unresolved
}

// field safely extracts a column from a record, returning fallback when the
// role is unresolved, the record is short, or the cell is empty.
func field(record []string, index int, fallback string) string {
	if index == unresolved || index >= len(record) {
		return fallback
	}
	if record[index] == "" {
		return fallback
	}
	return record[index]
}
