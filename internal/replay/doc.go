// Package replay pushes recorded sensor readings from a CSV file into
// digital twins, simulating a live data feed.
//
// Two input shapes are supported and detected from the first line of the
// file, once, before the pass starts:
//
//   - Fixed format: six positional columns
//     (timestamp, component_type, component_id, property_name, value, data_type)
//     with no header row. This is the shape of the recorded factory data sets.
//   - Header format: any CSV with a header row naming recognisable
//     identifier/value/timestamp columns, with positional fallback.
//
// Fixed-format rows accumulate per-thing property state for the duration of
// the pass, so every merge-patch carries all properties seen so far for that
// thing's feature. Without this, a store that does not merge deeply per call
// would appear to drop sibling properties on every update.
//
// The detection predicate is deliberately the historical one: at least five
// comma-separated fields and a first field not starting with "thingid"
// (case-insensitive) means fixed format. A header file with five or more
// columns whose first header is, say, "id" is misclassified by this rule;
// that ambiguity is documented and preserved rather than silently patched.
package replay
