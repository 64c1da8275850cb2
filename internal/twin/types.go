package twin

// Feature is a named group of properties on a Thing (e.g. "Mixer", "Alarm",
// "WaterTank"). Property values are primitives: numbers, strings, or
// enum-like strings.
type Feature struct {
	Properties map[string]any `json:"properties"`
}

// Thing is the full remote representation of a digital twin as accepted and
// returned by the Ditto Things API.
type Thing struct {
	ThingID  string             `json:"thingId"`
	PolicyID string             `json:"policyId,omitempty"`
	Features map[string]Feature `json:"features,omitempty"`
}

// NewThing builds a Thing document for creation. Ditto requires a policy for
// every thing; the operator scripts reuse the thing ID as its policy ID.
func NewThing(thingID string, features map[string]Feature) Thing {
	return Thing{
		ThingID:  thingID,
		PolicyID: thingID,
		Features: features,
	}
}

// MergePatch is the partial-update payload sent with
// Content-Type: application/merge-patch+json. Only the fields present in the
// payload are modified on the remote twin.
type MergePatch struct {
	Features map[string]Feature `json:"features"`
}
