package ditto

import (
	"context"
	"fmt"
	"net/http"

	"github.com/NelisKaars/DigitalTwinAnalyzer/internal/twin"
)

// ReconcileResult reports what EnsureThing did.
type ReconcileResult int

const (
	// Created means the twin was absent and has been written in full.
	Created ReconcileResult = iota

	// AlreadyExists means the twin was present and left untouched.
	AlreadyExists
)

// String returns a human-readable form for logging.
func (r ReconcileResult) String() string {
	switch r {
	case Created:
		return "created"
	case AlreadyExists:
		return "already exists"
	default:
		return fmt.Sprintf("ReconcileResult(%d)", int(r))
	}
}

// EnsureThing creates the twin if it does not exist yet.
//
// Existence is decided solely by the status of a GET on the thing: 404 means
// absent and triggers a full-document PUT of the desired initial state; 200
// means present and the remote document is left as it is. Any other status,
// or a transport failure, is an error for the caller to judge.
//
// The operation is idempotent: a second call against the same store returns
// AlreadyExists without issuing a write. No retries are performed.
func (c *Client) EnsureThing(ctx context.Context, thing twin.Thing) (ReconcileResult, error) {
	status, body, err := c.send(ctx, http.MethodGet, c.thingURL(thing.ThingID), "", nil)
	if err != nil {
		return 0, fmt.Errorf("checking %s: %w", thing.ThingID, err)
	}

	switch status {
	case http.StatusOK:
		return AlreadyExists, nil
	case http.StatusNotFound:
		if err := c.CreateThing(ctx, thing); err != nil {
			return 0, err
		}
		return Created, nil
	default:
		return 0, fmt.Errorf("checking %s: %w", thing.ThingID, statusError(status, body))
	}
}

// CreateThing writes the full twin document. Ditto answers 201 for a fresh
// twin and 204 when the PUT overwrote an existing one; both count as success.
func (c *Client) CreateThing(ctx context.Context, thing twin.Thing) error {
	status, body, err := c.send(ctx, http.MethodPut, c.thingURL(thing.ThingID), "", thing)
	if err != nil {
		return fmt.Errorf("creating %s: %w", thing.ThingID, err)
	}
	if status != http.StatusCreated && status != http.StatusNoContent {
		return fmt.Errorf("creating %s: %w", thing.ThingID, statusError(status, body))
	}
	return nil
}

// PatchThing sends a merge-patch partial update for a twin and returns the
// HTTP status code so callers can react to 404 (thing not created yet).
//
// Only transport and encoding failures are returned as errors; status
// handling is the caller's decision because the replay engine treats 404 as
// a creation trigger rather than a failure.
func (c *Client) PatchThing(ctx context.Context, thingID string, patch twin.MergePatch) (int, error) {
	status, body, err := c.send(ctx, http.MethodPatch, c.thingURL(thingID), "application/merge-patch+json", patch)
	if err != nil {
		return 0, fmt.Errorf("patching %s: %w", thingID, err)
	}

	if !patchSucceeded(status) && status != http.StatusNotFound {
		c.logger.Warn("patch rejected",
			"thing_id", thingID,
			"status", status,
			"body", string(body),
		)
	}

	return status, nil
}

// patchSucceeded reports whether a merge-patch status counts as success.
func patchSucceeded(status int) bool {
	return status == http.StatusOK || status == http.StatusCreated || status == http.StatusNoContent
}

// CheckConnection probes the Things API root with the configured
// credentials. It returns nil on HTTP 200, ErrUnauthorized on 401, and a
// wrapped error otherwise.
func (c *Client) CheckConnection(ctx context.Context) error {
	status, body, err := c.send(ctx, http.MethodGet, c.baseURL+thingsPath, "", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return statusError(status, body)
	}
	return nil
}
