// Package ditto provides a client for the Eclipse Ditto Things HTTP API.
//
// This package covers the small slice of the API the operator tooling needs:
//   - Existence-checked twin creation (GET then PUT, idempotent)
//   - Single property writes (PUT of a scalar under a feature path)
//   - Partial twin updates (PATCH with merge-patch semantics)
//   - A bounded availability wait for freshly started instances
//   - Linear ramp simulation driving repeated property writes
//
// # Error handling
//
// Not-Found is a creation trigger in reconciliation paths, never an error.
// Transport failures and unexpected status codes are reported to the caller,
// who decides whether they abort the run. The client performs no retries of
// its own; the only bounded loop is WaitUntilAvailable.
//
// # Usage
//
//	client := ditto.New(cfg.Ditto)
//	client.SetLogger(log)
//
//	if err := client.WaitUntilAvailable(ctx, 60*time.Second, 2*time.Second); err != nil {
//	    return err
//	}
//	result, err := client.EnsureThing(ctx, mixer)
package ditto
