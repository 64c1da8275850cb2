package ditto

import (
	"context"
	"fmt"
	"net/http"
)

// SetProperty writes a single scalar value under a feature property path.
// Ditto answers 204 for a successful property PUT.
func (c *Client) SetProperty(ctx context.Context, thingID, featureID, property string, value any) error {
	url := c.thingURL(thingID, "features", featureID, "properties", property)

	status, body, err := c.send(ctx, http.MethodPut, url, "", value)
	if err != nil {
		return fmt.Errorf("setting %s/%s/%s: %w", thingID, featureID, property, err)
	}
	if status != http.StatusNoContent {
		return fmt.Errorf("setting %s/%s/%s: %w", thingID, featureID, property, statusError(status, body))
	}
	return nil
}

// HasFeatureProperty checks whether a property path exists on a twin.
func (c *Client) HasFeatureProperty(ctx context.Context, thingID, featureID, property string) (bool, error) {
	url := c.thingURL(thingID, "features", featureID, "properties", property)

	status, body, err := c.send(ctx, http.MethodGet, url, "", nil)
	if err != nil {
		return false, err
	}

	switch status {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, statusError(status, body)
	}
}

// EnsureFeatureProperty back-fills a property with a default value when it is
// missing from an already-existing twin. This covers twins created before
// their schema gained the property (the water tank's capacity, for example).
//
// The back-fill is best effort by contract: callers log a failure but do not
// treat it as fatal.
func (c *Client) EnsureFeatureProperty(ctx context.Context, thingID, featureID, property string, defaultValue any) error {
	exists, err := c.HasFeatureProperty(ctx, thingID, featureID, property)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	c.logger.Info("back-filling missing property",
		"thing_id", thingID,
		"feature", featureID,
		"property", property,
	)
	return c.SetProperty(ctx, thingID, featureID, property, defaultValue)
}
