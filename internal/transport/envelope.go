// File: internal/transport/envelope.go
package transport

import (
	"context"

	"sipaling_preloved_client/internal/common"
)

// Exchange performs one backend call and decodes the uniform response
// envelope. Transport-level faults are classified into AppErrors here so
// repositories only ever see the taxonomy, never raw net errors.
func Exchange(ctx context.Context, c *Client, req Request) (*common.Envelope, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, common.ClassifyTransportFault(err)
	}

	env, appErr := common.DecodeEnvelope(resp.StatusCode, resp.Body)
	if appErr != nil {
		return env, appErr
	}
	return env, nil
}
