package api

import (
	"context"

	http "github.com/bogdanfinn/fhttp"

	apierrors "github.com/diogo/leety/internal/errors"
	"github.com/diogo/leety/internal/models"
)

// VerifyKey lists the models with apiKey. A nil error means the key
// was accepted; AuthError means it was rejected; anything else is a
// transport or service failure.
func (c *GeminiClient) VerifyKey(ctx context.Context, apiKey string) error {
	if apiKey == "" {
		return apierrors.ErrCredentialMissing
	}

	path := models.PathListModels + "?pageSize=1"

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodGet, path, apiKey, "")
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apierrors.NewNetworkError("verify api key", c.baseURL+models.PathListModels, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, models.PathListModels, "verify api key failed", readErrorBody(resp.Body))
	}

	c.log.Debug().Int("status", resp.StatusCode).Msg("api key verified")
	return nil
}
