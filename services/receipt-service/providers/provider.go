package providers

import (
	"context"

	"github.com/kadekedwin/billforge/services/receipt-service/models"
)

// ImageSource fetches remote images for the image proxy.
type ImageSource interface {
	// Fetch returns the image at rawURL. Failures are *errors.Error values of
	// kind ErrValidation (bad URL) or ErrUpstream (carrying the status to relay).
	Fetch(ctx context.Context, rawURL string) (models.ProxiedImage, error)
}
