package services

import (
	"context"

	awspkg "github.com/kadekedwin/billforge/pkg/aws"
	"github.com/kadekedwin/billforge/services/common/middleware"
	"github.com/kadekedwin/billforge/services/receipt-service/cache"
	"github.com/kadekedwin/billforge/services/receipt-service/models"
	"github.com/kadekedwin/billforge/services/receipt-service/providers"

	"go.uber.org/zap"
)

// ImageProxyService relays remote images, optionally through a cache.
type ImageProxyService interface {
	Fetch(ctx context.Context, rawURL string) (models.ProxiedImage, error)
}

type imageProxyServiceImpl struct {
	source  providers.ImageSource
	cache   cache.ImageCache
	metrics recorder
	logger  *zap.Logger
}

// NewImageProxyService creates an ImageProxyService. imageCache may be nil.
func NewImageProxyService(source providers.ImageSource, imageCache cache.ImageCache, metrics middleware.MetricsRecorder, logger *zap.Logger) ImageProxyService {
	return &imageProxyServiceImpl{
		source:  source,
		cache:   imageCache,
		metrics: recorder{metrics: metrics},
		logger:  logger,
	}
}

func (s *imageProxyServiceImpl) Fetch(ctx context.Context, rawURL string) (models.ProxiedImage, error) {
	u, err := providers.ParseImageURL(rawURL)
	if err != nil {
		return models.ProxiedImage{}, err
	}
	key := u.String()

	dims := map[string]string{"Cache": "proxy-image"}
	if s.cache != nil {
		if img, ok := s.cache.Get(ctx, key); ok {
			s.metrics.count(ctx, awspkg.MetricCacheHits, dims)
			return img, nil
		}
		s.metrics.count(ctx, awspkg.MetricCacheMisses, dims)
	}

	img, err := s.source.Fetch(ctx, key)
	if err != nil {
		s.logger.Warn("Image proxy fetch failed", zap.String("url", key), zap.Error(err))
		return models.ProxiedImage{}, err
	}

	if s.cache != nil {
		s.cache.SetAsync(key, img)
	}
	return img, nil
}
