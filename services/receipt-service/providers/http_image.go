package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"

	apperrors "github.com/kadekedwin/billforge/services/common/errors"
	"github.com/kadekedwin/billforge/services/receipt-service/models"
)

const (
	DefaultMaxImageBytes = 10 << 20
	userAgent            = "BillForge-ImageProxy/1.0"
)

// HTTPImageSource implements ImageSource over plain HTTP(S).
type HTTPImageSource struct {
	httpClient   *http.Client
	allowedHosts map[string]struct{}
	maxBytes     int64
}

var errBlockedAddress = errors.New("address is not publicly routable")

// NewHTTPImageSource creates a source with the given fetch timeout. An empty
// allowedHosts list permits every public host; connections to loopback,
// private and link-local addresses are then refused, including after
// redirects or DNS changes.
func NewHTTPImageSource(timeout time.Duration, allowedHosts []string) *HTTPImageSource {
	hosts := make(map[string]struct{}, len(allowedHosts))
	for _, h := range allowedHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			hosts[h] = struct{}{}
		}
	}
	return newHTTPImageSource(timeout, hosts, len(hosts) == 0)
}

func newHTTPImageSource(timeout time.Duration, hosts map[string]struct{}, publicOnly bool) *HTTPImageSource {
	client := &http.Client{Timeout: timeout}
	if publicOnly {
		dialer := &net.Dialer{Timeout: timeout, Control: refuseNonPublic}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = nil
		transport.DialContext = dialer.DialContext
		client.Transport = transport
	}
	return &HTTPImageSource{
		httpClient:   client,
		allowedHosts: hosts,
		maxBytes:     DefaultMaxImageBytes,
	}
}

// refuseNonPublic runs after DNS resolution, on the address actually dialed.
func refuseNonPublic(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	if ip, err := netip.ParseAddr(host); err != nil || !IsPublicAddr(ip) {
		return fmt.Errorf("%w: %s", errBlockedAddress, host)
	}
	return nil
}

// IsPublicAddr reports whether ip may be fetched by the proxy.
func IsPublicAddr(ip netip.Addr) bool {
	ip = ip.Unmap()
	return ip.IsValid() &&
		!ip.IsLoopback() &&
		!ip.IsPrivate() &&
		!ip.IsLinkLocalUnicast() &&
		!ip.IsLinkLocalMulticast() &&
		!ip.IsInterfaceLocalMulticast() &&
		!ip.IsMulticast() &&
		!ip.IsUnspecified()
}

// ParseImageURL checks that rawURL is an absolute http(s) URL.
func ParseImageURL(rawURL string) (*url.URL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, apperrors.Wrapf(apperrors.ErrValidation, "url parameter is required")
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, apperrors.Wrapf(apperrors.ErrValidation, "url must be an absolute http or https URL")
	}
	return u, nil
}

// Fetch downloads the image at rawURL.
func (s *HTTPImageSource) Fetch(ctx context.Context, rawURL string) (models.ProxiedImage, error) {
	u, err := ParseImageURL(rawURL)
	if err != nil {
		return models.ProxiedImage{}, err
	}
	if len(s.allowedHosts) > 0 {
		if _, ok := s.allowedHosts[strings.ToLower(u.Hostname())]; !ok {
			return models.ProxiedImage{}, apperrors.Wrapf(apperrors.ErrValidation, "host %s is not allowed", u.Hostname())
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return models.ProxiedImage{}, apperrors.Wrapf(apperrors.ErrValidation, "create request: %v", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "image/*")

	resp, err := s.httpClient.Do(req)
	if errors.Is(err, errBlockedAddress) {
		return models.ProxiedImage{}, apperrors.Wrapf(apperrors.ErrValidation, "host %s is not allowed", u.Hostname())
	}
	if err != nil {
		return models.ProxiedImage{}, apperrors.Upstream(http.StatusBadGateway, fmt.Errorf("fetch image: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return models.ProxiedImage{}, apperrors.Upstream(resp.StatusCode, fmt.Errorf("upstream responded %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return models.ProxiedImage{}, apperrors.Upstream(http.StatusBadGateway, fmt.Errorf("read image: %w", err))
	}
	if int64(len(body)) > s.maxBytes {
		return models.ProxiedImage{}, apperrors.Upstream(http.StatusBadGateway, fmt.Errorf("image exceeds %d bytes", s.maxBytes))
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}

	return models.ProxiedImage{Body: body, ContentType: contentType}, nil
}
