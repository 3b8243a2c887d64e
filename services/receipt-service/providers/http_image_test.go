package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"
	"time"

	apperrors "github.com/kadekedwin/billforge/services/common/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// loopbackSource reaches httptest servers, which listen on 127.0.0.1.
func loopbackSource() *HTTPImageSource {
	return newHTTPImageSource(time.Second, nil, false)
}

func TestFetch_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngHeader)
	}))
	defer srv.Close()

	img, err := loopbackSource().Fetch(context.Background(), srv.URL+"/logo.png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, pngHeader, img.Body)
}

func TestFetch_SniffsContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil
		w.Write(pngHeader)
	}))
	defer srv.Close()

	img, err := loopbackSource().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
}

func TestFetch_RelaysUpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := loopbackSource().Fetch(context.Background(), srv.URL)
	require.Error(t, err)

	var appErr *apperrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusNotFound, appErr.Code)
	assert.True(t, errors.Is(err, apperrors.ErrUpstream))
}

func TestFetch_TransportFailureIsBadGateway(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := loopbackSource().Fetch(context.Background(), url)
	assert.Equal(t, http.StatusBadGateway, apperrors.From(err).Code)
}

func TestFetch_TooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer srv.Close()

	src := loopbackSource()
	src.maxBytes = 32
	_, err := src.Fetch(context.Background(), srv.URL)
	assert.True(t, errors.Is(err, apperrors.ErrUpstream))
}

func TestFetch_InvalidURLAndHost(t *testing.T) {
	src := NewHTTPImageSource(time.Second, []string{"cdn.example.com"})

	for _, raw := range []string{"", "ftp://cdn.example.com/a.png", "/relative.png", "http://"} {
		_, err := src.Fetch(context.Background(), raw)
		assert.True(t, errors.Is(err, apperrors.ErrValidation), raw)
	}

	_, err := src.Fetch(context.Background(), "https://evil.example.org/a.png")
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestFetch_RefusesNonPublicAddresses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("private address was fetched")
	}))
	defer srv.Close()

	src := NewHTTPImageSource(time.Second, nil)
	for _, raw := range []string{srv.URL + "/logo.png", "http://169.254.169.254/latest/meta-data/"} {
		_, err := src.Fetch(context.Background(), raw)
		require.Error(t, err, raw)
		assert.True(t, errors.Is(err, apperrors.ErrValidation), raw)
	}
}

func TestIsPublicAddr(t *testing.T) {
	cases := map[string]bool{
		"93.184.216.34":    true,
		"2606:4700::1111":  true,
		"127.0.0.1":        false,
		"10.1.2.3":         false,
		"172.16.0.9":       false,
		"192.168.1.1":      false,
		"169.254.169.254":  false,
		"::1":              false,
		"fe80::1":          false,
		"fc00::1":          false,
		"0.0.0.0":          false,
		"::ffff:127.0.0.1": false,
	}
	for addr, want := range cases {
		assert.Equal(t, want, IsPublicAddr(netip.MustParseAddr(addr)), addr)
	}
}
