package thermal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"strings"
	"syscall"
	"time"
)

// DialFunc opens a connection to a printer interface.
type DialFunc func(ctx context.Context, iface string, timeout time.Duration) (io.WriteCloser, error)

// Dial opens the printer behind iface. "tcp://host:port" dials a network
// printer; a plain path (or "file://path") opens a device or a file acting as
// a virtual printer. The timeout bounds the connect and each write.
func Dial(ctx context.Context, iface string, timeout time.Duration) (io.WriteCloser, error) {
	iface = strings.TrimSpace(iface)
	if iface == "" {
		return nil, fmt.Errorf("%w: printer interface is empty", ErrInvalidConfig)
	}

	if !strings.Contains(iface, "://") {
		return openFile(iface, timeout)
	}

	u, err := url.Parse(iface)
	if err != nil {
		return nil, fmt.Errorf("%w: printer interface %q: %v", ErrInvalidConfig, iface, err)
	}
	switch u.Scheme {
	case "tcp":
		if u.Hostname() == "" || u.Port() == "" {
			return nil, fmt.Errorf("%w: printer interface %q needs host and port", ErrInvalidConfig, iface)
		}
		return dialTCP(ctx, u.Host, timeout)
	case "file":
		path := u.Path
		if u.Host != "" {
			path = u.Host + u.Path
		}
		return openFile(path, timeout)
	}
	return nil, fmt.Errorf("%w: unsupported printer interface scheme %q", ErrInvalidConfig, u.Scheme)
}

type deadlineConn struct {
	net.Conn
	timeout time.Duration
}

func (c *deadlineConn) Write(p []byte) (int, error) {
	if err := c.Conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Write(p)
}

func dialTCP(ctx context.Context, addr string, timeout time.Duration) (io.WriteCloser, error) {
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("printer %s not reachable: %w", addr, err)
	}
	return &deadlineConn{Conn: conn, timeout: timeout}, nil
}

// fileConn bounds each write to a device or pipe. Regular files have no
// deadlines and are written directly.
type fileConn struct {
	*os.File
	timeout time.Duration
}

func (f *fileConn) Write(p []byte) (int, error) {
	if err := f.File.SetWriteDeadline(time.Now().Add(f.timeout)); err != nil && !errors.Is(err, os.ErrNoDeadline) {
		return 0, err
	}
	return f.File.Write(p)
}

// openFile opens path without blocking: a pipe with no reader or a device
// that is not ready fails at once instead of hanging the request.
func openFile(path string, timeout time.Duration) (io.WriteCloser, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND|syscall.O_NONBLOCK, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open printer %s: %w", path, err)
	}
	return &fileConn{File: f, timeout: timeout}, nil
}
