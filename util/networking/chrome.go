package networking

import (
	"bufio"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"unembed/config"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
)

// NewChromeClient returns a client whose TLS ClientHello matches a real
// Chrome, for hosts behind fingerprint-checking anti-bot layers.
func NewChromeClient() *http.Client {
	return &http.Client{
		Transport: newChromeRoundTripper(),
		Timeout:   config.Env.RequestTimeout,
	}
}

type chromeRoundTripper struct {
	dialer      *net.Dialer
	h2Transport *http2.Transport
}

func newChromeRoundTripper() *chromeRoundTripper {
	return &chromeRoundTripper{
		dialer: &net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		},
		h2Transport: &http2.Transport{},
	}
}

func (t *chromeRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme != "https" {
		return http.DefaultTransport.RoundTrip(req)
	}

	addr := req.URL.Host
	if !strings.Contains(addr, ":") {
		addr += ":443"
	}
	conn, err := t.dialer.DialContext(req.Context(), "tcp", addr)
	if err != nil {
		return nil, err
	}

	tlsConfig := &utls.Config{
		ServerName: req.URL.Hostname(),
	}
	tlsConn := utls.UClient(conn, tlsConfig, utls.HelloChrome_120)
	if err := tlsConn.Handshake(); err != nil {
		conn.Close()
		return nil, err
	}

	if tlsConn.ConnectionState().NegotiatedProtocol == "h2" {
		h2Conn, err := t.h2Transport.NewClientConn(tlsConn)
		if err != nil {
			conn.Close()
			return nil, err
		}
		return h2Conn.RoundTrip(req)
	}
	return t.doHTTP1Request(tlsConn, req)
}

func (t *chromeRoundTripper) doHTTP1Request(conn net.Conn, req *http.Request) (*http.Response, error) {
	if err := req.Write(conn); err != nil {
		conn.Close()
		return nil, err
	}
	resp, err := http.ReadResponse(bufio.NewReader(conn), req)
	if err != nil {
		conn.Close()
		return nil, err
	}
	resp.Body = &connCloser{resp.Body, conn}
	return resp, nil
}

type connCloser struct {
	io.ReadCloser
	conn net.Conn
}

func (c *connCloser) Close() error {
	c.ReadCloser.Close()
	return c.conn.Close()
}
