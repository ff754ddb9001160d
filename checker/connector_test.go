package checker

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TykTechnologies/certexpiry/config"
	"github.com/TykTechnologies/certexpiry/internal/errors"
	"github.com/TykTechnologies/certexpiry/internal/expiry"
	"github.com/TykTechnologies/certexpiry/internal/hostconfig"
)

func resolve(hostname string, port int) hostconfig.ResolvedHost {
	return hostconfig.ResolveOne(config.DefaultGlobal(), hostconfig.Host(hostname).WithPort(port))
}

func requireConnectionError(t *testing.T, err error) *ConnectionError {
	t.Helper()

	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	require.NotNil(t, connErr.Classification)
	return connErr
}

func TestTLSConnector_Connect(t *testing.T) {
	now := time.Now()
	srv := newTestServer(t, now.Add(-expiry.Day), now.Add(expiry.Day))

	leaf, err := srv.connector().Connect(context.Background(), resolve("127.0.0.1", srv.port))
	require.NoError(t, err)
	assert.Equal(t, srv.cert.Leaf.Raw, leaf.Raw)
	assert.Equal(t, []string{config.DefaultGlobal().UserAgent}, srv.seenUserAgents())
}

func TestTLSConnector_Localhost(t *testing.T) {
	now := time.Now()
	srv := newTestServer(t, now.Add(-expiry.Day), now.Add(expiry.Day))

	_, err := srv.connector().Connect(context.Background(), resolve("localhost", srv.port))
	require.NoError(t, err)
}

func TestTLSConnector_HandshakeOnly(t *testing.T) {
	now := time.Now()
	srv := newTestServer(t, now.Add(-expiry.Day), now.Add(expiry.Day))

	connector := srv.connector()
	connector.HandshakeOnly = true

	leaf, err := connector.Connect(context.Background(), resolve("127.0.0.1", srv.port))
	require.NoError(t, err)
	assert.Equal(t, srv.cert.Leaf.Raw, leaf.Raw)
	assert.Empty(t, srv.seenUserAgents())
}

func TestTLSConnector_ExpiredCertificate(t *testing.T) {
	now := time.Now()
	srv := newTestServer(t, now.Add(-90*expiry.Day), now.Add(-5*expiry.Day))

	_, err := srv.connector().Connect(context.Background(), resolve("127.0.0.1", srv.port))
	connErr := requireConnectionError(t, err)
	assert.Equal(t, errors.TLE, connErr.Classification.Flag)
	assert.True(t, srv.cert.Leaf.NotAfter.Equal(connErr.Classification.CertExpiry))
}

func TestTLSConnector_UntrustedCertificate(t *testing.T) {
	now := time.Now()
	srv := newTestServer(t, now.Add(-expiry.Day), now.Add(expiry.Day))

	connector := srv.connector()
	connector.RootCAs = nil

	_, err := connector.Connect(context.Background(), resolve("127.0.0.1", srv.port))
	connErr := requireConnectionError(t, err)
	assert.Equal(t, errors.TLI, connErr.Classification.Flag)
}

func TestTLSConnector_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	connector := &TLSConnector{Timeout: time.Second}
	_, err = connector.Connect(context.Background(), resolve("127.0.0.1", port))
	connErr := requireConnectionError(t, err)
	assert.Equal(t, errors.UCF, connErr.Classification.Flag)
	assert.Equal(t, "127.0.0.1:"+strconv.Itoa(port), connErr.Host)
}

func TestTLSConnector_NotTLS(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	defer srv.Close()

	port := srv.Listener.Addr().(*net.TCPAddr).Port
	connector := &TLSConnector{Timeout: time.Second}

	_, err := connector.Connect(context.Background(), resolve("127.0.0.1", port))
	requireConnectionError(t, err)
}

func TestTLSConnector_Timeout(t *testing.T) {
	// Accepts connections but never answers the handshake.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			accepted <- conn
		}
	}()
	t.Cleanup(func() {
		select {
		case conn := <-accepted:
			conn.Close()
		default:
		}
	})

	connector := &TLSConnector{Timeout: 100 * time.Millisecond}
	start := time.Now()
	_, err = connector.Connect(context.Background(), resolve("127.0.0.1", ln.Addr().(*net.TCPAddr).Port))
	connErr := requireConnectionError(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Contains(t, []errors.Flag{errors.URT, errors.UCT}, connErr.Classification.Flag)
}
