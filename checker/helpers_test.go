package checker

import (
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/TykTechnologies/certexpiry/internal/crypto"
)

// testServer is an HTTPS server presenting a generated certificate.
type testServer struct {
	port  int
	cert  tls.Certificate
	roots *x509.CertPool

	mu         sync.Mutex
	userAgents []string
}

func newTestServer(t *testing.T, notBefore, notAfter time.Time) *testServer {
	t.Helper()

	ts := &testServer{
		cert:  crypto.GenServerCertificate(notBefore, notAfter),
		roots: x509.NewCertPool(),
	}
	ts.roots.AddCert(ts.cert.Leaf)

	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.mu.Lock()
		ts.userAgents = append(ts.userAgents, r.UserAgent())
		ts.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	srv.TLS = &tls.Config{Certificates: []tls.Certificate{ts.cert}}
	srv.StartTLS()
	t.Cleanup(srv.Close)

	ts.port = srv.Listener.Addr().(*net.TCPAddr).Port
	return ts
}

func (ts *testServer) connector() *TLSConnector {
	return &TLSConnector{
		Timeout: 5 * time.Second,
		RootCAs: ts.roots,
	}
}

func (ts *testServer) seenUserAgents() []string {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return append([]string(nil), ts.userAgents...)
}

// newLeaf returns a parsed certificate for commonName valid in [notBefore, notAfter].
func newLeaf(t *testing.T, commonName string, notBefore, notAfter time.Time) *x509.Certificate {
	t.Helper()

	_, _, _, cert := crypto.GenCertificate(&x509.Certificate{
		Subject:   pkix.Name{CommonName: commonName, Organization: []string{"Example Org"}},
		DNSNames:  []string{commonName},
		NotBefore: notBefore,
		NotAfter:  notAfter,
	}, true)
	return cert.Leaf
}

func fixedClock(now time.Time) func() time.Time {
	return func() time.Time {
		return now
	}
}
