package crypto

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"math/big"
	"net"
	"time"
)

// HexSHA256 calculates the SHA256 hash of the provided certificate bytes
// and returns the result as a hexadecimal string.
func HexSHA256(cert []byte) string {
	certSHA := sha256.Sum256(cert)
	return hex.EncodeToString(certSHA[:])
}

// GenCertificate generates a self-signed X.509 certificate based on the provided template.
// It returns the certificate, private key, combined PEM bytes, and a tls.Certificate.
//
// Use NotBefore and NotAfter in template to control the certificate validity window.
// If the NotBefore field of the template is zero-valued, it is set to the current time.
// If the NotAfter field is zero-valued, it is set to one hour after the NotBefore time.
//
// If setLeaf is true, the returned tls.Certificate has its Leaf parsed from the
// generated DER bytes.
func GenCertificate(template *x509.Certificate, setLeaf bool) ([]byte, []byte, []byte, tls.Certificate) {
	priv, _ := rsa.GenerateKey(rand.Reader, 2048)

	serialNumberLimit := new(big.Int).Lsh(big.NewInt(1), 128)
	serialNumber, _ := rand.Int(rand.Reader, serialNumberLimit)
	template.SerialNumber = serialNumber
	template.BasicConstraintsValid = true
	if template.NotBefore.IsZero() {
		template.NotBefore = time.Now()
	}

	if template.NotAfter.IsZero() {
		template.NotAfter = template.NotBefore.Add(time.Hour)
	}

	derBytes, _ := x509.CreateCertificate(rand.Reader, template, template, &priv.PublicKey, priv)

	var certPem, keyPem bytes.Buffer
	pem.Encode(&certPem, &pem.Block{Type: "CERTIFICATE", Bytes: derBytes})
	pem.Encode(&keyPem, &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})

	tlsCert, _ := tls.X509KeyPair(certPem.Bytes(), keyPem.Bytes())
	if setLeaf {
		tlsCert.Leaf, _ = x509.ParseCertificate(derBytes)
	}
	combinedPEM := bytes.Join([][]byte{certPem.Bytes(), keyPem.Bytes()}, []byte("\n"))

	return certPem.Bytes(), keyPem.Bytes(), combinedPEM, tlsCert
}

// GenServerCertificate generates a self-signed server certificate for "localhost"
// with DNS name "localhost" and IP addresses 127.0.0.1 and ::1, valid between
// notBefore and notAfter. The returned tls.Certificate has its Leaf set.
func GenServerCertificate(notBefore, notAfter time.Time) tls.Certificate {
	_, _, _, cert := GenCertificate(&x509.Certificate{
		DNSNames:    []string{"localhost"},
		IPAddresses: []net.IP{net.ParseIP("127.0.0.1"), net.ParseIP("::1")},
		NotBefore:   notBefore,
		NotAfter:    notAfter,
	}, true)

	return cert
}
