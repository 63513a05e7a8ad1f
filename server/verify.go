package server

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const signatureVersion = "v1"

const DefaultLeniencySeconds = 300

// signedPaths is the fixed allow-list of endpoint suffixes that take part in
// the POST message. A request path matching none of them cannot be verified.
var signedPaths = []string{
	"/configuration",
	"/configuration/delete",
	"/content/resources/find",
	"/editing/image/process",
	"/editing/image/process/get",
	"/publish/resources/find",
	"/publish/resources/get",
	"/publish/resources/upload",
}

// Verifier checks request authenticity from the shared secret, a timestamp
// window and an HMAC-SHA256 signature over a canonical message. It is a pure
// function of (secret, request, clock) and always fails closed.
type Verifier struct {
	secret   []byte
	leniency float64
	now      func() time.Time
}

func NewVerifier(secret []byte, leniencySeconds int) *Verifier {
	if leniencySeconds <= 0 {
		leniencySeconds = DefaultLeniencySeconds
	}
	return &Verifier{
		secret:   secret,
		leniency: float64(leniencySeconds),
		now:      time.Now,
	}
}

// GetSignatureQuery carries the fixed ordered set of query fields a signed
// GET request is verified against. Absent parameters stay empty strings.
type GetSignatureQuery struct {
	Time       string
	User       string
	Brand      string
	Extensions string
	State      string
	Signatures string
}

func (v *Verifier) VerifyPost(timestamp, path string, rawBody []byte, signatures string) bool {
	if !v.validTimestamp(timestamp) {
		return false
	}
	signedPath := pathForVerification(path)
	if signedPath == "" {
		return false
	}
	message := fmt.Sprintf("%s:%s:%s:%s", signatureVersion, timestamp, signedPath, rawBody)
	return containsSignature(signatures, CalculateSignature(v.secret, message))
}

func (v *Verifier) VerifyGet(q GetSignatureQuery) bool {
	if !v.validTimestamp(q.Time) {
		return false
	}
	message := fmt.Sprintf("%s:%s:%s:%s:%s:%s", signatureVersion, q.Time, q.User, q.Brand, q.Extensions, q.State)
	return containsSignature(q.Signatures, CalculateSignature(v.secret, message))
}

// validTimestamp accepts a claimed send time strictly inside the leniency
// window. A non-numeric timestamp is rejected, never an error.
func (v *Verifier) validTimestamp(sent string) bool {
	sentAt, err := strconv.ParseFloat(strings.TrimSpace(sent), 64)
	if err != nil {
		return false
	}
	receivedAt := float64(v.now().Unix())
	return math.Abs(sentAt-receivedAt) < v.leniency
}

func pathForVerification(input string) string {
	for _, p := range signedPaths {
		if strings.HasSuffix(input, p) {
			return p
		}
	}
	return ""
}

// CalculateSignature returns the hex HMAC-SHA256 of message under the raw
// key bytes.
func CalculateSignature(secret []byte, message string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// containsSignature tests membership in the comma-separated candidate list.
// Multiple candidates tolerate concurrently valid signing keys. Each compare
// is constant time.
func containsSignature(candidates, signature string) bool {
	if candidates == "" {
		return false
	}
	for _, candidate := range strings.Split(candidates, ",") {
		if hmac.Equal([]byte(strings.TrimSpace(candidate)), []byte(signature)) {
			return true
		}
	}
	return false
}

// PostMessage builds the canonical POST message for signing. Used by the CLI
// and tests to produce signatures the verifier accepts.
func PostMessage(timestamp, path string, body []byte) (string, error) {
	signedPath := pathForVerification(path)
	if signedPath == "" {
		return "", fmt.Errorf("path %q is not signable", path)
	}
	return fmt.Sprintf("%s:%s:%s:%s", signatureVersion, timestamp, signedPath, body), nil
}

// GetMessage builds the canonical GET message for signing.
func GetMessage(q GetSignatureQuery) string {
	return fmt.Sprintf("%s:%s:%s:%s:%s:%s", signatureVersion, q.Time, q.User, q.Brand, q.Extensions, q.State)
}
