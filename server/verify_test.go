package server

import (
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testSecret = []byte("test-secret")

func testVerifier(now time.Time) *Verifier {
	v := NewVerifier(testSecret, 300)
	v.now = func() time.Time { return now }
	return v
}

func signedPostHeaders(t *testing.T, timestamp, path string, body []byte) string {
	message, err := PostMessage(timestamp, path, body)
	assert.Nil(t, err)
	return CalculateSignature(testSecret, message)
}

func TestVerifyPost(t *testing.T) {
	now := time.Now()
	v := testVerifier(now)
	timestamp := strconv.FormatInt(now.Unix(), 10)
	body := []byte(`{"user":"u1","assets":[{"name":"a.png"}]}`)
	signature := signedPostHeaders(t, timestamp, "/publish/resources/upload", body)

	assert.True(t, v.VerifyPost(timestamp, "/publish/resources/upload", body, signature))
	// full request path still matches the endpoint suffix
	assert.True(t, v.VerifyPost(timestamp, "/api/v1/publish/resources/upload", body, signature))
	// membership test against multiple candidate signatures
	assert.True(t, v.VerifyPost(timestamp, "/publish/resources/upload", body, "deadbeef,"+signature))
	assert.True(t, v.VerifyPost(timestamp, "/publish/resources/upload", body, signature+", deadbeef"))
}

func TestVerifyPostRejections(t *testing.T) {
	now := time.Now()
	v := testVerifier(now)
	timestamp := strconv.FormatInt(now.Unix(), 10)
	body := []byte(`{"user":"u1"}`)
	signature := signedPostHeaders(t, timestamp, "/configuration", body)

	// tampering with a single byte of the raw body
	tampered := append([]byte{}, body...)
	tampered[3] ^= 1
	assert.False(t, v.VerifyPost(timestamp, "/configuration", tampered, signature))

	// path outside the allow-list has no canonical form
	assert.False(t, v.VerifyPost(timestamp, "/somewhere/else", body, signature))

	// missing or wrong candidate set
	assert.False(t, v.VerifyPost(timestamp, "/configuration", body, ""))
	assert.False(t, v.VerifyPost(timestamp, "/configuration", body, "deadbeef"))

	// signature from a different key
	other := CalculateSignature([]byte("other-secret"), "v1:"+timestamp+":/configuration:"+string(body))
	assert.False(t, v.VerifyPost(timestamp, "/configuration", body, other))
}

func TestVerifyTimestampWindow(t *testing.T) {
	now := time.Now()
	v := testVerifier(now)
	body := []byte(`{}`)

	cases := []struct {
		offset int64
		valid  bool
	}{
		{0, true},
		{-299, true},
		{299, true},
		{-300, false},
		{300, false},
		{-301, false},
		{301, false},
	}
	for _, c := range cases {
		timestamp := strconv.FormatInt(now.Unix()+c.offset, 10)
		signature := signedPostHeaders(t, timestamp, "/configuration", body)
		got := v.VerifyPost(timestamp, "/configuration", body, signature)
		assert.Equal(t, c.valid, got, fmt.Sprintf("offset %d", c.offset))
	}

	// malformed timestamps fail closed
	assert.False(t, v.VerifyPost("not-a-number", "/configuration", body, "deadbeef"))
	assert.False(t, v.VerifyPost("", "/configuration", body, "deadbeef"))
}

func TestVerifyGet(t *testing.T) {
	now := time.Now()
	v := testVerifier(now)
	q := GetSignatureQuery{
		Time:       strconv.FormatInt(now.Unix(), 10),
		User:       "u1",
		Brand:      "b1",
		Extensions: "ext1",
		State:      "st1",
	}
	q.Signatures = CalculateSignature(testSecret, GetMessage(q))
	assert.True(t, v.VerifyGet(q))

	tampered := q
	tampered.User = "u2"
	assert.False(t, v.VerifyGet(tampered))

	// absent query fields serialize as empty strings
	empty := GetSignatureQuery{Time: strconv.FormatInt(now.Unix(), 10), User: "u1"}
	empty.Signatures = CalculateSignature(testSecret, GetMessage(empty))
	assert.True(t, v.VerifyGet(empty))

	noSig := q
	noSig.Signatures = ""
	assert.False(t, v.VerifyGet(noSig))
}
