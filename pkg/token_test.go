package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateTokenRoundTrip(t *testing.T) {
	token, err := GenerateStateToken("jwt-test-secret", StateClaims{
		User:       "u1",
		Brand:      "b1",
		Extensions: "ext1",
		State:      "platform-state",
	})
	assert.Nil(t, err)
	assert.NotEmpty(t, token)

	claims, err := DecodeStateToken("jwt-test-secret", token)
	assert.Nil(t, err)
	assert.Equal(t, "u1", claims.User)
	assert.Equal(t, "b1", claims.Brand)
	assert.Equal(t, "ext1", claims.Extensions)
	assert.Equal(t, "platform-state", claims.State)
}

func TestStateTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateStateToken("jwt-test-secret", StateClaims{User: "u1"})
	assert.Nil(t, err)
	_, err = DecodeStateToken("other-secret", token)
	assert.NotNil(t, err)
}

func TestStateTokenRejectsGarbage(t *testing.T) {
	_, err := DecodeStateToken("jwt-test-secret", "not-a-token")
	assert.NotNil(t, err)
	_, err = DecodeStateToken("jwt-test-secret", "")
	assert.NotNil(t, err)
}

func TestStateTokenRequiresUser(t *testing.T) {
	token, err := GenerateStateToken("jwt-test-secret", StateClaims{State: "s"})
	assert.Nil(t, err)
	_, err = DecodeStateToken("jwt-test-secret", token)
	assert.NotNil(t, err)
}
