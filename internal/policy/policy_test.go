package policy

import (
	"net/http"
	"testing"

	"github.com/Mitchkal/alx-travel-app-0x03/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCanWrite(t *testing.T) {
	assert.True(t, CanWrite(Actor{ID: "user-1"}, "user-1"))
	assert.False(t, CanWrite(Actor{ID: "user-2"}, "user-1"))
	assert.False(t, CanWrite(Anonymous, ""), "anonymous never owns anything")
}

func TestCanRead(t *testing.T) {
	for _, m := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		assert.True(t, CanRead(m), m)
	}
	for _, m := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		assert.False(t, CanRead(m), m)
	}
}

func TestIsHost(t *testing.T) {
	listing := &models.Listing{HostID: "host-1"}

	assert.True(t, IsHost(Actor{ID: "host-1"}, listing))
	assert.False(t, IsHost(Actor{ID: "guest-1"}, listing))
	assert.False(t, IsHost(Actor{ID: "host-1"}, nil))
}
