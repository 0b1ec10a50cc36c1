package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoutes_RejectNonUUIDIDs(t *testing.T) {
	app := setupTestApp(services{})

	paths := []string{
		"/api/campaigns/abc/publish",
		"/api/drops/abc/participants",
		"/api/coupons/abc/claim",
		"/api/content/abc/spend",
	}
	for _, p := range paths {
		status, resp := doJSON(t, app, http.MethodPost, p, `{"amount":"1"}`)
		assert.Equal(t, http.StatusBadRequest, status, p)
		assert.Equal(t, "invalid request: id must be a UUID", resp["error"], p)
	}
}
