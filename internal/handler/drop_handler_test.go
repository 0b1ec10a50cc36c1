package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fairyhunter13/campaign-economics/internal/economics"
	"github.com/fairyhunter13/campaign-economics/internal/model"
	"github.com/fairyhunter13/campaign-economics/internal/service"
)

func TestAcceptParticipant(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"accepted", nil, http.StatusOK},
		{"full", &economics.InvariantError{Err: economics.ErrQuantityExceeded, Attempted: "1", Available: "0"}, http.StatusConflict},
		{"not active", fmt.Errorf("%w: status is draft", service.ErrDropNotActive), http.StatusConflict},
		{"campaign paused", fmt.Errorf("%w: status is paused", service.ErrCampaignNotActive), http.StatusConflict},
		{"missing", service.ErrDropNotFound, http.StatusNotFound},
		{"db down", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := setupTestApp(services{drops: &mockDropService{
				acceptFn: func(ctx context.Context, id string) (*model.Drop, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return &model.Drop{ID: id, CurrentParticipants: 11, MaxParticipants: 50, Status: model.DropStatusActive}, nil
				},
			}})

			status, resp := doJSON(t, app, http.MethodPost, "/api/drops/"+testDropID+"/participants", "")

			assert.Equal(t, tt.wantStatus, status)
			if tt.err == nil {
				assert.EqualValues(t, 11, resp["current_participants"])
			}
		})
	}
}

func TestAcceptParticipant_NotActiveMessage(t *testing.T) {
	app := setupTestApp(services{drops: &mockDropService{
		acceptFn: func(ctx context.Context, id string) (*model.Drop, error) {
			return nil, fmt.Errorf("%w: deadline passed", service.ErrDropNotActive)
		},
	}})

	_, resp := doJSON(t, app, http.MethodPost, "/api/drops/"+testDropID+"/participants", "")

	assert.Equal(t, "drop is not accepting participants: deadline passed", resp["error"])
}

func TestTransitionDrop(t *testing.T) {
	var got model.DropStatus
	app := setupTestApp(services{drops: &mockDropService{
		transitionFn: func(ctx context.Context, id string, to model.DropStatus) (*model.Drop, error) {
			got = to
			if to != model.DropStatusCancelled {
				return nil, fmt.Errorf("%w: %s", service.ErrDropManagedByCampaign, to)
			}
			return &model.Drop{ID: id, Status: to}, nil
		},
	}})
	path := "/api/drops/" + testDropID + "/transition"

	status, resp := doJSON(t, app, http.MethodPost, path, `{"status":"cancelled"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "cancelled", resp["status"])
	assert.Equal(t, model.DropStatusCancelled, got)

	status, _ = doJSON(t, app, http.MethodPost, path, `{"status":"filled"}`)
	assert.Equal(t, http.StatusConflict, status)

	status, resp = doJSON(t, app, http.MethodPost, path, `{"status":"paused"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid request: unknown drop status paused", resp["error"])
}
