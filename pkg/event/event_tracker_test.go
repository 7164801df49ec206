package event

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	eventType EventType
	payload   []byte
}

type fakeRecorder struct {
	events []recorded
}

func (f *fakeRecorder) Record(_ context.Context, eventType EventType, payload []byte) error {
	f.events = append(f.events, recorded{eventType, payload})
	return nil
}

func newRouter(rec Recorder, status int, withData bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	tracker := NewEventTrackerMiddleware(rec)
	r.POST("/billing/:id/mark-paid", tracker.TrackEvent("billing", "paid"), func(c *gin.Context) {
		if withData {
			SetNewData(c, gin.H{"id": c.Param("id")}, map[string]interface{}{"patient_id": "p-1"})
		}
		c.Status(status)
	})
	return r
}

func TestTrackEvent_RecordsOnSuccess(t *testing.T) {
	rec := &fakeRecorder{}
	r := newRouter(rec, http.StatusOK, true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/billing/42/mark-paid", nil))

	require.Len(t, rec.events, 1)
	assert.Equal(t, BillingPaid, rec.events[0].eventType)

	var p Payload
	require.NoError(t, json.Unmarshal(rec.events[0].payload, &p))
	assert.Equal(t, "billing", p.Resource)
	assert.Equal(t, "p-1", p.Additional["patient_id"])
}

func TestTrackEvent_SkipsFailures(t *testing.T) {
	rec := &fakeRecorder{}
	r := newRouter(rec, http.StatusUnprocessableEntity, true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/billing/42/mark-paid", nil))
	assert.Empty(t, rec.events)
}

func TestTrackEvent_SkipsWithoutData(t *testing.T) {
	rec := &fakeRecorder{}
	r := newRouter(rec, http.StatusOK, false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/billing/42/mark-paid", nil))
	assert.Empty(t, rec.events)
}
