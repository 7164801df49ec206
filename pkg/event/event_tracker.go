package event

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const ContextKey = "eventCtx"

type EventTrackerMiddleware struct {
	recorder Recorder
}

func NewEventTrackerMiddleware(recorder Recorder) *EventTrackerMiddleware {
	return &EventTrackerMiddleware{
		recorder: recorder,
	}
}

func (m *EventTrackerMiddleware) TrackEvent(resource, operation string) gin.HandlerFunc {
	eventType := Name(resource, operation)

	return func(c *gin.Context) {
		eventCtx := &EventContext{
			Resource:  resource,
			Operation: operation,
		}
		c.Set(ContextKey, eventCtx)

		c.Next()

		if eventCtx.NewData == nil || c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		payload, err := json.Marshal(Payload{
			Resource:   resource,
			Operation:  operation,
			Data:       eventCtx.NewData,
			Previous:   eventCtx.OldData,
			Additional: eventCtx.Additional,
			RequestID:  c.GetString("request_id"),
		})
		if err != nil {
			log.Error().Err(err).Str("event_type", string(eventType)).Msg("Failed to marshal event payload")
			return
		}

		if err := m.recorder.Record(c.Request.Context(), eventType, payload); err != nil {
			log.Error().Err(err).Str("event_type", string(eventType)).Msg("Failed to create event")
		}
	}
}

// FromContext returns the event context installed by TrackEvent, or nil.
func FromContext(c *gin.Context) *EventContext {
	v, ok := c.Get(ContextKey)
	if !ok {
		return nil
	}
	eventCtx, _ := v.(*EventContext)
	return eventCtx
}

// SetNewData is a no-op on routes without tracking.
func SetNewData(c *gin.Context, data interface{}, additional map[string]interface{}) {
	if eventCtx := FromContext(c); eventCtx != nil {
		eventCtx.NewData = data
		eventCtx.Additional = additional
	}
}

// SetOldData records the state before the change.
func SetOldData(c *gin.Context, data interface{}) {
	if eventCtx := FromContext(c); eventCtx != nil {
		eventCtx.OldData = data
	}
}
