package party

import (
	"context"
	"encoding/json"
	"log"
)

// Events go out on the shared broadcast channel after every successful
// mutation. Polling GET /party stays the primary contract; the events
// feed the websocket hub so connected clients see changes without
// waiting out their poll interval.
const eventChannel = "broadcast"

func (s *Server) publishEvent(ctx context.Context, eventType, code string, payload map[string]any) {
	if s.rdb == nil {
		return
	}
	if payload == nil {
		payload = map[string]any{}
	}
	payload["code"] = NormalizeCode(code)
	data, err := json.Marshal(map[string]any{
		"type":    eventType,
		"payload": payload,
	})
	if err != nil {
		log.Printf("party-service: marshal event: %v", err)
		return
	}
	if err := s.rdb.Publish(ctx, eventChannel, string(data)).Err(); err != nil {
		log.Printf("party-service: publish event: %v", err)
	}
}
