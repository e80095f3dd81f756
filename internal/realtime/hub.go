package realtime

import "encoding/json"

// Hub owns the set of connected clients and routes published party
// events to the clients watching that party code.
type Hub struct {
	// clients per party code
	rooms map[string]map[*Client]bool

	// Inbound messages from Redis to fan out.
	broadcast chan []byte

	register   chan *Client
	unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// event is the envelope every publisher uses; payload.code selects the
// room.
type event struct {
	Payload struct {
		Code string `json:"code"`
	} `json:"payload"`
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			room := h.rooms[client.code]
			if room == nil {
				room = make(map[*Client]bool)
				h.rooms[client.code] = room
			}
			room[client] = true

		case client := <-h.unregister:
			if room, ok := h.rooms[client.code]; ok {
				if _, ok := room[client]; ok {
					h.drop(client)
				}
			}

		case message := <-h.broadcast:
			var ev event
			if err := json.Unmarshal(message, &ev); err != nil || ev.Payload.Code == "" {
				continue
			}
			for client := range h.rooms[ev.Payload.Code] {
				select {
				case client.send <- message:
				default:
					h.drop(client)
				}
			}
		}
	}
}

func (h *Hub) drop(client *Client) {
	room := h.rooms[client.code]
	delete(room, client)
	if len(room) == 0 {
		delete(h.rooms, client.code)
	}
	close(client.send)
	_ = client.conn.Close()
}
