package ws

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gofiber/contrib/websocket"

	"github.com/quizforge/quizforge_service/internal/providers"
	"github.com/quizforge/quizforge_service/internal/telemetry"
)

var (
	mu    sync.RWMutex
	rooms = map[string]map[*websocket.Conn]struct{}{}
)

type Action string

const (
	ActionJoin  Action = "join"
	ActionLeave Action = "leave"
)

type Room string

const (
	RoomSession Room = "quiz.session"
)

type Event string

const (
	EventQuestionReady    Event = "question.event.ready"
	EventQuestionError    Event = "question.event.error"
	EventQuestionAnswered Event = "question.event.answered"
)

type PayloadEvent struct {
	Event  Event                `json:"event"`
	Source providers.SourceName `json:"source,omitempty"`
	Data   any                  `json:"data,omitempty"`
}

type ClientMessage struct {
	Action Action `json:"action"`
	Room   string `json:"room"`
}

func HandleWS(c *websocket.Conn) {
	tlog := telemetry.L().With().Str("module", "ws").Logger()
	tlog.Info().Msg("ws_connected")
	defer func() {
		// cleanup on disconnect
		mu.Lock()
		for room := range rooms {
			delete(rooms[room], c)
		}
		mu.Unlock()
		_ = c.Close()
	}()

	for {
		_, msg, err := c.ReadMessage()
		if err != nil {
			break
		}

		var cm ClientMessage
		if err := json.Unmarshal(msg, &cm); err != nil {
			continue
		}

		switch cm.Action {
		case ActionJoin:
			joinRoom(c, cm.Room)
		case ActionLeave:
			leaveRoom(c, cm.Room)
		}
	}
}

func joinRoom(c *websocket.Conn, room string) {
	if room == "" {
		return
	}
	mu.Lock()
	if rooms[room] == nil {
		rooms[room] = map[*websocket.Conn]struct{}{}
	}
	rooms[room][c] = struct{}{}
	mu.Unlock()
	fmt.Printf("conn joined room: %s\n", room)
}

func leaveRoom(c *websocket.Conn, room string) {
	if room == "" {
		return
	}
	mu.Lock()
	delete(rooms[room], c)
	mu.Unlock()
	fmt.Printf("conn left room: %s\n", room)
}

func sessionRoom(sid string) string {
	return string(RoomSession) + "." + sid
}

func HasSubscribers(sid string) bool {
	mu.RLock()
	defer mu.RUnlock()
	return len(rooms[sessionRoom(sid)]) > 0
}

func broadcast(room string, pl PayloadEvent) {
	mu.RLock()
	conns := rooms[room]
	mu.RUnlock()

	for c := range conns {
		_ = c.WriteJSON(pl)
	}
}

type QuestionPayload struct {
	Index    int      `json:"index"`
	Question string   `json:"question,omitempty"`
	Options  []string `json:"options,omitempty"`
	Error    string   `json:"error,omitempty"`
}

func BroadcastQuestionReady(sid string, source providers.SourceName, index int, text string, options []string) {
	broadcast(sessionRoom(sid), PayloadEvent{
		Event:  EventQuestionReady,
		Source: source,
		Data: QuestionPayload{
			Index:    index,
			Question: text,
			Options:  options,
		},
	})
}

func BroadcastQuestionError(sid string, source providers.SourceName, index int, err error) {
	broadcast(sessionRoom(sid), PayloadEvent{
		Event:  EventQuestionError,
		Source: source,
		Data: QuestionPayload{
			Index: index,
			Error: err.Error(),
		},
	})
}

func BroadcastAnswered(sid string, index int, correct bool) {
	broadcast(sessionRoom(sid), PayloadEvent{
		Event: EventQuestionAnswered,
		Data: map[string]any{
			"index":   index,
			"correct": correct,
		},
	})
}
