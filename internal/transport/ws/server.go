package ws

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/cwrk-planet/meet-service/internal/domain"

	"github.com/gorilla/websocket"
)

type RoomLister interface {
	ListPublicRooms(ctx context.Context) []domain.Room
}

// Server раздаёт события лобби: клиент получает снапшот публичных комнат
// и дальше слушает room_created/room_updated/room_deleted вместо поллинга
// GET /rooms.
type Server struct {
	upgrader websocket.Upgrader
	hub      *Hub
	roomSvc  RoomLister

	pingEvery time.Duration
}

func NewServer(hub *Hub, roomSvc RoomLister) *Server {
	return &Server{
		hub:     hub,
		roomSvc: roomSvc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery: 15 * time.Second,
	}
}

func toStateItem(room domain.Room) RoomStateItem {
	return RoomStateItem{
		ID:               room.ID,
		Name:             room.Name,
		IsPublic:         room.IsPublic,
		CreatedAt:        room.CreatedAt,
		ParticipantCount: room.ParticipantCount,
		MaxParticipants:  room.MaxParticipants,
	}
}

// NotifyRoomCreated шлёт событие только для публичных комнат: приватные
// в лобби не светятся.
func (s *Server) NotifyRoomCreated(room *domain.Room) {
	if room == nil || !room.IsPublic {
		return
	}
	s.hub.Broadcast(Message{
		Type:    TypeRoomCreated,
		Payload: RoomEventPayload{Room: toStateItem(*room)},
	})
}

func (s *Server) NotifyRoomUpdated(room *domain.Room) {
	if room == nil || !room.IsPublic {
		return
	}
	s.hub.Broadcast(Message{
		Type:    TypeRoomUpdated,
		Payload: RoomEventPayload{Room: toStateItem(*room)},
	})
}

func (s *Server) NotifyRoomDeleted(roomID string) {
	s.hub.Broadcast(Message{
		Type:    TypeRoomDeleted,
		Payload: RoomDeletedPayload{RoomID: roomID},
	})
}

// WS endpoint: GET /ws/lobby
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}

	c := newWsConn(conn)
	s.hub.Add(c)

	if err := s.sendState(r.Context(), c); err != nil {
		slog.Warn("ws send initial state failed", "err", err)
	}

	go s.writeLoop(r.Context(), c)
	s.readLoop(c)

	s.hub.Remove(c)
	if err := c.Close(); err != nil {
		slog.Debug("ws close failed", "err", err)
	}
}

func (s *Server) sendState(ctx context.Context, c *wsConn) error {
	rooms := s.roomSvc.ListPublicRooms(ctx)
	items := make([]RoomStateItem, 0, len(rooms))
	for _, room := range rooms {
		items = append(items, toStateItem(room))
	}

	return c.Send(Message{
		Type:    TypeState,
		Payload: StatePayload{Rooms: items},
	})
}

// Клиент лобби ничего не присылает; читаем только ради контроля
// соединения и pong'ов.
func (s *Server) readLoop(c *wsConn) {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(1 << 16)
	c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) writeLoop(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
		case <-ctx.Done():
			return
		case <-c.closed:
			return
		}
	}
}

type wsConn struct {
	conn   *websocket.Conn
	sendMu chan struct{}
	closed chan struct{}
}

func newWsConn(c *websocket.Conn) *wsConn {
	return &wsConn{
		conn:   c,
		sendMu: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

func (c *wsConn) Send(msg Message) error {
	c.sendMu <- struct{}{}
	defer func() { <-c.sendMu }()
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))

	return c.conn.WriteJSON(msg)
}

func (c *wsConn) Close() error {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}

	return c.conn.Close()
}
