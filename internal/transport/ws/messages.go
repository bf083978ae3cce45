package ws

import "time"

// Типы событий лобби
const (
	TypeState       = "state"        // снапшот публичных комнат при подключении
	TypeRoomCreated = "room_created" // появилась публичная комната
	TypeRoomUpdated = "room_updated" // изменился счётчик участников
	TypeRoomDeleted = "room_deleted" // комната удалена
)

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// RoomStateItem — публичное представление комнаты; пароль сюда не попадает.
type RoomStateItem struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	IsPublic         bool      `json:"isPublic"`
	CreatedAt        time.Time `json:"createdAt"`
	ParticipantCount int64     `json:"participantCount"`
	MaxParticipants  int64     `json:"maxParticipants"`
}

type StatePayload struct {
	Rooms []RoomStateItem `json:"rooms"`
}

type RoomEventPayload struct {
	Room RoomStateItem `json:"room"`
}

type RoomDeletedPayload struct {
	RoomID string `json:"room_id"`
}
