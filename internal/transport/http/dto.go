package http

import "time"

// CreateRoomRequest — тело POST /rooms. MaxParticipants указателем,
// чтобы отличать отсутствие поля от явно присланного нуля.
type CreateRoomRequest struct {
	Name            string `json:"name"`
	IsPublic        bool   `json:"isPublic"`
	Password        string `json:"password,omitempty"`
	MaxParticipants *int64 `json:"maxParticipants,omitempty"`
}

// RoomItem — представление комнаты для клиента; пароль не эхуется.
type RoomItem struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	IsPublic         bool      `json:"isPublic"`
	CreatedAt        time.Time `json:"createdAt"`
	ParticipantCount int64     `json:"participantCount"`
	MaxParticipants  int64     `json:"maxParticipants"`
}

type JoinRoomRequest struct {
	RoomID   string `json:"roomId"`
	UserName string `json:"userName"`
	Password string `json:"password,omitempty"`
}

// JoinRoomResponse — credential для внешнего медиа-транспорта.
// URL берётся из конфигурации и пробрасывается как есть.
type JoinRoomResponse struct {
	Token    string `json:"token"`
	URL      string `json:"url"`
	RoomName string `json:"roomName"`
}

type LeaveRoomRequest struct {
	RoomID string `json:"roomId"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
