package domain

import "time"

const (
	// Лимиты участников комнаты
	DefaultMaxParticipants int64 = 10
	MinMaxParticipants     int64 = 1
	MaxMaxParticipants     int64 = 50
)

type Room struct {
	ID               string
	Name             string
	IsPublic         bool
	Password         string // только для приватных комнат; клиентам не отдаётся
	CreatedAt        time.Time
	ParticipantCount int64
	MaxParticipants  int64
}

// CreateRoomParams — вход операции создания комнаты.
// MaxParticipants == nil означает «не указано» (берётся
// DefaultMaxParticipants); явный ноль — ошибка диапазона, не дефолт.
type CreateRoomParams struct {
	Name            string
	IsPublic        bool
	Password        string
	MaxParticipants *int64
}
