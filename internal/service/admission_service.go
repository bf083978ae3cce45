package service

import (
	"context"
	"crypto/subtle"

	"github.com/cwrk-planet/meet-service/internal/domain"
	"github.com/cwrk-planet/meet-service/internal/memstore"
)

// AdmissionService решает, пускать ли участника в комнату, и занимает слот.
// Порядок проверок фиксирован: существование -> пароль -> вместимость.
// Неверный пароль в заполненной приватной комнате даёт ErrWrongPassword,
// а не ErrRoomFull.
type AdmissionService struct {
	registry *memstore.RoomRegistry
}

func NewAdmissionService(registry *memstore.RoomRegistry) *AdmissionService {
	return &AdmissionService{registry: registry}
}

// Evaluate проверяет доступ и при успехе занимает слот участника.
// Проверка лимита и инкремент счётчика — одна атомарная операция
// реестра (Reserve), отдельного read-modify-write здесь нет.
func (s *AdmissionService) Evaluate(ctx context.Context, roomID, password string) (*domain.Room, error) {
	room, ok := s.registry.Get(roomID)
	if !ok {
		return nil, domain.ErrRoomNotFound
	}

	if !room.IsPublic && !passwordsEqual(room.Password, password) {
		return nil, domain.ErrWrongPassword
	}

	if err := s.registry.Reserve(roomID); err != nil {
		return nil, err
	}

	// свежая копия: счётчик уже увеличен
	room, ok = s.registry.Get(roomID)
	if !ok {
		return nil, domain.ErrRoomNotFound
	}

	return room, nil
}

// Leave освобождает слот. Если комнаты уже нет — молча выходим,
// повторный leave не ошибка.
func (s *AdmissionService) Leave(ctx context.Context, roomID string) {
	s.registry.Release(roomID)
}

// Пароли хранятся открытым текстом (см. DESIGN.md), но сравниваем за
// постоянное время, чтобы не светить длину совпавшего префикса.
func passwordsEqual(stored, supplied string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}
