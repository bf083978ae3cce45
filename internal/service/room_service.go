package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cwrk-planet/meet-service/internal/domain"
	"github.com/cwrk-planet/meet-service/internal/memstore"

	"github.com/google/uuid"
)

type RoomService struct {
	registry *memstore.RoomRegistry
}

func NewRoomService(registry *memstore.RoomRegistry) *RoomService {
	return &RoomService{registry: registry}
}

// CreateRoom валидирует вход и создаёт комнату с нулевым числом участников.
func (s *RoomService) CreateRoom(ctx context.Context, params domain.CreateRoomParams) (*domain.Room, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, domain.ErrEmptyRoomName
	}

	password := strings.TrimSpace(params.Password)
	if !params.IsPublic && password == "" {
		return nil, domain.ErrPasswordRequired
	}
	if params.IsPublic {
		// у публичной комнаты пароля нет, что бы ни прислали
		password = ""
	}

	max := domain.DefaultMaxParticipants
	if params.MaxParticipants != nil {
		max = *params.MaxParticipants
		if max < domain.MinMaxParticipants || max > domain.MaxMaxParticipants {
			return nil, domain.ErrMaxParticipantsRange
		}
	}

	room := &domain.Room{
		ID:               uuid.NewString(),
		Name:             name,
		IsPublic:         params.IsPublic,
		Password:         password,
		CreatedAt:        time.Now(),
		ParticipantCount: 0,
		MaxParticipants:  max,
	}

	if err := s.registry.Create(room); err != nil {
		return nil, fmt.Errorf("registry.Create: %w", err)
	}

	return room, nil
}

// GetRoom возвращает комнату по ID.
func (s *RoomService) GetRoom(ctx context.Context, id string) (*domain.Room, error) {
	room, ok := s.registry.Get(id)
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return room, nil
}

// GetRoomByName возвращает комнату по имени (имена уникальны среди живых).
func (s *RoomService) GetRoomByName(ctx context.Context, name string) (*domain.Room, error) {
	room, ok := s.registry.GetByName(name)
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return room, nil
}

// ListPublicRooms возвращает публичные комнаты в порядке создания.
func (s *RoomService) ListPublicRooms(ctx context.Context) []domain.Room {
	return s.registry.ListPublic()
}

// DeleteRoom — опционально, если создатель покинул комнату
func (s *RoomService) DeleteRoom(ctx context.Context, id string) error {
	if !s.registry.Delete(id) {
		return domain.ErrRoomNotFound
	}
	return nil
}
