package memstore

import (
	"sort"
	"sync"

	"github.com/cwrk-planet/meet-service/internal/domain"
)

// RoomRegistry — единственный владелец записей Room. Все мутации идут
// через методы под одним mutex'ом, наружу отдаются только копии.
type RoomRegistry struct {
	mu     sync.RWMutex
	rooms  map[string]*domain.Room // id -> room
	byName map[string]string       // name -> id
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		rooms:  make(map[string]*domain.Room),
		byName: make(map[string]string),
	}
}

// Create вставляет комнату. Проверка уникальности имени и вставка идут
// под одним локом, иначе две конкурентные вставки пройдут обе.
func (r *RoomRegistry) Create(room *domain.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byName[room.Name]; taken {
		return domain.ErrRoomNameTaken
	}

	cp := *room
	r.rooms[cp.ID] = &cp
	r.byName[cp.Name] = cp.ID

	return nil
}

func (r *RoomRegistry) Get(id string) (*domain.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[id]
	if !ok {
		return nil, false
	}
	cp := *room

	return &cp, true
}

func (r *RoomRegistry) GetByName(name string) (*domain.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	cp := *r.rooms[id]

	return &cp, true
}

// ListPublic возвращает только публичные комнаты, отсортированные по
// created_at (при равенстве — по id), чтобы порядок был стабильным.
func (r *RoomRegistry) ListPublic() []domain.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		if room.IsPublic {
			out = append(out, *room)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})

	return out
}

// Delete удаляет комнату; повторный вызов по тому же id возвращает false.
func (r *RoomRegistry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok {
		return false
	}
	delete(r.byName, room.Name)
	delete(r.rooms, id)

	return true
}

// SetParticipantCount — слепая перезапись счётчика (события внешнего
// транспорта). Лимит здесь не проверяется, это забота admission'а.
func (r *RoomRegistry) SetParticipantCount(id string, n int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok {
		return
	}
	if n < 0 {
		n = 0
	}
	room.ParticipantCount = n
}

// Reserve атомарно занимает слот: проверка лимита и инкремент под одним
// локом, чтобы два конкурентных join'а не переполнили комнату.
func (r *RoomRegistry) Reserve(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok {
		return domain.ErrRoomNotFound
	}
	if room.ParticipantCount >= room.MaxParticipants {
		return domain.ErrRoomFull
	}
	room.ParticipantCount++

	return nil
}

// Release освобождает слот; ниже нуля счётчик не уходит.
func (r *RoomRegistry) Release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok {
		return
	}
	if room.ParticipantCount > 0 {
		room.ParticipantCount--
	}
}
