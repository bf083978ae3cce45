package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cwrk-planet/meet-service/internal/domain"
	"github.com/cwrk-planet/meet-service/internal/security"
	"github.com/cwrk-planet/meet-service/internal/service"
	"github.com/cwrk-planet/meet-service/internal/transport/ws"
	"github.com/cwrk-planet/meet-service/pkg/httputil"

	"github.com/go-chi/chi/v5"
)

// Notifier — события лобби; nil-safe обёртки ниже позволяют собирать
// handler без ws-сервера в тестах.
type Notifier interface {
	NotifyRoomCreated(room *domain.Room)
	NotifyRoomUpdated(room *domain.Room)
	NotifyRoomDeleted(roomID string)
}

type Handler struct {
	roomSvc      *service.RoomService
	admissionSvc *service.AdmissionService
	issuer       *security.AccessTokenIssuer
	notifier     Notifier

	transportURL string // endpoint внешнего SFU, отдаётся клиенту при join
}

func NewHandler(room *service.RoomService, admission *service.AdmissionService, issuer *security.AccessTokenIssuer, notifier Notifier, transportURL string) *Handler {
	return &Handler{
		roomSvc:      room,
		admissionSvc: admission,
		issuer:       issuer,
		notifier:     notifier,
		transportURL: transportURL,
	}
}

func toRoomItem(room *domain.Room) RoomItem {
	return RoomItem{
		ID:               room.ID,
		Name:             room.Name,
		IsPublic:         room.IsPublic,
		CreatedAt:        room.CreatedAt,
		ParticipantCount: room.ParticipantCount,
		MaxParticipants:  room.MaxParticipants,
	}
}

// POST /rooms
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	room, err := h.roomSvc.CreateRoom(r.Context(), domain.CreateRoomParams{
		Name:            req.Name,
		IsPublic:        req.IsPublic,
		Password:        req.Password,
		MaxParticipants: req.MaxParticipants,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyRoomName),
			errors.Is(err, domain.ErrPasswordRequired),
			errors.Is(err, domain.ErrMaxParticipantsRange),
			errors.Is(err, domain.ErrRoomNameTaken):
			httputil.Error(w, http.StatusBadRequest, userMessage(err))
		default:
			slog.Error("handler.CreateRoom:", slog.Any("err", err))
			httputil.Error(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	h.notifyCreated(room)
	httputil.JSON(w, http.StatusCreated, toRoomItem(room))
}

// GET /rooms — только публичные комнаты
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms := h.roomSvc.ListPublicRooms(r.Context())

	items := make([]RoomItem, 0, len(rooms))
	for _, rm := range rooms {
		items = append(items, toRoomItem(&rm))
	}

	httputil.JSON(w, http.StatusOK, items)
}

// GET /rooms/{id}
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	room, err := h.roomSvc.GetRoom(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			httputil.Error(w, http.StatusNotFound, "room not found")
			return
		}
		slog.Error("handler.GetRoom:", slog.Any("err", err))
		httputil.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httputil.JSON(w, http.StatusOK, toRoomItem(room))
}

// DELETE /rooms/{id}
func (h *Handler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.roomSvc.DeleteRoom(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			httputil.Error(w, http.StatusNotFound, "room not found")
			return
		}
		slog.Error("handler.DeleteRoom:", slog.Any("err", err))
		httputil.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.notifyDeleted(id)
	httputil.JSON(w, http.StatusOK, MessageResponse{Message: "room deleted"})
}

// POST /rooms/join
func (h *Handler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	var req JoinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	req.UserName = strings.TrimSpace(req.UserName)
	if req.RoomID == "" || req.UserName == "" {
		httputil.Error(w, http.StatusBadRequest, "roomId and userName are required")
		return
	}

	room, err := h.admissionSvc.Evaluate(r.Context(), req.RoomID, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
			httputil.Error(w, http.StatusNotFound, "room not found")
		case errors.Is(err, domain.ErrWrongPassword):
			httputil.Error(w, http.StatusForbidden, "wrong password")
		case errors.Is(err, domain.ErrRoomFull):
			httputil.Error(w, http.StatusBadRequest, "room is full")
		default:
			slog.Error("handler.JoinRoom:", slog.Any("err", err))
			httputil.Error(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	token, err := h.issuer.Issue(room.Name, req.UserName)
	if err != nil {
		// слот уже занят — возвращаем его, частичного состояния не оставляем
		h.admissionSvc.Leave(r.Context(), room.ID)
		// секреты в ответ не попадают, только факт мисконфигурации
		slog.Error("handler.JoinRoom.Issue:", slog.Any("err", err))
		httputil.Error(w, http.StatusInternalServerError, "credential signing unavailable")
		return
	}

	h.notifyUpdated(room)
	httputil.JSON(w, http.StatusOK, JoinRoomResponse{
		Token:    token,
		URL:      h.transportURL,
		RoomName: room.Name,
	})
}

// POST /rooms/leave
func (h *Handler) LeaveRoom(w http.ResponseWriter, r *http.Request) {
	var req LeaveRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.RoomID == "" {
		httputil.Error(w, http.StatusBadRequest, "roomId is required")
		return
	}

	h.admissionSvc.Leave(r.Context(), req.RoomID)
	if room, err := h.roomSvc.GetRoom(r.Context(), req.RoomID); err == nil {
		h.notifyUpdated(room)
	}

	httputil.JSON(w, http.StatusOK, MessageResponse{Message: "left room"})
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrRoomNameTaken):
		return "a room with this name already exists"
	case errors.Is(err, domain.ErrEmptyRoomName):
		return "room name is required"
	case errors.Is(err, domain.ErrPasswordRequired):
		return "password is required for private rooms"
	case errors.Is(err, domain.ErrMaxParticipantsRange):
		return "maxParticipants must be between 1 and 50"
	default:
		return "invalid input"
	}
}

func (h *Handler) notifyCreated(room *domain.Room) {
	if h.notifier != nil {
		h.notifier.NotifyRoomCreated(room)
	}
}

func (h *Handler) notifyUpdated(room *domain.Room) {
	if h.notifier != nil {
		h.notifier.NotifyRoomUpdated(room)
	}
}

func (h *Handler) notifyDeleted(roomID string) {
	if h.notifier != nil {
		h.notifier.NotifyRoomDeleted(roomID)
	}
}

var _ Notifier = (*ws.Server)(nil)
