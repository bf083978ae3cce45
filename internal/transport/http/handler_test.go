package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cwrk-planet/meet-service/internal/domain"
	"github.com/cwrk-planet/meet-service/internal/memstore"
	"github.com/cwrk-planet/meet-service/internal/security"
	"github.com/cwrk-planet/meet-service/internal/service"
)

const testTransportURL = "wss://sfu.test:7880"

func maxPtr(n int64) *int64 { return &n }

func newTestServer(t *testing.T) (*httptest.Server, *service.RoomService) {
	t.Helper()

	registry := memstore.NewRoomRegistry()
	roomSvc := service.NewRoomService(registry)
	admissionSvc := service.NewAdmissionService(registry)
	issuer := security.NewAccessTokenIssuer("api-key-test", "api-secret-test", 10*time.Minute)

	h := NewHandler(roomSvc, admissionSvc, issuer, nil, testTransportURL)
	srv := httptest.NewServer(NewRouter(h, nil, nil))
	t.Cleanup(srv.Close)

	return srv, roomSvc
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)

	return resp, decoded
}

func TestCreateRoom_Created(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/rooms", CreateRoomRequest{
		Name: "Standup", IsPublic: false, Password: "secret", MaxParticipants: maxPtr(5),
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%v)", resp.StatusCode, body)
	}
	if body["name"] != "Standup" {
		t.Fatalf("name: %v", body["name"])
	}
	if body["participantCount"] != float64(0) {
		t.Fatalf("participantCount: %v", body["participantCount"])
	}
	if body["maxParticipants"] != float64(5) {
		t.Fatalf("maxParticipants: %v", body["maxParticipants"])
	}
	// пароль не должен эхоться наружу
	if _, ok := body["password"]; ok {
		t.Fatalf("password leaked into response: %v", body)
	}
}

func TestCreateRoom_BadRequests(t *testing.T) {
	srv, _ := newTestServer(t)

	cases := []struct {
		name string
		req  CreateRoomRequest
	}{
		{"empty name", CreateRoomRequest{Name: "  ", IsPublic: true}},
		{"private without password", CreateRoomRequest{Name: "Standup", IsPublic: false, Password: ""}},
		{"max out of range", CreateRoomRequest{Name: "Standup", IsPublic: true, MaxParticipants: maxPtr(75)}},
		// ноль в теле запроса — ошибка диапазона, а не «берём дефолт»
		{"max explicit zero", CreateRoomRequest{Name: "Standup", IsPublic: true, MaxParticipants: maxPtr(0)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := doJSON(t, http.MethodPost, srv.URL+"/rooms", tc.req)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d (%v)", resp.StatusCode, body)
			}
			if body["error"] == "" || body["error"] == nil {
				t.Fatalf("error message missing: %v", body)
			}
		})
	}
}

func TestCreateRoom_DuplicateName(t *testing.T) {
	srv, _ := newTestServer(t)

	req := CreateRoomRequest{Name: "Standup", IsPublic: true}
	if resp, _ := doJSON(t, http.MethodPost, srv.URL+"/rooms", req); resp.StatusCode != http.StatusCreated {
		t.Fatalf("first create: %d", resp.StatusCode)
	}
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/rooms", req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 on duplicate, got %d (%v)", resp.StatusCode, body)
	}
}

func TestListRooms_PublicOnly(t *testing.T) {
	srv, _ := newTestServer(t)

	doJSON(t, http.MethodPost, srv.URL+"/rooms", CreateRoomRequest{Name: "Open", IsPublic: true})
	doJSON(t, http.MethodPost, srv.URL+"/rooms", CreateRoomRequest{Name: "Secret", IsPublic: false, Password: "hunter2"})

	resp, err := http.Get(srv.URL + "/rooms")
	if err != nil {
		t.Fatalf("get rooms: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var items []RoomItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Open" {
		t.Fatalf("expected only the public room, got %+v", items)
	}
}

func TestGetRoom(t *testing.T) {
	srv, rooms := newTestServer(t)

	created, err := rooms.CreateRoom(context.Background(), domain.CreateRoomParams{Name: "Standup", IsPublic: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/rooms/"+created.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body["id"] != created.ID {
		t.Fatalf("id mismatch: %v", body["id"])
	}

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/rooms/ghost", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestDeleteRoom(t *testing.T) {
	srv, rooms := newTestServer(t)

	created, err := rooms.CreateRoom(context.Background(), domain.CreateRoomParams{Name: "Standup", IsPublic: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	resp, _ := doJSON(t, http.MethodDelete, srv.URL+"/rooms/"+created.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	// идемпотентность: повторное удаление — 404
	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/rooms/"+created.ID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", resp.StatusCode)
	}
}

func TestJoinRoom_Flow(t *testing.T) {
	srv, rooms := newTestServer(t)

	created, err := rooms.CreateRoom(context.Background(), domain.CreateRoomParams{
		Name: "Standup", IsPublic: false, Password: "secret", MaxParticipants: maxPtr(1),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// неизвестная комната
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/rooms/join", JoinRoomRequest{RoomID: "ghost", UserName: "alice"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	// неверный пароль
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/rooms/join", JoinRoomRequest{RoomID: created.ID, UserName: "alice", Password: "wrong"})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}

	// успех
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/rooms/join", JoinRoomRequest{RoomID: created.ID, UserName: "alice", Password: "secret"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", resp.StatusCode, body)
	}
	if body["token"] == "" || body["token"] == nil {
		t.Fatalf("token missing: %v", body)
	}
	if body["url"] != testTransportURL {
		t.Fatalf("url passthrough broken: %v", body["url"])
	}
	if body["roomName"] != "Standup" {
		t.Fatalf("roomName: %v", body["roomName"])
	}

	// комната на одного уже занята
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/rooms/join", JoinRoomRequest{RoomID: created.ID, UserName: "bob", Password: "secret"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 full, got %d (%v)", resp.StatusCode, body)
	}

	// неверный пароль в заполненной комнате — всё равно 403
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/rooms/join", JoinRoomRequest{RoomID: created.ID, UserName: "carol", Password: "wrong"})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 over full, got %d", resp.StatusCode)
	}
}

func TestJoinRoom_TokenScoped(t *testing.T) {
	srv, rooms := newTestServer(t)
	issuer := security.NewAccessTokenIssuer("api-key-test", "api-secret-test", 10*time.Minute)

	created, err := rooms.CreateRoom(context.Background(), domain.CreateRoomParams{Name: "Standup", IsPublic: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/rooms/join", JoinRoomRequest{RoomID: created.ID, UserName: "alice"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("join: %d (%v)", resp.StatusCode, body)
	}

	claims, err := issuer.ParseAndValidate(fmt.Sprint(body["token"]))
	if err != nil {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims.Subject != "alice" || claims.Video.Room != "Standup" {
		t.Fatalf("token scope wrong: sub=%q room=%q", claims.Subject, claims.Video.Room)
	}
}

func TestJoinRoom_MissingFields(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/rooms/join", JoinRoomRequest{RoomID: "", UserName: "alice"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/rooms/join", JoinRoomRequest{RoomID: "some-id", UserName: "  "})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestJoinRoom_SigningUnconfigured(t *testing.T) {
	registry := memstore.NewRoomRegistry()
	roomSvc := service.NewRoomService(registry)
	admissionSvc := service.NewAdmissionService(registry)
	issuer := security.NewAccessTokenIssuer("", "", 0) // нет ключей

	h := NewHandler(roomSvc, admissionSvc, issuer, nil, testTransportURL)
	srv := httptest.NewServer(NewRouter(h, nil, nil))
	t.Cleanup(srv.Close)

	created, err := roomSvc.CreateRoom(context.Background(), domain.CreateRoomParams{Name: "Standup", IsPublic: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/rooms/join", JoinRoomRequest{RoomID: created.ID, UserName: "alice"})
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	// в сообщении не должно быть секретов, только факт мисконфигурации
	if body["error"] != "credential signing unavailable" {
		t.Fatalf("unexpected error message: %v", body["error"])
	}

	// слот должен быть возвращён
	got, err := roomSvc.GetRoom(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	if got.ParticipantCount != 0 {
		t.Fatalf("failed issue left a reserved slot: %d", got.ParticipantCount)
	}
}

func TestLeaveRoom(t *testing.T) {
	srv, rooms := newTestServer(t)

	created, err := rooms.CreateRoom(context.Background(), domain.CreateRoomParams{Name: "Standup", IsPublic: true, MaxParticipants: maxPtr(1)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if resp, _ := doJSON(t, http.MethodPost, srv.URL+"/rooms/join", JoinRoomRequest{RoomID: created.ID, UserName: "alice"}); resp.StatusCode != http.StatusOK {
		t.Fatalf("join: %d", resp.StatusCode)
	}
	if resp, _ := doJSON(t, http.MethodPost, srv.URL+"/rooms/leave", LeaveRoomRequest{RoomID: created.ID}); resp.StatusCode != http.StatusOK {
		t.Fatalf("leave: %d", resp.StatusCode)
	}
	// после leave слот снова свободен
	if resp, _ := doJSON(t, http.MethodPost, srv.URL+"/rooms/join", JoinRoomRequest{RoomID: created.ID, UserName: "bob"}); resp.StatusCode != http.StatusOK {
		t.Fatalf("join after leave: %d", resp.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
