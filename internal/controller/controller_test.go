package controller

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"jurisperform-be/internal/dto"
	"jurisperform-be/internal/pkg/serverutils"
	"jurisperform-be/internal/service"
	internalWS "jurisperform-be/internal/websocket"
	"jurisperform-be/pkg/course"
	"jurisperform-be/pkg/llm"
	"jurisperform-be/pkg/tutor"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testUserId = uuid.MustParse("7f3c2a9e-1b4d-4c8e-9a6f-2d5e8b1c0a37")

func fakeAuth(ctx *fiber.Ctx) error {
	ctx.Locals("user_id", testUserId.String())
	return ctx.Next()
}

func newTestApp(register func(api fiber.Router)) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	register(app.Group("/api"))
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, target, body string) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var out map[string]any
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return resp, out
}

// course

func TestCourseController(t *testing.T) {
	catalog := course.DefaultCatalog()
	svc := service.NewCourseService(catalog, course.NewResolver(catalog, course.DefaultScoringConfig()))
	app := newTestApp(func(api fiber.Router) { NewCourseController(svc).RegisterRoutes(api) })

	tests := []struct {
		name   string
		target string
		status int
	}{
		{"list", "/api/course/v1", http.StatusOK},
		{"list by level", "/api/course/v1?level=CRFPA", http.StatusOK},
		{"list bad level", "/api/course/v1?level=M1", http.StatusBadRequest},
		{"show", "/api/course/v1/l3-tglf", http.StatusOK},
		{"show missing", "/api/course/v1/nope", http.StatusNotFound},
		{"resolve", "/api/course/v1/resolve?query=droit%20du%20travail&level=L3", http.StatusOK},
		{"resolve without query", "/api/course/v1/resolve", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doJSON(t, app, http.MethodGet, tt.target, "")
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.status == http.StatusOK, body["success"])
		})
	}

	_, body := doJSON(t, app, http.MethodGet, "/api/course/v1/resolve?query=droit%20du%20travail&level=L3", "")
	data := body["data"].(map[string]any)
	assert.Equal(t, "l3-droit-travail", data["course"].(map[string]any)["id"])
}

// conversation

type fakeConversationService struct {
	service.IConversationService
	gotPage, gotLimit int
	gotUser           uuid.UUID
}

func (f *fakeConversationService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateConversationRequest) (*dto.ConversationResponse, error) {
	f.gotUser = userId
	return &dto.ConversationResponse{Id: uuid.New(), UserId: userId, Title: req.Title}, nil
}

func (f *fakeConversationService) List(ctx context.Context, userId uuid.UUID, page, limit int) (*dto.ConversationListResponse, error) {
	f.gotPage, f.gotLimit = page, limit
	return &dto.ConversationListResponse{Data: []dto.ConversationPreviewResponse{}}, nil
}

func (f *fakeConversationService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ConversationWithMessagesResponse, error) {
	return nil, service.ErrConversationNotFound
}

func (f *fakeConversationService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	return nil
}

func TestConversationController(t *testing.T) {
	svc := &fakeConversationService{}
	app := newTestApp(func(api fiber.Router) { NewConversationController(svc).RegisterRoutes(api, fakeAuth) })

	resp, body := doJSON(t, app, http.MethodPost, "/api/conversation/v1", `{"title":"Droit pénal","selectedLevel":"L2"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, testUserId, svc.gotUser)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/conversation/v1", `{"title":"x","selectedLevel":"M2"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/conversation/v1", `{"selectedLevel":"L1"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/conversation/v1?page=2&limit=5", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, svc.gotPage)
	assert.Equal(t, 5, svc.gotLimit)

	resp, body = doJSON(t, app, http.MethodGet, "/api/conversation/v1/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "conversation not found", body["message"])

	resp, _ = doJSON(t, app, http.MethodGet, "/api/conversation/v1/not-a-uuid", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/conversation/v1/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestConversationController_RequiresAuth(t *testing.T) {
	app := newTestApp(func(api fiber.Router) {
		NewConversationController(&fakeConversationService{}).RegisterRoutes(api, serverutils.NewJwtMiddleware("secret"))
	})
	resp, _ := doJSON(t, app, http.MethodGet, "/api/conversation/v1", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// chat

type fakeTutorService struct {
	prepareErr error
	gotReq     *dto.ChatRequest
}

func (f *fakeTutorService) Prepare(ctx context.Context, userId uuid.UUID, req *dto.ChatRequest) (*service.PreparedTurn, error) {
	f.gotReq = req
	if f.prepareErr != nil {
		return nil, f.prepareErr
	}
	return &service.PreparedTurn{UserId: userId}, nil
}

func (f *fakeTutorService) Run(ctx context.Context, turn *service.PreparedTurn, sink tutor.EventSink) (*tutor.Turn, error) {
	_ = sink.StepStart("msg-1")
	_ = sink.Text("Bonjour")
	_ = sink.StepFinish(llm.FinishStop, false)
	_ = sink.Finish(llm.FinishStop)
	return &tutor.Turn{Text: "Bonjour", Steps: 1, FinishReason: llm.FinishStop}, nil
}

func TestChatController_Streams(t *testing.T) {
	svc := &fakeTutorService{}
	app := newTestApp(func(api fiber.Router) { NewChatController(svc, nil).RegisterRoutes(api, fakeAuth) })

	req := httptest.NewRequest(http.MethodPost, "/api/chat/v1",
		strings.NewReader(`{"messages":[{"role":"user","content":"Bonjour"}],"selectedLevel":"L1"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, "v1", resp.Header.Get(tutor.DataStreamHeader))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, `f:{"messageId":"msg-1"}`, lines[0])
	assert.Equal(t, `0:"Bonjour"`, lines[1])
	assert.True(t, strings.HasPrefix(lines[3], "d:"))
	assert.Equal(t, "L1", svc.gotReq.SelectedLevel)
}

type slowTutorService struct {
	fakeTutorService
	delay time.Duration
}

func (f *slowTutorService) Run(ctx context.Context, turn *service.PreparedTurn, sink tutor.EventSink) (*tutor.Turn, error) {
	time.Sleep(f.delay)
	return f.fakeTutorService.Run(ctx, turn, sink)
}

func TestChatController_HeartbeatsWhileSilent(t *testing.T) {
	svc := &slowTutorService{delay: 60 * time.Millisecond}
	ctrl := &chatController{service: svc, log: zap.NewNop(), heartbeat: 5 * time.Millisecond}
	app := newTestApp(func(api fiber.Router) { ctrl.RegisterRoutes(api, fakeAuth) })

	req := httptest.NewRequest(http.MethodPost, "/api/chat/v1",
		strings.NewReader(`{"messages":[{"role":"user","content":"Bonjour"}]}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	assert.Equal(t, "2:[]", lines[0])
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "d:"))
}

type fakeHeartbeater struct {
	err   error
	beats int
}

func (f *fakeHeartbeater) Heartbeat() error {
	f.beats++
	return f.err
}

func TestWatchStream(t *testing.T) {
	tests := []struct {
		name         string
		heartbeatErr error
		shutdown     bool
		stopFirst    bool
		wantCanceled bool
	}{
		{"closed connection", errors.New("broken pipe"), false, false, true},
		{"server shutdown", nil, true, false, true},
		{"turn already over", nil, false, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			shutdown := make(chan struct{})
			if tt.shutdown {
				close(shutdown)
			}
			every := time.Millisecond
			if tt.shutdown || tt.stopFirst {
				every = time.Hour
			}

			if tt.stopFirst {
				cancel()
			}
			canceled := false
			sink := &fakeHeartbeater{err: tt.heartbeatErr}
			watchStream(ctx, func() { canceled = true; cancel() }, sink, shutdown, every)

			assert.Equal(t, tt.wantCanceled, canceled)
			if tt.heartbeatErr != nil {
				assert.Equal(t, 1, sink.beats)
			}
		})
	}
}

func TestChatController_RejectsBeforeStreaming(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		prepareErr error
		status     int
	}{
		{"no messages", `{"messages":[]}`, nil, http.StatusBadRequest},
		{"bad role", `{"messages":[{"role":"tool","content":"x"}]}`, nil, http.StatusBadRequest},
		{"bad level", `{"messages":[{"role":"user","content":"x"}],"selectedLevel":"M1"}`, nil, http.StatusBadRequest},
		{"malformed body", `{`, nil, http.StatusBadRequest},
		{"foreign conversation", `{"messages":[{"role":"user","content":"x"}]}`, service.ErrConversationNotFound, http.StatusNotFound},
		{"unexpected failure", `{"messages":[{"role":"user","content":"x"}]}`, errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeTutorService{prepareErr: tt.prepareErr}
			app := newTestApp(func(api fiber.Router) { NewChatController(svc, nil).RegisterRoutes(api, fakeAuth) })

			resp, body := doJSON(t, app, http.MethodPost, "/api/chat/v1", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, false, body["success"])
		})
	}
}

// live

func TestLiveController_RequiresUpgrade(t *testing.T) {
	hub := internalWS.NewHub(nil)

	tests := []struct {
		name string
		auth fiber.Handler
		code int
	}{
		{"plain request", fakeAuth, http.StatusUpgradeRequired},
		{"no token", serverutils.NewJwtMiddleware("secret"), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(func(api fiber.Router) { NewLiveController(hub, nil).RegisterRoutes(api, tt.auth) })
			resp, _ := doJSON(t, app, http.MethodGet, "/api/live/v1/ws", "")
			assert.Equal(t, tt.code, resp.StatusCode)
		})
	}
}
