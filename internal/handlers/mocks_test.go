package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"

	"miheater/internal/heater"
	"miheater/internal/models"
	"miheater/internal/service"
)

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastParseToken string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	return m.signUpID, m.signUpErr
}

func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	return m.genTokenToken, m.genTokenErr
}

func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

func (m *mockAuth) Bootstrap(ctx context.Context, username, password string) error { return nil }

type mockControl struct {
	applyErr  error
	paramsErr error
	applied   []heater.Command
	params    map[string]any
}

func (m *mockControl) Apply(ctx context.Context, cmd heater.Command) (heater.Ack, error) {
	if m.applyErr != nil {
		return nil, m.applyErr
	}
	m.applied = append(m.applied, cmd)
	return heater.Ack{"ok"}, nil
}

func (m *mockControl) SetParams(ctx context.Context, params map[string]any) (map[string]heater.Ack, error) {
	m.params = params
	if m.paramsErr != nil {
		return nil, m.paramsErr
	}
	acks := make(map[string]heater.Ack, len(params))
	for k := range params {
		acks[k] = heater.Ack{"ok"}
	}
	return acks, nil
}

func (m *mockControl) Model() heater.ModelSpec {
	return heater.DefaultRegistry().Resolve(heater.ModelMA1)
}

type mockMonitoring struct {
	state      models.HeaterState
	err        error
	refreshErr error
	refreshes  int
}

func (m *mockMonitoring) GetState(ctx context.Context) (models.HeaterState, error) {
	return m.state, m.err
}

func (m *mockMonitoring) Refresh(ctx context.Context) (models.HeaterState, error) {
	m.refreshes++
	return m.state, m.refreshErr
}

func (m *mockMonitoring) Invalidate() {}

type mockEventLog struct {
	resp []models.HeaterEvent
	err  error
	last service.LogFilter
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.HeaterEvent, error) {
	m.last = f
	return m.resp, m.err
}

func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewHandler(s, nil, Config{}).InitRoutes()
}

// do runs one request with an optional JSON body and a valid bearer token.
func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Authorization", "Bearer valid")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
