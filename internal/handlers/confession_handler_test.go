package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veilroom/backend/internal/confessions"
	"github.com/veilroom/backend/internal/handlers"
	"github.com/veilroom/backend/internal/models"
	"github.com/veilroom/backend/internal/repositories"
)

type fakeDirectory struct{}

func (fakeDirectory) UserExists(_ context.Context, userID string) (bool, error) {
	return userID == "1" || userID == "2", nil
}

func (fakeDirectory) OwnerProjection(_ context.Context, userID string) (*models.OwnerView, error) {
	return &models.OwnerView{DisplayName: "Anon#" + userID}, nil
}

func (fakeDirectory) EnsureDisplayName(_ context.Context, _ string) error { return nil }

func newTestHandler() *handlers.ConfessionHandler {
	store := repositories.NewMemoryConfessionRepository()
	return handlers.NewConfessionHandler(confessions.NewService(store, fakeDirectory{}))
}

// call invokes an echo handler directly with an authenticated request
func call(t *testing.T, h echo.HandlerFunc, method, target, body string, userID uint, params map[string]string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("userID", userID)
	names := make([]string, 0, len(params))
	values := make([]string, 0, len(params))
	for name, value := range params {
		names = append(names, name)
		values = append(values, value)
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return rec, h(c)
}

func createConfession(t *testing.T, h *handlers.ConfessionHandler) string {
	t.Helper()
	body := `{"text":"I lost my notes today","secretCode":"1234","category":"Study","hashtags":["Exams"]}`
	rec, err := call(t, h.CreateConfession, http.MethodPost, "/confessions", body, 1, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Confession models.ConfessionView `json:"confession"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Confession.ID)
	return resp.Confession.ID
}

func TestCreateConfessionEndpoint(t *testing.T) {
	h := newTestHandler()
	id := createConfession(t, h)

	rec, err := call(t, h.GetConfession, http.MethodGet, "/confessions/"+id, "", 1, map[string]string{"id": id})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var view models.ConfessionView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "I lost my notes today", view.Text)
	assert.Equal(t, []string{"exams"}, view.Hashtags)
	assert.NotContains(t, rec.Body.String(), "1234")
	assert.NotContains(t, rec.Body.String(), "secretCode")
}

func TestCreateConfessionRejectsBadPayload(t *testing.T) {
	h := newTestHandler()

	tests := []struct {
		name string
		body string
	}{
		{"text too short", `{"text":"short","secretCode":"1234"}`},
		{"missing secret code", `{"text":"a perfectly fine confession"}`},
		{"unknown category", `{"text":"a perfectly fine confession","secretCode":"1234","category":"Gossip"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := call(t, h.CreateConfession, http.MethodPost, "/confessions", tt.body, 1, nil)
			var httpErr *echo.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, http.StatusBadRequest, httpErr.Code)
		})
	}
}

func TestReactEndpoint(t *testing.T) {
	h := newTestHandler()
	id := createConfession(t, h)

	rec, err := call(t, h.ReactToConfession, http.MethodPost, "/confessions/"+id+"/react",
		`{"reactionType":"like"}`, 2, map[string]string{"id": id})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Reactions models.ReactionCounts `json:"reactions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.ReactionCounts{Like: 1}, resp.Reactions)

	_, err = call(t, h.ReactToConfession, http.MethodPost, "/confessions/"+id+"/react",
		`{"reactionType":"grumpy"}`, 2, map[string]string{"id": id})
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestUpdateEndpointStatusCodes(t *testing.T) {
	h := newTestHandler()
	id := createConfession(t, h)

	update := func(userID uint, currentCode string) *echo.HTTPError {
		body := fmt.Sprintf(`{"text":"a quite different confession text","secretCode":"5678","currentSecretCode":%q}`, currentCode)
		_, err := call(t, h.UpdateConfession, http.MethodPut, "/confessions/"+id, body, userID, map[string]string{"id": id})
		if err == nil {
			return nil
		}
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		return httpErr
	}

	// Wrong owner: 403 even with the correct code.
	httpErr := update(2, "1234")
	require.NotNil(t, httpErr)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)

	// Right owner, wrong code: 401.
	httpErr = update(1, "9999")
	require.NotNil(t, httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)

	// Right owner, right code: success.
	assert.Nil(t, update(1, "1234"))
}

func TestDeleteEndpointLifecycle(t *testing.T) {
	h := newTestHandler()
	id := createConfession(t, h)

	rec, err := call(t, h.DeleteConfession, http.MethodDelete, "/confessions/"+id,
		`{"secretCode":"1234"}`, 1, map[string]string{"id": id})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Reading it back 404s.
	_, err = call(t, h.GetConfession, http.MethodGet, "/confessions/"+id, "", 1, map[string]string{"id": id})
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)

	// So does deleting it again, even with the correct code.
	_, err = call(t, h.DeleteConfession, http.MethodDelete, "/confessions/"+id,
		`{"secretCode":"1234"}`, 1, map[string]string{"id": id})
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestListEndpoint(t *testing.T) {
	h := newTestHandler()
	createConfession(t, h)
	createConfession(t, h)

	rec, err := call(t, h.ListConfessions, http.MethodGet, "/confessions?category=Study&sortBy=trending", "", 1, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Confessions []models.ConfessionView `json:"confessions"`
		Total       int                     `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	require.Len(t, resp.Confessions, 2)
	require.NotNil(t, resp.Confessions[0].Owner)
	assert.Equal(t, "Anon#1", resp.Confessions[0].Owner.DisplayName)
}
