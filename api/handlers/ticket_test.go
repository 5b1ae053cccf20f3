package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/S-FX-com/Enque-Backend/internal/db"
	"github.com/S-FX-com/Enque-Backend/internal/model"
	"github.com/S-FX-com/Enque-Backend/internal/realtime"
	"github.com/S-FX-com/Enque-Backend/internal/repository"
)

// recordingNotifier captures published events instead of fanning them
// out to live sessions.
type recordingNotifier struct {
	mu     sync.Mutex
	events []notifiedEvent
}

type notifiedEvent struct {
	workspaceID string
	msg         *realtime.Message
}

func (n *recordingNotifier) Notify(workspaceID string, msg *realtime.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notifiedEvent{workspaceID: workspaceID, msg: msg})
}

func (n *recordingNotifier) last(t *testing.T) notifiedEvent {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.events, "expected at least one published event")
	return n.events[len(n.events)-1]
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

func newTestAPI(t *testing.T, mw ...gin.HandlerFunc) (*gin.Engine, *recordingNotifier) {
	t.Helper()
	database, err := db.NewTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	tickets := repository.NewTicketRepository(database)
	comments := repository.NewCommentRepository(database)
	notifier := &recordingNotifier{}
	logger := zerolog.Nop()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	api := r.Group("/api")

	NewTicketHandler(tickets, notifier, logger).RegisterRoutes(api, api)
	NewCommentHandler(comments, tickets, notifier, logger).RegisterRoutes(api, api)

	return r, notifier
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createTicket(t *testing.T, r *gin.Engine, workspaceID string) *model.Ticket {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/workspaces/"+workspaceID+"/tickets", gin.H{
		"title":       "Login broken",
		"description": "SSO redirect loops forever",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var ticket model.Ticket
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ticket))
	return &ticket
}

func TestCreateTicketPublishesEvent(t *testing.T) {
	r, notifier := newTestAPI(t)

	ticket := createTicket(t, r, "W1")
	assert.NotEmpty(t, ticket.ID)
	assert.Equal(t, model.TicketStatusUnread, ticket.Status)
	assert.Equal(t, model.TicketPriorityMedium, ticket.Priority)

	event := notifier.last(t)
	assert.Equal(t, "W1", event.workspaceID)
	assert.Equal(t, realtime.MessageTypeTicketCreated, event.msg.Type)

	var published model.Ticket
	require.NoError(t, json.Unmarshal(event.msg.Payload, &published))
	assert.Equal(t, ticket.ID, published.ID)
}

func TestCreateTicketRejectsMissingTitle(t *testing.T) {
	r, notifier := newTestAPI(t)

	w := doJSON(t, r, http.MethodPost, "/api/workspaces/W1/tickets", gin.H{
		"description": "no title",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, notifier.count(), "a rejected request must not publish")
}

func TestUpdateTicketPublishesEvent(t *testing.T) {
	r, notifier := newTestAPI(t)
	ticket := createTicket(t, r, "W1")

	w := doJSON(t, r, http.MethodPut, "/api/workspaces/W1/tickets/"+ticket.ID, gin.H{
		"status":   model.TicketStatusOpen,
		"priority": model.TicketPriorityHigh,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated model.Ticket
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, model.TicketStatusOpen, updated.Status)
	assert.Equal(t, model.TicketPriorityHigh, updated.Priority)
	assert.Equal(t, "Login broken", updated.Title, "fields absent from the request are untouched")

	event := notifier.last(t)
	assert.Equal(t, realtime.MessageTypeTicketUpdated, event.msg.Type)
}

func TestUpdateTicketRejectsBadStatus(t *testing.T) {
	r, _ := newTestAPI(t)
	ticket := createTicket(t, r, "W1")

	w := doJSON(t, r, http.MethodPut, "/api/workspaces/W1/tickets/"+ticket.ID, gin.H{
		"status": "Snoozed",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteTicketPublishesID(t *testing.T) {
	r, notifier := newTestAPI(t)
	ticket := createTicket(t, r, "W1")

	w := doJSON(t, r, http.MethodDelete, "/api/workspaces/W1/tickets/"+ticket.ID, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	event := notifier.last(t)
	assert.Equal(t, realtime.MessageTypeTicketDeleted, event.msg.Type)
	assert.JSONEq(t, `{"ticketId":"`+ticket.ID+`"}`, string(event.msg.Payload))

	w = doJSON(t, r, http.MethodGet, "/api/workspaces/W1/tickets/"+ticket.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTicketRoutesAreWorkspaceScoped(t *testing.T) {
	r, _ := newTestAPI(t)
	ticket := createTicket(t, r, "W1")

	w := doJSON(t, r, http.MethodGet, "/api/workspaces/W2/tickets/"+ticket.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/workspaces/W2/tickets", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tickets":[]}`, w.Body.String())
}

func TestCreateCommentPublishesEvent(t *testing.T) {
	r, notifier := newTestAPI(t)
	ticket := createTicket(t, r, "W1")

	w := doJSON(t, r, http.MethodPost, "/api/workspaces/W1/tickets/"+ticket.ID+"/comments", gin.H{
		"content": "Looking into it.",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	event := notifier.last(t)
	assert.Equal(t, "W1", event.workspaceID)
	assert.Equal(t, realtime.MessageTypeCommentUpdated, event.msg.Type)

	var published model.Comment
	require.NoError(t, json.Unmarshal(event.msg.Payload, &published))
	assert.Equal(t, ticket.ID, published.TicketID)
	assert.Equal(t, "Looking into it.", published.Content)

	w = doJSON(t, r, http.MethodGet, "/api/workspaces/W1/tickets/"+ticket.ID+"/comments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Looking into it.")
}

func TestCommentAuthorComesFromContext(t *testing.T) {
	// Stand-in for the auth middleware, mirroring how it binds the
	// caller's identity.
	r, _ := newTestAPI(t, func(c *gin.Context) {
		if agent := c.GetHeader("X-Agent"); agent != "" {
			c.Set("agentID", agent)
		}
	})
	ticket := createTicket(t, r, "W1")

	req := httptest.NewRequest(http.MethodPost, "/api/workspaces/W1/tickets/"+ticket.ID+"/comments",
		bytes.NewReader([]byte(`{"content":"signed"}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Agent", "A9")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var comment model.Comment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &comment))
	assert.Equal(t, "A9", comment.AgentID)

	// Without a bound identity the author stays empty; no placeholder is
	// ever persisted.
	w = doJSON(t, r, http.MethodPost, "/api/workspaces/W1/tickets/"+ticket.ID+"/comments", gin.H{
		"content": "anonymous",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &comment))
	assert.Empty(t, comment.AgentID)
}

func TestCreateCommentRequiresExistingTicket(t *testing.T) {
	r, notifier := newTestAPI(t)

	w := doJSON(t, r, http.MethodPost, "/api/workspaces/W1/tickets/NOPE/comments", gin.H{
		"content": "orphan",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Zero(t, notifier.count())
}
