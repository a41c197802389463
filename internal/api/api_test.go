package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/comigor/roomchat/internal/app"
	"github.com/comigor/roomchat/internal/config"
	"github.com/comigor/roomchat/internal/history"
	"github.com/comigor/roomchat/internal/kv"
	"github.com/comigor/roomchat/internal/reply"
	"github.com/comigor/roomchat/internal/rooms"
	"github.com/comigor/roomchat/internal/timeline"
)

func newTestServer(t *testing.T) (*httptest.Server, *app.App) {
	t.Helper()
	return newTestServerWithDelay(t, 10*time.Millisecond)
}

func newTestServerWithDelay(t *testing.T, delay time.Duration) (*httptest.Server, *app.App) {
	t.Helper()
	cfg := &config.Config{
		Timeline:  config.TimelineConfig{PageLength: 20, ReplyDelay: delay},
		Assistant: config.AssistantConfig{Name: "Gemini"},
	}
	a := app.NewWithStore(context.Background(), cfg, kv.NewMemory(), reply.Echo{Name: "Gemini"})
	srv := httptest.NewServer(NewRouter(a))
	t.Cleanup(func() {
		srv.Close()
		a.Close()
	})
	return srv, a
}

func do(t *testing.T, srv *httptest.Server, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func login(t *testing.T, srv *httptest.Server) {
	t.Helper()
	resp := do(t, srv, http.MethodPost, "/session/otp", OTPRequest{Phone: "5551234567", CountryCode: "+1"})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp = do(t, srv, http.MethodPost, "/session/verify", VerifyRequest{OTP: "1234"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRoutes_RequireLogin(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, srv, http.MethodGet, "/rooms", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/session", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSession_LoginFlow(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, srv, http.MethodPost, "/session/otp", OTPRequest{Phone: "123", CountryCode: "+1"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/session/verify", VerifyRequest{OTP: "1234"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/session/otp", OTPRequest{Phone: "5551234567", CountryCode: "+1"})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/session/verify", VerifyRequest{OTP: "12"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/session/verify", VerifyRequest{OTP: "9876"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/session", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	u := decodeBody[map[string]string](t, resp)
	require.Equal(t, "5551234567", u["phone"])
	require.Equal(t, "+1", u["countryCode"])
}

func TestRooms_CreateListDelete(t *testing.T) {
	srv, a := newTestServer(t)
	login(t, srv)

	resp := do(t, srv, http.MethodPost, "/rooms", CreateRoomRequest{Title: "  General  "})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	room := decodeBody[rooms.Chatroom](t, resp)
	require.Equal(t, "General", room.Title)
	require.NotEmpty(t, room.ID)

	resp = do(t, srv, http.MethodPost, "/rooms", CreateRoomRequest{Title: "general"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/rooms", CreateRoomRequest{Title: "   "})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/rooms", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, decodeBody[[]rooms.Chatroom](t, resp), 1)

	require.Len(t, a.Sidebar.Rooms(), 1)

	resp = do(t, srv, http.MethodDelete, "/rooms/"+room.ID, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, srv, http.MethodDelete, "/rooms/"+room.ID, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Empty(t, a.Sidebar.Rooms())
}

func TestTimeline_SendAndReply(t *testing.T) {
	srv, a := newTestServer(t)
	login(t, srv)

	resp := do(t, srv, http.MethodGet, "/timeline", nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/rooms/missing/open", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/rooms", CreateRoomRequest{Title: "General"})
	room := decodeBody[rooms.Chatroom](t, resp)

	resp = do(t, srv, http.MethodPost, "/rooms/"+room.ID+"/open", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap := decodeBody[timeline.Snapshot](t, resp)
	require.Equal(t, room.ID, snap.RoomID)
	require.Empty(t, snap.Messages)

	resp = do(t, srv, http.MethodPost, "/timeline/messages", SendMessageRequest{Text: "Hello"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap = decodeBody[timeline.Snapshot](t, resp)
	require.Len(t, snap.Messages, 1)
	require.True(t, snap.Composing)

	require.Eventually(t, func() bool {
		return len(a.Timeline.Visible()) == 2
	}, time.Second, 5*time.Millisecond)

	resp = do(t, srv, http.MethodGet, "/timeline", nil)
	snap = decodeBody[timeline.Snapshot](t, resp)
	require.False(t, snap.Composing)
	require.Equal(t, history.FromAssistant, snap.Messages[1].From)
	require.Equal(t, `Gemini's reply to: "Hello"`, snap.Messages[1].Content)

	resp = do(t, srv, http.MethodPost, "/timeline/close", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Len(t, a.History.Load(context.Background(), room.ID), 2)
}

func TestRooms_DeleteOpenRoomDropsPendingReply(t *testing.T) {
	srv, a := newTestServerWithDelay(t, 100*time.Millisecond)
	login(t, srv)
	ctx := context.Background()

	resp := do(t, srv, http.MethodPost, "/rooms", CreateRoomRequest{Title: "General"})
	room := decodeBody[rooms.Chatroom](t, resp)
	do(t, srv, http.MethodPost, "/rooms/"+room.ID+"/open", nil)

	resp = do(t, srv, http.MethodPost, "/timeline/messages", SendMessageRequest{Text: "Hello"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, srv, http.MethodDelete, "/rooms/"+room.ID, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, "Closed", a.Timeline.State())

	// outlast the reply delay; the reply must not bring the history back
	time.Sleep(300 * time.Millisecond)
	require.Empty(t, a.History.Load(ctx, room.ID))
	raw, _, err := a.Records.Get(ctx, kv.KeyMessages)
	require.NoError(t, err)
	require.NotContains(t, raw, room.ID)
}

func TestTimeline_ScrollLoadsOlderPage(t *testing.T) {
	srv, a := newTestServer(t)
	login(t, srv)

	resp := do(t, srv, http.MethodPost, "/rooms", CreateRoomRequest{Title: "Busy"})
	room := decodeBody[rooms.Chatroom](t, resp)

	msgs := make([]history.Message, 30)
	for i := range msgs {
		msgs[i] = history.NewText(history.FromUser, "m", time.Now())
	}
	require.NoError(t, a.History.Save(context.Background(), room.ID, msgs))

	resp = do(t, srv, http.MethodPost, "/rooms/"+room.ID+"/open", nil)
	snap := decodeBody[timeline.Snapshot](t, resp)
	require.Len(t, snap.Messages, 20)
	require.True(t, snap.HasOlder)

	resp = do(t, srv, http.MethodPost, "/timeline/scroll", ScrollRequest{Offset: 0})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decodeBody[PageResponse](t, resp)
	require.True(t, page.Loaded)
	require.Len(t, page.Timeline.Messages, 30)
	require.False(t, page.Timeline.HasOlder)

	resp = do(t, srv, http.MethodPost, "/timeline/older", nil)
	page = decodeBody[PageResponse](t, resp)
	require.False(t, page.Loaded)
}

func TestSidebar_Term(t *testing.T) {
	srv, a := newTestServer(t)
	login(t, srv)

	for _, title := range []string{"Alpha", "Beta"} {
		resp := do(t, srv, http.MethodPost, "/rooms", CreateRoomRequest{Title: title})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := do(t, srv, http.MethodPut, "/sidebar/term", SidebarTermRequest{Term: "alp"})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	require.Eventually(t, func() bool {
		return len(a.Sidebar.Rooms()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	resp = do(t, srv, http.MethodGet, "/sidebar", nil)
	sb := decodeBody[SidebarResponse](t, resp)
	require.Equal(t, "alp", sb.Term)
	require.Len(t, sb.Rooms, 1)
	require.Equal(t, "Alpha", sb.Rooms[0].Title)
}

func TestSession_LogoutClearsEverything(t *testing.T) {
	srv, a := newTestServer(t)
	login(t, srv)

	resp := do(t, srv, http.MethodPost, "/rooms", CreateRoomRequest{Title: "General"})
	room := decodeBody[rooms.Chatroom](t, resp)
	do(t, srv, http.MethodPost, "/rooms/"+room.ID+"/open", nil)

	resp = do(t, srv, http.MethodDelete, "/session", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	require.Equal(t, "Closed", a.Timeline.State())
	require.Empty(t, a.Rooms.List(context.Background()))

	resp = do(t, srv, http.MethodGet, "/rooms", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	do(t, srv, http.MethodGet, "/rooms", nil)

	resp := do(t, srv, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	require.Contains(t, buf.String(), `roomchat_http_requests_total{method="GET",route="/rooms",status="401"}`)
}
