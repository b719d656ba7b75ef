package handlers

import (
	"log/slog"
	"net/http"

	"github.com/N3z3d/FortniteProject-sub000/notifications"
	"github.com/N3z3d/FortniteProject-sub000/services"
	"github.com/gorilla/websocket"
)

// WebSocketHandler subscribes clients to the trade events of one team.
type WebSocketHandler struct {
	responder
	hub           *notifications.Hub
	rosterService services.RosterService
	upgrader      websocket.Upgrader
}

// NewWebSocketHandler builds the handler. checkOrigin may be nil to accept
// every origin.
func NewWebSocketHandler(hub *notifications.Hub, rs services.RosterService, checkOrigin func(r *http.Request) bool, logger *slog.Logger) *WebSocketHandler {
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &WebSocketHandler{
		responder:     responder{logger: logger},
		hub:           hub,
		rosterService: rs,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// ServeWs handles /ws/teams/{teamID}.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	teamID, err := getUUIDFromURL(r, "teamID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	if _, err := h.rosterService.GetTeam(r.Context(), teamID); err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		h.logger.WarnContext(r.Context(), "Failed to upgrade websocket connection",
			slog.String("team_id", teamID.String()),
			slog.Any("error", err))
		return
	}

	room := notifications.TeamRoom(teamID)
	client := notifications.NewClient(h.hub, conn, room)
	if err := h.hub.Register(r.Context(), client); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to register websocket client",
			slog.String("room", room),
			slog.Any("error", err))
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()

	h.logger.DebugContext(r.Context(), "Websocket client subscribed", slog.String("room", room))
}
