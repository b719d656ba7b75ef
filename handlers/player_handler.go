package handlers

import (
	"log/slog"
	"net/http"

	"github.com/N3z3d/FortniteProject-sub000/services"
)

type PlayerHandler struct {
	responder
	playerService services.PlayerService
	rosterService services.RosterService
}

func NewPlayerHandler(ps services.PlayerService, rs services.RosterService, logger *slog.Logger) *PlayerHandler {
	return &PlayerHandler{
		responder:     responder{logger: logger},
		playerService: ps,
		rosterService: rs,
	}
}

func (h *PlayerHandler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	playerID, err := getUUIDFromURL(r, "playerID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.GetPlayer(r.Context(), playerID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// ListPlayerTeams returns the teams the player is currently active on.
func (h *PlayerHandler) ListPlayerTeams(w http.ResponseWriter, r *http.Request) {
	playerID, err := getUUIDFromURL(r, "playerID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	teams, err := h.rosterService.ListTeamsWithActivePlayer(r.Context(), playerID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"teams": teams}, nil); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

type setLockedRequest struct {
	Locked bool `json:"locked"`
}

func (h *PlayerHandler) SetPlayerLocked(w http.ResponseWriter, r *http.Request) {
	playerID, err := getUUIDFromURL(r, "playerID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	var input setLockedRequest
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.SetLocked(r.Context(), playerID, input.Locked)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
