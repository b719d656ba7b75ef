package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/N3z3d/FortniteProject-sub000/services"
)

type TeamHandler struct {
	responder
	rosterService services.RosterService
	tradeService  services.TradeService
}

func NewTeamHandler(rs services.RosterService, ts services.TradeService, logger *slog.Logger) *TeamHandler {
	return &TeamHandler{
		responder:     responder{logger: logger},
		rosterService: rs,
		tradeService:  ts,
	}
}

func (h *TeamHandler) GetTeamByID(w http.ResponseWriter, r *http.Request) {
	teamID, err := getUUIDFromURL(r, "teamID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	team, err := h.rosterService.GetTeam(r.Context(), teamID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}, nil); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *TeamHandler) ListTeamTrades(w http.ResponseWriter, r *http.Request) {
	teamID, err := getUUIDFromURL(r, "teamID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	trades, err := h.tradeService.ListTradesForTeam(r.Context(), teamID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"trades": trades}, nil); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *TeamHandler) ListPendingTeamTrades(w http.ResponseWriter, r *http.Request) {
	teamID, err := getUUIDFromURL(r, "teamID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	trades, err := h.tradeService.ListPendingTradesForTeam(r.Context(), teamID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"trades": trades}, nil); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *TeamHandler) ListUserTeams(w http.ResponseWriter, r *http.Request) {
	userID, err := getUUIDFromURL(r, "userID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	seasonStr := r.URL.Query().Get("season")
	if seasonStr == "" {
		h.badRequestResponse(w, r, errors.New("season query parameter is required"))
		return
	}
	season, err := strconv.Atoi(seasonStr)
	if err != nil {
		h.badRequestResponse(w, r, errors.New("season must be an integer"))
		return
	}

	teams, err := h.rosterService.ListTeamsForOwner(r.Context(), userID, season)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"teams": teams}, nil); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
