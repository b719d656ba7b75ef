package handlers

import (
	"log/slog"
	"net/http"

	"github.com/N3z3d/FortniteProject-sub000/services"
)

type StatsHandler struct {
	responder
	statsService services.TradeStatsService
}

func NewStatsHandler(ss services.TradeStatsService, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{
		responder:    responder{logger: logger},
		statsService: ss,
	}
}

func (h *StatsHandler) GetGameTradeStats(w http.ResponseWriter, r *http.Request) {
	gameID, err := getUUIDFromURL(r, "gameID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	stats, err := h.statsService.GameStats(r.Context(), gameID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"stats": stats}, nil); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
