package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/N3z3d/FortniteProject-sub000/middleware"
	"github.com/N3z3d/FortniteProject-sub000/models"
	"github.com/N3z3d/FortniteProject-sub000/services"
	"github.com/google/uuid"
)

type TradeHandler struct {
	responder
	tradeService services.TradeService
}

func NewTradeHandler(ts services.TradeService, logger *slog.Logger) *TradeHandler {
	return &TradeHandler{
		responder:    responder{logger: logger},
		tradeService: ts,
	}
}

func (h *TradeHandler) ProposeTrade(w http.ResponseWriter, r *http.Request) {
	var input services.ProposeTradeInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		h.unauthorizedResponse(w, r, "failed to identify current user")
		return
	}
	input.ActingUserID = &currentUserID

	trade, err := h.tradeService.ProposeTrade(r.Context(), input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.writeTrade(w, r, http.StatusCreated, trade)
}

func (h *TradeHandler) GetTrade(w http.ResponseWriter, r *http.Request) {
	tradeID, err := getUUIDFromURL(r, "tradeID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	trade, err := h.tradeService.GetTrade(r.Context(), tradeID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.writeTrade(w, r, http.StatusOK, trade)
}

func (h *TradeHandler) AcceptTrade(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.tradeService.AcceptTrade)
}

func (h *TradeHandler) RejectTrade(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.tradeService.RejectTrade)
}

func (h *TradeHandler) CancelTrade(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.tradeService.CancelTrade)
}

func (h *TradeHandler) CounterTrade(w http.ResponseWriter, r *http.Request) {
	tradeID, err := getUUIDFromURL(r, "tradeID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	var input services.CounterTradeInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		h.unauthorizedResponse(w, r, "failed to identify current user")
		return
	}
	input.TradeID = tradeID
	input.ActingUserID = currentUserID

	counter, err := h.tradeService.CounterTrade(r.Context(), input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.writeTrade(w, r, http.StatusCreated, counter)
}

type tradeTransition func(ctx context.Context, tradeID, actingUserID uuid.UUID) (*models.Trade, error)

func (h *TradeHandler) transition(w http.ResponseWriter, r *http.Request, apply tradeTransition) {
	tradeID, err := getUUIDFromURL(r, "tradeID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		h.unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	trade, err := apply(r.Context(), tradeID, currentUserID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.writeTrade(w, r, http.StatusOK, trade)
}

func (h *TradeHandler) writeTrade(w http.ResponseWriter, r *http.Request, status int, trade *models.Trade) {
	if err := writeJSON(w, status, jsonResponse{"trade": trade}, nil); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
