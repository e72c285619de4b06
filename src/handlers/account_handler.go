package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/username/extractos/backend/src/logger"
	"github.com/username/extractos/backend/src/services"
)

type AccountHandler struct {
	accountService services.AccountService
}

func NewAccountHandler(service services.AccountService) *AccountHandler {
	return &AccountHandler{accountService: service}
}

func (h *AccountHandler) HandleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accountService.ListAccounts(r.Context())
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, accounts)
}

func (h *AccountHandler) HandleGetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.accountService.GetAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, account)
}

func (h *AccountHandler) HandleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var in services.AccountInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		logger.FromContext(r.Context()).Warn("Invalid account request body", "error", err)
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	account, err := h.accountService.CreateAccount(r.Context(), in)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, account)
}

func (h *AccountHandler) HandleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var in services.AccountInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		logger.FromContext(r.Context()).Warn("Invalid account request body", "error", err)
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	account, err := h.accountService.UpdateAccount(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, account)
}

func (h *AccountHandler) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.accountService.DeleteAccount(r.Context(), chi.URLParam(r, "id")); err != nil {
		sendServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
