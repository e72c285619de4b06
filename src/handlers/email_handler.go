package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/username/extractos/backend/src/logger"
	"github.com/username/extractos/backend/src/model"
	"github.com/username/extractos/backend/src/services"
)

const defaultEmailListLimit = 100

type EmailHandler struct {
	emailService services.EmailService
}

func NewEmailHandler(service services.EmailService) *EmailHandler {
	return &EmailHandler{emailService: service}
}

// parseRequest asks for the fields of one notification body. When IsHTML is
// omitted the body is sniffed for markup.
type parseRequest struct {
	Body   string `json:"body"`
	IsHTML *bool  `json:"is_html"`
}

func (h *EmailHandler) HandleListEmails(w http.ResponseWriter, r *http.Request) {
	limit := defaultEmailListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			sendJSONError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	emails, err := h.emailService.List(r.Context(), limit)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, emails)
}

// HandleIngestEmail stores one notification. It answers 201 for a new email
// and 200 when the message id was already stored.
func (h *EmailHandler) HandleIngestEmail(w http.ResponseWriter, r *http.Request) {
	var in services.EmailInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		logger.FromContext(r.Context()).Warn("Invalid email request body", "error", err)
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	email, created, err := h.emailService.Ingest(r.Context(), in)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, r, status, map[string]any{"email": email, "created": created})
}

func (h *EmailHandler) HandleParseEmail(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	isHTML := (&model.Email{Body: req.Body}).IsHTML()
	if req.IsHTML != nil {
		isHTML = *req.IsHTML
	}
	writeJSON(w, r, http.StatusOK, h.emailService.Parse(req.Body, isHTML))
}
