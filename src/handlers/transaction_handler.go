package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/username/extractos/backend/src/logger"
	"github.com/username/extractos/backend/src/models"
	"github.com/username/extractos/backend/src/processors"
	"github.com/username/extractos/backend/src/security/validation"
	"github.com/username/extractos/backend/src/services"
)

type TransactionHandler struct {
	statementService services.StatementService
	maxUploadSize    int64
}

func NewTransactionHandler(service services.StatementService, maxUploadSize int64) *TransactionHandler {
	return &TransactionHandler{statementService: service, maxUploadSize: maxUploadSize}
}

// importRequest is the JSON form of a statement import.
type importRequest struct {
	Text   string `json:"text"`
	Format string `json:"format"`
}

// importResponse adds the batch outcome kind to an import result. Kind is set
// only when the statement held no transactions.
type importResponse struct {
	*models.ImportResult
	Kind string `json:"kind,omitempty"`
}

func (h *TransactionHandler) HandleGetTransactions(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	txs, err := h.statementService.ListTransactions(r.Context(), accountID)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, txs)
}

// HandleDeleteTransactions deletes all of an account's transactions, or those
// within the optional "from" and "to" query bounds.
func (h *TransactionHandler) HandleDeleteTransactions(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")

	n, err := h.statementService.DeleteTransactions(r.Context(), accountID, from, to)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]int64{"deleted": n})
}

// HandleImportStatement accepts either a JSON body {text, format} or a
// multipart form with a "file" field and an optional "format" field.
func (h *TransactionHandler) HandleImportStatement(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())
	accountID := chi.URLParam(r, "id")

	var (
		text, format string
		err          error
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		text, format, err = h.readMultipart(r)
	} else {
		text, format, err = h.readJSON(w, r)
	}
	if err != nil {
		ctxLogger.Warn("Invalid statement upload", "accountID", accountID, "error", err)
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var sourceFormat models.SourceFormat
	if format != "" {
		sourceFormat, err = validation.ValidateSourceFormat(format)
		if err != nil {
			sendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if err := validation.ValidateStringNotEmpty(text, "text"); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.statementService.ImportStatement(r.Context(), accountID, text, sourceFormat)
	if errors.Is(err, processors.ErrNoTransactionsFound) {
		writeJSON(w, r, http.StatusOK, importResponse{ImportResult: result, Kind: string(processors.KindNoTransactionsFound)})
		return
	}
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, importResponse{ImportResult: result})
}

func (h *TransactionHandler) readJSON(w http.ResponseWriter, r *http.Request) (string, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", "", fmt.Errorf("invalid request body: %w", err)
	}
	return req.Text, req.Format, nil
}

func (h *TransactionHandler) readMultipart(r *http.Request) (string, string, error) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		return "", "", fmt.Errorf("failed to process upload or file too large (max %d MB)", h.maxUploadSize/(1024*1024))
	}
	format := r.FormValue("format")

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		return "", "", fmt.Errorf("failed to retrieve file from request, ensure 'file' field is used")
	}
	defer file.Close()

	if fileHeader.Size > h.maxUploadSize {
		return "", "", fmt.Errorf("file too large, max %d MB", h.maxUploadSize/(1024*1024))
	}
	if err := validation.ValidateClientContentType(fileHeader.Header.Get("Content-Type")); err != nil {
		return "", "", err
	}
	detectedContentType, err := validation.ValidateFileContentByMagicBytes(file)
	if err != nil {
		return "", "", err
	}
	logger.FromContext(r.Context()).Info("Statement file validated", "filename", fileHeader.Filename, "detectedType", detectedContentType)

	var sb strings.Builder
	if _, err := io.Copy(&sb, io.LimitReader(file, h.maxUploadSize)); err != nil {
		return "", "", fmt.Errorf("failed to read uploaded file: %w", err)
	}
	return sb.String(), format, nil
}
