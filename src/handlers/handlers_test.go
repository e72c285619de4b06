package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/extractos/backend/src/handlers"
	"github.com/username/extractos/backend/src/model"
	"github.com/username/extractos/backend/src/models"
	"github.com/username/extractos/backend/src/processors"
	"github.com/username/extractos/backend/src/security/validation"
	"github.com/username/extractos/backend/src/services"
	mock_services "github.com/username/extractos/backend/src/services/mocks"
)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

type testServer struct {
	handler    http.Handler
	accounts   *mock_services.MockAccountService
	statements *mock_services.MockStatementService
	emails     *mock_services.MockEmailService
}

func newTestServer(t *testing.T, db handlers.Pinger, burst int) *testServer {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	s := &testServer{
		accounts:   mock_services.NewMockAccountService(ctrl),
		statements: mock_services.NewMockStatementService(ctrl),
		emails:     mock_services.NewMockEmailService(ctrl),
	}
	s.handler = handlers.NewRouter(handlers.RouterConfig{
		Accounts:          handlers.NewAccountHandler(s.accounts),
		Transactions:      handlers.NewTransactionHandler(s.statements, 1<<20),
		Emails:            handlers.NewEmailHandler(s.emails),
		DB:                db,
		AllowedOrigins:    []string{"http://localhost:3000"},
		RateLimitInterval: time.Hour,
		RateLimitBurst:    burst,
	})
	return s
}

func (s *testServer) do(method, path, contentType string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestAccountRoutes(t *testing.T) {
	s := newTestServer(t, fakePinger{}, 100)

	created := &model.Account{ID: "acc-1", Alias: "Sueldo", Currency: "PEN", AccountType: model.AccountTypePersonal}
	s.accounts.EXPECT().CreateAccount(gomock.Any(), services.AccountInput{Alias: "Sueldo", AccountNumber: "123", Currency: "S/"}).Return(created, nil)
	rec := s.do(http.MethodPost, "/api/accounts", "application/json", []byte(`{"alias":"Sueldo","account_number":"123","currency":"S/"}`))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "acc-1", decode(t, rec)["id"])

	rec = s.do(http.MethodPost, "/api/accounts", "application/json", []byte(`{`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	s.accounts.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).Return(nil, validation.ErrValidationFailed)
	rec = s.do(http.MethodPost, "/api/accounts", "application/json", []byte(`{}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	s.accounts.EXPECT().GetAccount(gomock.Any(), "missing").Return(nil, services.ErrAccountNotFound)
	rec = s.do(http.MethodGet, "/api/accounts/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	s.accounts.EXPECT().ListAccounts(gomock.Any()).Return([]model.Account{*created}, nil)
	rec = s.do(http.MethodGet, "/api/accounts", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	s.accounts.EXPECT().UpdateAccount(gomock.Any(), "acc-1", gomock.Any()).Return(created, nil)
	rec = s.do(http.MethodPut, "/api/accounts/acc-1", "application/json", []byte(`{"alias":"Sueldo"}`))
	assert.Equal(t, http.StatusOK, rec.Code)

	s.accounts.EXPECT().DeleteAccount(gomock.Any(), "acc-1").Return(nil)
	rec = s.do(http.MethodDelete, "/api/accounts/acc-1", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	s.accounts.EXPECT().ListAccounts(gomock.Any()).Return(nil, errors.New("disk full"))
	rec = s.do(http.MethodGet, "/api/accounts", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decode(t, rec)["error"])
}

func TestImportStatementJSON(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setup      func(s *testServer)
		wantStatus int
		check      func(t *testing.T, body map[string]any)
	}{
		{
			name: "imported",
			body: `{"text":"lun. 15 mar 10:45 S/ -25.00","format":"personal-text"}`,
			setup: func(s *testServer) {
				s.statements.EXPECT().ImportStatement(gomock.Any(), "acc-1", gomock.Any(), models.FormatPersonalText).
					Return(&models.ImportResult{
						AccountID:  "acc-1",
						Format:     models.FormatPersonalText,
						Currency:   models.CurrencyPEN,
						Inserted:   1,
						New:        []models.CanonicalTransaction{{Amount: decimal.RequireFromString("-25"), IdentityKey: "k1"}},
						Duplicates: []models.CanonicalTransaction{},
					}, nil)
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.EqualValues(t, 1, body["inserted"])
				assert.Len(t, body["new"], 1)
				assert.NotContains(t, body, "kind")
			},
		},
		{
			name: "format defaults to the account type",
			body: `{"text":"x"}`,
			setup: func(s *testServer) {
				s.statements.EXPECT().ImportStatement(gomock.Any(), "acc-1", "x", models.SourceFormat("")).
					Return(&models.ImportResult{AccountID: "acc-1"}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "currency mismatch",
			body: `{"text":"x"}`,
			setup: func(s *testServer) {
				s.statements.EXPECT().ImportStatement(gomock.Any(), "acc-1", "x", gomock.Any()).
					Return(nil, &processors.BatchError{Kind: processors.KindCurrencyMismatch, Expected: models.CurrencyUSD, Detected: []models.Currency{models.CurrencyPEN}})
			},
			wantStatus: http.StatusUnprocessableEntity,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "currency_mismatch", body["kind"])
				assert.Equal(t, "USD", body["expected"])
				assert.Equal(t, []any{"PEN"}, body["detected"])
				assert.NotEmpty(t, body["error"])
			},
		},
		{
			name: "no transactions is not a failure",
			body: `{"text":"nada"}`,
			setup: func(s *testServer) {
				s.statements.EXPECT().ImportStatement(gomock.Any(), "acc-1", "nada", gomock.Any()).
					Return(&models.ImportResult{
						AccountID:  "acc-1",
						New:        []models.CanonicalTransaction{},
						Duplicates: []models.CanonicalTransaction{},
					}, processors.ErrNoTransactionsFound)
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "no_transactions_found", body["kind"])
				assert.Equal(t, []any{}, body["new"])
			},
		},
		{
			name:       "invalid format",
			body:       `{"text":"x","format":"pdf"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "empty text",
			body:       `{"text":"  "}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "unknown account",
			body: `{"text":"x"}`,
			setup: func(s *testServer) {
				s.statements.EXPECT().ImportStatement(gomock.Any(), "acc-1", "x", gomock.Any()).Return(nil, services.ErrAccountNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, fakePinger{}, 100)
			if tt.setup != nil {
				tt.setup(s)
			}
			rec := s.do(http.MethodPost, "/api/accounts/acc-1/statements", "application/json", []byte(tt.body))
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.check != nil {
				tt.check(t, decode(t, rec))
			}
		})
	}
}

func multipartStatement(t *testing.T, fileContentType, content, format string) (string, []byte) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if format != "" {
		require.NoError(t, mw.WriteField("format", format))
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="statement.txt"`)
	h.Set("Content-Type", fileContentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return mw.FormDataContentType(), buf.Bytes()
}

func TestImportStatementMultipart(t *testing.T) {
	const statement = "Compra Plaza Vea\nlun. 15 mar 10:45 S/ -25.00\n"

	s := newTestServer(t, fakePinger{}, 100)
	s.statements.EXPECT().ImportStatement(gomock.Any(), "acc-1", statement, models.FormatPersonalText).
		Return(&models.ImportResult{AccountID: "acc-1", Inserted: 1}, nil)

	ct, body := multipartStatement(t, "text/plain", statement, "personal-text")
	rec := s.do(http.MethodPost, "/api/accounts/acc-1/statements", ct, body)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	ct, body = multipartStatement(t, "application/pdf", statement, "")
	rec = s.do(http.MethodPost, "/api/accounts/acc-1/statements", ct, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	ct, body = multipartStatement(t, "text/plain", "\x00\x01\x02binary", "")
	rec = s.do(http.MethodPost, "/api/accounts/acc-1/statements", ct, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransactionRoutes(t *testing.T) {
	s := newTestServer(t, fakePinger{}, 100)

	s.statements.EXPECT().ListTransactions(gomock.Any(), "acc-1").Return([]models.StoredTransaction{{ID: 7, AccountID: "acc-1"}}, nil)
	rec := s.do(http.MethodGet, "/api/accounts/acc-1/transactions", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	s.statements.EXPECT().DeleteTransactions(gomock.Any(), "acc-1", "2024-01-01", "2024-01-31").Return(int64(4), nil)
	rec = s.do(http.MethodDelete, "/api/accounts/acc-1/transactions?from=2024-01-01&to=2024-01-31", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 4, decode(t, rec)["deleted"])
}

func TestEmailRoutes(t *testing.T) {
	s := newTestServer(t, fakePinger{}, 100)

	s.emails.EXPECT().List(gomock.Any(), 100).Return([]services.ParsedEmail{}, nil)
	rec := s.do(http.MethodGet, "/api/emails", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/emails?limit=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	s.emails.EXPECT().Ingest(gomock.Any(), gomock.Any()).Return(&model.Email{ID: "em-1"}, true, nil)
	rec = s.do(http.MethodPost, "/api/emails", "application/json", []byte(`{"message_id":"<m1>","body":"Yapeaste S/ 5.00"}`))
	assert.Equal(t, http.StatusCreated, rec.Code)

	s.emails.EXPECT().Ingest(gomock.Any(), gomock.Any()).Return(&model.Email{ID: "em-2"}, false, nil)
	rec = s.do(http.MethodPost, "/api/emails", "application/json", []byte(`{"message_id":"<m1>","body":"Yapeaste S/ 5.00"}`))
	assert.Equal(t, http.StatusOK, rec.Code)

	// markup is detected when is_html is omitted
	s.emails.EXPECT().Parse("<table><td>S/ 5.00</td></table>", true).Return(services.ParsedFields{})
	rec = s.do(http.MethodPost, "/api/emails/parse", "application/json", []byte(`{"body":"<table><td>S/ 5.00</td></table>"}`))
	assert.Equal(t, http.StatusOK, rec.Code)

	s.emails.EXPECT().Parse("<b>S/ 5.00</b>", false).Return(services.ParsedFields{})
	rec = s.do(http.MethodPost, "/api/emails/parse", "application/json", []byte(`{"body":"<b>S/ 5.00</b>","is_html":false}`))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := newTestServer(t, fakePinger{}, 100).do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])

	rec = newTestServer(t, fakePinger{err: errors.New("closed")}, 100).do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMiddleware(t *testing.T) {
	s := newTestServer(t, fakePinger{}, 1)

	req := httptest.NewRequest(http.MethodOptions, "/api/accounts", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	// preflight requests are answered before the limiter; the burst of one is spent here
	rec = s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = newTestServer(t, fakePinger{}, 100).do(http.MethodGet, "/api/nothing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json"))
}
