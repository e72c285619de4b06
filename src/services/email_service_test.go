package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/extractos/backend/src/model"
	"github.com/username/extractos/backend/src/models"
	"github.com/username/extractos/backend/src/security/validation"
	"github.com/username/extractos/backend/src/services"
	mock_services "github.com/username/extractos/backend/src/services/mocks"
)

const yapeText = "Hola Juan Perez,\n" +
	"Monto: S/ 45.50\n" +
	"Enviado a: Maria Lopez\n" +
	"Fecha y hora: 05 abril 2024 - 10:15 a.m.\n" +
	"Número de operación: 0012345678\n"

func TestEmailService_Ingest(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_services.NewMockEmailRepository(ctrl)
	svc := services.NewEmailService(repo, cache.New(time.Minute, time.Minute))

	received := time.Date(2024, 4, 5, 10, 15, 0, 0, time.FixedZone("PET", -5*3600))
	repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e *model.Email) (bool, error) {
		assert.Equal(t, "Yape <notificaciones@yape.pe>", e.From)
		assert.True(t, e.ReceivedAt.Valid)
		assert.Equal(t, time.UTC, e.ReceivedAt.Time.Location())
		e.ID = "em-1"
		return true, nil
	})

	e, created, err := svc.Ingest(context.Background(), services.EmailInput{
		MessageID:  "<m1@yape.pe>",
		From:       " Yape <notificaciones@yape.pe> ",
		Subject:    "Yapeaste",
		ReceivedAt: &received,
		Body:       yapeText,
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "em-1", e.ID)

	_, _, err = svc.Ingest(context.Background(), services.EmailInput{Body: "  "})
	assert.ErrorIs(t, err, validation.ErrValidationFailed)
}

func TestEmailService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_services.NewMockEmailRepository(ctrl)
	svc := services.NewEmailService(repo, cache.New(time.Minute, time.Minute))

	stored := []model.Email{
		{ID: "em-1", From: "Yape Notificaciones", Body: yapeText},
		{ID: "em-2", From: "", Body: "Gracias por usar nuestros servicios"},
	}
	repo.EXPECT().List(gomock.Any(), 50).Return(stored, nil).Times(2)

	for i := 0; i < 2; i++ {
		got, err := svc.List(context.Background(), 50)
		require.NoError(t, err)
		require.Len(t, got, 2)

		assert.Equal(t, "Yape", got[0].FromName)
		assert.Equal(t, "45.50", got[0].Parsed.Amount)
		assert.Equal(t, "PEN", got[0].Parsed.Currency)
		assert.Equal(t, "345678", got[0].Parsed.OperationShort)
		assert.Equal(t, "2024-04-05 10:15:00", got[0].Parsed.Date)

		assert.Equal(t, "Unknown", got[1].FromName)
		assert.Equal(t, models.Sentinel, got[1].Parsed.Amount)
		assert.Equal(t, models.Sentinel, got[1].Parsed.OperationShort)
	}
}

func TestEmailService_TextOnlyEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_services.NewMockEmailRepository(ctrl)
	svc := services.NewEmailService(repo, cache.New(time.Minute, time.Minute))

	repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e *model.Email) (bool, error) {
		assert.Empty(t, e.Body)
		assert.Equal(t, yapeText, e.TextBody)
		e.ID = "em-3"
		return true, nil
	})
	e, created, err := svc.Ingest(context.Background(), services.EmailInput{MessageID: "m", TextBody: yapeText})
	require.NoError(t, err)
	assert.True(t, created)

	repo.EXPECT().List(gomock.Any(), 10).Return([]model.Email{*e}, nil)
	got, err := svc.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "45.50", got[0].Parsed.Amount)
	assert.Equal(t, "Maria Lopez", got[0].Parsed.CounterpartyName)

	_, _, err = svc.Ingest(context.Background(), services.EmailInput{MessageID: "m2", Body: " ", TextBody: "\n"})
	assert.ErrorIs(t, err, validation.ErrValidationFailed)
}

func TestEmailService_Parse(t *testing.T) {
	svc := services.NewEmailService(nil, cache.New(time.Minute, time.Minute))

	f := svc.Parse(yapeText, false)
	assert.Equal(t, "Maria Lopez", f.CounterpartyName)
	assert.Equal(t, "345678", f.OperationShort)

	short := svc.Parse("Pagaste S/ 5.00\nNº de operación: 1234", false)
	assert.Equal(t, "1234", short.OperationShort)
}
