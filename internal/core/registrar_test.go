package core

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/minitex/ipregister/internal/model"
)

func registrarRows(registrars ...*model.IpRegistrar) *mockRows {
	funcs := make([]func(dest ...any) error, len(registrars))
	for i, r := range registrars {
		r := r
		funcs[i] = func(dest ...any) error {
			*(dest[0].(*string)) = r.ID
			*(dest[1].(*string)) = r.Label
			*(dest[2].(*string)) = r.Description
			*(dest[3].(*string)) = r.Email
			*(dest[4].(*bool)) = r.Enabled
			*(dest[5].(*time.Time)) = r.CreatedAt
			*(dest[6].(*time.Time)) = r.UpdatedAt
			return nil
		}
	}
	return newMockRows(funcs...)
}

func TestRegistrarGetByID(t *testing.T) {
	db := &mockDB{}
	svc := NewRegistrarService(db)

	expectRegistrarLoad(t, db, &model.IpRegistrar{
		ID:    "reg-a",
		Label: "Vendor A",
		Email: "access@vendor-a.example",
	})

	registrar, err := svc.GetByID(context.Background(), "reg-a")
	require.NoError(t, err)
	assert.Equal(t, "Vendor A", registrar.Label)
	assert.Equal(t, "access@vendor-a.example", registrar.Email)
}

func TestRegistrarGetByID_NotFound(t *testing.T) {
	db := &mockDB{}
	svc := NewRegistrarService(db)

	db.On("QueryRow", mock.Anything, sqlContains("FROM ip_registrars WHERE id"), withArgs("missing")).
		Return(&mockRow{scanFunc: func(dest ...any) error { return pgx.ErrNoRows }})

	_, err := svc.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRegistrarList_EnabledOnly(t *testing.T) {
	db := &mockDB{}
	svc := NewRegistrarService(db)

	db.On("Query", mock.Anything, sqlContains("WHERE enabled"), mock.Anything).
		Return(registrarRows(
			&model.IpRegistrar{ID: "reg-a", Label: "Vendor A", Enabled: true},
		), nil).Once()

	registrars, err := svc.List(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, registrars, 1)
	assert.Equal(t, "reg-a", registrars[0].ID)
}

func TestRegistrarList_All(t *testing.T) {
	db := &mockDB{}
	svc := NewRegistrarService(db)

	db.On("Query", mock.Anything, mock.MatchedBy(func(sql string) bool {
		return !strings.Contains(sql, "WHERE enabled")
	}), mock.Anything).
		Return(registrarRows(
			&model.IpRegistrar{ID: "reg-a", Label: "Vendor A", Enabled: true},
			&model.IpRegistrar{ID: "reg-b", Label: "Vendor B", Enabled: false},
		), nil).Once()

	registrars, err := svc.List(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, registrars, 2)
}

func TestRegistrarUpdate_NotFound(t *testing.T) {
	db := &mockDB{}
	svc := NewRegistrarService(db)

	db.On("Exec", mock.Anything, sqlContains("UPDATE ip_registrars"), mock.Anything).
		Return(updated(0), nil).Once()

	err := svc.Update(context.Background(), &model.IpRegistrar{ID: "missing"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRegistrarDelete(t *testing.T) {
	db := &mockDB{}
	svc := NewRegistrarService(db)

	db.On("Exec", mock.Anything, sqlContains("DELETE FROM ip_registrars"), withArgs("reg-a")).
		Return(pgconn.NewCommandTag("DELETE 1"), nil).Once()

	require.NoError(t, svc.Delete(context.Background(), "reg-a"))
	db.AssertExpectations(t)
}

func TestRegistrarDelete_StillReferenced(t *testing.T) {
	db := &mockDB{}
	svc := NewRegistrarService(db)

	// Ranges or changes still point at the registrar; the foreign key
	// rejects the delete and the service reports a conflict.
	db.On("Exec", mock.Anything, sqlContains("DELETE FROM ip_registrars"), withArgs("reg-a")).
		Return(pgconn.CommandTag{}, &pgconn.PgError{Code: "23503"}).Once()

	err := svc.Delete(context.Background(), "reg-a")
	require.ErrorIs(t, err, ErrRegistrarInUse)
}
