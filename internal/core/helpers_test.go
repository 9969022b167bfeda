package core

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"

	"github.com/minitex/ipregister/internal/model"
)

// sqlContains matches a statement by substring, so tests do not have to
// repeat whole queries.
func sqlContains(substr string) any {
	return mock.MatchedBy(func(sql string) bool {
		return strings.Contains(sql, substr)
	})
}

// withArgs matches the positional query arguments exactly.
func withArgs(vals ...any) any {
	return mock.MatchedBy(func(args []any) bool {
		if len(args) != len(vals) {
			return false
		}
		for i := range vals {
			if fmt.Sprintf("%v", args[i]) != fmt.Sprintf("%v", vals[i]) {
				return false
			}
		}
		return true
	})
}

func updated(n int) pgconn.CommandTag {
	return pgconn.NewCommandTag(fmt.Sprintf("UPDATE %d", n))
}

func execOK() pgconn.CommandTag {
	return pgconn.NewCommandTag("INSERT 0 1")
}

// idRows builds single-column rows of ids.
func idRows(ids ...string) *mockRows {
	funcs := make([]func(dest ...any) error, len(ids))
	for i, id := range ids {
		id := id
		funcs[i] = func(dest ...any) error {
			*(dest[0].(*string)) = id
			return nil
		}
	}
	return newMockRows(funcs...)
}

func changeRow(c *model.IpChange) *mockRow {
	return &mockRow{scanFunc: func(dest ...any) error {
		*(dest[0].(*string)) = c.ID
		*(dest[1].(*string)) = c.OrganizationID
		*(dest[2].(*bool)) = c.SuppressNotification
		*(dest[3].(*string)) = c.Comment
		*(dest[4].(*string)) = c.ContactGiven
		*(dest[5].(*string)) = c.ContactFamily
		*(dest[6].(*string)) = c.ContactEmail
		*(dest[7].(*string)) = c.ContactPhone
		*(dest[8].(*bool)) = c.Completed
		*(dest[9].(*string)) = c.OwnerID
		*(dest[10].(*time.Time)) = c.CreatedAt
		*(dest[11].(*time.Time)) = c.UpdatedAt
		return nil
	}}
}

func rangeRow(r *model.IpRange) *mockRow {
	return &mockRow{scanFunc: func(dest ...any) error {
		*(dest[0].(*string)) = r.ID
		*(dest[1].(*string)) = r.OrganizationID
		*(dest[2].(*[]byte)) = r.StartAddr
		*(dest[3].(*[]byte)) = r.EndAddr
		*(dest[4].(*string)) = r.Title
		*(dest[5].(*bool)) = r.Registered
		*(dest[6].(*string)) = r.OwnerID
		*(dest[7].(*time.Time)) = r.CreatedAt
		*(dest[8].(*time.Time)) = r.UpdatedAt
		return nil
	}}
}

func registrarRow(r *model.IpRegistrar) *mockRow {
	return &mockRow{scanFunc: func(dest ...any) error {
		*(dest[0].(*string)) = r.ID
		*(dest[1].(*string)) = r.Label
		*(dest[2].(*string)) = r.Description
		*(dest[3].(*string)) = r.Email
		*(dest[4].(*bool)) = r.Enabled
		*(dest[5].(*time.Time)) = r.CreatedAt
		*(dest[6].(*time.Time)) = r.UpdatedAt
		return nil
	}}
}

func organizationRow(org *model.Organization) *mockRow {
	return &mockRow{scanFunc: func(dest ...any) error {
		*(dest[0].(*string)) = org.ID
		*(dest[1].(*string)) = org.Label
		return nil
	}}
}

// expectChangeLoad scripts one full ChangeService.GetByID of the change,
// including its range sets and registrar selection.
func expectChangeLoad(t *testing.T, db *mockDB, c *model.IpChange) {
	t.Helper()

	setFuncs := []func(dest ...any) error{}
	appendSet := func(ids []string, kind string) {
		for _, id := range ids {
			id := id
			setFuncs = append(setFuncs, func(dest ...any) error {
				*(dest[0].(*string)) = id
				*(dest[1].(*string)) = kind
				return nil
			})
		}
	}
	appendSet(c.ConfirmRangeIDs, model.ChangeRangeConfirm)
	appendSet(c.NewRangeIDs, model.ChangeRangeNew)
	appendSet(c.RemoveRangeIDs, model.ChangeRangeRemove)

	db.On("QueryRow", mock.Anything, sqlContains("FROM ip_changes WHERE id"), withArgs(c.ID)).
		Return(changeRow(c)).Once()
	db.On("Query", mock.Anything, sqlContains("FROM ip_change_ranges"), withArgs(c.ID)).
		Return(newMockRows(setFuncs...), nil).Once()
	db.On("Query", mock.Anything, sqlContains("FROM ip_change_registrars"), withArgs(c.ID)).
		Return(idRows(c.RegistrarIDs...), nil).Once()
}

// expectRangeLoad scripts one RangeService.GetByID of the range.
func expectRangeLoad(t *testing.T, db *mockDB, r *model.IpRange) {
	t.Helper()
	db.On("QueryRow", mock.Anything, sqlContains("FROM ip_ranges WHERE id"), withArgs(r.ID)).
		Return(rangeRow(r)).Once()
	db.On("Query", mock.Anything, sqlContains("FROM ip_range_registrars WHERE range_id"), withArgs(r.ID)).
		Return(idRows(r.RegistrarIDs...), nil).Once()
}

func expectOrganizationLoad(t *testing.T, db *mockDB, org *model.Organization) {
	t.Helper()
	db.On("QueryRow", mock.Anything, sqlContains("FROM organizations"), withArgs(org.ID)).
		Return(organizationRow(org))
}

func expectRegistrarLoad(t *testing.T, db *mockDB, r *model.IpRegistrar) {
	t.Helper()
	db.On("QueryRow", mock.Anything, sqlContains("FROM ip_registrars WHERE id"), withArgs(r.ID)).
		Return(registrarRow(r))
}
