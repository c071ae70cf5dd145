package pgcourier

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/BearBump/CourierDesk/internal/models"
)

func startPostgres(t *testing.T) *Storage {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "admin",
			"POSTGRES_PASSWORD": "admin",
			"POSTGRES_DB":       "courierdesk_test",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := "postgres://admin:admin@" + host + ":" + port.Port() + "/courierdesk_test?sslmode=disable"
	st, err := New(dsn)
	require.NoError(t, err)
	t.Cleanup(st.Close)
	return st
}

func TestPGCourier_RepoFlow(t *testing.T) {
	ctx := context.Background()
	st := startPostgres(t)

	// users
	u, err := st.CreateUser(ctx, models.User{
		Email: "alice@example.com", PasswordHash: "h", Name: "Alice",
		Phone: "111", Role: models.RoleCustomer, Status: models.UserStatusActive,
	})
	require.NoError(t, err)
	require.NotZero(t, u.ID)

	_, err = st.CreateUser(ctx, models.User{
		Email: "alice@example.com", PasswordHash: "h2", Name: "Dup",
		Role: models.RoleCustomer, Status: models.UserStatusActive,
	})
	require.ErrorIs(t, err, models.ErrConflict)

	got, err := st.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	require.NoError(t, st.TouchLastLogin(ctx, u.ID))
	got, err = st.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)

	// sessions
	now := time.Now().UTC()
	token := uuid.NewString()
	require.NoError(t, st.CreateSession(ctx, models.Session{
		Token: token, UserID: u.ID, CreatedAt: now, ExpiresAt: now.Add(time.Hour),
	}))
	su, err := st.GetSessionUser(ctx, token)
	require.NoError(t, err)
	require.Equal(t, u.ID, su.ID)

	expired := uuid.NewString()
	require.NoError(t, st.CreateSession(ctx, models.Session{
		Token: expired, UserID: u.ID, CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour),
	}))
	_, err = st.GetSessionUser(ctx, expired)
	require.ErrorIs(t, err, models.ErrNotFound)
	require.NoError(t, st.DeleteExpiredSessions(ctx))

	// pricing rules
	rule, err := st.CreatePricingRule(ctx, models.PricingRule{
		Zone: "default", WeightFrom: 0, WeightTo: 10, PricePerKG: 50,
	})
	require.NoError(t, err)
	require.NotZero(t, rule.ID)

	rules, err := st.ListPricingRules(ctx, "default")
	require.NoError(t, err)
	require.Len(t, rules, 1)

	rules, err = st.ListPricingRules(ctx, "express")
	require.NoError(t, err)
	require.Empty(t, rules)

	rule.PricePerKG = 55
	require.NoError(t, st.UpdatePricingRule(ctx, *rule))
	require.ErrorIs(t, st.UpdatePricingRule(ctx, models.PricingRule{
		ID: 999, Zone: "default", WeightFrom: 0, WeightTo: 1, PricePerKG: 1,
	}), models.ErrNotFound)

	// shipments + seed event
	in := models.ShipmentCreateInput{
		UserID:     u.ID,
		SenderName: "Alice", SenderEmail: "alice@example.com",
		SenderPhone: "111", SenderAddress: "1 First St",
		ReceiverName: "Bob", ReceiverEmail: "bob@example.com",
		ReceiverPhone: "222", ReceiverAddress: "2 Second St",
		WeightKG: 5,
	}
	sh, err := st.CreateShipment(ctx, in, "123456", 275, now.AddDate(0, 0, 3))
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, sh.Status)
	require.Equal(t, 275.0, sh.Price)
	require.Nil(t, sh.ActualDelivery)

	_, err = st.CreateShipment(ctx, in, "123456", 275, now.AddDate(0, 0, 3))
	require.ErrorIs(t, err, models.ErrConflict)

	byNum, err := st.GetShipmentByTrackingNumber(ctx, "123456")
	require.NoError(t, err)
	require.Equal(t, sh.ID, byNum.ID)

	_, err = st.GetShipmentByTrackingNumber(ctx, "000000")
	require.ErrorIs(t, err, models.ErrNotFound)

	events, err := st.ListTrackingEvents(ctx, sh.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, seedEventDescription, events[0].Description)

	// tracking updates
	loc := "Mumbai hub"
	ev, err := st.AppendTrackingEvent(ctx, sh.ID, models.StatusInTransit, &loc, "departed")
	require.NoError(t, err)
	require.NotZero(t, ev.ID)

	_, err = st.AppendTrackingEvent(ctx, 9999, models.StatusInTransit, nil, "")
	require.ErrorIs(t, err, models.ErrNotFound)

	_, err = st.AppendTrackingEvent(ctx, sh.ID, models.StatusDelivered, nil, "handed over")
	require.NoError(t, err)

	sh, err = st.GetShipmentByID(ctx, sh.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusDelivered, sh.Status)
	require.NotNil(t, sh.ActualDelivery)

	events, err = st.ListTrackingEvents(ctx, sh.ID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	require.Equal(t, models.StatusDelivered, events[0].Status) // newest first
	require.Nil(t, events[2].Location)
	require.Equal(t, &loc, events[1].Location)

	// event timestamps never regress, even when an existing event sits
	// ahead of the db clock; Delivered stamps actual_delivery with the
	// same clamped time
	sh2, err := st.CreateShipment(ctx, in, "654321", 275, now.AddDate(0, 0, 3))
	require.NoError(t, err)

	future := time.Now().UTC().Add(time.Hour)
	_, err = st.db.Exec(ctx, `UPDATE shipment_events SET created_at = $2 WHERE shipment_id = $1`, sh2.ID, future)
	require.NoError(t, err)

	ev2, err := st.AppendTrackingEvent(ctx, sh2.ID, models.StatusDelivered, nil, "handed over")
	require.NoError(t, err)
	require.False(t, ev2.CreatedAt.Before(future))

	sh2, err = st.GetShipmentByID(ctx, sh2.ID)
	require.NoError(t, err)
	require.NotNil(t, sh2.ActualDelivery)
	require.True(t, ev2.CreatedAt.Equal(*sh2.ActualDelivery))

	evs2, err := st.ListTrackingEvents(ctx, sh2.ID)
	require.NoError(t, err)
	require.Len(t, evs2, 2)
	require.Equal(t, models.StatusDelivered, evs2[0].Status)
	require.False(t, evs2[0].CreatedAt.Before(evs2[1].CreatedAt))

	// stats
	stats, err := st.UserShipmentStats(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), stats.Total)
	require.Equal(t, int64(2), stats.Delivered)
	require.Equal(t, 550.0, stats.TotalSpent)

	// notifications
	require.NoError(t, st.CreateNotification(ctx, models.Notification{
		UserID: u.ID, Type: "shipment", Title: "Shipment Created", Message: "m",
	}))
	ns, err := st.ListNotificationsByUser(ctx, u.ID, 10)
	require.NoError(t, err)
	require.Len(t, ns, 1)
	require.False(t, ns[0].Read)

	require.NoError(t, st.MarkNotificationRead(ctx, ns[0].ID, u.ID))
	require.ErrorIs(t, st.MarkNotificationRead(ctx, ns[0].ID, u.ID+1), models.ErrNotFound)

	ns, err = st.ListNotificationsByUser(ctx, u.ID, 10)
	require.NoError(t, err)
	require.True(t, ns[0].Read)

	// activity log
	require.NoError(t, st.CreateActivityEntry(ctx, models.ActivityEntry{
		ActorUserID: &u.ID, Action: "create_shipment",
		EntityType: "shipment", EntityID: &sh.ID, Description: "d",
	}))
	acts, err := st.ListActivity(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, acts, 1)
	require.Equal(t, "create_shipment", acts[0].Action)

	// rule delete last, nothing depends on it
	require.NoError(t, st.DeletePricingRule(ctx, rule.ID))
	require.ErrorIs(t, st.DeletePricingRule(ctx, rule.ID), models.ErrNotFound)
}
