package pages

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/restaurant_backoffice/internal/apiclient"
	"github.com/Skotchmaster/restaurant_backoffice/internal/routes"
)

type fakeAPI struct {
	reservations []apiclient.Reservation
	schedules    []apiclient.Schedule
	err          error
	calls        int
}

func (f *fakeAPI) ListReservations(context.Context) ([]apiclient.Reservation, error) {
	f.calls++
	return f.reservations, f.err
}

func (f *fakeAPI) ListSchedules(context.Context) ([]apiclient.Schedule, error) {
	f.calls++
	return f.schedules, nil
}

func match(t *testing.T, path string) routes.Match {
	t.Helper()
	m, err := routes.Resolve(routes.Table, path)
	require.NoError(t, err)
	return m
}

func TestRender_PublicPagesDoNotCallTheAPI(t *testing.T) {
	color.NoColor = true
	api := &fakeAPI{}

	var buf bytes.Buffer
	require.NoError(t, Render(context.Background(), &buf, match(t, "/login"), api))
	assert.Contains(t, buf.String(), "Login")

	buf.Reset()
	require.NoError(t, Render(context.Background(), &buf, match(t, "/reset-password/7/abc-123"), api))
	assert.Contains(t, buf.String(), "uidb64: 7")
	assert.Contains(t, buf.String(), "token:  abc-123")

	assert.Zero(t, api.calls)
}

func TestRender_Backoffice(t *testing.T) {
	color.NoColor = true
	end := "2030-01-10"
	api := &fakeAPI{
		reservations: []apiclient.Reservation{{ID: 7, Name: "Martin", Date: "2030-01-09", Time: "20:00:00", PartySize: 3, Status: "accepted"}},
		schedules:    []apiclient.Schedule{{ID: 2, Type: "closed", StartDate: "2030-01-08", EndDate: &end, Moment: "full_day"}},
	}

	var buf bytes.Buffer
	require.NoError(t, Render(context.Background(), &buf, match(t, "/backoffice"), api))
	out := buf.String()
	assert.Contains(t, out, "Martin")
	assert.Contains(t, out, "accepted")
	assert.Contains(t, out, "2030-01-10")
	assert.Contains(t, out, "full_day")
}

func TestRender_BackofficeEmptyAndError(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	require.NoError(t, Render(context.Background(), &buf, match(t, "/backoffice"), &fakeAPI{}))
	assert.Contains(t, buf.String(), "No reservations.")

	boom := errors.New("boom")
	err := Render(context.Background(), &buf, match(t, "/backoffice"), &fakeAPI{err: boom})
	assert.ErrorIs(t, err, boom)
}
