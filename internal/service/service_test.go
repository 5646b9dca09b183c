package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/potholefix/internal/adapter/backend"
	"github.com/xiaot623/potholefix/internal/config"
	"github.com/xiaot623/potholefix/internal/domain"
	"github.com/xiaot623/potholefix/internal/guard"
	"github.com/xiaot623/potholefix/internal/notify"
	"github.com/xiaot623/potholefix/internal/policy"
	"github.com/xiaot623/potholefix/internal/session"
	"github.com/xiaot623/potholefix/tests/helpers"
)

func newTestService(t *testing.T, backendURL string, cfg *config.Config) (*Service, *session.Store, *notify.Poller) {
	t.Helper()

	ctx := context.Background()
	sessions := session.NewStore(helpers.NewTestSQLiteStore(t))
	engine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	client := backend.NewClient(backendURL, 2*time.Second)
	poller := notify.NewPoller(client, sessions, notify.WithClock(clock.NewMock()))
	t.Cleanup(poller.StopAll)

	if cfg == nil {
		cfg = &config.Config{SessionTTL: time.Hour}
	}
	return New(sessions, guard.New(engine), client, poller, cfg), sessions, poller
}

func TestLoginCitizen(t *testing.T) {
	ctx := context.Background()
	svc, sessions, poller := newTestService(t, helpers.NewFakeBackend(t).URL, nil)

	res, err := svc.Login(ctx, "b1", domain.LoginRequest{Email: "asha@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, domain.PathHistory, res.Redirect)

	sess := sessions.Get(ctx, "b1")
	assert.Equal(t, "tok-citizen", sess.Token)
	assert.Equal(t, domain.Citizen, sess.Role)
	assert.Equal(t, "u1", sess.UserID)
	assert.Equal(t, "Asha", sess.DisplayName)

	assert.True(t, poller.Running("b1"))
	assert.Eventually(t, func() bool {
		n, ok := svc.Badge("b1")
		return ok && n == 2
	}, time.Second, 5*time.Millisecond)
}

func TestLoginAdmin(t *testing.T) {
	ctx := context.Background()
	svc, sessions, poller := newTestService(t, helpers.NewFakeBackend(t).URL, nil)

	res, err := svc.Login(ctx, "b1", domain.LoginRequest{Email: "tmc@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, domain.PathDashboard, res.Redirect)
	assert.Equal(t, domain.Admin(domain.RegionTMC), sessions.Get(ctx, "b1").Role)
	assert.False(t, poller.Running("b1"))
}

func TestLoginLegacyAndUnknownRolesAreCitizens(t *testing.T) {
	ctx := context.Background()
	svc, sessions, _ := newTestService(t, helpers.NewFakeBackend(t).URL, nil)

	for _, email := range []string{"ravi@example.com", "weird@example.com"} {
		res, err := svc.Login(ctx, "b1", domain.LoginRequest{Email: email, Password: "secret"})
		require.NoError(t, err, email)
		assert.Equal(t, domain.PathHistory, res.Redirect, email)
		assert.Equal(t, domain.Citizen, sessions.Get(ctx, "b1").Role, email)
	}
}

func TestLoginFailureClearsPreviousSession(t *testing.T) {
	ctx := context.Background()
	svc, sessions, poller := newTestService(t, helpers.NewFakeBackend(t).URL, nil)

	_, err := svc.Login(ctx, "b1", domain.LoginRequest{Email: "asha@example.com", Password: "secret"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "b1", domain.LoginRequest{Email: "asha@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAuthenticationFailed))
	assert.Equal(t, "Invalid credentials", domain.UserMessage(err, ""))

	assert.True(t, sessions.Get(ctx, "b1").IsEmpty())
	assert.False(t, poller.Running("b1"))
	_, ok := svc.Badge("b1")
	assert.False(t, ok)
}

func TestLoginRequiresCredentials(t *testing.T) {
	svc, _, _ := newTestService(t, helpers.NewFakeBackend(t).URL, nil)

	_, err := svc.Login(context.Background(), "b1", domain.LoginRequest{Email: "  "})
	assert.True(t, errors.Is(err, domain.ErrServerValidation))
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	svc, sessions, poller := newTestService(t, helpers.NewFakeBackend(t).URL, nil)

	_, err := svc.Login(ctx, "b1", domain.LoginRequest{Email: "asha@example.com", Password: "secret"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, "b1"))
	assert.True(t, sessions.Get(ctx, "b1").IsEmpty())
	assert.False(t, poller.Running("b1"))

	_, decision := svc.Authorize(ctx, "b1", domain.CapabilityCitizen)
	assert.Equal(t, guard.RedirectTo(domain.PathLogin), decision)
}

func TestAuthorizeCrossRole(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, helpers.NewFakeBackend(t).URL, nil)

	_, err := svc.Login(ctx, "admin", domain.LoginRequest{Email: "tmc@example.com", Password: "secret"})
	require.NoError(t, err)
	_, decision := svc.Authorize(ctx, "admin", domain.CapabilityCitizen)
	assert.Equal(t, guard.RedirectTo(domain.PathDashboard), decision)

	_, err = svc.Login(ctx, "citizen", domain.LoginRequest{Email: "asha@example.com", Password: "secret"})
	require.NoError(t, err)
	_, decision = svc.Authorize(ctx, "citizen", domain.CapabilityAdmin)
	assert.Equal(t, guard.RedirectTo(domain.PathHistory), decision)
}

func TestHistoryScreen(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, helpers.NewFakeBackend(t).URL, nil)

	res, err := svc.Login(ctx, "b1", domain.LoginRequest{Email: "asha@example.com", Password: "secret"})
	require.NoError(t, err)

	view, err := svc.Screen(ctx, "b1", res.Session, domain.Screens[4])
	require.NoError(t, err)
	assert.Equal(t, "history", view.Screen)
	assert.Equal(t, "Asha", view.Name)
	assert.Equal(t, "CITIZEN", view.Region)
	require.Len(t, view.Nav, 2)
	assert.True(t, view.Nav[1].Active)

	payload, ok := view.Payload.(HistoryPayload)
	require.True(t, ok)
	require.Len(t, payload.Reports, 3)
	require.NotNil(t, payload.Reports[0].CreatedAt)
	assert.Equal(t, 2026, payload.Reports[0].CreatedAt.Time.Year())
	assert.Equal(t, 19.2183, payload.Reports[0].Coordinates.Lat)
	assert.Equal(t, domain.ReportTotals{Total: 3, Pending: 1, Resolved: 2}, payload.Totals)
}

func TestDashboardScreen(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, helpers.NewFakeBackend(t).URL, nil)

	res, err := svc.Login(ctx, "b1", domain.LoginRequest{Email: "tmc@example.com", Password: "secret"})
	require.NoError(t, err)

	view, err := svc.Screen(ctx, "b1", res.Session, domain.Screens[5])
	require.NoError(t, err)
	assert.Nil(t, view.Badge)

	payload, ok := view.Payload.(DashboardPayload)
	require.True(t, ok)
	assert.Equal(t, "TMC", payload.Region)
	assert.Equal(t, 1, payload.Totals.Pending)
}

func TestSignupScreenListsMunicipalities(t *testing.T) {
	svc, _, _ := newTestService(t, helpers.NewFakeBackend(t).URL, nil)

	view, err := svc.Screen(context.Background(), "b1", domain.Session{}, domain.Screens[2])
	require.NoError(t, err)
	assert.Empty(t, view.Nav)
	assert.Equal(t, SignupPayload{Municipalities: []string{"TMC", "BMC", "NMMC"}}, view.Payload)
}

func TestSignupAppliesFormDefaults(t *testing.T) {
	svc, _, _ := newTestService(t, helpers.NewFakeBackend(t).URL, nil)

	err := svc.Signup(context.Background(), domain.SignupRequest{Name: "Asha", Email: "asha@example.com", Password: "pw"})
	assert.NoError(t, err)
}

func TestSignupAlwaysRegistersCitizens(t *testing.T) {
	svc, _, _ := newTestService(t, helpers.NewFakeBackend(t).URL, nil)

	err := svc.Signup(context.Background(), domain.SignupRequest{
		Name: "Mallory", Email: "m@example.com", Password: "pw", Municipality: "bmc", Role: "admin-tmc",
	})
	assert.NoError(t, err)
}

func TestSignupRejectsUnknownMunicipality(t *testing.T) {
	svc, _, _ := newTestService(t, helpers.NewFakeBackend(t).URL, nil)

	err := svc.Signup(context.Background(), domain.SignupRequest{
		Name: "Asha", Email: "asha@example.com", Password: "pw", Municipality: "Gotham",
	})
	assert.True(t, errors.Is(err, domain.ErrServerValidation))
}

func TestResolveReportAuditRejection(t *testing.T) {
	svc, _, _ := newTestService(t, helpers.NewFakeBackend(t).URL, nil)
	sess := domain.Session{Token: "tok-admin", Role: domain.Admin(domain.RegionTMC)}

	photo := &domain.Upload{Filename: "fixed.jpg", ContentType: "image/jpeg", Data: []byte{0xff, 0xd8}}
	err := svc.ResolveReport(context.Background(), sess, "r9", photo)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrServerValidation))
	assert.Equal(t, "AI Audit failed: potholes still detected", domain.UserMessage(err, ""))
}

func TestSubmitReportValidation(t *testing.T) {
	svc, _, _ := newTestService(t, helpers.NewFakeBackend(t).URL, nil)
	sess := domain.Session{Token: "tok-citizen", Role: domain.Citizen, UserID: "u1"}

	_, err := svc.SubmitReport(context.Background(), sess, domain.NewReport{Lat: 19.2, Lng: 72.9})
	assert.True(t, errors.Is(err, domain.ErrServerValidation))

	image := domain.Upload{Filename: "road.jpg", Data: []byte{1}}
	_, err = svc.SubmitReport(context.Background(), sess, domain.NewReport{Image: image})
	assert.True(t, errors.Is(err, domain.ErrServerValidation))

	_, err = svc.SubmitReport(context.Background(), sess, domain.NewReport{Image: image, Lat: 91, Lng: 10})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "out of range"))
}

func TestSweepExpiredSessions(t *testing.T) {
	ctx := context.Background()
	svc, sessions, _ := newTestService(t, helpers.NewFakeBackend(t).URL, &config.Config{SessionTTL: time.Millisecond})

	require.NoError(t, sessions.Set(ctx, "b1", domain.Session{Token: "t", Role: domain.Citizen, UserID: "u1"}))
	time.Sleep(10 * time.Millisecond)

	svc.sweepExpiredSessions(ctx)
	assert.True(t, sessions.Get(ctx, "b1").IsEmpty())
}
