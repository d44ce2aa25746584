package services

import (
	"context"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.users.Authenticate(ctx, f.realm.ID, testUsername, testPassword)
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, user.ID)

	_, err = f.users.Authenticate(ctx, f.realm.ID, testUsername, "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.users.Authenticate(ctx, f.realm.ID, "mallory", testPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_DoesNotLogAttemptedUsername(t *testing.T) {
	f := newFixture(t)
	core, logs := observer.New(zapcore.DebugLevel)
	t.Cleanup(zap.ReplaceGlobals(zap.New(core)))

	const typed = "hunter2-typed-in-username-box"
	_, err := f.users.Authenticate(context.Background(), f.realm.ID, typed, "x")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	for _, entry := range logs.All() {
		assert.NotContains(t, entry.Message, typed)
		for k, v := range entry.ContextMap() {
			assert.NotContains(t, fmt.Sprint(v), typed, "field %s", k)
		}
	}
}

// TestAuthenticate_TimingEqualization compares median latencies of the
// unknown-user and wrong-password paths, store lookup included.
func TestAuthenticate_TimingEqualization(t *testing.T) {
	if testing.Short() {
		t.Skip("timing test skipped in short mode")
	}

	f := newFixture(t)
	ctx := context.Background()

	const samples = 15
	unknown := make([]time.Duration, 0, samples)
	wrong := make([]time.Duration, 0, samples)

	for range samples {
		start := time.Now()
		_, err := f.users.Authenticate(ctx, f.realm.ID, "mallory", testPassword)
		unknown = append(unknown, time.Since(start))
		require.ErrorIs(t, err, ErrInvalidCredentials)

		start = time.Now()
		_, err = f.users.Authenticate(ctx, f.realm.ID, testUsername, "wrong")
		wrong = append(wrong, time.Since(start))
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}

	mu, mw := medianDuration(unknown), medianDuration(wrong)
	ratio := float64(mu) / float64(mw)
	assert.Greater(t, ratio, 0.5, "unknown=%v wrong=%v", mu, mw)
	assert.Less(t, ratio, 2.0, "unknown=%v wrong=%v", mu, mw)
}

func medianDuration(d []time.Duration) time.Duration {
	sorted := slices.Clone(d)
	slices.Sort(sorted)
	return sorted[len(sorted)/2]
}

func TestAuthenticate_RealmScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other, _, err := f.realms.Create(ctx, "globex")
	require.NoError(t, err)

	_, err = f.users.Authenticate(ctx, other.ID, testUsername, testPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.Create(ctx, f.realm.ID, testUsername, "", "x")
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = f.users.Create(ctx, f.realm.ID, "  ", "", "x")
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = f.users.Create(ctx, f.realm.ID, "bob", "", "")
	assert.ErrorIs(t, err, ErrPasswordEmpty)

	// same username in another realm is fine
	other, _, err := f.realms.Create(ctx, "globex")
	require.NoError(t, err)
	_, err = f.users.Create(ctx, other.ID, testUsername, "", "x")
	assert.NoError(t, err)

	users, err := f.users.List(ctx, f.realm.ID)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.users.ChangePassword(ctx, f.realm.ID, f.user.ID, testPassword, "")
	assert.ErrorIs(t, err, ErrNewPasswordRequired)

	err = f.users.ChangePassword(ctx, f.realm.ID, f.user.ID, "wrong", "new-password")
	assert.ErrorIs(t, err, ErrCurrentPasswordIncorrect)

	require.NoError(t, f.users.ChangePassword(ctx, f.realm.ID, f.user.ID, testPassword, "new-password"))

	_, err = f.users.Authenticate(ctx, f.realm.ID, testUsername, testPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.users.Authenticate(ctx, f.realm.ID, testUsername, "new-password")
	assert.NoError(t, err)
}

func TestSetPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.users.SetPassword(ctx, f.realm.ID, testUsername, "reset"))
	_, err := f.users.Authenticate(ctx, f.realm.ID, testUsername, "reset")
	assert.NoError(t, err)

	assert.ErrorIs(t, f.users.SetPassword(ctx, f.realm.ID, "nobody", "x"), ErrUserNotFound)
	assert.ErrorIs(t, f.users.SetPassword(ctx, f.realm.ID, testUsername, ""), ErrPasswordEmpty)
}

func TestDeleteUser_RevokesCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	set, err := f.tokens.ExchangeCode(ctx, f.realm, f.exchange(f.issueCode(t)))
	require.NoError(t, err)
	secret, _, err := f.sessions.Create(ctx, f.realm.ID, f.user.ID)
	require.NoError(t, err)

	require.NoError(t, f.users.Delete(ctx, f.realm.ID, testUsername))
	assert.ErrorIs(t, f.users.Delete(ctx, f.realm.ID, testUsername), ErrUserNotFound)

	_, err = f.sessions.Lookup(ctx, f.realm.ID, secret.Reveal())
	assert.Error(t, err)
	_, err = f.tokens.Refresh(ctx, f.realm, RefreshExchange{RefreshToken: set.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}
