package validators_test

import (
	"testing"
	"time"

	"github.com/Egor213/LogiStream/internal/controller/http/validators"
	"github.com/Egor213/LogiStream/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestValidateBroadcast(t *testing.T) {
	tcs := []struct {
		name    string
		kind    string
		n       *domain.Notification
		wantErr bool
	}{
		{name: "valid", kind: "broadcast", n: &domain.Notification{Title: "x", Body: "y"}},
		{name: "missing body", kind: "broadcast", n: &domain.Notification{Title: "x"}, wantErr: true},
		{name: "missing data", kind: "broadcast", wantErr: true},
		{name: "wrong type", kind: "message", n: &domain.Notification{Title: "x", Body: "y"}, wantErr: true},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			err := validators.ValidateBroadcast(tc.kind, tc.n)
			if tc.wantErr {
				assert.ErrorIs(t, err, validators.ErrInvalidBroadcast)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestParseLevels(t *testing.T) {
	got, err := validators.ParseLevels("error, WARN")
	assert.NoError(t, err)
	assert.Equal(t, []domain.Level{domain.LevelError, domain.LevelWarn}, got)

	got, err = validators.ParseLevels("")
	assert.NoError(t, err)
	assert.Nil(t, got)

	_, err = validators.ParseLevels("error,fatal")
	assert.ErrorIs(t, err, validators.ErrInvalidLogLevel)
}

func TestParseSince(t *testing.T) {
	want := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	got, err := validators.ParseSince("2024-05-01T10:00:00Z")
	assert.NoError(t, err)
	assert.True(t, want.Equal(got))

	got, err = validators.ParseSince("1714557600000")
	assert.NoError(t, err)
	assert.True(t, want.Equal(got))

	_, err = validators.ParseSince("yesterday")
	assert.ErrorIs(t, err, validators.ErrInvalidSince)
}

func TestParseLimit(t *testing.T) {
	n, err := validators.ParseLimit("25")
	assert.NoError(t, err)
	assert.Equal(t, 25, n)

	for _, raw := range []string{"0", "-3", "ten"} {
		_, err := validators.ParseLimit(raw)
		assert.ErrorIs(t, err, validators.ErrInvalidLimit, raw)
	}
}

func TestValidateSubscription(t *testing.T) {
	valid := &domain.PushSubscription{Endpoint: "https://push.example.com/a", Keys: domain.PushKeys{P256dh: "k", Auth: "a"}}
	assert.NoError(t, validators.ValidateSubscription(valid))
	assert.ErrorIs(t, validators.ValidateSubscription(&domain.PushSubscription{Endpoint: "https://push.example.com/a"}), validators.ErrInvalidSubscription)
	assert.ErrorIs(t, validators.ValidateSubscription(nil), validators.ErrInvalidSubscription)
}

func TestValidateClientLog(t *testing.T) {
	assert.NoError(t, validators.ValidateClientLog(domain.LevelDebug, "hello"))
	assert.ErrorIs(t, validators.ValidateClientLog("fatal", "hello"), validators.ErrInvalidLogLevel)
	assert.ErrorIs(t, validators.ValidateClientLog(domain.LevelInfo, "  "), validators.ErrEmptyMessage)
}
