package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"api-guard/middleware/ratelimit/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	adm domain.Admission
	err error
}

func (s fakeStore) Admit(context.Context, domain.Key, time.Time) (domain.Admission, error) {
	return s.adm, s.err
}

func TestService_Decide_AllowsWhenNoStore(t *testing.T) {
	svc := Service{}
	dec, err := svc.Decide(context.Background(), "k", time.Now())
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
	assert.Zero(t, dec.RetryAfter, "expected RetryAfter=0 when allowed")
}

func TestService_Decide_AllowsWhenStoreAdmits(t *testing.T) {
	svc := Service{Store: fakeStore{adm: domain.Admission{Allowed: true, Remaining: 4}}}
	dec, err := svc.Decide(context.Background(), "k", time.Now())
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
	assert.Equal(t, 4, dec.Remaining)
}

func TestService_Decide_BlocksWithResetIn(t *testing.T) {
	svc := Service{Store: fakeStore{adm: domain.Admission{Allowed: false, ResetIn: 42 * time.Second}}}
	dec, err := svc.Decide(context.Background(), "k", time.Now())
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Equal(t, 42*time.Second, dec.RetryAfter)
}

func TestService_Decide_RetryAfterFloor(t *testing.T) {
	svc := Service{Store: fakeStore{adm: domain.Admission{Allowed: false, ResetIn: 10 * time.Millisecond}}}
	dec, _ := svc.Decide(context.Background(), "k", time.Now())
	assert.Equal(t, 1*time.Second, dec.RetryAfter, "expected default floor of 1s")

	svc.MinRetryAfter = 2500 * time.Millisecond
	dec, _ = svc.Decide(context.Background(), "k", time.Now())
	assert.Equal(t, 2500*time.Millisecond, dec.RetryAfter)
}

func TestService_Decide_FailsOpenOnStoreError(t *testing.T) {
	boom := errors.New("redis down")
	svc := Service{Store: fakeStore{err: boom}}
	dec, err := svc.Decide(context.Background(), "k", time.Now())
	assert.ErrorIs(t, err, boom)
	assert.True(t, dec.Allowed)
}
