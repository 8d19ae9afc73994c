package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindmate/mindmate-backend/internal/config"
	"github.com/mindmate/mindmate-backend/internal/services"
)

type ctxKey struct{}

func TestRequestContextOutlivesShutdownSignal(t *testing.T) {
	parent, cancel := context.WithCancel(context.WithValue(context.Background(), ctxKey{}, "mindmate"))
	base := requestBaseContext(parent)(nil)

	cancel()
	require.Error(t, parent.Err())
	assert.NoError(t, base.Err(), "in-flight requests must keep running while Shutdown drains them")
	assert.Equal(t, "mindmate", base.Value(ctxKey{}))

	select {
	case <-base.Done():
		t.Fatal("request base context was cancelled with the signal context")
	case <-time.After(10 * time.Millisecond):
	}
}

func TestNewSessionStore(t *testing.T) {
	store, err := newSessionStore(&config.Config{SessionBackend: config.SessionBackendJWT, JWTSecret: "s", SessionTTL: time.Hour}, nil)
	require.NoError(t, err)
	assert.IsType(t, &services.JWTSessionStore{}, store)

	_, err = newSessionStore(&config.Config{SessionBackend: config.SessionBackendRedis}, nil)
	assert.Error(t, err)
}
