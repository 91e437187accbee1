package typemeta_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typemeta-go/typemeta"
)

type retryPolicy struct {
	Attempts int     `default:"3"`
	Backoff  float64 `default:"1.5"`
}

type clientConfig struct {
	Host    string   `default:"localhost"`
	Port    int      `default:"8080"`
	Secure  bool     `default:"true"`
	Tags    []string `default:"[alpha, beta]"`
	Comment string
	Retry   retryPolicy
}

func TestApplyDefaults(t *testing.T) {
	r := require.New(t)

	cfg := &clientConfig{}
	r.NoError(typemeta.ApplyDefaults(cfg))

	r.Equal("localhost", cfg.Host)
	r.Equal(8080, cfg.Port)
	r.True(cfg.Secure)
	r.Equal([]string{"alpha", "beta"}, cfg.Tags)
	r.Empty(cfg.Comment) // no declared default, stays at zero
	r.Equal(retryPolicy{Attempts: 3, Backoff: 1.5}, cfg.Retry)
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	r := require.New(t)

	cfg := &clientConfig{Host: "example.com", Port: 9090, Retry: retryPolicy{Attempts: 1}}
	r.NoError(typemeta.ApplyDefaults(cfg))

	r.Equal("example.com", cfg.Host)
	r.Equal(9090, cfg.Port)
	r.Equal(1, cfg.Retry.Attempts)
	// untouched nested fields are still defaulted
	r.Equal(1.5, cfg.Retry.Backoff)
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	r := require.New(t)

	first := &clientConfig{}
	r.NoError(typemeta.ApplyDefaults(first))
	second := &clientConfig{}
	r.NoError(typemeta.ApplyDefaults(second))
	r.NoError(typemeta.ApplyDefaults(second))

	r.Equal(first, second)
}

func TestApplyDefaults_InvalidInput(t *testing.T) {
	assert.Error(t, typemeta.ApplyDefaults(clientConfig{}))
	assert.Error(t, typemeta.ApplyDefaults(nil))
	assert.Error(t, typemeta.ApplyDefaults((*clientConfig)(nil)))
	var n int
	assert.Error(t, typemeta.ApplyDefaults(&n))
}

func TestApplyDefaults_InvalidDeclaration(t *testing.T) {
	type broken struct {
		Count int `default:"not-a-number"`
	}
	err := typemeta.ApplyDefaults(&broken{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Count")
}
