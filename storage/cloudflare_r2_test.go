package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicURL(t *testing.T) {
	tests := []struct {
		base, key, want string
	}{
		{"https://cdn.example.com", "trades/a.json", "https://cdn.example.com/trades/a.json"},
		{"https://cdn.example.com/", "/trades/a.json", "https://cdn.example.com/trades/a.json"},
		{"https://cdn.example.com/archive", "trades/a.json", "https://cdn.example.com/archive/trades/a.json"},
		{"", "trades/a.json", ""},
		{"https://cdn.example.com", "", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, publicURL(tt.base, tt.key), "base=%q key=%q", tt.base, tt.key)
	}
}

func TestNewCloudflareR2StoreRequiresCredentials(t *testing.T) {
	_, err := NewCloudflareR2Store(context.Background(), CloudflareR2Config{AccountID: "acc", BucketName: "b"})
	require.Error(t, err)

	cfg := CloudflareR2Config{AccountID: "acc", AccessKeyID: "key", SecretAccessKey: "secret", BucketName: "trades"}
	assert.True(t, cfg.Enabled())
	store, err := NewCloudflareR2Store(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "", store.GetPublicURL("x"))
}
