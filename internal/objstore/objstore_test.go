package objstore

import (
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestKey(t *testing.T) {
	base := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	objects := []minio.ObjectInfo{
		{Key: "number_changes/a.csv", LastModified: base},
		{Key: "number_changes/c.csv", LastModified: base.Add(48 * time.Hour)},
		{Key: "number_changes/", LastModified: base.Add(72 * time.Hour)},
		{Key: "number_changes/b.csv", LastModified: base.Add(24 * time.Hour)},
	}

	key, ok := latestKey(objects)
	require.True(t, ok)
	assert.Equal(t, "number_changes/c.csv", key)
}

func TestLatestKey_TieKeepsFirst(t *testing.T) {
	ts := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	key, ok := latestKey([]minio.ObjectInfo{
		{Key: "first.xlsx", LastModified: ts},
		{Key: "second.xlsx", LastModified: ts},
	})
	require.True(t, ok)
	assert.Equal(t, "first.xlsx", key)
}

func TestLatestKey_Empty(t *testing.T) {
	_, ok := latestKey(nil)
	assert.False(t, ok)

	_, ok = latestKey([]minio.ObjectInfo{{Key: "dir/"}})
	assert.False(t, ok)
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		raw    string
		bucket string
		key    string
		ok     bool
	}{
		{"s3://healthworkers-payments/number_changes/", "healthworkers-payments", "number_changes/", true},
		{"s3://bucket/roster.xlsx", "bucket", "roster.xlsx", true},
		{"s3://bucket", "bucket", "", true},
		{"s3:///key", "", "", false},
		{"/data/roster.xlsx", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			bucket, key, ok := ParseURL(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.bucket, bucket)
			assert.Equal(t, tt.key, key)
		})
	}
}

func TestNew_RequiresEndpoint(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoint is not configured")
}

func TestNew(t *testing.T) {
	c, err := New(Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"})
	require.NoError(t, err)
	assert.NotNil(t, c)
}
