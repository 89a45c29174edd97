package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/NomadCrew/nomad-split-backend/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewS3ReceiptStorage(t *testing.T) {
	storage, err := NewS3ReceiptStorage(config.ReceiptStorageConfig{
		Endpoint:        "https://account.r2.cloudflarestorage.com",
		Bucket:          "receipts",
		AccessKeyID:     "AKID",
		SecretAccessKey: "SECRET",
		URLTTLMinutes:   10,
	})
	require.NoError(t, err)
	assert.NotNil(t, storage.client)
	assert.NotNil(t, storage.presigner)
	assert.Equal(t, "receipts", storage.bucketName)
	assert.Equal(t, 10*time.Minute, storage.urlTTL)
}

func TestNewS3ReceiptStorage_RequiresBucket(t *testing.T) {
	_, err := NewS3ReceiptStorage(config.ReceiptStorageConfig{})
	assert.Error(t, err)
}

func TestS3ReceiptStorage_PresignsWithoutNetwork(t *testing.T) {
	storage, err := NewS3ReceiptStorage(config.ReceiptStorageConfig{
		Endpoint:        "http://localhost:9000",
		Region:          "us-east-1",
		Bucket:          "receipts",
		AccessKeyID:     "AKID",
		SecretAccessKey: "SECRET",
	})
	require.NoError(t, err)

	url, err := storage.URL(context.Background(), "receipts/tx-1/1_receipt.png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:9000/receipts/receipts/tx-1/1_receipt.png"), url)
	assert.Contains(t, url, "X-Amz-Signature=")
}

func TestValidateKey(t *testing.T) {
	assert.NoError(t, validateKey("receipts/tx/1_a.png"))
	assert.Error(t, validateKey("receipts/../secrets"))
	assert.Error(t, validateKey(""))
}
