package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	apperrors "github.com/NomadCrew/nomad-split-backend/errors"
	"github.com/NomadCrew/nomad-split-backend/logger"
	"github.com/NomadCrew/nomad-split-backend/models/shared"
	"github.com/NomadCrew/nomad-split-backend/types"
	"github.com/gabriel-vasile/mimetype"
)

// MaxReceiptSize is the maximum allowed receipt size (10MB)
const MaxReceiptSize = 10 * 1024 * 1024

// Allowed MIME types for receipt uploads
var allowedReceiptTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/heic":      true,
	"image/heif":      true,
	"image/webp":      true,
}

// AttachReceipt uploads a receipt image for a transaction the caller is involved
// in. The content type is sniffed from the bytes; the client's claim is ignored.
func (s *TransactionService) AttachReceipt(ctx context.Context, userID, id string, file io.Reader, fileName string) (*types.Transaction, error) {
	if s.receipts == nil {
		return nil, apperrors.New(apperrors.UnavailableError, "Receipt uploads are disabled", "")
	}

	tx, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !tx.Involves(userID) {
		return nil, apperrors.Forbidden("You do not have access to this transaction", tx.ID)
	}

	data, err := io.ReadAll(io.LimitReader(file, MaxReceiptSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read receipt: %w", err)
	}
	if len(data) == 0 {
		return nil, apperrors.ValidationFailed("empty_file", "receipt file is empty")
	}
	if len(data) > MaxReceiptSize {
		return nil, apperrors.ValidationFailed("file_too_large", fmt.Sprintf("receipt exceeds maximum of %d bytes", MaxReceiptSize))
	}

	contentType := mimetype.Detect(data).String()
	if !allowedReceiptTypes[contentType] {
		return nil, apperrors.ValidationFailed("invalid_mime_type",
			fmt.Sprintf("MIME type %s is not allowed. Allowed: jpeg, png, heic, webp, pdf", contentType))
	}

	now := s.now()
	key := fmt.Sprintf("receipts/%s/%d_%s", tx.ID, now.UnixNano(), sanitizeFilename(fileName))
	if err := s.receipts.Save(ctx, key, data, contentType); err != nil {
		return nil, fmt.Errorf("failed to store receipt: %w", err)
	}

	var previousKey string
	if tx.Receipt != nil {
		previousKey = tx.Receipt.ObjectKey
	}
	receipt := types.Receipt{}
	if tx.Receipt != nil {
		receipt.ScannedData = tx.Receipt.ScannedData
	}
	receipt.ObjectKey = key
	receipt.ContentType = contentType
	receipt.UploadedAt = &now
	tx.Receipt = &receipt
	tx.UpdatedAt = now

	if err := s.store.Transactions().Update(ctx, tx); err != nil {
		_ = s.receipts.Delete(ctx, key)
		return nil, shared.FromStore(err, "Transaction", tx.ID)
	}
	if previousKey != "" {
		if err := s.receipts.Delete(ctx, previousKey); err != nil {
			logger.GetLogger().Warnw("Failed to delete replaced receipt", "key", previousKey, "error", err)
		}
	}

	s.emit(ctx, types.EventTypeTransactionUpdated, tx, userID, "")
	s.signReceipt(ctx, tx)
	return tx, nil
}

// signReceipt replaces the stored image URL with a fresh presigned one.
func (s *TransactionService) signReceipt(ctx context.Context, tx *types.Transaction) {
	if s.receipts == nil || tx.Receipt == nil || tx.Receipt.ObjectKey == "" {
		return
	}
	url, err := s.receipts.URL(ctx, tx.Receipt.ObjectKey)
	if err != nil {
		logger.GetLogger().Warnw("Failed to sign receipt URL", "transactionID", tx.ID, "error", err)
		return
	}
	tx.Receipt.ImageURL = url
}

var safeFilenameRe = regexp.MustCompile(`[^a-zA-Z0-9._\-]`)

// sanitizeFilename removes path separators and unsafe characters, keeping the
// extension when a long name is truncated.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = safeFilenameRe.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == ".." || name == "_" {
		name = "receipt"
	}
	const maxLen = 128
	if len(name) > maxLen {
		ext := filepath.Ext(name)
		if len(ext) >= maxLen {
			ext = ""
		}
		stem := strings.TrimSuffix(name, ext)
		name = stem[:maxLen-len(ext)] + ext
	}
	return name
}
