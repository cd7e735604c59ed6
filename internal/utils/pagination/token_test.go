package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeLedgerToken(t *testing.T) {
	txnDate := time.Date(2025, 3, 10, 14, 30, 45, 123456789, time.UTC)
	txnID := "c1b9a8d0-0000-4000-8000-000000000001"

	token := EncodeLedgerToken(txnDate, txnID)
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedDate, decodedID, err := DecodeLedgerToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, txnDate, decodedDate, "Transaction date should match after decode")
	assert.Equal(t, txnID, decodedID, "Transaction ID should match after decode")

	now := time.Now().UTC()
	nowToken := EncodeLedgerToken(now, txnID)
	decodedNowDate, _, err := DecodeLedgerToken(nowToken)
	assert.NoError(t, err, "Decoding current time should not return an error")
	assert.True(t, now.Equal(decodedNowDate), "Current date should match after decode")
}

func TestDecodeLedgerTokenError(t *testing.T) {
	_, _, err := DecodeLedgerToken("this is not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.Contains(t, err.Error(), "base64 decode")

	// Base64 encoded date without the separator
	invalidToken := "MjAyMy0wNS0xNVQwMDowMDowMFo="
	_, _, err = DecodeLedgerToken(invalidToken)
	assert.Error(t, err, "Should return an error for invalid token format")
	assert.Contains(t, err.Error(), "split")

	// Base64 encoded "notadate|txn-1"
	invalidDateToken := "bm90YWRhdGV8dHhuLTE="
	_, _, err = DecodeLedgerToken(invalidDateToken)
	assert.Error(t, err, "Should return an error for invalid date format")
	assert.Contains(t, err.Error(), "transaction date parse")
}

func TestEncodeMultiFieldToken(t *testing.T) {
	fields := []string{"driver123", "field2", "field3"}
	token := EncodeMultiFieldToken(fields...)

	decodedFields, err := DecodeMultiFieldToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, fields, decodedFields, "Fields should match after decode")

	emptyToken := EncodeMultiFieldToken()
	decodedEmpty, err := DecodeMultiFieldToken(emptyToken)
	assert.NoError(t, err)
	// Splitting an empty string yields a slice with one empty string.
	assert.Equal(t, []string{""}, decodedEmpty)

	timestampStr := time.Now().UTC().Format(time.RFC3339Nano)
	timeToken := EncodeMultiFieldToken("driver123", timestampStr)

	decodedTime, err := DecodeMultiFieldToken(timeToken)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(decodedTime))
	assert.Equal(t, "driver123", decodedTime[0])
	assert.Equal(t, timestampStr, decodedTime[1])
}
