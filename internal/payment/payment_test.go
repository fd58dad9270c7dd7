// ABOUTME: Tests for x402 header encode/decode helpers
// ABOUTME: Covers round-tripping, malformed base64/JSON, and requirements decoding

package payment

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	payload := []byte(`{"x402Version":1,"scheme":"exact","network":"base-sepolia"}`)

	encoded := Encode(payload)
	decoded, err := Decode(encoded)

	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestDecode_InvalidBase64(t *testing.T) {
	_, err := Decode("not!!legal@@base64")
	assert.Error(t, err)
}

func TestCheckHeader(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{
			name:  "valid payment payload",
			value: Encode([]byte(`{"x402Version":1,"scheme":"exact","payload":{"signature":"0xabc"}}`)),
		},
		{
			name:    "bad base64",
			value:   "%%%%",
			wantErr: true,
		},
		{
			name:    "base64 but not JSON",
			value:   base64.StdEncoding.EncodeToString([]byte("just text")),
			wantErr: true,
		},
		{
			name:    "JSON but not an object",
			value:   Encode([]byte(`[1,2,3]`)),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckHeader(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDecodeRequirements(t *testing.T) {
	body := []byte(`{
		"x402Version": 1,
		"error": "payment required for this resource",
		"accepts": [
			{"scheme": "exact", "network": "base", "maxAmountRequired": "10000", "payTo": "0xdef"}
		]
	}`)

	reqs, err := DecodeRequirements(body)

	require.NoError(t, err)
	assert.Equal(t, 1, reqs.X402Version)
	assert.Equal(t, "payment required for this resource", reqs.Error)
	require.Len(t, reqs.Accepts, 1)
	assert.Contains(t, string(reqs.Accepts[0]), `"scheme": "exact"`)
}

func TestDecodeRequirements_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not JSON", body: "<html>402</html>"},
		{name: "no accepts", body: `{"x402Version":1}`},
		{name: "empty accepts", body: `{"x402Version":1,"accepts":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRequirements([]byte(tt.body))
			assert.Error(t, err)
		})
	}
}

func TestDecodeReceipt(t *testing.T) {
	receipt := []byte(`{"success":true,"transaction":"0x123","network":"base","payer":"0xabc"}`)

	decoded, err := DecodeReceipt(Encode(receipt))

	require.NoError(t, err)
	assert.JSONEq(t, string(receipt), string(decoded))
}

func TestDecodeReceipt_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "bad base64", value: "@@@"},
		{name: "not JSON", value: Encode([]byte("nope"))},
		{name: "not an object", value: Encode([]byte(`"just a string"`))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeReceipt(tt.value)
			assert.Error(t, err)
		})
	}
}
