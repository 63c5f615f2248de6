package checksum_test

import (
	"encoding/json"
	"math"
	"testing"

	"dineswift-local/internal/checksum"
	"dineswift-local/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		want    string
		wantErr bool
	}{
		{
			name:  "sorts keys and drops whitespace",
			input: json.RawMessage(`{ "b": 1, "a": [true, null] }`),
			want:  `{"a":[true,null],"b":1}`,
		},
		{
			name:  "nested objects sorted",
			input: map[string]any{"z": map[string]any{"y": "1", "x": "2"}, "a": "b"},
			want:  `{"a":"b","z":{"x":"2","y":"1"}}`,
		},
		{
			name:  "numbers in shortest form",
			input: json.RawMessage(`{"price":10.50,"qty":2.0}`),
			want:  `{"price":10.5,"qty":2}`,
		},
		{
			name:  "html characters are not escaped",
			input: json.RawMessage(`{"name":"Fish & Chips <large>"}`),
			want:  `{"name":"Fish & Chips <large>"}`,
		},
		{
			name:  "strings NFC normalised",
			input: json.RawMessage("{\"name\":\"Café\"}"),
			want:  "{\"name\":\"Café\"}",
		},
		{
			name:    "invalid utf-8 in a string",
			input:   json.RawMessage("{\"name\":\"\xff\"}"),
			wantErr: true,
		},
		{
			name:    "invalid utf-8 passed as a string",
			input:   "{\"name\":\"\xfe\"}",
			wantErr: true,
		},
		{
			name:    "malformed json",
			input:   json.RawMessage(`{"a":`),
			wantErr: true,
		},
		{
			name:    "trailing document",
			input:   json.RawMessage(`{"a":1}{"b":2}`),
			wantErr: true,
		},
		{
			name:    "nil payload",
			input:   nil,
			wantErr: true,
		},
		{
			name:    "unencodable value",
			input:   map[string]any{"price": math.NaN()},
			wantErr: true,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			got, err := checksum.Canonical(testCase.input)
			if testCase.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrChecksum)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.want, string(got))
		})
	}
}

func TestCompute_KeyOrderIndependent(t *testing.T) {
	first := json.RawMessage(`{"categories":[{"name":"Mains","items":[{"id":"1","price":12.5}]}],"restaurant":"r1"}`)
	second := json.RawMessage(`{"restaurant":"r1","categories":[{"items":[{"price":12.50,"id":"1"}],"name":"Mains"}]}`)

	h1, err := checksum.Compute(first)
	require.NoError(t, err)
	h2, err := checksum.Compute(second)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
}

func TestCompute_DetectsChange(t *testing.T) {
	same, err := checksum.Equal(
		json.RawMessage(`{"items":[{"id":"1","price":12.5}]}`),
		json.RawMessage(`{"items":[{"id":"1","price":13}]}`),
	)
	require.NoError(t, err)
	assert.False(t, same)

	same, err = checksum.Equal(
		json.RawMessage(`{"items":["a","b"]}`),
		json.RawMessage(`{"items":["b","a"]}`),
	)
	require.NoError(t, err)
	assert.False(t, same, "array order is significant")
}

func TestIdempotencyKey(t *testing.T) {
	base := checksum.IdempotencyKey(decimal.RequireFromString("10"), "256700000001", "ORD-1")

	tests := []struct {
		name      string
		amount    string
		payer     string
		reference string
		same      bool
	}{
		{name: "trailing zeros collapse", amount: "10.00", payer: "256700000001", reference: "ORD-1", same: true},
		{name: "payer whitespace ignored", amount: "10", payer: " 256700000001 ", reference: "ORD-1", same: true},
		{name: "different amount", amount: "10.01", payer: "256700000001", reference: "ORD-1", same: false},
		{name: "different payer", amount: "10", payer: "256700000002", reference: "ORD-1", same: false},
		{name: "different reference", amount: "10", payer: "256700000001", reference: "ORD-2", same: false},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			key := checksum.IdempotencyKey(decimal.RequireFromString(testCase.amount), testCase.payer, testCase.reference)
			if testCase.same {
				assert.Equal(t, base, key)
			} else {
				assert.NotEqual(t, base, key)
			}
		})
	}
}
