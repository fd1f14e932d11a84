package actor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		from    HandlerID
		payload []byte
	}{
		{name: "request with payload", kind: KindRequest, from: 1, payload: []byte(`{"a":1}`)},
		{name: "response", kind: KindResponse, from: 42, payload: []byte(`"ok"`)},
		{name: "connected no payload", kind: KindConnected, from: 7},
		{name: "disconnected no payload", kind: KindDisconnected, from: 7},
		{name: "large handler id", kind: KindRequest, from: 1<<40 + 3, payload: []byte(`0`)},
		{name: "zero handler id", kind: KindConnected, from: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := EncodeEnvelope(tt.kind, tt.from, tt.payload)
			env, err := DecodeEnvelope(raw)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, env.Kind)
			assert.Equal(t, tt.from, env.From)
			assert.Equal(t, string(tt.payload), string(env.Payload))
		})
	}
}

func TestDecodeEnvelopeErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{name: "empty", raw: nil},
		{name: "kind only", raw: []byte{byte(KindRequest)}},
		{name: "zero kind", raw: []byte{0x00, 0x01}},
		{name: "unknown kind", raw: []byte{0x09, 0x01}},
		{name: "unterminated varint", raw: []byte{byte(KindRequest), 0x80}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeEnvelope(tt.raw)
			assert.Error(t, err)
		})
	}
}

func TestReasonCodec(t *testing.T) {
	assert.Nil(t, encodeReason(nil))
	assert.NoError(t, decodeReason(nil))

	payload := encodeReason(errors.New("worker exploded"))
	err := decodeReason(payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "worker exploded")
}
