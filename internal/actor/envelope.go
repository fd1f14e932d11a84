package actor

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
)

// Kind is the envelope discriminant on the serialization boundary.
type Kind byte

const (
	// KindRequest carries an inbound message to the instance.
	KindRequest Kind = iota + 1
	// KindResponse carries an outbound message back to a bridge.
	KindResponse
	// KindConnected announces a bridge attaching.
	KindConnected
	// KindDisconnected announces a bridge detaching. Sent instance to
	// host it means the instance closed the bridge; the payload, when
	// present, is the JSON-encoded reason.
	KindDisconnected
)

// String returns the kind name for diagnostics.
func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindResponse:
		return "response"
	case KindConnected:
		return "connected"
	case KindDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Envelope is one decoded wire message: a kind discriminant, the bridge
// it concerns, and the serialized payload.
//
// Wire layout: one kind byte, the handler ID as a uvarint, then the
// payload bytes verbatim to the end of the message.
type Envelope struct {
	Kind    Kind
	From    HandlerID
	Payload []byte
}

// EncodeEnvelope serializes one envelope.
func EncodeEnvelope(kind Kind, from HandlerID, payload []byte) []byte {
	buf := make([]byte, 0, 1+binary.MaxVarintLen64+len(payload))
	buf = append(buf, byte(kind))
	buf = binary.AppendUvarint(buf, uint64(from))
	return append(buf, payload...)
}

// DecodeEnvelope parses one envelope. A failure here is fatal for the
// bridge the message belonged to.
func DecodeEnvelope(raw []byte) (Envelope, error) {
	if len(raw) < 2 {
		return Envelope{}, fmt.Errorf("decode envelope: truncated: %d bytes", len(raw))
	}
	kind := Kind(raw[0])
	if kind < KindRequest || kind > KindDisconnected {
		return Envelope{}, fmt.Errorf("decode envelope: unknown kind 0x%02x", raw[0])
	}
	from, n := binary.Uvarint(raw[1:])
	if n <= 0 {
		return Envelope{}, fmt.Errorf("decode envelope: malformed handler id")
	}
	return Envelope{Kind: kind, From: HandlerID(from), Payload: raw[1+n:]}, nil
}

// marshalPayload serializes a typed payload for the boundary crossing.
func marshalPayload[T any](v T) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal payload %T: %w", v, err)
	}
	return b, nil
}

// unmarshalPayload deserializes a typed payload.
func unmarshalPayload[T any](raw []byte) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("unmarshal payload %T: %w", v, err)
	}
	return v, nil
}

// encodeReason serializes a closure reason; nil means a clean close and
// encodes as an empty payload.
func encodeReason(err error) []byte {
	if err == nil {
		return nil
	}
	b, _ := json.Marshal(err.Error())
	return b
}

// decodeReason is the inverse of encodeReason.
func decodeReason(payload []byte) error {
	if len(payload) == 0 {
		return nil
	}
	var msg string
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("bridge closed by instance")
	}
	return fmt.Errorf("bridge closed by instance: %s", msg)
}
