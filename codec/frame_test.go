// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type sample struct {
	ID    uint16
	Value uint64
	Tags  []uint8
}

func TestSerializeRoundTrip(t *testing.T) {
	require := require.New(t)

	in := sample{ID: 7, Value: 1 << 40, Tags: []uint8{1, 2, 3}}
	b, err := Serialize(in)
	require.NoError(err)
	require.Len(b, 2+8+4+3)

	out, err := Deserialize[sample](b)
	require.NoError(err)
	require.Equal(in, *out)
}

func TestDeserializeTruncated(t *testing.T) {
	require := require.New(t)

	b, err := Serialize(sample{ID: 1, Tags: []uint8{1, 2, 3}})
	require.NoError(err)

	_, err = Deserialize[sample](b[:len(b)-2])
	require.ErrorIs(err, ErrCorruptRecord)
}

func TestDecodeDirect(t *testing.T) {
	require := require.New(t)

	in := sample{ID: 3, Value: 9}
	b, err := EncodeDirect(in)
	require.NoError(err)

	out, err := DecodeDirect[sample](b)
	require.NoError(err)
	require.Equal(in.ID, out.ID)
	require.Equal(in.Value, out.Value)

	// A direct slot must be filled by the value.
	_, err = DecodeDirect[sample](append(b, 0xFF))
	require.ErrorIs(err, ErrCorruptRecord)
}

func TestWriteReadFramed(t *testing.T) {
	require := require.New(t)

	slot := make([]byte, 16)
	for i := range slot {
		slot[i] = 0xAB
	}
	payload := []byte{1, 2, 3}
	require.NoError(WriteFramed(slot, payload))
	require.Equal([]byte{0, 0, 0, 3, 1, 2, 3}, slot[:7])

	// Remainder of the slot is untouched.
	for _, b := range slot[7:] {
		require.Equal(byte(0xAB), b)
	}

	read, err := ReadFramed(slot)
	require.NoError(err)
	require.Equal(payload, read)
}

func TestShrinkingFrameIgnoresTrailingBytes(t *testing.T) {
	require := require.New(t)

	slot := make([]byte, 64)
	require.NoError(EncodeFramed(slot, sample{ID: 1, Tags: []uint8{9, 9, 9, 9, 9, 9}}))
	require.NoError(EncodeFramed(slot, sample{ID: 2}))

	out, err := DecodeFramed[sample](slot)
	require.NoError(err)
	require.Equal(uint16(2), out.ID)
	require.Empty(out.Tags)
}

func TestWriteFramedCapacity(t *testing.T) {
	tests := []struct {
		name       string
		slotLen    int
		payloadLen int
		err        error
	}{
		{name: "exact fit", slotLen: 10, payloadLen: 6},
		{name: "empty payload", slotLen: 4, payloadLen: 0},
		{name: "one byte over", slotLen: 10, payloadLen: 7, err: ErrCapacityExceeded},
		{name: "no room for prefix", slotLen: 3, payloadLen: 0, err: ErrCapacityExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := WriteFramed(make([]byte, tt.slotLen), make([]byte, tt.payloadLen))
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestReadFramedCorrupt(t *testing.T) {
	tests := []struct {
		name string
		slot []byte
	}{
		{name: "short slot", slot: []byte{0, 0, 1}},
		{name: "length beyond slot", slot: []byte{0, 0, 0, 5, 1, 2, 3, 4}},
		{name: "max length", slot: []byte{0xFF, 0xFF, 0xFF, 0xFF, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFramed(tt.slot)
			require.ErrorIs(t, err, ErrCorruptRecord)
		})
	}
}

func TestDecodeFramedCorruptPayload(t *testing.T) {
	require := require.New(t)

	slot := make([]byte, 32)
	require.NoError(WriteFramed(slot, []byte{1}))
	_, err := DecodeFramed[sample](slot)
	require.ErrorIs(err, ErrCorruptRecord)
}
