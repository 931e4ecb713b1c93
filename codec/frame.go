// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/ava-labs/creditvm/consts"
)

// FramePrefixLen is the size of the big-endian length written ahead of a
// framed payload.
const FramePrefixLen = consts.Uint32Len

// EncodeDirect serializes [value] into a payload that is used as the slot
// itself. The slot for a direct record is allocated to exactly len(payload).
func EncodeDirect[T any](value T) ([]byte, error) {
	return Serialize(value)
}

// DecodeDirect decodes a direct-mode slot. The encoded value must account
// for every byte of [slot].
func DecodeDirect[T any](slot []byte) (*T, error) {
	v, err := Deserialize[T](slot)
	if err != nil {
		return nil, err
	}
	b, err := Serialize(*v)
	if err != nil {
		return nil, err
	}
	if len(b) != len(slot) {
		return nil, fmt.Errorf("%w: decoded %d of %d bytes", ErrCorruptRecord, len(b), len(slot))
	}
	return v, nil
}

// FramedSize is the number of slot bytes a framed payload of [payloadLen]
// occupies.
func FramedSize(payloadLen int) int {
	return FramePrefixLen + payloadLen
}

// WriteFramed writes the length of [payload] followed by [payload] to the
// start of [slot]. Bytes after the payload are left as they were.
func WriteFramed(slot []byte, payload []byte) error {
	if FramedSize(len(payload)) > len(slot) {
		return fmt.Errorf("%w: need %d bytes, slot has %d", ErrCapacityExceeded, FramedSize(len(payload)), len(slot))
	}
	binary.BigEndian.PutUint32(slot, uint32(len(payload)))
	copy(slot[FramePrefixLen:], payload)
	return nil
}

// ReadFramed returns the payload framed at the start of [slot]. The returned
// slice aliases [slot].
func ReadFramed(slot []byte) ([]byte, error) {
	if len(slot) < FramePrefixLen {
		return nil, fmt.Errorf("%w: %w", ErrCorruptRecord, ErrInsufficientLength)
	}
	l := binary.BigEndian.Uint32(slot)
	if uint64(l) > uint64(len(slot)-FramePrefixLen) {
		return nil, fmt.Errorf("%w: frame length %d exceeds slot", ErrCorruptRecord, l)
	}
	return slot[FramePrefixLen : FramePrefixLen+int(l)], nil
}

// EncodeFramed serializes [value] and frames it into [slot].
func EncodeFramed[T any](slot []byte, value T) error {
	payload, err := Serialize(value)
	if err != nil {
		return err
	}
	return WriteFramed(slot, payload)
}

// DecodeFramed reads a framed payload from [slot] and decodes exactly that
// many bytes.
func DecodeFramed[T any](slot []byte) (*T, error) {
	payload, err := ReadFramed(slot)
	if err != nil {
		return nil, err
	}
	return DecodeDirect[T](payload)
}
