// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"fmt"

	"github.com/near/borsh-go"
)

// Serialize encodes [value] with borsh.
func Serialize[T any](value T) ([]byte, error) {
	b, err := borsh.Serialize(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}
	return b, nil
}

// Deserialize decodes a borsh-encoded [T] from [data].
func Deserialize[T any](data []byte) (*T, error) {
	result := new(T)
	if err := deserialize(result, data); err != nil {
		return nil, err
	}
	// Short reads are not always reported by the decoder.
	if n, err := encodedLen(*result); err != nil || n > len(data) {
		return nil, fmt.Errorf("%w: %w", ErrCorruptRecord, ErrInsufficientLength)
	}
	return result, nil
}

func encodedLen[T any](value T) (int, error) {
	b, err := borsh.Serialize(value)
	return len(b), err
}

// deserialize converts decoder panics on malformed input into
// [ErrCorruptRecord].
func deserialize(out any, data []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrCorruptRecord, r)
		}
	}()
	if err := borsh.Deserialize(out, data); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}
	return nil
}
