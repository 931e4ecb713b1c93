// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package program

import "errors"

var (
	ErrUnknownInstruction     = errors.New("unknown instruction")
	ErrInvalidInstructionData = errors.New("invalid instruction data")
	ErrNotEnoughAccounts      = errors.New("not enough accounts")
	ErrMissingSignature       = errors.New("missing signature")
	ErrUnauthorized           = errors.New("signer is not the settings authority")
	ErrAlreadyInitialized     = errors.New("already initialized")
	ErrNotInitialized         = errors.New("not initialized")
	ErrUnknownParticipant     = errors.New("unknown participant")
	ErrMintMismatch           = errors.New("mint does not match token reference")
)
