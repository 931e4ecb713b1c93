// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package program

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/ava-labs/creditvm/accrual"
	"github.com/ava-labs/creditvm/host"
	"github.com/ava-labs/creditvm/ledger"
	"github.com/ava-labs/creditvm/pda"
	"github.com/ava-labs/creditvm/settings"
	"github.com/ava-labs/creditvm/storage"
	"github.com/ava-labs/creditvm/utils"
)

func (p *Program) init(ctx context.Context, hctx *host.Context, accounts []*solana.AccountMeta, args *InitArgs) error {
	var (
		payer         = accounts[0].PublicKey
		settingsAddr  = accounts[1].PublicKey
		tokenAddr     = accounts[2].PublicKey
		mintAuthority = accounts[3].PublicKey
	)
	if err := requireSigner(hctx, payer); err != nil {
		return err
	}
	if _, err := pda.Verify(p.id, pda.Settings, solana.PublicKey{}, settingsAddr); err != nil {
		return err
	}
	if _, err := pda.Verify(p.id, pda.TokenReference, solana.PublicKey{}, tokenAddr); err != nil {
		return err
	}
	if _, err := pda.Verify(p.id, pda.MintAuthority, solana.PublicKey{}, mintAuthority); err != nil {
		return err
	}
	for _, addr := range []solana.PublicKey{settingsAddr, tokenAddr} {
		initialized, err := storage.HasData(ctx, hctx.Accounts, addr)
		if err != nil {
			return err
		}
		if initialized {
			return fmt.Errorf("%w: %s holds data", ErrAlreadyInitialized, addr)
		}
	}

	table, err := settings.New(payer, args.Entries)
	if err != nil {
		return err
	}
	if err := storage.CreateSettings(ctx, hctx.Accounts, p.id, payer, settingsAddr, table); err != nil {
		return err
	}
	if err := storage.CreateTokenReference(ctx, hctx.Accounts, p.id, payer, tokenAddr, args.Token); err != nil {
		return err
	}
	if err := hctx.Accounts.CreateAccount(ctx, payer, mintAuthority, 0, p.id); err != nil {
		return err
	}
	p.log.Info("ledger initialized",
		zap.Stringer("authority", payer),
		zap.Int("entries", table.Len()),
		zap.Stringer("token", args.Token),
		zap.Stringer("mintAuthority", mintAuthority),
	)
	return nil
}

// loadSettings verifies [addr] and returns the table stored there.
func (p *Program) loadSettings(ctx context.Context, hctx *host.Context, addr solana.PublicKey) (*settings.Table, error) {
	if _, err := pda.Verify(p.id, pda.Settings, solana.PublicKey{}, addr); err != nil {
		return nil, err
	}
	table, err := storage.GetSettings(ctx, hctx.Accounts, p.id, addr)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: no settings at %s", ErrNotInitialized, addr)
	}
	return table, err
}

// authorize checks that [signer] signed and administers [table].
func authorize(hctx *host.Context, table *settings.Table, signer solana.PublicKey) error {
	if err := requireSigner(hctx, signer); err != nil {
		return err
	}
	if !table.Authority().Equals(signer) {
		return fmt.Errorf("%w: %s", ErrUnauthorized, signer)
	}
	return nil
}

func (p *Program) addCredit(ctx context.Context, hctx *host.Context, accounts []*solana.AccountMeta, args *AddCreditArgs) error {
	var (
		payer        = accounts[0].PublicKey
		authority    = accounts[1].PublicKey
		settingsAddr = accounts[2].PublicKey
		recordAddr   = accounts[3].PublicKey
	)
	if err := requireSigner(hctx, payer); err != nil {
		return err
	}
	table, err := p.loadSettings(ctx, hctx, settingsAddr)
	if err != nil {
		return err
	}
	if err := authorize(hctx, table, authority); err != nil {
		return err
	}
	if _, err := pda.Verify(p.id, pda.Participant, args.Identity, recordAddr); err != nil {
		return err
	}

	day := utils.DayOf(hctx.Now)
	exists, err := storage.HasData(ctx, hctx.Accounts, recordAddr)
	if err != nil {
		return err
	}
	if !exists {
		record := ledger.NewRecord(args.CampaignID, args.Delta, args.RewardSince, day)
		if err := storage.CreateParticipant(ctx, hctx.Accounts, p.id, payer, recordAddr, record); err != nil {
			return err
		}
		p.metrics.participantsCreated.Inc()
		p.log.Debug("participant created",
			zap.Stringer("identity", args.Identity),
			zap.Uint16("campaign", record.CampaignID),
			zap.Uint32("credit", record.Credit),
			zap.Uint8("level", record.Level()),
			zap.Uint32("day", day),
		)
		return nil
	}

	record, err := storage.GetParticipant(ctx, hctx.Accounts, p.id, recordAddr)
	if err != nil {
		return err
	}
	changed, err := record.ApplyCredit(args.CampaignID, args.Delta, day)
	if err != nil {
		return err
	}
	if err := storage.PutParticipant(ctx, hctx.Accounts, p.id, recordAddr, record); err != nil {
		return err
	}
	if changed {
		p.metrics.levelChanges.Inc()
	}
	p.log.Debug("credit updated",
		zap.Stringer("identity", args.Identity),
		zap.Int32("delta", args.Delta),
		zap.Uint32("credit", record.Credit),
		zap.Uint8("level", record.Level()),
		zap.Bool("levelChanged", changed),
	)
	return nil
}

func (p *Program) setTokenReference(ctx context.Context, hctx *host.Context, accounts []*solana.AccountMeta, args *SetTokenReferenceArgs) error {
	var (
		authority    = accounts[0].PublicKey
		settingsAddr = accounts[1].PublicKey
		tokenAddr    = accounts[2].PublicKey
	)
	table, err := p.loadSettings(ctx, hctx, settingsAddr)
	if err != nil {
		return err
	}
	if err := authorize(hctx, table, authority); err != nil {
		return err
	}
	if _, err := pda.Verify(p.id, pda.TokenReference, solana.PublicKey{}, tokenAddr); err != nil {
		return err
	}
	if err := storage.PutTokenReference(ctx, hctx.Accounts, p.id, tokenAddr, args.Token); err != nil {
		return err
	}
	p.log.Info("token reference updated", zap.Stringer("token", args.Token))
	return nil
}

func (p *Program) claim(ctx context.Context, hctx *host.Context, accounts []*solana.AccountMeta) error {
	var (
		participant   = accounts[0].PublicKey
		mintAuthority = accounts[1].PublicKey
		recordAddr    = accounts[2].PublicKey
		receiving     = accounts[3].PublicKey
		tokenAddr     = accounts[4].PublicKey
		mint          = accounts[5].PublicKey
		settingsAddr  = accounts[6].PublicKey
	)
	if err := requireSigner(hctx, participant); err != nil {
		return err
	}
	if _, err := pda.Verify(p.id, pda.TokenReference, solana.PublicKey{}, tokenAddr); err != nil {
		return err
	}
	if _, err := pda.Verify(p.id, pda.Participant, participant, recordAddr); err != nil {
		return err
	}
	table, err := p.loadSettings(ctx, hctx, settingsAddr)
	if err != nil {
		return err
	}
	bump, err := pda.Verify(p.id, pda.MintAuthority, solana.PublicKey{}, mintAuthority)
	if err != nil {
		return err
	}

	token, err := storage.GetTokenReference(ctx, hctx.Accounts, p.id, tokenAddr)
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("%w: no token reference at %s", ErrNotInitialized, tokenAddr)
	}
	if err != nil {
		return err
	}
	if !token.Equals(mint) {
		return fmt.Errorf("%w: expected %s, got %s", ErrMintMismatch, token, mint)
	}
	record, err := storage.GetParticipant(ctx, hctx.Accounts, p.id, recordAddr)
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrUnknownParticipant, participant)
	}
	if err != nil {
		return err
	}
	expected, err := pda.AssociatedAccount(participant, mint)
	if err != nil {
		return err
	}
	if !expected.Equals(receiving) {
		return fmt.Errorf("%w: receiving account expected %s, got %s", pda.ErrAddressMismatch, expected, receiving)
	}
	if _, err := p.tokens.CreateAssociatedAccount(ctx, hctx, participant, participant, mint); err != nil {
		return err
	}

	asOfDay := utils.DayOf(hctx.Now)
	reward := accrual.Earnings(table, record, asOfDay)
	if reward > 0 {
		seeds := pda.SignerSeeds(pda.MintAuthority, solana.PublicKey{}, bump)
		if err := p.tokens.MintTo(ctx, hctx, mint, receiving, mintAuthority, seeds, reward); err != nil {
			return err
		}
		p.metrics.rewardMinted.Add(float64(reward))
	} else {
		p.metrics.emptyClaims.Inc()
	}
	record.Settle(asOfDay)
	if err := storage.PutParticipant(ctx, hctx.Accounts, p.id, recordAddr, record); err != nil {
		return err
	}
	p.metrics.claims.Inc()
	p.log.Info("reward claimed",
		zap.Stringer("participant", participant),
		zap.Uint64("reward", reward),
		zap.Uint32("day", asOfDay),
	)
	return nil
}

func (p *Program) updateSettings(ctx context.Context, hctx *host.Context, accounts []*solana.AccountMeta, args *UpdateSettingsArgs) error {
	var (
		authority    = accounts[0].PublicKey
		settingsAddr = accounts[1].PublicKey
	)
	table, err := p.loadSettings(ctx, hctx, settingsAddr)
	if err != nil {
		return err
	}
	if err := authorize(hctx, table, authority); err != nil {
		return err
	}
	updated, err := settings.New(authority, args.Entries)
	if err != nil {
		return err
	}
	if err := storage.ReplaceSettings(ctx, hctx.Accounts, p.id, authority, settingsAddr, updated); err != nil {
		return err
	}
	p.log.Info("settings replaced",
		zap.Int("previous", table.Len()),
		zap.Int("entries", updated.Len()),
	)
	return nil
}
