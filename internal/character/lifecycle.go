package character

import (
	"context"
	"fmt"
	"time"

	"github.com/ovaphlow/pitchfork/service-hive-go/internal/fault"
	"github.com/ovaphlow/pitchfork/service-hive-go/internal/sqf"
)

// SeedInventory pushes the starting gear computed by the game onto a freshly
// created character.
func (s *Service) SeedInventory(ctx context.Context, characterID int64, inventory, backpack sqf.Value) error {
	if err := s.repo.SeedInventory(ctx, characterID, sqf.Encode(inventory), sqf.Encode(backpack)); err != nil {
		return fmt.Errorf("seed inventory of %d: %w", characterID, err)
	}
	return nil
}

// MarkDead kills an alive character and backdates LastLogin by the survival
// time the game reports, so Datestamp..LastLogin spans the life lived.
// Killing a dead character matches nothing and succeeds.
func (s *Service) MarkDead(ctx context.Context, characterID int64, survivalMinutes int) error {
	lastLogin := s.clock.Now().Add(-time.Duration(survivalMinutes) * time.Minute)
	n, err := s.repo.Kill(ctx, characterID, lastLogin)
	if err != nil {
		return fault.Wrap("kill character", err)
	}
	if n > 0 {
		s.logger.Infow("character died", "character_id", characterID, "survival_minutes", survivalMinutes)
	}
	return nil
}

// RecordLogin appends a login audit event.
func (s *Service) RecordLogin(ctx context.Context, identity string, characterID int64, action int) error {
	if err := s.repo.RecordLogin(ctx, identity, characterID, action, s.clock.Now()); err != nil {
		return fmt.Errorf("record login of %s: %w", identity, err)
	}
	return nil
}
