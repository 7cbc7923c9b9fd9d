package workspace

import (
	"context"
	"fmt"

	"workspacemanager/internal/domain"
	"workspacemanager/internal/domain/models"
	"workspacemanager/internal/domain/services"
	"workspacemanager/internal/events"
	"workspacemanager/internal/metrics"
)

var _ services.ProfileService = (*Manager)(nil)

// ListProfiles returns the profile panel content
func (m *Manager) ListProfiles(ctx context.Context) (*models.ProfileList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profiles.List(ctx)
}

// GetProfile returns one snapshot; an empty id means the selected profile
func (m *Manager) GetProfile(ctx context.Context, profileID string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getProfile(ctx, profileID)
}

func (m *Manager) getProfile(ctx context.Context, profileID string) (*models.Profile, error) {
	selected, hasSelected, err := m.profiles.Selected(ctx)
	if err != nil {
		return nil, err
	}
	if profileID == "" {
		if !hasSelected {
			return nil, &domain.NotFoundError{Message: "no profile selected"}
		}
		profileID = selected
	}

	snapshot, ok, err := m.profiles.Get(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NewNotFound("profile", profileID)
	}
	return &models.Profile{
		ID:       profileID,
		Excludes: snapshot,
		Selected: hasSelected && selected == profileID,
	}, nil
}

// CreateProfile switches to a profile id that does not exist yet
func (m *Manager) CreateProfile(ctx context.Context, profileID string) (*models.Profile, error) {
	if err := validateProfileID(profileID); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	_, exists, err := m.profiles.Get(ctx, profileID)
	if err != nil {
		metrics.RecordProfileOperation("create", err)
		return nil, err
	}
	if exists {
		err := domain.NewConflict("profile", profileID)
		metrics.RecordProfileOperation("create", err)
		return nil, err
	}

	profile, err := m.switchTo(ctx, profileID)
	metrics.RecordProfileOperation("create", err)
	return profile, err
}

// SwitchProfile selects profileID and loads its snapshot into the live map
func (m *Manager) SwitchProfile(ctx context.Context, profileID string) (*models.Profile, error) {
	if err := validateProfileID(profileID); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	profile, err := m.switchTo(ctx, profileID)
	metrics.RecordProfileOperation("switch", err)
	return profile, err
}

func (m *Manager) switchTo(ctx context.Context, profileID string) (*models.Profile, error) {
	live, _, err := m.profiles.SwitchTo(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("switch profile: %w", err)
	}

	m.apply(live)
	m.publish(events.Event{Type: events.EventProfiles, ProfileID: profileID})
	m.publish(events.Event{Type: events.EventRefresh})
	return &models.Profile{ID: profileID, Excludes: live.Clone(), Selected: true}, nil
}

// CopyProfile saves the source snapshot under a new id. The live exclude map
// and the selection are unchanged.
func (m *Manager) CopyProfile(ctx context.Context, req *services.CopyProfileRequest) (*models.Profile, error) {
	if err := validateProfileID(req.SourceID); err != nil {
		return nil, err
	}
	if err := validateProfileID(req.NewID); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	profile, err := m.copyProfile(ctx, req)
	metrics.RecordProfileOperation("copy", err)
	if err != nil {
		return nil, err
	}
	m.logger.Info("profile copied", "from", req.SourceID, "to", req.NewID)
	m.publish(events.Event{Type: events.EventProfiles, ProfileID: req.NewID})
	return profile, nil
}

func (m *Manager) copyProfile(ctx context.Context, req *services.CopyProfileRequest) (*models.Profile, error) {
	snapshot, ok, err := m.profiles.Get(ctx, req.SourceID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NewNotFound("profile", req.SourceID)
	}

	// The selected profile mirrors the live map; overwriting it would desync the two.
	_, exists, err := m.profiles.Get(ctx, req.NewID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.NewConflict("profile", req.NewID)
	}

	if err := m.profiles.Save(ctx, req.NewID, snapshot); err != nil {
		return nil, err
	}
	return &models.Profile{ID: req.NewID, Excludes: snapshot}, nil
}

// DeleteProfile removes a snapshot. Deleting the selected profile also clears
// the selection so later edits do not recreate it.
func (m *Manager) DeleteProfile(ctx context.Context, profileID string) error {
	if err := validateProfileID(profileID); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var wasSelected bool
	err := m.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		existed, err := m.profiles.Delete(txCtx, profileID)
		if err != nil {
			return err
		}
		if !existed {
			return domain.NewNotFound("profile", profileID)
		}

		selected, ok, err := m.profiles.Selected(txCtx)
		if err != nil {
			return err
		}
		if ok && selected == profileID {
			wasSelected = true
			return m.profiles.ClearSelection(txCtx)
		}
		return nil
	})
	metrics.RecordProfileOperation("delete", err)
	if err != nil {
		return err
	}

	m.logger.Info("profile deleted", "profile_id", profileID, "was_selected", wasSelected)
	m.publish(events.Event{Type: events.EventProfiles, ProfileID: profileID})
	return nil
}
