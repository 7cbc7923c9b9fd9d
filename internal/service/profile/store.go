// Package profile stores named snapshots of the exclude map and keeps the
// selected one mirroring live edits.
package profile

import (
	"context"
	"fmt"
	"log/slog"

	"workspacemanager/internal/domain/models"
	"workspacemanager/internal/domain/repositories"
	"workspacemanager/internal/service/visibility"
)

// Store implements the profile operations on top of the settings repository.
// Profiles live under workspace-manager.profiles and the pointer under
// workspace-manager.selected-profile.
type Store struct {
	repo      repositories.ConfigurationRepository
	excludes  *visibility.ExcludeStore
	txManager repositories.TransactionManager
	logger    *slog.Logger
}

// NewStore creates a profile store
func NewStore(
	repo repositories.ConfigurationRepository,
	excludes *visibility.ExcludeStore,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) *Store {
	return &Store{
		repo:      repo,
		excludes:  excludes,
		txManager: txManager,
		logger:    logger,
	}
}

// Selected returns the selected profile id, if any
func (s *Store) Selected(ctx context.Context) (string, bool, error) {
	var selected string
	found, err := s.repo.Get(ctx, models.ManagerSection, models.SelectedKey, &selected)
	if err != nil {
		return "", false, fmt.Errorf("get selected profile: %w", err)
	}
	if !found || selected == "" {
		return "", false, nil
	}
	return selected, true, nil
}

// Get returns the snapshot stored under profileID.
// An empty profileID means the selected profile.
func (s *Store) Get(ctx context.Context, profileID string) (models.ExcludeMap, bool, error) {
	if profileID == "" {
		selected, ok, err := s.Selected(ctx)
		if err != nil || !ok {
			return nil, false, err
		}
		profileID = selected
	}

	profiles, err := s.all(ctx)
	if err != nil {
		return nil, false, err
	}
	snapshot, ok := profiles[profileID]
	if !ok {
		return nil, false, nil
	}
	return snapshot.Clone(), true, nil
}

// Save upserts the snapshot for profileID
func (s *Store) Save(ctx context.Context, profileID string, excludes models.ExcludeMap) error {
	profiles, err := s.all(ctx)
	if err != nil {
		return err
	}
	profiles[profileID] = excludes.Clone()
	if err := s.repo.Update(ctx, models.ManagerSection, models.ProfilesKey, profiles, models.ScopeWorkspace); err != nil {
		return fmt.Errorf("save profile %s: %w", profileID, err)
	}
	return nil
}

// Delete removes the snapshot and reports whether it existed.
// The selection pointer is left alone even if it names profileID.
func (s *Store) Delete(ctx context.Context, profileID string) (bool, error) {
	profiles, err := s.all(ctx)
	if err != nil {
		return false, err
	}
	if _, ok := profiles[profileID]; !ok {
		return false, nil
	}
	delete(profiles, profileID)
	if err := s.repo.Update(ctx, models.ManagerSection, models.ProfilesKey, profiles, models.ScopeWorkspace); err != nil {
		return false, fmt.Errorf("delete profile %s: %w", profileID, err)
	}
	return true, nil
}

// ClearSelection removes the selection pointer. A user-scope pointer would
// show through once the workspace key is gone, so it is removed as well.
func (s *Store) ClearSelection(ctx context.Context) error {
	if err := s.repo.Update(ctx, models.ManagerSection, models.SelectedKey, nil, models.ScopeWorkspace); err != nil {
		return fmt.Errorf("clear selected profile: %w", err)
	}

	_, stillSelected, err := s.Selected(ctx)
	if err != nil {
		return err
	}
	if !stillSelected {
		return nil
	}
	if err := s.repo.Update(ctx, models.ManagerSection, models.SelectedKey, nil, models.ScopeUser); err != nil {
		return fmt.Errorf("clear user selected profile: %w", err)
	}
	return nil
}

// SwitchTo selects profileID and loads it into the live exclude map.
// An unknown id starts a new empty profile and clears the live map.
// Pointer and exclude map are written in one transaction.
// Returns the new live map and whether the profile was created.
func (s *Store) SwitchTo(ctx context.Context, profileID string) (models.ExcludeMap, bool, error) {
	var live models.ExcludeMap
	var created bool

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		snapshot, exists, err := s.Get(txCtx, profileID)
		if err != nil {
			return err
		}

		if err := s.repo.Update(txCtx, models.ManagerSection, models.SelectedKey, profileID, models.ScopeWorkspace); err != nil {
			return fmt.Errorf("select profile %s: %w", profileID, err)
		}

		if exists {
			live = snapshot
		} else {
			live = models.ExcludeMap{}
			created = true
			if err := s.Save(txCtx, profileID, live); err != nil {
				return err
			}
		}
		return s.excludes.Replace(txCtx, live)
	})
	if err != nil {
		return nil, false, err
	}

	s.logger.Info("profile switched",
		"profile_id", profileID,
		"created", created,
		"entries", len(live),
	)
	return live, created, nil
}

// SyncSelected mirrors excludes into the selected profile, if one is selected
func (s *Store) SyncSelected(ctx context.Context, excludes models.ExcludeMap) error {
	selected, ok, err := s.Selected(ctx)
	if err != nil || !ok {
		return err
	}
	return s.Save(ctx, selected, excludes)
}

// List returns the profile ids in sorted order with the selection marked
func (s *Store) List(ctx context.Context) (*models.ProfileList, error) {
	profiles, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	selected, ok, err := s.Selected(ctx)
	if err != nil {
		return nil, err
	}

	ids := profiles.IDs()
	list := &models.ProfileList{Profiles: make([]models.ProfileSummary, 0, len(ids))}
	for _, id := range ids {
		list.Profiles = append(list.Profiles, models.ProfileSummary{
			ID:       id,
			Selected: ok && id == selected,
		})
	}
	if ok {
		list.Selected = &selected
	}
	return list, nil
}

func (s *Store) all(ctx context.Context) (models.Profiles, error) {
	profiles := models.Profiles{}
	if _, err := s.repo.Get(ctx, models.ManagerSection, models.ProfilesKey, &profiles); err != nil {
		return nil, fmt.Errorf("get profiles: %w", err)
	}
	if profiles == nil {
		profiles = models.Profiles{}
	}
	return profiles, nil
}
