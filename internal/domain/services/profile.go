package services

import (
	"context"

	"workspacemanager/internal/domain/models"
)

// CopyProfileRequest is the request to duplicate a profile snapshot
type CopyProfileRequest struct {
	SourceID string `json:"-"`
	NewID    string `json:"new_id"`
}

// ProfileService defines the profile panel operations
type ProfileService interface {
	// ListProfiles returns the sorted profile ids with the selection marked
	ListProfiles(ctx context.Context) (*models.ProfileList, error)

	// GetProfile returns one snapshot; an empty id means the selected profile
	GetProfile(ctx context.Context, profileID string) (*models.Profile, error)

	// CreateProfile switches to a new profile id, starting from an empty exclude map
	CreateProfile(ctx context.Context, profileID string) (*models.Profile, error)

	// SwitchProfile selects profileID and loads its snapshot into the live exclude map.
	// Unknown ids start a new empty profile.
	SwitchProfile(ctx context.Context, profileID string) (*models.Profile, error)

	// CopyProfile saves the source snapshot under a new id without switching
	CopyProfile(ctx context.Context, req *CopyProfileRequest) (*models.Profile, error)

	// DeleteProfile removes a snapshot; the live exclude map is unchanged
	DeleteProfile(ctx context.Context, profileID string) error
}
