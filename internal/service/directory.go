package service

import (
	"context"
	"fmt"
	"strings"

	"bloodlagbe_backend/internal/model"
	"bloodlagbe_backend/internal/repository"
)

// IdentityProvider exposes the read side of the identity boundary consumed
// by the directory: the public attributes of a principal.
type IdentityProvider interface {
	GetPublicUser(ctx context.Context, clerkID string) (*model.PublicUser, error)
}

// DirectoryService serves the read-only directory views: the public listing,
// the merged public profile and the caller's own profile.
type DirectoryService struct {
	profileRepo repository.ProfileRepository
	postRepo    repository.PostRepository
	identity    IdentityProvider
}

func NewDirectoryService(
	profileRepo repository.ProfileRepository,
	postRepo repository.PostRepository,
	identity IdentityProvider,
) *DirectoryService {
	return &DirectoryService{
		profileRepo: profileRepo,
		postRepo:    postRepo,
		identity:    identity,
	}
}

// ListProfiles returns the public projection of all profiles, optionally
// filtered by blood group. The filter is case-normalized; an unknown group
// simply matches nothing rather than erroring, since listing is a lookup,
// not a write.
func (s *DirectoryService) ListProfiles(ctx context.Context, groupFilter string) ([]model.ProfileSummary, error) {
	filter := strings.ToUpper(strings.TrimSpace(groupFilter))

	summaries, err := s.profileRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if summaries == nil {
		summaries = []model.ProfileSummary{}
	}

	return summaries, nil
}

// GetPublicProfile assembles the merged public view of a donor: the stored
// profile, the identity provider's public attributes and all of the donor's
// posts, newest first. The two sources are read without any transactional
// guarantee between them; the provider data reflects its state at call time.
func (s *DirectoryService) GetPublicProfile(ctx context.Context, clerkID string) (*model.PublicProfile, error) {
	profile, err := s.profileRepo.GetByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	user, err := s.identity.GetPublicUser(ctx, clerkID)
	if err != nil {
		return nil, fmt.Errorf("fetch identity attributes for %s: %w", clerkID, err)
	}

	posts, err := s.postRepo.ListByClerkID(ctx, clerkID)
	if err != nil {
		return nil, fmt.Errorf("fetch posts for %s: %w", clerkID, err)
	}
	if posts == nil {
		posts = []model.Post{}
	}

	return &model.PublicProfile{
		Profile:  *profile,
		HasImage: user.HasImage,
		ImageURL: user.ImageURL,
		// The provider only reports last activity; both fields carry it.
		LastSignInAt: user.LastActiveAt,
		LastActiveAt: user.LastActiveAt,
		Posts:        posts,
	}, nil
}

// GetOwnProfile returns the caller's full profile.
func (s *DirectoryService) GetOwnProfile(ctx context.Context, email string) (*model.Profile, error) {
	return s.profileRepo.GetByEmail(ctx, email)
}
