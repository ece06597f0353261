package service

import (
	"context"
	"sort"
	"strings"

	"github.com/kinkando/photo-feed-service/model"
	"github.com/kinkando/photo-feed-service/pkg/logger"
	"github.com/kinkando/photo-feed-service/pkg/profile"
	"github.com/kinkando/photo-feed-service/repository"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type Search interface {
	SearchUsers(ctx context.Context, term string) ([]model.UserSummary, error)
}

type search struct {
	userRepository repository.User
	limit          int
}

func NewSearchService(userRepository repository.User, limit int) Search {
	return &search{
		userRepository: userRepository,
		limit:          limit,
	}
}

// SearchUsers scans every user and keeps those whose display name contains
// term, ignoring case. The collection has no text index, which bounds this to
// small user bases.
func (s *search) SearchUsers(ctx context.Context, term string) ([]model.UserSummary, error) {
	if _, err := profile.UseProfile(ctx); err != nil {
		return nil, model.NewUnauthenticatedError("No authenticated user", "Please sign in to search users")
	}

	// Blank input short-circuits; otherwise the term is matched as typed,
	// surrounding spaces included.
	if strings.TrimSpace(term) == "" {
		return []model.UserSummary{}, nil
	}

	users, err := s.userRepository.ListUsers(ctx)
	if err != nil {
		logger.Context(ctx).Error(err)
		return nil, model.NewOperationError("search users", err)
	}

	needle := strings.ToLower(term)
	matches := make([]model.UserSummary, 0)
	for _, user := range users {
		if user.DisplayName == "" {
			continue
		}
		if strings.Contains(strings.ToLower(user.DisplayName), needle) {
			matches = append(matches, toUserSummary(user))
		}
	}

	// A Collator keeps internal buffers and must not be shared between
	// goroutines.
	collator := collate.New(language.Und)
	sort.SliceStable(matches, func(i, j int) bool {
		return collator.CompareString(matches[i].DisplayName, matches[j].DisplayName) < 0
	})

	if s.limit > 0 && len(matches) > s.limit {
		matches = matches[:s.limit]
	}
	return matches, nil
}

func toUserSummary(user model.User) model.UserSummary {
	return model.UserSummary{
		ID:              user.ID,
		DisplayName:     user.DisplayName,
		Email:           user.Email,
		ProfileImageURL: user.ProfileImageURL,
		UpdatedAt:       user.UpdatedAt,
	}
}
