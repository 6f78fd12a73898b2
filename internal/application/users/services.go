package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	domain "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/users"
	scans "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/scans"
)

// Service manages user accounts. Scans reference users by id, so an
// account has to exist before its first upload.
type Service struct {
	Repo domain.Repository
}

type RegisterCommand struct {
	ID    string
	Email string
	Name  string
}

func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (*domain.User, error) {
	if cmd.Email == "" || !strings.Contains(cmd.Email, "@") {
		return nil, fmt.Errorf("%w: valid email is required", scans.ErrInvalidInput)
	}
	id := cmd.ID
	if id == "" {
		id = uuid.New().String()
	}
	if exists, err := s.Repo.Exists(ctx, id); err != nil {
		return nil, err
	} else if exists {
		return nil, fmt.Errorf("%w: user %s already exists", scans.ErrInvalidInput, id)
	}

	return s.Repo.Create(ctx, &domain.User{
		ID:    id,
		Email: cmd.Email,
		Name:  cmd.Name,
	})
}

func (s *Service) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.Repo.Get(ctx, id)
}
