package usecase

//go:generate mockgen -source=user_usecase.go -destination=../adapter/http/handlers/mocks/mock_user_usecase.go -package=mocks

import (
	"context"
	"errors"
	"retail_backoffice/internal/domain/entities"
	"retail_backoffice/internal/usecase/interfaces"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidUserID      = errors.New("invalid user id")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidInput       = errors.New("invalid input")
)

// UserSearchResult carries the directory search outcome. Status is derived
// from the number of matches only.
type UserSearchResult struct {
	Status string
	Users  []entities.User
}

const (
	SearchStatusFound    = "found"
	SearchStatusMultiple = "multiple"
	SearchStatusNotFound = "not_found"
)

// IUserUseCase exposes the user directory.
//
//   - UpsertByEmail is the idempotent identify-or-create used by the agent:
//     a unique-email conflict is never an error, it returns the existing row.
//   - Create is the admin path and reports the conflict as ErrEmailAlreadyExists.
type IUserUseCase interface {
	Create(ctx context.Context, u entities.User) (entities.User, error)
	UpsertByEmail(ctx context.Context, name, email, phone string) (entities.UpsertStatus, entities.User, error)
	Search(ctx context.Context, criteria entities.UserSearch) (UserSearchResult, error)
	GetByID(ctx context.Context, id string) (entities.User, error)
	GetByEmail(ctx context.Context, email string) (entities.User, error)
	List(ctx context.Context) ([]entities.User, error)
	Update(ctx context.Context, u entities.User) (entities.User, error)
	Delete(ctx context.Context, id string) error
}

type UserUseCase struct {
	repo interfaces.IUserRepository
}

var _ IUserUseCase = (*UserUseCase)(nil)

func NewUserUseCase(repo interfaces.IUserRepository) *UserUseCase {
	return &UserUseCase{repo: repo}
}

func (u *UserUseCase) Create(ctx context.Context, user entities.User) (entities.User, error) {
	user, err := prepareNewUser(user)
	if err != nil {
		return entities.User{}, err
	}

	created, err := u.repo.Create(ctx, user)
	if errors.Is(err, interfaces.ErrDuplicateKey) {
		return entities.User{}, ErrEmailAlreadyExists
	}
	if err != nil {
		return entities.User{}, err
	}
	log.Printf("[user][usecase] created user_id=%s", created.ID)
	return created, nil
}

func (u *UserUseCase) UpsertByEmail(ctx context.Context, name, email, phone string) (entities.UpsertStatus, entities.User, error) {
	user, err := prepareNewUser(entities.User{Name: name, Email: email, Phone: phone})
	if err != nil {
		return "", entities.User{}, err
	}

	created, err := u.repo.Create(ctx, user)
	if err == nil {
		log.Printf("[user][usecase] upsert created user_id=%s", created.ID)
		return entities.UpsertStatusCreated, created, nil
	}
	if !errors.Is(err, interfaces.ErrDuplicateKey) {
		return "", entities.User{}, err
	}

	existing, err := u.repo.GetByEmail(ctx, user.Email)
	if err != nil {
		return "", entities.User{}, err
	}
	if existing.ID == "" {
		// The conflicting row vanished between the insert and the read.
		return "", entities.User{}, interfaces.ErrConcurrentUpdate
	}
	log.Printf("[user][usecase] upsert exists user_id=%s", existing.ID)
	return entities.UpsertStatusExists, existing, nil
}

func (u *UserUseCase) Search(ctx context.Context, criteria entities.UserSearch) (UserSearchResult, error) {
	criteria = criteria.Normalize()
	if criteria.IsEmpty() {
		return UserSearchResult{Status: SearchStatusNotFound, Users: []entities.User{}}, nil
	}

	users, err := u.repo.Search(ctx, criteria)
	if err != nil {
		log.Errorf("[user][usecase] search failed err=%v", err)
		return UserSearchResult{}, err
	}

	res := UserSearchResult{Users: users}
	switch len(users) {
	case 0:
		res.Status = SearchStatusNotFound
		res.Users = []entities.User{}
	case 1:
		res.Status = SearchStatusFound
	default:
		res.Status = SearchStatusMultiple
	}
	return res, nil
}

func (u *UserUseCase) GetByID(ctx context.Context, id string) (entities.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.User{}, ErrInvalidUserID
	}

	user, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.User{}, err
	}
	if user.ID == "" {
		return entities.User{}, ErrUserNotFound
	}
	return user, nil
}

func (u *UserUseCase) GetByEmail(ctx context.Context, email string) (entities.User, error) {
	email = entities.NormalizeEmail(email)
	if email == "" {
		return entities.User{}, ErrInvalidInput
	}

	user, err := u.repo.GetByEmail(ctx, email)
	if err != nil {
		return entities.User{}, err
	}
	if user.ID == "" {
		return entities.User{}, ErrUserNotFound
	}
	return user, nil
}

func (u *UserUseCase) List(ctx context.Context) ([]entities.User, error) {
	return u.repo.List(ctx)
}

// Update applies an admin edit or a profile enrichment. Empty fields keep
// their stored value.
func (u *UserUseCase) Update(ctx context.Context, patch entities.User) (entities.User, error) {
	current, err := u.GetByID(ctx, patch.ID)
	if err != nil {
		return entities.User{}, err
	}

	if name := strings.TrimSpace(patch.Name); name != "" {
		current.Name = name
	}
	if email := entities.NormalizeEmail(patch.Email); email != "" {
		current.Email = email
	}
	if phone := entities.NormalizePhone(patch.Phone); phone != "" {
		current.Phone = phone
	}
	if segment := strings.TrimSpace(patch.Segment); segment != "" {
		current.Segment = segment
	}

	updated, err := u.repo.Update(ctx, current)
	if errors.Is(err, interfaces.ErrDuplicateKey) {
		return entities.User{}, ErrEmailAlreadyExists
	}
	if err != nil {
		return entities.User{}, err
	}
	if updated.ID == "" {
		return entities.User{}, ErrUserNotFound
	}
	return updated, nil
}

func (u *UserUseCase) Delete(ctx context.Context, id string) error {
	if _, err := u.GetByID(ctx, id); err != nil {
		return err
	}
	if err := u.repo.Delete(ctx, strings.TrimSpace(id)); err != nil {
		return err
	}
	log.Printf("[user][usecase] deleted user_id=%s", id)
	return nil
}

func prepareNewUser(user entities.User) (entities.User, error) {
	user.Name = strings.TrimSpace(user.Name)
	user.Email = entities.NormalizeEmail(user.Email)
	user.Phone = entities.NormalizePhone(user.Phone)
	user.Segment = strings.TrimSpace(user.Segment)
	if user.Name == "" || user.Email == "" {
		return entities.User{}, ErrInvalidInput
	}
	if user.Segment == "" {
		user.Segment = entities.DefaultUserSegment
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	return user, nil
}
