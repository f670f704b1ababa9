// internal/service/user.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/grundwerk/grundwerk/internal/auth"
	"github.com/grundwerk/grundwerk/internal/config"
	"github.com/grundwerk/grundwerk/internal/domain"
	"github.com/grundwerk/grundwerk/internal/email"
	"github.com/grundwerk/grundwerk/internal/model"
	"github.com/grundwerk/grundwerk/internal/repository"
)

type UserService struct {
	repo           repository.UserRepositoryIface
	orgRepo        *repository.OrganizationRepository
	passwordHasher *auth.PasswordHasher
	tokenManager   *auth.TokenManager
	emailService   *email.Service
	config         *config.Config
	validate       *validator.Validate
}

func NewUserService(
	repo repository.UserRepositoryIface,
	orgRepo *repository.OrganizationRepository,
	passwordHasher *auth.PasswordHasher,
	tokenManager *auth.TokenManager,
	emailService *email.Service,
	config *config.Config,
) *UserService {
	return &UserService{
		repo:           repo,
		orgRepo:        orgRepo,
		passwordHasher: passwordHasher,
		tokenManager:   tokenManager,
		emailService:   emailService,
		config:         config,
		validate:       validator.New(),
	}
}

type RegisterInput struct {
	Email            string `json:"email" validate:"required,email"`
	Name             string `json:"name" validate:"required,min=2"`
	Password         string `json:"password" validate:"required,min=8"`
	OrganizationName string `json:"organizationName" validate:"required,min=2"`
}

type RegisterOutput struct {
	User         *model.User         `json:"user"`
	Organization *model.Organization `json:"organization"`
	Token        string              `json:"token"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginOutput struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// Membership is the resolved caller identity for protected routes: the user
// plus their organization and role.
type Membership struct {
	User *model.User
	Org  *model.UserOrganization
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// slugify lowercases the name and collapses every non-alphanumeric run into a
// single hyphen, trimming leading and trailing hyphens.
func slugify(name string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// Register creates the user, their organization, and the OWNER membership in
// one transaction. The organization slug is derived from the name and made
// unique with a numeric suffix.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*RegisterOutput, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}

	emailAddr := strings.ToLower(strings.TrimSpace(input.Email))

	if _, err := s.repo.FindByEmail(ctx, emailAddr); err == nil {
		return nil, domain.ErrEmailAlreadyExists
	}

	slug, err := s.uniqueSlug(ctx, input.OrganizationName)
	if err != nil {
		return nil, err
	}

	passwordHash, err := s.passwordHasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		Email:        emailAddr,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: passwordHash,
	}
	org := &model.Organization{
		Name: strings.TrimSpace(input.OrganizationName),
		Slug: slug,
	}

	if err := s.repo.CreateWithOrganization(ctx, user, org, model.RoleOwner); err != nil {
		return nil, err
	}

	token, err := s.tokenManager.Generate(user.ID.String())
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}

	s.sendWelcomeEmail(user, org)

	return &RegisterOutput{User: user, Organization: org, Token: token}, nil
}

// uniqueSlug appends -2, -3, ... until the slug is free. An empty base (a
// name with no alphanumerics) falls back to "org".
func (s *UserService) uniqueSlug(ctx context.Context, orgName string) (string, error) {
	base := slugify(orgName)
	if base == "" {
		base = "org"
	}

	slug := base
	for n := 2; ; n++ {
		taken, err := s.orgRepo.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
}

func (s *UserService) sendWelcomeEmail(user *model.User, org *model.Organization) {
	err := s.emailService.SendEmail(email.EmailData{
		To:           user.Email,
		FromName:     "Grundwerk",
		Subject:      "Welcome to Grundwerk",
		TemplateName: "welcome",
		TemplateData: map[string]string{
			"Name":             user.DisplayName(),
			"OrganizationName": org.Name,
			"BaseURL":          s.config.BaseURL,
		},
	})
	if err != nil {
		// Registration already committed; a failed welcome mail is not fatal.
		slog.Error("sending welcome email", "error", err, "user_id", user.ID)
	}
}

// Login checks the credentials and issues a token. Unknown email and wrong
// password produce the same error.
func (s *UserService) Login(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}

	emailAddr := strings.ToLower(strings.TrimSpace(input.Email))

	user, err := s.repo.FindByEmail(ctx, emailAddr)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	ok, err := s.passwordHasher.Verify(input.Password, user.PasswordHash)
	if err != nil || !ok {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokenManager.Generate(user.ID.String())
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}

	return &LoginOutput{User: user, Token: token}, nil
}

// ResolveMembership turns an authenticated user ID into the caller's user
// record and organization membership.
func (s *UserService) ResolveMembership(ctx context.Context, userID string) (*Membership, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	membership, err := s.orgRepo.FirstMembership(ctx, id)
	if err != nil {
		return nil, err
	}

	return &Membership{User: user, Org: membership}, nil
}
