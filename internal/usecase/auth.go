package usecase

import (
	"context"
	"errors"
	"strings"

	domainErrors "github.com/bloodbridge/procurement/internal/domain/errors"
	"github.com/bloodbridge/procurement/internal/domain/model"
	"github.com/bloodbridge/procurement/internal/domain/repository"
	pkgAuth "github.com/bloodbridge/procurement/internal/pkg/auth"
)

// AdminCredentials holds the externally configured super admin identity.
// The password hash is bcrypt and never compiled into the binary.
type AdminCredentials struct {
	Login        string
	PasswordHash string
}

// AuthUseCase handles account lifecycle and principal resolution.
type AuthUseCase struct {
	users  repository.UserRepository
	hasher pkgAuth.PasswordHasher
	tokens pkgAuth.Strategy
	admin  AdminCredentials
}

// NewAuthUseCase constructs AuthUseCase.
func NewAuthUseCase(users repository.UserRepository, hasher pkgAuth.PasswordHasher, strategy pkgAuth.Strategy, admin AdminCredentials) *AuthUseCase {
	return &AuthUseCase{users: users, hasher: hasher, tokens: strategy, admin: admin}
}

// Register creates a new account and returns an auth token. Tenant admin
// roles must name the organization or hospital they administer.
func (u *AuthUseCase) Register(ctx context.Context, login, password string, role model.Role, scopeID string) (*model.User, string, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	switch role {
	case "":
		role = model.RoleUser
	case model.RoleUser:
	case model.RoleOrgAdmin, model.RoleHospitalAdmin:
		if strings.TrimSpace(scopeID) == "" {
			return nil, "", &domainErrors.ValidationError{Fields: []domainErrors.FieldError{
				{Field: "scope_id", Message: "is required for admin roles"},
			}}
		}
	default:
		return nil, "", &domainErrors.ValidationError{Fields: []domainErrors.FieldError{
			{Field: "role", Message: "must be user, org_admin or hospital_admin"},
		}}
	}

	hash, err := u.hasher.Hash(password)
	if err != nil {
		return nil, "", err
	}

	usr, err := u.users.Create(ctx, login, hash, role, scopeID)
	if err != nil {
		return nil, "", err
	}

	token, err := u.tokens.IssueToken(usr.Principal())
	if err != nil {
		return nil, "", err
	}

	return usr, token, nil
}

// Authenticate validates credentials and returns an auth token. The
// configured super admin login is resolved before the accounts table.
func (u *AuthUseCase) Authenticate(ctx context.Context, login, password string) (model.Principal, string, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return model.Principal{}, "", domainErrors.ErrInvalidCredentials
	}

	if u.admin.Login != "" && login == u.admin.Login {
		if err := u.hasher.Compare(u.admin.PasswordHash, password); err != nil {
			return model.Principal{}, "", domainErrors.ErrInvalidCredentials
		}
		principal := model.Principal{Kind: model.KindSuperAdmin}
		token, err := u.tokens.IssueToken(principal)
		if err != nil {
			return model.Principal{}, "", err
		}
		return principal, token, nil
	}

	usr, err := u.users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return model.Principal{}, "", domainErrors.ErrInvalidCredentials
		}
		return model.Principal{}, "", err
	}

	if err := u.hasher.Compare(usr.PasswordHash, password); err != nil {
		return model.Principal{}, "", domainErrors.ErrInvalidCredentials
	}

	principal := usr.Principal()
	token, err := u.tokens.IssueToken(principal)
	if err != nil {
		return model.Principal{}, "", err
	}

	return principal, token, nil
}

// ResolvePrincipal extracts the principal encoded in the token.
func (u *AuthUseCase) ResolvePrincipal(token string) (model.Principal, error) {
	if token == "" {
		return model.Principal{}, pkgAuth.ErrInvalidToken
	}
	return u.tokens.ParseToken(token)
}
