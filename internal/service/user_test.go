package service

import (
	"context"
	"testing"

	"github.com/grundwerk/grundwerk/internal/domain"
	"github.com/grundwerk/grundwerk/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCreatesUserOrgAndOwnerMembership(t *testing.T) {
	db := newTestDB(t)
	out := registerOrg(t, db, "jane@acme.test", "Acme GmbH")

	assert.Equal(t, "jane@acme.test", out.User.Email)
	assert.NotEmpty(t, out.User.PasswordHash)
	assert.Equal(t, "acme-gmbh", out.Organization.Slug)
	assert.NotEmpty(t, out.Token)

	var membership model.UserOrganization
	require.NoError(t, db.Where("user_id = ?", out.User.ID).First(&membership).Error)
	assert.Equal(t, model.RoleOwner, membership.Role)
	assert.Equal(t, out.Organization.ID, membership.OrganizationID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	registerOrg(t, db, "jane@acme.test", "Acme")

	_, err := newTestUserService(t, db).Register(context.Background(), RegisterInput{
		Email:            "Jane@Acme.test",
		Name:             "Second Jane",
		Password:         "another-password",
		OrganizationName: "Other Org",
	})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestRegisterSlugUniquification(t *testing.T) {
	db := newTestDB(t)

	first := registerOrg(t, db, "a@x.test", "Müller & Söhne AG")
	second := registerOrg(t, db, "b@x.test", "Müller & Söhne AG")
	third := registerOrg(t, db, "c@x.test", "Müller & Söhne AG")

	assert.NotEqual(t, first.Organization.Slug, second.Organization.Slug)
	assert.Equal(t, first.Organization.Slug+"-2", second.Organization.Slug)
	assert.Equal(t, first.Organization.Slug+"-3", third.Organization.Slug)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "acme-gmbh", slugify("Acme GmbH"))
	assert.Equal(t, "acme-co", slugify("  Acme & Co.  "))
	assert.Equal(t, "", slugify("!!!"))
}

func TestLogin(t *testing.T) {
	db := newTestDB(t)
	registerOrg(t, db, "jane@acme.test", "Acme")
	svc := newTestUserService(t, db)

	out, err := svc.Login(context.Background(), LoginInput{
		Email:    "jane@acme.test",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Token)

	_, err = svc.Login(context.Background(), LoginInput{
		Email:    "jane@acme.test",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), LoginInput{
		Email:    "nobody@acme.test",
		Password: "correct-horse-battery",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestResolveMembership(t *testing.T) {
	db := newTestDB(t)
	out := registerOrg(t, db, "jane@acme.test", "Acme")
	svc := newTestUserService(t, db)

	m, err := svc.ResolveMembership(context.Background(), out.User.ID.String())
	require.NoError(t, err)
	assert.Equal(t, out.Organization.ID, m.Org.OrganizationID)
	assert.Equal(t, model.RoleOwner, m.Org.Role)
}
