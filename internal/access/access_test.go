package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jobportal-backend/internal/shared/apperr"
)

var (
	seeker      = &Actor{ID: "u-seeker", Role: RoleJobseeker}
	otherSeeker = &Actor{ID: "u-other", Role: RoleJobseeker}
	company     = &Actor{ID: "u-company", Role: RoleCompany}
	otherCo     = &Actor{ID: "u-other-co", Role: RoleCompany}
	admin       = &Actor{ID: "u-admin", Role: RoleAdmin}
)

func TestApplicationViewMatrix(t *testing.T) {
	app := Application("app-1", seeker.ID, company.ID)

	tests := []struct {
		name  string
		actor *Actor
		want  bool
	}{
		{name: "admin", actor: admin, want: true},
		{name: "applicant", actor: seeker, want: true},
		{name: "other jobseeker", actor: otherSeeker, want: false},
		{name: "owning company", actor: company, want: true},
		{name: "other company", actor: otherCo, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, action := range []Action{ActionView, ActionUpdate} {
				assert.Equal(t, tt.want, CanAccess(tt.actor, action, app).Allowed, "action %s", action)
			}
		})
	}
}

func TestApplicationMissingOwnershipDenied(t *testing.T) {
	app := Application("app-1", "", "")
	assert.False(t, CanAccess(&Actor{ID: "x", Role: RoleJobseeker}, ActionView, app).Allowed)
	assert.False(t, CanAccess(&Actor{ID: "x", Role: RoleCompany}, ActionView, app).Allowed)
}

func TestApplicationCreateJobseekerOnly(t *testing.T) {
	res := Resource{Kind: KindApplication}
	assert.True(t, CanAccess(seeker, ActionCreate, res).Allowed)
	assert.False(t, CanAccess(company, ActionCreate, res).Allowed)
}

func TestCompanyStatusAdminOnly(t *testing.T) {
	res := Company("c-1", company.ID)
	assert.True(t, CanAccess(admin, ActionUpdateStatus, res).Allowed)
	assert.False(t, CanAccess(company, ActionUpdateStatus, res).Allowed)
	assert.False(t, CanAccess(seeker, ActionUpdateStatus, res).Allowed)
	assert.True(t, CanAccess(company, ActionUpdate, res).Allowed)
	assert.False(t, CanAccess(otherCo, ActionUpdate, res).Allowed)
}

func TestJobRules(t *testing.T) {
	job := Job("j-1", company.ID)
	assert.True(t, CanAccess(seeker, ActionView, job).Allowed)
	assert.True(t, CanAccess(company, ActionUpdate, job).Allowed)
	assert.False(t, CanAccess(otherCo, ActionUpdate, job).Allowed)
	assert.False(t, CanAccess(seeker, ActionCreate, job).Allowed)
	assert.True(t, CanAccess(company, ActionCreate, job).Allowed)
}

func TestUnknownCombinationDenied(t *testing.T) {
	assert.False(t, CanAccess(seeker, Action("delete"), Application("a", seeker.ID, company.ID)).Allowed)
	assert.False(t, CanAccess(seeker, ActionView, Resource{Kind: "invoice"}).Allowed)
}

func TestCheckDistinguishesUnauthenticated(t *testing.T) {
	app := Application("app-1", seeker.ID, company.ID)

	err := Check(nil, ActionView, app)
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))

	err = Check(otherSeeker, ActionView, app)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	assert.NoError(t, Check(seeker, ActionView, app))
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole(" Company ")
	assert.True(t, ok)
	assert.Equal(t, RoleCompany, r)
	_, ok = ParseRole("root")
	assert.False(t, ok)
}
