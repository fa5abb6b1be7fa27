// Package access decides whether an actor may perform an action on a resource.
// Decisions are pure: callers load the resource and its ownership facts first.
package access

import (
	"strings"

	"jobportal-backend/internal/shared/apperr"
)

type Role string

const (
	RoleJobseeker Role = "jobseeker"
	RoleCompany   Role = "company"
	RoleAdmin     Role = "admin"
)

// ParseRole normalizes a role string. Unknown roles are rejected.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleJobseeker:
		return RoleJobseeker, true
	case RoleCompany:
		return RoleCompany, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

// Actor is the authenticated identity behind a request.
type Actor struct {
	ID    string
	Role  Role
	Email string
	Name  string
}

func (a *Actor) IsAdmin() bool { return a != nil && a.Role == RoleAdmin }

type Action string

const (
	ActionView         Action = "view"
	ActionCreate       Action = "create"
	ActionUpdate       Action = "update"
	ActionUpdateStatus Action = "update_status"
)

type Kind string

const (
	KindApplication Kind = "application"
	KindCompany     Kind = "company"
	KindJob         Kind = "job"
)

// Resource carries the ownership facts a decision needs.
type Resource struct {
	Kind Kind
	ID   string
	// OwnerID is the applicant for an application and the owning user for a company.
	OwnerID string
	// CompanyID is the owning company user of a job, or of the job an application targets.
	CompanyID string
}

// Application describes an application for a decision.
func Application(id, applicantID, jobCompanyID string) Resource {
	return Resource{Kind: KindApplication, ID: id, OwnerID: applicantID, CompanyID: jobCompanyID}
}

// Job describes a job posting for a decision.
func Job(id, companyID string) Resource {
	return Resource{Kind: KindJob, ID: id, CompanyID: companyID}
}

// Company describes a company profile for a decision.
func Company(id, ownerUserID string) Resource {
	return Resource{Kind: KindCompany, ID: id, OwnerID: ownerUserID}
}

// Decision is the outcome of CanAccess.
type Decision struct {
	Allowed bool
	// Unauthenticated is set when the denial is due to a missing actor.
	Unauthenticated bool
	Reason          string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason string) Decision { return Decision{Reason: reason} }

// CanAccess applies the authorization rules. First match wins; anything not
// explicitly granted is denied.
func CanAccess(actor *Actor, action Action, res Resource) Decision {
	if actor == nil || strings.TrimSpace(actor.ID) == "" {
		return Decision{Unauthenticated: true, Reason: "Authentication required"}
	}
	if actor.Role == RoleAdmin {
		return allow()
	}

	switch res.Kind {
	case KindApplication:
		return applicationRule(actor, action, res)
	case KindCompany:
		return companyRule(actor, action, res)
	case KindJob:
		return jobRule(actor, action, res)
	}
	return deny("Access denied")
}

func applicationRule(actor *Actor, action Action, res Resource) Decision {
	switch action {
	case ActionCreate:
		if actor.Role == RoleJobseeker {
			return allow()
		}
		return deny("Only job seekers can apply for jobs")
	case ActionView, ActionUpdate:
		switch actor.Role {
		case RoleJobseeker:
			if res.OwnerID != "" && actor.ID == res.OwnerID {
				return allow()
			}
		case RoleCompany:
			if res.CompanyID != "" && actor.ID == res.CompanyID {
				return allow()
			}
		}
		return deny("You do not have access to this application")
	}
	return deny("Access denied")
}

func companyRule(actor *Actor, action Action, res Resource) Decision {
	switch action {
	case ActionView:
		return allow()
	case ActionCreate:
		if actor.Role == RoleCompany {
			return allow()
		}
		return deny("Only company accounts can register a company")
	case ActionUpdate:
		if actor.Role == RoleCompany && res.OwnerID != "" && actor.ID == res.OwnerID {
			return allow()
		}
		return deny("You do not own this company")
	case ActionUpdateStatus:
		return deny("Only admins can update company status")
	}
	return deny("Access denied")
}

func jobRule(actor *Actor, action Action, res Resource) Decision {
	switch action {
	case ActionView:
		return allow()
	case ActionCreate:
		if actor.Role == RoleCompany {
			return allow()
		}
		return deny("Only company accounts can post jobs")
	case ActionUpdate:
		if actor.Role == RoleCompany && res.CompanyID != "" && actor.ID == res.CompanyID {
			return allow()
		}
		return deny("You do not own this job")
	}
	return deny("Access denied")
}

// Check is CanAccess returning an error suitable for handlers.
func Check(actor *Actor, action Action, res Resource) error {
	d := CanAccess(actor, action, res)
	if d.Allowed {
		return nil
	}
	if d.Unauthenticated {
		return apperr.Unauthenticated(d.Reason)
	}
	return apperr.Forbidden(d.Reason)
}
