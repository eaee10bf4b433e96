package model

// PrincipalKind distinguishes the four access levels.
type PrincipalKind string

const (
	KindUser          PrincipalKind = "user"
	KindOrgAdmin      PrincipalKind = "org_admin"
	KindHospitalAdmin PrincipalKind = "hospital_admin"
	KindSuperAdmin    PrincipalKind = "super_admin"
)

// IsValid reports whether k is a known principal kind.
func (k PrincipalKind) IsValid() bool {
	switch k {
	case KindUser, KindOrgAdmin, KindHospitalAdmin, KindSuperAdmin:
		return true
	default:
		return false
	}
}

// Principal is the resolved identity and scope attached to a request.
// It is derived per request and never persisted.
type Principal struct {
	Kind    PrincipalKind
	UserID  int64
	ScopeID string
}

// IsPrivileged reports whether the principal sees every order.
func (p Principal) IsPrivileged() bool {
	return p.Kind == KindSuperAdmin
}

// SourceScope returns the source collection a tenant admin is confined to.
func (p Principal) SourceScope() (SourceType, bool) {
	switch p.Kind {
	case KindOrgAdmin:
		return SourceOrganization, true
	case KindHospitalAdmin:
		return SourceHospital, true
	default:
		return "", false
	}
}
