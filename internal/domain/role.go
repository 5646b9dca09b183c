package domain

import (
	"encoding/json"
	"strings"
)

// Role is the closed set {Citizen, Admin(region)}.
// The zero value is Citizen.
type Role struct {
	Kind   RoleKind
	Region Region
}

// Citizen is the citizen role.
var Citizen = Role{Kind: RoleKindCitizen}

// Admin returns the admin role for a region.
func Admin(region Region) Role {
	return Role{Kind: RoleKindAdmin, Region: region}
}

// ParseRole decodes a backend role string such as "citizen", "user" or
// "admin-tmc". Anything it does not recognise, including an empty string
// or an admin role for an unknown region, yields Citizen and ok=false.
func ParseRole(raw string) (Role, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "citizen", "user":
		return Citizen, true
	}

	name, found := strings.CutPrefix(s, "admin-")
	if !found {
		return Citizen, false
	}
	if region, ok := ParseRegion(name); ok {
		return Admin(region), true
	}
	return Citizen, false
}

// IsAdmin reports whether r is an admin variant.
func (r Role) IsAdmin() bool {
	return r.Kind == RoleKindAdmin
}

// Capability returns the navigation domain of the role.
func (r Role) Capability() Capability {
	if r.IsAdmin() {
		return CapabilityAdmin
	}
	return CapabilityCitizen
}

// String returns the wire form understood by the backend.
func (r Role) String() string {
	if r.IsAdmin() {
		return "admin-" + string(r.Region)
	}
	return "citizen"
}

// RegionLabel is the upper-case authority name shown next to the user name.
func (r Role) RegionLabel() string {
	if r.IsAdmin() {
		return r.Region.Label()
	}
	return "CITIZEN"
}

// MarshalJSON encodes the role in its wire form.
func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON decodes a wire role, falling back to Citizen.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*r = Citizen
		return nil
	}
	*r, _ = ParseRole(s)
	return nil
}
