// Package domain defines the core domain models for the portal.
package domain

import "strings"

// RoleKind is the navigation domain a role belongs to.
type RoleKind string

const (
	RoleKindCitizen RoleKind = "citizen"
	RoleKindAdmin   RoleKind = "admin"
)

// Region is a municipal authority an admin is scoped to.
type Region string

const (
	RegionTMC  Region = "tmc"
	RegionBMC  Region = "bmc"
	RegionNMMC Region = "nmmc"
)

// Regions lists every known municipal authority.
var Regions = []Region{RegionTMC, RegionBMC, RegionNMMC}

// ParseRegion matches a municipality name such as "TMC" case-insensitively.
func ParseRegion(raw string) (Region, bool) {
	s := Region(strings.ToLower(strings.TrimSpace(raw)))
	for _, r := range Regions {
		if s == r {
			return r, true
		}
	}
	return "", false
}

// Label is the upper-case name the backend and the screens use.
func (r Region) Label() string {
	return strings.ToUpper(string(r))
}

// ReportStatus represents the status of a defect report.
type ReportStatus string

const (
	ReportStatusPending  ReportStatus = "Pending"
	ReportStatusResolved ReportStatus = "Resolved"
)

// Capability is the access level a screen requires.
type Capability string

const (
	CapabilityNone    Capability = "none"
	CapabilityCitizen Capability = "citizen"
	CapabilityAdmin   Capability = "admin"
)
