package models

import (
	"strings"
)

// PanelStatus is the persisted status code of a panel.
// The numeric values are load-bearing: spreadsheets and historical rows
// reference them, so the table must never be reordered.
type PanelStatus int

const (
	PanelStatusIssuedForProduction PanelStatus = iota // 0
	PanelStatusProduced                               // 1
	PanelStatusProceedForDelivery                     // 2
	PanelStatusDelivered                              // 3
	PanelStatusApprovedMaterial                       // 4
	PanelStatusRejectedMaterial                       // 5
	PanelStatusInstalled                              // 6
	PanelStatusInspected                              // 7
	PanelStatusApprovedFinal                          // 8
	PanelStatusOnHold                                 // 9
	PanelStatusCancelled                              // 10
	PanelStatusBrokenAtSite                           // 11
)

// panelStatusNames is the canonical phrase per code, index == code.
var panelStatusNames = []string{
	"Issued For Production",
	"Produced",
	"Proceed for Delivery",
	"Delivered",
	"Approved Material",
	"Rejected Material",
	"Installed",
	"Inspected",
	"Approved Final",
	"On Hold",
	"Cancelled",
	"Broken at Site",
}

// panelStatusSynonyms maps historically-seen variants to canonical codes.
// "Procced for Delivery" appears in legacy sheets and must keep working.
var panelStatusSynonyms = map[string]PanelStatus{
	"procced for delivery": PanelStatusProceedForDelivery,
}

func (s PanelStatus) Valid() bool {
	return s >= 0 && int(s) < len(panelStatusNames)
}

func (s PanelStatus) String() string {
	if !s.Valid() {
		return "Unknown"
	}
	return panelStatusNames[s]
}

// ParsePanelStatus maps free spreadsheet text to a status code.
// Unrecognized text reports ok=false and code 0; importers store the 0
// deliberately (legacy sheets rely on it) and surface a warning instead.
func ParsePanelStatus(text string) (PanelStatus, bool) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return PanelStatusIssuedForProduction, false
	}
	for code, name := range panelStatusNames {
		if strings.ToLower(name) == normalized {
			return PanelStatus(code), true
		}
	}
	if code, ok := panelStatusSynonyms[normalized]; ok {
		return code, true
	}
	return PanelStatusIssuedForProduction, false
}

// PanelStatusNames returns the canonical phrases in code order.
func PanelStatusNames() []string {
	out := make([]string, len(panelStatusNames))
	copy(out, panelStatusNames)
	return out
}

// PrimaryPanelStatuses is the production-pipeline taxonomy shown first on
// the dashboard; SecondaryPanelStatuses covers the site/QA taxonomy.
var (
	PrimaryPanelStatuses = []PanelStatus{
		PanelStatusIssuedForProduction,
		PanelStatusProduced,
		PanelStatusProceedForDelivery,
		PanelStatusDelivered,
	}
	SecondaryPanelStatuses = []PanelStatus{
		PanelStatusApprovedMaterial,
		PanelStatusRejectedMaterial,
		PanelStatusInstalled,
		PanelStatusInspected,
		PanelStatusApprovedFinal,
		PanelStatusOnHold,
		PanelStatusCancelled,
		PanelStatusBrokenAtSite,
	}
)

// PanelType is the persisted material type code of a panel.
type PanelType int

const (
	PanelTypeGRC  PanelType = iota // 0
	PanelTypeGRG                   // 1
	PanelTypeGRP                   // 2
	PanelTypeEIFS                  // 3
	PanelTypeUHPC                  // 4
)

var panelTypeNames = []string{"GRC", "GRG", "GRP", "EIFS", "UHPC"}

func (t PanelType) Valid() bool {
	return t >= 0 && int(t) < len(panelTypeNames)
}

func (t PanelType) String() string {
	if !t.Valid() {
		return "Unknown"
	}
	return panelTypeNames[t]
}

// ParsePanelType maps spreadsheet text to a type code, case-insensitively.
func ParsePanelType(text string) (PanelType, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(text))
	for code, name := range panelTypeNames {
		if name == normalized {
			return PanelType(code), true
		}
	}
	return PanelTypeGRC, false
}

// PanelTypeNames returns the valid type names in code order.
func PanelTypeNames() []string {
	out := make([]string, len(panelTypeNames))
	copy(out, panelTypeNames)
	return out
}

// ProjectStatus is stored as text, unlike panel statuses.
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusOnHold    ProjectStatus = "on-hold"
	ProjectStatusInactive  ProjectStatus = "inactive"
)

var projectStatusValues = []ProjectStatus{
	ProjectStatusActive,
	ProjectStatusCompleted,
	ProjectStatusOnHold,
	ProjectStatusInactive,
}

// ParseProjectStatus maps free text to a project status. Blank or
// unrecognized text reports ok=false with "active" as the fallback.
func ParseProjectStatus(text string) (ProjectStatus, bool) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	normalized = strings.ReplaceAll(normalized, " ", "-")
	normalized = strings.ReplaceAll(normalized, "_", "-")
	for _, v := range projectStatusValues {
		if string(v) == normalized {
			return v, true
		}
	}
	return ProjectStatusActive, false
}
