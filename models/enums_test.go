package models_test

import (
	"testing"

	"github.com/hediammar/QatarPanels-sub002/models"
)

func TestParsePanelStatusCanonicalPhrases(t *testing.T) {
	for code, name := range models.PanelStatusNames() {
		got, ok := models.ParsePanelStatus(name)
		if !ok {
			t.Fatalf("ParsePanelStatus(%q): not recognized", name)
		}
		if int(got) != code {
			t.Fatalf("ParsePanelStatus(%q) = %d, want %d", name, got, code)
		}
	}
}

func TestParsePanelStatusIsCaseAndSpaceInsensitive(t *testing.T) {
	cases := map[string]models.PanelStatus{
		"PRODUCED":              models.PanelStatusProduced,
		"  Delivered  ":         models.PanelStatusDelivered,
		"Proceed for Delivery":  models.PanelStatusProceedForDelivery,
		"approved final":        models.PanelStatusApprovedFinal,
		"Issued For Production": models.PanelStatusIssuedForProduction,
		"inspected":             models.PanelStatusInspected,
	}
	for text, want := range cases {
		got, ok := models.ParsePanelStatus(text)
		if !ok || got != want {
			t.Errorf("ParsePanelStatus(%q) = (%d, %v), want (%d, true)", text, got, ok, want)
		}
	}
}

func TestParsePanelStatusMisspelledDeliverySynonym(t *testing.T) {
	got, ok := models.ParsePanelStatus("Procced for Delivery")
	if !ok || got != models.PanelStatusProceedForDelivery {
		t.Fatalf("ParsePanelStatus misspelling = (%d, %v), want (%d, true)", got, ok, models.PanelStatusProceedForDelivery)
	}
}

func TestParsePanelStatusUnknownDefaultsToIssued(t *testing.T) {
	got, ok := models.ParsePanelStatus("shipped to mars")
	if ok {
		t.Fatal("unknown status must not report ok")
	}
	if got != models.PanelStatusIssuedForProduction {
		t.Fatalf("unknown status = %d, want default %d", got, models.PanelStatusIssuedForProduction)
	}
}

func TestPrimaryAndSecondaryStatusesCoverEveryCode(t *testing.T) {
	seen := make(map[models.PanelStatus]bool)
	for _, s := range models.PrimaryPanelStatuses {
		seen[s] = true
	}
	for _, s := range models.SecondaryPanelStatuses {
		if seen[s] {
			t.Fatalf("status %d appears in both taxonomies", s)
		}
		seen[s] = true
	}
	if len(seen) != len(models.PanelStatusNames()) {
		t.Fatalf("taxonomies cover %d statuses, want %d", len(seen), len(models.PanelStatusNames()))
	}
}

func TestParsePanelType(t *testing.T) {
	cases := map[string]models.PanelType{
		"GRC":   models.PanelTypeGRC,
		"grg":   models.PanelTypeGRG,
		" GRP ": models.PanelTypeGRP,
		"EIFS":  models.PanelTypeEIFS,
		"UHPC":  models.PanelTypeUHPC,
	}
	for text, want := range cases {
		got, ok := models.ParsePanelType(text)
		if !ok || got != want {
			t.Errorf("ParsePanelType(%q) = (%d, %v), want (%d, true)", text, got, ok, want)
		}
	}
	if _, ok := models.ParsePanelType("XYZ"); ok {
		t.Error("ParsePanelType must reject unknown types")
	}
}

func TestParseProjectStatusNormalizesSeparators(t *testing.T) {
	cases := map[string]models.ProjectStatus{
		"Active":    models.ProjectStatusActive,
		"ON HOLD":   models.ProjectStatusOnHold,
		"on_hold":   models.ProjectStatusOnHold,
		"completed": models.ProjectStatusCompleted,
		"inactive":  models.ProjectStatusInactive,
	}
	for text, want := range cases {
		got, ok := models.ParseProjectStatus(text)
		if !ok || got != want {
			t.Errorf("ParseProjectStatus(%q) = (%q, %v), want (%q, true)", text, got, ok, want)
		}
	}
	for _, text := range []string{"", "garbage"} {
		got, ok := models.ParseProjectStatus(text)
		if ok || got != models.ProjectStatusActive {
			t.Errorf("ParseProjectStatus(%q) = (%q, %v), want (active, false)", text, got, ok)
		}
	}
}
