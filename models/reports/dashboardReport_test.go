package reports_test

import (
	"testing"

	"github.com/hediammar/QatarPanels-sub002/models"
	"github.com/hediammar/QatarPanels-sub002/models/reports"
	"github.com/shopspring/decimal"
)

func intPtr(n int) *int { return &n }

func panel(project int, status models.PanelStatus) *models.Panel {
	return &models.Panel{ProjectId: project, Status: status}
}

func TestBuildDashboardEmptyInputsYieldZeroesNotNaN(t *testing.T) {
	resp := reports.BuildDashboard(nil, nil, reports.DashboardFilter{})

	if resp.TotalPanels != 0 {
		t.Fatalf("TotalPanels = %d, want 0", resp.TotalPanels)
	}
	for _, sc := range append(resp.PrimaryStatusCounts, resp.SecondaryStatusCounts...) {
		if sc.Count != 0 || sc.Percentage != 0 {
			t.Fatalf("status %q: count=%d pct=%f, want zeroes", sc.Label, sc.Count, sc.Percentage)
		}
	}
	if resp.ProductionEfficiency != 0 || resp.DeliveryEfficiency != 0 || resp.OverallCompletion != 0 {
		t.Fatalf("efficiencies must be 0 with no estimated panels, got %f %f %f",
			resp.ProductionEfficiency, resp.DeliveryEfficiency, resp.OverallCompletion)
	}
	if !resp.TotalEstimatedCost.Equal(decimal.Zero) {
		t.Fatalf("TotalEstimatedCost = %s, want 0", resp.TotalEstimatedCost)
	}
}

func TestBuildDashboardStatusTaxonomiesCoverAllPanels(t *testing.T) {
	panels := []*models.Panel{
		panel(1, models.PanelStatusIssuedForProduction),
		panel(1, models.PanelStatusProduced),
		panel(1, models.PanelStatusProduced),
		panel(1, models.PanelStatusDelivered),
		panel(1, models.PanelStatusInstalled),
		panel(1, models.PanelStatusCancelled),
	}
	resp := reports.BuildDashboard(panels, nil, reports.DashboardFilter{})

	if resp.TotalPanels != 6 {
		t.Fatalf("TotalPanels = %d, want 6", resp.TotalPanels)
	}
	counted := 0
	var pctSum float64
	for _, sc := range append(resp.PrimaryStatusCounts, resp.SecondaryStatusCounts...) {
		counted += sc.Count
		pctSum += sc.Percentage
	}
	if counted != 6 {
		t.Fatalf("status counts sum to %d, want 6", counted)
	}
	if pctSum < 99.9 || pctSum > 100.1 {
		t.Fatalf("status percentages sum to %f, want ~100", pctSum)
	}
}

// Each pipeline stage is a subset of the one before it, so the counts
// can only stay flat or shrink left to right.
func TestBuildDashboardPipelineIsMonotonic(t *testing.T) {
	panels := []*models.Panel{
		panel(1, models.PanelStatusIssuedForProduction),
		panel(1, models.PanelStatusProduced),
		panel(1, models.PanelStatusProceedForDelivery),
		panel(1, models.PanelStatusDelivered),
		panel(1, models.PanelStatusInstalled),
		panel(1, models.PanelStatusInspected),
		panel(1, models.PanelStatusApprovedFinal),
		panel(1, models.PanelStatusOnHold),
		panel(1, models.PanelStatusBrokenAtSite),
	}
	resp := reports.BuildDashboard(panels, nil, reports.DashboardFilter{})

	p := resp.Pipeline
	stages := []int{
		p.IssuedForProduction,
		p.Produced,
		p.ProceedForDelivery,
		p.Delivered,
		p.Installed,
		p.Inspected,
		p.ApprovedFinal,
	}
	for i := 1; i < len(stages); i++ {
		if stages[i] > stages[i-1] {
			t.Fatalf("pipeline not monotonic at stage %d: %v", i, stages)
		}
	}
	if p.IssuedForProduction != 7 {
		t.Fatalf("IssuedForProduction = %d, want 7 (on-hold and broken excluded)", p.IssuedForProduction)
	}
	if p.ApprovedFinal != 1 {
		t.Fatalf("ApprovedFinal = %d, want 1", p.ApprovedFinal)
	}
}

func TestBuildDashboardEfficiencyRatios(t *testing.T) {
	panels := []*models.Panel{
		panel(1, models.PanelStatusProduced),
		panel(1, models.PanelStatusDelivered),
		panel(1, models.PanelStatusInstalled),
		panel(1, models.PanelStatusApprovedFinal),
	}
	projects := []*models.Project{
		{ID: 1, EstimatedPanels: 8, EstimatedCost: decimal.NewFromInt(500000)},
	}
	resp := reports.BuildDashboard(panels, projects, reports.DashboardFilter{})

	// produced set: all four; delivered set: 3; installed set: 2
	if resp.ProductionEfficiency != 50 {
		t.Errorf("ProductionEfficiency = %f, want 50", resp.ProductionEfficiency)
	}
	if resp.DeliveryEfficiency != 37.5 {
		t.Errorf("DeliveryEfficiency = %f, want 37.5", resp.DeliveryEfficiency)
	}
	if resp.OverallCompletion != 25 {
		t.Errorf("OverallCompletion = %f, want 25", resp.OverallCompletion)
	}
	if !resp.TotalEstimatedCost.Equal(decimal.NewFromInt(500000)) {
		t.Errorf("TotalEstimatedCost = %s, want 500000", resp.TotalEstimatedCost)
	}
}

func TestBuildDashboardProjectFilterScopesPanelsAndFinancials(t *testing.T) {
	panels := []*models.Panel{
		panel(1, models.PanelStatusProduced),
		panel(2, models.PanelStatusProduced),
		panel(2, models.PanelStatusDelivered),
	}
	projects := []*models.Project{
		{ID: 1, EstimatedPanels: 10, EstimatedCost: decimal.NewFromInt(100)},
		{ID: 2, EstimatedPanels: 4, EstimatedCost: decimal.NewFromInt(200)},
	}

	resp := reports.BuildDashboard(panels, projects, reports.DashboardFilter{ProjectId: 2})
	if resp.TotalPanels != 2 {
		t.Fatalf("TotalPanels = %d, want 2", resp.TotalPanels)
	}
	if !resp.TotalEstimatedCost.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("TotalEstimatedCost = %s, want 200 (project 2 only)", resp.TotalEstimatedCost)
	}
	if resp.TotalEstimatedPanels != 4 {
		t.Fatalf("TotalEstimatedPanels = %d, want 4", resp.TotalEstimatedPanels)
	}
	if resp.ProductionEfficiency != 50 {
		t.Fatalf("ProductionEfficiency = %f, want 50", resp.ProductionEfficiency)
	}
}

func TestBuildDashboardBuildingFilterNarrowsToReferencedProjects(t *testing.T) {
	b1 := intPtr(7)
	panels := []*models.Panel{
		{ProjectId: 1, BuildingId: b1, Status: models.PanelStatusProduced},
		{ProjectId: 1, Status: models.PanelStatusProduced},
		{ProjectId: 2, Status: models.PanelStatusProduced},
	}
	projects := []*models.Project{
		{ID: 1, EstimatedPanels: 5, EstimatedCost: decimal.NewFromInt(100)},
		{ID: 2, EstimatedPanels: 5, EstimatedCost: decimal.NewFromInt(900)},
	}

	resp := reports.BuildDashboard(panels, projects, reports.DashboardFilter{BuildingId: 7})
	if resp.TotalPanels != 1 {
		t.Fatalf("TotalPanels = %d, want 1", resp.TotalPanels)
	}
	// financial totals sum over projects the filtered panels reference
	if !resp.TotalEstimatedCost.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("TotalEstimatedCost = %s, want 100", resp.TotalEstimatedCost)
	}
}
