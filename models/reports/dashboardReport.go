package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/hediammar/QatarPanels-sub002/models"
	"github.com/shopspring/decimal"
)

// DashboardFilter scopes the dashboard to a project, building or facade
// subset. Zero values mean "all".
type DashboardFilter struct {
	ProjectId  int `json:"project_id"`
	BuildingId int `json:"building_id"`
	FacadeId   int `json:"facade_id"`
}

type StatusCount struct {
	Status     models.PanelStatus `json:"status"`
	Label      string             `json:"label"`
	Count      int                `json:"count"`
	Percentage float64            `json:"percentage"`
}

// PipelineCounts are cumulative "at or beyond this stage" tallies. The
// stage membership sets below are the source of truth; the order is a
// fixed partial order over status codes, not a numeric comparison.
type PipelineCounts struct {
	IssuedForProduction int `json:"issued_for_production"`
	Produced            int `json:"produced"`
	ProceedForDelivery  int `json:"proceed_for_delivery"`
	Delivered           int `json:"delivered"`
	Installed           int `json:"installed"`
	Inspected           int `json:"inspected"`
	ApprovedFinal       int `json:"approved_final"`
}

type DashboardResponse struct {
	TotalPanels           int             `json:"total_panels"`
	PrimaryStatusCounts   []StatusCount   `json:"primary_status_counts"`
	SecondaryStatusCounts []StatusCount   `json:"secondary_status_counts"`
	Pipeline              PipelineCounts  `json:"pipeline"`
	TotalEstimatedCost    decimal.Decimal `json:"total_estimated_cost"`
	TotalEstimatedPanels  int             `json:"total_estimated_panels"`
	ProductionEfficiency  float64         `json:"production_efficiency"`
	DeliveryEfficiency    float64         `json:"delivery_efficiency"`
	OverallCompletion     float64         `json:"overall_completion"`
}

// Stage membership sets. A panel counts toward a stage when its status
// appears in that stage's set, which makes each later production stage a
// subset of the ones before it.
var (
	stageIssuedForProduction = statusSet(
		models.PanelStatusIssuedForProduction,
		models.PanelStatusProduced,
		models.PanelStatusProceedForDelivery,
		models.PanelStatusDelivered,
		models.PanelStatusInstalled,
		models.PanelStatusInspected,
		models.PanelStatusApprovedFinal,
	)
	stageProduced = statusSet(
		models.PanelStatusProduced,
		models.PanelStatusProceedForDelivery,
		models.PanelStatusDelivered,
		models.PanelStatusInstalled,
		models.PanelStatusInspected,
		models.PanelStatusApprovedFinal,
	)
	stageProceedForDelivery = statusSet(
		models.PanelStatusProceedForDelivery,
		models.PanelStatusDelivered,
		models.PanelStatusInstalled,
		models.PanelStatusInspected,
		models.PanelStatusApprovedFinal,
	)
	stageDelivered = statusSet(
		models.PanelStatusDelivered,
		models.PanelStatusInstalled,
		models.PanelStatusInspected,
		models.PanelStatusApprovedFinal,
	)
	stageInstalled = statusSet(
		models.PanelStatusInstalled,
		models.PanelStatusInspected,
		models.PanelStatusApprovedFinal,
	)
	stageInspected = statusSet(
		models.PanelStatusInspected,
		models.PanelStatusApprovedFinal,
	)
	stageApprovedFinal = statusSet(
		models.PanelStatusApprovedFinal,
	)
)

func statusSet(statuses ...models.PanelStatus) map[models.PanelStatus]bool {
	set := make(map[models.PanelStatus]bool, len(statuses))
	for _, s := range statuses {
		set[s] = true
	}
	return set
}

// BuildDashboard derives every dashboard metric from already-fetched
// collections. Pure: no I/O, no mutation of its inputs, so recomputation
// is idempotent and the result safe to memoize on (inputs, filter).
func BuildDashboard(panels []*models.Panel, projects []*models.Project, filter DashboardFilter) *DashboardResponse {
	filtered := filterPanels(panels, filter)

	resp := &DashboardResponse{
		TotalPanels:        len(filtered),
		TotalEstimatedCost: decimal.Zero,
	}

	statusCounts := make(map[models.PanelStatus]int)
	stageCount := func(set map[models.PanelStatus]bool) int {
		n := 0
		for _, p := range filtered {
			if set[p.Status] {
				n++
			}
		}
		return n
	}
	for _, p := range filtered {
		statusCounts[p.Status]++
	}

	total := len(filtered)
	percentage := func(count int) float64 {
		if total == 0 {
			return 0
		}
		return float64(count) / float64(total) * 100
	}

	for _, status := range models.PrimaryPanelStatuses {
		resp.PrimaryStatusCounts = append(resp.PrimaryStatusCounts, StatusCount{
			Status:     status,
			Label:      status.String(),
			Count:      statusCounts[status],
			Percentage: percentage(statusCounts[status]),
		})
	}
	for _, status := range models.SecondaryPanelStatuses {
		resp.SecondaryStatusCounts = append(resp.SecondaryStatusCounts, StatusCount{
			Status:     status,
			Label:      status.String(),
			Count:      statusCounts[status],
			Percentage: percentage(statusCounts[status]),
		})
	}

	resp.Pipeline = PipelineCounts{
		IssuedForProduction: stageCount(stageIssuedForProduction),
		Produced:            stageCount(stageProduced),
		ProceedForDelivery:  stageCount(stageProceedForDelivery),
		Delivered:           stageCount(stageDelivered),
		Installed:           stageCount(stageInstalled),
		Inspected:           stageCount(stageInspected),
		ApprovedFinal:       stageCount(stageApprovedFinal),
	}

	for _, project := range filterProjects(projects, filtered, filter) {
		resp.TotalEstimatedCost = resp.TotalEstimatedCost.Add(project.EstimatedCost)
		resp.TotalEstimatedPanels += project.EstimatedPanels
	}

	// ratios guard the zero denominator: 0, never NaN
	ratio := func(count int) float64 {
		if resp.TotalEstimatedPanels == 0 {
			return 0
		}
		return float64(count) / float64(resp.TotalEstimatedPanels) * 100
	}
	resp.ProductionEfficiency = ratio(resp.Pipeline.Produced)
	resp.DeliveryEfficiency = ratio(resp.Pipeline.Delivered)
	resp.OverallCompletion = ratio(resp.Pipeline.Installed)

	return resp
}

func filterPanels(panels []*models.Panel, filter DashboardFilter) []*models.Panel {
	filtered := make([]*models.Panel, 0, len(panels))
	for _, p := range panels {
		if filter.ProjectId > 0 && p.ProjectId != filter.ProjectId {
			continue
		}
		if filter.BuildingId > 0 && (p.BuildingId == nil || *p.BuildingId != filter.BuildingId) {
			continue
		}
		if filter.FacadeId > 0 && (p.FacadeId == nil || *p.FacadeId != filter.FacadeId) {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

// filterProjects picks the project set the financial totals sum over:
// the selected project when one is chosen, the projects of the filtered
// panels when a building/facade narrows the view, all projects otherwise.
func filterProjects(projects []*models.Project, filteredPanels []*models.Panel, filter DashboardFilter) []*models.Project {
	if filter.ProjectId > 0 {
		for _, p := range projects {
			if p.ID == filter.ProjectId {
				return []*models.Project{p}
			}
		}
		return nil
	}
	if filter.BuildingId > 0 || filter.FacadeId > 0 {
		wanted := make(map[int]bool)
		for _, panel := range filteredPanels {
			wanted[panel.ProjectId] = true
		}
		scoped := make([]*models.Project, 0, len(wanted))
		for _, p := range projects {
			if wanted[p.ID] {
				scoped = append(scoped, p)
			}
		}
		return scoped
	}
	return projects
}

// GetDashboard fetches the collections, consults the report cache and
// builds the dashboard. The cache key covers the filter; writes during
// import invalidate by TTL only.
func GetDashboard(ctx context.Context, filter DashboardFilter) (*DashboardResponse, error) {
	started := time.Now()
	cacheKey := fmt.Sprintf("Dashboard:p%d_b%d_f%d", filter.ProjectId, filter.BuildingId, filter.FacadeId)
	defer logSlowReport(ctx, "dashboard", started, map[string]any{"key": cacheKey})

	if reportCacheEnabled() {
		var cached DashboardResponse
		if hit, err := cacheGet(cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	panels, err := models.ListPanels(ctx, models.PanelFilter{})
	if err != nil {
		return nil, err
	}
	projects, err := models.ListProjects(ctx)
	if err != nil {
		return nil, err
	}

	resp := BuildDashboard(panels, projects, filter)

	if reportCacheEnabled() {
		_ = cacheSet(cacheKey, resp, reportCacheTTL())
	}

	return resp, nil
}
