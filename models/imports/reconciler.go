package imports

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hediammar/QatarPanels-sub002/models"
	"gorm.io/gorm"
)

// ImportContext holds the entity caches for one import run. It is seeded
// from the store before the first row and updated synchronously after
// every create, so row N+1 sees entities created by row N without another
// fetch. It is owned by the orchestrator and discarded when the run ends —
// never shared across runs.
type ImportContext struct {
	customers []*models.Customer
	projects  []*models.Project
	buildings []*models.Building
	facades   []*models.Facade

	created struct {
		customers int
		projects  int
		buildings int
		facades   int
	}
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NewImportContext seeds the caches from the current store contents.
func NewImportContext(ctx context.Context, db *gorm.DB) (*ImportContext, error) {
	ic := &ImportContext{}
	if err := db.WithContext(ctx).Find(&ic.customers).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Find(&ic.projects).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Find(&ic.buildings).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Find(&ic.facades).Error; err != nil {
		return nil, err
	}
	return ic, nil
}

func (ic *ImportContext) findCustomer(name string) *models.Customer {
	normalized := normalizeName(name)
	for _, c := range ic.customers {
		if normalizeName(c.Name) == normalized {
			return c
		}
	}
	return nil
}

func (ic *ImportContext) findProject(name string) *models.Project {
	normalized := normalizeName(name)
	for _, p := range ic.projects {
		if normalizeName(p.Name) == normalized {
			return p
		}
	}
	return nil
}

func (ic *ImportContext) findBuilding(projectId int, name string) *models.Building {
	normalized := normalizeName(name)
	for _, b := range ic.buildings {
		if b.ProjectId == projectId && normalizeName(b.Name) == normalized {
			return b
		}
	}
	return nil
}

func (ic *ImportContext) findFacade(buildingId int, name string) *models.Facade {
	normalized := normalizeName(name)
	for _, f := range ic.facades {
		if f.BuildingId == buildingId && normalizeName(f.Name) == normalized {
			return f
		}
	}
	return nil
}

// ResolveCustomer returns the id of the named customer, creating it with
// placeholder contact details when unknown. A blank name is an error;
// callers fall back to the project name before getting here.
func (ic *ImportContext) ResolveCustomer(ctx context.Context, db *gorm.DB, name string) (int, error) {
	if strings.TrimSpace(name) == "" {
		return 0, errors.New("customer name is required")
	}
	if existing := ic.findCustomer(name); existing != nil {
		return existing.ID, nil
	}

	customer := models.Customer{
		Name:  strings.TrimSpace(name),
		Email: placeholderEmail(name),
		Phone: "+0000000000",
	}
	if err := db.WithContext(ctx).Create(&customer).Error; err != nil {
		return 0, fmt.Errorf("create customer %q: %v", name, err)
	}
	ic.customers = append(ic.customers, &customer)
	ic.created.customers++
	return customer.ID, nil
}

// ResolveProject returns the id of the named project, creating it (and,
// transitively, its customer) when unknown. When the sheet names no
// customer, the project name doubles as the customer name.
func (ic *ImportContext) ResolveProject(ctx context.Context, db *gorm.DB, name string, customerName string) (int, error) {
	if strings.TrimSpace(name) == "" {
		return 0, errors.New("project name is required")
	}
	if existing := ic.findProject(name); existing != nil {
		return existing.ID, nil
	}

	if strings.TrimSpace(customerName) == "" {
		customerName = name
	}
	customerId, err := ic.ResolveCustomer(ctx, db, customerName)
	if err != nil {
		return 0, err
	}

	project := models.Project{
		Name:       strings.TrimSpace(name),
		CustomerId: customerId,
		Status:     models.ProjectStatusActive,
	}
	if err := db.WithContext(ctx).Create(&project).Error; err != nil {
		return 0, fmt.Errorf("create project %q: %v", name, err)
	}
	ic.projects = append(ic.projects, &project)
	ic.created.projects++
	return project.ID, nil
}

// ResolveBuilding returns the id of the named building within the given
// project, creating it when unknown. Matching is scoped to the project:
// two projects may each have a "Tower A".
func (ic *ImportContext) ResolveBuilding(ctx context.Context, db *gorm.DB, projectId int, name string) (int, error) {
	if projectId <= 0 {
		return 0, errors.New("building requires a project")
	}
	if strings.TrimSpace(name) == "" {
		return 0, errors.New("building name is required")
	}
	if existing := ic.findBuilding(projectId, name); existing != nil {
		return existing.ID, nil
	}

	building := models.Building{
		Name:      strings.TrimSpace(name),
		ProjectId: projectId,
	}
	if err := db.WithContext(ctx).Create(&building).Error; err != nil {
		return 0, fmt.Errorf("create building %q: %v", name, err)
	}
	ic.buildings = append(ic.buildings, &building)
	ic.created.buildings++
	return building.ID, nil
}

// ResolveFacade returns the id of the named facade within the given
// building, creating it when unknown.
func (ic *ImportContext) ResolveFacade(ctx context.Context, db *gorm.DB, buildingId int, name string) (int, error) {
	if buildingId <= 0 {
		return 0, errors.New("facade requires a building")
	}
	if strings.TrimSpace(name) == "" {
		return 0, errors.New("facade name is required")
	}
	if existing := ic.findFacade(buildingId, name); existing != nil {
		return existing.ID, nil
	}

	facade := models.Facade{
		Name:       strings.TrimSpace(name),
		BuildingId: buildingId,
	}
	if err := db.WithContext(ctx).Create(&facade).Error; err != nil {
		return 0, fmt.Errorf("create facade %q: %v", name, err)
	}
	ic.facades = append(ic.facades, &facade)
	ic.created.facades++
	return facade.ID, nil
}

// CreatedCounts reports how many entities of each kind this run created,
// omitting kinds with none.
func (ic *ImportContext) CreatedCounts() map[string]int {
	counts := map[string]int{
		"customers": ic.created.customers,
		"projects":  ic.created.projects,
		"buildings": ic.created.buildings,
		"facades":   ic.created.facades,
	}
	for kind, n := range counts {
		if n == 0 {
			delete(counts, kind)
		}
	}
	return counts
}

func placeholderEmail(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, slug)
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "customer"
	}
	return slug + "@placeholder.local"
}
