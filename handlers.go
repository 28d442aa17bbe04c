package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/hediammar/QatarPanels-sub002/middlewares"
	"github.com/hediammar/QatarPanels-sub002/models"
	"github.com/hediammar/QatarPanels-sub002/models/imports"
	"github.com/hediammar/QatarPanels-sub002/models/reports"
	"github.com/hediammar/QatarPanels-sub002/utils"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func registerRoutes(r *gin.Engine) {
	perm := func(resource, action string) gin.HandlerFunc {
		return middlewares.RequirePermission(models.HasPermission, resource, action)
	}

	r.POST("/auth/login", loginHandler())

	r.GET("/users", perm("users", "read"), listUsersHandler())
	r.POST("/users", perm("users", "create"), createUserHandler())
	r.GET("/users/:id", perm("users", "read"), getUserHandler())

	r.GET("/customers", perm("customers", "read"), listCustomersHandler())
	r.POST("/customers", perm("customers", "create"), createCustomerHandler())
	r.GET("/customers/:id", perm("customers", "read"), getCustomerHandler())
	r.PUT("/customers/:id", perm("customers", "update"), updateCustomerHandler())
	r.DELETE("/customers/:id", perm("customers", "delete"), deleteCustomerHandler())

	r.GET("/projects", perm("projects", "read"), listProjectsHandler())
	r.POST("/projects", perm("projects", "create"), createProjectHandler())
	r.GET("/projects/:id", perm("projects", "read"), getProjectHandler())
	r.PUT("/projects/:id", perm("projects", "update"), updateProjectHandler())
	r.DELETE("/projects/:id", perm("projects", "delete"), deleteProjectHandler())
	r.GET("/projects/:id/buildings", perm("buildings", "read"), listBuildingsHandler())

	r.POST("/buildings", perm("buildings", "create"), createBuildingHandler())
	r.GET("/buildings/:id", perm("buildings", "read"), getBuildingHandler())
	r.PUT("/buildings/:id", perm("buildings", "update"), updateBuildingHandler())
	r.DELETE("/buildings/:id", perm("buildings", "delete"), deleteBuildingHandler())
	r.GET("/buildings/:id/facades", perm("facades", "read"), listFacadesHandler())

	r.POST("/facades", perm("facades", "create"), createFacadeHandler())
	r.GET("/facades/:id", perm("facades", "read"), getFacadeHandler())
	r.PUT("/facades/:id", perm("facades", "update"), updateFacadeHandler())
	r.DELETE("/facades/:id", perm("facades", "delete"), deleteFacadeHandler())

	r.GET("/panels", perm("panels", "read"), listPanelsHandler())
	r.POST("/panels", perm("panels", "create"), createPanelHandler())
	r.GET("/panels/:id", perm("panels", "read"), getPanelHandler())
	r.PUT("/panels/:id", perm("panels", "update"), updatePanelHandler())
	r.DELETE("/panels/:id", perm("panels", "delete"), deletePanelHandler())
	r.PATCH("/panels/:id/status", perm("panels", "update"), updatePanelStatusHandler())
	r.GET("/panels/:id/history", perm("panels", "read"), panelHistoryHandler())

	r.POST("/imports/panels", perm("panels", "import"), importPanelsHandler())
	r.POST("/imports/projects", perm("projects", "import"), importProjectsHandler())
	r.GET("/imports/panels/template", perm("panels", "read"), panelTemplateHandler())
	r.GET("/imports/projects/template", perm("projects", "read"), projectTemplateHandler())

	r.GET("/reports/dashboard", perm("dashboard", "read"), dashboardHandler())
}

// respondError maps model errors onto HTTP statuses. Anything the
// models did not classify is a caller error.
func respondError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.As(err, &validationErrs):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": utils.ProcessValidationErrors(err)})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

func pathId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string) int {
	n, _ := strconv.Atoi(c.Query(name))
	if n < 0 {
		return 0
	}
	return n
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func loginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
			return
		}
		info, err := models.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusOK, info)
	}
}

func listUsersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := models.ListUsers(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

func createUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewUser
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}
		user, err := models.CreateUser(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

func getUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		user, err := models.GetUser(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func listCustomersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		customers, err := models.ListCustomers(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, customers)
	}
}

func createCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewCustomer
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}
		customer, err := models.CreateCustomer(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, customer)
	}
}

func getCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		customer, err := models.GetCustomer(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, customer)
	}
}

func updateCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input models.NewCustomer
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}
		customer, err := models.UpdateCustomer(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, customer)
	}
}

func deleteCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		customer, err := models.DeleteCustomer(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, customer)
	}
}

func listProjectsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		projects, err := models.ListProjects(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, projects)
	}
}

func createProjectHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewProject
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}
		project, err := models.CreateProject(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, project)
	}
}

func getProjectHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		project, err := models.GetProject(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, project)
	}
}

func updateProjectHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input models.NewProject
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}
		project, err := models.UpdateProject(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, project)
	}
}

func deleteProjectHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		project, err := models.DeleteProject(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, project)
	}
}

func listBuildingsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		buildings, err := models.ListBuildings(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, buildings)
	}
}

func createBuildingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewBuilding
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}
		building, err := models.CreateBuilding(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, building)
	}
}

func getBuildingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		building, err := models.GetBuilding(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, building)
	}
}

func updateBuildingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input models.NewBuilding
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}
		building, err := models.UpdateBuilding(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, building)
	}
}

func deleteBuildingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		building, err := models.DeleteBuilding(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, building)
	}
}

func listFacadesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		facades, err := models.ListFacades(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, facades)
	}
}

func createFacadeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewFacade
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}
		facade, err := models.CreateFacade(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, facade)
	}
}

func getFacadeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		facade, err := models.GetFacade(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, facade)
	}
}

func updateFacadeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input models.NewFacade
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}
		facade, err := models.UpdateFacade(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, facade)
	}
}

func deleteFacadeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		facade, err := models.DeleteFacade(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, facade)
	}
}

func listPanelsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := models.PanelFilter{
			ProjectId:  queryInt(c, "project_id"),
			BuildingId: queryInt(c, "building_id"),
			FacadeId:   queryInt(c, "facade_id"),
			Limit:      queryInt(c, "limit"),
			Offset:     queryInt(c, "offset"),
		}
		if raw := strings.TrimSpace(c.Query("status")); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 || n >= len(models.PanelStatusNames()) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
				return
			}
			status := models.PanelStatus(n)
			filter.Status = &status
		}
		panels, err := models.ListPanels(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err)
			return
		}
		total, err := models.CountPanels(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"total": total, "panels": panels})
	}
}

func createPanelHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewPanel
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}
		panel, err := models.CreatePanel(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, panel)
	}
}

func getPanelHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		panel, err := models.GetPanel(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, panel)
	}
}

func updatePanelHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input models.NewPanel
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}
		panel, err := models.UpdatePanel(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, panel)
	}
}

func deletePanelHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		panel, err := models.DeletePanel(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, panel)
	}
}

type statusChangeRequest struct {
	Status *int   `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

func updatePanelStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		var req statusChangeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
			return
		}
		if *req.Status < 0 || *req.Status >= len(models.PanelStatusNames()) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		panel, err := models.UpdatePanelStatus(c.Request.Context(), id, models.PanelStatus(*req.Status), req.Notes)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, panel)
	}
}

func panelHistoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		histories, err := models.ListPanelStatusHistories(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, histories)
	}
}

// openUploadedWorkbook reads the multipart "file" field into an excelize
// workbook. The caller owns closing the returned file.
func openUploadedWorkbook(c *gin.Context) (*excelize.File, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return nil, false
	}
	src, err := header.Open()
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	defer src.Close()

	f, err := excelize.OpenReader(src)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read workbook: " + err.Error()})
		return nil, false
	}
	return f, true
}

func dryRunRequested(c *gin.Context) bool {
	v := strings.TrimSpace(c.Query("dry_run"))
	return v == "1" || strings.EqualFold(v, "true")
}

func importPanelsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		f, ok := openUploadedWorkbook(c)
		if !ok {
			return
		}
		defer f.Close()

		pi := imports.NewPanelImport()
		if err := pi.Parse(f); err != nil {
			respondError(c, err)
			return
		}
		validations := pi.Validate()

		if dryRunRequested(c) {
			valid := 0
			for _, v := range validations {
				if v.Valid {
					valid++
				}
			}
			c.JSON(http.StatusOK, gin.H{
				"dry_run":      true,
				"total_rows":   len(validations),
				"valid_rows":   valid,
				"invalid_rows": len(validations) - valid,
				"validations":  validations,
			})
			return
		}

		summary, err := pi.Run(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": summary.Tally(), "summary": summary})
	}
}

func importProjectsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		f, ok := openUploadedWorkbook(c)
		if !ok {
			return
		}
		defer f.Close()

		pi := imports.NewProjectImport()
		if err := pi.Parse(f); err != nil {
			respondError(c, err)
			return
		}
		validations := pi.Validate()

		if dryRunRequested(c) {
			valid := 0
			for _, v := range validations {
				if v.Valid {
					valid++
				}
			}
			c.JSON(http.StatusOK, gin.H{
				"dry_run":      true,
				"total_rows":   len(validations),
				"valid_rows":   valid,
				"invalid_rows": len(validations) - valid,
				"validations":  validations,
			})
			return
		}

		summary, err := pi.Run(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": summary.Tally(), "summary": summary})
	}
}

func writeWorkbook(c *gin.Context, f *excelize.File, filename string) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", xlsxContentType)
	if err := f.Write(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}

func panelTemplateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := imports.BuildPanelTemplate()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer f.Close()
		writeWorkbook(c, f, "panels-template.xlsx")
	}
}

func projectTemplateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := imports.BuildProjectTemplate()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer f.Close()
		writeWorkbook(c, f, "projects-template.xlsx")
	}
}

func dashboardHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "reports.dashboard")
		defer span.End()

		filter := reports.DashboardFilter{
			ProjectId:  queryInt(c, "project_id"),
			BuildingId: queryInt(c, "building_id"),
			FacadeId:   queryInt(c, "facade_id"),
		}
		resp, err := reports.GetDashboard(ctx, filter)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}
