package imports

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/hediammar/QatarPanels-sub002/config"
	"github.com/hediammar/QatarPanels-sub002/models"
	"github.com/hediammar/QatarPanels-sub002/utils"
	"github.com/xuri/excelize/v2"
)

func TestPanelImportEndToEnd(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "paneltracker_test")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	models.MigrateTable()

	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetUserNameInContext(ctx, "Test")

	run := func(rows [][]interface{}) *ImportSummary {
		t.Helper()
		f := excelize.NewFile()
		sheet := f.GetSheetName(0)
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				t.Fatalf("CoordinatesToCellName: %v", err)
			}
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				t.Fatalf("SetSheetRow: %v", err)
			}
		}
		defer f.Close()

		pi := NewPanelImport()
		if err := pi.Parse(f); err != nil {
			t.Fatalf("Parse: %v", err)
		}
		pi.Validate()
		summary, err := pi.Run(ctx)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if pi.State() != StateDone {
			t.Fatalf("importer state = %q after Run", pi.State())
		}
		return summary
	}

	header := make([]interface{}, len(PanelSheetColumns))
	for i, name := range PanelSheetColumns {
		header[i] = name
	}

	summary := run([][]interface{}{
		header,
		{"Lusail Tower", "QP-001", "GRC", "Produced", "15/3/2024", "TR-9", "DWG-1",
			"north elevation", "2", "4", "8.5", "120.5", "2400x1200", "Tower A", "North", "Qatar Build Co"},
		{"Lusail Tower", "QP-002", "GRG", "Delivered", "", "", "", "", "", "", "", "", "", "Tower A", "", ""},
		{"", "QP-003", "", "", "", "", "", "", "", "", "", "", "", "", "", ""},
	})

	if summary.Succeeded != 2 || summary.Failed != 1 {
		t.Fatalf("summary = %s, want 2 successful, 1 failed", summary.Tally())
	}
	for _, kind := range []string{"customers", "projects", "buildings", "facades"} {
		if summary.EntitiesCreated[kind] != 1 {
			t.Fatalf("EntitiesCreated = %v, want one of each kind", summary.EntitiesCreated)
		}
	}

	// The blank-project row must have failed loudly, never landed on a
	// guessed default project.
	var failed *RowResult
	for i := range summary.Results {
		if !summary.Results[i].Success {
			failed = &summary.Results[i]
		}
	}
	if failed == nil || !strings.Contains(failed.Error, "project") {
		t.Fatalf("expected a project-name failure, got %+v", summary.Results)
	}

	// Entities referenced by name were created on demand.
	project, err := utils.FetchModelWhere[models.Project](ctx, "name = ?", "Lusail Tower")
	if err != nil {
		t.Fatalf("project not created: %v", err)
	}
	if _, err := utils.FetchModelWhere[models.Customer](ctx, "name = ?", "Qatar Build Co"); err != nil {
		t.Fatalf("customer not created: %v", err)
	}
	if _, err := utils.FetchModelWhere[models.Building](ctx, "project_id = ? AND name = ?", project.ID, "Tower A"); err != nil {
		t.Fatalf("building not created: %v", err)
	}

	p1, err := models.GetPanelByName(ctx, "QP-001")
	if err != nil {
		t.Fatalf("GetPanelByName: %v", err)
	}
	if p1.Status != models.PanelStatusProduced || p1.Type != models.PanelTypeGRC {
		t.Fatalf("panel fields wrong: %+v", p1)
	}
	if p1.IssuedForProductionDate == nil || *p1.IssuedForProductionDate != "2024-03-15" {
		t.Fatalf("date not normalized: %+v", p1.IssuedForProductionDate)
	}

	// Re-importing the same panel updates in place; a case-variant
	// project name resolves to the existing project, not a duplicate.
	summary = run([][]interface{}{
		header,
		{"LUSAIL TOWER", "QP-001", "GRC", "Delivered", "15/3/2024", "TR-9", "DWG-1",
			"north elevation", "2", "4", "8.5", "120.5", "2400x1200", "Tower A", "North", "Qatar Build Co"},
	})
	if summary.Succeeded != 1 {
		t.Fatalf("re-import summary = %s, want 1 successful", summary.Tally())
	}
	for _, r := range summary.Results {
		if r.Created {
			t.Fatalf("re-import must update, not create: %+v", r)
		}
	}

	db := config.GetDB()
	var projectCount int64
	if err := db.WithContext(ctx).Model(&models.Project{}).Count(&projectCount).Error; err != nil {
		t.Fatalf("count projects: %v", err)
	}
	if projectCount != 1 {
		t.Fatalf("project count = %d, want 1 (case-insensitive match)", projectCount)
	}

	p1, err = models.GetPanelByName(ctx, "QP-001")
	if err != nil {
		t.Fatalf("GetPanelByName after re-import: %v", err)
	}
	if p1.Status != models.PanelStatusDelivered {
		t.Fatalf("status not updated, got %v", p1.Status)
	}

	// The status change appended a history row.
	histories, err := models.ListPanelStatusHistories(ctx, p1.ID)
	if err != nil {
		t.Fatalf("ListPanelStatusHistories: %v", err)
	}
	if len(histories) < 2 {
		t.Fatalf("got %d history rows, want at least 2", len(histories))
	}

	// Mixed sheet: one clean new row, one blocked by a bad type, one
	// fully blank row that never reaches validation.
	summary = run([][]interface{}{
		header,
		{"West Bay Plaza", "QP-100", "UHPC", "Installed", "", "", "", "", "", "", "", "", "", "", "", ""},
		{"West Bay Plaza", "QP-101", "XYZ", "", "", "", "", "", "", "", "", "", "", "", "", ""},
		{"", "", "", "", "", "", "", "", "", "", "", "", "", "", "", ""},
	})
	if summary.TotalRows != 2 || summary.ValidRows != 1 || summary.InvalidRows != 1 {
		t.Fatalf("mixed sheet counts: total=%d valid=%d invalid=%d", summary.TotalRows, summary.ValidRows, summary.InvalidRows)
	}
	if got := summary.Tally(); got != "1 successful, 0 failed" {
		t.Fatalf("Tally() = %q, want \"1 successful, 0 failed\"", got)
	}

	// While one upload holds the import lock a second run must be refused,
	// and the lock frees again on release.
	release, refresh, err := utils.ImportLock(ctx, "panels", "imports", "TestPanelImportEndToEnd", time.Minute)
	if err != nil {
		t.Fatalf("ImportLock: %v", err)
	}
	if err := refresh(ctx); err != nil {
		t.Fatalf("lock refresh: %v", err)
	}

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	blocked := [][]interface{}{
		header,
		{"West Bay Plaza", "QP-102", "GRC", "", "", "", "", "", "", "", "", "", "", "", "", ""},
	}
	for i, row := range blocked {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	defer f.Close()

	pi := NewPanelImport()
	if err := pi.Parse(f); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	pi.Validate()
	if _, err := pi.Run(ctx); err == nil || !strings.Contains(err.Error(), "already running") {
		t.Fatalf("Run while locked: err = %v, want already-running refusal", err)
	}

	release()
	if summary, err := pi.Run(ctx); err != nil || summary.Succeeded != 1 {
		t.Fatalf("Run after release: summary = %+v err = %v", summary, err)
	}
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("paneltracker-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("paneltracker-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=paneltracker_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
