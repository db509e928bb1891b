package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/dto"
	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/models"
	appErrors "github.com/ArmanAmreliya/gearguard-odoo-maintenance/pkg/errors"
	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/pkg/export"
)

type reportRequestRepository interface {
	ListForReport(ctx context.Context, filter dto.ReportFilter, limit int) ([]models.RequestDetail, error)
	TeamPerformance(ctx context.Context, filter dto.ReportFilter) ([]dto.TeamPerformance, error)
	HistoryAll(ctx context.Context) (map[string][]models.RequestHistoryEntry, error)
}

type reportEquipmentRepository interface {
	ListAllIDs(ctx context.Context) (map[string]string, error)
}

// ExportFormat selects the export rendering.
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
	FormatPDF  ExportFormat = "pdf"
)

// ExportResult carries a rendered export and the headers a download needs.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ReportsConfig tunes export behaviour.
type ReportsConfig struct {
	MaxExport  int
	SheetTitle string
}

// ReportService aggregates the request register into summaries, team
// rankings and downloadable exports.
type ReportService struct {
	requests  reportRequestRepository
	equipment reportEquipmentRepository
	evaluator *HealthEvaluator
	csv       *export.CSVExporter
	xlsx      *export.ExcelExporter
	pdf       *export.PDFExporter
	config    ReportsConfig
	logger    *zap.Logger
	now       func() time.Time
}

func NewReportService(requests reportRequestRepository, equipment reportEquipmentRepository, config ReportsConfig, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxExport <= 0 {
		config.MaxExport = 10000
	}
	if config.SheetTitle == "" {
		config.SheetTitle = "Maintenance Requests"
	}
	return &ReportService{
		requests:  requests,
		equipment: equipment,
		evaluator: NewHealthEvaluator(),
		csv:       export.NewCSVExporter(),
		xlsx:      export.NewExcelExporter(),
		pdf:       export.NewPDFExporter(),
		config:    config,
		logger:    logger,
		now:       time.Now,
	}
}

// Summary aggregates the filtered register into counts and rates.
func (s *ReportService) Summary(ctx context.Context, filter dto.ReportFilter) (*dto.ReportSummary, error) {
	rows, err := s.requests.ListForReport(ctx, filter, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request register")
	}

	now := s.now()
	AnnotateOverdue(rows, now)

	summary := &dto.ReportSummary{GeneratedAt: now.UTC()}
	statusCounts := make(map[models.RequestStatus]int)
	repaired := 0
	var durationSum float64
	var durationCount int

	for i := range rows {
		row := &rows[i]
		summary.TotalRequests++
		statusCounts[row.Status]++
		if !row.Status.IsTerminal() {
			summary.OpenRequests++
		}
		if row.Overdue {
			summary.OverdueRequests++
		}
		switch row.RequestType {
		case models.TypePreventive:
			summary.PreventiveCount++
		case models.TypeCorrective:
			summary.CorrectiveCount++
		}
		if row.Status == models.StatusRepaired {
			repaired++
			if row.DurationHours != nil {
				durationSum += *row.DurationHours
				durationCount++
			}
		}
	}

	if summary.TotalRequests > 0 {
		summary.CompletionRate = float64(repaired) / float64(summary.TotalRequests)
	}
	if durationCount > 0 {
		summary.AverageDurationHours = durationSum / float64(durationCount)
	}

	for status, count := range statusCounts {
		summary.StatusBreakdown = append(summary.StatusBreakdown, dto.StatusCount{Status: string(status), Count: count})
	}
	sort.Slice(summary.StatusBreakdown, func(i, j int) bool {
		return summary.StatusBreakdown[i].Status < summary.StatusBreakdown[j].Status
	})

	return summary, nil
}

// TeamPerformance ranks teams by repaired throughput.
func (s *ReportService) TeamPerformance(ctx context.Context, filter dto.ReportFilter) ([]dto.TeamPerformance, error) {
	rows, err := s.requests.TeamPerformance(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build team performance report")
	}
	return rows, nil
}

// HealthRanking orders the fleet from highest to lowest risk.
func (s *ReportService) HealthRanking(ctx context.Context) ([]dto.EquipmentHealthRank, error) {
	histories, err := s.requests.HistoryAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request history")
	}
	names, err := s.equipment.ListAllIDs(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list equipment")
	}

	ranking := make([]dto.EquipmentHealthRank, 0, len(histories))
	for equipmentID, history := range histories {
		health := s.evaluator.Evaluate(equipmentID, history)
		ranking = append(ranking, dto.EquipmentHealthRank{
			EquipmentID:   equipmentID,
			EquipmentName: names[equipmentID],
			RiskLevel:     string(health.RiskLevel),
			Corrective30d: health.Metrics.CorrectiveRequestsLast30Days,
			TotalRequests: health.Metrics.TotalCorrectiveRequests + health.Metrics.TotalPreventiveRequests,
		})
	}

	rank := map[string]int{string(dto.RiskHigh): 0, string(dto.RiskMedium): 1, string(dto.RiskLow): 2}
	sort.Slice(ranking, func(i, j int) bool {
		if rank[ranking[i].RiskLevel] != rank[ranking[j].RiskLevel] {
			return rank[ranking[i].RiskLevel] < rank[ranking[j].RiskLevel]
		}
		if ranking[i].Corrective30d != ranking[j].Corrective30d {
			return ranking[i].Corrective30d > ranking[j].Corrective30d
		}
		return ranking[i].EquipmentName < ranking[j].EquipmentName
	})
	return ranking, nil
}

var registerHeaders = []string{"ID", "Subject", "Status", "Type", "Equipment", "Team", "Technician", "Created By", "Scheduled", "Overdue", "Duration (h)", "Created"}

// Export renders the filtered register in the requested format.
func (s *ReportService) Export(ctx context.Context, filter dto.ReportFilter, format ExportFormat) (*ExportResult, error) {
	rows, err := s.requests.ListForReport(ctx, filter, s.config.MaxExport)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request register")
	}

	now := s.now()
	AnnotateOverdue(rows, now)
	data := s.registerDataset(rows)
	stamp := now.Format("2006-01-02")

	var content []byte
	var renderErr error
	result := &ExportResult{}

	switch format {
	case FormatCSV:
		content, renderErr = s.csv.Render(data)
		result.ContentType = "text/csv"
		result.Filename = fmt.Sprintf("maintenance-requests-%s.csv", stamp)
	case FormatXLSX:
		content, renderErr = s.xlsx.Render(data, s.config.SheetTitle)
		result.ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		result.Filename = fmt.Sprintf("maintenance-requests-%s.xlsx", stamp)
	case FormatPDF:
		content, renderErr = s.pdf.Render(data, s.config.SheetTitle)
		result.ContentType = "application/pdf"
		result.Filename = fmt.Sprintf("maintenance-requests-%s.pdf", stamp)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if renderErr != nil {
		return nil, appErrors.Wrap(renderErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	result.Content = content
	s.logger.Info("report exported",
		zap.String("format", string(format)),
		zap.Int("rows", len(rows)))
	return result, nil
}

func (s *ReportService) registerDataset(rows []models.RequestDetail) export.Dataset {
	data := export.Dataset{Headers: registerHeaders, Rows: make([]map[string]string, 0, len(rows))}
	for i := range rows {
		row := &rows[i]
		record := map[string]string{
			"ID":         row.ID,
			"Subject":    row.Subject,
			"Status":     string(row.Status),
			"Type":       string(row.RequestType),
			"Equipment":  row.EquipmentName,
			"Team":       row.TeamName,
			"Created By": row.CreatedByName,
			"Overdue":    "no",
			"Created":    row.CreatedAt.Format("2006-01-02"),
		}
		if row.TechnicianName != nil {
			record["Technician"] = *row.TechnicianName
		}
		if row.ScheduledDate != nil {
			record["Scheduled"] = row.ScheduledDate.Format("2006-01-02")
		}
		if row.Overdue {
			record["Overdue"] = fmt.Sprintf("yes (%dd)", row.DaysOverdue)
		}
		if row.DurationHours != nil {
			record["Duration (h)"] = strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", *row.DurationHours), "0"), ".")
		}
		data.Rows = append(data.Rows, record)
	}
	return data
}

// ParseExportFormat validates a format query parameter.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(raw)) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", raw))
	}
}
