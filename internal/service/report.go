package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/cleberrangel/journey-goals-api/internal/logger"
	"github.com/cleberrangel/journey-goals-api/internal/metrics"
	"github.com/cleberrangel/journey-goals-api/internal/model"
)

// ReportService orquestra a geração do relatório semanal
type ReportService struct {
	store          GoalStore
	dashboard      *DashboardService
	excelGenerator *ExcelGenerator
	now            func() time.Time
}

// NewReportService cria um novo serviço de relatórios
func NewReportService(store GoalStore, dashboard *DashboardService) *ReportService {
	return &ReportService{
		store:          store,
		dashboard:      dashboard,
		excelGenerator: NewExcelGenerator(),
		now:            time.Now,
	}
}

// Report é a planilha gerada
type Report struct {
	Filename   string
	Content    *bytes.Buffer
	TotalGoals int
	TotalTasks int
}

// WeeklyReport gera o xlsx com as metas e o resumo da semana
func (s *ReportService) WeeklyReport(ctx context.Context, userID string, week time.Time) (*Report, error) {
	log := logger.Get(ctx)
	weekStr := model.FormatWeek(week)

	report, err := s.generate(ctx, userID, week)
	metrics.Get().IncrementReportGenerated(err == nil)

	event := logger.AuditEvent{
		Action:     logger.AuditActionReportGenerate,
		UserID:     userID,
		Resource:   "report",
		ResourceID: weekStr,
		Success:    err == nil,
	}
	if err != nil {
		event.Error = err.Error()
		logger.Audit(ctx, event)
		return nil, err
	}
	event.Details = map[string]interface{}{"goals": report.TotalGoals, "tasks": report.TotalTasks}
	logger.Audit(ctx, event)

	log.Info().
		Str("week", weekStr).
		Int("goals", report.TotalGoals).
		Int("bytes", report.Content.Len()).
		Msg("Relatório semanal gerado")

	return report, nil
}

func (s *ReportService) generate(ctx context.Context, userID string, week time.Time) (*Report, error) {
	goals, err := s.store.ListGoals(ctx, userID, week)
	if err != nil {
		return nil, fmt.Errorf("erro ao carregar metas: %w", err)
	}

	summary, err := s.dashboard.Summary(ctx, userID, week, s.now().In(week.Location()))
	if err != nil {
		return nil, err
	}

	content, err := s.excelGenerator.Generate(goals, summary)
	if err != nil {
		return nil, fmt.Errorf("erro ao gerar excel: %w", err)
	}

	return &Report{
		Filename:   fmt.Sprintf("metas_%s.xlsx", model.FormatWeek(week)),
		Content:    content,
		TotalGoals: len(goals),
		TotalTasks: model.CountTasks(goals),
	}, nil
}
