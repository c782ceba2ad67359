package service

import (
	"bytes"
	"fmt"

	"github.com/cleberrangel/journey-goals-api/internal/analytics"
	"github.com/cleberrangel/journey-goals-api/internal/model"
	"github.com/xuri/excelize/v2"
)

const (
	goalsSheet   = "Metas"
	summarySheet = "Resumo"
)

var goalHeaders = []string{"Meta", "Task", "Dia", "Repetição", "Estimado (min)", "Gasto (min)", "Concluída"}

// ExcelGenerator gera a planilha semanal
type ExcelGenerator struct{}

// NewExcelGenerator cria um novo gerador de Excel
func NewExcelGenerator() *ExcelGenerator {
	return &ExcelGenerator{}
}

// Generate escreve uma aba com as tasks de cada meta e outra com o resumo
func (g *ExcelGenerator) Generate(goals []model.Goal, summary analytics.Summary) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), goalsSheet); err != nil {
		return nil, fmt.Errorf("renomear sheet: %w", err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("criar sheet de resumo: %w", err)
	}

	styles, err := newSheetStyles(f)
	if err != nil {
		return nil, fmt.Errorf("criar estilos: %w", err)
	}

	if err := g.writeRow(f, goalsSheet, 1, toCells(goalHeaders), styles.header); err != nil {
		return nil, fmt.Errorf("escrever headers: %w", err)
	}
	if err := g.writeGoals(f, goals, styles); err != nil {
		return nil, fmt.Errorf("escrever metas: %w", err)
	}
	if err := g.writeSummary(f, summary, styles); err != nil {
		return nil, fmt.Errorf("escrever resumo: %w", err)
	}

	if err := f.SetColWidth(goalsSheet, "A", "B", 30); err != nil {
		return nil, fmt.Errorf("ajustar colunas: %w", err)
	}
	if err := f.SetColWidth(goalsSheet, "C", "G", 16); err != nil {
		return nil, fmt.Errorf("ajustar colunas: %w", err)
	}
	if err := f.SetColWidth(summarySheet, "A", "B", 28); err != nil {
		return nil, fmt.Errorf("ajustar colunas: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("escrever buffer: %w", err)
	}
	return buf, nil
}

type sheetStyles struct {
	header, even, odd int
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	var err error

	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    borders("000000"),
	})
	if err != nil {
		return s, err
	}

	s.odd, err = f.NewStyle(&excelize.Style{
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"F2F2F2"}, Pattern: 1},
		Border: borders("D9D9D9"),
	})
	if err != nil {
		return s, err
	}

	s.even, err = f.NewStyle(&excelize.Style{
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"FFFFFF"}, Pattern: 1},
		Border: borders("D9D9D9"),
	})
	return s, err
}

func borders(color string) []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: color, Style: 1},
		{Type: "top", Color: color, Style: 1},
		{Type: "bottom", Color: color, Style: 1},
		{Type: "right", Color: color, Style: 1},
	}
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

func (g *ExcelGenerator) writeRow(f *excelize.File, sheet string, row int, values []interface{}, style int) error {
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(len(values), row)
	if err := f.SetSheetRow(sheet, first, &values); err != nil {
		return err
	}
	return f.SetCellStyle(sheet, first, last, style)
}

// writeGoals escreve uma linha por task; metas sem tasks ocupam uma linha
func (g *ExcelGenerator) writeGoals(f *excelize.File, goals []model.Goal, styles sheetStyles) error {
	row := 2
	for _, goal := range goals {
		if len(goal.Tasks) == 0 {
			values := []interface{}{goal.Title, "", "", "", "", "", ""}
			if err := g.writeRow(f, goalsSheet, row, values, styles.forRow(row)); err != nil {
				return err
			}
			row++
			continue
		}
		for _, task := range goal.Tasks {
			values := []interface{}{
				goal.Title,
				task.Name,
				string(task.Day),
				string(task.RepeatType),
				task.EstTime,
				task.SpentMinutes(),
				yesNo(task.Completed),
			}
			if err := g.writeRow(f, goalsSheet, row, values, styles.forRow(row)); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func (g *ExcelGenerator) writeSummary(f *excelize.File, s analytics.Summary, styles sheetStyles) error {
	rows := [][]interface{}{
		{"Indicador", "Valor"},
		{"Semana", s.Week},
		{"Taxa de conclusão (%)", s.CompletionRate},
		{"Produtividade", s.ProductivityScore},
		{"Foco planejado (min)", s.WeekFocus.PlannedMinutes},
		{"Foco concluído (min)", s.WeekFocus.CompletedMinutes},
		{"Streak da semana", s.CurrentStreak},
		{"Streak diário", s.DailyStreak},
		{"Metas", s.TotalGoals},
		{"Tasks", s.TotalTasks},
	}
	for _, day := range model.Weekdays {
		stats := s.DayStats[day]
		status := "sem tasks"
		if stats.HasPlannedTasks {
			status = "pendente"
			if stats.AllCompleted {
				status = "concluído"
			}
		}
		rows = append(rows, []interface{}{"Dia " + string(day), status})
	}

	for i, values := range rows {
		style := styles.forRow(i + 1)
		if i == 0 {
			style = styles.header
		}
		if err := g.writeRow(f, summarySheet, i+1, values, style); err != nil {
			return err
		}
	}
	return nil
}

func (s sheetStyles) forRow(row int) int {
	if row%2 == 1 {
		return s.odd
	}
	return s.even
}

func yesNo(b bool) string {
	if b {
		return "Sim"
	}
	return "Não"
}
