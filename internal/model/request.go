package model

// SaveGoalsRequest representa o payload de salvamento em lote das metas da semana
type SaveGoalsRequest struct {
	Week  string `json:"week" binding:"omitempty,datetime=2006-01-02"`
	Goals []Goal `json:"goals" binding:"required"`
}

// ChangedRequest pergunta se uma meta difere do último estado salvo
type ChangedRequest struct {
	Goal Goal `json:"goal"`
}

// SnapshotRequest registra o total de tasks concluídas em um dia
type SnapshotRequest struct {
	Date           string `json:"date" binding:"required,datetime=2006-01-02"`
	TasksCompleted int    `json:"tasksCompleted" binding:"min=0"`
}

// Response representa a resposta padrão da API
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

// Meta contém metadados da resposta
type Meta struct {
	Week       string `json:"week,omitempty"`
	TotalGoals int    `json:"total_goals,omitempty"`
	TotalTasks int    `json:"total_tasks,omitempty"`
}

// ErrorResponse representa uma resposta de erro
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// CountTasks soma as tasks de todas as metas
func CountTasks(goals []Goal) int {
	total := 0
	for _, g := range goals {
		total += len(g.Tasks)
	}
	return total
}
