package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Weekday representa um dia da semana no formato curto usado pela API ("Mon".."Sun")
type Weekday string

const (
	Monday    Weekday = "Mon"
	Tuesday   Weekday = "Tue"
	Wednesday Weekday = "Wed"
	Thursday  Weekday = "Thu"
	Friday    Weekday = "Fri"
	Saturday  Weekday = "Sat"
	Sunday    Weekday = "Sun"
)

// Weekdays lista os dias na ordem da semana do produto (segunda a domingo)
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Index retorna a posição do dia (Mon=0 .. Sun=6) ou -1 se inválido
func (d Weekday) Index() int {
	for i, w := range Weekdays {
		if w == d {
			return i
		}
	}
	return -1
}

// Valid indica se o dia é um dos sete dias conhecidos
func (d Weekday) Valid() bool {
	return d.Index() >= 0
}

// ParseWeekday aceita "Mon", "mon", "monday", "Monday" etc.
func ParseWeekday(s string) (Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 3 {
		return "", false
	}
	for _, w := range Weekdays {
		short := strings.ToLower(string(w))
		if s == short || (strings.HasPrefix(s, short) && strings.HasSuffix(s, "day")) {
			return w, true
		}
	}
	return "", false
}

// WeekdayOf converte um time.Time para o Weekday correspondente
func WeekdayOf(t time.Time) Weekday {
	// time.Sunday == 0; a semana do produto começa na segunda
	return Weekdays[(int(t.Weekday())+6)%7]
}

// RepeatType define a recorrência de uma task dentro da semana
type RepeatType string

const (
	RepeatNone      RepeatType = "none"
	RepeatDaily     RepeatType = "daily"
	RepeatAlternate RepeatType = "alternate"
)

// ParseRepeatType normaliza o tipo de repetição; desconhecido vira none
func ParseRepeatType(s string) RepeatType {
	switch RepeatType(strings.ToLower(strings.TrimSpace(s))) {
	case RepeatDaily:
		return RepeatDaily
	case RepeatAlternate:
		return RepeatAlternate
	default:
		return RepeatNone
	}
}

// alternateDays são os dias de uma task "alternate" (dia sim, dia não a partir de segunda)
var alternateDays = []Weekday{Monday, Wednesday, Friday, Sunday}

// Days retorna os dias em que uma task com esse tipo de repetição está agendada.
// Para none, apenas o dia informado (nenhum se o dia for inválido).
func (r RepeatType) Days(day Weekday) []Weekday {
	switch r {
	case RepeatDaily:
		return Weekdays
	case RepeatAlternate:
		return alternateDays
	default:
		if day.Valid() {
			return []Weekday{day}
		}
		return nil
	}
}

// Task representa uma unidade de trabalho dentro de uma meta semanal
type Task struct {
	ID         string     `json:"id,omitempty"`
	Name       string     `json:"name"`
	EstTime    int        `json:"estTime"`             // minutos planejados
	TimeSpent  *int       `json:"timeSpent,omitempty"` // minutos gastos, só em tasks concluídas/em andamento
	Day        Weekday    `json:"day,omitempty"`
	RepeatType RepeatType `json:"repeatType"`
	Completed  bool       `json:"completed"`
}

// ScheduledDays retorna os dias em que a task conta para a semana
func (t Task) ScheduledDays() []Weekday {
	return t.RepeatType.Days(t.Day)
}

// IsRepeating indica se a task se repete na semana
func (t Task) IsRepeating() bool {
	return t.RepeatType == RepeatDaily || t.RepeatType == RepeatAlternate
}

// SpentMinutes retorna timeSpent ou 0 quando ausente
func (t Task) SpentMinutes() int {
	if t.TimeSpent == nil {
		return 0
	}
	return *t.TimeSpent
}

// Validate verifica os campos obrigatórios antes de uma escrita
func (t Task) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: task sem nome", ErrInvalidGoal)
	}
	if t.EstTime < 0 {
		return fmt.Errorf("%w: task %q com estTime negativo", ErrInvalidGoal, t.Name)
	}
	if t.TimeSpent != nil && *t.TimeSpent < 0 {
		return fmt.Errorf("%w: task %q com timeSpent negativo", ErrInvalidGoal, t.Name)
	}
	return nil
}

// rawTask é o formato tolerante usado na fronteira da API
type rawTask struct {
	ID         flexString `json:"id"`
	Name       string     `json:"name"`
	EstTime    flexInt    `json:"estTime"`
	TimeSpent  *flexInt   `json:"timeSpent"`
	Day        string     `json:"day"`
	RepeatType string     `json:"repeatType"`
	Completed  flexBool   `json:"completed"`
}

// UnmarshalJSON decodifica uma task aplicando defaults em vez de falhar:
// números inválidos viram 0, dia desconhecido fica vazio, repeatType vazio vira none.
func (t *Task) UnmarshalJSON(data []byte) error {
	var raw rawTask
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	day, _ := ParseWeekday(raw.Day)
	*t = Task{
		ID:         string(raw.ID),
		Name:       strings.TrimSpace(raw.Name),
		EstTime:    int(raw.EstTime),
		Day:        day,
		RepeatType: ParseRepeatType(raw.RepeatType),
		Completed:  bool(raw.Completed),
	}
	if raw.TimeSpent != nil {
		spent := int(*raw.TimeSpent)
		t.TimeSpent = &spent
	}
	return nil
}

// Goal representa uma meta semanal com suas tasks
type Goal struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title"`
	Tasks []Task `json:"tasks"`
}

// IsDraft indica que a meta ainda não foi persistida
func (g Goal) IsDraft() bool {
	return g.ID == ""
}

// Validate verifica título e tasks antes de uma escrita
func (g Goal) Validate() error {
	if strings.TrimSpace(g.Title) == "" {
		return fmt.Errorf("%w: meta sem título", ErrInvalidGoal)
	}
	for _, task := range g.Tasks {
		if err := task.Validate(); err != nil {
			return err
		}
	}
	return nil
}

type rawGoal struct {
	ID    flexString `json:"id"`
	Title string     `json:"title"`
	Tasks []Task     `json:"tasks"`
}

// UnmarshalJSON aceita id numérico ou string e garante Tasks não-nulo
func (g *Goal) UnmarshalJSON(data []byte) error {
	var raw rawGoal
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Tasks == nil {
		raw.Tasks = []Task{}
	}
	*g = Goal{
		ID:    string(raw.ID),
		Title: strings.TrimSpace(raw.Title),
		Tasks: raw.Tasks,
	}
	return nil
}

// DailySnapshot é o total de tasks concluídas em um dia
type DailySnapshot struct {
	Date           time.Time `json:"date"`
	TasksCompleted int       `json:"tasksCompleted"`
}

// DayStats é o estado de streak de um dia da semana
type DayStats struct {
	HasPlannedTasks bool `json:"hasPlannedTasks"`
	AllCompleted    bool `json:"allCompleted"`
}

// FocusTimeStats agrega minutos planejados e concluídos
type FocusTimeStats struct {
	PlannedMinutes   int `json:"plannedMinutes"`
	CompletedMinutes int `json:"completedMinutes"`
}

// flexInt aceita número, string numérica ou null; qualquer outra coisa vira 0
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unquoted)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		*f = 0
		return nil
	}
	if v > math.MaxInt32 {
		v = math.MaxInt32
	}
	*f = flexInt(math.Round(v))
	return nil
}

// flexString aceita string ou número (ids vindos de bancos diferentes)
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = ""
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		*f = flexString(strings.TrimSpace(unquoted))
		return nil
	}
	*f = flexString(s)
	return nil
}

// flexBool aceita true/false em JSON ou como string
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(s)))
	*f = flexBool(err == nil && b)
	return nil
}
