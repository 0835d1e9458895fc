package planner

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"studio-go/internal/models"
)

// DateLayout 课时日期格式 dd/mm/yyyy
const DateLayout = "02/01/2006"

const (
	lessonStartHour = 10
	lessonDuration  = time.Hour
)

// Event 日历事件
type Event struct {
	ID         string         `json:"id"`
	UnitID     string         `json:"unit_id"`
	Title      string         `json:"title"`
	Start      time.Time      `json:"start"`
	End        time.Time      `json:"end"`
	Asignatura string         `json:"asignatura"`
	Nivel      string         `json:"nivel"`
	Dia        int            `json:"dia"`
	Lesson     *models.Lesson `json:"lesson,omitempty"`
}

// ParseFecha 解析课时日期，返回当地零点
func ParseFecha(fecha string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(fecha), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("无效的课时日期 %q: %w", fecha, err)
	}
	return t, nil
}

// LessonEvent 课时映射为当天10:00到11:00的事件
func LessonEvent(lesson models.Lesson, subject, level string, loc *time.Location) (Event, error) {
	day, err := ParseFecha(lesson.Fecha, loc)
	if err != nil {
		return Event{}, err
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), lessonStartHour, 0, 0, 0, day.Location())
	l := lesson
	return Event{
		Title:      lesson.Titulo,
		Start:      start,
		End:        start.Add(lessonDuration),
		Asignatura: subject,
		Nivel:      level,
		Dia:        lesson.Dia,
		Lesson:     &l,
	}, nil
}

// UnitEvents 单元的全部课时事件，日期无效的课时跳过
func UnitEvents(unit *models.Unit, loc *time.Location) ([]Event, []error) {
	var events []Event
	var errs []error
	for i, lesson := range unit.Lecciones {
		ev, err := LessonEvent(lesson, unit.Asignatura, unit.Nivel, loc)
		if err != nil {
			errs = append(errs, fmt.Errorf("单元 %s 第 %d 课: %w", unit.ID, i+1, err))
			continue
		}
		ev.ID = fmt.Sprintf("%s-%d", unit.ID, i)
		ev.UnitID = unit.ID
		events = append(events, ev)
	}
	return events, errs
}

// FilterEvents 按学科和年级过滤
// 选择为空表示不过滤，两个条件同时满足才保留
func FilterEvents(events []Event, subjects, levels []string) []Event {
	subjectSet := toSet(subjects)
	levelSet := toSet(levels)

	filtered := make([]Event, 0, len(events))
	for _, ev := range events {
		if len(subjectSet) > 0 && !subjectSet[ev.Asignatura] {
			continue
		}
		if len(levelSet) > 0 && !levelSet[ev.Nivel] {
			continue
		}
		filtered = append(filtered, ev)
	}
	return filtered
}

// GroupByDate 按日期分组，键为 yyyy-mm-dd
func GroupByDate(events []Event) map[string][]Event {
	groups := make(map[string][]Event)
	for _, ev := range events {
		key := ev.Start.Format("2006-01-02")
		groups[key] = append(groups[key], ev)
	}
	for key := range groups {
		SortEvents(groups[key])
	}
	return groups
}

// LessonsOn 指定日期的事件
func LessonsOn(events []Event, date time.Time) []Event {
	y, m, d := date.Date()
	var result []Event
	for _, ev := range events {
		ey, em, ed := ev.Start.In(date.Location()).Date()
		if ey == y && em == m && ed == d {
			result = append(result, ev)
		}
	}
	SortEvents(result)
	return result
}

// SortEvents 按开始时间排序
func SortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
}

// Subjects 事件中出现的学科和年级，用于筛选项
func Subjects(events []Event) (subjects, levels []string) {
	seenS, seenL := map[string]bool{}, map[string]bool{}
	for _, ev := range events {
		if ev.Asignatura != "" && !seenS[ev.Asignatura] {
			seenS[ev.Asignatura] = true
			subjects = append(subjects, ev.Asignatura)
		}
		if ev.Nivel != "" && !seenL[ev.Nivel] {
			seenL[ev.Nivel] = true
			levels = append(levels, ev.Nivel)
		}
	}
	sort.Strings(subjects)
	sort.Strings(levels)
	return subjects, levels
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			set[v] = true
		}
	}
	return set
}
