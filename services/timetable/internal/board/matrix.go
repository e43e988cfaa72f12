package board

import (
	"sort"

	"github.com/Ariuko0507/huwaari/services/timetable/internal/schedule"
)

type Period struct {
	Start schedule.Clock
	End   schedule.Clock
}

func (p Period) Label() string {
	return p.Start.String() + " - " + p.End.String()
}

// DefaultPeriods are the school's four daily lesson blocks.
var DefaultPeriods = []Period{
	{Start: schedule.MustClock("08:00"), End: schedule.MustClock("09:20")},
	{Start: schedule.MustClock("09:25"), End: schedule.MustClock("10:45")},
	{Start: schedule.MustClock("10:50"), End: schedule.MustClock("12:10")},
	{Start: schedule.MustClock("12:10"), End: schedule.MustClock("13:30")},
}

var DayNames = map[int]string{
	1: "Monday",
	2: "Tuesday",
	3: "Wednesday",
	4: "Thursday",
	5: "Friday",
}

type Row struct {
	Day    int
	Period Period
	Cells  []*Item
}

type Day struct {
	Day  int
	Name string
	Rows []Row
}

// Matrix lays a board out as days of period rows with one column per class.
type Matrix struct {
	Classes []ClassItem
	Days    []Day
	// Editable renders cells as links into the admin schedule form.
	Editable bool
}

type cellKey struct {
	day     int
	start   schedule.Clock
	classID string
}

// BuildMatrix places each item by day, start time and class. Items whose
// start does not match a period add an extra period row so none are hidden.
func BuildMatrix(classes []ClassItem, items []Item, periods []Period) Matrix {
	if len(periods) == 0 {
		periods = DefaultPeriods
	}
	all := append([]Period(nil), periods...)
	starts := make(map[schedule.Clock]bool, len(all))
	for _, p := range all {
		starts[p.Start] = true
	}

	cells := make(map[cellKey]*Item, len(items))
	for i := range items {
		item := &items[i]
		start, err := schedule.ParseClock(item.StartTime)
		if err != nil {
			continue
		}
		cells[cellKey{day: item.DayOfWeek, start: start, classID: item.ClassID}] = item
		if !starts[start] {
			end, err := schedule.ParseClock(item.EndTime)
			if err != nil {
				end = start
			}
			starts[start] = true
			all = append(all, Period{Start: start, End: end})
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Start < all[j].Start })

	m := Matrix{Classes: classes}
	for day := schedule.FirstDay; day <= schedule.LastDay; day++ {
		block := Day{Day: day, Name: DayNames[day]}
		for _, p := range all {
			row := Row{Day: day, Period: p, Cells: make([]*Item, len(classes))}
			for ci, c := range classes {
				row.Cells[ci] = cells[cellKey{day: day, start: p.Start, classID: c.ID}]
			}
			block.Rows = append(block.Rows, row)
		}
		m.Days = append(m.Days, block)
	}
	return m
}
