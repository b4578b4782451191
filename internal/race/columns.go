package race

import (
	"fmt"
	"strconv"
)

// Column maps one dataset column to a field of T
type Column[T any] struct {
	Name string
	get  func(*T) string
	set  func(*T, string) error
}

// Schema is the ordered column list of a dataset
type Schema[T any] []Column[T]

// Header returns the column names in order
func (s Schema[T]) Header() []string {
	header := make([]string, len(s))
	for i, c := range s {
		header[i] = c.Name
	}
	return header
}

// Encode returns the header followed by one row per value
func (s Schema[T]) Encode(values []T) [][]string {
	records := make([][]string, 0, len(values)+1)
	records = append(records, s.Header())
	for i := range values {
		row := make([]string, len(s))
		for j, c := range s {
			row[j] = c.get(&values[i])
		}
		records = append(records, row)
	}
	return records
}

// Decode parses records whose first row is a header. Columns are matched by
// name, so extra columns and a different order are accepted; a missing
// column is an error.
func (s Schema[T]) Decode(records [][]string) ([]T, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("missing header row")
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[name] = i
	}
	positions := make([]int, len(s))
	for i, c := range s {
		pos, ok := index[c.Name]
		if !ok {
			return nil, fmt.Errorf("missing column %q", c.Name)
		}
		positions[i] = pos
	}

	values := make([]T, 0, len(records)-1)
	for n, row := range records[1:] {
		var v T
		for i, c := range s {
			cell := ""
			if positions[i] < len(row) {
				cell = row[positions[i]]
			}
			if err := c.set(&v, cell); err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", n+1, c.Name, err)
			}
		}
		values = append(values, v)
	}
	return values, nil
}

func stringColumn[T any](name string, field func(*T) *string) Column[T] {
	return Column[T]{
		Name: name,
		get:  func(v *T) string { return *field(v) },
		set: func(v *T, s string) error {
			*field(v) = s
			return nil
		},
	}
}

func intColumn[T any](name string, field func(*T) *int) Column[T] {
	return Column[T]{
		Name: name,
		get:  func(v *T) string { return strconv.Itoa(*field(v)) },
		set: func(v *T, s string) error {
			n, err := strconv.Atoi(s)
			if err != nil {
				return fmt.Errorf("parsing integer: %w", err)
			}
			*field(v) = n
			return nil
		},
	}
}

// RecentColumns names the positional fields of RecentPerformanceRow
var RecentColumns = [RecentFieldCount]string{
	"최근3_장소일자", "최근3_1일", "최근3_2일", "최근3_3일",
	"최근2_장소일자", "최근2_1일", "최근2_2일", "최근2_3일",
	"최근1_장소일자", "최근1_1일", "최근1_2일", "최근1_3일",
	"금회_1일", "금회_2일", "금회_3일",
}

// trainingColumn reads through a possibly nil Training row and allocates one
// on the first non-empty value
func trainingColumn(name string, field func(*TrainingRow) *string) Column[EntryRecord] {
	return Column[EntryRecord]{
		Name: name,
		get: func(e *EntryRecord) string {
			if e.Training == nil {
				return ""
			}
			return *field(e.Training)
		},
		set: func(e *EntryRecord, s string) error {
			if e.Training == nil {
				if s == "" {
					return nil
				}
				e.Training = &TrainingRow{Name: e.Rider.Name}
			}
			*field(e.Training) = s
			return nil
		},
	}
}

func recentColumn(i int) Column[EntryRecord] {
	return Column[EntryRecord]{
		Name: RecentColumns[i],
		get: func(e *EntryRecord) string {
			if e.Recent == nil {
				return ""
			}
			return e.Recent.Fields[i]
		},
		set: func(e *EntryRecord, s string) error {
			if e.Recent == nil {
				if s == "" {
					return nil
				}
				e.Recent = &RecentPerformanceRow{Name: e.Rider.Name}
			}
			e.Recent.Fields[i] = s
			return nil
		},
	}
}

// EntrySchema is the column layout of the entry dataset
var EntrySchema = buildEntrySchema()

func buildEntrySchema() Schema[EntryRecord] {
	s := Schema[EntryRecord]{
		stringColumn("날짜", func(e *EntryRecord) *string { return &e.Date }),
		intColumn("연도", func(e *EntryRecord) *int { return &e.Year }),
		stringColumn("회차", func(e *EntryRecord) *string { return &e.Round }),
		stringColumn("일차", func(e *EntryRecord) *string { return &e.Day }),
		stringColumn("경주지역", func(e *EntryRecord) *string { return &e.Block.Region }),
		stringColumn("경주번호", func(e *EntryRecord) *string { return &e.Block.RaceNumber }),
		stringColumn("경주종류", func(e *EntryRecord) *string { return &e.Block.RaceKind }),
		stringColumn("경주시간", func(e *EntryRecord) *string { return &e.Block.StartTime }),
		stringColumn("이름", func(e *EntryRecord) *string { return &e.Rider.Name }),
		stringColumn("번호", func(e *EntryRecord) *string { return &e.Rider.Bib }),
		stringColumn("기수", func(e *EntryRecord) *string { return &e.Rider.Cohort }),
		stringColumn("나이", func(e *EntryRecord) *string { return &e.Rider.Age }),
		stringColumn("기어배수", func(e *EntryRecord) *string { return &e.Rider.GearRatio }),
		stringColumn("200m", func(e *EntryRecord) *string { return &e.Rider.Time200m }),
		stringColumn("훈련지", func(e *EntryRecord) *string { return &e.Rider.TrainingSite }),
		stringColumn("승률", func(e *EntryRecord) *string { return &e.Rider.WinRate }),
		stringColumn("연대율", func(e *EntryRecord) *string { return &e.Rider.TopTwoRate }),
		stringColumn("삼연대율", func(e *EntryRecord) *string { return &e.Rider.TopThreeRate }),
		stringColumn("입상/출전", func(e *EntryRecord) *string { return &e.Rider.PlacedStarts }),
		stringColumn("선행", func(e *EntryRecord) *string { return &e.Rider.Lead }),
		stringColumn("젖히기", func(e *EntryRecord) *string { return &e.Rider.Overtake }),
		stringColumn("추입", func(e *EntryRecord) *string { return &e.Rider.Chase }),
		stringColumn("마크", func(e *EntryRecord) *string { return &e.Rider.Mark }),
		stringColumn("등급조정", func(e *EntryRecord) *string { return &e.Rider.GradeChange }),
		stringColumn("최근3득점", func(e *EntryRecord) *string { return &e.Rider.Recent3Score }),
		stringColumn("최근3순위", func(e *EntryRecord) *string { return &e.Rider.Recent3Rank }),
		trainingColumn("훈련일수", func(t *TrainingRow) *string { return &t.TrainingDays }),
		trainingColumn("훈련동참자", func(t *TrainingRow) *string { return &t.TrainingPartners }),
		trainingColumn("훈련내용", func(t *TrainingRow) *string { return &t.TrainingNotes }),
	}
	for i := range RecentColumns {
		s = append(s, recentColumn(i))
	}
	return s
}

// ResultSchema is the column layout of the result dataset
var ResultSchema = buildResultSchema()

// PayoutColumns names the six payout columns in table order
var PayoutColumns = [PayoutCount]string{"연승식", "쌍승식", "복승식", "삼복승식", "쌍복승식", "삼쌍승식"}

func buildResultSchema() Schema[ResultRow] {
	s := Schema[ResultRow]{
		intColumn("연도", func(r *ResultRow) *int { return &r.Year }),
		stringColumn("회차", func(r *ResultRow) *string { return &r.Round }),
		stringColumn("일차", func(r *ResultRow) *string { return &r.Day }),
		stringColumn("경주", func(r *ResultRow) *string { return &r.RaceLabel }),
	}
	for i := range 3 {
		s = append(s,
			stringColumn(fmt.Sprintf("%d착 번호", i+1), func(r *ResultRow) *string { return &r.Places[i].Bibs }),
			stringColumn(fmt.Sprintf("%d착 이름", i+1), func(r *ResultRow) *string { return &r.Places[i].Names }),
		)
	}
	for i, name := range PayoutColumns {
		s = append(s, stringColumn(name, func(r *ResultRow) *string { return &r.Payouts[i] }))
	}
	return s
}

// AnnotatedSchema is the entry layout followed by the rank column
var AnnotatedSchema = buildAnnotatedSchema()

func buildAnnotatedSchema() Schema[AnnotatedEntry] {
	s := make(Schema[AnnotatedEntry], 0, len(EntrySchema)+1)
	for _, c := range EntrySchema {
		s = append(s, Column[AnnotatedEntry]{
			Name: c.Name,
			get:  func(a *AnnotatedEntry) string { return c.get(&a.EntryRecord) },
			set:  func(a *AnnotatedEntry, v string) error { return c.set(&a.EntryRecord, v) },
		})
	}
	return append(s, Column[AnnotatedEntry]{
		Name: "rank",
		get: func(a *AnnotatedEntry) string {
			if a.Rank == nil {
				return ""
			}
			return strconv.Itoa(*a.Rank)
		},
		set: func(a *AnnotatedEntry, v string) error {
			if v == "" {
				return nil
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("parsing rank: %w", err)
			}
			a.Rank = &n
			return nil
		},
	})
}
