package race

// RidersPerRace is the number of riders a race must have to be emitted
const RidersPerRace = 7

// ScheduleEntry identifies one race day of a meeting
type ScheduleEntry struct {
	Year  int    `json:"year"`
	Round string `json:"round"` // zero-padded, e.g. "07"
	Day   string `json:"day"`
	Date  string `json:"date"` // YYYYMMDD
}

// RaceBlock identifies one race within a day
type RaceBlock struct {
	Region     string `json:"region"`
	RaceNumber string `json:"race_number"` // zero-padded
	RaceKind   string `json:"race_kind"`
	StartTime  string `json:"start_time"`
}

// RiderRow holds a rider's roster attributes for one race
type RiderRow struct {
	Name         string
	Bib          string
	Cohort       string // training-school class, "" when unknown
	Age          string
	GearRatio    string
	Time200m     string
	TrainingSite string
	WinRate      string
	TopTwoRate   string
	TopThreeRate string
	PlacedStarts string
	Lead         string
	Overtake     string
	Chase        string
	Mark         string
	GradeChange  string
	Recent3Score string
	Recent3Rank  string
}

// TrainingRow holds a rider's training log for one race
type TrainingRow struct {
	Name             string
	TrainingDays     string
	TrainingPartners string
	TrainingNotes    string
}

// RecentFieldCount is the number of positional recent-performance fields
const RecentFieldCount = 15

// RecentPerformanceRow holds a rider's last three meetings plus the current one.
// Fields follow RecentColumns; the last field is optional and may be empty.
type RecentPerformanceRow struct {
	Name   string
	Fields [RecentFieldCount]string
}

// EntryMeta is the race/day metadata prepended to every entry record
type EntryMeta struct {
	Date  string
	Year  int
	Round string
	Day   string
	Block RaceBlock
}

// EntryRecord is one rider's merged race-card row.
// Training and Recent are nil when the rider had no row in that table.
type EntryRecord struct {
	EntryMeta
	Rider    RiderRow
	Training *TrainingRow
	Recent   *RecentPerformanceRow
}

// Placement holds the riders sharing one finishing position.
// Multiple riders (dead heat) are joined with "/".
type Placement struct {
	Bibs  string
	Names string
}

// PayoutCount is the number of payout columns in a result row
const PayoutCount = 6

// ResultRow is one finished race in wide form
type ResultRow struct {
	Year      int
	Round     string
	Day       string
	RaceLabel string // region name followed by race number, e.g. "광명01"
	Places    [3]Placement
	Payouts   [PayoutCount]string
}

// RankedResult is one placed rider of one race
type RankedResult struct {
	Year       int
	Round      string
	Day        string
	Region     string
	RaceNumber string
	Bib        string
	Rank       int
}

// AnnotatedEntry is an entry record with its finishing rank, nil when unplaced
type AnnotatedEntry struct {
	EntryRecord
	Rank *int
}
