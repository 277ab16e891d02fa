package intake

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// RecordParser turns one raw export row into a record. Implementations encode
// the column contract of a particular spreadsheet export.
type RecordParser interface {
	Parse(line string) (ClientRecord, bool)
}

// Layout is the offset table relative to the gender pivot column.
type Layout struct {
	Name        int
	Birth       int
	Phone       int
	Location    int
	Job         int
	Height      int
	Education   int
	Income      int
	Smoking     int
	Religion    int
	Personality int

	// ScanStart is the first column (relative to the pivot) that may hold
	// selected conditions or preference values.
	ScanStart int
	// Lookback is how many columns before the condition column preference
	// values may appear.
	Lookback int
}

// DefaultLayout matches the consultation survey export.
var DefaultLayout = Layout{
	Name:        -1,
	Birth:       1,
	Phone:       2,
	Location:    3,
	Job:         4,
	Height:      5,
	Education:   6,
	Income:      7,
	Smoking:     8,
	Religion:    11,
	Personality: 26,
	ScanStart:   5,
	Lookback:    10,
}

// TabularParser locates fields by offset from the gender pivot and infers the
// shifting condition and preference columns by content.
type TabularParser struct {
	layout Layout

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// NewTabularParser returns a parser for the given layout.
func NewTabularParser(layout Layout) *TabularParser {
	return &TabularParser{
		layout:  layout,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
		now:     time.Now,
	}
}

// Parse returns false for rows without a gender pivot or a name. Header rows
// and blank lines fall out here.
func (p *TabularParser) Parse(line string) (ClientRecord, bool) {
	fields := strings.Split(strings.TrimRight(line, "\r"), "\t")
	g := findPivot(fields)
	if g < 0 {
		return ClientRecord{}, false
	}

	at := func(offset int) string { return fieldAt(fields, g+offset) }

	rec := ClientRecord{
		Group:           strings.TrimSpace(fieldAt(fields, 0)),
		Name:            at(p.layout.Name),
		Gender:          Gender(at(0)),
		BirthToken:      at(p.layout.Birth),
		Phone:           at(p.layout.Phone),
		Location:        at(p.layout.Location),
		Job:             at(p.layout.Job),
		Height:          at(p.layout.Height),
		Education:       at(p.layout.Education),
		Income:          at(p.layout.Income),
		Smoking:         at(p.layout.Smoking),
		Religion:        at(p.layout.Religion),
		PersonalityNote: at(p.layout.Personality),
	}
	if rec.Name == "" {
		return ClientRecord{}, false
	}
	if rec.Group == "" {
		rec.Group = DefaultGroup
	}
	if rec.Religion == "" {
		rec.Religion = NonReligious
	}

	scanStart := g + p.layout.ScanStart
	condIdx := findConditionColumn(fields, scanStart)
	if condIdx >= 0 {
		rec.SelectedConditionsRaw = strings.TrimSpace(fields[condIdx])
	}
	rec.SelectedConditions = SplitConditions(rec.SelectedConditionsRaw)

	prefStart := scanStart
	if condIdx >= 0 && condIdx-p.layout.Lookback > prefStart {
		prefStart = condIdx - p.layout.Lookback
	}
	prefs := inferPreferences(fields, prefStart, condIdx, g+p.layout.Height, rec.BirthToken)
	rec.PreferredAgeText = prefs.age
	rec.PreferredHeightText = prefs.height
	rec.PreferredSmokingText = prefs.smoking
	rec.PreferredIncomeText = prefs.income
	rec.PreferredEducationText = prefs.education
	rec.PriorityWeightsText = prefs.weights

	rec.ID = p.nextID()
	return rec, true
}

func (p *TabularParser) nextID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(p.now()), p.entropy).String()
}

// BatchStats summarizes one ParseBatch call.
type BatchStats struct {
	Rows    int `json:"rows"`
	Parsed  int `json:"parsed"`
	Dropped int `json:"dropped"`
}

// ParseBatch parses a multi-line export. Blank lines are not counted as rows.
func ParseBatch(parser RecordParser, text string) ([]ClientRecord, BatchStats) {
	var (
		records []ClientRecord
		stats   BatchStats
	)
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		stats.Rows++
		rec, ok := parser.Parse(line)
		if !ok {
			stats.Dropped++
			continue
		}
		records = append(records, rec)
	}
	stats.Parsed = len(records)
	return records, stats
}

func findPivot(fields []string) int {
	for i, f := range fields {
		switch Gender(strings.TrimSpace(f)) {
		case GenderMale, GenderFemale:
			return i
		}
	}
	return -1
}

func fieldAt(fields []string, idx int) string {
	if idx < 0 || idx >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[idx])
}
