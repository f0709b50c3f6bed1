package enrich

import "time"

// modelEntry is one row of the curated frontier-model timeline, ordered by
// release date.
type modelEntry struct {
	name     string
	released time.Time
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// frontierModels is the curated history of the most capable publicly known
// model over time. Entries must stay sorted by release date.
var frontierModels = []modelEntry{
	{"GPT-2", date(2019, time.February, 14)},
	{"GPT-3", date(2020, time.June, 11)},
	{"PaLM", date(2022, time.April, 4)},
	{"ChatGPT (GPT-3.5)", date(2022, time.November, 30)},
	{"GPT-4", date(2023, time.March, 14)},
	{"Gemini Ultra", date(2023, time.December, 6)},
	{"Claude 3 Opus", date(2024, time.March, 4)},
	{"GPT-4o", date(2024, time.May, 13)},
	{"OpenAI o1", date(2024, time.September, 12)},
	{"Claude 3.5 Sonnet", date(2024, time.October, 22)},
	{"OpenAI o3", date(2025, time.April, 16)},
	{"Claude Opus 4", date(2025, time.May, 22)},
	{"GPT-5", date(2025, time.August, 7)},
}

// ModelAtDate returns the name of the most advanced publicly known model at
// the given date: the last timeline entry released on or before it. Dates
// before the first entry return the earliest model and dates after the last
// entry return the most recent one, so the function is total and monotonic.
func ModelAtDate(t time.Time) string {
	current := frontierModels[0].name
	for _, m := range frontierModels {
		if m.released.After(t) {
			break
		}
		current = m.name
	}
	return current
}

// snapshot is one row of the curated benchmark/market history. A row applies
// from its date until the next row's date.
type snapshot struct {
	from time.Time

	benchmarkName  string
	benchmarkScore float64

	// Approximate quarter-end closing prices, split-adjusted.
	nvda float64
	msft float64
	goog float64

	milestone string
}

// snapshots is ordered by date. Coverage starts mid-2020; claims before that
// get no benchmark or market context.
var snapshots = []snapshot{
	{
		from:           date(2020, time.July, 1),
		benchmarkName:  "MMLU",
		benchmarkScore: 43.9,
		nvda:           13.1, msft: 210.3, goog: 72.6,
		milestone: "GPT-3 few-shot learning",
	},
	{
		from:           date(2022, time.April, 1),
		benchmarkName:  "MMLU",
		benchmarkScore: 67.5,
		nvda:           18.6, msft: 256.8, goog: 109.2,
	},
	{
		from:           date(2022, time.December, 1),
		benchmarkName:  "MMLU",
		benchmarkScore: 70.1,
		nvda:           14.6, msft: 239.8, goog: 88.2,
		milestone: "ChatGPT reaches 1M users in 5 days",
	},
	{
		from:           date(2023, time.March, 14),
		benchmarkName:  "MMLU",
		benchmarkScore: 86.4,
		nvda:           27.8, msft: 288.3, goog: 104.0,
		milestone: "GPT-4 passes the bar exam",
	},
	{
		from:           date(2023, time.December, 6),
		benchmarkName:  "MMLU",
		benchmarkScore: 90.0,
		nvda:           49.5, msft: 376.0, goog: 139.7,
	},
	{
		from:           date(2024, time.September, 12),
		benchmarkName:  "GPQA Diamond",
		benchmarkScore: 78.0,
		nvda:           121.4, msft: 430.3, goog: 165.9,
		milestone: "o1 reasons at PhD level on science benchmarks",
	},
	{
		from:           date(2025, time.April, 16),
		benchmarkName:  "GPQA Diamond",
		benchmarkScore: 87.7,
		nvda:           104.5, msft: 371.6, goog: 153.3,
	},
	{
		from:           date(2025, time.August, 7),
		benchmarkName:  "GPQA Diamond",
		benchmarkScore: 89.4,
		nvda:           180.0, msft: 522.0, goog: 195.1,
		milestone: "GPT-5 launches",
	},
}

// snapshotAtDate returns the snapshot row in effect at the given date, or nil
// when the date predates coverage.
func snapshotAtDate(t time.Time) *snapshot {
	var current *snapshot
	for i := range snapshots {
		if snapshots[i].from.After(t) {
			break
		}
		current = &snapshots[i]
	}
	return current
}
