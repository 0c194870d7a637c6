package source

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/dgnsrekt/gas_chart/internal/chart"
)

type headline struct {
	Category string
	Source   string
	Title    string
}

var sampleHeadlines = []headline{
	{"LNG", "Reuters", "Freeport LNG output declines amid operational issue"},
	{"WEATHER", "NOAA", "Colder-than-normal forecast lifts heating demand expectations"},
	{"STORAGE", "EIA", "Weekly storage report surprises vs consensus estimates"},
	{"OUTAGES", "Pipeline Notice", "Major pipeline maintenance reduces capacity temporarily"},
	{"POLICY", "DOE", "Regulatory update prompts reassessment of LNG export outlook"},
	{"MACRO", "WSJ", "Risk sentiment shifts across commodities amid rate expectations"},
	{"LNG", "Bloomberg", "European gas firm; US LNG netbacks improve"},
	{"OTHER", "Industry", "Producer commentary highlights basin constraints into Q1"},
	{"WEATHER", "Private Met Desk", "HDD forecast revision increases near-term demand risk"},
	{"STORAGE", "Analyst Note", "Storage tightness narrative returns as injections lag average"},
}

// Sample generates a mean-reverting random walk and synthetic headlines. It
// needs no backend and is used for demos and tests.
type Sample struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewSample returns a generator seeded with seed. now may be nil.
func NewSample(seed int64, now func() time.Time) *Sample {
	if now == nil {
		now = time.Now
	}
	return &Sample{rng: rand.New(rand.NewSource(seed)), now: now}
}

func (s *Sample) Prices(ctx context.Context, q Query) ([]chart.PriceSample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pricesLocked(q), nil
}

// News places max(10, days/3) headlines uniformly over the window of a
// freshly generated price series, sorted by time.
func (s *Sample) News(ctx context.Context, q Query) ([]chart.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prices := s.pricesLocked(q)
	if len(prices) < 2 {
		return nil, nil
	}
	tMin, tMax := prices[0].T, prices[len(prices)-1].T
	count := max(10, RangeDays(q.Range)/3)

	events := make([]chart.Event, 0, count)
	for i := 0; i < count; i++ {
		h := sampleHeadlines[i%len(sampleHeadlines)]
		t := tMin + int64(s.rng.Float64()*float64(tMax-tMin))
		events = append(events, chart.Event{
			ID:       fmt.Sprintf("ev_%d_%d", i, t),
			T:        t,
			Category: h.Category,
			Source:   h.Source,
			Title:    h.Title,
			URL:      "#",
		})
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].T < events[j].T })
	return events, nil
}

func (s *Sample) pricesLocked(q Query) []chart.PriceSample {
	days := RangeDays(q.Range)
	perDay := 24
	if days <= 5 {
		perDay = 48
	}
	p := 2.75
	if q.Series == "" || q.Series == SeriesHenryHub {
		p = 2.55
	}

	n := days * perDay
	dt := int64(dayMillis / perDay)
	t0 := s.now().UnixMilli() - int64(days)*dayMillis

	out := make([]chart.PriceSample, 0, n)
	for i := 0; i < n; i++ {
		drift := (2.75 - p) * 0.002
		vol := 0.015 + 0.01*math.Sin(2*math.Pi*float64(i)/float64(perDay*7))
		p = math.Max(1.5, p+drift+vol*s.rng.NormFloat64())
		out = append(out, chart.PriceSample{T: t0 + int64(i)*dt, P: p})
	}
	return out
}
