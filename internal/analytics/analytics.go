// Package analytics rolls raw repository records into the dashboard's
// counters, breakdowns and day series. Nothing is materialized: every call
// recomputes from the store.
package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	appentity "github.com/ovaphlow/pitchfork/service-mfo-admin/internal/application/entity"
	mfoentity "github.com/ovaphlow/pitchfork/service-mfo-admin/internal/mfo/entity"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/store"
)

const (
	DefaultDays    = 7
	DefaultTopMFOs = 10
	dateLayout     = "2006-01-02"
)

type DayCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type MFOClicks struct {
	Name   string `json:"name"`
	Clicks int64  `json:"clicks"`
}

// Stats is the GET /api/stats payload.
type Stats struct {
	TotalUsers          int64   `json:"total_users"`
	TotalMFOs           int64   `json:"total_mfos"`
	TotalApplications   int64   `json:"total_applications"`
	TotalClicks         int64   `json:"total_clicks"`
	PendingApplications int64   `json:"pending_applications"`
	ConversionRate      float64 `json:"conversion_rate"`
}

// Report is the GET /api/analytics payload.
type Report struct {
	TotalUsers           int64            `json:"total_users"`
	TotalApplications    int64            `json:"total_applications"`
	TotalClicks          int64            `json:"total_clicks"`
	ApplicationsByStatus map[string]int64 `json:"applications_by_status"`
	UsersByDay           []DayCount       `json:"users_by_day"`
	ApplicationsByDay    []DayCount       `json:"applications_by_day"`
	ClicksByMFO          []MFOClicks      `json:"clicks_by_mfo"`
}

// Provider is implemented by Engine and by the caching decorator.
type Provider interface {
	Stats(ctx context.Context) (*Stats, error)
	Analytics(ctx context.Context) (*Report, error)
}

// Source is the read-only slice of the store the engine scans.
type Source interface {
	CountUsers(ctx context.Context) (int64, error)
	CountMFOs(ctx context.Context) (int64, error)
	CountClicks(ctx context.Context) (int64, error)
	CountApplicationsByStatus(ctx context.Context) (map[appentity.Status]int64, error)
	UserCreatedSince(ctx context.Context, since time.Time) ([]time.Time, error)
	ApplicationCreatedSince(ctx context.Context, since time.Time) ([]time.Time, error)
	ListMFOs(ctx context.Context, f store.MFOFilter) ([]mfoentity.MFO, error)
}

type Engine struct {
	src   Source
	clock clockwork.Clock
	loc   *time.Location
	days  int
	top   int
}

type Option func(*Engine)

func WithClock(c clockwork.Clock) Option { return func(e *Engine) { e.clock = c } }

// WithLocation sets the zone calendar days are bucketed in.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

func WithDays(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.days = n
		}
	}
}

// WithTopMFOs limits clicks_by_mfo; 0 or less means no limit.
func WithTopMFOs(n int) Option { return func(e *Engine) { e.top = n } }

func NewEngine(src Source, opts ...Option) *Engine {
	e := &Engine{
		src:   src,
		clock: clockwork.NewRealClock(),
		loc:   time.UTC,
		days:  DefaultDays,
		top:   DefaultTopMFOs,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

var _ Provider = (*Engine)(nil)

func (e *Engine) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	var err error
	if st.TotalUsers, err = e.src.CountUsers(ctx); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if st.TotalMFOs, err = e.src.CountMFOs(ctx); err != nil {
		return nil, fmt.Errorf("count mfos: %w", err)
	}
	if st.TotalClicks, err = e.src.CountClicks(ctx); err != nil {
		return nil, fmt.Errorf("count clicks: %w", err)
	}
	byStatus, err := e.src.CountApplicationsByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	st.TotalApplications = sumCounts(byStatus)
	st.PendingApplications = byStatus[appentity.StatusPending]
	st.ConversionRate = ConversionRate(st.TotalApplications, st.TotalClicks)
	return &st, nil
}

func (e *Engine) Analytics(ctx context.Context) (*Report, error) {
	var rep Report
	var err error
	if rep.TotalUsers, err = e.src.CountUsers(ctx); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if rep.TotalClicks, err = e.src.CountClicks(ctx); err != nil {
		return nil, fmt.Errorf("count clicks: %w", err)
	}
	byStatus, err := e.src.CountApplicationsByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	rep.TotalApplications = sumCounts(byStatus)
	rep.ApplicationsByStatus = StatusBreakdown(byStatus)

	start := e.windowStart()
	users, err := e.src.UserCreatedSince(ctx, start)
	if err != nil {
		return nil, fmt.Errorf("users by day: %w", err)
	}
	rep.UsersByDay = DaySeries(users, start, e.days, e.loc)

	apps, err := e.src.ApplicationCreatedSince(ctx, start)
	if err != nil {
		return nil, fmt.Errorf("applications by day: %w", err)
	}
	rep.ApplicationsByDay = DaySeries(apps, start, e.days, e.loc)

	mfos, err := e.src.ListMFOs(ctx, store.MFOFilter{})
	if err != nil {
		return nil, fmt.Errorf("clicks by mfo: %w", err)
	}
	rep.ClicksByMFO = RankByClicks(mfos, e.top)
	return &rep, nil
}

// windowStart is local midnight of the first day in the window that ends
// today.
func (e *Engine) windowStart() time.Time {
	now := e.clock.Now().In(e.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, e.loc)
	return today.AddDate(0, 0, -(e.days - 1))
}

// ConversionRate is applications per hundred clicks rounded to one
// decimal, or 0 when there are no clicks.
func ConversionRate(applications, clicks int64) float64 {
	if clicks <= 0 {
		return 0
	}
	return math.Round(float64(applications)/float64(clicks)*1000) / 10
}

// sumCounts derives the application total from the same snapshot as the
// breakdown, so the two always agree.
func sumCounts(counts map[appentity.Status]int64) int64 {
	var n int64
	for _, c := range counts {
		n += c
	}
	return n
}

// StatusBreakdown always carries every status key.
func StatusBreakdown(counts map[appentity.Status]int64) map[string]int64 {
	out := make(map[string]int64, len(appentity.Statuses))
	for _, s := range appentity.Statuses {
		out[string(s)] = counts[s]
	}
	return out
}

// DaySeries buckets timestamps into exactly days consecutive calendar days
// starting at start, zero-filling gaps. Timestamps outside the window are
// ignored.
func DaySeries(ts []time.Time, start time.Time, days int, loc *time.Location) []DayCount {
	counts := make(map[string]int64, days)
	for _, t := range ts {
		counts[t.In(loc).Format(dateLayout)]++
	}
	out := make([]DayCount, days)
	for i := range out {
		d := start.AddDate(0, 0, i).Format(dateLayout)
		out[i] = DayCount{Date: d, Count: counts[d]}
	}
	return out
}

// RankByClicks orders MFOs by their click counter, highest first, ties by
// id ascending. MFOs nobody clicked are left out.
func RankByClicks(mfos []mfoentity.MFO, limit int) []MFOClicks {
	ranked := make([]mfoentity.MFO, 0, len(mfos))
	for _, m := range mfos {
		if m.Clicks > 0 {
			ranked = append(ranked, m)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Clicks != ranked[j].Clicks {
			return ranked[i].Clicks > ranked[j].Clicks
		}
		return ranked[i].ID < ranked[j].ID
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]MFOClicks, len(ranked))
	for i, m := range ranked {
		out[i] = MFOClicks{Name: m.Name, Clicks: m.Clicks}
	}
	return out
}
