package services

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/mindmate/mindmate-backend/internal/models"
)

type MoodService struct {
	sqlStore
	now   func() time.Time
	cache *CacheService
}

func NewMoodService(db *sql.DB, driver string) *MoodService {
	return &MoodService{sqlStore: sqlStore{db: db, driver: driver}, now: time.Now}
}

// WithCache caches Stats results in Redis until the user's next write.
func (s *MoodService) WithCache(c *CacheService) *MoodService {
	s.cache = c
	return s
}

// statsKey is scoped to the current day because the streak depends on it.
func (s *MoodService) statsKey(userID int64, period models.Period) string {
	return CacheKey("mood_stats", fmt.Sprintf("%d:%s:%s", userID, period, s.clock().Format(time.DateOnly)))
}

func (s *MoodService) invalidateStats(ctx context.Context, userID int64) {
	if s.cache == nil {
		return
	}
	keys := make([]string, 0, 4)
	for _, p := range []models.Period{models.PeriodAll, models.PeriodDay, models.PeriodWeek, models.PeriodMonth} {
		keys = append(keys, s.statsKey(userID, p))
	}
	_ = s.cache.Delete(ctx, keys...)
}

func (s *MoodService) clock() time.Time {
	return s.now().UTC().Truncate(time.Second)
}

// List returns the user's mood logs within period, newest first.
// limit <= 0 means no limit.
func (s *MoodService) List(ctx context.Context, userID int64, period models.Period, limit int) ([]models.MoodLog, error) {
	query := `SELECT id, user_id, mood_level, notes, logged_at FROM mood_logs WHERE user_id = ?`
	args := []any{userID}
	if from, to, ok := period.Range(s.clock()); ok {
		query += ` AND logged_at >= ? AND logged_at < ?`
		args = append(args, from, to)
	}
	query += ` ORDER BY logged_at DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list mood logs: %w", err)
	}
	defer rows.Close()

	logs := []models.MoodLog{}
	for rows.Next() {
		var m models.MoodLog
		if err := rows.Scan(&m.ID, &m.UserID, &m.MoodLevel, &m.Notes, &m.LoggedAt); err != nil {
			return nil, fmt.Errorf("scan mood log: %w", err)
		}
		m.Mood = models.MoodName(m.MoodLevel)
		logs = append(logs, m)
	}
	return logs, rows.Err()
}

// Create stores the level as given; only the derived name is clamped.
func (s *MoodService) Create(ctx context.Context, userID int64, level int, notes string) (*models.MoodLog, error) {
	m, err := s.insert(ctx, userID, level, notes, s.clock())
	if err == nil {
		s.invalidateStats(ctx, userID)
	}
	return m, err
}

func (s *MoodService) insert(ctx context.Context, userID int64, level int, notes string, at time.Time) (*models.MoodLog, error) {
	m := &models.MoodLog{UserID: userID, MoodLevel: level, Notes: notes, LoggedAt: at, Mood: models.MoodName(level)}
	err := s.db.QueryRowContext(ctx, s.q(`
		INSERT INTO mood_logs (user_id, mood_level, notes, logged_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`), userID, level, notes, at).Scan(&m.ID)
	if err != nil {
		return nil, fmt.Errorf("insert mood log: %w", err)
	}
	return m, nil
}

// Update changes a log only if userID owns it; otherwise ErrNotFound.
func (s *MoodService) Update(ctx context.Context, userID, id int64, level int, notes string) error {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE mood_logs SET mood_level = ?, notes = ? WHERE id = ? AND user_id = ?`), level, notes, id, userID)
	if err != nil {
		return fmt.Errorf("update mood log: %w", err)
	}
	if err := affectedOne(res); err != nil {
		return err
	}
	s.invalidateStats(ctx, userID)
	return nil
}

// Delete removes a log only if userID owns it; otherwise ErrNotFound.
func (s *MoodService) Delete(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM mood_logs WHERE id = ? AND user_id = ?`), id, userID)
	if err != nil {
		return fmt.Errorf("delete mood log: %w", err)
	}
	if err := affectedOne(res); err != nil {
		return err
	}
	s.invalidateStats(ctx, userID)
	return nil
}

// Stats summarises the period. The streak always looks at the whole
// history: consecutive UTC days with a log, ending today, or yesterday when
// nothing has been logged yet today.
func (s *MoodService) Stats(ctx context.Context, userID int64, period models.Period) (*models.MoodStats, error) {
	var key string
	if s.cache != nil {
		key = s.statsKey(userID, period)
		var cached models.MoodStats
		if s.cache.Get(ctx, key, &cached) {
			return &cached, nil
		}
	}

	logs, err := s.List(ctx, userID, period, 0)
	if err != nil {
		return nil, err
	}

	stats := &models.MoodStats{Period: period, Count: len(logs), Distribution: map[string]int{}}
	for _, name := range models.MoodNames() {
		stats.Distribution[name] = 0
	}
	sum := 0
	for _, m := range logs {
		sum += m.MoodLevel
		stats.Distribution[m.Mood]++
	}
	if len(logs) > 0 {
		avg := float64(sum) / float64(len(logs))
		stats.Average = math.Round(avg*100) / 100
		stats.AverageMood = models.MoodName(int(math.Round(avg)))
	}

	history := logs
	if period != models.PeriodAll {
		if history, err = s.List(ctx, userID, models.PeriodAll, 0); err != nil {
			return nil, err
		}
	}
	stats.StreakDays = streak(history, s.clock())

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, stats, StatsCacheTTL)
	}
	return stats, nil
}

func streak(logs []models.MoodLog, now time.Time) int {
	days := make(map[string]bool, len(logs))
	for _, m := range logs {
		days[m.LoggedAt.UTC().Format(time.DateOnly)] = true
	}
	day := now.UTC()
	if !days[day.Format(time.DateOnly)] {
		day = day.AddDate(0, 0, -1)
	}
	n := 0
	for days[day.Format(time.DateOnly)] {
		n++
		day = day.AddDate(0, 0, -1)
	}
	return n
}

// SeedMock inserts one mood log per day for the last days days, ending
// today, with a gently varying level. Used to populate demo accounts.
func (s *MoodService) SeedMock(ctx context.Context, userID int64, days int, rnd *rand.Rand) (int, error) {
	notes := []string{
		"Had a rough morning but the afternoon got better.",
		"Felt a bit low and tired today.",
		"An ordinary day, nothing special.",
		"Went for a walk and felt good afterwards.",
		"Great day with friends, feeling amazing!",
	}
	now := s.clock()
	level := 3
	inserted := 0
	for i := days - 1; i >= 0; i-- {
		level += rnd.IntN(3) - 1
		level = min(max(level, models.MinMoodLevel), models.MaxMoodLevel)
		at := now.AddDate(0, 0, -i).Add(-time.Duration(rnd.IntN(8)) * time.Hour)
		if _, err := s.insert(ctx, userID, level, notes[level-1], at); err != nil {
			return inserted, err
		}
		inserted++
	}
	s.invalidateStats(ctx, userID)
	return inserted, nil
}
