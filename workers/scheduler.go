package workers

import (
	"context"
	"log"
	"time"

	"tournament-dashboard/metrics"
	"tournament-dashboard/models"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// Scheduler runs periodic housekeeping: tournament status advances and
// removal of expired sessions and verification tokens.
type Scheduler struct {
	db       *gorm.DB
	interval time.Duration
	now      func() time.Time
	sched    gocron.Scheduler
}

func NewScheduler(db *gorm.DB, interval time.Duration) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	s := &Scheduler{db: db, interval: interval, now: time.Now, sched: sched}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.Tick),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	log.Printf("⏱️ [Scheduler] running every %s", s.interval)
	s.sched.Start()
}

func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}

// Tick runs one housekeeping pass.
func (s *Scheduler) Tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	now := s.now().UTC()
	if n, err := AdvanceTournaments(ctx, s.db, now); err != nil {
		log.Printf("[Scheduler] advance tournaments: %v", err)
	} else if n > 0 {
		log.Printf("✅ [Scheduler] advanced %d tournament(s)", n)
	}
	if err := PurgeExpired(ctx, s.db, now); err != nil {
		log.Printf("[Scheduler] purge expired: %v", err)
	}
}

// NextStatus returns the status t should have at now, moving only forward
// from UPCOMING or ONGOING. ok is false when nothing changes.
func NextStatus(t *models.Tournament, now time.Time) (models.TournamentStatus, bool) {
	if t.Status != models.TournamentUpcoming && t.Status != models.TournamentOngoing {
		return t.Status, false
	}
	start, err := t.StartsAt()
	if err != nil {
		return t.Status, false
	}
	end, err := t.EndsAt()
	if err != nil {
		return t.Status, false
	}

	next := t.Status
	switch {
	case !now.Before(end):
		next = models.TournamentCompleted
	case !now.Before(start):
		next = models.TournamentOngoing
	}
	return next, next != t.Status
}

// AdvanceTournaments applies NextStatus to every open tournament that has
// started. Rows edited concurrently are left alone.
func AdvanceTournaments(ctx context.Context, db *gorm.DB, now time.Time) (int, error) {
	var open []models.Tournament
	err := db.WithContext(ctx).
		Where("status IN ? AND start_date <= ?", []models.TournamentStatus{models.TournamentUpcoming, models.TournamentOngoing}, now).
		Find(&open).Error
	if err != nil {
		return 0, err
	}

	advanced := 0
	for i := range open {
		t := &open[i]
		next, ok := NextStatus(t, now)
		if !ok {
			continue
		}
		res := db.WithContext(ctx).Model(&models.Tournament{}).
			Where("id = ? AND status = ?", t.ID, t.Status).
			Update("status", next)
		if res.Error != nil {
			log.Printf("[Scheduler] failed to advance tournament %s: %v", t.ID, res.Error)
			continue
		}
		if res.RowsAffected == 1 {
			advanced++
			metrics.TournamentAdvances.WithLabelValues(string(next)).Inc()
			log.Printf("🏁 [Scheduler] %s: %s -> %s", t.Name, t.Status, next)
		}
	}
	return advanced, nil
}

// PurgeExpired deletes sessions and verification tokens past their expiry.
func PurgeExpired(ctx context.Context, db *gorm.DB, now time.Time) error {
	sessions := db.WithContext(ctx).Where("expires < ?", now).Delete(&models.Session{})
	if sessions.Error != nil {
		return sessions.Error
	}
	tokens := db.WithContext(ctx).Where("expires < ?", now).Delete(&models.VerificationToken{})
	if tokens.Error != nil {
		return tokens.Error
	}
	if sessions.RowsAffected+tokens.RowsAffected > 0 {
		log.Printf("🧹 [Scheduler] purged %d session(s), %d verification token(s)", sessions.RowsAffected, tokens.RowsAffected)
	}
	return nil
}
