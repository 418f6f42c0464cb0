package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tournament-dashboard/metrics"
	"tournament-dashboard/models"
	"tournament-dashboard/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Profile is one entry of the identity provider's profile feed.
type Profile struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	Name            *string    `json:"name,omitempty"`
	Image           *string    `json:"image,omitempty"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ProfileChanges is the top-level feed response.
type ProfileChanges struct {
	Users []Profile `json:"users"`
}

// IdentitySyncWorker mirrors profile changes from the identity provider into
// the users table, keyed on email. Roles are managed locally and never
// taken from the feed.
type IdentitySyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string
	endpointPath string
	serviceToken string
	httpClient   *http.Client
	since        time.Time
}

func NewIdentitySyncWorker(db *gorm.DB, baseURL, endpointPath, serviceToken string, interval time.Duration) *IdentitySyncWorker {
	return &IdentitySyncWorker{
		db:           db,
		interval:     interval,
		baseURL:      baseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient:   utils.HTTPClient,
	}
}

func (w *IdentitySyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting identity sync worker (identity provider → users)…")
	go w.run(ctx)
}

func (w *IdentitySyncWorker) run(ctx context.Context) {
	w.syncOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			w.syncOnce(ctx)
		case <-ctx.Done():
			log.Println("⏹️ Identity sync worker stopped")
			return
		}
	}
}

func (w *IdentitySyncWorker) syncOnce(ctx context.Context) {
	profiles, err := w.fetch(ctx, w.since)
	if err != nil {
		metrics.IdentitySyncs.WithLabelValues("error").Inc()
		log.Printf("❌ [SYNC] fetch failed: %v", err)
		return
	}
	outcomes := w.apply(ctx, profiles)
	w.since = nextCursor(w.since, outcomes)
	if failedCount(outcomes) > 0 {
		metrics.IdentitySyncs.WithLabelValues("error").Inc()
		return
	}
	metrics.IdentitySyncs.WithLabelValues("ok").Inc()
}

// fetch requests profile changes since the given instant.
func (w *IdentitySyncWorker) fetch(ctx context.Context, since time.Time) ([]Profile, error) {
	base, err := url.Parse(w.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid identity sync URL %q: %w", w.baseURL, err)
	}
	endpoint := base.JoinPath(w.endpointPath)
	q := endpoint.Query()
	q.Set("since", since.UTC().Format(time.RFC3339))
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to identity provider failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("identity provider returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var changes ProfileChanges
	if err := json.NewDecoder(resp.Body).Decode(&changes); err != nil {
		return nil, fmt.Errorf("failed to decode profile feed: %w", err)
	}
	return changes.Users, nil
}

// userFromProfile maps a feed entry onto a new local user. ok is false for
// entries without a usable email.
func userFromProfile(p Profile) (models.User, bool) {
	email := strings.ToLower(strings.TrimSpace(p.Email))
	if email == "" || !strings.Contains(email, "@") {
		return models.User{}, false
	}
	return models.User{
		ID:            uuid.NewString(),
		Email:         email,
		Name:          p.Name,
		Image:         p.Image,
		EmailVerified: p.EmailVerifiedAt,
		Role:          models.RoleUser,
	}, true
}

// syncOutcome records whether one feed entry was applied. Skipped entries
// count as applied since retrying them cannot succeed.
type syncOutcome struct {
	UpdatedAt time.Time
	Failed    bool
}

// nextCursor returns the newest UpdatedAt that can be passed without losing
// a failed entry. Entries at or after the earliest failure are fetched
// again on the next run; the upsert makes replays harmless.
func nextCursor(since time.Time, outcomes []syncOutcome) time.Time {
	var earliestFailed time.Time
	for _, o := range outcomes {
		if o.Failed && (earliestFailed.IsZero() || o.UpdatedAt.Before(earliestFailed)) {
			earliestFailed = o.UpdatedAt
		}
	}

	next := since
	for _, o := range outcomes {
		if o.Failed || !o.UpdatedAt.After(next) {
			continue
		}
		if !earliestFailed.IsZero() && !o.UpdatedAt.Before(earliestFailed) {
			continue
		}
		next = o.UpdatedAt
	}
	// The feed filters at second precision.
	if !earliestFailed.IsZero() {
		if limit := earliestFailed.Truncate(time.Second).Add(-time.Second); next.After(limit) {
			next = limit
		}
		if next.Before(since) {
			next = since
		}
	}
	return next
}

func failedCount(outcomes []syncOutcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Failed {
			n++
		}
	}
	return n
}

// apply upserts profiles and reports the outcome of each.
func (w *IdentitySyncWorker) apply(ctx context.Context, profiles []Profile) []syncOutcome {
	outcomes := make([]syncOutcome, 0, len(profiles))
	upserted, skipped := 0, 0
	for _, p := range profiles {
		u, ok := userFromProfile(p)
		if !ok {
			skipped++
			outcomes = append(outcomes, syncOutcome{UpdatedAt: p.UpdatedAt})
			continue
		}
		err := w.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "image", "email_verified", "updated_at"}),
		}).Create(&u).Error
		if err != nil {
			log.Printf("[SYNC] ⚠️ Failed to upsert user %q: %v", u.Email, err)
			outcomes = append(outcomes, syncOutcome{UpdatedAt: p.UpdatedAt, Failed: true})
			continue
		}
		upserted++
		outcomes = append(outcomes, syncOutcome{UpdatedAt: p.UpdatedAt})
	}

	if len(profiles) > 0 {
		log.Printf("[SYNC] ✅ %d profile(s): %d upserted, %d skipped, %d errors", len(profiles), upserted, skipped, failedCount(outcomes))
	}
	return outcomes
}
