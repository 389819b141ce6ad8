package service

import (
	"context"
	"log/slog"
	"time"

	"nearby/internal/domain"
	"nearby/internal/dto"
	"nearby/internal/store"
)

const DefaultActiveWindow = time.Hour

type PresenceService struct {
	store    *store.Store
	sessions SessionDirectory
	window   time.Duration
	now      func() time.Time
}

func NewPresenceService(st *store.Store, sessions SessionDirectory, window time.Duration) *PresenceService {
	if window <= 0 {
		window = DefaultActiveWindow
	}
	return &PresenceService{store: st, sessions: sessions, window: window, now: time.Now}
}

// UpdateLocation overwrites the stored position and stamps last-active.
// No range validation on lat/lng. The broadcast goes to every live
// session system-wide, and only after the write succeeds.
func (p *PresenceService) UpdateLocation(ctx context.Context, userID int64, lat, lng float64) error {
	if userID <= 0 {
		return domain.ErrValidation
	}
	if err := p.store.Users().UpdatePosition(ctx, userID, lat, lng, p.now().UnixMilli()); err != nil {
		return err
	}
	ev := dto.Event{Type: dto.EventLocationUpdate, Data: dto.LocationUpdatePayload{
		UserID: userID,
		Lat:    lat,
		Lng:    lng,
	}}
	for _, s := range p.sessions.All() {
		if !s.Send(ev) {
			slog.Debug("location_update dropped", "user_id", userID)
		}
	}
	return nil
}

// ListActive approximates "nearby" by recency rather than distance:
// everyone whose last report falls strictly inside the active window.
// Users who never reported a position have a NULL stamp and never match.
func (p *PresenceService) ListActive(ctx context.Context) ([]dto.ActiveUser, error) {
	cutoff := p.now().Add(-p.window).UnixMilli()
	users, err := p.store.Users().ListActiveSince(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ActiveUser, 0, len(users))
	for _, u := range users {
		out = append(out, dto.ActiveUser{
			ID:       u.ID,
			Username: u.Username,
			Lat:      u.Lat,
			Lng:      u.Lng,
		})
	}
	return out, nil
}
