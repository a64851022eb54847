package controllers

import (
	"context"
	"sync"
	"time"

	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/logger"
	"github.com/civicconnect/civicconnect-be/model"
	"github.com/civicconnect/civicconnect-be/util"
	"go.uber.org/zap"
)

type AnnouncementControllerDatabase interface {
	appDb.AnnouncementDatabase
	FanOutAnnouncement(ctx context.Context, announcement *model.Announcement) (int64, error)
}

type AnnouncementReq struct {
	Title     string     `json:"title" binding:"required,min=3,max=200"`
	Content   string     `json:"content" binding:"required,max=10000"`
	IsUrgent  bool       `json:"isUrgent"`
	IsActive  *bool      `json:"isActive"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

// urgentSnapshot is the cached emergency banner content.
type urgentSnapshot struct {
	announcements []*model.Announcement
	generation    uint64
}

const UrgentRefreshInterval = time.Minute

// AnnouncementController serves the urgent banner from memory, refreshing
// it on a ticker and after every admin write.
type AnnouncementController struct {
	db           AnnouncementControllerDatabase
	cachedUrgent *urgentSnapshot
	cacheLock    sync.Mutex
	generation   uint64
	updateTicker *time.Ticker
	stop         chan struct{}
	stopOnce     sync.Once
	now          func() time.Time
}

func NewAnnouncementController(c context.Context, db AnnouncementControllerDatabase) (*AnnouncementController, error) {
	controller := &AnnouncementController{
		db:   db,
		stop: make(chan struct{}),
		now:  time.Now,
	}
	if err := controller.updateCachedUrgent(c); err != nil {
		return nil, err
	}

	controller.updateTicker = time.NewTicker(UrgentRefreshInterval)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Get().Error("recovered while refreshing urgent announcements", zap.Any("panic", r))
			}
		}()
		for {
			select {
			case <-controller.updateTicker.C:
				controller.attemptToUpdateCachedUrgent(context.Background())
			case <-controller.stop:
				return
			}
		}
	}()

	return controller, nil
}

// Stop ends the refresh loop.
func (ac *AnnouncementController) Stop() {
	ac.stopOnce.Do(func() {
		if ac.updateTicker != nil {
			ac.updateTicker.Stop()
		}
		close(ac.stop)
	})
}

func (ac *AnnouncementController) GetActive(c context.Context) ([]*model.Announcement, *util.HTTPError) {
	announcements, err := ac.db.GetActiveAnnouncements(c, ac.now().UTC(), false)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return announcements, nil
}

// GetUrgent drops cached announcements that expired since the last refresh.
func (ac *AnnouncementController) GetUrgent() []*model.Announcement {
	ac.cacheLock.Lock()
	snapshot := ac.cachedUrgent
	ac.cacheLock.Unlock()

	now := ac.now()
	live := []*model.Announcement{}
	if snapshot == nil {
		return live
	}
	for _, announcement := range snapshot.announcements {
		if announcement.LiveAt(now) {
			live = append(live, announcement)
		}
	}
	return live
}

func (req *AnnouncementReq) apply(announcement *model.Announcement) {
	announcement.Title = util.SanitizeText(req.Title)
	announcement.Content = util.XSSSanitize(req.Content)
	announcement.IsUrgent = req.IsUrgent
	if req.IsActive != nil {
		announcement.IsActive = *req.IsActive
	}
	announcement.ExpiresAt = utcPtr(req.ExpiresAt)
}

// CreateAnnouncement notifies every non-banned user when the new
// announcement is urgent and live.
func (ac *AnnouncementController) CreateAnnouncement(c context.Context, admin *model.User, req *AnnouncementReq) (*model.Announcement, *util.HTTPError) {
	announcement := &model.Announcement{AuthorId: admin.Id, IsActive: true}
	req.apply(announcement)
	if _, err := ac.db.CreateAnnouncement(c, announcement); err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if announcement.IsUrgent && announcement.LiveAt(ac.now()) {
		notified, err := ac.db.FanOutAnnouncement(c, announcement)
		if err != nil {
			logNotifyErr(c, err)
		} else {
			logger.FromContext(c).Info("urgent announcement fanned out",
				zap.Int64("announcement_id", announcement.Id),
				zap.Int64("recipients", notified))
		}
	}
	ac.attemptToUpdateCachedUrgent(c)
	return announcement, nil
}

func (ac *AnnouncementController) UpdateAnnouncement(c context.Context, id int64, req *AnnouncementReq) (*model.Announcement, *util.HTTPError) {
	announcement, err := ac.db.GetAnnouncement(c, id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if announcement == nil {
		return nil, util.NotFound("announcement")
	}
	req.apply(announcement)
	if err := ac.db.UpdateAnnouncement(c, announcement); err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	ac.attemptToUpdateCachedUrgent(c)
	return announcement, nil
}

func (ac *AnnouncementController) DeleteAnnouncement(c context.Context, id int64) *util.HTTPError {
	if err := ac.db.DeleteAnnouncement(c, id); err != nil {
		return util.BuildDbHTTPErr(err)
	}
	ac.attemptToUpdateCachedUrgent(c)
	return nil
}

func (ac *AnnouncementController) attemptToUpdateCachedUrgent(c context.Context) {
	if err := ac.updateCachedUrgent(c); err != nil {
		logger.FromContext(c).Error("an error occurred while refreshing urgent announcements", zap.Error(err))
	}
}

func (ac *AnnouncementController) updateCachedUrgent(c context.Context) error {
	// snapshots from older refreshes never replace newer ones
	ac.cacheLock.Lock()
	ac.generation++
	generation := ac.generation
	ac.cacheLock.Unlock()

	announcements, err := ac.db.GetActiveAnnouncements(c, ac.now().UTC(), true)
	if err != nil {
		return err
	}
	newSnapshot := &urgentSnapshot{announcements: announcements, generation: generation}

	// start of cacheLock
	ac.cacheLock.Lock()
	defer ac.cacheLock.Unlock()
	if ac.cachedUrgent == nil || newSnapshot.generation > ac.cachedUrgent.generation {
		ac.cachedUrgent = newSnapshot
	}
	// end of cacheLock
	return nil
}
