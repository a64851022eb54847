package memdb

import (
	"context"
	"sort"
	"strings"

	appDb "github.com/civicconnect/civicconnect-be/db"
	"github.com/civicconnect/civicconnect-be/model"
)

func (m *MemDB) CreateScheme(_ context.Context, scheme *model.Scheme) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	scheme.Id, scheme.CreatedAt, scheme.UpdatedAt = m.id("scheme"), now, now
	stored := *scheme
	m.schemes[scheme.Id] = &stored
	return scheme.Id, nil
}

func (m *MemDB) GetScheme(_ context.Context, id int64) (*model.Scheme, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	scheme, ok := m.schemes[id]
	if !ok {
		return nil, nil
	}
	copied := *scheme
	return &copied, nil
}

func (m *MemDB) ListSchemes(_ context.Context, query *appDb.ListingQuery) ([]*model.Scheme, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matched []*model.Scheme
	for _, scheme := range m.schemes {
		if query.Q != "" && !contains(scheme.Title, query.Q) && !contains(scheme.Description, query.Q) && !contains(scheme.Department, query.Q) {
			continue
		}
		if query.Category != "" && !strings.EqualFold(scheme.Category, query.Category) {
			continue
		}
		copied := *scheme
		matched = append(matched, &copied)
	}
	sort.Slice(matched, func(i, j int) bool {
		return newestFirst(matched[i].CreatedAt, matched[i].Id, matched[j].CreatedAt, matched[j].Id)
	})
	items, total := paginate(matched, query.Page)
	return items, total, nil
}

func (m *MemDB) UpdateScheme(_ context.Context, scheme *model.Scheme) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.schemes[scheme.Id]
	if !ok {
		return appDb.ErrNotFound
	}
	scheme.CreatedBy, scheme.CreatedAt, scheme.UpdatedAt = existing.CreatedBy, existing.CreatedAt, m.now()
	stored := *scheme
	m.schemes[scheme.Id] = &stored
	return nil
}

func (m *MemDB) DeleteScheme(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.schemes[id]; !ok {
		return appDb.ErrNotFound
	}
	delete(m.schemes, id)
	return nil
}

func (m *MemDB) CreateJob(_ context.Context, job *model.Job) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	job.Id, job.CreatedAt, job.UpdatedAt = m.id("job"), now, now
	stored := *job
	m.jobs[job.Id] = &stored
	return job.Id, nil
}

func (m *MemDB) GetJob(_ context.Context, id int64) (*model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, nil
	}
	copied := *job
	return &copied, nil
}

func (m *MemDB) ListJobs(_ context.Context, query *appDb.JobsQuery) ([]*model.Job, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matched []*model.Job
	for _, job := range m.jobs {
		if query.Q != "" && !contains(job.Title, query.Q) && !contains(job.Company, query.Q) && !contains(job.Description, query.Q) {
			continue
		}
		if query.JobType != "" && job.JobType != query.JobType {
			continue
		}
		if query.Location != "" && !contains(job.Location, query.Location) {
			continue
		}
		if query.ActiveOnly && !job.IsActive {
			continue
		}
		copied := *job
		matched = append(matched, &copied)
	}
	sort.Slice(matched, func(i, j int) bool {
		return newestFirst(matched[i].CreatedAt, matched[i].Id, matched[j].CreatedAt, matched[j].Id)
	})
	items, total := paginate(matched, query.Page)
	return items, total, nil
}

func (m *MemDB) UpdateJob(_ context.Context, job *model.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.jobs[job.Id]
	if !ok {
		return appDb.ErrNotFound
	}
	job.PostedBy, job.CreatedAt, job.UpdatedAt = existing.PostedBy, existing.CreatedAt, m.now()
	stored := *job
	m.jobs[job.Id] = &stored
	return nil
}

func (m *MemDB) DeleteJob(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[id]; !ok {
		return appDb.ErrNotFound
	}
	delete(m.jobs, id)
	for key := range m.applications {
		if key[0] == id {
			delete(m.applications, key)
		}
	}
	return nil
}

func (m *MemDB) ApplyToJob(_ context.Context, application *model.JobApplication) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[application.JobId]; !ok {
		return appDb.ErrNotFound
	}
	key := pair{application.JobId, application.ApplicantId}
	if _, ok := m.applications[key]; ok {
		return &appDb.DupKeyError{Key: "job_application_pkey"}
	}
	application.CreatedAt = m.now()
	stored := *application
	m.applications[key] = &stored
	return nil
}

func (m *MemDB) GetApplications(_ context.Context, jobId int64, page appDb.Page) ([]*model.JobApplication, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matched []*model.JobApplication
	for key, application := range m.applications {
		if key[0] != jobId {
			continue
		}
		copied := *application
		copied.Applicant = m.summary(application.ApplicantId)
		matched = append(matched, &copied)
	}
	sort.Slice(matched, func(i, j int) bool {
		return newestFirst(matched[i].CreatedAt, matched[i].ApplicantId, matched[j].CreatedAt, matched[j].ApplicantId)
	})
	items, total := paginate(matched, page)
	return items, total, nil
}

func (m *MemDB) CreateEvent(_ context.Context, event *model.Event) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	event.Id, event.CreatedAt, event.UpdatedAt, event.AttendeeCount = m.id("event"), now, now, 0
	stored := *event
	stored.IsAttending = false
	m.events[event.Id] = &stored
	return event.Id, nil
}

// event copies the row with the viewer's attendance. Callers hold mu.
func (m *MemDB) event(row *model.Event, viewerId int64) *model.Event {
	copied := *row
	if viewerId != 0 {
		_, copied.IsAttending = m.attendees[pair{row.Id, viewerId}]
	}
	return &copied
}

func (m *MemDB) GetEvent(_ context.Context, id int64, viewerId int64) (*model.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row, ok := m.events[id]
	if !ok {
		return nil, nil
	}
	return m.event(row, viewerId), nil
}

func (m *MemDB) ListEvents(_ context.Context, query *appDb.EventsQuery) ([]*model.Event, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matched []*model.Event
	for _, row := range m.events {
		if query.Q != "" && !contains(row.Title, query.Q) && !contains(row.Description, query.Q) && !contains(row.Location, query.Q) {
			continue
		}
		if query.UpcomingOnly && row.StartsAt.Before(query.Now) {
			continue
		}
		matched = append(matched, m.event(row, query.ViewerId))
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].StartsAt.Equal(matched[j].StartsAt) {
			return matched[i].StartsAt.Before(matched[j].StartsAt)
		}
		return matched[i].Id < matched[j].Id
	})
	items, total := paginate(matched, query.Page)
	return items, total, nil
}

func (m *MemDB) UpdateEvent(_ context.Context, event *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.events[event.Id]
	if !ok {
		return appDb.ErrNotFound
	}
	event.OrganizerId, event.AttendeeCount = existing.OrganizerId, existing.AttendeeCount
	event.CreatedAt, event.UpdatedAt = existing.CreatedAt, m.now()
	stored := *event
	stored.IsAttending = false
	m.events[event.Id] = &stored
	return nil
}

func (m *MemDB) DeleteEvent(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[id]; !ok {
		return appDb.ErrNotFound
	}
	delete(m.events, id)
	for key := range m.attendees {
		if key[0] == id {
			delete(m.attendees, key)
		}
	}
	return nil
}

func (m *MemDB) Attend(_ context.Context, eventId int64, userId int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	event, ok := m.events[eventId]
	if !ok {
		return appDb.ErrNotFound
	}
	key := pair{eventId, userId}
	if _, ok := m.attendees[key]; ok {
		return &appDb.DupKeyError{Key: "event_attendee_pkey"}
	}
	m.attendees[key] = m.now()
	event.AttendeeCount++
	return nil
}

func (m *MemDB) Unattend(_ context.Context, eventId int64, userId int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pair{eventId, userId}
	if _, ok := m.attendees[key]; !ok {
		return false, nil
	}
	delete(m.attendees, key)
	if event, ok := m.events[eventId]; ok && event.AttendeeCount > 0 {
		event.AttendeeCount--
	}
	return true, nil
}
