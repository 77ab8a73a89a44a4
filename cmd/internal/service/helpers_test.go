package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"formconsult/cmd/internal/domain/database"
	"formconsult/cmd/internal/domain/database/repository"
	"formconsult/cmd/internal/domain/entity"
	"formconsult/cmd/internal/integration/rabbitmq"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Fixed clock: 2026-03-02T09:00:00Z.
var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC).UnixMilli()

func ptr[T any](v T) *T { return &v }

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// ---------------------------------------------------------------------------
// Recording fakes for the side-effect collaborators
// ---------------------------------------------------------------------------

type notificationSinkMock struct {
	NotifyFunc func(ctx context.Context, n NotificationInput) error

	mu    sync.Mutex
	calls []NotificationInput
}

func (m *notificationSinkMock) Notify(ctx context.Context, n NotificationInput) error {
	m.mu.Lock()
	m.calls = append(m.calls, n)
	m.mu.Unlock()
	if m.NotifyFunc == nil {
		return nil
	}
	return m.NotifyFunc(ctx, n)
}

func (m *notificationSinkMock) Calls() []NotificationInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]NotificationInput(nil), m.calls...)
}

// Recipients returns the user ids notified, in no particular order.
func (m *notificationSinkMock) Recipients() []string {
	var ids []string
	for _, c := range m.Calls() {
		ids = append(ids, c.UserID)
	}
	return ids
}

func (m *notificationSinkMock) For(userID string) []NotificationInput {
	var out []NotificationInput
	for _, c := range m.Calls() {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out
}

type emailCall struct {
	Kind      string
	To        string
	Name      string
	Title     string
	Company   string
	AdminName string
	Reason    *string
}

type emailSenderMock struct {
	SendFunc func(ctx context.Context, call emailCall) error

	mu    sync.Mutex
	calls []emailCall
}

func (m *emailSenderMock) record(ctx context.Context, call emailCall) error {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()
	if m.SendFunc == nil {
		return nil
	}
	return m.SendFunc(ctx, call)
}

func (m *emailSenderMock) SendApproved(ctx context.Context, to, name, title, company, adminName string) error {
	return m.record(ctx, emailCall{Kind: "approved", To: to, Name: name, Title: title, Company: company, AdminName: adminName})
}

func (m *emailSenderMock) SendRejected(ctx context.Context, to, name, title, company, adminName string, reason *string) error {
	return m.record(ctx, emailCall{Kind: "rejected", To: to, Name: name, Title: title, Company: company, AdminName: adminName, Reason: reason})
}

func (m *emailSenderMock) Calls() []emailCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]emailCall(nil), m.calls...)
}

type eventPublisherMock struct {
	PublishFunc func(ctx context.Context, event rabbitmq.AppointmentEvent) error

	mu    sync.Mutex
	calls []rabbitmq.AppointmentEvent
}

func (m *eventPublisherMock) PublishAppointmentEvent(ctx context.Context, event rabbitmq.AppointmentEvent) error {
	m.mu.Lock()
	m.calls = append(m.calls, event)
	m.mu.Unlock()
	if m.PublishFunc == nil {
		return nil
	}
	return m.PublishFunc(ctx, event)
}

func (m *eventPublisherMock) Calls() []rabbitmq.AppointmentEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]rabbitmq.AppointmentEvent(nil), m.calls...)
}

type reportedError struct {
	Err    error
	Extras map[string]any
}

type reporterMock struct {
	mu    sync.Mutex
	calls []reportedError
}

func (m *reporterMock) Report(_ context.Context, err error, extras map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, reportedError{Err: err, Extras: extras})
}

func (m *reporterMock) Calls() []reportedError {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]reportedError(nil), m.calls...)
}

// ---------------------------------------------------------------------------
// Harness: real sqlite repositories, recording side effects
// ---------------------------------------------------------------------------

type harness struct {
	db            *gorm.DB
	appts         *repository.DefaultAppointmentRepository
	users         *repository.DefaultUserRepository
	companies     *repository.DefaultCompanyRepository
	notifications *notificationSinkMock
	emails        *emailSenderMock
	events        *eventPublisherMock
	reporter      *reporterMock
	effects       *TransitionEffects
	svc           *DefaultAppointmentService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db := openTestDB(t)
	h := &harness{
		db:            db,
		appts:         repository.NewAppointmentRepository(db),
		users:         repository.NewUserRepository(db),
		companies:     repository.NewCompanyRepository(db),
		notifications: &notificationSinkMock{},
		emails:        &emailSenderMock{},
		events:        &eventPublisherMock{},
		reporter:      &reporterMock{},
	}

	names, err := NewCompanyNameCache(h.companies, 16, time.Minute)
	require.NoError(t, err)

	h.effects = &TransitionEffects{
		Recipients:    h.users,
		Notifications: h.notifications,
		Emails:        h.emails,
		Events:        h.events,
		Reporter:      h.reporter,
		CompanyNames:  names,
		ConsumedHours: IgnoreConsumedHours{},
		Timeout:       time.Second,
	}
	h.svc = NewAppointmentService(h.appts, h.users, h.effects)
	h.svc.Now = func() int64 { return testNow }

	h.seed(t)
	return h
}

// seed creates two companies and one user per role, plus extra users to
// check that unrelated people are left alone:
//
//	c1 "Acme":   u1, u2 (EMPLOYE), adm1 (ADMIN_ENTREPRISE), fmt1 (FORMATEUR)
//	c2 "Globex": u3 (EMPLOYE), adm2 (ADMIN_ENTREPRISE)
//	no company:  cons1, cons2 (CONSULTANT), sa1, sa2 (SUPER_ADMIN)
func (h *harness) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, h.companies.Save(ctx, &entity.Company{ID: "c1", Name: "Acme"}))
	require.NoError(t, h.companies.Save(ctx, &entity.Company{ID: "c2", Name: "Globex"}))

	mk := func(id, name string, role entity.Role, companyID *string) {
		u := &entity.User{ID: id, SubUUID: "sub-" + id, Name: name, Email: id + "@example.com", Role: role, CompanyID: companyID}
		require.NoError(t, h.users.Save(ctx, u))
	}
	mk("u1", "Awa Diallo", entity.RoleEmployee, ptr("c1"))
	mk("u2", "Marc Petit", entity.RoleEmployee, ptr("c1"))
	mk("u3", "Lina Haddad", entity.RoleEmployee, ptr("c2"))
	mk("adm1", "Claire Dubois", entity.RoleCompanyAdmin, ptr("c1"))
	mk("adm2", "Hugo Moreau", entity.RoleCompanyAdmin, ptr("c2"))
	mk("fmt1", "Paul Girard", entity.RoleTrainer, ptr("c1"))
	mk("cons1", "Sophie Laurent", entity.RoleConsultant, nil)
	mk("cons2", "Karim Benali", entity.RoleConsultant, nil)
	mk("sa1", "Nadia Root", entity.RoleSuperAdmin, nil)
	mk("sa2", "Olivier Root", entity.RoleSuperAdmin, nil)
}

// appointment stores a1-style appointments owned by u1 in company c1.
func (h *harness) appointment(t *testing.T, id string, status entity.Status, consultantID *string) *entity.Appointment {
	t.Helper()

	appt := &entity.Appointment{
		ID:                   id,
		Title:                "Bilan de compétences",
		Status:               status,
		ScheduledAt:          testNow + time.Hour.Milliseconds()*48,
		UserID:               "u1",
		AssignedConsultantID: consultantID,
		CompanyID:            "c1",
	}
	require.NoError(t, h.appts.Save(context.Background(), appt))
	return appt
}

func (h *harness) reload(t *testing.T, id string) *entity.Appointment {
	t.Helper()

	appt, err := h.appts.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, appt)
	return appt
}

func (h *harness) noSideEffects(t *testing.T) {
	t.Helper()
	require.Empty(t, h.notifications.Calls(), "notifications")
	require.Empty(t, h.emails.Calls(), "emails")
	require.Empty(t, h.events.Calls(), "events")
}
