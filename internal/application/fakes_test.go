package application

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/oksasatya/storefront-account/internal/domain/entity"
	"github.com/oksasatya/storefront-account/internal/infrastructure/memory"
	"github.com/oksasatya/storefront-account/pkg/helpers"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []CodeMessage
	err  error
}

func (m *recordingMailer) SendCode(ctx context.Context, msg CodeMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

func (m *recordingMailer) last() CodeMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}

type fakeResolver struct {
	id  entity.ExternalIdentity
	err error
}

func (f fakeResolver) Resolve(ctx context.Context, credential string) (entity.ExternalIdentity, error) {
	return f.id, f.err
}

type fakeStorage struct {
	uploaded map[string]string
	deleted  []string
	err      error
}

func newFakeStorage() *fakeStorage { return &fakeStorage{uploaded: map[string]string{}} }

func (f *fakeStorage) Upload(ctx context.Context, key, contentType string, r io.Reader, size int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	b, _ := io.ReadAll(r)
	f.uploaded[key] = string(b)
	return "https://cdn.test/" + key, nil
}

func (f *fakeStorage) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

type fakeIndexer struct {
	indexed []string
	hits    []*entity.User
	err     error
}

func (f *fakeIndexer) Index(ctx context.Context, u *entity.User) error {
	f.indexed = append(f.indexed, u.ID)
	return nil
}

func (f *fakeIndexer) Search(ctx context.Context, q string, size int) ([]*entity.User, error) {
	return f.hits, f.err
}

// testClock is a settable time source.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	clock    *testClock
	users    *memory.UserRepository
	products *memory.ProductRepository
	orders   *memory.OrderRepository
	audit    *memory.AuditRepository
	mailer   *recordingMailer
	jwt      *helpers.JWTManager
	auth     *AuthService
	verify   *VerificationService
}

func newFixture() *fixture {
	clk := newTestClock()
	users := memory.NewUserRepository()
	users.Now = clk.Now
	audit := memory.NewAuditRepository()
	mailer := &recordingMailer{}
	jwt := helpers.NewJWTManager("test-secret", 7*24*time.Hour)
	jwt.Now = clk.Now
	log := helpers.NewNopLogger()
	f := &fixture{
		clock:    clk,
		users:    users,
		products: memory.NewProductRepository(),
		orders:   memory.NewOrderRepository(),
		audit:    audit,
		mailer:   mailer,
		jwt:      jwt,
	}
	f.auth = &AuthService{Users: users, JWT: jwt, Audit: audit, Logger: log, Now: clk.Now}
	f.verify = &VerificationService{
		Users:   users,
		Mailer:  mailer,
		Audit:   audit,
		Logger:  log,
		CodeTTL: 10 * time.Minute,
		Now:     clk.Now,
	}
	return f
}

func (f *fixture) register(email, password string) *entity.User {
	u, err := f.auth.Register(context.Background(), RegisterInput{Name: "Alice", Email: email, Password: password}, RequestMeta{})
	if err != nil {
		panic(err)
	}
	return u
}

var errBoom = errors.New("boom")
