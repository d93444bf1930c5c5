package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tomlrepo "github.com/bnema/ghostreel/internal/adapters/repo/toml"
	"github.com/bnema/ghostreel/internal/domain"
	"github.com/bnema/ghostreel/internal/ports"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	now time.Time
}

func (f fixedClock) Now() time.Time {
	return f.now
}

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// memorySessions is an in-memory ports.SessionStore.
type memorySessions struct {
	mu    sync.Mutex
	blobs map[domain.AccountID][]byte
	saves int
}

func newMemorySessions() *memorySessions {
	return &memorySessions{blobs: map[domain.AccountID][]byte{}}
}

func (m *memorySessions) Load(_ context.Context, id domain.AccountID) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	blob, ok := m.blobs[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return blob, nil
}

func (m *memorySessions) Save(_ context.Context, id domain.AccountID, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blobs[id] = blob
	m.saves++
	return nil
}

func (m *memorySessions) Delete(_ context.Context, id domain.AccountID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.blobs, id)
	return nil
}

// fakePlatform is the remote side shared by every fakeClient.
type fakePlatform struct {
	mu sync.Mutex

	passwords     map[string]string
	totpRequired  map[string]bool
	validTokens   map[string]bool
	logins        map[string]int
	probes        map[string]int
	publishErrs   []error
	shareErrs     []error
	messageErrs   []error
	resolveErrs   []error
	published     []domain.PublishRequest
	shared        []string
	messages      map[string]string
	active        int
	maxActive     int
	publishDelay  time.Duration
	nextMediaID   int
	loginFailures map[string]error
	userErrs      []error
	posts         map[string][]domain.Post
}

func newFakePlatform(passwords map[string]string) *fakePlatform {
	return &fakePlatform{
		passwords:     passwords,
		totpRequired:  map[string]bool{},
		validTokens:   map[string]bool{},
		logins:        map[string]int{},
		probes:        map[string]int{},
		messages:      map[string]string{},
		loginFailures: map[string]error{},
		posts:         map[string][]domain.Post{},
	}
}

func (p *fakePlatform) loginCount(identity string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.logins[identity]
}

func popErr(queue *[]error) error {
	if len(*queue) == 0 {
		return nil
	}
	err := (*queue)[0]
	*queue = (*queue)[1:]
	return err
}

type fakeFactory struct {
	platform *fakePlatform
}

func (f fakeFactory) NewClient(account domain.Account) (ports.AccountClient, error) {
	return &fakeClient{platform: f.platform, identity: string(account.ID)}, nil
}

type fakeClient struct {
	platform *fakePlatform
	identity string
	token    string
}

func (c *fakeClient) Login(_ context.Context, identity, secret, otp string) error {
	p := c.platform
	p.mu.Lock()
	defer p.mu.Unlock()

	p.logins[identity]++
	if err := p.loginFailures[identity]; err != nil {
		return err
	}
	if p.passwords[identity] != secret {
		return fmt.Errorf("bad password: %w", domain.ErrAuthFailed)
	}
	if p.totpRequired[identity] && len(otp) != 6 {
		return domain.ErrTwoFactorRequired
	}

	c.token = fmt.Sprintf("tok-%s-%d", identity, p.logins[identity])
	p.validTokens[c.token] = true
	return nil
}

func (c *fakeClient) LoadSession(_ context.Context, blob []byte) error {
	var state struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(blob, &state); err != nil {
		return err
	}
	c.token = state.Token
	return nil
}

func (c *fakeClient) DumpSession(_ context.Context) ([]byte, error) {
	return json.Marshal(map[string]string{"token": c.token})
}

func (c *fakeClient) Probe(_ context.Context) error {
	p := c.platform
	p.mu.Lock()
	defer p.mu.Unlock()

	p.probes[c.identity]++
	if !p.validTokens[c.token] {
		return domain.ErrAuthExpired
	}
	return nil
}

func (c *fakeClient) ResolveIdentity(_ context.Context, username string) (domain.UserHandle, error) {
	p := c.platform
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := popErr(&p.resolveErrs); err != nil {
		return domain.UserHandle{}, err
	}
	if !p.validTokens[c.token] {
		return domain.UserHandle{}, domain.ErrAuthExpired
	}
	return domain.UserHandle{ID: "id-" + username, Username: username}, nil
}

func (c *fakeClient) Publish(ctx context.Context, req domain.PublishRequest) (domain.PostRef, error) {
	p := c.platform
	p.mu.Lock()
	p.active++
	p.maxActive = max(p.maxActive, p.active)
	delay := p.publishDelay
	p.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.active--

	if err := popErr(&p.publishErrs); err != nil {
		return domain.PostRef{}, err
	}
	if _, err := os.Stat(req.VideoPath); err != nil {
		return domain.PostRef{}, err
	}
	p.published = append(p.published, req)
	p.nextMediaID++
	return domain.PostRef{MediaID: fmt.Sprintf("m-%d", p.nextMediaID), Code: "C", URL: "https://example.com/p"}, nil
}

func (c *fakeClient) Share(_ context.Context, post domain.PostRef, to domain.UserHandle) (string, error) {
	p := c.platform
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := popErr(&p.shareErrs); err != nil {
		return "", err
	}
	p.shared = append(p.shared, to.Username)
	return "thread-" + to.Username, nil
}

func (c *fakeClient) SendMessage(_ context.Context, text string, to domain.UserHandle) (string, error) {
	p := c.platform
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := popErr(&p.messageErrs); err != nil {
		return "", err
	}
	p.messages[to.Username] = text
	return "msg-" + to.Username, nil
}

func (c *fakeClient) UserInfo(_ context.Context, username string) (domain.UserInfo, error) {
	p := c.platform
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := popErr(&p.userErrs); err != nil {
		return domain.UserInfo{}, err
	}
	if !p.validTokens[c.token] {
		return domain.UserInfo{}, domain.ErrAuthExpired
	}
	return domain.UserInfo{ID: "id-" + username, Username: username, Followers: len(username) * 100}, nil
}

func (c *fakeClient) RecentPosts(_ context.Context, username string, limit int) ([]domain.Post, error) {
	p := c.platform
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.validTokens[c.token] {
		return nil, domain.ErrAuthExpired
	}
	if username == "" {
		username = c.identity
	}
	posts := p.posts[username]
	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (c *fakeClient) ResolvePost(_ context.Context, code string) (domain.PostRef, error) {
	p := c.platform
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.validTokens[c.token] {
		return domain.PostRef{}, domain.ErrAuthExpired
	}
	return domain.PostRef{MediaID: "m-" + code, Code: code, URL: "https://instagram.com/p/" + code + "/"}, nil
}

// fakeEncoder writes a small file for every transcode.
type fakeEncoder struct {
	mu        sync.Mutex
	durations map[string]float64
	jobs      []domain.TranscodeJob
	failWith  func(job domain.TranscodeJob) error
}

func (e *fakeEncoder) Probe(_ context.Context, path string) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	duration, ok := e.durations[filepath.Base(path)]
	if !ok {
		return 0, errors.New("unknown media")
	}
	return duration, nil
}

func (e *fakeEncoder) Transcode(_ context.Context, job domain.TranscodeJob) error {
	e.mu.Lock()
	e.jobs = append(e.jobs, job)
	fail := e.failWith
	e.mu.Unlock()

	if fail != nil {
		if err := fail(job); err != nil {
			return err
		}
	}
	return os.WriteFile(job.Output, []byte("clip:"+job.Output), 0o600)
}

func (e *fakeEncoder) jobCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.jobs)
}

type memoryCatalog struct {
	mu     sync.Mutex
	chunks map[string]domain.Chunk
	saves  int
}

func (c *memoryCatalog) Load(_ context.Context) (map[string]domain.Chunk, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]domain.Chunk, len(c.chunks))
	for id, chunk := range c.chunks {
		out[id] = chunk
	}
	return out, nil
}

func (c *memoryCatalog) Save(_ context.Context, chunks map[string]domain.Chunk) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.chunks = make(map[string]domain.Chunk, len(chunks))
	for id, chunk := range chunks {
		c.chunks[id] = chunk
	}
	c.saves++
	return nil
}

func newCampaignService(t *testing.T) *CampaignService {
	t.Helper()

	cfg := viper.New()
	cfg.Set("campaigns.path", filepath.Join(t.TempDir(), "campaigns.toml"))
	repo, err := tomlrepo.NewCampaignRepository(cfg)
	require.NoError(t, err)

	return NewCampaignService(repo, fixedClock{now: testNow}, nil)
}

func writeFile(t *testing.T, path string, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func accountsFor(identities ...string) []domain.Account {
	accounts := make([]domain.Account, 0, len(identities))
	for _, identity := range identities {
		accounts = append(accounts, domain.Account{ID: domain.AccountID(identity), Secret: "pw-" + identity})
	}
	return accounts
}

func passwordsFor(identities ...string) map[string]string {
	passwords := make(map[string]string, len(identities))
	for _, identity := range identities {
		passwords[identity] = "pw-" + identity
	}
	return passwords
}
