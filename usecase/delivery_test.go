package usecase_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainDelivery "github.com/AzielCF/az-telebox/domains/delivery"
	domainMessenger "github.com/AzielCF/az-telebox/domains/messenger"
	domainResolver "github.com/AzielCF/az-telebox/domains/resolver"
	pkgError "github.com/AzielCF/az-telebox/pkg/error"
	"github.com/AzielCF/az-telebox/pkg/reaper"
	"github.com/AzielCF/az-telebox/repository"
	"github.com/AzielCF/az-telebox/usecase"
)

type fakeMessenger struct {
	mu      sync.Mutex
	nextID  int
	texts   []domainMessenger.TextMessage
	videos  []domainMessenger.VideoMessage
	edits   map[int]string
	deletes []int
	answers []string

	sendVideoErr error
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{edits: make(map[int]string)}
}

func (f *fakeMessenger) SendText(ctx context.Context, msg domainMessenger.TextMessage) (domainMessenger.Sent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.texts = append(f.texts, msg)
	return domainMessenger.Sent{ChatID: msg.ChatID, MessageID: f.nextID}, nil
}

func (f *fakeMessenger) SendVideo(ctx context.Context, msg domainMessenger.VideoMessage) (domainMessenger.Sent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendVideoErr != nil {
		return domainMessenger.Sent{}, f.sendVideoErr
	}
	f.nextID++
	f.videos = append(f.videos, msg)
	return domainMessenger.Sent{ChatID: msg.ChatID, MessageID: f.nextID}, nil
}

func (f *fakeMessenger) EditText(ctx context.Context, chatID int64, messageID int, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits[messageID] = text
	return nil
}

func (f *fakeMessenger) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, messageID)
	return nil
}

func (f *fakeMessenger) AnswerCallback(ctx context.Context, callbackID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers = append(f.answers, text)
	return nil
}

func (f *fakeMessenger) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.texts) + len(f.videos) + len(f.edits) + len(f.deletes) + len(f.answers)
}

type fakeResolver struct {
	link    string
	linkErr error
	result  domainResolver.VideoResult
	err     error
}

func (f *fakeResolver) FetchUnlockLink(ctx context.Context) (string, error) {
	return f.link, f.linkErr
}

func (f *fakeResolver) ResolveVideo(ctx context.Context, link string) (domainResolver.VideoResult, error) {
	return f.result, f.err
}

type fakeScheduler struct {
	mu      sync.Mutex
	targets []reaper.Target
	delays  []time.Duration
}

func (f *fakeScheduler) Schedule(t reaper.Target, delay time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.targets = append(f.targets, t)
	f.delays = append(f.delays, delay)
}

type deliveryFixture struct {
	users     *repository.MemoryUserStore
	access    func(ctx context.Context, id int64) error
	messenger *fakeMessenger
	resolver  *fakeResolver
	scheduler *fakeScheduler
	svc       domainDelivery.IDeliveryUsecase
}

func newDeliveryFixture(t *testing.T, resolver *fakeResolver) *deliveryFixture {
	t.Helper()

	users := repository.NewMemoryUserStore()
	settings := repository.NewMemorySettingsStore()
	accessSvc := usecase.NewAccessService(users)
	messenger := newFakeMessenger()
	scheduler := &fakeScheduler{}

	svc := usecase.NewDeliveryService(users, accessSvc, resolver, settings, messenger, scheduler, usecase.DeliveryOptions{
		RedirectPrefix: "https://unlock.example/r/",
		DeleteDelay:    20 * time.Second,
	})

	return &deliveryFixture{
		users:     users,
		access:    accessSvc.Grant,
		messenger: messenger,
		resolver:  resolver,
		scheduler: scheduler,
		svc:       svc,
	}
}

func TestHandleText_NonLinkIgnored(t *testing.T) {
	fx := newDeliveryFixture(t, &fakeResolver{})

	state, err := fx.svc.HandleText(context.Background(), domainDelivery.Inbound{
		ChatID: 1, UserID: 1, Text: "hello there",
	})

	require.NoError(t, err)
	assert.Equal(t, domainDelivery.StateIdle, state)
	assert.Zero(t, fx.messenger.callCount(), "non-link text must not produce any reply")
}

func TestHandleText_DeniedShowsAccessKeyboard(t *testing.T) {
	fx := newDeliveryFixture(t, &fakeResolver{})

	state, err := fx.svc.HandleText(context.Background(), domainDelivery.Inbound{
		ChatID: 1, UserID: 42, Text: "https://terabox.com/s/abc",
	})

	require.NoError(t, err)
	assert.Equal(t, domainDelivery.StateFailed, state)

	require.Len(t, fx.messenger.texts, 1)
	msg := fx.messenger.texts[0]
	assert.Contains(t, msg.Text, "Insufficient Balance")
	require.Len(t, msg.Keyboard, 1)
	require.Len(t, msg.Keyboard[0], 2)
	assert.Equal(t, domainDelivery.CallbackGetAccess, msg.Keyboard[0][0].CallbackData)
	assert.Equal(t, domainDelivery.CallbackShowTutorial, msg.Keyboard[0][1].CallbackData)
}

func TestHandleText_DeliversVideo(t *testing.T) {
	resolver := &fakeResolver{result: domainResolver.VideoResult{
		MediaURL: "https://cdn.example/video.mp4",
		Title:    "Holiday Clip",
	}}
	fx := newDeliveryFixture(t, resolver)

	require.NoError(t, fx.access(context.Background(), 42))

	state, err := fx.svc.HandleText(context.Background(), domainDelivery.Inbound{
		ChatID: 7, UserID: 42, Text: "https://terabox.com/s/abc",
	})

	require.NoError(t, err)
	assert.Equal(t, domainDelivery.StatePendingExpiry, state)

	require.Len(t, fx.messenger.videos, 1)
	video := fx.messenger.videos[0]
	assert.Equal(t, "https://cdn.example/video.mp4", video.MediaURL)
	assert.Contains(t, video.Caption, "Holiday Clip")
	assert.Contains(t, video.Caption, "automatically delete in 20 seconds")
	require.Len(t, video.Keyboard, 1)
	assert.Equal(t, "https://cdn.example/video.mp4", video.Keyboard[0][0].URL)

	// The transient loading message must be removed after the video lands.
	require.Len(t, fx.messenger.texts, 1)
	assert.Contains(t, fx.messenger.texts[0].Text, "Loading video")
	assert.Len(t, fx.messenger.deletes, 1)

	// Exactly one deferred deletion armed for the delivered video.
	require.Len(t, fx.scheduler.targets, 1)
	assert.Equal(t, int64(7), fx.scheduler.targets[0].ChatID)
	assert.Equal(t, 20*time.Second, fx.scheduler.delays[0])
}

func TestHandleText_ResolveFailureEditsLoading(t *testing.T) {
	resolver := &fakeResolver{err: pkgError.UpstreamProcessingError("bad link")}
	fx := newDeliveryFixture(t, resolver)

	require.NoError(t, fx.access(context.Background(), 42))

	state, err := fx.svc.HandleText(context.Background(), domainDelivery.Inbound{
		ChatID: 7, UserID: 42, Text: "https://terabox.com/s/broken",
	})

	require.NoError(t, err)
	assert.Equal(t, domainDelivery.StateFailed, state)

	require.Len(t, fx.messenger.edits, 1)
	for _, text := range fx.messenger.edits {
		assert.Contains(t, text, "Bad link")
	}
	assert.Empty(t, fx.scheduler.targets, "failed delivery must not arm a deletion")
}

func TestHandleText_UntitledVideoGetsDefaultTitle(t *testing.T) {
	resolver := &fakeResolver{result: domainResolver.VideoResult{
		MediaURL: "https://cdn.example/video.mp4",
	}}
	fx := newDeliveryFixture(t, resolver)

	require.NoError(t, fx.access(context.Background(), 42))

	_, err := fx.svc.HandleText(context.Background(), domainDelivery.Inbound{
		ChatID: 7, UserID: 42, Text: "https://terabox.com/s/abc",
	})

	require.NoError(t, err)
	require.Len(t, fx.messenger.videos, 1)
	assert.Contains(t, fx.messenger.videos[0].Caption, "Terabox Video")
}

func TestHandleStart_RedirectMarkerGrantsAccess(t *testing.T) {
	fx := newDeliveryFixture(t, &fakeResolver{})

	err := fx.svc.HandleStart(context.Background(), domainDelivery.Inbound{
		ChatID: 1, UserID: 42, FirstName: "Ana",
		Text: "/start https://unlock.example/r/xyz",
	})
	require.NoError(t, err)

	ok, err := fx.users.HasAccess(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, ok, "redirect-marker /start must grant the access window")

	require.Len(t, fx.messenger.texts, 1)
	assert.Contains(t, fx.messenger.texts[0].Text, "Access successfully added")
}

func TestHandleStart_PlainWelcome(t *testing.T) {
	fx := newDeliveryFixture(t, &fakeResolver{})

	err := fx.svc.HandleStart(context.Background(), domainDelivery.Inbound{
		ChatID: 1, UserID: 42, FirstName: "Ana", Text: "/start",
	})
	require.NoError(t, err)

	ok, err := fx.users.HasAccess(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, ok, "plain /start must not grant access")

	require.Len(t, fx.messenger.texts, 1)
	assert.Contains(t, fx.messenger.texts[0].Text, "Welcome")
}

func TestHandleCallback_GetAccessEditsIntoLink(t *testing.T) {
	resolver := &fakeResolver{link: "https://unlock.example/r/fresh"}
	fx := newDeliveryFixture(t, resolver)

	err := fx.svc.HandleCallback(context.Background(), domainDelivery.Callback{
		ID: "cb1", ChatID: 1, UserID: 42, MessageID: 10,
		Data: domainDelivery.CallbackGetAccess,
	})
	require.NoError(t, err)

	require.Len(t, fx.messenger.answers, 1)
	assert.Contains(t, fx.messenger.answers[0], "Generating access link")

	text, ok := fx.messenger.edits[10]
	require.True(t, ok, "the button message must be edited in place")
	assert.Contains(t, text, "https://unlock.example/r/fresh")
	assert.Contains(t, text, "/start")
}

func TestHandleCallback_GetAccessUpstreamFailure(t *testing.T) {
	resolver := &fakeResolver{linkErr: pkgError.UpstreamFormatError("unlock link outside the expected prefix")}
	fx := newDeliveryFixture(t, resolver)

	err := fx.svc.HandleCallback(context.Background(), domainDelivery.Callback{
		ID: "cb1", ChatID: 1, UserID: 42, MessageID: 10,
		Data: domainDelivery.CallbackGetAccess,
	})
	require.NoError(t, err)

	text, ok := fx.messenger.edits[10]
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(text, "❌"), "failure edit should be an error line, got %q", text)
	assert.NotContains(t, text, "unlock link outside", "raw upstream answers never reach the user")
}

func TestHandleCallback_ShowTutorial(t *testing.T) {
	fx := newDeliveryFixture(t, &fakeResolver{})

	// Not set yet.
	err := fx.svc.HandleCallback(context.Background(), domainDelivery.Callback{
		ID: "cb1", ChatID: 1, UserID: 42, Data: domainDelivery.CallbackShowTutorial,
	})
	require.NoError(t, err)
	require.Len(t, fx.messenger.texts, 1)
	assert.Contains(t, fx.messenger.texts[0].Text, "has not been set")
}
