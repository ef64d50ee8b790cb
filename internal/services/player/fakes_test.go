package player

import (
	"context"
	"sync"

	"github.com/velrin/cadence/internal/audio"
	"github.com/velrin/cadence/internal/models"
)

// fakePlayer records transport commands
type fakePlayer struct {
	mu       sync.Mutex
	played   []*models.Track
	pauses   []bool
	seeks    []int64
	stops    int
	volumes  []int
	destroys int
	playErr  error
}

func (f *fakePlayer) Play(ctx context.Context, track *models.Track) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.played = append(f.played, track)
	return f.playErr
}

func (f *fakePlayer) Pause(ctx context.Context, paused bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pauses = append(f.pauses, paused)
	return nil
}

func (f *fakePlayer) Seek(ctx context.Context, positionMs int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seeks = append(f.seeks, positionMs)
	return nil
}

func (f *fakePlayer) Stop(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	return nil
}

func (f *fakePlayer) SetVolume(ctx context.Context, volume int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volumes = append(f.volumes, volume)
	return nil
}

func (f *fakePlayer) Destroy(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroys++
	return nil
}

func (f *fakePlayer) playedTitles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	titles := make([]string, 0, len(f.played))
	for _, t := range f.played {
		titles = append(titles, t.Title)
	}
	return titles
}

func (f *fakePlayer) destroyCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.destroys
}

// fakeBackend serves canned resolve results keyed by the resolver-ready query
type fakeBackend struct {
	mu         sync.Mutex
	results    map[string]*audio.LoadResult
	resolveErr error
	queries    []string
	player     *fakePlayer
	connectErr error
	connects   int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		results: make(map[string]*audio.LoadResult),
		player:  &fakePlayer{},
	}
}

func (f *fakeBackend) Resolve(ctx context.Context, query string) (*audio.LoadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	if result, ok := f.results[query]; ok {
		return result, nil
	}
	return &audio.LoadResult{Kind: audio.LoadKindEmpty}, nil
}

func (f *fakeBackend) Connect(ctx context.Context, guildID, voiceChannelID string) (audio.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects++
	if f.connectErr != nil {
		return nil, f.connectErr
	}
	return f.player, nil
}

func (f *fakeBackend) Close() error {
	return nil
}

func (f *fakeBackend) lastQuery() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queries) == 0 {
		return ""
	}
	return f.queries[len(f.queries)-1]
}

type refreshCall struct {
	guildID string
	display *DisplayInfo
}

// fakeUISync records display refreshes
type fakeUISync struct {
	mu        sync.Mutex
	refreshes []refreshCall
}

func (f *fakeUISync) Refresh(ctx context.Context, guildID string, display *DisplayInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes = append(f.refreshes, refreshCall{guildID: guildID, display: display})
}

func (f *fakeUISync) lastRefresh() (refreshCall, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.refreshes) == 0 {
		return refreshCall{}, false
	}
	return f.refreshes[len(f.refreshes)-1], true
}

type resolvedNotice struct {
	request  *models.PendingRequest
	approved bool
	actorID  string
}

type failedNotice struct {
	track     *models.Track
	remaining int
}

// fakeNotifier records async notices
type fakeNotifier struct {
	mu            sync.Mutex
	announcements []*DisplayInfo
	resolutions   []resolvedNotice
	failures      []failedNotice
}

func (f *fakeNotifier) AnnounceNowPlaying(guildID, textChannelID string, display *DisplayInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.announcements = append(f.announcements, display)
}

func (f *fakeNotifier) NotifyRequestResolved(request *models.PendingRequest, approved bool, actorID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolutions = append(f.resolutions, resolvedNotice{request: request, approved: approved, actorID: actorID})
}

func (f *fakeNotifier) NotifyTrackFailed(guildID, textChannelID string, track *models.Track, remaining int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, failedNotice{track: track, remaining: remaining})
}
