package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/musileague/backend/internal/domain/artist"
	"github.com/musileague/backend/internal/domain/roster"
	"github.com/musileague/backend/internal/domain/tier"
	"github.com/musileague/backend/internal/domain/weekly"
	"github.com/musileague/backend/internal/infrastructure/repository/memory"
	"github.com/musileague/backend/internal/platform/logging"
)

const testStartingCoins = int64(100)

type rosterFixture struct {
	svc          *RosterService
	artistRepo   *memory.ArtistRepository
	rosterRepo   *memory.RosterRepository
	profileRepo  *memory.ProfileRepository
	snapshotRepo *memory.SnapshotRepository
	scoreRepo    *memory.ScoreRepository
}

func newRosterFixture(t *testing.T, scores []weekly.Score) *rosterFixture {
	t.Helper()

	seasonRepo := memory.NewSeasonRepository(memory.SeedSeasons())
	artistRepo := memory.NewArtistRepository(memory.SeedArtists())
	rosterRepo := memory.NewRosterRepository()
	profileRepo := memory.NewProfileRepository()
	snapshotRepo := memory.NewSnapshotRepository(nil)
	scoreRepo := memory.NewScoreRepository(scores)

	weekSvc := NewWeekService(seasonRepo, snapshotRepo, scoreRepo)
	svc := NewRosterService(
		seasonRepo, artistRepo, rosterRepo, profileRepo, snapshotRepo, scoreRepo,
		weekSvc, nil,
		tier.DefaultBounds(), roster.DefaultPricing(), testStartingCoins,
		logging.NewNop(),
	)
	svc.now = func() time.Time {
		return time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)
	}

	return &rosterFixture{
		svc:          svc,
		artistRepo:   artistRepo,
		rosterRepo:   rosterRepo,
		profileRepo:  profileRepo,
		snapshotRepo: snapshotRepo,
		scoreRepo:    scoreRepo,
	}
}

func validInput(userID string) SaveRosterInput {
	return SaveRosterInput{
		UserID:   userID,
		SeasonID: memory.SeasonIDAutumn2026,
		SlotArtistIDs: [roster.SlotCount]string{
			"art_nova_skyline",
			"art_midnight_metro",
			"art_paper_lanterns",
			"art_cold_aurora",
			"art_static_bloom",
		},
		CaptainID: "art_nova_skyline",
	}
}

func TestRosterService_Commit_FirstRosterIsFree(t *testing.T) {
	f := newRosterFixture(t, nil)

	res, err := f.svc.Commit(t.Context(), validInput("user-1"))
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if res.Cost != 0 {
		t.Fatalf("first roster must be free, got cost %d", res.Cost)
	}
	if !res.Bootstrapped {
		t.Fatal("first roster must be bootstrapped")
	}
	if res.WeekAssigned != 1 {
		t.Fatalf("first roster must land on the current week, got %d", res.WeekAssigned)
	}

	// Bootstrap freezes a snapshot for each selected artist.
	for _, artistID := range validInput("user-1").SlotArtistIDs {
		exists, err := f.snapshotRepo.Exists(t.Context(), 1, artistID)
		if err != nil {
			t.Fatalf("check snapshot: %v", err)
		}
		if !exists {
			t.Fatalf("expected snapshot frozen for %s", artistID)
		}
	}

	p, err := f.profileRepo.GetOrCreate(t.Context(), "user-1", testStartingCoins)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if p.MusiCoins != testStartingCoins {
		t.Fatalf("balance must be untouched, got %d", p.MusiCoins)
	}
}

func TestRosterService_Commit_BootstrapCreditsExistingScores(t *testing.T) {
	created := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	f := newRosterFixture(t, []weekly.Score{
		{WeekNumber: 1, ArtistID: "art_nova_skyline", TotalPoints: 10, CreatedAt: created},
		{WeekNumber: 1, ArtistID: "art_midnight_metro", TotalPoints: 8, CreatedAt: created},
		{WeekNumber: 1, ArtistID: "art_cold_aurora", TotalPoints: 4, CreatedAt: created},
	})

	res, err := f.svc.Commit(t.Context(), validInput("user-1"))
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	// Captain is featured: 10*2.0. The rest count once; unscored
	// artists contribute nothing.
	want := 10*2.0 + 8 + 4
	if res.InstantScore != want {
		t.Fatalf("instant score = %v, want %v", res.InstantScore, want)
	}

	p, err := f.profileRepo.GetOrCreate(t.Context(), "user-1", testStartingCoins)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if p.TotalScore != want {
		t.Fatalf("total score = %v, want %v", p.TotalScore, want)
	}
}

func TestRosterService_Commit_ChangesAreChargedAndDeferred(t *testing.T) {
	f := newRosterFixture(t, nil)

	if _, err := f.svc.Commit(t.Context(), validInput("user-1")); err != nil {
		t.Fatalf("first commit failed: %v", err)
	}

	// One slot swap plus a captain change.
	input := validInput("user-1")
	input.SlotArtistIDs[4] = "art_hollow_pines"
	input.CaptainID = "art_midnight_metro"

	res, err := f.svc.Commit(t.Context(), input)
	if err != nil {
		t.Fatalf("second commit failed: %v", err)
	}
	if res.Cost != 30 {
		t.Fatalf("cost = %d, want 30", res.Cost)
	}
	if res.WeekAssigned != 2 {
		t.Fatalf("changes must take effect next week, got %d", res.WeekAssigned)
	}
	if res.Bootstrapped {
		t.Fatal("only the first roster bootstraps")
	}

	p, err := f.profileRepo.GetOrCreate(t.Context(), "user-1", testStartingCoins)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if p.MusiCoins != testStartingCoins-30 {
		t.Fatalf("balance = %d, want %d", p.MusiCoins, testStartingCoins-30)
	}
}

func TestRosterService_Commit_InsufficientBalance(t *testing.T) {
	f := newRosterFixture(t, nil)
	f.svc.startingCoins = 10

	if _, err := f.svc.Commit(t.Context(), validInput("user-1")); err != nil {
		t.Fatalf("first commit failed: %v", err)
	}

	input := validInput("user-1")
	input.SlotArtistIDs[4] = "art_hollow_pines"

	_, err := f.svc.Commit(t.Context(), input)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	var balanceErr *InsufficientBalanceError
	if !errors.As(err, &balanceErr) {
		t.Fatalf("expected typed balance error, got %T", err)
	}
	if balanceErr.Required != 20 || balanceErr.Available != 10 {
		t.Fatalf("unexpected amounts: required=%d available=%d", balanceErr.Required, balanceErr.Available)
	}

	p, err := f.profileRepo.GetOrCreate(t.Context(), "user-1", 10)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if p.MusiCoins != 10 {
		t.Fatalf("balance must be untouched on rejection, got %d", p.MusiCoins)
	}
}

func TestRosterService_Commit_TierMismatchRejected(t *testing.T) {
	f := newRosterFixture(t, nil)

	input := validInput("user-1")
	// A mid-tier artist in the flagship slot.
	input.SlotArtistIDs[0] = "art_juno_district"
	input.CaptainID = "art_juno_district"

	_, err := f.svc.Commit(t.Context(), input)

	var validationErr *roster.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := validationErr.Fields[roster.SlotKey(0)]; !ok {
		t.Fatalf("expected field error for slot 1, got %v", validationErr.Fields)
	}
}

func TestRosterService_Commit_GrandfatheredSlotSurvivesDrift(t *testing.T) {
	f := newRosterFixture(t, nil)

	if _, err := f.svc.Commit(t.Context(), validInput("user-1")); err != nil {
		t.Fatalf("first commit failed: %v", err)
	}

	// The flagship pick drops below the flagship band between
	// commits. Resubmitting it in the same slot must still pass.
	drifted := memory.SeedArtists()[0]
	drifted.Popularity = 40
	if err := f.artistRepo.Upsert(t.Context(), []artist.Artist{drifted}); err != nil {
		t.Fatalf("drift artist: %v", err)
	}

	input := validInput("user-1")
	input.SlotArtistIDs[3] = "art_hollow_pines"

	res, err := f.svc.Commit(t.Context(), input)
	if err != nil {
		t.Fatalf("grandfathered resubmit failed: %v", err)
	}
	if res.Cost != 20 {
		t.Fatalf("cost = %d, want 20", res.Cost)
	}
}

func TestRosterService_Commit_UnknownArtistRejected(t *testing.T) {
	f := newRosterFixture(t, nil)

	input := validInput("user-1")
	input.SlotArtistIDs[2] = "art_never_heard_of_them"

	_, err := f.svc.Commit(t.Context(), input)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

type stubMetadataProvider struct {
	artists []artist.Artist
	err     error
}

func (p *stubMetadataProvider) GetArtists(_ context.Context, _ []string) ([]artist.Artist, error) {
	return p.artists, p.err
}

func TestRosterService_Commit_CacheMissFilledFromProvider(t *testing.T) {
	f := newRosterFixture(t, nil)
	f.svc.metadata = &stubMetadataProvider{
		artists: []artist.Artist{
			{ID: "art_fresh_face", Name: "Fresh Face", Popularity: 72, Followers: 9_000_000},
		},
	}

	input := validInput("user-1")
	input.SlotArtistIDs[0] = "art_fresh_face"
	input.CaptainID = "art_fresh_face"

	if _, err := f.svc.Commit(t.Context(), input); err != nil {
		t.Fatalf("commit with provider fallback failed: %v", err)
	}

	_, exists, err := f.artistRepo.GetByID(t.Context(), "art_fresh_face")
	if err != nil {
		t.Fatalf("get cached artist: %v", err)
	}
	if !exists {
		t.Fatal("fetched artist must be cached")
	}
}

// staleLatestRepo simulates two submissions racing: the second reads
// the latest roster before the first one lands.
type staleLatestRepo struct {
	*memory.RosterRepository
	stale roster.Roster
}

func (r *staleLatestRepo) GetLatest(_ context.Context, _, _ string) (roster.Roster, bool, error) {
	return r.stale, true, nil
}

func TestRosterService_Commit_RaceSurfacesConflictAndRefunds(t *testing.T) {
	f := newRosterFixture(t, nil)

	first, err := f.svc.Commit(t.Context(), validInput("user-1"))
	if err != nil {
		t.Fatalf("first commit failed: %v", err)
	}

	input := validInput("user-1")
	input.SlotArtistIDs[4] = "art_hollow_pines"
	second, err := f.svc.Commit(t.Context(), input)
	if err != nil {
		t.Fatalf("second commit failed: %v", err)
	}
	if second.WeekAssigned != first.WeekAssigned+1 {
		t.Fatalf("unexpected week progression: %d then %d", first.WeekAssigned, second.WeekAssigned)
	}

	// Replay the second submission against a stale latest read: it
	// targets week 2 again, which is already taken.
	week1, _, err := f.rosterRepo.GetForWeek(t.Context(), "user-1", memory.SeasonIDAutumn2026, 1)
	if err != nil {
		t.Fatalf("get week 1 roster: %v", err)
	}
	f.svc.rosterRepo = &staleLatestRepo{RosterRepository: f.rosterRepo, stale: week1}

	input.SlotArtistIDs[3] = "art_static_bloom"
	input.SlotArtistIDs[4] = "art_cold_aurora"
	_, err = f.svc.Commit(t.Context(), input)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	p, err := f.profileRepo.GetOrCreate(t.Context(), "user-1", testStartingCoins)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if p.MusiCoins != testStartingCoins-second.Cost {
		t.Fatalf("conflict must refund the debit, balance = %d", p.MusiCoins)
	}
}

// brokenInsertRepo fails inserts with a transient store error until
// restored, leaving every read path intact.
type brokenInsertRepo struct {
	*memory.RosterRepository
	insertErr error
}

func (r *brokenInsertRepo) Insert(ctx context.Context, item roster.Roster) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	return r.RosterRepository.Insert(ctx, item)
}

func TestRosterService_Commit_PostDebitFailureCompensates(t *testing.T) {
	f := newRosterFixture(t, nil)

	if _, err := f.svc.Commit(t.Context(), validInput("user-1")); err != nil {
		t.Fatalf("first commit failed: %v", err)
	}

	broken := &brokenInsertRepo{
		RosterRepository: f.rosterRepo,
		insertErr:        errors.New("connection reset by peer"),
	}
	f.svc.rosterRepo = broken

	input := validInput("user-1")
	input.SlotArtistIDs[4] = "art_hollow_pines"

	_, err := f.svc.Commit(t.Context(), input)
	if !errors.Is(err, ErrInconsistentState) {
		t.Fatalf("expected ErrInconsistentState, got %v", err)
	}

	p, err := f.profileRepo.GetOrCreate(t.Context(), "user-1", testStartingCoins)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if p.MusiCoins != testStartingCoins {
		t.Fatalf("debit must be credited back, balance = %d", p.MusiCoins)
	}
}

func TestRosterService_Commit_FailedFirstSaveRevertsInstantScore(t *testing.T) {
	created := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	f := newRosterFixture(t, []weekly.Score{
		{WeekNumber: 1, ArtistID: "art_nova_skyline", TotalPoints: 10, CreatedAt: created},
	})

	broken := &brokenInsertRepo{
		RosterRepository: f.rosterRepo,
		insertErr:        errors.New("connection reset by peer"),
	}
	f.svc.rosterRepo = broken

	if _, err := f.svc.Commit(t.Context(), validInput("user-1")); err == nil {
		t.Fatal("expected first save to fail")
	}

	p, err := f.profileRepo.GetOrCreate(t.Context(), "user-1", testStartingCoins)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if p.TotalScore != 0 {
		t.Fatalf("failed save must revert the instant credit, total score = %v", p.TotalScore)
	}

	// The retry bootstraps again; the credit must land exactly once.
	broken.insertErr = nil
	res, err := f.svc.Commit(t.Context(), validInput("user-1"))
	if err != nil {
		t.Fatalf("retried save failed: %v", err)
	}
	want := 10 * 2.0
	if res.InstantScore != want {
		t.Fatalf("instant score = %v, want %v", res.InstantScore, want)
	}

	p, err = f.profileRepo.GetOrCreate(t.Context(), "user-1", testStartingCoins)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if p.TotalScore != want {
		t.Fatalf("total score = %v, want %v", p.TotalScore, want)
	}
}

func TestRosterService_Commit_SameWeekResubmitReplaces(t *testing.T) {
	f := newRosterFixture(t, nil)

	if _, err := f.svc.Commit(t.Context(), validInput("user-1")); err != nil {
		t.Fatalf("first commit failed: %v", err)
	}

	input := validInput("user-1")
	input.SlotArtistIDs[4] = "art_hollow_pines"
	if _, err := f.svc.Commit(t.Context(), input); err != nil {
		t.Fatalf("second commit failed: %v", err)
	}

	// Resubmitting while week 2 is still pending replaces the week 2
	// version instead of conflicting.
	input.SlotArtistIDs[3] = "art_static_bloom"
	input.SlotArtistIDs[4] = "art_cold_aurora"
	res, err := f.svc.Commit(t.Context(), input)
	if err != nil {
		t.Fatalf("same-week resubmit failed: %v", err)
	}
	if res.WeekAssigned != 2 {
		t.Fatalf("resubmit must stay on week 2, got %d", res.WeekAssigned)
	}

	current, exists, err := f.rosterRepo.GetForWeek(t.Context(), "user-1", memory.SeasonIDAutumn2026, 2)
	if err != nil || !exists {
		t.Fatalf("get week 2 roster: exists=%v err=%v", exists, err)
	}
	if current.Slots[3].ArtistID != "art_static_bloom" {
		t.Fatalf("replacement not persisted, slot 4 = %s", current.Slots[3].ArtistID)
	}
}

func TestRosterService_GetCurrent_CarryOver(t *testing.T) {
	f := newRosterFixture(t, nil)

	if _, err := f.svc.Commit(t.Context(), validInput("user-1")); err != nil {
		t.Fatalf("first commit failed: %v", err)
	}
	input := validInput("user-1")
	input.SlotArtistIDs[4] = "art_hollow_pines"
	if _, err := f.svc.Commit(t.Context(), input); err != nil {
		t.Fatalf("second commit failed: %v", err)
	}

	// A week far past the last version still resolves to it.
	week := 7
	current, exists, err := f.svc.GetCurrent(t.Context(), "user-1", memory.SeasonIDAutumn2026, &week)
	if err != nil || !exists {
		t.Fatalf("get current: exists=%v err=%v", exists, err)
	}
	if current.WeekNumber != 2 {
		t.Fatalf("carry-over week = %d, want 2", current.WeekNumber)
	}

	week = 1
	current, exists, err = f.svc.GetCurrent(t.Context(), "user-1", memory.SeasonIDAutumn2026, &week)
	if err != nil || !exists {
		t.Fatalf("get week 1: exists=%v err=%v", exists, err)
	}
	if current.Slots[4].ArtistID != "art_static_bloom" {
		t.Fatalf("week 1 version must be the original, slot 5 = %s", current.Slots[4].ArtistID)
	}

	latest, exists, err := f.svc.GetCurrent(t.Context(), "user-1", memory.SeasonIDAutumn2026, nil)
	if err != nil || !exists {
		t.Fatalf("get latest: exists=%v err=%v", exists, err)
	}
	if latest.WeekNumber != 2 {
		t.Fatalf("latest week = %d, want 2", latest.WeekNumber)
	}
}

func TestRosterService_GetCurrent_NoRoster(t *testing.T) {
	f := newRosterFixture(t, nil)

	_, exists, err := f.svc.GetCurrent(t.Context(), "user-9", memory.SeasonIDAutumn2026, nil)
	if err != nil {
		t.Fatalf("get current: %v", err)
	}
	if exists {
		t.Fatal("expected no roster")
	}
}
