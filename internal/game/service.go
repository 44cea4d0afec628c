package game

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log/slog"
	mathrand "math/rand"
	"slices"
	"strings"
	"sync"
	"time"

	"noticeperiod/internal/achievement"
	"noticeperiod/internal/content"
	"noticeperiod/internal/store"
	"noticeperiod/internal/viral"
)

const lockStripes = 64

type Service struct {
	store store.Store
	log   *slog.Logger
	now   func() time.Time

	mu    sync.Mutex
	rand  *mathrand.Rand
	viral *viral.Generator

	// per-identity write locks, striped by hash
	locks [lockStripes]sync.Mutex
}

// NewService seeds the stress roller from the clock when seed is 0.
func NewService(st store.Store, logger *slog.Logger, seed int64) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := &Service{
		store: st,
		log:   logger,
		now:   time.Now,
		rand:  mathrand.New(mathrand.NewSource(seed)),
	}
	s.viral = viral.NewGenerator(seed).WithClock(func() time.Time { return s.now() })
	return s
}

func (s *Service) InitPlayer(ctx context.Context, id Identity) (PlayerProgress, error) {
	if err := id.validate(); err != nil {
		return PlayerProgress{}, err
	}
	p, found, err := s.loadPlayer(ctx, id)
	if err != nil {
		return PlayerProgress{}, err
	}
	if found {
		return p, nil
	}

	unlock := s.lockIdentity(id)
	defer unlock()
	// another request may have created it while we waited
	p, found, err = s.loadPlayer(ctx, id)
	if err != nil {
		return PlayerProgress{}, err
	}
	if found {
		return p, nil
	}
	p = newPlayer(s.timestamp())
	if err := s.savePlayer(ctx, id, p); err != nil {
		return PlayerProgress{}, err
	}
	s.log.Info("player created", "post_id", id.PostID, "user_id", id.UserID)
	return p, nil
}

func (s *Service) State(ctx context.Context, id Identity) (GameState, error) {
	p, err := s.InitPlayer(ctx, id)
	if err != nil {
		return GameState{}, err
	}
	step, err := stepAt(p.CurrentStep)
	if err != nil {
		return GameState{}, err
	}
	return GameState{
		Player:       p,
		CurrentStep:  step,
		GameComplete: p.GameComplete(),
	}, nil
}

func (s *Service) ApplyChoice(ctx context.Context, in ChoiceInput) (ChoiceResult, error) {
	var out ChoiceResult
	if err := in.Identity.validate(); err != nil {
		return out, err
	}
	choice := strings.TrimSpace(in.Choice)
	if choice == "" {
		return out, fmt.Errorf("%w: choice is required", ErrInvalidInput)
	}
	if !validChoiceIndex(in.ChoiceIndex) {
		return out, fmt.Errorf("%w: choiceIndex must be 0, 1 or 2", ErrInvalidInput)
	}
	idem := strings.TrimSpace(in.IdempotencyKey)

	unlock := s.lockIdentity(in.Identity)
	defer unlock()

	p, found, err := s.loadPlayer(ctx, in.Identity)
	if err != nil {
		return out, err
	}
	if !found {
		return out, fmt.Errorf("player %w", ErrNotFound)
	}
	if idem != "" && slices.Contains(p.RecentChoiceKeys, idem) {
		return out, ErrDuplicateChoice
	}
	if p.Outcome.Terminal() {
		return out, fmt.Errorf("%w: run ended with %s", ErrGameOver, p.Outcome)
	}
	step, err := stepAt(p.CurrentStep)
	if err != nil {
		return out, err
	}

	p.ChoicesMade = append(p.ChoicesMade, choice)
	p.CompletedSteps = append(p.CompletedSteps, p.CurrentStep)

	moneyChange := MoneyChange(p.CurrentStep)
	stressChange := s.rollStress(in.ChoiceIndex)

	if isFinalStep(p.CurrentStep) {
		stressChange, moneyChange = s.resolveEnding(&p, in.ChoiceIndex, choice)
		p.recordMoment(s.viral.Moment(step.ID, step.Title, choice))
	} else {
		if content.PhaseOf(step.ID+1) != step.Phase {
			p.recordMoment(s.viral.Moment(step.ID, step.Title, choice))
		}
		p.CurrentStep++
		p.Phase = content.PhaseOf(p.CurrentStep)
		p.BankAccount = floorBank(p.BankAccount + moneyChange)
		p.StressLevel = ClampStress(p.StressLevel + stressChange)
	}

	newly := achievement.Evaluate(p.snapshot())
	for _, a := range newly {
		p.Achievements = append(p.Achievements, a.ID)
		s.log.Info("achievement unlocked", "post_id", in.Identity.PostID, "user_id", in.Identity.UserID, "achievement", a.ID)
	}

	if idem != "" {
		p.rememberChoiceKey(idem)
	}
	// progress and the idempotency key land in one write
	if err := s.savePlayer(ctx, in.Identity, p); err != nil {
		return out, err
	}

	out = ChoiceResult{
		Player:          p,
		Step:            step,
		StressChange:    stressChange,
		MoneyChange:     moneyChange,
		NewAchievements: newly,
		GameComplete:    p.GameComplete(),
	}
	if p.CurrentStep <= content.TotalSteps && p.Outcome == OutcomePlaying {
		if next, err := content.Get(p.CurrentStep); err == nil {
			out.NextStep = &next
		}
	}
	return out, nil
}

// resolveEnding applies the day-30 choice and returns the reported
// stress and money deltas.
func (s *Service) resolveEnding(p *PlayerProgress, index int, choice string) (int, float64) {
	p.EndingChoice = choice
	switch index {
	case choiceEscape:
		p.setOutcome(OutcomeEscaped)
		p.BankAccount += EscapeBonus
		p.StressLevel = ClampStress(p.StressLevel + EscapeRelief)
		s.log.Info("run ended", "outcome", OutcomeEscaped, "days", len(p.CompletedSteps))
		return EscapeRelief, 0
	case choiceRepeat:
		days := len(p.CompletedSteps)
		p.setOutcome(OutcomeRepeat)
		p.CurrentStep = 1
		p.Phase = content.PhaseHunt
		p.BankAccount = InitialBank
		p.StressLevel = InitialStress
		p.CompletedSteps = []int{}
		s.log.Info("run ended", "outcome", OutcomeRepeat, "days", days)
		return 0, 0
	default:
		p.setOutcome(OutcomeSabbatical)
		p.StressLevel = ClampStress(p.StressLevel + SabbaticalRelief)
		s.log.Info("run ended", "outcome", OutcomeSabbatical, "days", len(p.CompletedSteps))
		return SabbaticalRelief, 0
	}
}

func (s *Service) ResetPlayer(ctx context.Context, id Identity) (PlayerProgress, error) {
	if err := id.validate(); err != nil {
		return PlayerProgress{}, err
	}
	unlock := s.lockIdentity(id)
	defer unlock()

	old, found, err := s.loadPlayer(ctx, id)
	if err != nil {
		return PlayerProgress{}, err
	}
	p := newPlayer(s.timestamp())
	if found {
		// choices queued before the reset must not replay into the new run
		p.RecentChoiceKeys = old.RecentChoiceKeys
	}
	if err := s.savePlayer(ctx, id, p); err != nil {
		return PlayerProgress{}, err
	}
	return p, nil
}

// Achievements lists the whole catalog with the player's unlock flags.
func (s *Service) Achievements(ctx context.Context, id Identity) ([]achievement.Status, error) {
	if err := id.validate(); err != nil {
		return nil, err
	}
	p, found, err := s.loadPlayer(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("player %w", ErrNotFound)
	}
	return achievement.Statuses(p.Achievements), nil
}

// Player returns the stored record without creating one.
func (s *Service) Player(ctx context.Context, id Identity) (PlayerProgress, error) {
	if err := id.validate(); err != nil {
		return PlayerProgress{}, err
	}
	p, found, err := s.loadPlayer(ctx, id)
	if err != nil {
		return PlayerProgress{}, err
	}
	if !found {
		return PlayerProgress{}, fmt.Errorf("player %w", ErrNotFound)
	}
	return p, nil
}

func (s *Service) InitPost(ctx context.Context, postID string) (PostConfig, error) {
	postID = strings.TrimSpace(postID)
	if postID == "" {
		return PostConfig{}, fmt.Errorf("%w: postId is required", ErrInvalidInput)
	}
	key := store.PostConfigKey(postID)
	raw, found, err := s.store.Get(ctx, key)
	if err != nil {
		return PostConfig{}, fmt.Errorf("%w: load post config: %w", ErrStoreUnavailable, err)
	}
	if found {
		return decodePostConfig(raw)
	}

	cfg := PostConfig{GameInitialized: true, CreatedAt: s.timestamp()}
	raw, err = json.Marshal(cfg)
	if err != nil {
		return PostConfig{}, err
	}
	if err := s.store.Set(ctx, key, raw); err != nil {
		return PostConfig{}, fmt.Errorf("%w: save post config: %w", ErrStoreUnavailable, err)
	}
	s.log.Info("post initialized", "post_id", postID)
	return cfg, nil
}

func (s *Service) loadPlayer(ctx context.Context, id Identity) (PlayerProgress, bool, error) {
	raw, found, err := s.store.Get(ctx, store.PlayerKey(id.PostID, id.UserID))
	if err != nil {
		s.log.Error("load player failed", "post_id", id.PostID, "user_id", id.UserID, "err", err)
		return PlayerProgress{}, false, fmt.Errorf("%w: load player: %w", ErrStoreUnavailable, err)
	}
	if !found {
		return PlayerProgress{}, false, nil
	}
	p, err := DecodeProgress(raw)
	if err != nil {
		return PlayerProgress{}, false, err
	}
	return p, true, nil
}

func (s *Service) savePlayer(ctx context.Context, id Identity, p PlayerProgress) error {
	raw, err := EncodeProgress(p)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, store.PlayerKey(id.PostID, id.UserID), raw); err != nil {
		s.log.Error("save player failed", "post_id", id.PostID, "user_id", id.UserID, "err", err)
		return fmt.Errorf("%w: save player: %w", ErrStoreUnavailable, err)
	}
	return nil
}

func stepAt(id int) (content.Step, error) {
	step, err := content.Get(id)
	if err != nil {
		return step, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return step, nil
}

func (s *Service) lockIdentity(id Identity) func() {
	h := fnv.New32a()
	h.Write([]byte(id.PostID))
	h.Write([]byte{0})
	h.Write([]byte(id.UserID))
	m := &s.locks[h.Sum32()%lockStripes]
	m.Lock()
	return m.Unlock
}

func (s *Service) rollStress(index int) int {
	r := stressRange[index]
	s.mu.Lock()
	defer s.mu.Unlock()
	return r.min + s.rand.Intn(r.span)
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}
