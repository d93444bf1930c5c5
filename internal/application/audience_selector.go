package application

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/bnema/ghostreel/internal/domain"
	"github.com/bnema/ghostreel/internal/ports"
)

type SelectRequest struct {
	Count       int
	DatasetPath string
	ExcludeUsed bool
	Criteria    domain.FilterCriteria
}

type SelectResult struct {
	Usernames      []string
	Profiles       []domain.Profile
	TotalAvailable int
	TotalInDataset int
	PreviouslyUsed int
	ExcludedUsers  int
}

// AudienceSelector samples targets from a scraped dataset and remembers who
// was picked.
type AudienceSelector struct {
	datasets ports.DatasetLoader
	history  ports.SelectionHistoryRepository
	clock    ports.Clock
	random   Random
	logger   *zap.Logger
}

func NewAudienceSelector(datasets ports.DatasetLoader, history ports.SelectionHistoryRepository, clock ports.Clock, random Random, logger *zap.Logger) *AudienceSelector {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AudienceSelector{
		datasets: datasets,
		history:  history,
		clock:    clock,
		random:   defaultRandom(random),
		logger:   logger,
	}
}

// Select picks Count matching users at random. With ExcludeUsed, users picked
// before are skipped unless that leaves too few, in which case they are
// allowed again.
func (s *AudienceSelector) Select(ctx context.Context, req SelectRequest) (SelectResult, error) {
	if req.Count <= 0 {
		return SelectResult{}, fmt.Errorf("count must be positive, got %d", req.Count)
	}

	profiles, err := s.datasets.Load(ctx, req.DatasetPath)
	if err != nil {
		return SelectResult{}, err
	}

	history, err := s.history.Load(ctx)
	if err != nil {
		return SelectResult{}, fmt.Errorf("load selection history: %w", err)
	}

	matching := make([]domain.Profile, 0, len(profiles))
	for _, profile := range profiles {
		if req.Criteria.Match(profile) {
			matching = append(matching, profile)
		}
	}

	available := matching
	excluded := 0
	if req.ExcludeUsed {
		fresh := make([]domain.Profile, 0, len(matching))
		for _, profile := range matching {
			if history.Used(profile.Username) {
				continue
			}
			fresh = append(fresh, profile)
		}

		if len(fresh) >= req.Count {
			available = fresh
			excluded = len(matching) - len(fresh)
		} else {
			s.logger.Info("not enough unused users, including previously selected",
				zap.Int("unused", len(fresh)),
				zap.Int("requested", req.Count),
			)
		}
	}

	if len(available) < req.Count {
		return SelectResult{}, fmt.Errorf("%w: only %d users available, requested %d", domain.ErrInsufficientAudience, len(available), req.Count)
	}

	pool := append([]domain.Profile(nil), available...)
	s.random.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	picked := pool[:req.Count]

	usernames := make([]string, 0, len(picked))
	for _, profile := range picked {
		usernames = append(usernames, profile.Username)
	}

	history.Record(s.clock.Now(), filepath.Base(req.DatasetPath), usernames)
	if err := s.history.Save(ctx, history); err != nil {
		return SelectResult{}, fmt.Errorf("save selection history: %w", err)
	}

	return SelectResult{
		Usernames:      usernames,
		Profiles:       picked,
		TotalAvailable: len(available),
		TotalInDataset: len(profiles),
		PreviouslyUsed: len(history.Users) - countNew(history, usernames),
		ExcludedUsers:  excluded,
	}, nil
}

// countNew counts usernames selected for the first time in the latest round.
func countNew(history domain.SelectionHistory, usernames []string) int {
	n := 0
	for _, username := range usernames {
		if history.Users[username].TimesSelected == 1 {
			n++
		}
	}
	return n
}
