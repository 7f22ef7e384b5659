// Package adaptive implements ability-driven question selection using an
// IRT-style logistic model. All functions are pure in-memory computation
// over a session's AdaptiveState; nothing here blocks or does I/O.
package adaptive

import (
	"math"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/hirestack/assessment-engine/internal/model"
)

const (
	// abilityFloor/abilityCeil clamp the ability estimate so a run of
	// identical answers can never pin it to a bound.
	abilityFloor = 0.05
	abilityCeil  = 0.95

	// recentWindow is how many answers/ability values feed the confidence
	// computation and the anti-repetition penalty.
	recentWindow = 5

	// repetitionPenalty breaks near-ties against recently seen questions.
	// Deliberately small so it never overrides a much better difficulty match.
	repetitionPenalty = 0.05

	timeNudge = 0.05
)

// Config carries the tunables of the selector. Use DefaultConfig and
// override per test via model.AdaptiveSettings.
type Config struct {
	StartAbility     float64
	AdjustmentFactor float64
	MinDifficulty    float64
	MaxDifficulty    float64
	MinQuestions     int
	MaxQuestions     int
	// ConfidenceThreshold stops the test once the model trusts its estimate.
	ConfidenceThreshold float64
	// StabilityVarianceLimit stops the test when the recent ability values
	// have settled, even if confidence never crosses the threshold.
	StabilityVarianceLimit float64
	// BaseResponseSeconds anchors the expected response time per question;
	// harder questions are expected to take proportionally longer.
	BaseResponseSeconds float64
}

// DefaultConfig returns the selector defaults.
func DefaultConfig() Config {
	return Config{
		StartAbility:           0.5,
		AdjustmentFactor:       0.2,
		MinDifficulty:          0.1,
		MaxDifficulty:          0.9,
		MinQuestions:           5,
		MaxQuestions:           20,
		ConfidenceThreshold:    0.85,
		StabilityVarianceLimit: 0.01,
		BaseResponseSeconds:    60,
	}
}

// ApplySettings overlays non-zero per-test settings onto the config.
func (c Config) ApplySettings(s *model.AdaptiveSettings) Config {
	if s == nil {
		return c
	}
	if s.StartAbility > 0 {
		c.StartAbility = s.StartAbility
	}
	if s.AdjustmentFactor > 0 {
		c.AdjustmentFactor = s.AdjustmentFactor
	}
	if s.MinDifficulty > 0 {
		c.MinDifficulty = s.MinDifficulty
	}
	if s.MaxDifficulty > 0 {
		c.MaxDifficulty = s.MaxDifficulty
	}
	if s.MinQuestions > 0 {
		c.MinQuestions = s.MinQuestions
	}
	if s.MaxQuestions > 0 {
		c.MaxQuestions = s.MaxQuestions
	}
	if s.ConfidenceThreshold > 0 {
		c.ConfidenceThreshold = s.ConfidenceThreshold
	}
	return c
}

// Selector picks questions and updates ability estimates for one session.
// It holds no per-session state; everything lives in model.AdaptiveState.
type Selector struct {
	cfg Config
	rng *rand.Rand
}

// NewSelector creates a Selector. rng may be nil, in which case a
// non-deterministic source is used.
func NewSelector(cfg Config, rng *rand.Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Selector{cfg: cfg, rng: rng}
}

// Config returns the selector's effective configuration.
func (s *Selector) Config() Config {
	return s.cfg
}

// NewState creates the initial adaptive state for a session.
func (s *Selector) NewState() *model.AdaptiveState {
	return &model.AdaptiveState{
		AbilityEstimate:   s.cfg.StartAbility,
		CurrentDifficulty: s.cfg.StartAbility,
	}
}

// SelectNext picks, among the remaining questions, the one whose difficulty
// is closest to the current target, with a small penalty against questions
// seen in the recent window. Returns nil when candidates is empty.
func (s *Selector) SelectNext(st *model.AdaptiveState, candidates []model.Question) *model.Question {
	if len(candidates) == 0 {
		return nil
	}

	recent := make(map[uuid.UUID]bool, len(st.RecentQuestions))
	for _, id := range st.RecentQuestions {
		recent[id] = true
	}

	best := 0
	bestScore := math.Inf(1)
	for i := range candidates {
		score := math.Abs(candidates[i].Difficulty - st.CurrentDifficulty)
		// Only matters when a caller passes previously-asked questions as
		// candidates; callers that filter them out never trip it.
		if recent[candidates[i].ID] {
			score += repetitionPenalty
		}
		if score < bestScore {
			bestScore = score
			best = i
		}
	}

	chosen := &candidates[best]
	st.RecentQuestions = append(st.RecentQuestions, chosen.ID)
	if len(st.RecentQuestions) > recentWindow {
		st.RecentQuestions = st.RecentQuestions[len(st.RecentQuestions)-recentWindow:]
	}
	return chosen
}

// RecordAnswer feeds one observed answer into the model: it updates the
// ability estimate, picks the next target difficulty, and recomputes the
// confidence level.
func (s *Selector) RecordAnswer(st *model.AdaptiveState, q *model.Question, correct bool, responseSeconds float64) {
	predicted := expectedCorrectness(st.AbilityEstimate, q.Difficulty)

	observed := 0.0
	if correct {
		observed = 1.0
	}
	surprise := math.Abs(observed - predicted)
	adjustment := surprise * s.cfg.AdjustmentFactor
	if !correct {
		adjustment = -adjustment
	}
	adjustment += s.timeNudge(q, responseSeconds)

	st.AbilityEstimate = clamp(st.AbilityEstimate+adjustment, abilityFloor, abilityCeil)

	st.QuestionsAnswered++
	if correct {
		st.CorrectAnswers++
	}
	st.DifficultyHistory = append(st.DifficultyHistory, q.Difficulty)
	st.AbilityHistory = append(st.AbilityHistory, st.AbilityEstimate)
	st.Outcomes = append(st.Outcomes, model.AnswerOutcome{Correct: correct, Predicted: predicted})

	st.ConfidenceLevel = s.confidence(st)
	st.CurrentDifficulty = s.nextDifficulty(st, correct)
}

// ShouldStop evaluates the termination predicate after each answer.
// Returns the stop decision and, when stopping, the reason code.
func (s *Selector) ShouldStop(st *model.AdaptiveState) (bool, string) {
	if st.QuestionsAnswered >= s.cfg.MaxQuestions {
		return true, model.ReasonMaxQuestionsReached
	}
	if st.QuestionsAnswered < s.cfg.MinQuestions {
		return false, ""
	}
	if st.ConfidenceLevel >= s.cfg.ConfidenceThreshold {
		return true, model.ReasonConfidenceMet
	}
	if st.QuestionsAnswered >= 10 {
		if variance(tail(st.AbilityHistory, recentWindow)) < s.cfg.StabilityVarianceLimit {
			return true, model.ReasonAbilityStabilized
		}
	}
	return false, ""
}

// expectedCorrectness is the logistic model: the probability that a
// candidate of the given ability answers a question of the given
// difficulty correctly.
func expectedCorrectness(ability, difficulty float64) float64 {
	return 1 / (1 + math.Exp(-(ability - difficulty)))
}

// timeNudge rewards answering much faster than expected for the question's
// difficulty and penalizes taking far longer.
func (s *Selector) timeNudge(q *model.Question, responseSeconds float64) float64 {
	if responseSeconds <= 0 {
		return 0
	}
	expected := float64(q.TimeLimitSeconds)
	if expected <= 0 {
		expected = s.cfg.BaseResponseSeconds * (0.5 + q.Difficulty)
	}
	switch {
	case responseSeconds < 0.5*expected:
		return timeNudge
	case responseSeconds > 2*expected:
		return -timeNudge
	default:
		return 0
	}
}

// nextDifficulty derives the next target from the updated ability estimate:
// wide exploration noise while confidence is low, fine-tuning noise after,
// plus a small push in the direction of the last outcome.
func (s *Selector) nextDifficulty(st *model.AdaptiveState, lastCorrect bool) float64 {
	next := st.AbilityEstimate

	noise := 0.05
	if st.ConfidenceLevel < 0.5 {
		noise = 0.1
	}
	next += (s.rng.Float64()*2 - 1) * noise

	if lastCorrect {
		next += 0.05
	} else {
		next -= 0.05
	}

	return clamp(next, s.cfg.MinDifficulty, s.cfg.MaxDifficulty)
}

// confidence combines estimate stability, model accuracy, and how borderline
// the recent items were. Weights 0.4/0.4/0.2. Zero until three answers exist.
func (s *Selector) confidence(st *model.AdaptiveState) float64 {
	if st.QuestionsAnswered < 3 {
		return 0
	}

	stability := clamp(1-variance(tail(st.AbilityHistory, recentWindow))*10, 0, 1)

	recent := tailOutcomes(st.Outcomes, recentWindow)
	var matchSum, correct float64
	for _, o := range recent {
		observed := 0.0
		if o.Correct {
			observed = 1.0
			correct++
		}
		matchSum += 1 - math.Abs(o.Predicted-observed)
	}
	match := matchSum / float64(len(recent))

	// Uncertainty peaks at a 50% correctness rate, which means the items
	// have been well matched to the candidate.
	rate := correct / float64(len(recent))
	borderline := 1 - 2*math.Abs(rate-0.5)

	return clamp(0.4*stability+0.4*match+0.2*borderline, 0, 1)
}

func tail(vals []float64, n int) []float64 {
	if len(vals) <= n {
		return vals
	}
	return vals[len(vals)-n:]
}

func tailOutcomes(vals []model.AnswerOutcome, n int) []model.AnswerOutcome {
	if len(vals) <= n {
		return vals
	}
	return vals[len(vals)-n:]
}

func variance(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var mean float64
	for _, v := range vals {
		mean += v
	}
	mean /= float64(len(vals))

	var sum float64
	for _, v := range vals {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(vals))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
