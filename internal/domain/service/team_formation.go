// Package service contains domain services whose logic spans multiple
// entities. The team formation engine lives here: it turns a set of
// questionnaire responses into a team assignment for a project.
package service

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/elevate-edu/elevate/internal/domain/models"
	"github.com/elevate-edu/elevate/pkg/constants"
	"github.com/elevate-edu/elevate/pkg/errors"
	"github.com/elevate-edu/elevate/pkg/logger"
)

// Score weights. Role coverage dominates because balanced Belbin coverage is
// the primary formation goal; preferences act as a tie-breaker.
const (
	weightRoleCoverage  = 0.35
	weightSkillBalance  = 0.25
	weightAvailability  = 0.25
	weightPreference    = 0.15

	// overlapTargetHours normalizes availability overlap: a team sharing this
	// many free hours per week scores full marks on the availability term.
	overlapTargetHours = 40

	// stallLimit stops a search worker after this many non-improving swaps.
	stallLimit = 2000
)

// FormationInput describes one formation run.
type FormationInput struct {
	OrganizationID string
	ProjectID      string
	Responses      []*models.QuestionnaireResponse
	TeamSizeMin    int
	TeamSizeMax    int
}

// FormationResult is the outcome of a formation run.
type FormationResult struct {
	Teams      []*models.Team
	Unassigned []string
	TotalScore float64
	Iterations int
	Elapsed    time.Duration
}

// TeamFormationEngine builds teams by greedy seeding followed by parallel
// hill-climbing. It always returns the best assignment found when the
// context deadline expires.
type TeamFormationEngine struct {
	log     logger.Logger
	workers int
}

// NewTeamFormationEngine creates an engine running the given number of
// search workers.
func NewTeamFormationEngine(log logger.Logger, workers int) *TeamFormationEngine {
	if workers < 1 {
		workers = 1
	}
	return &TeamFormationEngine{
		log:     log.WithComponent("team_formation"),
		workers: workers,
	}
}

// Form runs the engine. The caller bounds the run with a context deadline;
// on expiry the best assignment found so far is returned, never an error.
func (e *TeamFormationEngine) Form(ctx context.Context, input FormationInput) (*FormationResult, error) {
	start := time.Now()

	if input.TeamSizeMin < 2 || input.TeamSizeMax < input.TeamSizeMin {
		return nil, errors.ErrInvalidRequest("invalid team size range [%d, %d]", input.TeamSizeMin, input.TeamSizeMax)
	}
	if len(input.Responses) < input.TeamSizeMin {
		return nil, errors.ErrInvalidRequest("not enough questionnaire responses to form a team: have %d, need %d",
			len(input.Responses), input.TeamSizeMin)
	}

	sizes, unassignedCount := planTeamSizes(len(input.Responses), input.TeamSizeMin, input.TeamSizeMax)

	seed := e.seedAssignment(input.Responses, sizes)

	best := seed.clone()
	bestScore := best.totalScore()
	var mu sync.Mutex
	totalIterations := 0

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < e.workers; w++ {
		rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(w)))
		g.Go(func() error {
			local, score, iters := climb(gctx, seed.clone(), rng)
			mu.Lock()
			totalIterations += iters
			if score > bestScore {
				best, bestScore = local, score
			}
			mu.Unlock()
			return nil
		})
	}
	// Workers only stop on context cancellation, which is the expected way a
	// run ends. The error is not a failure.
	_ = g.Wait()

	result := &FormationResult{
		Teams:      best.toTeams(input.OrganizationID, input.ProjectID),
		TotalScore: bestScore,
		Iterations: totalIterations,
		Elapsed:    time.Since(start),
	}
	if unassignedCount > 0 {
		result.Unassigned = best.unassignedIDs(unassignedCount)
	}

	e.log.Info(ctx, "formation run finished",
		logger.String("project_id", input.ProjectID),
		logger.Int("students", len(input.Responses)),
		logger.Int("teams", len(result.Teams)),
		logger.Int("unassigned", len(result.Unassigned)),
		logger.Float64("score", bestScore),
		logger.Int("iterations", totalIterations),
		logger.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

// planTeamSizes splits n students into team sizes within [min, max]. When n
// cannot be fully partitioned the remainder stays unassigned rather than
// producing an undersized team.
func planTeamSizes(n, min, max int) (sizes []int, unassigned int) {
	for k := (n + max - 1) / max; k <= n/min; k++ {
		base := n / k
		if base < min || base > max {
			continue
		}
		rem := n % k
		if rem > 0 && base+1 > max {
			continue
		}
		sizes = make([]int, k)
		for i := range sizes {
			sizes[i] = base
			if i < rem {
				sizes[i]++
			}
		}
		return sizes, 0
	}
	// No exact partition exists. Fill as many max-size teams as possible.
	k := n / max
	if k == 0 {
		k = 1
	}
	sizes = make([]int, k)
	assigned := 0
	for i := range sizes {
		sizes[i] = max
		assigned += max
	}
	if assigned > n {
		sizes[k-1] -= assigned - n
		assigned = n
	}
	return sizes, n - assigned
}

// assignment is a mutable candidate solution. teams[i] holds indexes into
// responses; spare holds indexes left out of every team.
type assignment struct {
	responses []*models.QuestionnaireResponse
	teams     [][]int
	spare     []int
}

func (a *assignment) clone() *assignment {
	c := &assignment{responses: a.responses}
	c.teams = make([][]int, len(a.teams))
	for i, t := range a.teams {
		c.teams[i] = append([]int(nil), t...)
	}
	c.spare = append([]int(nil), a.spare...)
	return c
}

func (a *assignment) totalScore() float64 {
	total := 0.0
	for _, t := range a.teams {
		total += teamScore(a.responses, t)
	}
	return total
}

func (a *assignment) toTeams(orgID, projectID string) []*models.Team {
	teams := make([]*models.Team, 0, len(a.teams))
	for i, idxs := range a.teams {
		team := models.NewTeam(orgID, projectID, fmt.Sprintf("Team %d", i+1), models.TeamOriginAutoFormed)
		team.Score = teamScore(a.responses, idxs)
		for _, idx := range idxs {
			// Size ceiling already honored by construction.
			_ = team.AddMember(a.responses[idx].UserID, 0)
		}
		teams = append(teams, team)
	}
	return teams
}

func (a *assignment) unassignedIDs(n int) []string {
	ids := make([]string, 0, n)
	for _, idx := range a.spare {
		ids = append(ids, a.responses[idx].UserID)
	}
	return ids
}

// seedAssignment distributes students round-robin by dominant Belbin role so
// each team starts with spread-out role coverage.
func (e *TeamFormationEngine) seedAssignment(responses []*models.QuestionnaireResponse, sizes []int) *assignment {
	order := make([]int, len(responses))
	for i := range order {
		order[i] = i
	}
	roleRank := make(map[constants.BelbinRole]int, len(constants.AllBelbinRoles))
	for i, r := range constants.AllBelbinRoles {
		roleRank[r] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		ri := roleRank[responses[order[i]].DominantRole()]
		rj := roleRank[responses[order[j]].DominantRole()]
		if ri != rj {
			return ri < rj
		}
		return responses[order[i]].UserID < responses[order[j]].UserID
	})

	a := &assignment{
		responses: responses,
		teams:     make([][]int, len(sizes)),
	}
	ti := 0
	for _, idx := range order {
		placed := false
		for range sizes {
			if len(a.teams[ti]) < sizes[ti] {
				a.teams[ti] = append(a.teams[ti], idx)
				placed = true
			}
			ti = (ti + 1) % len(sizes)
			if placed {
				break
			}
		}
		if !placed {
			a.spare = append(a.spare, idx)
		}
	}
	return a
}

// climb runs hill-climbing swaps until the context is done or the search
// stalls. Returns the improved assignment, its score and the swap count.
func climb(ctx context.Context, a *assignment, rng *rand.Rand) (*assignment, float64, int) {
	if len(a.teams) < 2 {
		return a, a.totalScore(), 0
	}
	scores := make([]float64, len(a.teams))
	total := 0.0
	for i, t := range a.teams {
		scores[i] = teamScore(a.responses, t)
		total += scores[i]
	}

	iterations := 0
	stalled := 0
	for stalled < stallLimit {
		select {
		case <-ctx.Done():
			return a, total, iterations
		default:
		}
		iterations++

		ti := rng.Intn(len(a.teams))
		tj := rng.Intn(len(a.teams))
		if ti == tj {
			stalled++
			continue
		}
		mi := rng.Intn(len(a.teams[ti]))
		mj := rng.Intn(len(a.teams[tj]))

		a.teams[ti][mi], a.teams[tj][mj] = a.teams[tj][mj], a.teams[ti][mi]
		newI := teamScore(a.responses, a.teams[ti])
		newJ := teamScore(a.responses, a.teams[tj])

		if newI+newJ > scores[ti]+scores[tj] {
			total += newI + newJ - scores[ti] - scores[tj]
			scores[ti], scores[tj] = newI, newJ
			stalled = 0
		} else {
			a.teams[ti][mi], a.teams[tj][mj] = a.teams[tj][mj], a.teams[ti][mi]
			stalled++
		}
	}
	return a, total, iterations
}

// teamScore rates one team in [0, 1] from role coverage, skill balance,
// availability overlap and teammate preferences.
func teamScore(responses []*models.QuestionnaireResponse, members []int) float64 {
	if len(members) == 0 {
		return 0
	}

	// Role coverage: distinct dominant roles relative to the achievable
	// maximum for this team size.
	roles := make(map[constants.BelbinRole]bool, len(members))
	for _, idx := range members {
		roles[responses[idx].DominantRole()] = true
	}
	maxRoles := len(members)
	if maxRoles > len(constants.AllBelbinRoles) {
		maxRoles = len(constants.AllBelbinRoles)
	}
	roleCoverage := float64(len(roles)) / float64(maxRoles)

	// Skill balance: for every skill anyone brings, credit the team's best
	// rating. Strong coverage of many skills beats duplicated strengths.
	bestBySkill := make(map[string]int)
	for _, idx := range members {
		for skill, rating := range responses[idx].Skills {
			if rating > bestBySkill[skill] {
				bestBySkill[skill] = rating
			}
		}
	}
	skillBalance := 0.0
	if len(bestBySkill) > 0 {
		sum := 0
		for _, rating := range bestBySkill {
			sum += rating
		}
		skillBalance = float64(sum) / float64(len(bestBySkill)*constants.SkillRatingMax)
	}

	// Availability: hours every member shares, normalized to the target.
	overlap := commonAvailability(responses, members)
	availability := float64(overlap) / float64(overlapTargetHours)
	if availability > 1 {
		availability = 1
	}

	// Preferences: fraction of directed prefers-pairs satisfied in-team.
	preference := 0.0
	if len(members) > 1 {
		satisfied := 0
		for _, a := range members {
			for _, b := range members {
				if a != b && responses[a].Prefers(responses[b].UserID) {
					satisfied++
				}
			}
		}
		preference = float64(satisfied) / float64(len(members)*(len(members)-1))
	}

	return weightRoleCoverage*roleCoverage +
		weightSkillBalance*skillBalance +
		weightAvailability*availability +
		weightPreference*preference
}

// commonAvailability counts hours marked available by every member.
func commonAvailability(responses []*models.QuestionnaireResponse, members []int) int {
	count := 0
	for h := 0; h < constants.HoursPerWeek; h++ {
		all := true
		for _, idx := range members {
			avail := responses[idx].Availability
			if h >= len(avail) || avail[h] != '1' {
				all = false
				break
			}
		}
		if all {
			count++
		}
	}
	return count
}
