package brain

import (
	"context"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/valyala/fasthttp"

	"github.com/mraditya/leaguesim/internal/domain/world"
	"github.com/mraditya/leaguesim/internal/platform/logging"
	"github.com/mraditya/leaguesim/internal/platform/resilience"
)

const (
	defaultLMStudioBaseURL = "http://localhost:1234"
	defaultLMStudioTimeout = 30 * time.Second

	systemPrompt = "You are the narrative brain of a football league simulation. " +
		"Given a league snapshot and match results, respond with ONLY a JSON array of soft-state proposals, " +
		`each shaped as {"target_kind":"player|team|owner|staff","target_id":"...","field":"...","value":0,"reason":"..."}. ` +
		"Writable fields: player form/morale/fitness/reputation, team morale/reputation/tactical_familiarity, " +
		"owner public_approval, staff team_rapport. No prose, no markdown."
)

type LMStudioConfig struct {
	BaseURL        string
	Model          string
	Temperature    float64
	MaxTokens      int
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// LMStudioProvider asks a local LM Studio server for soft-state proposals.
// Responses are untrusted input; decoding failures degrade to an empty
// proposal list at the caller. The breaker keeps a dead server from stalling
// every matchday on connection timeouts.
type LMStudioProvider struct {
	client         *fasthttp.Client
	baseURL        string
	model          string
	temperature    float64
	maxTokens      int
	timeout        time.Duration
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewLMStudioProvider(cfg LMStudioConfig) *LMStudioProvider {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultLMStudioBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultLMStudioTimeout
	}
	return &LMStudioProvider{
		client:         &fasthttp.Client{ReadTimeout: timeout, WriteTimeout: timeout},
		baseURL:        baseURL,
		model:          cfg.Model,
		temperature:    cfg.Temperature,
		maxTokens:      cfg.MaxTokens,
		timeout:        timeout,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		circuitEnabled: cfg.CircuitBreaker.Enabled,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Messages    []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (p *LMStudioProvider) Propose(ctx context.Context, w *world.World, phase Phase, mc MatchdayContext) ([]Proposal, error) {
	if p.circuitEnabled {
		if err := p.breaker.Allow(); err != nil {
			return nil, errors.Mark(errors.Wrap(err, "lmstudio circuit open"), ErrProviderUnavailable)
		}
	}

	prompt, err := buildPrompt(w, phase, mc)
	if err != nil {
		return nil, err
	}

	body, err := sonic.ConfigStd.Marshal(chatRequest{
		Model:       p.model,
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "encode lmstudio request")
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(p.baseURL + "/v1/chat/completions")
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	timeout := p.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	if err := p.client.DoTimeout(req, resp, timeout); err != nil {
		p.recordFailure()
		return nil, errors.Mark(errors.Wrap(err, "call lmstudio"), ErrProviderUnavailable)
	}
	if status := resp.StatusCode(); status != fasthttp.StatusOK {
		p.recordFailure()
		return nil, errors.Mark(errors.Newf("lmstudio returned status %d", status), ErrProviderUnavailable)
	}

	var chat chatResponse
	if err := sonic.ConfigStd.Unmarshal(resp.Body(), &chat); err != nil {
		p.recordFailure()
		return nil, errors.Wrap(err, "decode lmstudio response")
	}
	if len(chat.Choices) == 0 {
		p.recordFailure()
		return nil, errors.New("lmstudio response has no choices")
	}

	proposals, err := parseProposals(chat.Choices[0].Message.Content)
	if err != nil {
		p.recordFailure()
		return nil, err
	}

	if p.circuitEnabled {
		p.breaker.RecordSuccess()
	}
	p.logger.DebugContext(ctx, "lmstudio proposals received", "phase", string(phase), "count", len(proposals))
	return proposals, nil
}

func (p *LMStudioProvider) recordFailure() {
	if p.circuitEnabled {
		p.breaker.RecordFailure()
	}
}

// promptContext is the compact snapshot sent to the model. Full squads would
// blow the context window of small local models, so only the table and the
// matchday's results go over the wire.
type promptContext struct {
	Phase    string              `json:"phase"`
	Season   int                 `json:"season"`
	Matchday int                 `json:"matchday"`
	Date     string              `json:"date"`
	Tables   map[string][]string `json:"tables"`
	Results  []resultSummary     `json:"results,omitempty"`
}

type resultSummary struct {
	MatchID   string `json:"match_id"`
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`
}

func buildPrompt(w *world.World, phase Phase, mc MatchdayContext) (string, error) {
	pc := promptContext{
		Phase:    string(phase),
		Season:   mc.Season,
		Matchday: mc.Matchday,
		Date:     mc.Date,
		Tables:   make(map[string][]string),
	}
	for _, leagueID := range w.LeagueIDs() {
		for _, t := range w.Table(leagueID) {
			pc.Tables[leagueID] = append(pc.Tables[leagueID], t.ID)
		}
	}
	for _, result := range mc.Results {
		pc.Results = append(pc.Results, resultSummary{
			MatchID:   result.MatchID,
			HomeTeam:  result.HomeTeamID,
			AwayTeam:  result.AwayTeamID,
			HomeScore: result.HomeScore,
			AwayScore: result.AwayScore,
		})
	}

	data, err := sonic.ConfigStd.Marshal(pc)
	if err != nil {
		return "", errors.Wrap(err, "encode prompt context")
	}
	return string(data), nil
}

// parseProposals tolerates the fences smaller models like to wrap JSON in.
func parseProposals(content string) ([]Proposal, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var proposals []Proposal
	if err := sonic.ConfigStd.Unmarshal([]byte(content), &proposals); err != nil {
		return nil, errors.Wrap(err, "decode proposals")
	}
	return proposals, nil
}
