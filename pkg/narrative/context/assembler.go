package context

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// RecentTurnsSource loads the most recent scene text for a branch,
// formatted for direct inclusion in a prompt, honoring a character
// budget. Implemented by [github.com/kahani-engine/narrative/pkg/narrative/branch]-backed readers.
type RecentTurnsSource interface {
	RecentTurnsText(ctx context.Context, branchID int64, budgetChars int) (string, error)
}

// Summarizer produces or retrieves a cached summary of everything before
// the recent-turns window, used once a branch's turn count passes
// [SummaryTurnThreshold].
type Summarizer interface {
	Summarize(ctx context.Context, branchID int64, budgetChars int) (string, error)
}

// PastTurnsSearcher finds semantically relevant past turns outside the
// recent-turns window. Implemented by
// [github.com/kahani-engine/narrative/pkg/narrative/recall].
type PastTurnsSearcher interface {
	RelevantPastTurns(ctx context.Context, branchID int64, recentTurnsText string, budgetChars int) (string, error)
}

// Assembler builds cache-optimized multi-message prompts for a story
// turn by combining the always-present stable blocks with the dynamic
// blocks (summary, recent turns, relevant past turns). Summary and recent
// turns are fetched concurrently, mirroring the teacher's hot-context
// assembler's errgroup-based fan-out; relevant past turns follow once the
// recent-turns text is known.
type Assembler struct {
	recent     RecentTurnsSource
	summarizer Summarizer
	recall     PastTurnsSearcher
	estimator  TokenEstimator
}

// Option configures an [Assembler].
type Option func(*Assembler)

// WithSummarizer supplies the summarization backend. Without one, the
// summary block is always skipped.
func WithSummarizer(s Summarizer) Option {
	return func(a *Assembler) { a.summarizer = s }
}

// WithRecallSearcher supplies the semantic-recall backend. Without one,
// the relevant-past-turns block is always skipped.
func WithRecallSearcher(r PastTurnsSearcher) Option {
	return func(a *Assembler) { a.recall = r }
}

// WithTokenEstimator overrides the default chars/4 token estimator.
func WithTokenEstimator(e TokenEstimator) Option {
	return func(a *Assembler) { a.estimator = e }
}

// NewAssembler constructs an Assembler. recent is required; summarizer
// and recall are optional via [Option].
func NewAssembler(recent RecentTurnsSource, opts ...Option) *Assembler {
	a := &Assembler{recent: recent, estimator: defaultTokenEstimator}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Assemble builds the full message list for branchID as of turnCount
// turns played. The summary and recent-turns blocks are fetched
// concurrently via errgroup; the relevant-past-turns search runs after
// them. A failure in any one aborts assembly.
func (a *Assembler) Assemble(ctx context.Context, branchID int64, in AssembleInput) (*Assembled, error) {
	maxTokens := in.MaxContextTokens
	if maxTokens <= 0 {
		maxTokens = 8000
	}

	var summary, recentText, relevantPast string

	eg, egCtx := errgroup.WithContext(ctx)

	if a.summarizer != nil && in.TurnCount > SummaryTurnThreshold {
		eg.Go(func() error {
			s, err := a.summarizer.Summarize(egCtx, branchID, SummaryBudgetChars)
			if err != nil {
				return fmt.Errorf("context: summarize branch %d: %w", branchID, err)
			}
			summary = s
			return nil
		})
	}

	eg.Go(func() error {
		text, err := a.recent.RecentTurnsText(egCtx, branchID, charBudgetFor(maxTokens))
		if err != nil {
			return fmt.Errorf("context: recent turns for branch %d: %w", branchID, err)
		}
		recentText = text
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// Relevant-past-turns search runs after recentText is known, since it
	// is used to avoid surfacing turns already shown in the recent window.
	if a.recall != nil && in.TurnCount > SemanticSearchTurnThreshold {
		text, err := a.recall.RelevantPastTurns(ctx, branchID, recentText, SemanticSearchBudgetChars)
		if err != nil {
			return nil, fmt.Errorf("context: relevant past turns for branch %d: %w", branchID, err)
		}
		relevantPast = text
	}

	messages := a.buildMessages(in, summary, recentText, relevantPast)

	used := 0
	for _, m := range messages {
		used += a.estimator(m.Content)
	}

	return &Assembled{Messages: messages, UsedTokensApprox: used}, nil
}

func (a *Assembler) buildMessages(in AssembleInput, summary, recentText, relevantPast string) []Message {
	playerName := ""
	for _, c := range in.Characters {
		if c.IsPlayer {
			playerName = c.Name
			break
		}
	}
	scenario := in.Scenario
	if scenario.PlayerName == "" {
		scenario.PlayerName = playerName
	}

	var messages []Message
	messages = append(messages, Message{Role: RoleSystem, Content: buildSystemPrompt(scenario, in.Rules)})
	messages = append(messages, Message{Role: RoleUser, Content: buildScenario(scenario)})

	// Messages 3-5 are always emitted (header only when empty) so the
	// dynamic blocks start at CacheBreakIndex.
	roster := buildCharacterRoster(in.Characters)
	if roster == "" {
		roster = "=== CHARACTER ROSTER ===\n(none)"
	}
	voices := buildDialogueStyles(in.Characters)
	if voices == "" {
		voices = "=== CHARACTER DIALOGUE STYLES ===\n(none)"
	}
	rels := buildRelationships(in.Characters)
	if rels == "" {
		rels = "=== CHARACTER RELATIONSHIPS ===\n(none)"
	}
	messages = append(messages, Message{Role: RoleUser, Content: roster}, Message{Role: RoleUser, Content: voices}, Message{Role: RoleUser, Content: rels})
	messages = append(messages, Message{Role: RoleUser, Content: buildRules(in.Rules, playerName)})

	// ---- cache break point: messages before this line are stable ----

	if summary != "" {
		messages = append(messages, Message{Role: RoleUser, Content: "=== CONVERSATION SO FAR ===\n" + summary})
	}
	if recentText != "" {
		messages = append(messages, Message{Role: RoleUser, Content: "=== RECENT CONVERSATION ===\n" + recentText})
	}
	if relevantPast != "" {
		messages = append(messages, Message{Role: RoleUser, Content: "=== RELEVANT PAST TURNS ===\n" + relevantPast})
	}

	return messages
}
