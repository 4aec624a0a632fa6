package advisor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/pmagent/internal/domain"
	agenterrors "github.com/felixgeelhaar/pmagent/internal/errors"
	"github.com/felixgeelhaar/pmagent/internal/gateway"
	"github.com/felixgeelhaar/pmagent/internal/task"
)

// DefaultSuggestionTitle names a suggested task that came without a title
const DefaultSuggestionTitle = "New Task"

// Suggestion is one task proposed by the backend. Missing fields take the
// task defaults.
type Suggestion struct {
	Title          *string  `json:"title"`
	Description    *string  `json:"description"`
	Platform       *string  `json:"platform"`
	Priority       *string  `json:"priority"`
	EstimatedHours *float64 `json:"estimated_hours"`
}

// Params converts the suggestion into task creation parameters. An unknown
// priority is an error.
func (s Suggestion) Params() (task.Params, error) {
	p := task.Params{Title: DefaultSuggestionTitle, EstimatedHours: s.EstimatedHours}
	if s.Title != nil {
		p.Title = *s.Title
	}
	if s.Description != nil {
		p.Description = *s.Description
	}
	if s.Platform != nil {
		p.Platform = domain.Platform(*s.Platform)
	}
	if s.Priority != nil {
		priority, err := domain.NewPriority(*s.Priority)
		if err != nil {
			return task.Params{}, err
		}
		p.Priority = priority
	}
	return p, nil
}

// SuggestTasks asks for the next five high-impact tasks and creates one task
// per usable suggestion. Suggestions that do not decode or validate are
// skipped with a warning. A backend failure or an answer without a JSON
// array yields no tasks and no error; only store persistence failures are
// returned, together with the tasks created before the failure.
func (a *Advisor) SuggestTasks(ctx context.Context, developerContext string) ([]*task.Task, error) {
	logger := a.logger.With("run_id", a.newID())

	content, err := a.generate(ctx, PurposeSuggest, suggestPrompt(developerContext), suggestMaxTokens)
	if err != nil {
		logger.WithError(err).Error("task suggestion failed")
		return nil, nil
	}

	var raw []json.RawMessage
	if err := gateway.DecodeArray(content, &raw); err != nil {
		logger.WithError(err).Error("task suggestion failed")
		return nil, nil
	}

	var created []*task.Task
	for i, item := range raw {
		var s Suggestion
		if err := json.Unmarshal(item, &s); err != nil {
			logger.Warn("skipping suggestion", "index", i, "error", err)
			continue
		}
		params, err := s.Params()
		if err != nil {
			logger.Warn("skipping suggestion", "index", i, "error", err)
			continue
		}
		t, err := a.tasks.Create(params)
		if err != nil {
			if agenterrors.HasCode(err, agenterrors.ErrCodeTaskInvalid) {
				logger.Warn("skipping suggestion", "index", i, "error", err)
				continue
			}
			return created, err
		}
		created = append(created, t)
	}
	logger.Info("task suggestions applied", "suggested", len(raw), "created", len(created))
	return created, nil
}

func suggestPrompt(developerContext string) string {
	return fmt.Sprintf(`Based on the MindQuest project status, suggest the next 5 high-impact tasks:

Project: Gamified ADHD productivity app
Platforms: iOS (React Native), Android (Kotlin)

Current Context: %s

Consider:
1. Feature parity between platforms
2. User experience improvements
3. Performance optimizations
4. Bug fixes
5. Testing coverage

Return as JSON array with: title, description, platform, priority, estimated_hours
`, developerContext)
}
