package advisor

import (
	"context"
	"fmt"
	"time"
)

// Analysis is the codebase analysis report
type Analysis struct {
	RunID        string         `json:"run_id"`
	Timestamp    string         `json:"timestamp"`
	Platform     string         `json:"platform"`
	Issues       []string       `json:"issues"`
	Improvements []string       `json:"improvements"`
	Metrics      map[string]any `json:"metrics"`
	AIInsights   string         `json:"ai_insights,omitempty"`
	Error        string         `json:"error,omitempty"`

	// Path is where the report was saved, empty when it was not
	Path string `json:"-"`
}

// AnalyzeCodebase asks for an analysis of both app codebases. A successful
// answer is stored verbatim in AIInsights and the report is saved. A backend
// failure is recorded in Error and nothing is saved. Only a failed save
// returns an error.
func (a *Advisor) AnalyzeCodebase(ctx context.Context, platform string) (*Analysis, error) {
	now := a.clock()
	analysis := &Analysis{
		RunID:        a.newID(),
		Timestamp:    now.Format(time.RFC3339Nano),
		Platform:     platform,
		Issues:       []string{},
		Improvements: []string{},
		Metrics:      map[string]any{},
	}
	logger := a.logger.With("run_id", analysis.RunID, "platform", platform)

	content, err := a.generate(ctx, PurposeAnalyze, a.analyzePrompt(), analyzeMaxTokens)
	if err != nil {
		logger.WithError(err).Error("codebase analysis failed")
		analysis.Error = err.Error()
		return analysis, nil
	}
	analysis.AIInsights = content
	logger.Info("codebase analysis completed")

	path, err := a.writer.WriteAnalysis(analysis, now)
	if err != nil {
		return analysis, err
	}
	analysis.Path = path
	return analysis, nil
}

func (a *Advisor) analyzePrompt() string {
	return fmt.Sprintf(`Analyze the following project structure and provide insights:

iOS React Native App: %s
- Stack: React Native, Expo, JavaScript
- Features: Character creation, quest system, XP tracking

Android Native App: %s
- Stack: Kotlin, Jetpack Compose, Room Database
- Features: Material3 design, MVVM architecture

Please identify:
1. Critical issues that need immediate attention
2. Feature parity gaps between platforms
3. Code quality improvements
4. Performance optimization opportunities
5. Security considerations
6. Testing coverage gaps

Format as JSON with categories: issues, improvements, feature_gaps, metrics
`, a.projects.IOSPath, a.projects.AndroidPath)
}
