// Package tui holds the interactive prompts, built on huh.
package tui

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/felixgeelhaar/pmagent/internal/domain"
)

// TaskInput holds the answers of the task creation form. Fields set before
// the form runs are shown as defaults.
type TaskInput struct {
	Title       string
	Description string
	Platform    string
	Priority    string
	Hours       string
	Assignee    string
	Due         string
}

// NewTaskForm builds the task creation form bound to in
func NewTaskForm(in *TaskInput) *huh.Form {
	if in.Platform == "" {
		in.Platform = string(domain.PlatformBoth)
	}
	if in.Priority == "" {
		in.Priority = string(domain.PriorityMedium)
	}

	platforms := []huh.Option[string]{
		huh.NewOption("Both", string(domain.PlatformBoth)),
		huh.NewOption("iOS", string(domain.PlatformIOS)),
		huh.NewOption("Android", string(domain.PlatformAndroid)),
	}
	priorities := make([]huh.Option[string], 0, len(domain.Priorities))
	for _, p := range domain.Priorities {
		priorities = append(priorities, huh.NewOption(string(p), string(p)))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&in.Title).
				Validate(required("title")),
			huh.NewText().
				Title("Description").
				Value(&in.Description),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Platform").
				Options(platforms...).
				Value(&in.Platform),
			huh.NewSelect[string]().
				Title("Priority").
				Options(priorities...).
				Value(&in.Priority),
			huh.NewInput().
				Title("Estimated hours").
				Placeholder("4").
				Value(&in.Hours).
				Validate(ValidateHours),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Assignee").
				Placeholder("optional").
				Value(&in.Assignee),
			huh.NewInput().
				Title("Due date").
				Placeholder("YYYY-MM-DD, optional").
				Value(&in.Due).
				Validate(ValidateDate),
		),
	)
}

// PromptForTask runs the task creation form
func PromptForTask(in *TaskInput) error {
	if err := NewTaskForm(in).Run(); err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}
	return nil
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

// ValidateHours accepts an empty value or a non-negative number
func ValidateHours(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	h, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return errors.New("hours must be a number")
	}
	if h < 0 {
		return errors.New("hours cannot be negative")
	}
	return nil
}

// ValidateDate accepts an empty value or a YYYY-MM-DD date
func ValidateDate(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", strings.TrimSpace(s)); err != nil {
		return errors.New("date must be YYYY-MM-DD")
	}
	return nil
}

// IsInteractive returns true if stdin is a terminal (not piped)
func IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// ShouldPrompt returns true if prompts should be shown based on environment
// Prompts are disabled in CI environments or when stdin is not a terminal
func ShouldPrompt() bool {
	// Check common CI environment variables
	ciEnvVars := []string{
		"CI",
		"GITHUB_ACTIONS",
		"GITLAB_CI",
		"JENKINS_URL",
		"TRAVIS",
		"CIRCLECI",
		"BUILDKITE",
	}

	for _, envVar := range ciEnvVars {
		if os.Getenv(envVar) != "" {
			return false
		}
	}

	return IsInteractive()
}
