package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/pmagent/internal/domain"
	"github.com/felixgeelhaar/pmagent/internal/exitcode"
	"github.com/felixgeelhaar/pmagent/internal/task"
	"github.com/felixgeelhaar/pmagent/internal/tui"
	"github.com/felixgeelhaar/pmagent/internal/ux"
)

// dueDateLayout is the accepted --due format
const dueDateLayout = "2006-01-02"

type createTaskOptions struct {
	platform    string
	priority    string
	hours       float64
	assignee    string
	due         string
	dependsOn   []string
	tags        []string
	interactive bool
	format      string
}

func newCreateTaskCmd() *cobra.Command {
	opts := &createTaskOptions{}
	cmd := &cobra.Command{
		Use:   "create-task TITLE DESCRIPTION",
		Short: "Create a task",
		Long: `Create a todo task. Unset fields take the defaults: platform both,
priority medium, 4 estimated hours. With --interactive the remaining fields
are asked for in a form.`,
		Example: `  pmagent create-task "Add streaks" "Daily streak counter" --platform ios --priority high --hours 6
  pmagent create-task --interactive`,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.interactive {
				return exitcode.Usage(cobra.MaximumNArgs(2)(cmd, args))
			}
			return exitcode.Usage(cobra.ExactArgs(2)(cmd, args))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreateTask(cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.platform, "platform", string(task.DefaultPlatform), "target platform: ios, android, both")
	f.StringVar(&opts.priority, "priority", string(task.DefaultPriority), "priority: critical, high, medium, low")
	f.Float64Var(&opts.hours, "hours", task.DefaultEstimatedHours, "estimated hours")
	f.StringVar(&opts.assignee, "assignee", "", "assigned team member")
	f.StringVar(&opts.due, "due", "", "due date (YYYY-MM-DD)")
	f.StringSliceVar(&opts.dependsOn, "depends-on", nil, "ids of tasks this one depends on")
	f.StringSliceVar(&opts.tags, "tag", nil, "tags")
	f.BoolVarP(&opts.interactive, "interactive", "i", false, "fill in the task in an interactive form")
	f.StringVar(&opts.format, "format", "text", "output format: text, json, yaml")
	return cmd
}

func runCreateTask(cmd *cobra.Command, args []string, opts *createTaskOptions) error {
	in := tui.TaskInput{
		Platform: opts.platform,
		Priority: opts.priority,
		Assignee: opts.assignee,
		Due:      opts.due,
	}
	if cmd.Flags().Changed("hours") || !opts.interactive {
		in.Hours = strconv.FormatFloat(opts.hours, 'f', -1, 64)
	}
	if len(args) > 0 {
		in.Title = args[0]
	}
	if len(args) > 1 {
		in.Description = args[1]
	}

	if opts.interactive {
		if !tui.ShouldPrompt() {
			return exitcode.Usage(errors.New("--interactive needs a terminal"))
		}
		if err := tui.PromptForTask(&in); err != nil {
			return err
		}
	}

	params, err := taskParams(in, opts.dependsOn, opts.tags)
	if err != nil {
		return exitcode.Usage(err)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	s, err := a.openStore()
	if err != nil {
		return err
	}
	t, err := s.Create(params)
	if err != nil {
		return err
	}

	if opts.format != "text" {
		f, err := a.formatter(opts.format)
		if err != nil {
			return err
		}
		return f.Format(t.ToRecord())
	}
	fmt.Fprintf(a.out, "%s %s %s\n", a.styles().Success.Render("Created"), a.styles().ID.Render(string(t.ID)), t.Title)
	return nil
}

// taskParams validates the collected input
func taskParams(in tui.TaskInput, dependsOn, tags []string) (task.Params, error) {
	if strings.TrimSpace(in.Title) == "" {
		return task.Params{}, errors.New("title cannot be empty")
	}
	p := task.Params{
		Title:       in.Title,
		Description: in.Description,
		Tags:        tags,
	}

	platform := domain.Platform(strings.ToLower(in.Platform))
	if in.Platform != "" && !platform.IsKnown() {
		return task.Params{}, fmt.Errorf("invalid platform %q: must be ios, android, or both", in.Platform)
	}
	p.Platform = platform

	if in.Priority != "" {
		priority, err := domain.NewPriority(strings.ToLower(in.Priority))
		if err != nil {
			return task.Params{}, err
		}
		p.Priority = priority
	}

	if strings.TrimSpace(in.Hours) != "" {
		if err := tui.ValidateHours(in.Hours); err != nil {
			return task.Params{}, err
		}
		hours, _ := strconv.ParseFloat(strings.TrimSpace(in.Hours), 64)
		p.EstimatedHours = &hours
	}

	if in.Assignee != "" {
		assignee := in.Assignee
		p.AssignedTo = &assignee
	}

	if in.Due != "" {
		due, err := time.ParseInLocation(dueDateLayout, in.Due, time.Local)
		if err != nil {
			return task.Params{}, fmt.Errorf("invalid due date %q: use YYYY-MM-DD", in.Due)
		}
		p.DueDate = &due
	}

	// Dependencies may name ids that do not exist yet
	for _, dep := range dependsOn {
		if dep = strings.TrimSpace(dep); dep != "" {
			p.Dependencies = append(p.Dependencies, domain.TaskID(dep))
		}
	}
	return p, nil
}

type listTasksOptions struct {
	status   string
	platform string
	format   string
}

func newListTasksCmd() *cobra.Command {
	opts := &listTasksOptions{}
	cmd := &cobra.Command{
		Use:   "list-tasks",
		Short: "List tasks in store order",
		Long: `List tasks in store order. --platform ios also lists tasks on both
platforms.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListTasks(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.status, "status", "", "only tasks with this status")
	cmd.Flags().StringVar(&opts.platform, "platform", "", "only tasks counting toward this platform")
	cmd.Flags().StringVar(&opts.format, "format", "text", "output format: text, json, yaml")
	return cmd
}

func runListTasks(cmd *cobra.Command, opts *listTasksOptions) error {
	var status domain.Status
	if opts.status != "" {
		s, err := domain.NewStatus(opts.status)
		if err != nil {
			return exitcode.Usage(err)
		}
		status = s
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	f, err := a.formatter(opts.format)
	if err != nil {
		return err
	}
	s, err := a.openStore()
	if err != nil {
		return err
	}

	tasks := filterTasks(s.List(), status, domain.Platform(opts.platform))
	if opts.format == "text" || opts.format == "" {
		return f.Format(tasks)
	}
	return f.Format(tasks.Records())
}

func filterTasks(tasks []*task.Task, status domain.Status, platform domain.Platform) ux.TaskList {
	out := ux.TaskList{}
	for _, t := range tasks {
		if status != "" && t.Status != status {
			continue
		}
		if platform != "" && !t.Platform.Includes(platform) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func newUpdateStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "update-status ID STATUS",
		Short:   "Set the status of a task",
		Long:    "Set the status of a task. STATUS is one of todo, in_progress, review, completed, blocked.",
		Example: "  pmagent update-status TASK-0003 in_progress",
		Args:    usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := domain.TaskID(strings.TrimSpace(args[0]))
			status, err := domain.NewStatus(args[1])
			if err != nil {
				return exitcode.Usage(err)
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			s, err := a.openStore()
			if err != nil {
				return err
			}
			t, err := s.UpdateStatus(id, status)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s %s -> %s\n", a.styles().ID.Render(string(t.ID)), t.Title, a.styles().Status(t.Status).Render(string(t.Status)))
			return nil
		},
	}
}
