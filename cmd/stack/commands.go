package main

import (
	"fmt"
	"strconv"
	"strings"

	servercommon "github.com/evanschultz/stack/internal/adapters/server/common"
	"github.com/evanschultz/stack/internal/app"
	"github.com/evanschultz/stack/internal/domain"
	"github.com/spf13/cobra"
)

// newEpicCommand builds `stack epic`.
func (c *cli) newEpicCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "epic",
		Short: "Create, list and delete epics",
	}

	var title, description, color string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an epic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession("epic create", func(s *session) error {
				epic, err := s.svc.CreateEpic(cmd.Context(), app.CreateEpicInput{
					Title:       title,
					Description: description,
					Color:       color,
				})
				if err != nil {
					return fmt.Errorf("create epic: %w", err)
				}
				return c.write(cmd, servercommon.EpicFromDomain(epic))
			})
		},
	}
	create.Flags().StringVar(&title, "title", "", "epic title")
	create.Flags().StringVar(&description, "description", "", "epic description")
	create.Flags().StringVar(&color, "color", "", "color tag (defaults to epics.default_color)")
	_ = create.MarkFlagRequired("title")

	list := &cobra.Command{
		Use:   "list",
		Short: "List epics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession("epic list", func(s *session) error {
				epics, err := s.svc.ListEpics(cmd.Context())
				if err != nil {
					return fmt.Errorf("list epics: %w", err)
				}
				return c.write(cmd, servercommon.EpicsFromDomain(epics))
			})
		},
	}

	get := &cobra.Command{
		Use:   "get ID",
		Short: "Show one epic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg("epic", args[0])
			if err != nil {
				return err
			}
			return c.withSession("epic get", func(s *session) error {
				epic, err := s.svc.GetEpic(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("get epic %d: %w", id, err)
				}
				return c.write(cmd, servercommon.EpicFromDomain(epic))
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an epic; its stories stay without an epic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg("epic", args[0])
			if err != nil {
				return err
			}
			return c.withSession("epic delete", func(s *session) error {
				if err := s.svc.DeleteEpic(cmd.Context(), id); err != nil {
					return fmt.Errorf("delete epic %d: %w", id, err)
				}
				return c.write(cmd, map[string]any{"deleted": id})
			})
		},
	}

	cmd.AddCommand(create, list, get, del)
	return cmd
}

// newStoryCommand builds `stack story`.
func (c *cli) newStoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "story",
		Short: "Create, list, update and delete stories",
	}

	var (
		title, body, status, priority string
		epicID                        int64
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a story",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := app.CreateStoryInput{Title: title, Description: body}
			if strings.TrimSpace(status) != "" {
				parsed, err := domain.ParseStatus(status)
				if err != nil {
					return err
				}
				in.Status = parsed
			}
			if strings.TrimSpace(priority) != "" {
				parsed, err := domain.ParsePriority(priority)
				if err != nil {
					return err
				}
				in.Priority = parsed
			}
			if cmd.Flags().Changed("epic") {
				in.EpicID = &epicID
			}
			return c.withSession("story create", func(s *session) error {
				if in.EpicID != nil {
					if _, err := s.svc.GetEpic(cmd.Context(), *in.EpicID); err != nil {
						return fmt.Errorf("epic %d: %w", *in.EpicID, err)
					}
				}
				story, err := s.svc.CreateStory(cmd.Context(), in)
				if err != nil {
					return fmt.Errorf("create story: %w", err)
				}
				return c.write(cmd, servercommon.StoryFromDomain(story))
			})
		},
	}
	create.Flags().StringVar(&title, "title", "", "story title")
	create.Flags().StringVar(&body, "body", "", "markdown description")
	create.Flags().Int64Var(&epicID, "epic", 0, "owning epic id")
	create.Flags().StringVar(&priority, "priority", "", "low, medium, high or critical")
	create.Flags().StringVar(&status, "status", "", "todo, in_progress, in_review or done")
	_ = create.MarkFlagRequired("title")

	var (
		listStatus string
		listEpic   int64
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List stories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var filter app.StoryFilter
			if strings.TrimSpace(listStatus) != "" {
				parsed, err := domain.ParseStatus(listStatus)
				if err != nil {
					return err
				}
				filter.Status = parsed
			}
			if cmd.Flags().Changed("epic") {
				filter.EpicID = &listEpic
			}
			return c.withSession("story list", func(s *session) error {
				stories, err := s.svc.ListStories(cmd.Context(), filter)
				if err != nil {
					return fmt.Errorf("list stories: %w", err)
				}
				return c.write(cmd, servercommon.StoriesFromDomain(stories))
			})
		},
	}
	list.Flags().StringVar(&listStatus, "status", "", "only this status")
	list.Flags().Int64Var(&listEpic, "epic", 0, "only this epic")

	get := &cobra.Command{
		Use:   "get ID",
		Short: "Show one story with its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg("story", args[0])
			if err != nil {
				return err
			}
			return c.withSession("story get", func(s *session) error {
				detail, err := servercommon.NewAppServiceAdapter(s.svc).GetStory(cmd.Context(), id)
				if err != nil {
					return err
				}
				return c.write(cmd, detail)
			})
		},
	}

	cmd.AddCommand(create, list, get, c.newStoryUpdateCommand(), c.newStoryDeleteCommand())
	return cmd
}

// newStoryUpdateCommand builds `stack story update`, applying only the flags that were set.
func (c *cli) newStoryUpdateCommand() *cobra.Command {
	var (
		title, body, status, priority string
		epicID                        int64
		noEpic                        bool
	)
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update fields of one story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg("story", args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("epic") && noEpic {
				return fmt.Errorf("--epic and --no-epic are mutually exclusive")
			}
			var (
				newStatus   domain.Status
				newPriority domain.Priority
			)
			if flags.Changed("status") {
				if newStatus, err = domain.ParseStatus(status); err != nil {
					return err
				}
			}
			if flags.Changed("priority") {
				if newPriority, err = domain.ParsePriority(priority); err != nil {
					return err
				}
			}
			return c.withSession("story update", func(s *session) error {
				ctx := cmd.Context()
				if _, err := s.svc.GetStory(ctx, id); err != nil {
					return fmt.Errorf("get story %d: %w", id, err)
				}
				if flags.Changed("title") {
					if err := s.svc.UpdateStoryTitle(ctx, id, title); err != nil {
						return fmt.Errorf("update title: %w", err)
					}
				}
				if flags.Changed("body") {
					if err := s.svc.UpdateStoryDescription(ctx, id, body); err != nil {
						return fmt.Errorf("update body: %w", err)
					}
				}
				if flags.Changed("status") {
					if err := s.svc.UpdateStoryStatus(ctx, id, newStatus); err != nil {
						return fmt.Errorf("update status: %w", err)
					}
				}
				if flags.Changed("priority") {
					if err := s.svc.UpdateStoryPriority(ctx, id, newPriority); err != nil {
						return fmt.Errorf("update priority: %w", err)
					}
				}
				switch {
				case noEpic:
					if err := s.svc.UpdateStoryEpic(ctx, id, nil); err != nil {
						return fmt.Errorf("clear epic: %w", err)
					}
				case flags.Changed("epic"):
					if _, err := s.svc.GetEpic(ctx, epicID); err != nil {
						return fmt.Errorf("epic %d: %w", epicID, err)
					}
					if err := s.svc.UpdateStoryEpic(ctx, id, &epicID); err != nil {
						return fmt.Errorf("assign epic: %w", err)
					}
				}
				story, err := s.svc.GetStory(ctx, id)
				if err != nil {
					return fmt.Errorf("get story %d: %w", id, err)
				}
				return c.write(cmd, servercommon.StoryFromDomain(story))
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&body, "body", "", "new markdown description")
	cmd.Flags().StringVar(&status, "status", "", "new status")
	cmd.Flags().StringVar(&priority, "priority", "", "new priority")
	cmd.Flags().Int64Var(&epicID, "epic", 0, "assign to epic id")
	cmd.Flags().BoolVar(&noEpic, "no-epic", false, "remove the epic assignment")
	return cmd
}

// newStoryDeleteCommand builds `stack story delete`.
func (c *cli) newStoryDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a story and its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg("story", args[0])
			if err != nil {
				return err
			}
			return c.withSession("story delete", func(s *session) error {
				if err := s.svc.DeleteStory(cmd.Context(), id); err != nil {
					return fmt.Errorf("delete story %d: %w", id, err)
				}
				return c.write(cmd, map[string]any{"deleted": id})
			})
		},
	}
}

// newTaskCommand builds `stack task`.
func (c *cli) newTaskCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage the checklist tasks of a story",
	}

	var title string
	create := &cobra.Command{
		Use:   "create STORY_ID",
		Short: "Append a task to a story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			storyID, err := parseIDArg("story", args[0])
			if err != nil {
				return err
			}
			return c.withSession("task create", func(s *session) error {
				task, err := servercommon.NewAppServiceAdapter(s.svc).CreateTask(cmd.Context(), servercommon.CreateTaskRequest{
					StoryID: storyID,
					Title:   title,
				})
				if err != nil {
					return err
				}
				return c.write(cmd, task)
			})
		},
	}
	create.Flags().StringVar(&title, "title", "", "task title")
	_ = create.MarkFlagRequired("title")

	list := &cobra.Command{
		Use:   "list STORY_ID",
		Short: "List the tasks of a story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			storyID, err := parseIDArg("story", args[0])
			if err != nil {
				return err
			}
			return c.withSession("task list", func(s *session) error {
				tasks, err := s.svc.ListTasks(cmd.Context(), storyID)
				if err != nil {
					return fmt.Errorf("list tasks: %w", err)
				}
				return c.write(cmd, servercommon.TasksFromDomain(tasks))
			})
		},
	}

	toggle := &cobra.Command{
		Use:   "toggle ID",
		Short: "Flip the done flag of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg("task", args[0])
			if err != nil {
				return err
			}
			return c.withSession("task toggle", func(s *session) error {
				task, err := s.svc.ToggleTask(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("toggle task %d: %w", id, err)
				}
				return c.write(cmd, servercommon.TaskFromDomain(task))
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg("task", args[0])
			if err != nil {
				return err
			}
			return c.withSession("task delete", func(s *session) error {
				if err := s.svc.DeleteTask(cmd.Context(), id); err != nil {
					return fmt.Errorf("delete task %d: %w", id, err)
				}
				return c.write(cmd, map[string]any{"deleted": id})
			})
		},
	}

	cmd.AddCommand(create, list, toggle, del)
	return cmd
}

// newBoardCommand builds `stack board`.
func (c *cli) newBoardCommand() *cobra.Command {
	var epicID int64
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Print all four columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var filter *int64
			if cmd.Flags().Changed("epic") {
				filter = &epicID
			}
			return c.withSession("board", func(s *session) error {
				board, err := servercommon.NewAppServiceAdapter(s.svc).Board(cmd.Context(), filter)
				if err != nil {
					return err
				}
				return c.write(cmd, board)
			})
		},
	}
	cmd.Flags().Int64Var(&epicID, "epic", 0, "only stories of this epic")
	return cmd
}

// write encodes one batch result to the command's stdout.
func (c *cli) write(cmd *cobra.Command, payload any) error {
	return writeResult(cmd.OutOrStdout(), c.output, payload)
}

// parseIDArg parses one positive integer id argument.
func parseIDArg(kind, raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", kind, raw)
	}
	return id, nil
}
