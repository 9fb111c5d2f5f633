package main

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/iyunix/go-kbshell/internal/domain"
	"github.com/iyunix/go-kbshell/internal/history"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and edit the persisted chat history",
	}
	cmd.AddCommand(newHistoryListCmd(a))
	cmd.AddCommand(newHistoryAddCmd(a))
	cmd.AddCommand(newHistoryDeleteCmd(a))
	cmd.AddCommand(newHistoryFavoriteCmd(a))
	cmd.AddCommand(newHistoryClearCmd(a))
	return cmd
}

// withStore opens the history for the duration of fn.
func (a *app) withStore(fn func(*history.Store) error) error {
	store, closeStore, err := a.openStore()
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			a.logger.Error("closing history database", "error", err)
		}
	}()
	return fn(store)
}

func newHistoryListCmd(a *app) *cobra.Command {
	var favoritesOnly bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List chats, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.formatter()
			if err != nil {
				return err
			}
			return a.withStore(func(s *history.Store) error {
				chats := s.Chats()
				if favoritesOnly {
					filtered := chats[:0]
					for _, c := range chats {
						if c.IsFavorite {
							filtered = append(filtered, c)
						}
					}
					chats = filtered
				}
				printChats(cmd.OutOrStdout(), chats, f)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&favoritesOnly, "favorites", false, "only list favorite chats")
	return cmd
}

func newHistoryAddCmd(a *app) *cobra.Command {
	var in domain.ChatInput
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a chat to the top of the history",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Title = strings.TrimSpace(strings.Join(args, " "))
			if in.Title == "" {
				return errors.New("title must not be empty")
			}
			return a.withStore(func(s *history.Store) error {
				item := s.AddChat(in)
				fmt.Fprintln(cmd.OutOrStdout(), item.ID)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&in.IsFavorite, "favorite", false, "mark the new chat as a favorite")
	cmd.Flags().StringVar(&in.Thumbnail, "thumbnail", "", "thumbnail image URL")
	return cmd
}

func newHistoryDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s *history.Store) error {
				if s.DeleteChat(args[0]) {
					fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "No chat with id %s\n", args[0])
				}
				return nil
			})
		},
	}
}

func newHistoryFavoriteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "favorite <id>",
		Short: "Toggle a chat's favorite flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s *history.Store) error {
				item, ok := s.ToggleFavorite(args[0])
				if !ok {
					return errors.Errorf("no chat with id %s", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s favorite=%t\n", item.ID, item.IsFavorite)
				return nil
			})
		},
	}
}

func newHistoryClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s *history.Store) error {
				s.ClearHistory()
				fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
				return nil
			})
		},
	}
}
