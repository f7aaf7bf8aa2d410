package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"phrasebook/internal/activity"
	"phrasebook/internal/api"
	"phrasebook/internal/dictionary"
	"phrasebook/internal/search"
	"phrasebook/internal/services"
	"phrasebook/internal/textutil"
)

const detailLimit = 50

func parsePhraseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, services.Wrap(services.ErrValidation, "cli", "parse id", fmt.Sprintf("invalid phrase id %q", arg), nil)
	}
	return id, nil
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Rank stored phrases by similarity to the query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			query := strings.Join(args, " ")
			return ctx.withStore(func(store *dictionary.Store) error {
				svc := search.NewService(store, cfg.Search, logger)
				n := svc.ClampLimit(limit)
				candidates, err := svc.Search(cmd.Context(), query, n)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, api.SearchResponse{Query: query, Limit: n, Candidates: api.FromCandidates(candidates)})
				}
				if len(candidates) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No candidates found")
					return nil
				}
				rows := make([][]string, 0, len(candidates))
				for _, c := range candidates {
					rows = append(rows, []string{
						strconv.Itoa(c.Rank),
						strconv.FormatFloat(c.Score, 'f', 1, 64),
						strconv.FormatInt(c.Phrase.ID, 10),
						c.Phrase.Source,
						c.Phrase.Target,
						c.Phrase.Context,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"#", "Score", "ID", "Source", "Target", "Context"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Number of candidates (default from config, capped by search.max_limit)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print candidates as JSON")
	return cmd
}

func newAdoptCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "adopt <id>",
		Short: "Use a stored translation and bump its usage count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			id, err := parsePhraseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *dictionary.Store) error {
				phrase, err := search.NewService(store, cfg.Search, logger).Adopt(cmd.Context(), id)
				if err != nil {
					return err
				}
				ctx.record(cmd.Context(), activity.ActionAdopt,
					fmt.Sprintf("src=%s,id=%d", textutil.Truncate(phrase.Source, detailLimit), phrase.ID))
				fmt.Fprintln(cmd.OutOrStdout(), phrase.Target)
				return nil
			})
		},
	}
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	var in dictionary.Input

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add or update a phrase",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *dictionary.Store) error {
				res, err := store.Upsert(cmd.Context(), in)
				if err != nil {
					return err
				}
				ctx.record(cmd.Context(), activity.ActionManualUpsert,
					fmt.Sprintf("%s -> %s", strings.TrimSpace(in.Source), strings.TrimSpace(in.Target)))
				verb := "Updated"
				if res.Created {
					verb = "Added"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s phrase %d\n", verb, res.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in.Source, "source", "", "Source text (required)")
	cmd.Flags().StringVar(&in.Target, "target", "", "Translation (required)")
	cmd.Flags().StringVar(&in.Context, "context", "", "Optional note")
	cmd.Flags().StringVar(&in.Tags, "tags", "", "Comma-separated tags")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a phrase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePhraseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *dictionary.Store) error {
				phrase, err := store.GetByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				if phrase == nil {
					return services.Wrap(services.ErrNotFound, "cli", "delete", fmt.Sprintf("phrase %d", id), nil)
				}
				if err := store.Delete(cmd.Context(), id); err != nil {
					return err
				}
				ctx.record(cmd.Context(), activity.ActionDelete,
					fmt.Sprintf("src=%s,id=%d", textutil.Truncate(phrase.Source, detailLimit), id))
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted phrase %d\n", id)
				return nil
			})
		},
	}
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var opts dictionary.ListOptions
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List phrases, most used first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *dictionary.Store) error {
				phrases, err := store.List(cmd.Context(), opts)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, api.PhraseListResponse{Phrases: api.FromPhrases(phrases)})
				}
				if len(phrases) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Dictionary is empty")
					return nil
				}
				rows := make([][]string, 0, len(phrases))
				for _, p := range phrases {
					rows = append(rows, []string{
						strconv.FormatInt(p.ID, 10),
						p.Source,
						p.Target,
						strings.Join(p.TagList(), ", "),
						strconv.FormatInt(p.UsageCount, 10),
						p.CreatedAt.Local().Format("2006-01-02 15:04"),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Source", "Target", "Tags", "Used", "Added"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 0, "Maximum rows (0 for all)")
	cmd.Flags().StringVar(&opts.Tag, "tag", "", "Only phrases carrying this tag")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print phrases as JSON")
	return cmd
}
