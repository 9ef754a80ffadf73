package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hrygo/clipsense/ai/classifier"
	"github.com/hrygo/clipsense/ai/enhance"
	"github.com/hrygo/clipsense/ai/prompt"
	"github.com/hrygo/clipsense/internal/profile"
	"github.com/hrygo/clipsense/internal/version"
	"github.com/hrygo/clipsense/store"
)

var errNoInput = errors.New("no input text: pass --text, an argument or pipe text on stdin")

var (
	enhanceCmd = &cobra.Command{
		Use:   "enhance [text]",
		Short: "Rewrite text for the platform it was written for",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProfile()
			if err != nil {
				return err
			}
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), terminationSignals...)
			defer stop()

			a, err := newApp(ctx, p, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			opts := enhanceOptions{text: text}
			opts.mode, _ = cmd.Flags().GetString("mode")
			opts.model, _ = cmd.Flags().GetString("model")
			opts.noCache, _ = cmd.Flags().GetBool("no-cache")
			opts.instructions, _ = cmd.Flags().GetString("instructions")
			opts.metrics, _ = cmd.Flags().GetBool("metrics")
			return runEnhance(ctx, a, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	classifyCmd = &cobra.Command{
		Use:   "classify [text]",
		Short: "Print the detected platform, tone and format as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProfile()
			if err != nil {
				return err
			}
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			c, err := newClassifier(p)
			if err != nil {
				return err
			}
			return runClassify(c, text, cmd.OutOrStdout())
		},
	}

	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "List recent enhancements",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProfile()
			if err != nil {
				return err
			}
			s, err := openHistory(cmd.Context(), p)
			if err != nil {
				return err
			}
			defer s.Close()

			var opts historyOptions
			opts.limit, _ = cmd.Flags().GetInt("limit")
			opts.mode, _ = cmd.Flags().GetString("mode")
			opts.status, _ = cmd.Flags().GetString("status")
			opts.since, _ = cmd.Flags().GetDuration("since")
			opts.pruneOlderThan, _ = cmd.Flags().GetDuration("prune-older-than")
			opts.json, _ = cmd.Flags().GetBool("json")
			return runHistory(cmd.Context(), s, opts, time.Now(), cmd.OutOrStdout())
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.StringFull())
		},
	}
)

func init() {
	enhanceCmd.Flags().String("text", "", "text to enhance (default: arguments, then stdin)")
	enhanceCmd.Flags().String("mode", string(prompt.ModeGeneral), "enhancement mode: general, agent or answer")
	enhanceCmd.Flags().String("model", "", "model override for this request")
	enhanceCmd.Flags().Bool("no-cache", false, "skip the cache and ask for a fresh variant")
	enhanceCmd.Flags().String("instructions", "", "extra instructions for the model")
	enhanceCmd.Flags().Bool("metrics", false, "print Prometheus metrics to stderr when done")

	classifyCmd.Flags().String("text", "", "text to classify (default: arguments, then stdin)")

	historyCmd.Flags().Int("limit", store.DefaultListLimit, "maximum entries to list")
	historyCmd.Flags().String("mode", "", "only list this enhancement mode")
	historyCmd.Flags().String("status", "", `only list this status ("success" or an error kind)`)
	historyCmd.Flags().Duration("since", 0, "only list entries newer than this, e.g. 24h")
	historyCmd.Flags().Duration("prune-older-than", 0, "delete entries older than this before listing")
	historyCmd.Flags().Bool("json", false, "print entries as JSON lines")
}

// readInput takes --text, then the joined arguments, then stdin.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	text, _ := cmd.Flags().GetString("text")
	if text == "" && len(args) > 0 {
		text = strings.Join(args, " ")
	}
	if text == "" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", errors.Wrap(err, "failed to read stdin")
		}
		text = string(data)
	}
	if strings.TrimSpace(text) == "" {
		return "", errNoInput
	}
	return text, nil
}

type enhanceOptions struct {
	text         string
	mode         string
	model        string
	noCache      bool
	instructions string
	metrics      bool
}

func runEnhance(ctx context.Context, a *app, opts enhanceOptions, out, errOut io.Writer) error {
	result, err := a.orchestrator.Enhance(ctx, enhance.Request{
		Text:         opts.text,
		Mode:         prompt.Mode(opts.mode),
		Model:        opts.model,
		NoCache:      opts.noCache,
		Instructions: opts.instructions,
	})
	if opts.metrics {
		defer func() { _ = a.exporter.WriteText(errOut) }()
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, result)
	return err
}

func runClassify(c *classifier.Classifier, text string, out io.Writer) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(c.Classify(text))
}

type historyOptions struct {
	limit          int
	mode           string
	status         string
	since          time.Duration
	pruneOlderThan time.Duration
	json           bool
}

func runHistory(ctx context.Context, s *store.Store, opts historyOptions, now time.Time, out io.Writer) error {
	if opts.pruneOlderThan > 0 {
		n, err := s.PruneEnhancements(ctx, now.Add(-opts.pruneOlderThan).Unix())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "pruned %d entries\n", n)
	}

	find := &store.FindEnhancement{Limit: opts.limit}
	if opts.mode != "" {
		find.Mode = &opts.mode
	}
	if opts.status != "" {
		find.Status = &opts.status
	}
	if opts.since > 0 {
		sinceTs := now.Add(-opts.since).Unix()
		find.SinceTs = &sinceTs
	}

	list, err := s.ListEnhancements(ctx, find)
	if err != nil {
		return err
	}

	if opts.json {
		enc := json.NewEncoder(out)
		for _, e := range list {
			if err := enc.Encode(e); err != nil {
				return err
			}
		}
		return nil
	}

	for _, e := range list {
		cached := ""
		if e.CacheHit {
			cached = " cached"
		}
		fmt.Fprintf(out, "%s  %-7s %-9s %-8s %-19s %5dms%s  %s\n",
			time.Unix(e.CreatedTs, 0).Format(time.DateTime),
			e.Mode, e.Platform, e.Format, e.Status, e.DurationMs, cached,
			preview(e.Output, 60))
	}
	return nil
}

// preview flattens text onto one line and cuts it to limit runes.
func preview(text string, limit int) string {
	flat := strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(flat) <= limit {
		return flat
	}
	runes := []rune(flat)
	return string(runes[:limit-1]) + "…"
}

func printError(w io.Writer, err error) {
	var enhErr *enhance.Error
	switch {
	case errors.As(err, &enhErr):
		fmt.Fprintf(w, "clipsense: %s\n", enhErr.Message)
		if enhErr.Kind == enhance.InvalidCredentials {
			fmt.Fprintln(w, "Check CLIPSENSE_LLM_API_KEY and CLIPSENSE_LLM_PROVIDER.")
		}
	case errors.Is(err, profile.ErrMissingAPIKey):
		fmt.Fprintf(w, "clipsense: %v\n", err)
		fmt.Fprintln(w, "Set it in the environment or in a .env file in the current directory.")
	default:
		fmt.Fprintf(w, "clipsense: %v\n", err)
	}
}
