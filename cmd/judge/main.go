package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/coolbeans/judge/pkg/config"
	"github.com/coolbeans/judge/pkg/logging"
	"github.com/coolbeans/judge/pkg/mana"
	"github.com/coolbeans/judge/pkg/mention"
	"github.com/coolbeans/judge/pkg/render"
	"github.com/coolbeans/judge/pkg/rules"
	"github.com/coolbeans/judge/pkg/source"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

// errNoGlossaryMatch is returned when a glossary query matches nothing.
var errNoGlossaryMatch = errors.New("no matching glossary entries")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "judge",
		Short: "Magic: The Gathering rules and card reference",
		Long: `Judge answers rules questions from the Comprehensive Rules.

It downloads (or reads) the current rules document and provides:
  - Rule lookup and navigation by number
  - Glossary search
  - Mana cost analysis: converted cost, colors and color identity
  - Card and rule embeds that respect message size limits`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Configuration file (YAML)")
	rootCmd.PersistentFlags().String("file", "", "Read the rules document from a local file")
	rootCmd.PersistentFlags().String("url", "", "Download the rules document from this URL")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, verbose, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format (text, json)")
	rootCmd.PersistentFlags().StringP("format", "f", "text", "Output format (text, json)")

	rootCmd.AddCommand(ruleCmd())
	rootCmd.AddCommand(navCmd())
	rootCmd.AddCommand(glossaryCmd())
	rootCmd.AddCommand(lookupCmd())
	rootCmd.AddCommand(costCmd())
	rootCmd.AddCommand(cardCmd())
	rootCmd.AddCommand(scanCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(watchCmd())

	return rootCmd
}

// environment is what every subcommand needs: settings, a logger and a
// renderer.
type environment struct {
	cfg      config.Config
	logger   *slog.Logger
	renderer *render.Renderer
	format   string
	out      io.Writer
}

// loadEnvironment reads the configuration file and applies flag overrides.
func loadEnvironment(cmd *cobra.Command) (*environment, error) {
	configPath, _ := cmd.Flags().GetString("config")
	filePath, _ := cmd.Flags().GetString("file")
	documentURL, _ := cmd.Flags().GetString("url")
	logLevel, _ := cmd.Flags().GetString("log-level")
	logFormat, _ := cmd.Flags().GetString("log-format")
	format, _ := cmd.Flags().GetString("format")

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if filePath != "" {
		cfg.Rules.Source = config.SourceKindFile
		cfg.Rules.File = filePath
	}
	if documentURL != "" {
		cfg.Rules.Source = config.SourceKindURL
		cfg.Rules.DocumentURL = documentURL
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch format {
	case "text", "json":
	default:
		return nil, fmt.Errorf("unsupported output format %q (use text or json)", format)
	}

	logger, err := logging.Setup(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}

	limits := render.Limits{
		Description: cfg.Limits.Description,
		FieldValue:  cfg.Limits.FieldValue,
		Total:       cfg.Limits.Total,
	}

	return &environment{
		cfg:      cfg,
		logger:   logger,
		renderer: render.NewRenderer(limits, cfg.CardLinkBase, cfg.Footer+" | v"+version),
		format:   format,
		out:      cmd.OutOrStdout(),
	}, nil
}

// newSource builds the configured rules document source.
func (env *environment) newSource() (rules.Source, error) {
	if env.cfg.Rules.Source == config.SourceKindFile {
		return source.NewFileSource(env.cfg.Rules.File, env.cfg.Rules.Encoding), nil
	}

	client := source.NewRateLimitedHTTPClient(
		source.NewTimeoutHTTPClient(env.cfg.HTTP.Timeout, env.cfg.HTTP.UserAgent),
		env.cfg.HTTP.RateLimit,
	)
	return source.NewHTTPSource(source.HTTPSourceOptions{
		PageURL:     env.cfg.Rules.PageURL,
		DocumentURL: env.cfg.Rules.DocumentURL,
		Encoding:    env.cfg.Rules.Encoding,
		Client:      client,
		Logger:      env.logger,
	})
}

// newCache creates a rules cache over rulesSource.
func (env *environment) newCache(rulesSource rules.Source) *rules.Cache {
	return rules.NewCache(rulesSource, rules.CacheOptions{
		RefreshInterval: env.cfg.Rules.RefreshInterval,
		Logger:          env.logger,
	})
}

// loadIndex builds the rules index once for a one-shot command.
func (env *environment) loadIndex(ctx context.Context) (*rules.Index, error) {
	rulesSource, err := env.newSource()
	if err != nil {
		return nil, err
	}
	index, err := env.newCache(rulesSource).Refresh(ctx, time.Now())
	if index == nil {
		return nil, fmt.Errorf("loading comprehensive rules: %w", err)
	}
	if err != nil {
		env.logger.Warn("using stale rules index", "error", err)
	}
	return index, nil
}

// ruleEmbed renders a rule, with navigation when asked.
func (env *environment) ruleEmbed(index *rules.Index, rule *rules.Rule, navigate bool) (render.Embed, error) {
	if !navigate {
		return env.renderer.RuleEmbed(rule, nil)
	}
	navigation := index.Navigation(rule)
	return env.renderer.RuleEmbed(rule, &navigation)
}

func (env *environment) glossaryEmbed(index *rules.Index, term string) (render.Embed, error) {
	entries := index.LookupGlossary(term)
	if len(entries) == 0 {
		return render.Embed{}, fmt.Errorf("%w: %q", errNoGlossaryMatch, term)
	}
	return env.renderer.GlossaryEmbed(entries)
}

func ruleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rule <number>",
		Short: "Show a rule of the Comprehensive Rules",
		Long: `Show a rule by number. Dots are optional: 100.1a, 1001a and 100.1a. are
the same rule.

Example:
  judge rule 702.2c
  judge rule 601.2 --nav`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			navigate, _ := cmd.Flags().GetBool("nav")

			env, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}
			index, err := env.loadIndex(cmd.Context())
			if err != nil {
				return err
			}

			rule, ok := index.Rule(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", rules.ErrRuleNotFound, args[0])
			}
			embed, err := env.ruleEmbed(index, rule, navigate)
			if err != nil {
				return err
			}
			return env.printEmbed(embed)
		},
	}

	cmd.Flags().Bool("nav", false, "Include sibling and subrule navigation")
	return cmd
}

func navCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "nav <number> <next|prev|up|down>",
		Short: "Move from a rule to a neighbouring rule",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			direction, ok := rules.ParseDirection(strings.ToLower(args[1]))
			if !ok {
				return fmt.Errorf("unknown direction %q (use next, prev, up or down)", args[1])
			}

			env, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}
			index, err := env.loadIndex(cmd.Context())
			if err != nil {
				return err
			}

			if _, ok := index.Rule(args[0]); !ok {
				return fmt.Errorf("%w: %s", rules.ErrRuleNotFound, args[0])
			}
			target, ok := index.Step(args[0], direction)
			if !ok {
				return fmt.Errorf("no rule %s of %s", args[1], args[0])
			}

			embed, err := env.ruleEmbed(index, target, true)
			if err != nil {
				return err
			}
			return env.printEmbed(embed)
		},
	}
}

func glossaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "glossary <term>",
		Short: "Search the glossary",
		Long: `Search the glossary. An exact match is listed first, followed by every
entry whose term contains the query.

Example:
  judge glossary damage
  judge glossary "first strike"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}
			index, err := env.loadIndex(cmd.Context())
			if err != nil {
				return err
			}

			embed, err := env.glossaryEmbed(index, strings.Join(args, " "))
			if err != nil {
				return err
			}
			return env.printEmbed(embed)
		},
	}
}

func lookupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup <query>",
		Short: "Show a rule if the query is a rule number, glossary entries otherwise",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			navigate, _ := cmd.Flags().GetBool("nav")
			query := strings.Join(args, " ")

			env, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}
			index, err := env.loadIndex(cmd.Context())
			if err != nil {
				return err
			}

			var embed render.Embed
			if rules.IsRuleReference(query) {
				rule, ok := index.Rule(query)
				if !ok {
					return fmt.Errorf("%w: %s", rules.ErrRuleNotFound, query)
				}
				embed, err = env.ruleEmbed(index, rule, navigate)
			} else {
				embed, err = env.glossaryEmbed(index, query)
			}
			if err != nil {
				return err
			}
			return env.printEmbed(embed)
		},
	}

	cmd.Flags().Bool("nav", false, "Include navigation when the query is a rule")
	return cmd
}

func costCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cost <mana-cost>",
		Short: "Analyze a mana cost",
		Long: `Compute the converted mana cost, colors and color identity of a cost.

Example:
  judge cost "{2}{W}{W}"
  judge cost "{1}{B}" --text "Devoid\nFlying"
  judge cost "" --indicator "green" --text "{T}: Add {G}."`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			indicator, _ := cmd.Flags().GetString("indicator")
			text, _ := cmd.Flags().GetString("text")
			format, _ := cmd.Flags().GetString("format")

			profile, err := mana.Describe(args[0], indicator, strings.ReplaceAll(text, `\n`, "\n"))
			if err != nil && !errors.Is(err, mana.ErrNotApplicable) {
				return err
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				return writeJSON(out, profile)
			}
			fmt.Fprintf(out, "Mana cost:      %s\n", profile.Cost)
			fmt.Fprintf(out, "Converted cost: %s\n", mana.FormatConverted(profile.Cost.Converted))
			fmt.Fprintf(out, "Colors:         %s\n", profile.Colors)
			fmt.Fprintf(out, "Color identity: %s\n", profile.Identity)
			if len(profile.Cost.Symbols) > 0 {
				fmt.Fprintln(out, "Symbols:")
				for _, symbol := range profile.Cost.Symbols {
					fmt.Fprintf(out, "  %-8s %s\n", symbol.Text, symbol.Kind)
				}
			}
			return nil
		},
	}

	cmd.Flags().String("indicator", "", "Color indicator, e.g. \"blue and red\" or \"all colors\"")
	cmd.Flags().String("text", "", "Rules text (\\n separates lines)")
	return cmd
}

func cardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card <card.yaml>",
		Short: "Render a card record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			extended, _ := cmd.Flags().GetBool("extended")

			env, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}
			card, err := render.LoadCard(args[0])
			if err != nil {
				return err
			}
			embed, err := env.renderer.CardEmbed(card, extended)
			if err != nil {
				return err
			}
			return env.printEmbed(embed)
		},
	}

	cmd.Flags().BoolP("extended", "x", false, "Include legalities and rulings")
	return cmd
}

func scanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [message]",
		Short: "Answer every [[card]] and {{rule}} mention in a message",
		Long: `Scan a message (arguments, or standard input when none are given) for
mentions and render an answer to each. Rules and glossary terms that match
nothing are skipped.

  [[name]]     card; [![name]] adds the picture, [?[name]] the extended view
  {{number}}   rule; {>{number}} adds navigation
  {{term}}     glossary search

Cards are read from --cards, one YAML file per card named after the card
(lower case, spaces as dashes).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cardsDir, _ := cmd.Flags().GetString("cards")

			message := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(bufio.NewReader(cmd.InOrStdin()))
				if err != nil {
					return fmt.Errorf("reading message: %w", err)
				}
				message = string(data)
			}

			env, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}

			mentions := mention.Extract(message)
			if len(mentions) == 0 {
				env.logger.Info("no mentions found")
				return nil
			}

			var index *rules.Index
			for _, found := range mentions {
				if found.Kind != mention.Card && index == nil {
					if index, err = env.loadIndex(cmd.Context()); err != nil {
						return err
					}
				}

				embed, err := env.answer(index, found, cardsDir)
				if errors.Is(err, rules.ErrRuleNotFound) || errors.Is(err, errNoGlossaryMatch) {
					env.logger.Debug("mention has no answer", "kind", found.Kind.String(), "query", found.Query)
					continue
				}
				if err != nil {
					env.logger.Error("mention failed", "kind", found.Kind.String(), "query", found.Query, "error", err)
					embed = env.renderer.ErrorEmbed(err, found.Query, found.Kind.String())
				}
				if err := env.printEmbed(embed); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().String("cards", "", "Directory of card YAML files")
	return cmd
}

// answer renders the reply to one mention.
func (env *environment) answer(index *rules.Index, found mention.Mention, cardsDir string) (render.Embed, error) {
	switch found.Kind {
	case mention.Card:
		if cardsDir == "" {
			return render.Embed{}, errors.New("card lookup needs --cards")
		}
		card, err := render.LoadCard(filepath.Join(cardsDir, strings.ReplaceAll(found.Query, " ", "-")+".yaml"))
		if err != nil {
			return render.Embed{}, err
		}
		embed, err := env.renderer.CardEmbed(card, found.Extended)
		if err != nil {
			return render.Embed{}, err
		}
		if !found.Picture {
			embed.Image = ""
		}
		return embed, nil

	case mention.Rule:
		rule, ok := index.Rule(found.Query)
		if !ok {
			return render.Embed{}, fmt.Errorf("%w: %s", rules.ErrRuleNotFound, found.Query)
		}
		return env.ruleEmbed(index, rule, found.Navigate)

	default:
		return env.glossaryEmbed(index, found.Query)
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show statistics of the current rules index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}
			index, err := env.loadIndex(cmd.Context())
			if err != nil {
				return err
			}

			stats := index.Stats()
			if env.format == "json" {
				return writeJSON(env.out, stats)
			}
			fmt.Fprintf(env.out, "Rules version: %s\n", stats.SourceVersion)
			fmt.Fprintf(env.out, "Built at:      %s\n", stats.BuiltAt.Format(time.RFC3339))
			fmt.Fprintf(env.out, "Categories:    %d\n", stats.Categories)
			fmt.Fprintf(env.out, "Rules:         %d\n", stats.Rules)
			fmt.Fprintf(env.out, "Subrules:      %d\n", stats.Subrules)
			fmt.Fprintf(env.out, "Sub-subrules:  %d\n", stats.SubSubrules)
			if stats.Unclassified > 0 {
				fmt.Fprintf(env.out, "Unclassified:  %d\n", stats.Unclassified)
			}
			fmt.Fprintf(env.out, "Glossary:      %d\n", stats.Glossary)
			return nil
		},
	}
}

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Keep the rules index current until interrupted",
		Long: `Refresh the rules index on the configured interval and log every rebuild.
With a file source the document is also watched and rebuilt as soon as it
changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}
			rulesSource, err := env.newSource()
			if err != nil {
				return err
			}
			cache := env.newCache(rulesSource)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if _, err := cache.Refresh(ctx, time.Now()); err != nil {
				return fmt.Errorf("loading comprehensive rules: %w", err)
			}

			changes := make(chan struct{}, 1)
			if fileSource, ok := rulesSource.(*source.FileSource); ok {
				watcher, err := source.NewWatcher(fileSource.Path(), cache, source.WatcherOptions{
					OnChange: func(string) {
						select {
						case changes <- struct{}{}:
						default:
						}
					},
					Logger: env.logger,
				})
				if err != nil {
					return err
				}
				if err := watcher.Start(); err != nil {
					return err
				}
				defer watcher.Stop()
			}

			ticker := time.NewTicker(env.cfg.Rules.RefreshInterval)
			defer ticker.Stop()

			env.logger.Info("watching rules", "source", string(env.cfg.Rules.Source), "interval", env.cfg.Rules.RefreshInterval)
			for {
				select {
				case <-ctx.Done():
					env.logger.Info("stopped watching rules")
					return nil
				case <-changes:
				case <-ticker.C:
				}
				if _, err := cache.Refresh(ctx, time.Now()); err != nil {
					env.logger.Error("rules refresh failed", "error", err)
				}
			}
		},
	}
}
