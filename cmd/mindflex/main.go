// Package main provides the CLI entrypoint for mindflex.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/urben88/MindFlex/internal/config"
	"github.com/urben88/MindFlex/internal/content"
	"github.com/urben88/MindFlex/internal/difficulty"
	"github.com/urben88/MindFlex/internal/engine"
	"github.com/urben88/MindFlex/internal/generator"
	"github.com/urben88/MindFlex/internal/logging"
	"github.com/urben88/MindFlex/internal/model"
	"github.com/urben88/MindFlex/internal/progress"
	"github.com/urben88/MindFlex/internal/recommend"
	"github.com/urben88/MindFlex/internal/speech"
	"github.com/urben88/MindFlex/internal/stats"
	"github.com/urben88/MindFlex/internal/statsui"
	"github.com/urben88/MindFlex/internal/store"
	"github.com/urben88/MindFlex/internal/tui"
)

const (
	defaultTier        = model.TierEasy
	defaultCurveWindow = 20
	defaultHistoryRows = 10
	apiKeyEnv          = "OPENAI_API_KEY"
)

var (
	logLevel string

	playDifficulty string
	playAgain      bool
	playSound      bool
	playMultiplier float64

	statsActivity string
	statsSince    string
	statsLast     int
	statsWindow   int
	statsCurves   bool
	statsTUI      bool

	exerciseRandom bool
	resetYes       bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mindflex",
		Short:         "Terminal brain-training games",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runHomeCmd,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", logging.DefaultLevel, "log level (debug, info, warn, error)")

	rootCmd.AddCommand(newPlayCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newRecommendCmd())
	rootCmd.AddCommand(newExerciseCmd())
	rootCmd.AddCommand(newGuidesCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newConfigCmd())
	return rootCmd
}

// app holds the wiring shared by every subcommand.
type app struct {
	cfg      config.FileConfig
	log      zerolog.Logger
	db       *store.Store
	progress *progress.Store
	settings model.Settings
	rnd      *generator.Generator
	closers  []io.Closer
}

// openApp loads configuration and progress. With fileLog set, logs go to
// the state directory so they do not draw over the alternate screen.
func openApp(cmd *cobra.Command, fileLog bool) (*app, error) {
	if err := config.LoadEnv(config.DefaultEnvPath(), ".env"); err != nil {
		logErrf("%v\n", err)
	}
	cfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "log-level", &logLevel, cfg.Log.Level)
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, rnd: generator.New()}
	a.log = logging.Console(level)
	if fileLog {
		log, closer, err := logging.File(config.DefaultLogPath(), level)
		if err != nil {
			a.log.Warn().Err(err).Msg("file logging unavailable")
			a.log = zerolog.Nop()
		} else {
			a.log = log
			a.closers = append(a.closers, closer)
		}
	}

	dbPath := config.DefaultDBPath()
	if cfg.Play.DB != nil && strings.TrimSpace(*cfg.Play.DB) != "" {
		dbPath = *cfg.Play.DB
	}
	var backend progress.Backend
	db, err := store.Open(dbPath)
	if err != nil {
		a.log.Warn().Err(err).Str("path", dbPath).Msg("progress will not be saved")
		backend = &progress.MemoryBackend{}
	} else {
		a.db = db
		a.closers = append(a.closers, db)
		backend = db
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a.progress = progress.New(backend, progress.WithLogger(a.log))
	a.progress.Load(ctx)
	if _, err := a.progress.UpdateStreak(ctx); err != nil {
		a.log.Warn().Err(err).Msg("failed to save streak")
	}
	a.settings = cfg.Settings.Apply(a.progress.Snapshot().Settings)
	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			logErrf("failed to close: %v\n", err)
		}
	}
}

// adapter builds the content adapter. Without an API key every call is
// served by the local fallbacks.
func (a *app) adapter() (*content.Adapter, error) {
	timeout, err := a.cfg.Content.TimeoutOr(content.DefaultTimeout)
	if err != nil {
		return nil, err
	}
	provider := config.ProviderOpenAI
	if a.cfg.Content.Provider != nil {
		provider = *a.cfg.Content.Provider
	}
	var remote content.Provider
	if provider == config.ProviderOpenAI {
		chatModel := ""
		if a.cfg.Content.Model != nil {
			chatModel = *a.cfg.Content.Model
		}
		oa, err := content.NewOpenAI(os.Getenv(apiKeyEnv), chatModel)
		switch {
		case err == nil:
			remote = oa
		case errors.Is(err, content.ErrUnavailable):
			a.log.Debug().Msg("no API key, using offline content")
		default:
			return nil, err
		}
	}
	return content.NewAdapter(remote,
		content.WithTimeout(timeout),
		content.WithLogger(a.log),
		content.WithLocal(content.NewLocal(a.rnd)),
	), nil
}

func runHomeCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	p := a.progress.Snapshot()
	out := cmd.OutOrStdout()
	next, err := recommend.Next(p.Stats, model.Activities)
	if err != nil {
		return err
	}
	lines := []string{
		"MindFlex",
		fmt.Sprintf("Daily streak: %d", p.DailyStreak),
		fmt.Sprintf("Up next: %s (mindflex play %s)", model.Info(next).Title, next),
		"",
		"Activities:",
	}
	for _, id := range model.Activities {
		info := model.Info(id)
		lines = append(lines, fmt.Sprintf("  %-16s %-16s %s", id, info.Title, info.Description))
	}
	lines = append(lines, "", "More: mindflex stats | recommend | exercise | guides")
	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newPlayCmd() *cobra.Command {
	defaults := model.DefaultSettings()
	cmd := &cobra.Command{
		Use:   "play [activity]",
		Short: "Play a game",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPlayCmd,
	}
	cmd.Flags().StringVar(&playDifficulty, "difficulty", string(defaultTier), "difficulty tier (easy, medium, hard, custom)")
	cmd.Flags().BoolVar(&playAgain, "again", false, "replay the most recent activity and tier")
	cmd.Flags().BoolVar(&playSound, "sound", defaults.SoundEnabled, "speak audio stimuli")
	cmd.Flags().Float64Var(&playMultiplier, "multiplier", defaults.DifficultyMultiplier, "scale the score multiplier")
	return cmd
}

func runPlayCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	applyStringConfig(cmd, "difficulty", &playDifficulty, a.cfg.Play.Difficulty)
	applyBoolConfig(cmd, "sound", &playSound, &a.settings.SoundEnabled)
	applyFloatConfig(cmd, "multiplier", &playMultiplier, &a.settings.DifficultyMultiplier)

	id, tier, err := a.resolveSession(cmd, args)
	if err != nil {
		return err
	}
	bundle, err := difficulty.Lookup(id, tier, &a.cfg.Custom)
	if err != nil {
		return err
	}
	if playMultiplier <= 0 {
		return fmt.Errorf("--multiplier must be > 0")
	}
	bundle = difficulty.ApplyMultiplier(bundle, playMultiplier)

	adapter, err := a.adapter()
	if err != nil {
		return err
	}
	var speaker engine.Speaker
	if playSound {
		voice, err := speech.Detect()
		if err != nil {
			a.log.Info().Err(err).Msg("audio stimuli will be shown as text")
		} else {
			speaker = voice
		}
	}

	m, err := tui.NewModel(tui.Options{
		Activity: id,
		Tier:     tier,
		Bundle:   bundle,
		Progress: a.progress,
		Content:  adapter,
		Speaker:  speaker,
		Rand:     a.rnd,
		Logger:   a.log,
	})
	if err != nil {
		return err
	}
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// resolveSession picks the activity from the argument, --again, the
// config file or the recommendation, in that order.
func (a *app) resolveSession(cmd *cobra.Command, args []string) (model.ActivityID, model.Tier, error) {
	tier, err := model.ParseTier(playDifficulty)
	if err != nil {
		return "", "", err
	}
	if len(args) == 1 {
		id, err := model.ParseActivity(args[0])
		return id, tier, err
	}
	if playAgain {
		last, ok := a.progress.LastResult()
		if !ok {
			return "", "", fmt.Errorf("no game played yet")
		}
		if !cmd.Flags().Changed("difficulty") {
			tier = last.Difficulty
		}
		return last.ActivityID, tier, nil
	}
	if a.cfg.Play.Activity != nil {
		id, err := model.ParseActivity(*a.cfg.Play.Activity)
		return id, tier, err
	}
	id, err := recommend.Next(a.progress.Snapshot().Stats, model.Activities)
	return id, tier, err
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsActivity, "activity", "", "activity filter for curves")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit curves to the last N results")
	cmd.Flags().IntVar(&statsWindow, "window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsCurves, "curves", false, "show score curves from the result log")
	cmd.Flags().BoolVar(&statsTUI, "tui", false, "open the interactive stats browser")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	filter, err := statsFilter()
	if err != nil {
		return err
	}
	if statsWindow < 1 {
		return fmt.Errorf("--window must be >= 1")
	}

	a, err := openApp(cmd, statsTUI)
	if err != nil {
		return err
	}
	defer a.Close()

	p := a.progress.Snapshot()
	if statsTUI {
		if a.db == nil {
			return fmt.Errorf("result log is unavailable")
		}
		m := statsui.NewModel(a.db, p, statsui.Config{Filter: filter, Window: statsWindow})
		program := tea.NewProgram(m, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run stats TUI: %w", err)
		}
		return nil
	}

	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, p); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderHistory(out, p.History, defaultHistoryRows); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if !statsCurves {
		return nil
	}
	if a.db == nil {
		return fmt.Errorf("result log is unavailable")
	}
	report, err := stats.BuildReport(cmd.Context(), a.db, p, filter, statsWindow)
	if err != nil {
		return err
	}
	if err := stats.RenderCurves(out, report.Curves, stats.TerminalWidth()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func statsFilter() (store.ResultFilter, error) {
	var f store.ResultFilter
	if statsActivity != "" {
		id, err := model.ParseActivity(statsActivity)
		if err != nil {
			return f, err
		}
		f.Activity = id
	}
	if statsSince != "" {
		parsed, err := time.ParseInLocation(model.DateLayout, statsSince, time.Local)
		if err != nil {
			return f, fmt.Errorf("invalid --since value: %w", err)
		}
		f.Since = &parsed
	}
	if statsLast < 0 {
		return f, fmt.Errorf("--last must be >= 0")
	}
	f.Last = statsLast
	return f, nil
}

func newRecommendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recommend",
		Short: "Rank activities by what to play next",
		Args:  cobra.NoArgs,
		RunE:  runRecommendCmd,
	}
}

func runRecommendCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	p := a.progress.Snapshot()
	for i, id := range recommend.Rank(p.Stats, model.Activities) {
		s := p.Stats[id]
		last := "never"
		if s.Plays > 0 {
			last = time.UnixMilli(s.LastPlayed).Local().Format(model.DateLayout)
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%d. %-16s plays %-3d last %s\n", i+1, model.Info(id).Title, s.Plays, last); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newExerciseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exercise [id]",
		Short: "List exercises or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runExerciseCmd,
	}
	cmd.Flags().BoolVar(&exerciseRandom, "random", false, "show a random exercise")
	return cmd
}

func runExerciseCmd(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	var ex content.Exercise
	switch {
	case len(args) == 1:
		found, err := content.ExerciseByID(args[0])
		if err != nil {
			return err
		}
		ex = found
	case exerciseRandom:
		picked, ok := recommend.Pick(generator.New(), content.Exercises())
		if !ok {
			return fmt.Errorf("no exercises available")
		}
		ex = picked
	default:
		for _, e := range content.Exercises() {
			if _, err := fmt.Fprintf(out, "%-5s %-28s %-13s %s\n", e.ID, e.Title, e.Type, e.Level); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
		return nil
	}

	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()
	adapter, err := a.adapter()
	if err != nil {
		return err
	}
	body, generated := adapter.ExerciseContent(cmd.Context(), ex)
	return writeLines(out, exerciseLines(ex, body, generated))
}

func exerciseLines(ex content.Exercise, c content.ExerciseContent, generated bool) []string {
	source := "offline"
	if generated {
		source = "generated"
	}
	lines := []string{
		fmt.Sprintf("%s (%s, %s)", ex.Title, ex.Type, source),
		ex.Description,
		"",
		c.Instruction,
	}
	for i, step := range c.Steps {
		lines = append(lines, fmt.Sprintf("  %d. %s", i+1, step))
	}
	if len(c.Items) > 0 {
		lines = append(lines, "", "Items: "+strings.Join(c.Items, ", "))
	}
	if c.Example != "" {
		lines = append(lines, "", "Example: "+c.Example)
	}
	if ex.Benefits != "" {
		lines = append(lines, "", "Benefits: "+ex.Benefits)
	}
	return lines
}

func newGuidesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guides [id]",
		Short: "List training guides or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runGuidesCmd,
	}
}

func runGuidesCmd(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) == 0 {
		for _, g := range content.Guides() {
			if _, err := fmt.Fprintf(out, "%-11s %s\n", g.ID, g.Question); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
		return nil
	}
	g, err := content.GuideByID(args[0])
	if err != nil {
		return err
	}
	return writeLines(out, guideLines(g))
}

func guideLines(g content.Guide) []string {
	lines := []string{g.Title, g.Question, "", g.Summary, "", "Science: " + g.Science}
	if len(g.Activities) > 0 {
		titles := make([]string, len(g.Activities))
		for i, id := range g.Activities {
			titles[i] = fmt.Sprintf("%s (%s)", model.Info(id).Title, id)
		}
		lines = append(lines, "", "Games: "+strings.Join(titles, ", "))
	}
	if len(g.Exercises) > 0 {
		lines = append(lines, "Exercises: "+strings.Join(g.Exercises, ", "))
	}
	return lines
}

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Erase all progress",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
	cmd.Flags().BoolVar(&resetYes, "yes", false, "do not ask for confirmation")
	return cmd
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	if !resetYes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Erase all progress and history? [y/N] ") {
		return fmt.Errorf("reset cancelled")
	}
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()
	if _, err := a.progress.ResetAll(cmd.Context()); err != nil {
		return err
	}
	a.log.Info().Msg("progress erased")
	return nil
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	if _, err := fmt.Fprint(out, prompt); err != nil {
		return false
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		template := config.DefaultTemplate(defaultTier, content.DefaultTimeout, logging.DefaultLevel)
		if err := os.WriteFile(path, []byte(template), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
