package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/clarifai/internal/broadcast"
	"github.com/ppiankov/clarifai/internal/model"
)

var (
	briefingTone     string
	briefingDuration string
	briefingVoice    string
	briefingPreview  bool
	briefingNoWait   bool
)

// briefingCmd represents the briefing command
var briefingCmd = &cobra.Command{
	Use:   "briefing <topic>",
	Short: "Render an AI anchor briefing on a topic",
	Long: `Write an anchor script from the verified claims on a topic and hand it to
the broadcast studio for rendering.

Only sources known to the API may be cited. A script that cites anything
else is rejected and replaced by the template writer's script.

Example:
  clarifai briefing "monsoon forecast" --preview
  clarifai briefing "monsoon forecast" --duration medium --tone urgent
  clarifai briefing "election results" --no-wait`,
	Args: cobra.ExactArgs(1),
	RunE: runBriefing,
}

func init() {
	rootCmd.AddCommand(briefingCmd)

	briefingCmd.Flags().StringVar(&briefingTone, "tone", "", "anchor tone (default from config)")
	briefingCmd.Flags().StringVar(&briefingDuration, "duration", "", "short, medium or detailed (default from config)")
	briefingCmd.Flags().StringVar(&briefingVoice, "voice", "", "studio voice (default from config)")
	briefingCmd.Flags().BoolVar(&briefingPreview, "preview", false, "print the script without rendering it")
	briefingCmd.Flags().BoolVar(&briefingNoWait, "no-wait", false, "submit and exit without waiting for the video")
}

func runBriefing(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := newStore(cfg, logger)
	writer, err := newScriptWriter(cfg, store, logger)
	if err != nil {
		return err
	}

	// Jobs outlive an interrupt long enough to be cancelled at the studio
	jobsCtx, cancelJobs := context.WithCancel(context.Background())

	manager := broadcast.NewManager(jobsCtx,
		broadcast.NewStudioClient(cfg.Broadcast.URL, cfg.HTTP),
		writer, store,
		broadcast.OptionsFromModel(cfg.Broadcast),
		logger.With(zap.String("component", "broadcast")))
	defer func() {
		cancelJobs()
		manager.Wait()
	}()

	req := broadcast.Request{
		Topic:    strings.TrimSpace(args[0]),
		Tone:     briefingTone,
		Duration: briefingDuration,
		Voice:    briefingVoice,
	}
	stderr := cmd.ErrOrStderr()

	if briefingPreview {
		result, err := manager.Script(ctx, req)
		if err != nil {
			fmt.Fprintf(stderr, "✗ %v\n", err)
			return err
		}
		for _, w := range result.Warnings {
			fmt.Fprintf(stderr, "✗ %s\n", w)
		}
		fmt.Fprintf(stderr, "✓ Script written by %s\n", result.Provider)
		return writeScript(cmd.OutOrStdout(), result.Script)
	}

	job, err := manager.Submit(ctx, req)
	if err != nil {
		fmt.Fprintf(stderr, "✗ %v\n", err)
		return err
	}
	fmt.Fprintf(stderr, "✓ Submitted briefing %s (studio job %s)\n", job.ID, job.RemoteID)

	if !briefingNoWait && !job.Status.Terminal() {
		job, err = waitForJob(ctx, manager, job.ID, cfg.Broadcast.PollInterval, stderr)
		if err != nil {
			return err
		}
	}
	return reportJob(cmd.OutOrStdout(), job)
}

// waitForJob follows a job until it ends. An interrupt cancels the job at
// the studio before returning.
func waitForJob(ctx context.Context, m *broadcast.Manager, id string, every time.Duration, progress io.Writer) (model.BriefingJob, error) {
	if every <= 0 {
		every = 2 * time.Second
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	last := -1
	for {
		job, ok := m.Get(id)
		if !ok {
			return model.BriefingJob{}, broadcast.ErrJobNotFound
		}
		if job.Progress != last {
			fmt.Fprintf(progress, "  %s %d%%\n", job.Status, job.Progress)
			last = job.Progress
		}
		if job.Status.Terminal() {
			return job, nil
		}

		select {
		case <-ctx.Done():
			cancelCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			job, err := m.Cancel(cancelCtx, id)
			if err != nil && !errors.Is(err, broadcast.ErrJobFinished) {
				fmt.Fprintf(progress, "✗ cancel at studio: %v\n", err)
			}
			if job.ID == "" {
				job, _ = m.Get(id)
			}
			return job, nil
		case <-ticker.C:
		}
	}
}

func reportJob(w io.Writer, job model.BriefingJob) error {
	switch job.Status {
	case model.JobCompleted:
		fmt.Fprintf(w, "✓ Briefing ready: %s\n", dash(job.VideoURL))
		return nil
	case model.JobFailed:
		fmt.Fprintf(w, "✗ Briefing failed: %s\n", job.Error)
		return fmt.Errorf("briefing %s failed", job.ID)
	case model.JobCancelled:
		fmt.Fprintf(w, "✗ Briefing cancelled\n")
		return nil
	default:
		fmt.Fprintf(w, "✓ Briefing %s is %s (%d%%)\n", job.ID, job.Status, job.Progress)
		return nil
	}
}

func writeScript(w io.Writer, script *model.AnchorScript) error {
	if script == nil {
		return fmt.Errorf("no script")
	}
	fmt.Fprintf(w, "Briefing: %s\n\n", script.Topic)
	for i, seg := range script.Segments {
		cue := seg.Mood
		if seg.Gesture != "" {
			cue += ", " + seg.Gesture
		}
		fmt.Fprintf(w, "%2d. [%s] %s\n", i+1, cue, seg.Text)
	}
	if len(script.SourcesCited) > 0 {
		fmt.Fprintf(w, "\nSources cited: %s\n", strings.Join(script.SourcesCited, ", "))
	}
	return nil
}
