package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/clarifai/internal/backend"
	"github.com/ppiankov/clarifai/internal/present"
)

var (
	outJSON     bool
	claimsTopic string
	topicsRisk  string
	topicsFresh bool
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List sources ranked by trust score",
	Long: `Print the source credibility ranking: highest trust score first, with
tier, recent change and verified/contradicted claim counts.

Example:
  clarifai sources
  clarifai sources --mode demo
  clarifai sources --json`,
	Args: cobra.NoArgs,
	RunE: runSources,
}

var claimsCmd = &cobra.Command{
	Use:   "claims",
	Short: "List recent claims with their verdicts",
	Long: `Print the latest claims, newest first, with the verdict assigned by the API.

Example:
  clarifai claims
  clarifai claims --topic "monsoon forecast"`,
	Args: cobra.NoArgs,
	RunE: runClaims,
}

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List trending topics by misinformation risk",
	Long: `Print trending topics, riskiest first.

Example:
  clarifai topics
  clarifai topics --risk high
  clarifai topics --refresh`,
	Args: cobra.NoArgs,
	RunE: runTopics,
}

func init() {
	rootCmd.AddCommand(sourcesCmd, claimsCmd, topicsCmd)

	for _, c := range []*cobra.Command{sourcesCmd, claimsCmd, topicsCmd} {
		c.Flags().BoolVar(&outJSON, "json", false, "print JSON instead of a table")
	}
	claimsCmd.Flags().StringVar(&claimsTopic, "topic", "", "only claims about this topic")
	topicsCmd.Flags().StringVar(&topicsRisk, "risk", "", "only topics at this risk level (high, medium, low)")
	topicsCmd.Flags().BoolVar(&topicsFresh, "refresh", false, "ask the API to recompute topics")
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()

	sources, meta, err := newStore(cfg, logger).Sources(cmd.Context())
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "✗ %v\n", err)
		return fmt.Errorf("fetch sources: %w", err)
	}
	reportMeta(cmd.ErrOrStderr(), "sources", len(sources), meta)

	rows := present.RankSources(sources)
	if outJSON {
		return writeJSON(cmd.OutOrStdout(), rows)
	}
	return writeSources(cmd.OutOrStdout(), rows)
}

func runClaims(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()

	claims, meta, err := newStore(cfg, logger).Claims(cmd.Context(), claimsTopic)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "✗ %v\n", err)
		return fmt.Errorf("fetch claims: %w", err)
	}
	reportMeta(cmd.ErrOrStderr(), "claims", len(claims), meta)

	sort.SliceStable(claims, func(i, j int) bool {
		return claims[i].Timestamp.After(claims[j].Timestamp.Time)
	})
	items := present.BuildFeed(claims, time.Now())
	if outJSON {
		return writeJSON(cmd.OutOrStdout(), items)
	}
	return writeClaims(cmd.OutOrStdout(), items)
}

func runTopics(cmd *cobra.Command, args []string) error {
	var level present.RiskLevel
	if topicsRisk != "" {
		l, ok := present.ParseRiskLevel(topicsRisk)
		if !ok {
			return fmt.Errorf("unknown risk level %q (want high, medium or low)", topicsRisk)
		}
		level = l
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()

	topics, meta, err := newStore(cfg, logger).Topics(cmd.Context(), topicsFresh)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "✗ %v\n", err)
		return fmt.Errorf("fetch topics: %w", err)
	}
	reportMeta(cmd.ErrOrStderr(), "topics", len(topics), meta)

	cards := rankTopics(present.TopicCards(topics, level))
	if outJSON {
		return writeJSON(cmd.OutOrStdout(), cards)
	}
	return writeTopics(cmd.OutOrStdout(), cards)
}

// rankTopics orders cards riskiest first; equal scores keep API order
func rankTopics(cards []present.TopicCard) []present.TopicCard {
	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].Topic.RiskScore > cards[j].Topic.RiskScore
	})
	return cards
}

// reportMeta prints where the data came from and any degradation notice
func reportMeta(w io.Writer, what string, n int, meta backend.Meta) {
	for _, notice := range notices(meta) {
		fmt.Fprintf(w, "✗ %s\n", notice)
	}
	if verbose {
		fmt.Fprintf(w, "✓ Loaded %d %s from %s\n", n, what, meta.Origin)
	}
}

func notices(meta backend.Meta) []string {
	var out []string
	switch {
	case meta.Origin == backend.OriginDemo && meta.Err != nil:
		out = append(out, present.BannerDemoData.Message)
	case meta.Origin == backend.OriginStale:
		out = append(out, present.BannerCachedData.Message)
	}
	if meta.Rejected > 0 {
		out = append(out, fmt.Sprintf("%d malformed records were skipped", meta.Rejected))
	}
	return out
}

func writeSources(w io.Writer, rows []present.CredibilityRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSOURCE\tDOMAIN\tTRUST\tTIER\tCHANGE\tVERIFIED\tCONTRADICTED")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\t%d\t%d\n",
			r.Rank, r.Source.Name, dash(r.Source.Domain), r.Source.TrustScore, r.Tier,
			signed(r.Source.Change), r.Source.VerifiedClaims, r.Source.Contradictions)
	}
	return tw.Flush()
}

func writeClaims(w io.Writer, items []present.FeedItem) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tSOURCE\tSEEN\tCLAIM")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			it.Display.Label, it.Claim.Source, dash(it.TimeAgo), truncate(it.Claim.Text, 80))
	}
	return tw.Flush()
}

func writeTopics(w io.Writer, cards []present.TopicCard) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RISK\tLEVEL\tSOURCES\tCLAIMS\tTOPIC")
	for _, c := range cards {
		title := c.Topic.Title
		if c.Topic.IsNew {
			title += " (new)"
		}
		fmt.Fprintf(tw, "%d/10\t%s\t%d\t%d\t%s\n",
			c.Topic.RiskScore, c.Label, c.Topic.SourceCount, c.Topic.ClaimCount, title)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func signed(n int) string {
	if n > 0 {
		return fmt.Sprintf("+%d", n)
	}
	return fmt.Sprintf("%d", n)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
