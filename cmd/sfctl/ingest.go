package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	types "github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/modules/learning/analysis"
	"github.com/yungbote/studyforge-backend/internal/modules/learning/ingestion/document"
	"github.com/yungbote/studyforge-backend/internal/modules/learning/ingestion/segment"
	"github.com/yungbote/studyforge-backend/internal/modules/learning/questiongen"
	"github.com/yungbote/studyforge-backend/internal/modules/learning/rules"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

type ingestQuestion struct {
	Type          types.QuestionType `json:"type"`
	Category      string             `json:"category"`
	Text          string             `json:"text"`
	Options       []string           `json:"options,omitempty"`
	CorrectAnswer string             `json:"correct_answer"`
	Difficulty    string             `json:"difficulty"`
	Explanation   string             `json:"explanation,omitempty"`
}

type ingestChapter struct {
	Number    int              `json:"number"`
	Title     string           `json:"title"`
	Summary   string           `json:"summary,omitempty"`
	Keywords  []string         `json:"keywords,omitempty"`
	Questions []ingestQuestion `json:"questions"`
}

type ingestReport struct {
	File     string          `json:"file"`
	Chapters []ingestChapter `json:"chapters"`
}

type ingestOptions struct {
	RulesFile  string
	Count      int
	Difficulty string
	Kinds      []types.QuestionType
	Seed       int64
}

func newIngestCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Segment a PDF or text file and print generated questions as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.New(v.GetString("log-mode"))
			if err != nil {
				return err
			}
			defer log.Sync()

			opts := ingestOptions{
				RulesFile:  v.GetString("rules"),
				Count:      v.GetInt("count"),
				Difficulty: v.GetString("difficulty"),
				Seed:       v.GetInt64("seed"),
			}
			for _, k := range v.GetStringSlice("kinds") {
				opts.Kinds = append(opts.Kinds, types.QuestionType(strings.TrimSpace(k)))
			}
			report, err := runIngest(cmd.Context(), log, args[0], opts)
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), report)
		},
	}
	f := cmd.Flags()
	f.String("rules", "", "YAML rule overrides")
	f.Int("count", 10, "questions per chapter")
	f.String("difficulty", types.DifficultyMedium, "easy, medium, hard or mixed")
	f.StringSlice("kinds", nil, "extra question kinds: true_false, short_answer")
	f.Int64("seed", 0, "random seed; 0 uses the clock")
	return cmd
}

func runIngest(ctx context.Context, log *logger.Logger, path string, opts ingestOptions) (*ingestReport, error) {
	if opts.Count <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d", opts.Count)
	}
	opts.Difficulty = strings.ToLower(strings.TrimSpace(opts.Difficulty))
	switch opts.Difficulty {
	case types.DifficultyEasy, types.DifficultyMedium, types.DifficultyHard, types.DifficultyMixed:
	default:
		return nil, fmt.Errorf("unknown difficulty %q", opts.Difficulty)
	}
	for _, k := range opts.Kinds {
		if !k.Valid() {
			return nil, fmt.Errorf("unknown question kind %q", k)
		}
	}
	ruleSet, err := rules.Load(opts.RulesFile)
	if err != nil {
		return nil, err
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	doc, err := document.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	chapters, err := segment.New(ruleSet, log).Segment(ctx, doc, func(_ context.Context, ch segment.Chapter) error {
		log.Debug("Chapter found", "number", ch.Number, "title", ch.Title)
		return nil
	})
	if err != nil {
		return nil, err
	}

	analyzer := analysis.New(ruleSet)
	synth := questiongen.New(ruleSet, log)
	report := &ingestReport{File: filepath.Base(path), Chapters: make([]ingestChapter, 0, len(chapters))}
	for _, ch := range chapters {
		res := analyzer.Analyze(ch.Content)
		out := ingestChapter{
			Number:    ch.Number,
			Title:     ch.Title,
			Summary:   ch.Summary,
			Keywords:  res.TopConcepts(ruleSet.Analysis.KeywordLimit),
			Questions: []ingestQuestion{},
		}
		if !res.Empty() {
			drafts := synth.Synthesize(ctx, res, questiongen.Request{Count: opts.Count, Difficulty: opts.Difficulty, Kinds: opts.Kinds}, rng)
			for _, d := range drafts {
				out.Questions = append(out.Questions, ingestQuestion{
					Type:          d.QuestionType,
					Category:      string(d.Category),
					Text:          d.QuestionText,
					Options:       d.Options,
					CorrectAnswer: d.CorrectAnswer,
					Difficulty:    d.Difficulty,
					Explanation:   d.Explanation,
				})
			}
		}
		report.Chapters = append(report.Chapters, out)
	}
	return report, nil
}

func writeReport(w io.Writer, report *ingestReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
