// Command phrasekit extracts phrase-level mentions from survey comment CSVs
// for the feedback-exploration tool.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gosuri/uiprogress"
	"github.com/urfave/cli/v2"

	"github.com/feedbacklens/phrasekit/internal/logging"
	"github.com/feedbacklens/phrasekit/internal/pipeline"
	"github.com/feedbacklens/phrasekit/internal/store"
	"github.com/feedbacklens/phrasekit/internal/survey"
	"github.com/feedbacklens/phrasekit/pkg/category"
	"github.com/feedbacklens/phrasekit/pkg/chunker"
	"github.com/feedbacklens/phrasekit/pkg/grammar"
	"github.com/feedbacklens/phrasekit/pkg/mention"
	"github.com/feedbacklens/phrasekit/pkg/tagger"
)

func main() {
	app := &cli.App{
		Name:  "phrasekit",
		Usage: "extract phrase-level mentions from survey comments",
		Commands: []*cli.Command{
			extractCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "phrasekit: %v\n", err)
		os.Exit(1)
	}
}

func extractCommand() *cli.Command {
	return &cli.Command{
		Name:  "extract",
		Usage: "read a survey CSV, extract themed phrases, write the enriched CSV",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Required: true, Usage: "survey CSV to read"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true, Usage: "CSV to write"},
			&cli.StringFlag{Name: "comment-column", Value: "Q3_x", Usage: "name of the free-text column"},
			&cli.StringFlag{Name: "grammar", Usage: "chunk grammar file (embedded default when unset)"},
			&cli.StringFlag{Name: "cache", Usage: "SQLite DSN for the POS tag cache (disabled when unset)"},
			&cli.IntFlag{Name: "max-length", Value: survey.DefaultMaxLength, Usage: "comment length cutoff"},
			&cli.StringFlag{Name: "log-level", Value: "info"},
			&cli.BoolFlag{Name: "log-json", Usage: "log in JSON instead of text"},
			&cli.BoolFlag{Name: "progress", Value: true, Usage: "render a progress bar"},
		},
		Action: runExtract,
	}
}

func runExtract(c *cli.Context) error {
	logging.Setup(c.String("log-level"), c.Bool("log-json"))

	g := grammar.MustDefault()
	if path := c.String("grammar"); path != "" {
		loaded, err := grammar.Load(path)
		if err != nil {
			return err
		}
		g = loaded
		slog.Info("using grammar file", "path", path)
	}

	dataset, err := survey.Read(c.String("input"), c.String("comment-column"))
	if err != nil {
		return err
	}
	slog.Info("read survey file", "path", c.String("input"), "rows", len(dataset.Records))

	p := &pipeline.Pipeline{
		Tagger:    tagger.New(),
		Parser:    chunker.NewParser(g),
		Extractor: mention.NewExtractor(category.VerbGroups(), category.Themes()),
		Resolve:   mention.Dedupe,
	}

	if dsn := c.String("cache"); dsn != "" {
		cache, err := store.OpenTagCache(dsn)
		if err != nil {
			return err
		}
		defer cache.Close()
		p.Cache = cache
	}

	slog.Info("preprocessing comments")
	comments := survey.Preprocess(dataset, survey.NewDetector(), c.Int("max-length"))

	kept := 0
	for _, cm := range comments {
		if cm.Keep {
			kept++
		}
	}
	slog.Info("detecting and extracting phrase-level mentions", "kept", kept, "total", len(comments))

	progress := func() {}
	if c.Bool("progress") && len(comments) > 0 {
		uiprogress.Start()
		bar := uiprogress.AddBar(len(comments))
		bar.AppendCompleted()
		bar.PrependElapsed()
		progress = func() { bar.Incr() }
		defer uiprogress.Stop()
	}

	results := p.Run(comments, progress)

	cleaned := make([]string, len(results))
	words := make([]string, len(results))
	lemmas := make([]string, len(results))
	phrases := make([]string, len(results))
	userPhrases := make([]string, len(results))
	language := make([]string, len(results))
	keep := make([]bool, len(results))
	for i, r := range results {
		cleaned[i] = r.Cleaned
		words[i] = r.Words
		lemmas[i] = r.Lemmas
		phrases[i] = r.Phrases
		userPhrases[i] = r.UserPhrases
		language[i] = comments[i].Language
		keep[i] = comments[i].Keep
	}

	extra := map[string][]string{
		"language":     language,
		"words":        words,
		"lemmas":       lemmas,
		"phrases":      phrases,
		"user_phrases": userPhrases,
	}
	order := []string{"language", "words", "lemmas", "phrases", "user_phrases"}
	if err := dataset.WriteWithColumns(c.String("output"), cleaned, extra, order, keep); err != nil {
		return err
	}
	slog.Info("wrote output", "path", c.String("output"))
	return nil
}
