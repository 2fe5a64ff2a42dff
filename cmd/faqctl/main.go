// Command faqctl queries and edits the FAQ corpus without the HTTP service.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/yanqian/semantic-faq/internal/domain/faq"
	"github.com/yanqian/semantic-faq/internal/infra/config"
	"github.com/yanqian/semantic-faq/internal/infra/corpus"
	"github.com/yanqian/semantic-faq/internal/infra/embedding"
	"github.com/yanqian/semantic-faq/internal/infra/faqstore"
	"github.com/yanqian/semantic-faq/pkg/logger"
	"github.com/yanqian/semantic-faq/pkg/metrics"
	"github.com/yanqian/semantic-faq/pkg/util"
)

const usage = `usage: faqctl [flags] <command> [args]

commands:
  answer <question>                     best answer for a question
  similar [-k N] <question>             top-k similar questions
  list                                  every question in the corpus
  search <query>                        substring search
  categories                            categories and their sizes
  add -category C -question Q -answer A [-rebuild]
  stats                                 engine status

flags:
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	corpusPath string
	provider   string
	text       bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("faqctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	var opts options
	fs.StringVar(&opts.corpusPath, "corpus", "", "path of a JSON corpus file (overrides the configured corpus)")
	fs.StringVar(&opts.provider, "provider", "", "embedding provider: hashing, openai or none")
	fs.BoolVar(&opts.text, "text", false, "print plain text instead of JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return 1
	}
	if opts.corpusPath != "" {
		cfg.FAQ.Corpus.Driver = corpus.DriverFile
		cfg.FAQ.Corpus.Path = opts.corpusPath
	}
	if opts.provider != "" {
		cfg.Embedding.Provider = opts.provider
	}

	svc, cleanup, err := buildService(ctx, cfg, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	defer cleanup()

	out := printer{w: stdout, text: opts.text}
	if err := dispatch(ctx, svc, fs.Arg(0), fs.Args()[1:], out, stderr); err != nil {
		if errors.Is(err, errUsage) {
			fs.Usage()
			return 2
		}
		fmt.Fprintf(stderr, "%s: %v\n", fs.Arg(0), err)
		return 1
	}
	return 0
}

func buildService(ctx context.Context, cfg *config.Config, stderr io.Writer) (faq.Service, func(), error) {
	log := logger.NewWithWriter(stderr)
	source, cleanup, err := corpus.Open(ctx, corpus.Config{
		Driver:   cfg.FAQ.Corpus.Driver,
		Path:     cfg.FAQ.Corpus.Path,
		DSN:      cfg.FAQ.Corpus.DSN,
		MaxConns: cfg.FAQ.Corpus.MaxConns,
		MinConns: cfg.FAQ.Corpus.MinConns,
		ObjectStore: corpus.ObjectStoreConfig{
			Endpoint:  cfg.FAQ.Corpus.ObjectStore.Endpoint,
			AccessKey: cfg.FAQ.Corpus.ObjectStore.AccessKey,
			SecretKey: cfg.FAQ.Corpus.ObjectStore.SecretKey,
			Bucket:    cfg.FAQ.Corpus.ObjectStore.Bucket,
			Region:    cfg.FAQ.Corpus.ObjectStore.Region,
			Key:       cfg.FAQ.Corpus.ObjectStore.Key,
		},
	}, log)
	if err != nil {
		return nil, nil, fmt.Errorf("open corpus: %w", err)
	}

	embedder := embedding.New(embedding.Config{
		Provider:       cfg.Embedding.Provider,
		Model:          cfg.Embedding.Model,
		APIKey:         cfg.Embedding.APIKey,
		BaseURL:        cfg.Embedding.BaseURL,
		Dimensions:     cfg.Embedding.Dimensions,
		Encoding:       cfg.Embedding.Encoding,
		MaxBatchTokens: cfg.Embedding.MaxBatchTokens,
		RequestTimeout: cfg.Embedding.RequestTimeout,
	}, nil, log)

	faqCfg := faq.Config{
		SimilarityThreshold: cfg.FAQ.SimilarityThreshold,
		LexicalThreshold:    cfg.FAQ.LexicalThreshold,
		DefaultTopK:         cfg.FAQ.DefaultTopK,
		MaxTopK:             cfg.FAQ.MaxTopK,
		TopRecommendations:  cfg.FAQ.TopRecommendations,
		WarmupTimeout:       cfg.FAQ.WarmupTimeout,
	}
	engine := faq.NewEngine(faqCfg, faq.NewCorpusStore(source, log), embedder, log)
	svc := faq.NewService(faqCfg, engine, faqstore.NewMemoryTrending(), metrics.NewQueryStats(util.NowUTC()), log)
	return svc, cleanup, nil
}

func dispatch(ctx context.Context, svc faq.Service, command string, args []string, out printer, stderr io.Writer) error {
	switch command {
	case "answer":
		question := strings.Join(args, " ")
		resp, err := svc.Ask(ctx, faq.AskRequest{Question: question})
		if err != nil {
			return err
		}
		return out.print(resp, resp.Answer)

	case "similar":
		fs := flag.NewFlagSet("similar", flag.ContinueOnError)
		fs.SetOutput(stderr)
		k := fs.Int("k", 0, "number of results (0 uses the configured default)")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		resp, err := svc.Similar(ctx, faq.SimilarRequest{Question: strings.Join(fs.Args(), " "), TopK: *k})
		if err != nil {
			return err
		}
		lines := make([]string, 0, len(resp.Results))
		for _, r := range resp.Results {
			lines = append(lines, fmt.Sprintf("%.4f  %s", r.Score, r.Question))
		}
		return out.print(resp, strings.Join(lines, "\n"))

	case "list":
		entries, err := svc.List(ctx)
		if err != nil {
			return err
		}
		lines := make([]string, 0, len(entries))
		for _, e := range entries {
			lines = append(lines, fmt.Sprintf("[%s] %s", e.Category, e.Question))
		}
		return out.print(entries, strings.Join(lines, "\n"))

	case "search":
		hits, err := svc.Search(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		lines := make([]string, 0, len(hits))
		for _, h := range hits {
			lines = append(lines, fmt.Sprintf("%d  %s", h.RelevanceScore, h.Question))
		}
		return out.print(hits, strings.Join(lines, "\n"))

	case "categories":
		views, err := svc.Categories(ctx)
		if err != nil {
			return err
		}
		lines := make([]string, 0, len(views))
		for _, v := range views {
			lines = append(lines, fmt.Sprintf("%s\t%s\t%d", v.Key, v.Name, v.Count))
		}
		return out.print(views, strings.Join(lines, "\n"))

	case "add":
		fs := flag.NewFlagSet("add", flag.ContinueOnError)
		fs.SetOutput(stderr)
		var req faq.AddEntryRequest
		fs.StringVar(&req.Category, "category", "", "category key")
		fs.StringVar(&req.Question, "question", "", "question text")
		fs.StringVar(&req.Answer, "answer", "", "answer text")
		fs.BoolVar(&req.Rebuild, "rebuild", false, "re-embed the corpus after adding")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		resp, err := svc.AddEntry(ctx, req)
		if err != nil {
			return err
		}
		return out.print(resp, fmt.Sprintf("added to %s (rebuilt: %t)", resp.Entry.Category, resp.Rebuilt))

	case "stats":
		stats, err := svc.Stats(ctx)
		if err != nil {
			return err
		}
		text := fmt.Sprintf("entries: %d\nfallback: %t", stats.Engine.CorpusEntries, stats.Engine.FallbackMode)
		return out.print(stats, text)

	default:
		return errUsage
	}
}

type printer struct {
	w    io.Writer
	text bool
}

func (p printer) print(v any, text string) error {
	if p.text {
		_, err := fmt.Fprintln(p.w, text)
		return err
	}
	enc := json.NewEncoder(p.w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
