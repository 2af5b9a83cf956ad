package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/peterbourgon/ff/v4"

	"github.com/zombor/pantry/internal/catalog"
	"github.com/zombor/pantry/internal/config"
	"github.com/zombor/pantry/internal/normalize"
	"github.com/zombor/pantry/internal/pantry"
	"github.com/zombor/pantry/internal/receipt"
	"github.com/zombor/pantry/internal/scanning"
)

// rootConfig holds the flags shared by every subcommand
type rootConfig struct {
	logLevel    *string
	logFormat   *string
	configPath  *string
	dbPath      *string
	storagePath *string
}

// catalogConfig selects the recipe catalog
type catalogConfig struct {
	catalogPath    *string
	spoonacularKey *string
	spoonacularURL *string
	spoonacularN   *int
}

func addCatalogFlags(fs *ff.FlagSet) catalogConfig {
	return catalogConfig{
		catalogPath:    fs.StringLong("catalog", "", "Path to a YAML recipe catalog"),
		spoonacularKey: fs.StringLong("spoonacular-key", "", "Spoonacular API key (used when --catalog is empty)"),
		spoonacularURL: fs.StringLong("spoonacular-url", "", "Spoonacular API base URL override"),
		spoonacularN:   fs.IntLong("spoonacular-number", 20, "Recipes requested per Spoonacular call"),
	}
}

func newRootCommand() *ff.Command {
	rootFlags := ff.NewFlagSet("pantry")
	rc := rootConfig{
		logLevel:    rootFlags.StringLong("log-level", "info", "Log level: debug, info, warn, error"),
		logFormat:   rootFlags.StringLong("log-format", "text", "Log format: text or json"),
		configPath:  rootFlags.StringLong("config", "", "YAML file merged over the built-in parser and recommender settings"),
		dbPath:      rootFlags.StringLong("db", "pantry.db", "Database file path"),
		storagePath: rootFlags.StringLong("storage", "./receipts", "Storage directory for archived receipts"),
	}
	rootFlags.BoolLong("version", "Show version information")

	root := &ff.Command{
		Name:      "pantry",
		Usage:     "pantry [FLAGS] <SUBCOMMAND>",
		ShortHelp: "track groceries from receipts and suggest recipes before food spoils",
		Flags:     rootFlags,
	}
	root.Subcommands = []*ff.Command{
		newServeCommand(rootFlags, rc),
		newParseCommand(rootFlags, rc),
		newRecommendCommand(rootFlags, rc),
	}
	return root
}

// loadSettings configures logging and reads the domain settings
func (rc rootConfig) loadSettings() (*config.Settings, error) {
	if err := setupLogger(*rc.logLevel, *rc.logFormat); err != nil {
		return nil, err
	}
	settings, err := config.Load(*rc.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return settings, nil
}

// buildEngine assembles the parsing and ranking pipeline from settings
func buildEngine(settings *config.Settings) (pantry.Engine, *normalize.Normalizer, error) {
	normalizer, err := settings.Normalizer()
	if err != nil {
		return pantry.Engine{}, nil, err
	}
	parser, err := settings.ReceiptParser(normalizer)
	if err != nil {
		return pantry.Engine{}, nil, err
	}
	return pantry.Engine{
		Parser:    parser,
		ShelfLife: settings.ShelfLife,
		Scorer:    settings.Scorer(),
		Policy:    settings.Policy(),
	}, normalizer, nil
}

// build opens the configured recipe source. With nothing configured
// an empty catalog is used and recommendations stay empty.
func (cc catalogConfig) build(normalizer *normalize.Normalizer) (catalog.Source, error) {
	switch {
	case *cc.catalogPath != "":
		slog.Info("Loading recipe catalog...", "path", *cc.catalogPath)
		return catalog.NewFileSource(*cc.catalogPath)
	case *cc.spoonacularKey != "":
		slog.Info("Using Spoonacular recipe catalog")
		return catalog.NewSpoonacular(catalog.SpoonacularOptions{
			BaseURL: *cc.spoonacularURL,
			APIKey:  *cc.spoonacularKey,
			Number:  *cc.spoonacularN,
		}, normalizer)
	default:
		slog.Warn("No recipe catalog configured; recommendations will be empty")
		return catalog.ParseFileSource(nil)
	}
}

// openStores opens the database and the receipt archive
func (rc rootConfig) openStores() (*pantry.BoltDB, *pantry.LocalStorage, error) {
	slog.Info("Initializing database...", "path", *rc.dbPath)
	db, err := pantry.NewBoltDB(*rc.dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing database: %w", err)
	}
	store, err := pantry.NewLocalStorage(*rc.storagePath)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("initializing storage: %w", err)
	}
	return db, store, nil
}

func newServeCommand(parent *ff.FlagSet, rc rootConfig) *ff.Command {
	fs := ff.NewFlagSet("serve").SetParent(parent)
	var (
		port        = fs.IntLong("port", 8080, "HTTP server port")
		readerType  = fs.StringLong("reader", "none", "OCR reader for scanned receipts: gemini, ollama, tesseract or none")
		geminiKey   = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel = fs.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name")
		ollamaURL   = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel = fs.StringLong("ollama-model", "llava", "Ollama vision model name")
		tessLangs   = fs.StringLong("tesseract-langs", strings.Join(scanning.DefaultTesseractLanguages, "+"), "Tesseract languages joined with +")
		authUser    = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass    = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		cc          = addCatalogFlags(fs)
	)

	return &ff.Command{
		Name:      "serve",
		Usage:     "pantry serve [FLAGS]",
		ShortHelp: "run the HTTP API",
		Flags:     fs,
		Exec: func(ctx context.Context, args []string) error {
			settings, err := rc.loadSettings()
			if err != nil {
				return err
			}
			engine, normalizer, err := buildEngine(settings)
			if err != nil {
				return err
			}

			reader, err := newReader(*readerType, readerOptions{
				geminiKey:   *geminiKey,
				geminiModel: *geminiModel,
				ollamaURL:   *ollamaURL,
				ollamaModel: *ollamaModel,
				tessLangs:   *tessLangs,
			})
			if err != nil {
				return err
			}
			if reader != nil {
				defer reader.Close()
			}

			source, err := cc.build(normalizer)
			if err != nil {
				return err
			}

			db, store, err := rc.openStores()
			if err != nil {
				return err
			}
			defer db.Close()

			service := pantry.NewService(db, store, reader, source, engine)
			server := pantry.NewServer(service, pantry.BasicAuth{
				Username: *authUser,
				Password: *authPass,
			})

			if *authUser != "" || *authPass != "" {
				slog.Info("Basic auth enabled", "user", *authUser)
			}
			return server.Start(ctx, fmt.Sprintf(":%d", *port))
		},
	}
}

// readerOptions carries the flags of every OCR backend
type readerOptions struct {
	geminiKey   string
	geminiModel string
	ollamaURL   string
	ollamaModel string
	tessLangs   string
}

// newReader builds the configured OCR reader. "none" disables scanning.
func newReader(kind string, opts readerOptions) (scanning.LineReader, error) {
	switch kind {
	case "none", "":
		slog.Info("Receipt scanning disabled")
		return nil, nil
	case "gemini":
		apiKey := opts.geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			return nil, errors.New("gemini API key is required: set --gemini-key or GEMINI_API_KEY")
		}
		slog.Info("Initializing Gemini reader...", "model", opts.geminiModel)
		return scanning.NewGemini(apiKey, opts.geminiModel)
	case "ollama":
		slog.Info("Initializing Ollama reader...", "url", opts.ollamaURL, "model", opts.ollamaModel)
		return scanning.NewOllama(opts.ollamaURL, opts.ollamaModel)
	case "tesseract":
		langs := strings.Split(opts.tessLangs, "+")
		slog.Info("Initializing Tesseract reader...", "languages", langs)
		return scanning.NewTesseract(langs...)
	default:
		return nil, fmt.Errorf("invalid reader %q: want gemini, ollama, tesseract or none", kind)
	}
}

func newParseCommand(parent *ff.FlagSet, rc rootConfig) *ff.Command {
	fs := ff.NewFlagSet("parse").SetParent(parent)
	pretty := fs.BoolLong("pretty", "Indent JSON output")

	return &ff.Command{
		Name:      "parse",
		Usage:     "pantry parse [FLAGS] <FILE>...",
		ShortHelp: "parse OCR text files and print the products as JSON",
		LongHelp:  "Each FILE holds the OCR text of one receipt. Use - to read standard input.",
		Flags:     fs,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return errors.New("parse: at least one file is required")
			}
			settings, err := rc.loadSettings()
			if err != nil {
				return err
			}
			engine, _, err := buildEngine(settings)
			if err != nil {
				return err
			}

			receipts := make([][]receipt.RawLine, len(args))
			for i, name := range args {
				text, err := readInput(name)
				if err != nil {
					return err
				}
				receipts[i] = receipt.Lines(text)
			}

			results, err := engine.Parser.ParseAll(ctx, receipts)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			if *pretty {
				enc.SetIndent("", "  ")
			}
			for i, res := range results {
				out := struct {
					File string `json:"file"`
					*receipt.Result
				}{File: args[i], Result: res}
				if err := enc.Encode(out); err != nil {
					return fmt.Errorf("encoding result: %w", err)
				}
			}
			return nil
		},
	}
}

func readInput(name string) (string, error) {
	var (
		data []byte
		err  error
	)
	if name == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", name, err)
	}
	return string(data), nil
}

func newRecommendCommand(parent *ff.FlagSet, rc rootConfig) *ff.Command {
	fs := ff.NewFlagSet("recommend").SetParent(parent)
	var (
		user  = fs.StringLong("user", "", "User whose inventory is used")
		limit = fs.IntLong("limit", 0, "Maximum recommendations (0 uses the configured limit)")
		cc    = addCatalogFlags(fs)
	)

	return &ff.Command{
		Name:      "recommend",
		Usage:     "pantry recommend --user NAME [FLAGS]",
		ShortHelp: "print recipe recommendations for a stored inventory",
		Flags:     fs,
		Exec: func(ctx context.Context, args []string) error {
			if *user == "" {
				return errors.New("recommend: --user is required")
			}
			settings, err := rc.loadSettings()
			if err != nil {
				return err
			}
			engine, normalizer, err := buildEngine(settings)
			if err != nil {
				return err
			}
			source, err := cc.build(normalizer)
			if err != nil {
				return err
			}
			db, store, err := rc.openStores()
			if err != nil {
				return err
			}
			defer db.Close()

			service := pantry.NewService(db, store, nil, source, engine)
			recs, err := service.Recommend(ctx, *user, *limit)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(recs)
		},
	}
}
