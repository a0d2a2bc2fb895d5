package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/rangepick/internal/config"
	"github.com/jask/rangepick/internal/database"
	"github.com/jask/rangepick/internal/dateadapter"
	"github.com/jask/rangepick/internal/form"
	"github.com/jask/rangepick/internal/picker"
	"github.com/jask/rangepick/internal/presets"
	"github.com/jask/rangepick/internal/textfield"
	"github.com/jask/rangepick/internal/tui"
)

type options struct {
	maxSpan    int
	required   bool
	noDB       bool
	saveConfig bool
	weekStart  string
	dateFormat string
	timezone   string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("rangepick", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&o.maxSpan, "max-span", 0, "reject ranges longer than this many days (0 = no limit)")
	fs.BoolVar(&o.required, "required", false, "require a range before exiting")
	fs.BoolVar(&o.noDB, "no-db", false, "run without the presets database")
	fs.StringVar(&o.weekStart, "week-start", "", "first day of the week (monday, sunday, saturday)")
	fs.StringVar(&o.dateFormat, "date-format", "", "Go time layout for dates, e.g. 02/01/2006")
	fs.StringVar(&o.timezone, "timezone", "", "IANA timezone name or Local")
	fs.BoolVar(&o.saveConfig, "save-config", false, "write the effective settings to the config file and exit")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if o.maxSpan < 0 {
		return options{}, fmt.Errorf("-max-span must not be negative, got %d", o.maxSpan)
	}
	return o, nil
}

// apply copies the UI overrides given on the command line into cfg.
func (o options) apply(cfg *config.Config) {
	if o.weekStart != "" {
		cfg.UI.WeekStart = o.weekStart
	}
	if o.dateFormat != "" {
		cfg.UI.DateFormat = o.dateFormat
	}
	if o.timezone != "" {
		cfg.UI.Timezone = o.timezone
	}
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string) error {
	opts, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	opts.apply(&cfg)

	if opts.saveConfig {
		if err := config.Save(cfg); err != nil {
			return err
		}
		fmt.Println("config saved")
		return nil
	}

	if cfg.Log.Path != "" {
		f, err := tea.LogToFile(cfg.Log.Path, "rangepick")
		if err != nil {
			return fmt.Errorf("log file: %w", err)
		}
		defer f.Close()
	}

	loc, err := cfg.UI.Location()
	if err != nil {
		log.Printf("warn: using local timezone due to load failure: %v", err)
	}
	adapter := dateadapter.New(
		dateadapter.WithLayout(cfg.UI.DateFormat),
		dateadapter.WithLocation(loc),
		dateadapter.WithWeekStart(cfg.UI.Weekday()),
	)

	var store *presets.Store
	if !opts.noDB {
		s, closeDB, err := openStore(ctx, cfg, loc, adapter)
		if err != nil {
			return err
		}
		defer closeDB()
		store = s
	}

	mode := cursor.CursorBlink
	if !cfg.UI.CursorBlink {
		mode = cursor.CursorStatic
	}

	var validators []form.Validator
	if opts.required {
		validators = append(validators, form.Required())
	}
	if opts.maxSpan > 0 {
		validators = append(validators, form.MaxSpan(adapter, opts.maxSpan))
	}

	p, err := picker.New(adapter,
		picker.WithLabel("Period"),
		picker.WithCloseOnToPick(cfg.UI.CloseOnToPick),
		picker.WithValidators(validators...),
		picker.WithFieldOptions(
			textfield.WithSeparator(cfg.UI.Separator),
			textfield.WithPlaceholder(adapter.Layout()+cfg.UI.Separator+adapter.Layout()),
			textfield.WithWidth(2*len(adapter.Layout())+len(cfg.UI.Separator)+1),
			textfield.WithCursorMode(mode),
		),
	)
	if err != nil {
		return err
	}
	defer p.Release()

	app := tui.New(ctx, adapter, store, p, tui.WithCursorMode(mode))
	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		return err
	}

	if err := p.Control().Validate(); err != nil {
		return fmt.Errorf("invalid range: %w", err)
	}
	if sel := app.Selection(); sel != "" {
		fmt.Println(sel)
	}
	return nil
}

// openStore migrates the presets database and imports the configured presets
// file. A bad presets file is only logged.
func openStore(ctx context.Context, cfg config.Config, loc *time.Location, adapter *dateadapter.Adapter) (*presets.Store, func(), error) {
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	if err := database.RunMigrationsWithDB(db, cfg.Database.Migrations); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	store := presets.NewStore(db, loc)
	closeDB := func() { _ = db.Close() }

	if cfg.UI.PresetsFile == "" {
		return store, closeDB, nil
	}
	items, err := presets.LoadFile(cfg.UI.PresetsFile, adapter)
	if err == nil {
		err = store.Import(ctx, items)
	}
	if err != nil {
		log.Printf("warn: skipping presets file: %v", err)
	}
	return store, closeDB, nil
}
