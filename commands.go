package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Skino1337/PyPoE/internal/config"
	"github.com/Skino1337/PyPoE/internal/corrections"
	"github.com/Skino1337/PyPoE/internal/etl"
	"github.com/Skino1337/PyPoE/internal/exporters"
	"github.com/Skino1337/PyPoE/internal/lua"
	"github.com/Skino1337/PyPoE/internal/repository"
	_ "github.com/Skino1337/PyPoE/internal/repository/loaders"
	"github.com/Skino1337/PyPoE/internal/service"
	"github.com/Skino1337/PyPoE/internal/storage"
	"github.com/Skino1337/PyPoE/internal/translate"
)

func newRootCommand() *cobra.Command {
	rc := &cobra.Command{
		Use:   "luaexport",
		Short: "Export game data tables as Lua modules for the wiki",
		Long: `
Reads the game data tables from JSON, CSV, xlsx or a database, projects them
into flat records and writes each dataset as a standalone Lua table module.
`,
		SilenceUsage: true,
	}
	config.RegisterFlags(rc.PersistentFlags())

	rc.AddCommand(newExportCommand())
	rc.AddCommand(newListCommand(os.Stdout))
	rc.AddCommand(newWatchCommand())
	rc.AddCommand(newRunsCommand(os.Stdout))
	rc.AddCommand(newVerifyCommand(os.Stdout))
	return rc
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(viper.New(), cmd.Flags())
}

// datasetNames returns args, or every registered exporter when empty.
func datasetNames(args []string) []string {
	if len(args) > 0 {
		return args
	}
	var names []string
	for _, spec := range etl.ListExporters() {
		names = append(names, spec.Name)
	}
	return names
}

// newService wires the export service from cfg. The returned close func
// releases the run log.
func newService(cfg *config.Config) (*service.ExportService, func(), error) {
	schema, err := exporters.DefaultSchema()
	if err != nil {
		return nil, nil, err
	}
	if cfg.Schema != "" {
		if schema, err = repository.LoadSchema(cfg.Schema); err != nil {
			return nil, nil, err
		}
	}

	fixes, err := corrections.Load(cfg.Corrections)
	if err != nil {
		return nil, nil, err
	}

	var tr translate.Translator
	if cfg.Translations != "" {
		if tr, err = translate.LoadFile(cfg.Translations); err != nil {
			return nil, nil, err
		}
	}

	opts := service.Options{
		Language:    cfg.Language,
		Corrections: fixes,
		Translator:  tr,
		Dest:        &etl.FileDestination{Dir: cfg.OutDir},
		Verify:      cfg.Verify,
	}

	closeFn := func() {}
	if cfg.LogDB != "" {
		db, err := storage.New(cfg.LogDB)
		if err != nil {
			return nil, nil, err
		}
		opts.Log = storage.NewExportLogStore(db)
		opts.KeepRuns = cfg.KeepRuns
		closeFn = func() { db.Close() }
	}

	open := func(ctx context.Context) (*repository.Memory, error) {
		return repository.Open(ctx, cfg.Source.Type, cfg.LoaderConfig(), schema)
	}
	return service.NewExportService(open, opts), closeFn, nil
}

func newExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export [dataset...]",
		Short: "Export datasets (all when none are named)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			svc, closeFn, err := newService(cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			results, err := svc.Run(cmd.Context(), "manual", datasetNames(args))
			printResults(cmd.OutOrStdout(), results)
			return err
		},
	}
}

func printResults(w io.Writer, results []*etl.ExportResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATASET\tSTATUS\tFILES\tWARNINGS\tDURATION")
	for _, r := range results {
		files := make([]string, len(r.Artifacts))
		for i, a := range r.Artifacts {
			files[i] = a.OutFile
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			r.Dataset, r.Status, strings.Join(files, ","), len(r.Warnings), r.Duration.Round(time.Millisecond))
	}
	tw.Flush()
}

func newListCommand(w io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List datasets and repository loaders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATASET\tDESCRIPTION\tTABLES")
			for _, s := range etl.ListExporters() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Name, s.Label, strings.Join(s.Tables, ", "))
			}
			fmt.Fprintln(tw)
			fmt.Fprintln(tw, "LOADER\tDESCRIPTION\tOPTIONS")
			for _, s := range repository.ListLoaders() {
				keys := make([]string, len(s.ConfigFields))
				for i, f := range s.ConfigFields {
					keys[i] = f.Key
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Type, s.Label, strings.Join(keys, ", "))
			}
			return tw.Flush()
		},
	}
}

func newWatchCommand() *cobra.Command {
	var schedule string
	cmd := &cobra.Command{
		Use:   "watch [dataset...]",
		Short: "Re-export on a cron schedule and whenever the source files change",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if schedule == "" {
				schedule = cfg.Schedule
			}
			svc, closeFn, err := newService(cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			names := datasetNames(args)
			if err := svc.Watch(ctx, names, schedule, cfg.WatchPaths()); err != nil {
				return err
			}
			log.Printf("watch: waiting for changes to %v", names)
			<-ctx.Done()

			svc.Stop()
			shutdown, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			svc.WaitRunning(shutdown)
			log.Printf("watch: stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&schedule, "schedule", "", "cron expression, e.g. \"0 */6 * * *\" (overrides config)")
	return cmd
}

func newRunsCommand(w io.Writer) *cobra.Command {
	var (
		limit   int
		details bool
		prune   int
	)
	cmd := &cobra.Command{
		Use:   "runs [dataset]",
		Short: "Show the export run log",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.LogDB == "" {
				return errors.New("no run log configured (set log_db or --log-db)")
			}
			db, err := storage.New(cfg.LogDB)
			if err != nil {
				return err
			}
			defer db.Close()
			store := storage.NewExportLogStore(db)

			if prune > 0 {
				var total int64
				for _, name := range datasetNames(args) {
					n, err := store.Prune(name, prune)
					if err != nil {
						return fmt.Errorf("prune %s: %w", name, err)
					}
					total += n
				}
				fmt.Fprintf(w, "pruned %d run(s)\n", total)
				return nil
			}

			dataset := ""
			if len(args) == 1 {
				dataset = args[0]
			}
			runs, err := store.ListRuns(dataset, limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDATASET\tLANGUAGE\tTRIGGER\tSTARTED\tSTATUS\tDURATION\tERROR")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					r.ID, r.Dataset, r.Language, r.Trigger, r.StartedAt.Local().Format(time.DateTime),
					r.Status, r.Duration, r.Error)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if !details {
				return nil
			}

			for _, r := range runs {
				arts, err := store.ListArtifacts(r.ID)
				if err != nil {
					return err
				}
				warns, err := store.ListWarnings(r.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "\n%s (%s)\n", r.ID, r.Dataset)
				for _, a := range arts {
					pages := make([]string, len(a.Pages))
					for i, p := range a.Pages {
						pages[i] = p.Page
					}
					fmt.Fprintf(w, "  %s  %d bytes  -> %s\n", a.OutFile, a.Size, strings.Join(pages, ", "))
				}
				for _, wr := range warns {
					fmt.Fprintf(w, "  warning: %s\n", wr)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	cmd.Flags().BoolVar(&details, "details", false, "also list artifacts and warnings of each run")
	cmd.Flags().IntVar(&prune, "prune", 0, "delete all but the newest N runs of the dataset (every dataset when none is named)")
	return cmd
}

func newVerifyCommand(w io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "verify file...",
		Short: "Load exported Lua modules and report their record counts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var errs []error
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				records, err := lua.Eval(string(data))
				if err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", path, err))
					fmt.Fprintf(w, "%s: FAIL %v\n", path, err)
					continue
				}
				fmt.Fprintf(w, "%s: ok, %d record(s)\n", path, len(records))
			}
			return errors.Join(errs...)
		},
	}
}
