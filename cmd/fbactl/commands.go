package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/fba-cockpit/internal/analytics"
	"github.com/andresuchdata/fba-cockpit/internal/app"
	"github.com/andresuchdata/fba-cockpit/internal/config"
	"github.com/andresuchdata/fba-cockpit/internal/domain"
	"github.com/andresuchdata/fba-cockpit/internal/drive"
	"github.com/andresuchdata/fba-cockpit/internal/pipeline"
	"github.com/andresuchdata/fba-cockpit/internal/service"
	"github.com/andresuchdata/fba-cockpit/internal/storage"
)

func viewFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "sort", Usage: "Sort criteria, e.g. riskScore:desc,sku:asc", Value: "riskScore:desc"},
		&cli.StringFlag{Name: "category", Usage: "Only this category"},
		&cli.StringFlag{Name: "search", Usage: "Substring match on SKU, ASIN or name"},
		&cli.StringFlag{Name: "stock-status", Usage: "low, high or stranded"},
		&cli.IntFlag{Name: "limit", Usage: "Rows to show", Value: 20},
		&cli.Float64Flag{Name: "lead-time", Usage: "Restock lead time in days", Value: 30, EnvVars: []string{"FORECAST_LEAD_TIME_DAYS"}},
		&cli.Float64Flag{Name: "safety-stock", Usage: "Safety stock in days", Value: 14, EnvVars: []string{"FORECAST_SAFETY_STOCK_DAYS"}},
		&cli.Float64Flag{Name: "demand-forecast", Usage: "Demand change in percent", Value: 0, EnvVars: []string{"FORECAST_DEMAND_PERCENT"}},
		&cli.BoolFlag{Name: "json", Usage: "Print JSON instead of a table"},
	}
}

func forecastFromFlags(c *cli.Context) domain.ForecastSettings {
	return domain.ForecastSettings{
		LeadTimeDays:          c.Float64("lead-time"),
		SafetyStockDays:       c.Float64("safety-stock"),
		DemandForecastPercent: c.Float64("demand-forecast"),
	}
}

func viewFromContext(c *cli.Context) (analytics.ViewRequest, error) {
	return viewFromFlags(c.String("sort"), c.String("category"), c.String("search"),
		c.String("stock-status"), c.Int("limit"), forecastFromFlags(c))
}

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Print stats, alerts and the top rows of a snapshot",
		ArgsUsage: "REPORT [REPORT...]",
		Flags: append(viewFlags(),
			&cli.StringFlag{Name: "snapshot", Usage: "Snapshot to show (defaults to the first inventory report)"},
		),
		Action: func(c *cli.Context) error {
			svc, res, err := loadFiles(c.Context, c.Args().Slice(), forecastFromFlags(c))
			if err != nil {
				return err
			}
			name := pickSnapshot(res, c.String("snapshot"))

			req, err := viewFromContext(c)
			if err != nil {
				return err
			}
			snapshot, err := svc.Get(c.Context, name)
			if err != nil {
				return err
			}
			page, err := svc.Items(c.Context, name, req)
			if err != nil {
				return err
			}
			alerts, err := svc.Alerts(c.Context, name, "")
			if err != nil {
				return err
			}

			out := c.App.Writer
			if c.Bool("json") {
				return writeJSON(out, map[string]any{
					"snapshot": name,
					"stats":    snapshot.Stats,
					"alerts":   alerts,
					"items":    page,
				})
			}

			writeStats(out, name, snapshot.Stats)
			for _, a := range alerts {
				fmt.Fprintf(out, "[%s] %s: %s\n", a.Level, a.Title, a.Message)
			}
			fmt.Fprintln(out)
			return writeTable(out, page.Items, false)
		},
	}
}

func compareCommand() *cli.Command {
	return &cli.Command{
		Name:      "compare",
		Usage:     "Diff a newer snapshot against an older base",
		ArgsUsage: "REPORT [REPORT...]",
		Flags: append(viewFlags(),
			&cli.StringFlag{Name: "base", Usage: "Older snapshot name", Required: true},
			&cli.StringFlag{Name: "compare", Usage: "Newer snapshot name", Required: true},
		),
		Action: func(c *cli.Context) error {
			svc, _, err := loadFiles(c.Context, c.Args().Slice(), forecastFromFlags(c))
			if err != nil {
				return err
			}
			req, err := viewFromContext(c)
			if err != nil {
				return err
			}

			res, err := svc.Compare(c.Context, c.String("base"), c.String("compare"), req)
			if err != nil {
				return err
			}

			out := c.App.Writer
			if c.Bool("json") {
				return writeJSON(out, res)
			}

			writeStats(out, res.Compare, res.Stats)
			for _, a := range res.Alerts {
				fmt.Fprintf(out, "[%s] %s: %s\n", a.Level, a.Title, a.Message)
			}
			if len(res.Discontinued) > 0 {
				fmt.Fprintf(out, "Discontinued since %s: %v\n", res.Base, res.Discontinued)
			}
			fmt.Fprintln(out)
			return writeTable(out, res.Page.Items, true)
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export a snapshot, or its deltas against another, to CSV or XLSX",
		ArgsUsage: "REPORT [REPORT...]",
		Flags: append(viewFlags(),
			&cli.StringFlag{Name: "snapshot", Usage: "Snapshot to export (defaults to the first inventory report)"},
			&cli.StringFlag{Name: "against", Usage: "Older snapshot to diff against"},
			&cli.StringFlag{Name: "format", Usage: "csv or xlsx", Value: service.FormatCSV},
			&cli.StringFlag{Name: "out", Usage: "Output directory (defaults to APP_EXPORT_DIR)"},
			&cli.StringFlag{Name: "upload-prefix", Usage: "Also upload the file to object storage under this prefix"},
		),
		Action: func(c *cli.Context) error {
			svc, res, err := loadFiles(c.Context, c.Args().Slice(), forecastFromFlags(c))
			if err != nil {
				return err
			}
			req, err := viewFromContext(c)
			if err != nil {
				return err
			}

			export, err := svc.Export(c.Context, service.ExportRequest{
				Name:    pickSnapshot(res, c.String("snapshot")),
				Against: c.String("against"),
				Format:  c.String("format"),
				View:    req,
			})
			if err != nil {
				return err
			}

			dir := c.String("out")
			if dir == "" {
				dir = config.Load().App.ExportDir
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create output dir: %w", err)
			}
			path := filepath.Join(dir, export.Filename)
			if err := os.WriteFile(path, export.Data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			fmt.Fprintf(c.App.Writer, "wrote %s (%d bytes)\n", path, len(export.Data))

			if prefix := c.String("upload-prefix"); prefix != "" {
				store, err := storage.NewMinioClient(config.Load().Storage)
				if err != nil {
					return err
				}

				key := objectKey(prefix, export.Filename)
				if err := store.UploadObject(c.Context, key, export.Data, export.ContentType); err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "uploaded %s\n", key)
			}
			return nil
		},
	}
}

func summaryCommand() *cli.Command {
	return &cli.Command{
		Name:      "summary",
		Usage:     "Print the plain-text data summary used as AI prompt context",
		ArgsUsage: "REPORT [REPORT...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "snapshot", Usage: "Snapshot to summarize (defaults to the first inventory report)"},
		},
		Action: func(c *cli.Context) error {
			svc, res, err := loadFiles(c.Context, c.Args().Slice(), analytics.DefaultForecastSettings())
			if err != nil {
				return err
			}
			summary, err := svc.Summary(c.Context, pickSnapshot(res, c.String("snapshot")))
			if err != nil {
				return err
			}
			fmt.Fprint(c.App.Writer, summary)
			return nil
		},
	}
}

func ingestCommand() *cli.Command {
	return &cli.Command{
		Name:  "ingest",
		Usage: "Pull reports from Drive or object storage and store the snapshots",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "source", Usage: "drive or storage", Required: true},
			&cli.StringFlag{Name: "location", Usage: "Drive folder id or object key prefix"},
		},
		Action: func(c *cli.Context) error {
			cfg := config.Load()
			a, err := app.Build(c.Context, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			location := c.String("location")
			if location == "" {
				switch c.String("source") {
				case "drive":
					location = cfg.Drive.FolderID
				case "storage":
					location = cfg.Storage.Prefix
				}
			}

			res, err := a.Ingester.Ingest(c.Context, c.String("source"), location)
			if err != nil {
				return err
			}

			out := c.App.Writer
			fmt.Fprintf(out, "run %s %s\n", res.Run.ID, res.Run.Status)
			for _, f := range res.Files {
				status := string(f.Kind)
				if f.Skipped {
					status = "skipped: " + f.Reason
				}
				fmt.Fprintf(out, "%s\t%s\trows=%d dropped=%d duplicates=%d\n", f.Name, status, f.Rows, f.Dropped, f.Duplicates)
			}
			for _, s := range res.Snapshots {
				writeStats(out, s.Name, s.Stats)
			}
			return nil
		},
	}
}

func driveDownloadCommand() *cli.Command {
	return &cli.Command{
		Name:  "drive-download",
		Usage: "Stage every report of a Drive folder as local files",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "folder", Usage: "Drive folder id or slash separated path", EnvVars: []string{"DRIVE_FOLDER_ID"}},
			&cli.StringFlag{Name: "dir", Usage: "Local directory for the files", EnvVars: []string{"DRIVE_DOWNLOAD_DIR"}, Value: "./data/drive"},
		},
		Action: func(c *cli.Context) error {
			cfg := config.Load()
			if cfg.Drive.CredentialsFile == "" {
				return fmt.Errorf("GOOGLE_APPLICATION_CREDENTIALS is required")
			}
			downloader, err := app.NewDriveDownloader(c.Context, cfg.Drive)
			if err != nil {
				return err
			}

			paths, err := downloader.DownloadFolder(c.Context, drive.DownloadOptions{
				FolderID:    c.String("folder"),
				DownloadDir: c.String("dir"),
			})
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(c.App.Writer, p)
			}
			return nil
		},
	}
}

func runsCommand() *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "List recorded ingest runs, newest first (needs the database)",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Value: pipeline.DefaultRunLimit, Usage: "Number of runs to show"},
			&cli.BoolFlag{Name: "json", Usage: "Print JSON instead of a table"},
		},
		Action: func(c *cli.Context) error {
			cfg := config.Load()
			if !cfg.Database.Enabled {
				return fmt.Errorf("run history is kept in the database; set DB_ENABLED=true")
			}
			a, err := app.Build(c.Context, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			runs, err := a.Snapshots.Runs(c.Context, c.Int("limit"))
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return writeJSON(c.App.Writer, runs)
			}
			return writeRuns(c.App.Writer, runs)
		},
	}
}

func writeRuns(w io.Writer, runs []pipeline.Run) error {
	if len(runs) == 0 {
		fmt.Fprintln(w, "no ingest runs recorded")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tORIGIN\tSTATUS\tFILES\tROWS\tSNAPSHOTS\tSTARTED\tERROR")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%d\t%d\t%s\t%s\n",
			r.ID, r.Origin, r.Status, r.ProcessedFiles, r.TotalFiles, r.TotalRows, r.Snapshots,
			r.StartedAt.Format(time.RFC3339), r.ErrorMessage)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeStats(w io.Writer, name string, s domain.Stats) {
	fmt.Fprintf(w, "%s: %d SKUs, %.0f available, %.0f shipped (30d), sell-through %d%%, avg age %d days, %d at risk\n",
		name, s.TotalProducts, s.TotalAvailable, s.TotalShipped, s.SellThroughRate, s.AvgDaysInventory, s.AtRiskSKUs)
}

func writeTable(w io.Writer, records []domain.ProductRecord, deltas bool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if deltas {
		fmt.Fprintln(tw, "SKU\tAVAILABLE\tΔ INV\tSHIPPED\tTREND %\tRISK\tΔ RISK\tRESTOCK")
	} else {
		fmt.Fprintln(tw, "SKU\tAVAILABLE\tSHIPPED\tSTR %\tAGE\tRISK\tACTION\tRESTOCK")
	}

	for i := range records {
		r := &records[i]
		restock := "-"
		if r.RestockRecommendation != nil {
			restock = fmt.Sprint(*r.RestockRecommendation)
		}
		if deltas && r.Comparison != nil {
			trend := fmt.Sprintf("%.1f", float64(r.VelocityTrend))
			if r.VelocityTrend.IsNewSeller() {
				trend = "new"
			}
			fmt.Fprintf(tw, "%s\t%.0f\t%+.0f\t%.0f\t%s\t%d\t%+d\t%s\n",
				r.SKU, r.Available, r.InventoryChange, r.ShippedT30, trend, r.RiskScore, r.RiskScoreChange, restock)
			continue
		}
		fmt.Fprintf(tw, "%s\t%.0f\t%.0f\t%d\t%d\t%d\t%s\t%s\n",
			r.SKU, r.Available, r.ShippedT30, r.SellThroughRate, r.TotalInvAgeDays, r.RiskScore, r.RecommendedAction, restock)
	}
	return tw.Flush()
}
