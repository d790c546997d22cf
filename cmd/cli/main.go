package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"statkit/adapters/excel"
	"statkit/adapters/memory"
	"statkit/internal/analysis"
	"statkit/internal/batch"
	"statkit/internal/config"
	"statkit/internal/container"
	"statkit/internal/fourier"
	"statkit/internal/goalseek"
	"statkit/ports"
)

var (
	cfgFile string
	cfg     *config.Config
	app     *container.Container
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "statkit",
		Short: "Spreadsheet analysis tools: statistics, FFT and goal seek over xlsx and CSV files",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				return err
			}
			app, err = container.New(cfg)
			return err
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML configuration file")

	rootCmd.AddCommand(
		newToolsCmd(),
		newRunCmd(),
		newBatchCmd(),
		newGoalSeekCmd(),
		newFFTCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the analysis tools",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range analysis.Tools() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}

type outputFlags struct {
	input  string
	output string
	sheet  string
	origin string
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.input, "input", "i", "", "input xlsx or CSV file")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output xlsx file (default: the input, or the CSV name with .xlsx)")
	cmd.Flags().StringVar(&o.sheet, "sheet", "", "output sheet (default from configuration)")
	cmd.Flags().StringVar(&o.origin, "origin", "A1", "top-left output cell")
	_ = cmd.MarkFlagRequired("input")
}

func newRunCmd() *cobra.Command {
	var (
		out     outputFlags
		req     analysis.Request
		options string
	)

	cmd := &cobra.Command{
		Use:   "run <tool> <range>...",
		Short: "Run one analysis tool and write its table into a workbook",
		Long: `Run one analysis tool over ranges of the input and write the result table
into the output workbook.

Example: statkit run descriptive A1:C20 --input data.xlsx --labels --formulas`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Tool, req.Ranges = args[0], args[1:]
			if options != "" {
				if err := json.Unmarshal([]byte(options), &req.Options); err != nil {
					return fmt.Errorf("invalid --options: %w", err)
				}
			}
			return runTool(cmd, out, req)
		},
	}

	out.register(cmd)
	cmd.Flags().StringVar(&req.GroupBy, "group-by", "columns", "slice ranges by columns|rows|area|bins")
	cmd.Flags().BoolVar(&req.Labels, "labels", false, "first row or column holds labels")
	cmd.Flags().BoolVar(&req.Formulas, "formulas", false, "write live formulas where the tool supports them")
	cmd.Flags().StringVar(&options, "options", "", `tool options as JSON, e.g. '{"alpha":0.01}'`)
	return cmd
}

func runTool(cmd *cobra.Command, out outputFlags, req analysis.Request) error {
	src, err := excel.Open(out.input, excel.DefaultConfig())
	if err != nil {
		return err
	}
	wb, err := target(src)
	if err != nil {
		return err
	}
	defer wb.Close()

	req.Sheet = src.DefaultSheet()
	tool, err := analysis.Build(req.WithDefaults(cfg.Defaults()), src)
	if err != nil {
		return err
	}
	sink, err := excel.NewSink(wb.File, out.outputSheet(), out.origin, excel.DefaultConfig())
	if err != nil {
		return err
	}
	rep, err := app.Engine.Run(cmd.Context(), tool, sink)
	if err != nil {
		return err
	}

	path := out.outputPath()
	if err := wb.Save(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %dx%d cells at %s!%s in %s (run %s)\n",
		rep.Descriptor, rep.Size.Cols, rep.Size.Rows, out.outputSheet(), out.origin, path, rep.RunID)
	for _, w := range rep.Warnings {
		fmt.Fprintln(cmd.OutOrStdout(), "warning:", w)
	}
	return nil
}

func (o outputFlags) outputSheet() string {
	if o.sheet != "" {
		return o.sheet
	}
	return cfg.Analysis.OutputSheet
}

func (o outputFlags) outputPath() string {
	if o.output != "" {
		return o.output
	}
	if strings.EqualFold(filepath.Ext(o.input), ".csv") {
		return strings.TrimSuffix(o.input, filepath.Ext(o.input)) + ".xlsx"
	}
	return o.input
}

// target is the workbook output is written to. CSV input is copied into
// a new workbook so formulas can refer to it.
func target(src excel.Source) (*excel.Workbook, error) {
	switch s := src.(type) {
	case *excel.Workbook:
		return s, nil
	case *memory.Workbook:
		return excel.Import(s)
	}
	return nil, fmt.Errorf("unsupported source %T", src)
}

func newBatchCmd() *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "batch <job-file>",
		Short: "Run every request of a YAML job file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, err := batch.Load(args[0])
			if err != nil {
				return err
			}
			return runBatch(cmd, jobs, concurrency)
		},
	}
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "jobs run at once (default from configuration)")
	return cmd
}

func runBatch(cmd *cobra.Command, jobs *batch.File, concurrency int) error {
	out := outputFlags{input: jobs.Input, output: jobs.Output}
	src, err := excel.Open(out.input, excel.DefaultConfig())
	if err != nil {
		return err
	}
	wb, err := target(src)
	if err != nil {
		return err
	}
	defer wb.Close()

	list := make([]batch.Job, len(jobs.Jobs))
	for i, j := range jobs.Jobs {
		if j.Sheet == "" {
			j.Sheet = src.DefaultSheet()
		}
		if j.OutputSheet == "" {
			j.OutputSheet = j.Name
		}
		list[i] = j
	}

	sinks := func(job batch.Job) (ports.OutputSink, error) {
		return excel.NewSink(wb.File, job.OutputSheet, job.Origin, excel.DefaultConfig())
	}
	results := app.Runner(concurrency).Run(cmd.Context(), src, list, sinks)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "JOB\tSTATUS\tDESCRIPTOR")
	for _, res := range results {
		status, desc := "ok", ""
		if res.Report != nil {
			desc = res.Report.Descriptor
		}
		if res.Err != nil {
			status = res.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", res.Job, status, desc)
	}
	_ = w.Flush()

	if err := wb.Save(out.outputPath()); err != nil {
		return err
	}
	if failed := batch.Failed(results); len(failed) > 0 {
		return fmt.Errorf("%d of %d jobs failed", len(failed), len(results))
	}
	return nil
}

func newGoalSeekCmd() *cobra.Command {
	var (
		out outputFlags
		req goalseek.CellRequest
	)

	cmd := &cobra.Command{
		Use:   "goalseek",
		Short: "Find the changing-cell value that drives a formula cell to a goal",
		Long: `Adjust the changing cell until the target formula cell equals the goal, then
save the workbook with the root in place.

Example: statkit goalseek -i model.xlsx --target B7 --goal 0 --changing B2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGoalSeek(cmd.Context(), cmd, out, req)
		},
	}

	out.register(cmd)
	cmd.Flags().StringVar(&req.Target, "target", "", "formula cell to drive")
	cmd.Flags().Float64Var(&req.Goal, "goal", 0, "value the target should reach")
	cmd.Flags().StringVar(&req.Changing, "changing", "", "input cell to adjust")
	cmd.Flags().Float64Var(&req.XMin, "min", 0, "lower bound of the search (default from configuration)")
	cmd.Flags().Float64Var(&req.XMax, "max", 0, "upper bound of the search (default from configuration)")
	_ = cmd.MarkFlagRequired("target")
	_ = cmd.MarkFlagRequired("changing")
	return cmd
}

func runGoalSeek(ctx context.Context, cmd *cobra.Command, out outputFlags, req goalseek.CellRequest) error {
	wb, err := excel.OpenWorkbook(out.input)
	if err != nil {
		return err
	}
	defer wb.Close()

	if req.XMin == 0 && req.XMax == 0 {
		req.XMin, req.XMax = cfg.GoalSeek.XMin, cfg.GoalSeek.XMax
	}
	req.Precision = cfg.GoalSeek.Precision
	req.Seed = cfg.GoalSeek.Seed

	sheet := out.sheet
	if sheet == "" {
		sheet = wb.DefaultSheet()
	}
	res, err := goalseek.SeekCell(ctx, excel.NewOracle(wb.File, sheet), req)
	if err != nil {
		return err
	}
	if err := wb.Save(out.outputPath()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s = %s gives %s = %s (%s, %d evaluations)\n",
		req.Changing, strconv.FormatFloat(res.Root, 'g', -1, 64),
		req.Target, strconv.FormatFloat(res.Value, 'g', -1, 64),
		res.Strategy, res.Evaluations)
	return nil
}

func newFFTCmd() *cobra.Command {
	var inverse bool

	cmd := &cobra.Command{
		Use:   "fft <value>...",
		Short: "Fourier transform of a real sequence",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			samples := make([]float64, len(args))
			for i, a := range args {
				v, err := strconv.ParseFloat(a, 64)
				if err != nil {
					return fmt.Errorf("invalid sample %q: %w", a, err)
				}
				samples[i] = v
			}
			out, err := fourier.Transform(samples, inverse)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "K\tREAL\tIMAGINARY")
			for k, c := range out {
				fmt.Fprintf(w, "%d\t%g\t%g\n", k, real(c), imag(c))
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&inverse, "inverse", false, "compute the inverse transform")
	return cmd
}
