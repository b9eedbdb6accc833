package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cjsmocjsmo/dupchecker/internal/dedupe"
	"github.com/cjsmocjsmo/dupchecker/internal/fingerprint"
	"github.com/cjsmocjsmo/dupchecker/internal/report"
	"github.com/cjsmocjsmo/dupchecker/internal/scanner"
)

var (
	scanPath   string
	strategy   string
	shallow    bool
	deleteDup  bool
	dryRun     bool
	reportPath string
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a folder for duplicate images",
	Long: `Scan a folder and find duplicate images by comparing content fingerprints.

Without flags the command runs interactively: it asks for the folder to
scan and, when duplicates turn up, whether to delete them. Deletion keeps
the first copy of each group and removes the rest.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if deleteDup && dryRun {
			return fmt.Errorf("--delete and --dry-run cannot be used together")
		}
		opts := scanOptions{
			path:       scanPath,
			strategy:   strategy,
			shallow:    shallow,
			delete:     deleteDup,
			dryRun:     dryRun,
			reportPath: reportPath,
		}
		return runScan(afero.NewOsFs(), logger, opts, os.Stdin, os.Stdout, os.Stderr)
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVarP(&scanPath, "path", "p", "", "Root path to scan (prompted for when omitted)")
	scanCmd.Flags().StringVar(&strategy, "strategy", fingerprint.StrategyBytes, "Fingerprint strategy: bytes (identical files) or pixels (identical image content)")
	scanCmd.Flags().BoolVar(&shallow, "shallow", false, "Scan only the immediate children of the root folder")
	scanCmd.Flags().BoolVarP(&deleteDup, "delete", "d", false, "Delete duplicate images without asking (keep one copy)")
	scanCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show which duplicates would be deleted without removing them")
	scanCmd.Flags().StringVar(&reportPath, "report", "", "Path to save a JSON report (optional)")
}

// scanOptions carries the scan command flags so the run can be driven from
// tests with injected IO.
type scanOptions struct {
	path       string
	strategy   string
	shallow    bool
	delete     bool
	dryRun     bool
	reportPath string
}

func runScan(fs afero.Fs, log *zap.Logger, opts scanOptions, stdin io.Reader, stdout, stderr io.Writer) error {
	// Reject a bad strategy before asking the user for anything.
	fpr, err := fingerprint.New(opts.strategy, fs)
	if err != nil {
		return err
	}

	in := bufio.NewReader(stdin)

	root := strings.TrimSpace(opts.path)
	if root == "" {
		fmt.Fprint(stdout, "Enter the path to the folder containing images: ")
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("reading folder path: %w", err)
		}
		root = strings.TrimSpace(line)
	}

	candidates, err := scanCandidates(scanner.New(fs, log), root, opts.shallow)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		fmt.Fprintf(stdout, "No images found in folder: %s\n", root)
		return nil
	}
	fmt.Fprintf(stdout, "Found %d matching files.\n", len(candidates))

	index, skipped := fingerprintAll(fpr, candidates, log, stdout)
	groups := index.Groups()

	var outcomes []dedupe.Outcome
	if len(groups) == 0 {
		fmt.Fprintln(stdout, "No duplicate images found.")
	} else {
		printGroups(stdout, groups)
		switch {
		case opts.dryRun:
			printDryRun(stdout, groups)
		case opts.delete || confirmDeletion(in, stdout):
			outcomes = dedupe.NewPruner(fs, log).Prune(groups)
			printOutcomes(stdout, stderr, outcomes)
		default:
			fmt.Fprintln(stdout, "Duplicate images not deleted.")
		}
	}

	printSkipped(stdout, skipped)

	rep := buildReport(fs, opts, root, len(candidates), groups, skipped, outcomes)
	if opts.reportPath != "" {
		if err := report.Save(fs, opts.reportPath, rep); err != nil {
			fmt.Fprintln(stderr, "Failed to save report:", err)
		} else {
			fmt.Fprintln(stdout, "Report saved to:", opts.reportPath)
		}
	}
	if len(groups) > 0 {
		printSummary(stdout, rep)
	}
	return nil
}

// scanCandidates picks the traversal mode.
func scanCandidates(sc *scanner.Scanner, root string, shallow bool) ([]string, error) {
	if shallow {
		return sc.ScanShallow(root)
	}
	return sc.Scan(root)
}

// fingerprintAll hashes every candidate sequentially. Files that cannot be
// read or decoded are skipped and reported at the end of the run instead
// of aborting the scan.
func fingerprintAll(fpr fingerprint.Fingerprinter, candidates []string, log *zap.Logger, stdout io.Writer) (*dedupe.Index, []report.Skipped) {
	bar := progressbar.NewOptions(len(candidates),
		progressbar.OptionSetWriter(stdout),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(15),
		progressbar.OptionSetDescription("Fingerprinting images..."),
		progressbar.OptionShowElapsedTimeOnFinish(),
	)

	index := dedupe.NewIndex()
	var skipped []report.Skipped
	for _, path := range candidates {
		fp, err := fpr.Fingerprint(path)
		bar.Add(1)
		if err != nil {
			log.Warn("skipping file", zap.String("path", path), zap.Error(err))
			skipped = append(skipped, report.Skipped{Path: path, Reason: err.Error()})
			continue
		}
		index.Add(fp, path)
	}
	fmt.Fprintln(stdout)
	return index, skipped
}

func printGroups(stdout io.Writer, groups []dedupe.Group) {
	fmt.Fprintln(stdout, "Duplicate images found:")
	for _, g := range groups {
		fmt.Fprintf(stdout, "Hash: %s\n", g.Fingerprint)
		for _, p := range g.Paths {
			fmt.Fprintf(stdout, "  - %s\n", p)
		}
	}
}

func printDryRun(stdout io.Writer, groups []dedupe.Group) {
	for _, g := range groups {
		for _, p := range g.Paths[1:] {
			fmt.Fprintln(stdout, "[Dry-run] Would delete:", p)
		}
	}
}

// confirmDeletion asks the yes/no question and reports whether the answer
// was yes. Anything else, including EOF, declines.
func confirmDeletion(in *bufio.Reader, stdout io.Writer) bool {
	fmt.Fprint(stdout, "Do you want to delete the duplicate images? (yes/no): ")
	line, _ := in.ReadString('\n')
	return strings.ToLower(strings.TrimSpace(line)) == "yes"
}

func printOutcomes(stdout, stderr io.Writer, outcomes []dedupe.Outcome) {
	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			fmt.Fprintln(stderr, "Error", o.Err)
			continue
		}
		fmt.Fprintln(stdout, "Deleted:", o.Path)
	}
	fmt.Fprintln(stdout, "Duplicate images deleted.")
	if failed > 0 {
		fmt.Fprintf(stdout, "Failed to delete %d file(s).\n", failed)
	}
}

func printSummary(stdout io.Writer, rep report.Report) {
	deleted, kept := 0, 0
	var largest report.File
	for _, g := range rep.DuplicateGroups {
		for _, f := range g.Files {
			if f.Size > largest.Size {
				largest = f
			}
			if f.Action == report.ActionDeleted {
				deleted++
			} else {
				kept++
			}
		}
	}

	average := int64(0)
	if rep.TotalDupFiles > 0 {
		average = rep.PotentialReclaim / int64(rep.TotalDupFiles)
	}

	fmt.Fprintln(stdout, "\n===== Summary =====")
	fmt.Fprintf(stdout, "Duplicate groups: %d\n", len(rep.DuplicateGroups))
	fmt.Fprintf(stdout, "Total duplicate files: %d\n", rep.TotalDupFiles)
	fmt.Fprintf(stdout, "Files deleted: %d\n", deleted)
	fmt.Fprintf(stdout, "Files kept: %d\n", kept)
	fmt.Fprintf(stdout, "Potential space to reclaim: %s\n", formatSize(rep.PotentialReclaim))
	fmt.Fprintf(stdout, "Actual reclaimed space: %s\n", formatSize(rep.ActualDeleted))
	fmt.Fprintf(stdout, "Average size per duplicate file: %s\n", formatSize(average))
	if largest.Path != "" {
		fmt.Fprintf(stdout, "Largest duplicate file: %s (%s)\n", largest.Path, formatSize(largest.Size))
	}
	fmt.Fprintln(stdout, "===================")
}

func printSkipped(stdout io.Writer, skipped []report.Skipped) {
	if len(skipped) == 0 {
		return
	}
	fmt.Fprintf(stdout, "Skipped %d unreadable file(s):\n", len(skipped))
	for _, s := range skipped {
		fmt.Fprintf(stdout, "  - %s (%s)\n", s.Path, s.Reason)
	}
}

// buildReport assembles the JSON report for the run. Victim sizes come
// from the deletion outcomes when files were removed; everything still on
// disk is stated directly.
func buildReport(fs afero.Fs, opts scanOptions, root string, candidateCount int, groups []dedupe.Group, skipped []report.Skipped, outcomes []dedupe.Outcome) report.Report {
	byPath := make(map[string]dedupe.Outcome, len(outcomes))
	for _, o := range outcomes {
		byPath[o.Path] = o
	}

	rep := report.Report{
		ScannedAt:       time.Now(),
		RootPath:        root,
		Strategy:        opts.strategy,
		Recursive:       !opts.shallow,
		TotalCandidates: candidateCount,
		SkippedFiles:    skipped,
	}
	for _, g := range groups {
		rg := report.Group{Fingerprint: g.Fingerprint}
		for i, p := range g.Paths {
			f := report.File{Path: p, Action: report.ActionKept}
			if i > 0 {
				rep.TotalDupFiles++
				if opts.dryRun {
					f.Action = report.ActionDryRun
				} else if o, ok := byPath[p]; ok {
					f.Size = o.Size
					if o.Err != nil {
						f.Action = report.ActionFailed
					} else {
						f.Action = report.ActionDeleted
						rep.ActualDeleted += o.Size
					}
				}
			}
			if f.Size == 0 {
				if info, err := fs.Stat(p); err == nil {
					f.Size = info.Size()
				}
			}
			if i > 0 {
				rep.PotentialReclaim += f.Size
			}
			rg.Files = append(rg.Files, f)
		}
		rep.DuplicateGroups = append(rep.DuplicateGroups, rg)
	}
	return rep
}

func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
	)
	switch {
	case bytes > GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(GB))
	case bytes > MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(MB))
	case bytes > KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
