// Package cli implements cardctl, the maintenance command line for the card
// collection: backups, restore and category management.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/vytor/studycards/internal/services"
)

// Runner executes maintenance commands and prints their results.
type Runner struct {
	Maintenance services.MaintenanceService
	Out         io.Writer
}

var (
	bold = color.New(color.Bold)
	ok   = color.New(color.FgGreen)
	warn = color.New(color.FgYellow)
)

func (r *Runner) out() io.Writer {
	if r.Out == nil {
		return color.Output
	}
	return r.Out
}

func (r *Runner) Backup(ctx context.Context) error {
	name, err := r.Maintenance.BackupNow(ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(r.out(), "%s %s\n", ok.Sprint("backup written:"), name)
	return nil
}

func (r *Runner) Backups(ctx context.Context) error {
	names, err := r.Maintenance.ListBackups(ctx)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		_, _ = fmt.Fprintln(r.out(), "no backups")
		return nil
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("#"), bold.Sprint("NAME"))
	for i, name := range names {
		tbl.AddRow(i+1, name)
	}
	_, _ = fmt.Fprintln(r.out(), tbl)
	return nil
}

func (r *Runner) Restore(ctx context.Context, name string) error {
	report, err := r.Maintenance.Restore(ctx, name)
	if err != nil {
		return err
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("restored from"), report.Backup)
	tbl.AddRow(bold.Sprint("safety backup"), orNone(report.SafetyBackup))
	tbl.AddRow(bold.Sprint("cards deleted"), report.Deleted)
	tbl.AddRow(bold.Sprint("cards restored"), report.Restored)
	tbl.AddRow(bold.Sprint("records skipped"), report.Skipped)
	_, _ = fmt.Fprintln(r.out(), tbl)
	r.printWarnings(report.Warnings)
	return nil
}

func (r *Runner) Categories(ctx context.Context) error {
	counts, err := r.Maintenance.Categories(ctx)
	if err != nil {
		return err
	}
	if len(counts) == 0 {
		_, _ = fmt.Fprintln(r.out(), "no categories")
		return nil
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.RightAlign(1)
	tbl.AddRow(bold.Sprint("CATEGORY"), bold.Sprint("CARDS"))
	for _, c := range counts {
		tbl.AddRow(c.Category, c.Count)
	}
	_, _ = fmt.Fprintln(r.out(), tbl)
	return nil
}

func (r *Runner) RenameCategory(ctx context.Context, from, to string) error {
	report, err := r.Maintenance.RenameCategory(ctx, from, to)
	if err != nil {
		return err
	}

	verb := "renamed"
	if report.Merged {
		verb = "merged"
	}
	_, _ = fmt.Fprintf(r.out(), "%s %q into %q: %d cards moved\n", ok.Sprint(verb), report.From, report.To, report.Moved)
	r.printWarnings(report.Warnings)
	return nil
}

func (r *Runner) DeleteCategory(ctx context.Context, name string, confirm services.Confirmation) error {
	report, err := r.Maintenance.DeleteCategory(ctx, name, confirm)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(r.out(), "%s %q: %d cards removed (safety backup: %s)\n",
		ok.Sprint("deleted"), report.Category, report.Deleted, orNone(report.SafetyBackup))
	r.printWarnings(report.Warnings)
	return nil
}

func (r *Runner) printWarnings(warnings []string) {
	for _, w := range warnings {
		_, _ = fmt.Fprintf(r.out(), "%s %s\n", warn.Sprint("warning:"), w)
	}
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
