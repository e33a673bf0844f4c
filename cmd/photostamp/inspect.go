package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/quidome/photostamp/pkg/datetaken"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#54baff"))
	labelStyle = lipgloss.NewStyle().Width(24).Foreground(lipgloss.Color("#626262"))
	valueStyle = lipgloss.NewStyle().Bold(true)
	emptyStyle = lipgloss.NewStyle().Faint(true)
)

type inspectResult struct {
	datetaken.Report
	Date string `json:"date,omitempty"`
}

func newInspectCmd(opts *options) *cobra.Command {
	var asJSON bool

	inspectCmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show every timestamp found for an image",
		Long:  "Inspect prints the EXIF dates, the file modification time and the date that would be stamped on the image.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			path := args[0]

			l, closer, err := newLogger(cmd, opts)
			if err != nil {
				return err
			}
			defer closer.Close()

			resolver := newResolver(opts, l)
			report, err := resolver.ResolveFull(path)
			if err != nil {
				return err
			}

			date, err := resolver.ResolveDate(path)
			if err != nil && !errors.Is(err, datetaken.ErrNoDate) {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(inspectResult{Report: report, Date: date})
			}

			cmd.Print(renderReport(path, report, date))
			return nil
		},
	}

	inspectCmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")

	return inspectCmd
}

func renderReport(path string, report datetaken.Report, date string) string {
	rows := []struct {
		label string
		value string
	}{
		{"DateTimeOriginal", report.DateTimeOriginal},
		{"DateTimeDigitized", report.DateTimeDigitized},
		{"DateTime", report.DateTime},
		{"File modification time", report.FileModificationTime},
		{"EXIF found", strconv.FormatBool(report.ExifFound)},
		{"Source", string(report.Source)},
		{"Date taken", date},
	}

	var b strings.Builder
	fmt.Fprintln(&b, titleStyle.Render(path))
	for _, row := range rows {
		value := valueStyle.Render(row.value)
		if row.value == "" {
			value = emptyStyle.Render("-")
		}
		fmt.Fprintln(&b, lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(row.label), value))
	}
	return b.String()
}
