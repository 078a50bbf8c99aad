package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/moocn/pkg/chart"
	"github.com/matzehuels/moocn/pkg/config"
	"github.com/matzehuels/moocn/pkg/dataset"
	"github.com/matzehuels/moocn/pkg/layout"
	"github.com/matzehuels/moocn/pkg/pipeline"
)

// layoutDoc is the JSON form of a computed layout, in data units.
type layoutDoc struct {
	Mode     string       `json:"mode"`
	Domain   layout.Span  `json:"domain"`
	Values   layout.Span  `json:"values"`
	Clusters []layoutSpan `json:"clusters"`
	Bars     []layoutBar  `json:"bars"`
}

type layoutSpan struct {
	Category int     `json:"category"`
	Label    string  `json:"label"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}

type layoutBar struct {
	Series   int     `json:"series"`
	Name     string  `json:"name"`
	Category int     `json:"category"`
	Label    string  `json:"label"`
	Left     float64 `json:"left"`
	Width    float64 `json:"width"`
	Base     float64 `json:"base"`
	Top      float64 `json:"top"`
	Value    float64 `json:"value"`
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags   chartFlags
		asJSON  bool
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "layout [dataset]",
		Short: "Print the bar geometry of a dataset",
		Long: `Compute the bar layout of a dataset and print it in data units.

Each bar is listed with its left edge and width on the x axis and its
base and top on the value axis. Stacked bars start where the previous
series ended. Use --json for machine-readable output.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDataset,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, opts, err := c.chartSetup(cmd, &flags, args[0])
			if err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), cfg, opts, asJSON, output, noCache)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write JSON to a file (implies --json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	flags.register(cmd)

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, cfg config.Config, opts pipeline.Options, asJSON bool, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, cfg.Cache, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	d, err := runner.Load(ctx, opts)
	if err != nil {
		return err
	}
	ch, err := pipeline.NewChart(d, opts)
	if err != nil {
		return err
	}
	doc := buildLayoutDoc(ch)

	if asJSON || output != "" {
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		data = append(data, '\n')
		if err := writeOutput(data, output); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		if output != "" {
			printStatus(statusOK, "Layout written")
			printArtifact("json", output)
		}
		return nil
	}

	printLayoutTable(stdout, doc)
	fmt.Fprintln(stdout)
	printKeyValue("Mode", doc.Mode)
	printKeyValue("Domain", formatSpan(doc.Domain.Min, doc.Domain.Max))
	printKeyValue("Values", formatSpan(doc.Values.Min, doc.Values.Max))
	return nil
}

// buildLayoutDoc describes the chart's current layout.
func buildLayoutDoc(c *chart.Chart) layoutDoc {
	l, d := c.Layout(), c.Data()
	doc := layoutDoc{
		Mode:     l.Mode.String(),
		Domain:   l.Domain,
		Values:   l.Values,
		Clusters: make([]layoutSpan, len(l.Clusters)),
		Bars:     []layoutBar{},
	}
	for i, s := range l.Clusters {
		doc.Clusters[i] = layoutSpan{Category: i, Label: d.Label(i), Min: s.Min, Max: s.Max}
	}
	for _, b := range l.Bars() {
		doc.Bars = append(doc.Bars, layoutBar{
			Series:   b.Series,
			Name:     seriesLabel(d, b.Series),
			Category: b.Category,
			Label:    d.Label(b.Category),
			Left:     b.Left,
			Width:    b.Width,
			Base:     b.Base,
			Top:      b.Top,
			Value:    b.Value,
		})
	}
	return doc
}

func seriesLabel(d *dataset.Dataset, idx int) string {
	if s, ok := d.Lookup(idx); ok && s.Name != "" {
		return s.Name
	}
	return "series " + strconv.Itoa(idx)
}

func printLayoutTable(w io.Writer, doc layoutDoc) {
	rows := make([][]string, 0, len(doc.Bars))
	for _, b := range doc.Bars {
		rows = append(rows, []string{
			b.Label,
			b.Name,
			fmtNum(b.Left),
			fmtNum(b.Width),
			fmtNum(b.Base),
			fmtNum(b.Top),
			chart.FormatValue(b.Value),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorLabel).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorMuted)).
		Headers("Category", "Series", "Left", "Width", "Base", "Top", "Value").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			style := lipgloss.NewStyle().Padding(0, 1)
			if col >= 2 {
				return style.Foreground(colorAccent).Align(lipgloss.Right)
			}
			return style.Foreground(colorText)
		})
	fmt.Fprintln(w, t.Render())
}

func fmtNum(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
