package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"spc/internal/models"
	"spc/internal/schema"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
)

type validateOptions struct {
	schema    string
	normalize bool
	noColor   bool
}

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	ruleColor = color.New(color.FgYellow)
)

func newValidateCmd() *cobra.Command {
	opts := &validateOptions{}
	cmd := &cobra.Command{
		Use:   "validate [file|-]",
		Short: "Validate a document against schema version a or b.",
		Long: `Validate a SpcQueryResponse document read from a file or stdin.

Every violation is listed with its path and rule. The command exits non-zero
when the document is not JSON or does not satisfy the schema.

Examples:
  spc validate --schema b response.json
  curl -s $METRICS_URL | spc validate --schema a --normalize -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.noColor {
				color.NoColor = true
			}
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return runValidate(in, cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.schema, "schema", "s", "a", "schema version: a or b")
	cmd.Flags().BoolVarP(&opts.normalize, "normalize", "n", false, "print the canonical document instead of a summary")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	return cmd
}

func runValidate(in io.Reader, out io.Writer, opts *validateOptions) error {
	version, err := models.ParseSchemaVersion(opts.schema)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	resp, err := schema.Decode(data, version)
	if err != nil {
		var violations schema.Violations
		if !errors.As(err, &violations) {
			return err
		}
		if err := printViolations(out, version, violations); err != nil {
			return err
		}
		return errValidationFailed
	}

	if opts.normalize {
		canonical, err := schema.Encode(resp)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(canonical))
		return err
	}
	return printSummary(out, resp)
}

func printSummary(out io.Writer, resp *models.SpcQueryResponse) error {
	if resp.IsError() {
		_, err := fmt.Fprintf(out, "%s schema %s document carries a top-level error: %s\n",
			okColor.Sprint("valid"), resp.Version, resp.Error.Message)
		return err
	}
	if _, err := fmt.Fprintf(out, "%s schema %s document: %d results, %d partial failures\n",
		okColor.Sprint("valid"), resp.Version, len(resp.Results), resp.PartialFailures()); err != nil {
		return err
	}
	return printEpisodes(out, resp)
}

// printEpisodes lists every episode with its effective histogram resolution.
// Nothing is printed when no result carries episodes.
func printEpisodes(out io.Writer, resp *models.SpcQueryResponse) error {
	var data [][]string
	for _, key := range sortedKeys(resp.Results) {
		m := resp.Results[key].Metrics
		if m == nil {
			continue
		}
		episodes, _ := m.Episodes.Get()
		for _, guid := range sortedKeys(episodes) {
			ep := episodes[guid]
			hist, _ := ep.ListenerHistogram.Get()
			listeners := "-"
			if n, ok := ep.TotalListeners.Get(); ok {
				listeners = strconv.FormatInt(n, 10)
			}
			data = append(data, []string{
				key,
				guid,
				ep.ResolutionFor(resp.Version).String(),
				strconv.Itoa(len(hist)),
				listeners,
			})
		}
	}
	if len(data) == 0 {
		return nil
	}

	table := tablewriter.NewWriter(out)
	table.Header([]string{"Result", "Episode", "Resolution", "Points", "Listeners"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// printViolations renders one table row per violation, in parse order.
func printViolations(out io.Writer, version models.SchemaVersion, violations schema.Violations) error {
	if _, err := fmt.Fprintf(out, "%s schema %s document: %d violations\n",
		failColor.Sprint("invalid"), version, len(violations)); err != nil {
		return err
	}

	table := tablewriter.NewWriter(out)
	table.Header([]string{"#", "Path", "Rule", "Message"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	var data [][]string
	for i, v := range violations {
		path := v.Path
		if path == "" {
			path = "(root)"
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			path,
			ruleColor.Sprint(string(v.Rule)),
			v.Message,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
