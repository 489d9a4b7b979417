package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cellgen/pkg/errors"
	"github.com/matzehuels/cellgen/pkg/tech"
)

// techCommand creates the technology inspection command.
func (c *CLI) techCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tech",
		Short: "List, inspect and export technologies",
	}

	cmd.AddCommand(c.techListCommand())
	cmd.AddCommand(c.techShowCommand())
	cmd.AddCommand(c.techExportCommand())

	return cmd
}

func (c *CLI) techListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the built-in technologies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := tech.Builtin()
			var rows [][]string
			for _, name := range reg.Names() {
				t, err := reg.Lookup(name)
				if err != nil {
					return err
				}
				rows = append(rows, []string{name, strconv.Itoa(t.NumMetals()), t.Description()})
			}
			fmt.Fprintln(cmd.OutOrStdout(), newTable([]string{"Name", "Metals", "Description"}, rows))
			return nil
		},
	}
}

func (c *CLI) techShowCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "show [name]",
		Short: "Show the layers and vias of a technology",
		Args:  cobra.RangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := resolveTech(args, file)
			if err != nil {
				return err
			}
			writeTech(cmd.OutOrStdout(), t)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "TOML technology file instead of a built-in name")
	return cmd
}

func (c *CLI) techExportCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export [name]",
		Short: "Write a built-in technology as TOML",
		Long: `Write a built-in technology as TOML.

The output is a starting point for a custom process: edit the rules and pass
the file to 'cellgen route --tech-file'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ok := tech.Builtin().Process(args[0])
			if !ok {
				return errors.New(errors.ErrCodeTechnologyNotFound, "technology %q not found", args[0])
			}
			if output == "" {
				return tech.Encode(cmd.OutOrStdout(), p)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			if err := tech.Encode(f, p); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			printFile(output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

// resolveTech returns the technology named by args or loaded from file.
func resolveTech(args []string, file string) (*tech.Technology, error) {
	switch {
	case file != "" && len(args) > 0:
		return nil, errors.New(errors.ErrCodeInvalidArgument, "give a technology name or --file, not both")
	case file != "":
		return tech.Load(file)
	case len(args) == 1:
		return tech.Builtin().Lookup(args[0])
	}
	return nil, errors.New(errors.ErrCodeInvalidArgument, "technology name or --file required")
}

// writeTech prints the layer and via tables of t.
func writeTech(w io.Writer, t *tech.Technology) {
	fmt.Fprintln(w, StyleTitle.Render(t.Name()))
	if d := t.Description(); d != "" {
		fmt.Fprintln(w, StyleDim.Render(d))
	}

	var layers [][]string
	for _, l := range t.Layers() {
		layers = append(layers, []string{
			strconv.Itoa(l.Height), l.Name, num(l.DefaultWidth), num(l.Spacing), num(l.RailSpacing),
		})
	}
	fmt.Fprintln(w, newTable([]string{"Height", "Layer", "Width", "Spacing", "Rail"}, layers))

	var vias [][]string
	for _, v := range t.Vias() {
		vias = append(vias, []string{
			v.Name, v.Lower.Name, v.Upper.Name, num(v.MinWidth) + "x" + num(v.MinHeight), num(v.Spacing),
		})
	}
	fmt.Fprintln(w, newTable([]string{"Via", "Lower", "Upper", "Size", "Spacing"}, vias))
}

func newTable(headers []string, rows [][]string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader.Padding(0, 1)
			}
			if col == 0 {
				return StyleHighlight.Padding(0, 1)
			}
			return StyleValue.Padding(0, 1)
		})
}

func num(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }
