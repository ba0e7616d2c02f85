/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/frametran/internal/markdown"
)

var framesCmd = &cobra.Command{
	Use:   "frames",
	Short: "Inspect the frame catalog",
	Long: `List and show the frame definitions in the frames directory.

A frame file describes one situation type (e.g. Commerce_buy): its lexical
units, its core and non-core roles, language-specific notes and a worked
example used in the prompts.`,
}

var framesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List frames",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog := newCatalog(true)
		names, err := catalog.List()
		if err != nil {
			return err
		}

		if len(names) == 0 {
			fmt.Printf("No frame files found in %s.\n", catalog.Dir())
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tFRAME\tCORE\tNON-CORE\tLEXICAL UNITS")
		for _, name := range names {
			def, err := catalog.Load(name)
			if err != nil {
				fmt.Fprintf(w, "%s\t(error: %v)\t\t\t\n", name, err)
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n",
				name, def.Name, len(def.Elements.Core), len(def.Elements.NonCore), len(def.LexicalUnits))
		}
		return w.Flush()
	},
}

var showHTML bool

var framesShowCmd = &cobra.Command{
	Use:   "show <name|path>",
	Short: "Show a frame as Markdown or HTML",
	Long: `Show a frame definition rendered as Markdown, or as a standalone HTML
page with --html.

Example:
  frametran frames show commerce-buy-frame --html > commerce-buy.html`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := newCatalog(true).Load(args[0])
		if err != nil {
			return fmt.Errorf("failed to load frame: %w", err)
		}

		md := markdown.Frame(def)
		if !showHTML {
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		}

		page, err := markdown.Page(def.Name, md)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), page)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(framesCmd)

	framesShowCmd.Flags().BoolVar(&showHTML, "html", false, "Render as an HTML page")

	framesCmd.AddCommand(framesListCmd)
	framesCmd.AddCommand(framesShowCmd)
}
