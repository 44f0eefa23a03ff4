package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/portgraph/portgraph/pkg/depgraph"
	"github.com/portgraph/portgraph/pkg/errors"
	"github.com/portgraph/portgraph/pkg/graphio"
)

// queryCommand creates the query command group for interrogating graph files.
func (c *CLI) queryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query a dependency graph file",
		Long: `Query a dependency graph file produced by 'extract'.

Package specs may be versionless atoms (cat/pkg), which match every
version at every install root, or full identities (cat/pkg-1.2.3-r1),
which match exactly.`,
	}

	cmd.AddCommand(c.queryNodesCommand())
	cmd.AddCommand(c.queryDepsCommand())
	cmd.AddCommand(c.queryIsDepCommand())
	cmd.AddCommand(c.queryRelevantCommand())

	return cmd
}

func (c *CLI) queryNodesCommand() *cobra.Command {
	var (
		rootStr  string
		asJSON   bool
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "nodes [graph.json] [package]",
		Short: "List graph nodes matching a package spec",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, filter, err := loadGraphWithFilter(args[0], rootStr)
			if err != nil {
				return err
			}
			nodes, err := g.GetNodes(args[1], filter)
			if err != nil {
				return fmt.Errorf("parse package spec: %w", err)
			}
			return printNodes(nodes, asJSON, detailed)
		},
	}

	addQueryFlags(cmd, &rootStr, &asJSON)
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include source paths")
	return cmd
}

func (c *CLI) queryDepsCommand() *cobra.Command {
	var (
		rootStr string
		asJSON  bool
		reverse bool
	)

	cmd := &cobra.Command{
		Use:   "deps [graph.json] [package]",
		Short: "List direct dependencies of a package",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, filter, err := loadGraphWithFilter(args[0], rootStr)
			if err != nil {
				return err
			}

			var nodes []*depgraph.PackageNode
			if reverse {
				nodes, err = g.GetReverseDependencies(args[1], filter)
			} else {
				nodes, err = g.GetDependencies(args[1], filter)
			}
			if err != nil {
				return fmt.Errorf("parse package spec: %w", err)
			}
			return printNodes(nodes, asJSON, false)
		},
	}

	addQueryFlags(cmd, &rootStr, &asJSON)
	cmd.Flags().BoolVarP(&reverse, "reverse", "r", false, "list reverse dependencies instead")
	return cmd
}

func (c *CLI) queryIsDepCommand() *cobra.Command {
	var direct bool

	cmd := &cobra.Command{
		Use:   "isdep [graph.json] [dependency] [source]",
		Short: "Check whether a package depends on another",
		Long: `Check whether the source package depends on the dependency package.

By default the check covers the transitive dependency closure; --direct
restricts it to immediate dependencies. Exits 0 when the dependency
holds, 1 when it does not.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := graphio.ReadGraphFile(args[0])
			if err != nil {
				return fmt.Errorf("load graph %s: %w", args[0], err)
			}

			ok, err := g.IsDependency(args[1], args[2], depgraph.RootAll, depgraph.RootAll, direct)
			if err != nil {
				return fmt.Errorf("parse package spec: %w", err)
			}
			if !ok {
				printInfo("%s does not depend on %s", args[2], args[1])
				os.Exit(1)
			}
			printSuccess("%s depends on %s", args[2], args[1])
			return nil
		},
	}

	cmd.Flags().BoolVar(&direct, "direct", false, "only consider immediate dependencies")
	return cmd
}

func (c *CLI) queryRelevantCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "relevant [graph.json] [path...]",
		Short: "Find packages whose sources contain the given paths",
		Long: `Find packages whose registered source paths contain the given paths.

A path is relevant to a package when it equals one of the package's
source paths or lies underneath one. Exits 0 when any package is
relevant, 1 otherwise.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := args[1:]
			for _, p := range paths {
				if err := errors.ValidateSourcePath(p); err != nil {
					return err
				}
			}

			g, err := graphio.ReadGraphFile(args[0])
			if err != nil {
				return fmt.Errorf("load graph %s: %w", args[0], err)
			}

			nodes := g.GetRelevantNodes(paths, depgraph.RootAll)
			if len(nodes) == 0 {
				printInfo("No packages build the given paths")
				os.Exit(1)
			}
			return printNodes(nodes, asJSON, true)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func addQueryFlags(cmd *cobra.Command, rootStr *string, asJSON *bool) {
	cmd.Flags().StringVar(rootStr, "root", "all", "install root filter: all, sdk, sysroot")
	cmd.Flags().BoolVar(asJSON, "json", false, "output as JSON")
}

func loadGraphWithFilter(path, rootStr string) (*depgraph.DependencyGraph, depgraph.RootType, error) {
	filter, err := parseRootFilter(rootStr)
	if err != nil {
		return nil, filter, err
	}
	g, err := graphio.ReadGraphFile(path)
	if err != nil {
		return nil, filter, fmt.Errorf("load graph %s: %w", path, err)
	}
	return g, filter, nil
}

func parseRootFilter(s string) (depgraph.RootType, error) {
	switch s {
	case "", "all":
		return depgraph.RootAll, nil
	case "sdk":
		return depgraph.RootSDK, nil
	case "sysroot":
		return depgraph.RootSysroot, nil
	default:
		return depgraph.RootAll, fmt.Errorf("root filter %q must be all, sdk, or sysroot", s)
	}
}

func printNodes(nodes []*depgraph.PackageNode, asJSON, detailed bool) error {
	if asJSON {
		type view struct {
			CPVR        string   `json:"cpvr"`
			Root        string   `json:"root"`
			SourcePaths []string `json:"source_paths,omitempty"`
		}
		out := make([]view, 0, len(nodes))
		for _, n := range nodes {
			out = append(out, view{CPVR: n.Info.CPVR(), Root: n.Root, SourcePaths: n.SourcePaths})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if len(nodes) == 0 {
		printInfo("No matching nodes")
		return nil
	}
	for _, n := range nodes {
		fmt.Println(StyleValue.Render(n.Info.CPVR()) + " " + StyleDim.Render("("+n.Root+")"))
		if detailed {
			for _, p := range n.SourcePaths {
				printDetail("src: %s", p)
			}
		}
	}
	return nil
}
