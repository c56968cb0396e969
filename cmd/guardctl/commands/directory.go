package commands

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/rhuss/adminguard/pkg/config"
	"github.com/rhuss/adminguard/pkg/directory"
	"github.com/rhuss/adminguard/pkg/directory/postgres"
	"github.com/rhuss/adminguard/pkg/security"
)

func newDirectoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "directory",
		Short: "Inspect and import console users",
	}
	cmd.AddCommand(newDirectoryCheckCmd())
	cmd.AddCommand(newDirectoryImportCmd())
	return cmd
}

func newDirectoryCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a user directory and list its users",
		Long: `Load a user directory and list its users and authorities. Secrets are
never printed.

Examples:
  # Check a properties file
  guardctl directory check --file users.properties

  # Check the directory configured for the server
  guardctl directory check --config config.yaml`,
		RunE: runDirectoryCheck,
	}
	cmd.Flags().String("file", "", "users.properties file to check")
	return cmd
}

func runDirectoryCheck(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")

	var (
		dir *directory.Directory
		err error
	)
	if file != "" {
		dir, err = directory.LoadFile(file)
	} else {
		var cfg *config.Config
		cfg, err = loadConfig(cmd)
		if err != nil {
			return err
		}
		dir, err = security.LoadDirectory(cmd.Context(), cfg.Directory)
	}
	if err != nil {
		return err
	}

	printUsers(cmd, dir)
	return nil
}

func printUsers(cmd *cobra.Command, dir *directory.Directory) {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"USERNAME", "AUTHORITIES", "ENABLED"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	for _, name := range dir.Usernames() {
		u, _ := dir.Lookup(name)
		authorities := strings.Join(u.Authorities, ",")
		if authorities == "" {
			authorities = "-"
		}
		enabled := "yes"
		if !u.Enabled {
			enabled = "no"
		}
		table.Append([]string{u.Username, authorities, enabled})
	}
	table.Render()
}

func newDirectoryImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a properties file into the PostgreSQL directory",
		Long: `Insert or update every user of a properties file in the PostgreSQL
directory configured by directory.postgres. Existing users not in the file
are left untouched.

Examples:
  guardctl directory import --config config.yaml --file users.properties`,
		RunE: runDirectoryImport,
	}
	cmd.Flags().String("file", "", "users.properties file to import (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runDirectoryImport(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")
	dir, err := directory.LoadFile(file)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	pg := cfg.Directory.Postgres
	if pg.DSN == "" {
		return fmt.Errorf("directory.postgres.dsn is not configured")
	}

	store, err := postgres.New(cmd.Context(), postgres.Config{
		DSN:            pg.DSN,
		MaxConns:       pg.MaxConns,
		MigrateOnStart: true,
	})
	if err != nil {
		return err
	}
	defer store.Close()

	for _, name := range dir.Usernames() {
		u, _ := dir.Lookup(name)
		if err := store.Upsert(cmd.Context(), u); err != nil {
			return fmt.Errorf("importing %s: %w", name, err)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d users.\n", dir.Len())
	return nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}
