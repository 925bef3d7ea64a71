package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/lawnchairsociety/killrate/internal/consumables"
	"github.com/spf13/cobra"
)

var ratesProfile string

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Manage consumable costs (seconds to reacquire one unit)",
}

var ratesExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the current costs as JSON to a file or stdout",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRatesExport,
}

var ratesImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the stored costs with a JSON export",
	Long: `Import a JSON object mapping consumable ids to seconds per unit. Ids
not in the file become undeclared. A file that cannot be parsed is rejected
and the stored costs are left as they were.`,
	Args: cobra.ExactArgs(1),
	RunE: runRatesImport,
}

var ratesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored cost profiles",
	RunE:  runRatesList,
}

func init() {
	ratesCmd.PersistentFlags().StringVar(&ratesProfile, "profile", "", "Cost profile name (overrides settings)")
	ratesCmd.AddCommand(ratesExportCmd)
	ratesCmd.AddCommand(ratesImportCmd)
	ratesCmd.AddCommand(ratesListCmd)
}

func loadRatesApp() (*app, string, error) {
	a, err := loadApp(true)
	if err != nil {
		return nil, "", err
	}
	profile := a.cfg.Consumables.Profile
	if ratesProfile != "" {
		profile = ratesProfile
		if costs, err := a.db.LoadProfile(profile); err == nil {
			if err := a.costs.Replace(costs); err != nil {
				a.close()
				return nil, "", err
			}
		}
	}
	if profile == "" {
		profile = "default"
	}
	return a, profile, nil
}

func runRatesExport(cmd *cobra.Command, args []string) error {
	a, _, err := loadRatesApp()
	if err != nil {
		return err
	}
	defer a.close()

	data, err := a.costs.ExportJSON()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}
	return os.WriteFile(args[0], data, 0644)
}

func runRatesImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	a, profile, err := loadRatesApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.costs.ImportJSON(data); err != nil {
		if errors.Is(err, consumables.ErrMalformedRates) {
			return fmt.Errorf("%s not imported, profile %q unchanged: %w", args[0], profile, err)
		}
		return err
	}
	if err := a.db.SaveProfile(profile, a.costs.Snapshot()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d costs into profile %q\n", len(a.costs.Snapshot()), profile)
	for _, id := range a.costs.IDs() {
		if s, ok := a.costs.Declared(id); ok {
			fmt.Fprintf(cmd.OutOrStdout(), "  %-20s %8.2fs  %s\n", id, s, a.costs.Name(id))
		}
	}
	return nil
}

func runRatesList(cmd *cobra.Command, args []string) error {
	a, err := loadApp(true)
	if err != nil {
		return err
	}
	defer a.close()

	profiles, err := a.db.ListProfiles()
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No cost profiles stored yet.")
		return nil
	}
	for _, p := range profiles {
		fmt.Fprintf(cmd.OutOrStdout(), "  %-20s %3d costs  updated %s\n", p.Name, p.Entries, humanize.Time(p.UpdatedAt))
	}
	return nil
}
