// cmd/tools/roi-validate/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"roi-workers/internal/common/config"
	apperrors "roi-workers/internal/common/errors"
	"roi-workers/internal/roi/catalog"
	"roi-workers/internal/roi/engine"
	"roi-workers/internal/roi/rules"
	"roi-workers/internal/roi/validate"
	cr "roi-workers/internal/workers/roi/calculate-roi"
	cl "roi-workers/internal/workers/roi/catalog-lookup"
	ic "roi-workers/internal/workers/roi/index-calculation"
	rc "roi-workers/internal/workers/roi/record-calculation"
	"roi-workers/pkg/registry"
)

var taskTypes = []string{cr.TaskType, cl.TaskType, rc.TaskType, ic.TaskType}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	runCmd := flag.NewFlagSet("run", flag.ContinueOnError)
	runCatalog := runCmd.String("catalog", "", "Path to a YAML catalog (default: built-in table)")
	runConfig := runCmd.String("config", "", "Path to a config file whose roi.rules section is used")
	runJSON := runCmd.Bool("json", false, "Print the report as JSON")

	catalogCmd := flag.NewFlagSet("catalog", flag.ContinueOnError)
	catalogPath := catalogCmd.String("catalog", "", "Path to a YAML catalog (default: built-in table)")
	catalogFormat := catalogCmd.String("format", "yaml", "Output format: yaml or json")

	registryCmd := flag.NewFlagSet("registry", flag.ContinueOnError)
	registryPath := registryCmd.String("path", "configs/activity-registry.json", "Path to registry file")

	if len(args) < 1 {
		help(out)
		return 1
	}

	switch args[0] {
	case "run":
		if err := runCmd.Parse(args[1:]); err != nil {
			return 2
		}
		return runProperties(out, *runCatalog, *runConfig, *runJSON)

	case "catalog":
		if err := catalogCmd.Parse(args[1:]); err != nil {
			return 2
		}
		if err := dumpCatalog(out, *catalogPath, *catalogFormat); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return 1
		}
		return 0

	case "registry":
		if err := registryCmd.Parse(args[1:]); err != nil {
			return 2
		}
		return checkRegistry(out, *registryPath)

	case "help":
		help(out)
		return 0

	default:
		help(out)
		return 1
	}
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(path)
}

func loadRules(path string) (rules.Config, error) {
	if path == "" {
		return rules.DefaultConfig(), nil
	}
	roi, err := config.LoadROIFromFile(path)
	if err != nil {
		return rules.Config{}, err
	}
	return roi.RulesConfig()
}

func runProperties(out io.Writer, catalogPath, configPath string, asJSON bool) int {
	cat, err := loadCatalog(catalogPath)
	if err != nil {
		fmt.Fprintf(out, "FAIL catalog: %v\n", err)
		return 1
	}
	rulesCfg, err := loadRules(configPath)
	if err != nil {
		fmt.Fprintf(out, "FAIL rules: %v\n", err)
		return 1
	}
	eng, err := engine.New(cat, rulesCfg)
	if err != nil {
		fmt.Fprintf(out, "FAIL engine: %v\n", err)
		return 1
	}

	report := validate.Run(eng)
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		_ = enc.Encode(report)
	} else {
		for _, c := range report.Checks {
			if c.Passed {
				fmt.Fprintf(out, "PASS %s\n", c.Name)
				continue
			}
			fmt.Fprintf(out, "FAIL %s: %s\n", c.Name, c.Detail)
		}
		fmt.Fprintf(out, "%d/%d properties passed\n", len(report.Checks)-report.Failed(), len(report.Checks))
	}

	if !report.Passed() {
		return 1
	}
	return 0
}

func dumpCatalog(out io.Writer, path, format string) error {
	cat, err := loadCatalog(path)
	if err != nil {
		return err
	}

	switch format {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(cat)
	case "json":
		industries := make([]catalog.Industry, 0, cat.Len())
		for _, name := range cat.Industries() {
			ind, err := cat.Industry(name)
			if err != nil {
				return err
			}
			industries = append(industries, ind)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{"industries": industries})
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func checkRegistry(out io.Writer, path string) int {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		fmt.Fprintf(out, "Failed to load registry: %v\n", err)
		return 1
	}

	problems := reg.Validate(taskTypes, apperrors.BPMNCodes())
	for _, p := range problems {
		fmt.Fprintf(out, "FAIL %v\n", p)
	}
	if len(problems) > 0 {
		return 1
	}
	fmt.Fprintf(out, "Registry validation passed. Found %d activities.\n", len(reg.Activities))
	return 0
}

func help(out io.Writer) {
	fmt.Fprint(out, `
Usage: roi-validate <command> [flags]

Commands:
  run       Check every engine property against a catalog and rule table
  catalog   Print the catalog in the YAML file format (or JSON)
  registry  Validate the activity registry against the worker fleet
  help      Show this help message

Examples:
  roi-validate run
  roi-validate run -catalog configs/catalog.yaml -config configs/config.yaml
  roi-validate catalog -format json
  roi-validate registry -path configs/activity-registry.json

Use 'roi-validate <command> -h' for more information about a command.
`)
}
