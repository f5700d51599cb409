// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"desk-assistant/internal/common/config"
	"desk-assistant/pkg/registry"
)

const defaultRegistryPath = "config/paths.json"

var registryPath string

func main() {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	scanCmd := flag.NewFlagSet("scan", flag.ExitOnError)

	// Add command flags
	keyAdd := addCmd.String("key", "", "App key (e.g., spotify)")
	exePath := addCmd.String("exe", "", "Executable path")
	aliases := addCmd.String("aliases", "", "Comma separated spoken aliases")
	procName := addCmd.String("process", "", "Process image name (default <key>.exe)")
	displayName := addCmd.String("displayName", "", "Display name")
	addCmd.StringVar(&registryPath, "path", defaultRegistryPath, "Path to registry file")

	// Update command flags
	keyUpdate := updateCmd.String("key", "", "App key to update")
	field := updateCmd.String("field", "", "Field to update (displayName, process, alias, path)")
	value := updateCmd.String("value", "", "New value for the field")
	updateCmd.StringVar(&registryPath, "path", defaultRegistryPath, "Path to registry file")

	// Validate command flags
	validateCmd.StringVar(&registryPath, "path", defaultRegistryPath, "Path to registry file")

	// Scan command flags
	settingsPath := scanCmd.String("settings", config.DefaultSettingsPath, "Path to settings.json")
	scanCmd.StringVar(&registryPath, "path", defaultRegistryPath, "Path to registry file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		addCmd.Parse(os.Args[2:])
		if *keyAdd == "" || *exePath == "" {
			fmt.Println("Error: key and exe are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		entry := registry.AppEntry{
			Key:         *keyAdd,
			DisplayName: *displayName,
			Paths:       []string{*exePath},
			Aliases:     splitList(*aliases),
			Process:     *procName,
		}
		if err := edit(func(reg *registry.AppRegistry) error {
			reg.Upsert(entry)
			return nil
		}); err != nil {
			fmt.Printf("Error adding app: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added app: %s\n", *keyAdd)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *keyUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: key, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := edit(func(reg *registry.AppRegistry) error {
			return reg.Set(*keyUpdate, *field, *value)
		}); err != nil {
			fmt.Printf("Error updating app: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated app: %s, field: %s\n", *keyUpdate, *field)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		reg, err := registry.LoadRegistry(registryPath)
		if err != nil {
			fmt.Printf("Error loading registry: %v\n", err)
			os.Exit(1)
		}
		if err := reg.Validate(); err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Registry is valid. %d apps, %d available.\n", len(reg.Apps), countAvailable(reg))

	case "scan":
		scanCmd.Parse(os.Args[2:])
		s, err := config.Load(*settingsPath)
		if err != nil {
			fmt.Printf("Error loading settings: %v\n", err)
			os.Exit(1)
		}
		reg := registry.Build(s, nil)
		if err := reg.Save(registryPath); err != nil {
			fmt.Printf("Error saving registry: %v\n", err)
			os.Exit(1)
		}
		for _, k := range reg.Keys() {
			fmt.Printf("  %-12s %v\n", k, reg.Availability()[k])
		}
		fmt.Printf("Scanned %d apps into %s\n", len(reg.Apps), registryPath)

	case "help", "-h", "--help":
		help()

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		help()
		os.Exit(1)
	}
}

// edit loads the registry, applies fn, validates and saves it back.
func edit(fn func(*registry.AppRegistry) error) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return err
	}
	if err := fn(reg); err != nil {
		return err
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid registry: %w", err)
	}
	return reg.Save(registryPath)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func countAvailable(reg *registry.AppRegistry) int {
	n := 0
	for _, ok := range reg.Availability() {
		if ok {
			n++
		}
	}
	return n
}

func help() {
	fmt.Println("App Registry Updater")
	fmt.Println("Usage:")
	fmt.Println("  registry-updater add -key <key> -exe <path> [-aliases a,b] [-process <name.exe>] [-displayName <name>]")
	fmt.Println("  registry-updater update -key <key> -field <field> -value <value>")
	fmt.Println("  registry-updater validate [-path <path>]")
	fmt.Println("  registry-updater scan [-settings <settings.json>] [-path <path>]")
	fmt.Println("  registry-updater help")
}
