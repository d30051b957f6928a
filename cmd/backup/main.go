package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"carecall/internal/config"
	"carecall/internal/service"
	"carecall/internal/store"
)

func main() {
	// Define subcommands
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)

	// Export flags
	exportOutput := exportCmd.String("output", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")

	// Import flags
	importInput := importCmd.String("input", "", "Input file path (required)")
	importYes := importCmd.Bool("yes", false, "Replace existing state without asking")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Load configuration
	cfg := config.Load()

	// Open the configured state backend
	backend, err := openBackend(cfg)
	if err != nil {
		log.Fatalf("Failed to open state backend: %v", err)
	}
	defer closeBackend(backend)

	backupService := service.NewBackupService(backend)

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		handleExport(backupService, *exportOutput)

	case "import":
		importCmd.Parse(os.Args[2:])
		if *importInput == "" {
			fmt.Println("Error: -input flag is required")
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		handleImport(backupService, *importInput, *importYes)

	default:
		printUsage()
		os.Exit(1)
	}
}

func handleExport(backupService *service.BackupService, outputPath string) {
	// Generate default filename if not provided
	if outputPath == "" {
		timestamp := time.Now().Format("20060102_150405")
		outputPath = fmt.Sprintf("backup_%s.json", timestamp)
	}

	// Ensure directory exists
	dir := filepath.Dir(outputPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create output directory: %v", err)
		}
	}

	log.Printf("Exporting state to: %s", outputPath)
	if err := backupService.Export(outputPath); err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	// Get file size
	fileInfo, _ := os.Stat(outputPath)
	log.Printf("Export complete! File size: %.2f KB", float64(fileInfo.Size())/1024)
}

func handleImport(backupService *service.BackupService, inputPath string, skipConfirm bool) {
	// Check if file exists
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		log.Fatalf("Input file does not exist: %s", inputPath)
	}

	// Import replaces the whole state document
	if !skipConfirm {
		fmt.Print("WARNING: This will replace all existing state. Type 'yes' to confirm: ")
		var confirmation string
		fmt.Scanln(&confirmation)
		if confirmation != "yes" {
			log.Println("Import cancelled")
			return
		}
	}

	log.Printf("Importing state from: %s", inputPath)
	if err := backupService.Import(inputPath); err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	log.Println("Import complete!")
}

func printUsage() {
	fmt.Println("CareCall State Backup Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  backup export [options]    Export state to a JSON snapshot")
	fmt.Println("  backup import [options]    Import state from a JSON snapshot")
	fmt.Println()
	fmt.Println("Export Options:")
	fmt.Println("  -output <file>    Output file path (default: backup_YYYYMMDD_HHMMSS.json)")
	fmt.Println()
	fmt.Println("Import Options:")
	fmt.Println("  -input <file>     Input file path (required)")
	fmt.Println("  -yes              Replace existing state without asking")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  # Snapshot the configured backend")
	fmt.Println("  backup export")
	fmt.Println("  backup export -output mybackup.json")
	fmt.Println()
	fmt.Println("  # Restore a snapshot, or move state to another backend:")
	fmt.Println("  # export with STORE_BACKEND=file, import with STORE_BACKEND=postgres")
	fmt.Println("  backup import -input backup.json")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  STORE_BACKEND    State backend: file, sqlite, mysql or postgres (default: file)")
	fmt.Println("  STATE_PATH       File or sqlite path (default: ./carecall.json)")
	fmt.Println("  DATABASE_URL     MySQL or PostgreSQL connection URL")
}

// openBackend picks the state backend from configuration.
func openBackend(cfg *config.Config) (store.Backend, error) {
	switch cfg.StoreBackend {
	case "", "file":
		return store.NewFileBackend(cfg.StatePath), nil
	case "sqlite", "sqlite3":
		return store.NewSQLBackend(cfg.StoreBackend, store.DialectConfig{Path: cfg.StatePath})
	case "mysql", "postgres", "postgresql":
		return store.NewSQLBackend(cfg.StoreBackend, store.DialectConfig{URL: cfg.DatabaseURL})
	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.StoreBackend)
	}
}

func closeBackend(backend store.Backend) {
	if closer, ok := backend.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.Printf("State backend close: %v", err)
		}
	}
}
