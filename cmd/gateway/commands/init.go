package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shieldpool/proof-gateway/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// InitCmd represents the init command
var InitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the proof gateway",
	Long: `Initialize the proof gateway with the required configuration.
This command creates the necessary directories and configuration files.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initCommand(cmd)
	},
}

func init() {
	// Engine configuration flags
	InitCmd.Flags().String("engines.prover-url", "http://127.0.0.1:9100", "Proving engine endpoint")
	InitCmd.Flags().String("engines.verifier-url", "http://127.0.0.1:9200", "Verification engine endpoint")

	// General configuration flags
	InitCmd.Flags().String("listen-addr", ":8000", "Gateway listen address")
	InitCmd.Flags().Int("request-timeout", 30, "Per-request engine timeout in seconds")
	InitCmd.Flags().Bool("public-demo", false, "Enable permissive CORS for public demo deployments")
	InitCmd.Flags().String("static-root", "", "Static asset root directory (empty disables static serving)")
}

func initCommand(cmd *cobra.Command) error {
	// Get flag values
	proverURL, _ := cmd.Flags().GetString("engines.prover-url")
	verifierURL, _ := cmd.Flags().GetString("engines.verifier-url")
	listenAddr, _ := cmd.Flags().GetString("listen-addr")
	requestTimeout, _ := cmd.Flags().GetInt("request-timeout")
	publicDemo, _ := cmd.Flags().GetBool("public-demo")
	staticRoot, _ := cmd.Flags().GetString("static-root")

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		ForceColors:     true,
	})
	log.SetLevel(logrus.InfoLevel)

	if requestTimeout <= 0 {
		return fmt.Errorf("invalid --request-timeout: %d. Must be a positive number of seconds", requestTimeout)
	}

	// Get user's home directory
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %v", err)
	}

	// Create .proof-gateway directory
	gatewayDir := filepath.Join(home, ".proof-gateway")
	if err := os.MkdirAll(gatewayDir, 0755); err != nil {
		return fmt.Errorf("failed to create .proof-gateway directory: %v", err)
	}

	// Create data directories
	artifactDBPath := filepath.Join(gatewayDir, "data", "artifact_db")
	if err := os.MkdirAll(artifactDBPath, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %v", artifactDBPath, err)
	}

	// Create config with command-line flags
	cfg := config.DefaultConfig()
	cfg.General.ListenAddr = listenAddr
	cfg.General.RequestTimeoutSeconds = requestTimeout
	cfg.General.PublicDemo = publicDemo
	cfg.Engines.ProverURL = proverURL
	cfg.Engines.VerifierURL = verifierURL
	cfg.Database.ArtifactDBPath = artifactDBPath
	cfg.Static.Root = staticRoot

	// Save config file
	configPath := filepath.Join(gatewayDir, "config.toml")
	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("failed to create config file: %v", err)
	}
	log.Infof("Created config file at: %s", configPath)

	// Show configuration summary
	fmt.Println("\n=== Configuration Summary ===")
	fmt.Printf("Listen Address: %s\n", cfg.General.ListenAddr)
	fmt.Printf("Request Timeout: %ds\n", cfg.General.RequestTimeoutSeconds)
	fmt.Printf("Public Demo Mode: %t\n", cfg.General.PublicDemo)
	fmt.Printf("Proving Engine: %s\n", cfg.Engines.ProverURL)
	fmt.Printf("Verification Engine: %s\n", cfg.Engines.VerifierURL)
	fmt.Printf("Artifact DB: %s\n", cfg.Database.ArtifactDBPath)
	fmt.Printf("Config File: %s\n", configPath)

	log.Info("\nInitialization completed successfully!")
	log.Info("You can start the gateway using: ./proof-gateway start")

	return nil
}
