package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/benbjohnson/clock"
	"github.com/shieldpool/proof-gateway/config"
	"github.com/shieldpool/proof-gateway/db"
	"github.com/shieldpool/proof-gateway/prover"
	"github.com/shieldpool/proof-gateway/server"
	"github.com/shieldpool/proof-gateway/verifier"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// StartCmd represents the start command
var StartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the proof gateway",
	Long: `Start the proof gateway with the configuration from ~/.proof-gateway/config.toml.
The gateway will validate inbound proof requests and forward them to the
configured proving and verification engines.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startCommand()
	},
}

func startCommand() error {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		ForceColors:     true,
	})
	log.SetLevel(logrus.InfoLevel)

	// Get user's home directory
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %v", err)
	}

	// Load configuration
	configPath := filepath.Join(home, ".proof-gateway", "config.toml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	if cfg.Engines.ProverURL == "" {
		log.Fatalf("Proving engine URL not configured")
	}
	if cfg.Engines.VerifierURL == "" {
		log.Fatalf("Verification engine URL not configured")
	}

	// Initialize artifact store
	store, err := db.OpenArtifactStore(cfg.Database.ArtifactDBPath)
	if err != nil {
		log.Fatalf("Failed to initialize artifact store: %v", err)
	}
	defer store.Close()

	// Initialize engine clients
	proverClient := prover.NewProverClient(cfg.Engines.ProverURL, log)
	log.Infof("Initialized prover client with URL: %s", cfg.Engines.ProverURL)

	verifierClient := verifier.NewVerifierClient(cfg.Engines.VerifierURL, log)
	log.Infof("Initialized verifier client with URL: %s", cfg.Engines.VerifierURL)

	// Start HTTP server
	srv := server.New(cfg, proverClient, verifierClient, store, clock.New(), log)
	if err := srv.Start(); err != nil {
		log.Fatalf("Gateway server failed: %v", err)
	}

	return nil
}
