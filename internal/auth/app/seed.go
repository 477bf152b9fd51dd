package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aussiebroadwan/ccauth/internal/auth/service"
	"gopkg.in/yaml.v3"
)

// SeedClient is one entry of a seed file.
type SeedClient struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

// SeedFile lists clients to register at start.
type SeedFile struct {
	Clients []SeedClient `yaml:"clients"`
}

// LoadSeedFile parses the YAML seed file at path.
func LoadSeedFile(path string) (SeedFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return SeedFile{}, fmt.Errorf("read seed file: %w", err)
	}

	var f SeedFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return SeedFile{}, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return f, nil
}

// SeedClients registers clients, skipping any that already exist.
func SeedClients(ctx context.Context, svc *service.ClientService, logger *slog.Logger, clients []SeedClient) error {
	for _, c := range clients {
		_, err := svc.RegisterClient(ctx, c.ClientID, c.ClientSecret)
		switch {
		case err == nil:
			logger.Info("seeded client", "client_id", c.ClientID)
		case errors.Is(err, service.ErrAlreadyExists):
			logger.Debug("seed client already registered", "client_id", c.ClientID)
		default:
			return fmt.Errorf("seed client %q: %w", c.ClientID, err)
		}
	}
	return nil
}
