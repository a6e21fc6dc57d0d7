package bootstrap

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/egomobility/vehicle-signals/pkg/store"
)

// SeedVehicle is a single vehicle entry in the seed file.
type SeedVehicle struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Manufacturer string `yaml:"manufacturer"`
	ModelName    string `yaml:"model_name"`
	LicensePlate string `yaml:"license_plate"`
	Country      string `yaml:"country"`
}

// SeedFile is the on-disk format of the vehicle seed configuration.
type SeedFile struct {
	Vehicles []SeedVehicle `yaml:"vehicles"`
}

// LoadSeed reads and parses the vehicle seed file at path.
func LoadSeed(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}

	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}

	for i, v := range seed.Vehicles {
		if v.ID == "" {
			return nil, fmt.Errorf("seed file %s: vehicle at index %d has no id", path, i)
		}
		if v.LicensePlate == "" {
			return nil, fmt.Errorf("seed file %s: vehicle %s has no license_plate", path, v.ID)
		}
	}

	return &seed, nil
}

// Seed creates the vehicles from the seed file that do not exist yet.
// Existing vehicles are left untouched so repeated startups are safe.
func Seed(ctx context.Context, st *store.RedisStore, seed *SeedFile) error {
	created := 0
	for _, v := range seed.Vehicles {
		existing, err := st.GetVehicle(ctx, v.ID)
		if err != nil {
			return fmt.Errorf("failed to check vehicle %s: %w", v.ID, err)
		}
		if existing != nil {
			continue
		}

		if err := st.CreateVehicle(ctx, &store.Vehicle{
			ID:           v.ID,
			Name:         v.Name,
			Manufacturer: v.Manufacturer,
			ModelName:    v.ModelName,
			LicensePlate: v.LicensePlate,
			Country:      v.Country,
			CreationTime: time.Now().UTC(),
		}); err != nil {
			return fmt.Errorf("failed to create vehicle %s: %w", v.ID, err)
		}
		created++
	}

	logrus.Infof("seeded %d vehicle(s), %d already present", created, len(seed.Vehicles)-created)
	return nil
}
