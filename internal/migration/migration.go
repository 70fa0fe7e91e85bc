package migration

import (
	"errors"

	integrationdomain "github.com/smallbiznis/metrica/internal/integration/domain"
	metricdomain "github.com/smallbiznis/metrica/internal/metric/domain"
	projectgroupdomain "github.com/smallbiznis/metrica/internal/projectgroup/domain"
	"gorm.io/gorm"
)

// RunMigrations creates every table the engine needs, so a self-hosted
// install is usable out of the box on any supported dialect.
func RunMigrations(db *gorm.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}
	return db.AutoMigrate(
		&integrationdomain.Account{},
		&integrationdomain.Product{},
		&projectgroupdomain.ProjectGroup{},
		&metricdomain.MetricRow{},
	)
}
