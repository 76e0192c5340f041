package api

import (
	"github.com/JaimeStill/guidesync/internal/config"
	"github.com/JaimeStill/guidesync/internal/guidelines"
	"github.com/JaimeStill/guidesync/internal/users"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Guidelines guidelines.System
	Users      users.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	db := runtime.Database.Connection()

	return &Domain{
		Guidelines: guidelines.New(
			catalogStore(runtime),
			runtime.Storage,
			runtime.Logger,
			runtime.Pagination,
			runtime.MaxUploadSize,
		),
		Users: users.New(
			users.NewRepository(db),
			runtime.Issuer,
			runtime.Logger,
		),
	}
}

func catalogStore(runtime *Runtime) guidelines.Store {
	if runtime.CatalogStore == config.CatalogStoreMemory {
		runtime.Logger.Warn("guideline catalog held in memory; records are lost on restart")
		return guidelines.NewMemoryStore()
	}
	return guidelines.NewRepository(runtime.Database.Connection())
}
