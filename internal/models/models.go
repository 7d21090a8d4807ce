package models

// AllModels returns every model registered for auto migration.
func AllModels() []any {
	return []any{
		&Channel{},
		&Video{},
		&DigestHistory{},
		&Job{},
	}
}
