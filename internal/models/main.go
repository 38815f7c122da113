package models

// ModelRegistry lists the models applied by --auto-migrate.
var ModelRegistry = []interface{}{
	&WaitlistEntry{},
}
