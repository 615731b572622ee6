// Package analysis wires the analysis service: its configuration keys, the
// shared database handle, and its HTTP routes.
package analysis

import (
	"errors"
	"strings"

	"github.com/dalemusser/analysis/config"
	"github.com/dalemusser/analysis/toolkit/db/mongodb"
	"go.uber.org/zap"
)

// Name identifies the service in logs and responses.
const Name = "analysis"

// Config key names.
const (
	KeyMongoURI        = "mongo_uri"
	KeyMongoDB         = "mongo_db"
	KeyMongoPingOnOpen = "mongo_ping_on_open"
)

// AppKeys are the service's configuration keys, read from ANALYSIS_MONGO_URI,
// ANALYSIS_MONGO_DB and ANALYSIS_MONGO_PING_ON_OPEN or the matching flags.
var AppKeys = []config.AppKey{
	{Name: KeyMongoURI, Default: "", Desc: "MongoDB connection URI"},
	{Name: KeyMongoDB, Default: "", Desc: "MongoDB database name"},
	{Name: KeyMongoPingOnOpen, Default: true, Desc: "Ping MongoDB when the handle is first built"},
}

// SettingsFrom returns the settings source for the database handle. Missing
// values are reported when the handle is first requested, not here.
func SettingsFrom(vals config.AppConfigValues) mongodb.SettingsFunc {
	return func() (mongodb.Settings, error) {
		s := mongodb.Settings{
			URI:      strings.TrimSpace(vals.String(KeyMongoURI)),
			Database: strings.TrimSpace(vals.String(KeyMongoDB)),
		}
		var missing []string
		if s.URI == "" {
			missing = append(missing, KeyMongoURI)
		}
		if s.Database == "" {
			missing = append(missing, KeyMongoDB)
		}
		if len(missing) > 0 {
			return mongodb.Settings{}, errors.New("missing config: " + strings.Join(missing, ", "))
		}
		return s, nil
	}
}

// NewProvider builds the process's database handle provider. When
// mongo_ping_on_open is set, the first call pings the server within
// db_connect_timeout.
func NewProvider(core *config.CoreConfig, vals config.AppConfigValues, logger *zap.Logger, opts ...mongodb.Option) *mongodb.Provider {
	all := []mongodb.Option{mongodb.WithLogger(logger)}
	if vals.Bool(KeyMongoPingOnOpen) {
		all = append(all, mongodb.WithPing(core.DBConnectTimeout))
	}
	all = append(all, opts...)
	return mongodb.NewProvider(SettingsFrom(vals), all...)
}
