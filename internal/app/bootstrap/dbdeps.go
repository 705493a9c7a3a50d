// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/vort/internal/app/system/mailer"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database and backend dependencies for this WAFFLE app.
//
// The struct is created in ConnectDB and passed to the subsequent
// lifecycle hooks: EnsureSchema, Startup, BuildHandler, and Shutdown.
type DBDeps struct {
	// MongoDB client and database
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// FileStorage for pattern screenshots and the certification badge
	FileStorage storage.Store

	// Mailer for notification emails (publish verdicts, expert assignment)
	Mailer *mailer.Mailer
}
