package opts

import (
	"github.com/filehopper/hopper/pkg/config"
	"github.com/filehopper/hopper/pkg/document"
	"github.com/filehopper/hopper/pkg/log"
	"github.com/filehopper/hopper/pkg/party"
)

// RootOpts contains the loaded settings and open data stores shared by
// all commands. It is filled once the root command has parsed its flags.
type RootOpts struct {
	Settings *config.Settings
	DataDir  string

	Suppliers *party.SupplierStore
	Clients   *party.ClientStore
	Delivery  *party.DeliveryStore
	Sequence  *document.Sequence

	Console *log.Logger
	User    *log.UserLogger
}
