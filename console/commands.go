package console

import "github.com/galaplate/fixture/console/commands"

// RegisterCommands registers all available console commands
// Users can add their custom commands with Register
func (k *Kernel) RegisterCommands() {
	base := commands.BaseCommand{Out: k.Out}

	// Database commands
	k.Register(&commands.DbSeedCommand{BaseCommand: base})

	// Make commands
	k.Register(&commands.MakeFactoryCommand{BaseCommand: base})
	k.Register(&commands.MakeSeederCommand{BaseCommand: base})

	// Other commands
	k.Register(&ListCommand{kernel: k})
}
