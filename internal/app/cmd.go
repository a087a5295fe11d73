package app

// Command selects the application start mode.
type Command string

const (
	// CommandServe starts the API server.
	CommandServe Command = "serve"
	// CommandMigrate applies pending database migrations.
	CommandMigrate Command = "migrate"
	// CommandSeed resets the database to the demonstration data set.
	CommandSeed Command = "seed"
	// CommandHealthcheck probes the running server.
	// Used as the Docker health check in the distroless image.
	CommandHealthcheck Command = "healthcheck"
)

// ParseCommand resolves the subcommand from the command-line arguments.
// Empty or unknown arguments default to CommandServe.
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}

	switch args[0] {
	case "serve":
		return CommandServe
	case "migrate":
		return CommandMigrate
	case "seed":
		return CommandSeed
	case "healthcheck":
		return CommandHealthcheck
	default:
		return CommandServe
	}
}
