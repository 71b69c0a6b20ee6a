// Package commands implements CLI command handlers for keen-targets.
//
// Each command implements the Runner interface:
//   - Init(): parse arguments, load the optional config file, apply flag overrides
//   - Run(): execute the command
//   - Name(): return the command name for routing
//
// # Available Commands
//
//   - resolve: expand targets into addresses and print them
//   - resolvers: show the nameservers used for hostname fallback
//   - serve: run the HTTP API
//
// # Example Usage
//
//	cmd := commands.CreateResolveCommand()
//	ctx := &commands.AppContext{Verbose: true}
//	if err := cmd.Init([]string{"-x", "192.168.0.1", "192.168.0.0/30"}, ctx); err != nil {
//	    log.Fatalf("Failed to initialize command: %v", err)
//	}
//	if err := cmd.Run(); err != nil {
//	    log.Fatalf("Failed to run command: %v", err)
//	}
package commands
