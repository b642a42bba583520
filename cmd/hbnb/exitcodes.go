package main

// Exit codes returned by hbnb commands.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, unknown class, missing argument)
	ExitConfigError = 2 // Configuration error (unreadable config, invalid export format)
	ExitDataError   = 3 // Data error (snapshot or index could not be written)
	ExitNotFound    = 4 // No instance found for the given class and id
)
