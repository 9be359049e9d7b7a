package config

// Configuration key constants to prevent typos and enable autocomplete
const (
	// Output configuration
	KeyColor   = "COLOR"   // Colored diagnostics on stderr (true/false)
	KeyVerbose = "VERBOSE" // Trace each protocol step (true/false)
)

// Default values for configuration keys
var Defaults = map[string]string{
	KeyColor:   "true",
	KeyVerbose: "false",
}
