package utils

// EmptyString represents a reusable empty string constant.
const EmptyString = ""

// ErrorLogFormat defines the formatting string for error log messages.
const ErrorLogFormat = "Error: %v"

// Configuration file locations shared by the resolver and the config commands.
const (
	// GlobalConfigDirectoryName is the directory under the home directory holding the global file.
	GlobalConfigDirectoryName = ".ats"
	// GlobalConfigFileName is the name of the global configuration file.
	GlobalConfigFileName = "config.json"
	// ProjectConfigFileName is the per-project configuration file discovered by walking upward.
	ProjectConfigFileName = ".ats.json"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"
)

// ApplicationName is the executable name used in usage text and user agents.
const ApplicationName = "ats"
