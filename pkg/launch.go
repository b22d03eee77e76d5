package pkg

import (
	"strings"
)

const (
	// The JetBrains type identifier of a Python run configuration
	PythonConfigurationType = "PythonConfigurationType"

	// Option names inside a run configuration
	OptionScriptName       = "SCRIPT_NAME"
	OptionParameters       = "PARAMETERS"
	OptionWorkingDirectory = "WORKING_DIRECTORY"

	// JetBrains' and VS Code's placeholders for the project root
	ProjectDirToken      = "$PROJECT_DIR$"
	WorkspaceFolderToken = "${workspaceFolder}"

	LaunchRequest      = "launch"
	IntegratedTerminal = "integratedTerminal"
	PythonRuntime      = "python3"
	DefaultGroup       = "Default"

	ConversionComment = "Automatically converted from Jetbrains IDE workspace.xml to VSCode launch.json"
)

// Maps the recognised JetBrains configuration type to its VS Code debugger type
var launchTypes = map[string]string{
	PythonConfigurationType: "python",
}

// Presentation controls how VS Code lists a launch configuration
type Presentation struct {
	Hidden bool   `json:"hidden"`
	Group  string `json:"group"`
}

// A LaunchConfiguration is one entry in the "configurations" array of a
// VS Code launch.json file.
type LaunchConfiguration struct {
	Type              string       `json:"type"`
	Name              string       `json:"name"`
	Request           string       `json:"request"`
	RuntimeExecutable string       `json:"runtimeExecutable,omitempty"`
	Program           string       `json:"program"`
	Console           string       `json:"console"`
	Args              []string     `json:"args"`
	Presentation      Presentation `json:"presentation"`
	Cwd               string       `json:"cwd"`
	Comment           string       `json:"comment,omitempty"`
}

// ConvertConfiguration maps a JetBrains run configuration onto a VS Code
// launch configuration. It returns false if the run configuration is of an
// unsupported type or has no name.
func ConvertConfiguration(rc RunConfiguration) (LaunchConfiguration, bool) {
	launchType, ok := launchTypes[rc.Type]
	if !ok || rc.Name == "" {
		return LaunchConfiguration{}, false
	}

	rv := LaunchConfiguration{
		Type:    launchType,
		Name:    rc.Name,
		Request: LaunchRequest,
		Console: IntegratedTerminal,
		Cwd:     WorkspaceFolderToken,

		RuntimeExecutable: PythonRuntime,

		Presentation: Presentation{
			Hidden: false,
			Group:  rc.Group(),
		},
		Comment: ConversionComment,
	}

	rv.Program, _ = rc.Option(OptionScriptName)

	params, _ := rc.Option(OptionParameters)
	rv.Args = splitParameters(params)

	if cwd, ok := rc.Option(OptionWorkingDirectory); ok && cwd != "" {
		rv.Cwd = cwd
	}

	rv.normalize()

	return rv, true
}

// normalize rewrites the project root placeholder in every field that is
// sourced from option text
func (l *LaunchConfiguration) normalize() {
	l.Program = ReplaceProjectDir(l.Program)
	l.Cwd = ReplaceProjectDir(l.Cwd)
	for i, a := range l.Args {
		l.Args[i] = ReplaceProjectDir(a)
	}
}

// ReplaceProjectDir replaces every occurrence of JetBrains' project root
// placeholder with VS Code's workspace folder placeholder.
func ReplaceProjectDir(s string) string {
	return strings.ReplaceAll(s, ProjectDirToken, WorkspaceFolderToken)
}

// splitParameters splits a parameter string on single spaces. An empty
// string has no parameters at all.
func splitParameters(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, " ")
}
