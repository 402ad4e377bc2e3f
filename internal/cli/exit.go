package cli

import "github.com/NotMyFault/cloudify-plugin/pkg/domain"

// Process exit codes by error class.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitConfig  = 2
	ExitParse   = 3
	ExitIO      = 4
	ExitMapping = 5
)

// ExitCode maps err to the process exit status.
func ExitCode(err error) int {
	switch domain.Kind(err) {
	case "ok":
		return ExitOK
	case "config":
		return ExitConfig
	case "parse":
		return ExitParse
	case "io":
		return ExitIO
	case "mapping":
		return ExitMapping
	default:
		return ExitFailure
	}
}
