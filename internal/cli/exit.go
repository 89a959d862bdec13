package cli

import (
	liberrors "github.com/kibrarian-labs/kibrarian/internal/errors"
)

// Exit codes by error class. Anything unclassified exits 1.
var exitCodes = map[liberrors.ErrorCode]int{
	liberrors.ErrCodeInvalidRequest:   2,
	liberrors.ErrCodeNotFound:         3,
	liberrors.ErrCodeParse:            4,
	liberrors.ErrCodeLibraryNotFound:  5,
	liberrors.ErrCodeAlreadyInstalled: 6,
	liberrors.ErrCodeNotInstalled:     7,
	liberrors.ErrCodeFetch:            8,
	liberrors.ErrCodeIO:               9,
}

// ExitCode maps err to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if code, ok := exitCodes[liberrors.CodeOf(err)]; ok {
		return code
	}
	return 1
}
