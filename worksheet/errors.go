package worksheet

import (
	"github.com/pkg/errors"

	"github.com/TsubasaBE/go-xlsxw/cellref"
)

// Error classes returned (wrapped) by Worksheet methods.  Test with
// errors.Is.
var (
	// ErrIndexOutOfRange is returned for a row or column outside the grid.
	ErrIndexOutOfRange = cellref.ErrIndexOutOfRange

	// ErrRowOrderViolation is returned in constant-memory mode for a write
	// to a row that has already been flushed.
	ErrRowOrderViolation = errors.New("row already flushed")

	// ErrSheetLimit is returned when a value exceeds a file-format limit:
	// string length, URL length or count, header/footer length, list
	// validation length.
	ErrSheetLimit = errors.New("worksheet limit exceeded")

	// ErrAllocation is returned when scratch storage cannot be obtained.
	ErrAllocation = errors.New("allocation failed")

	// ErrSinkWrite is returned when the output or spill writer fails.
	ErrSinkWrite = errors.New("write to sink failed")

	// ErrMergeOverlap is returned when a merge range overlaps an earlier one.
	ErrMergeOverlap = errors.New("merge range overlaps existing merge")

	// ErrInvalidArgument is returned for arguments that are well-typed but
	// meaningless, such as a one-cell merge.
	ErrInvalidArgument = errors.New("invalid argument")
)

// File-format limits.
const (
	MaxStringLength       = 32767
	MaxURLLength          = 2079
	MaxURLs               = 65530
	MaxHeaderFooterLength = 255
	MaxValidationList     = 255
	MaxColumnWidth        = 255
)
