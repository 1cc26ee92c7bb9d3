package core

import "fmt"

// FileState is the processing state of a single vault file within a sweep.
type FileState int

const (
	// StateUnseen is the state of a file that has been listed but not started.
	StateUnseen FileState = iota
	StateExtracting
	StateChunking
	StateUploading
	StateMoving
	// StateDone means the file was uploaded (or attempted) and archived.
	StateDone
	// StateSkipped means the file was left untouched without an error.
	StateSkipped
	// StateFailed means a step failed and the file remains unprocessed.
	StateFailed
)

var fileStateNames = [...]string{
	StateUnseen:     "unseen",
	StateExtracting: "extracting",
	StateChunking:   "chunking",
	StateUploading:  "uploading",
	StateMoving:     "moving",
	StateDone:       "done",
	StateSkipped:    "skipped",
	StateFailed:     "failed",
}

func (s FileState) String() string {
	if s < 0 || int(s) >= len(fileStateNames) {
		return fmt.Sprintf("FileState(%d)", int(s))
	}
	return fileStateNames[s]
}

// IsTerminal reports whether no further transition is possible.
func (s FileState) IsTerminal() bool {
	return s == StateDone || s == StateSkipped || s == StateFailed
}

var transitions = map[FileState][]FileState{
	StateUnseen:     {StateExtracting, StateSkipped, StateFailed},
	StateExtracting: {StateChunking, StateSkipped, StateFailed},
	StateChunking:   {StateUploading, StateSkipped, StateFailed},
	StateUploading:  {StateMoving, StateFailed},
	StateMoving:     {StateDone, StateFailed},
}

// ValidateTransition returns ErrInvalidTransition if a file may not move
// from one state to the other.
func ValidateTransition(from, to FileState) error {
	for _, next := range transitions[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
