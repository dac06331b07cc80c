package replay

import "fmt"

// ReplayError reports a recorder-level failure: double-starting a tape or
// recording against an unknown gameId. Export and Import report an
// unsupported format with a plain error.
type ReplayError struct {
	GameID  string
	Reason  string
	Message string
}

func (e *ReplayError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("replay error(game=%s reason=%s): %s", e.GameID, e.Reason, e.Message)
}
