package processor

import (
	"fmt"

	"github.com/errajibadr/langgraph-agent-repo/event"
)

// Fault is a typed error mirroring the ErrorKind table in spec.md §7. New
// returns it directly for construction-time ConfigInvalid failures; the
// running orchestrator never returns it as a Go error, converting the same
// conditions into a terminal event.Fault instead (§6.5).
type Fault struct {
	Kind        event.ErrorKind
	Description string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("processor: %s: %s", f.Kind, f.Description)
}

func newFault(kind event.ErrorKind, description string) *Fault {
	return &Fault{Kind: kind, Description: description}
}
