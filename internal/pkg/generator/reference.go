package generator

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ReferenceGenerator issues sale reference codes. The reference doubles as
// the idempotency key for the whole commit sequence, so it has to be unique
// across restarts without coordination with the ledger.
type ReferenceGenerator struct {
	terminalID string
}

func NewReferenceGenerator(terminalID string) *ReferenceGenerator {
	return &ReferenceGenerator{terminalID: terminalID}
}

func (g *ReferenceGenerator) NewReference() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("POS-%s-%s", g.terminalID, id[:20])
}
