package quota

import (
	"context"
	"fmt"

	"github.com/sahara-wellness/backend/internal/pkg/utils"
)

// Pipeline composes the per-key enforcer and the global governor into a
// single admission decision. The per-key check runs first and
// short-circuits; the governor is consulted only when withGlobal is set,
// for operations that trigger the downstream generation call.
type Pipeline struct {
	enforcer *Enforcer
	governor *Governor
}

// NewPipeline creates a Pipeline instance
func NewPipeline(enforcer *Enforcer, governor *Governor) (*Pipeline, error) {
	if enforcer == nil {
		return nil, fmt.Errorf("enforcer is nil")
	}
	if governor == nil {
		return nil, fmt.Errorf("governor is nil")
	}
	return &Pipeline{enforcer: enforcer, governor: governor}, nil
}

// Admit wholly admits or rejects one request. A rejection returns a
// model error identifying the kind; no partial admission exists.
func (p *Pipeline) Admit(ctx context.Context, key, today string, withGlobal bool) error {
	ctx, span := utils.StartSpan(ctx, "quota.Admit")
	defer span.End()

	if err := p.enforcer.CheckAndConsume(ctx, key, today); err != nil {
		return err
	}
	if withGlobal {
		return p.governor.CheckAndIncrement(ctx, today)
	}
	return nil
}
