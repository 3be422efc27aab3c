package oracle

import (
	"fmt"

	"github.com/DaanHessen/sci-adventure/internal/engine"
)

// Offline is a deterministic, network-free Oracle: a small bank of
// generic in-fiction responses, selected by a Stream derived from the
// run seed plus move counter so that two runs fed the same command
// sequence pick the same canned line. It is the one place controlled
// non-determinism is allowed without breaking fixed-timestep
// determinism, since the selection is itself a pure function of
// (run seed, move count).
type Offline struct {
	seed      engine.RunSeed
	responses []string
}

// NewOffline builds an offline oracle from a run seed and an optional
// world-authored response bank; a built-in generic bank is always
// appended so a world package need not define one to get offline mode.
func NewOffline(seed engine.RunSeed, extra []string) *Offline {
	responses := append([]string{
		"Nothing seems to happen.",
		"You consider it, but nothing comes of it.",
		"That doesn't seem to work here.",
		"You try, without any visible result.",
	}, extra...)
	return &Offline{seed: seed, responses: responses}
}

// ProcessCommand implements engine.Oracle.
func (o *Offline) ProcessCommand(command string, snapshot engine.SaveSnapshot) (engine.OracleReply, error) {
	stream := o.seed.Stream(fmt.Sprintf("oracle:%d", snapshot.Moves))
	idx := stream.Intn(len(o.responses))
	return engine.OracleReply{Text: o.responses[idx]}, nil
}
