package scripting

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/objtrack/internal/game/objective"
)

// ErrDuplicateObjective is returned when two seed scripts declare the same objective ID.
var ErrDuplicateObjective = errors.New("duplicate seed objective")

// Sink receives the objectives declared by seed scripts.
type Sink interface {
	Add(o objective.Objective)
}

// Seeder runs seed scripts and hands the objectives they declare to a Sink.
//
// Each script runs in its own sandboxed VM so the instruction limit applies
// per script. A Seeder is not safe for concurrent use.
type Seeder struct {
	logger    *zap.Logger
	instLimit int
}

// NewSeeder creates a Seeder.
//
// Precondition: logger must be non-nil; instLimit >= 0, 0 uses DefaultInstructionLimit.
func NewSeeder(logger *zap.Logger, instLimit int) *Seeder {
	return &Seeder{logger: logger, instLimit: instLimit}
}

// SeedFS executes every *.lua file directly under dir in fsys in lexicographic
// order and adds the declared objectives to sink. Nothing is added unless every
// script succeeds.
//
// Precondition: ctx, fsys and sink must be non-nil.
// Postcondition: Returns the number of objectives added, or an error naming
// the failing script.
func (s *Seeder) SeedFS(ctx context.Context, fsys fs.FS, dir string, sink Sink) (int, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return 0, fmt.Errorf("scripting: reading seed dir %q: %w", dir, err)
	}

	var scripts []string
	for _, e := range entries {
		if !e.IsDir() && path.Ext(e.Name()) == ".lua" {
			scripts = append(scripts, path.Join(dir, e.Name()))
		}
	}
	sort.Strings(scripts)

	var declared []objective.Objective
	seen := make(map[string]string)
	for _, name := range scripts {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		src, err := fs.ReadFile(fsys, name)
		if err != nil {
			return 0, fmt.Errorf("scripting: reading %q: %w", name, err)
		}
		objs, err := s.Run(ctx, name, src)
		if err != nil {
			return 0, err
		}
		for _, o := range objs {
			if prev, dup := seen[o.ID]; dup {
				return 0, fmt.Errorf("scripting: %w: %q declared in %q and %q", ErrDuplicateObjective, o.ID, prev, name)
			}
			seen[o.ID] = name
		}
		declared = append(declared, objs...)
	}

	for _, o := range declared {
		sink.Add(o)
	}
	s.logger.Info("seed objectives loaded",
		zap.Int("scripts", len(scripts)),
		zap.Int("objectives", len(declared)),
	)
	return len(declared), nil
}

// Run executes a single seed script and returns the objectives it declares in
// declaration order.
//
// Precondition: ctx must be non-nil; name identifies the script in errors.
// Postcondition: Returns the declared objectives or an error wrapping the Lua failure.
func (s *Seeder) Run(ctx context.Context, name string, src []byte) ([]objective.Objective, error) {
	L, cancel := NewSandboxedState(ctx, s.instLimit)
	defer L.Close()
	defer cancel()

	var declared []objective.Objective
	registerModules(L, s.logger.With(zap.String("script", name)), func(o objective.Objective) {
		declared = append(declared, o)
	})

	fn, err := L.Load(bytes.NewReader(src), name)
	if err != nil {
		return nil, fmt.Errorf("scripting: compiling %q: %w", name, err)
	}
	L.Push(fn)
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		return nil, fmt.Errorf("scripting: running %q: %w", name, err)
	}
	return declared, nil
}
