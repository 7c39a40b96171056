package scripting

import (
	"fmt"
	"math"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/objtrack/internal/game/objective"
	"github.com/cory-johannsen/objtrack/internal/game/world"
)

// registerModules installs the objectives and log tables into L.
//
// objectives.add{...} accepts the fields id, type, task, location, x, y,
// plane, active, item, quantity and possible (a list of {x, y, plane}
// tables). Each objective type is also exposed as a string constant, e.g.
// objectives.TALK.
//
// Precondition: L must be from NewSandboxedState; logger and emit must be non-nil.
func registerModules(L *lua.LState, logger *zap.Logger, emit func(objective.Objective)) {
	objs := L.NewTable()
	for _, typ := range objective.AllTypes {
		objs.RawSetString(string(typ), lua.LString(typ))
	}
	L.SetField(objs, "add", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		spec, err := specFromTable(tbl)
		if err != nil {
			L.RaiseError("objectives.add: %s", err.Error())
			return 0
		}
		o, err := objective.New(spec)
		if err != nil {
			L.RaiseError("objectives.add: %s", err.Error())
			return 0
		}
		emit(o)
		return 0
	}))
	L.SetGlobal("objectives", objs)

	log := L.NewTable()
	for name, fn := range map[string]func(string, ...zap.Field){
		"debug": logger.Debug,
		"info":  logger.Info,
		"warn":  logger.Warn,
	} {
		L.SetField(log, name, L.NewFunction(func(L *lua.LState) int {
			fn(L.CheckString(1))
			return 0
		}))
	}
	L.SetGlobal("log", log)
}

func specFromTable(tbl *lua.LTable) (objective.Spec, error) {
	var spec objective.Spec
	var err error

	if spec.ID, err = stringField(tbl, "id"); err != nil {
		return spec, err
	}
	typ, err := stringField(tbl, "type")
	if err != nil {
		return spec, err
	}
	if spec.Type, err = objective.ParseType(typ); err != nil {
		return spec, err
	}
	if spec.Task, err = stringField(tbl, "task"); err != nil {
		return spec, err
	}
	if spec.LocationName, err = stringField(tbl, "location"); err != nil {
		return spec, err
	}
	if spec.ItemName, err = stringField(tbl, "item"); err != nil {
		return spec, err
	}
	if spec.Active, err = boolField(tbl, "active"); err != nil {
		return spec, err
	}
	if spec.Quantity, err = intField(tbl, "quantity"); err != nil {
		return spec, err
	}
	if spec.Location, err = pointOf(tbl); err != nil {
		return spec, err
	}

	switch v := tbl.RawGetString("possible").(type) {
	case *lua.LNilType:
	case *lua.LTable:
		var perr error
		v.ForEach(func(_, item lua.LValue) {
			if perr != nil {
				return
			}
			t, ok := item.(*lua.LTable)
			if !ok {
				perr = fmt.Errorf("possible: entries must be tables, got %s", item.Type())
				return
			}
			p, err := pointOf(t)
			if err != nil {
				perr = fmt.Errorf("possible: %w", err)
				return
			}
			if p == nil {
				perr = fmt.Errorf("possible: entries need x, y and plane")
				return
			}
			spec.PossibleLocations = append(spec.PossibleLocations, *p)
		})
		if perr != nil {
			return spec, perr
		}
	default:
		return spec, fmt.Errorf("possible must be a table, got %s", v.Type())
	}
	return spec, nil
}

// pointOf reads x, y and plane from tbl. Plane defaults to 0.
//
// Postcondition: Returns nil when neither x nor y is set.
func pointOf(tbl *lua.LTable) (*world.Point, error) {
	x, err := intField(tbl, "x")
	if err != nil {
		return nil, err
	}
	y, err := intField(tbl, "y")
	if err != nil {
		return nil, err
	}
	plane, err := intField(tbl, "plane")
	if err != nil {
		return nil, err
	}
	if x == nil && y == nil {
		if plane != nil {
			return nil, fmt.Errorf("plane given without x and y")
		}
		return nil, nil
	}
	if x == nil || y == nil {
		return nil, fmt.Errorf("x and y must be given together")
	}
	p := world.NewPoint(*x, *y, 0)
	if plane != nil {
		p.Plane = *plane
	}
	return &p, nil
}

func stringField(tbl *lua.LTable, key string) (string, error) {
	switch v := tbl.RawGetString(key).(type) {
	case *lua.LNilType:
		return "", nil
	case lua.LString:
		return string(v), nil
	default:
		return "", fmt.Errorf("%s must be a string, got %s", key, v.Type())
	}
}

func boolField(tbl *lua.LTable, key string) (bool, error) {
	switch v := tbl.RawGetString(key).(type) {
	case *lua.LNilType:
		return false, nil
	case lua.LBool:
		return bool(v), nil
	default:
		return false, fmt.Errorf("%s must be a boolean, got %s", key, v.Type())
	}
}

func intField(tbl *lua.LTable, key string) (*int, error) {
	switch v := tbl.RawGetString(key).(type) {
	case *lua.LNilType:
		return nil, nil
	case lua.LNumber:
		f := float64(v)
		if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
			return nil, fmt.Errorf("%s must be an integer, got %v", key, f)
		}
		n := int(f)
		return &n, nil
	default:
		return nil, fmt.Errorf("%s must be a number, got %s", key, v.Type())
	}
}
