package engine

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// LuaActionRegistry loads world-authored Lua scripts and exposes each
// top-level script as a CustomActionFunc, so a world package can define
// ActionCustom behavior (puzzle logic too irregular for the declarative
// Action vocabulary) without the engine knowing anything about Lua beyond
// this bridge. One VM is shared across all scripts in the registry;
// scripts run synchronously on the goroutine driving Engine.Submit, same
// as every other action.
type LuaActionRegistry struct {
	vm       *lua.LState
	log      *zap.Logger
	have     map[string]bool
	maxScore int
}

// NewLuaActionRegistry compiles each named script body into the shared VM
// under a function named after its key, so act.CustomName can address it
// directly. A script is source text, not a file path: world packages carry
// their scripts inline in YAML. maxScore is the world's score cap (0 means
// unbounded) applied to add_score the same way Engine.AddScore clamps it.
func NewLuaActionRegistry(scripts map[string]string, maxScore int, log *zap.Logger) (*LuaActionRegistry, error) {
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	// Scripts get no filesystem or process access.
	for _, g := range []string{"io", "os", "dofile", "loadfile", "require", "package"} {
		vm.SetGlobal(g, lua.LNil)
	}
	r := &LuaActionRegistry{vm: vm, log: log, have: make(map[string]bool, len(scripts)), maxScore: maxScore}
	for name, src := range scripts {
		fn, err := vm.LoadString(src)
		if err != nil {
			vm.Close()
			return nil, fmt.Errorf("custom action %q: %w", name, err)
		}
		vm.SetGlobal(luaGlobalName(name), fn)
		r.have[name] = true
	}
	return r, nil
}

func luaGlobalName(customName string) string { return "action_" + customName }

// Close shuts down the shared VM.
func (r *LuaActionRegistry) Close() {
	if r.vm != nil {
		r.vm.Close()
	}
}

// Func returns a CustomActionFunc bound to the named script, or nil if no
// script with that name was loaded.
func (r *LuaActionRegistry) Func(name string) CustomActionFunc {
	if !r.have[name] {
		return nil
	}
	return func(o *Overlay, act Action) error {
		return r.run(name, o, act)
	}
}

// run invokes action_<name>(ctx) where ctx exposes params plus host
// bridge functions for flag/item/score mutation. Lua errors are returned
// to the caller rather than panicking the engine.
func (r *LuaActionRegistry) run(name string, o *Overlay, act Action) error {
	fn := r.vm.GetGlobal(luaGlobalName(name))
	if fn == lua.LNil {
		return fmt.Errorf("custom action %q: script not loaded", name)
	}

	ctx := r.vm.NewTable()
	params := r.vm.NewTable()
	for k, v := range act.CustomParams {
		params.RawSetString(k, toLuaValue(r.vm, v))
	}
	ctx.RawSetString("params", params)
	ctx.RawSetString("room_id", lua.LString(o.CurrentRoomID))
	ctx.RawSetString("health", lua.LNumber(o.Health))
	ctx.RawSetString("score", lua.LNumber(o.Progression.Score))
	ctx.RawSetString("moves", lua.LNumber(o.Moves))

	r.vm.SetGlobal("get_flag", r.vm.NewFunction(func(L *lua.LState) int {
		v, ok := o.Flags.Get(L.CheckString(1))
		if !ok {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(toLuaValue(L, v))
		return 1
	}))
	r.vm.SetGlobal("set_flag", r.vm.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		val := L.CheckAny(2)
		if err := o.Flags.Set(name, fromLuaValue(val)); err != nil {
			L.RaiseError("%s", err.Error())
		}
		return 0
	}))
	r.vm.SetGlobal("give_item", r.vm.NewFunction(func(L *lua.LState) int {
		o.AddItem(L.CheckString(1), int(L.OptNumber(2, 1)))
		return 0
	}))
	r.vm.SetGlobal("remove_item", r.vm.NewFunction(func(L *lua.LState) int {
		o.RemoveItem(L.CheckString(1), int(L.OptNumber(2, 1)))
		return 0
	}))
	r.vm.SetGlobal("add_score", r.vm.NewFunction(func(L *lua.LState) int {
		o.Progression.Score += int(L.CheckNumber(1))
		if o.Progression.Score < 0 {
			o.Progression.Score = 0
		}
		if r.maxScore > 0 && o.Progression.Score > r.maxScore {
			o.Progression.Score = r.maxScore
		}
		return 0
	}))

	if err := r.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, ctx); err != nil {
		if r.log != nil {
			r.log.Warn("custom action script failed", zap.String("name", name), zap.Error(err))
		}
		return fmt.Errorf("custom action %q: %w", name, err)
	}
	return nil
}

func toLuaValue(L *lua.LState, v any) lua.LValue {
	switch t := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(t)
	case string:
		return lua.LString(t)
	case int:
		return lua.LNumber(t)
	case int64:
		return lua.LNumber(t)
	case float64:
		return lua.LNumber(t)
	default:
		return lua.LString(fmt.Sprintf("%v", t))
	}
}

func fromLuaValue(v lua.LValue) any {
	switch t := v.(type) {
	case lua.LBool:
		return bool(t)
	case lua.LNumber:
		return float64(t)
	case lua.LString:
		return string(t)
	default:
		return v.String()
	}
}
