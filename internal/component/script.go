package component

// Script attaches a Lua behaviour, called once per frame by ScriptSystem.
type Script struct {
	Behaviour string
}
