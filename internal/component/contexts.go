package component

// Context tags for World.RegisterContext lookups.
type (
	MainCameraContext struct{}
	MainWindowContext struct{}
)
