package service

// Confirmer asks the user before a destructive operation.
type Confirmer interface {
	Confirm(message string) bool
}

// ConfirmFunc adapts a plain function to Confirmer.
type ConfirmFunc func(message string) bool

func (f ConfirmFunc) Confirm(message string) bool {
	return f(message)
}

// AlwaysConfirm approves every prompt. Presentation layers that already
// collected an explicit answer pass it through.
var AlwaysConfirm = ConfirmFunc(func(string) bool { return true })

// Change tells listeners what part of the displayed state moved.
type Change string

const (
	ChangeLoaded     Change = "loaded"
	ChangeCategories Change = "categories"
	ChangeSelection  Change = "selection"
	ChangeTasks      Change = "tasks"
	ChangeProgress   Change = "progress"
	ChangeDailyReset Change = "daily-reset"
	ChangeReset      Change = "reset"
)

// Listener is notified after a mutation has been applied and saved.
// Calls happen outside the store lock, so listeners may read snapshots.
type Listener interface {
	// LevelUp fires exactly once per level crossing.
	LevelUp(categoryName string, newLevel int)
	Render(change Change)
}

// ListenerFuncs builds a Listener from optional callbacks.
type ListenerFuncs struct {
	OnLevelUp func(categoryName string, newLevel int)
	OnRender  func(change Change)
}

func (l ListenerFuncs) LevelUp(categoryName string, newLevel int) {
	if l.OnLevelUp != nil {
		l.OnLevelUp(categoryName, newLevel)
	}
}

func (l ListenerFuncs) Render(change Change) {
	if l.OnRender != nil {
		l.OnRender(change)
	}
}
