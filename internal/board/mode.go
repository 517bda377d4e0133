package board

// ModeKind discriminates the Mode union.
type ModeKind int

// ModeBoard and related constants enumerate the interactive views.
const (
	ModeBoard ModeKind = iota
	ModeDetail
	ModeEpicList
	ModeInput
	ModeConfirm
)

// InputTarget names what a confirmed input buffer is written to.
type InputTarget int

// InputNewStory and related constants enumerate input targets.
const (
	InputNewStory InputTarget = iota
	InputEditStoryTitle
	InputEditStoryBody
	InputNewTask
	InputNewEpic
)

// ConfirmAction names the destructive operation awaiting a yes/no.
type ConfirmAction int

// ConfirmDeleteStory and related constants enumerate confirmable actions.
const (
	ConfirmDeleteStory ConfirmAction = iota
	ConfirmDeleteEpic
)

// Mode is the current interactive view. Payloads are only reachable through
// the accessor matching the kind, so an Input mode always carries exactly one
// target and a Confirm mode exactly one action.
type Mode struct {
	kind    ModeKind
	target  InputTarget
	confirm ConfirmAction
}

// BoardMode returns the initial column view.
func BoardMode() Mode { return Mode{kind: ModeBoard} }

// DetailMode returns the single-story view.
func DetailMode() Mode { return Mode{kind: ModeDetail} }

// EpicListMode returns the epic filter picker.
func EpicListMode() Mode { return Mode{kind: ModeEpicList} }

// InputMode returns a text entry mode writing to target.
func InputMode(target InputTarget) Mode { return Mode{kind: ModeInput, target: target} }

// ConfirmMode returns a yes/no prompt for action.
func ConfirmMode(action ConfirmAction) Mode { return Mode{kind: ModeConfirm, confirm: action} }

// Kind returns the mode discriminant.
func (m Mode) Kind() ModeKind { return m.kind }

// InputTarget returns the target when m is an Input mode.
func (m Mode) InputTarget() (InputTarget, bool) {
	if m.kind != ModeInput {
		return 0, false
	}
	return m.target, true
}

// ConfirmAction returns the pending action when m is a Confirm mode.
func (m Mode) ConfirmAction() (ConfirmAction, bool) {
	if m.kind != ModeConfirm {
		return 0, false
	}
	return m.confirm, true
}

// Is reports whether m has kind k.
func (m Mode) Is(k ModeKind) bool { return m.kind == k }

// Base returns the view an Input or Confirm mode is layered over; other
// modes return themselves.
func (m Mode) Base() Mode {
	switch m.kind {
	case ModeInput:
		return m.target.origin()
	case ModeConfirm:
		return m.confirm.origin()
	default:
		return m
	}
}

// String renders the mode for logs.
func (m Mode) String() string {
	switch m.kind {
	case ModeBoard:
		return "board"
	case ModeDetail:
		return "detail"
	case ModeEpicList:
		return "epic_list"
	case ModeInput:
		return "input(" + m.target.String() + ")"
	case ModeConfirm:
		return "confirm(" + m.confirm.String() + ")"
	default:
		return "unknown"
	}
}

// origin returns the view an Input mode with target t returns to.
func (t InputTarget) origin() Mode {
	switch t {
	case InputEditStoryTitle, InputEditStoryBody, InputNewTask:
		return DetailMode()
	case InputNewEpic:
		return EpicListMode()
	default:
		return BoardMode()
	}
}

// Label returns the prompt shown above the input buffer.
func (t InputTarget) Label() string {
	switch t {
	case InputNewStory:
		return "New story title"
	case InputEditStoryTitle:
		return "Edit title"
	case InputEditStoryBody:
		return "Edit description"
	case InputNewTask:
		return "New task"
	case InputNewEpic:
		return "New epic title"
	default:
		return "Input"
	}
}

func (t InputTarget) String() string {
	switch t {
	case InputNewStory:
		return "new_story"
	case InputEditStoryTitle:
		return "edit_story_title"
	case InputEditStoryBody:
		return "edit_story_body"
	case InputNewTask:
		return "new_task"
	case InputNewEpic:
		return "new_epic"
	default:
		return "unknown"
	}
}

// origin returns the view a Confirm mode with action a returns to.
func (a ConfirmAction) origin() Mode {
	if a == ConfirmDeleteEpic {
		return EpicListMode()
	}
	return BoardMode()
}

// Prompt returns the yes/no question for a.
func (a ConfirmAction) Prompt() string {
	if a == ConfirmDeleteEpic {
		return "Delete this epic? (y/n)"
	}
	return "Delete this story? (y/n)"
}

func (a ConfirmAction) String() string {
	if a == ConfirmDeleteEpic {
		return "delete_epic"
	}
	return "delete_story"
}
