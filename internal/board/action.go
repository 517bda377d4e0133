package board

// ActionKind enumerates the decoded user intents.
type ActionKind int

// ActionQuit and related constants form the closed action vocabulary.
const (
	ActionQuit ActionKind = iota
	ActionMoveLeft
	ActionMoveRight
	ActionMoveUp
	ActionMoveDown
	ActionMoveStoryLeft
	ActionMoveStoryRight
	ActionOpenDetail
	ActionCloseView
	ActionOpenEpicList
	ActionNewStory
	ActionEditStoryTitle
	ActionEditStoryBody
	ActionInputChar
	ActionInputBackspace
	ActionInputConfirm
	ActionInputCancel
	ActionDeleteStory
	ActionConfirmYes
	ActionConfirmNo
	ActionSelectPrevTask
	ActionSelectNextTask
	ActionToggleTask
	ActionNewTask
	ActionDeleteTask
	ActionCyclePriority
	ActionSetStoryBody
	ActionNewEpic
	ActionDeleteEpic
	ActionOpenEditor
	ActionCopyStory
	ActionNotice
)

var actionNames = map[ActionKind]string{
	ActionQuit:           "quit",
	ActionMoveLeft:       "move_left",
	ActionMoveRight:      "move_right",
	ActionMoveUp:         "move_up",
	ActionMoveDown:       "move_down",
	ActionMoveStoryLeft:  "move_story_left",
	ActionMoveStoryRight: "move_story_right",
	ActionOpenDetail:     "open_detail",
	ActionCloseView:      "close_view",
	ActionOpenEpicList:   "open_epic_list",
	ActionNewStory:       "new_story",
	ActionEditStoryTitle: "edit_story_title",
	ActionEditStoryBody:  "edit_story_body",
	ActionInputChar:      "input_char",
	ActionInputBackspace: "input_backspace",
	ActionInputConfirm:   "input_confirm",
	ActionInputCancel:    "input_cancel",
	ActionDeleteStory:    "delete_story",
	ActionConfirmYes:     "confirm_yes",
	ActionConfirmNo:      "confirm_no",
	ActionSelectPrevTask: "select_prev_task",
	ActionSelectNextTask: "select_next_task",
	ActionToggleTask:     "toggle_task",
	ActionNewTask:        "new_task",
	ActionDeleteTask:     "delete_task",
	ActionCyclePriority:  "cycle_priority",
	ActionSetStoryBody:   "set_story_body",
	ActionNewEpic:        "new_epic",
	ActionDeleteEpic:     "delete_epic",
	ActionOpenEditor:     "open_editor",
	ActionCopyStory:      "copy_story",
	ActionNotice:         "notice",
}

func (k ActionKind) String() string {
	if name, ok := actionNames[k]; ok {
		return name
	}
	return "unknown"
}

// Action is one decoded intent. Text carries the payload of InputChar,
// SetStoryBody and Notice and is empty otherwise.
type Action struct {
	Kind ActionKind
	Text string
}

// Do returns a payload-free action.
func Do(kind ActionKind) Action {
	return Action{Kind: kind}
}

// InputChar returns an action appending text to the input buffer.
func InputChar(text string) Action {
	return Action{Kind: ActionInputChar, Text: text}
}

// SetStoryBody returns an action replacing the open story's description.
func SetStoryBody(body string) Action {
	return Action{Kind: ActionSetStoryBody, Text: body}
}

// Notice returns an action that only sets the status line, used to report
// the outcome of terminal-side effects such as the editor or clipboard.
func Notice(text string) Action {
	return Action{Kind: ActionNotice, Text: text}
}

// Terminal reports whether the action is carried out by the terminal loop
// rather than the dispatcher.
func (a Action) Terminal() bool {
	return a.Kind == ActionOpenEditor || a.Kind == ActionCopyStory
}
