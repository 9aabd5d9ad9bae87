package document

// Prompt identifies the question the session is waiting on.
type Prompt int

const (
	PromptNone Prompt = iota
	PromptSaveLocation
	PromptSecret
	PromptCloseChoice
)

func (p Prompt) String() string {
	switch p {
	case PromptSaveLocation:
		return "save-location"
	case PromptSecret:
		return "secret"
	case PromptCloseChoice:
		return "close-choice"
	default:
		return "none"
	}
}

// CloseChoice is the answer to the unsaved-changes prompt.
type CloseChoice int

const (
	CloseCancel CloseChoice = iota
	CloseSave
	CloseDiscard
)

func (c CloseChoice) String() string {
	switch c {
	case CloseSave:
		return "save"
	case CloseDiscard:
		return "discard"
	default:
		return "cancel"
	}
}

type secretPurpose int

const (
	secretEnable secretPurpose = iota
	secretRefresh
)

// saveFlow is the part of a save that survives a prompt.
type saveFlow struct {
	path       string
	closeAfter bool
}

type pendingPrompt struct {
	kind    Prompt
	purpose secretPurpose
	flow    saveFlow
}
