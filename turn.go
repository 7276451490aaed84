package hacktrack

// Sender identifies who authored a chat turn.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// ActionKind is the kind of action an entity control performs.
type ActionKind string

const (
	ActionSave   ActionKind = "save"
	ActionShare  ActionKind = "share"
	ActionRemind ActionKind = "remind"
)

// Entity is an actionable control bound to an event. Entities are structured
// data rendered through fixed templates; they are never parsed out of text.
type Entity struct {
	Action ActionKind
	Event  Event
}

// Turn is one message unit in the transcript. Text is always plain text.
type Turn struct {
	Sender   Sender
	Text     string
	Entities []Entity
	// Failed marks the local notice rendered in place of a reply.
	Failed bool
}

// FailureText is the generic notice rendered when a chat send fails.
const FailureText = "Error: Could not get response."

// UserTurn creates a turn authored by the user.
func UserTurn(text string) Turn {
	return Turn{Sender: SenderUser, Text: text}
}

// BotTurn creates a turn authored by the assistant.
func BotTurn(text string, entities ...Entity) Turn {
	return Turn{Sender: SenderBot, Text: text, Entities: entities}
}

// ReplyTurns converts a chat reply into bot turns: one for the reply text,
// followed by one per proposed event carrying a save control for that event.
func ReplyTurns(reply ChatReply) []Turn {
	turns := make([]Turn, 0, 1+len(reply.Events))
	turns = append(turns, BotTurn(reply.Reply))
	for _, ev := range reply.Events {
		turns = append(turns, BotTurn("Event: "+ev.Label(), Entity{Action: ActionSave, Event: ev}))
	}
	return turns
}

// FailureTurn returns the bot turn rendered when a chat send fails.
func FailureTurn() Turn {
	t := BotTurn(FailureText)
	t.Failed = true
	return t
}
