package timeline

import (
	"context"

	"github.com/qmuntal/stateless"

	"github.com/comigor/roomchat/internal/logger"
)

// FSM States
type FSMState stateless.State

var (
	StateClosed        FSMState = "Closed"
	StateLoaded        FSMState = "Loaded"
	StateAwaitingReply FSMState = "AwaitingReply" // at least one reply trigger unanswered
)

// FSM Triggers
type FSMTrigger stateless.Trigger

var (
	TriggerOpen           FSMTrigger = "Open"
	TriggerSend           FSMTrigger = "Send"
	TriggerRepliesDrained FSMTrigger = "RepliesDrained"
	TriggerClose          FSMTrigger = "Close"
)

// newRoomMachine builds the per-room lifecycle:
//
//	Closed -Open-> Loaded -Send-> AwaitingReply -RepliesDrained-> Loaded
//
// Close returns to Closed from anywhere. Further sends while awaiting a reply
// stack in the reply queue instead of changing state.
func newRoomMachine(roomID func() string) *stateless.StateMachine {
	fsm := stateless.NewStateMachine(StateClosed)

	fsm.Configure(StateClosed).
		Permit(TriggerOpen, StateLoaded).
		Ignore(TriggerClose).
		Ignore(TriggerRepliesDrained)

	fsm.Configure(StateLoaded).
		OnEntry(func(_ context.Context, _ ...any) error {
			logger.Room(roomID()).Debug("FSM: Entering StateLoaded")
			return nil
		}).
		Permit(TriggerSend, StateAwaitingReply).
		Permit(TriggerClose, StateClosed).
		Ignore(TriggerRepliesDrained)

	fsm.Configure(StateAwaitingReply).
		OnEntry(func(_ context.Context, _ ...any) error {
			logger.Room(roomID()).Debug("FSM: Entering StateAwaitingReply")
			return nil
		}).
		Ignore(TriggerSend).
		Permit(TriggerRepliesDrained, StateLoaded).
		Permit(TriggerClose, StateClosed)

	return fsm
}
