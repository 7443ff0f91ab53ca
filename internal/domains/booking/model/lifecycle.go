package model

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"
)

const (
	EventConfirm = "confirm"
	EventRelease = "release"
	EventReturn  = "return"
	EventCancel  = "cancel"
	EventReject  = "reject"
)

var ErrInvalidTransition = errors.New("invalid booking transition")

var lifecycle = fsm.Events{
	{Name: EventConfirm, Src: []string{StatusPending}, Dst: StatusConfirmed},
	{Name: EventRelease, Src: []string{StatusConfirmed}, Dst: StatusInProgress},
	{Name: EventReturn, Src: []string{StatusInProgress}, Dst: StatusCompleted},
	{Name: EventCancel, Src: []string{StatusPending, StatusConfirmed}, Dst: StatusCancelled},
	{Name: EventReject, Src: []string{StatusPending}, Dst: StatusRejected},
}

// NextStatus fires event against the current status and returns the status the booking moves to.
func NextStatus(ctx context.Context, current, event string) (string, error) {
	machine := fsm.NewFSM(current, lifecycle, fsm.Callbacks{})

	if err := machine.Event(ctx, event); err != nil {
		return current, fmt.Errorf("%w: cannot %s a booking that is %s", ErrInvalidTransition, event, current)
	}

	return machine.Current(), nil
}

// Can reports whether event is allowed from the current status.
func Can(current, event string) bool {
	return fsm.NewFSM(current, lifecycle, fsm.Callbacks{}).Can(event)
}
