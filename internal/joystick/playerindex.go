package joystick

import "fmt"

// The player-index table maps player slots to instance IDs; zero marks an
// empty slot. Each non-zero instance ID occupies at most one slot.

// PlayerIndex returns the handle's player slot, or -1 when unassigned.
func (h *Handle) PlayerIndex() (int, error) {
	if err := h.lock(); err != nil {
		return -1, err
	}
	defer h.reg.Unlock()
	return h.reg.playerSlotLocked(h.instanceID), nil
}

// SetPlayerIndex assigns the handle to a player slot. A negative slot
// removes the assignment.
func (h *Handle) SetPlayerIndex(playerIndex int) error {
	if err := h.lock(); err != nil {
		return err
	}
	defer h.reg.Unlock()
	h.reg.setPlayerIndexLocked(playerIndex, h.instanceID)
	return nil
}

// PlayerIndexFor returns the player slot of an instance ID, or -1.
func (r *Registry) PlayerIndexFor(id InstanceID) int {
	r.Lock()
	defer r.Unlock()
	return r.playerSlotLocked(id)
}

// SetPlayerIndexFor assigns an attached device to a player slot.
func (r *Registry) SetPlayerIndexFor(id InstanceID, playerIndex int) error {
	r.Lock()
	defer r.Unlock()
	if _, _, ok := r.resolveLocked(id); !ok {
		return fmt.Errorf("%w: instance %d", ErrNotFound, id)
	}
	r.setPlayerIndexLocked(playerIndex, id)
	return nil
}

// InstanceForPlayer returns the instance ID occupying a player slot, or 0.
func (r *Registry) InstanceForPlayer(playerIndex int) InstanceID {
	r.Lock()
	defer r.Unlock()
	if playerIndex < 0 || playerIndex >= len(r.players) {
		return 0
	}
	return r.players[playerIndex]
}

// HandleFromPlayerIndex returns the open handle assigned to a player slot,
// or nil.
func (r *Registry) HandleFromPlayerIndex(playerIndex int) *Handle {
	r.Lock()
	defer r.Unlock()
	if playerIndex < 0 || playerIndex >= len(r.players) {
		return nil
	}
	return r.handleFromInstanceLocked(r.players[playerIndex])
}

func (r *Registry) playerSlotLocked(id InstanceID) int {
	for i := range r.players {
		if r.players[i] == id {
			return i
		}
	}
	return -1
}

func (r *Registry) freePlayerSlotLocked() int {
	for i := range r.players {
		if r.players[i] == 0 {
			return i
		}
	}
	return len(r.players)
}

// setPlayerIndexLocked assigns id to playerIndex, displacing any prior
// occupant to the next free slot. Displacement chains are bounded by the
// table size, so each assignment does at most one extra relocation per
// conflict.
func (r *Registry) setPlayerIndexLocked(playerIndex int, id InstanceID) {
	if id == 0 {
		return
	}
	for hops := 0; ; hops++ {
		displaced := r.assignPlayerSlotLocked(playerIndex, id)
		if displaced == 0 || hops >= len(r.players) {
			break
		}
		id = displaced
		playerIndex = r.freePlayerSlotLocked()
	}
}

// assignPlayerSlotLocked puts id in playerIndex, clearing any slot it held
// before, and returns the instance ID it displaced (0 for none). The new
// index is pushed down to the device's driver exactly once; an assignment
// that is already in place does nothing.
func (r *Registry) assignPlayerSlotLocked(playerIndex int, id InstanceID) InstanceID {
	if playerIndex >= len(r.players) {
		grown := make([]InstanceID, playerIndex+1)
		copy(grown, r.players)
		r.players = grown
	} else if playerIndex >= 0 && r.players[playerIndex] == id {
		return 0
	}

	var displaced InstanceID
	if playerIndex >= 0 {
		displaced = r.players[playerIndex]
	}

	for i := range r.players {
		if r.players[i] == id {
			r.players[i] = 0
			break
		}
	}
	if playerIndex >= 0 {
		r.players[playerIndex] = id
	}

	if d, index, ok := r.resolveLocked(id); ok {
		d.SetDevicePlayerIndex(index, playerIndex)
	}
	return displaced
}
