package session

// undoStack holds deep snapshots taken before each mutating command.
// It is unbounded; a reset clears it.
type undoStack struct {
	snapshots []state
}

func (u *undoStack) push(st state) {
	u.snapshots = append(u.snapshots, st)
}

func (u *undoStack) pop() (state, bool) {
	if len(u.snapshots) == 0 {
		return state{}, false
	}

	last := len(u.snapshots) - 1
	st := u.snapshots[last]
	u.snapshots[last] = state{}
	u.snapshots = u.snapshots[:last]

	return st, true
}

func (u *undoStack) len() int {
	return len(u.snapshots)
}

func (u *undoStack) clear() {
	u.snapshots = nil
}
