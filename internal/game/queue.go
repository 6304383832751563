package game

// nextAfter computes the turn rotation over an id-based queue. If the queue is
// empty there is no next player. If current is absent (it left mid-turn) the
// head of the queue takes over. Otherwise the element cyclically following
// current is next. Membership, not index arithmetic, so a shrinking queue can
// never corrupt the order.
func nextAfter(queue []PlayerID, current PlayerID) (PlayerID, bool) {
	if len(queue) == 0 {
		return "", false
	}
	for i, id := range queue {
		if id == current {
			return queue[(i+1)%len(queue)], true
		}
	}
	return queue[0], true
}

func removeID(queue []PlayerID, id PlayerID) []PlayerID {
	for i, v := range queue {
		if v == id {
			return append(queue[:i], queue[i+1:]...)
		}
	}
	return queue
}

func containsID(queue []PlayerID, id PlayerID) bool {
	for _, v := range queue {
		if v == id {
			return true
		}
	}
	return false
}
