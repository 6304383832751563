package game

import (
	"sort"
	"time"
)

type VoteKind string

const (
	VoteSkip VoteKind = "skip"
	VoteKick VoteKind = "kick"
	VoteEnd  VoteKind = "end"
)

type VoteOutcome string

const (
	VoteOngoing   VoteOutcome = "ongoing"
	VotePassed    VoteOutcome = "passed"
	VoteFailed    VoteOutcome = "failed"    // yes threshold no longer reachable
	VoteExpired   VoteOutcome = "expired"   // window closed without a decision
	VoteCancelled VoteOutcome = "cancelled" // target left, session moot
)

// VoteSession is one concurrent vote. The required threshold and the active
// count are fixed when the vote opens; players leaving mid-vote do not move
// the goalposts for ballots already cast.
type VoteSession struct {
	ID          string
	Kind        VoteKind
	Initiator   PlayerID
	Target      PlayerID
	Ballots     map[PlayerID]bool
	Required    int
	ActiveCount int
	OpenedAt    time.Time
	ExpiresAt   time.Time

	timer *time.Timer
}

// RequiredVotes is the pass threshold for a vote opened with activeCount
// active players: floor(n/2)+1.
func RequiredVotes(activeCount int) int {
	return activeCount/2 + 1
}

func newVoteSession(id string, kind VoteKind, initiator, target PlayerID, activeCount int, window time.Duration) *VoteSession {
	now := time.Now()
	return &VoteSession{
		ID:          id,
		Kind:        kind,
		Initiator:   initiator,
		Target:      target,
		Ballots:     map[PlayerID]bool{initiator: true}, // the initiator always votes yes
		Required:    RequiredVotes(activeCount),
		ActiveCount: activeCount,
		OpenedAt:    now,
		ExpiresAt:   now.Add(window),
	}
}

// record stores a ballot. Append-only: a voter gets exactly one ballot and
// no-votes are never subtracted from the yes count.
func (v *VoteSession) record(voter PlayerID, yes bool) error {
	if _, ok := v.Ballots[voter]; ok {
		return ErrDuplicateBallot
	}
	v.Ballots[voter] = yes
	return nil
}

// Outcome recomputes the vote result from the ballots cast so far.
func (v *VoteSession) Outcome() VoteOutcome {
	yes := 0
	for _, b := range v.Ballots {
		if b {
			yes++
		}
	}
	if yes >= v.Required {
		return VotePassed
	}
	remaining := v.ActiveCount - len(v.Ballots)
	if yes+remaining < v.Required {
		return VoteFailed
	}
	return VoteOngoing
}

// VoteTally is the transparency read model rendered after every ballot.
type VoteTally struct {
	Yes       []PlayerID `json:"yes"`
	No        []PlayerID `json:"no"`
	Required  int        `json:"required"`
	Remaining int        `json:"remaining"`
}

func (v *VoteSession) Tally() VoteTally {
	t := VoteTally{
		Yes:       []PlayerID{},
		No:        []PlayerID{},
		Required:  v.Required,
		Remaining: v.ActiveCount - len(v.Ballots),
	}
	for id, b := range v.Ballots {
		if b {
			t.Yes = append(t.Yes, id)
		} else {
			t.No = append(t.No, id)
		}
	}
	sort.Slice(t.Yes, func(i, j int) bool { return t.Yes[i] < t.Yes[j] })
	sort.Slice(t.No, func(i, j int) bool { return t.No[i] < t.No[j] })
	return t
}

func (v *VoteSession) stopTimer() {
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
}
