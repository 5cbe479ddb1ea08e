package seats

import "container/list"

// Queue is the FIFO of spectators waiting for a seat.
type Queue struct {
	l *list.List
}

func NewQueue() *Queue { return &Queue{l: list.New()} }

func (q *Queue) Enqueue(p Participant) { q.l.PushBack(p) }

// Dequeue pops the participant that has waited longest.
func (q *Queue) Dequeue() (Participant, bool) {
	front := q.l.Front()
	if front == nil {
		return Participant{}, false
	}
	return q.l.Remove(front).(Participant), true
}

// Remove drops the entry with the given connection id, keeping the order of
// everyone else.
func (q *Queue) Remove(id string) bool {
	for e := q.l.Front(); e != nil; e = e.Next() {
		if e.Value.(Participant).ID == id {
			q.l.Remove(e)
			return true
		}
	}
	return false
}

func (q *Queue) Contains(id string) bool {
	for e := q.l.Front(); e != nil; e = e.Next() {
		if e.Value.(Participant).ID == id {
			return true
		}
	}
	return false
}

func (q *Queue) Len() int { return q.l.Len() }

// Items returns the queue head first.
func (q *Queue) Items() []Participant {
	out := make([]Participant, 0, q.l.Len())
	for e := q.l.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(Participant))
	}
	return out
}
