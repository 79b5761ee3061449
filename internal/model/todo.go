package model

// Todo is the single persisted record.
// ID is assigned by the service, never by clients.
type Todo struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Patch carries the fields a client sent. Nil means absent.
type Patch struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

// Apply copies present fields onto t.
func (p Patch) Apply(t *Todo) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}

// NextID returns max(id)+1, or 1 for an empty collection.
func NextID(todos []Todo) int {
	highest := 0
	for _, t := range todos {
		if t.ID > highest {
			highest = t.ID
		}
	}
	return highest + 1
}

// Find returns the index of the first todo with id, or -1.
func Find(todos []Todo, id int) int {
	for i, t := range todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}
